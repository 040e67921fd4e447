package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/segmentio/encoding/json"
	"github.com/spf13/cobra"

	"github.com/mfateev/dirproto/internal/command"
	"github.com/mfateev/dirproto/internal/history"
)

// execSource is the journal source recorded for commands run by exec.
const execSource = "cli"

func newExecCommand() *cobra.Command {
	execCommand := &cobra.Command{
		Use:   "exec [COMMAND]...",
		Short: "Execute sandbox commands",
		Long: `Execute sandbox commands in order. With no arguments, one command is read
per line from standard input; blank lines and lines starting with "#" are skipped.

Commands:
  src -> dest          move or rename
  path ×               delete
  path += "text"       append
  path = "text"        overwrite
  touch path           create an empty file
  mkdir path           create a directory`,
		Example: `  $ dirproto exec 'drafts/a.txt -> final/a.txt'
  $ dirproto exec < commands.txt`,
		RunE: execAction,
	}
	execCommand.Flags().Bool("json", false, "Print results as JSON lines")
	execCommand.Flags().Bool("stop-on-error", false, "Stop at the first failed command")
	return execCommand
}

// execResult is the JSON rendering of one command.Result.
type execResult struct {
	Command string `json:"command"`
	Op      string `json:"op"`
	OK      bool   `json:"ok"`
	Kind    string `json:"kind,omitempty"`
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
}

func execAction(cmd *cobra.Command, args []string) error {
	a := appFrom(cmd)
	asJSON, _ := cmd.Flags().GetBool("json")
	stop, _ := cmd.Flags().GetBool("stop-on-error")

	lines := args
	if len(lines) == 0 {
		var err error
		if lines, err = readCommandLines(cmd.InOrStdin()); err != nil {
			return err
		}
	}

	e, err := a.openEngine()
	if err != nil {
		return err
	}
	ctx := history.WithSource(cmd.Context(), execSource)
	out := cmd.OutOrStdout()
	failed, ran := 0, 0
	for _, line := range lines {
		if err := ctx.Err(); err != nil {
			return err
		}
		res := e.Execute(ctx, line)
		ran++
		if err := printResult(out, res, asJSON); err != nil {
			return err
		}
		if !res.OK {
			failed++
			if stop {
				break
			}
		}
	}
	if failed > 0 {
		return exitError(failed, ran)
	}
	return nil
}

func readCommandLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines, sc.Err()
}

func printResult(w io.Writer, res command.Result, asJSON bool) error {
	if !asJSON {
		_, err := fmt.Fprintln(w, res.String())
		return err
	}
	data, err := json.Marshal(execResult{
		Command: res.Command,
		Op:      res.Op.String(),
		OK:      res.OK,
		Kind:    res.Label(),
		Path:    res.Path,
		Message: res.Message,
	})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
