package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newReadCommand() *cobra.Command {
	readCommand := &cobra.Command{
		Use:     "read PATH",
		Aliases: []string{"cat"},
		Short:   "Print the content of a visible file",
		Args:    cobra.ExactArgs(1),
		RunE:    readAction,
	}
	readCommand.Flags().Bool("markdown", false, "Render Markdown files (default true when stdout is a terminal)")
	return readCommand
}

func readAction(cmd *cobra.Command, args []string) error {
	a := appFrom(cmd)
	markdown := stdoutIsTerminal()
	if cmd.Flags().Changed("markdown") {
		markdown, _ = cmd.Flags().GetBool("markdown")
	}

	e, err := a.openEngine()
	if err != nil {
		return err
	}
	content, ok := e.ReadFileContent(args[0])
	if !ok {
		return fmt.Errorf("cannot read %s: not found or not visible", args[0])
	}
	out := cmd.OutOrStdout()
	if markdown {
		_, err = fmt.Fprint(out, newRenderer(true).RenderFile(args[0], content))
		return err
	}
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	_, err = fmt.Fprint(out, content)
	return err
}
