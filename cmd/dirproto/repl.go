package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/mfateev/dirproto/internal/cli"
	"github.com/mfateev/dirproto/internal/history"
)

func newReplCommand() *cobra.Command {
	replCommand := &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive session on the sandbox",
		Args:  cobra.NoArgs,
		RunE:  replAction,
	}
	addModelFlags(replCommand)
	replCommand.Flags().Bool("inline", false, "Run without the alternate screen")
	replCommand.Flags().Bool("no-color", false, "Disable colors")
	replCommand.Flags().Bool("no-markdown", false, "Show Markdown files as plain text")
	return replCommand
}

func replAction(cmd *cobra.Command, _ []string) error {
	a := appFrom(cmd)
	a.applyModelFlags(cmd)
	inline, _ := cmd.Flags().GetBool("inline")
	noColor, _ := cmd.Flags().GetBool("no-color")
	noMarkdown, _ := cmd.Flags().GetBool("no-markdown")

	session := history.NewInMemoryJournal()
	e, err := a.openEngine(session)
	if err != nil {
		return err
	}
	// The TUI owns the terminal.
	a.log.SetOutput(io.Discard)
	ag, err := a.newAgent(e, false)
	if err != nil {
		return err
	}
	return cli.Run(cli.Config{
		PreviewLines: a.cfg.PreviewLines,
		NoColor:      noColor,
		NoMarkdown:   noMarkdown,
		Inline:       inline,
		Model:        a.cfg.LLM.Model,
		Provider:     a.cfg.LLM.Provider,
		Journal:      session,
	}, e, ag)
}
