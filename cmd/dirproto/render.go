package main

import (
	"os"

	"golang.org/x/term"

	"github.com/mfateev/dirproto/internal/cli"
)

func stdoutIsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// newRenderer styles output only when stdout is a terminal.
func newRenderer(markdown bool) *cli.Renderer {
	if !stdoutIsTerminal() {
		return cli.NewRenderer(0, !markdown, cli.NoColorStyles())
	}
	return cli.NewRenderer(0, !markdown, cli.DefaultStyles())
}
