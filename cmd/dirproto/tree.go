package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mfateev/dirproto/internal/tree"
)

func newTreeCommand() *cobra.Command {
	treeCommand := &cobra.Command{
		Use:   "tree",
		Short: "Show the visible directory tree with content previews",
		Args:  cobra.NoArgs,
		RunE:  treeAction,
	}
	treeCommand.Flags().IntP("lines", "n", -1, "Preview lines per file, 0 for all (default from config)")
	treeCommand.Flags().Bool("sizes", false, "Append file sizes")
	return treeCommand
}

func treeAction(cmd *cobra.Command, _ []string) error {
	a := appFrom(cmd)
	lines, _ := cmd.Flags().GetInt("lines")
	if lines < 0 {
		lines = a.cfg.PreviewLines
	}
	sizes, _ := cmd.Flags().GetBool("sizes")

	e, err := a.openEngine()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for line := range e.DisplayWith(tree.Options{MaxPreviewLines: lines, ShowSizes: sizes}) {
		if _, err := fmt.Fprintln(out, line); err != nil {
			return err
		}
	}
	return nil
}
