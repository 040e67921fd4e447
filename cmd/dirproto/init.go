package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newInitCommand() *cobra.Command {
	initCommand := &cobra.Command{
		Use:   "init",
		Short: "Write an empty manifest into every directory lacking one",
		Args:  cobra.NoArgs,
		RunE:  initAction,
	}
	return initCommand
}

func initAction(cmd *cobra.Command, _ []string) error {
	a := appFrom(cmd)
	e, err := a.openEngine()
	if err != nil {
		return err
	}
	n, err := e.Initialize()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "created %d manifests under %s\n", n, e.Root())
	return err
}
