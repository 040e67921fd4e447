package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mfateev/dirproto/internal/manifest"
)

func newInspectCommand() *cobra.Command {
	inspectCommand := &cobra.Command{
		Use:   "inspect [PATH]...",
		Short: "Show what the manifests allow for each path",
		Example: `  $ dirproto inspect notes.txt archive
  $ dirproto inspect --all --effective`,
		RunE: inspectAction,
	}
	inspectCommand.Flags().Bool("all", false, "Inspect every directory with a loaded manifest")
	inspectCommand.Flags().Bool("effective", false, "Also print the effective manifest of each directory")
	return inspectCommand
}

func inspectAction(cmd *cobra.Command, args []string) error {
	a := appFrom(cmd)
	all, _ := cmd.Flags().GetBool("all")
	effective, _ := cmd.Flags().GetBool("effective")
	if len(args) == 0 && !all {
		return errors.New("inspect needs a path or --all")
	}

	e, err := a.openEngine()
	if err != nil {
		return err
	}
	paths := args
	if all {
		paths = append(e.Dirs(), args...)
	}
	r := newRenderer(false)
	out := cmd.OutOrStdout()
	for _, rel := range paths {
		p, err := e.Inspect(rel)
		if err != nil {
			return fmt.Errorf("inspect %s: %w", rel, err)
		}
		if _, err := fmt.Fprint(out, r.RenderPermissions(p)); err != nil {
			return err
		}
		if !effective || !p.IsDir {
			continue
		}
		resolved, err := e.ResolvedManifest(rel)
		if err != nil {
			return err
		}
		data, err := manifest.Encode(resolved.Manifest())
		if err != nil {
			return err
		}
		if _, err := fmt.Fprint(out, string(data)); err != nil {
			return err
		}
	}
	return nil
}
