package main

import (
	"errors"
	"fmt"

	"github.com/segmentio/encoding/json"
	"github.com/spf13/cobra"

	"github.com/mfateev/dirproto/internal/history"
)

func newHistoryCommand() *cobra.Command {
	historyCommand := &cobra.Command{
		Use:   "history",
		Short: "List commands recorded in the journal",
		Args:  cobra.NoArgs,
		RunE:  historyAction,
	}
	historyCommand.Flags().Int("since", -1, "Only show entries after this sequence number")
	historyCommand.Flags().Bool("json", false, "Print entries as JSON lines")
	return historyCommand
}

func historyAction(cmd *cobra.Command, _ []string) error {
	a := appFrom(cmd)
	if a.cfg.JournalPath == "" {
		return errors.New("no journal configured: set --journal or journal_path")
	}
	since, _ := cmd.Flags().GetInt("since")
	asJSON, _ := cmd.Flags().GetBool("json")

	j, err := history.OpenFileJournal(a.cfg.JournalPath)
	if err != nil {
		return err
	}
	entries, err := j.Since(cmd.Context(), since)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, e := range entries {
		if asJSON {
			data, err := json.Marshal(e)
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintln(out, string(data)); err != nil {
				return err
			}
			continue
		}
		status := "ok"
		if !e.OK {
			status = e.Kind
		}
		if _, err := fmt.Fprintf(out, "%4d %s %-6s %-30s %s: %s\n",
			e.Seq, e.Time.Format("2006-01-02 15:04:05"), e.Source, e.Command, status, e.Message); err != nil {
			return err
		}
	}
	return nil
}
