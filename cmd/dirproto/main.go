package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mfateev/dirproto/internal/config"
	"github.com/mfateev/dirproto/internal/engine"
	"github.com/mfateev/dirproto/internal/history"
	"github.com/mfateev/dirproto/internal/logging"
	"github.com/mfateev/dirproto/internal/version"
)

func main() {
	if err := newApp().Execute(); err != nil {
		logrus.Fatal(err)
	}
}

// app is the state shared by every subcommand once the global flags have
// been processed.
type app struct {
	cfg *config.Config
	log *logrus.Logger
}

type appKey struct{}

func appFrom(cmd *cobra.Command) *app {
	if a, ok := cmd.Context().Value(appKey{}).(*app); ok {
		return a
	}
	return &app{cfg: config.Default(), log: logging.Discard()}
}

func newApp() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "dirproto",
		Short: "dirproto: manifest-gated access to a sandbox directory",
		Example: `  Create missing manifests:
  $ dirproto init --root ./sandbox

  Show the visible tree:
  $ dirproto tree --root ./sandbox

  Run commands:
  $ dirproto exec --root ./sandbox 'notes.txt += "hello"' 'old.txt ×'

  Let a model work on a task:
  $ dirproto agent --root ./sandbox "sort the reports into yearly folders"`,
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Config file (default $DIRPROTO_CONFIG or ~/.dirproto/config.yaml)")
	flags.String("root", "", "Sandbox root directory")
	flags.String("manifest", "", "Manifest file name")
	flags.String("journal", "", "Append executed commands to this JSON-lines file")
	flags.String("log-level", "", "Set the logging level [trace, debug, info, warn, error]")
	flags.String("log-format", "", "Set the logging format [text, json]")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		a, err := processGlobalFlags(rootCmd)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		cmd.SetContext(context.WithValue(ctx, appKey{}, a))
		return nil
	}

	rootCmd.AddCommand(
		newInitCommand(),
		newTreeCommand(),
		newExecCommand(),
		newReadCommand(),
		newInspectCommand(),
		newHistoryCommand(),
		newReplCommand(),
		newAgentCommand(),
		newMCPCommand(),
		newModelsCommand(),
	)
	return rootCmd
}

// processGlobalFlags loads the config file and environment, then applies
// the flags the user set explicitly.
func processGlobalFlags(rootCmd *cobra.Command) (*app, error) {
	flags := rootCmd.PersistentFlags()
	explicit, _ := flags.GetString("config")
	cfg, err := config.LoadConfig(config.ConfigPath(explicit))
	if err != nil {
		return nil, err
	}

	for name, dst := range map[string]*string{
		"root":       &cfg.Root,
		"manifest":   &cfg.ManifestName,
		"journal":    &cfg.JournalPath,
		"log-level":  &cfg.LogLevel,
		"log-format": &cfg.LogFormat,
	} {
		if flags.Changed(name) {
			*dst, _ = flags.GetString(name)
		}
	}
	if lvl := cfg.LogLevel; lvl != "" {
		if _, err := logrus.ParseLevel(lvl); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &app{cfg: cfg, log: logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)}, nil
}

// openEngine opens the configured sandbox. Commands are journaled to the
// configured file, if any, and to every extra journal.
func (a *app) openEngine(extra ...history.Journal) (*engine.Engine, error) {
	opts := []engine.Option{
		engine.WithLogger(a.log),
		engine.WithManifestName(a.cfg.ManifestName),
		engine.WithAutoReload(a.cfg.AutoReload),
	}
	var primary history.Journal
	if a.cfg.JournalPath != "" {
		j, err := history.OpenFileJournal(a.cfg.JournalPath)
		if err != nil {
			return nil, err
		}
		primary = j
	}
	if primary != nil || len(extra) > 0 {
		opts = append(opts, engine.WithJournal(history.Tee(primary, extra...)))
	}
	e, err := engine.Open(a.cfg.Root, opts...)
	if err != nil {
		return nil, err
	}
	for _, w := range e.Warnings() {
		a.log.WithError(w).Warn("manifest problem")
	}
	return e, nil
}

func exitError(failed, total int) error {
	return fmt.Errorf("%d of %d commands failed", failed, total)
}
