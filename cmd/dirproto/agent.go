package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mfateev/dirproto/internal/agent"
	"github.com/mfateev/dirproto/internal/engine"
	"github.com/mfateev/dirproto/internal/instructions"
	"github.com/mfateev/dirproto/internal/llm"
)

func newAgentCommand() *cobra.Command {
	agentCommand := &cobra.Command{
		Use:   "agent TASK...",
		Short: "Let a language model propose and run commands for a task",
		Example: `  $ dirproto agent --root ./inbox "move every invoice into invoices/"
  $ dirproto agent --dry-run "tidy up the drafts folder"`,
		Args: cobra.MinimumNArgs(1),
		RunE: agentAction,
	}
	addModelFlags(agentCommand)
	agentCommand.Flags().Int("max-turns", 0, "Maximum model round trips (default from config)")
	agentCommand.Flags().Bool("dry-run", false, "Show the first proposal without executing it")
	return agentCommand
}

func addModelFlags(cmd *cobra.Command) {
	cmd.Flags().String("provider", "", "LLM provider [anthropic, openai] (default from config)")
	cmd.Flags().StringP("model", "m", "", "Model name (default from config)")
}

// applyModelFlags copies explicitly set model flags into the config.
func (a *app) applyModelFlags(cmd *cobra.Command) {
	if cmd.Flags().Changed("provider") {
		a.cfg.LLM.Provider, _ = cmd.Flags().GetString("provider")
	}
	if cmd.Flags().Changed("model") {
		a.cfg.LLM.Model, _ = cmd.Flags().GetString("model")
	}
}

func (a *app) newAgent(e *engine.Engine, dryRun bool) (*agent.Agent, error) {
	client, err := llm.NewClient(a.cfg.LLM.Provider, a.cfg.LLM.APIKey)
	if err != nil {
		return nil, err
	}
	personal, err := instructions.LoadPersonalInstructions(a.cfg.LLM.InstructionsPath)
	if err != nil {
		return nil, err
	}
	return agent.New(client, e, agent.Config{
		Model:                a.cfg.LLM.Model,
		MaxTokens:            a.cfg.LLM.MaxTokens,
		Temperature:          a.cfg.LLM.Temperature,
		MaxTurns:             a.cfg.LLM.MaxTurns,
		PreviewLines:         a.cfg.PreviewLines,
		PersonalInstructions: personal,
		DryRun:               dryRun,
	}, a.log), nil
}

func agentAction(cmd *cobra.Command, args []string) error {
	a := appFrom(cmd)
	a.applyModelFlags(cmd)
	if cmd.Flags().Changed("max-turns") {
		a.cfg.LLM.MaxTurns, _ = cmd.Flags().GetInt("max-turns")
	}
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	task := strings.TrimSpace(strings.Join(args, " "))
	if task == "" {
		return errors.New("task must not be empty")
	}

	e, err := a.openEngine()
	if err != nil {
		return err
	}
	ag, err := a.newAgent(e, dryRun)
	if err != nil {
		return err
	}
	report, runErr := ag.Run(cmd.Context(), task)
	if _, err := fmt.Fprint(cmd.OutOrStdout(), newRenderer(true).RenderReport(task, report)); err != nil {
		return err
	}
	if runErr != nil {
		return runErr
	}
	if n := report.Failed(); n > 0 {
		total := 0
		for _, t := range report.Turns {
			total += len(t.Results)
		}
		return exitError(n, total)
	}
	return nil
}
