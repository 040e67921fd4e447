package main

import (
	"cmp"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mfateev/dirproto/internal/llm"
)

func newModelsCommand() *cobra.Command {
	modelsCommand := &cobra.Command{
		Use:   "models",
		Short: "List the chat models available to the configured API keys",
		Long: `List chat models from every provider with an API key. Keys come from
OPENAI_API_KEY and ANTHROPIC_API_KEY; llm.api_key in the config is used for
the configured provider.`,
		Args: cobra.NoArgs,
		RunE: modelsAction,
	}
	return modelsCommand
}

func modelsAction(cmd *cobra.Command, _ []string) error {
	a := appFrom(cmd)
	keys := llm.Keys{
		OpenAI:    os.Getenv("OPENAI_API_KEY"),
		Anthropic: os.Getenv("ANTHROPIC_API_KEY"),
	}
	switch a.cfg.LLM.Provider {
	case llm.ProviderOpenAI:
		keys.OpenAI = cmp.Or(a.cfg.LLM.APIKey, keys.OpenAI)
	case llm.ProviderAnthropic, "":
		keys.Anthropic = cmp.Or(a.cfg.LLM.APIKey, keys.Anthropic)
	}
	if keys.OpenAI == "" && keys.Anthropic == "" {
		return errors.New("no API keys found: set OPENAI_API_KEY or ANTHROPIC_API_KEY")
	}

	models, err := llm.FetchAvailableModels(cmd.Context(), keys)
	out := cmd.OutOrStdout()
	for _, m := range models {
		name := m.ID
		if m.DisplayName != "" {
			name += " (" + m.DisplayName + ")"
		}
		if _, werr := fmt.Fprintf(out, "%-10s %s\n", m.Provider, name); werr != nil {
			return werr
		}
	}
	if err != nil {
		a.log.WithError(err).Warn("some providers could not be listed")
		if len(models) == 0 {
			return err
		}
	}
	return nil
}
