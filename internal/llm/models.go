package llm

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	anthropicopt "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/openai/openai-go/v3"
	openaiopt "github.com/openai/openai-go/v3/option"
)

// AvailableModel describes a model returned by a provider's list-models API.
type AvailableModel struct {
	Provider    string
	ID          string
	DisplayName string // Anthropic only
}

// Keys holds provider API keys. An empty key skips that provider.
type Keys struct {
	OpenAI    string
	Anthropic string
}

// FetchAvailableModels lists the models the configured providers offer,
// sorted by provider then ID. A provider whose listing fails is skipped and
// its error returned alongside whatever the others produced.
func FetchAvailableModels(ctx context.Context, keys Keys) ([]AvailableModel, error) {
	var (
		all  []AvailableModel
		errs []error
	)
	if keys.Anthropic != "" {
		models, err := fetchAnthropicModels(ctx, keys.Anthropic)
		all = append(all, models...)
		if err != nil {
			errs = append(errs, classifyAnthropicError(err))
		}
	}
	if keys.OpenAI != "" {
		models, err := fetchOpenAIModels(ctx, keys.OpenAI)
		all = append(all, models...)
		if err != nil {
			errs = append(errs, classifyError(err))
		}
	}

	slices.SortFunc(all, func(a, b AvailableModel) int {
		return cmp.Or(cmp.Compare(a.Provider, b.Provider), cmp.Compare(a.ID, b.ID))
	})
	if len(errs) > 0 {
		return all, errs[0]
	}
	return all, nil
}

func fetchOpenAIModels(ctx context.Context, apiKey string) ([]AvailableModel, error) {
	client := openai.NewClient(openaiopt.WithAPIKey(apiKey))
	page, err := client.Models.List(ctx)
	if err != nil {
		return nil, err
	}
	var result []AvailableModel
	for _, m := range page.Data {
		if isOpenAIChatModel(m.ID) {
			result = append(result, AvailableModel{Provider: ProviderOpenAI, ID: m.ID})
		}
	}
	return result, nil
}

// isOpenAIChatModel keeps chat-capable model aliases: no embeddings, audio,
// image or fine-tuned models and no date-pinned snapshots.
func isOpenAIChatModel(id string) bool {
	if strings.HasPrefix(id, "ft:") || hasDateSuffix(id) {
		return false
	}
	for _, sub := range []string{"-tts", "-realtime", "-transcribe", "-instruct", "-audio", "-search", "-preview"} {
		if strings.Contains(id, sub) {
			return false
		}
	}
	for _, prefix := range []string{"gpt-audio", "gpt-image", "chatgpt-image"} {
		if strings.HasPrefix(id, prefix) {
			return false
		}
	}
	for _, prefix := range []string{"gpt-", "o1", "o3", "o4", "chatgpt-"} {
		if strings.HasPrefix(id, prefix) {
			return true
		}
	}
	return false
}

// hasDateSuffix matches "-20XX-" anywhere or a trailing "-NNNN" stamp.
func hasDateSuffix(id string) bool {
	for i := 0; i+5 < len(id); i++ {
		if id[i] == '-' && id[i+1] == '2' && id[i+2] == '0' &&
			isDigit(id[i+3]) && isDigit(id[i+4]) && id[i+5] == '-' {
			return true
		}
	}
	if i := strings.LastIndex(id, "-"); i >= 0 {
		suffix := id[i+1:]
		return len(suffix) >= 4 && strings.IndexFunc(suffix, func(r rune) bool { return r < '0' || r > '9' }) < 0
	}
	return false
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func fetchAnthropicModels(ctx context.Context, apiKey string) ([]AvailableModel, error) {
	client := anthropic.NewClient(anthropicopt.WithAPIKey(apiKey))
	iter := client.Models.ListAutoPaging(ctx, anthropic.ModelListParams{})

	var result []AvailableModel
	for iter.Next() {
		m := iter.Current()
		result = append(result, AvailableModel{Provider: ProviderAnthropic, ID: m.ID, DisplayName: m.DisplayName})
	}
	return result, iter.Err()
}
