package llm

import (
	"fmt"
	"strings"
)

// Providers supported by NewClient.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// NewClient creates the client for provider. An empty provider selects
// Anthropic.
func NewClient(provider, apiKey string) (Client, error) {
	switch strings.ToLower(provider) {
	case ProviderAnthropic, "":
		return NewAnthropicClient(apiKey), nil
	case ProviderOpenAI:
		return NewOpenAIClient(apiKey), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s (supported: openai, anthropic)", provider)
	}
}
