package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultMaxTokens = 2048

// AnthropicClient implements Client using the Anthropic Messages API.
type AnthropicClient struct {
	client anthropic.Client
}

// NewAnthropicClient creates an Anthropic client. An empty apiKey falls back
// to the SDK's ANTHROPIC_API_KEY lookup.
func NewAnthropicClient(apiKey string, opts ...option.RequestOption) *AnthropicClient {
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	return &AnthropicClient{client: anthropic.NewClient(opts...)}
}

// Complete sends one user turn and concatenates the text blocks of the reply.
func (c *AnthropicClient) Complete(ctx context.Context, req Request) (Response, error) {
	resp, err := c.client.Messages.New(ctx, buildAnthropicParams(req))
	if err != nil {
		return Response{}, classifyAnthropicError(err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.AsText().Text)
		}
	}
	return Response{
		Text:         sb.String(),
		InputTokens:  int(resp.Usage.InputTokens),
		OutputTokens: int(resp.Usage.OutputTokens),
	}, nil
}

func buildAnthropicParams(req Request) anthropic.MessageNewParams {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	params := anthropic.MessageNewParams{
		Model:     selectAnthropicModel(req.Model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}
	// The instructions are identical across turns, so they are cached.
	if req.Instructions != "" {
		params.System = []anthropic.TextBlockParam{{
			Text: req.Instructions,
			CacheControl: anthropic.CacheControlEphemeralParam{
				TTL: anthropic.CacheControlEphemeralTTLTTL5m,
			},
		}}
	}
	if req.Temperature > 0 {
		params.Temperature = anthropic.Float(req.Temperature)
	}
	return params
}

// selectAnthropicModel maps short names to Anthropic model IDs. Unknown
// names are passed through; an empty name selects Sonnet 4.5.
func selectAnthropicModel(modelName string) anthropic.Model {
	switch modelName {
	case "":
		return anthropic.ModelClaudeSonnet4_5_20250929
	case "claude-sonnet-4.5":
		return anthropic.ModelClaudeSonnet4_5_20250929
	case "claude-opus-4.6":
		return anthropic.ModelClaudeOpus4_6
	case "claude-haiku-4.5":
		return anthropic.ModelClaudeHaiku4_5_20251001
	default:
		return anthropic.Model(modelName)
	}
}

func classifyAnthropicError(err error) error {
	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "context_length") || strings.Contains(errMsg, "too many tokens") {
		return newError(ErrorTypeContextOverflow, false, "%v", err)
	}
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return classifyByStatusCode(apiErr.StatusCode, err)
	}
	if strings.Contains(errMsg, "rate_limit") || strings.Contains(errMsg, "rate limit") {
		return newError(ErrorTypeAPILimit, true, "%v", err)
	}
	return newError(ErrorTypeTransient, true, "Anthropic API error: %v", err)
}
