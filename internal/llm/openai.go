package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const defaultOpenAIModel = "gpt-4o-mini"

// OpenAIClient implements Client using the Chat Completions API.
type OpenAIClient struct {
	client openai.Client
}

// NewOpenAIClient creates an OpenAI client. An empty apiKey falls back to
// the SDK's OPENAI_API_KEY lookup.
func NewOpenAIClient(apiKey string, opts ...option.RequestOption) *OpenAIClient {
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	return &OpenAIClient{client: openai.NewClient(opts...)}
}

// Complete sends the instructions and prompt and returns the first choice.
func (c *OpenAIClient) Complete(ctx context.Context, req Request) (Response, error) {
	resp, err := c.client.Chat.Completions.New(ctx, buildOpenAIParams(req))
	if err != nil {
		return Response{}, classifyError(err)
	}
	out := Response{
		InputTokens:  int(resp.Usage.PromptTokens),
		OutputTokens: int(resp.Usage.CompletionTokens),
	}
	if len(resp.Choices) > 0 {
		out.Text = resp.Choices[0].Message.Content
	}
	return out, nil
}

func buildOpenAIParams(req Request) openai.ChatCompletionNewParams {
	model := req.Model
	if model == "" {
		model = defaultOpenAIModel
	}
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(model),
		Messages: buildOpenAIMessages(req),
	}
	if req.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(req.MaxTokens))
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}
	return params
}

func buildOpenAIMessages(req Request) []openai.ChatCompletionMessageParamUnion {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if req.Instructions != "" {
		msgs = append(msgs, openai.SystemMessage(req.Instructions))
	}
	return append(msgs, openai.UserMessage(req.Prompt))
}

func classifyError(err error) error {
	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "context_length") || strings.Contains(errMsg, "maximum context length") {
		return newError(ErrorTypeContextOverflow, false, "%v", err)
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return classifyByStatusCode(apiErr.StatusCode, err)
	}
	if strings.Contains(errMsg, "rate_limit") || strings.Contains(errMsg, "rate limit") {
		return newError(ErrorTypeAPILimit, true, "%v", err)
	}
	return newError(ErrorTypeTransient, true, "OpenAI API error: %v", err)
}
