package llm

import (
	"errors"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/openai/openai-go/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper: determine the role string from a message union by checking which variant is set.
func msgRole(t *testing.T, msg openai.ChatCompletionMessageParamUnion) string {
	t.Helper()
	switch {
	case msg.OfSystem != nil:
		return "system"
	case msg.OfUser != nil:
		return "user"
	case msg.OfAssistant != nil:
		return "assistant"
	default:
		t.Fatal("message has no recognized variant set")
		return ""
	}
}

// Helper: extract the string content from a message union.
func msgContent(t *testing.T, msg openai.ChatCompletionMessageParamUnion) string {
	t.Helper()
	c := msg.GetContent().AsAny()
	require.NotNil(t, c, "content must not be nil")
	s, ok := c.(*string)
	require.True(t, ok, "content must be a *string, got %T", c)
	return *s
}

// ---------------------------------------------------------------------------
// Request building
// ---------------------------------------------------------------------------

func TestBuildOpenAIMessages(t *testing.T) {
	msgs := buildOpenAIMessages(Request{Instructions: "rules", Prompt: "task"})
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgRole(t, msgs[0]))
	assert.Equal(t, "rules", msgContent(t, msgs[0]))
	assert.Equal(t, "user", msgRole(t, msgs[1]))
	assert.Equal(t, "task", msgContent(t, msgs[1]))

	msgs = buildOpenAIMessages(Request{Prompt: "only"})
	require.Len(t, msgs, 1)
	assert.Equal(t, "user", msgRole(t, msgs[0]))
}

func TestBuildOpenAIParams_Defaults(t *testing.T) {
	params := buildOpenAIParams(Request{Prompt: "p"})
	assert.Equal(t, openai.ChatModel(defaultOpenAIModel), params.Model)
	assert.False(t, params.MaxCompletionTokens.Valid())

	params = buildOpenAIParams(Request{Prompt: "p", Model: "gpt-4.1", MaxTokens: 100})
	assert.Equal(t, openai.ChatModel("gpt-4.1"), params.Model)
	assert.Equal(t, int64(100), params.MaxCompletionTokens.Value)
}

func TestBuildAnthropicParams(t *testing.T) {
	params := buildAnthropicParams(Request{Instructions: "rules", Prompt: "task"})
	assert.Equal(t, int64(defaultMaxTokens), params.MaxTokens)
	assert.Equal(t, anthropic.ModelClaudeSonnet4_5_20250929, params.Model)
	require.Len(t, params.System, 1)
	assert.Equal(t, "rules", params.System[0].Text)
	assert.Equal(t, anthropic.CacheControlEphemeralTTLTTL5m, params.System[0].CacheControl.TTL)
	require.Len(t, params.Messages, 1)

	params = buildAnthropicParams(Request{Prompt: "task", MaxTokens: 64})
	assert.Empty(t, params.System)
	assert.Equal(t, int64(64), params.MaxTokens)
}

func TestSelectAnthropicModel(t *testing.T) {
	assert.Equal(t, anthropic.ModelClaudeHaiku4_5_20251001, selectAnthropicModel("claude-haiku-4.5"))
	assert.Equal(t, anthropic.Model("claude-custom"), selectAnthropicModel("claude-custom"))
}

// ---------------------------------------------------------------------------
// Error classification
// ---------------------------------------------------------------------------

func TestClassifyByStatusCode(t *testing.T) {
	cause := errors.New("boom")
	tests := []struct {
		code      int
		want      ErrorType
		retryable bool
	}{
		{429, ErrorTypeAPILimit, true},
		{408, ErrorTypeTransient, true},
		{409, ErrorTypeTransient, true},
		{400, ErrorTypeFatal, false},
		{401, ErrorTypeFatal, false},
		{500, ErrorTypeTransient, true},
		{503, ErrorTypeTransient, true},
	}
	for _, tt := range tests {
		got := classifyByStatusCode(tt.code, cause)
		assert.Equal(t, tt.want, got.Type, "status %d", tt.code)
		assert.Equal(t, tt.retryable, got.Retryable, "status %d", tt.code)
	}
}

func TestClassifyError_Messages(t *testing.T) {
	var e *Error
	require.ErrorAs(t, classifyError(errors.New("maximum context length exceeded")), &e)
	assert.Equal(t, ErrorTypeContextOverflow, e.Type)
	assert.False(t, e.Retryable)

	require.ErrorAs(t, classifyAnthropicError(errors.New("rate limit hit")), &e)
	assert.Equal(t, ErrorTypeAPILimit, e.Type)

	require.ErrorAs(t, classifyAnthropicError(errors.New("connection reset")), &e)
	assert.Equal(t, ErrorTypeTransient, e.Type)
	assert.Equal(t, "[Transient] Anthropic API error: connection reset", e.Error())
}

func TestNewClient(t *testing.T) {
	c, err := NewClient("OpenAI", "k")
	require.NoError(t, err)
	assert.IsType(t, &OpenAIClient{}, c)

	c, err = NewClient("", "k")
	require.NoError(t, err)
	assert.IsType(t, &AnthropicClient{}, c)

	_, err = NewClient("gemini", "k")
	assert.Error(t, err)
}
