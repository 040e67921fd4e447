// Package llm asks a language model to propose file commands for a
// sandbox. Providers only see text: the instructions, the rendered tree and
// the task. Their reply is plain text that the agent parses into commands.
package llm

import (
	"context"
	"fmt"
	"net/http"
)

// Request is one completion request.
type Request struct {
	// Instructions is the system prompt.
	Instructions string
	// Prompt is the user turn: task, tree and any earlier results.
	Prompt string

	Model       string
	MaxTokens   int
	Temperature float64
}

// Response is the model's reply.
type Response struct {
	Text         string
	InputTokens  int
	OutputTokens int
}

// Client is the interface for LLM providers.
type Client interface {
	Complete(ctx context.Context, req Request) (Response, error)
}

// ErrorType categorizes provider errors.
type ErrorType int

const (
	ErrorTypeTransient       ErrorType = iota // Network, timeout, 5xx
	ErrorTypeContextOverflow                  // Prompt too large
	ErrorTypeAPILimit                         // Rate limited
	ErrorTypeFatal                            // Bad request, auth
)

// String returns the string representation of ErrorType
func (e ErrorType) String() string {
	switch e {
	case ErrorTypeTransient:
		return "Transient"
	case ErrorTypeContextOverflow:
		return "ContextOverflow"
	case ErrorTypeAPILimit:
		return "APILimit"
	case ErrorTypeFatal:
		return "Fatal"
	default:
		return "Unknown"
	}
}

// Error is a classified provider error.
type Error struct {
	Type      ErrorType
	Retryable bool
	Message   string
}

// Error implements the error interface
func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

func newError(t ErrorType, retryable bool, format string, args ...any) *Error {
	return &Error{Type: t, Retryable: retryable, Message: fmt.Sprintf(format, args...)}
}

// classifyByStatusCode maps an HTTP status code to an Error.
// Shared by all provider error classifiers.
//
//   - 429: rate limit, retryable
//   - 408, 409: transient, retryable
//   - other 4xx: fatal
//   - 5xx: transient, retryable
func classifyByStatusCode(statusCode int, err error) *Error {
	switch {
	case statusCode == http.StatusTooManyRequests:
		return newError(ErrorTypeAPILimit, true, "rate limit (%d): %v", statusCode, err)
	case statusCode == http.StatusRequestTimeout || statusCode == http.StatusConflict:
		return newError(ErrorTypeTransient, true, "retryable error (%d): %v", statusCode, err)
	case statusCode >= 400 && statusCode < 500:
		return newError(ErrorTypeFatal, false, "client error (%d): %v", statusCode, err)
	case statusCode >= 500:
		return newError(ErrorTypeTransient, true, "server error (%d): %v", statusCode, err)
	default:
		return newError(ErrorTypeTransient, true, "unexpected status (%d): %v", statusCode, err)
	}
}
