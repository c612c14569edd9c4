// Package llm defines the completion client used by the conversation loop.
package llm

import (
	"context"

	"github.com/newthinker/tickertalk/internal/core"
)

// Provider defines the interface for LLM providers
type Provider interface {
	Name() string
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// ChatRequest holds the request parameters. Functions is the catalogue the
// model may call; an empty catalogue means plain text only.
type ChatRequest struct {
	SystemPrompt string
	Messages     []core.Message
	Functions    []core.FunctionSpec
	MaxTokens    int
	Temperature  float64
}

// ChatResponse holds the response from the LLM. Exactly one of Content or
// Directive is meaningful: a non-nil Directive is a function call request.
type ChatResponse struct {
	Content      string
	Directive    *core.Directive
	Usage        Usage
	FinishReason string
}

// Usage tracks token consumption
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// DefaultMaxTokens is used when ChatRequest.MaxTokens is not positive.
const DefaultMaxTokens = 1024

// MaxTokensOrDefault returns n or DefaultMaxTokens.
func MaxTokensOrDefault(n int) int {
	if n <= 0 {
		return DefaultMaxTokens
	}
	return n
}
