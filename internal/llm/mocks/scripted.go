// Package mocks provides a scripted completion provider for testing.
package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/newthinker/tickertalk/internal/core"
	"github.com/newthinker/tickertalk/internal/llm"
)

// Step is one scripted reply.
type Step struct {
	Response *llm.ChatResponse
	Err      error
}

// Reply scripts a plain text answer.
func Reply(text string) Step {
	return Step{Response: &llm.ChatResponse{Content: text, FinishReason: "stop"}}
}

// Call scripts a function call directive.
func Call(name string, args map[string]any) Step {
	return Step{Response: &llm.ChatResponse{
		Directive:    &core.Directive{Name: name, Arguments: args},
		FinishReason: "function_call",
	}}
}

// Fail scripts an error.
func Fail(err error) Step {
	return Step{Err: err}
}

// Scripted replays Steps in order and records every request it receives.
type Scripted struct {
	mu       sync.Mutex
	steps    []Step
	requests []llm.ChatRequest
}

// NewScripted creates a provider that answers with steps in order.
func NewScripted(steps ...Step) *Scripted {
	return &Scripted{steps: steps}
}

// Name returns the provider name.
func (s *Scripted) Name() string {
	return "scripted"
}

// Chat returns the next scripted step. Running out of steps is an error.
func (s *Scripted) Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req.Messages = append([]core.Message(nil), req.Messages...)
	s.requests = append(s.requests, req)

	if len(s.steps) == 0 {
		return nil, core.WrapError(core.ErrCompletionService, fmt.Errorf("script exhausted"))
	}
	step := s.steps[0]
	s.steps = s.steps[1:]
	return step.Response, step.Err
}

// Requests returns copies of the requests seen so far.
func (s *Scripted) Requests() []llm.ChatRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]llm.ChatRequest(nil), s.requests...)
}

// Remaining returns the number of unused steps.
func (s *Scripted) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.steps)
}
