// Package dispatch resolves completion directives against the function
// registry and routes their results.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/newthinker/tickertalk/internal/conversation"
	"github.com/newthinker/tickertalk/internal/core"
	"github.com/newthinker/tickertalk/internal/llm"
	"github.com/newthinker/tickertalk/internal/metrics"
	"github.com/newthinker/tickertalk/internal/registry"
	"github.com/newthinker/tickertalk/internal/trace"
)

// Display is the chat surface results are shown on.
type Display interface {
	ShowText(text string)
	ShowImage(ref core.ChartRef)
}

// Config holds router dependencies and the parameters of the summary round.
type Config struct {
	Registry     *registry.Registry
	Completer    llm.Provider
	Env          registry.Env
	SystemPrompt string
	MaxTokens    int
	Temperature  float64
	Logger       *zap.Logger
	Metrics      *metrics.Registry
}

// Router validates directives, invokes registry entries and routes results.
type Router struct {
	registry     *registry.Registry
	completer    llm.Provider
	env          registry.Env
	systemPrompt string
	maxTokens    int
	temperature  float64
	logger       *zap.Logger
	metrics      *metrics.Registry
}

// NewRouter creates a router. A nil Registry means registry.Default().
func NewRouter(cfg Config) *Router {
	if cfg.Registry == nil {
		cfg.Registry = registry.Default()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Router{
		registry:     cfg.Registry,
		completer:    cfg.Completer,
		env:          cfg.Env,
		systemPrompt: cfg.SystemPrompt,
		maxTokens:    cfg.MaxTokens,
		temperature:  cfg.Temperature,
		logger:       cfg.Logger,
		metrics:      cfg.Metrics,
	}
}

// Catalogue returns the function specs to advertise to the completion service.
func (r *Router) Catalogue() []core.FunctionSpec {
	return r.registry.Specs()
}

// Resolve validates d against the registry and runs the named operation in
// the session identified by scope. It never touches a conversation.
func (r *Router) Resolve(ctx context.Context, scope string, d *core.Directive) (core.Result, error) {
	if d == nil {
		return nil, core.WrapError(core.ErrUnknownFunction, fmt.Errorf("empty directive"))
	}

	ctx, span := trace.StartSpan(ctx, "dispatch.Resolve")
	defer span.End()
	span.SetAttributes(attribute.String("function", d.Name), attribute.String("scope", scope))

	start := time.Now()
	res, err := r.resolve(ctx, scope, d)
	elapsed := time.Since(start)

	status := "ok"
	if err != nil {
		status = codeOf(err)
		trace.Fail(span, err)
		r.logger.Warn("dispatch failed",
			zap.String("function", d.Name),
			zap.String("scope", scope),
			zap.Duration("duration", elapsed),
			zap.Error(err),
		)
	} else {
		r.logger.Info("dispatch",
			zap.String("function", d.Name),
			zap.String("scope", scope),
			zap.Duration("duration", elapsed),
		)
		if _, ok := res.(core.ChartRef); ok {
			r.metrics.RecordChart()
		}
	}
	r.metrics.RecordDispatch(d.Name, status, elapsed.Seconds())

	return res, err
}

func (r *Router) resolve(ctx context.Context, scope string, d *core.Directive) (core.Result, error) {
	entry, ok := r.registry.Lookup(d.Name)
	if !ok {
		return nil, core.WrapError(core.ErrUnknownFunction, fmt.Errorf("%q is not in the catalogue", d.Name))
	}

	args, err := Bind(entry.Spec, d.Arguments)
	if err != nil {
		return nil, err
	}

	env := r.env
	env.Scope = scope
	return entry.Invoke(ctx, env, args)
}

// Dispatch resolves d and routes the result. Chart references are appended
// as a function message and shown directly. Every other result is appended
// as a function message, the conversation is re-submitted without the
// catalogue, and the assistant summary is appended and shown. On a
// resolution failure the conversation is left unchanged.
func (r *Router) Dispatch(ctx context.Context, conv *conversation.Conversation, scope string, d *core.Directive, display Display) (core.Result, error) {
	res, err := r.Resolve(ctx, scope, d)
	if err != nil {
		return nil, err
	}

	text, err := res.Text()
	if err != nil {
		return nil, fmt.Errorf("serialising %s result: %w", d.Name, err)
	}

	conv.AppendFunction(d.Name, text)
	if ref, ok := res.(core.ChartRef); ok {
		display.ShowImage(ref)
		return res, nil
	}

	summary, err := r.summarise(ctx, conv)
	if err != nil {
		return res, err
	}
	conv.AppendAssistant(summary)
	display.ShowText(summary)
	return res, nil
}

func (r *Router) summarise(ctx context.Context, conv *conversation.Conversation) (string, error) {
	if r.completer == nil {
		return "", core.WrapError(core.ErrCompletionService, fmt.Errorf("no completion provider configured"))
	}
	resp, err := r.completer.Chat(ctx, llm.ChatRequest{
		SystemPrompt: r.systemPrompt,
		Messages:     conv.Messages(),
		MaxTokens:    r.maxTokens,
		Temperature:  r.temperature,
	})
	if err != nil {
		return "", err
	}
	if resp.Directive != nil {
		return "", core.WrapError(core.ErrCompletionService,
			fmt.Errorf("summary round returned a function call to %s", resp.Directive.Name))
	}
	return resp.Content, nil
}

func codeOf(err error) string {
	var e *core.Error
	if errors.As(err, &e) {
		return e.Code
	}
	return "error"
}
