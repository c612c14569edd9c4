// Package llmobs decorates a completion provider with logging, tracing and metrics.
package llmobs

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/newthinker/tickertalk/internal/core"
	"github.com/newthinker/tickertalk/internal/llm"
	"github.com/newthinker/tickertalk/internal/metrics"
	"github.com/newthinker/tickertalk/internal/trace"
)

// Provider wraps another llm.Provider.
type Provider struct {
	next    llm.Provider
	logger  *zap.Logger
	metrics *metrics.Registry
}

// Wrap decorates next. logger and reg may be nil.
func Wrap(next llm.Provider, logger *zap.Logger, reg *metrics.Registry) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{next: next, logger: logger, metrics: reg}
}

// Name returns the wrapped provider's name.
func (p *Provider) Name() string {
	return p.next.Name()
}

// Chat forwards to the wrapped provider and records the call.
func (p *Provider) Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	ctx, span := trace.StartSpan(ctx, "llm.Chat")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.provider", p.next.Name()),
		attribute.Int("llm.messages", len(req.Messages)),
		attribute.Int("llm.functions", len(req.Functions)),
	)

	start := time.Now()
	resp, err := p.next.Chat(ctx, req)
	elapsed := time.Since(start)

	if err != nil {
		trace.Fail(span, err)
		p.metrics.RecordCompletion(p.next.Name(), statusOf(err), elapsed.Seconds(), 0, 0)
		p.logger.Warn("completion failed",
			zap.String("provider", p.next.Name()),
			zap.Duration("duration", elapsed),
			zap.Error(err),
		)
		return nil, err
	}

	p.metrics.RecordCompletion(p.next.Name(), "ok", elapsed.Seconds(), resp.Usage.InputTokens, resp.Usage.OutputTokens)

	fields := []zap.Field{
		zap.String("provider", p.next.Name()),
		zap.Duration("duration", elapsed),
		zap.Int("input_tokens", resp.Usage.InputTokens),
		zap.Int("output_tokens", resp.Usage.OutputTokens),
		zap.String("finish_reason", resp.FinishReason),
	}
	if resp.Directive != nil {
		fields = append(fields, zap.String("directive", resp.Directive.Name))
		span.SetAttributes(attribute.String("llm.directive", resp.Directive.Name))
	}
	p.logger.Debug("completion", fields...)

	return resp, nil
}

func statusOf(err error) string {
	var e *core.Error
	if errors.As(err, &e) {
		return e.Code
	}
	return "error"
}
