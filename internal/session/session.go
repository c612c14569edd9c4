// Package session runs the conversation loop of one chat session and keeps
// the set of live sessions for the HTTP surface.
package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/newthinker/tickertalk/internal/conversation"
	"github.com/newthinker/tickertalk/internal/core"
	"github.com/newthinker/tickertalk/internal/dispatch"
	"github.com/newthinker/tickertalk/internal/llm"
	"github.com/newthinker/tickertalk/internal/metrics"
	"github.com/newthinker/tickertalk/internal/trace"
)

// State is the position of a session in its turn cycle.
type State int32

const (
	Idle State = iota
	AwaitingDirective
	Dispatching
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingDirective:
		return "awaiting_directive"
	case Dispatching:
		return "dispatching"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Config holds what every session shares.
type Config struct {
	Router       *dispatch.Router
	Completer    llm.Provider
	SystemPrompt string
	MaxTokens    int
	Temperature  float64
	Logger       *zap.Logger
	Metrics      *metrics.Registry
}

// Session owns one conversation and processes its turns one at a time.
type Session struct {
	id        string
	createdAt time.Time
	cfg       Config
	conv      *conversation.Conversation
	logger    *zap.Logger

	turn       sync.Mutex
	state      atomic.Int32
	lastActive atomic.Int64
}

// New creates an idle session with an empty conversation.
func New(id string, cfg Config) *Session {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	now := time.Now()
	s := &Session{
		id:        id,
		createdAt: now,
		cfg:       cfg,
		conv:      conversation.New(),
		logger:    cfg.Logger.With(zap.String("session", id)),
	}
	s.lastActive.Store(now.UnixNano())
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// CreatedAt returns when the session started.
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// State returns the current state.
func (s *Session) State() State { return State(s.state.Load()) }

// LastActive returns the time of the last submitted input.
func (s *Session) LastActive() time.Time { return time.Unix(0, s.lastActive.Load()) }

// Messages returns a copy of the transcript.
func (s *Session) Messages() []core.Message { return s.conv.Messages() }

func (s *Session) setState(st State) { s.state.Store(int32(st)) }

// Submit processes one user input to completion. Inputs on the same session
// are serialised. Failures are shown on display as a single user-facing line
// and returned for logging; the session is always Idle afterwards.
func (s *Session) Submit(ctx context.Context, input string, display dispatch.Display) error {
	input = strings.TrimSpace(input)
	if input == "" {
		return core.WrapError(core.ErrBadRequest, fmt.Errorf("empty input"))
	}

	s.turn.Lock()
	defer s.turn.Unlock()
	defer s.setState(Idle)

	s.lastActive.Store(time.Now().UnixNano())

	ctx, span := trace.StartSpan(ctx, "session.Submit")
	defer span.End()
	span.SetAttributes(attribute.String("session", s.id))

	s.conv.AppendUser(input)
	s.setState(AwaitingDirective)

	resp, err := s.complete(ctx)
	if err != nil {
		trace.Fail(span, err)
		return s.fail(err, display)
	}

	if resp.Directive == nil {
		s.conv.AppendAssistant(resp.Content)
		display.ShowText(resp.Content)
		s.cfg.Metrics.RecordTurn("text")
		return nil
	}

	s.setState(Dispatching)
	span.SetAttributes(attribute.String("function", resp.Directive.Name))

	res, err := s.cfg.Router.Dispatch(ctx, s.conv, s.id, resp.Directive, display)
	if err != nil {
		trace.Fail(span, err)
		return s.fail(err, display)
	}

	if _, ok := res.(core.ChartRef); ok {
		s.cfg.Metrics.RecordTurn("chart")
	} else {
		s.cfg.Metrics.RecordTurn("function")
	}
	return nil
}

func (s *Session) complete(ctx context.Context) (*llm.ChatResponse, error) {
	if s.cfg.Completer == nil {
		return nil, core.WrapError(core.ErrCompletionService, fmt.Errorf("no completion provider configured"))
	}
	return s.cfg.Completer.Chat(ctx, llm.ChatRequest{
		SystemPrompt: s.cfg.SystemPrompt,
		Messages:     s.conv.Messages(),
		Functions:    s.cfg.Router.Catalogue(),
		MaxTokens:    s.cfg.MaxTokens,
		Temperature:  s.cfg.Temperature,
	})
}

func (s *Session) fail(err error, display dispatch.Display) error {
	s.cfg.Metrics.RecordTurn("error")
	s.logger.Warn("turn failed", zap.String("state", s.State().String()), zap.Error(err))
	display.ShowText(core.UserMessage(err))
	return err
}
