package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/newthinker/tickertalk/internal/core"
	"github.com/newthinker/tickertalk/internal/metrics"
)

// CloseFunc releases per-session resources such as rendered charts.
type CloseFunc func(ctx context.Context, id string) error

// Store manages live sessions.
type Store struct {
	cfg      Config
	sessions map[string]*Session
	order    []string // Track insertion order for eviction
	maxSize  int
	ttl      time.Duration
	onClose  CloseFunc
	logger   *zap.Logger
	metrics  *metrics.Registry
	mu       sync.RWMutex
	now      func() time.Time
}

// NewStore creates a store holding at most maxSize sessions, each expiring
// after ttl without input. onClose may be nil.
func NewStore(cfg Config, maxSize int, ttl time.Duration, onClose CloseFunc) *Store {
	if maxSize <= 0 {
		maxSize = 100
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		cfg:      cfg,
		sessions: make(map[string]*Session),
		order:    make([]string, 0, maxSize),
		maxSize:  maxSize,
		ttl:      ttl,
		onClose:  onClose,
		logger:   logger,
		metrics:  cfg.Metrics,
		now:      time.Now,
	}
}

// Create starts a new session, evicting the oldest one at capacity.
func (s *Store) Create(ctx context.Context) *Session {
	sess := New(uuid.NewString(), s.cfg)

	s.mu.Lock()
	var evicted string
	if len(s.sessions) >= s.maxSize && len(s.order) > 0 {
		evicted = s.order[0]
		delete(s.sessions, evicted)
		s.order = s.order[1:]
	}
	s.sessions[sess.ID()] = sess
	s.order = append(s.order, sess.ID())
	count := len(s.sessions)
	s.mu.Unlock()

	s.metrics.SetSessionsActive(count)
	if evicted != "" {
		s.close(ctx, evicted, "evicted")
	}
	return sess
}

// Get retrieves a session by ID.
func (s *Store) Get(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, core.ErrSessionNotFound
	}
	return sess, nil
}

// Delete ends a session and releases its resources.
func (s *Store) Delete(ctx context.Context, id string) error {
	if !s.remove(id) {
		return core.ErrSessionNotFound
	}
	s.close(ctx, id, "deleted")
	return nil
}

// Sweep ends every session idle for longer than the TTL and returns how
// many were removed.
func (s *Store) Sweep(ctx context.Context) int {
	if s.ttl <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.ttl)

	s.mu.RLock()
	var expired []string
	for id, sess := range s.sessions {
		if sess.LastActive().Before(cutoff) {
			expired = append(expired, id)
		}
	}
	s.mu.RUnlock()

	n := 0
	for _, id := range expired {
		if s.remove(id) {
			s.close(ctx, id, "expired")
			n++
		}
	}
	return n
}

// Run sweeps every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(ctx); n > 0 {
				s.logger.Info("expired sessions swept", zap.Int("count", n))
			}
		}
	}
}

// CloseAll ends every live session and returns how many were closed.
func (s *Store) CloseAll(ctx context.Context) int {
	s.mu.RLock()
	ids := make([]string, len(s.order))
	copy(ids, s.order)
	s.mu.RUnlock()

	n := 0
	for _, id := range ids {
		if s.remove(id) {
			s.close(ctx, id, "shutdown")
			n++
		}
	}
	return n
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *Store) remove(id string) bool {
	s.mu.Lock()
	if _, ok := s.sessions[id]; !ok {
		s.mu.Unlock()
		return false
	}
	delete(s.sessions, id)
	for i, o := range s.order {
		if o == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	count := len(s.sessions)
	s.mu.Unlock()

	s.metrics.SetSessionsActive(count)
	return true
}

func (s *Store) close(ctx context.Context, id, reason string) {
	s.logger.Debug("session closed", zap.String("session", id), zap.String("reason", reason))
	if s.onClose == nil {
		return
	}
	if err := s.onClose(ctx, id); err != nil {
		s.logger.Warn("releasing session resources", zap.String("session", id), zap.Error(err))
	}
}
