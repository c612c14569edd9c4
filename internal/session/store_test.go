package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newthinker/tickertalk/internal/core"
)

type closeRecorder struct {
	mu  sync.Mutex
	ids []string
}

func (c *closeRecorder) close(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ids = append(c.ids, id)
	return nil
}

func TestStore_CreateGetDelete(t *testing.T) {
	rec := &closeRecorder{}
	store := NewStore(Config{}, 10, time.Hour, rec.close)
	ctx := context.Background()

	sess := store.Create(ctx)
	require.NotEmpty(t, sess.ID())
	assert.Equal(t, 1, store.Len())

	got, err := store.Get(sess.ID())
	require.NoError(t, err)
	assert.Same(t, sess, got)

	require.NoError(t, store.Delete(ctx, sess.ID()))
	assert.Equal(t, []string{sess.ID()}, rec.ids)

	_, err = store.Get(sess.ID())
	assert.True(t, errors.Is(err, core.ErrSessionNotFound))
	assert.True(t, errors.Is(store.Delete(ctx, sess.ID()), core.ErrSessionNotFound))
}

func TestStore_EvictsOldest(t *testing.T) {
	rec := &closeRecorder{}
	store := NewStore(Config{}, 2, time.Hour, rec.close)
	ctx := context.Background()

	first := store.Create(ctx)
	second := store.Create(ctx)
	third := store.Create(ctx)

	assert.Equal(t, 2, store.Len())
	_, err := store.Get(first.ID())
	assert.Error(t, err)
	_, err = store.Get(second.ID())
	assert.NoError(t, err)
	_, err = store.Get(third.ID())
	assert.NoError(t, err)
	assert.Equal(t, []string{first.ID()}, rec.ids)
}

func TestStore_Sweep(t *testing.T) {
	rec := &closeRecorder{}
	store := NewStore(Config{}, 10, time.Minute, rec.close)
	ctx := context.Background()

	stale := store.Create(ctx)
	fresh := store.Create(ctx)
	fresh.lastActive.Store(time.Now().Add(2 * time.Minute).UnixNano())

	store.now = func() time.Time { return time.Now().Add(90 * time.Second) }

	assert.Equal(t, 1, store.Sweep(ctx))
	_, err := store.Get(stale.ID())
	assert.Error(t, err)
	_, err = store.Get(fresh.ID())
	assert.NoError(t, err)
	assert.Equal(t, []string{stale.ID()}, rec.ids)
}

func TestStore_NoTTLNeverSweeps(t *testing.T) {
	store := NewStore(Config{}, 10, 0, nil)
	store.Create(context.Background())
	store.now = func() time.Time { return time.Now().Add(24 * time.Hour) }

	assert.Zero(t, store.Sweep(context.Background()))
	assert.Equal(t, 1, store.Len())
}

func TestStore_CloseErrorsAreLogged(t *testing.T) {
	store := NewStore(Config{}, 10, time.Hour, func(ctx context.Context, id string) error {
		return errors.New("bucket unavailable")
	})
	sess := store.Create(context.Background())
	assert.NoError(t, store.Delete(context.Background(), sess.ID()))
}

func TestStore_CloseAll(t *testing.T) {
	rec := &closeRecorder{}
	store := NewStore(Config{}, 10, 0, rec.close)
	ctx := context.Background()

	a := store.Create(ctx)
	b := store.Create(ctx)

	assert.Equal(t, 2, store.CloseAll(ctx))
	assert.Equal(t, 0, store.Len())
	assert.Equal(t, []string{a.ID(), b.ID()}, rec.ids)
	assert.Equal(t, 0, store.CloseAll(ctx))
}
