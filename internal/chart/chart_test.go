package chart

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newthinker/tickertalk/internal/core"
	"github.com/newthinker/tickertalk/internal/storage/archive"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func testSeries(ticker string, n int) core.PriceSeries {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	points := make([]core.PricePoint, n)
	for i := range points {
		points[i] = core.PricePoint{
			Date:  start.AddDate(0, 0, i),
			Close: 100 + float64(i%17) - float64(i%5),
		}
	}
	return core.PriceSeries{Ticker: ticker, Points: points}
}

func newTestRenderer(t *testing.T) (*Renderer, *archive.LocalFS) {
	t.Helper()
	fs, err := archive.NewLocalFS(t.TempDir())
	require.NoError(t, err)
	r := NewRenderer(fs, Config{Width: 640, Height: 320, OverlayWindow: 20}, nil)
	r.now = func() time.Time { return time.Unix(1700000000, 0) }
	return r, fs
}

func TestRender_WritesPNG(t *testing.T) {
	r, fs := newTestRenderer(t)
	ctx := context.Background()

	ref, err := r.Render(ctx, "sess-1", testSeries("MSFT", 120))
	require.NoError(t, err)

	assert.Equal(t, "MSFT", ref.Ticker)
	assert.Equal(t, "charts/sess-1/MSFT-1700000000.png", ref.Path)
	assert.Equal(t, fs.Location(ref.Path), ref.URI)

	data, err := fs.Read(ctx, ref.Path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, pngMagic), "expected PNG header")
}

func TestRender_ShortSeries(t *testing.T) {
	r, _ := newTestRenderer(t)
	ctx := context.Background()

	_, err := r.Render(ctx, "s", core.PriceSeries{Ticker: "X"})
	assert.True(t, errors.Is(err, core.ErrEmptySeries))

	_, err = r.Render(ctx, "s", testSeries("X", 1))
	assert.True(t, errors.Is(err, core.ErrInsufficientData))
}

func TestRender_WithoutOverlay(t *testing.T) {
	r, _ := newTestRenderer(t)
	ref, err := r.Render(context.Background(), "s", testSeries("AAPL", 10))
	require.NoError(t, err)
	assert.NotEmpty(t, ref.Path)
}

func TestPurge_RemovesOnlyScope(t *testing.T) {
	r, fs := newTestRenderer(t)
	ctx := context.Background()

	_, err := r.Render(ctx, "a", testSeries("MSFT", 30))
	require.NoError(t, err)
	r.now = func() time.Time { return time.Unix(1700000100, 0) }
	_, err = r.Render(ctx, "a", testSeries("AAPL", 30))
	require.NoError(t, err)
	kept, err := r.Render(ctx, "b", testSeries("MSFT", 30))
	require.NoError(t, err)

	n, err := r.Purge(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	remaining, err := fs.List(ctx, "charts")
	require.NoError(t, err)
	assert.Equal(t, []string{kept.Path}, remaining)

	n, err = r.Purge(ctx, "never-used")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPath_Sanitizes(t *testing.T) {
	at := time.Unix(42, 0)
	assert.Equal(t, "charts/sess/BRK.B-42.png", Path("sess", "BRK.B", at))
	assert.Equal(t, "charts/_/.._-42.png", Path("..", "../", at))
	assert.Equal(t, "charts/a_b/X-42.png", Path("a/b", "X", at))
}
