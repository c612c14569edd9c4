// Package chart renders price history as PNG line charts into archive storage.
package chart

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"regexp"
	"time"

	gochart "github.com/wcharczuk/go-chart/v2"
	"go.uber.org/zap"

	"github.com/newthinker/tickertalk/internal/core"
	"github.com/newthinker/tickertalk/internal/indicator"
	"github.com/newthinker/tickertalk/internal/storage/archive"
)

const (
	contentType = "image/png"
	rootDir     = "charts"

	// DefaultOverlayWindow is the SMA window drawn over the close line.
	DefaultOverlayWindow = 50
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// Config controls chart rendering.
type Config struct {
	Width  int
	Height int
	// OverlayWindow draws an SMA line when positive and the series is long enough.
	OverlayWindow int
}

// Renderer draws price charts and stores them per session scope.
type Renderer struct {
	store  archive.Storage
	config Config
	logger *zap.Logger
	now    func() time.Time
}

// NewRenderer creates a renderer writing into store.
func NewRenderer(store archive.Storage, cfg Config, logger *zap.Logger) *Renderer {
	if cfg.Width <= 0 {
		cfg.Width = 1024
	}
	if cfg.Height <= 0 {
		cfg.Height = 512
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{
		store:  store,
		config: cfg,
		logger: logger,
		now:    time.Now,
	}
}

// Render draws series and writes the PNG under charts/<scope>/.
func (r *Renderer) Render(ctx context.Context, scope string, series core.PriceSeries) (core.ChartRef, error) {
	if series.Len() == 0 {
		return core.ChartRef{}, core.ErrEmptySeries
	}
	if series.Len() < 2 {
		return core.ChartRef{}, core.WrapError(core.ErrInsufficientData,
			fmt.Errorf("chart needs at least 2 points, have %d", series.Len()))
	}

	png, err := r.draw(series)
	if err != nil {
		return core.ChartRef{}, fmt.Errorf("rendering %s chart: %w", series.Ticker, err)
	}

	p := Path(scope, series.Ticker, r.now())
	if err := r.store.Write(ctx, p, png, contentType); err != nil {
		return core.ChartRef{}, fmt.Errorf("storing chart: %w", err)
	}

	r.logger.Debug("chart rendered",
		zap.String("ticker", series.Ticker),
		zap.String("path", p),
		zap.Int("bytes", len(png)),
	)

	return core.ChartRef{
		Ticker: series.Ticker,
		Path:   p,
		URI:    r.store.Location(p),
	}, nil
}

func (r *Renderer) draw(series core.PriceSeries) ([]byte, error) {
	dates := series.Dates()
	closes := series.Closes()

	lines := []gochart.Series{
		gochart.TimeSeries{
			Name:    series.Ticker,
			XValues: dates,
			YValues: closes,
		},
	}

	w := r.config.OverlayWindow
	if w > 0 && len(closes) > w {
		sma := indicator.SMA(closes, w)
		lines = append(lines, gochart.TimeSeries{
			Name:    fmt.Sprintf("SMA %d", w),
			XValues: dates[w-1:],
			YValues: sma,
			Style: gochart.Style{
				StrokeColor:     gochart.ColorAlternateGray,
				StrokeDashArray: []float64{5.0, 5.0},
			},
		})
	}

	graph := gochart.Chart{
		Title:  fmt.Sprintf("%s Stock Price Over Last Year", series.Ticker),
		Width:  r.config.Width,
		Height: r.config.Height,
		Background: gochart.Style{
			Padding: gochart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: gochart.XAxis{
			Name:           "Date",
			ValueFormatter: gochart.TimeDateValueFormatter,
		},
		YAxis: gochart.YAxis{
			Name: "Stock Price ($)",
		},
		Series: lines,
	}
	if len(lines) > 1 {
		graph.Elements = []gochart.Renderable{gochart.Legend(&graph)}
	}

	var buf bytes.Buffer
	if err := graph.Render(gochart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Purge removes every chart stored under scope and returns how many were deleted.
func (r *Renderer) Purge(ctx context.Context, scope string) (int, error) {
	paths, err := r.store.List(ctx, ScopeDir(scope)+"/")
	if err != nil {
		return 0, fmt.Errorf("listing charts for %s: %w", scope, err)
	}
	deleted := 0
	for _, p := range paths {
		if err := r.store.Delete(ctx, p); err != nil {
			return deleted, fmt.Errorf("deleting %s: %w", p, err)
		}
		deleted++
	}
	if deleted > 0 {
		r.logger.Debug("charts purged", zap.String("scope", scope), zap.Int("count", deleted))
	}
	return deleted, nil
}

// Open returns the PNG bytes stored at p.
func (r *Renderer) Open(ctx context.Context, p string) ([]byte, error) {
	return r.store.Read(ctx, p)
}

// ScopeDir is the storage directory holding a scope's charts.
func ScopeDir(scope string) string {
	return path.Join(rootDir, sanitize(scope))
}

// Path builds charts/<scope>/<ticker>-<unix>.png.
func Path(scope, ticker string, at time.Time) string {
	return path.Join(ScopeDir(scope), fmt.Sprintf("%s-%d.png", sanitize(ticker), at.Unix()))
}

func sanitize(s string) string {
	s = unsafeChars.ReplaceAllString(s, "_")
	if s == "" || s == "." || s == ".." {
		return "_"
	}
	return s
}
