package handler

import (
	"strings"
	"sync"

	"github.com/newthinker/tickertalk/internal/core"
)

// ChartRoute is the URL prefix charts are served under.
const ChartRoute = "/api/v1/charts/"

// Output is one item a turn produced for the user.
type Output struct {
	Type   string `json:"type"` // "text" or "image"
	Text   string `json:"text,omitempty"`
	Ticker string `json:"ticker,omitempty"`
	URI    string `json:"uri,omitempty"`
	URL    string `json:"url,omitempty"`
}

// Outputs collects what a session shows during one turn.
type Outputs struct {
	mu    sync.Mutex
	items []Output
}

// ShowText records a text output.
func (o *Outputs) ShowText(text string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.items = append(o.items, Output{Type: "text", Text: text})
}

// ShowImage records a chart output with a URL it can be fetched from.
func (o *Outputs) ShowImage(ref core.ChartRef) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.items = append(o.items, Output{
		Type:   "image",
		Ticker: ref.Ticker,
		URI:    ref.URI,
		URL:    ChartRoute + strings.TrimPrefix(ref.Path, "charts/"),
	})
}

// Items returns the recorded outputs in order.
func (o *Outputs) Items() []Output {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]Output, len(o.items))
	copy(out, o.items)
	return out
}
