package core

import "time"

// PricePoint is one daily close.
type PricePoint struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// PriceSeries is an ordered, chronological run of daily closes for one ticker.
// Providers hand out fresh values; callers must not modify Points.
type PriceSeries struct {
	Ticker string       `json:"ticker"`
	Points []PricePoint `json:"points"`
}

// Len returns the number of points in the series
func (s PriceSeries) Len() int {
	return len(s.Points)
}

// Closes returns a copy of the close prices in chronological order.
func (s PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.Points))
	for i, p := range s.Points {
		closes[i] = p.Close
	}
	return closes
}

// Dates returns a copy of the point dates in chronological order.
func (s PriceSeries) Dates() []time.Time {
	dates := make([]time.Time, len(s.Points))
	for i, p := range s.Points {
		dates[i] = p.Date
	}
	return dates
}

// Holder is one row of an institutional holders table.
type Holder struct {
	Name         string    `json:"holder"`
	Shares       int64     `json:"shares"`
	DateReported time.Time `json:"date_reported"`
	PercentOut   float64   `json:"pct_out"`
	Value        float64   `json:"value"`
}

// NewsItem represents a news article about a ticker.
type NewsItem struct {
	Title       string    `json:"title"`
	Publisher   string    `json:"publisher,omitempty"`
	URL         string    `json:"url,omitempty"`
	Tickers     []string  `json:"tickers,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}

// Role identifies the author of a conversation message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleFunction  Role = "function"
)

// Message is one entry of a conversation transcript.
// Name is set only when Role is RoleFunction.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
