package core

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Result is the value produced by one registry operation. The concrete type
// tells the caller how to route it: ChartRef goes straight to the display,
// everything else is serialised with Text and shown to the model.
type Result interface {
	Text() (string, error)
	isResult()
}

// Scalar is a single latest value such as a price, SMA, EMA or RSI.
type Scalar float64

// Text rounds to two decimals and trims trailing zeros.
func (s Scalar) Text() (string, error) {
	return decimal.NewFromFloat(float64(s)).Round(2).String(), nil
}

// MACDResult holds the final MACD line, signal line and histogram values.
type MACDResult struct {
	MACD      float64 `json:"macd"`
	Signal    float64 `json:"signal"`
	Histogram float64 `json:"histogram"`
}

// Text renders "macd,signal,histogram".
func (m MACDResult) Text() (string, error) {
	return fmt.Sprintf("%s,%s,%s",
		decimal.NewFromFloat(m.MACD).Round(4).String(),
		decimal.NewFromFloat(m.Signal).Round(4).String(),
		decimal.NewFromFloat(m.Histogram).Round(4).String(),
	), nil
}

// HolderTable lists institutional holders.
type HolderTable []Holder

func (h HolderTable) Text() (string, error) {
	if len(h) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal([]Holder(h))
	if err != nil {
		return "", fmt.Errorf("encoding holders: %w", err)
	}
	return string(b), nil
}

// NewsList lists recent news items.
type NewsList []NewsItem

func (n NewsList) Text() (string, error) {
	if len(n) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal([]NewsItem(n))
	if err != nil {
		return "", fmt.Errorf("encoding news: %w", err)
	}
	return string(b), nil
}

// ChartRef points at a rendered chart artifact.
type ChartRef struct {
	Ticker string `json:"ticker"`
	Path   string `json:"path"` // storage-relative path
	URI    string `json:"uri"`  // file path or s3:// location
}

// Text returns the artifact location.
func (c ChartRef) Text() (string, error) {
	return c.URI, nil
}

func (Scalar) isResult()      {}
func (MACDResult) isResult()  {}
func (HolderTable) isResult() {}
func (NewsList) isResult()    {}
func (ChartRef) isResult()    {}
