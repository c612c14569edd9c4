package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/newthinker/tickertalk/internal/core"
)

const (
	defaultChartURL  = "https://query1.finance.yahoo.com/v8/finance/chart"
	defaultSearchURL = "https://query2.finance.yahoo.com/v1/finance/search"
	defaultQuotePage = "https://finance.yahoo.com/quote"
	defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
	defaultTimeout   = 10 * time.Second
)

// validSymbol matches stock symbols like AAPL, BRK-B, 600519.SH, 0700.HK
var validSymbol = regexp.MustCompile(`^[A-Za-z0-9^][A-Za-z0-9\-]{0,9}(\.[A-Za-z]{1,4})?$`)

// validateSymbol checks if a symbol has valid format
func validateSymbol(symbol string) error {
	if symbol == "" {
		return core.WrapError(core.ErrUnknownTicker, fmt.Errorf("symbol cannot be empty"))
	}
	if len(symbol) > 20 {
		return core.WrapError(core.ErrUnknownTicker, fmt.Errorf("symbol too long: %s", symbol))
	}
	if !validSymbol.MatchString(symbol) {
		return core.WrapError(core.ErrUnknownTicker, fmt.Errorf("invalid symbol format: %s", symbol))
	}
	return nil
}

// Config holds Yahoo endpoint settings. Zero values use the public endpoints.
type Config struct {
	ChartURL  string
	SearchURL string
	QuotePage string
	UserAgent string
	Timeout   time.Duration
}

// Client talks to the Yahoo Finance chart, search and quote pages.
type Client struct {
	client *http.Client
	config Config
	now    func() time.Time
}

// New creates a new Yahoo client
func New(cfg Config) *Client {
	if cfg.ChartURL == "" {
		cfg.ChartURL = defaultChartURL
	}
	if cfg.SearchURL == "" {
		cfg.SearchURL = defaultSearchURL
	}
	if cfg.QuotePage == "" {
		cfg.QuotePage = defaultQuotePage
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		client: &http.Client{Timeout: cfg.Timeout},
		config: cfg,
		now:    time.Now,
	}
}

func (c *Client) Name() string {
	return "yahoo"
}

// toYahooSymbol converts internal symbol format to Yahoo format
func toYahooSymbol(symbol string) string {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	// Shanghai stocks: 600519.SH -> 600519.SS
	if strings.HasSuffix(symbol, ".SH") {
		return strings.TrimSuffix(symbol, ".SH") + ".SS"
	}
	return symbol
}

// get issues a GET and maps transport and status failures onto the
// provider error taxonomy.
func (c *Client) get(ctx context.Context, rawURL, accept string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, core.WrapError(core.ErrProviderUnavailable, fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", accept)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, core.WrapError(core.ErrProviderUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		resp.Body.Close()
		return nil, core.WrapError(core.ErrUnknownTicker, fmt.Errorf("yahoo returned status %d", resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		resp.Body.Close()
		return nil, core.WrapError(core.ErrProviderUnavailable, fmt.Errorf("yahoo returned status %d", resp.StatusCode))
	}
	return resp, nil
}

// FetchDailyCloses fetches daily closes covering lookback, oldest first.
func (c *Client) FetchDailyCloses(ctx context.Context, ticker string, lookback time.Duration) (core.PriceSeries, error) {
	if err := validateSymbol(ticker); err != nil {
		return core.PriceSeries{}, err
	}
	symbol := toYahooSymbol(ticker)
	end := c.now()
	start := end.Add(-lookback)

	u := fmt.Sprintf("%s/%s?interval=1d&period1=%d&period2=%d&events=history",
		c.config.ChartURL, url.PathEscape(symbol), start.Unix(), end.Unix())

	resp, err := c.get(ctx, u, "application/json")
	if err != nil {
		return core.PriceSeries{}, fmt.Errorf("fetching history for %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	var result chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return core.PriceSeries{}, core.WrapError(core.ErrProviderUnavailable, fmt.Errorf("decoding response: %w", err))
	}

	if e := result.Chart.Error; e != nil {
		if strings.EqualFold(e.Code, "Not Found") {
			return core.PriceSeries{}, core.WrapError(core.ErrUnknownTicker, errors.New(e.Description))
		}
		return core.PriceSeries{}, core.WrapError(core.ErrProviderUnavailable, fmt.Errorf("yahoo error: %s", e.Description))
	}

	if len(result.Chart.Result) == 0 || len(result.Chart.Result[0].Indicators.Quote) == 0 {
		return core.PriceSeries{}, core.WrapError(core.ErrUnknownTicker, fmt.Errorf("no data for symbol: %s", symbol))
	}

	r := result.Chart.Result[0]
	closes := r.Indicators.Quote[0].Close

	series := core.PriceSeries{
		Ticker: strings.ToUpper(ticker),
		Points: make([]core.PricePoint, 0, len(r.Timestamp)),
	}
	for i, ts := range r.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue // Skip missing data
		}
		series.Points = append(series.Points, core.PricePoint{
			Date:  time.Unix(ts, 0).UTC(),
			Close: *closes[i],
		})
	}

	return series, nil
}

// Yahoo API response types
type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Meta       chartMeta  `json:"meta"`
	Timestamp  []int64    `json:"timestamp"`
	Indicators indicators `json:"indicators"`
}

type chartMeta struct {
	Symbol             string  `json:"symbol"`
	Currency           string  `json:"currency"`
	RegularMarketPrice float64 `json:"regularMarketPrice"`
}

type indicators struct {
	Quote []quoteIndicator `json:"quote"`
}

type quoteIndicator struct {
	Close []*float64 `json:"close"`
}
