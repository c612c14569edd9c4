package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/newthinker/tickertalk/internal/core"
)

// GetNews returns up to limit recent news items for ticker.
func (c *Client) GetNews(ctx context.Context, ticker string, limit int) ([]core.NewsItem, error) {
	if err := validateSymbol(ticker); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}
	symbol := toYahooSymbol(ticker)

	q := url.Values{}
	q.Set("q", symbol)
	q.Set("quotesCount", "0")
	q.Set("newsCount", fmt.Sprintf("%d", limit))

	resp, err := c.get(ctx, c.config.SearchURL+"?"+q.Encode(), "application/json")
	if err != nil {
		return nil, fmt.Errorf("fetching news for %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	var result searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, core.WrapError(core.ErrProviderUnavailable, fmt.Errorf("decoding news: %w", err))
	}

	items := make([]core.NewsItem, 0, len(result.News))
	for _, n := range result.News {
		if strings.TrimSpace(n.Title) == "" {
			continue
		}
		items = append(items, core.NewsItem{
			Title:       n.Title,
			Publisher:   n.Publisher,
			URL:         n.Link,
			Tickers:     n.RelatedTickers,
			PublishedAt: time.Unix(n.ProviderPublishTime, 0).UTC(),
		})
		if len(items) == limit {
			break
		}
	}
	return items, nil
}

type searchResponse struct {
	News []searchNews `json:"news"`
}

type searchNews struct {
	UUID                string   `json:"uuid"`
	Title               string   `json:"title"`
	Publisher           string   `json:"publisher"`
	Link                string   `json:"link"`
	ProviderPublishTime int64    `json:"providerPublishTime"`
	RelatedTickers      []string `json:"relatedTickers"`
}
