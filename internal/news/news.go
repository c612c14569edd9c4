// Package news provides ticker news lookups.
package news

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/newthinker/tickertalk/internal/core"
)

// Provider provides news for tickers.
type Provider interface {
	GetNews(ctx context.Context, ticker string, limit int) ([]core.NewsItem, error)
}

// StaticProvider returns a fixed set of news items. Useful for offline runs
// and tests.
type StaticProvider struct {
	news []core.NewsItem
}

// NewStaticProvider creates a news provider with static news items.
func NewStaticProvider(news []core.NewsItem) *StaticProvider {
	return &StaticProvider{news: news}
}

// GetNews returns up to limit items tagged with ticker, newest first as given.
func (p *StaticProvider) GetNews(ctx context.Context, ticker string, limit int) ([]core.NewsItem, error) {
	var result []core.NewsItem
	for _, item := range p.news {
		for _, s := range item.Tickers {
			if strings.EqualFold(s, ticker) {
				result = append(result, item)
				break
			}
		}
		if limit > 0 && len(result) == limit {
			break
		}
	}
	return result, nil
}

type cacheEntry struct {
	items []core.NewsItem
	at    time.Time
}

// CachedProvider wraps a news provider with an in-process TTL cache.
type CachedProvider struct {
	provider Provider
	ttl      time.Duration
	now      func() time.Time

	mu    sync.Mutex
	cache map[string]cacheEntry
}

// NewCachedProvider creates a cached news provider.
func NewCachedProvider(provider Provider, ttl time.Duration) *CachedProvider {
	return &CachedProvider{
		provider: provider,
		ttl:      ttl,
		now:      time.Now,
		cache:    make(map[string]cacheEntry),
	}
}

// GetNews returns cached news or fetches from the underlying provider.
func (p *CachedProvider) GetNews(ctx context.Context, ticker string, limit int) ([]core.NewsItem, error) {
	key := strings.ToUpper(ticker)

	p.mu.Lock()
	entry, ok := p.cache[key]
	p.mu.Unlock()
	if ok && p.now().Sub(entry.at) < p.ttl && len(entry.items) >= limit {
		return truncate(entry.items, limit), nil
	}

	items, err := p.provider.GetNews(ctx, ticker, limit)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.cache[key] = cacheEntry{items: items, at: p.now()}
	p.mu.Unlock()
	return items, nil
}

func truncate(items []core.NewsItem, limit int) []core.NewsItem {
	if limit <= 0 || len(items) <= limit {
		return items
	}
	return items[:limit]
}
