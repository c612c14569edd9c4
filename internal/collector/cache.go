package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/newthinker/tickertalk/internal/core"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cache is the subset of the redis client used for series caching.
type Cache interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// CacheConfig holds Redis connection settings.
type CacheConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
	Prefix   string
}

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(ctx context.Context, cfg CacheConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// CachedSeriesProvider wraps a SeriesProvider with a Redis read-through cache.
// Cache failures never fail a fetch; they are logged and bypassed.
type CachedSeriesProvider struct {
	provider SeriesProvider
	cache    Cache
	ttl      time.Duration
	prefix   string
	logger   *zap.Logger
}

// NewCachedSeriesProvider creates a cached series provider.
func NewCachedSeriesProvider(provider SeriesProvider, cache Cache, cfg CacheConfig, logger *zap.Logger) *CachedSeriesProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 15 * time.Minute
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "tickertalk"
	}
	return &CachedSeriesProvider{
		provider: provider,
		cache:    cache,
		ttl:      cfg.TTL,
		prefix:   strings.TrimSuffix(cfg.Prefix, ":"),
		logger:   logger,
	}
}

func (p *CachedSeriesProvider) key(ticker string, lookback time.Duration) string {
	days := int(lookback.Hours() / 24)
	return fmt.Sprintf("%s:series:%s:%d", p.prefix, strings.ToUpper(ticker), days)
}

// FetchDailyCloses returns the cached series or fetches and stores it.
func (p *CachedSeriesProvider) FetchDailyCloses(ctx context.Context, ticker string, lookback time.Duration) (core.PriceSeries, error) {
	key := p.key(ticker, lookback)

	raw, err := p.cache.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var series core.PriceSeries
		if jsonErr := json.Unmarshal(raw, &series); jsonErr == nil {
			p.logger.Debug("series cache hit", zap.String("key", key))
			return series, nil
		} else {
			p.logger.Warn("discarding undecodable cache entry", zap.String("key", key), zap.Error(jsonErr))
		}
	case errors.Is(err, redis.Nil):
	default:
		p.logger.Warn("series cache read failed", zap.String("key", key), zap.Error(err))
	}

	series, err := p.provider.FetchDailyCloses(ctx, ticker, lookback)
	if err != nil {
		return core.PriceSeries{}, err
	}

	data, err := json.Marshal(series)
	if err != nil {
		p.logger.Warn("encoding series for cache", zap.Error(err))
		return series, nil
	}
	if err := p.cache.Set(ctx, key, data, p.ttl).Err(); err != nil {
		p.logger.Warn("series cache write failed", zap.String("key", key), zap.Error(err))
	}
	return series, nil
}
