package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/newthinker/tickertalk/internal/chart"
	"github.com/newthinker/tickertalk/internal/collector"
	"github.com/newthinker/tickertalk/internal/collector/yahoo"
	"github.com/newthinker/tickertalk/internal/config"
	"github.com/newthinker/tickertalk/internal/dispatch"
	"github.com/newthinker/tickertalk/internal/llm/factory"
	"github.com/newthinker/tickertalk/internal/llm/llmobs"
	"github.com/newthinker/tickertalk/internal/logger"
	"github.com/newthinker/tickertalk/internal/metrics"
	"github.com/newthinker/tickertalk/internal/news"
	"github.com/newthinker/tickertalk/internal/registry"
	"github.com/newthinker/tickertalk/internal/session"
	"github.com/newthinker/tickertalk/internal/storage/archive"
	"github.com/newthinker/tickertalk/internal/trace"
)

// services is everything a command needs, built once from configuration.
type services struct {
	cfg      *config.Config
	log      *zap.Logger
	metrics  *metrics.Registry
	registry *registry.Registry
	renderer *chart.Renderer
	session  session.Config

	closers []func(context.Context) error
}

// loadConfig reads .env, the config file and environment overrides.
func loadConfig() (*config.Config, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if debug {
		cfg.Log.Level = "debug"
		cfg.Log.Development = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	lc := logger.Config{Level: cfg.Level, Development: cfg.Development}
	if cfg.File != "" {
		lc.OutputPaths = []string{cfg.File}
	}
	return logger.New(lc)
}

// bootstrap wires providers, storage, the registry and the router.
func bootstrap(ctx context.Context) (*services, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	log, err := newLogger(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	svc := &services{cfg: cfg, log: log}
	ok := false
	defer func() {
		if !ok {
			svc.Close(context.Background())
		}
	}()

	if err := trace.Init(trace.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Tracing.ServiceName,
		Version:     Version,
		PrettyPrint: cfg.Tracing.PrettyPrint,
	}); err != nil {
		return nil, fmt.Errorf("initializing tracing: %w", err)
	}
	svc.closers = append(svc.closers, trace.Shutdown)

	if cfg.Metrics.Enabled {
		svc.metrics = metrics.NewRegistry()
	}

	provider, err := factory.New(cfg.LLM)
	if err != nil {
		return nil, err
	}
	completer := llmobs.Wrap(provider, log, svc.metrics)

	market := yahoo.New(yahoo.Config{
		ChartURL:  cfg.Market.ChartURL,
		SearchURL: cfg.Market.SearchURL,
		QuotePage: cfg.Market.QuotePage,
		UserAgent: cfg.Market.UserAgent,
		Timeout:   cfg.Market.Timeout,
	})

	var series collector.SeriesProvider = market
	if cfg.Cache.Enabled {
		cc := collector.CacheConfig{
			Addr:     cfg.Cache.Addr,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
			TTL:      cfg.Cache.TTL,
			Prefix:   cfg.Cache.Prefix,
		}
		rc, err := collector.NewRedisClient(ctx, cc)
		if err != nil {
			return nil, err
		}
		svc.closers = append(svc.closers, func(context.Context) error { return rc.Close() })
		series = collector.NewCachedSeriesProvider(market, rc, cc, log)
		log.Info("price cache enabled", zap.String("addr", cc.Addr))
	}

	store, err := newArchive(cfg.Charts)
	if err != nil {
		return nil, err
	}
	svc.renderer = chart.NewRenderer(store, chart.Config{
		Width:         cfg.Charts.Width,
		Height:        cfg.Charts.Height,
		OverlayWindow: cfg.Charts.OverlayWindow,
	}, log)

	svc.registry = registry.Default()
	router := dispatch.NewRouter(dispatch.Config{
		Registry:  svc.registry,
		Completer: completer,
		Env: registry.Env{
			Series:    series,
			Holders:   market,
			News:      news.NewCachedProvider(market, cfg.Market.NewsCacheTTL),
			Charts:    svc.renderer,
			Lookback:  cfg.Market.Lookback(),
			NewsLimit: cfg.Market.NewsLimit,
		},
		SystemPrompt: cfg.Session.SystemPrompt,
		MaxTokens:    cfg.Session.MaxTokens,
		Temperature:  cfg.Session.Temperature,
		Logger:       log,
		Metrics:      svc.metrics,
	})

	svc.session = session.Config{
		Router:       router,
		Completer:    completer,
		SystemPrompt: cfg.Session.SystemPrompt,
		MaxTokens:    cfg.Session.MaxTokens,
		Temperature:  cfg.Session.Temperature,
		Logger:       log,
		Metrics:      svc.metrics,
	}

	log.Debug("services ready",
		zap.String("llm", provider.Name()),
		zap.String("charts", cfg.Charts.Type),
		zap.Int("functions", svc.registry.Len()),
	)
	ok = true
	return svc, nil
}

func newArchive(cfg config.ChartsConfig) (archive.Storage, error) {
	switch cfg.Type {
	case "s3":
		return archive.NewS3(archive.S3Config{
			Bucket:    cfg.S3.Bucket,
			Endpoint:  cfg.S3.Endpoint,
			Region:    cfg.S3.Region,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Prefix:    cfg.S3.Prefix,
		})
	default:
		return archive.NewLocalFS(cfg.Path)
	}
}

// purge removes a session's charts; it is the store's close hook.
func (svc *services) purge(ctx context.Context, id string) error {
	_, err := svc.renderer.Purge(ctx, id)
	return err
}

// Close releases resources in reverse order of acquisition.
func (svc *services) Close(ctx context.Context) {
	for i := len(svc.closers) - 1; i >= 0; i-- {
		if err := svc.closers[i](ctx); err != nil {
			svc.log.Warn("shutdown step failed", zap.Error(err))
		}
	}
	svc.closers = nil
	_ = svc.log.Sync()
}
