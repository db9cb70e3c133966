package di

import (
	"context"
	"fmt"
	"time"

	"InsightHub/internal/domain/repository"
	"InsightHub/internal/handler/api"
	mid "InsightHub/internal/middleware"
	internalrepo "InsightHub/internal/repository"
	"InsightHub/internal/service/admission"
	"InsightHub/internal/service/cache"
	"InsightHub/internal/service/markets"
	"InsightHub/internal/service/news"
	"InsightHub/internal/usecase"
	pkgch "InsightHub/pkg/clickhouse"
	"InsightHub/pkg/config"
	xhttp "InsightHub/pkg/http"
	pkgkafka "InsightHub/pkg/kafka"
	applogger "InsightHub/pkg/logger"
	"InsightHub/pkg/metrics"
	"InsightHub/pkg/server"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	level := cfg.Logging.Level
	if level == "" {
		level = "info"
	}
	format := cfg.Logging.Format
	if format == "" {
		format = "json"
	}
	output := cfg.Logging.Output
	if output == "" {
		output = "stdout"
	}
	return applogger.New(&applogger.Config{Level: level, Format: format, Output: output})
}

// ProvideMetrics creates the Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideQuoteBook creates the shared last-quote table.
func ProvideQuoteBook() *markets.QuoteBook {
	return markets.NewQuoteBook()
}

// ProvideQuoteStream creates the WebSocket quote stream when configured.
func ProvideQuoteStream(cfg *config.Config, l *applogger.Logger) repository.QuoteStream {
	if cfg.Markets.StreamURL == "" || cfg.Markets.APIKey == "" {
		return nil
	}
	s := markets.NewStream(cfg.Markets.APIKey, cfg.Markets.StreamURL, cfg.Markets.Symbols, cfg.Markets.PingInterval)
	s.SetLogger(l)
	return s
}

// ProvideMarketProvider selects the HTTP provider when an API key is set,
// falling back to the deterministic synthetic source.
func ProvideMarketProvider(cfg *config.Config, quotes *markets.QuoteBook) repository.MarketDataProvider {
	if cfg.Markets.APIKey != "" && cfg.Markets.BaseURL != "" {
		return markets.NewHTTPProvider(cfg, quotes)
	}
	return markets.NewSyntheticProvider()
}

// ProvideNewsProvider selects the HTTP provider when an API key is set,
// falling back to the deterministic synthetic source.
func ProvideNewsProvider(cfg *config.Config) repository.NewsProvider {
	if cfg.News.APIKey != "" && cfg.News.BaseURL != "" {
		return news.NewHTTPProvider(cfg)
	}
	return news.NewSyntheticProvider()
}

// ProvideResponseCache builds the response cache over the configured backend.
func ProvideResponseCache(cfg *config.Config, l *applogger.Logger) (*cache.ResponseCache, error) {
	var store cache.Store
	if cfg.Cache.Backend == "redis" {
		rs, err := cache.NewRedisStore(cfg.Cache.Redis.Addr, cfg.Cache.Redis.Password, cfg.Cache.Redis.DB, cfg.Cache.Redis.Prefix)
		if err != nil {
			return nil, fmt.Errorf("cache redis store: %w", err)
		}
		store = rs
	} else {
		store = cache.NewMemoryStore(cfg.Cache.MaxSize)
	}
	rc := cache.NewResponseCache(store, cfg.Cache.TTL)
	rc.SetLogger(l)
	return rc, nil
}

// ProvideAdmissionController builds the admission controller over the
// configured backend.
func ProvideAdmissionController(cfg *config.Config, l *applogger.Logger) (*admission.Controller, error) {
	var store admission.Store
	if cfg.Admission.Backend == "redis" {
		rs, err := admission.NewRedisStore(cfg.Admission.Redis.Addr, cfg.Admission.Redis.Password, cfg.Admission.Redis.DB, cfg.Admission.Redis.Prefix)
		if err != nil {
			return nil, fmt.Errorf("admission redis store: %w", err)
		}
		store = rs
	} else {
		store = admission.NewMemoryStore()
	}
	ctrl := admission.New(admission.Config{
		BurstLimit:  cfg.Admission.BurstLimit,
		BurstWindow: cfg.Admission.BurstWindow,
		DailyLimit:  cfg.Admission.DailyLimit,
	}, store)
	ctrl.SetLogger(l)
	return ctrl, nil
}

// ProvideTierStore builds the config-driven tier lookup.
func ProvideTierStore(cfg *config.Config) repository.TierStore {
	return admission.NewConfigTierStore(cfg.Admission.ProWallets)
}

// ProvideClickHouseClient creates the archive client and initializes the
// schema. Returns nil when the archive is disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.Archive.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithAddress(cfg.Archive.Host, cfg.Archive.Port),
		pkgch.WithDatabase(cfg.Archive.Database),
		pkgch.WithCredentials(cfg.Archive.User, cfg.Archive.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithTimeouts(cfg.Archive.DialTimeout, cfg.Archive.ReadTimeout),
		pkgch.WithAsyncInsert(true),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.InitSchema(ctx, internalrepo.SchemaStatements(cfg.Archive.Database)); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

// ProvideArchive builds the batched insight archive when enabled.
func ProvideArchive(chClient *pkgch.Client, cfg *config.Config, l *applogger.Logger) repository.Archive {
	if chClient == nil {
		return nil
	}
	a := internalrepo.NewCHArchive(chClient, cfg.Archive.Database, cfg.Archive.BatchSize, cfg.Archive.FlushInterval)
	a.SetLogger(l)
	return a
}

// ProvideEventPublisher builds the Kafka insight publisher when enabled.
func ProvideEventPublisher(cfg *config.Config) (repository.EventPublisher, error) {
	if !cfg.Events.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Events.Brokers),
		pkgkafka.WithCompression(cfg.Events.Compression),
		pkgkafka.WithRequiredAcks(cfg.Events.RequiredAcks),
		pkgkafka.WithAsync(cfg.Events.Async),
		pkgkafka.WithTimeouts(cfg.Events.WriteTimeout, cfg.Events.WriteTimeout),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return internalrepo.NewKafkaEventPublisher(producer, cfg.Events.Topic), nil
}

// ProvidePipeline assembles the insight pipeline.
func ProvidePipeline(
	cfg *config.Config,
	l *applogger.Logger,
	market repository.MarketDataProvider,
	newsProvider repository.NewsProvider,
	rc *cache.ResponseCache,
	m repository.Metrics,
	events repository.EventPublisher,
	archive repository.Archive,
) *usecase.Pipeline {
	fusion := usecase.NewFusion(market, newsProvider, cfg.Markets.LookbackDays, cfg.News.Limit)
	fusion.SetLogger(l)

	p := usecase.NewPipeline(fusion, usecase.NewCombiner(), rc, m, events, archive)
	p.SetLogger(l)
	return p
}

// ProvideHTTPHandler builds the insights HTTP handler.
func ProvideHTTPHandler(
	l *applogger.Logger,
	pipeline *usecase.Pipeline,
	ctrl *admission.Controller,
	tiers repository.TierStore,
	m repository.Metrics,
	archive repository.Archive,
) xhttp.Handler {
	return api.NewInsightsEchoHandler(l, pipeline, ctrl, tiers, m, archive)
}

// ProvideApp creates the application server. The quote book is wrapped in a
// per-symbol throttle before it sees the raw stream.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	handler xhttp.Handler,
	ctrl *admission.Controller,
	stream repository.QuoteStream,
	quotes *markets.QuoteBook,
	m repository.Metrics,
	events repository.EventPublisher,
	archive repository.Archive,
	chClient *pkgch.Client,
) *server.App {
	sink := mid.NewQuoteThrottle(quotes, m)

	// When the event stream is up, ship deduplicated error-log batches to it.
	if pub, ok := events.(applogger.Publisher); ok {
		l.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   30 * time.Second,
			CountThreshold: 100,
			Topic:          cfg.Events.Topic + ".logs",
			Publisher:      pub,
		})
	}

	return server.New(cfg, l, handler, ctrl, stream, sink, events, archive, chClient)
}
