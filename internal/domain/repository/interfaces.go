package repository

import (
	"context"

	"InsightHub/internal/domain/models"
)

// MarketDataProvider fetches a price/volume series for one symbol.
// Implementations own their transport timeout; a failed fetch is reported as
// an error and handled by the fusion layer as degraded quality, never fatal.
type MarketDataProvider interface {
	GetSeries(ctx context.Context, symbol string, lookbackDays int) (models.MarketSeries, error)
}

// NewsProvider fetches scored headlines for a keyword set.
type NewsProvider interface {
	GetNews(ctx context.Context, keywords []string, limit int) ([]models.NewsItem, error)
}

// QuoteStream is a live last-trade feed used to keep freshness warm.
type QuoteStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.Quote, <-chan error)
	Close() error
	IsConnected() bool
}

// EventPublisher pushes generated insights to the event stream.
type EventPublisher interface {
	PublishInsight(ctx context.Context, ev *models.InsightEvent) error
	Close() error
}

// Archive persists generated insights for offline calibration analysis.
type Archive interface {
	Store(ctx context.Context, ev *models.InsightEvent) error
	Health(ctx context.Context) error
	Close() error
}

// TierStore resolves the billing tier for an identifier (wallet or IP).
// Backed by the external auth/billing context; the in-process implementation
// is a config-driven lookup.
type TierStore interface {
	Tier(ctx context.Context, identifier string) models.Tier
}

// Metrics records operational counters for the pipeline.
type Metrics interface {
	RecordInsight(analysisType, category string)
	RecordCache(outcome string) // hit | miss
	RecordAdmission(tier, outcome string)
	RecordError(kind string)
	RecordLatency(stage string, seconds float64)
}
