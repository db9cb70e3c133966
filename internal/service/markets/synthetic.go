package markets

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"math"
	"math/rand"
	"time"

	"InsightHub/internal/domain/models"
	drepo "InsightHub/internal/domain/repository"
)

// SyntheticProvider generates deterministic candle series when no upstream
// API key is configured. The generator is seeded from the symbol so repeated
// calls yield identical prices, which keeps cached and uncached responses
// consistent.
type SyntheticProvider struct{}

func NewSyntheticProvider() *SyntheticProvider { return &SyntheticProvider{} }

func (p *SyntheticProvider) GetSeries(_ context.Context, symbol string, lookbackDays int) (models.MarketSeries, error) {
	if lookbackDays <= 0 {
		lookbackDays = 30
	}

	rng := rand.New(rand.NewSource(seedFor(symbol)))

	base := 20 + rng.Float64()*480 // per-symbol base price in [20, 500)
	drift := (rng.Float64() - 0.5) * 0.004
	vol := 0.005 + rng.Float64()*0.02

	now := time.Now().UTC().Truncate(24 * time.Hour)
	points := make([]models.MarketPoint, 0, lookbackDays)
	price := base
	for i := lookbackDays - 1; i >= 0; i-- {
		price *= 1 + drift + (rng.Float64()-0.5)*2*vol
		if price < 1 {
			price = 1
		}
		points = append(points, models.MarketPoint{
			Timestamp: now.AddDate(0, 0, -i),
			Price:     round2(price),
			Volume:    math.Floor(1e5 + rng.Float64()*9e5),
		})
	}

	series := models.MarketSeries{
		Symbol:    symbol,
		Points:    points,
		FetchedAt: time.Now(),
		Quality:   0.85, // synthetic data is complete but not live
	}
	if n := len(points); n >= 2 {
		prev := points[n-2].Price
		if prev > 0 {
			series.Change24h = round2((points[n-1].Price - prev) / prev * 100)
		}
	}
	return series, nil
}

func seedFor(key string) int64 {
	sum := sha256.Sum256([]byte(key))
	return int64(binary.BigEndian.Uint64(sum[:8]) & math.MaxInt64)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

var _ drepo.MarketDataProvider = (*SyntheticProvider)(nil)
