package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"InsightHub/internal/domain/models"
	"InsightHub/internal/services/indicators"
)

type stubMarkets struct {
	failFor map[string]bool
	quality float64
}

func (s *stubMarkets) GetSeries(_ context.Context, symbol string, lookbackDays int) (models.MarketSeries, error) {
	if s.failFor[symbol] {
		return models.MarketSeries{}, fmt.Errorf("upstream down")
	}
	points := make([]models.MarketPoint, lookbackDays)
	for i := range points {
		points[i] = models.MarketPoint{
			Timestamp: time.Now().Add(-time.Duration(lookbackDays-i) * 24 * time.Hour),
			Price:     100 + float64(i),
		}
	}
	return models.MarketSeries{Symbol: symbol, Points: points, Quality: s.quality}, nil
}

type stubNews struct {
	items []models.NewsItem
	fail  bool
}

func (s *stubNews) GetNews(context.Context, []string, int) ([]models.NewsItem, error) {
	if s.fail {
		return nil, fmt.Errorf("news down")
	}
	return s.items, nil
}

func TestSymbolsForAliasExtraction(t *testing.T) {
	assert.Equal(t, []string{"BTC"}, SymbolsFor("Will BTC exceed $100k by Q4?", "crypto"))
	assert.Equal(t, []string{"TSLA"}, SymbolsFor("will TESLA beat deliveries", "stocks"))
}

func TestSymbolsForCategoryFallback(t *testing.T) {
	assert.Equal(t, []string{"BTC", "ETH"}, SymbolsFor("will the market moon", "crypto"))
	assert.Equal(t, []string{"EURUSD"}, SymbolsFor("will it move", "Forex"))
	assert.Equal(t, []string{"SPY"}, SymbolsFor("anything", "unknown"))
}

func TestSymbolsForDedupes(t *testing.T) {
	syms := SymbolsFor("BTC or bitcoin, which is it? Maybe ETH", "crypto")
	assert.Equal(t, []string{"BTC", "ETH"}, syms)
}

func TestFetchPartialFailureDegradesQuality(t *testing.T) {
	req := models.InsightRequest{Question: "BTC and ETH outlook", Category: "crypto"}
	news := &stubNews{items: []models.NewsItem{{Title: "BTC rallies", Sentiment: 0.5}}}

	healthy := NewFusion(&stubMarkets{quality: 1}, news, 30, 10)
	_, _, fullQ := healthy.Fetch(context.Background(), req)

	degraded := NewFusion(&stubMarkets{quality: 1, failFor: map[string]bool{"ETH": true}}, news, 30, 10)
	series, _, partQ := degraded.Fetch(context.Background(), req)

	require.Len(t, series, 1)
	assert.Less(t, partQ, fullQ)
	assert.Greater(t, partQ, 0.0)
}

func TestFetchAllSourcesDownStillReturns(t *testing.T) {
	f := NewFusion(
		&stubMarkets{failFor: map[string]bool{"BTC": true, "ETH": true}},
		&stubNews{fail: true},
		30, 10,
	)
	series, items, quality := f.Fetch(context.Background(), models.InsightRequest{Question: "up?", Category: "crypto"})

	assert.Empty(t, series)
	assert.Empty(t, items)
	assert.Equal(t, 0.0, quality)
}

func TestBuildContextPopulatesAll(t *testing.T) {
	f := NewFusion(
		&stubMarkets{quality: 0.9},
		&stubNews{items: []models.NewsItem{{Title: "BTC rallies hard", Sentiment: 0.6}}},
		30, 10,
	)
	req := models.InsightRequest{Question: "Will BTC exceed $100k?", Category: "crypto", Horizon: "90d"}

	pc := f.BuildContext(context.Background(), req, "fp-1", indicators.Compute)

	assert.Equal(t, "fp-1", pc.Fingerprint)
	assert.Equal(t, 30, pc.SampleCount)
	assert.Greater(t, pc.Sentiment, 0.0)
	assert.Greater(t, pc.DataQuality, 0.5)
	assert.NotEqual(t, models.Trend(""), pc.Indicators.Trend)
}

func TestBuildContextNoDataNeutralIndicators(t *testing.T) {
	f := NewFusion(
		&stubMarkets{failFor: map[string]bool{"BTC": true, "ETH": true}},
		&stubNews{fail: true},
		30, 10,
	)
	pc := f.BuildContext(context.Background(), models.InsightRequest{Question: "up?", Category: "crypto"}, "fp-2", indicators.Compute)

	assert.Equal(t, models.TrendNeutral, pc.Indicators.Trend)
	assert.Equal(t, 0.0, pc.Sentiment)
	assert.Equal(t, 0, pc.SampleCount)
}
