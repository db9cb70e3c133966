package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"InsightHub/internal/domain/models"
	"InsightHub/internal/service/cache"
)

type recordingMetrics struct {
	mu       sync.Mutex
	cacheOut []string
}

func (m *recordingMetrics) RecordInsight(string, string) {}
func (m *recordingMetrics) RecordCache(outcome string) {
	m.mu.Lock()
	m.cacheOut = append(m.cacheOut, outcome)
	m.mu.Unlock()
}
func (m *recordingMetrics) RecordAdmission(string, string) {}
func (m *recordingMetrics) RecordError(string)             {}
func (m *recordingMetrics) RecordLatency(string, float64)  {}

func newTestPipeline(metrics *recordingMetrics) *Pipeline {
	fusion := NewFusion(
		&stubMarkets{quality: 0.9},
		&stubNews{items: []models.NewsItem{{Title: "BTC rallies hard", Sentiment: 0.5, Source: "MarketWire"}}},
		30, 10,
	)
	rc := cache.NewResponseCache(cache.NewMemoryStore(100), 5*time.Minute)
	return NewPipeline(fusion, NewCombiner(), rc, metrics, nil, nil)
}

func TestGenerateInsightBasicShape(t *testing.T) {
	p := newTestPipeline(&recordingMetrics{})
	req := models.InsightRequest{Question: "Will BTC exceed $100k?", Category: "crypto", Horizon: "90d", AnalysisType: "basic"}

	resp := p.GenerateInsight(context.Background(), req)

	assert.GreaterOrEqual(t, resp.Probability, 0.05)
	assert.LessOrEqual(t, resp.Probability, 0.95)
	assert.GreaterOrEqual(t, resp.Confidence, 0.1)
	assert.LessOrEqual(t, resp.Confidence, 0.95)
	assert.LessOrEqual(t, resp.Interval.Lower, resp.Probability)
	assert.GreaterOrEqual(t, resp.Interval.Upper, resp.Probability)
	require.Len(t, resp.Scenarios, 3)
	assert.NotEmpty(t, resp.Rationale)
	assert.Contains(t, resp.Sources, "market:BTC")
	assert.Contains(t, resp.Sources, "news:MarketWire")
	assert.Equal(t, 129.0, resp.Metrics["last_price"])
	assert.Nil(t, resp.Ensemble)
	assert.False(t, resp.Cached)
}

func TestGenerateInsightAdvancedIncludesEnsemble(t *testing.T) {
	p := newTestPipeline(&recordingMetrics{})
	req := models.InsightRequest{Question: "Will BTC exceed $100k?", Category: "crypto", Horizon: "90d", AnalysisType: "advanced"}

	resp := p.GenerateInsight(context.Background(), req)

	require.NotNil(t, resp.Ensemble)
	assert.NotEmpty(t, resp.Ensemble.ModelsUsed)
	assert.Equal(t, resp.Ensemble.Probability, resp.Probability)
}

func TestGenerateInsightCacheHit(t *testing.T) {
	metrics := &recordingMetrics{}
	p := newTestPipeline(metrics)
	req := models.InsightRequest{Question: "Will BTC exceed $100k?", Category: "crypto", Horizon: "90d", AnalysisType: "basic"}

	first := p.GenerateInsight(context.Background(), req)
	second := p.GenerateInsight(context.Background(), req)

	assert.False(t, first.Cached)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Probability, second.Probability)
	assert.Equal(t, first.Scenarios, second.Scenarios)
	assert.Equal(t, first.Rationale, second.Rationale)
	assert.Equal(t, []string{"miss", "hit"}, metrics.cacheOut)
}

func TestGenerateInsightCacheNormalization(t *testing.T) {
	p := newTestPipeline(&recordingMetrics{})

	first := p.GenerateInsight(context.Background(), models.InsightRequest{
		Question: "Will BTC exceed $100k?", Category: "crypto", Horizon: "90d", AnalysisType: "basic",
	})
	second := p.GenerateInsight(context.Background(), models.InsightRequest{
		Question: "  will btc EXCEED $100k?  ", Category: "CRYPTO", Horizon: "90d", AnalysisType: "basic",
	})

	assert.False(t, first.Cached)
	assert.True(t, second.Cached)
}

func TestGenerateInsightDegradedStillWellFormed(t *testing.T) {
	fusion := NewFusion(
		&stubMarkets{failFor: map[string]bool{"BTC": true, "ETH": true}},
		&stubNews{fail: true},
		30, 10,
	)
	rc := cache.NewResponseCache(cache.NewMemoryStore(100), 5*time.Minute)
	p := NewPipeline(fusion, NewCombiner(), rc, &recordingMetrics{}, nil, nil)

	resp := p.GenerateInsight(context.Background(), models.InsightRequest{
		Question: "up?", Category: "crypto", Horizon: "1d", AnalysisType: "basic",
	})

	// Zero data quality recenters fully onto the neutral prior.
	assert.Equal(t, 0.5, resp.Probability)
	require.Len(t, resp.Scenarios, 3)
	sum := 0.0
	for _, s := range resp.Scenarios {
		sum += s.Probability
	}
	assert.InDelta(t, 1.0, sum, 0.01)
}

func TestNeutralFallbackShape(t *testing.T) {
	resp := NeutralFallback()

	assert.Equal(t, 0.5, resp.Probability)
	assert.Equal(t, 0.3, resp.Confidence)
	assert.LessOrEqual(t, resp.Interval.Lower, 0.5)
	assert.GreaterOrEqual(t, resp.Interval.Upper, 0.5)
	require.Len(t, resp.Scenarios, 3)
}
