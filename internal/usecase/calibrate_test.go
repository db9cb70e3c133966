package usecase

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"InsightHub/internal/domain/models"
)

func fptr(v float64) *float64 { return &v }

func bullishContext() models.PipelineContext {
	return models.PipelineContext{
		Request: models.InsightRequest{
			Question: "Will BTC exceed $100k by Q4?",
			Category: "crypto",
			Horizon:  "90d",
		},
		Series: []models.MarketSeries{{Symbol: "BTC", Quality: 0.9}},
		Indicators: models.Indicators{
			RSI:      fptr(75),
			SMAShort: fptr(110),
			SMALong:  fptr(100),
			Trend:    models.TrendUp,
			Strength: 0.8,
		},
		Sentiment:   0.4,
		DataQuality: 0.9,
		SampleCount: 30,
	}
}

func TestCalibrateBullishPullsAboveNeutral(t *testing.T) {
	prob, conf := Calibrate(bullishContext())

	assert.Greater(t, prob, 0.5)
	assert.LessOrEqual(t, prob, 0.95)
	assert.GreaterOrEqual(t, conf, 0.1)
	assert.LessOrEqual(t, conf, 0.95)
}

func TestCalibrateBounds(t *testing.T) {
	contexts := []models.PipelineContext{
		{},
		{Sentiment: 1, DataQuality: 1, SampleCount: 100, Indicators: models.Indicators{Trend: models.TrendUp, Strength: 1, RSI: fptr(20), SMAShort: fptr(2), SMALong: fptr(1)}},
		{Sentiment: -1, DataQuality: 1, SampleCount: 100, Indicators: models.Indicators{Trend: models.TrendDown, Strength: 1, RSI: fptr(90), SMAShort: fptr(1), SMALong: fptr(2)}},
	}
	for _, pc := range contexts {
		prob, conf := Calibrate(pc)
		assert.GreaterOrEqual(t, prob, 0.05)
		assert.LessOrEqual(t, prob, 0.95)
		assert.GreaterOrEqual(t, conf, 0.1)
		assert.LessOrEqual(t, conf, 0.95)
	}
}

func TestCalibrateLowQualityPullsTowardNeutral(t *testing.T) {
	pc := bullishContext()
	highProb, _ := Calibrate(pc)

	pc.DataQuality = 0.2
	lowProb, _ := Calibrate(pc)

	assert.Less(t, math.Abs(lowProb-0.5), math.Abs(highProb-0.5))
}

func TestCalibrateNaNDefaults(t *testing.T) {
	pc := bullishContext()
	pc.DataQuality = math.NaN()

	prob, conf := Calibrate(pc)
	require.False(t, math.IsNaN(prob))
	require.False(t, math.IsNaN(conf))
	assert.Equal(t, 0.5, prob)
}

func TestIntervalContainsProbability(t *testing.T) {
	for _, tc := range []struct{ prob, conf float64 }{
		{0.5, 0.3}, {0.95, 0.1}, {0.05, 0.95}, {0.72, 0.6},
	} {
		iv := IntervalFor(tc.prob, tc.conf)
		assert.LessOrEqual(t, iv.Lower, tc.prob+0.001)
		assert.GreaterOrEqual(t, iv.Upper, tc.prob-0.001)
		assert.GreaterOrEqual(t, iv.Lower, 0.0)
		assert.LessOrEqual(t, iv.Upper, 1.0)
	}
}

func TestIntervalWidensWithLowConfidence(t *testing.T) {
	narrow := IntervalFor(0.5, 0.9)
	wide := IntervalFor(0.5, 0.2)
	assert.Greater(t, wide.Upper-wide.Lower, narrow.Upper-narrow.Lower)
}

func TestTechnicalScoreNeutralWhenUnavailable(t *testing.T) {
	score := technicalScore(models.Indicators{Trend: models.TrendNeutral})
	assert.InDelta(t, 0.5, score, 1e-9)
}
