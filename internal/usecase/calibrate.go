package usecase

import (
	"math"

	"InsightHub/internal/domain/models"
)

// RSI zone, trend and crossover base values feeding the technical sub-score.
const (
	rsiOverbought = 70.0
	rsiOversold   = 30.0

	baseOverbought = 0.40
	baseOversold   = 0.60
	baseTrendUp    = 0.65
	baseTrendDown  = 0.35
	baseCrossUp    = 0.60
	baseCrossDown  = 0.40
	baseNeutral    = 0.50

	completenessTarget = 30 // samples for a full-quality lookback
)

// Calibrate converts fused inputs into a probability and confidence. Low data
// quality pulls the probability back toward the neutral prior 0.5.
func Calibrate(pc models.PipelineContext) (prob, conf float64) {
	tech := technicalScore(pc.Indicators)

	raw := 0.7*tech + 0.3*(0.5+0.1*pc.Sentiment)
	prob = 0.5 + (raw-0.5)*pc.DataQuality

	completeness := float64(pc.SampleCount) / completenessTarget
	if completeness > 1 {
		completeness = 1
	}
	conf = 0.4*pc.DataQuality + 0.3*pc.Indicators.Strength + 0.3*completeness

	if math.IsNaN(prob) || math.IsInf(prob, 0) {
		prob = 0.5
	}
	if math.IsNaN(conf) || math.IsInf(conf, 0) {
		conf = 0.6
	}

	prob = clampTo(prob, 0.05, 0.95)
	conf = clampTo(conf, 0.1, 0.95)
	return prob, conf
}

// technicalScore is the unweighted mean of the RSI zone, trend direction and
// moving-average crossover bases. Unavailable indicators score neutral.
func technicalScore(ind models.Indicators) float64 {
	rsiBase := baseNeutral
	if ind.RSI != nil {
		switch {
		case *ind.RSI > rsiOverbought:
			rsiBase = baseOverbought
		case *ind.RSI < rsiOversold:
			rsiBase = baseOversold
		}
	}

	trendBase := baseNeutral
	switch ind.Trend {
	case models.TrendUp:
		trendBase = baseTrendUp
	case models.TrendDown:
		trendBase = baseTrendDown
	}

	crossBase := baseNeutral
	if ind.SMAShort != nil && ind.SMALong != nil {
		switch {
		case *ind.SMAShort > *ind.SMALong:
			crossBase = baseCrossUp
		case *ind.SMAShort < *ind.SMALong:
			crossBase = baseCrossDown
		}
	}

	return (rsiBase + trendBase + crossBase) / 3
}

// IntervalFor derives the confidence interval around a probability.
func IntervalFor(prob, conf float64) models.Interval {
	spread := (1 - conf) * 0.3
	return models.Interval{
		Lower: round3(math.Max(0, prob-spread)),
		Upper: round3(math.Min(1, prob+spread)),
	}
}

func clampTo(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
