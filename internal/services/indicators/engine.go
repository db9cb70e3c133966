package indicators

import (
	"math"

	"InsightHub/internal/domain/models"
)

const (
	rsiPeriod      = 14
	shortWindow    = 20
	longWindow     = 50
	atrPeriod      = 14
	srWindow       = 20
	srBandPct      = 0.02
	trendThreshold = 0.01
	trendHorizon   = 5
)

// Compute derives technical indicators from a price series. All outputs are
// deterministic given identical input; fields the series is too short for
// stay nil.
func Compute(series models.MarketSeries) models.Indicators {
	prices := closes(series)

	ind := models.Indicators{
		RSI:      RSI(prices, rsiPeriod),
		SMAShort: SMA(prices, shortWindow),
		SMALong:  SMA(prices, longWindow),
		ATR:      ATR(prices, atrPeriod),
		Trend:    models.TrendNeutral,
	}
	ind.Support, ind.Resistance = SupportResistance(prices, srWindow, srBandPct)
	ind.Trend = classifyTrend(prices, ind.SMAShort, ind.SMALong)
	ind.Strength = strength(prices, ind)
	return ind
}

func closes(series models.MarketSeries) []float64 {
	out := make([]float64, 0, len(series.Points))
	for _, p := range series.Points {
		out = append(out, p.Price)
	}
	return out
}

// RSI computes the 14-period relative strength index from average gains and
// losses. Returns nil when history is insufficient.
func RSI(prices []float64, period int) *float64 {
	if period <= 0 || len(prices) < period+1 {
		return nil
	}
	var gains, losses float64
	for i := len(prices) - period; i < len(prices); i++ {
		diff := prices[i] - prices[i-1]
		if diff > 0 {
			gains += diff
		} else {
			losses -= diff
		}
	}
	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)
	if avgLoss == 0 {
		v := 100.0
		if avgGain == 0 {
			v = 50.0
		}
		return &v
	}
	rs := avgGain / avgLoss
	v := 100 - 100/(1+rs)
	return &v
}

// SMA computes a simple moving average over the trailing window.
func SMA(prices []float64, window int) *float64 {
	if window <= 0 || len(prices) < window {
		return nil
	}
	sum := 0.0
	for i := len(prices) - window; i < len(prices); i++ {
		sum += prices[i]
	}
	v := sum / float64(window)
	return &v
}

// ATR approximates average true range from close-to-close moves. The series
// carries only trade prices, so |c_t − c_{t−1}| stands in for the true range.
func ATR(prices []float64, period int) *float64 {
	if period <= 0 || len(prices) < period+1 {
		return nil
	}
	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		sum += math.Abs(prices[i] - prices[i-1])
	}
	v := sum / float64(period)
	return &v
}

// SupportResistance derives a percentage band around the trailing min/max.
// This is an approximation, not a market-microstructure model.
func SupportResistance(prices []float64, window int, bandPct float64) (*float64, *float64) {
	if len(prices) == 0 {
		return nil, nil
	}
	start := len(prices) - window
	if start < 0 {
		start = 0
	}
	lo, hi := prices[start], prices[start]
	for _, p := range prices[start:] {
		if p < lo {
			lo = p
		}
		if p > hi {
			hi = p
		}
	}
	support := lo * (1 - bandPct)
	resistance := hi * (1 + bandPct)
	return &support, &resistance
}

func classifyTrend(prices []float64, smaShort, smaLong *float64) models.Trend {
	if len(prices) == 0 || smaShort == nil || smaLong == nil {
		return models.TrendNeutral
	}
	last := prices[len(prices)-1]
	ret := shortReturn(prices, trendHorizon)

	if last > *smaShort && *smaShort > *smaLong && ret > trendThreshold {
		return models.TrendUp
	}
	if last < *smaShort && *smaShort < *smaLong && ret < -trendThreshold {
		return models.TrendDown
	}
	return models.TrendNeutral
}

func shortReturn(prices []float64, horizon int) float64 {
	if len(prices) <= horizon {
		return 0
	}
	prev := prices[len(prices)-1-horizon]
	if prev == 0 {
		return 0
	}
	return (prices[len(prices)-1] - prev) / prev
}

// strength scores how pronounced the current signal is, in [0,1].
func strength(prices []float64, ind models.Indicators) float64 {
	s := 0.3
	if ind.Trend != models.TrendNeutral {
		s += 0.3
	}
	if ind.RSI != nil {
		s += 0.2 * math.Abs(*ind.RSI-50) / 50
	}
	if ind.SMAShort != nil && ind.SMALong != nil && *ind.SMALong != 0 {
		gap := math.Abs(*ind.SMAShort-*ind.SMALong) / *ind.SMALong
		s += 0.2 * math.Min(1, gap*20)
	}
	if s > 1 {
		s = 1
	}
	return s
}
