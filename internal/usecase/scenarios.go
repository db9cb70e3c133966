package usecase

import (
	"InsightHub/internal/domain/models"
)

const maxDrivers = 3

// GenerateScenarios produces the bull/base/bear triple. The three
// probabilities are normalized so they sum to exactly 1 after rounding.
func GenerateScenarios(pc models.PipelineContext, base float64) []models.Scenario {
	bull := base + 0.2
	if bull > 0.6 {
		bull = 0.6
	}
	bear := base - 0.2
	if bear < 0.1 {
		bear = 0.1
	}

	sum := bull + base + bear
	bull = round3(bull / sum)
	bear = round3(bear / sum)
	mid := round3(1 - bull - bear) // absorbs rounding drift so the triple sums to 1

	return []models.Scenario{
		{Label: "Bull Case", Probability: bull, Drivers: bullDrivers(pc)},
		{Label: "Base Case", Probability: mid, Drivers: baseDrivers(pc)},
		{Label: "Bear Case", Probability: bear, Drivers: bearDrivers(pc)},
	}
}

func bullDrivers(pc models.PipelineContext) []string {
	var d []string
	if pc.Indicators.Trend == models.TrendUp {
		d = append(d, "trend up")
	}
	if pc.Indicators.RSI != nil && *pc.Indicators.RSI < rsiOverbought {
		d = append(d, "RSI room to grow")
	}
	if pc.Sentiment > 0 {
		d = append(d, "positive news sentiment")
	}
	if pc.Indicators.Resistance != nil {
		d = append(d, "break above resistance in reach")
	}
	return capDrivers(d, "favorable momentum continuation")
}

func baseDrivers(pc models.PipelineContext) []string {
	var d []string
	if pc.Indicators.Trend == models.TrendNeutral {
		d = append(d, "no dominant trend")
	}
	if pc.Indicators.Support != nil && pc.Indicators.Resistance != nil {
		d = append(d, "price holding within support/resistance band")
	}
	if pc.DataQuality < 0.6 {
		d = append(d, "limited data keeps outlook near prior")
	}
	return capDrivers(d, "continuation of current conditions")
}

func bearDrivers(pc models.PipelineContext) []string {
	var d []string
	if pc.Indicators.Trend == models.TrendDown {
		d = append(d, "trend down")
	}
	if pc.Indicators.RSI != nil && *pc.Indicators.RSI > rsiOverbought {
		d = append(d, "overbought RSI invites pullback")
	}
	if pc.Sentiment < 0 {
		d = append(d, "negative news sentiment")
	}
	if pc.Indicators.Support != nil {
		d = append(d, "loss of support level")
	}
	return capDrivers(d, "adverse macro surprise")
}

func capDrivers(d []string, fallback string) []string {
	if len(d) == 0 {
		return []string{fallback}
	}
	if len(d) > maxDrivers {
		d = d[:maxDrivers]
	}
	return d
}
