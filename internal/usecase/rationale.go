package usecase

import (
	"fmt"
	"strings"

	"InsightHub/internal/domain/models"
)

// BuildRationale renders a short human-readable explanation of the score.
func BuildRationale(pc models.PipelineContext, prob float64) string {
	var parts []string

	lean := "balanced"
	switch {
	case prob > 0.55:
		lean = "leans positive"
	case prob < 0.45:
		lean = "leans negative"
	}
	parts = append(parts, fmt.Sprintf("Technical picture %s", lean))

	switch pc.Indicators.Trend {
	case models.TrendUp:
		parts = append(parts, "price trades above both moving averages in an uptrend")
	case models.TrendDown:
		parts = append(parts, "price trades below both moving averages in a downtrend")
	default:
		parts = append(parts, "no dominant trend in the lookback window")
	}

	if pc.Indicators.RSI != nil {
		switch {
		case *pc.Indicators.RSI > rsiOverbought:
			parts = append(parts, fmt.Sprintf("RSI %.0f signals overbought conditions", *pc.Indicators.RSI))
		case *pc.Indicators.RSI < rsiOversold:
			parts = append(parts, fmt.Sprintf("RSI %.0f signals oversold conditions", *pc.Indicators.RSI))
		default:
			parts = append(parts, fmt.Sprintf("RSI %.0f is neutral", *pc.Indicators.RSI))
		}
	}

	switch {
	case pc.Sentiment > 0.15:
		parts = append(parts, "news flow is supportive")
	case pc.Sentiment < -0.15:
		parts = append(parts, "news flow is a headwind")
	}

	if pc.DataQuality < 0.5 {
		parts = append(parts, "limited data quality keeps the estimate close to the neutral prior")
	}

	return strings.Join(parts, "; ") + "."
}

// SourcesFor lists the distinct inputs that informed the response.
func SourcesFor(pc models.PipelineContext) []string {
	var sources []string
	for _, s := range pc.Series {
		sources = append(sources, "market:"+s.Symbol)
	}
	seen := make(map[string]struct{})
	for _, n := range pc.News {
		if n.Source == "" {
			continue
		}
		if _, ok := seen[n.Source]; ok {
			continue
		}
		seen[n.Source] = struct{}{}
		sources = append(sources, "news:"+n.Source)
	}
	if len(sources) == 0 {
		sources = []string{"none"}
	}
	return sources
}
