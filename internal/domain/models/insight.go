package models

import "time"

// Trend classifies the direction of a price series.
type Trend string

const (
	TrendUp      Trend = "up"
	TrendDown    Trend = "down"
	TrendNeutral Trend = "neutral"
)

// MarketPoint is a single observation in a price series.
type MarketPoint struct {
	Timestamp time.Time
	Price     float64
	Volume    float64
}

// MarketSeries is an ordered price/volume series for one symbol.
// Quality reflects fetch success, freshness and completeness in [0,1].
type MarketSeries struct {
	Symbol    string
	Points    []MarketPoint
	Change24h float64
	Quality   float64
	FetchedAt time.Time
}

// Last returns the most recent price, or 0 if the series is empty.
func (s MarketSeries) Last() float64 {
	if len(s.Points) == 0 {
		return 0
	}
	return s.Points[len(s.Points)-1].Price
}

// NewsItem is a scored headline from the news provider.
type NewsItem struct {
	Title       string
	Sentiment   float64 // [-1, 1]
	Source      string
	PublishedAt time.Time
}

// Quote is a streamed last-trade observation used for freshness.
type Quote struct {
	Symbol string
	Price  float64
	At     time.Time
}

// Indicators holds technical indicators derived from one series.
// Pointer fields are nil when the series is too short to compute them.
type Indicators struct {
	RSI        *float64
	SMAShort   *float64
	SMALong    *float64
	ATR        *float64
	Support    *float64
	Resistance *float64
	Trend      Trend
	Strength   float64 // [0,1]
}

// PipelineContext aggregates all inputs of one insight run. It is built once
// after the fusion join point and read-only downstream.
type PipelineContext struct {
	Request     InsightRequest
	Fingerprint string
	Series      []MarketSeries
	News        []NewsItem
	Indicators  Indicators
	Sentiment   float64 // [-1, 1]
	DataQuality float64 // [0, 1]
	SampleCount int
}

// Scenario is one of the three bull/base/bear narratives. The three
// probabilities are normalized to sum to 1.
type Scenario struct {
	Label       string   `json:"label"`
	Probability float64  `json:"probability"`
	Drivers     []string `json:"drivers"`
}

// MemberScore is the contribution of one ensemble member.
type MemberScore struct {
	Name        string  `json:"name"`
	Weight      float64 `json:"weight"`
	Reliability float64 `json:"reliability"`
	Probability float64 `json:"probability"`
	Confidence  float64 `json:"confidence"`
}

// EnsembleOutput is the reconciled result of the advanced-mode ensemble.
type EnsembleOutput struct {
	Probability  float64       `json:"probability"`
	Confidence   float64       `json:"confidence"`
	ModelsUsed   []MemberScore `json:"modelsUsed"`
	Consensus    float64       `json:"consensus"`
	Disagreement float64       `json:"disagreement"`
}

// Tier is the billing tier used by admission control.
type Tier string

const (
	TierFree Tier = "free"
	TierPro  Tier = "pro"
)
