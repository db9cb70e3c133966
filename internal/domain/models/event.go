package models

import "time"

// InsightEvent is the record published to the event stream and archived after
// each successful pipeline run. It is intentionally flat for columnar storage.
type InsightEvent struct {
	Fingerprint  string    `json:"fingerprint"`
	Question     string    `json:"question"`
	Category     string    `json:"category"`
	Horizon      string    `json:"horizon"`
	AnalysisType string    `json:"analysis_type"`
	Probability  float64   `json:"probability"`
	Confidence   float64   `json:"confidence"`
	Sentiment    float64   `json:"sentiment"`
	DataQuality  float64   `json:"data_quality"`
	Cached       bool      `json:"cached"`
	TookMs       int64     `json:"took_ms"`
	CreatedAt    time.Time `json:"created_at"`
}
