package models

// Request/response shapes for the insights HTTP endpoint. Defined in domain for
// consistency and reuse.

// InsightRequest is the body of POST /insights. Immutable once accepted.
type InsightRequest struct {
	Question     string `json:"question" validate:"required,min=1,max=500"`
	Category     string `json:"category" validate:"required,max=64"`
	Horizon      string `json:"horizon" validate:"required,max=32"`
	AnalysisType string `json:"analysisType" default:"basic" validate:"oneof=basic advanced"`
}

// Interval is the confidence interval around the probability.
type Interval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// InsightResponse is the full scored result returned to the caller.
type InsightResponse struct {
	Probability float64            `json:"probability"`
	Confidence  float64            `json:"confidence"`
	Interval    Interval           `json:"interval"`
	Rationale   string             `json:"rationale"`
	Scenarios   []Scenario         `json:"scenarios"`
	Sources     []string           `json:"sources"`
	Metrics     map[string]float64 `json:"metrics"`
	Ensemble    *EnsembleOutput    `json:"ensemble,omitempty"`
	TookMs      int64              `json:"tookMs"`
	Cached      bool               `json:"cached"`
}

// AdmissionDecision is the outcome of admission control for one request.
type AdmissionDecision struct {
	Allowed    bool
	Tier       Tier
	Reason     string // RATE_LIMIT | FREE_DAILY_LIMIT when denied
	RetryAfter int    // seconds until retry is permitted
}

// Admission denial reason codes surfaced on HTTP 429.
const (
	ReasonRateLimit  = "RATE_LIMIT"
	ReasonDailyLimit = "FREE_DAILY_LIMIT"
)
