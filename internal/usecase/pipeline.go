package usecase

import (
	"context"
	"time"

	"InsightHub/internal/domain/models"
	drepo "InsightHub/internal/domain/repository"
	"InsightHub/internal/service/cache"
	"InsightHub/internal/services/indicators"
	applogger "InsightHub/pkg/logger"
)

// Pipeline runs the full insight flow: cache lookup, data fusion, scoring,
// scenario generation and best-effort publication. Data-source and cache
// faults are absorbed as degraded quality; an internal fault degrades to the
// neutral fallback so the caller always receives a well-formed response.
type Pipeline struct {
	fusion   *Fusion
	combiner *Combiner
	cache    *cache.ResponseCache
	metrics  drepo.Metrics
	events   drepo.EventPublisher
	archive  drepo.Archive
	l        *applogger.Logger
}

// NewPipeline wires the pipeline stages. events and archive may be nil.
func NewPipeline(fusion *Fusion, combiner *Combiner, rc *cache.ResponseCache, metrics drepo.Metrics, events drepo.EventPublisher, archive drepo.Archive) *Pipeline {
	return &Pipeline{
		fusion:   fusion,
		combiner: combiner,
		cache:    rc,
		metrics:  metrics,
		events:   events,
		archive:  archive,
	}
}

// SetLogger injects a structured logger.
func (p *Pipeline) SetLogger(l *applogger.Logger) { p.l = l }

// GenerateInsight produces the scored response for one admitted request.
func (p *Pipeline) GenerateInsight(ctx context.Context, req models.InsightRequest) *models.InsightResponse {
	start := time.Now()
	fp := cache.Fingerprint(req)

	if cached, ok := p.cache.Get(ctx, req); ok {
		p.metrics.RecordCache("hit")
		hit := *cached
		hit.Cached = true
		hit.TookMs = time.Since(start).Milliseconds()
		return &hit
	}
	p.metrics.RecordCache("miss")

	resp := p.score(ctx, req, fp)
	resp.TookMs = time.Since(start).Milliseconds()

	p.cache.Set(ctx, req, resp)
	p.publish(ctx, req, fp, resp)
	p.metrics.RecordInsight(req.AnalysisType, req.Category)
	p.metrics.RecordLatency("pipeline", time.Since(start).Seconds())
	return resp
}

// score runs the computation stages. A panic anywhere inside degrades to the
// neutral fallback instead of propagating.
func (p *Pipeline) score(ctx context.Context, req models.InsightRequest, fp string) (resp *models.InsightResponse) {
	defer func() {
		if r := recover(); r != nil {
			if p.l != nil {
				p.l.Error("pipeline fault, serving neutral fallback", applogger.Any("panic", r), applogger.String("fingerprint", fp))
			}
			p.metrics.RecordError("pipeline_fault")
			resp = NeutralFallback()
		}
	}()

	fetchStart := time.Now()
	pc := p.fusion.BuildContext(ctx, req, fp, indicators.Compute)
	p.metrics.RecordLatency("fusion", time.Since(fetchStart).Seconds())

	prob, conf := Calibrate(pc)

	var ensemble *models.EnsembleOutput
	if req.AnalysisType == "advanced" {
		out := p.combiner.Predict(pc)
		ensemble = &out
		// Advanced mode reports the reconciled ensemble score.
		prob, conf = out.Probability, out.Confidence
	}

	resp = &models.InsightResponse{
		Probability: round3(prob),
		Confidence:  round3(conf),
		Interval:    IntervalFor(prob, conf),
		Rationale:   BuildRationale(pc, prob),
		Scenarios:   GenerateScenarios(pc, prob),
		Sources:     SourcesFor(pc),
		Metrics:     metricsFor(pc),
		Ensemble:    ensemble,
	}
	return resp
}

// NeutralFallback is the degraded response served on internal faults.
func NeutralFallback() *models.InsightResponse {
	neutral := models.PipelineContext{Indicators: models.Indicators{Trend: models.TrendNeutral}}
	return &models.InsightResponse{
		Probability: 0.5,
		Confidence:  0.3,
		Interval:    IntervalFor(0.5, 0.3),
		Rationale:   "Insufficient data for a differentiated view; defaulting to the neutral prior.",
		Scenarios:   GenerateScenarios(neutral, 0.5),
		Sources:     []string{"none"},
		Metrics:     map[string]float64{"data_quality": 0},
	}
}

func metricsFor(pc models.PipelineContext) map[string]float64 {
	m := map[string]float64{
		"data_quality": round3(pc.DataQuality),
		"sentiment":    round3(pc.Sentiment),
		"sample_count": float64(pc.SampleCount),
		"strength":     round3(pc.Indicators.Strength),
	}
	if pc.Indicators.RSI != nil {
		m["rsi"] = round3(*pc.Indicators.RSI)
	}
	if len(pc.Series) > 0 {
		m["change_24h"] = round3(pc.Series[0].Change24h)
		if last := pc.Series[0].Last(); last > 0 {
			m["last_price"] = round3(last)
		}
	}
	return m
}

// publish emits the insight to the event stream and archive, best-effort.
func (p *Pipeline) publish(ctx context.Context, req models.InsightRequest, fp string, resp *models.InsightResponse) {
	if p.events == nil && p.archive == nil {
		return
	}
	ev := &models.InsightEvent{
		Fingerprint:  fp,
		Question:     req.Question,
		Category:     req.Category,
		Horizon:      req.Horizon,
		AnalysisType: req.AnalysisType,
		Probability:  resp.Probability,
		Confidence:   resp.Confidence,
		Sentiment:    resp.Metrics["sentiment"],
		DataQuality:  resp.Metrics["data_quality"],
		Cached:       resp.Cached,
		TookMs:       resp.TookMs,
		CreatedAt:    time.Now().UTC(),
	}
	if p.events != nil {
		if err := p.events.PublishInsight(ctx, ev); err != nil && p.l != nil {
			p.l.Warn("insight event publish failed", applogger.Error(err))
		}
	}
	if p.archive != nil {
		if err := p.archive.Store(ctx, ev); err != nil && p.l != nil {
			p.l.Warn("insight archive failed", applogger.Error(err))
		}
	}
}
