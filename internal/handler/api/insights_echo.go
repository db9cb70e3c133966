package api

import (
	"time"

	"github.com/labstack/echo/v4"

	"InsightHub/internal/domain/models"
	drepo "InsightHub/internal/domain/repository"
	"InsightHub/internal/service/admission"
	smetrics "InsightHub/internal/service/metrics"
	"InsightHub/internal/usecase"
	xhttp "InsightHub/pkg/http"
	xlogger "InsightHub/pkg/logger"
)

// InsightsEchoHandler exposes the insight pipeline over HTTP.
type InsightsEchoHandler struct {
	logger    *xlogger.Logger
	pipeline  *usecase.Pipeline
	admission *admission.Controller
	tiers     drepo.TierStore
	metrics   drepo.Metrics
	archive   drepo.Archive
}

func NewInsightsEchoHandler(logger *xlogger.Logger, pipeline *usecase.Pipeline, ctrl *admission.Controller, tiers drepo.TierStore, m drepo.Metrics, archive drepo.Archive) *InsightsEchoHandler {
	smetrics.Register()
	return &InsightsEchoHandler{
		logger:    logger,
		pipeline:  pipeline,
		admission: ctrl,
		tiers:     tiers,
		metrics:   m,
		archive:   archive,
	}
}

func (h *InsightsEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/insights", h.Create)
	e.GET("/healthz", h.Health)
}

// Create scores one prediction question.
func (h *InsightsEchoHandler) Create(c echo.Context) error {
	start := time.Now()

	req := &models.InsightRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		smetrics.InsightErrors.WithLabelValues("validation").Inc()
		return xhttp.BadRequestResponse(c, verr)
	}

	id := identifier(c)
	tier := h.tiers.Tier(c.Request().Context(), id)

	decision := h.admission.Admit(c.Request().Context(), id, tier)
	if h.metrics != nil {
		h.metrics.RecordAdmission(string(tier), admissionOutcome(decision.Allowed))
	}
	if !decision.Allowed {
		smetrics.AdmissionDenials.WithLabelValues(decision.Reason).Inc()
		h.logger.Debug("request denied by admission control",
			xlogger.String("identifier", id),
			xlogger.String("reason", decision.Reason),
			xlogger.Int("retry_after", decision.RetryAfter),
		)
		appErr := xhttp.TooManyRequestsError(decision.Reason, denialMessage(decision.Reason)).
			WithParam("retryAfter", decision.RetryAfter)
		return xhttp.TooManyRequestsResponse(c, decision.RetryAfter, []*xhttp.AppError{appErr})
	}

	resp := h.pipeline.GenerateInsight(c.Request().Context(), *req)

	smetrics.InsightLatency.WithLabelValues(req.AnalysisType).Observe(time.Since(start).Seconds())
	return xhttp.SuccessResponse(c, resp)
}

// Health reports process liveness plus archive reachability when configured.
func (h *InsightsEchoHandler) Health(c echo.Context) error {
	status := map[string]string{"status": "ok"}
	if h.archive != nil {
		if err := h.archive.Health(c.Request().Context()); err != nil {
			status["archive"] = "degraded"
		} else {
			status["archive"] = "ok"
		}
	}
	return xhttp.SuccessResponse(c, status)
}

// identifier resolves the admission identity: wallet when the caller presents
// one, remote IP otherwise.
func identifier(c echo.Context) string {
	if w := c.Request().Header.Get("X-Wallet"); w != "" {
		return w
	}
	return c.RealIP()
}

func admissionOutcome(allowed bool) string {
	if allowed {
		return "allowed"
	}
	return "denied"
}

func denialMessage(reason string) string {
	if reason == models.ReasonDailyLimit {
		return "daily request limit reached"
	}
	return "rate limit exceeded"
}
