package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"InsightHub/internal/domain/models"
	"InsightHub/internal/service/admission"
	"InsightHub/internal/service/cache"
	"InsightHub/internal/service/markets"
	smetrics "InsightHub/internal/service/metrics"
	"InsightHub/internal/service/news"
	"InsightHub/internal/usecase"
	"InsightHub/pkg/logger"
)

type recordingMetrics struct {
	mu         sync.Mutex
	admissions []string
}

func (m *recordingMetrics) RecordInsight(string, string) {}
func (m *recordingMetrics) RecordCache(string)           {}
func (m *recordingMetrics) RecordAdmission(tier, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.admissions = append(m.admissions, tier+":"+outcome)
}
func (m *recordingMetrics) RecordError(string)            {}
func (m *recordingMetrics) RecordLatency(string, float64) {}

func (m *recordingMetrics) recordedAdmissions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.admissions...)
}

func newTestHandler(t *testing.T, admissionCfg admission.Config, proWallets []string) (*echo.Echo, *InsightsEchoHandler) {
	t.Helper()

	l, err := logger.New(&logger.Config{Level: "error", Format: "json"})
	require.NoError(t, err)

	rm := &recordingMetrics{}
	fusion := usecase.NewFusion(markets.NewSyntheticProvider(), news.NewSyntheticProvider(), 30, 10)
	rc := cache.NewResponseCache(cache.NewMemoryStore(100), 5*time.Minute)
	pipeline := usecase.NewPipeline(fusion, usecase.NewCombiner(), rc, rm, nil, nil)

	h := NewInsightsEchoHandler(
		l,
		pipeline,
		admission.New(admissionCfg, admission.NewMemoryStore()),
		admission.NewConfigTierStore(proWallets),
		rm,
		nil,
	)

	e := echo.New()
	h.RegisterRoutes(e)
	return e, h
}

func postInsights(e *echo.Echo, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/insights", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

const validBody = `{"question":"Will BTC exceed $100k by Q4?","category":"crypto","horizon":"90d"}`

func TestCreateInsightOK(t *testing.T) {
	e, _ := newTestHandler(t, admission.Config{BurstLimit: 10, BurstWindow: time.Minute, DailyLimit: 50}, nil)

	rec := postInsights(e, validBody, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Status int                    `json:"status"`
		Data   models.InsightResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))

	assert.GreaterOrEqual(t, envelope.Data.Probability, 0.05)
	assert.LessOrEqual(t, envelope.Data.Probability, 0.95)
	assert.Len(t, envelope.Data.Scenarios, 3)
	assert.NotEmpty(t, envelope.Data.Rationale)
	assert.Nil(t, envelope.Data.Ensemble)
}

func TestCreateInsightAdvancedEnsemble(t *testing.T) {
	e, _ := newTestHandler(t, admission.Config{BurstLimit: 10, BurstWindow: time.Minute, DailyLimit: 50}, nil)

	body := `{"question":"Will BTC exceed $100k by Q4?","category":"crypto","horizon":"90d","analysisType":"advanced"}`
	rec := postInsights(e, body, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Data models.InsightResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Data.Ensemble)
	assert.NotEmpty(t, envelope.Data.Ensemble.ModelsUsed)
}

func TestCreateInsightValidation(t *testing.T) {
	e, _ := newTestHandler(t, admission.Config{BurstLimit: 10, BurstWindow: time.Minute, DailyLimit: 50}, nil)

	before := testutil.ToFloat64(smetrics.InsightErrors.WithLabelValues("validation"))
	for _, body := range []string{
		`{}`,
		`{"question":"","category":"crypto","horizon":"90d"}`,
		`{"question":"up?","category":"crypto","horizon":"90d","analysisType":"psychic"}`,
	} {
		rec := postInsights(e, body, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body: %s", body)
	}
	after := testutil.ToFloat64(smetrics.InsightErrors.WithLabelValues("validation"))
	assert.Equal(t, before+3, after)
}

func TestCreateInsightRateLimited(t *testing.T) {
	e, _ := newTestHandler(t, admission.Config{BurstLimit: 2, BurstWindow: time.Minute, DailyLimit: 50}, nil)

	require.Equal(t, http.StatusOK, postInsights(e, validBody, nil).Code)
	require.Equal(t, http.StatusOK, postInsights(e, validBody, nil).Code)

	rec := postInsights(e, validBody, nil)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	var envelope struct {
		Data []struct {
			Code string `json:"code"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 1)
	assert.Equal(t, models.ReasonRateLimit, envelope.Data[0].Code)
}

func TestCreateInsightDailyLimited(t *testing.T) {
	e, _ := newTestHandler(t, admission.Config{BurstLimit: 10, BurstWindow: time.Minute, DailyLimit: 1}, nil)

	require.Equal(t, http.StatusOK, postInsights(e, validBody, nil).Code)

	rec := postInsights(e, validBody, nil)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	var envelope struct {
		Data []struct {
			Code string `json:"code"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 1)
	assert.Equal(t, models.ReasonDailyLimit, envelope.Data[0].Code)
}

func TestCreateInsightProWalletBypass(t *testing.T) {
	e, _ := newTestHandler(t, admission.Config{BurstLimit: 1, BurstWindow: time.Minute, DailyLimit: 1}, []string{"wallet-pro"})

	headers := map[string]string{"X-Wallet": "wallet-pro"}
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, postInsights(e, validBody, headers).Code)
	}
}

func TestCreateInsightAdmissionRecordedPerTier(t *testing.T) {
	e, h := newTestHandler(t, admission.Config{BurstLimit: 1, BurstWindow: time.Minute, DailyLimit: 50}, []string{"wallet-pro"})

	require.Equal(t, http.StatusOK, postInsights(e, validBody, nil).Code)
	require.Equal(t, http.StatusTooManyRequests, postInsights(e, validBody, nil).Code)
	require.Equal(t, http.StatusOK, postInsights(e, validBody, map[string]string{"X-Wallet": "wallet-pro"}).Code)

	rm := h.metrics.(*recordingMetrics)
	assert.Equal(t, []string{"free:allowed", "free:denied", "pro:allowed"}, rm.recordedAdmissions())
}

func TestCreateInsightCachedSecondCall(t *testing.T) {
	e, _ := newTestHandler(t, admission.Config{BurstLimit: 10, BurstWindow: time.Minute, DailyLimit: 50}, nil)

	first := postInsights(e, validBody, nil)
	second := postInsights(e, validBody, nil)
	require.Equal(t, http.StatusOK, second.Code)

	var a, b struct {
		Data models.InsightResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &a))
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &b))

	assert.False(t, a.Data.Cached)
	assert.True(t, b.Data.Cached)
	assert.Equal(t, a.Data.Probability, b.Data.Probability)
}

func TestHealthz(t *testing.T) {
	e, _ := newTestHandler(t, admission.Config{BurstLimit: 10, BurstWindow: time.Minute, DailyLimit: 50}, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}
