package markets

import (
	"context"
	"fmt"
	"time"

	"InsightHub/internal/domain/models"
	drepo "InsightHub/internal/domain/repository"
	"InsightHub/pkg/config"
	xhttp "InsightHub/pkg/http"
)

// HTTPProvider fetches candle series from the market-data REST API. Malformed
// payloads are rejected at this boundary so no undefined value reaches the
// calibration math.
type HTTPProvider struct {
	client  *xhttp.Client
	baseURL string
	apiKey  string
	quotes  *QuoteBook
}

// NewHTTPProvider builds a provider with a bounded per-fetch timeout.
func NewHTTPProvider(cfg *config.Config, quotes *QuoteBook) *HTTPProvider {
	return &HTTPProvider{
		client:  xhttp.NewClient(xhttp.WithTimeout(cfg.Markets.Timeout)),
		baseURL: cfg.Markets.BaseURL,
		apiKey:  cfg.Markets.APIKey,
		quotes:  quotes,
	}
}

type candlePayload struct {
	Status     string    `json:"s"`
	Timestamps []int64   `json:"t"`
	Closes     []float64 `json:"c"`
	Volumes    []float64 `json:"v"`
	Change24h  float64   `json:"d"`
}

func (p *HTTPProvider) GetSeries(ctx context.Context, symbol string, lookbackDays int) (models.MarketSeries, error) {
	var payload candlePayload
	err := p.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    p.baseURL + "/candles",
		QueryParams: map[string][]string{
			"symbol": {symbol},
			"days":   {fmt.Sprintf("%d", lookbackDays)},
			"token":  {p.apiKey},
		},
	}, &payload)
	if err != nil {
		return models.MarketSeries{Symbol: symbol}, fmt.Errorf("fetch candles %s: %w", symbol, err)
	}

	series, err := parseCandles(symbol, payload)
	if err != nil {
		return models.MarketSeries{Symbol: symbol}, err
	}

	series.FetchedAt = time.Now()
	series.Quality = seriesQuality(series, lookbackDays, p.quotes)
	return series, nil
}

// parseCandles validates the upstream payload shape before converting it.
func parseCandles(symbol string, payload candlePayload) (models.MarketSeries, error) {
	if payload.Status != "ok" {
		return models.MarketSeries{}, fmt.Errorf("candles %s: upstream status %q", symbol, payload.Status)
	}
	if len(payload.Timestamps) == 0 || len(payload.Timestamps) != len(payload.Closes) {
		return models.MarketSeries{}, fmt.Errorf("candles %s: malformed payload (%d timestamps, %d closes)",
			symbol, len(payload.Timestamps), len(payload.Closes))
	}

	points := make([]models.MarketPoint, 0, len(payload.Timestamps))
	for i, ts := range payload.Timestamps {
		price := payload.Closes[i]
		if price <= 0 {
			continue
		}
		var vol float64
		if i < len(payload.Volumes) {
			vol = payload.Volumes[i]
		}
		points = append(points, models.MarketPoint{
			Timestamp: time.Unix(ts, 0).UTC(),
			Price:     price,
			Volume:    vol,
		})
	}
	if len(points) == 0 {
		return models.MarketSeries{}, fmt.Errorf("candles %s: no usable points", symbol)
	}

	return models.MarketSeries{Symbol: symbol, Points: points, Change24h: payload.Change24h}, nil
}

// seriesQuality blends completeness (samples vs one point per lookback day)
// with freshness of the newest observation. A live streamed quote counts as
// fresh regardless of candle lag.
func seriesQuality(s models.MarketSeries, lookbackDays int, quotes *QuoteBook) float64 {
	completeness := float64(len(s.Points)) / float64(lookbackDays)
	if completeness > 1 {
		completeness = 1
	}

	freshness := 0.0
	age := time.Since(s.Points[len(s.Points)-1].Timestamp)
	switch {
	case age < time.Hour:
		freshness = 1
	case age < 24*time.Hour:
		freshness = 0.7
	case age < 72*time.Hour:
		freshness = 0.4
	}
	if quotes != nil {
		if q, ok := quotes.Get(s.Symbol); ok && time.Since(q.At) < time.Minute {
			freshness = 1
		}
	}

	return 0.5 + 0.3*completeness + 0.2*freshness
}

var _ drepo.MarketDataProvider = (*HTTPProvider)(nil)
