package markets

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"InsightHub/internal/domain/models"
)

func TestSyntheticDeterministic(t *testing.T) {
	p := NewSyntheticProvider()
	ctx := context.Background()

	a, err := p.GetSeries(ctx, "BTC", 30)
	require.NoError(t, err)
	b, err := p.GetSeries(ctx, "BTC", 30)
	require.NoError(t, err)

	require.Len(t, a.Points, 30)
	for i := range a.Points {
		assert.Equal(t, a.Points[i].Price, b.Points[i].Price)
	}
}

func TestSyntheticSymbolsDiffer(t *testing.T) {
	p := NewSyntheticProvider()
	ctx := context.Background()

	btc, err := p.GetSeries(ctx, "BTC", 10)
	require.NoError(t, err)
	eth, err := p.GetSeries(ctx, "ETH", 10)
	require.NoError(t, err)

	assert.NotEqual(t, btc.Points[0].Price, eth.Points[0].Price)
}

func TestParseCandlesRejectsMalformed(t *testing.T) {
	_, err := parseCandles("BTC", candlePayload{Status: "no_data"})
	assert.Error(t, err)

	_, err = parseCandles("BTC", candlePayload{
		Status:     "ok",
		Timestamps: []int64{1, 2, 3},
		Closes:     []float64{10, 20},
	})
	assert.Error(t, err)

	// Non-positive prices are dropped; all dropped means no usable points.
	_, err = parseCandles("BTC", candlePayload{
		Status:     "ok",
		Timestamps: []int64{1, 2},
		Closes:     []float64{0, -5},
	})
	assert.Error(t, err)
}

func TestParseCandlesSkipsBadPoints(t *testing.T) {
	s, err := parseCandles("BTC", candlePayload{
		Status:     "ok",
		Timestamps: []int64{1, 2, 3},
		Closes:     []float64{10, 0, 30},
		Volumes:    []float64{100, 100, 100},
	})
	require.NoError(t, err)
	assert.Len(t, s.Points, 2)
	assert.Equal(t, 30.0, s.Points[1].Price)
}

func TestSeriesQualityBounds(t *testing.T) {
	fresh := models.MarketSeries{
		Symbol: "BTC",
		Points: []models.MarketPoint{{Timestamp: time.Now(), Price: 100}},
	}
	q := seriesQuality(fresh, 30, nil)
	assert.Greater(t, q, 0.0)
	assert.LessOrEqual(t, q, 1.0)

	stale := models.MarketSeries{
		Symbol: "BTC",
		Points: []models.MarketPoint{{Timestamp: time.Now().Add(-30 * 24 * time.Hour), Price: 100}},
	}
	assert.Less(t, seriesQuality(stale, 30, nil), q)
}

func TestSeriesQualityStreamedQuoteCountsFresh(t *testing.T) {
	stale := models.MarketSeries{
		Symbol: "BTC",
		Points: []models.MarketPoint{{Timestamp: time.Now().Add(-10 * 24 * time.Hour), Price: 100}},
	}
	base := seriesQuality(stale, 30, nil)

	book := NewQuoteBook()
	book.Put(models.Quote{Symbol: "BTC", Price: 101, At: time.Now()})
	assert.Greater(t, seriesQuality(stale, 30, book), base)
}
