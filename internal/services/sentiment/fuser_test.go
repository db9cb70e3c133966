package sentiment

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"InsightHub/internal/domain/models"
)

func TestFuseNoItems(t *testing.T) {
	assert.Equal(t, 0.0, Fuse(nil, "Will BTC exceed $100k?"))
}

func TestFuseRelevanceBoost(t *testing.T) {
	question := "Will bitcoin rally continue?"
	relevant := []models.NewsItem{
		{Title: "Bitcoin rally gathers steam", Sentiment: 0.6},
		{Title: "Bitcoin ETF inflows surge", Sentiment: 0.6},
	}
	unrelated := []models.NewsItem{
		{Title: "Corn futures edge higher", Sentiment: 0.6},
		{Title: "Oil steadies after selloff", Sentiment: 0.6},
	}

	boosted := Fuse(relevant, question)
	dampened := Fuse(unrelated, question)
	assert.Greater(t, boosted, dampened)
	// All titles match, weight saturates at 1.0: fused == base mean.
	assert.InDelta(t, 0.6, boosted, 1e-9)
	assert.InDelta(t, 0.3, dampened, 1e-9)
}

func TestFuseClamped(t *testing.T) {
	items := []models.NewsItem{
		{Title: "btc", Sentiment: 5},
		{Title: "btc", Sentiment: 3},
	}
	got := Fuse(items, "btc")
	assert.LessOrEqual(t, got, 1.0)
	assert.GreaterOrEqual(t, got, -1.0)
}

func TestFuseNegative(t *testing.T) {
	items := []models.NewsItem{
		{Title: "Ethereum slides on outflows", Sentiment: -0.8},
		{Title: "Ethereum miners capitulate", Sentiment: -0.4},
	}
	got := Fuse(items, "Will ethereum recover this quarter?")
	assert.Less(t, got, 0.0)
	assert.GreaterOrEqual(t, got, -1.0)
}

func TestKeywords(t *testing.T) {
	kws := Keywords("Will BTC exceed $100k by Q4?")
	assert.Contains(t, kws, "btc")
	assert.Contains(t, kws, "100k")
	assert.NotContains(t, kws, "will")
	assert.NotContains(t, kws, "by")
}
