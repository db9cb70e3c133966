package news

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyntheticDeterministic(t *testing.T) {
	p := NewSyntheticProvider()
	ctx := context.Background()

	a, err := p.GetNews(ctx, []string{"btc", "bitcoin"}, 5)
	require.NoError(t, err)
	b, err := p.GetNews(ctx, []string{"btc", "bitcoin"}, 5)
	require.NoError(t, err)

	require.Len(t, a, 5)
	for i := range a {
		assert.Equal(t, a[i].Title, b[i].Title)
		assert.Equal(t, a[i].Sentiment, b[i].Sentiment)
	}
}

func TestSyntheticSentimentInRange(t *testing.T) {
	p := NewSyntheticProvider()

	items, err := p.GetNews(context.Background(), []string{"eth"}, 6)
	require.NoError(t, err)
	for _, it := range items {
		assert.GreaterOrEqual(t, it.Sentiment, -1.0)
		assert.LessOrEqual(t, it.Sentiment, 1.0)
		assert.Contains(t, it.Title, "ETH")
	}
}

func TestSyntheticKeywordSetsDiffer(t *testing.T) {
	p := NewSyntheticProvider()
	ctx := context.Background()

	a, err := p.GetNews(ctx, []string{"btc"}, 4)
	require.NoError(t, err)
	b, err := p.GetNews(ctx, []string{"gold"}, 4)
	require.NoError(t, err)

	differ := false
	for i := range a {
		if a[i].Sentiment != b[i].Sentiment {
			differ = true
		}
	}
	assert.True(t, differ)
}
