package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"InsightHub/internal/domain/models"
)

type countingSink struct {
	got []models.Quote
}

func (s *countingSink) Put(q models.Quote) { s.got = append(s.got, q) }

func TestQuoteThrottleDropsBursts(t *testing.T) {
	sink := &countingSink{}
	throttle := NewQuoteThrottle(sink, nil, WithMinInterval(time.Hour))

	for i := 0; i < 10; i++ {
		throttle.Put(models.Quote{Symbol: "BTC", Price: float64(100 + i)})
	}

	assert.Len(t, sink.got, 1)
	assert.Equal(t, 100.0, sink.got[0].Price)
}

func TestQuoteThrottleSymbolsIndependent(t *testing.T) {
	sink := &countingSink{}
	throttle := NewQuoteThrottle(sink, nil, WithMinInterval(time.Hour))

	throttle.Put(models.Quote{Symbol: "BTC", Price: 100})
	throttle.Put(models.Quote{Symbol: "ETH", Price: 200})

	assert.Len(t, sink.got, 2)
}

func TestQuoteThrottlePassesAfterInterval(t *testing.T) {
	sink := &countingSink{}
	throttle := NewQuoteThrottle(sink, nil, WithMinInterval(10*time.Millisecond))

	throttle.Put(models.Quote{Symbol: "BTC", Price: 100})
	time.Sleep(20 * time.Millisecond)
	throttle.Put(models.Quote{Symbol: "BTC", Price: 101})

	assert.Len(t, sink.got, 2)
}
