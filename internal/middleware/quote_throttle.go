package middleware

import (
	"sync"
	"time"

	"InsightHub/internal/domain/models"
	domrepo "InsightHub/internal/domain/repository"
	"InsightHub/internal/service/markets"
)

// QuoteThrottle sits between the WebSocket stream and the quote book. The
// book only serves freshness, so one accepted tick per symbol per interval is
// enough; the rest of a burst is dropped before it touches the shared map.
type QuoteThrottle struct {
	sink    markets.QuoteSink
	metrics domrepo.Metrics

	minInterval time.Duration

	mu       sync.Mutex
	lastSeen map[string]time.Time
}

type ThrottleOption func(*QuoteThrottle)

// WithMinInterval sets the minimum gap between accepted ticks per symbol.
func WithMinInterval(d time.Duration) ThrottleOption {
	return func(t *QuoteThrottle) {
		if d > 0 {
			t.minInterval = d
		}
	}
}

// NewQuoteThrottle wraps a sink with per-symbol throttling.
func NewQuoteThrottle(sink markets.QuoteSink, metrics domrepo.Metrics, opts ...ThrottleOption) *QuoteThrottle {
	t := &QuoteThrottle{
		sink:        sink,
		metrics:     metrics,
		minInterval: time.Second,
		lastSeen:    make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Put forwards the quote unless the symbol has been updated within the
// minimum interval.
func (t *QuoteThrottle) Put(q models.Quote) {
	now := time.Now()

	t.mu.Lock()
	last, seen := t.lastSeen[q.Symbol]
	if seen && now.Sub(last) < t.minInterval {
		t.mu.Unlock()
		if t.metrics != nil {
			t.metrics.RecordError("quote_throttled")
		}
		return
	}
	t.lastSeen[q.Symbol] = now
	t.mu.Unlock()

	t.sink.Put(q)
}

var _ markets.QuoteSink = (*QuoteThrottle)(nil)
