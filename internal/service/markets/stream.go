package markets

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"InsightHub/internal/domain/models"
	drepo "InsightHub/internal/domain/repository"
	applogger "InsightHub/pkg/logger"
)

// QuoteSink receives streamed quotes.
type QuoteSink interface {
	Put(q models.Quote)
}

// QuoteBook keeps the most recent streamed quote per symbol. Readers use it
// only as a freshness signal, never as a price source for the indicator math.
type QuoteBook struct {
	mu     sync.RWMutex
	quotes map[string]models.Quote
}

func NewQuoteBook() *QuoteBook {
	return &QuoteBook{quotes: make(map[string]models.Quote)}
}

func (b *QuoteBook) Put(q models.Quote) {
	b.mu.Lock()
	b.quotes[q.Symbol] = q
	b.mu.Unlock()
}

func (b *QuoteBook) Get(symbol string) (models.Quote, bool) {
	b.mu.RLock()
	q, ok := b.quotes[symbol]
	b.mu.RUnlock()
	return q, ok
}

// Stream implements a QuoteStream over the market-data WebSocket feed.
type Stream struct {
	apiKey       string
	streamURL    string
	symbols      []string
	pingInterval time.Duration
	l            *applogger.Logger

	conn      *websocket.Conn
	connected bool
}

// NewStream creates a quote stream for the configured symbols.
func NewStream(apiKey, streamURL string, symbols []string, pingInterval time.Duration) *Stream {
	if pingInterval <= 0 {
		pingInterval = 30 * time.Second
	}
	return &Stream{
		apiKey:       apiKey,
		streamURL:    streamURL,
		symbols:      symbols,
		pingInterval: pingInterval,
	}
}

// SetLogger injects a structured logger.
func (s *Stream) SetLogger(l *applogger.Logger) { s.l = l }

// Connect establishes the WebSocket connection.
func (s *Stream) Connect(ctx context.Context) error {
	u := fmt.Sprintf("%s?token=%s", s.streamURL, s.apiKey)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("quote stream connect: %w", err)
	}
	s.conn = conn
	s.connected = true
	if s.l != nil {
		s.l.Info("quote stream connected", applogger.String("url", s.streamURL))
	}
	return nil
}

// Subscribe subscribes to the configured symbols.
func (s *Stream) Subscribe(ctx context.Context) error {
	if s.conn == nil || !s.connected {
		return fmt.Errorf("quote stream not connected")
	}
	for _, sym := range s.symbols {
		msg := map[string]string{"type": "subscribe", "symbol": sym}
		if err := s.conn.WriteJSON(msg); err != nil {
			return fmt.Errorf("subscribe %s: %w", sym, err)
		}
	}
	return nil
}

type wsTick struct {
	S string  `json:"s"`
	P float64 `json:"p"`
	T int64   `json:"t"` // ms
}

type wsMessage struct {
	Type string   `json:"type"`
	Data []wsTick `json:"data"`
}

// Read streams Quote events and errors until ctx is done or the socket fails.
func (s *Stream) Read(ctx context.Context) (<-chan *models.Quote, <-chan error) {
	quotes := make(chan *models.Quote, 1024)
	errs := make(chan error, 1)

	// ping loop
	go func() {
		ticker := time.NewTicker(s.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if s.conn != nil {
					_ = s.conn.WriteMessage(websocket.PingMessage, nil)
				}
			}
		}
	}()

	// read loop
	go func() {
		defer close(quotes)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				if s.conn == nil {
					errs <- fmt.Errorf("quote stream conn nil")
					return
				}
				_, b, err := s.conn.ReadMessage()
				if err != nil {
					errs <- fmt.Errorf("quote stream read: %w", err)
					return
				}
				var m wsMessage
				if err := json.Unmarshal(b, &m); err != nil {
					// ignore non-tick frames
					continue
				}
				if m.Type != "trade" {
					continue
				}
				for _, t := range m.Data {
					q := &models.Quote{
						Symbol: t.S,
						Price:  t.P,
						At:     time.UnixMilli(t.T),
					}
					select {
					case quotes <- q:
					case <-ctx.Done():
						return
					}
				}
			}
		}
	}()

	return quotes, errs
}

// Close shuts down the connection.
func (s *Stream) Close() error {
	s.connected = false
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// IsConnected reports connection state.
func (s *Stream) IsConnected() bool { return s.connected }

var _ drepo.QuoteStream = (*Stream)(nil)

// Pump drains a stream into the sink, reconnecting with a fixed delay until
// ctx is cancelled.
func Pump(ctx context.Context, stream drepo.QuoteStream, sink QuoteSink, reconnectDelay time.Duration, l *applogger.Logger) {
	if reconnectDelay <= 0 {
		reconnectDelay = 5 * time.Second
	}
	for {
		if ctx.Err() != nil {
			return
		}
		if err := stream.Connect(ctx); err != nil {
			if l != nil {
				l.Warn("quote stream connect failed", applogger.Error(err))
			}
			if !sleepCtx(ctx, reconnectDelay) {
				return
			}
			continue
		}
		if err := stream.Subscribe(ctx); err != nil {
			if l != nil {
				l.Warn("quote stream subscribe failed", applogger.Error(err))
			}
			_ = stream.Close()
			if !sleepCtx(ctx, reconnectDelay) {
				return
			}
			continue
		}

		quotes, errs := stream.Read(ctx)
	drain:
		for {
			select {
			case <-ctx.Done():
				_ = stream.Close()
				return
			case q, ok := <-quotes:
				if !ok {
					break drain
				}
				sink.Put(*q)
			case err, ok := <-errs:
				if ok && err != nil && l != nil {
					l.Warn("quote stream error", applogger.Error(err))
				}
				break drain
			}
		}
		_ = stream.Close()
		if !sleepCtx(ctx, reconnectDelay) {
			return
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
