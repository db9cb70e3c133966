package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"InsightHub/internal/domain/models"
	drepo "InsightHub/internal/domain/repository"
	pkgch "InsightHub/pkg/clickhouse"
	applogger "InsightHub/pkg/logger"
)

// SchemaStatements creates the insights archive tables (idempotent).
func SchemaStatements(database string) []string {
	return []string{
		fmt.Sprintf(`CREATE DATABASE IF NOT EXISTS %s`, database),
		fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s.insights_log (
            fingerprint   String,
            question      String,
            category      LowCardinality(String),
            horizon       LowCardinality(String),
            analysis_type LowCardinality(String),
            probability   Float64,
            confidence    Float64,
            sentiment     Float64,
            data_quality  Float64,
            cached        UInt8,
            took_ms       Int64,
            created_at    DateTime
        ) ENGINE = MergeTree()
        PARTITION BY toYYYYMM(created_at)
        ORDER BY (category, created_at)
        TTL created_at + INTERVAL 90 DAY`, database),
	}
}

// CHArchive persists generated insights to ClickHouse for offline calibration
// analysis. Writes are buffered and flushed by size or interval; a failed
// flush is logged and dropped, never surfaced to the request path.
type CHArchive struct {
	db       *sql.DB
	health   func(context.Context) error
	database string
	l        *applogger.Logger

	mu        sync.Mutex
	buf       []*models.InsightEvent
	batchSize int

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// NewCHArchive wires the archive over a ClickHouse client and starts the
// interval flusher.
func NewCHArchive(ch *pkgch.Client, database string, batchSize int, flushInterval time.Duration) *CHArchive {
	if batchSize <= 0 {
		batchSize = 100
	}
	if flushInterval <= 0 {
		flushInterval = 10 * time.Second
	}
	a := &CHArchive{
		db:        ch.DB(),
		health:    ch.Health,
		database:  database,
		batchSize: batchSize,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	go a.flushLoop(flushInterval)
	return a
}

// SetLogger injects a structured logger.
func (a *CHArchive) SetLogger(l *applogger.Logger) { a.l = l }

// Store buffers one event, flushing when the batch is full.
func (a *CHArchive) Store(_ context.Context, ev *models.InsightEvent) error {
	a.mu.Lock()
	a.buf = append(a.buf, ev)
	full := len(a.buf) >= a.batchSize
	a.mu.Unlock()

	if full {
		a.flush()
	}
	return nil
}

// Health pings the underlying connection.
func (a *CHArchive) Health(ctx context.Context) error {
	return a.health(ctx)
}

// Close flushes remaining events and stops the flusher.
func (a *CHArchive) Close() error {
	a.stopOnce.Do(func() { close(a.stop) })
	<-a.done
	a.flush()
	return nil
}

func (a *CHArchive) flushLoop(interval time.Duration) {
	defer close(a.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			a.flush()
		case <-a.stop:
			return
		}
	}
}

func (a *CHArchive) flush() {
	a.mu.Lock()
	if len(a.buf) == 0 {
		a.mu.Unlock()
		return
	}
	batch := a.buf
	a.buf = nil
	a.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.insert(ctx, batch); err != nil && a.l != nil {
		a.l.Error("insights archive flush failed",
			applogger.Int("events", len(batch)),
			applogger.Error(err),
		)
	}
}

func (a *CHArchive) insert(ctx context.Context, evs []*models.InsightEvent) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("archive begin: %w", err)
	}
	q := fmt.Sprintf(`
        INSERT INTO %s.insights_log
            (fingerprint, question, category, horizon, analysis_type,
             probability, confidence, sentiment, data_quality, cached, took_ms, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, a.database)
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("archive prepare: %w", err)
	}
	defer stmt.Close()

	for _, ev := range evs {
		cached := uint8(0)
		if ev.Cached {
			cached = 1
		}
		if _, err := stmt.ExecContext(ctx,
			ev.Fingerprint, ev.Question, ev.Category, ev.Horizon, ev.AnalysisType,
			ev.Probability, ev.Confidence, ev.Sentiment, ev.DataQuality,
			cached, ev.TookMs, ev.CreatedAt,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("archive exec: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("archive commit: %w", err)
	}
	return nil
}

var _ drepo.Archive = (*CHArchive)(nil)
