package admission

import (
	"context"
	"math"
	"sync"
	"time"

	"InsightHub/internal/domain/models"
	applogger "InsightHub/pkg/logger"
)

// Config holds the free-tier limits.
type Config struct {
	BurstLimit  int           // requests per burst window
	BurstWindow time.Duration // e.g. 60s
	DailyLimit  int           // requests per rolling 24h
}

// Controller decides whether a request may proceed. Pro tier always passes;
// free tier is bounded by a burst window and a rolling daily cap, daily
// checked first. Counters reset lazily at call time.
type Controller struct {
	cfg   Config
	store Store
	l     *applogger.Logger

	// Serializes read-modify-write cycles so two simultaneous requests from
	// the same identifier cannot both be admitted past the limit.
	mu sync.Mutex

	stopSweep chan struct{}
	sweepOnce sync.Once
}

// New creates a Controller over the given store.
func New(cfg Config, store Store) *Controller {
	if cfg.BurstLimit <= 0 {
		cfg.BurstLimit = 10
	}
	if cfg.BurstWindow <= 0 {
		cfg.BurstWindow = time.Minute
	}
	if cfg.DailyLimit <= 0 {
		cfg.DailyLimit = 50
	}
	return &Controller{cfg: cfg, store: store, stopSweep: make(chan struct{})}
}

// SetLogger injects a structured logger.
func (c *Controller) SetLogger(l *applogger.Logger) { c.l = l }

// Admit evaluates and, on success, consumes quota for one request.
func (c *Controller) Admit(ctx context.Context, identifier string, tier models.Tier) models.AdmissionDecision {
	if tier == models.TierPro {
		return models.AdmissionDecision{Allowed: true, Tier: tier}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()

	st, err := c.store.Get(ctx, identifier)
	if err != nil {
		// A broken store must not lock clients out.
		if c.l != nil {
			c.l.Warn("admission store get error", applogger.String("id", identifier), applogger.Error(err))
		}
		return models.AdmissionDecision{Allowed: true, Tier: tier}
	}
	if st == nil {
		st = &State{}
	}

	// Lazy resets.
	if !st.WindowResetAt.IsZero() && !now.Before(st.WindowResetAt) {
		st.WindowCount = 0
		st.WindowResetAt = time.Time{}
	}
	if !st.DailyResetAt.IsZero() && !now.Before(st.DailyResetAt) {
		st.DailyCount = 0
		st.DailyResetAt = time.Time{}
	}

	// Daily cap takes precedence over the burst window.
	if st.DailyCount >= c.cfg.DailyLimit {
		return models.AdmissionDecision{
			Allowed:    false,
			Tier:       tier,
			Reason:     models.ReasonDailyLimit,
			RetryAfter: secondsUntil(now, st.DailyResetAt),
		}
	}
	if st.WindowCount >= c.cfg.BurstLimit {
		return models.AdmissionDecision{
			Allowed:    false,
			Tier:       tier,
			Reason:     models.ReasonRateLimit,
			RetryAfter: secondsUntil(now, st.WindowResetAt),
		}
	}

	if st.WindowCount == 0 {
		st.WindowResetAt = now.Add(c.cfg.BurstWindow)
	}
	if st.DailyCount == 0 {
		st.DailyResetAt = now.Add(24 * time.Hour)
	}
	st.WindowCount++
	st.DailyCount++

	if err := c.store.Set(ctx, identifier, st); err != nil && c.l != nil {
		c.l.Warn("admission store set error", applogger.String("id", identifier), applogger.Error(err))
	}

	return models.AdmissionDecision{Allowed: true, Tier: tier}
}

// StartSweeper runs a periodic cleanup of stale identifiers on memory-backed
// stores. Pure housekeeping; lazy resets keep correctness without it.
func (c *Controller) StartSweeper(interval time.Duration) {
	ms, ok := c.store.(*MemoryStore)
	if !ok || interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				removed := ms.Sweep(time.Now())
				if removed > 0 && c.l != nil {
					c.l.Debug("admission sweep", applogger.Int("removed", removed))
				}
			case <-c.stopSweep:
				return
			}
		}
	}()
}

// Stop halts the sweeper if running.
func (c *Controller) Stop() {
	c.sweepOnce.Do(func() { close(c.stopSweep) })
}

func secondsUntil(now, t time.Time) int {
	if t.IsZero() || t.Before(now) {
		return 0
	}
	return int(math.Ceil(t.Sub(now).Seconds()))
}
