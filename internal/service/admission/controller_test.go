package admission

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"InsightHub/internal/domain/models"
)

func newController(burst, daily int, window time.Duration) *Controller {
	return New(Config{BurstLimit: burst, BurstWindow: window, DailyLimit: daily}, NewMemoryStore())
}

func TestAdmitProBypassesLimits(t *testing.T) {
	c := newController(1, 1, time.Minute)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		d := c.Admit(ctx, "wallet-pro", models.TierPro)
		assert.True(t, d.Allowed)
		assert.Equal(t, models.TierPro, d.Tier)
	}
}

func TestAdmitBurstLimit(t *testing.T) {
	c := newController(3, 100, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.True(t, c.Admit(ctx, "1.2.3.4", models.TierFree).Allowed)
	}

	d := c.Admit(ctx, "1.2.3.4", models.TierFree)
	assert.False(t, d.Allowed)
	assert.Equal(t, models.ReasonRateLimit, d.Reason)
	assert.Greater(t, d.RetryAfter, 0)
	assert.LessOrEqual(t, d.RetryAfter, 60)
}

func TestAdmitDailyLimitPrecedence(t *testing.T) {
	// Burst would also be exceeded; daily must win.
	c := newController(2, 2, time.Minute)
	ctx := context.Background()

	require.True(t, c.Admit(ctx, "1.2.3.4", models.TierFree).Allowed)
	require.True(t, c.Admit(ctx, "1.2.3.4", models.TierFree).Allowed)

	d := c.Admit(ctx, "1.2.3.4", models.TierFree)
	assert.False(t, d.Allowed)
	assert.Equal(t, models.ReasonDailyLimit, d.Reason)
	assert.Greater(t, d.RetryAfter, 0)
}

func TestAdmitWindowReset(t *testing.T) {
	store := NewMemoryStore()
	c := New(Config{BurstLimit: 2, BurstWindow: time.Minute, DailyLimit: 100}, store)
	ctx := context.Background()

	require.True(t, c.Admit(ctx, "1.2.3.4", models.TierFree).Allowed)
	require.True(t, c.Admit(ctx, "1.2.3.4", models.TierFree).Allowed)
	require.False(t, c.Admit(ctx, "1.2.3.4", models.TierFree).Allowed)

	// Force the window into the past; the identifier must be admitted again
	// with a fresh window counter.
	st, err := store.Get(ctx, "1.2.3.4")
	require.NoError(t, err)
	st.WindowResetAt = time.Now().Add(-time.Second)
	require.NoError(t, store.Set(ctx, "1.2.3.4", st))

	d := c.Admit(ctx, "1.2.3.4", models.TierFree)
	assert.True(t, d.Allowed)

	st, err = store.Get(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.Equal(t, 1, st.WindowCount)
	assert.Equal(t, 4, st.DailyCount)
}

func TestAdmitIdentifiersIndependent(t *testing.T) {
	c := newController(1, 100, time.Minute)
	ctx := context.Background()

	require.True(t, c.Admit(ctx, "1.1.1.1", models.TierFree).Allowed)
	require.False(t, c.Admit(ctx, "1.1.1.1", models.TierFree).Allowed)
	assert.True(t, c.Admit(ctx, "2.2.2.2", models.TierFree).Allowed)
}

func TestAdmitConcurrentNoOverAdmission(t *testing.T) {
	c := newController(10, 10, time.Minute)
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if c.Admit(ctx, "1.2.3.4", models.TierFree).Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, allowed)
}

func TestSweepRemovesStaleOnly(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)
	require.NoError(t, store.Set(ctx, "stale", &State{WindowResetAt: past, DailyResetAt: past}))
	require.NoError(t, store.Set(ctx, "live", &State{WindowResetAt: past, DailyResetAt: future}))

	removed := store.Sweep(time.Now())
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, store.Len())
}

func TestConfigTierStore(t *testing.T) {
	ts := NewConfigTierStore([]string{"  Wallet-A ", "wallet-b"})
	ctx := context.Background()

	assert.Equal(t, models.TierPro, ts.Tier(ctx, "wallet-a"))
	assert.Equal(t, models.TierPro, ts.Tier(ctx, "WALLET-B"))
	assert.Equal(t, models.TierFree, ts.Tier(ctx, "wallet-c"))
}
