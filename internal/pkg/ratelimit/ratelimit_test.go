package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCountRecordClear(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()
	since := time.Now().Add(-5 * time.Minute)

	n, err := store.Count(ctx, "1.2.3.4", since)
	require.NoError(t, err)
	require.Zero(t, n)

	for i := 0; i < 3; i++ {
		require.NoError(t, store.Record(ctx, "1.2.3.4"))
	}
	require.NoError(t, store.Record(ctx, "5.6.7.8"))

	n, err = store.Count(ctx, "1.2.3.4", since)
	require.NoError(t, err)
	require.EqualValues(t, 3, n)

	n, err = store.Count(ctx, "5.6.7.8", since)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	require.NoError(t, store.Clear(ctx, "1.2.3.4"))

	n, err = store.Count(ctx, "1.2.3.4", since)
	require.NoError(t, err)
	require.Zero(t, n)

	n, err = store.Count(ctx, "5.6.7.8", since)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}

func TestCountWindowExcludesOldAttempts(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()

	base := time.Date(2024, 3, 21, 12, 0, 0, 0, time.UTC)
	clock := base
	store.now = func() time.Time { return clock }

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Record(ctx, "1.2.3.4"))
		clock = clock.Add(time.Minute)
	}

	// clock is now base+5m; a 5 minute window sees only the last four
	n, err := store.Count(ctx, "1.2.3.4", clock.Add(-5*time.Minute))
	require.NoError(t, err)
	require.EqualValues(t, 4, n)

	n, err = store.Count(ctx, "1.2.3.4", clock.Add(-time.Hour))
	require.NoError(t, err)
	require.EqualValues(t, 5, n)
}

func TestTake(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()
	since := time.Now().Add(-5 * time.Minute)

	for i := 0; i < 5; i++ {
		allowed, err := store.Take(ctx, "1.2.3.4", since, 5)
		require.NoError(t, err)
		require.True(t, allowed, "attempt %d", i)
	}

	allowed, err := store.Take(ctx, "1.2.3.4", since, 5)
	require.NoError(t, err)
	require.False(t, allowed)

	// A refused attempt is not recorded
	n, err := store.Count(ctx, "1.2.3.4", since)
	require.NoError(t, err)
	require.EqualValues(t, 5, n)

	// Other clients are unaffected
	allowed, err = store.Take(ctx, "5.6.7.8", since, 5)
	require.NoError(t, err)
	require.True(t, allowed)
}

func TestTakeConcurrentNoOvershoot(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()
	since := time.Now().Add(-5 * time.Minute)

	const attempts = 20
	results := make(chan bool, attempts)
	for i := 0; i < attempts; i++ {
		go func() {
			allowed, err := store.Take(ctx, "1.2.3.4", since, 5)
			require.NoError(t, err)
			results <- allowed
		}()
	}

	var granted int
	for i := 0; i < attempts; i++ {
		if <-results {
			granted++
		}
	}
	require.Equal(t, 5, granted)

	n, err := store.Count(ctx, "1.2.3.4", since)
	require.NoError(t, err)
	require.EqualValues(t, 5, n)
}

func TestSweep(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()

	base := time.Date(2024, 3, 21, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return base }
	require.NoError(t, store.Record(ctx, "old"))
	require.NoError(t, store.Record(ctx, "mixed"))

	store.now = func() time.Time { return base.Add(10 * time.Minute) }
	require.NoError(t, store.Record(ctx, "mixed"))

	require.NoError(t, store.Sweep(ctx, base.Add(5*time.Minute)))

	n, err := store.Count(ctx, "old", base.Add(-time.Hour))
	require.NoError(t, err)
	require.Zero(t, n)
	require.NotContains(t, store.attempts, "old")

	n, err = store.Count(ctx, "mixed", base.Add(-time.Hour))
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}

func TestConcurrentRecord(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()

	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 20; j++ {
				_ = store.Record(ctx, "shared")
			}
		}()
	}
	for i := 0; i < 10; i++ {
		<-done
	}

	n, err := store.Count(ctx, "shared", time.Now().Add(-time.Minute))
	require.NoError(t, err)
	require.EqualValues(t, 200, n)
}
