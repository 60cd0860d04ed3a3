package player

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kvasen/spotnow/internal/shared"
)

// waitFor polls until cond holds or the deadline passes. Refreshes run on
// background goroutines, so tests observe their effects asynchronously.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func TestCache(t *testing.T) {
	quiet := shared.NewLogger(io.Discard)

	t.Run("Empty Before First Refresh", func(t *testing.T) {
		cache := NewCache(time.Hour, func(ctx context.Context) (*Snapshot, error) {
			return &Snapshot{Track: TrackInfo{Name: "Song A"}}, nil
		}, quiet)

		if got := cache.Get(); got != nil {
			t.Errorf("expected nil before first refresh completes, got %+v", got)
		}

		waitFor(t, func() bool { return cache.Get() != nil })
		if got := cache.Get(); got.Track.Name != "Song A" {
			t.Errorf("expected Song A, got %+v", got)
		}
	})

	t.Run("Get Never Blocks", func(t *testing.T) {
		release := make(chan struct{})
		cache := NewCache(time.Millisecond, func(ctx context.Context) (*Snapshot, error) {
			<-release
			return nil, nil
		}, quiet)
		defer close(release)

		done := make(chan struct{})
		go func() {
			for range 10 {
				cache.Get()
			}
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("Get blocked on an in-flight refresh")
		}
	})

	t.Run("At Most One Refresh In Flight", func(t *testing.T) {
		var started atomic.Int64
		release := make(chan struct{})
		cache := NewCache(time.Nanosecond, func(ctx context.Context) (*Snapshot, error) {
			started.Add(1)
			<-release
			return nil, nil
		}, quiet)

		// The interval is effectively always elapsed; only the in-flight
		// flag can hold concurrent refreshes back.
		for range 20 {
			cache.Get()
			time.Sleep(time.Millisecond)
		}
		if got := started.Load(); got != 1 {
			t.Errorf("expected a single in-flight refresh, got %d", got)
		}

		close(release)
		waitFor(t, func() bool {
			cache.Get()
			return started.Load() > 1
		})
	})

	t.Run("Interval Gates Refresh Attempts", func(t *testing.T) {
		var calls atomic.Int64
		cache := NewCache(time.Hour, func(ctx context.Context) (*Snapshot, error) {
			calls.Add(1)
			return nil, nil
		}, quiet)

		for range 10 {
			cache.Get()
		}
		waitFor(t, func() bool { return calls.Load() == 1 })

		// Still within the interval, no further attempts.
		for range 10 {
			cache.Get()
		}
		time.Sleep(20 * time.Millisecond)
		if got := calls.Load(); got != 1 {
			t.Errorf("expected one refresh within the interval, got %d", got)
		}
	})

	t.Run("Failure Keeps Previous Value", func(t *testing.T) {
		var fail atomic.Bool
		var calls atomic.Int64
		cache := NewCache(time.Nanosecond, func(ctx context.Context) (*Snapshot, error) {
			calls.Add(1)
			if fail.Load() {
				return nil, errors.New("upstream unavailable")
			}
			return &Snapshot{Track: TrackInfo{Name: "Song A"}}, nil
		}, quiet)

		cache.Get()
		waitFor(t, func() bool { return cache.Get() != nil })

		fail.Store(true)
		before := calls.Load()
		waitFor(t, func() bool {
			cache.Get()
			return calls.Load() > before
		})

		if got := cache.Get(); got == nil || got.Track.Name != "Song A" {
			t.Errorf("failed refresh must keep the previous snapshot, got %+v", got)
		}
	})

	t.Run("Empty Result Replaces Value", func(t *testing.T) {
		var empty atomic.Bool
		var calls atomic.Int64
		cache := NewCache(time.Nanosecond, func(ctx context.Context) (*Snapshot, error) {
			calls.Add(1)
			if empty.Load() {
				return nil, nil
			}
			return &Snapshot{Track: TrackInfo{Name: "Song A"}}, nil
		}, quiet)

		cache.Get()
		waitFor(t, func() bool { return cache.Get() != nil })

		// Playback stopping is a successful refresh and must clear the
		// stale snapshot rather than pinning it.
		empty.Store(true)
		waitFor(t, func() bool {
			before := calls.Load()
			got := cache.Get()
			return calls.Load() >= before && got == nil
		})
	})
}
