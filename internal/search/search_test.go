package search

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeClock fires timers only when advanced.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Duration
	fn      func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	was := !t.stopped
	t.stopped = true
	return was
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	timer := &fakeTimer{clock: c, at: c.now + d, fn: f}
	c.timers = append(c.timers, timer)
	return timer
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	var due []*fakeTimer
	for _, timer := range c.timers {
		if !timer.stopped && timer.at <= c.now {
			timer.stopped = true
			due = append(due, timer)
		}
	}
	c.mu.Unlock()
	sort.Slice(due, func(i, j int) bool { return due[i].at < due[j].at })
	for _, timer := range due {
		timer.fn()
	}
}

func TestDebounceFiresOnceAfterLastKeystroke(t *testing.T) {
	clock := &fakeClock{}
	d := NewDebouncerWithClock(300*time.Millisecond, clock.AfterFunc)
	var fired []string

	for _, q := range []string{"t", "te", "tea"} {
		q := q
		d.Trigger(func() { fired = append(fired, q) })
		clock.Advance(100 * time.Millisecond)
	}
	require.Empty(t, fired, "no leading-edge call")

	clock.Advance(199 * time.Millisecond)
	require.Empty(t, fired, "fires 300ms after the last keystroke, not before")

	clock.Advance(time.Millisecond)
	require.Equal(t, []string{"tea"}, fired)

	clock.Advance(time.Second)
	require.Equal(t, []string{"tea"}, fired)
}

func TestDebounceStopAndFlush(t *testing.T) {
	clock := &fakeClock{}
	d := NewDebouncerWithClock(300*time.Millisecond, clock.AfterFunc)
	calls := 0

	d.Trigger(func() { calls++ })
	require.True(t, d.Flush())
	require.False(t, d.Flush())
	clock.Advance(time.Second)
	require.Zero(t, calls)

	d.Stop()
	d.Trigger(func() { calls++ })
	clock.Advance(time.Second)
	require.Zero(t, calls)
}

func TestDebounceWithRealTimer(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	done := make(chan string, 3)
	d.Trigger(func() { done <- "a" })
	d.Trigger(func() { done <- "b" })

	select {
	case got := <-done:
		require.Equal(t, "b", got)
	case <-time.After(2 * time.Second):
		t.Fatal("debounced function never ran")
	}
	select {
	case extra := <-done:
		t.Fatalf("unexpected extra call %q", extra)
	case <-time.After(60 * time.Millisecond):
	}
}

func TestGenerations(t *testing.T) {
	var g Generations
	first := g.Next()
	require.True(t, g.Current(first))
	second := g.Next()
	require.False(t, g.Current(first))
	require.True(t, g.Current(second))
}

func TestLiveDropsStaleResponses(t *testing.T) {
	clock := &fakeClock{}
	release := map[string]chan struct{}{
		"te":  make(chan struct{}),
		"tea": make(chan struct{}),
	}
	var mu sync.Mutex
	var delivered []Result[string]
	got := make(chan struct{}, 2)

	live := NewLive(context.Background(), NewDebouncerWithClock(300*time.Millisecond, clock.AfterFunc),
		func(ctx context.Context, q string) (string, error) {
			<-release[q]
			return "results for " + q, nil
		},
		func(r Result[string]) {
			mu.Lock()
			delivered = append(delivered, r)
			mu.Unlock()
			got <- struct{}{}
		})

	live.Input("te")
	clock.Advance(300 * time.Millisecond)
	live.Input("tea")
	clock.Advance(300 * time.Millisecond)

	// The newer request answers first; the slow older one arrives late.
	close(release["tea"])
	<-got
	close(release["te"])
	live.Close()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, delivered, 1)
	require.Equal(t, "tea", delivered[0].Query)
	require.Equal(t, "results for tea", delivered[0].Value)
	require.EqualValues(t, 1, live.Dropped())
}

func TestLiveCancelsSupersededRequest(t *testing.T) {
	cancelled := make(chan error, 1)
	delivered := make(chan Result[int], 2)
	live := NewLive(context.Background(), NewDebouncer(time.Hour),
		func(ctx context.Context, q string) (int, error) {
			if q == "slow" {
				<-ctx.Done()
				cancelled <- ctx.Err()
				return 0, ctx.Err()
			}
			return len(q), nil
		},
		func(r Result[int]) { delivered <- r })

	live.Now("slow")
	live.Now("fast")

	select {
	case err := <-cancelled:
		require.True(t, errors.Is(err, context.Canceled))
	case <-time.After(2 * time.Second):
		t.Fatal("superseded request was not cancelled")
	}
	r := <-delivered
	require.Equal(t, 4, r.Value)
	live.Close()
	require.Empty(t, delivered)
}

func TestLiveConcurrentSubmitsKeepNewestAlive(t *testing.T) {
	const n = 32
	release := make(chan struct{})
	delivered := make(chan Result[string], n)
	live := NewLive(context.Background(), NewDebouncer(time.Hour),
		func(ctx context.Context, q string) (string, error) {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-release:
				return q, nil
			}
		},
		func(r Result[string]) { delivered <- r })

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			live.Now(string(rune('a' + i)))
		}(i)
	}
	wg.Wait()
	close(release)

	select {
	case r := <-delivered:
		require.NoError(t, r.Err)
		require.Equal(t, r.Query, r.Value)
		require.True(t, live.gens.Current(r.Token))
	case <-time.After(2 * time.Second):
		t.Fatal("newest request was not delivered")
	}
	live.Close()
	require.Empty(t, delivered)
	require.EqualValues(t, n-1, live.Dropped())
}
