package autoconfirm

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeConfirmer struct {
	mu    sync.Mutex
	calls []Flags
	err   error
}

func (f *fakeConfirmer) AcceptAll(trades, market, others bool) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Flags{Trades: trades, Market: market})
	return f.err == nil, f.err
}

func (f *fakeConfirmer) snapshot() []Flags {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Flags(nil), f.calls...)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition never met")
}

func TestSchedulerTicks(t *testing.T) {
	confirmer := &fakeConfirmer{}
	s := NewScheduler(confirmer, 10*time.Millisecond)
	s.SetFlags(Flags{Trades: true})

	s.Start(context.Background())
	defer s.Stop()

	waitFor(t, func() bool { return len(confirmer.snapshot()) >= 2 })
	require.Equal(t, Flags{Trades: true}, confirmer.snapshot()[0])
}

func TestSchedulerSurvivesErrors(t *testing.T) {
	confirmer := &fakeConfirmer{err: errors.New("steam is down")}
	s := NewScheduler(confirmer, 10*time.Millisecond)
	s.SetFlags(Flags{Trades: true, Market: true})

	s.Start(context.Background())
	defer s.Stop()

	// Ticks keep coming after a failure.
	waitFor(t, func() bool { return len(confirmer.snapshot()) >= 3 })
}

func TestSchedulerSkipsWhenDisabled(t *testing.T) {
	confirmer := &fakeConfirmer{}
	s := NewScheduler(confirmer, 5*time.Millisecond)

	s.Start(context.Background())
	time.Sleep(50 * time.Millisecond)
	s.Stop()

	require.Empty(t, confirmer.snapshot())
}

func TestSchedulerFlagSwapWhileRunning(t *testing.T) {
	confirmer := &fakeConfirmer{}
	s := NewScheduler(confirmer, 10*time.Millisecond)
	s.SetFlags(Flags{Trades: true})

	s.Start(context.Background())
	defer s.Stop()

	waitFor(t, func() bool { return len(confirmer.snapshot()) >= 1 })
	s.SetFlags(Flags{Market: true})
	waitFor(t, func() bool {
		calls := confirmer.snapshot()
		return len(calls) > 0 && calls[len(calls)-1] == (Flags{Market: true})
	})
}

func TestSchedulerStopIsIdempotent(t *testing.T) {
	s := NewScheduler(&fakeConfirmer{}, time.Minute)
	require.False(t, s.Running())

	s.Start(context.Background())
	require.True(t, s.Running())

	s.Stop()
	s.Stop()
	require.False(t, s.Running())
}

func TestSchedulerContextCancel(t *testing.T) {
	confirmer := &fakeConfirmer{}
	s := NewScheduler(confirmer, 5*time.Millisecond)
	s.SetFlags(Flags{Trades: true})

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	waitFor(t, func() bool { return len(confirmer.snapshot()) >= 1 })

	cancel()
	time.Sleep(20 * time.Millisecond)
	before := len(confirmer.snapshot())
	time.Sleep(30 * time.Millisecond)
	require.Equal(t, before, len(confirmer.snapshot()))
}

func TestFlagsEnabled(t *testing.T) {
	require.False(t, Flags{}.enabled())
	require.True(t, Flags{Trades: true}.enabled())
	require.True(t, Flags{Market: true}.enabled())
}
