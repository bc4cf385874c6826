// Package autoconfirm periodically accepts pending confirmations for
// the categories the user opted into.
package autoconfirm

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ConfirmAller is the slice of the confirmation client the scheduler
// needs.
type ConfirmAller interface {
	AcceptAll(trades, market, others bool) (bool, error)
}

// Flags selects which confirmation categories a tick accepts. With
// both Trades and Market off the scheduler has nothing to do and ticks
// are skipped.
type Flags struct {
	Trades bool
	Market bool
}

func (f Flags) enabled() bool {
	return f.Trades || f.Market
}

// Scheduler accepts matching confirmations on a fixed interval. A
// failed tick is logged and the next tick runs regardless; transient
// fetch errors must not stop the loop.
type Scheduler struct {
	confirmer ConfirmAller
	interval  time.Duration
	logger    *zap.Logger

	mu      sync.Mutex
	flags   Flags
	running bool
	stop    context.CancelFunc
	done    chan struct{}
}

func NewScheduler(confirmer ConfirmAller, interval time.Duration) *Scheduler {
	return &Scheduler{
		confirmer: confirmer,
		interval:  interval,
		logger:    zap.NewNop(),
	}
}

func (s *Scheduler) SetLogger(logger *zap.Logger) {
	s.logger = logger
}

// SetFlags swaps the category selection; safe while running, the next
// tick picks it up.
func (s *Scheduler) SetFlags(flags Flags) {
	s.mu.Lock()
	s.flags = flags
	s.mu.Unlock()
}

func (s *Scheduler) Flags() Flags {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flags
}

func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Start launches the tick loop. A second Start while running is a
// no-op; the loop ends on Stop or when ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	s.running = true
	s.stop = cancel
	s.done = make(chan struct{})
	go s.loop(ctx, s.done)
}

// Stop halts the loop and waits for an in-flight tick to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	stop, done := s.stop, s.done
	s.mu.Unlock()

	stop()
	<-done
}

func (s *Scheduler) loop(ctx context.Context, done chan struct{}) {
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		close(done)
	}()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick()
		}
	}
}

func (s *Scheduler) tick() {
	flags := s.Flags()
	if !flags.enabled() {
		return
	}
	ok, err := s.confirmer.AcceptAll(flags.Trades, flags.Market, false)
	if err != nil {
		s.logger.Warn("auto-accept pass failed", zap.Error(err))
		return
	}
	if !ok {
		s.logger.Warn("auto-accept pass left confirmations pending")
	}
}
