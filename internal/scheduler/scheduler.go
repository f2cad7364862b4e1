// Package scheduler collapses the redundant drain triggers a destination
// screen has (focus events, custom in-process signals, a polling interval)
// into one debounced callback, so overlapping triggers cost one store read
// instead of three.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrStarted is returned when Start is called on a running scheduler.
var ErrStarted = errors.New("scheduler: already started")

// Trigger is the debounced callback, typically a Coordinator.Drain wrapper.
type Trigger func(ctx context.Context)

// Scheduler multiplexes trigger sources. Zero value is not usable; construct
// with New. Start and Stop are the explicit lifecycle: nothing registers
// itself at package load.
type Scheduler struct {
	fire     Trigger
	poll     time.Duration
	debounce time.Duration

	mu      sync.Mutex
	notify  chan struct{}
	done    chan struct{}
	wg      sync.WaitGroup
	started bool
}

// New builds a scheduler firing fn. poll <= 0 disables the polling source;
// debounce <= 0 fires on the next loop iteration without coalescing delay.
func New(fn Trigger, poll, debounce time.Duration) *Scheduler {
	return &Scheduler{
		fire:     fn,
		poll:     poll,
		debounce: debounce,
		notify:   make(chan struct{}, 1),
	}
}

// Start launches the trigger loop. The loop stops when ctx is cancelled or
// Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return ErrStarted
	}
	s.started = true
	s.done = make(chan struct{})
	s.wg.Add(1)
	go s.loop(ctx, s.done)
	return nil
}

// Notify requests a drain: focus handlers and in-process signals call this.
// Pending notifications coalesce; calling on a stopped scheduler is a no-op.
func (s *Scheduler) Notify() {
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// Stop halts the loop and waits for an in-flight callback to finish.
// Idempotent.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	close(s.done)
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *Scheduler) loop(ctx context.Context, done <-chan struct{}) {
	defer s.wg.Done()

	var tickC <-chan time.Time
	if s.poll > 0 {
		ticker := time.NewTicker(s.poll)
		defer ticker.Stop()
		tickC = ticker.C
	}

	var timer *time.Timer
	var timerC <-chan time.Time
	arm := func() {
		if s.debounce <= 0 {
			s.fire(ctx)
			return
		}
		if timer == nil {
			timer = time.NewTimer(s.debounce)
			timerC = timer.C
			return
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(s.debounce)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			return
		case <-s.notify:
			arm()
		case <-tickC:
			arm()
		case <-timerC:
			timer = nil
			timerC = nil
			s.fire(ctx)
		}
	}
}
