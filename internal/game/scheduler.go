package game

import "time"

// Clock abstracts time so rooms can be driven deterministically in tests.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type Timer interface {
	Stop() bool
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// SystemClock is the wall clock.
var SystemClock Clock = systemClock{}

// Scheduler owns a room's turn countdown plus any one-shot delays. All of its
// callbacks are delivered through post, which hands them to the room loop, so
// the scheduler itself needs no locking as long as it is only driven from
// that loop.
type Scheduler struct {
	clock Clock
	post  func(func())
	tick  time.Duration

	token uint64
	timer Timer
}

func NewScheduler(clock Clock, post func(func())) *Scheduler {
	return &Scheduler{clock: clock, post: post, tick: time.Second}
}

// Start cancels any running countdown and begins a new one lasting d.
// onTick receives the remaining time after every tick except the last one,
// which calls onExpire instead.
func (s *Scheduler) Start(d time.Duration, onTick func(remaining time.Duration), onExpire func()) {
	s.Cancel()
	tok := s.token
	remaining := d

	var next func()
	next = func() {
		s.timer = s.clock.AfterFunc(s.tick, func() {
			s.post(func() {
				if s.token != tok {
					return
				}
				remaining -= s.tick
				if remaining <= 0 {
					s.timer = nil
					s.token++
					onExpire()
					return
				}
				onTick(remaining)
				if s.token == tok {
					next()
				}
			})
		})
	}
	next()
}

// Cancel stops the countdown. Ticks already queued on the room loop are
// discarded when they arrive.
func (s *Scheduler) Cancel() {
	s.token++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// Active reports whether a countdown is running.
func (s *Scheduler) Active() bool {
	return s.timer != nil
}

// Handle is a cancellable one-shot delay created by After.
type Handle struct {
	done  bool
	timer Timer
}

// After runs fn on the room loop once d has elapsed unless the returned
// handle is cancelled first.
func (s *Scheduler) After(d time.Duration, fn func()) *Handle {
	h := &Handle{}
	h.timer = s.clock.AfterFunc(d, func() {
		s.post(func() {
			if h.done {
				return
			}
			h.done = true
			fn()
		})
	})
	return h
}

// Cancel is safe on a nil or already fired handle.
func (h *Handle) Cancel() {
	if h == nil || h.done {
		return
	}
	h.done = true
	h.timer.Stop()
}

func (h *Handle) Pending() bool {
	return h != nil && !h.done
}
