package mock

import (
	"sync"
	"time"

	"github.com/esteban-rocha/svgview"
)

var _ svgview.Scheduler = (*Scheduler)(nil)

// Scheduler is a manual svgview.Scheduler. Timers never fire on their own;
// call Fire to run every armed timer.
type Scheduler struct {
	mu     sync.Mutex
	timers []*Timer
}

// Timer is a timer created by Scheduler.
type Timer struct {
	Delay time.Duration

	s       *Scheduler
	fn      func()
	stopped bool
	fired   bool
}

// AfterFunc records f without running it.
func (s *Scheduler) AfterFunc(d time.Duration, f func()) svgview.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &Timer{Delay: d, s: s, fn: f}
	s.timers = append(s.timers, t)
	return t
}

// Timers returns every timer created so far, in creation order.
func (s *Scheduler) Timers() []*Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Timer(nil), s.timers...)
}

// Armed returns the number of timers that are neither stopped nor fired.
func (s *Scheduler) Armed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// Fire runs every armed timer and returns how many ran. Timers armed by the
// callbacks themselves are left for the next call.
func (s *Scheduler) Fire() int {
	s.mu.Lock()
	var due []*Timer
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			t.fired = true
			due = append(due, t)
		}
	}
	s.mu.Unlock()

	for _, t := range due {
		t.fn()
	}
	return len(due)
}

// Stop implements svgview.Timer.
func (t *Timer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// Stopped reports whether Stop cancelled the timer.
func (t *Timer) Stopped() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	return t.stopped
}

// Force runs the callback even if the timer was stopped, simulating a timer
// that fired concurrently with Stop.
func (t *Timer) Force() {
	t.s.mu.Lock()
	t.fired = true
	t.s.mu.Unlock()
	t.fn()
}
