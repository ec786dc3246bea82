package timeline

import (
	"sort"
	"sync"
	"time"
)

// Timer is a pending scheduled callback.
type Timer interface {
	// Stop prevents the callback from running. It reports whether the call
	// stopped the timer, as time.Timer.Stop does.
	Stop() bool
}

// Scheduler runs callbacks after a delay.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// RealScheduler schedules on the runtime timer heap.
type RealScheduler struct{}

// AfterFunc wraps time.AfterFunc.
func (RealScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// ManualScheduler is a virtual clock for tests and offline sampling.
// Callbacks only run inside Advance, on the calling goroutine, in deadline
// order (ties in scheduling order).
type ManualScheduler struct {
	mu      sync.Mutex
	now     time.Duration
	seq     uint64
	pending []*manualTimer
}

type manualTimer struct {
	s   *ManualScheduler
	at  time.Duration
	seq uint64
	f   func()
}

// NewManualScheduler returns a clock at time 0.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// AfterFunc schedules f at Now()+d.
func (m *ManualScheduler) AfterFunc(d time.Duration, f func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d < 0 {
		d = 0
	}
	m.seq++
	t := &manualTimer{s: m, at: m.now + d, seq: m.seq, f: f}
	m.pending = append(m.pending, t)
	return t
}

func (t *manualTimer) Stop() bool {
	m := t.s
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, p := range m.pending {
		if p == t {
			m.pending = append(m.pending[:i], m.pending[i+1:]...)
			return true
		}
	}
	return false
}

// Now returns the virtual time.
func (m *ManualScheduler) Now() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Pending returns the number of scheduled callbacks.
func (m *ManualScheduler) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

// Advance moves the clock forward by d, running every callback that falls due,
// including callbacks scheduled by earlier callbacks within the window.
func (m *ManualScheduler) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now + d
	m.mu.Unlock()

	for {
		m.mu.Lock()
		next := m.popDueLocked(target)
		if next == nil {
			m.now = target
			m.mu.Unlock()
			return
		}
		m.now = next.at
		m.mu.Unlock()
		next.f()
	}
}

func (m *ManualScheduler) popDueLocked(target time.Duration) *manualTimer {
	if len(m.pending) == 0 {
		return nil
	}
	sort.Slice(m.pending, func(i, j int) bool {
		a, b := m.pending[i], m.pending[j]
		if a.at != b.at {
			return a.at < b.at
		}
		return a.seq < b.seq
	})
	first := m.pending[0]
	if first.at > target {
		return nil
	}
	m.pending = m.pending[1:]
	return first
}
