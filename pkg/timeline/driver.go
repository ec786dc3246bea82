package timeline

import (
	stderrors "errors"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/barrace/pkg/errors"
)

// ErrClosed is returned by operations on a closed Driver.
var ErrClosed = stderrors.New("timeline: driver closed")

// State is the playback state.
type State int

const (
	Stopped State = iota
	Playing
	// WaitingLoopEnd holds at the last step before resetting to 0.
	WaitingLoopEnd
	// WaitingLoopStart holds at step 0 after a reset before playing again.
	WaitingLoopStart
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Playing:
		return "playing"
	case WaitingLoopEnd:
		return "waiting-loop-end"
	case WaitingLoopStart:
		return "waiting-loop-start"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Snapshot is the observable playback state.
type Snapshot struct {
	Index       float64
	State       State
	Playing     bool
	WaitingLoop bool
}

// Option configures a Driver.
type Option func(*Driver)

// WithScheduler replaces the real-time scheduler.
func WithScheduler(s Scheduler) Option { return func(d *Driver) { d.sched = s } }

// WithLogger sets the logger used for recovered tick failures and debug events.
func WithLogger(l *log.Logger) Option { return func(d *Driver) { d.logger = l } }

// WithOnChange registers a listener called after every state or index change.
// The listener runs outside the driver's lock, on the goroutine that caused
// the change (a timer goroutine for ticks).
func WithOnChange(f func(Snapshot)) Option { return func(d *Driver) { d.onChange = f } }

// Driver owns the playback state of one race. It is safe for concurrent use.
//
// The index only moves forward while playing, except for the atomic reset to
// 0 at a loop boundary. Every scheduled callback carries the generation it was
// scheduled under; Pause, Seek, SetOptions and Close bump the generation so a
// callback that was already in flight returns without effect.
type Driver struct {
	mu    sync.Mutex
	opts  Options
	state State
	// ordinal is the tick count; index = ordinal/SubSteps + offset, where
	// offset keeps the sub-tick remainder of a seek.
	ordinal int
	offset  float64
	gen     uint64
	timer   Timer
	closed  bool

	sched    Scheduler
	logger   *log.Logger
	onChange func(Snapshot)
}

// New creates a stopped driver at index 0.
func New(opts Options, options ...Option) (*Driver, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	d := &Driver{opts: opts}
	for _, o := range options {
		o(d)
	}
	if d.sched == nil {
		d.sched = RealScheduler{}
	}
	if d.logger == nil {
		d.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return d, nil
}

// Snapshot returns the current state.
func (d *Driver) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.snapshotLocked()
}

// Options returns the current options.
func (d *Driver) Options() Options {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.opts
}

// Play starts playback from the current index. Playing at the last step
// with loop enabled enters the loop hold; without loop, or on a degenerate
// timeline, the driver stays stopped.
func (d *Driver) Play() {
	_ = d.update(func() bool {
		if d.state != Stopped {
			return false
		}
		d.startLocked()
		return d.state != Stopped
	})
}

// Pause stops playback and cancels any pending transition.
func (d *Driver) Pause() {
	_ = d.update(func() bool {
		if d.state == Stopped {
			return false
		}
		d.stopLocked()
		return true
	})
}

// Toggle pauses a playing driver and plays a stopped one.
func (d *Driver) Toggle() {
	_ = d.update(func() bool {
		if d.state != Stopped {
			d.stopLocked()
			return true
		}
		d.startLocked()
		return d.state != Stopped
	})
}

// Seek moves to index, clamped to [0, T-1], and stops playback.
func (d *Driver) Seek(index float64) error {
	if math.IsNaN(index) || math.IsInf(index, 0) {
		return errors.New(errors.ErrCodeInvalidIndex, "seek index must be finite, got %v", index)
	}
	return d.update(func() bool {
		d.stopLocked()
		d.setIndexLocked(index)
		return true
	})
}

// SetOptions replaces the options. The pending transition is cancelled and,
// if the driver was playing, rescheduled under the new options from the
// current (clamped) index.
func (d *Driver) SetOptions(opts Options) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	return d.update(func() bool {
		prev := d.state
		index := d.indexLocked()
		d.cancelLocked()
		d.opts = opts
		d.setIndexLocked(index)

		switch {
		case prev == Stopped:
		case opts.Degenerate():
			d.state = Stopped
		case prev == Playing:
			d.state = Stopped
			d.startLocked()
		case prev == WaitingLoopEnd:
			if !opts.Loop {
				d.state = Stopped
			} else {
				d.ordinal, d.offset = opts.TotalTicks(), 0
				d.scheduleLocked(opts.LoopDelayAfter)
			}
		case prev == WaitingLoopStart:
			d.scheduleLocked(opts.LoopDelayBefore)
		}
		return true
	})
}

// Close cancels any pending transition. Further control calls are no-ops
// and Seek/SetOptions return ErrClosed.
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.cancelLocked()
	d.state = Stopped
	d.closed = true
	return nil
}

// update runs fn under the lock and notifies listeners if it reports a change.
// It returns ErrClosed without running fn on a closed driver.
func (d *Driver) update(fn func() bool) error {
	snap, changed, err := d.apply(fn)
	if changed {
		d.notify(snap)
	}
	return err
}

func (d *Driver) apply(fn func() bool) (Snapshot, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return Snapshot{}, false, ErrClosed
	}
	changed := fn()
	return d.snapshotLocked(), changed, nil
}

func (d *Driver) notify(s Snapshot) {
	if d.onChange != nil {
		d.onChange(s)
	}
}

// notifyStopped reports the stop that follows a failed tick. A listener that
// panics again is logged and otherwise ignored.
func (d *Driver) notifyStopped(s Snapshot) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("timeline change listener failed", "panic", r)
		}
	}()
	d.notify(s)
}

func (d *Driver) snapshotLocked() Snapshot {
	return Snapshot{
		Index:       d.indexLocked(),
		State:       d.state,
		Playing:     d.state != Stopped,
		WaitingLoop: d.state == WaitingLoopEnd || d.state == WaitingLoopStart,
	}
}

func (d *Driver) indexLocked() float64 {
	return math.Min(IndexOf(d.ordinal)+d.offset, d.opts.Last())
}

func (d *Driver) setIndexLocked(index float64) {
	index = math.Max(0, math.Min(index, d.opts.Last()))
	// the epsilon keeps exact tick indices from flooring to the previous tick
	d.ordinal = int(math.Floor(index*SubSteps + 1e-9))
	d.offset = math.Max(0, index-IndexOf(d.ordinal))
	if d.ordinal >= d.opts.TotalTicks() {
		d.ordinal, d.offset = d.opts.TotalTicks(), 0
	}
}

// startLocked leaves Stopped according to the current position.
func (d *Driver) startLocked() {
	if d.opts.Degenerate() {
		return
	}
	if d.ordinal >= d.opts.TotalTicks() {
		if !d.opts.Loop {
			return
		}
		d.state = WaitingLoopEnd
		d.scheduleLocked(d.opts.LoopDelayAfter)
		return
	}
	d.state = Playing
	d.scheduleLocked(d.opts.tickDelay(d.ordinal))
}

func (d *Driver) stopLocked() {
	d.cancelLocked()
	d.state = Stopped
}

func (d *Driver) cancelLocked() {
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

func (d *Driver) scheduleLocked(delay time.Duration) {
	d.cancelLocked()
	gen := d.gen
	d.timer = d.sched.AfterFunc(delay, func() { d.fire(gen) })
}

// fire applies one scheduled transition. A panic in the transition or in the
// change listener stops playback instead of killing the timer goroutine.
func (d *Driver) fire(gen uint64) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("timeline tick failed", "panic", r)
			d.mu.Lock()
			if d.closed {
				d.mu.Unlock()
				return
			}
			d.stopLocked()
			snap := d.snapshotLocked()
			d.mu.Unlock()
			d.notifyStopped(snap)
		}
	}()

	snap, ok := d.advance(gen)
	if ok {
		d.notify(snap)
	}
}

func (d *Driver) advance(gen uint64) (Snapshot, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed || gen != d.gen {
		return Snapshot{}, false
	}
	d.timer = nil

	switch d.state {
	case Playing:
		d.ordinal++
		if d.ordinal >= d.opts.TotalTicks() {
			d.ordinal, d.offset = d.opts.TotalTicks(), 0
			if d.opts.Loop {
				d.state = WaitingLoopEnd
				d.scheduleLocked(d.opts.LoopDelayAfter)
			} else {
				d.state = Stopped
				d.logger.Debug("timeline finished")
			}
		} else {
			d.scheduleLocked(d.opts.tickDelay(d.ordinal))
		}
	case WaitingLoopEnd:
		d.ordinal, d.offset = 0, 0
		d.state = WaitingLoopStart
		d.scheduleLocked(d.opts.LoopDelayBefore)
	case WaitingLoopStart:
		d.state = Playing
		d.scheduleLocked(d.opts.tickDelay(0))
	default:
		return Snapshot{}, false
	}
	return d.snapshotLocked(), true
}
