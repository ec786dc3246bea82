package timeline

import (
	"math"
	"testing"
	"time"

	"github.com/matzehuels/barrace/pkg/errors"
	"github.com/matzehuels/barrace/pkg/settings"
)

func loopOptions() Options {
	return Options{
		Steps:           10,
		Duration:        30 * time.Second,
		Loop:            true,
		LoopDelayBefore: time.Second,
		LoopDelayAfter:  time.Second,
	}
}

func newTestDriver(t *testing.T, opts Options, extra ...Option) (*Driver, *ManualScheduler) {
	t.Helper()
	s := NewManualScheduler()
	d, err := New(opts, append([]Option{WithScheduler(s)}, extra...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d, s
}

func assertSnapshot(t *testing.T, got Snapshot, index float64, state State) {
	t.Helper()
	if got.Index != index || got.State != state {
		t.Fatalf("snapshot = {index %v, %s}, want {index %v, %s}", got.Index, got.State, index, state)
	}
}

func TestTickTimeExact(t *testing.T) {
	for _, o := range []Options{
		loopOptions(),
		{Steps: 7, Duration: 12345678901},
		{Steps: 2, Duration: time.Millisecond},
		{Steps: 365, Duration: 17 * time.Second},
	} {
		total := o.TotalTicks()
		if got := o.TickTime(total); got != o.Duration {
			t.Errorf("TickTime(%d) = %v, want %v", total, got, o.Duration)
		}
		var sum time.Duration
		for k := 0; k < total; k++ {
			if o.TickTime(k+1) < o.TickTime(k) {
				t.Fatalf("TickTime not monotone at %d", k)
			}
			sum += o.tickDelay(k)
		}
		if sum != o.Duration {
			t.Errorf("sum of tick delays = %v, want %v", sum, o.Duration)
		}
	}
}

func TestLoopCycle(t *testing.T) {
	d, s := newTestDriver(t, loopOptions())

	d.Play()
	assertSnapshot(t, d.Snapshot(), 0, Playing)

	s.Advance(30*time.Second - 1)
	if snap := d.Snapshot(); snap.Index >= 9 || snap.State != Playing {
		t.Fatalf("just before the end: %+v", snap)
	}

	s.Advance(1)
	assertSnapshot(t, d.Snapshot(), 9, WaitingLoopEnd)

	s.Advance(time.Second - 1)
	assertSnapshot(t, d.Snapshot(), 9, WaitingLoopEnd)

	s.Advance(1)
	assertSnapshot(t, d.Snapshot(), 0, WaitingLoopStart)

	s.Advance(time.Second)
	assertSnapshot(t, d.Snapshot(), 0, Playing)

	s.Advance(loopOptions().tickDelay(0))
	assertSnapshot(t, d.Snapshot(), 1.0/150, Playing)
}

func TestNoLoopStops(t *testing.T) {
	opts := loopOptions()
	opts.Loop = false
	d, s := newTestDriver(t, opts)

	d.Play()
	s.Advance(30 * time.Second)
	assertSnapshot(t, d.Snapshot(), 9, Stopped)
	if s.Pending() != 0 {
		t.Errorf("Pending() = %d after finishing, want 0", s.Pending())
	}

	d.Play()
	assertSnapshot(t, d.Snapshot(), 9, Stopped)
}

func TestPlayAtEndWithLoop(t *testing.T) {
	d, s := newTestDriver(t, loopOptions())
	if err := d.Seek(9); err != nil {
		t.Fatal(err)
	}
	d.Play()
	assertSnapshot(t, d.Snapshot(), 9, WaitingLoopEnd)
	s.Advance(time.Second)
	assertSnapshot(t, d.Snapshot(), 0, WaitingLoopStart)
}

func TestSeekWhilePlaying(t *testing.T) {
	d, s := newTestDriver(t, loopOptions())
	d.Play()
	s.Advance(5 * time.Second)

	if err := d.Seek(2); err != nil {
		t.Fatal(err)
	}
	assertSnapshot(t, d.Snapshot(), 2, Stopped)
	if s.Pending() != 0 {
		t.Fatalf("Pending() = %d after seek, want 0", s.Pending())
	}

	s.Advance(time.Minute)
	assertSnapshot(t, d.Snapshot(), 2, Stopped)
}

func TestSeekDuringLoopHoldCancelsReset(t *testing.T) {
	d, s := newTestDriver(t, loopOptions())
	d.Play()
	s.Advance(30 * time.Second)
	assertSnapshot(t, d.Snapshot(), 9, WaitingLoopEnd)

	if err := d.Seek(3); err != nil {
		t.Fatal(err)
	}
	s.Advance(5 * time.Second)
	assertSnapshot(t, d.Snapshot(), 3, Stopped)
}

func TestStaleCallbackIgnored(t *testing.T) {
	// A scheduler whose Stop never succeeds, like a timer that already fired.
	s := NewManualScheduler()
	leaky := schedulerFunc(func(d time.Duration, f func()) Timer {
		s.AfterFunc(d, f)
		return noopTimer{}
	})
	d, err := New(loopOptions(), WithScheduler(leaky))
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()

	d.Play()
	d.Pause()
	s.Advance(time.Minute)
	assertSnapshot(t, d.Snapshot(), 0, Stopped)
}

func TestIndexMonotoneWhilePlaying(t *testing.T) {
	var snaps []Snapshot
	d, s := newTestDriver(t, loopOptions(), WithOnChange(func(sn Snapshot) {
		snaps = append(snaps, sn)
	}))
	d.Play()
	s.Advance(70 * time.Second)

	if len(snaps) < 2*1350 {
		t.Fatalf("got %d snapshots, want at least two passes", len(snaps))
	}
	for i := 1; i < len(snaps); i++ {
		prev, cur := snaps[i-1], snaps[i]
		if cur.Index < prev.Index && !(cur.Index == 0 && cur.State == WaitingLoopStart) {
			t.Fatalf("index went back from %v to %v in state %s", prev.Index, cur.Index, cur.State)
		}
		if cur.Index < 0 || cur.Index > 9 {
			t.Fatalf("index %v out of range", cur.Index)
		}
	}
}

func TestToggle(t *testing.T) {
	d, s := newTestDriver(t, loopOptions())
	d.Toggle()
	if !d.Snapshot().Playing {
		t.Fatal("Toggle() from stopped should play")
	}
	s.Advance(time.Second)
	d.Toggle()
	snap := d.Snapshot()
	if snap.Playing {
		t.Fatal("Toggle() while playing should stop")
	}
	s.Advance(time.Second)
	if got := d.Snapshot().Index; got != snap.Index {
		t.Errorf("index moved after pause: %v -> %v", snap.Index, got)
	}
}

func TestDegenerate(t *testing.T) {
	for _, opts := range []Options{
		{Steps: 1, Duration: 10 * time.Second, Loop: true},
		{Steps: 5, Duration: 0, Loop: true},
	} {
		d, s := newTestDriver(t, opts)
		d.Play()
		assertSnapshot(t, d.Snapshot(), 0, Stopped)
		if s.Pending() != 0 {
			t.Errorf("Pending() = %d, want 0", s.Pending())
		}
	}
}

func TestSeekClampsAndValidates(t *testing.T) {
	d, _ := newTestDriver(t, loopOptions())
	tests := []struct {
		in, want float64
	}{
		{-3, 0},
		{100, 9},
		{4.25, 4.25},
	}
	for _, tt := range tests {
		if err := d.Seek(tt.in); err != nil {
			t.Fatal(err)
		}
		if got := d.Snapshot().Index; math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("Seek(%v) index = %v, want %v", tt.in, got, tt.want)
		}
	}
	if err := d.Seek(math.NaN()); !errors.Is(err, errors.ErrCodeInvalidIndex) {
		t.Errorf("Seek(NaN) = %v, want INVALID_INDEX", err)
	}
}

func TestSetOptionsReschedules(t *testing.T) {
	d, s := newTestDriver(t, loopOptions())
	d.Play()
	s.Advance(3 * time.Second)
	before := d.Snapshot().Index

	slow := loopOptions()
	slow.Duration = 60 * time.Second
	if err := d.SetOptions(slow); err != nil {
		t.Fatal(err)
	}
	if s.Pending() != 1 {
		t.Fatalf("Pending() = %d, want 1", s.Pending())
	}
	assertSnapshot(t, d.Snapshot(), before, Playing)

	s.Advance(slow.tickDelay(0) - 1)
	assertSnapshot(t, d.Snapshot(), before, Playing)

	shorter := loopOptions()
	shorter.Steps = 2
	if err := d.SetOptions(shorter); err != nil {
		t.Fatal(err)
	}
	if got := d.Snapshot(); got.Index > 1 {
		t.Errorf("index %v not clamped to new range", got.Index)
	}

	if err := d.SetOptions(Options{Steps: 0}); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("SetOptions(invalid) = %v, want INVALID_CONFIG", err)
	}
}

func TestPanicInListenerStops(t *testing.T) {
	d, s := newTestDriver(t, loopOptions(), WithOnChange(func(sn Snapshot) {
		if sn.Index > 1 {
			panic("listener failed")
		}
	}))
	d.Play()
	s.Advance(10 * time.Second)

	snap := d.Snapshot()
	if snap.State != Stopped {
		t.Fatalf("state = %s after panic, want stopped", snap.State)
	}
	if s.Pending() != 0 {
		t.Errorf("Pending() = %d after panic, want 0", s.Pending())
	}
}

func TestPanicInListenerNotifiesStop(t *testing.T) {
	var got []Snapshot
	d, s := newTestDriver(t, loopOptions(), WithOnChange(func(sn Snapshot) {
		got = append(got, sn)
		if sn.State == Playing && sn.Index > 1 {
			panic("listener failed")
		}
	}))
	d.Play()
	s.Advance(10 * time.Second)

	if len(got) == 0 {
		t.Fatal("listener never called")
	}
	last := got[len(got)-1]
	if last.State != Stopped || last.Playing {
		t.Errorf("last notification = %+v, want stopped", last)
	}
	if last.Index != d.Snapshot().Index {
		t.Errorf("last notification index = %v, want %v", last.Index, d.Snapshot().Index)
	}
}

func TestClose(t *testing.T) {
	d, s := newTestDriver(t, loopOptions())
	d.Play()
	if err := d.Close(); err != nil {
		t.Fatal(err)
	}
	if s.Pending() != 0 {
		t.Errorf("Pending() = %d after Close, want 0", s.Pending())
	}
	if err := d.Seek(1); err != ErrClosed {
		t.Errorf("Seek after Close = %v, want ErrClosed", err)
	}
	d.Play()
	if d.Snapshot().Playing {
		t.Error("Play after Close should be a no-op")
	}
	if err := d.Close(); err != nil {
		t.Errorf("second Close = %v", err)
	}
}

func TestFromSettings(t *testing.T) {
	o := FromSettings(settings.Default().Timeline, 12)
	if o.Steps != 12 || o.Duration != 30*time.Second || !o.Loop || o.LoopDelayAfter != time.Second {
		t.Errorf("FromSettings() = %+v", o)
	}
}

func TestStateString(t *testing.T) {
	if got := WaitingLoopEnd.String(); got != "waiting-loop-end" {
		t.Errorf("String() = %q", got)
	}
	if got := State(42).String(); got != "State(42)" {
		t.Errorf("String() = %q", got)
	}
}

type schedulerFunc func(time.Duration, func()) Timer

func (f schedulerFunc) AfterFunc(d time.Duration, fn func()) Timer { return f(d, fn) }

type noopTimer struct{}

func (noopTimer) Stop() bool { return false }
