package timeline

import (
	"time"

	"github.com/matzehuels/barrace/pkg/errors"
	"github.com/matzehuels/barrace/pkg/settings"
)

// SubSteps is the number of ticks between two consecutive data steps.
const SubSteps = 150

// Options configures a timeline.
type Options struct {
	// Steps is the number of discrete data steps T.
	Steps int
	// Duration is the time a full traversal from 0 to T-1 takes.
	Duration        time.Duration
	Loop            bool
	LoopDelayBefore time.Duration
	LoopDelayAfter  time.Duration
}

// FromSettings builds options for a dataset of the given length.
func FromSettings(t settings.Timeline, steps int) Options {
	return Options{
		Steps:           steps,
		Duration:        t.DurationValue(),
		Loop:            t.Loop,
		LoopDelayBefore: t.DelayBefore(),
		LoopDelayAfter:  t.DelayAfter(),
	}
}

// Validate rejects empty timelines and durations outside [0, settings.MaxDuration].
func (o Options) Validate() error {
	if o.Steps < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "timeline needs at least 1 step, got %d", o.Steps)
	}
	for _, d := range []time.Duration{o.Duration, o.LoopDelayBefore, o.LoopDelayAfter} {
		if d < 0 || d > settings.MaxDuration {
			return errors.New(errors.ErrCodeInvalidConfig,
				"timeline durations must be in [0, %v], got %v", settings.MaxDuration, d)
		}
	}
	return nil
}

// Last returns the largest index, T-1.
func (o Options) Last() float64 { return float64(o.Steps - 1) }

// TotalTicks is the number of ticks in a full traversal, (T-1)*150.
func (o Options) TotalTicks() int {
	if o.Steps <= 1 {
		return 0
	}
	return (o.Steps - 1) * SubSteps
}

// Degenerate reports whether the timeline is a single static frame.
func (o Options) Degenerate() bool {
	return o.TotalTicks() == 0 || o.Duration == 0
}

// TickTime is the offset of tick k from the start of the traversal. It is
// computed from the ordinal in exact integer arithmetic, so TickTime(TotalTicks())
// equals Duration and no drift accumulates across ticks.
func (o Options) TickTime(k int) time.Duration {
	total := int64(o.TotalTicks())
	if total == 0 {
		return 0
	}
	d, n := int64(o.Duration), int64(k)
	return time.Duration(d/total*n + d%total*n/total)
}

// tickDelay is the wait between tick k and tick k+1.
func (o Options) tickDelay(k int) time.Duration {
	return o.TickTime(k+1) - o.TickTime(k)
}

// IndexOf converts a tick ordinal to a fractional index.
func IndexOf(k int) float64 {
	return float64(k) / SubSteps
}
