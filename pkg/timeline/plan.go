package timeline

import (
	"sort"
	"time"

	"github.com/matzehuels/barrace/pkg/errors"
)

// MaxPlanFrames bounds the frames a single plan may produce.
const MaxPlanFrames = 1 << 20

// Frame is one sampled video frame.
type Frame struct {
	At    time.Duration `json:"at"`
	Index float64       `json:"index"`
	State State         `json:"state"`
}

// Plan samples one full pass of the timeline at fps frames per second.
//
// With loop enabled the pass is: a loopDelayBefore hold at index 0, the
// traversal, then a loopDelayAfter hold at T-1, so consecutive passes
// concatenate into a seamless loop. Without loop it is just the traversal.
// Indices use the same 1/150 quantization live playback shows: the index at
// time t is that of the last tick that fired at or before t. The final frame
// sits exactly at the end of the pass.
//
// A degenerate timeline (one step or zero duration) yields a single frame.
func Plan(opts Options, fps int) ([]Frame, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if fps <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "fps must be > 0, got %d", fps)
	}
	if opts.Degenerate() {
		return []Frame{{Index: 0, State: Stopped}}, nil
	}

	var before, after time.Duration
	if opts.Loop {
		before, after = opts.LoopDelayBefore, opts.LoopDelayAfter
	}
	length := before + opts.Duration + after

	if fps > MaxPlanFrames || length >= time.Duration(MaxPlanFrames)*time.Second/time.Duration(fps) {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"plan of %v at %d fps exceeds %d frames", length, fps, MaxPlanFrames)
	}

	// Frames sit at f/fps seconds for f = 0..n-1 and the pass ends at length.
	n := int(int64(length)*int64(fps)/int64(time.Second)) + 1

	frames := make([]Frame, 0, n)
	for f := 0; f < n; f++ {
		at := time.Duration(int64(f) * int64(time.Second) / int64(fps))
		frames = append(frames, sample(opts, at, before))
	}
	if last := frames[len(frames)-1]; last.At < length {
		frames = append(frames, sample(opts, length, before))
	}
	return frames, nil
}

func sample(opts Options, at, before time.Duration) Frame {
	total := opts.TotalTicks()
	switch {
	case at < before:
		return Frame{At: at, Index: 0, State: WaitingLoopStart}
	case at-before >= opts.Duration:
		state := Stopped
		if opts.Loop {
			state = WaitingLoopEnd
		}
		return Frame{At: at, Index: opts.Last(), State: state}
	}
	t := at - before
	// largest k with TickTime(k) <= t
	k := sort.Search(total+1, func(k int) bool { return opts.TickTime(k) > t }) - 1
	return Frame{At: at, Index: IndexOf(k), State: Playing}
}

// Indices extracts the fractional index of each frame.
func Indices(frames []Frame) []float64 {
	out := make([]float64, len(frames))
	for i, f := range frames {
		out[i] = f.Index
	}
	return out
}
