// Package dataset holds the time series that drive a bar chart race.
//
// A [Dataset] is an ordered list of [Entity] values that all share the same
// number of discrete steps T. Step labels (typically dates) are optional and,
// when present, there is exactly one per step.
//
// Datasets are immutable once loaded. Renderers and the timeline reference a
// single *Dataset; nothing in this module copies or mutates it after
// [Dataset.Validate] succeeds.
//
// # Positions
//
// Playback addresses a dataset through a fractional index in [0, T-1]. The
// [Position] type splits that index into the two quantities consumers need:
//
//   - [Position.Step]: the discrete step used for ranking and geometry
//   - [Position.Progress]: the sub-step remainder used for counter interpolation
package dataset

import (
	"math"

	"github.com/matzehuels/barrace/pkg/errors"
)

// Entity is one bar in the race.
type Entity struct {
	Label  string    `json:"label"`
	Color  string    `json:"color,omitempty"`
	Image  string    `json:"image,omitempty"`
	Values []float64 `json:"values"`
}

// ValueAt returns the value at a discrete step.
func (e *Entity) ValueAt(step int) float64 {
	return e.Values[step]
}

// Interpolated returns the value linearly interpolated between the position's
// step and the next one by the position's progress.
func (e *Entity) Interpolated(p Position) float64 {
	from := e.Values[p.Step()]
	to := e.Values[p.Next()]
	return from + (to-from)*p.Progress()
}

// Dataset is the full input of a race.
type Dataset struct {
	Steps    []string `json:"steps,omitempty"`
	Entities []Entity `json:"entities"`
}

// Len returns the number of discrete steps T. A dataset without entities has
// max(1, len(Steps)) steps so it still plays as an empty race.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	if len(d.Entities) == 0 {
		return max(1, len(d.Steps))
	}
	return len(d.Entities[0].Values)
}

// StepLabel returns the label of step i, or "" if the dataset has none.
func (d *Dataset) StepLabel(i int) string {
	if i < 0 || i >= len(d.Steps) {
		return ""
	}
	return d.Steps[i]
}

// Labels returns entity labels in dataset order.
func (d *Dataset) Labels() []string {
	out := make([]string, len(d.Entities))
	for i := range d.Entities {
		out[i] = d.Entities[i].Label
	}
	return out
}

// Images returns the non-empty image references, in entity order.
func (d *Dataset) Images() []string {
	var out []string
	for i := range d.Entities {
		if img := d.Entities[i].Image; img != "" {
			out = append(out, img)
		}
	}
	return out
}

// Validate checks structural invariants:
// T >= 1, unique labels, equal value lengths, finite values, and a
// step-label count of 0 or T. A dataset without entities is valid.
func (d *Dataset) Validate() error {
	if d == nil {
		return errors.New(errors.ErrCodeInvalidDataset, "dataset is nil")
	}
	if len(d.Entities) == 0 {
		return nil
	}
	steps := len(d.Entities[0].Values)
	if steps == 0 {
		return errors.New(errors.ErrCodeInvalidDataset, "dataset has no steps")
	}
	if len(d.Steps) != 0 && len(d.Steps) != steps {
		return errors.New(errors.ErrCodeInvalidDataset,
			"dataset has %d step labels for %d steps", len(d.Steps), steps)
	}

	seen := make(map[string]int, len(d.Entities))
	for i := range d.Entities {
		e := &d.Entities[i]
		if err := errors.ValidateLabel(e.Label); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidDataset, err, "entity %d", i)
		}
		if j, dup := seen[e.Label]; dup {
			return errors.New(errors.ErrCodeInvalidDataset,
				"duplicate label %q (entities %d and %d)", e.Label, j, i)
		}
		seen[e.Label] = i

		if len(e.Values) != steps {
			return errors.New(errors.ErrCodeInvalidDataset,
				"entity %q has %d values, want %d", e.Label, len(e.Values), steps)
		}
		for s, v := range e.Values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return errors.New(errors.ErrCodeInvalidDataset,
					"entity %q has non-finite value at step %d", e.Label, s)
			}
		}
		if e.Color != "" {
			if err := errors.ValidateColor(e.Color); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidDataset, err, "entity %q", e.Label)
			}
		}
		if err := errors.ValidateImageRef(e.Image); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidDataset, err, "entity %q", e.Label)
		}
	}
	return nil
}

// At returns the position for a fractional index, clamped to [0, T-1].
// NaN clamps to 0.
func (d *Dataset) At(index float64) Position {
	return NewPosition(index, d.Len())
}

// Position is a fractional time index bound to a dataset length.
type Position struct {
	index float64
	last  int
}

// NewPosition clamps index to [0, steps-1].
func NewPosition(index float64, steps int) Position {
	last := steps - 1
	if last < 0 {
		last = 0
	}
	switch {
	case math.IsNaN(index) || index < 0:
		index = 0
	case index > float64(last):
		index = float64(last)
	}
	return Position{index: index, last: last}
}

// Index returns the clamped fractional index.
func (p Position) Index() float64 { return p.index }

// Step returns the discrete step floor(index).
func (p Position) Step() int {
	s := int(math.Floor(p.index))
	if s > p.last {
		s = p.last
	}
	return s
}

// Next returns the step after Step, clamped to the last step.
func (p Position) Next() int {
	if n := p.Step() + 1; n <= p.last {
		return n
	}
	return p.last
}

// Progress returns the sub-step remainder in [0, 1).
func (p Position) Progress() float64 {
	return p.index - float64(p.Step())
}

// Last returns T-1.
func (p Position) Last() int { return p.last }
