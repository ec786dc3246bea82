// Package ranking selects and orders the entities visible at a step.
//
// Selection is a pure function of the dataset, a discrete step and the bar
// settings: entities are sorted by their value at that step, descending, with
// ties kept in dataset order, and the first maxCount are kept. With
// keepSpacing the result is padded with empty placeholder slots so that the
// vertical layout always divides the plot into maxCount rows.
package ranking

import (
	"math"
	"slices"

	"github.com/matzehuels/barrace/pkg/dataset"
	"github.com/matzehuels/barrace/pkg/errors"
	"github.com/matzehuels/barrace/pkg/render/race/layout"
)

// Slot is one row of the ranking. Empty slots are placeholders.
type Slot struct {
	Rank   int
	Entity *dataset.Entity // nil for placeholders
	Index  int             // position of Entity in the dataset, -1 for placeholders
	Value  float64
}

// Empty reports whether the slot is a placeholder.
func (s Slot) Empty() bool { return s.Entity == nil }

// Result is the ranking at one step.
type Result struct {
	Step     int
	Slots    []Slot
	Selected int
	// MaxValue is the maximum over the selected entities only. It is 0 when
	// nothing is selected.
	MaxValue float64
}

// Ranks maps labels to their rank in the selection.
func (r Result) Ranks() map[string]int {
	out := make(map[string]int, r.Selected)
	for _, s := range r.Slots {
		if !s.Empty() {
			out[s.Entity.Label] = s.Rank
		}
	}
	return out
}

// Select ranks the dataset at step.
func Select(ds *dataset.Dataset, step, maxCount int, keepSpacing bool) (Result, error) {
	if maxCount <= 0 {
		return Result{}, errors.New(errors.ErrCodeInvalidConfig, "maxCount must be > 0, got %d", maxCount)
	}
	if step < 0 || step >= ds.Len() {
		return Result{}, errors.New(errors.ErrCodeInvalidIndex, "step %d out of range [0, %d)", step, ds.Len())
	}

	order := make([]int, len(ds.Entities))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		va, vb := ds.Entities[a].Values[step], ds.Entities[b].Values[step]
		switch {
		case va > vb:
			return -1
		case va < vb:
			return 1
		}
		return 0
	})

	selected := min(maxCount, len(order))
	total := layout.TotalBars(maxCount, selected, keepSpacing)

	res := Result{
		Step:     step,
		Slots:    make([]Slot, total),
		Selected: selected,
	}
	maxValue := math.Inf(-1)
	for rank := range res.Slots {
		if rank >= selected {
			res.Slots[rank] = Slot{Rank: rank, Index: -1}
			continue
		}
		i := order[rank]
		v := ds.Entities[i].Values[step]
		res.Slots[rank] = Slot{Rank: rank, Entity: &ds.Entities[i], Index: i, Value: v}
		maxValue = math.Max(maxValue, v)
	}
	if selected > 0 {
		res.MaxValue = maxValue
	}
	return res, nil
}
