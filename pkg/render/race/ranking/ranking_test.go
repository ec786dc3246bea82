package ranking

import (
	"testing"

	"github.com/matzehuels/barrace/pkg/dataset"
	"github.com/matzehuels/barrace/pkg/errors"
)

func testDataset() *dataset.Dataset {
	return &dataset.Dataset{Entities: []dataset.Entity{
		{Label: "a", Values: []float64{1, 5, 0}},
		{Label: "b", Values: []float64{3, 5, 0}},
		{Label: "c", Values: []float64{2, 9, 0}},
		{Label: "d", Values: []float64{3, 1, 0}},
	}}
}

func labels(r Result) []string {
	var out []string
	for _, s := range r.Slots {
		if s.Empty() {
			out = append(out, "")
			continue
		}
		out = append(out, s.Entity.Label)
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSelect(t *testing.T) {
	tests := []struct {
		name        string
		step        int
		maxCount    int
		keepSpacing bool
		want        []string
		maxValue    float64
	}{
		{"stable ties", 0, 10, false, []string{"b", "d", "c", "a"}, 3},
		{"truncate", 1, 2, false, []string{"c", "a"}, 9},
		{"tie order follows dataset", 1, 3, false, []string{"c", "a", "b"}, 9},
		{"keep spacing pads", 0, 6, true, []string{"b", "d", "c", "a", "", ""}, 3},
		{"keep spacing exact", 1, 2, true, []string{"c", "a"}, 9},
		{"all zero", 2, 3, false, []string{"a", "b", "c"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Select(testDataset(), tt.step, tt.maxCount, tt.keepSpacing)
			if err != nil {
				t.Fatalf("Select: %v", err)
			}
			if got := labels(r); !equal(got, tt.want) {
				t.Errorf("labels = %v, want %v", got, tt.want)
			}
			if r.MaxValue != tt.maxValue {
				t.Errorf("MaxValue = %v, want %v", r.MaxValue, tt.maxValue)
			}
			if r.Selected > tt.maxCount {
				t.Errorf("Selected = %d > maxCount %d", r.Selected, tt.maxCount)
			}
			for i, s := range r.Slots {
				if s.Rank != i {
					t.Errorf("slot %d has rank %d", i, s.Rank)
				}
			}
		})
	}
}

func TestSelectOrderIsDescending(t *testing.T) {
	ds := &dataset.Dataset{}
	for i := 0; i < 30; i++ {
		ds.Entities = append(ds.Entities, dataset.Entity{
			Label:  string(rune('A' + i)),
			Values: []float64{float64((i * 7) % 11)},
		})
	}
	r, err := Select(ds, 0, 12, false)
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i < len(r.Slots); i++ {
		prev, cur := r.Slots[i-1], r.Slots[i]
		if cur.Value > prev.Value {
			t.Fatalf("slot %d value %v > slot %d value %v", i, cur.Value, i-1, prev.Value)
		}
		if cur.Value == prev.Value && cur.Index < prev.Index {
			t.Fatalf("tie at slot %d breaks dataset order", i)
		}
	}
}

func TestSelectEmptyDataset(t *testing.T) {
	tests := []struct {
		name        string
		keepSpacing bool
		want        []string
	}{
		{"compact", false, nil},
		{"keep spacing", true, []string{"", "", ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Select(&dataset.Dataset{}, 0, 3, tt.keepSpacing)
			if err != nil {
				t.Fatalf("Select: %v", err)
			}
			if got := labels(r); !equal(got, tt.want) {
				t.Errorf("labels = %v, want %v", got, tt.want)
			}
			if r.Selected != 0 || r.MaxValue != 0 {
				t.Errorf("Selected, MaxValue = %d, %v, want 0, 0", r.Selected, r.MaxValue)
			}
		})
	}
}

func TestSelectNegativeMax(t *testing.T) {
	ds := &dataset.Dataset{Entities: []dataset.Entity{
		{Label: "a", Values: []float64{-4}},
		{Label: "b", Values: []float64{-2}},
	}}
	r, err := Select(ds, 0, 5, false)
	if err != nil {
		t.Fatal(err)
	}
	if r.MaxValue != -2 {
		t.Errorf("MaxValue = %v, want -2", r.MaxValue)
	}
}

func TestSelectErrors(t *testing.T) {
	ds := testDataset()
	if _, err := Select(ds, 0, 0, false); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("maxCount 0: code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidConfig)
	}
	if _, err := Select(ds, 3, 5, false); !errors.Is(err, errors.ErrCodeInvalidIndex) {
		t.Errorf("step 3: code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidIndex)
	}
	if _, err := Select(ds, -1, 5, false); !errors.Is(err, errors.ErrCodeInvalidIndex) {
		t.Errorf("step -1: code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidIndex)
	}
}

func TestRanks(t *testing.T) {
	r, _ := Select(testDataset(), 1, 10, true)
	ranks := r.Ranks()
	if ranks["c"] != 0 || ranks["a"] != 1 || ranks["b"] != 2 || ranks["d"] != 3 {
		t.Errorf("Ranks() = %v", ranks)
	}
}
