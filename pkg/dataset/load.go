package dataset

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/matzehuels/barrace/pkg/errors"
)

// EmptyCellHandling selects how missing values are filled at load time.
type EmptyCellHandling string

const (
	// EmptyZero stores 0 for a missing value.
	EmptyZero EmptyCellHandling = "zero"
	// EmptyInterpolate interpolates linearly between the nearest known
	// values of the same entity. Leading and trailing gaps copy the nearest
	// known value; an entity with no values at all becomes all zeros.
	EmptyInterpolate EmptyCellHandling = "interpolate"
)

// Valid reports whether h is a known mode.
func (h EmptyCellHandling) Valid() bool {
	return h == EmptyZero || h == EmptyInterpolate
}

// Palette is assigned round-robin to entities without a color.
var Palette = []string{
	"#4e79a7", "#f28e2b", "#e15759", "#76b7b2", "#59a14f",
	"#edc948", "#b07aa1", "#ff9da7", "#9c755f", "#bab0ac",
}

// Load reads a dataset from a .csv or .json file and validates it.
func Load(path string, h EmptyCellHandling) (*Dataset, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "dataset %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDataset, err, "open %s", path)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ReadCSV(f, h)
	case ".json":
		return ReadJSON(f, h)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat,
			"unsupported dataset extension %q (want .csv or .json)", filepath.Ext(path))
	}
}

// ReadCSV parses a CSV dataset.
//
// The header must contain a "label" column and may contain "color" and
// "image" columns (case-insensitive). Every other column is a step, in order,
// and its header becomes the step label. Empty cells are filled according to h.
func ReadCSV(r io.Reader, h EmptyCellHandling) (*Dataset, error) {
	if !h.Valid() {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown empty cell handling %q", h)
	}

	cr := csv.NewReader(bufio.NewReader(r))
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDataset, err, "parse csv")
	}
	if len(records) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidDataset, "csv has no header")
	}

	labelCol, colorCol, imageCol := -1, -1, -1
	var stepCols []int
	var steps []string
	for i, name := range records[0] {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "label":
			labelCol = i
		case "color":
			colorCol = i
		case "image":
			imageCol = i
		default:
			stepCols = append(stepCols, i)
			steps = append(steps, strings.TrimSpace(name))
		}
	}
	if labelCol < 0 {
		return nil, errors.New(errors.ErrCodeInvalidDataset, "csv header has no label column")
	}
	if len(stepCols) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidDataset, "csv header has no step columns")
	}

	ds := &Dataset{Steps: steps}
	for n, rec := range records[1:] {
		line := n + 2
		cell := func(i int) string {
			if i < 0 || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}

		raw := make([]*float64, len(stepCols))
		for j, c := range stepCols {
			s := cell(c)
			if s == "" {
				continue
			}
			v, err := parseNumber(s)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidDataset, err,
					"line %d, column %q", line, steps[j])
			}
			raw[j] = &v
		}

		ds.Entities = append(ds.Entities, Entity{
			Label:  cell(labelCol),
			Color:  cell(colorCol),
			Image:  cell(imageCol),
			Values: fill(raw, h),
		})
	}

	assignColors(ds)
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return ds, nil
}

type jsonDataset struct {
	Steps    []string     `json:"steps"`
	Entities []jsonEntity `json:"entities"`
}

type jsonEntity struct {
	Label  string     `json:"label"`
	Color  string     `json:"color"`
	Image  string     `json:"image"`
	Values []*float64 `json:"values"`
}

// ReadJSON parses a JSON dataset of the form
//
//	{"steps": ["2000", ...], "entities": [{"label": "a", "values": [1, null, 3]}]}
//
// null values are empty cells and are filled according to h.
func ReadJSON(r io.Reader, h EmptyCellHandling) (*Dataset, error) {
	if !h.Valid() {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown empty cell handling %q", h)
	}

	var in jsonDataset
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDataset, err, "parse json")
	}

	ds := &Dataset{Steps: in.Steps}
	for _, e := range in.Entities {
		ds.Entities = append(ds.Entities, Entity{
			Label:  e.Label,
			Color:  e.Color,
			Image:  e.Image,
			Values: fill(e.Values, h),
		})
	}

	assignColors(ds)
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return ds, nil
}

// WriteJSON encodes a dataset in the format read by ReadJSON.
func WriteJSON(w io.Writer, ds *Dataset) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ds)
}

// parseNumber accepts plain floats with optional "," or "_" digit grouping.
func parseNumber(s string) (float64, error) {
	s = strings.NewReplacer(",", "", "_", "").Replace(s)
	return strconv.ParseFloat(s, 64)
}

func fill(raw []*float64, h EmptyCellHandling) []float64 {
	out := make([]float64, len(raw))
	if h == EmptyZero {
		for i, v := range raw {
			if v != nil {
				out[i] = *v
			}
		}
		return out
	}

	prev := -1
	for i, v := range raw {
		if v == nil {
			continue
		}
		out[i] = *v
		switch {
		case prev < 0:
			for j := 0; j < i; j++ {
				out[j] = *v
			}
		case i-prev > 1:
			from, to := out[prev], *v
			for j := prev + 1; j < i; j++ {
				t := float64(j-prev) / float64(i-prev)
				out[j] = from + (to-from)*t
			}
		}
		prev = i
	}
	if prev >= 0 {
		for j := prev + 1; j < len(out); j++ {
			out[j] = out[prev]
		}
	}
	return out
}

func assignColors(ds *Dataset) {
	for i := range ds.Entities {
		if ds.Entities[i].Color == "" {
			ds.Entities[i].Color = Palette[i%len(Palette)]
		}
	}
}
