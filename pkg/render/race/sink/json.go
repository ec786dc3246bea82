package sink

import (
	"encoding/json"

	"github.com/matzehuels/barrace/pkg/errors"
	"github.com/matzehuels/barrace/pkg/render/race"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	compact bool
	images  map[string]string
}

// WithJSONCompact writes the frame on a single line.
func WithJSONCompact() JSONOption { return func(r *jsonRenderer) { r.compact = true } }

// WithJSONImages rewrites image references like [WithImages] does for SVG.
func WithJSONImages(hrefs map[string]string) JSONOption {
	return func(r *jsonRenderer) { r.images = hrefs }
}

// RenderJSON exports the frame geometry for external renderers.
func RenderJSON(f *race.Frame, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	out := *f
	if len(r.images) > 0 {
		out.Bars = make([]race.Bar, len(f.Bars))
		for i, b := range f.Bars {
			if h, ok := r.images[b.Image]; ok {
				b.Image = h
			}
			out.Bars[i] = b
		}
	}

	if r.compact {
		return json.Marshal(&out)
	}
	return json.MarshalIndent(&out, "", "  ")
}

// ReadJSON decodes a frame written by [RenderJSON].
func ReadJSON(data []byte) (*race.Frame, error) {
	var f race.Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode frame")
	}
	return &f, nil
}
