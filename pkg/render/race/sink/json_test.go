package sink

import (
	"bytes"
	"testing"

	"github.com/matzehuels/barrace/pkg/errors"
)

func TestRenderJSONRoundTrip(t *testing.T) {
	f := testFrame(t, nil)
	data, err := RenderJSON(f)
	if err != nil {
		t.Fatalf("RenderJSON() error: %v", err)
	}

	got, err := ReadJSON(data)
	if err != nil {
		t.Fatalf("ReadJSON() error: %v", err)
	}
	if got.Width != f.Width || got.Height != f.Height {
		t.Errorf("size = %dx%d, want %dx%d", got.Width, got.Height, f.Width, f.Height)
	}
	if len(got.Bars) != len(f.Bars) {
		t.Fatalf("Bars = %d, want %d", len(got.Bars), len(f.Bars))
	}
	for i := range f.Bars {
		if got.Bars[i] != f.Bars[i] {
			t.Errorf("bar %d = %+v, want %+v", i, got.Bars[i], f.Bars[i])
		}
	}
	if got.Date == nil || got.Date.Text != "1990" {
		t.Errorf("Date = %+v", got.Date)
	}
}

func TestRenderJSONOptions(t *testing.T) {
	f := testFrame(t, nil)

	compact, err := RenderJSON(f, WithJSONCompact())
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Contains(compact, []byte("\n")) {
		t.Error("compact output contains newlines")
	}

	data, err := RenderJSON(f, WithJSONImages(map[string]string{"img/beta.png": "data:x,y"}))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte(`"image": "data:x,y"`)) {
		t.Error("image not rewritten")
	}
	if f.Bars[1].Image != "img/beta.png" {
		t.Error("RenderJSON mutated the frame")
	}
}

func TestReadJSONInvalid(t *testing.T) {
	if _, err := ReadJSON([]byte("{")); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("ReadJSON(invalid) = %v, want INVALID_FORMAT", err)
	}
}
