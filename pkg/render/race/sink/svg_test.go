package sink

import (
	"encoding/xml"
	"io"
	"strings"
	"testing"

	"golang.org/x/text/language"

	"github.com/matzehuels/barrace/pkg/dataset"
	"github.com/matzehuels/barrace/pkg/render/race"
	"github.com/matzehuels/barrace/pkg/settings"
)

func testFrame(t *testing.T, mutate func(*settings.Settings)) *race.Frame {
	t.Helper()
	ds := &dataset.Dataset{
		Steps: []string{"1990", "1991"},
		Entities: []dataset.Entity{
			{Label: "Alpha & Co", Color: "#ff0000", Values: []float64{1200, 1500}},
			{Label: "Beta", Color: "#00ff00", Image: "img/beta.png", Values: []float64{800, 2000}},
			{Label: "Gamma", Color: "#0000ff", Values: []float64{300, 100}},
		},
	}
	s := settings.Default()
	s.Animations.BarJump = settings.JumpInstant
	s.Bars.MaxCount = 5
	s.Bars.KeepSpacing = true
	if mutate != nil {
		mutate(s)
	}
	f, err := race.Compose(ds, s, 0)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	return f
}

func TestRenderSVGWellFormed(t *testing.T) {
	svg := RenderSVG(testFrame(t, nil))

	dec := xml.NewDecoder(strings.NewReader(string(svg)))
	for {
		_, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("invalid XML: %v\n%s", err, svg)
		}
	}
	if !strings.HasPrefix(string(svg), `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 1067 600"`) {
		t.Errorf("unexpected header: %.80s", svg)
	}
}

func TestRenderSVGOneGroupPerVisibleBar(t *testing.T) {
	f := testFrame(t, nil)
	svg := string(RenderSVG(f))

	if got := strings.Count(svg, `class="bar"`); got != len(f.Visible()) {
		t.Errorf("bar groups = %d, want %d", got, len(f.Visible()))
	}
	for _, b := range f.Visible() {
		if !strings.Contains(svg, `data-label="`+escapeXML(b.Label)+`"`) {
			t.Errorf("no group for %q", b.Label)
		}
	}
	if !strings.Contains(svg, "Alpha &amp; Co") {
		t.Error("label not escaped")
	}
}

func TestRenderSVGCounters(t *testing.T) {
	svg := string(RenderSVG(testFrame(t, nil)))
	if !strings.Contains(svg, ">1,200</text>") {
		t.Errorf("counter 1,200 missing:\n%s", svg)
	}

	de := string(RenderSVG(testFrame(t, nil), WithLocale(language.German)))
	if !strings.Contains(de, ">1.200</text>") {
		t.Error("german counter 1.200 missing")
	}

	hidden := string(RenderSVG(testFrame(t, func(s *settings.Settings) { s.Values.ShowAtEnd = false })))
	if strings.Contains(hidden, `class="counter"`) {
		t.Error("counters drawn with showAtEnd off")
	}
}

func TestRenderSVGImages(t *testing.T) {
	f := testFrame(t, func(s *settings.Settings) { s.Images.Border.Enabled = true })
	svg := string(RenderSVG(f, WithImages(map[string]string{"img/beta.png": "data:image/png;base64,AAAA"})))

	if got := strings.Count(svg, `class="image"`); got != 1 {
		t.Errorf("images = %d, want 1", got)
	}
	if !strings.Contains(svg, `href="data:image/png;base64,AAAA"`) {
		t.Error("image href not rewritten")
	}
	if !strings.Contains(svg, `class="ring"`) || !strings.Contains(svg, `id="image-clip"`) {
		t.Error("ring or clip path missing")
	}

	plain := string(RenderSVG(f))
	if !strings.Contains(plain, `href="img/beta.png"`) {
		t.Error("unmapped image reference not kept")
	}
}

func TestRenderSVGStyle(t *testing.T) {
	f := testFrame(t, func(s *settings.Settings) {
		s.Background.Enabled = true
		s.Background.Color = "#123456"
		s.Labels.Invisible = true
		s.Labels.Position = settings.LabelInside
	})
	svg := string(RenderSVG(f))

	if !strings.Contains(svg, `class="background"`) || !strings.Contains(svg, "#123456") {
		t.Error("background missing")
	}
	if !strings.Contains(svg, `text-anchor="start"`) {
		t.Error("inside labels should be start-anchored")
	}
	if strings.Count(svg, `fill="none">`) != 3 {
		t.Error("invisible labels should have no fill")
	}
	if !strings.Contains(svg, `class="date"`) || !strings.Contains(svg, ">1990</text>") {
		t.Error("date box missing")
	}
}

func TestBarPath(t *testing.T) {
	tests := []struct {
		name      string
		w, h, rad float64
		want      string
	}{
		{"square", 100, 20, 0, "M0,0 H100.00 V20.00 H0 Z"},
		{"rounded", 100, 20, 8, "M0,0 H92.00 A8.00,8.00 0 0 1 100.00,8.00 V12.00 A8.00,8.00 0 0 1 92.00,20.00 H0 Z"},
		{"radius capped by height", 100, 10, 8, "M0,0 H95.00 A5.00,5.00 0 0 1 100.00,5.00 V5.00 A5.00,5.00 0 0 1 95.00,10.00 H0 Z"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := barPath(tt.w, tt.h, tt.rad); got != tt.want {
				t.Errorf("barPath() = %q, want %q", got, tt.want)
			}
		})
	}
}
