package settings

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/barrace/pkg/errors"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
}

func TestFrameSize(t *testing.T) {
	tests := []struct {
		aspect AspectRatio
		width  int
	}{
		{AspectSquare, 600},
		{AspectPortrait, 450},
		{AspectLandscape, 1000},
		{AspectWide, 1067},
	}
	for _, tt := range tests {
		s := Default()
		s.AspectRatio = tt.aspect
		w, h := s.FrameSize()
		if w != tt.width || h != 600 {
			t.Errorf("FrameSize(%s) = %dx%d, want %dx600", tt.aspect, w, h, tt.width)
		}
	}
}

func TestTimelineDurations(t *testing.T) {
	tl := Default().Timeline
	if got := tl.DurationValue(); got != 30*time.Second {
		t.Errorf("DurationValue() = %v, want 30s", got)
	}
	if got := tl.DelayAfter(); got != time.Second {
		t.Errorf("DelayAfter() = %v, want 1s", got)
	}
	if got := Default().Animations.JumpDurationValue(); got != 300*time.Millisecond {
		t.Errorf("JumpDurationValue() = %v, want 300ms", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *Settings)
	}{
		{"zero maxCount", func(s *Settings) { s.Bars.MaxCount = 0 }},
		{"negative maxCount", func(s *Settings) { s.Bars.MaxCount = -3 }},
		{"negative duration", func(s *Settings) { s.Timeline.Duration = -1 }},
		{"negative delay", func(s *Settings) { s.Timeline.LoopDelayAfter = -0.5 }},
		{"duration above max", func(s *Settings) { s.Timeline.Duration = 2e8 }},
		{"delay above max", func(s *Settings) { s.Timeline.LoopDelayBefore = MaxDuration.Seconds() + 1 }},
		{"jump above max", func(s *Settings) { s.Animations.JumpDuration = 1e12 }},
		{"zero ratio", func(s *Settings) { s.Bars.DescendingRatio = 0 }},
		{"ratio above one", func(s *Settings) { s.Images.Border.WidthRatio = 1.5 }},
		{"short custom spacing", func(s *Settings) {
			s.Bars.UseCustomSpacing = true
			s.Bars.CustomSpacing = []int{1, 2}
		}},
		{"no room", func(s *Settings) { s.Bars.MaxCount = 100 }},
		{"no horizontal room", func(s *Settings) { s.Margins.Left = 2000 }},
		{"aspect", func(s *Settings) { s.AspectRatio = "2:1" }},
		{"animation type", func(s *Settings) { s.Bars.AnimationType = "bounce" }},
		{"bar jump", func(s *Settings) { s.Animations.BarJump = "teleport" }},
		{"image position", func(s *Settings) { s.Images.Position = "above" }},
		{"label position", func(s *Settings) { s.Labels.Position = "above" }},
		{"empty cells", func(s *Settings) { s.Values.EmptyCellHandling = "guess" }},
		{"date corner", func(s *Settings) { s.DateDisplay.Position = "center" }},
		{"color", func(s *Settings) { s.Labels.Color = "not a color" }},
		{"negative margin", func(s *Settings) { s.Margins.Top = -1 }},
		{"frame height", func(s *Settings) { s.FrameHeight = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Default()
			tt.mutate(s)
			err := s.Validate()
			if err == nil {
				t.Fatal("Validate() expected error")
			}
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("Validate() code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidConfig)
			}
		})
	}
}

func TestValidateAccepts(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *Settings)
	}{
		{"custom spacing exact", func(s *Settings) {
			s.Bars.UseCustomSpacing = true
			s.Bars.CustomSpacing = make([]int, s.Bars.MaxCount-1)
		}},
		{"custom spacing ignored when disabled", func(s *Settings) { s.Bars.CustomSpacing = []int{1} }},
		{"negative spacing", func(s *Settings) { s.Bars.Spacing = -4 }},
		{"zero duration", func(s *Settings) { s.Timeline.Duration = 0 }},
		{"max duration", func(s *Settings) { s.Timeline.Duration = MaxDuration.Seconds() }},
		{"ratio one", func(s *Settings) { s.Labels.SizeRatio = 1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Default()
			tt.mutate(s)
			if err := s.Validate(); err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
		})
	}
}

func TestTOMLRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, Default()); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(&buf, FormatTOML)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !reflect.DeepEqual(got, Default()) {
		t.Errorf("round trip mismatch:\n got  %+v\n want %+v", got, Default())
	}
}

func TestDecodePartial(t *testing.T) {
	in := `
aspectRatio = "1:1"

[bars]
maxCount = 5
keepSpacing = true
`
	s, err := Decode(strings.NewReader(in), FormatTOML)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if s.Bars.MaxCount != 5 || !s.Bars.KeepSpacing {
		t.Errorf("bars = %+v, want maxCount 5 keepSpacing", s.Bars)
	}
	if s.Bars.Spacing != 8 {
		t.Errorf("Spacing = %d, want default 8", s.Bars.Spacing)
	}
	if s.AspectRatio != AspectSquare {
		t.Errorf("AspectRatio = %q, want 1:1", s.AspectRatio)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		format Format
		code   errors.Code
	}{
		{"unknown toml key", "[bars]\nmaxBars = 3\n", FormatTOML, errors.ErrCodeInvalidConfig},
		{"unknown json key", `{"bars": {"maxBars": 3}}`, FormatJSON, errors.ErrCodeInvalidConfig},
		{"invalid value", `{"bars": {"maxCount": 0}}`, FormatJSON, errors.ErrCodeInvalidConfig},
		{"syntax", "[bars", FormatTOML, errors.ErrCodeInvalidConfig},
		{"format", "", Format("yaml"), errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.in), tt.format)
			if !errors.Is(err, tt.code) {
				t.Errorf("Decode() error = %v, want code %v", err, tt.code)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "race.json")
	if err := os.WriteFile(path, []byte(`{"timeline": {"duration": 12, "loop": false}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Timeline.Duration != 12 || s.Timeline.Loop {
		t.Errorf("Timeline = %+v, want duration 12 without loop", s.Timeline)
	}

	if s, err := Load(""); err != nil || s.Bars.MaxCount != 10 {
		t.Errorf("Load(\"\") = %+v, %v; want defaults", s, err)
	}
	if _, err := Load(filepath.Join(dir, "nope.toml")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Load(missing) code = %v, want %v", errors.GetCode(err), errors.ErrCodeFileNotFound)
	}
	if _, err := Load(filepath.Join(dir, "race.yaml")); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Load(yaml) code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidFormat)
	}
}

func TestClone(t *testing.T) {
	s := Default()
	s.Bars.CustomSpacing = []int{1, 2, 3}
	c := s.Clone()
	c.Bars.CustomSpacing[0] = 99
	if s.Bars.CustomSpacing[0] != 1 {
		t.Error("Clone() shares CustomSpacing with the original")
	}
}
