package race

import (
	"math"
	"time"

	"github.com/matzehuels/barrace/pkg/dataset"
	"github.com/matzehuels/barrace/pkg/errors"
	"github.com/matzehuels/barrace/pkg/render/race/layout"
	"github.com/matzehuels/barrace/pkg/render/race/ranking"
	"github.com/matzehuels/barrace/pkg/settings"
)

// Composer builds frames for one dataset and one set of settings. Both are
// validated once in [NewComposer]; Frame is then a pure function of the index
// and is safe for concurrent use.
type Composer struct {
	ds   *dataset.Dataset
	s    *settings.Settings
	step time.Duration // timeline time between two data steps
}

// NewComposer validates ds and s and returns a composer for them.
func NewComposer(ds *dataset.Dataset, s *settings.Settings) (*Composer, error) {
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	c := &Composer{ds: ds, s: s}
	if n := ds.Len(); n > 1 {
		c.step = s.Timeline.DurationValue() / time.Duration(n-1)
	}
	return c, nil
}

// Compose is a one-shot NewComposer + Frame.
func Compose(ds *dataset.Dataset, s *settings.Settings, index float64) (*Frame, error) {
	c, err := NewComposer(ds, s)
	if err != nil {
		return nil, err
	}
	return c.Frame(index)
}

// Dataset returns the composer's dataset.
func (c *Composer) Dataset() *dataset.Dataset { return c.ds }

// Settings returns the composer's settings.
func (c *Composer) Settings() *settings.Settings { return c.s }

// Frame composes the frame at a fractional index. The index is clamped to
// [0, T-1]; NaN and infinities are rejected.
func (c *Composer) Frame(index float64) (*Frame, error) {
	if math.IsNaN(index) || math.IsInf(index, 0) {
		return nil, errors.New(errors.ErrCodeInvalidIndex, "index must be finite, got %v", index)
	}
	s := c.s
	pos := c.ds.At(index)

	cur, err := ranking.Select(c.ds, pos.Step(), s.Bars.MaxCount, s.Bars.KeepSpacing)
	if err != nil {
		return nil, err
	}

	width, height := s.FrameSize()
	f := &Frame{
		Width:     width,
		Height:    height,
		Index:     pos.Index(),
		Step:      pos.Step(),
		Progress:  pos.Progress(),
		StepLabel: c.ds.StepLabel(pos.Step()),
		MaxValue:  cur.MaxValue,
		Slots:     len(cur.Slots),
		Plot: Rect{
			X:      s.Margins.Left,
			Y:      s.Margins.Top,
			Width:  s.PlotWidth(),
			Height: s.AvailableHeight(),
		},
		Style: styleOf(s),
	}
	f.BarHeight = layout.BarHeight(f.Plot.Height, s.Bars.Spacing, f.Slots)

	f.Bars = make([]Bar, len(cur.Slots))
	for i, slot := range cur.Slots {
		f.Bars[i] = c.bar(slot, f.BarHeight, cur.MaxValue, pos)
	}

	if eased, ok := c.jumpProgress(pos); ok {
		c.ease(f, pos.Step()-1, eased)
	}

	if s.DateDisplay.Show && f.StepLabel != "" {
		d := s.DateDisplay
		f.Date = &DateBox{
			Text:            f.StepLabel,
			Position:        d.Position,
			FontSize:        d.FontSize,
			Color:           d.Color,
			BackgroundColor: d.BackgroundColor,
			Margins:         d.Margins,
		}
	}
	return f, nil
}

func (c *Composer) bar(slot ranking.Slot, barHeight int, maxValue float64, pos dataset.Position) Bar {
	s := c.s
	r := slot.Rank
	b := Bar{
		Rank:   r,
		Top:    float64(c.offset(r, barHeight)),
		Height: barHeight,
	}
	if slot.Empty() {
		b.Empty = true
		return b
	}

	e := slot.Entity
	b.Label, b.Color, b.Image = e.Label, e.Color, e.Image
	b.Value = slot.Value
	b.Counter = slot.Value
	if s.Bars.AnimationType == settings.AnimationTransition {
		b.Counter = e.Interpolated(pos)
	}

	b.Height = layout.Shrink(barHeight, r, layout.Scale{Enabled: s.Bars.DescendingHeight, Ratio: s.Bars.HeightRatio})
	b.WidthPercent = layout.BarWidth(b.Value, maxValue, r, widthScale(s))
	b.AnchorPercent = math.Max(0, layout.Percent(b.Value, maxValue))

	if e.Image != "" {
		im := s.Images
		b.ImageWidth = layout.Shrink(im.Size, r, layout.Scale{Enabled: im.DescendingWidth, Ratio: im.WidthRatio})
		b.ImageHeight = layout.Shrink(im.Size, r, layout.Scale{Enabled: im.DescendingHeight, Ratio: im.HeightRatio})
		if im.Border.Enabled {
			b.BorderWidth = layout.BorderWidth(im.Border.Width, r,
				layout.Scale{Enabled: im.Border.DescendingWidth, Ratio: im.Border.WidthRatio})
			b.BorderSpacing = layout.BorderSpacing(im.Border.Spacing, r,
				layout.Scale{Enabled: im.Border.DescendingSpacing, Ratio: im.Border.SpacingRatio})
		}
	}

	b.FontSize = layout.Shrink(s.Labels.Size, r, layout.Scale{Enabled: s.Labels.DescendingSize, Ratio: s.Labels.SizeRatio})
	if s.Bars.RoundedCorners.Enabled {
		b.Radius = s.Bars.RoundedCorners.Radius
	}
	return b
}

func (c *Composer) offset(rank, barHeight int) int {
	b := c.s.Bars
	return layout.Offset(rank, barHeight, b.Spacing, b.CustomSpacing, b.UseCustomSpacing)
}

// jumpProgress returns the eased progress of a smooth bar jump, and false
// when no jump is in progress at pos. The jump starts at the step boundary
// and lasts jumpDuration of timeline time. The last step is always shown
// settled so the end-of-race hold is stable.
func (c *Composer) jumpProgress(pos dataset.Position) (float64, bool) {
	a := c.s.Animations
	if a.BarJump != settings.JumpSmooth || c.step <= 0 || a.JumpDuration <= 0 {
		return 0, false
	}
	if pos.Step() == 0 || pos.Step() == pos.Last() {
		return 0, false
	}
	elapsed := time.Duration(pos.Progress() * float64(c.step))
	jump := a.JumpDurationValue()
	if elapsed >= jump {
		return 0, false
	}
	u := float64(elapsed) / float64(jump)
	return easeOutCubic(u), true
}

// ease moves bars from where they were at prevStep toward their current
// geometry. Entities that were not visible at prevStep enter from below the
// plot area.
func (c *Composer) ease(f *Frame, prevStep int, t float64) {
	s := c.s
	prev, err := ranking.Select(c.ds, prevStep, s.Bars.MaxCount, s.Bars.KeepSpacing)
	if err != nil {
		return
	}
	prevHeight := layout.BarHeight(f.Plot.Height, s.Bars.Spacing, len(prev.Slots))
	prevRanks := prev.Ranks()

	for i := range f.Bars {
		b := &f.Bars[i]
		if b.Empty {
			continue
		}
		fromTop := float64(f.Plot.Height)
		fromWidth := layout.MinWidthPercent
		fromAnchor := 0.0
		if r0, ok := prevRanks[b.Label]; ok {
			v0 := prev.Slots[r0].Value
			fromTop = float64(c.offset(r0, prevHeight))
			fromWidth = layout.BarWidth(v0, prev.MaxValue, r0, widthScale(s))
			fromAnchor = math.Max(0, layout.Percent(v0, prev.MaxValue))
		}
		b.Top = lerp(fromTop, b.Top, t)
		b.WidthPercent = lerp(fromWidth, b.WidthPercent, t)
		b.AnchorPercent = lerp(fromAnchor, b.AnchorPercent, t)
	}
}

func widthScale(s *settings.Settings) layout.Scale {
	return layout.Scale{Enabled: s.Bars.DescendingWidth, Ratio: s.Bars.DescendingRatio}
}

func styleOf(s *settings.Settings) Style {
	st := Style{
		LabelPosition:  s.Labels.Position,
		LabelColor:     s.Labels.Color,
		LabelSpacing:   s.Labels.Spacing,
		FontFamily:     s.Labels.FontFamily,
		LabelsHidden:   s.Labels.Invisible,
		ShowValues:     s.Values.ShowAtEnd,
		ValueColor:     s.Values.Color,
		ImagePosition:  s.Images.Position,
		ImageSpacing:   s.Images.Spacing,
		ImageBorder:    s.Images.Border.Enabled,
		RoundedCorners: s.Bars.RoundedCorners.Enabled,
	}
	if s.Background.Enabled {
		st.Background = s.Background.Color
	}
	return st
}

func easeOutCubic(t float64) float64 {
	u := 1 - t
	return 1 - u*u*u
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }
