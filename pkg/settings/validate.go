package settings

import (
	"math"

	"github.com/matzehuels/barrace/pkg/errors"
)

// Validate checks the settings before any layout happens.
// All failures carry [errors.ErrCodeInvalidConfig].
func (s *Settings) Validate() error {
	if s == nil {
		return invalid("settings are nil")
	}
	if s.AspectRatio.Ratio() == 0 {
		return invalid("unknown aspectRatio %q (want 1:1, 3:4, 5:3 or 16:9)", s.AspectRatio)
	}
	if s.FrameHeight <= 0 {
		return invalid("frameHeight must be > 0, got %d", s.FrameHeight)
	}
	if err := validateMargins("margins", s.Margins); err != nil {
		return err
	}
	if err := s.validateBars(); err != nil {
		return err
	}
	if err := s.validateValues(); err != nil {
		return err
	}
	if err := s.validateImages(); err != nil {
		return err
	}
	if err := s.validateLabels(); err != nil {
		return err
	}
	if err := s.validateTimeline(); err != nil {
		return err
	}
	if err := s.validateDateDisplay(); err != nil {
		return err
	}
	if err := validateColor("background.color", s.Background.Color); err != nil {
		return err
	}
	if s.PlotWidth() <= 0 {
		return invalid("margins leave no horizontal room for bars (plot width %d)", s.PlotWidth())
	}
	return nil
}

func (s *Settings) validateBars() error {
	b := s.Bars
	if b.MaxCount <= 0 {
		return invalid("bars.maxCount must be > 0, got %d", b.MaxCount)
	}
	if err := validateRatio("bars.descendingRatio", b.DescendingRatio); err != nil {
		return err
	}
	if err := validateRatio("bars.heightRatio", b.HeightRatio); err != nil {
		return err
	}
	if b.UseCustomSpacing && len(b.CustomSpacing) < b.MaxCount-1 {
		return invalid("bars.customSpacing has %d entries, need at least %d for maxCount %d",
			len(b.CustomSpacing), b.MaxCount-1, b.MaxCount)
	}
	switch b.AnimationType {
	case AnimationInstant, AnimationTransition:
	default:
		return invalid("unknown bars.animationType %q", b.AnimationType)
	}
	if b.RoundedCorners.Radius < 0 {
		return invalid("bars.roundedCorners.radius must be >= 0, got %d", b.RoundedCorners.Radius)
	}

	// The widest configuration is maxCount bars; anything that fits that fits
	// any smaller selection.
	avail := s.AvailableHeight()
	gaps := max(0, b.Spacing) * (b.MaxCount - 1)
	if avail-gaps < b.MaxCount {
		return invalid("no room for %d bars: available height %d, spacing %d",
			b.MaxCount, avail, b.Spacing)
	}
	return nil
}

func (s *Settings) validateValues() error {
	if !s.Values.EmptyCellHandling.Valid() {
		return invalid("unknown values.emptyCellHandling %q", s.Values.EmptyCellHandling)
	}
	return validateColor("values.color", s.Values.Color)
}

func (s *Settings) validateImages() error {
	im := s.Images
	switch im.Position {
	case ImageBehind, ImageFront:
	default:
		return invalid("unknown images.position %q", im.Position)
	}
	if im.Size < 1 {
		return invalid("images.size must be >= 1, got %d", im.Size)
	}
	if im.Spacing < 0 {
		return invalid("images.spacing must be >= 0, got %d", im.Spacing)
	}
	for name, r := range map[string]float64{
		"images.widthRatio":          im.WidthRatio,
		"images.heightRatio":         im.HeightRatio,
		"images.border.widthRatio":   im.Border.WidthRatio,
		"images.border.spacingRatio": im.Border.SpacingRatio,
	} {
		if err := validateRatio(name, r); err != nil {
			return err
		}
	}
	if im.Border.Width < 0 || im.Border.Spacing < 0 {
		return invalid("images.border width and spacing must be >= 0")
	}
	return nil
}

func (s *Settings) validateLabels() error {
	l := s.Labels
	switch l.Position {
	case LabelBehind, LabelInside:
	default:
		return invalid("unknown labels.position %q", l.Position)
	}
	if l.Size < 1 {
		return invalid("labels.size must be >= 1, got %d", l.Size)
	}
	if l.Spacing < 0 {
		return invalid("labels.spacing must be >= 0, got %d", l.Spacing)
	}
	if err := validateRatio("labels.sizeRatio", l.SizeRatio); err != nil {
		return err
	}
	return validateColor("labels.color", l.Color)
}

func (s *Settings) validateTimeline() error {
	t := s.Timeline
	for name, v := range map[string]float64{
		"timeline.duration":        t.Duration,
		"timeline.loopDelayBefore": t.LoopDelayBefore,
		"timeline.loopDelayAfter":  t.LoopDelayAfter,
		"animations.jumpDuration":  s.Animations.JumpDuration,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return invalid("%s must be a finite number >= 0, got %v", name, v)
		}
		if v > MaxDuration.Seconds() {
			return invalid("%s must be <= %v seconds, got %v", name, MaxDuration.Seconds(), v)
		}
	}
	switch s.Animations.BarJump {
	case JumpInstant, JumpSmooth:
	default:
		return invalid("unknown animations.barJump %q", s.Animations.BarJump)
	}
	return nil
}

func (s *Settings) validateDateDisplay() error {
	d := s.DateDisplay
	switch d.Position {
	case TopLeft, TopRight, BottomLeft, BottomRight:
	default:
		return invalid("unknown dateDisplay.position %q", d.Position)
	}
	if d.FontSize < 1 {
		return invalid("dateDisplay.fontSize must be >= 1, got %d", d.FontSize)
	}
	if err := validateMargins("dateDisplay.margins", d.Margins); err != nil {
		return err
	}
	if err := validateColor("dateDisplay.color", d.Color); err != nil {
		return err
	}
	return validateColor("dateDisplay.backgroundColor", d.BackgroundColor)
}

func validateMargins(name string, m Margins) error {
	if m.Top < 0 || m.Bottom < 0 || m.Left < 0 || m.Right < 0 {
		return invalid("%s must be >= 0", name)
	}
	return nil
}

func validateRatio(name string, r float64) error {
	if math.IsNaN(r) || r <= 0 || r > 1 {
		return invalid("%s must be in (0, 1], got %v", name, r)
	}
	return nil
}

func validateColor(name, c string) error {
	if err := errors.ValidateColor(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s", name)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return errors.New(errors.ErrCodeInvalidConfig, format, args...)
}
