// Package settings defines the configuration tree of a bar chart race.
//
// Settings are plain data: they can be decoded from TOML or JSON files
// (camelCase keys in both), produced by [Default], and checked with
// [Settings.Validate]. Every renderer, the timeline and the HTTP server
// consume a validated *Settings and never mutate it.
//
// # Descending features
//
// Several sizes shrink with rank ("descending" features). Each one is a toggle,
// a base value and a ratio in (0, 1]. Rank 0 uses the base value, and the
// scaling factor interpolates linearly toward the ratio until rank 9, after
// which it stays at the ratio. See the race layout package for the shared
// factor function.
package settings

import (
	"math"
	"time"

	"github.com/matzehuels/barrace/pkg/dataset"
)

// AspectRatio is the frame shape.
type AspectRatio string

const (
	AspectSquare    AspectRatio = "1:1"
	AspectPortrait  AspectRatio = "3:4"
	AspectLandscape AspectRatio = "5:3"
	AspectWide      AspectRatio = "16:9"
)

var aspectRatios = map[AspectRatio]float64{
	AspectSquare:    1,
	AspectPortrait:  3.0 / 4.0,
	AspectLandscape: 5.0 / 3.0,
	AspectWide:      16.0 / 9.0,
}

// Ratio returns width/height, or 0 for an unknown aspect ratio.
func (a AspectRatio) Ratio() float64 { return aspectRatios[a] }

// AnimationType controls the value counter.
type AnimationType string

const (
	// AnimationInstant snaps the counter to the current step's value.
	AnimationInstant AnimationType = "instant"
	// AnimationTransition interpolates the counter toward the next step.
	AnimationTransition AnimationType = "transition"
)

// BarJump controls how bars move when their rank changes.
type BarJump string

const (
	JumpInstant BarJump = "instant"
	JumpSmooth  BarJump = "smooth"
)

// ImagePosition places entity images behind the label or in front of the bar.
type ImagePosition string

const (
	ImageBehind ImagePosition = "behind"
	ImageFront  ImagePosition = "front"
)

// LabelPosition places entity labels left of the bar or inside it.
type LabelPosition string

const (
	LabelBehind LabelPosition = "behind"
	LabelInside LabelPosition = "inside"
)

// Corner places the date display box.
type Corner string

const (
	TopLeft     Corner = "topLeft"
	TopRight    Corner = "topRight"
	BottomLeft  Corner = "bottomLeft"
	BottomRight Corner = "bottomRight"
)

// DefaultFrameHeight is the fixed canvas height of the editor, in pixels.
const DefaultFrameHeight = 600

// Settings is the full configuration tree.
type Settings struct {
	AspectRatio AspectRatio `toml:"aspectRatio" json:"aspectRatio"`
	FrameHeight int         `toml:"frameHeight" json:"frameHeight"`
	Margins     Margins     `toml:"margins" json:"margins"`
	Bars        Bars        `toml:"bars" json:"bars"`
	Values      Values      `toml:"values" json:"values"`
	Images      Images      `toml:"images" json:"images"`
	Labels      Labels      `toml:"labels" json:"labels"`
	Timeline    Timeline    `toml:"timeline" json:"timeline"`
	Animations  Animations  `toml:"animations" json:"animations"`
	DateDisplay DateDisplay `toml:"dateDisplay" json:"dateDisplay"`
	Background  Background  `toml:"background" json:"background"`
}

// Margins are pixel insets around the plot area.
type Margins struct {
	Top    int `toml:"top" json:"top"`
	Bottom int `toml:"bottom" json:"bottom"`
	Left   int `toml:"left" json:"left"`
	Right  int `toml:"right" json:"right"`
}

// Bars configures bar selection and geometry.
type Bars struct {
	MaxCount         int            `toml:"maxCount" json:"maxCount"`
	Spacing          int            `toml:"spacing" json:"spacing"`
	DescendingWidth  bool           `toml:"descendingWidth" json:"descendingWidth"`
	DescendingRatio  float64        `toml:"descendingRatio" json:"descendingRatio"`
	DescendingHeight bool           `toml:"descendingHeight" json:"descendingHeight"`
	HeightRatio      float64        `toml:"heightRatio" json:"heightRatio"`
	KeepSpacing      bool           `toml:"keepSpacing" json:"keepSpacing"`
	UseCustomSpacing bool           `toml:"useCustomSpacing" json:"useCustomSpacing"`
	CustomSpacing    []int          `toml:"customSpacing" json:"customSpacing"`
	AnimationType    AnimationType  `toml:"animationType" json:"animationType"`
	RoundedCorners   RoundedCorners `toml:"roundedCorners" json:"roundedCorners"`
}

type RoundedCorners struct {
	Enabled bool `toml:"enabled" json:"enabled"`
	Radius  int  `toml:"radius" json:"radius"`
}

// Values configures the value counter drawn at the end of each bar.
type Values struct {
	ShowAtEnd         bool                      `toml:"showAtEnd" json:"showAtEnd"`
	EmptyCellHandling dataset.EmptyCellHandling `toml:"emptyCellHandling" json:"emptyCellHandling"`
	Color             string                    `toml:"color" json:"color"`
}

// Images configures entity images and their optional ring border.
type Images struct {
	Position         ImagePosition `toml:"position" json:"position"`
	Size             int           `toml:"size" json:"size"`
	Spacing          int           `toml:"spacing" json:"spacing"`
	DescendingWidth  bool          `toml:"descendingWidth" json:"descendingWidth"`
	WidthRatio       float64       `toml:"widthRatio" json:"widthRatio"`
	DescendingHeight bool          `toml:"descendingHeight" json:"descendingHeight"`
	HeightRatio      float64       `toml:"heightRatio" json:"heightRatio"`
	Border           Border        `toml:"border" json:"border"`
}

type Border struct {
	Enabled           bool    `toml:"enabled" json:"enabled"`
	Width             int     `toml:"width" json:"width"`
	Spacing           int     `toml:"spacing" json:"spacing"`
	DescendingWidth   bool    `toml:"descendingWidth" json:"descendingWidth"`
	WidthRatio        float64 `toml:"widthRatio" json:"widthRatio"`
	DescendingSpacing bool    `toml:"descendingSpacing" json:"descendingSpacing"`
	SpacingRatio      float64 `toml:"spacingRatio" json:"spacingRatio"`
}

// Labels configures entity labels.
type Labels struct {
	Position       LabelPosition `toml:"position" json:"position"`
	Color          string        `toml:"color" json:"color"`
	FontFamily     string        `toml:"fontFamily" json:"fontFamily"`
	Size           int           `toml:"size" json:"size"`
	Spacing        int           `toml:"spacing" json:"spacing"`
	DescendingSize bool          `toml:"descendingSize" json:"descendingSize"`
	SizeRatio      float64       `toml:"sizeRatio" json:"sizeRatio"`
	Invisible      bool          `toml:"invisible" json:"invisible"`
}

// Timeline configures playback. All durations are in seconds.
type Timeline struct {
	Duration        float64 `toml:"duration" json:"duration"`
	Loop            bool    `toml:"loop" json:"loop"`
	LoopDelayBefore float64 `toml:"loopDelayBefore" json:"loopDelayBefore"`
	LoopDelayAfter  float64 `toml:"loopDelayAfter" json:"loopDelayAfter"`
}

// Animations configures rank-change motion.
type Animations struct {
	BarJump      BarJump `toml:"barJump" json:"barJump"`
	JumpDuration float64 `toml:"jumpDuration" json:"jumpDuration"`
}

type DateDisplay struct {
	Show            bool    `toml:"show" json:"show"`
	Position        Corner  `toml:"position" json:"position"`
	FontSize        int     `toml:"fontSize" json:"fontSize"`
	Color           string  `toml:"color" json:"color"`
	Margins         Margins `toml:"margins" json:"margins"`
	BackgroundColor string  `toml:"backgroundColor" json:"backgroundColor"`
}

type Background struct {
	Enabled bool   `toml:"enabled" json:"enabled"`
	Color   string `toml:"color" json:"color"`
}

// Default returns the editor's default settings.
func Default() *Settings {
	return &Settings{
		AspectRatio: AspectWide,
		FrameHeight: DefaultFrameHeight,
		Margins:     Margins{Top: 20, Bottom: 20, Left: 200, Right: 120},
		Bars: Bars{
			MaxCount:        10,
			Spacing:         8,
			DescendingRatio: 0.75,
			HeightRatio:     0.75,
			CustomSpacing:   []int{},
			AnimationType:   AnimationTransition,
			RoundedCorners:  RoundedCorners{Radius: 8},
		},
		Values: Values{
			ShowAtEnd:         true,
			EmptyCellHandling: dataset.EmptyZero,
			Color:             "#000000",
		},
		Images: Images{
			Position:    ImageBehind,
			Size:        32,
			Spacing:     8,
			WidthRatio:  0.75,
			HeightRatio: 0.75,
			Border: Border{
				Width:        2,
				Spacing:      2,
				WidthRatio:   0.75,
				SpacingRatio: 0.75,
			},
		},
		Labels: Labels{
			Position:   LabelBehind,
			Color:      "#000000",
			FontFamily: "sans-serif",
			Size:       14,
			Spacing:    8,
			SizeRatio:  0.75,
		},
		Timeline: Timeline{
			Duration:        30,
			Loop:            true,
			LoopDelayBefore: 1,
			LoopDelayAfter:  1,
		},
		Animations: Animations{
			BarJump:      JumpSmooth,
			JumpDuration: 0.3,
		},
		DateDisplay: DateDisplay{
			Show:            true,
			Position:        BottomRight,
			FontSize:        16,
			Color:           "#ffffff",
			Margins:         Margins{Top: 16, Bottom: 16, Left: 16, Right: 16},
			BackgroundColor: "rgba(0, 0, 0, 0.5)",
		},
		Background: Background{Color: "#ffffff"},
	}
}

// FrameSize returns the frame width and height in pixels.
// The width is derived from the height and the aspect ratio.
func (s *Settings) FrameSize() (width, height int) {
	height = s.FrameHeight
	return int(math.Round(float64(height) * s.AspectRatio.Ratio())), height
}

// AvailableHeight is the vertical space for bars.
func (s *Settings) AvailableHeight() int {
	return s.FrameHeight - s.Margins.Top - s.Margins.Bottom
}

// PlotWidth is the horizontal space a 100% bar occupies.
func (s *Settings) PlotWidth() int {
	w, _ := s.FrameSize()
	return w - s.Margins.Left - s.Margins.Right
}

// Clone returns a deep copy.
func (s *Settings) Clone() *Settings {
	c := *s
	c.Bars.CustomSpacing = append([]int(nil), s.Bars.CustomSpacing...)
	return &c
}

// MaxDuration bounds the timeline duration, the loop delays and the jump
// duration.
const MaxDuration = 24 * time.Hour

func seconds(v float64) time.Duration {
	return time.Duration(math.Round(v * float64(time.Second)))
}

// DurationValue returns the full traversal time.
func (t Timeline) DurationValue() time.Duration { return seconds(t.Duration) }

// DelayBefore returns the hold at index 0 after a loop reset.
func (t Timeline) DelayBefore() time.Duration { return seconds(t.LoopDelayBefore) }

// DelayAfter returns the hold at the last step before a loop reset.
func (t Timeline) DelayAfter() time.Duration { return seconds(t.LoopDelayAfter) }

// JumpDurationValue returns the smooth bar-jump duration.
func (a Animations) JumpDurationValue() time.Duration { return seconds(a.JumpDuration) }
