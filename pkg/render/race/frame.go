package race

import (
	"github.com/matzehuels/barrace/pkg/render/race/layout"
	"github.com/matzehuels/barrace/pkg/settings"
)

// Frame is the complete, renderer-independent description of one moment of a
// race. Sinks only ever receive frames produced by a [Composer], so every
// value here already satisfies the settings and dataset invariants.
type Frame struct {
	Width  int `json:"width"`
	Height int `json:"height"`

	Index     float64 `json:"index"`
	Step      int     `json:"step"`
	Progress  float64 `json:"progress"`
	StepLabel string  `json:"stepLabel,omitempty"`

	// MaxValue is the largest value among the selected entities at Step.
	MaxValue float64 `json:"maxValue"`
	// Slots is the number of vertical rows the plot is divided into.
	Slots     int  `json:"slots"`
	BarHeight int  `json:"barHeight"`
	Plot      Rect `json:"plot"`

	Bars  []Bar    `json:"bars"`
	Date  *DateBox `json:"date,omitempty"`
	Style Style    `json:"style"`
}

// Rect is an axis-aligned box in frame pixels.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Bar is one row of the frame. Placeholders (Empty) only carry Rank, Top and
// Height.
type Bar struct {
	Rank  int  `json:"rank"`
	Empty bool `json:"empty,omitempty"`

	Label string `json:"label,omitempty"`
	Color string `json:"color,omitempty"`
	Image string `json:"image,omitempty"`

	// Top is relative to the plot area. It is fractional while a smooth bar
	// jump is in progress.
	Top    float64 `json:"top"`
	Height int     `json:"height"`

	// WidthPercent is the drawn bar length in percent of the plot width.
	WidthPercent float64 `json:"widthPercent,omitempty"`
	// AnchorPercent is where the value counter starts, in percent of the plot
	// width, before the image spacing offset.
	AnchorPercent float64 `json:"anchorPercent,omitempty"`

	// Value is the entity's value at the frame's step; Counter is the number
	// shown, which may be interpolated toward the next step.
	Value   float64 `json:"value"`
	Counter float64 `json:"counter"`

	ImageWidth    int `json:"imageWidth,omitempty"`
	ImageHeight   int `json:"imageHeight,omitempty"`
	BorderWidth   int `json:"borderWidth,omitempty"`
	BorderSpacing int `json:"borderSpacing,omitempty"`

	FontSize int `json:"fontSize,omitempty"`
	Radius   int `json:"radius,omitempty"`
}

// OuterImageWidth includes the ring and its spacing when a border is drawn.
func (b Bar) OuterImageWidth() int {
	return layout.OuterSize(b.ImageWidth, b.BorderWidth, b.BorderSpacing)
}

// OuterImageHeight includes the ring and its spacing when a border is drawn.
func (b Bar) OuterImageHeight() int {
	return layout.OuterSize(b.ImageHeight, b.BorderWidth, b.BorderSpacing)
}

// DateBox is the step label overlay.
type DateBox struct {
	Text            string           `json:"text"`
	Position        settings.Corner  `json:"position"`
	FontSize        int              `json:"fontSize"`
	Color           string           `json:"color"`
	BackgroundColor string           `json:"backgroundColor"`
	Margins         settings.Margins `json:"margins"`
}

// Style carries the presentation settings sinks need.
type Style struct {
	Background     string                 `json:"background,omitempty"`
	LabelPosition  settings.LabelPosition `json:"labelPosition"`
	LabelColor     string                 `json:"labelColor"`
	LabelSpacing   int                    `json:"labelSpacing"`
	FontFamily     string                 `json:"fontFamily"`
	LabelsHidden   bool                   `json:"labelsHidden,omitempty"`
	ShowValues     bool                   `json:"showValues"`
	ValueColor     string                 `json:"valueColor"`
	ImagePosition  settings.ImagePosition `json:"imagePosition"`
	ImageSpacing   int                    `json:"imageSpacing"`
	ImageBorder    bool                   `json:"imageBorder,omitempty"`
	RoundedCorners bool                   `json:"roundedCorners,omitempty"`
}

// Visible returns the non-placeholder bars.
func (f *Frame) Visible() []Bar {
	out := make([]Bar, 0, len(f.Bars))
	for _, b := range f.Bars {
		if !b.Empty {
			out = append(out, b)
		}
	}
	return out
}
