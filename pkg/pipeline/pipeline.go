// Package pipeline provides the load → compose → render pipeline for barrace.
//
// The CLI and the HTTP server both go through this package so that a frame
// rendered from the command line is byte-identical to one served over HTTP,
// and both share the same artifact cache.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Read the dataset (CSV or JSON) and the settings (TOML or JSON)
//  2. Compose: Build the [race.Frame] for a fractional timeline index
//  3. Render: Encode the frame as SVG, PNG, PDF or JSON
//
// Image references can optionally be embedded as data URIs between stages 2
// and 3 (see package assets).
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    DatasetPath:  "population.csv",
//	    SettingsPath: "race.toml",
//	    Index:        4.5,
//	    Formats:      []string{"svg", "png"},
//	})
//	svg := result.Artifacts["svg"]
//
// Render a whole timeline:
//
//	in, _ := runner.Load(ctx, opts)
//	frames, _, _ := runner.PlanWithCacheInfo(ctx, in, 30)
//	err := runner.RenderSequence(ctx, in, opts, timeline.Indices(frames), emit)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/text/language"

	"github.com/matzehuels/barrace/pkg/cache"
	"github.com/matzehuels/barrace/pkg/dataset"
	"github.com/matzehuels/barrace/pkg/errors"
	"github.com/matzehuels/barrace/pkg/render/race"
	"github.com/matzehuels/barrace/pkg/settings"
)

const (
	// DefaultFPS is the frame rate used for timeline plans and sequences.
	DefaultFPS = 30

	// MaxFPS bounds requested frame rates.
	MaxFPS = 120

	// DefaultScale is the PNG scale factor.
	DefaultScale = 1.0

	// MaxScale bounds the PNG scale factor.
	MaxScale = 8.0
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
}

// Options contains all configuration for a pipeline run.
// This struct supports JSON serialization for API requests; the server fills
// Dataset and Settings from the request body instead of paths.
type Options struct {
	// Input options. EmptyCells overrides settings.values.emptyCellHandling.
	DatasetPath  string                    `json:"dataset_path,omitempty"`
	SettingsPath string                    `json:"settings_path,omitempty"`
	EmptyCells   dataset.EmptyCellHandling `json:"empty_cells,omitempty"`
	Dataset      *dataset.Dataset          `json:"dataset,omitempty"`
	Settings     *settings.Settings        `json:"settings,omitempty"`

	// Frame options
	Index float64 `json:"index"`

	// Render options
	Formats []string `json:"formats,omitempty"`
	Scale   float64  `json:"scale,omitempty"`  // PNG only
	Locale  string   `json:"locale,omitempty"` // BCP 47 tag for counter formatting
	Embed   bool     `json:"embed,omitempty"`  // inline images as data URIs
	Refresh bool     `json:"refresh,omitempty"`

	// Sequence options
	FPS int `json:"fps,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Frame is the composed frame the artifacts were rendered from. It is nil
	// when every artifact came from the cache.
	Frame *race.Frame

	// InputHash is the content hash of dataset and settings.
	InputHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Entities   int
	Steps      int
	LoadTime   time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits.
type CacheInfo struct {
	RenderHit bool // Whether all artifacts came from cache
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, png, pdf, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ParseLocale parses a BCP 47 tag. The empty string selects race.DefaultLocale.
func ParseLocale(s string) (language.Tag, error) {
	if s == "" {
		return race.DefaultLocale, nil
	}
	tag, err := language.Parse(s)
	if err != nil {
		return language.Und, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid locale %q", s)
	}
	return tag, nil
}

// ValidateAndSetDefaults checks the options and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Dataset == nil && o.DatasetPath == "" {
		return errors.New(errors.ErrCodeInvalidInput, "dataset is required")
	}
	if o.EmptyCells != "" && !o.EmptyCells.Valid() {
		return errors.New(errors.ErrCodeInvalidInput, "invalid empty cell handling %q", o.EmptyCells)
	}
	if err := o.validateRender(); err != nil {
		return err
	}
	if o.FPS == 0 {
		o.FPS = DefaultFPS
	}
	if o.FPS < 0 || o.FPS > MaxFPS {
		return errors.New(errors.ErrCodeInvalidInput, "fps must be in [1, %d], got %d", MaxFPS, o.FPS)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

func (o *Options) validateRender() error {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Scale < 0 || o.Scale > MaxScale {
		return errors.New(errors.ErrCodeInvalidInput, "scale must be in (0, %g], got %g", MaxScale, o.Scale)
	}
	if _, err := ParseLocale(o.Locale); err != nil {
		return err
	}
	return nil
}

// FrameKeyOpts returns cache key options for one artifact.
func (o *Options) FrameKeyOpts(index float64, format string) cache.FrameKeyOpts {
	k := cache.FrameKeyOpts{
		Index:  index,
		Format: format,
		Locale: o.Locale,
		Embed:  o.Embed,
	}
	if format == FormatPNG {
		k.Scale = o.Scale
	}
	return k
}
