package sink

import (
	"context"

	"github.com/matzehuels/barrace/pkg/render"
	"github.com/matzehuels/barrace/pkg/render/race"
)

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	svgOpts []SVGOption
	scale   float64
}

// WithPNGSVGOptions passes options through to the underlying SVG renderer.
func WithPNGSVGOptions(opts ...SVGOption) PNGOption {
	return func(r *pngRenderer) { r.svgOpts = opts }
}

// WithScale sets the PNG scale factor (default 1.0, the frame's pixel size).
func WithScale(s float64) PNGOption {
	return func(r *pngRenderer) { r.scale = s }
}

// RenderPNG renders the frame as PNG via SVG conversion.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(ctx context.Context, f *race.Frame, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{scale: 1.0}
	for _, opt := range opts {
		opt(&r)
	}
	svg := RenderSVG(f, r.svgOpts...)
	return render.ToPNG(ctx, svg, r.scale)
}
