package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/barrace/pkg/errors"
	"github.com/matzehuels/barrace/pkg/observability"
	"github.com/matzehuels/barrace/pkg/render/race"
	"github.com/matzehuels/barrace/pkg/render/race/sink"
)

// Render encodes a frame in one format. images maps image references to the
// hrefs to draw and may be nil.
func Render(ctx context.Context, f *race.Frame, format string, images map[string]string, opts Options) ([]byte, error) {
	svgOpts, err := buildSVGOptions(images, opts)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatSVG:
		return sink.RenderSVG(f, svgOpts...), nil
	case FormatPNG:
		return sink.RenderPNG(ctx, f, sink.WithPNGSVGOptions(svgOpts...), sink.WithScale(opts.Scale))
	case FormatPDF:
		return sink.RenderPDF(ctx, f, sink.WithPDFSVGOptions(svgOpts...))
	case FormatJSON:
		return sink.RenderJSON(f, sink.WithJSONImages(images))
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format: %s", format)
	}
}

// RenderAll encodes a frame in every requested format.
func RenderAll(ctx context.Context, f *race.Frame, images map[string]string, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		observability.Pipeline().OnRenderStart(ctx, format)
		start := time.Now()
		data, err := Render(ctx, f, format, images, opts)
		observability.Pipeline().OnRenderComplete(ctx, format, len(data), time.Since(start), err)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func buildSVGOptions(images map[string]string, opts Options) ([]sink.SVGOption, error) {
	tag, err := ParseLocale(opts.Locale)
	if err != nil {
		return nil, err
	}
	svgOpts := []sink.SVGOption{sink.WithLocale(tag)}
	if len(images) > 0 {
		svgOpts = append(svgOpts, sink.WithImages(images))
	}
	return svgOpts, nil
}
