// Package sink provides output format renderers for race frames.
//
// # Overview
//
// A "sink" transforms a composed [race.Frame] into a final output format:
//
//   - SVG: one self-contained vector image per frame
//   - JSON: frame geometry for external renderers and caching
//   - PDF: print-ready output (requires rsvg-convert)
//   - PNG: raster output (requires rsvg-convert)
//
// Sinks never compute layout. Everything they draw (positions, sizes, counter
// values, colors) comes from the frame, so two sinks given the same frame
// agree exactly.
//
// # SVG Output
//
// [RenderSVG] writes one <g class="bar"> group per visible bar, translated to
// the bar's top offset inside the plot area. Bars are paths with only their
// right corners rounded. Images are clipped to an ellipse and optionally
// ringed in the entity color. Counter text is grouped by locale:
//
//	svg := sink.RenderSVG(frame,
//	    sink.WithImages(hrefs),
//	    sink.WithLocale(language.German),
//	)
//
// # PDF and PNG Output
//
// [RenderPDF] and [RenderPNG] render SVG first, then convert via
// [render.ToPDF] and [render.ToPNG]. These require librsvg:
//   - macOS: brew install librsvg
//   - Linux: apt install librsvg2-bin
//
// [race.Frame]: github.com/matzehuels/barrace/pkg/render/race.Frame
// [render.ToPDF]: github.com/matzehuels/barrace/pkg/render.ToPDF
// [render.ToPNG]: github.com/matzehuels/barrace/pkg/render.ToPNG
package sink
