// Package render holds the output side of barrace: frame rendering and
// format conversion.
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg). Both the race sinks and the
// state diagram renderer use them.
//
//	svg := sink.RenderSVG(frame)
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0) // 2x scale
//
// # Race Frames
//
// The [race] subpackage composes renderer-independent frames from a dataset
// and settings at a fractional timeline index.
//
// Key race subpackages:
//   - [race/ranking]: per-step entity selection and ordering
//   - [race/layout]: bar, image and spacing geometry
//   - [race/sink]: output formats (SVG, PNG, PDF, JSON)
//
// # State Diagrams
//
// The [nodelink] subpackage draws the timeline's playback state machine
// with Graphviz.
//
//	dot := nodelink.ToDOT(nodelink.Options{Loop: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// [race]: github.com/matzehuels/barrace/pkg/render/race
// [race/ranking]: github.com/matzehuels/barrace/pkg/render/race/ranking
// [race/layout]: github.com/matzehuels/barrace/pkg/render/race/layout
// [race/sink]: github.com/matzehuels/barrace/pkg/render/race/sink
// [nodelink]: github.com/matzehuels/barrace/pkg/render/nodelink
package render
