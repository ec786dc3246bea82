// Package nodelink draws the timeline's playback state machine as a
// node-link diagram using Graphviz.
//
// Convert the state machine to DOT, then render it:
//
//	dot := nodelink.ToDOT(nodelink.Options{Loop: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// PDF and PNG go through librsvg:
//
//	pdf, err := nodelink.RenderPDF(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot, 2.0)
//
// Without Loop only the stopped and playing states are drawn. Setting
// Options.Current highlights the state a driver is in.
package nodelink
