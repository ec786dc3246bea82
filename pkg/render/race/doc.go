// Package race composes the frames of a bar chart race.
//
// A frame is the complete geometry of one moment of playback: which entities
// are visible, in which order, where each bar sits and how long it is, the
// number its counter shows and how large its image, ring and label are. It is
// computed from three inputs only:
//
//   - a validated [dataset.Dataset]
//   - validated [settings.Settings]
//   - a fractional index in [0, T-1]
//
// The same inputs always produce the same frame, so a live player and an
// offline exporter that walk the same sequence of indices draw identical
// pictures.
//
// # Pipeline
//
//	index ──► dataset.Position ──► ranking.Select ──► layout ──► Frame ──► sink
//
// [ranking] picks and orders the visible entities at the discrete step.
// [layout] holds the pure geometry functions, all of which share the
// saturating rank factor. The [Composer] ties them together and adds the
// presentation concerns: counter interpolation, smooth rank jumps, the date
// box and style. Output formats live in the sink subpackage.
//
//	c, err := race.NewComposer(ds, s)
//	if err != nil {
//	    return err
//	}
//	f, err := c.Frame(4.5)
//	svg := sink.RenderSVG(f)
//
// [dataset.Dataset]: github.com/matzehuels/barrace/pkg/dataset.Dataset
// [settings.Settings]: github.com/matzehuels/barrace/pkg/settings.Settings
// [ranking]: github.com/matzehuels/barrace/pkg/render/race/ranking
// [layout]: github.com/matzehuels/barrace/pkg/render/race/layout
package race
