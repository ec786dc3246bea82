// Package layout computes the geometry of a bar chart race frame.
//
// Everything here is a pure function of a bar's rank, the number of visible
// slots and a handful of integers from the settings. There is no state and
// no dependency on the dataset, so the same functions serve live playback,
// exported frames and the HTTP server.
//
// # Vertical layout
//
// The plot area is divided into slots:
//
//	available := AvailableHeight(frameHeight, top, bottom)
//	h := BarHeight(available, spacing, TotalBars(maxCount, selected, keepSpacing))
//	top := Offset(rank, h, spacing, customSpacing, useCustomSpacing)
//
// # Descending features
//
// Bar width, bar height, image size, ring width, ring spacing and label size
// can each shrink with rank. They all share [Factor]; callers apply their own
// floors through [BarWidth], [Shrink], [BorderWidth] and [BorderSpacing].
package layout
