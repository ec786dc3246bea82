package layout

import "math"

// SaturationRank is the rank at which every descending feature reaches its ratio.
const SaturationRank = 9

// MinWidthPercent is the narrowest bar, in percent of the plot width.
const MinWidthPercent = 2.0

// Factor is the saturating scale for rank r:
//
//	position = min(r, 9) / 9
//	factor   = 1 - (1 - ratio) * position
//
// It is exactly 1 at rank 0 and exactly ratio from rank 9 on. Negative ranks
// are treated as rank 0.
func Factor(rank int, ratio float64) float64 {
	if rank <= 0 {
		return 1
	}
	if rank >= SaturationRank {
		return ratio
	}
	position := float64(rank) / SaturationRank
	return 1 - (1-ratio)*position
}

// Scale is one descending feature: a toggle and its ratio.
type Scale struct {
	Enabled bool
	Ratio   float64
}

// Of returns base scaled for rank, or base unchanged when disabled.
func (s Scale) Of(rank int, base float64) float64 {
	if !s.Enabled {
		return base
	}
	return base * Factor(rank, s.Ratio)
}

// TotalBars is the number of vertical slots the frame is divided into.
func TotalBars(maxCount, selected int, keepSpacing bool) int {
	if keepSpacing {
		return maxCount
	}
	return selected
}

// AvailableHeight is the frame height minus vertical margins.
func AvailableHeight(frameHeight, marginTop, marginBottom int) int {
	return frameHeight - marginTop - marginBottom
}

// BarHeight divides the available height among totalBars slots:
//
//	floor((available - max(0, spacing) * (totalBars - 1)) / totalBars)
//
// Negative spacing is clamped here only; [Offset] uses it raw. The result is
// never negative, and is 0 when there are no bars.
func BarHeight(available, spacing, totalBars int) int {
	if totalBars <= 0 {
		return 0
	}
	h := floorDiv(available-max(0, spacing)*(totalBars-1), totalBars)
	return max(0, h)
}

// Offset is the top of rank r relative to the plot area.
//
// With custom spacing the gaps accumulate: the gap after rank k is
// custom[k] when present and spacing otherwise. Without it the offset is
// r * (barHeight + spacing).
func Offset(rank, barHeight, spacing int, custom []int, useCustom bool) int {
	if !useCustom {
		return rank * (barHeight + spacing)
	}
	pos := 0
	for k := 0; k < rank; k++ {
		gap := spacing
		if k < len(custom) {
			gap = custom[k]
		}
		pos += barHeight + gap
	}
	return pos
}

// Percent is value/max*100, or 0 when max is not positive.
func Percent(value, maxValue float64) float64 {
	if maxValue <= 0 {
		return 0
	}
	return value / maxValue * 100
}

// BarWidth is the bar length in percent of the plot width, scaled by the
// descending-width factor and floored at [MinWidthPercent].
func BarWidth(value, maxValue float64, rank int, s Scale) float64 {
	w := s.Of(rank, Percent(value, maxValue))
	if math.IsNaN(w) || w < MinWidthPercent {
		return MinWidthPercent
	}
	return w
}

// Shrink floors a scaled pixel size, keeping it at least 1.
// It is used for bar heights, image sizes and label font sizes.
func Shrink(base, rank int, s Scale) int {
	if !s.Enabled {
		return base
	}
	return max(1, int(math.Floor(s.Of(rank, float64(base)))))
}

// BorderWidth is the image ring width for rank, at least 1 when descending.
func BorderWidth(base, rank int, s Scale) int {
	return Shrink(base, rank, s)
}

// BorderSpacing is the gap between image and ring for rank, never negative.
func BorderSpacing(base, rank int, s Scale) int {
	if !s.Enabled {
		return base
	}
	return max(0, int(math.Floor(s.Of(rank, float64(base)))))
}

// OuterSize is an image size including its ring and ring spacing.
func OuterSize(size, borderWidth, borderSpacing int) int {
	return size + 2*(borderWidth+borderSpacing)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
