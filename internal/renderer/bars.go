package renderer

import (
	"image/color"
	"math"

	"github.com/linuxmatters/pulsebar/internal/config"
)

// Target is the height a bar eases towards for magnitude m. Loud bins
// overshoot the 255 ceiling and are clamped when drawn.
func Target(m uint8) float64 {
	return float64(m) * config.Amplification
}

// Ease moves smoothed a fixed fraction of the way towards target.
// The remaining distance shrinks by a factor of 1-Easing per call.
func Ease(smoothed, target float64) float64 {
	return smoothed + (target-smoothed)*config.Easing
}

// ClampHeight limits h to [0, limit]. NaN and negative heights draw nothing.
func ClampHeight(h, limit float64) float64 {
	if math.IsNaN(h) || h <= 0 {
		return 0
	}
	return math.Min(h, limit)
}

// BarColor maps magnitude to a colour running from blue-green when quiet to
// red-orange when loud. Alpha is always opaque.
func BarColor(m uint8) color.RGBA {
	return color.RGBA{
		R: uint8(min(int(m)+config.BarRedOffset, 255)),
		G: uint8(math.Round(config.BarGreenBase - float64(m)*config.BarGreenSlope)),
		B: config.BarBlue,
		A: 255,
	}
}

// BarWidth returns the width of each of n bars on a canvas canvasWidth wide.
// Bars are deliberately wider than an even split, so the highest bins run
// off the right edge.
func BarWidth(canvasWidth, n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(canvasWidth) / float64(n) * config.BarWidthFactor
}

// DrawBars eases smoothed towards the snapshot and paints one bottom-anchored
// bar per bin. smoothed must be the same length as snapshot; it is updated in
// place.
func DrawBars(s Surface, snapshot []uint8, smoothed []float64) {
	width, height := s.Size()
	limit := float64(height)
	barWidth := BarWidth(width, len(snapshot))

	x := 0.0
	for i, m := range snapshot {
		smoothed[i] = Ease(smoothed[i], Target(m))
		h := ClampHeight(smoothed[i], limit)

		s.FillRect(x, limit-h, barWidth, h, BarColor(m))
		x += barWidth + config.BarGap
	}
}
