package renderer

import (
	"image/color"
	"math/rand/v2"

	"github.com/linuxmatters/pulsebar/internal/config"
	"github.com/lucasb-eyer/go-colorful"
)

// Shape is a decorative circle behind the bars. Left and Top place its
// top-left corner as fractions of the viewport; Size is its diameter in
// pixels.
type Shape struct {
	Left  float64
	Top   float64
	Size  float64
	Color color.NRGBA
}

// GenerateShapes places n shapes at random with sizes in [ShapeMinSize,
// ShapeMaxSize). Every coordinate is an independent draw.
func GenerateShapes(rng *rand.Rand, n int) []Shape {
	shapes := make([]Shape, n)
	for i := range shapes {
		shapes[i] = Shape{
			Size:  config.ShapeMinSize + rng.Float64()*(config.ShapeMaxSize-config.ShapeMinSize),
			Top:   rng.Float64(),
			Left:  rng.Float64(),
			Color: ShapeColor(0),
		}
	}
	return shapes
}

// UpdateShapes pulses each shape to the magnitude of bin i mod N. Position is
// never touched.
func UpdateShapes(shapes []Shape, snapshot []uint8) {
	if len(snapshot) == 0 {
		return
	}
	for i := range shapes {
		freq := snapshot[i%len(snapshot)]
		shapes[i].Size = ShapeSize(freq)
		shapes[i].Color = ShapeColor(freq)
	}
}

// ShapeSize is the diameter of a shape pulsing at magnitude m.
func ShapeSize(m uint8) float64 {
	return float64(m)/config.ShapeSizeDivide + config.ShapeSizeBase
}

// ShapeColor uses the raw magnitude as the hue in degrees, so only hues in
// [0, 255] are reachable.
func ShapeColor(m uint8) color.NRGBA {
	r, g, b := colorful.Hsl(float64(m), config.ShapeSaturation, config.ShapeLightness).RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: uint8(config.ShapeAlpha*255 + 0.5)}
}
