package renderer

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
)

// Surface is a rectangular paintable region with its origin at the top left.
type Surface interface {
	Size() (width, height int)
	Clear()
	FillRect(x, y, w, h float64, c color.RGBA)
}

// Canvas is an image-backed Surface. Cleared pixels are fully transparent so
// the canvas can be composited over a backdrop.
type Canvas struct {
	img *image.RGBA
}

// NewCanvas creates a transparent canvas.
func NewCanvas(width, height int) *Canvas {
	return &Canvas{img: image.NewRGBA(image.Rect(0, 0, width, height))}
}

// Size returns the canvas dimensions in pixels.
func (c *Canvas) Size() (int, int) {
	b := c.img.Bounds()
	return b.Dx(), b.Dy()
}

// Clear resets every pixel to transparent.
func (c *Canvas) Clear() {
	clear(c.img.Pix)
}

// FillRect paints an opaque rectangle. Edges are rounded to the nearest pixel
// and anything outside the canvas is clipped.
func (c *Canvas) FillRect(x, y, w, h float64, col color.RGBA) {
	if !(w > 0) || !(h > 0) {
		return
	}

	r := image.Rect(
		int(math.Round(x)),
		int(math.Round(y)),
		int(math.Round(x+w)),
		int(math.Round(y+h)),
	).Intersect(c.img.Bounds())
	if r.Empty() {
		return
	}

	draw.Draw(c.img, r, image.NewUniform(col), image.Point{}, draw.Src)
}

// Image returns the backing image. It is overwritten by the next frame.
func (c *Canvas) Image() *image.RGBA {
	return c.img
}
