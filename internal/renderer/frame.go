package renderer

import (
	"image"
	"image/color"
	"math"

	"github.com/linuxmatters/pulsebar/internal/config"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
)

// Frame composites one viewport image: backdrop, pulsing shapes, the bar
// canvas and a caption, in that order.
type Frame struct {
	img      *image.RGBA
	backdrop *image.RGBA
	fontFace font.Face
	rule     *image.Uniform
}

// NewFrame creates a frame renderer for a width x height viewport. fontFace
// may be nil to disable the caption.
func NewFrame(width, height int, fontFace font.Face) *Frame {
	return &Frame{
		img:      image.NewRGBA(image.Rect(0, 0, width, height)),
		fontFace: fontFace,
		rule:     image.NewUniform(TextColor()),
	}
}

// SetBackdrop replaces the image drawn behind everything else. A nil backdrop
// clears to black. The backdrop must match the viewport size.
func (f *Frame) SetBackdrop(bg *image.RGBA) {
	if bg != nil && bg.Bounds() != f.img.Bounds() {
		scaled := image.NewRGBA(f.img.Bounds())
		draw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), bg, bg.Bounds(), draw.Src, nil)
		bg = scaled
	}
	f.backdrop = bg
}

// Compose draws a complete frame and returns it. The returned image is reused
// by the next call.
func (f *Frame) Compose(canvas *Canvas, shapes []Shape, caption string) *image.RGBA {
	if f.backdrop != nil {
		copy(f.img.Pix, f.backdrop.Pix)
	} else {
		draw.Draw(f.img, f.img.Bounds(), image.Black, image.Point{}, draw.Src)
	}

	f.drawShapes(shapes)
	f.drawCanvas(canvas)

	if f.fontFace != nil && caption != "" {
		maxWidth := f.img.Bounds().Dx() - 2*config.CaptionMargin
		DrawCaption(f.img, f.fontFace, TruncateCaption(f.fontFace, caption, maxWidth))
	}

	return f.img
}

// Image returns the last composed frame.
func (f *Frame) Image() *image.RGBA {
	return f.img
}

func (f *Frame) drawShapes(shapes []Shape) {
	b := f.img.Bounds()
	for _, s := range shapes {
		d := int(math.Round(s.Size))
		if d <= 0 {
			continue
		}

		x := int(s.Left * float64(b.Dx()))
		y := int(s.Top * float64(b.Dy()))
		r := image.Rect(x, y, x+d, y+d)

		draw.DrawMask(f.img, r, image.NewUniform(s.Color), image.Point{}, circle(d), image.Point{}, draw.Over)
	}
}

// drawCanvas centres the bar canvas in the viewport with a one pixel rule
// along its bottom edge.
func (f *Frame) drawCanvas(canvas *Canvas) {
	if canvas == nil {
		return
	}

	b := f.img.Bounds()
	cw, ch := canvas.Size()
	x := (b.Dx() - cw) / 2
	y := (b.Dy() - ch) / 2

	draw.Draw(f.img, image.Rect(x, y, x+cw, y+ch), canvas.Image(), image.Point{}, draw.Over)
	draw.Draw(f.img, image.Rect(x, y+ch, x+cw, y+ch+1), f.rule, image.Point{}, draw.Src)
}

// circle is an alpha mask for a disc of diameter d.
type circle int

func (c circle) ColorModel() color.Model { return color.AlphaModel }

func (c circle) Bounds() image.Rectangle { return image.Rect(0, 0, int(c), int(c)) }

func (c circle) At(x, y int) color.Color {
	r := float64(c) / 2
	dx := float64(x) + 0.5 - r
	dy := float64(y) + 0.5 - r
	if dx*dx+dy*dy <= r*r {
		return color.Alpha{A: 255}
	}
	return color.Alpha{}
}
