package renderer

import (
	"image"
	"image/color"
	"math"
	"path/filepath"
	"testing"

	"github.com/linuxmatters/pulsebar/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanvas_FillRectClips(t *testing.T) {
	c := NewCanvas(10, 10)
	red := color.RGBA{R: 255, A: 255}

	c.FillRect(8, 8, 5, 5, red)
	img := c.Image()
	assert.Equal(t, red, img.RGBAAt(9, 9))
	assert.Equal(t, color.RGBA{}, img.RGBAAt(7, 7))

	// Degenerate rectangles draw nothing
	c.Clear()
	c.FillRect(0, 0, 5, 0, red)
	c.FillRect(0, 0, math.NaN(), 5, red)
	c.FillRect(20, 20, 5, 5, red)
	for _, v := range img.Pix {
		require.Zero(t, v)
	}
}

func TestCanvas_ClearIsTransparent(t *testing.T) {
	c := NewCanvas(4, 4)
	c.FillRect(0, 0, 4, 4, color.RGBA{R: 1, G: 2, B: 3, A: 255})
	c.Clear()

	w, h := c.Size()
	assert.Equal(t, 4, w)
	assert.Equal(t, 4, h)
	assert.Equal(t, color.RGBA{}, c.Image().RGBAAt(2, 2))
}

func TestCircleMask(t *testing.T) {
	m := circle(10)
	assert.Equal(t, image.Rect(0, 0, 10, 10), m.Bounds())
	assert.Equal(t, color.Alpha{A: 255}, m.At(5, 5))
	assert.Equal(t, color.Alpha{}, m.At(0, 0))
	assert.Equal(t, color.Alpha{}, m.At(9, 9))
}

// TestFrame_Compose checks the layering: backdrop, shapes, then the canvas
// centred in the viewport.
func TestFrame_Compose(t *testing.T) {
	f := NewFrame(100, 60, nil)
	blue := color.RGBA{B: 200, A: 255}
	f.SetBackdrop(SolidBackdrop(100, 60, blue))

	canvas := NewCanvas(40, 20)
	green := color.RGBA{G: 255, A: 255}
	canvas.FillRect(0, 10, 40, 10, green)

	shapes := []Shape{{Left: 0, Top: 0, Size: 20, Color: color.NRGBA{R: 255, A: 255}}}
	img := f.Compose(canvas, shapes, "ignored without a font")

	assert.Equal(t, blue, img.RGBAAt(99, 0), "backdrop shows where nothing is drawn")
	assert.Equal(t, color.RGBA{R: 255, A: 255}, img.RGBAAt(10, 10), "shape centre")
	assert.Equal(t, blue, img.RGBAAt(0, 0), "shape corner is outside the circle")

	// Canvas sits at (30, 20); its transparent top half lets the backdrop through
	assert.Equal(t, green, img.RGBAAt(50, 35))
	assert.Equal(t, blue, img.RGBAAt(50, 25))
	assert.Equal(t, TextColor(), img.RGBAAt(50, 40), "rule under the canvas")
	assert.Same(t, img, f.Image())
}

func TestFrame_TranslucentShapeBlends(t *testing.T) {
	f := NewFrame(20, 20, nil)
	f.SetBackdrop(SolidBackdrop(20, 20, color.RGBA{A: 255}))

	img := f.Compose(nil, []Shape{{Size: 20, Color: color.NRGBA{R: 254, A: 128}}}, "")
	got := img.RGBAAt(10, 10)
	assert.InDelta(t, 127, int(got.R), 2)
	assert.Equal(t, uint8(255), got.A)
}

func TestFrame_NilBackdropIsBlack(t *testing.T) {
	f := NewFrame(8, 8, nil)
	img := f.Compose(nil, nil, "")
	assert.Equal(t, color.RGBA{A: 255}, img.RGBAAt(3, 3))
}

// TestFrame_SetBackdropScales accepts a backdrop of the wrong size.
func TestFrame_SetBackdropScales(t *testing.T) {
	f := NewFrame(30, 20, nil)
	f.SetBackdrop(SolidBackdrop(7, 3, color.RGBA{R: 9, A: 255}))

	got := f.Compose(nil, nil, "").RGBAAt(15, 10)
	assert.InDelta(t, 9, int(got.R), 1)
	assert.Equal(t, uint8(255), got.A)
}

func TestGradientBackdrop(t *testing.T) {
	theme := config.Themes[0]
	img := GradientBackdrop(33, 11, theme)

	assert.Equal(t, theme.Top, img.RGBAAt(0, 0))
	assert.Equal(t, theme.Top, img.RGBAAt(32, 0))
	assert.Equal(t, theme.Bottom, img.RGBAAt(17, 10))
}

func TestBackdropImageRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bg.png")
	require.NoError(t, SavePNG(path, SolidBackdrop(16, 9, color.RGBA{R: 40, G: 50, B: 60, A: 255})))

	img, err := LoadBackdropImage(path, 32, 18)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 32, 18), img.Bounds())
	assert.Equal(t, color.RGBA{R: 40, G: 50, B: 60, A: 255}, img.RGBAAt(20, 10))

	_, err = LoadBackdropImage(filepath.Join(t.TempDir(), "missing.png"), 32, 18)
	assert.Error(t, err)
}

func TestCaption(t *testing.T) {
	face, err := LoadFont(config.CaptionSize)
	require.NoError(t, err)

	assert.Equal(t, "short.wav", TruncateCaption(face, "short.wav", 1000))

	long := "a very long file name that will never fit in a narrow viewport.flac"
	got := TruncateCaption(face, long, 120)
	assert.NotEqual(t, long, got)
	assert.Contains(t, got, "…")

	f := NewFrame(320, 120, face)
	img := f.Compose(nil, nil, "caption")

	// Some pixel in the caption area picks up the brand colour
	found := false
	for y := config.CaptionMargin; y < config.CaptionMargin+config.CaptionSize && !found; y++ {
		for x := config.CaptionMargin; x < 200; x++ {
			if img.RGBAAt(x, y).R > 100 {
				found = true
				break
			}
		}
	}
	assert.True(t, found, "caption should be drawn")
}

func BenchmarkFrameCompose(b *testing.B) {
	cfg := config.Default()
	f := NewFrame(cfg.Width, cfg.Height, nil)
	f.SetBackdrop(GradientBackdrop(cfg.Width, cfg.Height, config.Themes[1]))

	canvas := NewCanvas(cfg.CanvasWidth(), cfg.CanvasHeight)
	snapshot := make([]uint8, config.BinCount)
	for i := range snapshot {
		snapshot[i] = uint8(i * 2)
	}
	smoothed := make([]float64, config.BinCount)
	shapes := make([]Shape, config.ShapeCount)
	for i := range shapes {
		shapes[i] = Shape{Left: float64(i) / 10, Top: 0.5, Size: 100}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		canvas.Clear()
		DrawBars(canvas, snapshot, smoothed)
		UpdateShapes(shapes, snapshot)
		f.Compose(canvas, shapes, "")
	}
}
