package renderer

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"os"

	"github.com/linuxmatters/pulsebar/internal/config"
	"golang.org/x/image/draw"
)

// GradientBackdrop renders a theme's vertical gradient.
func GradientBackdrop(width, height int, theme config.Theme) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	for y := 0; y < height; y++ {
		t := 0.0
		if height > 1 {
			t = float64(y) / float64(height-1)
		}
		c := color.RGBA{
			R: lerp(theme.Top.R, theme.Bottom.R, t),
			G: lerp(theme.Top.G, theme.Bottom.G, t),
			B: lerp(theme.Top.B, theme.Bottom.B, t),
			A: 255,
		}

		// Fill the first pixel of the row, then double it across
		row := img.Pix[y*img.Stride : y*img.Stride+width*4]
		if len(row) == 0 {
			continue
		}
		row[0], row[1], row[2], row[3] = c.R, c.G, c.B, c.A
		for filled := 4; filled < len(row); filled *= 2 {
			copy(row[filled:], row[:filled])
		}
	}

	return img
}

// SolidBackdrop fills the viewport with one colour.
func SolidBackdrop(width, height int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

// LoadBackdropImage loads a PNG or JPEG and scales it to the viewport.
func LoadBackdropImage(filename string, width, height int) (*image.RGBA, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", filename, err)
	}

	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, width, height))

	if bounds.Dx() != width || bounds.Dy() != height {
		draw.ApproxBiLinear.Scale(rgba, rgba.Bounds(), img, bounds, draw.Src, nil)
	} else {
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	}

	return rgba, nil
}

// SavePNG writes img to path.
func SavePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return f.Close()
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*t + 0.5)
}
