package renderer

import (
	"image"
	"image/color"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"github.com/linuxmatters/pulsebar/internal/config"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

// TextColor returns the brand yellow used for the caption and canvas rule.
func TextColor() color.RGBA {
	return color.RGBA{R: config.TextColorR, G: config.TextColorG, B: config.TextColorB, A: 255}
}

// LoadFont returns a face for the embedded Go Regular font.
func LoadFont(size float64) (font.Face, error) {
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, err
	}

	face := truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})

	return face, nil
}

// DrawCaption draws text in the top-left corner.
func DrawCaption(img *image.RGBA, face font.Face, text string) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(TextColor()),
		Face: face,
	}

	ascent := face.Metrics().Ascent.Ceil()
	d.Dot = freetype.Pt(config.CaptionMargin, config.CaptionMargin+ascent)
	d.DrawString(text)
}

// TruncateCaption shortens text with an ellipsis until it fits maxWidth pixels.
func TruncateCaption(face font.Face, text string, maxWidth int) string {
	if font.MeasureString(face, text).Ceil() <= maxWidth {
		return text
	}

	runes := []rune(text)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := string(runes) + "…"
		if font.MeasureString(face, candidate).Ceil() <= maxWidth {
			return candidate
		}
	}
	return ""
}
