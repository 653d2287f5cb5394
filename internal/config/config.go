package config

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Viewport settings
const (
	Width  = 1280
	Height = 720
	FPS    = 60
)

// Analyser settings
const (
	FFTSize     = 256         // Analysis window in samples
	BinCount    = FFTSize / 2 // Frequency bins exposed per snapshot
	Smoothing   = 0.8         // Analyser temporal smoothing constant
	MinDecibels = -100.0      // Maps to magnitude 0
	MaxDecibels = -30.0       // Maps to magnitude 255
)

// Bar settings
const (
	CanvasHeight   = 300 // Drawing surface height in pixels
	CanvasFraction = 0.8 // Drawing surface width as a fraction of the viewport
	Amplification  = 1.1 // Magnitude to target height factor
	Easing         = 0.4 // Fraction of the remaining distance covered per tick
	BarWidthFactor = 2.5 // Bar width relative to canvasWidth/N
	BarGap         = 1.0 // Gap after each bar
	BarRedOffset   = 50  // Added to magnitude for the red channel
	BarGreenBase   = 250 // Green channel at silence
	BarGreenSlope  = 0.5 // Green lost per unit of magnitude
	BarBlue        = 150 // Constant blue channel
)

// Background shape settings
const (
	ShapeCount      = 10
	ShapeMinSize    = 50.0  // Inclusive lower bound for the initial size
	ShapeMaxSize    = 200.0 // Exclusive upper bound for the initial size
	ShapeSizeDivide = 1.2   // Magnitude divisor for the pulsing size
	ShapeSizeBase   = 50.0  // Added to the pulsing size
	ShapeSaturation = 0.8
	ShapeLightness  = 0.7
	ShapeAlpha      = 0.5
)

// Appearance
const (
	// Caption colour, also used for the canvas frame line
	TextColorR = 248
	TextColorG = 179
	TextColorB = 29

	CaptionSize   = 28 // Caption font size in points
	CaptionMargin = 24 // Caption offset from the top-left corner
)

// Theme is a two-stop vertical backdrop gradient.
type Theme struct {
	Name   string
	Top    color.RGBA
	Bottom color.RGBA
}

// Themes are cycled in order by the background switch.
var Themes = []Theme{
	{Name: "dusk", Top: color.RGBA{R: 30, G: 20, B: 60, A: 255}, Bottom: color.RGBA{R: 90, G: 30, B: 80, A: 255}},
	{Name: "ocean", Top: color.RGBA{R: 10, G: 40, B: 70, A: 255}, Bottom: color.RGBA{R: 20, G: 110, B: 130, A: 255}},
	{Name: "ember", Top: color.RGBA{R: 40, G: 10, B: 10, A: 255}, Bottom: color.RGBA{R: 140, G: 50, B: 20, A: 255}},
}

// NextTheme returns the theme index that follows i, wrapping after the last.
func NextTheme(i int) int {
	return (i + 1) % len(Themes)
}

// Config holds the runtime settings chosen on the command line.
type Config struct {
	Width        int // Viewport width
	Height       int // Viewport height
	CanvasHeight int
	FPS          int
	Theme        int         // Index into Themes
	Background   *color.RGBA // Solid backdrop overriding the theme
	Caption      bool
}

// Default returns the stock configuration.
func Default() Config {
	return Config{
		Width:        Width,
		Height:       Height,
		CanvasHeight: CanvasHeight,
		FPS:          FPS,
		Caption:      true,
	}
}

// CanvasWidth is the drawing surface width: a fraction of the viewport.
func (c Config) CanvasWidth() int {
	return int(float64(c.Width) * CanvasFraction)
}

// Validate reports the first setting that cannot produce a frame.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("invalid viewport %dx%d", c.Width, c.Height)
	}
	if c.CanvasHeight <= 0 || c.CanvasHeight > c.Height {
		return fmt.Errorf("canvas height %d must be within 1..%d", c.CanvasHeight, c.Height)
	}
	if c.FPS <= 0 || c.FPS > 240 {
		return fmt.Errorf("fps %d must be within 1..240", c.FPS)
	}
	if c.Theme < 0 || c.Theme >= len(Themes) {
		return fmt.Errorf("theme %d must be within 1..%d", c.Theme+1, len(Themes))
	}
	return nil
}

// ParseHexColor parses "RRGGBB" or "#RRGGBB" in either case.
func ParseHexColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid hex colour %q: want 6 digits", s)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid hex colour %q: %w", s, err)
	}

	return color.RGBA{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: 255,
	}, nil
}
