package ui

import (
	"fmt"
	"image"
	"strings"

	"golang.org/x/image/draw"
)

// PreviewConfig holds the size of the terminal preview in cells. Each cell
// shows two vertically stacked pixels.
type PreviewConfig struct {
	Width  int // Width in terminal cells
	Height int // Height in terminal cells
}

// DefaultPreviewConfig returns a 16:9 preview that fits an 80x24 terminal.
func DefaultPreviewConfig() PreviewConfig {
	return PreviewConfig{
		Width:  72,
		Height: 20,
	}
}

// PreviewFor picks the largest preview that keeps aspect and fits a terminal
// of cols x rows, leaving reserved rows for the status lines.
func PreviewFor(cols, rows, reserved int, aspect float64) PreviewConfig {
	width := cols - 6
	height := rows - reserved
	if width < 8 || height < 4 || aspect <= 0 {
		return DefaultPreviewConfig()
	}

	// Two pixels per row, so a cell is twice as tall as a pixel
	if h := int(float64(width) / aspect / 2); h <= height {
		height = h
	} else {
		width = int(float64(height) * 2 * aspect)
	}
	return PreviewConfig{Width: width, Height: height}
}

// DownsampleFrame scales a full resolution frame to the preview pixel grid.
// The result is Width pixels wide and 2*Height pixels tall.
func DownsampleFrame(frame *image.RGBA, cfg PreviewConfig) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, cfg.Width, cfg.Height*2))
	draw.BiLinear.Scale(dst, dst.Bounds(), frame, frame.Bounds(), draw.Src, nil)
	return dst
}

// RenderPreview converts a downsampled frame to rows of half-block cells
// using ANSI 24-bit colour: the foreground paints the top pixel and the
// background the bottom one.
func RenderPreview(preview *image.RGBA) string {
	b := preview.Bounds()
	if b.Empty() {
		return ""
	}

	var sb strings.Builder
	for y := b.Min.Y; y+1 < b.Max.Y; y += 2 {
		for x := b.Min.X; x < b.Max.X; x++ {
			top := preview.RGBAAt(x, y)
			bottom := preview.RGBAAt(x, y+1)
			fmt.Fprintf(&sb, "\x1b[38;2;%d;%d;%dm\x1b[48;2;%d;%d;%dm▀",
				top.R, top.G, top.B, bottom.R, bottom.G, bottom.B)
		}
		sb.WriteString("\x1b[0m")
		if y+3 < b.Max.Y {
			sb.WriteByte('\n')
		}
	}

	return sb.String()
}
