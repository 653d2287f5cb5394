package ui

import (
	"errors"
	"image"
	"image/color"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeController struct {
	toggles, nexts, prevs, themes int
	volume                        float64
	preview                       PreviewConfig
}

func (c *fakeController) TogglePause()             { c.toggles++ }
func (c *fakeController) Next()                    { c.nexts++ }
func (c *fakeController) Prev()                    { c.prevs++ }
func (c *fakeController) CycleTheme()              { c.themes++ }
func (c *fakeController) AdjustVolume(d float64)   { c.volume += d }
func (c *fakeController) Resize(cfg PreviewConfig) { c.preview = cfg }

func key(s string) tea.KeyMsg {
	switch s {
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestLiveModel_KeyBindings(t *testing.T) {
	ctrl := &fakeController{}
	m := NewLiveModel(ctrl)

	for _, k := range []string{" ", "n", "n", "p", "b", "+", "+", "-"} {
		_, cmd := m.Update(key(k))
		assert.Nil(t, cmd, "key %q", k)
	}

	assert.Equal(t, 1, ctrl.toggles)
	assert.Equal(t, 2, ctrl.nexts)
	assert.Equal(t, 1, ctrl.prevs)
	assert.Equal(t, 1, ctrl.themes)
	assert.InDelta(t, volumeStep, ctrl.volume, 1e-9)
}

func TestLiveModel_Quit(t *testing.T) {
	for _, k := range []string{"q", "ctrl+c"} {
		m := NewLiveModel(&fakeController{})
		_, cmd := m.Update(key(k))
		require.NotNil(t, cmd, "key %q", k)
		assert.Equal(t, tea.Quit(), cmd())
		assert.Empty(t, m.View())
	}
}

func TestLiveModel_ResizeUpdatesPreview(t *testing.T) {
	ctrl := &fakeController{}
	m := NewLiveModel(ctrl)

	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	assert.LessOrEqual(t, ctrl.preview.Width, 114)
	assert.LessOrEqual(t, ctrl.preview.Height, 40-reservedRows)
	assert.Equal(t, 30, ctrl.preview.Height, "limited by terminal height")
	assert.Positive(t, ctrl.preview.Height)
}

func TestLiveModel_View(t *testing.T) {
	m := NewLiveModel(&fakeController{})
	assert.Contains(t, m.View(), "Loading...")

	m.Update(FrameMsg{
		Preview: "PREVIEW",
		Status: Status{
			Track:    "song.flac",
			Index:    1,
			Count:    3,
			Position: 65 * time.Second,
			Duration: 3 * time.Minute,
			Complete: false,
			Playing:  true,
			Theme:    "ocean",
			Volume:   0.8,
			Peak:     1,
			RMS:      0.1,
			FPS:      60,
		},
	})
	m.Update(NoticeMsg("cannot open next.ogg"))

	view := m.View()
	for _, want := range []string{"song.flac", "(2/3)", "PREVIEW", "Playing", "1:05", "3:00+", "ocean", "80%", "0.0 dB", "-20.0 dB", "cannot open next.ogg"} {
		assert.Contains(t, view, want)
	}
}

func TestPreviewFor(t *testing.T) {
	cfg := PreviewFor(200, 30, reservedRows, 16.0/9.0)
	assert.LessOrEqual(t, cfg.Height, 20)
	assert.LessOrEqual(t, cfg.Width, 194)
	assert.InDelta(t, 16.0/9.0, float64(cfg.Width)/float64(cfg.Height*2), 0.1)

	assert.Equal(t, DefaultPreviewConfig(), PreviewFor(5, 5, reservedRows, 16.0/9.0))
}

// TestDownsampleFrame checks a solid frame stays solid at preview size.
func TestDownsampleFrame(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 320, 180))
	teal := color.RGBA{R: 50, G: 250, B: 150, A: 255}
	for i := 0; i < len(src.Pix); i += 4 {
		copy(src.Pix[i:], []byte{teal.R, teal.G, teal.B, teal.A})
	}

	dst := DownsampleFrame(src, PreviewConfig{Width: 32, Height: 9})
	assert.Equal(t, image.Rect(0, 0, 32, 18), dst.Bounds())

	got := dst.RGBAAt(16, 9)
	assert.InDelta(t, int(teal.R), int(got.R), 1)
	assert.InDelta(t, int(teal.G), int(got.G), 1)
	assert.InDelta(t, int(teal.B), int(got.B), 1)
}

func TestRenderPreview(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 4))
	img.SetRGBA(0, 0, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	img.SetRGBA(0, 1, color.RGBA{R: 40, G: 50, B: 60, A: 255})

	out := RenderPreview(img)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, 3, strings.Count(lines[0], "▀"))
	assert.True(t, strings.HasPrefix(lines[0], "\x1b[38;2;10;20;30m\x1b[48;2;40;50;60m▀"))
	assert.True(t, strings.HasSuffix(lines[1], "\x1b[0m"))

	assert.Empty(t, RenderPreview(image.NewRGBA(image.Rect(0, 0, 0, 0))))
}

func TestExportModel(t *testing.T) {
	m := NewExportModel()
	m.Update(ExportProgress{Frame: 30, TotalFrames: 120, Elapsed: time.Second})
	view := m.View()
	assert.Contains(t, view, "Frame 30 of 120")
	assert.Contains(t, view, "25%")

	_, cmd := m.Update(ExportComplete{Dir: "out", TotalFrames: 120, Elapsed: 2 * time.Second})
	assert.NotNil(t, cmd)
	assert.Contains(t, m.View(), "Export complete")
	assert.Contains(t, m.View(), "100%")

	_, cmd = m.Update(exportQuitMsg{})
	assert.Equal(t, tea.Quit(), cmd())
	assert.False(t, m.Interrupted())
}

func TestExportModel_FailureAndInterrupt(t *testing.T) {
	m := NewExportModel()
	m.Update(ExportComplete{Err: errors.New("disk full")})
	assert.Contains(t, m.View(), "disk full")

	m = NewExportModel()
	_, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
	assert.True(t, m.Interrupted())
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "0:00", formatClock(-time.Second))
	assert.Equal(t, "2:05", formatClock(125*time.Second+900*time.Millisecond))
	assert.Equal(t, "-inf dB", formatLevel(0))
	assert.Equal(t, "-6.0 dB", formatLevel(0.5))
	assert.Equal(t, "0s", formatDuration(0))
	assert.Equal(t, "250ms", formatDuration(250*time.Millisecond))
}
