package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/linuxmatters/pulsebar/internal/cli"
)

// volumeStep is the change per +/- key press.
const volumeStep = 0.1

// reservedRows is the space taken by everything except the preview.
const reservedRows = 10

// Controller receives the player's key bindings.
type Controller interface {
	TogglePause()
	Next()
	Prev()
	CycleTheme()
	AdjustVolume(delta float64)
	Resize(cfg PreviewConfig)
}

// Status describes the loaded track for the status lines.
type Status struct {
	Track    string
	Index    int // Zero based position in the playlist
	Count    int
	Position time.Duration
	Duration time.Duration
	Complete bool // Duration is final
	Playing  bool
	Theme    string
	Volume   float64
	Peak     float64
	RMS      float64
	FPS      float64
}

// FrameMsg carries a rendered preview and the status at the time it was drawn.
type FrameMsg struct {
	Preview string
	Status  Status
}

// NoticeMsg shows a one-line message, such as a load failure, until the next
// notice replaces it.
type NoticeMsg string

// LiveModel is the interactive player view.
type LiveModel struct {
	ctrl        Controller
	progressBar progress.Model

	preview string
	status  Status
	notice  string

	width    int
	height   int
	quitting bool
}

// NewLiveModel creates the player view.
func NewLiveModel(ctrl Controller) *LiveModel {
	p := progress.New(
		progress.WithGradient(string(cli.PulseTeal), string(cli.PulseCoral)),
		progress.WithWidth(40),
		progress.WithoutPercentage(),
	)

	return &LiveModel{
		ctrl:        ctrl,
		progressBar: p,
	}
}

// Init initializes the model
func (m *LiveModel) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m *LiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progressBar.Width = max(10, min(msg.Width-30, 60))
		m.ctrl.Resize(PreviewFor(msg.Width, msg.Height, reservedRows, 16.0/9.0))
		return m, nil

	case FrameMsg:
		m.preview = msg.Preview
		m.status = msg.Status
		return m, nil

	case NoticeMsg:
		m.notice = string(msg)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case " ", "k":
			m.ctrl.TogglePause()
		case "n", "right":
			m.ctrl.Next()
		case "p", "left":
			m.ctrl.Prev()
		case "b":
			m.ctrl.CycleTheme()
		case "+", "=", "up":
			m.ctrl.AdjustVolume(volumeStep)
		case "-", "_", "down":
			m.ctrl.AdjustVolume(-volumeStep)
		}
	}

	return m, nil
}

// View renders the UI
func (m *LiveModel) View() string {
	if m.quitting {
		return ""
	}

	var s strings.Builder

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(cli.PulseCoral).
		Render("Pulsebar ♪")
	s.WriteString(title)
	s.WriteString("\n")

	if m.status.Track == "" {
		s.WriteString(lipgloss.NewStyle().Faint(true).Render("Loading..."))
		s.WriteString("\n")
	} else {
		s.WriteString(lipgloss.NewStyle().Foreground(cli.PulseTeal).Render(m.trackLine()))
		s.WriteString("\n")
	}

	if m.preview != "" {
		s.WriteString("\n")
		s.WriteString(m.preview)
		s.WriteString("\n")
	}

	s.WriteString("\n")
	m.renderTransport(&s)
	s.WriteString("\n")
	m.renderStats(&s)

	if m.notice != "" {
		s.WriteString("\n")
		s.WriteString(lipgloss.NewStyle().Foreground(cli.PulseCoral).Render(m.notice))
	}

	s.WriteString("\n")
	s.WriteString(lipgloss.NewStyle().Faint(true).Render(cli.KeyLine()))

	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(cli.PulseViolet).
		Padding(0, 1).
		Render(s.String())
}

func (m *LiveModel) trackLine() string {
	if m.status.Count > 1 {
		return fmt.Sprintf("%s  (%d/%d)", m.status.Track, m.status.Index+1, m.status.Count)
	}
	return m.status.Track
}

func (m *LiveModel) renderTransport(s *strings.Builder) {
	state := "Paused "
	if m.status.Playing {
		state = "Playing"
	}

	percent := 0.0
	if m.status.Duration > 0 {
		percent = min(1, float64(m.status.Position)/float64(m.status.Duration))
	}

	total := formatClock(m.status.Duration)
	if !m.status.Complete {
		total += "+"
	}

	s.WriteString(state)
	s.WriteString("  ")
	s.WriteString(m.progressBar.ViewAs(percent))
	s.WriteString(fmt.Sprintf("  %s / %s", formatClock(m.status.Position), total))
}

func (m *LiveModel) renderStats(s *strings.Builder) {
	labelStyle := lipgloss.NewStyle().Faint(true)
	valueStyle := lipgloss.NewStyle()

	pairs := []struct{ label, value string }{
		{"Peak:", formatLevel(m.status.Peak)},
		{"RMS:", formatLevel(m.status.RMS)},
		{"Volume:", fmt.Sprintf("%d%%", int(m.status.Volume*100+0.5))},
		{"Theme:", m.status.Theme},
		{"FPS:", fmt.Sprintf("%.0f", m.status.FPS)},
	}

	for i, p := range pairs {
		if i > 0 {
			s.WriteString("  ")
		}
		s.WriteString(labelStyle.Render(p.label))
		s.WriteString(" ")
		s.WriteString(valueStyle.Render(p.value))
	}
}
