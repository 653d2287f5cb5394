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

// ExportProgress reports offline frame rendering.
type ExportProgress struct {
	Frame       int
	TotalFrames int
	Elapsed     time.Duration
	Preview     string // Optional rendered preview of the current frame
}

// ExportComplete signals that every frame has been written.
type ExportComplete struct {
	Dir         string
	TotalFrames int
	Elapsed     time.Duration
	Err         error
}

// exportQuitMsg is sent when it's time to quit after showing completion
type exportQuitMsg struct{}

// ExportModel shows progress while frames are written to disk.
type ExportModel struct {
	progressBar     progress.Model
	last            ExportProgress
	complete        *ExportComplete
	completionDelay time.Duration
	interrupted     bool
}

// NewExportModel creates the export progress view.
func NewExportModel() *ExportModel {
	p := progress.New(
		progress.WithGradient(string(cli.PulseTeal), string(cli.PulseCoral)),
		progress.WithWidth(40),
		progress.WithoutPercentage(),
	)

	return &ExportModel{
		progressBar:     p,
		completionDelay: time.Second,
	}
}

// Init initializes the model
func (m *ExportModel) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m *ExportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.progressBar.Width = max(10, min(msg.Width-30, 50))
		return m, nil

	case ExportProgress:
		m.last = msg
		return m, nil

	case ExportComplete:
		m.complete = &msg
		return m, tea.Tick(m.completionDelay, func(time.Time) tea.Msg {
			return exportQuitMsg{}
		})

	case exportQuitMsg:
		return m, tea.Quit

	case tea.KeyMsg:
		if m.complete != nil {
			return m, tea.Quit
		}
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			m.interrupted = true
			return m, tea.Quit
		}
	}

	return m, nil
}

// Interrupted reports whether the user quit before completion.
func (m *ExportModel) Interrupted() bool {
	return m.interrupted
}

// View renders the UI
func (m *ExportModel) View() string {
	var s strings.Builder

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(cli.PulseCoral).
		Render("Pulsebar ♪")
	s.WriteString(title)
	s.WriteString("\n")
	s.WriteString(lipgloss.NewStyle().Foreground(cli.PulseTeal).Render("Rendering frames"))
	s.WriteString("\n\n")

	percent := 0.0
	if m.complete != nil {
		percent = 1
	} else if m.last.TotalFrames > 0 {
		percent = float64(m.last.Frame) / float64(m.last.TotalFrames)
	}

	s.WriteString("Progress: ")
	s.WriteString(m.progressBar.ViewAs(percent))
	s.WriteString(fmt.Sprintf("  %d%%", int(percent*100)))
	s.WriteString("\n\n")

	if m.complete != nil {
		m.renderComplete(&s)
	} else {
		var fps float64
		if m.last.Elapsed > 0 {
			fps = float64(m.last.Frame) / m.last.Elapsed.Seconds()
		}
		s.WriteString(lipgloss.NewStyle().Faint(true).Render(
			fmt.Sprintf("Frame %d of %d  │  Time: %s  │  %.0f frames/s",
				m.last.Frame, m.last.TotalFrames, formatDuration(m.last.Elapsed), fps)))

		if m.last.Preview != "" {
			s.WriteString("\n\n")
			s.WriteString(m.last.Preview)
		}
	}

	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(cli.PulseViolet).
		Padding(1, 2).
		Render(s.String())
}

func (m *ExportModel) renderComplete(s *strings.Builder) {
	if m.complete.Err != nil {
		s.WriteString(lipgloss.NewStyle().Bold(true).Foreground(cli.PulseCoral).Render("✗ Export failed"))
		s.WriteString("\n")
		s.WriteString(m.complete.Err.Error())
		return
	}

	dimLabel := lipgloss.NewStyle().Faint(true)
	s.WriteString(lipgloss.NewStyle().Bold(true).Foreground(cli.PulseTeal).Render("✓ Export complete"))
	s.WriteString("\n")
	s.WriteString(fmt.Sprintf("%s%s\n", dimLabel.Render("Output: "), m.complete.Dir))
	s.WriteString(fmt.Sprintf("%s%d frames in %s", dimLabel.Render("Frames: "),
		m.complete.TotalFrames, formatDuration(m.complete.Elapsed)))
}
