package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

const (
	AppName = "Pulsebar ♪"
	Tagline = "Play an audio file as pulsing spectrum bars in your terminal, or render the frames to PNG."
)

// Color palette
var (
	primaryColor   = PulseCoral
	accentColor    = PulseViolet
	successColor   = PulseTeal
	mutedColor     = lipgloss.Color("#888888") // Gray
	highlightColor = PulseGold
	textColor      = lipgloss.Color("#FFFFFF") // White
)

// Styles
var (
	// Title style
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	// Subtitle style - muted gray
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Italic(true)

	// Section header style
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accentColor).
			MarginTop(1).
			MarginBottom(1)

	// Success message style
	SuccessStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(successColor)

	// Error message style
	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	// Highlight style for important values
	HighlightStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(highlightColor)

	// Key-value pair styles
	KeyStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	ValueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(textColor)

	// Box style for framed content
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accentColor).
			Padding(1, 2).
			MarginTop(1).
			MarginBottom(1)
)

// stdout receives everything printed by this package except errors.
var stdout io.Writer = os.Stdout

// PrintBanner prints the application banner
func PrintBanner() {
	fmt.Fprintln(stdout, TitleStyle.Render(AppName))
	fmt.Fprintln(stdout, SubtitleStyle.Render(Tagline))
	fmt.Fprintln(stdout)
}

// PrintVersion prints version information
func PrintVersion(version string) {
	fmt.Fprintln(stdout, TitleStyle.Render(AppName))
	fmt.Fprintf(stdout, "%s %s\n", KeyStyle.Render("Version:"), ValueStyle.Render(version))
	fmt.Fprintln(stdout)
}

// PrintError prints an error message
func PrintError(message string) {
	fmt.Fprintf(os.Stderr, "%s %s\n", ErrorStyle.Render("Error:"), message)
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	fmt.Fprintf(stdout, "%s %s\n", HighlightStyle.Render("Warning:"), message)
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Fprintf(stdout, "%s %s\n", SuccessStyle.Render("✓"), message)
}

// PrintInfo prints an informational message
func PrintInfo(key, value string) {
	fmt.Fprintf(stdout, "%s %s\n", KeyStyle.Render(key+":"), ValueStyle.Render(value))
}

// FormatDuration formats a duration nicely
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%.0fms", d.Seconds()*1000)
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

// FormatBytes formats bytes into human-readable format
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// PrintBox prints content in a styled box
func PrintBox(content string) {
	fmt.Fprintln(stdout, BoxStyle.Render(content))
}

// PrintSnapshotSummary prints the result of a single frame render in a box.
func PrintSnapshotSummary(output, track string, at time.Duration, size int64) {
	var b strings.Builder

	b.WriteString(SuccessStyle.Render("✓ Snapshot saved"))
	b.WriteString("\n\n")

	b.WriteString(KeyStyle.Render("Output: "))
	b.WriteString(ValueStyle.Render(output))
	b.WriteString("\n")

	b.WriteString(KeyStyle.Render("Track:  "))
	b.WriteString(ValueStyle.Render(track))
	b.WriteString("\n")

	b.WriteString(KeyStyle.Render("At:     "))
	b.WriteString(ValueStyle.Render(FormatDuration(at)))
	b.WriteString("\n")

	b.WriteString(KeyStyle.Render("Size:   "))
	b.WriteString(ValueStyle.Render(FormatBytes(size)))

	PrintBox(b.String())
}
