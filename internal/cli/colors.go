package cli

import "github.com/charmbracelet/lipgloss"

// Pulse colour palette ♪
// Shared colours for consistent branding across CLI and TUI. The coral and
// teal ends match the bar colours for loud and quiet bins.
var (
	PulseCoral  = lipgloss.Color("#FF7B96") // Loud bins
	PulseTeal   = lipgloss.Color("#32FA96") // Quiet bins
	PulseViolet = lipgloss.Color("#7A4FD0") // Frame borders
	PulseGold   = lipgloss.Color("#F8B31D") // Caption yellow

	// Accent colours
	Slate = lipgloss.Color("#8A8FA8") // Subtle text
)
