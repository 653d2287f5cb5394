package cli

import (
	"fmt"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
)

// Custom help styles
var (
	helpTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PulseCoral).
			MarginBottom(1)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(PulseTeal).
			Italic(true).
			MarginBottom(1)

	helpSectionStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(PulseViolet).
				MarginTop(1)

	helpFlagStyle = lipgloss.NewStyle().
			Foreground(PulseGold).
			Bold(true)

	helpArgStyle = lipgloss.NewStyle().
			Foreground(PulseCoral).
			Bold(true)

	helpDefaultStyle = lipgloss.NewStyle().
				Foreground(Slate).
				Italic(true)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(PulseTeal).
			Bold(true)
)

// KeyHelp describes one key binding of the live player.
type KeyHelp struct {
	Keys   string
	Action string
}

// LiveKeys lists the live player bindings, shown in --help and in the player.
var LiveKeys = []KeyHelp{
	{Keys: "space", Action: "play/pause"},
	{Keys: "n/p", Action: "next/prev"},
	{Keys: "b", Action: "background"},
	{Keys: "+/-", Action: "volume"},
	{Keys: "q", Action: "quit"},
}

// KeyLine renders LiveKeys on one line, as shown under the live player.
func KeyLine() string {
	parts := make([]string, len(LiveKeys))
	for i, k := range LiveKeys {
		parts[i] = k.Keys + " " + k.Action
	}
	return strings.Join(parts, "  ")
}

// modes explains how the output flags pick what pulsebar does.
var modes = []KeyHelp{
	{Keys: "(default)", Action: "Play the files with a live preview in the terminal"},
	{Keys: "--snapshot", Action: "Render one frame of the first file to a PNG"},
	{Keys: "--frames", Action: "Render every frame of the first file to PNGs"},
}

// StyledHelpPrinter creates a custom help printer with Lipgloss styling
func StyledHelpPrinter(options kong.HelpOptions) kong.HelpPrinter {
	return kong.HelpPrinter(func(options kong.HelpOptions, ctx *kong.Context) error {
		var sb strings.Builder

		// Title and description
		sb.WriteString(helpTitleStyle.Render(AppName))
		sb.WriteString("\n")
		sb.WriteString(helpDescStyle.Render(Tagline))
		sb.WriteString("\n")

		// Usage
		sb.WriteString(helpSectionStyle.Render("Usage:"))
		sb.WriteString("\n  ")
		sb.WriteString(fmt.Sprintf("%s <audio> ... [flags]", ctx.Model.Name))
		sb.WriteString("\n")

		// Arguments section
		args := getArguments(ctx)
		if len(args) > 0 {
			sb.WriteString("\n")
			sb.WriteString(helpSectionStyle.Render("Arguments:"))
			sb.WriteString("\n")
			for _, arg := range args {
				sb.WriteString("  ")
				sb.WriteString(helpArgStyle.Render(arg.name))
				if arg.help != "" {
					sb.WriteString("  ")
					sb.WriteString(arg.help)
				}
				sb.WriteString("\n")
			}
		}

		writeKeyHelp(&sb, "Modes:", modes)

		// Flags, one section per kong group in declaration order
		flags := getFlags(ctx)
		var groups []string
		byGroup := map[string][]flag{}
		for _, f := range flags {
			if _, ok := byGroup[f.group]; !ok {
				groups = append(groups, f.group)
			}
			byGroup[f.group] = append(byGroup[f.group], f)
		}
		for _, g := range groups {
			sb.WriteString("\n")
			sb.WriteString(helpSectionStyle.Render(g + ":"))
			sb.WriteString("\n")
			for _, flag := range byGroup[g] {
				sb.WriteString("  ")
				sb.WriteString(helpFlagStyle.Render(flag.flags))
				if flag.help != "" {
					sb.WriteString("  ")
					sb.WriteString(flag.help)
				}
				if flag.defaultVal != "" {
					sb.WriteString(" ")
					sb.WriteString(helpDefaultStyle.Render("(default: " + flag.defaultVal + ")"))
				}
				sb.WriteString("\n")
			}
		}

		writeKeyHelp(&sb, "Live keys:", LiveKeys)

		sb.WriteString("\n")
		fmt.Fprint(ctx.Stdout, sb.String())
		return nil
	})
}

func writeKeyHelp(sb *strings.Builder, title string, items []KeyHelp) {
	width := 0
	for _, it := range items {
		width = max(width, len(it.Keys))
	}

	sb.WriteString("\n")
	sb.WriteString(helpSectionStyle.Render(title))
	sb.WriteString("\n")
	for _, it := range items {
		sb.WriteString("  ")
		sb.WriteString(helpKeyStyle.Render(fmt.Sprintf("%-*s", width, it.Keys)))
		sb.WriteString("  ")
		sb.WriteString(it.Action)
		sb.WriteString("\n")
	}
}

type argument struct {
	name string
	help string
}

type flag struct {
	flags      string
	help       string
	defaultVal string
	group      string
}

func getArguments(ctx *kong.Context) []argument {
	var args []argument

	// Parse arguments from the model
	for _, arg := range ctx.Model.Node.Positional {
		name := arg.Summary()
		help := arg.Help
		args = append(args, argument{name: name, help: help})
	}

	return args
}

func getFlags(ctx *kong.Context) []flag {
	var flags []flag

	// Always include help flag
	flags = append(flags, flag{
		flags: "-h, --help",
		help:  "Show context-sensitive help.",
		group: "General",
	})

	// Parse flags from the model
	for _, f := range ctx.Model.Node.Flags {
		if f.Name == "help" || f.Hidden {
			continue
		}

		group := "General"
		if f.Group != nil && f.Group.Title != "" {
			group = f.Group.Title
		}

		flagStr := ""
		if f.Short != 0 {
			flagStr = fmt.Sprintf("-%c, --%s", f.Short, f.Name)
		} else {
			flagStr = fmt.Sprintf("--%s", f.Name)
		}

		if !f.IsBool() && f.PlaceHolder != "" {
			flagStr += "=" + strings.ToUpper(f.PlaceHolder)
		}

		// Only show default if it's a meaningful value (not empty, not type placeholder)
		defaultVal := ""
		if f.HasDefault && !f.IsBool() {
			val := f.Default
			if val != "" && val != "STRING" && val != "BOOL" {
				defaultVal = val
			}
		}

		flags = append(flags, flag{
			flags:      flagStr,
			help:       f.Help,
			defaultVal: defaultVal,
			group:      group,
		})
	}

	return flags
}
