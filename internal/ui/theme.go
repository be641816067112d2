// Package ui renders todos, lists and status output with Lip Gloss.
package ui

import (
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme bundles palette + symbols + box borders.
// All renderers pull from `current`.
type Theme struct {
	Name string

	Title, Subtitle, Muted, Accent lipgloss.Style
	Success, Pending, Error        lipgloss.Style
	Selected                       lipgloss.Style

	Border      lipgloss.Border
	BorderColor lipgloss.TerminalColor

	SymDone, SymPending, SymError, SymEmpty string
	RadioOn, RadioOff                       string
}

var themes = map[string]func() Theme{
	"classic": classicTheme,
	"neon":    neonTheme,
	"mono":    monoTheme,
}

var current = classicTheme()

var (
	colorOff     bool
	savedProfile termenv.Profile
)

// ThemeNames lists the known themes, sorted.
func ThemeNames() []string {
	names := make([]string, 0, len(themes))
	for n := range themes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// SetTheme switches the active theme. Unknown names fall back to classic.
// mono also turns color off; any other theme turns it back on.
func SetTheme(name string) {
	mk, ok := themes[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		mk = classicTheme
	}
	current = mk()
	if current.Name == "mono" {
		DisableColor()
	} else {
		restoreColor()
	}
}

// Current exposes what renderers need.
func Current() Theme { return current }

// DisableColor strips all colors and text attributes from rendered output.
func DisableColor() {
	if !colorOff {
		savedProfile = lipgloss.ColorProfile()
		colorOff = true
	}
	lipgloss.SetColorProfile(termenv.Ascii)
}

func restoreColor() {
	if colorOff {
		lipgloss.SetColorProfile(savedProfile)
		colorOff = false
	}
}

func classicTheme() Theme {
	return Theme{
		Name:        "classic",
		Title:       lipgloss.NewStyle().Bold(true),
		Subtitle:    lipgloss.NewStyle().Faint(true),
		Muted:       lipgloss.NewStyle().Faint(true),
		Accent:      lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		Success:     lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Pending:     lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Error:       lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Selected:    lipgloss.NewStyle().Bold(true).Reverse(true),
		Border:      lipgloss.RoundedBorder(),
		BorderColor: lipgloss.Color("8"),
		SymDone:     "✔", SymPending: "•", SymError: "✖", SymEmpty: "∅",
		RadioOn: "◉", RadioOff: "○",
	}
}

func neonTheme() Theme {
	t := classicTheme()
	t.Name = "neon"
	t.Title = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13"))
	t.Accent = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	t.Pending = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	t.Selected = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("13"))
	t.BorderColor = lipgloss.Color("13")
	return t
}

func monoTheme() Theme {
	plain := lipgloss.NewStyle()
	return Theme{
		Name:  "mono",
		Title: plain.Bold(true), Subtitle: plain, Muted: plain, Accent: plain,
		Success: plain, Pending: plain, Error: plain.Bold(true),
		Selected:    plain.Reverse(true),
		Border:      lipgloss.ASCIIBorder(),
		BorderColor: lipgloss.NoColor{},
		SymDone:     "x", SymPending: "-", SymError: "!", SymEmpty: "0",
		RadioOn: "(*)", RadioOff: "( )",
	}
}
