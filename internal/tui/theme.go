package tui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme/palette helpers.
//
// The TUI must remain readable on both light and dark terminal
// backgrounds, so colors are lipgloss.AdaptiveColor and "faint" styling
// is applied only on dark backgrounds (faint on light terminals often
// becomes illegible).

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

func faintIfDark(st lipgloss.Style) lipgloss.Style {
	if lipgloss.HasDarkBackground() {
		return st.Faint(true)
	}
	return st
}

var (
	colorMuted      lipgloss.TerminalColor = ac("240", "243")
	colorSelectedBg lipgloss.TerminalColor = ac("#e9e9e9", "#262626")
	colorSelectedFg lipgloss.TerminalColor = ac("235", "255")
	colorAccent     lipgloss.TerminalColor = ac("27", "62") // blue
	colorMarked     lipgloss.TerminalColor = ac("130", "214")
	colorGrabBg     lipgloss.TerminalColor = ac("153", "24")
	colorError      lipgloss.TerminalColor = ac("160", "203")
	colorGroup      lipgloss.TerminalColor = ac("28", "78") // green
	colorBypassed   lipgloss.TerminalColor = ac("245", "240")
)

func styleMuted() lipgloss.Style {
	return faintIfDark(lipgloss.NewStyle().Foreground(colorMuted))
}

func styleSelected() lipgloss.Style {
	return lipgloss.NewStyle().Background(colorSelectedBg).Foreground(colorSelectedFg)
}

func styleMarked() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorMarked).Bold(true)
}

func styleGroup() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorGroup)
}

func styleError() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorError)
}

func styleBypassed() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorBypassed).Strikethrough(true)
}

// applyColorProfilePreference sets Lip Gloss's color profile. We only
// honor NO_COLOR and otherwise follow the terminal's capabilities;
// CLICOLOR-style vars are meant for non-interactive output.
func applyColorProfilePreference() {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}

	profile := termenv.ColorProfile()
	term := strings.ToLower(strings.TrimSpace(os.Getenv("TERM")))
	colorterm := strings.ToLower(strings.TrimSpace(os.Getenv("COLORTERM")))
	if strings.Contains(colorterm, "truecolor") || strings.Contains(colorterm, "24bit") {
		if profile != termenv.Ascii {
			profile = termenv.TrueColor
		}
	} else if strings.Contains(term, "256color") && (profile == termenv.Ascii || profile == termenv.ANSI) {
		profile = termenv.ANSI256
	}

	lipgloss.SetColorProfile(profile)
}

// applyThemePreference configures background detection. Some terminals
// don't report their background reliably, which makes AdaptiveColor
// pick the wrong variant.
//
// Priority:
// 1) CHAINRACK_TUI_THEME=light|dark|auto
// 2) CHAINRACK_TUI_DARKBG=true|false
// 3) COLORFGBG heuristic ("fg;bg", bg < 7 means dark)
func applyThemePreference() {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("CHAINRACK_TUI_THEME"))) {
	case "light":
		lipgloss.SetHasDarkBackground(false)
		return
	case "dark":
		lipgloss.SetHasDarkBackground(true)
		return
	}

	if v := strings.TrimSpace(os.Getenv("CHAINRACK_TUI_DARKBG")); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			lipgloss.SetHasDarkBackground(b)
			return
		}
	}

	if v := strings.TrimSpace(os.Getenv("COLORFGBG")); v != "" {
		parts := strings.Split(v, ";")
		if bg, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-1])); err == nil {
			lipgloss.SetHasDarkBackground(bg < 7)
		}
	}
}
