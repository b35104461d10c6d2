package tui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"taskdash/internal/model"
)

// Palette helpers.
//
// The TUI must stay readable on light and dark backgrounds, so colors are
// lipgloss.AdaptiveColor and "faint" is only applied on dark terminals.

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
	colorMuted       = ac("240", "243")
	colorChromeFg    = ac("240", "245")
	colorSelectedBg  = ac("#e9e9e9", "#262626")
	colorSelectedFg  = ac("235", "255")
	colorSurfaceBg   = ac("255", "235")
	colorSurfaceFg   = ac("235", "252")
	colorControlBg   = ac("252", "235")
	colorInputBg     = ac("254", "234")
	colorAccent      = ac("27", "62")
	colorAccentFg    = ac("255", "235")
	colorSuccessBg   = ac("28", "22")
	colorErrorBg     = ac("196", "160")
	colorToastFg     = ac("255", "255")
	colorModalBorder = ac("250", "240")
)

func styleMuted() lipgloss.Style {
	return faintIfDark(lipgloss.NewStyle().Foreground(colorMuted))
}

func styleHeader() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(colorSurfaceFg)
}

func styleBreadcrumb() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorChromeFg)
}

func styleSelected() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorSelectedFg).Background(colorSelectedBg).Bold(true)
}

func styleError() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ac("160", "203"))
}

func styleOK() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ac("28", "114"))
}

// displayStyle colors an enum label with its own light/dark pair.
func displayStyle(d model.Display) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ac(d.Light, d.Dark))
}

func statusBadge(s model.Status) string {
	d := s.Display()
	return displayStyle(d).Render(d.Glyph + " " + d.Label)
}

func priorityBadge(p model.Priority) string {
	d := p.Display()
	return displayStyle(d).Render(d.Glyph + " " + d.Label)
}

func typeBadge(t model.TaskType) string {
	d := t.Display()
	return displayStyle(d).Render(d.Glyph)
}

// applyColorProfilePreference sets Lip Gloss's color profile for the TUI.
//
// termenv.EnvColorProfile honors CLICOLOR, which can disable colors in a TUI,
// so only NO_COLOR is respected and TERM/COLORTERM may upgrade the profile.
func applyColorProfilePreference() {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}

	profile := termenv.ColorProfile()
	term := strings.ToLower(strings.TrimSpace(os.Getenv("TERM")))
	colorterm := strings.ToLower(strings.TrimSpace(os.Getenv("COLORTERM")))
	switch {
	case strings.Contains(colorterm, "truecolor") || strings.Contains(colorterm, "24bit"):
		if profile != termenv.Ascii {
			profile = termenv.TrueColor
		}
	case strings.Contains(term, "256color"):
		if profile == termenv.Ascii || profile == termenv.ANSI {
			profile = termenv.ANSI256
		}
	}
	lipgloss.SetColorProfile(profile)
}

// themePreference resolves the background preference from the environment:
// TASKDASH_TUI_THEME=light|dark|auto, then the COLORFGBG "fg;bg" heuristic.
// ok is false when nothing decisive is set.
func themePreference() (dark bool, ok bool) {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("TASKDASH_TUI_THEME"))) {
	case "light":
		return false, true
	case "dark":
		return true, true
	}
	if v := strings.TrimSpace(os.Getenv("COLORFGBG")); v != "" {
		parts := strings.Split(v, ";")
		if bg, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-1])); err == nil {
			// Common xterm palette: 0-6 dark colors, 7-15 light colors.
			return bg < 7, true
		}
	}
	return false, false
}

func applyThemePreference() {
	if dark, ok := themePreference(); ok {
		lipgloss.SetHasDarkBackground(dark)
	}
}
