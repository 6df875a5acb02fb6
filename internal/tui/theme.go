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
// The TUI must stay readable on light and dark terminal backgrounds, so colors
// are adaptive and "faint" is only applied on dark backgrounds.

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
	colorMuted          = ac("240", "243")
	colorChromeMutedFg  = ac("240", "245")
	colorSelectedBg     = ac("#e9e9e9", "#262626")
	colorSelectedFg     = ac("235", "255")
	colorSurfaceBg      = ac("255", "235")
	colorSurfaceFg      = ac("235", "252")
	colorControlBg      = ac("252", "235")
	colorSidebarBg      = ac("254", "234")
	colorFlyoutBg       = ac("252", "237")
	colorAccent         = ac("27", "62")
	colorAccentFg       = ac("255", "235")
	colorErrorFg        = ac("160", "203")
	colorErrorBg        = ac("224", "52")
	colorBucketActive   = ac("28", "114")
	colorBucketInactive = ac("244", "242")
	colorBucketNone     = ac("130", "179")
)

func styleMuted() lipgloss.Style {
	return faintIfDark(lipgloss.NewStyle().Foreground(colorMuted))
}

func styleBanner() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(colorErrorFg).
		Background(colorErrorBg).
		Padding(0, 1)
}

func styleSelected() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(colorSelectedFg).
		Background(colorSelectedBg).
		Bold(true)
}

func styleHeading() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(colorSurfaceFg)
}

// applyColorProfilePreference sets Lip Gloss's color profile for the TUI.
//
// termenv.EnvColorProfile honors CLICOLOR, which can disable colors inside an
// alt-screen program. Here only NO_COLOR is honored; otherwise the terminal's
// detected capabilities win, bumped up when TERM/COLORTERM say more.
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

// applyThemePreference configures background detection.
//
// Priority:
// 1) CLUBHUB_TUI_THEME=light|dark|auto
// 2) CLUBHUB_TUI_DARKBG=true|false
// 3) COLORFGBG ("fg;bg", e.g. "15;0")
func applyThemePreference() {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("CLUBHUB_TUI_THEME"))) {
	case "light":
		lipgloss.SetHasDarkBackground(false)
		return
	case "dark":
		lipgloss.SetHasDarkBackground(true)
		return
	}

	if v := strings.TrimSpace(os.Getenv("CLUBHUB_TUI_DARKBG")); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			lipgloss.SetHasDarkBackground(b)
			return
		}
	}

	if dark, ok := colorFGBGDark(os.Getenv("COLORFGBG")); ok {
		lipgloss.SetHasDarkBackground(dark)
	}
}

// colorFGBGDark reads the background from a COLORFGBG value. The last segment
// is the background; xterm palette entries 0-6 are dark.
func colorFGBGDark(v string) (dark bool, ok bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return false, false
	}
	parts := strings.Split(v, ";")
	bg, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-1]))
	if err != nil || bg < 0 {
		return false, false
	}
	return bg < 7, true
}
