package ui

import (
	"fmt"
	"image/color"
	"os"
	"strings"

	"charm.land/lipgloss/v2"
)

// isDarkBg caches the terminal background detection result at package init.
var isDarkBg = lipgloss.HasDarkBackground(os.Stdin, os.Stdout)

// AdaptiveColor picks between a light-mode and dark-mode hex color string
// based on the detected terminal background.
func AdaptiveColor(light, dark string) color.Color {
	if isDarkBg {
		return lipgloss.Color(dark)
	}
	return lipgloss.Color(light)
}

// IsDarkBackground returns the cached terminal background detection result.
func IsDarkBackground() bool {
	return isDarkBg
}

// Theme holds the colors used for banners, results, prompts and errors.
type Theme struct {
	Primary color.Color
	Accent  color.Color
	Muted   color.Color
}

// DefaultTheme is based on the Catppuccin Latte (light) and Mocha (dark)
// palettes.
func DefaultTheme() Theme {
	return Theme{
		Primary: AdaptiveColor("#8839ef", "#cba6f7"), // Mauve
		Accent:  AdaptiveColor("#ea76cb", "#f5c2e7"), // Pink
		Muted:   AdaptiveColor("#6c6f85", "#a6adc8"), // Subtext 0
	}
}

// StyleBanner is the style for the line printed before a result.
func StyleBanner(theme Theme) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)
}

// StyleMuted is the style for hints and secondary text.
func StyleMuted(theme Theme) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(theme.Muted)
}

// interpolateColor blends between two colors based on position (0.0 to 1.0)
// using linear RGB channel interpolation.
func interpolateColor(a, b color.Color, pos float64) color.Color {
	r1, g1, b1, _ := a.RGBA()
	r2, g2, b2, _ := b.RGBA()

	r := uint8(float64(r1>>8)*(1-pos) + float64(r2>>8)*pos)
	g := uint8(float64(g1>>8)*(1-pos) + float64(g2>>8)*pos)
	bl := uint8(float64(b1>>8)*(1-pos) + float64(b2>>8)*pos)

	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", r, g, bl))
}

// ApplyGradient applies a color gradient from colorA to colorB across the text.
// Uses ~8 color stops for performance rather than per-character coloring.
func ApplyGradient(text string, colorA, colorB color.Color) string {
	runes := []rune(text)
	if len(runes) == 0 {
		return text
	}

	const maxStops = 8
	segmentSize := max(len(runes)/maxStops, 1)

	var result strings.Builder
	for i := 0; i < len(runes); i += segmentSize {
		end := min(i+segmentSize, len(runes))
		pos := float64(i) / float64(len(runes))
		style := lipgloss.NewStyle().Foreground(interpolateColor(colorA, colorB, pos))
		result.WriteString(style.Render(string(runes[i:end])))
	}

	return result.String()
}
