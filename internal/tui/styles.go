package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// Styles
var (
	baseFg    = lipgloss.Color("#E6E6E6")
	baseDimFg = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#6B7280"}
	accentFg  = lipgloss.Color("#7C3AED")
	subtleBg  = lipgloss.Color("#0B0F14")
	panelBg   = lipgloss.Color("#0F141A")
	borderCol = lipgloss.Color("#243141")

	appStyle    = lipgloss.NewStyle().Foreground(baseFg)
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(borderCol).Padding(0, 1)
	titleStyle  = lipgloss.NewStyle().Foreground(accentFg).Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(baseDimFg)
	buttonStyle = lipgloss.NewStyle().Foreground(baseFg).Background(accentFg).Bold(true).Padding(0, 1)
	popupStyle  = boxStyle.BorderForeground(accentFg).Background(panelBg)
	legendStyle = boxStyle.Background(panelBg)
)

// mapBackground shows wherever no basemap tile has arrived.
var mapBackground = mustHex(string(subtleBg))

// namedColors covers the CSS color names the overlay styles use.
var namedColors = map[string]string{
	"black": "#000000",
	"grey":  "#808080",
	"gray":  "#808080",
	"red":   "#ff0000",
	"white": "#ffffff",
}

// cssColor resolves a style color given as a CSS name or hex string.
// Unknown colors render black.
func cssColor(s string) colorful.Color {
	if hex, ok := namedColors[strings.ToLower(s)]; ok {
		s = hex
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return colorful.Color{}
	}
	return c
}

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}
