package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return min(hi, max(lo, v))
}

// overlay paints box over base with its top-left corner at (x, y). Both may
// contain ANSI sequences.
func overlay(base []string, box string, x, y int) []string {
	out := make([]string, len(base))
	copy(out, base)
	for i, line := range strings.Split(box, "\n") {
		row := y + i
		if row < 0 || row >= len(out) {
			continue
		}
		w := ansi.StringWidth(line)
		left := ansi.Truncate(out[row], x, "")
		if pad := x - ansi.StringWidth(left); pad > 0 {
			left += strings.Repeat(" ", pad)
		}
		right := ansi.TruncateLeft(out[row], x+w, "")
		out[row] = left + line + right
	}
	return out
}

// hit reports whether cell (cx, cy) falls inside box drawn at (x, y).
func hit(box string, x, y, cx, cy int) bool {
	return cx >= x && cx < x+lipgloss.Width(box) && cy >= y && cy < y+lipgloss.Height(box)
}
