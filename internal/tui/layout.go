package tui

import "github.com/charmbracelet/lipgloss"

const (
	sidebarWidth = 34
	headerHeight = 1
	footerHeight = 2
)

// layout is the screen geometry shared by Update (mouse hit testing) and
// View (drawing).
type layout struct {
	width, height int

	sidebar int // 0 when hidden

	mapX, mapY int
	mapW, mapH int

	buttonX, buttonW int
}

func (m Model) layout() layout {
	l := layout{width: max(10, m.width), height: m.height}

	contentHeight := max(4, m.height-headerHeight-footerHeight)
	if m.showSidebar {
		l.sidebar = sidebarWidth
		l.mapX = sidebarWidth + 1
	}
	l.mapY = headerHeight
	l.mapW = max(10, l.width-l.mapX)
	l.mapH = contentHeight

	l.buttonW = lipgloss.Width(buttonStyle.Render(m.buttonLabel()))
	l.buttonX = max(0, l.width-l.buttonW)
	return l
}

// inMap converts a screen cell to map cell coordinates.
func (l layout) inMap(x, y int) (int, int, bool) {
	cx, cy := x-l.mapX, y-l.mapY
	if cx < 0 || cy < 0 || cx >= l.mapW || cy >= l.mapH {
		return 0, 0, false
	}
	return cx, cy, true
}

func (l layout) onButton(x, y int) bool {
	return y == 0 && x >= l.buttonX && x < l.buttonX+l.buttonW
}
