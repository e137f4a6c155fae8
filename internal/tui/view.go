package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"dpdmap/internal/geom"
	"dpdmap/internal/mapview"
)

const heading = "Dublin Population Density Rail Map"

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	l := m.layout()

	// Update list size with accurate content height when sidebar visible
	if m.showSidebar {
		m.l.SetSize(sidebarWidth-2, l.mapH-2)
	}

	// Header: heading on the left, toggle button at buttonX. The heading
	// gives way on narrow terminals so clicks land where the button is drawn.
	title := ansi.Truncate(titleStyle.Render(" "+heading+" "), l.buttonX, "")
	button := buttonStyle.Render(m.buttonLabel())
	gap := max(0, l.buttonX-lipgloss.Width(title))
	header := lipgloss.NewStyle().MaxWidth(l.width).Render(title + strings.Repeat(" ", gap) + button)

	// Sidebar
	var sidebar string
	if m.showSidebar {
		sidebar = lipgloss.NewStyle().Width(l.sidebar).Height(l.mapH).Render(m.l.View())
	}

	mapView := m.renderMapArea(l)

	// Body row
	var body string
	if m.showSidebar {
		body = lipgloss.JoinHorizontal(lipgloss.Top, sidebar, " ", mapView)
	} else {
		body = mapView
	}

	// Footer: status and help, then attribution and mouse coords
	status := dimStyle.Render(" " + m.status + " ")
	line1 := lipgloss.NewStyle().MaxWidth(l.width).Render(lipgloss.JoinHorizontal(lipgloss.Bottom, status, m.renderHelp()))
	attribution := dimStyle.Render(" " + m.view.Attribution())
	coords := ""
	if m.hoverHasGeo {
		coords = dimStyle.Render(fmt.Sprintf("  lon=%.5f lat=%.5f  ", m.hoverLon, m.hoverLat))
	}
	spacerW := max(0, l.width-lipgloss.Width(attribution))
	right := lipgloss.Place(spacerW, 1, lipgloss.Right, lipgloss.Center, coords)
	line2 := lipgloss.NewStyle().MaxWidth(l.width).Render(attribution + right)
	footer := lipgloss.JoinVertical(lipgloss.Left, line1, line2)

	ui := lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
	return appStyle.Width(l.width).Height(m.height).Render(ui)
}

// renderMapArea draws the map with its overlays, or the attributes table in
// its place.
func (m Model) renderMapArea(l layout) string {
	if m.showAttrs {
		// infer a reasonable width from columns
		colW := 0
		for _, c := range m.tbl.Columns() {
			colW += c.Width + 3
		}
		maxW := min(l.mapW, max(32, colW))
		m.tbl.SetWidth(maxW - 4)
		m.tbl.SetHeight(min(l.mapH-2, 20))
		attrsBox := boxStyle.Width(maxW).Render(m.tbl.View())
		return lipgloss.Place(l.mapW, l.mapH, lipgloss.Center, lipgloss.Center, attrsBox)
	}

	vp := m.view.Viewport().Resized(l.mapW, l.mapH)
	lines := m.renderMap(vp)
	if len(lines) == 0 {
		return lipgloss.NewStyle().Width(l.mapW).Height(l.mapH).Render("")
	}
	if box, x, y, ok := m.legendBox(vp); ok {
		lines = overlay(lines, box, x, y)
	}
	if m.loading && !m.view.Loaded() {
		box := boxStyle.Render("loading small areas…")
		lines = overlay(lines, box, (l.mapW-lipgloss.Width(box))/2, (l.mapH-lipgloss.Height(box))/2)
	}
	if box, x, y, ok := m.popupBox(vp); ok {
		lines = overlay(lines, box, x, y)
	}
	return strings.Join(lines, "\n")
}

// popupBox renders the open popup and places it just above its anchor,
// or below when there is no room, kept inside the map.
func (m Model) popupBox(vp geom.Viewport) (string, int, int, bool) {
	p, ok := m.view.Popup()
	if !ok {
		return "", 0, 0, false
	}
	body := strings.Join([]string{
		titleStyle.Render(m.popupTitle()),
		p.Text,
		dimStyle.Render("esc or click to close"),
	}, "\n")
	box := popupStyle.Render(body)
	bw, bh := lipgloss.Width(box), lipgloss.Height(box)
	ax, ay := vp.CellXY(m.popupAt)
	x := clamp(int(ax)-bw/2, 0, vp.Width-bw)
	y := int(ay) - bh
	if y < 0 {
		y = int(ay) + 1
	}
	y = clamp(y, 0, vp.Height-bh)
	return box, x, y, true
}

// legendBox places the legend in the top-right corner of the map while the
// choropleth is showing.
func (m Model) legendBox(vp geom.Viewport) (string, int, int, bool) {
	if !m.showLegend || m.view.Mode() != mapview.Choropleth || !m.view.Loaded() {
		return "", 0, 0, false
	}
	box := legend()
	return box, vp.Width - lipgloss.Width(box), 0, true
}

// legend lists the five density buckets with their swatches.
func legend() string {
	rows := []string{titleStyle.Render("Density")}
	for i, b := range mapview.Buckets {
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(b.Color)).Render("██")
		label := fmt.Sprintf("≤ %.2f", b.Max)
		if i == len(mapview.Buckets)-1 {
			label = fmt.Sprintf("> %.2f", mapview.Buckets[i-1].Max)
		}
		rows = append(rows, swatch+" "+label)
	}
	return legendStyle.Render(strings.Join(rows, "\n"))
}

func (m Model) renderHelp() string {
	if !m.helpVisible {
		return ""
	}
	keys := []string{
		"t toggle",
		"click inspect",
		"esc close",
		"↑↓←→ pan",
		"+/- zoom",
		"Tab areas",
		"a attrs",
		"l legend",
		"r reload",
		"h help",
		"q quit",
	}
	return dimStyle.Render("  " + strings.Join(keys, "  "))
}
