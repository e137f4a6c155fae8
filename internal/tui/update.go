package tui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	list "github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"dpdmap/internal/mapview"
)

const (
	panStepX = 4
	panStepY = 2

	tilesUnavailable = "some basemap tiles are unavailable"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, m.resize()
	case loadedMsg:
		return m.loaded(msg)
	case tilesMsg:
		zap.L().Debug("tiles: batch done", zap.Int("requested", msg.requested), zap.Error(msg.err))
		switch {
		case errors.Is(msg.err, context.Canceled):
		case msg.err != nil:
			m.status = tilesUnavailable
		case m.status == tilesUnavailable:
			m.status = fmt.Sprintf("basemap: %d tiles loaded", msg.requested)
		}
		// the viewport may have moved while these were in flight
		return m, m.tilesCmd()
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		return m.handleMouse(msg)
	}
	return m, nil
}

func (m Model) loaded(msg loadedMsg) (tea.Model, tea.Cmd) {
	m.loading = false
	err := m.view.LoadBoundaries(msg.features, msg.err)
	switch {
	case errors.Is(err, mapview.ErrClosed):
		return m, nil
	case err != nil:
		m.status = "load error: " + err.Error()
		return m, nil
	}
	m.refreshFeatures()
	if m.showAttrs {
		m.refreshAttrs()
	}
	m.status = fmt.Sprintf("loaded %d small areas from %s", len(msg.features), filepath.Base(m.source))
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// If list is visible and filtering, send keys to list and ignore global commands
	if m.showSidebar && m.l.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.l, cmd = m.l.Update(msg)
		return m, cmd
	}
	switch msg.String() {
	case "ctrl+c", "q":
		m.view.Close()
		return m, tea.Quit
	case "t":
		m.toggle()
	case "esc":
		if m.view.ClosePopup() {
			m.status = "popup closed"
		} else if m.showAttrs {
			m.showAttrs = false
		}
	case "+", "=":
		return m, m.zoom(1)
	case "-", "_":
		return m, m.zoom(-1)
	case "left":
		return m, m.pan(-panStepX, 0)
	case "right":
		return m, m.pan(panStepX, 0)
	case "up", "down":
		if m.showAttrs {
			var cmd tea.Cmd
			m.tbl, cmd = m.tbl.Update(msg)
			return m, cmd
		}
		if m.showSidebar {
			var cmd tea.Cmd
			m.l, cmd = m.l.Update(msg)
			return m, cmd
		}
		dy := panStepY
		if msg.String() == "up" {
			dy = -panStepY
		}
		return m, m.pan(0, dy)
	case "tab":
		m.showSidebar = !m.showSidebar
		return m, m.resize()
	case "enter":
		if m.showSidebar {
			if it, ok := m.l.SelectedItem().(featureItem); ok {
				m.selectFeature(it.index)
				return m, m.tilesCmd()
			}
		}
	case "a":
		m.showAttrs = !m.showAttrs
		if m.showAttrs {
			m.refreshAttrs()
		}
	case "l":
		m.showLegend = !m.showLegend
	case "h":
		m.helpVisible = !m.helpVisible
	case "r":
		if !m.loading {
			m.loading = true
			m.status = "reloading " + m.source
			return m, m.loadCmd()
		}
	default:
		if m.showSidebar {
			var cmd tea.Cmd
			m.l, cmd = m.l.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	l := m.layout()
	cx, cy, inMap := l.inMap(msg.X, msg.Y)
	switch {
	case msg.Action == tea.MouseActionMotion:
		if inMap {
			p := m.view.Viewport().CellToLonLat(cx, cy)
			m.hoverHasGeo = true
			m.hoverLon, m.hoverLat = p[0], p[1]
		} else {
			m.hoverHasGeo = false
		}
	case msg.Button == tea.MouseButtonWheelUp && inMap:
		return m, m.zoom(1)
	case msg.Button == tea.MouseButtonWheelDown && inMap:
		return m, m.zoom(-1)
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		if l.onButton(msg.X, msg.Y) {
			m.toggle()
			return m, nil
		}
		if inMap && !m.showAttrs {
			m.clickAt(cx, cy)
			return m, nil
		}
	}
	// Pass mouse events over the sidebar to the list
	if m.showSidebar && !inMap {
		var cmd tea.Cmd
		m.l, cmd = m.l.Update(msg)
		return m, cmd
	}
	return m, nil
}

// clickAt handles a click on map cell (cx, cy): on the popup it closes it,
// on the legend it does nothing, on a feature it opens that feature's popup,
// elsewhere it closes any open popup.
func (m *Model) clickAt(cx, cy int) {
	vp := m.view.Viewport()
	if box, x, y, ok := m.popupBox(vp); ok && hit(box, x, y, cx, cy) {
		m.view.ClosePopup()
		m.status = "popup closed"
		return
	}
	// the legend covers whatever is under it
	if box, x, y, ok := m.legendBox(vp); ok && hit(box, x, y, cx, cy) {
		return
	}
	p := vp.CellToLonLat(cx, cy)
	i, ok := m.view.Index().FeatureAt(p)
	if !ok {
		if m.view.ClosePopup() {
			m.status = "popup closed"
		}
		return
	}
	if err := m.view.Click(i); err != nil {
		m.status = "click error: " + err.Error()
		return
	}
	m.popupAt = p
	m.status = fmt.Sprintf("feature #%d", i+1)
}

func (m *Model) toggle() {
	if err := m.view.ToggleMode(); err != nil {
		m.status = "layers are not loaded yet"
		return
	}
	m.status = "showing " + m.view.Mode().String()
}

func (m *Model) pan(dx, dy int) tea.Cmd {
	m.view.SetViewport(m.view.Viewport().Pan(dx, dy))
	return m.tilesCmd()
}

func (m *Model) zoom(delta int) tea.Cmd {
	vp := m.view.Viewport().Zoomed(delta)
	m.view.SetViewport(vp)
	m.status = fmt.Sprintf("zoom: %d", vp.Zoom)
	return m.tilesCmd()
}

// resize fits the viewport and the sidebar to the current layout.
func (m *Model) resize() tea.Cmd {
	l := m.layout()
	if m.showSidebar {
		m.l.SetSize(sidebarWidth-2, l.mapH-2)
	}
	m.view.SetViewport(m.view.Viewport().Resized(l.mapW, l.mapH))
	return m.tilesCmd()
}
