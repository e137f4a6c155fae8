package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"dpdmap/internal/geom"
	"dpdmap/internal/tiles"
)

// loadedMsg carries the outcome of a dataset load.
type loadedMsg struct {
	features []geom.Feature
	err      error
}

// tilesMsg reports that a batch of basemap tiles finished.
type tilesMsg struct {
	requested int
	err       error
}

// loadCmd loads the dataset under the view's context so that closing the
// view abandons the request.
func (m Model) loadCmd() tea.Cmd {
	ctx := m.view.Context()
	src, client, timeout := m.source, m.client, m.timeout
	return func() tea.Msg {
		lctx := ctx
		if timeout > 0 {
			var cancel context.CancelFunc
			lctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		fs, err := geom.Load(lctx, src, client)
		return loadedMsg{features: fs, err: err}
	}
}

// tilesCmd fetches the basemap tiles the viewport needs and does not have.
func (m Model) tilesCmd() tea.Cmd {
	base := m.view.Base()
	vp := m.view.Viewport()
	if base == nil || !vp.Valid() {
		return nil
	}
	minX, minY, maxX, maxY := vp.PixelWindow()
	missing := base.Missing(tiles.Covering(minX, minY, maxX, maxY, vp.Zoom))
	if len(missing) == 0 {
		return nil
	}
	ctx := m.view.Context()
	return func() tea.Msg {
		return tilesMsg{requested: len(missing), err: base.Fetch(ctx, missing)}
	}
}
