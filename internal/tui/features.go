package tui

import (
	"fmt"
	"sort"

	list "github.com/charmbracelet/bubbles/list"

	"dpdmap/internal/geom"
	"dpdmap/internal/mapview"
)

type featureItem struct {
	title string
	index int
}

func (f featureItem) Title() string       { return f.title }
func (f featureItem) Description() string { return "" }
func (f featureItem) FilterValue() string { return f.title }

// refreshFeatures lists the loaded features, densest first.
func (m *Model) refreshFeatures() {
	fs := m.view.Features()
	order := make([]int, len(fs))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		fa, fb := fs[order[a]], fs[order[b]]
		if fa.HasDense != fb.HasDense {
			return fa.HasDense
		}
		return fa.Density > fb.Density
	})
	items := make([]list.Item, 0, len(order))
	for _, i := range order {
		items = append(items, featureItem{title: featureTitle(i, fs[i]), index: i})
	}
	m.l.SetItems(items)
}

func featureTitle(i int, f geom.Feature) string {
	pop, dens := "n/a", "n/a"
	if f.HasPop {
		pop = fmt.Sprintf("%g", f.TotalPop)
	}
	if f.HasDense {
		dens = fmt.Sprintf("%.4f", f.Density)
	}
	return fmt.Sprintf("#%-5d pop %-6s %s", i+1, pop, dens)
}

// selectFeature centers the map on feature i and clicks it, as if the user
// had clicked its middle.
func (m *Model) selectFeature(i int) {
	fs := m.view.Features()
	if i < 0 || i >= len(fs) {
		return
	}
	vp := m.view.Viewport()
	vp.Center = fs[i].Bound.Center()
	m.view.SetViewport(vp)
	m.popupAt = vp.Center
	if err := m.view.Click(i); err != nil {
		m.status = "click error: " + err.Error()
		return
	}
	m.status = fmt.Sprintf("feature #%d", i+1)
}

func (m Model) popupTitle() string {
	p, ok := m.view.Popup()
	if !ok {
		return ""
	}
	f := m.view.Features()[p.Feature]
	if !f.HasDense {
		return fmt.Sprintf("Small area #%d", p.Feature+1)
	}
	return fmt.Sprintf("Small area #%d  ·  bucket %d/%d", p.Feature+1, mapview.BucketFor(f.Density)+1, len(mapview.Buckets))
}
