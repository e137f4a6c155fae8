package mapview

import (
	"fmt"
	"strconv"

	"dpdmap/internal/geom"
)

// ClickEvent is a click on feature Index while the map is in Mode.
type ClickEvent struct {
	Index   int
	Feature geom.Feature
	Mode    ViewMode
}

// PopupCloseEvent fires when the open popup is dismissed.
type PopupCloseEvent struct {
	Mode ViewMode
}

// StyleChange restyles one feature, or every feature when All is set.
type StyleChange struct {
	All     bool
	Feature int
	Style   Style
}

// Popup is the text bubble bound to a feature.
type Popup struct {
	Feature int
	Text    string
}

// Effect is what a handler asks the view to do. Restyle targets the boundary
// layer and is applied in order; the choropleth styles never change.
type Effect struct {
	Restyle []StyleChange
	Popup   *Popup
}

// HandleClick greys every boundary, highlights the clicked one and opens its
// popup. In choropleth mode it only opens the popup.
func HandleClick(ev ClickEvent) Effect {
	eff := Effect{Popup: &Popup{Feature: ev.Index, Text: PopupText(ev.Feature)}}
	if ev.Mode == Boundaries {
		eff.Restyle = []StyleChange{
			{All: true, Style: GreyedStyle},
			{Feature: ev.Index, Style: HighlightStyle},
		}
	}
	return eff
}

// HandlePopupClose resets every boundary to the default style. It does
// nothing in choropleth mode.
func HandlePopupClose(ev PopupCloseEvent) Effect {
	if ev.Mode != Boundaries {
		return Effect{}
	}
	return Effect{Restyle: []StyleChange{{All: true, Style: DefaultStyle}}}
}

// PopupText renders the popup body for a feature.
func PopupText(f geom.Feature) string {
	pop, density := "n/a", "n/a"
	if f.HasPop {
		pop = strconv.FormatFloat(f.TotalPop, 'f', -1, 64)
	}
	if f.HasDense {
		density = fmt.Sprintf("%.4f", f.Density)
	}
	return "Total Population: " + pop + "\nDensity: " + density
}
