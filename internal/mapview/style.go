package mapview

import "dpdmap/internal/geom"

// Style is how one feature is drawn. Colors are CSS names or #rrggbb.
type Style struct {
	Color       string
	Weight      float64
	Opacity     float64
	FillColor   string
	FillOpacity float64
}

// Fill returns the fill color, falling back to the stroke color.
func (s Style) Fill() string {
	if s.FillColor == "" {
		return s.Color
	}
	return s.FillColor
}

var (
	// DefaultStyle is the untouched boundary outline.
	DefaultStyle = Style{Color: "black", Weight: 0.5, Opacity: 1, FillOpacity: 0}
	// GreyedStyle marks every feature but the selected one.
	GreyedStyle = Style{Color: "grey", Weight: 0.5, Opacity: 1, FillOpacity: 0.2}
	// HighlightStyle marks the selected feature.
	HighlightStyle = Style{Color: "red", Weight: 2, Opacity: 1, FillOpacity: 0.5}
)

// ChoroplethStyle colors a feature by its density. Features without a
// density get an outline only.
func ChoroplethStyle(f geom.Feature) Style {
	s := Style{Color: "white", Weight: 0.5, Opacity: 1, FillOpacity: 0.7}
	if !f.HasDense {
		s.FillOpacity = 0
		return s
	}
	s.FillColor = ColorFor(f.Density)
	return s
}
