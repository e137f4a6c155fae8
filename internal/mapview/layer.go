package mapview

import "dpdmap/internal/geom"

// Layer is one overlay over the shared feature slice: a style per feature
// plus whether it is attached to the map.
type Layer struct {
	styles   []Style
	attached bool
}

func newBoundaryLayer(n int) *Layer {
	l := &Layer{styles: make([]Style, n)}
	l.setAll(DefaultStyle)
	return l
}

func newChoroplethLayer(features []geom.Feature) *Layer {
	l := &Layer{styles: make([]Style, len(features))}
	for i, f := range features {
		l.styles[i] = ChoroplethStyle(f)
	}
	return l
}

func (l *Layer) Attached() bool { return l.attached }

func (l *Layer) Len() int { return len(l.styles) }

// Style returns the current style of feature i.
func (l *Layer) Style(i int) Style { return l.styles[i] }

func (l *Layer) setAll(s Style) {
	for i := range l.styles {
		l.styles[i] = s
	}
}

func (l *Layer) set(i int, s Style) {
	if i >= 0 && i < len(l.styles) {
		l.styles[i] = s
	}
}
