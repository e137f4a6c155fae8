package geom

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Index answers point queries over a fixed feature slice.
type Index struct {
	features []Feature
	bound    orb.Bound
}

func NewIndex(features []Feature) *Index {
	ix := &Index{features: features}
	for i, f := range features {
		if i == 0 {
			ix.bound = f.Bound
			continue
		}
		ix.bound = ix.bound.Union(f.Bound)
	}
	return ix
}

// FeatureAt returns the index of the feature containing p. Later features
// are drawn on top, so they win when polygons overlap.
func (ix *Index) FeatureAt(p orb.Point) (int, bool) {
	if ix == nil || len(ix.features) == 0 || !ix.bound.Contains(p) {
		return -1, false
	}
	for i := len(ix.features) - 1; i >= 0; i-- {
		f := ix.features[i]
		if !f.Bound.Contains(p) {
			continue
		}
		if planar.MultiPolygonContains(f.Geometry, p) {
			return i, true
		}
	}
	return -1, false
}

// Bound covers every indexed feature.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.features)
}
