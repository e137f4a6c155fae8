package geom

import "github.com/paulmach/orb"

// Property keys read from each feature of the density dataset.
const (
	PropTotalPop = "total_pop"
	PropDensity  = "equalized_density"
)

// Feature is one statistical area: its polygons plus the two numbers the map
// shows. A value is only meaningful when the matching Has flag is set.
type Feature struct {
	Geometry orb.MultiPolygon
	Bound    orb.Bound

	TotalPop float64
	HasPop   bool
	Density  float64
	HasDense bool

	// Properties keeps every source property for the attributes view.
	Properties map[string]any
}

// Rings calls fn for every ring of every polygon of the feature.
func (f Feature) Rings(fn func(orb.Ring)) {
	for _, poly := range f.Geometry {
		for _, ring := range poly {
			fn(ring)
		}
	}
}
