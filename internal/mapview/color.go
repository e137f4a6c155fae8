package mapview

// Bucket is one step of the density color scale. Max is inclusive; the last
// bucket has no upper bound.
type Bucket struct {
	Max   float64
	Color string
}

// Buckets is the fixed five-step purple scale used by the choropleth.
var Buckets = [5]Bucket{
	{Max: 0.02, Color: "#f2f0f7"},
	{Max: 0.04, Color: "#cbc9e2"},
	{Max: 0.06, Color: "#9e9ac8"},
	{Max: 0.08, Color: "#756bb1"},
	{Color: "#54278f"},
}

// ColorFor maps an equalized density to its bucket color.
func ColorFor(density float64) string {
	return Buckets[BucketFor(density)].Color
}

// BucketFor returns the index into Buckets for a density.
func BucketFor(density float64) int {
	last := len(Buckets) - 1
	for i := 0; i < last; i++ {
		if density <= Buckets[i].Max {
			return i
		}
	}
	return last
}
