package geom

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCollection = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": {"total_pop": 312, "equalized_density": 0.04, "SA_GUID": "a"},
      "geometry": {"type": "Polygon", "coordinates": [[[-6.3,53.3],[-6.2,53.3],[-6.2,53.4],[-6.3,53.4],[-6.3,53.3]]]}
    },
    {
      "type": "Feature",
      "properties": {"total_pop": 95.5, "equalized_density": null},
      "geometry": {"type": "MultiPolygon", "coordinates": [[[[-6.25,53.32],[-6.22,53.32],[-6.22,53.35],[-6.25,53.35],[-6.25,53.32]]]]}
    },
    {
      "type": "Feature",
      "properties": {"name": "station"},
      "geometry": {"type": "Point", "coordinates": [-6.26, 53.35]}
    }
  ]
}`

func TestParse(t *testing.T) {
	fs, err := Parse([]byte(sampleCollection))
	require.NoError(t, err)
	require.Len(t, fs, 2, "point feature is skipped")

	assert.True(t, fs[0].HasPop)
	assert.InDelta(t, 312, fs[0].TotalPop, 1e-9)
	assert.True(t, fs[0].HasDense)
	assert.InDelta(t, 0.04, fs[0].Density, 1e-9)
	assert.Equal(t, "a", fs[0].Properties["SA_GUID"])
	assert.Len(t, fs[0].Geometry, 1)

	assert.True(t, fs[1].HasPop)
	assert.False(t, fs[1].HasDense, "null density is reported missing")
	assert.InDelta(t, -6.25, fs[1].Bound.Min[0], 1e-9)
}

func TestParseErrors(t *testing.T) {
	_, err := Parse([]byte(`{not json`))
	assert.Error(t, err)

	_, err = Parse([]byte(`{"type":"FeatureCollection","features":[]}`))
	assert.ErrorIs(t, err, ErrNoFeatures)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "areas.geojson")
	require.NoError(t, os.WriteFile(path, []byte(sampleCollection), 0o644))

	fs, err := Load(context.Background(), path, nil)
	require.NoError(t, err)
	assert.Len(t, fs, 2)

	_, err = Load(context.Background(), filepath.Join(t.TempDir(), "missing.geojson"), nil)
	assert.Error(t, err)
}

func TestLoadFileCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Load(ctx, "whatever.geojson", nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadRemote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/layers/areas.geojson" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(sampleCollection))
	}))
	defer srv.Close()

	fs, err := Load(context.Background(), srv.URL+"/layers/areas.geojson", srv.Client())
	require.NoError(t, err)
	assert.Len(t, fs, 2)

	_, err = Load(context.Background(), srv.URL+"/nope.geojson", srv.Client())
	assert.Error(t, err)
}

func TestIndexFeatureAt(t *testing.T) {
	fs, err := Parse([]byte(sampleCollection))
	require.NoError(t, err)
	ix := NewIndex(fs)
	assert.Equal(t, 2, ix.Len())

	i, ok := ix.FeatureAt(orb.Point{-6.235, 53.335})
	require.True(t, ok)
	assert.Equal(t, 1, i, "later feature is on top")

	i, ok = ix.FeatureAt(orb.Point{-6.29, 53.39})
	require.True(t, ok)
	assert.Equal(t, 0, i)

	_, ok = ix.FeatureAt(orb.Point{-7, 52})
	assert.False(t, ok)

	var empty *Index
	_, ok = empty.FeatureAt(orb.Point{0, 0})
	assert.False(t, ok)
}

func TestViewportRoundTrip(t *testing.T) {
	vp := Viewport{Center: orb.Point{-6.2603, 53.3498}, Zoom: 12, Width: 80, Height: 30}

	cx, cy := vp.CellXY(vp.Center)
	assert.InDelta(t, 40, cx, 1e-6)
	assert.InDelta(t, 15, cy, 1e-6)

	p := vp.CellToLonLat(40, 15)
	x, y := vp.CellXY(p)
	assert.InDelta(t, 40.5, x, 1e-6)
	assert.InDelta(t, 15.5, y, 1e-6)

	b := vp.Bound()
	assert.True(t, b.Contains(vp.Center))
	assert.Less(t, b.Min[0], vp.Center[0])
	assert.Greater(t, b.Max[1], vp.Center[1])
}

func TestViewportPanZoom(t *testing.T) {
	vp := Viewport{Center: orb.Point{-6.2603, 53.3498}, Zoom: 12, Width: 80, Height: 30}

	moved := vp.Pan(10, 0)
	assert.Greater(t, moved.Center[0], vp.Center[0])
	assert.InDelta(t, vp.Center[1], moved.Center[1], 1e-9)
	x, _ := moved.CellXY(vp.Center)
	assert.InDelta(t, 30, x, 1e-6)

	assert.Equal(t, MaxZoom, vp.Zoomed(100).Zoom)
	assert.Equal(t, MinZoom, vp.Zoomed(-100).Zoom)
	assert.Equal(t, 13, vp.Zoomed(1).Zoom)

	assert.False(t, vp.Resized(0, 10).Valid())
	assert.True(t, vp.Contains(0, 0))
	assert.False(t, vp.Contains(80, 0))
}
