package geom

import (
	"context"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/rotisserie/eris"
)

// ErrNoFeatures is returned when a document holds no polygonal feature.
var ErrNoFeatures = eris.New("geom: no polygon features found")

// Parse decodes a GeoJSON FeatureCollection into Features. Only Polygon and
// MultiPolygon geometries are kept; everything else is skipped.
func Parse(data []byte) ([]Feature, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, eris.Wrap(err, "geom: decode feature collection")
	}
	out := make([]Feature, 0, len(fc.Features))
	for _, f := range fc.Features {
		var mp orb.MultiPolygon
		switch g := f.Geometry.(type) {
		case orb.Polygon:
			mp = orb.MultiPolygon{g}
		case orb.MultiPolygon:
			mp = g
		default:
			continue
		}
		if len(mp) == 0 {
			continue
		}
		feat := Feature{
			Geometry:   mp,
			Bound:      mp.Bound(),
			Properties: map[string]any(f.Properties),
		}
		feat.TotalPop, feat.HasPop = number(f.Properties, PropTotalPop)
		feat.Density, feat.HasDense = number(f.Properties, PropDensity)
		out = append(out, feat)
	}
	if len(out) == 0 {
		return nil, ErrNoFeatures
	}
	return out, nil
}

// number reads a numeric property. JSON null, strings and missing keys all
// report false.
func number(props geojson.Properties, key string) (float64, bool) {
	switch v := props[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}

// Load reads a GeoJSON document from a local path or an http(s) URL and
// parses it. The context bounds the whole read.
func Load(ctx context.Context, src string, client *http.Client) ([]Feature, error) {
	var (
		data []byte
		err  error
	)
	if isRemote(src) {
		data, err = fetch(ctx, src, client)
	} else {
		data, err = readFile(ctx, src)
	}
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func isRemote(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

func readFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "geom: load cancelled")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "geom: open %s", path)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, eris.Wrapf(err, "geom: read %s", path)
	}
	return data, nil
}

func fetch(ctx context.Context, url string, client *http.Client) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, eris.Wrap(err, "geom: create request")
	}
	req.Header.Set("Accept", "application/geo+json, application/json")
	resp, err := client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "geom: fetch geojson")
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("geom: %s returned %d", url, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "geom: read geojson body")
	}
	return data, nil
}
