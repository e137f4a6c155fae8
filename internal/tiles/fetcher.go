package tiles

import (
	"context"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"time"

	"github.com/paulmach/orb/maptile"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
	"golang.org/x/time/rate"

	"dpdmap/internal/geom"
)

// SampleWidth and SampleHeight are the dimensions a tile is resampled to:
// one pixel per terminal half cell.
const (
	SampleWidth  = geom.TileSize / geom.CellWidth
	SampleHeight = geom.TileSize / (geom.CellHeight / 2)
)

// FetcherOptions configures the tile fetcher.
type FetcherOptions struct {
	Template          Template
	UserAgent         string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	Client            *http.Client
}

// Fetcher downloads raster tiles from an upstream tile server and resamples
// them to the terminal grid.
type Fetcher struct {
	client    *http.Client
	template  Template
	userAgent string
	limiter   *rate.Limiter
}

func NewFetcher(opts FetcherOptions) *Fetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "dpdmap/1.0"
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = 8
	}
	if opts.Burst <= 0 {
		opts.Burst = 4
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	return &Fetcher{
		client:    client,
		template:  opts.Template,
		userAgent: opts.UserAgent,
		limiter:   rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), opts.Burst),
	}
}

// Fetch downloads one tile and returns it resampled to
// SampleWidth x SampleHeight.
func (f *Fetcher) Fetch(ctx context.Context, t maptile.Tile) (*image.RGBA, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "tiles: rate limit wait")
	}
	url := f.template.Expand(t)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, eris.Wrap(err, "tiles: create request")
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "tiles: fetch tile")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("tiles: upstream returned %d for %s", resp.StatusCode, url)
	}

	src, format, err := image.Decode(resp.Body)
	if err != nil {
		return nil, eris.Wrapf(err, "tiles: decode %s", tileKey(t))
	}
	dst := image.NewRGBA(image.Rect(0, 0, SampleWidth, SampleHeight))
	draw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	zap.L().Debug("tiles: fetched tile", zap.String("tile", tileKey(t)), zap.String("format", format))
	return dst, nil
}
