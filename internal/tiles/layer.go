package tiles

import (
	"context"
	"image"
	"image/color"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/paulmach/orb/maptile"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"dpdmap/internal/geom"
)

// failedTTL is how long a tile that failed to load is left blank before it is
// requested again.
const failedTTL = time.Minute

// LayerOptions configures the base tile layer.
type LayerOptions struct {
	Attribution string
	CacheSize   int
	CacheTTL    time.Duration
	Concurrency int
}

// Layer is the basemap under the overlays. It caches resampled tiles and
// schedules downloads for the ones a viewport is missing. All methods are
// safe for concurrent use.
type Layer struct {
	fetcher     *Fetcher
	attribution string
	concurrency int

	cache  *expirable.LRU[maptile.Tile, *image.RGBA]
	failed *expirable.LRU[maptile.Tile, struct{}]

	mu       sync.Mutex
	inflight map[maptile.Tile]struct{}

	rev atomic.Uint64
}

func NewLayer(f *Fetcher, opts LayerOptions) *Layer {
	if opts.CacheSize <= 0 {
		opts.CacheSize = 256
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = time.Hour
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	return &Layer{
		fetcher:     f,
		attribution: opts.Attribution,
		concurrency: opts.Concurrency,
		cache:       expirable.NewLRU[maptile.Tile, *image.RGBA](opts.CacheSize, nil, opts.CacheTTL),
		failed:      expirable.NewLRU[maptile.Tile, struct{}](opts.CacheSize, nil, failedTTL),
		inflight:    make(map[maptile.Tile]struct{}),
	}
}

func (l *Layer) Attribution() string { return l.attribution }

// Revision changes every time a tile lands in the cache.
func (l *Layer) Revision() uint64 { return l.rev.Load() }

// Missing returns the tiles that are neither cached, recently failed nor
// already being fetched, and marks them in flight. Every tile it returns
// must be passed to Fetch.
func (l *Layer) Missing(ts []maptile.Tile) []maptile.Tile {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []maptile.Tile
	for _, t := range ts {
		if l.cache.Contains(t) || l.failed.Contains(t) {
			continue
		}
		if _, ok := l.inflight[t]; ok {
			continue
		}
		l.inflight[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// Fetch downloads tiles concurrently. Failures are logged and remembered for
// a short while; the first one is returned.
func (l *Layer) Fetch(ctx context.Context, ts []maptile.Tile) error {
	var g errgroup.Group
	g.SetLimit(l.concurrency)
	for _, t := range ts {
		t := t
		g.Go(func() error {
			defer l.done(t)
			img, err := l.fetcher.Fetch(ctx, t)
			if err != nil {
				if ctx.Err() == nil {
					l.failed.Add(t, struct{}{})
					zap.L().Warn("tiles: tile unavailable", zap.String("tile", tileKey(t)), zap.Error(err))
				}
				return err
			}
			l.cache.Add(t, img)
			l.rev.Add(1)
			return nil
		})
	}
	return g.Wait()
}

func (l *Layer) done(t maptile.Tile) {
	l.mu.Lock()
	delete(l.inflight, t)
	l.mu.Unlock()
}

// Sample returns the basemap color at a global pixel, if that tile is
// loaded.
func (l *Layer) Sample(zoom int, px, py float64) (color.RGBA, bool) {
	n := 1 << zoom
	tx := int(math.Floor(px / geom.TileSize))
	ty := int(math.Floor(py / geom.TileSize))
	if ty < 0 || ty >= n {
		return color.RGBA{}, false
	}
	t := maptile.New(uint32(wrap(tx, n)), uint32(ty), maptile.Zoom(zoom))
	img, ok := l.cache.Get(t)
	if !ok || img == nil {
		return color.RGBA{}, false
	}
	lx := px - float64(tx*geom.TileSize)
	ly := py - float64(ty*geom.TileSize)
	sx := min(SampleWidth-1, max(0, int(lx*SampleWidth/geom.TileSize)))
	sy := min(SampleHeight-1, max(0, int(ly*SampleHeight/geom.TileSize)))
	return img.RGBAAt(sx, sy), true
}

// Close drops every cached tile.
func (l *Layer) Close() {
	l.cache.Purge()
	l.failed.Purge()
}
