package tiles

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb/maptile"

	"dpdmap/internal/geom"
)

// Template is a slippy map URL template such as
// https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png.
type Template struct {
	URL        string
	Subdomains []string
}

// Expand fills in the template for one tile. The subdomain is picked from
// the tile coordinates so a tile always maps to the same host.
func (t Template) Expand(tile maptile.Tile) string {
	sub := ""
	if n := len(t.Subdomains); n > 0 {
		sub = t.Subdomains[int(tile.X+tile.Y)%n]
	}
	r := strings.NewReplacer(
		"{s}", sub,
		"{z}", strconv.Itoa(int(tile.Z)),
		"{x}", strconv.FormatUint(uint64(tile.X), 10),
		"{y}", strconv.FormatUint(uint64(tile.Y), 10),
	)
	return r.Replace(t.URL)
}

// Covering lists the tiles at zoom that intersect a global pixel window.
// Columns wrap around the antimeridian; rows outside the world are dropped.
func Covering(minX, minY, maxX, maxY float64, zoom int) []maptile.Tile {
	if maxX <= minX || maxY <= minY {
		return nil
	}
	n := 1 << zoom
	x0 := int(math.Floor(minX / geom.TileSize))
	x1 := int(math.Floor((maxX - 1e-9) / geom.TileSize))
	y0 := int(math.Floor(minY / geom.TileSize))
	y1 := int(math.Floor((maxY - 1e-9) / geom.TileSize))

	seen := make(map[maptile.Tile]bool)
	var out []maptile.Tile
	for ty := max(0, y0); ty <= min(n-1, y1); ty++ {
		for tx := x0; tx <= x1; tx++ {
			t := maptile.New(uint32(wrap(tx, n)), uint32(ty), maptile.Zoom(zoom))
			if seen[t] {
				continue
			}
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

func wrap(x, n int) int {
	return ((x % n) + n) % n
}

func tileKey(t maptile.Tile) string {
	return fmt.Sprintf("%d/%d/%d", t.Z, t.X, t.Y)
}
