package geom

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

const (
	// TileSize is the edge of a slippy map tile in pixels.
	TileSize = 256

	// CellWidth and CellHeight are the number of map pixels one terminal
	// cell covers. The 1:2 ratio keeps the map roughly square on screen.
	CellWidth  = 8
	CellHeight = 16

	MinZoom = 3
	MaxZoom = 18

	mercatorMax = 20037508.342789244
	maxLat      = 85.05112878
)

// WorldSize is the width of the whole Web Mercator world in pixels.
func WorldSize(zoom int) float64 {
	return TileSize * math.Exp2(float64(zoom))
}

// WorldPixel projects lon/lat to global Web Mercator pixel coordinates.
func WorldPixel(p orb.Point, zoom int) (float64, float64) {
	if p[1] > maxLat {
		p[1] = maxLat
	} else if p[1] < -maxLat {
		p[1] = -maxLat
	}
	m := project.WGS84.ToMercator(p)
	size := WorldSize(zoom)
	x := (m[0] + mercatorMax) / (2 * mercatorMax) * size
	y := (mercatorMax - m[1]) / (2 * mercatorMax) * size
	return x, y
}

// PixelLonLat inverts WorldPixel.
func PixelLonLat(x, y float64, zoom int) orb.Point {
	size := WorldSize(zoom)
	mx := x/size*2*mercatorMax - mercatorMax
	my := mercatorMax - y/size*2*mercatorMax
	return project.Mercator.ToWGS84(orb.Point{mx, my})
}

// Viewport is the visible map window: a center, a zoom level and a size in
// terminal cells.
type Viewport struct {
	Center orb.Point
	Zoom   int
	Width  int
	Height int
}

func (v Viewport) Valid() bool { return v.Width > 0 && v.Height > 0 }

// origin returns the global pixel at the top-left corner of the viewport.
func (v Viewport) origin() (float64, float64) {
	cx, cy := WorldPixel(v.Center, v.Zoom)
	return cx - float64(v.Width*CellWidth)/2, cy - float64(v.Height*CellHeight)/2
}

// PixelWindow is the global pixel rectangle the viewport shows.
func (v Viewport) PixelWindow() (minX, minY, maxX, maxY float64) {
	ox, oy := v.origin()
	return ox, oy, ox + float64(v.Width*CellWidth), oy + float64(v.Height*CellHeight)
}

// Bound is the lon/lat rectangle the viewport shows.
func (v Viewport) Bound() orb.Bound {
	minX, minY, maxX, maxY := v.PixelWindow()
	nw := PixelLonLat(minX, minY, v.Zoom)
	se := PixelLonLat(maxX, maxY, v.Zoom)
	return orb.Bound{Min: orb.Point{nw[0], se[1]}, Max: orb.Point{se[0], nw[1]}}
}

// CellXY maps lon/lat to fractional cell coordinates.
func (v Viewport) CellXY(p orb.Point) (float64, float64) {
	ox, oy := v.origin()
	x, y := WorldPixel(p, v.Zoom)
	return (x - ox) / CellWidth, (y - oy) / CellHeight
}

// HalfXY maps lon/lat to fractional half-cell coordinates: the same columns
// as CellXY, twice the rows.
func (v Viewport) HalfXY(p orb.Point) (float64, float64) {
	cx, cy := v.CellXY(p)
	return cx, cy * 2
}

// MicroXY maps lon/lat into the 2x4 braille microgrid of each cell.
func (v Viewport) MicroXY(p orb.Point) (int, int) {
	cx, cy := v.CellXY(p)
	return int(math.Floor(cx * 2)), int(math.Floor(cy * 4))
}

// HalfPixel returns the global pixel at the center of half cell (x, hy).
func (v Viewport) HalfPixel(x, hy int) (float64, float64) {
	ox, oy := v.origin()
	return ox + (float64(x)+0.5)*CellWidth, oy + (float64(hy)+0.5)*CellHeight/2
}

// CellToLonLat returns the lon/lat at the center of cell (cx, cy).
func (v Viewport) CellToLonLat(cx, cy int) orb.Point {
	ox, oy := v.origin()
	x := ox + (float64(cx)+0.5)*CellWidth
	y := oy + (float64(cy)+0.5)*CellHeight
	return PixelLonLat(x, y, v.Zoom)
}

// Pan moves the center by whole cells.
func (v Viewport) Pan(dx, dy int) Viewport {
	cx, cy := WorldPixel(v.Center, v.Zoom)
	v.Center = PixelLonLat(cx+float64(dx*CellWidth), cy+float64(dy*CellHeight), v.Zoom)
	return v
}

// Zoomed changes the zoom level by delta, clamped to [MinZoom, MaxZoom].
func (v Viewport) Zoomed(delta int) Viewport {
	v.Zoom = min(MaxZoom, max(MinZoom, v.Zoom+delta))
	return v
}

func (v Viewport) Resized(w, h int) Viewport {
	v.Width, v.Height = max(0, w), max(0, h)
	return v
}

// Contains reports whether a cell lies inside the viewport.
func (v Viewport) Contains(cx, cy int) bool {
	return cx >= 0 && cy >= 0 && cx < v.Width && cy < v.Height
}
