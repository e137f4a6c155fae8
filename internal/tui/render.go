package tui

import (
	"math"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/paulmach/orb"

	"dpdmap/internal/geom"
	"dpdmap/internal/mapview"
	"dpdmap/internal/tiles"
)

// frameKey identifies a rendered map. Any change to the viewport, the
// overlays or the tile cache invalidates it.
type frameKey struct {
	vp    geom.Viewport
	rev   uint64
	tiles uint64
}

type frameCache struct {
	key   frameKey
	lines []string
	ok    bool
}

// renderMap draws the map area, reusing the last frame when nothing changed.
func (m Model) renderMap(vp geom.Viewport) []string {
	key := frameKey{vp: vp, rev: m.view.Revision()}
	base := m.view.Base()
	if base != nil {
		key.tiles = base.Revision()
	}
	if m.frame != nil && m.frame.ok && m.frame.key == key {
		return m.frame.lines
	}
	lines := renderCanvas(vp, base, m.view.Features(), m.view.Mounted())
	if m.frame != nil {
		*m.frame = frameCache{key: key, lines: lines, ok: true}
	}
	return lines
}

// renderCanvas composes the basemap, the fills and the outlines of the
// mounted layer into vp.Height lines of vp.Width cells. Each cell is two
// stacked half-cell pixels drawn with an upper half block, unless an outline
// passes through it, in which case the braille stroke is drawn over the
// averaged background.
func renderCanvas(vp geom.Viewport, base *tiles.Layer, features []geom.Feature, layer *mapview.Layer) []string {
	if !vp.Valid() {
		return nil
	}
	w, h := vp.Width, vp.Height
	half := basemap(vp, base)

	br := newBrailleBuf(w, h)
	if layer != nil && layer.Len() == len(features) {
		visible := vp.Bound()
		owner := rasterizeFills(vp, features, layer, visible)
		for i, o := range owner {
			if o < 0 {
				continue
			}
			s := layer.Style(o)
			half[i] = half[i].BlendRgb(cssColor(s.Fill()), s.FillOpacity).Clamped()
		}
		drawStrokes(br, vp, features, layer, visible)
	}

	lines := make([]string, h)
	for y := 0; y < h; y++ {
		var sb, run strings.Builder
		var cur [2]string
		flush := func() {
			if run.Len() == 0 {
				return
			}
			st := lipgloss.NewStyle().Foreground(lipgloss.Color(cur[0])).Background(lipgloss.Color(cur[1]))
			sb.WriteString(st.Render(run.String()))
			run.Reset()
		}
		for x := 0; x < w; x++ {
			top, bot := half[2*y*w+x], half[(2*y+1)*w+x]
			glyph, fg, bg := '▀', top, bot
			if r, k, ok := br.cell(x, y); ok {
				glyph, fg, bg = r, k.color, top.BlendRgb(bot, 0.5)
			}
			key := [2]string{fg.Hex(), bg.Hex()}
			if key != cur {
				flush()
				cur = key
			}
			run.WriteRune(glyph)
		}
		flush()
		lines[y] = sb.String()
	}
	return lines
}

// basemap samples the tile layer once per half cell.
func basemap(vp geom.Viewport, base *tiles.Layer) []colorful.Color {
	w, rows := vp.Width, vp.Height*2
	half := make([]colorful.Color, w*rows)
	for hy := 0; hy < rows; hy++ {
		for x := 0; x < w; x++ {
			c := mapBackground
			if base != nil {
				px, py := vp.HalfPixel(x, hy)
				if rgba, ok := base.Sample(vp.Zoom, px, py); ok {
					c = colorful.Color{R: float64(rgba.R) / 255, G: float64(rgba.G) / 255, B: float64(rgba.B) / 255}
				}
			}
			half[hy*w+x] = c
		}
	}
	return half
}

// rasterizeFills returns, for every half cell, the index of the feature
// whose fill covers it or -1. Later features paint over earlier ones, the
// same order hit testing uses in reverse.
func rasterizeFills(vp geom.Viewport, features []geom.Feature, layer *mapview.Layer, visible orb.Bound) []int {
	w, rows := vp.Width, vp.Height*2
	owner := make([]int, w*rows)
	for i := range owner {
		owner[i] = -1
	}
	for i, f := range features {
		if layer.Style(i).FillOpacity <= 0 || !f.Bound.Intersects(visible) {
			continue
		}
		for _, poly := range f.Geometry {
			rings := make([][][2]float64, 0, len(poly))
			for _, ring := range poly {
				pts := make([][2]float64, 0, len(ring))
				for _, p := range ring {
					x, y := vp.HalfXY(p)
					pts = append(pts, [2]float64{x, y})
				}
				rings = append(rings, pts)
			}
			scanFill(rings, w, rows, func(x, y int) { owner[y*w+x] = i })
		}
	}
	return owner
}

// scanFill calls set for every cell of a w x rows grid whose center lies
// inside the rings under the even-odd rule.
func scanFill(rings [][][2]float64, w, rows int, set func(x, y int)) {
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, r := range rings {
		for _, p := range r {
			minY = math.Min(minY, p[1])
			maxY = math.Max(maxY, p[1])
		}
	}
	if math.IsInf(minY, 0) {
		return
	}
	y0 := max(0, int(math.Floor(minY)))
	y1 := min(rows-1, int(math.Ceil(maxY)))
	var xs []float64
	for y := y0; y <= y1; y++ {
		sy := float64(y) + 0.5
		xs = xs[:0]
		for _, r := range rings {
			for i := range r {
				a, b := r[i], r[(i+1)%len(r)]
				if a[1] == b[1] {
					continue
				}
				if (sy >= a[1] && sy < b[1]) || (sy >= b[1] && sy < a[1]) {
					t := (sy - a[1]) / (b[1] - a[1])
					xs = append(xs, a[0]+t*(b[0]-a[0]))
				}
			}
		}
		sort.Float64s(xs)
		for k := 0; k+1 < len(xs); k += 2 {
			x0 := max(0, int(math.Ceil(xs[k]-0.5)))
			x1 := min(w-1, int(math.Ceil(xs[k+1]-0.5))-1)
			for x := x0; x <= x1; x++ {
				set(x, y)
			}
		}
	}
}

// drawStrokes outlines every visible feature on the braille microgrid.
// Weights of 2 and above get a second, offset pass.
func drawStrokes(br *brailleBuf, vp geom.Viewport, features []geom.Feature, layer *mapview.Layer, visible orb.Bound) {
	for i, f := range features {
		s := layer.Style(i)
		if s.Weight <= 0 || s.Opacity <= 0 || !f.Bound.Intersects(visible) {
			continue
		}
		k := ink{color: cssColor(s.Color), weight: s.Weight}
		f.Rings(func(r orb.Ring) {
			for j := 0; j+1 < len(r); j++ {
				ax, ay := vp.MicroXY(r[j])
				bx, by := vp.MicroXY(r[j+1])
				br.drawLineMicro(ax, ay, bx, by, k)
				if s.Weight >= 2 {
					br.drawLineMicro(ax+1, ay, bx+1, by, k)
					br.drawLineMicro(ax, ay+1, bx, by+1, k)
				}
			}
		})
	}
}
