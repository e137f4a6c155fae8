package tui

import "github.com/lucasb-eyer/go-colorful"

// ink is the stroke that last claimed a braille cell. Heavier strokes win so
// a highlighted outline stays visible over its neighbours.
type ink struct {
	color  colorful.Color
	weight float64
}

type brailleBuf struct {
	w, h  int       // in cells
	m     [][]uint8 // per-cell 8-bit mask
	ink   [][]ink
	inked [][]bool
}

func newBrailleBuf(w, h int) *brailleBuf {
	b := &brailleBuf{w: w, h: h}
	b.m = make([][]uint8, h)
	b.ink = make([][]ink, h)
	b.inked = make([][]bool, h)
	for i := 0; i < h; i++ {
		b.m[i] = make([]uint8, w)
		b.ink[i] = make([]ink, w)
		b.inked[i] = make([]bool, w)
	}
	return b
}

// setPixel sets a micro-pixel at micro coords (2x4 per cell)
func (b *brailleBuf) setPixel(mx, my int, k ink) {
	if mx < 0 || my < 0 {
		return
	}
	cx, rx := mx/2, mx%2
	cy, ry := my/4, my%4
	if cy >= b.h || cx >= b.w {
		return
	}
	var bit uint8
	if rx == 0 {
		switch ry {
		case 0:
			bit = 0x01
		case 1:
			bit = 0x02
		case 2:
			bit = 0x04
		case 3:
			bit = 0x40
		}
	} else {
		switch ry {
		case 0:
			bit = 0x08
		case 1:
			bit = 0x10
		case 2:
			bit = 0x20
		case 3:
			bit = 0x80
		}
	}
	b.m[cy][cx] |= bit
	if !b.inked[cy][cx] || k.weight >= b.ink[cy][cx].weight {
		b.ink[cy][cx] = k
		b.inked[cy][cx] = true
	}
}

// drawLineMicro draws a line on the microgrid using Bresenham. Segments that
// lie entirely on one side of the buffer are skipped.
func (b *brailleBuf) drawLineMicro(x0, y0, x1, y1 int, k ink) {
	wMic, hMic := b.w*2, b.h*4
	if (x0 < 0 && x1 < 0) || (y0 < 0 && y1 < 0) || (x0 >= wMic && x1 >= wMic) || (y0 >= hMic && y1 >= hMic) {
		return
	}
	dx := abs(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -abs(y1 - y0)
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		b.setPixel(x0, y0, k)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// cell returns the braille glyph and stroke of a cell, if any pixel is set.
func (b *brailleBuf) cell(x, y int) (rune, ink, bool) {
	mask := b.m[y][x]
	if mask == 0 {
		return ' ', ink{}, false
	}
	return rune(0x2800 + int(mask)), b.ink[y][x], true
}
