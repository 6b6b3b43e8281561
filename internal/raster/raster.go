// seehuhn.de/go/render - a progressive renderer for PDF page content
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package raster converts vector paths into anti-aliased pixel coverage.
//
// Coverage is computed exactly from the signed area of the path inside
// each pixel, using an active edge list, and is delivered one scanline
// at a time.
package raster

import (
	"cmp"
	"math"
	"slices"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/pdf/graphics"
)

// Rule selects how path winding numbers are turned into coverage.
type Rule int

const (
	NonZero Rule = iota
	EvenOdd
)

// Emitter receives the coverage of one scanline.  The slice is only valid
// for the duration of the call.
type Emitter func(y, xMin int, coverage []float32)

type edge struct {
	x0, y0 float64
	x1, y1 float64
	dxdy   float64
}

// Rasteriser converts paths to pixel coverage values.
// Internal buffers are reused between calls.
type Rasteriser struct {
	// CTM maps user space to device space.
	CTM matrix.Matrix

	// Clip is the output region in device coordinates.
	Clip rect.Rect

	// Flatness is the curve flattening tolerance in device pixels.
	Flatness float64

	// Width is the stroke line width in user space units.
	Width float64

	Cap        graphics.LineCapStyle
	Join       graphics.LineJoinStyle
	MiterLimit float64

	cover     []float32
	area      []float32
	edges     []edge
	active    []int
	crossings []float64

	bbox  rect.Rect
	first bool

	pts  []vec.Vec2
	poly []vec.Vec2
}

// New allocates a Rasteriser with PDF default parameters.
func New(clip rect.Rect) *Rasteriser {
	r := &Rasteriser{}
	r.Reset(clip)
	return r
}

// Reset restores the default parameters and sets a new clip rectangle.
// Buffer capacity is kept.
func (r *Rasteriser) Reset(clip rect.Rect) {
	r.CTM = matrix.Identity
	r.Clip = clip
	r.Flatness = defaultFlatness
	r.Width = 1
	r.Cap = graphics.LineCapButt
	r.Join = graphics.LineJoinMiter
	r.MiterLimit = defaultMiterLimit
	r.edges = r.edges[:0]
}

// Fill rasterises the interior of p.
func (r *Rasteriser) Fill(p *path.Data, rule Rule, emit Emitter) {
	r.beginEdges()
	r.walk(p, func(sub []vec.Vec2, closed bool) {
		if len(sub) < 2 {
			return
		}
		for i := 1; i < len(sub); i++ {
			r.addEdge(sub[i-1], sub[i])
		}
		r.addEdge(sub[len(sub)-1], sub[0])
	})
	r.scan(rule, emit)
}

// walk flattens p and calls yield once per subpath.  The points are in
// user space; the slice is reused between calls.
func (r *Rasteriser) walk(p *path.Data, yield func(pts []vec.Vec2, closed bool)) {
	if p == nil {
		return
	}
	r.pts = r.pts[:0]
	flush := func(closed bool) {
		if len(r.pts) > 0 {
			yield(r.pts, closed)
		}
		r.pts = r.pts[:0]
	}
	add := func(_, to vec.Vec2) { r.pts = append(r.pts, to) }

	var cur vec.Vec2
	k := 0
	for _, cmd := range p.Cmds {
		switch cmd {
		case path.CmdMoveTo:
			flush(false)
			cur = p.Coords[k]
			r.pts = append(r.pts, cur)
			k++
		case path.CmdLineTo:
			if len(r.pts) == 0 {
				r.pts = append(r.pts, cur)
			}
			cur = p.Coords[k]
			r.pts = append(r.pts, cur)
			k++
		case path.CmdQuadTo:
			if len(r.pts) == 0 {
				r.pts = append(r.pts, cur)
			}
			r.flattenQuadratic(cur, p.Coords[k], p.Coords[k+1], add)
			cur = p.Coords[k+1]
			k += 2
		case path.CmdCubeTo:
			if len(r.pts) == 0 {
				r.pts = append(r.pts, cur)
			}
			r.flattenCubic(cur, p.Coords[k], p.Coords[k+1], p.Coords[k+2], add)
			cur = p.Coords[k+2]
			k += 3
		case path.CmdClose:
			if len(r.pts) > 0 {
				cur = r.pts[0]
			}
			flush(true)
		}
	}
	flush(false)
}

func (r *Rasteriser) linear(v vec.Vec2) vec.Vec2 {
	return vec.Vec2{
		X: r.CTM[0]*v.X + r.CTM[2]*v.Y,
		Y: r.CTM[1]*v.X + r.CTM[3]*v.Y,
	}
}

func (r *Rasteriser) flattenQuadratic(p0, p1, p2 vec.Vec2, emit func(from, to vec.Vec2)) {
	e := r.linear(p0.Sub(p1.Mul(2)).Add(p2).Mul(0.25)).Length()
	n := 1
	if e > r.Flatness {
		n = int(math.Ceil(math.Sqrt(e / r.Flatness)))
	}
	prev := p0
	for i := 1; i <= n; i++ {
		t := float64(i) / float64(n)
		s := 1 - t
		pt := p0.Mul(s * s).Add(p1.Mul(2 * s * t)).Add(p2.Mul(t * t))
		emit(prev, pt)
		prev = pt
	}
}

// flattenCubic uses Wang's formula for the segment count.
func (r *Rasteriser) flattenCubic(p0, p1, p2, p3 vec.Vec2, emit func(from, to vec.Vec2)) {
	d1 := r.linear(p0.Sub(p1.Mul(2)).Add(p2)).Length()
	d2 := r.linear(p1.Sub(p2.Mul(2)).Add(p3)).Length()
	n := 1
	if m := max(d1, d2); m > 0 {
		if f := math.Sqrt(3 * m / (4 * r.Flatness)); f > 1 {
			n = int(math.Ceil(f))
		}
	}
	prev := p0
	for i := 1; i <= n; i++ {
		t := float64(i) / float64(n)
		s := 1 - t
		pt := p0.Mul(s * s * s).
			Add(p1.Mul(3 * s * s * t)).
			Add(p2.Mul(3 * s * t * t)).
			Add(p3.Mul(t * t * t))
		emit(prev, pt)
		prev = pt
	}
}

func (r *Rasteriser) beginEdges() {
	r.edges = r.edges[:0]
	r.first = true
}

// addEdge transforms a user space segment to device space and records it.
func (r *Rasteriser) addEdge(p0, p1 vec.Vec2) {
	m := r.CTM
	x0 := m[0]*p0.X + m[2]*p0.Y + m[4]
	y0 := m[1]*p0.X + m[3]*p0.Y + m[5]
	x1 := m[0]*p1.X + m[2]*p1.Y + m[4]
	y1 := m[1]*p1.X + m[3]*p1.Y + m[5]

	dy := y1 - y0
	if math.Abs(dy) < horizontalEdgeThreshold {
		return
	}
	r.edges = append(r.edges, edge{x0: x0, y0: y0, x1: x1, y1: y1, dxdy: (x1 - x0) / dy})

	lo := rect.Rect{LLx: min(x0, x1), LLy: min(y0, y1), URx: max(x0, x1), URy: max(y0, y1)}
	if r.first {
		r.bbox = lo
		r.first = false
		return
	}
	r.bbox.LLx = min(r.bbox.LLx, lo.LLx)
	r.bbox.LLy = min(r.bbox.LLy, lo.LLy)
	r.bbox.URx = max(r.bbox.URx, lo.URx)
	r.bbox.URy = max(r.bbox.URy, lo.URy)
}

// scan runs the active edge list over the collected edges.
func (r *Rasteriser) scan(rule Rule, emit Emitter) {
	if len(r.edges) == 0 {
		return
	}
	xMin := max(int(math.Floor(r.bbox.LLx)), int(r.Clip.LLx))
	xMax := min(int(math.Floor(r.bbox.URx))+1, int(r.Clip.URx))
	yMin := max(int(math.Floor(r.bbox.LLy)), int(r.Clip.LLy))
	yMax := min(int(math.Floor(r.bbox.URy))+1, int(r.Clip.URy))
	if xMin >= xMax || yMin >= yMax {
		return
	}
	width := xMax - xMin
	r.cover = slices.Grow(r.cover[:0], width)[:width]
	r.area = slices.Grow(r.area[:0], width)[:width]

	slices.SortFunc(r.edges, func(a, b edge) int {
		return cmp.Compare(min(a.y0, a.y1), min(b.y0, b.y1))
	})

	r.active = r.active[:0]
	next := 0
	for next < len(r.edges) && max(r.edges[next].y0, r.edges[next].y1) <= float64(yMin) {
		next++
	}
	for y := yMin; y < yMax; y++ {
		top, bot := float64(y), float64(y+1)
		for next < len(r.edges) && min(r.edges[next].y0, r.edges[next].y1) < bot {
			r.active = append(r.active, next)
			next++
		}
		if len(r.active) == 0 {
			if next == len(r.edges) {
				return
			}
			continue
		}

		clear(r.cover)
		clear(r.area)
		touched := false
		for i := 0; i < len(r.active); {
			e := &r.edges[r.active[i]]
			if max(e.y0, e.y1) <= top {
				r.active[i] = r.active[len(r.active)-1]
				r.active = r.active[:len(r.active)-1]
				continue
			}
			if r.accumulate(e, top, bot, xMin, xMax) {
				touched = true
			}
			i++
		}
		if !touched {
			continue
		}

		if rule == NonZero {
			integrateNonZero(r.cover, r.area)
		} else {
			integrateEvenOdd(r.cover, r.area)
		}
		if row, off := trimZeros(r.cover); row != nil {
			emit(y, xMin+off, row)
		}
	}
}

// Coverage model: every edge piece inside a pixel adds its signed
// vertical extent to cover[] and the part of that extent lying right of
// the edge to area[].  A running sum of cover[] plus the local area[]
// gives the signed area covered by the path in each pixel.
func (r *Rasteriser) accumulate(e *edge, top, bot float64, xMin, xMax int) bool {
	top = max(top, min(e.y0, e.y1))
	bot = min(bot, max(e.y0, e.y1))
	if bot <= top {
		return false
	}
	sign := float32(1)
	if e.y1 < e.y0 {
		sign = -1
	}

	xa := e.x0 + e.dxdy*(top-e.y0)
	xb := e.x0 + e.dxdy*(bot-e.y0)
	left, right := int(math.Floor(min(xa, xb))), int(math.Floor(max(xa, xb)))
	if left >= xMax {
		return false
	}

	r.crossings = append(r.crossings[:0], top, bot)
	if left != right && e.dxdy != 0 {
		for x := left + 1; x <= right; x++ {
			yx := e.y0 + (float64(x)-e.x0)/e.dxdy
			if yx > top && yx < bot {
				r.crossings = append(r.crossings, yx)
			}
		}
		slices.Sort(r.crossings)
	}

	for i := 1; i < len(r.crossings); i++ {
		y0, y1 := r.crossings[i-1], r.crossings[i]
		if y1 <= y0 {
			continue
		}
		c := sign * float32(y1-y0)
		xm := e.x0 + e.dxdy*((y0+y1)/2-e.y0)
		pix := int(math.Floor(xm))
		switch {
		case pix < xMin:
			r.cover[0] += c
			r.area[0] += c
		case pix < xMax:
			k := pix - xMin
			r.cover[k] += c
			r.area[k] += c * float32(1-(xm-float64(pix)))
		}
	}
	return true
}

func integrateNonZero(cover, area []float32) {
	var acc float32
	for i := range cover {
		v := acc + area[i]
		acc += cover[i]
		if v < 0 {
			v = -v
		}
		cover[i] = min(v, 1)
	}
}

func integrateEvenOdd(cover, area []float32) {
	var acc float32
	for i := range cover {
		v := acc + area[i]
		acc += cover[i]
		if v < 0 {
			v = -v
		}
		v -= 2 * float32(int(v/2))
		if v > 1 {
			v = 2 - v
		}
		cover[i] = v
	}
}

// trimZeros returns the non-zero part of a scanline and its offset.
func trimZeros(cov []float32) ([]float32, int) {
	lo, hi := 0, len(cov)
	for lo < hi && cov[lo] == 0 {
		lo++
	}
	if lo == hi {
		return nil, 0
	}
	for cov[hi-1] == 0 {
		hi--
	}
	return cov[lo:hi], lo
}

const (
	defaultFlatness   = 0.25
	defaultMiterLimit = 10.0

	horizontalEdgeThreshold = 1e-10
	zeroLengthThreshold     = 1e-10
)
