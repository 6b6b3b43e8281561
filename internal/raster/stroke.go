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

package raster

import (
	"math"

	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/pdf/graphics"
)

// Stroke rasterises the outline of p using the current line width, cap,
// join and miter limit.
//
// The stroke is built in user space as a union of convex pieces (one quad
// per segment plus join and cap pieces), all with the same orientation,
// and filled with the nonzero rule.  This makes non-uniform CTMs produce
// correctly distorted pens.
func (r *Rasteriser) Stroke(p *path.Data, emit Emitter) {
	hw := r.Width / 2
	if hw <= 0 {
		// PDF: a zero-width line is the thinnest line the device can draw
		hw = 0.5 / r.deviceScale()
	}
	r.beginEdges()
	r.walk(p, func(pts []vec.Vec2, closed bool) {
		r.strokeSubpath(dedup(pts, closed), closed, hw)
	})
	r.scan(NonZero, emit)
}

// dedup removes zero-length segments, in place.
func dedup(pts []vec.Vec2, closed bool) []vec.Vec2 {
	out := pts[:0]
	for _, p := range pts {
		if len(out) > 0 && p.Sub(out[len(out)-1]).Length() < zeroLengthThreshold {
			continue
		}
		out = append(out, p)
	}
	if closed && len(out) > 1 && out[0].Sub(out[len(out)-1]).Length() < zeroLengthThreshold {
		out = out[:len(out)-1]
	}
	return out
}

func (r *Rasteriser) strokeSubpath(pts []vec.Vec2, closed bool, hw float64) {
	if len(pts) == 1 {
		// a degenerate subpath only shows with round or square caps
		switch r.Cap {
		case graphics.LineCapRound:
			r.addCircle(pts[0], hw)
		case graphics.LineCapSquare:
			d := vec.Vec2{X: hw, Y: 0}
			n := vec.Vec2{X: 0, Y: hw}
			r.addPolygon(pts[0].Sub(d).Sub(n), pts[0].Add(d).Sub(n), pts[0].Add(d).Add(n), pts[0].Sub(d).Add(n))
		}
		return
	}

	nSeg := len(pts) - 1
	if closed {
		nSeg = len(pts)
	}
	at := func(i int) vec.Vec2 { return pts[i%len(pts)] }

	for i := range nSeg {
		a, b := at(i), at(i+1)
		n := normal(a, b, hw)
		r.addPolygon(a.Add(n), b.Add(n), b.Sub(n), a.Sub(n))
	}

	for i := 1; i < len(pts); i++ {
		if i == len(pts)-1 && !closed {
			break
		}
		r.addJoin(at(i-1), at(i), at(i+1), hw)
	}
	if closed {
		r.addJoin(pts[len(pts)-1], pts[0], pts[1], hw)
		return
	}

	r.addCap(pts[1], pts[0], hw)
	r.addCap(pts[len(pts)-2], pts[len(pts)-1], hw)
}

// normal returns the left-hand normal of a→b with length hw.
func normal(a, b vec.Vec2, hw float64) vec.Vec2 {
	d := b.Sub(a)
	return vec.Vec2{X: -d.Y, Y: d.X}.Mul(hw / d.Length())
}

// addJoin adds the join piece at vertex v between segments u→v and v→w.
func (r *Rasteriser) addJoin(u, v, w vec.Vec2, hw float64) {
	d0, d1 := v.Sub(u), w.Sub(v)
	cross := d0.X*d1.Y - d0.Y*d1.X
	if math.Abs(cross) < collinearityThreshold*d0.Length()*d1.Length() && d0.Dot(d1) > 0 {
		return
	}
	if r.Join == graphics.LineJoinRound {
		r.addCircle(v, hw)
		return
	}

	// outer offsets lie on the side away from the turn
	o0, o1 := normal(u, v, hw), normal(v, w, hw)
	if cross > 0 {
		o0, o1 = o0.Mul(-1), o1.Mul(-1)
	}

	if r.Join == graphics.LineJoinMiter {
		cosPhi := o0.Dot(o1) / (hw * hw)
		if 1+cosPhi > 1e-9 && 2/(1+cosPhi) <= r.MiterLimit*r.MiterLimit {
			tip := v.Add(o0.Add(o1).Mul(1 / (1 + cosPhi)))
			r.addPolygon(v, v.Add(o0), tip, v.Add(o1))
			return
		}
	}
	r.addPolygon(v, v.Add(o0), v.Add(o1))
}

// addCap adds the cap at end point b of the segment a→b.
func (r *Rasteriser) addCap(a, b vec.Vec2, hw float64) {
	switch r.Cap {
	case graphics.LineCapRound:
		r.addCircle(b, hw)
	case graphics.LineCapSquare:
		d := b.Sub(a)
		d = d.Mul(hw / d.Length())
		n := normal(a, b, hw)
		r.addPolygon(b.Add(n), b.Add(n).Add(d), b.Sub(n).Add(d), b.Sub(n))
	}
}

func (r *Rasteriser) addCircle(c vec.Vec2, radius float64) {
	rDev := radius * r.deviceScale()
	n := 8
	if rDev > r.Flatness {
		n = max(n, int(math.Ceil(math.Pi/math.Acos(1-r.Flatness/rDev))))
	}
	r.poly = r.poly[:0]
	for i := range n {
		phi := 2 * math.Pi * float64(i) / float64(n)
		r.poly = append(r.poly, vec.Vec2{X: c.X + radius*math.Cos(phi), Y: c.Y + radius*math.Sin(phi)})
	}
	r.addPolygon(r.poly...)
}

// addPolygon records a closed polygon, normalised to positive orientation
// so that overlapping pieces never cancel under the nonzero rule.
func (r *Rasteriser) addPolygon(pts ...vec.Vec2) {
	var area float64
	for i := range pts {
		a, b := pts[i], pts[(i+1)%len(pts)]
		area += a.X*b.Y - b.X*a.Y
	}
	if area == 0 {
		return
	}
	n := len(pts)
	for i := range n {
		a, b := pts[i], pts[(i+1)%n]
		if area < 0 {
			a, b = b, a
		}
		r.addEdge(a, b)
	}
}

// deviceScale estimates how many device pixels one user space unit spans.
func (r *Rasteriser) deviceScale() float64 {
	m := r.CTM
	sx := math.Hypot(m[0], m[1])
	sy := math.Hypot(m[2], m[3])
	s := max(sx, sy)
	if s == 0 {
		return 1
	}
	return s
}

const collinearityThreshold = 1e-6
