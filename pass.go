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

package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"math"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/render/composite"
	"seehuhn.de/go/render/device"
	"seehuhn.de/go/render/imagecache"
	"seehuhn.de/go/render/object"
	"seehuhn.de/go/render/transfer"
)

// env is shared by all passes of one render.
type env struct {
	opts      Options
	images    *imagecache.Cache
	transfers *transfer.Cache
	stats     *Stats
	log       *slog.Logger

	tables   map[*object.Transfer]*transfer.Table
	acquired []*object.Transfer
}

func newEnv(c *Context, opts *Options) *env {
	return &env{
		opts:      opts.normalize(),
		images:    c.images,
		transfers: c.transfers,
		stats:     &Stats{},
		log:       Logger(),
		tables:    make(map[*object.Transfer]*transfer.Table),
	}
}

// table returns the lookup table for tr, or nil for the identity.
func (e *env) table(tr *object.Transfer) *transfer.Table {
	if tr == nil {
		return nil
	}
	if t, seen := e.tables[tr]; seen {
		return t
	}
	t, err := e.transfers.Acquire(tr.Ref, tr.Funcs...)
	if err != nil {
		e.report(&ResourceError{Kind: "transfer function", Ref: tr.Ref, Err: err})
		e.tables[tr] = nil
		return nil
	}
	e.tables[tr] = t
	if tr.Ref != 0 {
		e.acquired = append(e.acquired, tr)
	}
	return t
}

// release returns the transfer tables acquired by the render.
func (e *env) release() {
	for _, tr := range e.acquired {
		e.transfers.Release(tr.Ref)
	}
	e.acquired = nil
	clear(e.tables)
}

// report logs a recovered error and counts it.
func (e *env) report(err error) {
	switch {
	case errors.Is(err, ErrDepthExceeded):
		e.stats.DepthExceeded++
		e.log.Debug("nested content skipped", slog.Any("err", err))
	case errors.Is(err, ErrDegenerate):
		e.stats.Degenerate++
		e.log.Debug("degenerate object skipped", slog.Any("err", err))
	default:
		e.stats.ResourceErrors++
		e.log.Warn("object skipped", slog.Any("err", err))
	}
}

// trimCache applies the cache size budget.
func (e *env) trimCache() {
	if e.opts.CacheLimit > 0 {
		if n := e.images.Optimize(e.opts.CacheLimit); n > 0 {
			e.log.Debug("image cache trimmed", slog.Int("evicted", n), slog.Int64("size", e.images.Size()))
		}
	}
}

// pass renders object lists onto one device.  A fresh pass is used for
// every nested list.
type pass struct {
	*env
	dev      device.Device
	clipRect image.Rectangle
	depth    int

	// stop, if set, ends the pass before this object is drawn.
	stop object.Object

	// override replaces the paint colors inside Type 3 glyphs.
	override *color.NRGBA

	// lastClip is the clip path installed on the device by this pass.
	// If clipped is set, the device state before the first clip is saved.
	lastClip *object.ClipPath
	clipped  bool

	// textClip is a glyph clip which the device cannot apply itself.
	textClip *object.ClipPath
}

func (e *env) newPass(dev device.Device, depth int) *pass {
	return &pass{env: e, dev: dev, clipRect: dev.ClipBox(), depth: depth}
}

// nested returns a pass for content nested inside the current object, or
// nil if the nesting depth is exhausted.
func (p *pass) nested(dev device.Device) *pass {
	if p.depth+1 > p.opts.MaxDepth {
		p.report(ErrDepthExceeded)
		return nil
	}
	child := p.newPass(dev, p.depth+1)
	if dev == p.dev {
		child.clipRect = child.clipRect.Intersect(p.clipRect)
	}
	child.override = p.override
	return child
}

// finish undoes the clipping done by the pass.
func (p *pass) finish() {
	if p.clipped {
		p.dev.RestoreState(false)
		p.clipped = false
	}
	p.lastClip = nil
	p.textClip = nil
}

// renderList draws the objects of list in paint order.  It returns false
// if the pass reached its stop object.
func (p *pass) renderList(list object.List, m matrix.Matrix) bool {
	if list == nil {
		return true
	}
	if !list.Parsed() {
		list.ParseMore(nil)
	}
	for i := 0; i < list.Len(); i++ {
		if !p.draw(list.At(i), m) {
			return false
		}
	}
	return true
}

type verdict int

const (
	verdictStop verdict = iota
	verdictSkip
	verdictGroup
	verdictDirect
)

// begin prepares the device for drawing obj and decides how obj is
// drawn.
func (p *pass) begin(obj object.Object, m matrix.Matrix) verdict {
	if p.stop != nil && obj == p.stop {
		return verdictStop
	}
	if b, ok := obj.BBox(); ok && !deviceRect(object.TransformRect(b, m)).Overlaps(p.clipRect) {
		p.stats.Skipped++
		return verdictSkip
	}
	ps := obj.State()
	if p.opts.Visible != nil && len(ps.Marks) > 0 && !p.opts.Visible(ps.Marks) {
		p.stats.Skipped++
		return verdictSkip
	}
	p.setClip(ps.Clip, m)
	p.stats.Objects++
	if p.needsGroup(obj) {
		return verdictGroup
	}
	return verdictDirect
}

// draw draws one object.  It returns false if obj is the stop object.
func (p *pass) draw(obj object.Object, m matrix.Matrix) bool {
	switch p.begin(obj, m) {
	case verdictStop:
		return false
	case verdictGroup:
		p.drawGroup(obj, m)
	case verdictDirect:
		p.dispatch(obj, m, obj.State().Blend)
	}
	return true
}

// setClip makes the device clip agree with clip.
func (p *pass) setClip(clip *object.ClipPath, m matrix.Matrix) {
	if clip == nil {
		if p.clipped {
			p.dev.RestoreState(false)
			p.clipped = false
		}
		p.lastClip = nil
		p.textClip = nil
		return
	}
	if p.lastClip != nil && clip.Equal(p.lastClip) {
		return
	}

	if p.clipped {
		p.dev.RestoreState(true)
	} else {
		p.dev.SaveState()
		p.clipped = true
	}
	for _, sp := range clip.Paths {
		cp := sp.Path
		if cp == nil {
			cp = &path.Data{}
		}
		p.dev.ClipPath(cp, m, sp.Rule)
	}
	p.textClip = nil
	if clip.HasText() {
		caps := p.dev.Caps()
		if caps.Class != device.Display || caps.SoftClip {
			p.dev.ClipGlyphs(clipGlyphs(clip), m)
		} else {
			p.textClip = clip
		}
	}
	p.lastClip = clip
}

func clipGlyphs(clip *object.ClipPath) []device.Glyph {
	var glyphs []device.Glyph
	for _, t := range clip.Text {
		glyphs = append(glyphs, t.DeviceGlyphs()...)
	}
	return glyphs
}

// dispatch draws obj without transparency group handling.
func (p *pass) dispatch(obj object.Object, m matrix.Matrix, mode composite.BlendMode) {
	switch o := obj.(type) {
	case *object.Path:
		p.drawPath(o, m, mode)
	case *object.Text:
		p.drawText(o, m, mode)
	case *object.Image:
		r := p.newImageRenderer(o, m, mode)
		r.Start(nil)
	case *object.Shading:
		p.drawShading(o, m, mode)
	case *object.Form:
		p.drawForm(o, m)
	}
}

// fillColor returns the device color for filling with the paint state.
func (p *pass) fillColor(ps *object.PaintState) color.NRGBA {
	c := ps.Fill
	if p.override != nil {
		c = *p.override
	}
	return p.paintColor(c, ps.FillAlpha, ps.Transfer)
}

// strokeColor returns the device color for stroking.
func (p *pass) strokeColor(ps *object.PaintState) color.NRGBA {
	c := ps.Stroke
	if p.override != nil {
		c = *p.override
	}
	return p.paintColor(c, ps.StrokeAlpha, ps.Transfer)
}

func (p *pass) paintColor(c color.NRGBA, alpha float64, tr *object.Transfer) color.NRGBA {
	a := composite.Alpha8(alpha)
	c.A = uint8((uint32(c.A)*uint32(a) + 127) / 255)
	c = p.table(tr).TranslateColor(c)
	return p.opts.TranslateColor(c)
}

func (p *pass) drawPath(o *object.Path, m matrix.Matrix, mode composite.BlendMode) {
	if o.Path == nil {
		return
	}
	if o.Filled {
		if o.FillPattern != nil {
			p.fillPattern(o, m, mode)
		} else {
			p.dev.FillPath(o.Path, m, o.Rule, p.fillColor(&o.PaintState), mode)
		}
	}
	if o.Stroked {
		style := o.LineStyle
		p.dev.StrokePath(o.Path, m, &style, p.strokeColor(&o.PaintState), mode)
	}
}

func (p *pass) drawText(o *object.Text, m matrix.Matrix, mode composite.BlendMode) {
	if o.Mode == object.TextInvisible {
		return
	}
	ctm := o.Matrix.Mul(m)

	var outlines []device.Glyph
	for _, g := range o.Glyphs {
		switch {
		case g.Outline != nil:
			outlines = append(outlines, device.Glyph{Outline: g.Outline, Matrix: g.Matrix})
		case g.Proc != nil:
			p.drawType3(g, ctm, &o.PaintState)
		}
	}
	if len(outlines) == 0 {
		return
	}
	if o.Mode == object.TextFill || o.Mode == object.TextFillStroke {
		if o.FillPattern != nil {
			area := p.dev.ClipBox()
			if b, ok := o.BBox(); ok {
				area = deviceRect(object.TransformRect(b, m))
			}
			p.paintThrough(&o.PaintState, m, area, mode, func(box image.Rectangle) *image.Alpha {
				return p.glyphCoverage(outlines, ctm, box)
			})
		} else {
			p.dev.FillGlyphs(outlines, ctm, p.fillColor(&o.PaintState), mode)
		}
	}
	if o.Mode == object.TextStroke || o.Mode == object.TextFillStroke {
		style := o.LineStyle
		c := p.strokeColor(&o.PaintState)
		for _, g := range outlines {
			p.dev.StrokePath(g.Outline, g.Matrix.Mul(ctm), &style, c, mode)
		}
	}
}

// drawType3 draws a glyph defined by a content list.  The glyph content
// is painted in the fill color of the text.
func (p *pass) drawType3(g object.Glyph, ctm matrix.Matrix, ps *object.PaintState) {
	child := p.nested(p.dev)
	if child == nil {
		return
	}
	fill := ps.Fill
	if p.override != nil {
		fill = *p.override
	}
	fill.A = uint8((uint32(fill.A)*uint32(composite.Alpha8(ps.FillAlpha)) + 127) / 255)
	child.override = &fill
	child.renderList(g.Proc, g.Matrix.Mul(ctm))
	child.finish()
}

func (p *pass) drawForm(o *object.Form, m matrix.Matrix) {
	p.renderForm(p.dev, o, m)
}

// renderForm draws the content of a form onto dev, clipped to the form
// bounding box.  It returns false if the nesting depth is exhausted.
func (p *pass) renderForm(dev device.Device, o *object.Form, m matrix.Matrix) bool {
	child := p.nested(dev)
	if child == nil {
		return false
	}
	fm := o.Matrix.Mul(m)
	child.clipRect = child.clipRect.Intersect(deviceRect(object.TransformRect(o.Box, fm)))
	if child.clipRect.Empty() {
		return true
	}
	dev.SaveState()
	dev.ClipPath(rectPath(o.Box), fm, device.NonZero)
	child.renderList(o.Content, fm)
	child.finish()
	dev.RestoreState(false)
	return true
}

func (p *pass) drawShading(o *object.Shading, m matrix.Matrix, mode composite.BlendMode) {
	if o.Shader == nil {
		p.report(&ResourceError{Kind: "shading", Err: errors.New("missing shader")})
		return
	}
	box := p.dev.ClipBox().Intersect(p.clipRect)
	if b, ok := o.BBox(); ok {
		box = box.Intersect(deviceRect(object.TransformRect(b, m)))
	}
	if box.Empty() {
		return
	}
	toDev := o.Matrix.Mul(m)
	buf := image.NewRGBA(box)
	if !p.paintShader(buf, o.Shader, toDev, o.FillAlpha, o.Transfer) {
		return
	}
	if o.Box != nil {
		composite.ApplyMask(buf, p.pathMask(rectPath(*o.Box), toDev, device.NonZero, box))
	}
	p.dev.SetBitmap(buf, mode)
}

// fillPattern fills a path with a pattern.
func (p *pass) fillPattern(o *object.Path, m matrix.Matrix, mode composite.BlendMode) {
	b, _ := o.BBox()
	p.paintThrough(&o.PaintState, m, deviceRect(object.TransformRect(b, m)), mode, func(box image.Rectangle) *image.Alpha {
		return p.pathMask(o.Path, m, o.Rule, box)
	})
}

// paintThrough paints the fill pattern of ps inside area, masked by the
// coverage which cover returns for the visible part of area.
func (p *pass) paintThrough(ps *object.PaintState, m matrix.Matrix, area image.Rectangle, mode composite.BlendMode, cover func(image.Rectangle) *image.Alpha) {
	if p.depth+1 > p.opts.MaxDepth {
		p.report(ErrDepthExceeded)
		return
	}
	box := area.Intersect(p.dev.ClipBox()).Intersect(p.clipRect)
	if box.Empty() {
		return
	}
	buf := image.NewRGBA(box)
	if !p.paintPattern(buf, ps.FillPattern, m, ps) {
		return
	}
	composite.ApplyMask(buf, cover(box))
	p.dev.SetBitmap(buf, mode)
}

// paintPattern paints pat into buf.  The pattern matrix is applied on top
// of m.  It returns false if nothing could be painted.
func (p *pass) paintPattern(buf *image.RGBA, pat *object.Pattern, m matrix.Matrix, ps *object.PaintState) bool {
	toDev := pat.Matrix.Mul(m)
	if pat.Tile != nil {
		return p.paintTiles(buf, pat.Tile, toDev, ps)
	}
	return p.paintShader(buf, pat.Shader, toDev, ps.FillAlpha, ps.Transfer)
}

// maxTiles is the largest number of pattern cells drawn for one fill.
const maxTiles = 1 << 16

// paintTiles draws the cells of a tiling pattern which intersect buf.
// Alpha and transfer function of ps apply to the finished tiling.
func (p *pass) paintTiles(buf *image.RGBA, t *object.Tiling, toDev matrix.Matrix, ps *object.PaintState) bool {
	inv, ok := object.Invert(toDev)
	if !ok {
		p.report(ErrDegenerate)
		return false
	}
	xs, ys := math.Abs(t.XStep), math.Abs(t.YStep)
	if !(xs > 0) || !(ys > 0) || math.IsInf(xs, 0) || math.IsInf(ys, 0) {
		p.report(&ResourceError{Kind: "pattern", Err: errors.New("invalid tiling step")})
		return false
	}
	if t.Cell == nil {
		return true
	}

	b := buf.Bounds()
	area := object.TransformRect(rect.Rect{
		LLx: float64(b.Min.X), LLy: float64(b.Min.Y),
		URx: float64(b.Max.X), URy: float64(b.Max.Y),
	}, inv)
	i0 := math.Floor((area.LLx - t.BBox.URx) / xs)
	i1 := math.Ceil((area.URx - t.BBox.LLx) / xs)
	j0 := math.Floor((area.LLy - t.BBox.URy) / ys)
	j1 := math.Ceil((area.URy - t.BBox.LLy) / ys)
	if n := (i1 - i0 + 1) * (j1 - j0 + 1); !(n <= maxTiles) {
		p.report(&ResourceError{Kind: "pattern", Err: fmt.Errorf("too many tiles (%g)", n)})
		return false
	}

	d := device.NewRaster(buf, device.DefaultCaps)
	d.Flatness = p.opts.Flatness
	child := p.nested(d)
	if child == nil {
		return false
	}
	if t.Uncolored {
		fill := ps.Fill
		if p.override != nil {
			fill = *p.override
		}
		child.override = &fill
	}
	cell := rectPath(t.BBox)
	full := child.clipRect
	for j := int(j0); j <= int(j1); j++ {
		for i := int(i0); i <= int(i1); i++ {
			tm := matrix.Translate(float64(i)*xs, float64(j)*ys).Mul(toDev)
			r := deviceRect(object.TransformRect(t.BBox, tm)).Intersect(full)
			if r.Empty() {
				continue
			}
			child.clipRect = r
			d.SaveState()
			d.ClipPath(cell, tm, device.NonZero)
			child.renderList(t.Cell, tm)
			child.finish()
			d.RestoreState(false)
		}
	}

	p.table(ps.Transfer).TranslateImage(buf)
	composite.MultiplyAlpha(buf, composite.Alpha8(ps.FillAlpha))
	return true
}

// paintShader evaluates a shader at the center of every pixel of buf.
// It returns false if toDev is not invertible.
func (p *pass) paintShader(buf *image.RGBA, sh object.Shader, toDev matrix.Matrix, alpha float64, tr *object.Transfer) bool {
	inv, ok := object.Invert(toDev)
	if !ok {
		p.report(ErrDegenerate)
		return false
	}
	if sh == nil {
		p.report(&ResourceError{Kind: "pattern", Err: errors.New("missing shader")})
		return false
	}
	b := buf.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c, ok := sh.At(object.Apply(inv, vec.Vec2{X: float64(x) + 0.5, Y: float64(y) + 0.5}))
			if !ok {
				continue
			}
			buf.SetRGBA(x, y, composite.Premultiply(p.paintColor(c, alpha, tr)))
		}
	}
	return true
}

// scratch returns a raster device over a new transparent buffer.
func (p *pass) scratch(box image.Rectangle) *device.Raster {
	d := device.NewRaster(image.NewRGBA(box), device.DefaultCaps)
	d.Flatness = p.opts.Flatness
	return d
}

// pathMask returns the coverage of a path inside box.
func (p *pass) pathMask(pd *path.Data, ctm matrix.Matrix, rule device.FillRule, box image.Rectangle) *image.Alpha {
	d := p.scratch(box)
	d.FillPath(pd, ctm, rule, color.NRGBA{R: 255, G: 255, B: 255, A: 255}, composite.Normal)
	return composite.AlphaMask(d.Image())
}

// glyphMask returns the coverage of the glyphs of a text clip inside box.
func (p *pass) glyphMask(clip *object.ClipPath, ctm matrix.Matrix, box image.Rectangle) *image.Alpha {
	return p.glyphCoverage(clipGlyphs(clip), ctm, box)
}

func (p *pass) glyphCoverage(glyphs []device.Glyph, ctm matrix.Matrix, box image.Rectangle) *image.Alpha {
	d := p.scratch(box)
	d.FillGlyphs(glyphs, ctm, color.NRGBA{R: 255, G: 255, B: 255, A: 255}, composite.Normal)
	return composite.AlphaMask(d.Image())
}

// deviceRect returns the smallest pixel rectangle containing r.
func deviceRect(r rect.Rect) image.Rectangle {
	if math.IsNaN(r.LLx) || math.IsNaN(r.LLy) || math.IsNaN(r.URx) || math.IsNaN(r.URy) {
		return image.Rectangle{}
	}
	clamp := func(v float64) int {
		return int(min(max(v, -1<<30), 1<<30))
	}
	return image.Rect(
		clamp(math.Floor(r.LLx)), clamp(math.Floor(r.LLy)),
		clamp(math.Ceil(r.URx)), clamp(math.Ceil(r.URy)),
	)
}

func rectPath(r rect.Rect) *path.Data {
	return (&path.Data{}).
		MoveTo(vec.Vec2{X: r.LLx, Y: r.LLy}).
		LineTo(vec.Vec2{X: r.URx, Y: r.LLy}).
		LineTo(vec.Vec2{X: r.URx, Y: r.URy}).
		LineTo(vec.Vec2{X: r.LLx, Y: r.URy}).
		Close()
}
