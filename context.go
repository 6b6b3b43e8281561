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

// Package render draws PDF page content onto raster devices.
//
// A [Context] holds the layers of a page, each an object list with a
// transformation to device space.  The layers can be rendered in one go
// with [Context.RenderNow], or progressively with a [Scheduler], which
// allows to pause and resume rendering at well-defined points.
//
// Objects which cannot be rendered, for example images with corrupt data,
// are skipped and the rest of the page is still drawn.  Such problems are
// reported through the logger set with [SetLogger] and counted in
// [Stats].
package render

import (
	"seehuhn.de/go/geom/matrix"

	"seehuhn.de/go/render/device"
	"seehuhn.de/go/render/imagecache"
	"seehuhn.de/go/render/object"
	"seehuhn.de/go/render/transfer"
)

// Layer is an object list together with the matrix from its user space to
// device space.
type Layer struct {
	Objects object.List
	Matrix  matrix.Matrix
}

// Context holds the layers of a page and the caches used to render them.
type Context struct {
	layers    []Layer
	images    *imagecache.Cache
	transfers *transfer.Cache
	stats     Stats
}

// NewContext returns an empty context.  The image cache belongs to the
// page and the transfer function cache to the document; either can be nil,
// in which case a private cache is allocated.
func NewContext(images *imagecache.Cache, transfers *transfer.Cache) *Context {
	if images == nil {
		images = imagecache.New()
	}
	if transfers == nil {
		transfers = transfer.NewCache()
	}
	return &Context{images: images, transfers: transfers}
}

// AppendLayer adds a layer on top of the existing ones.
func (c *Context) AppendLayer(objects object.List, m matrix.Matrix) {
	c.layers = append(c.layers, Layer{Objects: objects, Matrix: m})
}

// Layers returns the layers in paint order.  The slice must not be
// modified.
func (c *Context) Layers() []Layer {
	return c.layers
}

// ImageCache returns the image cache of the page.
func (c *Context) ImageCache() *imagecache.Cache {
	return c.images
}

// Transfers returns the transfer function cache.
func (c *Context) Transfers() *transfer.Cache {
	return c.transfers
}

// Stats returns the counts of the most recent completed render.
func (c *Context) Stats() Stats {
	return c.stats
}

// RenderNow draws all layers onto dev.  The only errors returned are for
// invalid arguments; problems with individual objects are recovered.
func (c *Context) RenderNow(dev device.Device, opts *Options) error {
	if dev == nil {
		return ErrNoDevice
	}
	e := newEnv(c, opts)
	defer e.release()
	for _, layer := range c.layers {
		p := e.newPass(dev, 0)
		p.renderList(layer.Objects, layer.Matrix)
		p.finish()
		e.trimCache()
	}
	c.stats = *e.stats
	return nil
}

// RenderLayer draws the objects of layer onto dev, up to but excluding
// stop.  If stop is nil, the whole layer is drawn.  The result reports
// whether the end of the layer was reached.
func (c *Context) RenderLayer(dev device.Device, layer Layer, opts *Options, stop object.Object) (bool, error) {
	if dev == nil {
		return false, ErrNoDevice
	}
	e := newEnv(c, opts)
	defer e.release()
	p := e.newPass(dev, 0)
	p.stop = stop
	completed := p.renderList(layer.Objects, layer.Matrix)
	p.finish()
	e.trimCache()
	c.stats = *e.stats
	return completed, nil
}
