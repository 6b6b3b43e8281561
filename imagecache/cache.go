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

// Package imagecache stores decoded image bitmaps for one page.
//
// Entries are keyed by the reference of the image resource, not by its
// content.  Decoding can be done in one go or in steps; the continuation
// of a steppable decode belongs to the cache entry, so that a repeated
// request for the same resource resumes the decode instead of starting
// over.
package imagecache

import (
	"errors"
	"image"
	"image/color"
	"math"
	"slices"

	"golang.org/x/image/draw"
	"seehuhn.de/go/pdf"

	"seehuhn.de/go/render/codec"
	"seehuhn.de/go/render/object"
)

// DefaultLimit is the cache size budget used when no limit is configured.
const DefaultLimit = 100 << 20

// ErrPending is returned by [Cache.Lookup] while a steppable decode of the
// resource is in flight.
var ErrPending = errors.New("imagecache: decode in progress")

// Status describes the state of a cache entry.
type Status int

const (
	// Missing means the cache holds nothing for the resource.
	Missing Status = iota

	// Pending means a steppable decode has been started but is not
	// complete.
	Pending

	// Ready means the decoded bitmap is available.
	Ready
)

func (s Status) String() string {
	switch s {
	case Missing:
		return "missing"
	case Pending:
		return "pending"
	case Ready:
		return "ready"
	}
	return "invalid"
}

// Result is a decoded image.
type Result struct {
	Bitmap image.Image

	// Mask, if not nil, gives the opacity of every bitmap pixel.  It has
	// the same bounds as Bitmap.
	Mask *image.Alpha

	// Matte is the color the bitmap was premultiplied with.  Only valid
	// if HasMatte is set.
	Matte    color.NRGBA
	HasMatte bool
}

type key struct {
	ref pdf.Reference

	// inline is set for resources without a reference, which are then
	// identified by pointer.
	inline *object.ImageResource
}

func keyOf(res *object.ImageResource) key {
	if res.Ref != 0 {
		return key{ref: res.Ref}
	}
	return key{inline: res}
}

type entry struct {
	res    *object.ImageResource
	result *Result

	// dec and maskDec hold the continuation of an unfinished decode.
	dec     codec.Decoder
	maskDec codec.Decoder

	counter uint32
	size    int64
}

// Cache holds decoded images.  A Cache must not be used concurrently.
type Cache struct {
	entries map[key]*entry
	clock   uint32
	size    int64

	// Decodes counts the decoders started by the cache.
	Decodes int
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{entries: make(map[key]*entry)}
}

// Populate returns the decoded bitmap of res.
//
// If pause is nil, decoding runs to completion.  Otherwise decoding stops
// when pause returns true, and Populate returns [Pending].  A later call
// for the same resource continues where the previous call left off.
func (c *Cache) Populate(res *object.ImageResource, pause codec.Pause) (*Result, Status, error) {
	if res == nil || res.Source == nil {
		return nil, Missing, errors.New("imagecache: image has no data source")
	}
	k := keyOf(res)
	e := c.entries[k]
	if e != nil && e.result != nil {
		c.touch(e)
		return e.result, Ready, nil
	}
	if e == nil {
		var err error
		e, err = c.start(res)
		if err != nil {
			return nil, Missing, err
		}
		c.entries[k] = e
	}

	if e.dec != nil {
		done, err := e.dec.Continue(pause)
		if err != nil {
			delete(c.entries, k)
			return nil, Missing, err
		}
		if !done {
			return nil, Pending, nil
		}
	}
	if e.maskDec != nil {
		done, err := e.maskDec.Continue(pause)
		if err != nil {
			delete(c.entries, k)
			return nil, Missing, err
		}
		if !done {
			return nil, Pending, nil
		}
	}

	c.finish(e)
	return e.result, Ready, nil
}

// Lookup returns the decoded bitmap of res, decoding it synchronously on a
// miss.  If a steppable decode is in flight, Lookup returns [ErrPending]
// and leaves the decode to its initiator.
func (c *Cache) Lookup(res *object.ImageResource) (*Result, error) {
	if res != nil {
		if e := c.entries[keyOf(res)]; e != nil && e.result == nil {
			return nil, ErrPending
		}
	}
	r, _, err := c.Populate(res, nil)
	return r, err
}

// Peek returns the status of the entry for res without changing it.
func (c *Cache) Peek(res *object.ImageResource) Status {
	e := c.entries[keyOf(res)]
	switch {
	case e == nil:
		return Missing
	case e.result == nil:
		return Pending
	default:
		return Ready
	}
}

func (c *Cache) start(res *object.ImageResource) (*entry, error) {
	e := &entry{res: res}
	dec, err := res.Source.NewDecoder()
	if err != nil {
		return nil, err
	}
	c.Decodes++
	e.dec = dec
	if res.Mask != nil && res.Mask.Source != nil {
		maskDec, err := res.Mask.Source.NewDecoder()
		if err != nil {
			return nil, err
		}
		c.Decodes++
		e.maskDec = maskDec
	}
	return e, nil
}

func (c *Cache) finish(e *entry) {
	r := &Result{Bitmap: e.dec.Image()}
	if e.maskDec != nil {
		r.Mask = toAlpha(e.maskDec.Image(), r.Bitmap.Bounds())
	}
	if e.res.Matte != nil && r.Mask != nil {
		r.Matte = *e.res.Matte
		r.HasMatte = true
	}
	e.result = r
	e.dec, e.maskDec = nil, nil
	e.size = e.res.EstimatedSize()
	c.size += e.size
	c.touch(e)
}

// toAlpha converts the gray levels of a decoded mask into opacity values,
// resampled to the bounds of the masked image.
func toAlpha(mask image.Image, bounds image.Rectangle) *image.Alpha {
	gray := image.NewGray(mask.Bounds())
	draw.Draw(gray, gray.Rect, mask, mask.Bounds().Min, draw.Src)
	if !mask.Bounds().Size().Eq(bounds.Size()) {
		scaled := image.NewGray(bounds)
		draw.ApproxBiLinear.Scale(scaled, bounds, gray, gray.Rect, draw.Src, nil)
		gray = scaled
	}
	return &image.Alpha{
		Pix:    gray.Pix,
		Stride: gray.Stride,
		Rect:   bounds,
	}
}

// touch marks e as most recently used.
func (c *Cache) touch(e *entry) {
	if c.clock == math.MaxUint32 {
		c.renumber()
	}
	c.clock++
	e.counter = c.clock
}

// renumber replaces the recency counters by their rank, keeping the order.
func (c *Cache) renumber() {
	list := c.byRecency()
	for i, e := range list {
		e.counter = uint32(i + 1)
	}
	c.clock = uint32(len(list))
}

func (c *Cache) byRecency() []*entry {
	list := make([]*entry, 0, len(c.entries))
	for _, e := range c.entries {
		list = append(list, e)
	}
	slices.SortFunc(list, func(a, b *entry) int {
		switch {
		case a.counter < b.counter:
			return -1
		case a.counter > b.counter:
			return 1
		}
		return 0
	})
	return list
}

// Optimize evicts entries if the total size exceeds limit.  The least
// recently used sixteenth of the entries is always evicted; after this,
// entries are evicted oldest first until the size is within the limit.
// Entries with a decode in flight are kept.  Optimize returns the number of
// evicted entries.
func (c *Cache) Optimize(limit int64) int {
	if c.size <= limit {
		return 0
	}
	var list []*entry
	for _, e := range c.byRecency() {
		if e.result != nil {
			list = append(list, e)
		}
	}

	n := len(list) / 16
	var freed int64
	for _, e := range list[:n] {
		freed += e.size
	}
	for n < len(list) && c.size-freed > limit {
		freed += list[n].size
		n++
	}
	for _, e := range list[:n] {
		c.remove(e)
	}
	return n
}

func (c *Cache) remove(e *entry) {
	delete(c.entries, keyOf(e.res))
	c.size -= e.size
}

// Invalidate drops the entry for res, including a decode in flight.
func (c *Cache) Invalidate(res *object.ImageResource) {
	if e := c.entries[keyOf(res)]; e != nil {
		c.remove(e)
	}
}

// ResetBitmap replaces the decoded bitmap for res by img, for callers which
// changed the image resource.  Any mask is dropped.
func (c *Cache) ResetBitmap(res *object.ImageResource, img image.Image) {
	k := keyOf(res)
	if e := c.entries[k]; e != nil {
		c.remove(e)
	}
	b := img.Bounds()
	e := &entry{
		res:    res,
		result: &Result{Bitmap: img},
		size:   int64(b.Dx()) * int64(b.Dy()) * 4,
	}
	c.entries[k] = e
	c.size += e.size
	c.touch(e)
}

// Clear removes all entries.
func (c *Cache) Clear() {
	clear(c.entries)
	c.size = 0
}

// Size returns the estimated memory use of all decoded entries, in bytes.
func (c *Cache) Size() int64 {
	return c.size
}

// Len returns the number of entries, including decodes in flight.
func (c *Cache) Len() int {
	return len(c.entries)
}
