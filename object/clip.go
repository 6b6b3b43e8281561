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

package object

import (
	"slices"

	"seehuhn.de/go/geom/path"

	"seehuhn.de/go/render/device"
)

// ClipSubpath is one path of a clip path, with its fill rule.
type ClipSubpath struct {
	Path *path.Data
	Rule device.FillRule
}

// ClipPath is the intersection of a sequence of paths and, optionally,
// of text outlines.
type ClipPath struct {
	Paths []ClipSubpath

	// Text holds text objects whose glyph outlines clip.  They are
	// combined by union and then intersected with the paths.
	Text []*Text
}

// Equal reports whether two clip paths describe the same region
// structurally.  Nil is only equal to nil.
func (c *ClipPath) Equal(other *ClipPath) bool {
	if c == other {
		return true
	}
	if c == nil || other == nil {
		return false
	}
	if len(c.Paths) != len(other.Paths) || !slices.Equal(c.Text, other.Text) {
		return false
	}
	for i, p := range c.Paths {
		q := other.Paths[i]
		if p.Rule != q.Rule || !pathEqual(p.Path, q.Path) {
			return false
		}
	}
	return true
}

func pathEqual(a, b *path.Data) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return isEmpty(a) && isEmpty(b)
	}
	return slices.Equal(a.Cmds, b.Cmds) && slices.Equal(a.Coords, b.Coords)
}

func isEmpty(p *path.Data) bool {
	return p == nil || len(p.Cmds) == 0
}

// HasText reports whether the clip path includes a text clip.
func (c *ClipPath) HasText() bool {
	return c != nil && len(c.Text) > 0
}
