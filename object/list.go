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

import "seehuhn.de/go/render/codec"

// List is an ordered sequence of drawable objects in paint order.
// Lists which are built from streaming input may not be complete yet.
type List interface {
	// Len returns the number of objects available so far.
	Len() int

	// At returns the object at position i, for 0 <= i < Len().
	At(i int) Object

	// Parsed reports whether the list is complete.
	Parsed() bool

	// ParseMore makes progress on parsing the list.  It returns early if
	// pause requests a break.
	ParseMore(pause codec.Pause)
}

// Slice is a List which is fully available.
type Slice []Object

func (s Slice) Len() int            { return len(s) }
func (s Slice) At(i int) Object     { return s[i] }
func (s Slice) Parsed() bool        { return true }
func (s Slice) ParseMore(codec.Pause) {}

// Stream is a List whose objects become available in chunks, as when
// a content stream is still being downloaded.
type Stream struct {
	all   []Object
	avail int

	// Chunk is the number of objects made available per parse step.
	Chunk int

	// Calls counts the calls to ParseMore.
	Calls int
}

// NewStream returns a stream over objs with nothing parsed yet.
func NewStream(objs []Object, chunk int) *Stream {
	return &Stream{all: objs, Chunk: max(chunk, 1)}
}

func (s *Stream) Len() int        { return s.avail }
func (s *Stream) At(i int) Object { return s.all[i] }
func (s *Stream) Parsed() bool    { return s.avail == len(s.all) }

// ParseMore makes the next chunk available.  Between chunks, pause is
// polled.
func (s *Stream) ParseMore(pause codec.Pause) {
	s.Calls++
	for s.avail < len(s.all) {
		s.avail = min(s.avail+s.Chunk, len(s.all))
		if pause.Now() {
			return
		}
	}
}
