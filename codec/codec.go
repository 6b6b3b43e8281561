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

// Package codec defines how the renderer obtains decoded bitmaps, and
// provides decoders for in-memory, encoded and CCITT fax image data.
package codec

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"io"

	_ "golang.org/x/image/bmp" // register decoder
	"golang.org/x/image/ccitt"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff" // register decoder
	_ "golang.org/x/image/webp" // register decoder
)

// Pause is polled at suspension points.  Returning true asks the caller
// to stop at the next safe boundary.  A nil Pause never pauses.
type Pause func() bool

// Now reports whether a pause is requested.
func (p Pause) Now() bool {
	return p != nil && p()
}

// A Decoder produces one bitmap, possibly over several steps.
type Decoder interface {
	// Continue performs decoding work until the bitmap is complete or
	// pause requests a break.  It returns true once the bitmap is complete.
	Continue(pause Pause) (bool, error)

	// Image returns the decoded bitmap.  It is only valid after Continue
	// has returned true.
	Image() image.Image
}

// A Source creates decoders for one image resource.
type Source interface {
	NewDecoder() (Decoder, error)
}

var (
	// ErrTruncated is returned when image data ends early.
	ErrTruncated = errors.New("codec: image data truncated")

	errNotDone = errors.New("codec: decoding not finished")
)

// Static is a source for an image which is already decoded.
type Static struct {
	Image image.Image
}

// NewDecoder implements [Source].
func (s Static) NewDecoder() (Decoder, error) {
	if s.Image == nil {
		return nil, ErrTruncated
	}
	return &done{img: s.Image}, nil
}

type done struct {
	img image.Image
}

func (d *done) Continue(Pause) (bool, error) { return true, nil }
func (d *done) Image() image.Image         { return d.img }

// Rows decodes an image a batch of rows at a time, polling the pause
// predicate between batches.  It stands in for a slow streaming decoder.
type Rows struct {
	Image image.Image

	// RowsPerStep is the number of rows decoded between pause checks.
	// Values below 1 mean one row.
	RowsPerStep int
}

// NewDecoder implements [Source].
func (s Rows) NewDecoder() (Decoder, error) {
	if s.Image == nil {
		return nil, ErrTruncated
	}
	b := s.Image.Bounds()
	return &rowDecoder{
		src:  s.Image,
		dst:  image.NewNRGBA(b),
		next: b.Min.Y,
		step: max(s.RowsPerStep, 1),
	}, nil
}

type rowDecoder struct {
	src  image.Image
	dst  *image.NRGBA
	next int
	step int
}

func (d *rowDecoder) Continue(pause Pause) (bool, error) {
	b := d.src.Bounds()
	for d.next < b.Max.Y {
		end := min(d.next+d.step, b.Max.Y)
		r := image.Rect(b.Min.X, d.next, b.Max.X, end)
		draw.Draw(d.dst, r, d.src, r.Min, draw.Src)
		d.next = end
		if d.next < b.Max.Y && pause.Now() {
			return false, nil
		}
	}
	return true, nil
}

func (d *rowDecoder) Image() image.Image {
	return d.dst
}

// Encoded decodes PNG, JPEG, BMP, TIFF or WebP data in a single step.
type Encoded struct {
	Data []byte
}

// NewDecoder implements [Source].
func (s Encoded) NewDecoder() (Decoder, error) {
	return &funcDecoder{decode: func() (image.Image, error) {
		img, _, err := image.Decode(bytes.NewReader(s.Data))
		return img, err
	}}, nil
}

// CCITT decodes CCITT fax data, as used by the CCITTFaxDecode filter, into
// an 8-bit gray image.
type CCITT struct {
	Data          []byte
	Width, Height int

	// Group4 selects two-dimensional T.6 coding; otherwise T.4 is used.
	Group4 bool

	// BlackIs1 inverts the meaning of the coded bits.
	BlackIs1 bool

	// EncodedByteAlign requests that coded rows start on a byte boundary.
	EncodedByteAlign bool
}

// NewDecoder implements [Source].
func (s CCITT) NewDecoder() (Decoder, error) {
	if s.Width <= 0 || s.Height <= 0 {
		return nil, fmt.Errorf("codec: invalid CCITT image size %dx%d", s.Width, s.Height)
	}
	sf := ccitt.Group3
	if s.Group4 {
		sf = ccitt.Group4
	}
	opts := &ccitt.Options{Align: s.EncodedByteAlign}
	return &funcDecoder{decode: func() (image.Image, error) {
		r := ccitt.NewReader(bytes.NewReader(s.Data), ccitt.MSB, sf, s.Width, s.Height, opts)
		stride := (s.Width + 7) / 8
		packed := make([]byte, stride*s.Height)
		if _, err := io.ReadFull(r, packed); err != nil {
			if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
				err = ErrTruncated
			}
			return nil, fmt.Errorf("codec: CCITT: %w", err)
		}
		return unpackBits(packed, s.Width, s.Height, s.BlackIs1), nil
	}}, nil
}

// unpackBits expands 1 bit per pixel rows into a gray image.  Without
// inversion a 0 bit is black.
func unpackBits(packed []byte, w, h int, invert bool) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	stride := (w + 7) / 8
	for y := range h {
		row := packed[y*stride:]
		for x := range w {
			bit := row[x/8]>>(7-x%8)&1 == 1
			if bit != invert {
				img.Pix[y*img.Stride+x] = 255
			}
		}
	}
	return img
}

// funcDecoder runs a one-shot decode function on the first step.
type funcDecoder struct {
	decode func() (image.Image, error)
	img    image.Image
}

func (d *funcDecoder) Continue(Pause) (bool, error) {
	if d.img != nil {
		return true, nil
	}
	img, err := d.decode()
	if err != nil {
		return false, err
	}
	d.img = img
	return true, nil
}

func (d *funcDecoder) Image() image.Image {
	return d.img
}

// Decode runs a decoder from src to completion.
func Decode(src Source) (image.Image, error) {
	dec, err := src.NewDecoder()
	if err != nil {
		return nil, err
	}
	ok, err := dec.Continue(nil)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errNotDone
	}
	return dec.Image(), nil
}
