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

package render_test

import (
	"errors"
	"testing"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"

	"seehuhn.de/go/render"
	"seehuhn.de/go/render/codec"
	"seehuhn.de/go/render/object"
)

// feed is a list whose objects are made available by the test.
type feed struct {
	objs   []object.Object
	avail  int
	closed bool
	calls  int
}

func (f *feed) Len() int               { return f.avail }
func (f *feed) At(i int) object.Object { return f.objs[i] }
func (f *feed) Parsed() bool           { return f.closed && f.avail == len(f.objs) }
func (f *feed) ParseMore(codec.Pause)  { f.calls++ }

func TestStartErrors(t *testing.T) {
	ctx := newContext(object.Slice{filled(box(0, 0, 4, 4), red)})

	s := ctx.NewScheduler(nil, nil)
	status, err := s.Start(nil)
	if status != render.Failed || !errors.Is(err, render.ErrNoDevice) {
		t.Errorf("no device: got %s, %v", status, err)
	}

	_, dev := newCanvas(4, 4)
	s = ctx.NewScheduler(dev, nil)
	if status, err := s.Start(nil); status != render.Done || err != nil {
		t.Fatalf("first start: got %s, %v", status, err)
	}
	status, err = s.Start(nil)
	if status != render.Failed || !errors.Is(err, render.ErrAlreadyStarted) {
		t.Errorf("second start: got %s, %v", status, err)
	}
	if s.Err() != err {
		t.Errorf("Err: got %v", s.Err())
	}
	if got := s.Continue(nil); got != render.Failed {
		t.Errorf("continue after failure: got %s", got)
	}
}

func TestEstimateProgress(t *testing.T) {
	_, dev := newCanvas(8, 8)

	empty := render.NewContext(nil, nil)
	s := empty.NewScheduler(dev, nil)
	if p := s.EstimateProgress(); p != 0 {
		t.Errorf("no layers before start: %d%%", p)
	}
	if status, _ := s.Start(nil); status != render.Done {
		t.Fatalf("empty context: %s", status)
	}
	if p := s.EstimateProgress(); p != 0 {
		t.Errorf("no layers after start: %d%%", p)
	}

	var objs object.Slice
	for range 4 {
		objs = append(objs, filled(box(0, 0, 8, 8), red))
	}
	ctx := newContext(objs)
	opts := render.DefaultOptions()
	opts.StepLimit = 1
	s = ctx.NewScheduler(dev, opts)
	always := func() bool { return true }

	var got []int
	status, _ := s.Start(always)
	for status == render.InProgress {
		got = append(got, s.EstimateProgress())
		status = s.Continue(always)
	}
	got = append(got, s.EstimateProgress())
	want := []int{25, 50, 75, 100}
	if len(got) != len(want) {
		t.Fatalf("got progress %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got progress %v, want %v", got, want)
			break
		}
	}
}

func TestStreamingLayer(t *testing.T) {
	list := &feed{objs: []object.Object{
		filled(box(0, 0, 4, 4), red),
		filled(box(4, 0, 8, 4), blue),
		filled(box(0, 4, 8, 8), black),
	}}
	img, dev := newCanvas(8, 8)
	ctx := render.NewContext(nil, nil)
	ctx.AppendLayer(list, matrix.Identity)
	s := ctx.NewScheduler(dev, nil)

	status, err := s.Start(nil)
	if err != nil || status != render.InProgress {
		t.Fatalf("start without content: got %s, %v", status, err)
	}
	if list.calls == 0 {
		t.Error("scheduler did not ask for more content")
	}

	list.avail = 2
	if status := s.Continue(nil); status != render.InProgress {
		t.Fatalf("partial content: got %s", status)
	}
	if c := s.Cursor(); c.Layer != 0 || c.Object != 2 {
		t.Errorf("cursor %+v, want object 2", c)
	}
	if got := img.RGBAAt(6, 2); got.B != 255 {
		t.Errorf("available objects not painted: %v", got)
	}

	list.avail, list.closed = 3, true
	if status := s.Continue(nil); status != render.Done {
		t.Fatalf("complete content: got %s", status)
	}
	if got := img.RGBAAt(4, 6); got.A != 255 || got.R != 0 {
		t.Errorf("last object: got %v", got)
	}
	if n := s.Stats().Objects; n != 3 {
		t.Errorf("rendered %d objects, want 3", n)
	}
}

func TestPauseAfterForm(t *testing.T) {
	form := &object.Form{
		PaintState: object.DefaultPaint(),
		Content:    object.Slice{filled(box(0, 0, 8, 8), blue)},
		Matrix:     matrix.Identity,
		Box:        rect.Rect{URx: 8, URy: 8},
	}
	objs := object.Slice{
		filled(box(0, 0, 8, 8), red),
		form,
		filled(box(0, 0, 4, 4), black),
		filled(box(4, 4, 8, 8), black),
	}
	img, dev := newCanvas(8, 8)
	s := newContext(objs).NewScheduler(dev, nil)
	always := func() bool { return true }

	if status, err := s.Start(always); status != render.InProgress || err != nil {
		t.Fatalf("start: got %s, %v", status, err)
	}
	if got, want := s.Cursor(), (render.Cursor{Layer: 0, Object: 2}); got != want {
		t.Errorf("cursor %+v, want %+v", got, want)
	}
	if got := img.RGBAAt(2, 2); got.B != 255 {
		t.Errorf("form not painted before pause: %v", got)
	}

	if status := s.Continue(nil); status != render.Done {
		t.Fatalf("continue: got %s", status)
	}
	if got := img.RGBAAt(2, 2); got.B != 0 || got.A != 255 {
		t.Errorf("objects after the form: got %v", got)
	}
}

func TestCancel(t *testing.T) {
	var objs object.Slice
	for range 5 {
		objs = append(objs, filled(box(0, 0, 8, 8), red))
	}
	_, dev := newCanvas(8, 8)
	opts := render.DefaultOptions()
	opts.StepLimit = 2
	s := newContext(objs).NewScheduler(dev, opts)
	always := func() bool { return true }

	if status, _ := s.Start(always); status != render.InProgress {
		t.Fatalf("start: %s", status)
	}
	s.Cancel()
	if s.Status() != render.Ready || s.Cursor() != (render.Cursor{}) || s.Stats().Objects != 0 {
		t.Errorf("after cancel: %s at %+v, %+v", s.Status(), s.Cursor(), s.Stats())
	}

	// a cancelled scheduler can be started again
	if status, err := s.Start(nil); status != render.Done || err != nil {
		t.Errorf("restart: %s, %v", status, err)
	}
	if n := s.Stats().Objects; n != 5 {
		t.Errorf("rendered %d objects, want 5", n)
	}
}
