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
	"seehuhn.de/go/render/codec"
	"seehuhn.de/go/render/device"
	"seehuhn.de/go/render/object"
)

// Status is the state of a [Scheduler].
type Status int

const (
	Ready Status = iota
	InProgress
	Done
	Failed
)

func (s Status) String() string {
	switch s {
	case Ready:
		return "ready"
	case InProgress:
		return "in progress"
	case Done:
		return "done"
	case Failed:
		return "failed"
	}
	return "invalid"
}

// Cursor is the position of a scheduler: the index of the current layer
// and the index of the next object to start within that layer.
type Cursor struct {
	Layer  int
	Object int
}

// Scheduler renders the layers of a context in bounded steps.  Between
// steps the caller can do other work.  Output is the same as for an
// uninterrupted render, however the work is split up.
type Scheduler struct {
	ctx *Context
	dev device.Device
	env *env

	status Status
	err    error
	cur    Cursor
	budget int

	// layer is the open pass for the current layer.
	layer *pass

	// image is an image which has been started but not finished.
	image *imageRenderer
}

// NewScheduler returns a scheduler which renders all layers of c onto dev.
// The layers must not be changed while the scheduler runs.
func (c *Context) NewScheduler(dev device.Device, opts *Options) *Scheduler {
	return &Scheduler{
		ctx: c,
		dev: dev,
		env: newEnv(c, opts),
	}
}

// Start begins rendering and performs the first step, see
// [Scheduler.Continue].  Start fails if there is no device or if the
// scheduler has already been started.
func (s *Scheduler) Start(pause codec.Pause) (Status, error) {
	if s.dev == nil {
		s.fail(ErrNoDevice)
		return s.status, s.err
	}
	if s.status != Ready {
		s.fail(ErrAlreadyStarted)
		return s.status, s.err
	}
	s.status = InProgress
	s.budget = s.env.opts.StepLimit
	return s.Continue(pause), nil
}

func (s *Scheduler) fail(err error) {
	s.discard()
	s.status = Failed
	s.err = err
}

// Continue renders until all layers are done or until pause returns
// true.  Pause is polled after every StepLimit objects, after forms and
// shadings, between bands of rotated images and during image decoding.
// Continue also returns early if a streaming layer has no more objects
// available yet.
func (s *Scheduler) Continue(pause codec.Pause) Status {
	if s.status != InProgress {
		return s.status
	}
	layers := s.ctx.layers
	for s.cur.Layer < len(layers) {
		layer := layers[s.cur.Layer]
		list := layer.Objects
		if list == nil {
			s.nextLayer()
			continue
		}
		if s.layer == nil {
			s.layer = s.env.newPass(s.dev, 0)
		}
		p := s.layer

		if s.image != nil {
			if !s.image.Continue(pause) {
				return InProgress
			}
			s.image = nil
			s.cur.Object++
			s.env.trimCache()
		}

		for {
			if s.cur.Object >= list.Len() {
				if list.Parsed() {
					break
				}
				list.ParseMore(pause)
				if s.cur.Object >= list.Len() {
					return InProgress
				}
				continue
			}
			if s.budget <= 0 {
				s.budget = s.env.opts.StepLimit
				if pause.Now() {
					return InProgress
				}
			}

			obj := list.At(s.cur.Object)
			s.budget--
			switch obj.Kind() {
			case object.KindForm, object.KindShading:
				s.budget = 0
			}

			v := p.begin(obj, layer.Matrix)
			if im, ok := obj.(*object.Image); ok && v == verdictDirect {
				r := p.newImageRenderer(im, layer.Matrix, im.Blend)
				if !r.Start(pause) {
					s.image = r
					return InProgress
				}
				s.cur.Object++
				s.env.trimCache()
				continue
			}
			switch v {
			case verdictGroup:
				p.drawGroup(obj, layer.Matrix)
			case verdictDirect:
				p.dispatch(obj, layer.Matrix, obj.State().Blend)
			}
			s.cur.Object++
		}

		s.nextLayer()
		if s.cur.Layer < len(layers) && pause.Now() {
			return InProgress
		}
	}

	s.env.release()
	s.status = Done
	s.ctx.stats = *s.env.stats
	return Done
}

func (s *Scheduler) nextLayer() {
	if s.layer != nil {
		s.layer.finish()
		s.layer = nil
	}
	s.cur.Layer++
	s.cur.Object = 0
	s.env.trimCache()
}

// EstimateProgress returns the percentage of objects rendered so far,
// between 0 and 100.  Streaming layers count with the objects available
// so far.  Without any objects, the progress is 0.
func (s *Scheduler) EstimateProgress() int {
	total, done := 0, 0
	for i, layer := range s.ctx.layers {
		if layer.Objects == nil {
			continue
		}
		n := layer.Objects.Len()
		total += n
		switch {
		case i < s.cur.Layer:
			done += n
		case i == s.cur.Layer:
			done += min(s.cur.Object, n)
		}
	}
	switch {
	case total == 0:
		return 0
	case s.status == Done:
		return 100
	}
	return 100 * done / total
}

// Cancel stops rendering and returns the scheduler to the Ready state.
// Partial output stays on the device.  Cached images are kept.
func (s *Scheduler) Cancel() {
	s.discard()
	s.status = Ready
	s.err = nil
}

func (s *Scheduler) discard() {
	if s.layer != nil {
		s.layer.finish()
		s.layer = nil
	}
	s.image = nil
	s.cur = Cursor{}
	s.env.release()
	s.env.stats = &Stats{}
}

// Status returns the current state.
func (s *Scheduler) Status() Status {
	return s.status
}

// Err returns the reason for the Failed state.
func (s *Scheduler) Err() error {
	return s.err
}

// Cursor returns the current position.
func (s *Scheduler) Cursor() Cursor {
	return s.cur
}

// Stats returns counts for the render so far.
func (s *Scheduler) Stats() Stats {
	return *s.env.stats
}
