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

	"seehuhn.de/go/pdf"
)

var (
	// ErrNoDevice is returned when rendering is started without a device.
	ErrNoDevice = errors.New("render: no output device")

	// ErrAlreadyStarted is returned by [Scheduler.Start] if the scheduler
	// is not in the Ready state.
	ErrAlreadyStarted = errors.New("render: scheduler already started")

	// ErrDepthExceeded is reported when nested forms, patterns or soft
	// masks exceed the maximal nesting depth.  The nested content is
	// not drawn.
	ErrDepthExceeded = errors.New("render: nesting depth exceeded")

	// ErrDegenerate is reported for objects whose transformation is not
	// invertible or whose device area is empty.
	ErrDegenerate = errors.New("render: degenerate transformation")
)

// ResourceError reports a resource which could not be used.  The object
// using the resource is skipped.
type ResourceError struct {
	// Kind names the kind of resource, for example "image".
	Kind string
	Ref  pdf.Reference
	Err  error
}

func (e *ResourceError) Error() string {
	if e.Ref != 0 {
		return fmt.Sprintf("render: %s %s: %v", e.Kind, e.Ref, e.Err)
	}
	return fmt.Sprintf("render: %s: %v", e.Kind, e.Err)
}

func (e *ResourceError) Unwrap() error {
	return e.Err
}

// Stats counts what happened during a render.
type Stats struct {
	// Objects is the number of objects painted, including nested ones.
	Objects int

	// Skipped counts objects outside the clip area or hidden by optional
	// content.
	Skipped int

	ResourceErrors int
	DepthExceeded  int
	Degenerate     int
}
