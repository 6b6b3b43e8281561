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
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"seehuhn.de/go/geom/matrix"

	"seehuhn.de/go/render"
	"seehuhn.de/go/render/codec"
)

func TestLoggerDefaultSilent(t *testing.T) {
	l := render.Logger()
	if l == nil {
		t.Fatal("no default logger")
	}
	for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
		if l.Enabled(context.Background(), level) {
			t.Errorf("default logger enabled for %v", level)
		}
	}
}

func TestLoggerReportsSkippedObjects(t *testing.T) {
	orig := render.Logger()
	t.Cleanup(func() { render.SetLogger(orig) })

	var buf bytes.Buffer
	render.SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	broken := checkerImage(11, matrix.Scale(8, 8))
	broken.Resource.Source = codec.Encoded{Data: []byte("garbage")}
	degenerate := checkerImage(12, matrix.Matrix{4, 4, 4, 4, 0, 0})
	renderLayer(t, 8, matrix.Identity, broken, degenerate)

	out := buf.String()
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, "object skipped") {
		t.Errorf("missing warning for broken image:\n%s", out)
	}
	if !strings.Contains(out, "degenerate object skipped") {
		t.Errorf("missing debug message for degenerate image:\n%s", out)
	}

	render.SetLogger(nil)
	if render.Logger().Enabled(context.Background(), slog.LevelError) {
		t.Error("SetLogger(nil) did not restore the silent logger")
	}
}
