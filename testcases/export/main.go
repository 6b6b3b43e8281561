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

// Command export renders all test scenarios to PNG files, together with a
// JSON manifest listing the render statistics of every page.
// Run from the go-render module root directory.
package main

import (
	"encoding/json"
	"flag"
	"image"
	"image/png"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"seehuhn.de/go/render"
	"seehuhn.de/go/render/device"
	"seehuhn.de/go/render/testcases"
)

type manifestEntry struct {
	Name   string       `json:"name"`
	Width  int          `json:"width"`
	Height int          `json:"height"`
	File   string       `json:"file"`
	Stats  render.Stats `json:"stats"`
}

func main() {
	outDir := flag.String("out", "testdata/reference", "output directory")
	progressive := flag.Bool("progressive", false, "render in small steps via the scheduler")
	flag.Parse()

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		panic(err)
	}

	var manifest struct {
		Scenarios []manifestEntry `json:"scenarios"`
	}
	for _, category := range slices.Sorted(maps.Keys(testcases.All)) {
		for _, sc := range testcases.All[category] {
			name := category + "_" + sc.Name
			img, stats := renderScenario(sc, *progressive)

			file := name + ".png"
			if err := writePNG(filepath.Join(*outDir, file), img); err != nil {
				panic(err)
			}
			manifest.Scenarios = append(manifest.Scenarios, manifestEntry{
				Name:   name,
				Width:  sc.Width,
				Height: sc.Height,
				File:   file,
				Stats:  stats,
			})
		}
	}

	f, err := os.Create(filepath.Join(*outDir, "manifest.json"))
	if err != nil {
		panic(err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(manifest); err != nil {
		panic(err)
	}
}

func renderScenario(sc testcases.Scenario, progressive bool) (*image.RGBA, render.Stats) {
	img := image.NewRGBA(image.Rect(0, 0, sc.Width, sc.Height))
	dev := device.NewRaster(img, device.Caps{
		Class:      device.Display,
		BlendModes: true,
		ReadBack:   true,
		SoftClip:   true,
		Scale:      1,
	})

	ctx := render.NewContext(nil, nil)
	for _, l := range sc.Layers() {
		ctx.AppendLayer(l.Objects, l.Matrix)
	}

	if !progressive {
		if err := ctx.RenderNow(dev, nil); err != nil {
			panic(err)
		}
		return img, ctx.Stats()
	}

	opts := render.DefaultOptions()
	opts.StepLimit = 1
	s := ctx.NewScheduler(dev, opts)
	always := func() bool { return true }
	status, err := s.Start(always)
	for err == nil && status == render.InProgress {
		status = s.Continue(always)
	}
	if err == nil {
		err = s.Err()
	}
	if err != nil {
		panic(err)
	}
	return img, s.Stats()
}

func writePNG(name string, img image.Image) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
