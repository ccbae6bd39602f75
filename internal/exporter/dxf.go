// Package exporter writes the engine's placement results back out as a
// DXF drawing: for each placed carpet it applies the same
// rotate-about-centroid-then-translate transform the engine used during
// collision checking (spec §6) to the carpet's original polygon, so the
// cut file matches exactly what the scheduler packed.
package exporter

import (
	"fmt"

	"github.com/asergeenko/evalayout/internal/geometry"
	"github.com/asergeenko/evalayout/internal/model"
	"github.com/yofu/dxf"
)

// Transform reproduces the engine's placement transform: rotate the
// original polygon about its own centroid by angleDeg, then translate
// by (dx, dy). This must stay bit-for-bit identical to what the placer
// applies; any divergence is the historical overlap bug spec §6 warns
// against.
func Transform(original model.Polygon, angleDeg, dx, dy float64) model.Polygon {
	rotated := geometry.RotateAboutCentroid(original, angleDeg)
	return geometry.Translate(rotated, dx, dy)
}

// WriteDXF writes one closed LWPOLYLINE-equivalent outline per placed
// carpet to a new DXF file at path. Each carpet's outline is emitted as
// a chain of LINE entities around its transformed exterior ring; holes,
// if present, are emitted the same way on their own layer-less chain.
func WriteDXF(path string, placed []model.PlacedCarpet) error {
	d := dxf.NewDrawing()

	for _, p := range placed {
		transformed := Transform(p.Carpet.Polygon, p.Angle, p.XOffset, p.YOffset)
		writeRing(d, transformed.Exterior)
		for _, hole := range transformed.Holes {
			writeRing(d, hole)
		}
	}

	if err := d.SaveAs(path); err != nil {
		return fmt.Errorf("writing DXF file %q: %w", path, err)
	}
	return nil
}

func writeRing(d *dxf.Drawing, ring []model.Point2D) {
	n := len(ring)
	if n < 2 {
		return
	}
	for i := 0; i < n; i++ {
		a := ring[i]
		b := ring[(i+1)%n]
		d.Line(a.X, a.Y, 0, b.X, b.Y, 0)
	}
}
