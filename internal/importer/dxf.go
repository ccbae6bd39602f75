// Package importer reads carpet shapes from DXF files and order lists
// from Excel/CSV spreadsheets, producing the model.Carpet values the
// scheduler consumes. The core scheduling engine never parses these
// formats itself (spec §6): this package is the collaborator that does.
package importer

import (
	"fmt"
	"math"
	"sort"

	"github.com/asergeenko/evalayout/internal/model"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"
)

// segment is a line segment between two 2D points, used to chain
// disconnected LINE/ARC entities into a closed outline.
type segment struct {
	start model.Point2D
	end   model.Point2D
}

// ImportDXFPolygon reads a DXF file and returns the single largest
// closed shape it contains as a carpet polygon, normalized so its
// bounding box starts at (0, 0). One DXF unit is assumed to equal one
// millimeter (spec §6's unit convention); the caller is responsible for
// any other scaling.
func ImportDXFPolygon(path string) (model.Polygon, error) {
	drawing, err := dxf.Open(path)
	if err != nil {
		return model.Polygon{}, fmt.Errorf("opening DXF file %q: %w", path, err)
	}

	entities := drawing.Entities()
	if len(entities) == 0 {
		return model.Polygon{}, fmt.Errorf("DXF file %q contains no entities", path)
	}

	var rings [][]model.Point2D
	var segments []segment

	for _, ent := range entities {
		switch e := ent.(type) {
		case *entity.LwPolyline:
			ring := lwPolylineToRing(e)
			if len(ring) >= 3 {
				rings = append(rings, ring)
			}

		case *entity.Circle:
			rings = append(rings, circleToRing(e, 64))

		case *entity.Arc:
			pts := arcToPoints(e, 32)
			if len(pts) >= 2 {
				segments = append(segments, pointsToSegments(pts)...)
			}

		case *entity.Line:
			segments = append(segments, segment{
				start: model.Point2D{X: e.Start[0], Y: e.Start[1]},
				end:   model.Point2D{X: e.End[0], Y: e.End[1]},
			})

		default:
			// Unsupported entity types (TEXT, DIMENSION, ...) are skipped.
		}
	}

	for _, chained := range chainSegments(segments, 0.01) {
		if len(chained) >= 3 {
			rings = append(rings, chained)
		}
	}

	if len(rings) == 0 {
		return model.Polygon{}, fmt.Errorf("DXF file %q has no closed shapes", path)
	}

	sort.Slice(rings, func(i, j int) bool { return ringArea(rings[i]) > ringArea(rings[j]) })
	largest := normalizeRing(rings[0])

	return model.Polygon{Exterior: largest}, nil
}

func lwPolylineToRing(lw *entity.LwPolyline) []model.Point2D {
	var ring []model.Point2D

	for i := 0; i < len(lw.Vertices); i++ {
		v := lw.Vertices[i]
		current := model.Point2D{X: v[0], Y: v[1]}

		bulge := 0.0
		if i < len(lw.Bulges) {
			bulge = lw.Bulges[i]
		}

		if math.Abs(bulge) > 1e-9 {
			nextIdx := (i + 1) % len(lw.Vertices)
			next := model.Point2D{X: lw.Vertices[nextIdx][0], Y: lw.Vertices[nextIdx][1]}
			arcPts := bulgeArcPoints(current, next, bulge, 32)
			ring = append(ring, arcPts[:len(arcPts)-1]...)
		} else {
			ring = append(ring, current)
		}
	}

	return ring
}

// bulgeArcPoints interpolates the arc a DXF bulge factor implies between
// two polyline vertices; the bulge is the tangent of 1/4 the included
// angle.
func bulgeArcPoints(p1, p2 model.Point2D, bulge float64, numSegments int) []model.Point2D {
	mx := (p1.X + p2.X) / 2
	my := (p1.Y + p2.Y) / 2
	dx := p2.X - p1.X
	dy := p2.Y - p1.Y
	chordLen := math.Sqrt(dx*dx + dy*dy)
	if chordLen < 1e-9 {
		return []model.Point2D{p1, p2}
	}

	sagitta := math.Abs(bulge) * chordLen / 2
	radius := (chordLen*chordLen/(4*sagitta) + sagitta) / 2

	perpX := -dy / chordLen
	perpY := dx / chordLen
	d := radius - sagitta
	if bulge < 0 {
		perpX, perpY = -perpX, -perpY
	}
	cx := mx + perpX*d
	cy := my + perpY*d

	startAngle := math.Atan2(p1.Y-cy, p1.X-cx)
	endAngle := math.Atan2(p2.Y-cy, p2.X-cx)

	if bulge < 0 {
		if endAngle > startAngle {
			endAngle -= 2 * math.Pi
		}
	} else {
		if endAngle < startAngle {
			endAngle += 2 * math.Pi
		}
	}

	pts := make([]model.Point2D, numSegments+1)
	for i := 0; i <= numSegments; i++ {
		t := float64(i) / float64(numSegments)
		angle := startAngle + t*(endAngle-startAngle)
		pts[i] = model.Point2D{X: cx + radius*math.Cos(angle), Y: cy + radius*math.Sin(angle)}
	}
	return pts
}

func circleToRing(c *entity.Circle, numSegments int) []model.Point2D {
	ring := make([]model.Point2D, numSegments)
	cx, cy, r := c.Center[0], c.Center[1], c.Radius
	for i := 0; i < numSegments; i++ {
		angle := 2 * math.Pi * float64(i) / float64(numSegments)
		ring[i] = model.Point2D{X: cx + r*math.Cos(angle), Y: cy + r*math.Sin(angle)}
	}
	return ring
}

func arcToPoints(a *entity.Arc, numSegments int) []model.Point2D {
	cx, cy := a.Circle.Center[0], a.Circle.Center[1]
	r := a.Circle.Radius
	startRad := a.Angle[0] * math.Pi / 180
	endRad := a.Angle[1] * math.Pi / 180
	if endRad <= startRad {
		endRad += 2 * math.Pi
	}

	pts := make([]model.Point2D, numSegments+1)
	for i := 0; i <= numSegments; i++ {
		t := float64(i) / float64(numSegments)
		angle := startRad + t*(endRad-startRad)
		pts[i] = model.Point2D{X: cx + r*math.Cos(angle), Y: cy + r*math.Sin(angle)}
	}
	return pts
}

func pointsToSegments(pts []model.Point2D) []segment {
	segs := make([]segment, 0, len(pts)-1)
	for i := 0; i < len(pts)-1; i++ {
		segs = append(segs, segment{start: pts[i], end: pts[i+1]})
	}
	return segs
}

// chainSegments connects loose LINE/ARC segments into closed rings,
// joining endpoints within tolerance of one another.
func chainSegments(segs []segment, tolerance float64) [][]model.Point2D {
	if len(segs) == 0 {
		return nil
	}

	used := make([]bool, len(segs))
	var rings [][]model.Point2D

	for {
		startIdx := -1
		for i, u := range used {
			if !u {
				startIdx = i
				break
			}
		}
		if startIdx == -1 {
			break
		}

		chain := []model.Point2D{segs[startIdx].start, segs[startIdx].end}
		used[startIdx] = true

		changed := true
		for changed {
			changed = false
			tail := chain[len(chain)-1]
			for i, seg := range segs {
				if used[i] {
					continue
				}
				if pointsClose(tail, seg.start, tolerance) {
					chain = append(chain, seg.end)
					used[i] = true
					changed = true
					break
				}
				if pointsClose(tail, seg.end, tolerance) {
					chain = append(chain, seg.start)
					used[i] = true
					changed = true
					break
				}
			}
		}

		if len(chain) >= 3 && pointsClose(chain[0], chain[len(chain)-1], tolerance) {
			chain = chain[:len(chain)-1]
		}
		if len(chain) >= 3 {
			rings = append(rings, chain)
		}
	}

	return rings
}

func pointsClose(a, b model.Point2D, tolerance float64) bool {
	dx, dy := a.X-b.X, a.Y-b.Y
	return math.Sqrt(dx*dx+dy*dy) <= tolerance
}

func ringArea(ring []model.Point2D) float64 {
	n := len(ring)
	if n < 3 {
		return 0
	}
	var area float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		area += ring[i].X*ring[j].Y - ring[j].X*ring[i].Y
	}
	return math.Abs(area) / 2
}

func normalizeRing(ring []model.Point2D) []model.Point2D {
	if len(ring) == 0 {
		return ring
	}
	minX, minY := ring[0].X, ring[0].Y
	for _, p := range ring {
		if p.X < minX {
			minX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
	}
	out := make([]model.Point2D, len(ring))
	for i, p := range ring {
		out[i] = model.Point2D{X: p.X - minX, Y: p.Y - minY}
	}
	return out
}
