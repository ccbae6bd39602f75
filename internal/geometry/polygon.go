// Package geometry provides the primitive polygon operations the rest of
// the nesting engine is built on: bounds, transforms, area, collision
// with a minimum gap, and a bulk-loaded spatial index for fast obstacle
// queries.
//
// Failure semantics: operations on degenerate input (fewer than 3
// vertices, zero area) are conservative — collision tests treat them as
// a hit rather than a pass, per the "invalid input is a skip, not a
// silent success" policy the rest of the engine relies on.
package geometry

import (
	"math"

	"github.com/asergeenko/evalayout/internal/model"
)

// BBox is an axis-aligned bounding box in millimeters.
type BBox struct {
	MinX, MinY, MaxX, MaxY float64
}

// Width returns the box's extent along X.
func (b BBox) Width() float64 { return b.MaxX - b.MinX }

// Height returns the box's extent along Y.
func (b BBox) Height() float64 { return b.MaxY - b.MinY }

// Expand returns a copy of b grown by gap on every side.
func (b BBox) Expand(gap float64) BBox {
	return BBox{b.MinX - gap, b.MinY - gap, b.MaxX + gap, b.MaxY + gap}
}

// Intersects reports whether two boxes overlap or touch.
func (b BBox) Intersects(o BBox) bool {
	return b.MinX <= o.MaxX && b.MaxX >= o.MinX &&
		b.MinY <= o.MaxY && b.MaxY >= o.MinY
}

// Valid reports whether the box has non-negative extent on both axes; a
// box built from a single point (zero area) is valid.
func (b BBox) Valid() bool { return b.MaxX >= b.MinX && b.MaxY >= b.MinY }

// Bounds computes the axis-aligned bounding box of a polygon's exterior
// ring. Holes never extend a polygon's bounds so they are ignored.
func Bounds(p model.Polygon) BBox {
	if len(p.Exterior) == 0 {
		return BBox{}
	}
	b := BBox{p.Exterior[0].X, p.Exterior[0].Y, p.Exterior[0].X, p.Exterior[0].Y}
	for _, v := range p.Exterior[1:] {
		b.MinX = math.Min(b.MinX, v.X)
		b.MinY = math.Min(b.MinY, v.Y)
		b.MaxX = math.Max(b.MaxX, v.X)
		b.MaxY = math.Max(b.MaxY, v.Y)
	}
	return b
}

// Translate shifts every vertex of p (exterior and holes) by (dx, dy).
func Translate(p model.Polygon, dx, dy float64) model.Polygon {
	out := model.Polygon{
		Exterior: translateRing(p.Exterior, dx, dy),
	}
	if len(p.Holes) > 0 {
		out.Holes = make([][]model.Point2D, len(p.Holes))
		for i, h := range p.Holes {
			out.Holes[i] = translateRing(h, dx, dy)
		}
	}
	return out
}

func translateRing(ring []model.Point2D, dx, dy float64) []model.Point2D {
	out := make([]model.Point2D, len(ring))
	for i, v := range ring {
		out[i] = model.Point2D{X: v.X + dx, Y: v.Y + dy}
	}
	return out
}

// RotateAbout rotates every vertex of p by angleDeg (one of 0, 90, 180,
// 270) about pivot. Implementations special-case the four cardinal
// angles so no trigonometric rounding error accumulates.
func RotateAbout(p model.Polygon, angleDeg float64, pivot model.Point2D) model.Polygon {
	rot := cardinalRotator(angleDeg)
	out := model.Polygon{Exterior: rotateRing(p.Exterior, rot, pivot)}
	if len(p.Holes) > 0 {
		out.Holes = make([][]model.Point2D, len(p.Holes))
		for i, h := range p.Holes {
			out.Holes[i] = rotateRing(h, rot, pivot)
		}
	}
	return out
}

// RotateAboutCentroid rotates p about its own centroid, the canonical
// pivot the engine and the DXF writer must agree on (see spec §9).
func RotateAboutCentroid(p model.Polygon, angleDeg float64) model.Polygon {
	return RotateAbout(p, angleDeg, Centroid(p))
}

func rotateRing(ring []model.Point2D, rot func(x, y float64) (float64, float64), pivot model.Point2D) []model.Point2D {
	out := make([]model.Point2D, len(ring))
	for i, v := range ring {
		rx, ry := rot(v.X-pivot.X, v.Y-pivot.Y)
		out[i] = model.Point2D{X: rx + pivot.X, Y: ry + pivot.Y}
	}
	return out
}

// cardinalRotator returns a rotation function for one of the four
// rotation angles the engine supports. Angles are normalized modulo 360;
// any other angle falls back to math.Sin/Cos.
func cardinalRotator(angleDeg float64) func(x, y float64) (float64, float64) {
	norm := math.Mod(angleDeg, 360)
	if norm < 0 {
		norm += 360
	}
	switch norm {
	case 0:
		return func(x, y float64) (float64, float64) { return x, y }
	case 90:
		return func(x, y float64) (float64, float64) { return -y, x }
	case 180:
		return func(x, y float64) (float64, float64) { return -x, -y }
	case 270:
		return func(x, y float64) (float64, float64) { return y, -x }
	default:
		rad := norm * math.Pi / 180
		sin, cos := math.Sin(rad), math.Cos(rad)
		return func(x, y float64) (float64, float64) {
			return x*cos - y*sin, x*sin + y*cos
		}
	}
}

// Area returns the polygon's area: the exterior ring's area minus the
// area of each hole, via the shoelace formula.
func Area(p model.Polygon) float64 {
	area := ringArea(p.Exterior)
	for _, h := range p.Holes {
		area -= ringArea(h)
	}
	return area
}

func ringArea(ring []model.Point2D) float64 {
	n := len(ring)
	if n < 3 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += ring[i].X*ring[j].Y - ring[j].X*ring[i].Y
	}
	return math.Abs(sum) / 2
}

// Centroid returns the area-weighted centroid of the exterior ring.
// Degenerate rings (fewer than 3 vertices, zero signed area) fall back
// to the vertex average.
func Centroid(p model.Polygon) model.Point2D {
	ring := p.Exterior
	n := len(ring)
	if n == 0 {
		return model.Point2D{}
	}
	var cx, cy, signedArea float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		cross := ring[i].X*ring[j].Y - ring[j].X*ring[i].Y
		cx += (ring[i].X + ring[j].X) * cross
		cy += (ring[i].Y + ring[j].Y) * cross
		signedArea += cross
	}
	if math.Abs(signedArea) < 1e-12 {
		var sx, sy float64
		for _, v := range ring {
			sx += v.X
			sy += v.Y
		}
		return model.Point2D{X: sx / float64(n), Y: sy / float64(n)}
	}
	signedArea /= 2
	return model.Point2D{X: cx / (6 * signedArea), Y: cy / (6 * signedArea)}
}

// Valid reports whether p has at least 3 vertices and positive area.
// Self-intersection is not checked (matching the informal validity
// notion the original Python tooling used); this catches only the
// too-few-vertices and zero-area cases.
func Valid(p model.Polygon) bool {
	return len(p.Exterior) >= 3 && Area(p) > 1e-9
}

// WithinSheet reports whether every vertex of p's exterior ring lies
// within [-tol, W+tol] x [-tol, H+tol].
func WithinSheet(p model.Polygon, w, h, tol float64) bool {
	for _, v := range p.Exterior {
		if v.X < -tol || v.X > w+tol || v.Y < -tol || v.Y > h+tol {
			return false
		}
	}
	return true
}

// PointInRing reports whether pt lies inside the closed polygon ring
// using the standard ray-casting test. Points exactly on the boundary
// may resolve either way; callers needing exact boundary handling use
// Distance, not this function, to detect touching.
func PointInRing(pt model.Point2D, ring []model.Point2D) bool {
	inside := false
	n := len(ring)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		pi, pj := ring[i], ring[j]
		if (pi.Y > pt.Y) != (pj.Y > pt.Y) {
			xIntersect := (pj.X-pi.X)*(pt.Y-pi.Y)/(pj.Y-pi.Y) + pi.X
			if pt.X < xIntersect {
				inside = !inside
			}
		}
	}
	return inside
}

// PointInPolygon reports whether pt lies inside p, honoring holes: a
// point inside a hole is not considered inside the polygon.
func PointInPolygon(pt model.Point2D, p model.Polygon) bool {
	if !PointInRing(pt, p.Exterior) {
		return false
	}
	for _, h := range p.Holes {
		if PointInRing(pt, h) {
			return false
		}
	}
	return true
}
