package geometry

import (
	"math"

	"github.com/asergeenko/evalayout/internal/model"
)

// Intersects reports whether a and b share any interior area: either
// ring crosses the other, or one ring contains a vertex of the other.
// Boundary-only contact (no shared area) is not an intersection — that
// case is what the min_gap check in Collides exists to catch.
func Intersects(a, b model.Polygon) bool {
	if !Bounds(a).Intersects(Bounds(b)) {
		return false
	}
	if ringsCross(a.Exterior, b.Exterior) {
		return true
	}
	// No edge crossing: either disjoint or one fully contains the other.
	if len(a.Exterior) > 0 && PointInPolygon(a.Exterior[0], b) {
		return true
	}
	if len(b.Exterior) > 0 && PointInPolygon(b.Exterior[0], a) {
		return true
	}
	return false
}

// ringsCross reports whether any edge of ring1 properly crosses any edge
// of ring2 (a transversal intersection, not a shared endpoint).
func ringsCross(ring1, ring2 []model.Point2D) bool {
	n1, n2 := len(ring1), len(ring2)
	if n1 < 2 || n2 < 2 {
		return false
	}
	for i := 0; i < n1; i++ {
		a1, a2 := ring1[i], ring1[(i+1)%n1]
		for j := 0; j < n2; j++ {
			b1, b2 := ring2[j], ring2[(j+1)%n2]
			if segmentsProperlyIntersect(a1, a2, b1, b2) {
				return true
			}
		}
	}
	return false
}

func orientation(p, q, r model.Point2D) float64 {
	return (q.X-p.X)*(r.Y-p.Y) - (q.Y-p.Y)*(r.X-p.X)
}

const orientationEps = 1e-9

func onSegment(p, q, r model.Point2D) bool {
	return math.Min(p.X, r.X)-orientationEps <= q.X && q.X <= math.Max(p.X, r.X)+orientationEps &&
		math.Min(p.Y, r.Y)-orientationEps <= q.Y && q.Y <= math.Max(p.Y, r.Y)+orientationEps
}

// segmentsProperlyIntersect reports whether segments p1p2 and p3p4 cross
// with a genuine transversal intersection (strict overlap of interiors),
// using the standard orientation test. Shared endpoints, a vertex lying
// on the other segment, and collinear overlap are boundary contact, not
// a crossing; Distance reports those as 0.
func segmentsProperlyIntersect(p1, p2, p3, p4 model.Point2D) bool {
	o1 := orientation(p1, p2, p3)
	o2 := orientation(p1, p2, p4)
	o3 := orientation(p3, p4, p1)
	o4 := orientation(p3, p4, p2)

	return ((o1 > orientationEps) != (o2 > orientationEps)) && ((o1 < -orientationEps) != (o2 < -orientationEps)) &&
		((o3 > orientationEps) != (o4 > orientationEps)) && ((o3 < -orientationEps) != (o4 < -orientationEps))
}

// Distance returns the minimum Euclidean distance between the boundaries
// of a and b, or 0 if either contains the other or they intersect.
func Distance(a, b model.Polygon) float64 {
	if Intersects(a, b) {
		return 0
	}
	min := math.Inf(1)
	for _, r1 := range allRings(a) {
		for _, r2 := range allRings(b) {
			if d := ringDistance(r1, r2); d < min {
				min = d
			}
		}
	}
	if math.IsInf(min, 1) {
		return 0
	}
	return min
}

func allRings(p model.Polygon) [][]model.Point2D {
	rings := make([][]model.Point2D, 0, len(p.Holes)+1)
	rings = append(rings, p.Exterior)
	rings = append(rings, p.Holes...)
	return rings
}

func ringDistance(r1, r2 []model.Point2D) float64 {
	n1, n2 := len(r1), len(r2)
	if n1 == 0 || n2 == 0 {
		return math.Inf(1)
	}
	min := math.Inf(1)
	for i := 0; i < n1; i++ {
		a1, a2 := r1[i], r1[(i+1)%n1]
		for j := 0; j < n2; j++ {
			b1, b2 := r2[j], r2[(j+1)%n2]
			if d := segmentDistance(a1, a2, b1, b2); d < min {
				min = d
			}
		}
	}
	return min
}

func segmentDistance(p1, p2, p3, p4 model.Point2D) float64 {
	if segmentsProperlyIntersect(p1, p2, p3, p4) {
		return 0
	}
	return math.Min(
		math.Min(pointSegmentDistance(p1, p3, p4), pointSegmentDistance(p2, p3, p4)),
		math.Min(pointSegmentDistance(p3, p1, p2), pointSegmentDistance(p4, p1, p2)),
	)
}

func pointSegmentDistance(p, a, b model.Point2D) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	lenSq := dx*dx + dy*dy
	if lenSq < 1e-18 {
		return dist(p, a)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lenSq
	t = math.Max(0, math.Min(1, t))
	proj := model.Point2D{X: a.X + t*dx, Y: a.Y + t*dy}
	return dist(p, proj)
}

func dist(p, q model.Point2D) float64 {
	dx, dy := p.X-q.X, p.Y-q.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Collides reports whether a and b may not coexist on a sheet: either
// they share interior area, or their boundaries are closer than minGap.
// A minGap of 0 still treats exact boundary touching (distance == 0
// with no shared area) as fine — Intersects already caught real overlap.
func Collides(a, b model.Polygon, minGap float64) bool {
	if !Valid(a) || !Valid(b) {
		// Degenerate input: conservative policy treats it as a collision so
		// the caller skips the position rather than accepting a bad placement.
		return true
	}
	if Intersects(a, b) {
		return true
	}
	return Distance(a, b) < minGap
}
