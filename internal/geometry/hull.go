package geometry

import (
	"sort"

	"github.com/asergeenko/evalayout/internal/model"
)

// ConvexHull returns the convex hull of a set of points via Andrew's
// monotone chain algorithm, used by the sheet filler to score a
// carpet's shape complexity (how far it is from convex).
func ConvexHull(points []model.Point2D) []model.Point2D {
	pts := append([]model.Point2D(nil), points...)
	sort.Slice(pts, func(i, j int) bool {
		if pts[i].X != pts[j].X {
			return pts[i].X < pts[j].X
		}
		return pts[i].Y < pts[j].Y
	})
	pts = dedupe(pts)
	n := len(pts)
	if n < 3 {
		return pts
	}

	cross := func(o, a, b model.Point2D) float64 {
		return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
	}

	lower := make([]model.Point2D, 0, n)
	for _, p := range pts {
		for len(lower) >= 2 && cross(lower[len(lower)-2], lower[len(lower)-1], p) <= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, p)
	}

	upper := make([]model.Point2D, 0, n)
	for i := n - 1; i >= 0; i-- {
		p := pts[i]
		for len(upper) >= 2 && cross(upper[len(upper)-2], upper[len(upper)-1], p) <= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, p)
	}

	return append(lower[:len(lower)-1], upper[:len(upper)-1]...)
}

func dedupe(pts []model.Point2D) []model.Point2D {
	out := pts[:0]
	for i, p := range pts {
		if i == 0 || p != pts[i-1] {
			out = append(out, p)
		}
	}
	return out
}

// ConvexHullRatio returns the polygon's area divided by its convex
// hull's area — 1.0 for a convex shape, smaller for increasingly
// concave ones. Returns 1.0 for degenerate input to avoid division by
// zero skewing downstream scoring.
func ConvexHullRatio(p model.Polygon) float64 {
	hull := ConvexHull(p.Exterior)
	hullArea := ringArea(hull)
	if hullArea < 1e-9 {
		return 1.0
	}
	return Area(p) / hullArea
}
