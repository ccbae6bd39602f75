package geometry

import (
	"math"
	"sort"

	"github.com/asergeenko/evalayout/internal/model"
)

// leafCapacity bounds how many polygons share a leaf node's bounding box.
const leafCapacity = 8

type leaf struct {
	box     BBox
	indices []int
}

// Index is a bulk-loaded, sort-tile-recursive bounding-volume hierarchy
// over a set of obstacle polygons. It supports fast candidate queries by
// bounding box; callers still run an exact collision test on whatever
// Query returns.
//
// The index tracks how many polygons it held at the last build so
// repeated queries against an unchanged obstacle set (the common case
// while probing many candidate positions for one carpet) skip rebuilding
// entirely.
type Index struct {
	polys      []model.Polygon
	boxes      []BBox
	leaves     []leaf
	root       BBox
	builtCount int
}

// NewIndex returns an empty spatial index.
func NewIndex() *Index {
	return &Index{}
}

// Add appends an obstacle polygon. The index is not rebuilt until the
// next EnsureBuilt/Query call.
func (ix *Index) Add(p model.Polygon) {
	ix.polys = append(ix.polys, p)
	ix.boxes = append(ix.boxes, Bounds(p))
}

// Len returns the number of obstacle polygons currently indexed.
func (ix *Index) Len() int { return len(ix.polys) }

// Polygon returns the obstacle polygon at idx, as returned by Query.
func (ix *Index) Polygon(idx int) model.Polygon { return ix.polys[idx] }

// EnsureBuilt rebuilds the STR layout if the obstacle set has grown
// since the last build; a cache keyed on the obstacle count makes this
// a no-op when nothing changed since the last query.
func (ix *Index) EnsureBuilt() {
	if ix.builtCount == len(ix.polys) {
		return
	}
	ix.build()
}

func (ix *Index) build() {
	n := len(ix.polys)
	if n == 0 {
		ix.leaves = nil
		ix.root = BBox{}
		ix.builtCount = 0
		return
	}

	type entry struct {
		idx int
		cx  float64
		cy  float64
	}
	entries := make([]entry, n)
	for i, b := range ix.boxes {
		entries[i] = entry{idx: i, cx: (b.MinX + b.MaxX) / 2, cy: (b.MinY + b.MaxY) / 2}
	}

	numLeaves := int(math.Ceil(float64(n) / float64(leafCapacity)))
	numSlices := int(math.Ceil(math.Sqrt(float64(numLeaves))))
	sliceSize := int(math.Ceil(float64(n) / float64(numSlices)))

	sort.Slice(entries, func(i, j int) bool { return entries[i].cx < entries[j].cx })

	var leaves []leaf
	for s := 0; s < len(entries); s += sliceSize {
		end := s + sliceSize
		if end > len(entries) {
			end = len(entries)
		}
		slice := entries[s:end]
		sort.Slice(slice, func(i, j int) bool { return slice[i].cy < slice[j].cy })

		for l := 0; l < len(slice); l += leafCapacity {
			lend := l + leafCapacity
			if lend > len(slice) {
				lend = len(slice)
			}
			group := slice[l:lend]
			indices := make([]int, len(group))
			box := ix.boxes[group[0].idx]
			for gi, e := range group {
				indices[gi] = e.idx
				box = unionBBox(box, ix.boxes[e.idx])
			}
			leaves = append(leaves, leaf{box: box, indices: indices})
		}
	}

	root := leaves[0].box
	for _, lf := range leaves[1:] {
		root = unionBBox(root, lf.box)
	}

	ix.leaves = leaves
	ix.root = root
	ix.builtCount = n
}

func unionBBox(a, b BBox) BBox {
	return BBox{
		MinX: math.Min(a.MinX, b.MinX),
		MinY: math.Min(a.MinY, b.MinY),
		MaxX: math.Max(a.MaxX, b.MaxX),
		MaxY: math.Max(a.MaxY, b.MaxY),
	}
}

// Query returns the indices of obstacles whose leaf node's bounding box
// intersects the query box. The result is a candidate set: the caller
// must still run an exact test (Collides) on each.
func (ix *Index) Query(box BBox) []int {
	ix.EnsureBuilt()
	if len(ix.leaves) == 0 || !box.Intersects(ix.root) {
		return nil
	}
	var out []int
	for _, lf := range ix.leaves {
		if lf.box.Intersects(box) {
			out = append(out, lf.indices...)
		}
	}
	return out
}

// CollidesAgainstIndex is the spatial-index-accelerated variant of
// Collides: it queries the index with p's bounds enlarged by minGap,
// AABB-filters the candidates, and only then runs the exact polygon
// test, per the fast-collision-path contract in spec §4.1.
func CollidesAgainstIndex(p model.Polygon, ix *Index, minGap float64) bool {
	pBox := Bounds(p).Expand(minGap)
	for _, idx := range ix.Query(pBox) {
		obstacleBox := ix.boxes[idx]
		if !pBox.Intersects(obstacleBox) {
			continue
		}
		if Collides(p, ix.polys[idx], minGap) {
			return true
		}
	}
	return false
}
