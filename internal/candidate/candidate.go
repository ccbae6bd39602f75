// Package candidate produces the sorted list of placement positions
// the single-sheet placer tries for one polygon against a set of
// obstacles: a bottom-left-fill sweep refined by obstacle-relative
// positions, approximating no-fit-polygon vertices without the cost of
// constructing exact NFPs (spec §4.2).
package candidate

import (
	"sort"

	"github.com/asergeenko/evalayout/internal/geometry"
)

// DefaultStepSize is the edge-grid spacing used when the caller does not
// specify one. Smaller parts want a finer grid; callers are expected to
// pass ~3mm for small parts and ~15mm for large ones.
const DefaultStepSize = 3.0

// DefaultMaxCandidates bounds how many positions Generate ever returns.
const DefaultMaxCandidates = 2000

// cornerGridStep is the fine grid spacing used in the bottom-left corner
// seeding region; this is the empirically critical addition that raises
// achieved density over a plain bottom-left sweep.
const cornerGridStep = 1.0

// obstacleGaps are the offsets tried when generating positions relative
// to each obstacle's bounding box, approximating NFP vertices.
var obstacleGaps = []float64{0.5, 1.0, 2.0, 3.0}

// Params configures candidate generation.
type Params struct {
	StepSize      float64
	MaxCandidates int
}

// WithDefaults fills in zero-valued fields with their defaults.
func (p Params) WithDefaults() Params {
	if p.StepSize <= 0 {
		p.StepSize = DefaultStepSize
	}
	if p.MaxCandidates <= 0 {
		p.MaxCandidates = DefaultMaxCandidates
	}
	return p
}

// Position is a candidate placement for the bottom-left corner of the
// polygon's bounding box.
type Position struct {
	X, Y float64
}

// Generate returns positions for placing a polygon of size (pw, ph) —
// the already-rotated candidate's bounding-box width/height — on a sheet
// of size (W, H), biased toward tight corner packing and toward contact
// with obstacle bounding boxes. Every returned position satisfies
// 0 <= x <= W-pw and 0 <= y <= H-ph (within float tolerance); results are
// sorted bottom-left first (ascending y, then x) and deduplicated.
func Generate(pw, ph, sheetW, sheetH float64, obstacles []geometry.BBox, params Params) []Position {
	params = params.WithDefaults()
	seen := make(map[[2]int64]bool)
	var out []Position

	add := func(x, y float64) bool {
		if x < -1e-6 || y < -1e-6 || x > sheetW-pw+1e-6 || y > sheetH-ph+1e-6 {
			return false
		}
		if x < 0 {
			x = 0
		}
		if y < 0 {
			y = 0
		}
		key := [2]int64{int64(x*1000 + 0.5), int64(y*1000 + 0.5)}
		if seen[key] {
			return false
		}
		seen[key] = true
		out = append(out, Position{X: x, Y: y})
		return len(out) >= params.MaxCandidates
	}

	// 1. Corner seeding: a fine 1mm grid in the bottom-left region.
	cornerSize := min3(200, sheetW/3, sheetH/3)
	if cornerSize > 0 {
		for y := 0.0; y <= cornerSize; y += cornerGridStep {
			if add(0, y) {
				return finish(out)
			}
		}
		for x := cornerGridStep; x <= cornerSize; x += cornerGridStep {
			if add(x, 0) {
				return finish(out)
			}
		}
	}

	// 2. Edge grid along the bottom and left edges at step_size spacing.
	for x := 0.0; x <= sheetW-pw; x += params.StepSize {
		if add(x, 0) {
			return finish(out)
		}
	}
	for y := 0.0; y <= sheetH-ph; y += params.StepSize {
		if add(0, y) {
			return finish(out)
		}
	}

	// 3. Obstacle-relative positions, a cheap NFP-vertex proxy.
	for _, obs := range obstacles {
		for _, delta := range obstacleGaps {
			// Right of the obstacle, at three y-values plus a step along height.
			rightX := obs.MaxX + delta
			for _, y := range []float64{obs.MinY, obs.MaxY - ph, 0} {
				if add(rightX, y) {
					return finish(out)
				}
			}
			for y := obs.MinY; y <= obs.MaxY; y += params.StepSize {
				if add(rightX, y) {
					return finish(out)
				}
			}

			// Above the obstacle, mirrored.
			topY := obs.MaxY + delta
			for _, x := range []float64{obs.MinX, obs.MaxX - pw, 0} {
				if add(x, topY) {
					return finish(out)
				}
			}
			for x := obs.MinX; x <= obs.MaxX; x += params.StepSize {
				if add(x, topY) {
					return finish(out)
				}
			}

			// Left of and below the obstacle, when there is room.
			leftX := obs.MinX - delta - pw
			if leftX >= 0 {
				if add(leftX, obs.MinY) {
					return finish(out)
				}
			}
			belowY := obs.MinY - delta - ph
			if belowY >= 0 {
				if add(obs.MinX, belowY) {
					return finish(out)
				}
			}
		}
	}

	return finish(out)
}

func finish(positions []Position) []Position {
	sort.Slice(positions, func(i, j int) bool {
		if positions[i].Y != positions[j].Y {
			return positions[i].Y < positions[j].Y
		}
		return positions[i].X < positions[j].X
	})
	return positions
}

func min3(a, b, c float64) float64 {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
