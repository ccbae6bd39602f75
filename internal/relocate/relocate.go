// Package relocate implements a bounded post-pass local search that
// slides already-placed carpets into gaps to shrink a sheet's achieved
// bounding height. It is an opt-in supplement (SPEC_FULL.md §4) grounded
// on the reference project's relocation_optimizer.py: it never changes
// which carpets are placed, only their (x, y).
package relocate

import (
	"github.com/asergeenko/evalayout/internal/geometry"
	"github.com/asergeenko/evalayout/internal/model"
)

// GridStepMM is the spacing of the relocation grid search, matching the
// reference implementation's 20mm step.
const GridStepMM = 20.0

// MaxCandidatesPerIteration bounds how many of the tallest carpets are
// considered for relocation each iteration.
const MaxCandidatesPerIteration = 3

// MinImprovementMM is the smallest height reduction worth accepting; it
// guards against churn from float noise or marginal gains.
const MinImprovementMM = 5.0

// DefaultMaxIterations bounds how many relocation sweeps are attempted
// before giving up.
const DefaultMaxIterations = 3

// Params configures a relocation run.
type Params struct {
	MinGapMM      float64
	MaxIterations int
}

func (p Params) WithDefaults() Params {
	if p.MinGapMM <= 0 {
		p.MinGapMM = model.DefaultMinGapMM
	}
	if p.MaxIterations <= 0 {
		p.MaxIterations = DefaultMaxIterations
	}
	return p
}

// Optimize tries to reduce the sheet's achieved bounding height by
// sliding the topmost carpets (by descending max-Y) into better
// positions on a GridStepMM grid, accepting a relocation only when it
// improves the sheet's overall max height by more than MinImprovementMM
// and introduces no collision. It never removes or adds carpets.
func Optimize(placed []model.PlacedCarpet, sheetW, sheetH float64, params Params) []model.PlacedCarpet {
	if len(placed) < 2 {
		return placed
	}
	params = params.WithDefaults()

	optimized := append([]model.PlacedCarpet(nil), placed...)

	for iter := 0; iter < params.MaxIterations; iter++ {
		anyImprovement := false

		order := tallestFirst(optimized)
		limit := MaxCandidatesPerIteration
		if limit > len(order) {
			limit = len(order)
		}

		for _, idx := range order[:limit] {
			candidate, improvement := tryRelocate(idx, optimized, sheetW, sheetH, params.MinGapMM)
			if candidate != nil && improvement > MinImprovementMM {
				optimized[idx] = *candidate
				anyImprovement = true
			}
		}

		if !anyImprovement {
			break
		}
	}

	return optimized
}

// tallestFirst returns carpet indices sorted by descending bounding-box
// max-Y: the carpets most likely to be relocatable into a shorter sheet.
func tallestFirst(placed []model.PlacedCarpet) []int {
	idx := make([]int, len(placed))
	for i := range idx {
		idx[i] = i
	}
	maxY := func(i int) float64 { return geometry.Bounds(placed[i].Placed).MaxY }
	for i := 1; i < len(idx); i++ {
		for j := i; j > 0 && maxY(idx[j]) > maxY(idx[j-1]); j-- {
			idx[j], idx[j-1] = idx[j-1], idx[j]
		}
	}
	return idx
}

func overallMaxHeight(placed []model.PlacedCarpet, skip int) float64 {
	max := 0.0
	for i, p := range placed {
		if i == skip {
			continue
		}
		if h := geometry.Bounds(p.Placed).MaxY; h > max {
			max = h
		}
	}
	return max
}

// tryRelocate searches a GridStepMM grid for a collision-free position
// for carpet carpetIdx that reduces the sheet's overall bounding height,
// returning the best candidate found and its improvement in mm (0 if
// none improves on the current layout).
func tryRelocate(carpetIdx int, placed []model.PlacedCarpet, sheetW, sheetH, minGap float64) (*model.PlacedCarpet, float64) {
	if carpetIdx < 0 || carpetIdx >= len(placed) {
		return nil, 0
	}

	carpet := placed[carpetIdx]
	bounds := geometry.Bounds(carpet.Placed)
	w, h := bounds.Width(), bounds.Height()

	currentMaxHeight := overallMaxHeight(placed, -1)

	index := geometry.NewIndex()
	for i, p := range placed {
		if i != carpetIdx {
			index.Add(p.Placed)
		}
	}

	var best *model.PlacedCarpet
	bestImprovement := 0.0

	for testX := 0.0; testX <= sheetW-w; testX += GridStepMM {
		for testY := 0.0; testY <= sheetH-h; testY += GridStepMM {
			dx := testX - bounds.MinX
			dy := testY - bounds.MinY
			testPoly := geometry.Translate(carpet.Placed, dx, dy)

			if !geometry.WithinSheet(testPoly, sheetW, sheetH, model.DefaultToleranceMM) {
				continue
			}
			if geometry.CollidesAgainstIndex(testPoly, index, minGap) {
				continue
			}

			otherMax := overallMaxHeight(placed, carpetIdx)
			newMaxHeight := otherMax
			if tb := geometry.Bounds(testPoly).MaxY; tb > newMaxHeight {
				newMaxHeight = tb
			}

			improvement := currentMaxHeight - newMaxHeight
			if improvement > bestImprovement {
				bestImprovement = improvement
				candidate := model.PlacedCarpet{
					Carpet:  carpet.Carpet,
					XOffset: carpet.XOffset + dx,
					YOffset: carpet.YOffset + dy,
					Angle:   carpet.Angle,
					Placed:  testPoly,
				}
				best = &candidate
			}
		}
	}

	return best, bestImprovement
}
