// Package placer finds the best (x, y, angle) placement for one carpet
// on one sheet given the carpets already placed there (spec §4.3).
package placer

import (
	"math"

	"github.com/asergeenko/evalayout/internal/candidate"
	"github.com/asergeenko/evalayout/internal/geometry"
	"github.com/asergeenko/evalayout/internal/model"
)

// Rotations are the only angles the engine ever tries, per spec §1/§4.3.
var Rotations = []float64{0, 90, 180, 270}

// Params bundles the knobs the placer forwards to candidate generation
// plus its own early-termination threshold.
type Params struct {
	StepSize           float64
	MaxCandidates      int
	EarlyTermThreshold float64
}

// DefaultEarlyTermThreshold: a placement scoring at or below this is
// judged "flush with the corner, unobstructed" and returned immediately
// without evaluating the remaining candidates.
const DefaultEarlyTermThreshold = 1.0

func (p Params) WithDefaults() Params {
	if p.StepSize <= 0 {
		p.StepSize = candidate.DefaultStepSize
	}
	if p.MaxCandidates <= 0 {
		p.MaxCandidates = candidate.DefaultMaxCandidates
	}
	if p.EarlyTermThreshold <= 0 {
		p.EarlyTermThreshold = DefaultEarlyTermThreshold
	}
	return p
}

// Place searches every rotation and every candidate position for the
// best collision-free placement of carpet against obstacles (a spatial
// index already built over the sheet's placed carpets). It returns false
// if no rotation yields any valid position.
func Place(carpet model.Carpet, index *geometry.Index, sheetW, sheetH, minGap float64, params Params) (model.PlacedCarpet, bool) {
	params = params.WithDefaults()

	obstacleBoxes := make([]geometry.BBox, index.Len())
	for i := 0; i < index.Len(); i++ {
		obstacleBoxes[i] = geometry.Bounds(index.Polygon(i))
	}

	var best model.PlacedCarpet
	bestScore := math.Inf(1)
	found := false

	for _, angle := range Rotations {
		rotated := geometry.RotateAboutCentroid(carpet.Polygon, angle)
		bounds := geometry.Bounds(rotated)
		pw, ph := bounds.Width(), bounds.Height()
		if pw > sheetW+1e-9 || ph > sheetH+1e-9 {
			continue
		}

		positions := candidate.Generate(pw, ph, sheetW, sheetH, obstacleBoxes, candidate.Params{
			StepSize:      params.StepSize,
			MaxCandidates: params.MaxCandidates,
		})

		for _, pos := range positions {
			dx := pos.X - bounds.MinX
			dy := pos.Y - bounds.MinY
			placed := geometry.Translate(rotated, dx, dy)

			if !geometry.WithinSheet(placed, sheetW, sheetH, model.DefaultToleranceMM) {
				continue
			}
			if geometry.CollidesAgainstIndex(placed, index, minGap) {
				continue
			}

			score := scorePlacement(pos.X, pos.Y, placed, obstacleBoxes, minGap)
			if score < bestScore {
				bestScore = score
				best = model.PlacedCarpet{
					Carpet:  carpet,
					XOffset: dx,
					YOffset: dy,
					Angle:   angle,
					Placed:  placed,
				}
				found = true
			}
			if bestScore <= params.EarlyTermThreshold {
				return best, true
			}
		}
	}

	return best, found
}

// scorePlacement ranks candidates lowest-is-best: bottom preference
// first, left preference second, and a small bonus (subtracted from the
// score) for placements that sit within minGap of an obstacle's
// bounding box. Contact with the sheet edges earns no bonus.
func scorePlacement(x, y float64, placed model.Polygon, obstacles []geometry.BBox, minGap float64) float64 {
	score := y*1000 + x

	placedBounds := geometry.Bounds(placed)
	contactBonus := 0.0
	for _, obs := range obstacles {
		gapX := math.Max(0, math.Max(obs.MinX-placedBounds.MaxX, placedBounds.MinX-obs.MaxX))
		gapY := math.Max(0, math.Max(obs.MinY-placedBounds.MaxY, placedBounds.MinY-obs.MaxY))
		gap := math.Max(gapX, gapY)
		if gap <= minGap+1e-6 {
			contactBonus += 1.0 / (1.0 + gap)
		}
	}

	return score - contactBonus
}
