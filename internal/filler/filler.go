// Package filler greedily fills one sheet with carpets of a matching
// color, honoring per-order sheet-range constraints and a two-phase
// priority split between must-place and backfill carpets (spec §4.4).
package filler

import (
	"sort"

	"github.com/asergeenko/evalayout/internal/geometry"
	"github.com/asergeenko/evalayout/internal/model"
	"github.com/asergeenko/evalayout/internal/placer"
)

// DefaultHighFillThreshold mirrors model.DefaultHighFillThreshold; kept
// as its own named constant here since the filler is what consults it.
const DefaultHighFillThreshold = model.DefaultHighFillThreshold

// OrderRangeChecker reports whether assigning orderID to sheetNumber
// would keep that order's sheet span within its configured range. The
// scheduler owns the per-order sheet-number bookkeeping; the filler
// only asks.
type OrderRangeChecker func(orderID string, sheetNumber int) bool

// Params bundles the knobs the filler forwards to the placer plus its
// own phase-B gating threshold.
type Params struct {
	MinGapMM          float64
	PlacerParams      placer.Params
	HighFillThreshold float64
}

func (p Params) WithDefaults() Params {
	if p.MinGapMM <= 0 {
		p.MinGapMM = model.DefaultMinGapMM
	}
	if p.HighFillThreshold <= 0 {
		p.HighFillThreshold = DefaultHighFillThreshold
	}
	return p
}

// Fill attempts to place carpets of color sheetColor onto a sheet of
// size (sheetW, sheetH), given the obstacles already on it (carpets
// placed by a previous call, e.g. across Phase A and Phase B, or
// priority-2 backfill onto an already-emitted layout). sheetNumber
// identifies the prospective sheet for order-range checks.
//
// It returns the carpets newly placed (in placement order) and the
// carpets that still did not fit, including any of a different color
// or priority passed in by mistake — the caller is expected to only
// pass matching carpets, per spec §4.4's "iterate only carpets whose
// color equals sheet_color".
func Fill(
	carpets []model.Carpet,
	sheetW, sheetH float64,
	sheetColor string,
	sheetNumber int,
	already []model.PlacedCarpet,
	priority model.Priority,
	checkRange OrderRangeChecker,
	params Params,
) (newlyPlaced []model.PlacedCarpet, stillPending []model.Carpet) {
	params = params.WithDefaults()

	pending := make([]model.Carpet, 0, len(carpets))
	for _, c := range carpets {
		if c.Color == sheetColor && c.Priority == priority {
			pending = append(pending, c)
		} else {
			stillPending = append(stillPending, c)
		}
	}
	sortByAreaThenComplexity(pending)

	index := geometry.NewIndex()
	for _, pc := range already {
		index.Add(pc.Placed)
	}

	for _, c := range pending {
		if checkRange != nil && !checkRange(c.OrderID, sheetNumber) {
			stillPending = append(stillPending, c)
			continue
		}

		placed, ok := placer.Place(c, index, sheetW, sheetH, params.MinGapMM, params.PlacerParams)
		if !ok {
			stillPending = append(stillPending, c)
			continue
		}

		newlyPlaced = append(newlyPlaced, placed)
		index.Add(placed.Placed)
	}

	return newlyPlaced, stillPending
}

// UsagePercent computes the fraction of sheet area covered by placed
// carpets, used to gate Phase B per sheet.
func UsagePercent(placed []model.PlacedCarpet, sheetW, sheetH float64) float64 {
	if sheetW <= 0 || sheetH <= 0 {
		return 0
	}
	total := 0.0
	for _, p := range placed {
		total += geometry.Area(p.Placed)
	}
	return total / (sheetW * sheetH) * 100
}

// SkipBackfill reports whether Phase B should be skipped for a sheet
// already at usagePercent, per the high-fill threshold.
func SkipBackfill(usagePercent float64, threshold float64) bool {
	if threshold <= 0 {
		threshold = DefaultHighFillThreshold
	}
	return usagePercent > threshold
}

// sortByAreaThenComplexity orders pending carpets descending by
// bounding-box area, breaking ties by descending complexity score —
// vertex_count*100 + (1-convexHullRatio)*500 — so that large, awkward
// shapes are tried earliest while free space is most generous
// (SPEC_FULL.md §4, grounded on polygonal_packing.py's sort key minus
// its area term, which would rank the fuller, more convex shape first
// on a bounding-box tie).
func sortByAreaThenComplexity(carpets []model.Carpet) {
	sort.SliceStable(carpets, func(i, j int) bool {
		bi := geometry.Bounds(carpets[i].Polygon)
		bj := geometry.Bounds(carpets[j].Polygon)
		ai := bi.Width() * bi.Height()
		aj := bj.Width() * bj.Height()
		if ai != aj {
			return ai > aj
		}
		return complexityScore(carpets[i].Polygon) > complexityScore(carpets[j].Polygon)
	})
}

func complexityScore(p model.Polygon) float64 {
	vertexCount := float64(len(p.Exterior))
	convexRatio := geometry.ConvexHullRatio(p)
	return vertexCount*100 + (1-convexRatio)*500
}
