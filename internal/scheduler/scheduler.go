// Package scheduler implements the inventory scheduler (spec §4.5) and
// the layout record builder (spec §4.6): it partitions carpets by
// color, consumes sheet inventory first-fit, and emits ordered Layout
// records plus the carpets that could not be placed.
package scheduler

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/asergeenko/evalayout/internal/filler"
	"github.com/asergeenko/evalayout/internal/geometry"
	"github.com/asergeenko/evalayout/internal/model"
	"github.com/asergeenko/evalayout/internal/relocate"
)

// Params configures Schedule. EnableRelocate, when set, runs the
// post-pass relocation optimizer on every freshly emitted layout before
// it is returned. Off by default, mirroring the reference
// implementation's opt-in usage.
type Params struct {
	FillerParams   filler.Params
	RelocateParams relocate.Params
	EnableRelocate bool
}

// Schedule places carpets onto sheet inventory per spec §4.5, returning
// the emitted layouts in ascending sheet_number order and the carpets
// that never found a home. It fails fast (returns a non-nil error)
// only for malformed input; placement failure is never an error, it is
// reported through the returned unplaced slice.
func Schedule(carpets []model.Carpet, sheets []model.SheetSpec, opts model.Options, params Params) ([]model.Layout, []model.Carpet, error) {
	if err := validateCarpets(carpets); err != nil {
		return nil, nil, err
	}
	if err := validateSheets(sheets); err != nil {
		return nil, nil, err
	}

	opts = opts.WithDefaults()
	params.FillerParams.MinGapMM = opts.MinGapMM
	params.FillerParams.HighFillThreshold = opts.HighFillThreshold

	if len(carpets) == 0 {
		return nil, nil, nil
	}

	sheetsCopy := append([]model.SheetSpec(nil), sheets...)
	excluded := make([]bool, len(sheetsCopy))

	var pending1, pending2 []model.Carpet
	for _, c := range carpets {
		switch c.Priority {
		case model.PriorityBackfill:
			pending2 = append(pending2, c)
		default:
			pending1 = append(pending1, c)
		}
	}

	placedIDs := make(map[int]bool)
	orderSheets := make(map[string]map[int]bool)
	var layouts []model.Layout
	sheetNumber := 1

	report := func(pct int, status string) {
		if opts.ProgressCallback != nil {
			opts.ProgressCallback(pct, status)
		}
	}

	checkRange := func(orderID string, candidateSheet int) bool {
		if opts.MaxSheetRangePerOrder == nil {
			return true
		}
		touched := orderSheets[orderID]
		minS, maxS := candidateSheet, candidateSheet
		for s := range touched {
			if s < minS {
				minS = s
			}
			if s > maxS {
				maxS = s
			}
		}
		return maxS-minS+1 <= *opts.MaxSheetRangePerOrder
	}

	recordOrderSheets := func(orderID string, sheetNum int) {
		if orderSheets[orderID] == nil {
			orderSheets[orderID] = make(map[int]bool)
		}
		orderSheets[orderID][sheetNum] = true
	}

	// Phase A: fill fresh sheets with priority-1 carpets until none of
	// the remaining inventory can place any of them.
	for len(pending1) > 0 {
		sheetIdx := firstAvailableMatchingSheet(sheetsCopy, excluded, pending1)
		if sheetIdx < 0 {
			break
		}
		spec := sheetsCopy[sheetIdx]

		colorCarpets, otherColor := splitByColor(pending1, spec.Color)

		newly, stillPendingColor := filler.Fill(
			colorCarpets, spec.WidthMM(), spec.HeightMM(), spec.Color, sheetNumber,
			nil, model.PriorityMustPlace, checkRange, params.FillerParams,
		)
		newly = dedupeAgainst(newly, placedIDs)

		if len(newly) == 0 {
			excluded[sheetIdx] = true
			continue
		}

		for _, p := range newly {
			placedIDs[p.Carpet.CarpetID] = true
			recordOrderSheets(p.Carpet.OrderID, sheetNumber)
		}

		if params.EnableRelocate {
			newly = relocate.Optimize(newly, spec.WidthMM(), spec.HeightMM(), params.RelocateParams)
		}

		layout := buildLayout(sheetNumber, spec, newly)
		layouts = append(layouts, layout)

		sheetsCopy[sheetIdx].Used++
		sheetNumber++
		pending1 = append(append([]model.Carpet(nil), otherColor...), stillPendingColor...)

		report(int(100 * float64(len(placedIDs)) / float64(len(carpets))), "sheet filled")
	}

	report(50, "phase A complete")

	// Phase B sweep: backfill priority-2 carpets into already-emitted
	// layouts, visited in ascending usage_percent order.
	order := make([]int, len(layouts))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool {
		return layouts[order[i]].UsagePercent < layouts[order[j]].UsagePercent
	})

	for _, li := range order {
		layout := &layouts[li]
		if len(pending2) == 0 {
			break
		}
		if filler.SkipBackfill(layout.UsagePercent, opts.HighFillThreshold) {
			continue
		}

		colorCarpets, otherColor := splitByColor(pending2, layout.Color)
		if len(colorCarpets) == 0 {
			continue
		}

		newly, stillPendingColor := filler.Fill(
			colorCarpets, layout.WidthMM, layout.HeightMM, layout.Color, layout.SheetNumber,
			layout.Placed, model.PriorityBackfill, checkRange, params.FillerParams,
		)
		newly = dedupeAgainst(newly, placedIDs)

		if len(newly) > 0 {
			for _, p := range newly {
				placedIDs[p.Carpet.CarpetID] = true
				recordOrderSheets(p.Carpet.OrderID, layout.SheetNumber)
			}
			layout.Placed = append(layout.Placed, newly...)
			layout.UsagePercent = filler.UsagePercent(layout.Placed, layout.WidthMM, layout.HeightMM)
			layout.OrderIDs = collectOrderIDs(layout.Placed)
		}

		pending2 = append(append([]model.Carpet(nil), otherColor...), stillPendingColor...)
	}

	report(100, "scheduling complete")

	unplaced := append(append([]model.Carpet(nil), pending1...), pending2...)
	return layouts, unplaced, nil
}

func firstAvailableMatchingSheet(sheets []model.SheetSpec, excluded []bool, pending []model.Carpet) int {
	colorsPending := make(map[string]bool)
	for _, c := range pending {
		colorsPending[c.Color] = true
	}
	for i, s := range sheets {
		if excluded[i] || s.Available() <= 0 {
			continue
		}
		if colorsPending[s.Color] {
			return i
		}
	}
	return -1
}

func splitByColor(carpets []model.Carpet, color string) (matching, other []model.Carpet) {
	for _, c := range carpets {
		if c.Color == color {
			matching = append(matching, c)
		} else {
			other = append(other, c)
		}
	}
	return matching, other
}

func dedupeAgainst(placed []model.PlacedCarpet, seen map[int]bool) []model.PlacedCarpet {
	out := placed[:0]
	for _, p := range placed {
		if seen[p.Carpet.CarpetID] {
			slog.Warn("duplicate carpet placement suppressed", "carpet_id", p.Carpet.CarpetID)
			continue
		}
		out = append(out, p)
	}
	return out
}

func buildLayout(sheetNumber int, spec model.SheetSpec, placed []model.PlacedCarpet) model.Layout {
	w, h := spec.WidthMM(), spec.HeightMM()
	return model.Layout{
		SheetNumber:  sheetNumber,
		SheetName:    spec.Name,
		WidthMM:      w,
		HeightMM:     h,
		Color:        spec.Color,
		Placed:       placed,
		UsagePercent: filler.UsagePercent(placed, w, h),
		OrderIDs:     collectOrderIDs(placed),
	}
}

func collectOrderIDs(placed []model.PlacedCarpet) []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range placed {
		if p.Carpet.OrderID == "" || seen[p.Carpet.OrderID] {
			continue
		}
		seen[p.Carpet.OrderID] = true
		out = append(out, p.Carpet.OrderID)
	}
	sort.Strings(out)
	return out
}

func validateCarpets(carpets []model.Carpet) error {
	for _, c := range carpets {
		if !geometry.Valid(c.Polygon) {
			return &model.ValidationError{CarpetID: c.CarpetID, Reason: "polygon has fewer than 3 vertices or non-positive area"}
		}
	}
	return nil
}

func validateSheets(sheets []model.SheetSpec) error {
	for _, s := range sheets {
		if s.WidthCM <= 0 || s.HeightCM <= 0 {
			return &model.SheetError{SheetName: s.Name, Reason: "width and height must be positive"}
		}
		if s.Count < 0 {
			return &model.SheetError{SheetName: s.Name, Reason: fmt.Sprintf("count must be non-negative, got %d", s.Count)}
		}
	}
	return nil
}
