package scheduler

import (
	"testing"

	"github.com/asergeenko/evalayout/internal/geometry"
	"github.com/asergeenko/evalayout/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rect(id int, w, h float64, color, orderID string, priority model.Priority) model.Carpet {
	return model.Carpet{
		CarpetID: id,
		Polygon: model.Polygon{Exterior: []model.Point2D{
			{X: 0, Y: 0}, {X: w, Y: 0}, {X: w, Y: h}, {X: 0, Y: h},
		}},
		Color:    color,
		OrderID:  orderID,
		Priority: priority,
	}
}

func sheet(name string, wCM, hCM float64, color string, count int) model.SheetSpec {
	return model.SheetSpec{Name: name, WidthCM: wCM, HeightCM: hCM, Color: color, Count: count}
}

// Scenario 1: single fit.
func TestScheduleSingleFit(t *testing.T) {
	sheets := []model.SheetSpec{sheet("s1", 140, 200, "black", 1)}
	carpets := []model.Carpet{rect(1, 1000, 500, "black", "o1", model.PriorityMustPlace)}

	layouts, unplaced, err := Schedule(carpets, sheets, model.Options{}, Params{})
	require.NoError(t, err)
	require.Len(t, layouts, 1)
	assert.Empty(t, unplaced)

	l := layouts[0]
	require.Len(t, l.Placed, 1)
	p := l.Placed[0]
	assert.InDelta(t, 0, p.XOffset, 1e-6)
	assert.InDelta(t, 0, p.YOffset, 1e-6)
	assert.InDelta(t, 0, p.Angle, 1e-9)
	assert.InDelta(t, 17.857, l.UsagePercent, 0.5)
}

// Scenario 2: two side-by-side.
func TestScheduleTwoSideBySide(t *testing.T) {
	sheets := []model.SheetSpec{sheet("s1", 100, 100, "black", 1)}
	carpets := []model.Carpet{
		rect(1, 400, 400, "black", "o1", model.PriorityMustPlace),
		rect(2, 400, 400, "black", "o2", model.PriorityMustPlace),
	}

	layouts, unplaced, err := Schedule(carpets, sheets, model.Options{}, Params{})
	require.NoError(t, err)
	require.Len(t, layouts, 1)
	assert.Empty(t, unplaced)
	require.Len(t, layouts[0].Placed, 2)

	a, b := layouts[0].Placed[0], layouts[0].Placed[1]
	assert.GreaterOrEqual(t, geometry.Distance(a.Placed, b.Placed), 2.0-1e-6)
	assert.InDelta(t, 32.0, layouts[0].UsagePercent, 2.0)
}

// Scenario 3: color segregation.
func TestScheduleColorSegregation(t *testing.T) {
	sheets := []model.SheetSpec{
		sheet("black-sheet", 100, 100, "black", 1),
		sheet("gray-sheet", 100, 100, "gray", 1),
	}
	carpets := []model.Carpet{
		rect(1, 400, 400, "black", "o1", model.PriorityMustPlace),
		rect(2, 400, 400, "gray", "o2", model.PriorityMustPlace),
	}

	layouts, unplaced, err := Schedule(carpets, sheets, model.Options{}, Params{})
	require.NoError(t, err)
	require.Len(t, layouts, 2)
	assert.Empty(t, unplaced)

	for _, l := range layouts {
		for _, p := range l.Placed {
			assert.Equal(t, l.Color, p.Carpet.Color)
		}
	}
}

// Scenario 4: order-range constraint.
func TestScheduleOrderRangeConstraint(t *testing.T) {
	sheets := []model.SheetSpec{sheet("s1", 100, 100, "black", 10)}
	var carpets []model.Carpet
	for i := 1; i <= 6; i++ {
		carpets = append(carpets, rect(i, 600, 600, "black", "A", model.PriorityMustPlace))
	}
	maxRange := 2
	opts := model.Options{MaxSheetRangePerOrder: &maxRange}

	layouts, unplaced, err := Schedule(carpets, sheets, opts, Params{})
	require.NoError(t, err)
	assert.Len(t, layouts, 2)
	assert.Len(t, unplaced, 4)
}

// Scenario 5: priority-2 backfill.
func TestSchedulePriority2Backfill(t *testing.T) {
	sheets := []model.SheetSpec{sheet("s1", 100, 100, "black", 1)}
	carpets := []model.Carpet{rect(1, 700, 700, "black", "o1", model.PriorityMustPlace)}
	for i := 2; i <= 11; i++ {
		carpets = append(carpets, rect(i, 100, 100, "black", "o2", model.PriorityBackfill))
	}

	layouts, _, err := Schedule(carpets, sheets, model.Options{}, Params{})
	require.NoError(t, err)
	require.Len(t, layouts, 1)

	var p1Found bool
	backfillCount := 0
	for _, p := range layouts[0].Placed {
		if p.Carpet.Priority == model.PriorityMustPlace {
			p1Found = true
		} else {
			backfillCount++
		}
	}
	assert.True(t, p1Found)
	assert.Greater(t, backfillCount, 0)
}

// Boundary: exact sheet size fills at 100%.
func TestScheduleExactSheetSizeYields100Percent(t *testing.T) {
	sheets := []model.SheetSpec{sheet("s1", 100, 60, "black", 1)}
	carpets := []model.Carpet{rect(1, 1000, 600, "black", "o1", model.PriorityMustPlace)}

	layouts, unplaced, err := Schedule(carpets, sheets, model.Options{}, Params{})
	require.NoError(t, err)
	require.Len(t, layouts, 1)
	assert.Empty(t, unplaced)
	assert.InDelta(t, 100.0, layouts[0].UsagePercent, 0.5)
}

// Boundary: too-large carpet is unplaceable.
func TestScheduleTooLargeCarpetIsUnplaced(t *testing.T) {
	sheets := []model.SheetSpec{sheet("s1", 100, 60, "black", 3)}
	carpets := []model.Carpet{rect(1, 5000, 5000, "black", "o1", model.PriorityMustPlace)}

	layouts, unplaced, err := Schedule(carpets, sheets, model.Options{}, Params{})
	require.NoError(t, err)
	assert.Empty(t, layouts)
	require.Len(t, unplaced, 1)
	assert.Equal(t, 1, unplaced[0].CarpetID)
}

// Boundary: empty carpet list.
func TestScheduleEmptyCarpetListConsumesNoInventory(t *testing.T) {
	sheets := []model.SheetSpec{sheet("s1", 100, 60, "black", 3)}

	layouts, unplaced, err := Schedule(nil, sheets, model.Options{}, Params{})
	require.NoError(t, err)
	assert.Empty(t, layouts)
	assert.Empty(t, unplaced)
	assert.Equal(t, 0, sheets[0].Used)
}

// T5: placed + unplaced carpet id sets partition the input exactly.
func TestScheduleConservesCarpetIDs(t *testing.T) {
	sheets := []model.SheetSpec{sheet("s1", 100, 100, "black", 2)}
	carpets := []model.Carpet{
		rect(1, 400, 400, "black", "o1", model.PriorityMustPlace),
		rect(2, 400, 400, "black", "o2", model.PriorityMustPlace),
		rect(3, 5000, 5000, "black", "o3", model.PriorityMustPlace),
	}

	layouts, unplaced, err := Schedule(carpets, sheets, model.Options{}, Params{})
	require.NoError(t, err)

	seen := map[int]bool{}
	for _, l := range layouts {
		for _, p := range l.Placed {
			assert.False(t, seen[p.Carpet.CarpetID], "carpet placed twice")
			seen[p.Carpet.CarpetID] = true
		}
	}
	for _, c := range unplaced {
		assert.False(t, seen[c.CarpetID])
		seen[c.CarpetID] = true
	}
	assert.Len(t, seen, len(carpets))
}

// T6: sheet-stock respect.
func TestScheduleNeverExceedsSheetCount(t *testing.T) {
	sheets := []model.SheetSpec{sheet("s1", 100, 100, "black", 1)}
	carpets := []model.Carpet{
		rect(1, 900, 900, "black", "o1", model.PriorityMustPlace),
		rect(2, 900, 900, "black", "o2", model.PriorityMustPlace),
	}

	layouts, unplaced, err := Schedule(carpets, sheets, model.Options{}, Params{})
	require.NoError(t, err)
	assert.Len(t, layouts, 1)
	assert.Len(t, unplaced, 1)
}

func TestScheduleRejectsInvalidPolygon(t *testing.T) {
	sheets := []model.SheetSpec{sheet("s1", 100, 100, "black", 1)}
	carpets := []model.Carpet{
		{CarpetID: 1, Color: "black", Polygon: model.Polygon{Exterior: []model.Point2D{{X: 0, Y: 0}, {X: 1, Y: 1}}}},
	}

	_, _, err := Schedule(carpets, sheets, model.Options{}, Params{})
	require.Error(t, err)
	var valErr *model.ValidationError
	assert.ErrorAs(t, err, &valErr)
}

func TestScheduleRejectsBadSheetSpec(t *testing.T) {
	sheets := []model.SheetSpec{sheet("bad", -10, 100, "black", 1)}
	carpets := []model.Carpet{rect(1, 50, 50, "black", "o1", model.PriorityMustPlace)}

	_, _, err := Schedule(carpets, sheets, model.Options{}, Params{})
	require.Error(t, err)
	var sheetErr *model.SheetError
	assert.ErrorAs(t, err, &sheetErr)
}

func TestScheduleIsDeterministic(t *testing.T) {
	sheets := func() []model.SheetSpec { return []model.SheetSpec{sheet("s1", 100, 100, "black", 2)} }
	carpets := func() []model.Carpet {
		return []model.Carpet{
			rect(1, 400, 400, "black", "o1", model.PriorityMustPlace),
			rect(2, 300, 300, "black", "o2", model.PriorityMustPlace),
			rect(3, 200, 200, "black", "o3", model.PriorityMustPlace),
		}
	}

	l1, u1, err1 := Schedule(carpets(), sheets(), model.Options{}, Params{})
	require.NoError(t, err1)
	l2, u2, err2 := Schedule(carpets(), sheets(), model.Options{}, Params{})
	require.NoError(t, err2)

	assert.Equal(t, len(l1), len(l2))
	assert.Equal(t, len(u1), len(u2))
	for i := range l1 {
		require.Len(t, l2[i].Placed, len(l1[i].Placed))
		for j := range l1[i].Placed {
			assert.Equal(t, l1[i].Placed[j].Carpet.CarpetID, l2[i].Placed[j].Carpet.CarpetID)
			assert.InDelta(t, l1[i].Placed[j].XOffset, l2[i].Placed[j].XOffset, 1e-9)
			assert.InDelta(t, l1[i].Placed[j].YOffset, l2[i].Placed[j].YOffset, 1e-9)
		}
	}
}
