package filler

import (
	"testing"

	"github.com/asergeenko/evalayout/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(id int, side float64, color string, orderID string, priority model.Priority) model.Carpet {
	return model.Carpet{
		CarpetID: id,
		Polygon: model.Polygon{Exterior: []model.Point2D{
			{X: 0, Y: 0}, {X: side, Y: 0}, {X: side, Y: side}, {X: 0, Y: side},
		}},
		Color:    color,
		OrderID:  orderID,
		Priority: priority,
	}
}

func TestFillOnlyMatchingColorAndPriority(t *testing.T) {
	carpets := []model.Carpet{
		square(1, 100, "black", "o1", model.PriorityMustPlace),
		square(2, 100, "beige", "o2", model.PriorityMustPlace),
		square(3, 100, "black", "o3", model.PriorityBackfill),
	}

	placed, pending := Fill(carpets, 1000, 1000, "black", 1, nil, model.PriorityMustPlace, nil, Params{})
	require.Len(t, placed, 1)
	assert.Equal(t, 1, placed[0].Carpet.CarpetID)
	assert.Len(t, pending, 2)
}

func TestFillGreedyLargestFirst(t *testing.T) {
	carpets := []model.Carpet{
		square(1, 50, "black", "o1", model.PriorityMustPlace),
		square(2, 300, "black", "o2", model.PriorityMustPlace),
		square(3, 150, "black", "o3", model.PriorityMustPlace),
	}

	placed, _ := Fill(carpets, 1000, 1000, "black", 1, nil, model.PriorityMustPlace, nil, Params{})
	require.Len(t, placed, 3)
	assert.Equal(t, 2, placed[0].Carpet.CarpetID, "largest carpet placed first")
	assert.Equal(t, 3, placed[1].Carpet.CarpetID)
	assert.Equal(t, 1, placed[2].Carpet.CarpetID)
}

func TestFillStopsWhenNothingFitsReturnsRemainderPending(t *testing.T) {
	carpets := []model.Carpet{
		square(1, 900, "black", "o1", model.PriorityMustPlace),
		square(2, 900, "black", "o2", model.PriorityMustPlace),
	}

	placed, pending := Fill(carpets, 1000, 1000, "black", 1, nil, model.PriorityMustPlace, nil, Params{})
	assert.Len(t, placed, 1)
	assert.Len(t, pending, 1)
}

func TestFillRespectsOrderRangeChecker(t *testing.T) {
	carpets := []model.Carpet{
		square(1, 100, "black", "o1", model.PriorityMustPlace),
	}

	checker := func(orderID string, sheetNumber int) bool { return false }
	placed, pending := Fill(carpets, 1000, 1000, "black", 1, nil, model.PriorityMustPlace, checker, Params{})
	assert.Empty(t, placed)
	require.Len(t, pending, 1)
	assert.Equal(t, 1, pending[0].CarpetID)
}

func TestFillBuildsObstacleIndexFromAlreadyPlaced(t *testing.T) {
	existing := square(1, 900, "black", "o1", model.PriorityMustPlace)
	already := []model.PlacedCarpet{
		{Carpet: existing, XOffset: 0, YOffset: 0, Placed: existing.Polygon},
	}
	carpets := []model.Carpet{
		square(2, 900, "black", "o2", model.PriorityMustPlace),
	}

	placed, pending := Fill(carpets, 1000, 1000, "black", 1, already, model.PriorityMustPlace, nil, Params{})
	assert.Empty(t, placed)
	assert.Len(t, pending, 1)
}

func TestUsagePercentComputesCoverage(t *testing.T) {
	c := square(1, 100, "black", "o1", model.PriorityMustPlace)
	placed := []model.PlacedCarpet{{Carpet: c, Placed: c.Polygon}}
	pct := UsagePercent(placed, 1000, 1000)
	assert.InDelta(t, 1.0, pct, 1e-6)
}

func TestSkipBackfillHonorsThreshold(t *testing.T) {
	assert.True(t, SkipBackfill(61, 60))
	assert.False(t, SkipBackfill(59, 60))
	assert.True(t, SkipBackfill(70, 0), "zero threshold falls back to default")
}

func TestSortByAreaThenComplexityTieBreaksByConcaveShape(t *testing.T) {
	convex := model.Carpet{
		CarpetID: 1,
		Polygon: model.Polygon{Exterior: []model.Point2D{
			{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 100}, {X: 0, Y: 100},
		}},
	}
	// An L-shape with the same bounding box area as the square above but
	// smaller true area and a lower convexity ratio.
	concave := model.Carpet{
		CarpetID: 2,
		Polygon: model.Polygon{Exterior: []model.Point2D{
			{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 50},
			{X: 50, Y: 50}, {X: 50, Y: 100}, {X: 0, Y: 100},
		}},
	}

	carpets := []model.Carpet{convex, concave}
	sortByAreaThenComplexity(carpets)
	assert.Equal(t, 2, carpets[0].CarpetID, "more complex shape should sort first on an area tie")
}
