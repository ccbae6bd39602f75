package importer

import (
	"testing"

	"github.com/asergeenko/evalayout/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestChainSegmentsClosesASquare(t *testing.T) {
	segs := []segment{
		{start: model.Point2D{X: 0, Y: 0}, end: model.Point2D{X: 10, Y: 0}},
		{start: model.Point2D{X: 10, Y: 0}, end: model.Point2D{X: 10, Y: 10}},
		{start: model.Point2D{X: 10, Y: 10}, end: model.Point2D{X: 0, Y: 10}},
		{start: model.Point2D{X: 0, Y: 10}, end: model.Point2D{X: 0, Y: 0}},
	}
	rings := chainSegments(segs, 0.01)
	assert.Len(t, rings, 1)
	assert.Len(t, rings[0], 4)
}

func TestChainSegmentsLeavesDisjointSegmentsUnclosed(t *testing.T) {
	segs := []segment{
		{start: model.Point2D{X: 0, Y: 0}, end: model.Point2D{X: 10, Y: 0}},
		{start: model.Point2D{X: 100, Y: 100}, end: model.Point2D{X: 110, Y: 100}},
	}
	rings := chainSegments(segs, 0.01)
	assert.Empty(t, rings, "two-point open chains never reach the 3-vertex closure threshold")
}

func TestRingAreaOfUnitSquare(t *testing.T) {
	ring := []model.Point2D{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}
	assert.InDelta(t, 1.0, ringArea(ring), 1e-9)
}

func TestNormalizeRingTranslatesToOrigin(t *testing.T) {
	ring := []model.Point2D{{X: 5, Y: 5}, {X: 15, Y: 5}, {X: 15, Y: 15}, {X: 5, Y: 15}}
	norm := normalizeRing(ring)
	assert.Equal(t, model.Point2D{X: 0, Y: 0}, norm[0])
	assert.Equal(t, model.Point2D{X: 10, Y: 0}, norm[1])
}

func TestBulgeArcPointsProducesSemicircle(t *testing.T) {
	// A bulge of 1.0 is a semicircle from (0,0) to (10,0).
	pts := bulgeArcPoints(model.Point2D{X: 0, Y: 0}, model.Point2D{X: 10, Y: 0}, 1.0, 16)
	require := assert.New(t)
	require.Len(pts, 17)
	require.InDelta(0, pts[0].X, 1e-6)
	require.InDelta(10, pts[len(pts)-1].X, 1e-6)
}

func TestPointsCloseRespectsTolerance(t *testing.T) {
	a := model.Point2D{X: 0, Y: 0}
	b := model.Point2D{X: 0.005, Y: 0}
	c := model.Point2D{X: 1, Y: 0}
	assert.True(t, pointsClose(a, b, 0.01))
	assert.False(t, pointsClose(a, c, 0.01))
}
