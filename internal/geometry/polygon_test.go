package geometry

import (
	"testing"

	"github.com/asergeenko/evalayout/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rect(x, y, w, h float64) model.Polygon {
	return model.Polygon{Exterior: []model.Point2D{
		{X: x, Y: y},
		{X: x + w, Y: y},
		{X: x + w, Y: y + h},
		{X: x, Y: y + h},
	}}
}

func TestBounds(t *testing.T) {
	p := rect(10, 20, 100, 50)
	b := Bounds(p)
	assert.Equal(t, BBox{10, 20, 110, 70}, b)
}

func TestArea(t *testing.T) {
	p := rect(0, 0, 40, 30)
	assert.InDelta(t, 1200.0, Area(p), 1e-9)
}

func TestAreaWithHole(t *testing.T) {
	p := model.Polygon{
		Exterior: rect(0, 0, 100, 100).Exterior,
		Holes:    [][]model.Point2D{rect(10, 10, 20, 20).Exterior},
	}
	assert.InDelta(t, 10000-400, Area(p), 1e-9)
}

func TestCentroidOfSquare(t *testing.T) {
	p := rect(0, 0, 10, 10)
	c := Centroid(p)
	assert.InDelta(t, 5, c.X, 1e-9)
	assert.InDelta(t, 5, c.Y, 1e-9)
}

func TestTranslate(t *testing.T) {
	p := rect(0, 0, 10, 10)
	out := Translate(p, 5, -3)
	assert.Equal(t, 5.0, out.Exterior[0].X)
	assert.Equal(t, -3.0, out.Exterior[0].Y)
}

func TestRotateAboutCentroid90(t *testing.T) {
	p := rect(0, 0, 10, 4)
	rotated := RotateAboutCentroid(p, 90)
	b := Bounds(rotated)
	assert.InDelta(t, 4, b.Width(), 1e-9)
	assert.InDelta(t, 10, b.Height(), 1e-9)
	assert.InDelta(t, Area(p), Area(rotated), 1e-9)
}

func TestRotateAboutCentroid360IsIdentity(t *testing.T) {
	p := rect(0, 0, 10, 4)
	rotated := RotateAbout(p, 360, Centroid(p))
	for i, v := range p.Exterior {
		assert.InDelta(t, v.X, rotated.Exterior[i].X, 1e-9)
		assert.InDelta(t, v.Y, rotated.Exterior[i].Y, 1e-9)
	}
}

func TestPointInPolygon(t *testing.T) {
	p := rect(0, 0, 10, 10)
	assert.True(t, PointInPolygon(model.Point2D{X: 5, Y: 5}, p))
	assert.False(t, PointInPolygon(model.Point2D{X: 50, Y: 50}, p))
}

func TestPointInPolygonWithHole(t *testing.T) {
	p := model.Polygon{
		Exterior: rect(0, 0, 100, 100).Exterior,
		Holes:    [][]model.Point2D{rect(10, 10, 20, 20).Exterior},
	}
	assert.False(t, PointInPolygon(model.Point2D{X: 15, Y: 15}, p), "inside the hole")
	assert.True(t, PointInPolygon(model.Point2D{X: 50, Y: 50}, p), "outside the hole")
}

func TestWithinSheet(t *testing.T) {
	p := rect(0, 0, 100, 50)
	assert.True(t, WithinSheet(p, 100, 50, 0.1))
	assert.False(t, WithinSheet(p, 99, 50, 0.1))
}

func TestValid(t *testing.T) {
	assert.True(t, Valid(rect(0, 0, 10, 10)))
	assert.False(t, Valid(model.Polygon{Exterior: []model.Point2D{{X: 0, Y: 0}, {X: 1, Y: 1}}}))
	require.False(t, Valid(model.Polygon{}))
}
