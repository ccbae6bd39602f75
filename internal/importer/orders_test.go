package importer

import (
	"path/filepath"
	"testing"

	"github.com/asergeenko/evalayout/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func createTestOrderSheet(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "orders.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	for i, row := range rows {
		for j, cell := range row {
			cellRef, err := excelize.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cellRef, cell))
		}
	}

	require.NoError(t, f.SaveAs(path))
	return path
}

func TestDetectColumnsWithStandardHeaders(t *testing.T) {
	row := []string{"Filename", "Color", "Order_ID", "Priority", "Quantity"}
	mapping := detectColumns(row)
	assert.Equal(t, 0, mapping.Filename)
	assert.Equal(t, 1, mapping.Color)
	assert.Equal(t, 2, mapping.OrderID)
	assert.Equal(t, 3, mapping.Priority)
	assert.Equal(t, 4, mapping.Quantity)
}

func TestDetectColumnsFallsBackToPositional(t *testing.T) {
	row := []string{"a.dxf", "black", "o1", "1", "2"}
	mapping := detectColumns(row)
	assert.Equal(t, 0, mapping.Filename)
	assert.Equal(t, 1, mapping.Color)
	assert.Equal(t, 2, mapping.OrderID)
}

func TestImportOrderSheetWithHeaders(t *testing.T) {
	path := createTestOrderSheet(t, [][]interface{}{
		{"Filename", "Color", "Order_ID", "Priority", "Quantity"},
		{"mat-a.dxf", "Black", "o1", 1, 2},
		{"mat-b.dxf", "Gray", "o2", 2, 1},
	})

	orders, err := ImportOrderSheet(path)
	require.NoError(t, err)
	require.Len(t, orders, 2)

	assert.Equal(t, "mat-a.dxf", orders[0].Filename)
	assert.Equal(t, "black", orders[0].Color)
	assert.Equal(t, "o1", orders[0].OrderID)
	assert.Equal(t, model.PriorityMustPlace, orders[0].Priority)
	assert.Equal(t, 2, orders[0].Quantity)

	assert.Equal(t, model.PriorityBackfill, orders[1].Priority)
}

func TestImportOrderSheetEmptyFileErrors(t *testing.T) {
	path := createTestOrderSheet(t, nil)
	_, err := ImportOrderSheet(path)
	assert.Error(t, err)
}

func TestBuildCarpetsExpandsQuantity(t *testing.T) {
	shape := model.Polygon{Exterior: []model.Point2D{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}}}
	orders := []OrderRow{
		{Filename: "a.dxf", Color: "black", OrderID: "o1", Priority: model.PriorityMustPlace, Quantity: 3},
	}
	shapes := map[string]model.Polygon{"a.dxf": shape}

	carpets, err := BuildCarpets(orders, shapes, NewCarpetIDGenerator())
	require.NoError(t, err)
	require.Len(t, carpets, 3)
	assert.Equal(t, 1, carpets[0].CarpetID)
	assert.Equal(t, 2, carpets[1].CarpetID)
	assert.Equal(t, 3, carpets[2].CarpetID)
}

func TestBuildCarpetsErrorsOnUnknownShape(t *testing.T) {
	orders := []OrderRow{{Filename: "missing.dxf", Quantity: 1}}
	_, err := BuildCarpets(orders, map[string]model.Polygon{}, NewCarpetIDGenerator())
	assert.Error(t, err)
}

func TestCarpetIDGeneratorIsSequential(t *testing.T) {
	gen := NewCarpetIDGenerator()
	assert.Equal(t, 1, gen.Next())
	assert.Equal(t, 2, gen.Next())
	assert.Equal(t, 3, gen.Next())
}
