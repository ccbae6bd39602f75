// Package report renders scheduling results as human-facing output: a
// visual PDF layout diagram per sheet plus QR-coded carpet tags for the
// cutting floor.
package report

import (
	"fmt"
	"math"

	"github.com/asergeenko/evalayout/internal/geometry"
	"github.com/asergeenko/evalayout/internal/model"
	"github.com/go-pdf/fpdf"
)

// carpetColor is an RGB fill color cycled across placed carpets on a
// sheet diagram so adjacent pieces are visually distinguishable.
type carpetColor struct{ R, G, B int }

var carpetColors = []carpetColor{
	{R: 76, G: 175, B: 80},
	{R: 33, G: 150, B: 243},
	{R: 255, G: 152, B: 0},
	{R: 156, G: 39, B: 176},
	{R: 0, G: 188, B: 212},
	{R: 244, G: 67, B: 54},
	{R: 255, G: 235, B: 59},
	{R: 121, G: 85, B: 72},
}

const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	drawAreaTop  = marginTop + headerHeight + 5.0
)

// WritePDF renders one page per layout (a scaled diagram of every
// placed carpet outline) followed by a summary page, to path.
func WritePDF(path string, layouts []model.Layout) error {
	if len(layouts) == 0 {
		return fmt.Errorf("no layouts to export")
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	for _, layout := range layouts {
		pdf.AddPage()
		renderLayoutPage(pdf, layout)
	}

	pdf.AddPage()
	renderSummaryPage(pdf, layouts)

	return pdf.OutputFileAndClose(path)
}

func renderLayoutPage(pdf *fpdf.Fpdf, layout model.Layout) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("Sheet %d: %s (%.0f x %.0f mm, %s)", layout.SheetNumber, layout.SheetName, layout.WidthMM, layout.HeightMM, layout.Color)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Carpets: %d | Usage: %.1f%% | Orders: %v", len(layout.Placed), layout.UsagePercent, layout.OrderIDs)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, stats, "", 0, "L", false, 0, "")

	drawWidth := pageWidth - marginLeft - marginRight
	drawHeight := pageHeight - drawAreaTop - marginBottom - 20.0

	scaleX := drawWidth / layout.WidthMM
	scaleY := drawHeight / layout.HeightMM
	scale := math.Min(scaleX, scaleY)

	canvasW := layout.WidthMM * scale
	canvasH := layout.HeightMM * scale
	offsetX := marginLeft + (drawWidth-canvasW)/2
	offsetY := drawAreaTop

	pdf.SetFillColor(210, 180, 140)
	pdf.SetDrawColor(100, 100, 100)
	pdf.SetLineWidth(0.5)
	pdf.Rect(offsetX, offsetY, canvasW, canvasH, "FD")

	for i, p := range layout.Placed {
		col := carpetColors[i%len(carpetColors)]
		bounds := geometry.Bounds(p.Placed)

		drawPolygonOutline(pdf, p.Placed, scale, offsetX, offsetY, col)

		pw := bounds.Width() * scale
		ph := bounds.Height() * scale
		if pw > 15 && ph > 8 {
			px := offsetX + bounds.MinX*scale
			py := offsetY + bounds.MinY*scale
			pdf.SetFont("Helvetica", "", labelFontSize(pw, ph))
			pdf.SetTextColor(0, 0, 0)
			label := p.Carpet.Filename
			labelW := pdf.GetStringWidth(label)
			if labelW < pw-2 {
				pdf.SetXY(px+(pw-labelW)/2, py+ph/2-2)
				pdf.CellFormat(labelW, 4, label, "", 0, "C", false, 0, "")
			}
		}
	}
}

func drawPolygonOutline(pdf *fpdf.Fpdf, p model.Polygon, scale, offsetX, offsetY float64, col carpetColor) {
	if len(p.Exterior) < 2 {
		return
	}
	pdf.SetDrawColor(30, 30, 30)
	pdf.SetFillColor(col.R, col.G, col.B)
	pdf.SetLineWidth(0.3)

	points := make([][2]float64, len(p.Exterior))
	for i, v := range p.Exterior {
		points[i] = [2]float64{offsetX + v.X*scale, offsetY + v.Y*scale}
	}
	pdf.Polygon(toPointType(points), "FD")
}

func toPointType(points [][2]float64) []fpdf.PointType {
	out := make([]fpdf.PointType, len(points))
	for i, p := range points {
		out[i] = fpdf.PointType{X: p[0], Y: p[1]}
	}
	return out
}

func labelFontSize(w, h float64) float64 {
	size := math.Min(w, h) / 4
	if size < 5 {
		return 5
	}
	if size > 10 {
		return 10
	}
	return size
}

func renderSummaryPage(pdf *fpdf.Fpdf, layouts []model.Layout) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Scheduling Summary", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	y := marginTop + 15.0
	totalCarpets := 0
	for _, l := range layouts {
		totalCarpets += len(l.Placed)
		pdf.SetXY(marginLeft, y)
		line := fmt.Sprintf("Sheet %d (%s, %s): %d carpets, %.1f%% usage, orders %v",
			l.SheetNumber, l.SheetName, l.Color, len(l.Placed), l.UsagePercent, l.OrderIDs)
		pdf.CellFormat(pageWidth-marginLeft-marginRight, 6, line, "", 1, "L", false, 0, "")
		y += 6
	}

	pdf.SetXY(marginLeft, y+4)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 6, fmt.Sprintf("Total sheets: %d | Total carpets placed: %d", len(layouts), totalCarpets), "", 1, "L", false, 0, "")
}
