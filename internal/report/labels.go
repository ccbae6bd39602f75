package report

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/asergeenko/evalayout/internal/model"
	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"
)

// TagInfo is the data encoded into each carpet's QR tag, enough for a
// cutting-floor worker to scan and locate the piece's sheet and order.
type TagInfo struct {
	CarpetID   int     `json:"carpet_id"`
	Filename   string  `json:"filename"`
	Color      string  `json:"color"`
	OrderID    string  `json:"order_id"`
	SheetNum   int     `json:"sheet_number"`
	SheetName  string  `json:"sheet_name"`
	XOffsetMM  float64 `json:"x_offset_mm"`
	YOffsetMM  float64 `json:"y_offset_mm"`
	RotationDg float64 `json:"rotation_deg"`
}

const (
	tagPageWidth  = 215.9
	tagPageHeight = 279.4
	tagMarginTop  = 12.7
	tagMarginLeft = 4.8
	tagWidth      = 66.7
	tagHeight     = 25.4
	tagCols       = 3
	tagRows       = 10
	tagsPerPage   = tagCols * tagRows
	qrSize        = 20.0
	tagPadding    = 2.0
)

// CollectTags extracts one TagInfo per placed carpet across all layouts.
func CollectTags(layouts []model.Layout) []TagInfo {
	var tags []TagInfo
	for _, l := range layouts {
		for _, p := range l.Placed {
			tags = append(tags, TagInfo{
				CarpetID:   p.Carpet.CarpetID,
				Filename:   p.Carpet.Filename,
				Color:      p.Carpet.Color,
				OrderID:    p.Carpet.OrderID,
				SheetNum:   l.SheetNumber,
				SheetName:  l.SheetName,
				XOffsetMM:  p.XOffset,
				YOffsetMM:  p.YOffset,
				RotationDg: p.Angle,
			})
		}
	}
	return tags
}

// WriteTags renders a PDF of QR-coded carpet tags, laid out on a
// standard Avery-5160-compatible label sheet (3 columns x 10 rows).
func WriteTags(path string, layouts []model.Layout) error {
	tags := CollectTags(layouts)
	if len(tags) == 0 {
		return fmt.Errorf("no placed carpets to tag")
	}

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)

	for i, tag := range tags {
		if i%tagsPerPage == 0 {
			pdf.AddPage()
		}

		posOnPage := i % tagsPerPage
		col := posOnPage % tagCols
		row := posOnPage / tagCols

		x := tagMarginLeft + float64(col)*tagWidth
		y := tagMarginTop + float64(row)*tagHeight

		if err := renderTag(pdf, x, y, tag); err != nil {
			return fmt.Errorf("rendering tag for carpet %d: %w", tag.CarpetID, err)
		}
	}

	return pdf.OutputFileAndClose(path)
}

func renderTag(pdf *fpdf.Fpdf, x, y float64, info TagInfo) error {
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.1)
	pdf.Rect(x, y, tagWidth, tagHeight, "D")

	qrData, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("marshaling tag info: %w", err)
	}
	qrPNG, err := qrcode.Encode(string(qrData), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("generating QR code: %w", err)
	}

	imgName := fmt.Sprintf("qr_%d_%d", info.CarpetID, info.SheetNum)
	pdf.RegisterImageOptionsReader(imgName, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))

	qrX := x + tagWidth - qrSize - tagPadding
	qrY := y + (tagHeight-qrSize)/2
	pdf.ImageOptions(imgName, qrX, qrY, qrSize, qrSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	textX := x + tagPadding
	textW := tagWidth - qrSize - 3*tagPadding

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(textX, y+tagPadding)
	name := info.Filename
	if pdf.GetStringWidth(name) > textW {
		for len(name) > 0 && pdf.GetStringWidth(name+"...") > textW {
			name = name[:len(name)-1]
		}
		name += "..."
	}
	pdf.CellFormat(textW, 4.5, name, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	pdf.SetXY(textX, y+tagPadding+5)
	pdf.CellFormat(textW, 3.5, fmt.Sprintf("%s | order %s", info.Color, info.OrderID), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 6)
	pdf.SetTextColor(100, 100, 100)
	pdf.SetXY(textX, y+tagPadding+9)
	pdf.CellFormat(textW, 3, fmt.Sprintf("Sheet %d @ (%.0f, %.0f)", info.SheetNum, info.XOffsetMM, info.YOffsetMM), "", 1, "L", false, 0, "")

	if info.RotationDg != 0 {
		pdf.SetXY(textX, y+tagPadding+12.5)
		pdf.SetFont("Helvetica", "I", 6)
		pdf.SetTextColor(150, 100, 0)
		pdf.CellFormat(textW, 3, fmt.Sprintf("Rotated %.0f\xb0", info.RotationDg), "", 0, "L", false, 0, "")
	}

	pdf.SetTextColor(0, 0, 0)
	return nil
}
