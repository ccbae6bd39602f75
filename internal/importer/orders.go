package importer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/asergeenko/evalayout/internal/model"
	"github.com/xuri/excelize/v2"
)

// OrderRow is one row of an order sheet: which DXF file to cut, in what
// color, for which order, at what priority and quantity.
type OrderRow struct {
	Filename string
	Color    string
	OrderID  string
	Priority model.Priority
	Quantity int
}

// columnMapping maps semantic roles to their column index in the sheet.
type columnMapping struct {
	Filename int
	Color    int
	OrderID  int
	Priority int
	Quantity int
}

// headerAliases maps canonical column names to their accepted aliases,
// all lowercase, mirroring the ambient header-detection convention used
// for part-list imports.
var headerAliases = map[string][]string{
	"filename": {"filename", "file", "dxf", "dxf file", "shape", "pattern"},
	"color":    {"color", "colour", "material color"},
	"order_id": {"order_id", "order", "order id", "order number"},
	"priority": {"priority", "prio"},
	"quantity": {"quantity", "qty", "count", "amount"},
}

// detectColumns examines a header row and returns a columnMapping, or a
// default positional mapping (filename, color, order_id, priority,
// quantity) if no recognizable header is present.
func detectColumns(row []string) columnMapping {
	mapping := columnMapping{Filename: -1, Color: -1, OrderID: -1, Priority: -1, Quantity: -1}
	found := false

	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized != alias {
					continue
				}
				found = true
				switch role {
				case "filename":
					if mapping.Filename == -1 {
						mapping.Filename = i
					}
				case "color":
					if mapping.Color == -1 {
						mapping.Color = i
					}
				case "order_id":
					if mapping.OrderID == -1 {
						mapping.OrderID = i
					}
				case "priority":
					if mapping.Priority == -1 {
						mapping.Priority = i
					}
				case "quantity":
					if mapping.Quantity == -1 {
						mapping.Quantity = i
					}
				}
			}
		}
	}

	if !found {
		return columnMapping{Filename: 0, Color: 1, OrderID: 2, Priority: 3, Quantity: 4}
	}
	return mapping
}

// ImportOrderSheet reads an order list from the first sheet of an Excel
// workbook at path, detecting columns by header alias and falling back
// to positional columns when no recognizable header row is present.
func ImportOrderSheet(path string) ([]OrderRow, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening order sheet %q: %w", path, err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("reading rows from %q: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("order sheet %q is empty", path)
	}

	mapping := detectColumns(rows[0])
	startRow := 0
	for _, cell := range rows[0] {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for _, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized == alias {
					startRow = 1 // a header row was recognized and consumed
				}
			}
		}
	}

	var orders []OrderRow
	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		order, ok := parseRow(row, mapping)
		if ok {
			orders = append(orders, order)
		}
	}
	return orders, nil
}

func parseRow(row []string, mapping columnMapping) (OrderRow, bool) {
	get := func(idx int) string {
		if idx < 0 || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	filename := get(mapping.Filename)
	if filename == "" {
		return OrderRow{}, false
	}

	order := OrderRow{
		Filename: filename,
		Color:    strings.ToLower(get(mapping.Color)),
		OrderID:  get(mapping.OrderID),
		Priority: model.PriorityMustPlace,
		Quantity: 1,
	}

	if p := get(mapping.Priority); p != "" {
		if n, err := strconv.Atoi(p); err == nil && n == 2 {
			order.Priority = model.PriorityBackfill
		}
	}
	if q := get(mapping.Quantity); q != "" {
		if n, err := strconv.Atoi(q); err == nil && n > 0 {
			order.Quantity = n
		}
	}

	return order, true
}

// CarpetIDGenerator hands out the sequential, unique integer ids the
// scheduler's duplicate-prevention relies on (spec §4.5).
type CarpetIDGenerator struct {
	next int
}

// NewCarpetIDGenerator returns a generator starting at 1.
func NewCarpetIDGenerator() *CarpetIDGenerator { return &CarpetIDGenerator{next: 1} }

// Next returns the next unused carpet id.
func (g *CarpetIDGenerator) Next() int {
	id := g.next
	g.next++
	return id
}

// BuildCarpets expands order rows into model.Carpet values, one per
// unit of quantity, looking up each row's polygon from shapes by
// filename and assigning fresh carpet ids via ids.
func BuildCarpets(orders []OrderRow, shapes map[string]model.Polygon, ids *CarpetIDGenerator) ([]model.Carpet, error) {
	var carpets []model.Carpet
	for _, o := range orders {
		polygon, ok := shapes[o.Filename]
		if !ok {
			return nil, fmt.Errorf("order references unknown shape file %q", o.Filename)
		}
		for i := 0; i < o.Quantity; i++ {
			carpets = append(carpets, model.Carpet{
				CarpetID: ids.Next(),
				Polygon:  polygon,
				Filename: o.Filename,
				Color:    o.Color,
				OrderID:  o.OrderID,
				Priority: o.Priority,
			})
		}
	}
	return carpets, nil
}
