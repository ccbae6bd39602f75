// Command evalayout is the CLI host: it reads DXF shape files and an
// order spreadsheet, runs the scheduler against a sheet inventory, and
// writes the resulting layouts out as DXF cut files plus a PDF report
// and QR carpet tags (spec §6's host-application boundary).
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/asergeenko/evalayout/internal/exporter"
	"github.com/asergeenko/evalayout/internal/importer"
	"github.com/asergeenko/evalayout/internal/model"
	"github.com/asergeenko/evalayout/internal/project"
	"github.com/asergeenko/evalayout/internal/relocate"
	"github.com/asergeenko/evalayout/internal/report"
	"github.com/asergeenko/evalayout/internal/scheduler"
)

func main() {
	var (
		ordersPath  = flag.String("orders", "", "path to the order spreadsheet (xlsx)")
		shapesDir   = flag.String("shapes", "", "directory containing the referenced DXF shape files")
		inventory   = flag.String("inventory", "", "path to a sheet-inventory preset JSON file")
		outDir      = flag.String("out", "out", "output directory for DXF, PDF, and tag files")
		minGap      = flag.Float64("min-gap", model.DefaultMinGapMM, "minimum gap between carpets, in mm")
		maxRange    = flag.Int("max-sheet-range", 0, "max_sheet_range_per_order (0 = unconstrained)")
		relocateOpt = flag.Bool("relocate", false, "run the post-pass relocation optimizer")
		verbose     = flag.Bool("verbose", false, "enable verbose progress logging")
	)
	flag.Parse()

	logLevel := slog.LevelWarn
	if *verbose {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	if *ordersPath == "" || *shapesDir == "" || *inventory == "" {
		fmt.Fprintln(os.Stderr, "usage: evalayout -orders orders.xlsx -shapes ./shapes -inventory inventory.json [-out out]")
		os.Exit(2)
	}

	if err := run(*ordersPath, *shapesDir, *inventory, *outDir, *minGap, *maxRange, *relocateOpt, *verbose); err != nil {
		slog.Error("scheduling failed", "error", err)
		os.Exit(1)
	}
}

func run(ordersPath, shapesDir, inventoryPath, outDir string, minGap float64, maxRange int, enableRelocate, verbose bool) error {
	orders, err := importer.ImportOrderSheet(ordersPath)
	if err != nil {
		return fmt.Errorf("reading orders: %w", err)
	}

	shapes, err := loadShapes(orders, shapesDir)
	if err != nil {
		return fmt.Errorf("reading shapes: %w", err)
	}

	carpets, err := importer.BuildCarpets(orders, shapes, importer.NewCarpetIDGenerator())
	if err != nil {
		return fmt.Errorf("building carpets: %w", err)
	}

	sheets, err := loadInventory(inventoryPath)
	if err != nil {
		return fmt.Errorf("reading inventory: %w", err)
	}

	opts := model.Options{MinGapMM: minGap, Verbose: verbose}
	if maxRange > 0 {
		opts.MaxSheetRangePerOrder = &maxRange
	}
	opts.ProgressCallback = func(percent int, status string) {
		slog.Info("scheduling progress", "percent", percent, "status", status)
	}

	params := scheduler.Params{EnableRelocate: enableRelocate, RelocateParams: relocate.Params{}}

	layouts, unplaced, err := scheduler.Schedule(carpets, sheets, opts, params)
	if err != nil {
		return fmt.Errorf("scheduling: %w", err)
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	for _, layout := range layouts {
		dxfPath := filepath.Join(outDir, fmt.Sprintf("sheet-%03d.dxf", layout.SheetNumber))
		if err := exporter.WriteDXF(dxfPath, layout.Placed); err != nil {
			return fmt.Errorf("writing sheet %d DXF: %w", layout.SheetNumber, err)
		}
	}

	if len(layouts) > 0 {
		if err := report.WritePDF(filepath.Join(outDir, "report.pdf"), layouts); err != nil {
			return fmt.Errorf("writing PDF report: %w", err)
		}
		if err := report.WriteTags(filepath.Join(outDir, "tags.pdf"), layouts); err != nil {
			return fmt.Errorf("writing carpet tags: %w", err)
		}
	}

	runRecord := project.NewRun(carpets, sheets, opts)
	runRecord.Layouts = layouts
	runRecord.Unplaced = unplaced
	if err := project.SaveRun(filepath.Join(outDir, "run.json"), runRecord); err != nil {
		return fmt.Errorf("saving run record: %w", err)
	}

	printOrderReport(layouts, unplaced)
	return nil
}

// printOrderReport prints, per order_id, the sheet range it occupies
// and flags any order still wholly or partially unplaced — the
// order-aware operator reporting SPEC_FULL.md supplements.
func printOrderReport(layouts []model.Layout, unplaced []model.Carpet) {
	sheetsByOrder := make(map[string]map[int]bool)
	for _, l := range layouts {
		for _, p := range l.Placed {
			if p.Carpet.OrderID == "" {
				continue
			}
			if sheetsByOrder[p.Carpet.OrderID] == nil {
				sheetsByOrder[p.Carpet.OrderID] = make(map[int]bool)
			}
			sheetsByOrder[p.Carpet.OrderID][l.SheetNumber] = true
		}
	}

	unplacedByOrder := make(map[string]int)
	for _, c := range unplaced {
		unplacedByOrder[c.OrderID]++
	}

	orders := make([]string, 0, len(sheetsByOrder)+len(unplacedByOrder))
	seen := make(map[string]bool)
	for o := range sheetsByOrder {
		if !seen[o] {
			orders = append(orders, o)
			seen[o] = true
		}
	}
	for o := range unplacedByOrder {
		if !seen[o] {
			orders = append(orders, o)
			seen[o] = true
		}
	}
	sort.Strings(orders)

	fmt.Println("Order report:")
	for _, o := range orders {
		sheetNums := sortedKeys(sheetsByOrder[o])
		rangeDesc := "none"
		if len(sheetNums) > 0 {
			rangeDesc = fmt.Sprintf("sheets %d-%d", sheetNums[0], sheetNums[len(sheetNums)-1])
		}
		status := ""
		if n := unplacedByOrder[o]; n > 0 {
			status = fmt.Sprintf(" (%d carpet(s) unplaced)", n)
		}
		fmt.Printf("  order %s: %s%s\n", o, rangeDesc, status)
	}
}

func sortedKeys(m map[int]bool) []int {
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}

func loadShapes(orders []importer.OrderRow, shapesDir string) (map[string]model.Polygon, error) {
	shapes := make(map[string]model.Polygon)
	for _, o := range orders {
		if _, ok := shapes[o.Filename]; ok {
			continue
		}
		polygon, err := importer.ImportDXFPolygon(filepath.Join(shapesDir, o.Filename))
		if err != nil {
			return nil, err
		}
		shapes[o.Filename] = polygon
	}
	return shapes, nil
}

func loadInventory(path string) ([]model.SheetSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading inventory file %q: %w", path, err)
	}
	var sheets []model.SheetSpec
	if err := json.Unmarshal(data, &sheets); err != nil {
		return nil, fmt.Errorf("parsing inventory file %q: %w", path, err)
	}
	return sheets, nil
}
