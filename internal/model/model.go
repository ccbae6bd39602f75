// Package model defines the data types shared across the nesting engine:
// carpets, their placements, sheet stock, and the layouts the scheduler
// emits.
package model

import "fmt"

// Point2D is a 2D coordinate in millimeters.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Polygon is a simple, possibly non-convex, closed planar region: an
// exterior ring plus zero or more interior holes. Rings are open (the
// last point does not repeat the first).
type Polygon struct {
	Exterior []Point2D `json:"exterior"`
	Holes    [][]Point2D `json:"holes,omitempty"`
}

// Priority distinguishes must-place carpets from opportunistic backfill.
type Priority int

const (
	PriorityMustPlace Priority = 1
	PriorityBackfill  Priority = 2
)

// Carpet is an immutable input item: a shape to be cut from a sheet of
// matching color, grouped by order_id, with a placement priority.
type Carpet struct {
	CarpetID int      `json:"carpet_id"`
	Polygon  Polygon  `json:"polygon"`
	Filename string   `json:"filename"`
	Color    string   `json:"color"`
	OrderID  string   `json:"order_id"`
	Priority Priority `json:"priority"`
}

// PlacedCarpet is a Carpet plus the placement the engine found for it.
// Placed holds the cached polygon after rotate-then-translate, so callers
// never need to recompute the transform to know what the engine checked
// for collisions.
type PlacedCarpet struct {
	Carpet  Carpet  `json:"carpet"`
	XOffset float64 `json:"x_offset"`
	YOffset float64 `json:"y_offset"`
	Angle   float64 `json:"angle"` // degrees: one of 0, 90, 180, 270
	Placed  Polygon `json:"-"`
}

// SheetSpec describes one stock keeping unit: a sheet size and color, and
// how many are available. Used is mutated by the scheduler as sheets are
// consumed; it is the only mutable state on a SheetSpec.
type SheetSpec struct {
	Name      string  `json:"name"`
	WidthCM   float64 `json:"width_cm"`
	HeightCM  float64 `json:"height_cm"`
	Color     string  `json:"color"`
	Count     int     `json:"count"`
	Used      int     `json:"used"`
}

// WidthMM returns the sheet width in millimeters, the unit all placement
// geometry works in.
func (s SheetSpec) WidthMM() float64 { return s.WidthCM * 10 }

// HeightMM returns the sheet height in millimeters.
func (s SheetSpec) HeightMM() float64 { return s.HeightCM * 10 }

// Available reports how many sheets of this spec remain unconsumed.
func (s SheetSpec) Available() int { return s.Count - s.Used }

// Layout is the emitted result for one consumed sheet.
type Layout struct {
	SheetNumber  int            `json:"sheet_number"`
	SheetName    string         `json:"sheet_name"`
	WidthMM      float64        `json:"width_mm"`
	HeightMM     float64        `json:"height_mm"`
	Color        string         `json:"color"`
	Placed       []PlacedCarpet `json:"placed"`
	UsagePercent float64        `json:"usage_percent"`
	OrderIDs     []string       `json:"order_ids"`
}

// Area returns the sheet's total area in square millimeters.
func (l Layout) Area() float64 { return l.WidthMM * l.HeightMM }

// ProgressFunc is invoked synchronously from the scheduler thread at key
// points during scheduling. Its return value, if any were defined, would
// be ignored; cooperative cancellation is out of scope for the core.
type ProgressFunc func(percent int, status string)

// DefaultMinGapMM is the minimum Euclidean separation enforced between
// any two placed polygons on the same sheet, absent an override.
const DefaultMinGapMM = 2.0

// DefaultToleranceMM is the slack allowed when checking that a placed
// polygon lies within the sheet rectangle.
const DefaultToleranceMM = 0.1

// DefaultHighFillThreshold is the sheet usage percentage above which
// priority-2 backfill is skipped because remaining gaps are assumed too
// small to be worth the search. A tuning parameter, not a contract.
const DefaultHighFillThreshold = 60.0

// Options configures a scheduling run.
type Options struct {
	MinGapMM              float64
	Tolerance             float64
	MaxSheetRangePerOrder *int
	HighFillThreshold     float64
	Verbose               bool
	ProgressCallback      ProgressFunc `json:"-"`
}

// WithDefaults returns a copy of o with zero-valued fields replaced by
// their defaults. Callers that only care about a couple of knobs can
// build an Options{} and call this instead of repeating the defaults.
func (o Options) WithDefaults() Options {
	if o.MinGapMM == 0 {
		o.MinGapMM = DefaultMinGapMM
	}
	if o.Tolerance == 0 {
		o.Tolerance = DefaultToleranceMM
	}
	if o.HighFillThreshold == 0 {
		o.HighFillThreshold = DefaultHighFillThreshold
	}
	return o
}

// ValidationError marks a carpet whose input polygon is malformed:
// fewer than 3 vertices, or non-positive area. The scheduler fails fast
// on these before any placement work begins. Self-intersecting polygons
// are not detected and do not raise it.
type ValidationError struct {
	CarpetID int
	Reason   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("carpet %d: %s", e.CarpetID, e.Reason)
}

// SheetError marks a sheet spec with non-positive dimensions or a
// negative count; like ValidationError, it fails fast at the entry
// point rather than surfacing mid-schedule.
type SheetError struct {
	SheetName string
	Reason    string
}

func (e *SheetError) Error() string {
	return fmt.Sprintf("sheet %q: %s", e.SheetName, e.Reason)
}
