package core

import (
	"math"
	"strconv"
	"strings"
)

// Value is a single numeric cell value. The zero Value is invalid, which
// models an empty or non-numeric cell. Invalid values render as a dash and
// propagate through dependent calculations per the engine's empty-value
// policy (see pkg/formula).
type Value struct {
	Num   float64
	Valid bool
}

// None is the invalid value.
var None = Value{}

// Number returns a valid value. NaN and infinities collapse to None so a
// bad division never leaks into downstream arithmetic as a number.
func Number(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return None
	}
	return Value{Num: f, Valid: true}
}

// ParseValue parses raw user input. Blank or whitespace-only input yields
// None; so does anything that is not a finite number.
func ParseValue(raw string) Value {
	s := strings.TrimSpace(raw)
	if s == "" {
		return None
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return None
	}
	return Number(f)
}

// CellState is the resolved writability of one (row, field) cell.
type CellState int

// Cell states, in no particular precedence order; precedence lives in
// pkg/cells.
const (
	// CellWritable accepts direct user entry.
	CellWritable CellState = iota
	// CellReadonlyCalculated is derived from a formula or rendered as a
	// dash when the row does not apply to the table.
	CellReadonlyCalculated
	// CellReadonlyDisplay carries no entered or derived number of its own
	// (labels, defaulted same-period cells).
	CellReadonlyDisplay
	// CellReadonlyAggregated is filled by the child-table rollup on
	// summary tables.
	CellReadonlyAggregated
)

// String returns the canonical state name.
func (s CellState) String() string {
	switch s {
	case CellWritable:
		return "WRITABLE"
	case CellReadonlyCalculated:
		return "READONLY_CALCULATED"
	case CellReadonlyDisplay:
		return "READONLY_DISPLAY"
	case CellReadonlyAggregated:
		return "READONLY_AGGREGATED"
	default:
		return "UNKNOWN"
	}
}

// Row is one indicator instantiated against a table at runtime. Rows are
// created on table open, mutated only through writable cells, and discarded
// on table switch.
type Row struct {
	// MetricID is the indicator ID this row instantiates.
	MetricID int
	// Type mirrors the indicator type.
	Type IndicatorType
	// Applicable is false when the indicator's required properties are not
	// met by the table; the row still renders, read-only.
	Applicable bool
	// SamePeriodEditable mirrors the indicator-level flag.
	SamePeriodEditable bool
	// Values holds every cell value keyed by field path
	// (e.g. "monthlyData.october.plan", "totals.plan").
	Values map[string]Value
}

// Value returns the cell value at the given field path.
func (r *Row) Value(path string) Value {
	return r.Values[path]
}

// SetValue stores a cell value, allocating the map on first use.
func (r *Row) SetValue(path string, v Value) {
	if r.Values == nil {
		r.Values = make(map[string]Value)
	}
	r.Values[path] = v
}
