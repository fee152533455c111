package core

import (
	"fmt"
	"math"
	"strconv"
)

// Component describes how a column is rendered and entered.
type Component string

// Component constants.
const (
	// ComponentLabel is a fixed text column (name, unit).
	ComponentLabel Component = "label"
	// ComponentInput accepts direct entry on writable cells.
	ComponentInput Component = "input"
	// ComponentDisplay shows derived values only.
	ComponentDisplay Component = "display"
)

// Field is one column template entry.
type Field struct {
	// ID is the stable field identifier, referenced by column formulas
	// and comparison rules.
	ID int `koanf:"id"`
	// Name is the dotted value path, e.g. "monthlyData.october.plan" or
	// "totals.plan". Rows store values keyed by this path.
	Name string `koanf:"name"`
	// Label is the column header.
	Label string `koanf:"label"`
	// Type is basic or calculated.
	Type IndicatorType `koanf:"type"`
	// Component is label, input, or display.
	Component Component `koanf:"component"`
	// Formula derives calculated columns, referencing other fields of the
	// same row as VAL(fieldID).
	Formula string `koanf:"formula"`
	// Format overrides the project-wide display format for this column.
	Format *DisplayFormat `koanf:"format"`
}

// DisplayFormat controls numeric rendering of a cell.
type DisplayFormat struct {
	// Type is integer, decimal, or percentage.
	Type string `koanf:"type"`
	// Places is the number of decimal places for decimal/percentage.
	Places int `koanf:"places"`
}

// Format type constants.
const (
	FormatInteger    = "integer"
	FormatDecimal    = "decimal"
	FormatPercentage = "percentage"
)

// FormatValue renders a value using the given format. Invalid values render
// as a dash so summary tables can show rows no child supplies. A nil format
// falls back to plain decimal rendering.
func FormatValue(v Value, format *DisplayFormat) string {
	if !v.Valid {
		return "-"
	}
	if format == nil {
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	}
	switch format.Type {
	case FormatInteger:
		return strconv.FormatInt(int64(math.Round(v.Num)), 10)
	case FormatDecimal:
		return strconv.FormatFloat(v.Num, 'f', format.Places, 64)
	case FormatPercentage:
		return fmt.Sprintf("%s%%", strconv.FormatFloat(v.Num*100, 'f', format.Places, 64))
	default:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	}
}
