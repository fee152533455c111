// Package cells resolves cell writability. The resolver is an ordered chain
// of predicate rules; the first match wins, and the chain order is the
// behavioral contract that governs what users may type into any given cell.
package cells

import (
	"strings"

	"github.com/heatstack/heatplan/pkg/core"
)

// Cell is the (row, field, table) triple a state is resolved for.
type Cell struct {
	Row   *core.Row
	Field *core.Field
	Table *core.Table
}

// stateRule is one predicate in the chain. It returns the resolved state
// and true when it decides the cell.
type stateRule struct {
	Name  string
	Apply func(c Cell) (core.CellState, bool)
}

// chain is evaluated top to bottom; order is load-bearing.
var chain = []stateRule{
	{
		Name: "inapplicable-row",
		Apply: func(c Cell) (core.CellState, bool) {
			if c.Row.Applicable {
				return 0, false
			}
			// label columns carry no value worth marking calculated
			if c.Field.Component == core.ComponentLabel {
				return core.CellReadonlyDisplay, true
			}
			return core.CellReadonlyCalculated, true
		},
	},
	{
		Name: "display-column",
		Apply: func(c Cell) (core.CellState, bool) {
			if c.Field.Component == core.ComponentDisplay {
				return core.CellReadonlyDisplay, true
			}
			return 0, false
		},
	},
	{
		Name: "calculated",
		Apply: func(c Cell) (core.CellState, bool) {
			if c.Row.Type == core.IndicatorCalculated || c.Field.Type == core.IndicatorCalculated {
				return core.CellReadonlyCalculated, true
			}
			return 0, false
		},
	},
	{
		Name: "summary-rollup",
		Apply: func(c Cell) (core.CellState, bool) {
			if c.Table.Kind == core.TableSummary &&
				!c.Table.ExcludesAggregation(c.Row.MetricID) &&
				c.Field.Component == core.ComponentInput {
				return core.CellReadonlyAggregated, true
			}
			return 0, false
		},
	},
	{
		Name: "plan-entry",
		Apply: func(c Cell) (core.CellState, bool) {
			if c.Field.Component == core.ComponentInput && c.Row.Type == core.IndicatorBasic && IsPlan(c.Field) {
				return core.CellWritable, true
			}
			return 0, false
		},
	},
	{
		Name: "same-period-entry",
		Apply: func(c Cell) (core.CellState, bool) {
			if !IsSamePeriod(c.Field) {
				return 0, false
			}
			policy := c.Table.SamePeriodEditable
			switch {
			case policy.Mode == core.SamePeriodAll:
				return core.CellWritable, true
			case policy.Mode == core.SamePeriodNone:
				return core.CellReadonlyDisplay, true
			case len(policy.IDs) > 0:
				if policy.Grants(c.Row.MetricID) {
					return core.CellWritable, true
				}
				return core.CellReadonlyDisplay, true
			case c.Row.SamePeriodEditable:
				return core.CellWritable, true
			}
			return core.CellReadonlyDisplay, true
		},
	},
	{
		Name: "default",
		Apply: func(c Cell) (core.CellState, bool) {
			return core.CellReadonlyDisplay, true
		},
	},
}

// State resolves the writability of one cell.
func State(row *core.Row, field *core.Field, table *core.Table) core.CellState {
	state, _ := Explain(row, field, table)
	return state
}

// Explain resolves the state and names the chain rule that decided it, for
// diagnostics output.
func Explain(row *core.Row, field *core.Field, table *core.Table) (core.CellState, string) {
	c := Cell{Row: row, Field: field, Table: table}
	for _, rule := range chain {
		if state, ok := rule.Apply(c); ok {
			return state, rule.Name
		}
	}
	// unreachable: the chain ends in a catch-all
	return core.CellReadonlyDisplay, "default"
}

// IsPlan reports whether the field is a monthly plan entry column.
func IsPlan(f *core.Field) bool {
	return strings.HasPrefix(f.Name, "monthlyData.") && strings.HasSuffix(f.Name, ".plan")
}

// IsSamePeriod reports whether the field is a monthly same-period column.
func IsSamePeriod(f *core.Field) bool {
	return strings.HasPrefix(f.Name, "monthlyData.") && strings.HasSuffix(f.Name, ".samePeriod")
}
