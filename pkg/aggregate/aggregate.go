// Package aggregate rolls subsidiary reports up into summary tables. Two
// independent exclusion lists are consulted per indicator: the parent's own
// aggregationExclusions (parent keeps its directly entered value) and each
// child's beAggregatedExclusions (child opts out of contributing). Rollup
// reads child values and never writes them back.
package aggregate

import (
	"github.com/heatstack/heatplan/pkg/core"
)

// ChildReport is one subsidiary's values for a single field path
// (e.g. every row's "monthlyData.october.plan"), keyed by indicator ID.
type ChildReport struct {
	Table  *core.Table
	Values map[int]core.Value
}

// Sum aggregates one field path across the children. The result maps
// indicator ID to the rolled-up value for every template indicator not on
// the parent's exclusion list; excluded indicators are absent from the
// result so the caller never overwrites the parent's own entry. A child on
// its own opt-out list contributes nothing for that indicator, which is a
// zero contribution, not an error. An indicator no child supplies rolls up
// as missing and renders as a dash.
func Sum(parent *core.Table, tpl *core.Template, children []ChildReport) map[int]core.Value {
	out := make(map[int]core.Value)
	for i := range tpl.Indicators {
		id := tpl.Indicators[i].ID
		if parent.ExcludesAggregation(id) {
			continue
		}
		out[id] = sumIndicator(id, children)
	}
	return out
}

func sumIndicator(id int, children []ChildReport) core.Value {
	total := 0.0
	contributed := false
	for _, child := range children {
		if child.Table != nil && child.Table.ExcludesBeingAggregated(id) {
			continue
		}
		v, ok := child.Values[id]
		if !ok || !v.Valid {
			continue
		}
		total += v.Num
		contributed = true
	}
	if !contributed {
		return core.None
	}
	return core.Number(total)
}

// SumGroups aggregates per named role for cross-unit group rollups, where
// the summary's composition is keyed by a stable role name instead of a
// positional child list. Exclusion handling is identical to Sum.
func SumGroups(parent *core.Table, tpl *core.Template, groups map[string][]ChildReport) map[string]map[int]core.Value {
	out := make(map[string]map[int]core.Value, len(groups))
	for role, children := range groups {
		out[role] = Sum(parent, tpl, children)
	}
	return out
}
