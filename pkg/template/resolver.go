// Package template resolves which template rows apply to a table and which
// validation rules are in force for each of them. It also carries the static
// configuration check that rejects dangling references at load time instead
// of letting them surface as NaN cells during entry.
package template

import (
	"github.com/heatstack/heatplan/pkg/core"
)

// Resolved is one template indicator evaluated against a table. Inapplicable
// indicators keep their row so a summary can still render a dash; they just
// never take direct entry.
type Resolved struct {
	Indicator  *core.Indicator
	Applicable bool
}

// Resolve evaluates every template indicator against the table's property
// tags, preserving template order. Category grouping is presentational and
// never reorders rows.
func Resolve(tpl *core.Template, table *core.Table) []Resolved {
	out := make([]Resolved, 0, len(tpl.Indicators))
	for i := range tpl.Indicators {
		ind := &tpl.Indicators[i]
		out = append(out, Resolved{
			Indicator:  ind,
			Applicable: ind.AppliesTo(table.Properties),
		})
	}
	return out
}

// Applicable returns only the indicators that apply, in template order.
func Applicable(tpl *core.Template, table *core.Table) []*core.Indicator {
	var out []*core.Indicator
	for _, r := range Resolve(tpl, table) {
		if r.Applicable {
			out = append(out, r.Indicator)
		}
	}
	return out
}

// EffectiveRules resolves the rule set in force for one indicator on one
// table. Precedence, first match wins:
//
//  1. indicator validation disabled: no checks
//  2. table override for this indicator: nil entry disables, a set replaces
//  3. table-wide kill switch: no checks
//  4. indicator's own rule set
//  5. scheme default for the indicator's type
//
// Returns nil when no checks apply.
func EffectiveRules(scheme *core.Scheme, table *core.Table, ind *core.Indicator) *core.RuleSet {
	if ind.Validation != nil && ind.Validation.Disabled {
		return nil
	}
	if rs, ok := table.ValidationOverrides[ind.ID]; ok {
		if rs == nil || rs.Disabled {
			return nil
		}
		return rs
	}
	if table.ValidationDisabled {
		return nil
	}
	if ind.Validation != nil {
		return ind.Validation
	}
	rs := scheme.ForType(ind.Type)
	if rs != nil && rs.Disabled {
		return nil
	}
	return rs
}
