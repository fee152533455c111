package report

import (
	"fmt"

	"github.com/heatstack/heatplan/pkg/aggregate"
	"github.com/heatstack/heatplan/pkg/core"
)

// AggregateReport shows where a summary table's rolled-up values come from.
type AggregateReport struct {
	Table *core.Table
	// Columns maps field path to indicator ID to the overall rollup.
	Columns map[string]map[int]core.Value
	// Groups maps role name to field path to indicator ID, for tables
	// configured with named subsidiary groups.
	Groups map[string]map[string]map[int]core.Value
	// Contributions maps field path to indicator ID to per-child values,
	// keyed by child table ID, after both exclusion directions.
	Contributions map[string]map[int]map[string]core.Value
}

// Aggregate computes the rollup view of a summary table without mutating
// any report. Subsidiaries are computed recursively the same way Compute
// does it.
func Aggregate(ctx *ProjectContext, tableID string, values ValueSet) (*AggregateReport, error) {
	tbl, ok := ctx.Project.TableByID(tableID)
	if !ok {
		return nil, fmt.Errorf("unknown table %q", tableID)
	}
	if tbl.Kind != core.TableSummary {
		return nil, fmt.Errorf("table %q is not a summary table", tableID)
	}
	tpl, ok := ctx.Project.TemplateFor(tbl)
	if !ok {
		return nil, fmt.Errorf("table %q: unknown template %q", tableID, tbl.Template)
	}

	childReps := map[string]*TableReport{}
	for _, childID := range tbl.Subsidiaries.All() {
		child, err := compute(ctx, childID, values, map[string]bool{tableID: true})
		if err != nil {
			return nil, fmt.Errorf("subsidiary %q: %w", childID, err)
		}
		childReps[childID] = child
	}

	out := &AggregateReport{
		Table:         tbl,
		Columns:       map[string]map[int]core.Value{},
		Contributions: map[string]map[int]map[string]core.Value{},
	}
	if len(tbl.Subsidiaries.Groups) > 0 {
		out.Groups = map[string]map[string]map[int]core.Value{}
		for role := range tbl.Subsidiaries.Groups {
			out.Groups[role] = map[string]map[int]core.Value{}
		}
	}

	for _, path := range entryPaths(tpl) {
		reports := func(ids []string) []aggregate.ChildReport {
			var crs []aggregate.ChildReport
			for _, id := range ids {
				child := childReps[id]
				if child == nil {
					continue
				}
				vals := map[int]core.Value{}
				for _, row := range child.Rows {
					if v := row.Value(path); v.Valid {
						vals[row.MetricID] = v
					}
				}
				crs = append(crs, aggregate.ChildReport{Table: child.Table, Values: vals})
			}
			return crs
		}

		all := reports(tbl.Subsidiaries.All())
		out.Columns[path] = aggregate.Sum(tbl, tpl, all)
		out.Contributions[path] = contributions(tbl, tpl, all)

		for role, ids := range tbl.Subsidiaries.Groups {
			out.Groups[role][path] = aggregate.Sum(tbl, tpl, reports(ids))
		}
	}
	return out, nil
}

// contributions records each child's surviving per-indicator value, for the
// CLI's provenance view.
func contributions(tbl *core.Table, tpl *core.Template, children []aggregate.ChildReport) map[int]map[string]core.Value {
	out := map[int]map[string]core.Value{}
	for i := range tpl.Indicators {
		id := tpl.Indicators[i].ID
		if tbl.ExcludesAggregation(id) {
			continue
		}
		for _, child := range children {
			if child.Table == nil || child.Table.ExcludesBeingAggregated(id) {
				continue
			}
			v, ok := child.Values[id]
			if !ok || !v.Valid {
				continue
			}
			if out[id] == nil {
				out[id] = map[string]core.Value{}
			}
			out[id][child.Table.ID] = v
		}
	}
	return out
}
