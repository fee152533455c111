// Package report orchestrates a full table computation: it builds rows from
// the resolved template, applies entered values to writable cells, derives
// calculated cells and totals, rolls up subsidiaries for summary tables,
// and runs validation. Every call is a pure function of the loaded project
// and the passed-in values; recomputation is idempotent.
package report

import (
	"fmt"

	"github.com/heatstack/heatplan/internal/dag"
	"github.com/heatstack/heatplan/pkg/aggregate"
	"github.com/heatstack/heatplan/pkg/cells"
	"github.com/heatstack/heatplan/pkg/core"
	"github.com/heatstack/heatplan/pkg/formula"
	"github.com/heatstack/heatplan/pkg/template"
	"github.com/heatstack/heatplan/pkg/validate"
)

// TableValues holds one table's raw entered text, keyed by indicator ID and
// field path.
type TableValues map[int]map[string]string

// ValueSet holds raw entered values for every table in a period, keyed by
// table ID. The engine reads it and never writes it.
type ValueSet map[string]TableValues

// ProjectContext carries a loaded, checked project. It replaces any notion
// of an ambient "current project"; every engine call receives one
// explicitly.
type ProjectContext struct {
	Project *core.Project

	// formulas shares parsed expressions across computations; sources are
	// fixed at load time, recomputation runs per keystroke.
	formulas *formula.Cache
}

// NewContext wraps a loaded project after running the static configuration
// check. A project that fails the check is unusable as a whole; callers who
// want per-table degradation inspect the returned *template.CheckError.
func NewContext(p *core.Project) (*ProjectContext, error) {
	if err := template.Check(p); err != nil {
		return nil, err
	}
	return &ProjectContext{Project: p, formulas: formula.NewCache()}, nil
}

// TableReport is one fully computed table.
type TableReport struct {
	Table    *core.Table
	Template *core.Template
	// Rows is in template order, one per indicator, inapplicable ones
	// included.
	Rows []*core.Row
	// Raw is the entered text that survived the writability filter,
	// keyed by indicator ID and field path.
	Raw map[int]map[string]string
	// Findings is the validation outcome.
	Findings []validate.Finding
}

// Row returns the computed row for an indicator.
func (r *TableReport) Row(metricID int) (*core.Row, bool) {
	for _, row := range r.Rows {
		if row.MetricID == metricID {
			return row, true
		}
	}
	return nil, false
}

// HasHardFindings reports whether submission should be blocked.
func (r *TableReport) HasHardFindings() bool {
	for _, f := range r.Findings {
		if f.Severity == core.SeverityHard {
			return true
		}
	}
	return false
}

// Compute computes one table from entered values. Summary tables compute
// their subsidiaries first and roll their entry columns up.
func Compute(ctx *ProjectContext, tableID string, values ValueSet) (*TableReport, error) {
	return compute(ctx, tableID, values, map[string]bool{})
}

func compute(ctx *ProjectContext, tableID string, values ValueSet, visiting map[string]bool) (*TableReport, error) {
	if visiting[tableID] {
		return nil, fmt.Errorf("subsidiary cycle through table %q", tableID)
	}
	visiting[tableID] = true
	defer delete(visiting, tableID)

	tbl, ok := ctx.Project.TableByID(tableID)
	if !ok {
		return nil, fmt.Errorf("unknown table %q", tableID)
	}
	tpl, ok := ctx.Project.TemplateFor(tbl)
	if !ok {
		return nil, fmt.Errorf("table %q: unknown template %q", tableID, tbl.Template)
	}

	rep := &TableReport{
		Table:    tbl,
		Template: tpl,
		Raw:      map[int]map[string]string{},
	}

	// rows mirror the template, applicability resolved per table
	for _, res := range template.Resolve(tpl, tbl) {
		rep.Rows = append(rep.Rows, &core.Row{
			MetricID:           res.Indicator.ID,
			Type:               res.Indicator.Type,
			Applicable:         res.Applicable,
			SamePeriodEditable: res.Indicator.SamePeriodEditable,
		})
	}

	applyEntered(rep, values[tableID])

	if tbl.Kind == core.TableSummary && !tbl.Subsidiaries.IsEmpty() {
		if err := rollup(ctx, rep, values, visiting); err != nil {
			return nil, err
		}
	}

	if err := derive(rep, ctx.formulas); err != nil {
		return nil, err
	}

	rep.Findings = runValidation(ctx, rep)
	return rep, nil
}

// applyEntered parses entered text into writable cells only; anything aimed
// at a read-only cell is dropped, which is what keeps recomputation
// drift-free.
func applyEntered(rep *TableReport, entered TableValues) {
	for _, row := range rep.Rows {
		raw := entered[row.MetricID]
		if raw == nil {
			continue
		}
		for path, text := range raw {
			field, ok := rep.Template.FieldByName(path)
			if !ok {
				continue
			}
			if cells.State(row, field, rep.Table) != core.CellWritable {
				continue
			}
			if rep.Raw[row.MetricID] == nil {
				rep.Raw[row.MetricID] = map[string]string{}
			}
			rep.Raw[row.MetricID][path] = text
			row.SetValue(path, core.ParseValue(text))
		}
	}
}

// rollup computes every subsidiary and sums their entry columns into this
// table's aggregated cells. Child data is read, never written.
func rollup(ctx *ProjectContext, rep *TableReport, values ValueSet, visiting map[string]bool) error {
	var childReps []*TableReport
	for _, childID := range rep.Table.Subsidiaries.All() {
		child, err := compute(ctx, childID, values, visiting)
		if err != nil {
			return fmt.Errorf("subsidiary %q: %w", childID, err)
		}
		childReps = append(childReps, child)
	}

	for _, path := range entryPaths(rep.Template) {
		children := make([]aggregate.ChildReport, 0, len(childReps))
		for _, child := range childReps {
			vals := map[int]core.Value{}
			for _, row := range child.Rows {
				if v := row.Value(path); v.Valid {
					vals[row.MetricID] = v
				}
			}
			children = append(children, aggregate.ChildReport{Table: child.Table, Values: vals})
		}

		summed := aggregate.Sum(rep.Table, rep.Template, children)
		field, _ := rep.Template.FieldByName(path)
		for _, row := range rep.Rows {
			if cells.State(row, field, rep.Table) != core.CellReadonlyAggregated {
				continue
			}
			if v, ok := summed[row.MetricID]; ok {
				row.SetValue(path, v)
			}
		}
	}
	return nil
}

// derive fills calculated cells: totals columns on basic rows first (column
// formula override, else field formula), then calculated rows column by
// column in dependency order, with their own column overrides applied last.
func derive(rep *TableReport, formulas *formula.Cache) error {
	tpl := rep.Template

	for _, row := range rep.Rows {
		if row.Type != core.IndicatorBasic || !row.Applicable {
			continue
		}
		ind, _ := tpl.IndicatorByID(row.MetricID)
		for i := range tpl.Fields {
			field := &tpl.Fields[i]
			src := field.Formula
			if ind != nil {
				if override, ok := ind.ColumnFormulas[field.Name]; ok {
					src = override
				}
			}
			if src == "" {
				continue
			}
			expr, err := formulas.Parse(src)
			if err != nil {
				return fmt.Errorf("field %s formula: %w", field.Name, err)
			}
			row.SetValue(field.Name, formula.Eval(expr, fieldEnv{tpl: tpl, row: row}))
		}
	}

	order, err := calculatedOrder(tpl, formulas)
	if err != nil {
		return err
	}
	byMetric := map[int]*core.Row{}
	for _, row := range rep.Rows {
		byMetric[row.MetricID] = row
	}

	for _, id := range order {
		ind, ok := tpl.IndicatorByID(id)
		if !ok || ind.Type != core.IndicatorCalculated {
			continue
		}
		row := byMetric[id]
		if row == nil || !row.Applicable {
			continue
		}
		if ind.Formula != "" {
			expr, err := formulas.Parse(ind.Formula)
			if err != nil {
				return fmt.Errorf("indicator %d formula: %w", id, err)
			}
			for _, path := range valuePaths(tpl) {
				if _, ok := ind.ColumnFormulas[path]; ok {
					continue
				}
				row.SetValue(path, formula.Eval(expr, columnEnv{rows: byMetric, path: path}))
			}
		}
		// overrides run after the row formula so they can read the
		// derived monthly cells (LAST_VAL over end-of-period measures)
		for path, src := range ind.ColumnFormulas {
			expr, err := formulas.Parse(src)
			if err != nil {
				return fmt.Errorf("indicator %d column %s formula: %w", id, path, err)
			}
			row.SetValue(path, formula.Eval(expr, fieldEnv{tpl: tpl, row: row}))
		}
	}
	return nil
}

// calculatedOrder topologically orders indicators so a calculated indicator
// referencing another calculated one is computed after it.
func calculatedOrder(tpl *core.Template, formulas *formula.Cache) ([]int, error) {
	g := dag.NewGraph()
	for i := range tpl.Indicators {
		g.AddNode(tpl.Indicators[i].ID)
	}
	for i := range tpl.Indicators {
		ind := &tpl.Indicators[i]
		if ind.Formula == "" {
			continue
		}
		expr, err := formulas.Parse(ind.Formula)
		if err != nil {
			return nil, fmt.Errorf("indicator %d formula: %w", ind.ID, err)
		}
		for _, ref := range formula.Refs(expr) {
			if g.Has(ref) {
				if err := g.AddEdge(ref, ind.ID); err != nil {
					return nil, err
				}
			}
		}
	}
	return g.TopologicalSort()
}

// entryPaths lists the monthly entry columns (plan and same-period).
func entryPaths(tpl *core.Template) []string {
	var out []string
	for i := range tpl.Fields {
		f := &tpl.Fields[i]
		if f.Component == core.ComponentInput {
			out = append(out, f.Name)
		}
	}
	return out
}

// valuePaths lists every value-carrying column: entry columns plus derived
// display columns. Label columns carry no numbers.
func valuePaths(tpl *core.Template) []string {
	var out []string
	for i := range tpl.Fields {
		f := &tpl.Fields[i]
		if f.Component == core.ComponentInput || f.Component == core.ComponentDisplay {
			out = append(out, f.Name)
		}
	}
	return out
}

func runValidation(ctx *ProjectContext, rep *TableReport) []validate.Finding {
	scheme := ctx.Project.Scheme(rep.Table.Scheme)
	rows := make([]validate.RowData, 0, len(rep.Rows))
	for _, row := range rep.Rows {
		rows = append(rows, validate.RowData{Row: row, Raw: rep.Raw[row.MetricID]})
	}
	return validate.RunCached(ctx.formulas, scheme, rep.Table, rep.Template, rows)
}

// fieldEnv resolves VAL(fieldID) and dotted paths within one row, for field
// formulas and per-indicator column overrides.
type fieldEnv struct {
	tpl *core.Template
	row *core.Row
}

func (e fieldEnv) Val(id int) core.Value {
	if f, ok := e.tpl.FieldByID(id); ok {
		return e.row.Value(f.Name)
	}
	return core.None
}

func (e fieldEnv) Path(path string) core.Value {
	return e.row.Value(path)
}

// columnEnv resolves VAL(indicatorID) against other rows' values in one
// column, for indicator formulas.
type columnEnv struct {
	rows map[int]*core.Row
	path string
}

func (e columnEnv) Val(id int) core.Value {
	if row, ok := e.rows[id]; ok {
		return row.Value(e.path)
	}
	return core.None
}

func (e columnEnv) Path(string) core.Value { return core.None }
