package commands

import (
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/heatstack/heatplan/internal/cli/output"
	"github.com/heatstack/heatplan/pkg/core"
	"github.com/heatstack/heatplan/pkg/report"
	"github.com/heatstack/heatplan/pkg/validate"
)

// labelValue fills a label column from the indicator definition.
func labelValue(f *core.Field, ind *core.Indicator) string {
	switch f.Name {
	case "name":
		return ind.Name
	case "unit":
		return ind.Unit
	case "category":
		return ind.Category
	default:
		return ""
	}
}

// reportHeader builds the table header from column labels.
func reportHeader(tpl *core.Template) table.Row {
	header := table.Row{"ID"}
	for i := range tpl.Fields {
		header = append(header, tpl.Fields[i].Label)
	}
	return header
}

// reportRows renders computed rows in template order. Invisible
// indicators are skipped; inapplicable rows render empty.
func reportRows(rep *report.TableReport) []table.Row {
	rows := make([]table.Row, 0, len(rep.Rows))
	for _, row := range rep.Rows {
		ind, ok := rep.Template.IndicatorByID(row.MetricID)
		if !ok || !ind.IsVisible() {
			continue
		}
		out := table.Row{ind.ID}
		for i := range rep.Template.Fields {
			f := &rep.Template.Fields[i]
			if f.Component == core.ComponentLabel {
				out = append(out, labelValue(f, ind))
				continue
			}
			if !row.Applicable {
				out = append(out, "")
				continue
			}
			format := rep.Template.FormatFor(f, ind)
			out = append(out, core.FormatValue(row.Value(f.Name), format))
		}
		rows = append(rows, out)
	}
	return rows
}

// reportJSON shapes a computed report for JSON output.
func reportJSON(rep *report.TableReport, period string) map[string]any {
	type jsonRow struct {
		ID         int                 `json:"id"`
		Name       string              `json:"name"`
		Unit       string              `json:"unit,omitempty"`
		Applicable bool                `json:"applicable"`
		Values     map[string]*float64 `json:"values"`
	}

	rows := make([]jsonRow, 0, len(rep.Rows))
	for _, row := range rep.Rows {
		ind, ok := rep.Template.IndicatorByID(row.MetricID)
		if !ok {
			continue
		}
		values := map[string]*float64{}
		for i := range rep.Template.Fields {
			f := &rep.Template.Fields[i]
			if f.Component == core.ComponentLabel {
				continue
			}
			v := row.Value(f.Name)
			if v.Valid {
				num := v.Num
				values[f.Name] = &num
			} else {
				values[f.Name] = nil
			}
		}
		rows = append(rows, jsonRow{
			ID:         ind.ID,
			Name:       ind.Name,
			Unit:       ind.Unit,
			Applicable: row.Applicable,
			Values:     values,
		})
	}

	return map[string]any{
		"table":    rep.Table.ID,
		"period":   period,
		"rows":     rows,
		"findings": rep.Findings,
	}
}

// renderFindings prints validation findings as a table, nothing when the
// list is empty.
func renderFindings(r *output.Renderer, findings []validate.Finding) {
	if len(findings) == 0 {
		return
	}
	rows := make([]table.Row, 0, len(findings))
	for _, f := range findings {
		rows = append(rows, table.Row{f.Severity.String(), f.MetricID, string(f.Rule), f.Message})
	}
	r.Table(table.Row{"SEVERITY", "INDICATOR", "RULE", "MESSAGE"}, rows)
}
