package commands

import (
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/heatstack/heatplan/internal/cli/output"
	"github.com/heatstack/heatplan/pkg/core"
	"github.com/heatstack/heatplan/pkg/report"
)

// NewAggregateCommand creates the aggregate command.
func NewAggregateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "aggregate <table>",
		Short: "Show a summary table's rollup and per-child contributions",
		Long: `Show where a summary table's rolled-up values come from: the overall
sum per indicator and column, per-role group sums, and the individual
subsidiary contributions after both exclusion directions.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			return runAggregate(ctx, args[0])
		},
	}
}

func runAggregate(ctx *CommandContext, tableID string) error {
	r := ctx.Renderer

	tbl, err := ctx.resolveTable(tableID)
	if err != nil {
		return err
	}
	values, err := ctx.PeriodValues()
	if err != nil {
		return err
	}
	agg, err := report.Aggregate(ctx.Engine, tbl.ID, values)
	if err != nil {
		return err
	}

	if r.Mode() == output.ModeJSON {
		return r.JSON(aggregateJSON(agg))
	}

	tpl, _ := ctx.Project.TemplateFor(tbl)
	r.Printf("%s (%s) aggregates %d subsidiaries\n",
		tbl.Name, tbl.ID, len(tbl.Subsidiaries.Tables))

	for _, path := range sortedKeys(agg.Columns) {
		byMetric := agg.Columns[path]
		r.Printf("\n%s\n", path)

		children := childIDs(agg.Contributions[path])
		header := table.Row{"ID", "INDICATOR", "TOTAL"}
		for _, child := range children {
			header = append(header, child)
		}

		rows := make([]table.Row, 0, len(byMetric))
		for _, id := range sortedIntKeys(byMetric) {
			name := ""
			var format *core.DisplayFormat
			if tpl != nil {
				if ind, ok := tpl.IndicatorByID(id); ok {
					name = ind.Name
					f, _ := tpl.FieldByName(path)
					format = tpl.FormatFor(f, ind)
				}
			}
			out := table.Row{id, name, core.FormatValue(byMetric[id], format)}
			for _, child := range children {
				out = append(out, core.FormatValue(agg.Contributions[path][id][child], format))
			}
			rows = append(rows, out)
		}
		r.Table(header, rows)
	}

	for _, role := range sortedKeys(agg.Groups) {
		r.Printf("\ngroup %s\n", role)
		for _, path := range sortedKeys(agg.Groups[role]) {
			byMetric := agg.Groups[role][path]
			rows := make([]table.Row, 0, len(byMetric))
			for _, id := range sortedIntKeys(byMetric) {
				rows = append(rows, table.Row{id, path, core.FormatValue(byMetric[id], nil)})
			}
			r.Table(table.Row{"ID", "COLUMN", "SUM"}, rows)
		}
	}
	return nil
}

func aggregateJSON(agg *report.AggregateReport) map[string]any {
	return map[string]any{
		"table":         agg.Table.ID,
		"columns":       valueMapJSON(agg.Columns),
		"groups":        groupsJSON(agg.Groups),
		"contributions": contributionsJSON(agg.Contributions),
	}
}

func valueMapJSON(m map[string]map[int]core.Value) map[string]map[int]*float64 {
	out := make(map[string]map[int]*float64, len(m))
	for path, byMetric := range m {
		out[path] = make(map[int]*float64, len(byMetric))
		for id, v := range byMetric {
			out[path][id] = numOrNil(v)
		}
	}
	return out
}

func groupsJSON(m map[string]map[string]map[int]core.Value) map[string]map[string]map[int]*float64 {
	out := make(map[string]map[string]map[int]*float64, len(m))
	for role, byPath := range m {
		out[role] = valueMapJSON(byPath)
	}
	return out
}

func contributionsJSON(m map[string]map[int]map[string]core.Value) map[string]map[int]map[string]*float64 {
	out := make(map[string]map[int]map[string]*float64, len(m))
	for path, byMetric := range m {
		out[path] = make(map[int]map[string]*float64, len(byMetric))
		for id, byChild := range byMetric {
			out[path][id] = make(map[string]*float64, len(byChild))
			for child, v := range byChild {
				out[path][id][child] = numOrNil(v)
			}
		}
	}
	return out
}

func numOrNil(v core.Value) *float64 {
	if !v.Valid {
		return nil
	}
	num := v.Num
	return &num
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedIntKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

func childIDs(m map[int]map[string]core.Value) []string {
	seen := map[string]bool{}
	for _, byChild := range m {
		for child := range byChild {
			seen[child] = true
		}
	}
	return sortedKeys(seen)
}
