package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/heatstack/heatplan/pkg/cells"
	"github.com/heatstack/heatplan/pkg/core"
	"github.com/heatstack/heatplan/pkg/report"
)

// NewSetCommand creates the set command.
func NewSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set <table> <indicator-id> <field-path> <value>",
		Short: "Store an entered value",
		Long: `Store one entered value for the configured period. The target cell
must be writable; the value is kept as the raw entered text and
re-parsed on every computation. An empty value clears the cell.`,
		Example: `  heatplan set plant-east 8 monthlyData.october.plan 1250
  heatplan set plant-east 8 monthlyData.october.plan ""`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			return runSet(ctx, args[0], args[1], args[2], args[3])
		},
	}
}

func runSet(ctx *CommandContext, tableID, metricArg, fieldPath, value string) error {
	tbl, err := ctx.resolveTable(tableID)
	if err != nil {
		return err
	}
	metricID, err := strconv.Atoi(metricArg)
	if err != nil {
		return fmt.Errorf("indicator id must be numeric, got %q", metricArg)
	}

	tpl, ok := ctx.Project.TemplateFor(tbl)
	if !ok {
		return fmt.Errorf("table %q references unknown template %q", tbl.ID, tbl.Template)
	}
	field, ok := tpl.FieldByName(fieldPath)
	if !ok {
		return fmt.Errorf("unknown field %q in template %q", fieldPath, tpl.Name)
	}

	// Resolve the row to enforce writability the same way the engine does.
	rep, err := report.Compute(ctx.Engine, tbl.ID, report.ValueSet{})
	if err != nil {
		return err
	}
	row, ok := rep.Row(metricID)
	if !ok {
		return fmt.Errorf("unknown indicator %d in template %q", metricID, tpl.Name)
	}
	if state := cells.State(row, field, tbl); state != core.CellWritable {
		return fmt.Errorf("cell %d/%s is %s, not writable", metricID, fieldPath, state)
	}

	store, cleanup, err := ctx.OpenStore()
	if err != nil {
		return err
	}
	defer cleanup()

	if err := store.SaveValue(tbl.ID, ctx.Cfg.Period, metricID, fieldPath, value); err != nil {
		return err
	}

	if value == "" {
		ctx.Renderer.Printf("cleared %s %d/%s for %s\n", tbl.ID, metricID, fieldPath, ctx.Cfg.Period)
	} else {
		ctx.Renderer.Printf("stored %s %d/%s = %q for %s\n", tbl.ID, metricID, fieldPath, value, ctx.Cfg.Period)
	}
	return nil
}
