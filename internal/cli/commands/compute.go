package commands

import (
	"github.com/spf13/cobra"

	"github.com/heatstack/heatplan/internal/cli/output"
	"github.com/heatstack/heatplan/pkg/report"
)

// NewComputeCommand creates the compute command.
func NewComputeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "compute <table>",
		Short: "Compute a table from the stored values",
		Long: `Compute a full table for the configured period: entered values are
applied to writable cells, calculated rows and period totals are
derived, summary tables roll their subsidiaries up, and validation
runs over the result.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			return runCompute(ctx, args[0])
		},
	}
}

func runCompute(ctx *CommandContext, tableID string) error {
	r := ctx.Renderer

	tbl, err := ctx.resolveTable(tableID)
	if err != nil {
		return err
	}
	values, err := ctx.PeriodValues()
	if err != nil {
		return err
	}
	rep, err := report.Compute(ctx.Engine, tbl.ID, values)
	if err != nil {
		return err
	}
	ctx.Logger.Debug("table computed",
		"table", tbl.ID, "rows", len(rep.Rows), "findings", len(rep.Findings))

	if r.Mode() == output.ModeJSON {
		return r.JSON(reportJSON(rep, ctx.Cfg.Period))
	}

	r.Printf("%s (%s), period %s\n", tbl.Name, tbl.ID, ctx.Cfg.Period)
	r.Table(reportHeader(rep.Template), reportRows(rep))
	renderFindings(r, rep.Findings)
	return nil
}
