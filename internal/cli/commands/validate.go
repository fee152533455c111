package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/heatstack/heatplan/internal/cli/output"
	"github.com/heatstack/heatplan/pkg/core"
	"github.com/heatstack/heatplan/pkg/report"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <table>",
		Short: "Validate a table's entered values",
		Long: `Compute a table for the configured period and report every hard and
soft validation finding. Hard findings block submission; soft findings
are warnings the user may acknowledge.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			return runValidate(ctx, args[0])
		},
	}
}

func runValidate(ctx *CommandContext, tableID string) error {
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

	hard, soft := countFindings(rep)

	if r.Mode() == output.ModeJSON {
		return r.JSON(map[string]any{
			"table":    tbl.ID,
			"period":   ctx.Cfg.Period,
			"hard":     hard,
			"soft":     soft,
			"findings": rep.Findings,
		})
	}

	if len(rep.Findings) == 0 {
		r.Printf("%s: no findings for period %s\n", tbl.ID, ctx.Cfg.Period)
		return nil
	}
	renderFindings(r, rep.Findings)
	r.Printf("%d hard, %d soft\n", hard, soft)
	if hard > 0 {
		return fmt.Errorf("%d hard finding(s) block submission", hard)
	}
	return nil
}

func countFindings(rep *report.TableReport) (hard, soft int) {
	for _, f := range rep.Findings {
		if f.Severity == core.SeverityHard {
			hard++
		} else {
			soft++
		}
	}
	return hard, soft
}
