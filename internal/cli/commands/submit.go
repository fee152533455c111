package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/heatstack/heatplan/internal/cli/output"
	"github.com/heatstack/heatplan/pkg/report"
)

// NewSubmitCommand creates the submit command.
func NewSubmitCommand() *cobra.Command {
	var note string

	cmd := &cobra.Command{
		Use:   "submit <table>",
		Short: "Validate and record a submission",
		Long: `Validate a table for the configured period and record a submission
when no hard findings remain. Soft findings do not block; their count
is recorded with the submission.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			return runSubmit(ctx, args[0], note)
		},
	}

	cmd.Flags().StringVar(&note, "note", "", "note to record with the submission")
	return cmd
}

func runSubmit(ctx *CommandContext, tableID, note string) error {
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
	if hard > 0 {
		renderFindings(r, rep.Findings)
		return fmt.Errorf("submission blocked by %d hard finding(s)", hard)
	}

	store, cleanup, err := ctx.OpenStore()
	if err != nil {
		return err
	}
	defer cleanup()

	sub, err := store.RecordSubmission(tbl.ID, ctx.Cfg.Period, hard, soft, note)
	if err != nil {
		return err
	}
	ctx.Logger.Debug("submission recorded", "id", sub.ID, "table", sub.TableID)

	if r.Mode() == output.ModeJSON {
		return r.JSON(map[string]any{
			"id":           sub.ID,
			"table":        sub.TableID,
			"period":       sub.Period,
			"submittedAt":  sub.SubmittedAt,
			"softFindings": sub.SoftFindings,
		})
	}
	if soft > 0 {
		renderFindings(r, rep.Findings)
		r.Printf("submitted with %d soft finding(s)\n", soft)
	}
	r.Printf("submission %s recorded for %s, period %s\n", sub.ID, sub.TableID, sub.Period)
	return nil
}
