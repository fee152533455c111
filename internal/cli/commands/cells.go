package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/heatstack/heatplan/internal/cli/output"
	"github.com/heatstack/heatplan/pkg/cells"
	"github.com/heatstack/heatplan/pkg/core"
	"github.com/heatstack/heatplan/pkg/report"
)

// NewCellsCommand creates the cells command.
func NewCellsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cells <table>",
		Short: "Show the cell state matrix of a table",
		Long: `Show which cells of a table accept entry and which are read-only,
per indicator row and value column. States:

  W     writable
  CALC  read-only, derived by a formula
  DISP  read-only, display column (totals)
  AGG   read-only, rolled up from subsidiaries`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			return runCells(ctx, args[0])
		},
	}
}

func shortState(s core.CellState) string {
	switch s {
	case core.CellWritable:
		return "W"
	case core.CellReadonlyCalculated:
		return "CALC"
	case core.CellReadonlyDisplay:
		return "DISP"
	case core.CellReadonlyAggregated:
		return "AGG"
	default:
		return "?"
	}
}

func runCells(ctx *CommandContext, tableID string) error {
	r := ctx.Renderer

	tbl, err := ctx.resolveTable(tableID)
	if err != nil {
		return err
	}

	// An empty value set yields the structural report: rows in template
	// order with applicability resolved.
	rep, err := report.Compute(ctx.Engine, tbl.ID, report.ValueSet{})
	if err != nil {
		return err
	}

	var valueFields []*core.Field
	for i := range rep.Template.Fields {
		f := &rep.Template.Fields[i]
		if f.Component != core.ComponentLabel {
			valueFields = append(valueFields, f)
		}
	}

	if r.Mode() == output.ModeJSON {
		matrix := map[int]map[string]string{}
		for _, row := range rep.Rows {
			states := map[string]string{}
			for _, f := range valueFields {
				states[f.Name] = cells.State(row, f, tbl).String()
			}
			matrix[row.MetricID] = states
		}
		return r.JSON(matrix)
	}

	header := table.Row{"ID", "INDICATOR"}
	for _, f := range valueFields {
		header = append(header, f.Label)
	}

	rows := make([]table.Row, 0, len(rep.Rows))
	for _, row := range rep.Rows {
		ind, ok := rep.Template.IndicatorByID(row.MetricID)
		if !ok {
			return fmt.Errorf("row %d has no indicator", row.MetricID)
		}
		if !row.Applicable {
			rows = append(rows, table.Row{ind.ID, ind.Name + " (not applicable)"})
			continue
		}
		out := table.Row{ind.ID, ind.Name}
		for _, f := range valueFields {
			out = append(out, shortState(cells.State(row, f, tbl)))
		}
		rows = append(rows, out)
	}
	r.Table(header, rows)
	return nil
}
