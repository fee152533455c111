package commands

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/heatstack/heatplan/internal/cli/output"
	"github.com/heatstack/heatplan/pkg/core"
	"github.com/heatstack/heatplan/pkg/template"
)

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	var tableFlag string

	cmd := &cobra.Command{
		Use:       "list [tables|indicators]",
		Short:     "List the table menu or a table's resolved indicators",
		ValidArgs: []string{"tables", "indicators"},
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		Example: `  # Show the table menu
  heatplan list tables

  # Show the resolved rows of one table
  heatplan list indicators --table plant-east`,
		RunE: func(cmd *cobra.Command, args []string) error {
			what := "tables"
			if len(args) == 1 {
				what = args[0]
			}
			ctx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			if what == "indicators" {
				if tableFlag == "" {
					return fmt.Errorf("list indicators requires --table")
				}
				return listIndicators(ctx, tableFlag)
			}
			return listTables(ctx)
		},
	}

	cmd.Flags().StringVar(&tableFlag, "table", "", "table to resolve indicators for")
	return cmd
}

func listTables(ctx *CommandContext) error {
	r := ctx.Renderer

	if r.Mode() == output.ModeJSON {
		type entry struct {
			ID           string   `json:"id"`
			Name         string   `json:"name"`
			Kind         string   `json:"kind"`
			Template     string   `json:"template"`
			Scheme       string   `json:"scheme,omitempty"`
			Subsidiaries []string `json:"subsidiaries,omitempty"`
		}
		entries := make([]entry, 0, len(ctx.Project.Tables))
		for i := range ctx.Project.Tables {
			t := &ctx.Project.Tables[i]
			entries = append(entries, entry{
				ID:           t.ID,
				Name:         t.Name,
				Kind:         string(t.Kind),
				Template:     t.Template,
				Scheme:       t.Scheme,
				Subsidiaries: t.Subsidiaries.All(),
			})
		}
		return r.JSON(entries)
	}

	rows := make([]table.Row, 0, len(ctx.Project.Tables))
	for i := range ctx.Project.Tables {
		t := &ctx.Project.Tables[i]
		rows = append(rows, table.Row{
			t.ID, t.Name, string(t.Kind), t.Template,
			strings.Join(t.Subsidiaries.All(), ", "),
		})
	}
	r.Table(table.Row{"ID", "NAME", "KIND", "TEMPLATE", "SUBSIDIARIES"}, rows)
	return nil
}

func listIndicators(ctx *CommandContext, tableID string) error {
	r := ctx.Renderer

	tbl, err := ctx.resolveTable(tableID)
	if err != nil {
		return err
	}
	tpl, ok := ctx.Project.TemplateFor(tbl)
	if !ok {
		return fmt.Errorf("table %q references unknown template %q", tbl.ID, tbl.Template)
	}

	resolved := template.Resolve(tpl, tbl)

	if r.Mode() == output.ModeJSON {
		type entry struct {
			ID         int    `json:"id"`
			Name       string `json:"name"`
			Unit       string `json:"unit,omitempty"`
			Type       string `json:"type"`
			Applicable bool   `json:"applicable"`
		}
		entries := make([]entry, 0, len(resolved))
		for _, res := range resolved {
			entries = append(entries, entry{
				ID:         res.Indicator.ID,
				Name:       res.Indicator.Name,
				Unit:       res.Indicator.Unit,
				Type:       string(res.Indicator.Type),
				Applicable: res.Applicable,
			})
		}
		return r.JSON(entries)
	}

	rows := make([]table.Row, 0, len(resolved))
	for _, res := range resolved {
		applicable := "yes"
		if !res.Applicable {
			applicable = "no"
		}
		name := res.Indicator.Name
		if res.Indicator.Type == core.IndicatorCalculated {
			name += " *"
		}
		rows = append(rows, table.Row{res.Indicator.ID, name, res.Indicator.Unit, applicable})
	}
	r.Table(table.Row{"ID", "INDICATOR", "UNIT", "APPLICABLE"}, rows)
	r.Println("(* = calculated)")
	return nil
}
