package commands

import (
	"errors"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/heatstack/heatplan/internal/cli/output"
	"github.com/heatstack/heatplan/internal/config"
	"github.com/heatstack/heatplan/pkg/template"
)

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check the project configuration",
		Long: `Run the static configuration check: formula syntax, indicator and
field references, circular dependencies, rule definitions, and the
table menu (templates, schemes, subsidiaries, exclusions).

All problems are collected and reported together, attributed to the
tables they break.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCheck(cmd)
		},
	}
}

func runCheck(cmd *cobra.Command) error {
	cfg := config.Current()
	r := newRenderer(cmd, cfg)

	p, err := config.LoadProject(cfg.Project)
	if err != nil {
		return err
	}

	err = template.Check(p)
	var ce *template.CheckError
	if errors.As(err, &ce) {
		if r.Mode() == output.ModeJSON {
			if jsonErr := r.JSON(ce.Issues); jsonErr != nil {
				return jsonErr
			}
		} else {
			rows := make([]table.Row, 0, len(ce.Issues))
			for _, issue := range ce.Issues {
				tableID := issue.TableID
				if tableID == "" {
					tableID = "(project)"
				}
				rows = append(rows, table.Row{tableID, issue.Message})
			}
			r.Table(table.Row{"TABLE", "PROBLEM"}, rows)
		}
		return fmt.Errorf("configuration check failed with %d problem(s)", len(ce.Issues))
	}
	if err != nil {
		return err
	}

	if r.Mode() == output.ModeJSON {
		return r.JSON(map[string]any{
			"project":   p.ID,
			"tables":    len(p.Tables),
			"templates": len(p.Templates),
			"ok":        true,
		})
	}
	r.Printf("Project %s OK: %d tables, %d templates, %d schemes\n",
		p.ID, len(p.Tables), len(p.Templates), len(p.Schemes))
	return nil
}
