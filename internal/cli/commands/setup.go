package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/heatstack/heatplan/internal/cli/output"
	"github.com/heatstack/heatplan/internal/config"
	"github.com/heatstack/heatplan/internal/state"
	"github.com/heatstack/heatplan/pkg/core"
	"github.com/heatstack/heatplan/pkg/report"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Project  *core.Project
	Engine   *report.ProjectContext
	Renderer *output.Renderer
}

// NewCommandContext loads the project, runs the static configuration
// check, and wires a renderer for the configured output mode.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	cfg := config.Current()

	p, err := config.LoadProject(cfg.Project)
	if err != nil {
		return nil, err
	}
	eng, err := report.NewContext(p)
	if err != nil {
		return nil, fmt.Errorf("project configuration is invalid, run 'heatplan check': %w", err)
	}

	return &CommandContext{
		Cfg:      cfg,
		Logger:   slog.Default(),
		Project:  p,
		Engine:   eng,
		Renderer: newRenderer(cmd, cfg),
	}, nil
}

func newRenderer(cmd *cobra.Command, cfg *config.Config) *output.Renderer {
	return output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.Output))
}

// OpenStore opens the entered-values database. The returned cleanup
// function must be called, typically via defer.
func (c *CommandContext) OpenStore() (*state.Store, func(), error) {
	store := state.NewStore()
	if err := store.Open(c.Cfg.ValuesPath); err != nil {
		return nil, nil, err
	}
	if err := store.InitSchema(); err != nil {
		store.Close()
		return nil, nil, err
	}
	return store, func() { _ = store.Close() }, nil
}

// PeriodValues loads all entered values of the configured period.
func (c *CommandContext) PeriodValues() (report.ValueSet, error) {
	store, cleanup, err := c.OpenStore()
	if err != nil {
		return nil, err
	}
	defer cleanup()
	return store.PeriodValues(c.Cfg.Period)
}

// resolveTable maps the positional table argument onto the project menu.
func (c *CommandContext) resolveTable(id string) (*core.Table, error) {
	tbl, ok := c.Project.TableByID(id)
	if !ok {
		return nil, fmt.Errorf("unknown table %q, run 'heatplan list tables'", id)
	}
	return tbl, nil
}
