// Package main provides end-to-end tests for the heatplan CLI.
package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/heatstack/heatplan/internal/cli"
)

func projectPath(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	return filepath.Join(wd, "..", "..", "testdata", "project.yaml")
}

func baseArgs(t *testing.T, valuesPath string) []string {
	t.Helper()
	return []string{
		"--project", projectPath(t),
		"--values-path", valuesPath,
		"--period", "2025-2026",
	}
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	output, err := runCLI(t, "version")
	if err != nil {
		t.Errorf("version command error = %v", err)
	}
	if !strings.Contains(output, "heatplan") {
		t.Errorf("version output should contain 'heatplan', got: %s", output)
	}
}

func TestHelpCommand(t *testing.T) {
	output, err := runCLI(t, "--help")
	if err != nil {
		t.Errorf("help command error = %v", err)
	}
	expectedCommands := []string{"check", "list", "cells", "compute", "aggregate", "validate", "set", "submit"}
	for _, expected := range expectedCommands {
		if !strings.Contains(output, expected) {
			t.Errorf("help output should contain %q, got: %s", expected, output)
		}
	}
}

func TestCheckCommand(t *testing.T) {
	valuesPath := filepath.Join(t.TempDir(), "values.db")
	output, err := runCLI(t, append([]string{"check"}, baseArgs(t, valuesPath)...)...)
	if err != nil {
		t.Fatalf("check command error = %v\n%s", err, output)
	}
	if !strings.Contains(output, "OK") {
		t.Errorf("check output should report OK, got: %s", output)
	}
}

func TestListTablesCommand(t *testing.T) {
	valuesPath := filepath.Join(t.TempDir(), "values.db")
	output, err := runCLI(t, append([]string{"list", "tables"}, baseArgs(t, valuesPath)...)...)
	if err != nil {
		t.Fatalf("list command error = %v\n%s", err, output)
	}
	for _, id := range []string{"summary-city", "plant-east", "plant-west"} {
		if !strings.Contains(output, id) {
			t.Errorf("list output should contain %q, got: %s", id, output)
		}
	}
}

func TestListIndicatorsCommand(t *testing.T) {
	valuesPath := filepath.Join(t.TempDir(), "values.db")
	output, err := runCLI(t, append(
		[]string{"list", "indicators", "--table", "plant-west"}, baseArgs(t, valuesPath)...)...)
	if err != nil {
		t.Fatalf("list indicators error = %v\n%s", err, output)
	}
	// The boiler plant does not apply the cogeneration-only indicator.
	if !strings.Contains(output, "cogenerated heat output") || !strings.Contains(output, "no") {
		t.Errorf("expected the cogeneration indicator marked inapplicable, got: %s", output)
	}
}

func TestCellsCommand(t *testing.T) {
	valuesPath := filepath.Join(t.TempDir(), "values.db")
	output, err := runCLI(t, append([]string{"cells", "plant-east"}, baseArgs(t, valuesPath)...)...)
	if err != nil {
		t.Fatalf("cells command error = %v\n%s", err, output)
	}
	if !strings.Contains(output, "W") {
		t.Errorf("cells output should contain writable cells, got: %s", output)
	}
	if !strings.Contains(output, "CALC") {
		t.Errorf("cells output should contain calculated cells, got: %s", output)
	}
}

func TestEnterComputeValidateSubmit(t *testing.T) {
	valuesPath := filepath.Join(t.TempDir(), "values.db")
	base := baseArgs(t, valuesPath)

	entries := [][]string{
		{"set", "plant-east", "8", "monthlyData.october.plan", "100"},
		{"set", "plant-east", "8", "monthlyData.november.plan", "50"},
		{"set", "plant-east", "9", "monthlyData.october.plan", "90"},
		{"set", "plant-east", "9", "monthlyData.november.plan", "40"},
	}
	for _, entry := range entries {
		if output, err := runCLI(t, append(entry, base...)...); err != nil {
			t.Fatalf("set command error = %v\n%s", err, output)
		}
	}

	output, err := runCLI(t, append([]string{"compute", "plant-east"}, base...)...)
	if err != nil {
		t.Fatalf("compute command error = %v\n%s", err, output)
	}
	if !strings.Contains(output, "150.00") {
		t.Errorf("compute output should contain the revenue total 150.00, got: %s", output)
	}
	if !strings.Contains(output, "10.0%") {
		t.Errorf("compute output should contain the October margin 10.0%%, got: %s", output)
	}

	output, err = runCLI(t, append([]string{"validate", "plant-east"}, base...)...)
	if err != nil {
		t.Fatalf("validate command error = %v\n%s", err, output)
	}
	if !strings.Contains(output, "no findings") {
		t.Errorf("validate output should report no findings, got: %s", output)
	}

	output, err = runCLI(t, append([]string{"submit", "plant-east", "--note", "first"}, base...)...)
	if err != nil {
		t.Fatalf("submit command error = %v\n%s", err, output)
	}
	if !strings.Contains(output, "recorded") {
		t.Errorf("submit output should confirm the recording, got: %s", output)
	}
}

func TestAggregateCommand(t *testing.T) {
	valuesPath := filepath.Join(t.TempDir(), "values.db")
	base := baseArgs(t, valuesPath)

	entries := [][]string{
		{"set", "plant-east", "8", "monthlyData.october.plan", "100"},
		{"set", "plant-west", "8", "monthlyData.october.plan", "60"},
	}
	for _, entry := range entries {
		if output, err := runCLI(t, append(entry, base...)...); err != nil {
			t.Fatalf("set command error = %v\n%s", err, output)
		}
	}

	output, err := runCLI(t, append([]string{"aggregate", "summary-city"}, base...)...)
	if err != nil {
		t.Fatalf("aggregate command error = %v\n%s", err, output)
	}
	if !strings.Contains(output, "160.00") {
		t.Errorf("aggregate output should contain the rolled-up 160.00, got: %s", output)
	}
	for _, child := range []string{"plant-east", "plant-west"} {
		if !strings.Contains(output, child) {
			t.Errorf("aggregate output should name contributor %q, got: %s", child, output)
		}
	}
}

func TestValidateRejectsNonNumericEntry(t *testing.T) {
	valuesPath := filepath.Join(t.TempDir(), "values.db")
	base := baseArgs(t, valuesPath)

	if output, err := runCLI(t, append(
		[]string{"set", "plant-east", "9", "monthlyData.october.plan", "abc"}, base...)...); err != nil {
		t.Fatalf("set command error = %v\n%s", err, output)
	}

	output, err := runCLI(t, append([]string{"validate", "plant-east"}, base...)...)
	if err == nil {
		t.Fatalf("validate should fail on a non-numeric entry, got: %s", output)
	}
	if !strings.Contains(output, "must be a number") {
		t.Errorf("validate output should contain the rule message, got: %s", output)
	}

	// Hard findings also block submission.
	output, err = runCLI(t, append([]string{"submit", "plant-east"}, base...)...)
	if err == nil {
		t.Fatalf("submit should be blocked by hard findings, got: %s", output)
	}
}

func TestSetRejectsReadOnlyCell(t *testing.T) {
	valuesPath := filepath.Join(t.TempDir(), "values.db")
	base := baseArgs(t, valuesPath)

	// Calculated rows never accept entry.
	output, err := runCLI(t, append(
		[]string{"set", "plant-east", "115", "monthlyData.october.plan", "5"}, base...)...)
	if err == nil {
		t.Fatalf("set should reject a calculated row, got: %s", output)
	}

	// Display columns never accept entry either.
	output, err = runCLI(t, append(
		[]string{"set", "plant-east", "8", "totals.plan", "5"}, base...)...)
	if err == nil {
		t.Fatalf("set should reject a display column, got: %s", output)
	}
}

func TestComputeUnknownTable(t *testing.T) {
	valuesPath := filepath.Join(t.TempDir(), "values.db")
	output, err := runCLI(t, append([]string{"compute", "plant-north"}, baseArgs(t, valuesPath)...)...)
	if err == nil {
		t.Fatalf("compute should fail for an unknown table, got: %s", output)
	}
	if !strings.Contains(err.Error(), "unknown table") {
		t.Errorf("expected unknown-table error, got: %v", err)
	}
}
