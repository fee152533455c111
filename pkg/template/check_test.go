package template_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/heatstack/heatplan/internal/testutil"
	"github.com/heatstack/heatplan/pkg/core"
	"github.com/heatstack/heatplan/pkg/template"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckCleanProject(t *testing.T) {
	assert.NoError(t, template.Check(testutil.Project()))
}

func checkIssues(t *testing.T, p *core.Project) []template.Issue {
	t.Helper()
	err := template.Check(p)
	require.Error(t, err)
	var ce *template.CheckError
	require.ErrorAs(t, err, &ce)
	require.NotEmpty(t, ce.Issues)
	return ce.Issues
}

func issuesContain(issues []template.Issue, substr string) bool {
	for _, i := range issues {
		if strings.Contains(i.String(), substr) {
			return true
		}
	}
	return false
}

func TestCheckDanglingFormulaReference(t *testing.T) {
	p := testutil.Project()
	p.Templates["heat"].Indicators[5].Formula = "VAL(8) - VAL(999)"

	issues := checkIssues(t, p)
	assert.True(t, issuesContain(issues, "unknown indicator 999"), "got %v", issues)
}

func TestCheckFormulaCycle(t *testing.T) {
	p := testutil.Project()
	tpl := p.Templates["heat"]
	tpl.Indicators = append(tpl.Indicators,
		core.Indicator{ID: 200, Type: core.IndicatorCalculated, Formula: "VAL(201) + 1"},
		core.Indicator{ID: 201, Type: core.IndicatorCalculated, Formula: "VAL(200) + 1"},
	)

	issues := checkIssues(t, p)
	assert.True(t, issuesContain(issues, "cycle"), "got %v", issues)
}

func TestCheckSelfReference(t *testing.T) {
	p := testutil.Project()
	p.Templates["heat"].Indicators[5].Formula = fmt.Sprintf("VAL(%d) * 2", testutil.IndicatorMargin)

	issues := checkIssues(t, p)
	assert.True(t, issuesContain(issues, "references itself"), "got %v", issues)
}

func TestCheckUnknownTemplate(t *testing.T) {
	p := testutil.Project()
	p.Tables[1].Template = "missing"

	issues := checkIssues(t, p)
	assert.True(t, issuesContain(issues, `unknown template "missing"`), "got %v", issues)
}

func TestCheckUnknownTableKind(t *testing.T) {
	p := testutil.Project()
	p.Tables[1].Kind = "sumary"

	issues := checkIssues(t, p)
	assert.True(t, issuesContain(issues, `unknown table kind "sumary"`), "got %v", issues)
}

func TestCheckUnknownOverrideIndicator(t *testing.T) {
	p := testutil.Project()
	p.Tables[1].ValidationOverrides = map[int]*core.RuleSet{999: nil}

	issues := checkIssues(t, p)
	assert.True(t, issuesContain(issues, "unknown indicator 999"), "got %v", issues)
}

func TestCheckUnknownSubsidiary(t *testing.T) {
	p := testutil.Project()
	p.Tables[0].Subsidiaries.Tables = append(p.Tables[0].Subsidiaries.Tables, "plant-north")

	issues := checkIssues(t, p)
	assert.True(t, issuesContain(issues, `unknown subsidiary table "plant-north"`), "got %v", issues)
}

func TestCheckSelfSubsidiary(t *testing.T) {
	p := testutil.Project()
	p.Tables[0].Subsidiaries.Tables = append(p.Tables[0].Subsidiaries.Tables, "summary-city")

	issues := checkIssues(t, p)
	assert.True(t, issuesContain(issues, "lists itself"), "got %v", issues)
}

func TestCheckUndeclaredPropertyKey(t *testing.T) {
	p := testutil.Project()
	p.Templates["heat"].Indicators[0].RequiredProperties = map[string][]string{"climateZone": {"north"}}

	issues := checkIssues(t, p)
	assert.True(t, issuesContain(issues, `property "climateZone"`), "got %v", issues)
}

func TestCheckComparisonOperands(t *testing.T) {
	p := testutil.Project()
	p.Tables[1].ValidationOverrides = map[int]*core.RuleSet{
		testutil.IndicatorRevenue: {
			Soft: []core.Rule{{
				Kind:     core.RuleComparison,
				FieldA:   "totals.missing",
				Operator: "~",
				FieldB:   "9999",
			}},
		},
	}

	issues := checkIssues(t, p)
	assert.True(t, issuesContain(issues, `unknown field path "totals.missing"`), "got %v", issues)
	assert.True(t, issuesContain(issues, "unknown field 9999"), "got %v", issues)
	assert.True(t, issuesContain(issues, `unknown comparison operator "~"`), "got %v", issues)
}

func TestCheckBadExprRule(t *testing.T) {
	p := testutil.Project()
	p.Templates["heat"].Indicators[0].Validation = &core.RuleSet{
		Hard: []core.Rule{{Kind: core.RuleExpr, Expr: "totals.plan >="}},
	}

	issues := checkIssues(t, p)
	assert.True(t, issuesContain(issues, "expr rule"), "got %v", issues)
}

func TestCheckIssueAttribution(t *testing.T) {
	p := testutil.Project()
	p.Tables[1].ValidationOverrides = map[int]*core.RuleSet{999: nil}
	p.Tables[2].AggregationExclusions = []int{888}

	err := template.Check(p)
	var ce *template.CheckError
	require.ErrorAs(t, err, &ce)

	assert.NotEmpty(t, ce.ForTable("plant-east"))
	assert.NotEmpty(t, ce.ForTable("plant-west"))
	assert.Empty(t, ce.ForTable("summary-city"))
}
