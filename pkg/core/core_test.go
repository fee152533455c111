package core_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heatstack/heatplan/pkg/core"
)

func TestNumber(t *testing.T) {
	assert.Equal(t, core.Value{Num: 1.5, Valid: true}, core.Number(1.5))
	assert.Equal(t, core.Value{Num: 0, Valid: true}, core.Number(0))

	assert.False(t, core.Number(math.NaN()).Valid)
	assert.False(t, core.Number(math.Inf(1)).Valid)
	assert.False(t, core.Number(math.Inf(-1)).Valid)
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		raw  string
		want core.Value
	}{
		{"42", core.Number(42)},
		{"  3.14  ", core.Number(3.14)},
		{"-0.5", core.Number(-0.5)},
		{"1e3", core.Number(1000)},
		{"", core.None},
		{"   ", core.None},
		{"abc", core.None},
		{"12abc", core.None},
		{"NaN", core.None},
		{"Inf", core.None},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, core.ParseValue(tt.raw), "input %q", tt.raw)
	}
}

func TestCellStateString(t *testing.T) {
	assert.Equal(t, "WRITABLE", core.CellWritable.String())
	assert.Equal(t, "READONLY_CALCULATED", core.CellReadonlyCalculated.String())
	assert.Equal(t, "READONLY_DISPLAY", core.CellReadonlyDisplay.String())
	assert.Equal(t, "READONLY_AGGREGATED", core.CellReadonlyAggregated.String())
	assert.Equal(t, "UNKNOWN", core.CellState(99).String())
}

func TestRowSetValue(t *testing.T) {
	var r core.Row
	assert.Equal(t, core.None, r.Value("totals.plan"))

	r.SetValue("totals.plan", core.Number(7))
	assert.Equal(t, core.Number(7), r.Value("totals.plan"))

	r.SetValue("totals.plan", core.None)
	assert.Equal(t, core.None, r.Value("totals.plan"))
}

func TestFormatValue(t *testing.T) {
	dec2 := &core.DisplayFormat{Type: core.FormatDecimal, Places: 2}
	pct1 := &core.DisplayFormat{Type: core.FormatPercentage, Places: 1}
	integer := &core.DisplayFormat{Type: core.FormatInteger}

	assert.Equal(t, "1234.50", core.FormatValue(core.Number(1234.5), dec2))
	assert.Equal(t, "0.00", core.FormatValue(core.Number(0), dec2))
	assert.Equal(t, "10.0%", core.FormatValue(core.Number(0.1), pct1))
	assert.Equal(t, "-25.5%", core.FormatValue(core.Number(-0.255), pct1))
	assert.Equal(t, "3", core.FormatValue(core.Number(2.6), integer))
	assert.Equal(t, "-2", core.FormatValue(core.Number(-2.4), integer))

	// No format: shortest exact decimal rendering.
	assert.Equal(t, "1.5", core.FormatValue(core.Number(1.5), nil))

	// Invalid values always render as a dash.
	assert.Equal(t, "-", core.FormatValue(core.None, nil))
	assert.Equal(t, "-", core.FormatValue(core.None, dec2))
}

func TestSeverity(t *testing.T) {
	assert.Equal(t, "hard", core.SeverityHard.String())
	assert.Equal(t, "soft", core.SeveritySoft.String())

	b, err := core.SeverityHard.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "hard", string(b))

	s, ok := core.ParseSeverity("HARD")
	assert.True(t, ok)
	assert.Equal(t, core.SeverityHard, s)

	s, ok = core.ParseSeverity("soft")
	assert.True(t, ok)
	assert.Equal(t, core.SeveritySoft, s)

	_, ok = core.ParseSeverity("fatal")
	assert.False(t, ok)
}

func TestRuleSetEmpty(t *testing.T) {
	var nilSet *core.RuleSet
	assert.True(t, nilSet.Empty())
	assert.True(t, (&core.RuleSet{}).Empty())
	assert.True(t, (&core.RuleSet{Disabled: true, Hard: []core.Rule{{Kind: core.RuleIsNumber}}}).Empty())
	assert.True(t, (&core.RuleSet{Calc: &core.CalcRule{Enabled: false}}).Empty())

	assert.False(t, (&core.RuleSet{Hard: []core.Rule{{Kind: core.RuleIsNumber}}}).Empty())
	assert.False(t, (&core.RuleSet{Soft: []core.Rule{{Kind: core.RuleNotEmpty}}}).Empty())
	assert.False(t, (&core.RuleSet{Calc: &core.CalcRule{Enabled: true}}).Empty())
}

func TestSchemeForType(t *testing.T) {
	basic := &core.RuleSet{Hard: []core.Rule{{Kind: core.RuleIsNumber}}}
	calc := &core.RuleSet{}
	s := &core.Scheme{Basic: basic, Calculated: calc}

	assert.Same(t, basic, s.ForType(core.IndicatorBasic))
	assert.Same(t, calc, s.ForType(core.IndicatorCalculated))

	var nilScheme *core.Scheme
	assert.Nil(t, nilScheme.ForType(core.IndicatorBasic))
}

func TestIndicatorAppliesTo(t *testing.T) {
	ind := &core.Indicator{
		RequiredProperties: map[string][]string{
			"productionMethod": {"cogeneration", "boiler"},
		},
	}

	assert.True(t, ind.AppliesTo(map[string][]string{
		"productionMethod": {"cogeneration"},
	}))
	assert.True(t, ind.AppliesTo(map[string][]string{
		"productionMethod": {"heat-pump", "boiler"},
	}))
	assert.False(t, ind.AppliesTo(map[string][]string{
		"productionMethod": {"heat-pump"},
	}))

	// A required key the table never declares fails the indicator.
	assert.False(t, ind.AppliesTo(map[string][]string{"fuelType": {"gas"}}))
	assert.False(t, ind.AppliesTo(nil))

	// No requirements: applies everywhere.
	assert.True(t, (&core.Indicator{}).AppliesTo(nil))

	// Every required key must match, not just one.
	multi := &core.Indicator{
		RequiredProperties: map[string][]string{
			"productionMethod": {"cogeneration"},
			"fuelType":         {"gas"},
		},
	}
	assert.True(t, multi.AppliesTo(map[string][]string{
		"productionMethod": {"cogeneration"},
		"fuelType":         {"gas", "coal"},
	}))
	assert.False(t, multi.AppliesTo(map[string][]string{
		"productionMethod": {"cogeneration"},
	}))
}

func TestIndicatorIsVisible(t *testing.T) {
	hidden := false
	shown := true
	assert.True(t, (&core.Indicator{}).IsVisible())
	assert.True(t, (&core.Indicator{Visible: &shown}).IsVisible())
	assert.False(t, (&core.Indicator{Visible: &hidden}).IsVisible())
}

func TestSamePeriodPolicy(t *testing.T) {
	assert.False(t, core.SamePeriodPolicy{}.IsSet())
	assert.True(t, core.SamePeriodPolicy{Mode: core.SamePeriodAll}.IsSet())
	assert.True(t, core.SamePeriodPolicy{IDs: []int{8}}.IsSet())

	p := core.SamePeriodPolicy{IDs: []int{8, 9}}
	assert.True(t, p.Grants(8))
	assert.False(t, p.Grants(10))
}

func TestSubsidiaries(t *testing.T) {
	assert.True(t, core.Subsidiaries{}.IsEmpty())

	s := core.Subsidiaries{
		Tables: []string{"plant-east", "plant-west"},
		Groups: map[string][]string{"downtown": {"plant-south"}},
	}
	assert.False(t, s.IsEmpty())

	all := s.All()
	assert.Len(t, all, 3)
	assert.Equal(t, []string{"plant-east", "plant-west"}, all[:2])
	assert.Contains(t, all, "plant-south")
}

func TestTableExclusions(t *testing.T) {
	tbl := &core.Table{
		AggregationExclusions:  []int{115},
		BeAggregatedExclusions: []int{10},
	}
	assert.True(t, tbl.ExcludesAggregation(115))
	assert.False(t, tbl.ExcludesAggregation(10))
	assert.True(t, tbl.ExcludesBeingAggregated(10))
	assert.False(t, tbl.ExcludesBeingAggregated(115))
}

func TestTemplateLookups(t *testing.T) {
	tpl := &core.Template{
		Fields: []core.Field{
			{ID: 1001, Name: "name"},
			{ID: 2001, Name: "monthlyData.october.plan"},
		},
		Indicators: []core.Indicator{
			{ID: 8, Name: "revenue"},
		},
	}

	f, ok := tpl.FieldByID(2001)
	require.True(t, ok)
	assert.Equal(t, "monthlyData.october.plan", f.Name)
	_, ok = tpl.FieldByID(9999)
	assert.False(t, ok)

	f, ok = tpl.FieldByName("name")
	require.True(t, ok)
	assert.Equal(t, 1001, f.ID)
	_, ok = tpl.FieldByName("totals.plan")
	assert.False(t, ok)

	ind, ok := tpl.IndicatorByID(8)
	require.True(t, ok)
	assert.Equal(t, "revenue", ind.Name)
	_, ok = tpl.IndicatorByID(115)
	assert.False(t, ok)
}

func TestTemplateFormatFor(t *testing.T) {
	tplDefault := &core.DisplayFormat{Type: core.FormatDecimal, Places: 2}
	rowFormat := &core.DisplayFormat{Type: core.FormatPercentage, Places: 1}
	colFormat := &core.DisplayFormat{Type: core.FormatInteger}

	tpl := &core.Template{Format: tplDefault}
	field := &core.Field{Format: colFormat}
	ind := &core.Indicator{Format: rowFormat}

	assert.Same(t, colFormat, tpl.FormatFor(field, ind))
	assert.Same(t, rowFormat, tpl.FormatFor(&core.Field{}, ind))
	assert.Same(t, tplDefault, tpl.FormatFor(&core.Field{}, &core.Indicator{}))
	assert.Same(t, tplDefault, tpl.FormatFor(nil, nil))

	bare := &core.Template{}
	assert.Nil(t, bare.FormatFor(nil, nil))
}

func TestProjectLookups(t *testing.T) {
	tpl := &core.Template{Name: "heat"}
	scheme := &core.Scheme{Basic: &core.RuleSet{}}
	p := &core.Project{
		ID: "heating_plan_2025-2026",
		Tables: []core.Table{
			{ID: "summary-city", Template: "heat"},
			{ID: "plant-east", Template: "heat"},
		},
		Templates: map[string]*core.Template{"heat": tpl},
		Schemes: map[string]*core.Scheme{
			core.DefaultSchemeName: scheme,
			"strict":               {},
		},
	}

	tbl, ok := p.TableByID("plant-east")
	require.True(t, ok)
	assert.Equal(t, "plant-east", tbl.ID)
	_, ok = p.TableByID("plant-north")
	assert.False(t, ok)

	got, ok := p.TemplateFor(tbl)
	require.True(t, ok)
	assert.Same(t, tpl, got)
	_, ok = p.TemplateFor(&core.Table{Template: "missing"})
	assert.False(t, ok)

	// An empty scheme name falls back to "default".
	assert.Same(t, scheme, p.Scheme(""))
	assert.Same(t, scheme, p.Scheme(core.DefaultSchemeName))
	assert.NotNil(t, p.Scheme("strict"))
	assert.Nil(t, p.Scheme("unknown"))
}
