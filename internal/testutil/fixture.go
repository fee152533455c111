// Package testutil provides a shared fixture project for engine tests.
package testutil

import (
	"fmt"

	"github.com/heatstack/heatplan/pkg/core"
)

// Months of one heating season, in reporting order.
var Months = []string{"october", "november", "december", "january", "february", "march", "april"}

// Well-known fixture IDs, mirroring a typical heating-plan template layout:
// label columns, alternating monthly plan/same-period input columns, and the
// two derived totals columns.
const (
	FieldName            = 1001
	FieldUnit            = 1002
	FieldTotalsPlan      = 1003
	FieldTotalsSame      = 1004
	FieldFirstMonth      = 2001 // october plan; same-period is +1, next month +2
	IndicatorRevenue     = 8
	IndicatorCost        = 9
	IndicatorHeatOutput  = 10
	IndicatorCapacity    = 11
	IndicatorTemperature = 12
	IndicatorMargin      = 115
)

// MonthField returns the field ID of a monthly column. samePeriod selects
// the comparison-baseline column next to the plan column.
func MonthField(monthIndex int, samePeriod bool) int {
	id := FieldFirstMonth + 2*monthIndex
	if samePeriod {
		id++
	}
	return id
}

// PlanPath returns the dotted value path of a monthly plan cell.
func PlanPath(month string) string {
	return fmt.Sprintf("monthlyData.%s.plan", month)
}

// SamePeriodPath returns the dotted value path of a monthly same-period cell.
func SamePeriodPath(month string) string {
	return fmt.Sprintf("monthlyData.%s.samePeriod", month)
}

func sumFormula(samePeriod bool) string {
	out := ""
	for i := range Months {
		if i > 0 {
			out += " + "
		}
		out += fmt.Sprintf("VAL(%d)", MonthField(i, samePeriod))
	}
	return out
}

func lastValFormula(samePeriod bool) string {
	out := "LAST_VAL("
	for i := range Months {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%d", MonthField(i, samePeriod))
	}
	return out + ")"
}

func avgFormula(samePeriod bool) string {
	out := "AVG("
	for i := range Months {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%d", MonthField(i, samePeriod))
	}
	return out + ")"
}

// Template builds the standard heating-plan template: name/unit labels,
// fourteen monthly input columns, and calculated totals columns; six
// indicators covering basic, calculated, property-filtered, and
// column-override cases.
func Template() *core.Template {
	fields := []core.Field{
		{ID: FieldName, Name: "name", Label: "Indicator", Component: core.ComponentLabel},
		{ID: FieldUnit, Name: "unit", Label: "Unit", Component: core.ComponentLabel},
	}
	for i, month := range Months {
		fields = append(fields,
			core.Field{
				ID:        MonthField(i, false),
				Name:      PlanPath(month),
				Label:     month + " plan",
				Type:      core.IndicatorBasic,
				Component: core.ComponentInput,
			},
			core.Field{
				ID:        MonthField(i, true),
				Name:      SamePeriodPath(month),
				Label:     month + " same period",
				Type:      core.IndicatorBasic,
				Component: core.ComponentInput,
			},
		)
	}
	fields = append(fields,
		core.Field{
			ID:        FieldTotalsPlan,
			Name:      "totals.plan",
			Label:     "Total plan",
			Type:      core.IndicatorCalculated,
			Component: core.ComponentDisplay,
			Formula:   sumFormula(false),
		},
		core.Field{
			ID:        FieldTotalsSame,
			Name:      "totals.samePeriod",
			Label:     "Total same period",
			Type:      core.IndicatorCalculated,
			Component: core.ComponentDisplay,
			Formula:   sumFormula(true),
		},
	)

	indicators := []core.Indicator{
		{
			ID:   IndicatorRevenue,
			Name: "heat sales revenue",
			Unit: "kCNY",
			Type: core.IndicatorBasic,
		},
		{
			ID:   IndicatorCost,
			Name: "heat production cost",
			Unit: "kCNY",
			Type: core.IndicatorBasic,
		},
		{
			ID:                 IndicatorHeatOutput,
			Name:               "cogeneration heat output",
			Unit:               "GJ",
			Type:               core.IndicatorBasic,
			RequiredProperties: map[string][]string{"productionMethod": {"cogeneration"}},
		},
		{
			ID:   IndicatorCapacity,
			Name: "installed capacity",
			Unit: "MW",
			Type: core.IndicatorBasic,
			ColumnFormulas: map[string]string{
				"totals.plan":       lastValFormula(false),
				"totals.samePeriod": lastValFormula(true),
			},
		},
		{
			ID:   IndicatorTemperature,
			Name: "average outdoor temperature",
			Unit: "C",
			Type: core.IndicatorBasic,
			ColumnFormulas: map[string]string{
				"totals.plan":       avgFormula(false),
				"totals.samePeriod": avgFormula(true),
			},
		},
		{
			ID:      IndicatorMargin,
			Name:    "gross margin",
			Unit:    "%",
			Type:    core.IndicatorCalculated,
			Formula: fmt.Sprintf("(VAL(%d) - VAL(%d)) / VAL(%d)", IndicatorRevenue, IndicatorCost, IndicatorRevenue),
			Format:  &core.DisplayFormat{Type: core.FormatPercentage, Places: 1},
			Validation: &core.RuleSet{
				Soft: []core.Rule{{
					Kind:     core.RuleComparison,
					FieldA:   "totals.plan",
					Operator: ">=",
					FieldB:   "totals.samePeriod",
					Message:  "gross margin below last season",
				}},
			},
		},
	}

	return &core.Template{
		Name:       "heat",
		Months:     Months,
		Fields:     fields,
		Indicators: indicators,
		Format:     &core.DisplayFormat{Type: core.FormatDecimal, Places: 2},
	}
}

// Project builds a three-table fixture: a city summary over two plants, one
// cogeneration and one boiler unit.
func Project() *core.Project {
	return &core.Project{
		ID:   "heating_plan_2025-2026",
		Name: "Heating season plan 2025-2026",
		Tables: []core.Table{
			{
				ID:       "summary-city",
				Name:     "City summary",
				Kind:     core.TableSummary,
				Template: "heat",
				Properties: map[string][]string{
					"productionMethod": {"cogeneration", "boiler"},
					"position":         {"downtown"},
				},
				Subsidiaries: core.Subsidiaries{Tables: []string{"plant-east", "plant-west"}},
			},
			{
				ID:       "plant-east",
				Name:     "East plant",
				Kind:     core.TableSubsidiary,
				Template: "heat",
				Properties: map[string][]string{
					"productionMethod": {"cogeneration"},
					"position":         {"downtown"},
				},
			},
			{
				ID:       "plant-west",
				Name:     "West plant",
				Kind:     core.TableSubsidiary,
				Template: "heat",
				Properties: map[string][]string{
					"productionMethod": {"boiler"},
					"position":         {"downtown"},
				},
			},
		},
		Templates: map[string]*core.Template{"heat": Template()},
		Schemes: map[string]*core.Scheme{
			core.DefaultSchemeName: {
				Basic: &core.RuleSet{
					Hard: []core.Rule{{Kind: core.RuleIsNumber, Message: "value must be a number"}},
				},
				Calculated: &core.RuleSet{},
			},
		},
	}
}
