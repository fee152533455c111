// Package validate runs the hard/soft rule sets against a table's rows and
// reports violations as values. Hard findings block submission, soft ones
// are advisory; enforcement is the caller's job, the engine only classifies.
package validate

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/heatstack/heatplan/pkg/cells"
	"github.com/heatstack/heatplan/pkg/core"
	"github.com/heatstack/heatplan/pkg/formula"
	"github.com/heatstack/heatplan/pkg/template"
)

// Finding is one rule violation.
type Finding struct {
	TableID  string        `json:"tableId"`
	MetricID int           `json:"metricId"`
	Severity core.Severity `json:"severity"`
	Rule     core.RuleKind `json:"rule"`
	Message  string        `json:"message"`
}

// RowData pairs a computed row with the raw text the user entered.
// isNumber judges the raw text; notEmpty judges the cell content whatever
// filled it; comparison and expression rules judge the computed values.
type RowData struct {
	Row *core.Row
	// Raw holds entered text keyed by field path. Cells the user never
	// touched are absent.
	Raw map[string]string
}

// Run validates every applicable row against its effective rule set.
// Pure: identical inputs yield identical findings.
func Run(scheme *core.Scheme, table *core.Table, tpl *core.Template, rows []RowData) []Finding {
	return RunCached(formula.NewCache(), scheme, table, tpl, rows)
}

// RunCached is Run with a shared expression cache, for callers that
// revalidate on every recomputation.
func RunCached(formulas *formula.Cache, scheme *core.Scheme, table *core.Table, tpl *core.Template, rows []RowData) []Finding {
	byMetric := make(map[int]*core.Row, len(rows))
	for _, rd := range rows {
		byMetric[rd.Row.MetricID] = rd.Row
	}

	var findings []Finding
	for _, rd := range rows {
		if !rd.Row.Applicable {
			continue
		}
		ind, ok := tpl.IndicatorByID(rd.Row.MetricID)
		if !ok {
			continue
		}
		rules := template.EffectiveRules(scheme, table, ind)
		if rules.Empty() {
			continue
		}

		v := &validator{table: table, tpl: tpl, rows: byMetric, formulas: formulas}
		for _, r := range rules.Hard {
			findings = append(findings, v.apply(r, core.SeverityHard, ind, rd)...)
		}
		for _, r := range rules.Soft {
			findings = append(findings, v.apply(r, core.SeveritySoft, ind, rd)...)
		}
		if rules.Calc != nil && rules.Calc.Enabled {
			findings = append(findings, v.applyCalc(rules.Calc, ind, rd)...)
		}
	}
	return findings
}

type validator struct {
	table    *core.Table
	tpl      *core.Template
	rows     map[int]*core.Row
	formulas *formula.Cache
}

func (v *validator) finding(r core.RuleKind, sev core.Severity, metricID int, msg string) Finding {
	return Finding{
		TableID:  v.table.ID,
		MetricID: metricID,
		Severity: sev,
		Rule:     r,
		Message:  msg,
	}
}

func (v *validator) apply(r core.Rule, sev core.Severity, ind *core.Indicator, rd RowData) []Finding {
	switch r.Kind {
	case core.RuleIsNumber:
		return v.checkIsNumber(r, sev, ind, rd)
	case core.RuleNotEmpty:
		return v.checkNotEmpty(r, sev, ind, rd)
	case core.RuleComparison:
		return v.checkComparison(r, sev, ind, rd)
	case core.RuleExpr:
		return v.checkExpr(r, sev, ind, rd)
	default:
		return nil
	}
}

// checkIsNumber passes blank cells; emptiness is notEmpty's concern.
func (v *validator) checkIsNumber(r core.Rule, sev core.Severity, ind *core.Indicator, rd RowData) []Finding {
	var out []Finding
	for _, path := range v.entryPaths() {
		raw, ok := rd.Raw[path]
		if !ok {
			continue
		}
		s := strings.TrimSpace(raw)
		if s == "" {
			continue
		}
		if f, err := strconv.ParseFloat(s, 64); err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			out = append(out, v.finding(r.Kind, sev, ind.ID, message(r.Message, fmt.Sprintf("%s: %q is not a number", path, raw))))
		}
	}
	return out
}

// checkNotEmpty judges the cell content, not its provenance: a value filled
// by rollup or derivation satisfies the rule the same as typed entry, so
// summary tables pass on cells their children supplied.
func (v *validator) checkNotEmpty(r core.Rule, sev core.Severity, ind *core.Indicator, rd RowData) []Finding {
	var out []Finding
	for _, path := range v.entryPaths() {
		if strings.TrimSpace(rd.Raw[path]) != "" {
			continue
		}
		if rd.Row.Value(path).Valid {
			continue
		}
		out = append(out, v.finding(r.Kind, sev, ind.ID, message(r.Message, fmt.Sprintf("%s is required", path))))
	}
	return out
}

// entryPaths lists the monthly plan columns, the cells a user types into.
func (v *validator) entryPaths() []string {
	var out []string
	for i := range v.tpl.Fields {
		f := &v.tpl.Fields[i]
		if f.Component == core.ComponentInput && cells.IsPlan(f) {
			out = append(out, f.Name)
		}
	}
	return out
}

// checkComparison evaluates fieldA op fieldB*factor+offset. An absent
// factor defaults to 1, an explicit zero is applied as written; factor is
// applied before the offset. A non-numeric operand on either side passes.
func (v *validator) checkComparison(r core.Rule, sev core.Severity, ind *core.Indicator, rd RowData) []Finding {
	a := v.operand(rd.Row, r.FieldA)
	b := v.operand(rd.Row, r.FieldB)
	if !a.Valid || !b.Valid {
		return nil
	}

	factor := 1.0
	if r.Factor != nil {
		factor = *r.Factor
	}
	rhs := b.Num*factor + r.Offset

	if compare(a.Num, r.Operator, rhs) {
		return nil
	}
	msg := message(r.Message, fmt.Sprintf("%s %s %s*%v+%v not satisfied (%v vs %v)",
		r.FieldA, r.Operator, r.FieldB, factor, r.Offset, a.Num, rhs))
	return []Finding{v.finding(r.Kind, sev, ind.ID, msg)}
}

func (v *validator) checkExpr(r core.Rule, sev core.Severity, ind *core.Indicator, rd RowData) []Finding {
	expr, err := v.formulas.Parse(r.Expr)
	if err != nil {
		// rejected at load time by template.Check; never a data error
		return nil
	}
	result := formula.Eval(expr, rowEnv{row: rd.Row, tpl: v.tpl})
	if formula.Truthy(result) {
		return nil
	}
	return []Finding{v.finding(r.Kind, sev, ind.ID, message(r.Message, fmt.Sprintf("%s failed", r.Expr)))}
}

// applyCalc recomputes the indicator formula per derived column and compares
// it with the displayed value. Tolerance is relative; a zero expectation
// demands exact agreement.
func (v *validator) applyCalc(c *core.CalcRule, ind *core.Indicator, rd RowData) []Finding {
	if ind.Type != core.IndicatorCalculated || ind.Formula == "" {
		return nil
	}
	expr, err := v.formulas.Parse(ind.Formula)
	if err != nil {
		return nil
	}

	tolerance := c.Tolerance
	if tolerance == 0 {
		tolerance = 0.01
	}

	var out []Finding
	for path, got := range rd.Row.Values {
		if !got.Valid {
			continue
		}
		want := formula.Eval(expr, columnEnv{rows: v.rows, path: path})
		if !want.Valid {
			continue
		}
		ok := false
		if want.Num == 0 {
			ok = got.Num == 0
		} else {
			ok = math.Abs(got.Num-want.Num) <= tolerance*math.Abs(want.Num)
		}
		if !ok {
			msg := message(c.Message, fmt.Sprintf("%s: displayed %v differs from recomputed %v", path, got.Num, want.Num))
			out = append(out, v.finding(core.RuleCalc, core.SeveritySoft, ind.ID, msg))
		}
	}
	return out
}

// operand resolves a comparison operand: a numeric string names a field by
// ID, anything else is a dotted path.
func (v *validator) operand(row *core.Row, ref string) core.Value {
	if id, err := strconv.Atoi(ref); err == nil {
		if f, ok := v.tpl.FieldByID(id); ok {
			return row.Value(f.Name)
		}
		return core.None
	}
	return row.Value(ref)
}

// rowEnv resolves expression operands within one row: paths directly, IDs
// through the field table.
type rowEnv struct {
	row *core.Row
	tpl *core.Template
}

func (e rowEnv) Val(id int) core.Value {
	if f, ok := e.tpl.FieldByID(id); ok {
		return e.row.Value(f.Name)
	}
	return core.None
}

func (e rowEnv) Path(path string) core.Value {
	return e.row.Value(path)
}

// columnEnv resolves VAL(id) against other rows' values in the same column.
type columnEnv struct {
	rows map[int]*core.Row
	path string
}

func (e columnEnv) Val(id int) core.Value {
	if row, ok := e.rows[id]; ok {
		return row.Value(e.path)
	}
	return core.None
}

func (e columnEnv) Path(string) core.Value { return core.None }

func compare(a float64, op string, b float64) bool {
	switch op {
	case ">":
		return a > b
	case ">=":
		return a >= b
	case "<":
		return a < b
	case "<=":
		return a <= b
	case "==", "===":
		return a == b
	case "!=", "!==":
		return a != b
	default:
		return true
	}
}

func message(msg, fallback string) string {
	if msg != "" {
		return msg
	}
	return fallback
}
