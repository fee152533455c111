package template

import (
	"fmt"
	"strconv"

	"github.com/heatstack/heatplan/internal/dag"
	"github.com/heatstack/heatplan/pkg/core"
	"github.com/heatstack/heatplan/pkg/formula"
)

// Check statically validates a loaded project: every formula must parse and
// reference only IDs declared in its template, every override and exclusion
// must point at a known indicator, every subsidiary at a known table.
// Returns a *CheckError listing every defect, or nil when the project is
// clean. Dangling references are configuration errors; catching them here
// keeps them out of the per-keystroke recomputation path.
func Check(p *core.Project) error {
	c := &checker{project: p}

	declaredKeys := map[string]bool{}
	for i := range p.Tables {
		for key := range p.Tables[i].Properties {
			declaredKeys[key] = true
		}
	}

	for name, tpl := range p.Templates {
		c.checkTemplate(name, tpl, declaredKeys)
	}
	for name, scheme := range p.Schemes {
		c.checkScheme(name, scheme)
	}
	for i := range p.Tables {
		c.checkTable(&p.Tables[i])
	}

	if len(c.issues) == 0 {
		return nil
	}
	return &CheckError{Issues: c.issues}
}

type checker struct {
	project *core.Project
	issues  []Issue
}

func (c *checker) add(tableID, format string, args ...any) {
	c.issues = append(c.issues, Issue{TableID: tableID, Message: fmt.Sprintf(format, args...)})
}

func (c *checker) checkTemplate(name string, tpl *core.Template, declaredKeys map[string]bool) {
	indicatorIDs := map[int]bool{}
	for i := range tpl.Indicators {
		ind := &tpl.Indicators[i]
		if indicatorIDs[ind.ID] {
			c.add("", "template %s: duplicate indicator id %d", name, ind.ID)
		}
		indicatorIDs[ind.ID] = true
	}

	fieldIDs := map[int]bool{}
	fieldNames := map[string]bool{}
	for i := range tpl.Fields {
		f := &tpl.Fields[i]
		if fieldIDs[f.ID] {
			c.add("", "template %s: duplicate field id %d", name, f.ID)
		}
		fieldIDs[f.ID] = true
		fieldNames[f.Name] = true
	}

	// Indicator formulas reference indicator IDs and must form a DAG.
	g := dag.NewGraph()
	for id := range indicatorIDs {
		g.AddNode(id)
	}
	for i := range tpl.Indicators {
		ind := &tpl.Indicators[i]
		if ind.Formula == "" {
			continue
		}
		expr, err := formula.Parse(ind.Formula)
		if err != nil {
			c.add("", "template %s: indicator %d formula: %v", name, ind.ID, err)
			continue
		}
		for _, ref := range formula.Refs(expr) {
			if !indicatorIDs[ref] {
				c.add("", "template %s: indicator %d references unknown indicator %d", name, ind.ID, ref)
				continue
			}
			if err := g.AddEdge(ref, ind.ID); err != nil {
				c.add("", "template %s: indicator %d: %v", name, ind.ID, err)
			}
		}
		for _, path := range formula.Paths(expr) {
			if !fieldNames[path] {
				c.add("", "template %s: indicator %d references unknown field path %q", name, ind.ID, path)
			}
		}
	}
	if hasCycle, path := g.HasCycle(); hasCycle {
		c.add("", "template %s: formula cycle %v", name, path)
	}

	// Field formulas and per-indicator column overrides reference field IDs.
	for i := range tpl.Fields {
		f := &tpl.Fields[i]
		if f.Formula == "" {
			continue
		}
		c.checkFieldFormula(name, fmt.Sprintf("field %d", f.ID), f.Formula, fieldIDs, fieldNames)
	}
	for i := range tpl.Indicators {
		ind := &tpl.Indicators[i]
		for fieldPath, src := range ind.ColumnFormulas {
			if !fieldNames[fieldPath] {
				c.add("", "template %s: indicator %d overrides unknown column %q", name, ind.ID, fieldPath)
			}
			c.checkFieldFormula(name, fmt.Sprintf("indicator %d column %s", ind.ID, fieldPath), src, fieldIDs, fieldNames)
		}
	}

	for i := range tpl.Indicators {
		ind := &tpl.Indicators[i]
		for key := range ind.RequiredProperties {
			if !declaredKeys[key] {
				c.add("", "template %s: indicator %d requires property %q no table declares", name, ind.ID, key)
			}
		}
		if ind.Validation != nil {
			c.checkRuleSet(fmt.Sprintf("template %s indicator %d", name, ind.ID), ind.Validation, fieldIDs, fieldNames)
		}
	}
}

func (c *checker) checkFieldFormula(tplName, where, src string, fieldIDs map[int]bool, fieldNames map[string]bool) {
	expr, err := formula.Parse(src)
	if err != nil {
		c.add("", "template %s: %s formula: %v", tplName, where, err)
		return
	}
	for _, ref := range formula.Refs(expr) {
		if !fieldIDs[ref] {
			c.add("", "template %s: %s references unknown field %d", tplName, where, ref)
		}
	}
	for _, path := range formula.Paths(expr) {
		if !fieldNames[path] {
			c.add("", "template %s: %s references unknown field path %q", tplName, where, path)
		}
	}
}

func (c *checker) checkScheme(name string, scheme *core.Scheme) {
	// Scheme rules apply across templates, so operands are only checked
	// for well-formedness here; per-template path resolution happens when
	// the rule set is attached via a table.
	for _, rs := range []*core.RuleSet{scheme.Basic, scheme.Calculated} {
		if rs == nil {
			continue
		}
		for _, r := range append(append([]core.Rule{}, rs.Hard...), rs.Soft...) {
			if r.Kind == core.RuleExpr {
				if _, err := formula.Parse(r.Expr); err != nil {
					c.add("", "scheme %s: expr rule: %v", name, err)
				}
			}
		}
	}
}

func (c *checker) checkTable(t *core.Table) {
	tpl, ok := c.project.TemplateFor(t)
	if !ok {
		c.add(t.ID, "unknown template %q", t.Template)
		return
	}
	if t.Scheme != "" && c.project.Schemes[t.Scheme] == nil {
		c.add(t.ID, "unknown scheme %q", t.Scheme)
	}
	switch t.Kind {
	case core.TableSummary, core.TableSubsidiary:
	default:
		// a typo here would silently demote a summary to direct entry
		c.add(t.ID, "unknown table kind %q", t.Kind)
	}

	indicatorIDs := map[int]bool{}
	for i := range tpl.Indicators {
		indicatorIDs[tpl.Indicators[i].ID] = true
	}
	fieldIDs := map[int]bool{}
	fieldNames := map[string]bool{}
	for i := range tpl.Fields {
		fieldIDs[tpl.Fields[i].ID] = true
		fieldNames[tpl.Fields[i].Name] = true
	}

	for id, rs := range t.ValidationOverrides {
		if !indicatorIDs[id] {
			c.add(t.ID, "validation override for unknown indicator %d", id)
		}
		if rs != nil {
			c.checkRuleSet(fmt.Sprintf("override for indicator %d", id), rs, fieldIDs, fieldNames, t.ID)
		}
	}
	for _, id := range t.AggregationExclusions {
		if !indicatorIDs[id] {
			c.add(t.ID, "aggregation exclusion names unknown indicator %d", id)
		}
	}
	for _, id := range t.BeAggregatedExclusions {
		if !indicatorIDs[id] {
			c.add(t.ID, "be-aggregated exclusion names unknown indicator %d", id)
		}
	}

	switch t.SamePeriodEditable.Mode {
	case "", core.SamePeriodAll, core.SamePeriodNone:
	default:
		c.add(t.ID, "unknown same-period mode %q", t.SamePeriodEditable.Mode)
	}
	for _, id := range t.SamePeriodEditable.IDs {
		if !indicatorIDs[id] {
			c.add(t.ID, "same-period policy names unknown indicator %d", id)
		}
	}

	for _, childID := range t.Subsidiaries.All() {
		if childID == t.ID {
			c.add(t.ID, "table lists itself as a subsidiary")
			continue
		}
		if _, ok := c.project.TableByID(childID); !ok {
			c.add(t.ID, "unknown subsidiary table %q", childID)
		}
	}
	if t.Kind != core.TableSummary && !t.Subsidiaries.IsEmpty() {
		c.add(t.ID, "subsidiary table configures its own subsidiaries")
	}
}

// checkRuleSet validates comparison operands and expression syntax against
// a template's fields. tableID attributes the issue when given.
func (c *checker) checkRuleSet(where string, rs *core.RuleSet, fieldIDs map[int]bool, fieldNames map[string]bool, tableID ...string) {
	tid := ""
	if len(tableID) > 0 {
		tid = tableID[0]
	}
	for _, r := range append(append([]core.Rule{}, rs.Hard...), rs.Soft...) {
		switch r.Kind {
		case core.RuleIsNumber, core.RuleNotEmpty:
		case core.RuleComparison:
			for _, operand := range []string{r.FieldA, r.FieldB} {
				if operand == "" {
					c.add(tid, "%s: comparison rule with empty operand", where)
					continue
				}
				if id, err := strconv.Atoi(operand); err == nil {
					if !fieldIDs[id] {
						c.add(tid, "%s: comparison references unknown field %d", where, id)
					}
				} else if !fieldNames[operand] {
					c.add(tid, "%s: comparison references unknown field path %q", where, operand)
				}
			}
			if !validOperator(r.Operator) {
				c.add(tid, "%s: unknown comparison operator %q", where, r.Operator)
			}
		case core.RuleExpr:
			expr, err := formula.Parse(r.Expr)
			if err != nil {
				c.add(tid, "%s: expr rule: %v", where, err)
				continue
			}
			for _, path := range formula.Paths(expr) {
				if !fieldNames[path] {
					c.add(tid, "%s: expr rule references unknown field path %q", where, path)
				}
			}
		default:
			c.add(tid, "%s: unknown rule kind %q", where, r.Kind)
		}
	}
}

func validOperator(op string) bool {
	switch op {
	case ">", ">=", "<", "<=", "==", "===", "!=", "!==":
		return true
	}
	return false
}
