package core

import "strings"

// =============================================================================
// Severity
// =============================================================================

// Severity classifies a validation finding.
type Severity int

const (
	// SeverityHard blocks submission.
	SeverityHard Severity = iota
	// SeveritySoft is advisory; callers may require a written
	// justification before submit.
	SeveritySoft
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityHard:
		return "hard"
	case SeveritySoft:
		return "soft"
	default:
		return "unknown"
	}
}

// MarshalText renders the severity as its name in JSON/YAML output.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ParseSeverity converts a string to a Severity. Returns SeveritySoft and
// false on unknown input.
func ParseSeverity(s string) (Severity, bool) {
	switch strings.ToLower(s) {
	case "hard":
		return SeverityHard, true
	case "soft":
		return SeveritySoft, true
	default:
		return SeveritySoft, false
	}
}

// =============================================================================
// Rules
// =============================================================================

// RuleKind tags the rule union.
type RuleKind string

// Rule kinds.
const (
	// RuleIsNumber passes on empty input or a finite number.
	RuleIsNumber RuleKind = "isNumber"
	// RuleNotEmpty fails only on null/blank input.
	RuleNotEmpty RuleKind = "notEmpty"
	// RuleComparison compares fieldA against fieldB*factor+offset.
	RuleComparison RuleKind = "comparison"
	// RuleExpr evaluates a free-form boolean expression over field paths.
	RuleExpr RuleKind = "expr"
	// RuleCalc is the optional self-consistency check; it is configured
	// through RuleSet.Calc, not the Hard/Soft lists.
	RuleCalc RuleKind = "calc"
)

// Rule is one validation check. Kind selects which attributes apply:
// comparison rules use FieldA/Operator/FieldB/Factor/Offset, expr rules use
// Expr, and isNumber/notEmpty use neither.
type Rule struct {
	Kind    RuleKind `koanf:"kind"`
	Message string   `koanf:"message"`

	// Comparison attributes. FieldA/FieldB name a field by dotted path
	// (e.g. "totals.plan") or numeric field ID (e.g. "1003"). Factor is
	// applied to fieldB before Offset; nil means 1, an explicit zero is
	// applied as written.
	FieldA   string   `koanf:"fieldA"`
	Operator string   `koanf:"operator"`
	FieldB   string   `koanf:"fieldB"`
	Factor   *float64 `koanf:"factor"`
	Offset   float64  `koanf:"offset"`

	// Expr is the boolean expression for expr rules, in the direct
	// dialect (dotted field paths as operands).
	Expr string `koanf:"expr"`
}

// CalcRule is the optional self-consistency check for calculated
// indicators: the displayed value must match the formula-recomputed value
// within Tolerance (exact when the expected value is zero).
type CalcRule struct {
	Enabled   bool    `koanf:"enabled"`
	Tolerance float64 `koanf:"tolerance"`
	Message   string  `koanf:"message"`
}

// RuleSet is the hard/soft rule pair attached to an indicator, a scheme
// default, or a table override.
type RuleSet struct {
	// Disabled turns every check off, standing in for the original's
	// `validation: false`/`null` forms.
	Disabled bool      `koanf:"disabled"`
	Hard     []Rule    `koanf:"hard"`
	Soft     []Rule    `koanf:"soft"`
	Calc     *CalcRule `koanf:"calc"`
}

// Empty reports whether the set carries no checks at all.
func (rs *RuleSet) Empty() bool {
	return rs == nil || rs.Disabled || (len(rs.Hard) == 0 && len(rs.Soft) == 0 && (rs.Calc == nil || !rs.Calc.Enabled))
}

// Scheme is a named pair of default rule sets keyed by indicator type.
// Calculated indicators conventionally carry hard: [] since they have no
// direct input to validate.
type Scheme struct {
	Basic      *RuleSet `koanf:"basic"`
	Calculated *RuleSet `koanf:"calculated"`
}

// ForType returns the scheme default for an indicator type.
func (s *Scheme) ForType(t IndicatorType) *RuleSet {
	if s == nil {
		return nil
	}
	if t == IndicatorCalculated {
		return s.Calculated
	}
	return s.Basic
}
