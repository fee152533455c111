package core

// IndicatorType distinguishes directly entered indicators from derived ones.
type IndicatorType string

// Indicator type constants.
const (
	// IndicatorBasic is entered by a user (monthly plan values).
	IndicatorBasic IndicatorType = "basic"
	// IndicatorCalculated is derived from a formula over other indicators.
	IndicatorCalculated IndicatorType = "calculated"
)

// Indicator is one row template entry: a reportable metric with a stable
// numeric ID, an applicability filter, and an optional formula.
type Indicator struct {
	// ID is the stable identifier, globally unique within a project.
	// Formulas and validation overrides reference indicators by ID,
	// never by position.
	ID int `koanf:"id"`
	// Name is the display name of the metric.
	Name string `koanf:"name"`
	// Unit is the measurement unit label (e.g. "GJ", "t").
	Unit string `koanf:"unit"`
	// Category groups indicators for presentation. It is not a sort key;
	// template order is authoritative.
	Category string `koanf:"category"`
	// Type is basic or calculated.
	Type IndicatorType `koanf:"type"`
	// Formula derives this indicator from others, referenced as VAL(id).
	// Empty for basic indicators.
	Formula string `koanf:"formula"`
	// ColumnFormulas overrides the default formula of a computed column,
	// keyed by field path (e.g. "totals.plan" -> an AVG or LAST_VAL
	// formula for end-of-period stock measures).
	ColumnFormulas map[string]string `koanf:"columnFormulas"`
	// Format overrides the template default display format for this row
	// (e.g. a ratio indicator rendered as a percentage).
	Format *DisplayFormat `koanf:"format"`
	// SamePeriodEditable opens the same-period column for entry on this
	// indicator unless the table-level policy overrides it.
	SamePeriodEditable bool `koanf:"samePeriodEditable"`
	// RequiredProperties filters applicability: for every key present the
	// table must declare the property with at least one matching tag.
	RequiredProperties map[string][]string `koanf:"requiredProperties"`
	// Validation replaces the scheme default for this indicator when set.
	// A rule set with Disabled=true turns all checks off.
	Validation *RuleSet `koanf:"validation"`
	// Visible defaults to true; hidden indicators still compute.
	Visible *bool `koanf:"visible"`
}

// IsVisible reports whether the indicator should be rendered.
func (ind *Indicator) IsVisible() bool {
	return ind.Visible == nil || *ind.Visible
}

// AppliesTo reports whether the indicator's required properties are
// satisfied by the given table property set. An empty requirement map
// always applies. A required key the table does not declare (or declares
// empty) fails the indicator; this is treated as zero capacity, not as a
// configuration error.
func (ind *Indicator) AppliesTo(properties map[string][]string) bool {
	for key, wanted := range ind.RequiredProperties {
		declared := properties[key]
		if len(declared) == 0 || !intersects(wanted, declared) {
			return false
		}
	}
	return true
}

func intersects(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}
