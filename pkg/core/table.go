package core

// TableKind distinguishes aggregating tables from direct-entry tables.
type TableKind string

// Table kinds.
const (
	// TableSummary aggregates child unit tables.
	TableSummary TableKind = "summary"
	// TableSubsidiary receives direct entry.
	TableSubsidiary TableKind = "subsidiary"
)

// SamePeriodAll and SamePeriodNone are the table-level same-period policy
// modes; any other policy is an explicit indicator ID list (or unset).
const (
	SamePeriodAll  = "all"
	SamePeriodNone = "none"
)

// SamePeriodPolicy is the table-level control over same-period entry.
// Mode "all" forces every same-period cell writable, "none" forces them all
// read-only, and an ID list grants entry per indicator. An empty policy
// defers to the indicator-level flag.
type SamePeriodPolicy struct {
	// Mode is "all", "none", or empty.
	Mode string `koanf:"mode"`
	// IDs grants same-period entry to the listed indicators when Mode is
	// empty.
	IDs []int `koanf:"ids"`
}

// IsSet reports whether the table declares any same-period policy.
func (p SamePeriodPolicy) IsSet() bool {
	return p.Mode != "" || len(p.IDs) > 0
}

// Grants reports whether the ID list includes the given indicator.
func (p SamePeriodPolicy) Grants(id int) bool {
	for _, v := range p.IDs {
		if v == id {
			return true
		}
	}
	return false
}

// Subsidiaries names the child tables of a summary table: either an
// ordered list, or a map keyed by a stable role name for cross-unit group
// rollups whose composition differs structurally from plain list
// aggregation.
type Subsidiaries struct {
	// Tables is the ordered child table ID list.
	Tables []string `koanf:"tables"`
	// Groups maps role name (e.g. "beihai", "downtown") to the child
	// table IDs contributing under that role.
	Groups map[string][]string `koanf:"groups"`
}

// All returns every child table ID, whichever form the config used.
// List entries come first in declared order; group members follow grouped
// by role (role order is not significant).
func (s Subsidiaries) All() []string {
	out := append([]string(nil), s.Tables...)
	for _, ids := range s.Groups {
		out = append(out, ids...)
	}
	return out
}

// IsEmpty reports whether no children are configured.
func (s Subsidiaries) IsEmpty() bool {
	return len(s.Tables) == 0 && len(s.Groups) == 0
}

// Table is one report configuration from the project menu.
type Table struct {
	// ID identifies the table within the project menu.
	ID string `koanf:"id"`
	// Name is the display title.
	Name string `koanf:"name"`
	// Kind is summary or subsidiary.
	Kind TableKind `koanf:"kind"`
	// Template names the indicator/field template this table renders.
	Template string `koanf:"template"`
	// Scheme names the validation scheme; empty means "default".
	Scheme string `koanf:"scheme"`
	// Properties are the unit's operating-characteristic tags
	// (productionMethod, fuelType, businessModel, special, position).
	// They drive indicator applicability.
	Properties map[string][]string `koanf:"properties"`
	// Subsidiaries lists child tables for summary aggregation.
	Subsidiaries Subsidiaries `koanf:"subsidiaries"`
	// AggregationExclusions lists indicators this table never auto-sums
	// from children; its own entered value is authoritative for them.
	AggregationExclusions []int `koanf:"aggregationExclusions"`
	// BeAggregatedExclusions lists indicators of THIS table that must not
	// be rolled up into any parent, independent of the parent's own
	// exclusion list.
	BeAggregatedExclusions []int `koanf:"beAggregatedExclusions"`
	// SamePeriodEditable is the table-level same-period entry policy.
	SamePeriodEditable SamePeriodPolicy `koanf:"samePeriodEditable"`
	// ValidationDisabled is the table-wide kill switch: no checks at all.
	ValidationDisabled bool `koanf:"validationDisabled"`
	// ValidationOverrides replaces or disables (nil entry) the rule set of
	// single indicators, keyed by indicator ID.
	ValidationOverrides map[int]*RuleSet `koanf:"validationOverrides"`
}

// ExcludesAggregation reports whether the indicator is on this table's own
// exclusion list (the parent-pulling direction).
func (t *Table) ExcludesAggregation(id int) bool {
	return containsInt(t.AggregationExclusions, id)
}

// ExcludesBeingAggregated reports whether the indicator is on this table's
// opt-out list (the child-being-pulled direction).
func (t *Table) ExcludesBeingAggregated(id int) bool {
	return containsInt(t.BeAggregatedExclusions, id)
}

func containsInt(list []int, id int) bool {
	for _, v := range list {
		if v == id {
			return true
		}
	}
	return false
}
