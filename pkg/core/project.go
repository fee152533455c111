package core

// Template is one named indicator/field set. Several tables usually share a
// template; per-table applicability is resolved against table properties.
type Template struct {
	// Name identifies the template within the project.
	Name string `koanf:"name"`
	// Months lists the reporting-period month keys in order
	// (e.g. october..april for a heating season).
	Months []string `koanf:"months"`
	// Fields is the ordered column list.
	Fields []Field `koanf:"fields"`
	// Indicators is the ordered row list. Order is authoritative.
	Indicators []Indicator `koanf:"indicators"`
	// Format is the template-wide default display format.
	Format *DisplayFormat `koanf:"format"`
}

// FieldByID returns the field with the given ID.
func (t *Template) FieldByID(id int) (*Field, bool) {
	for i := range t.Fields {
		if t.Fields[i].ID == id {
			return &t.Fields[i], true
		}
	}
	return nil, false
}

// FieldByName returns the field with the given dotted path.
func (t *Template) FieldByName(name string) (*Field, bool) {
	for i := range t.Fields {
		if t.Fields[i].Name == name {
			return &t.Fields[i], true
		}
	}
	return nil, false
}

// IndicatorByID returns the indicator with the given ID.
func (t *Template) IndicatorByID(id int) (*Indicator, bool) {
	for i := range t.Indicators {
		if t.Indicators[i].ID == id {
			return &t.Indicators[i], true
		}
	}
	return nil, false
}

// FormatFor resolves the display format of one cell: the field's own
// format wins, then the indicator's row format, then the template
// default. May return nil, which FormatValue treats as plain decimal.
func (t *Template) FormatFor(f *Field, ind *Indicator) *DisplayFormat {
	if f != nil && f.Format != nil {
		return f.Format
	}
	if ind != nil && ind.Format != nil {
		return ind.Format
	}
	return t.Format
}

// Project is a fully loaded reporting project: the menu of tables, the
// templates they reference, and the validation schemes. Loaded once per
// project selection; the engine receives it read-only on every call.
type Project struct {
	// ID identifies the project (e.g. "heating_plan_2025-2026").
	ID string `koanf:"id"`
	// Name is the display title.
	Name string `koanf:"name"`
	// Tables is the flattened menu in declared order.
	Tables []Table `koanf:"tables"`
	// Templates maps template name to definition.
	Templates map[string]*Template `koanf:"templates"`
	// Schemes maps scheme name to validation defaults; "default" is used
	// when a table names none.
	Schemes map[string]*Scheme `koanf:"schemes"`
}

// DefaultSchemeName is used when a table does not name a scheme.
const DefaultSchemeName = "default"

// TableByID returns the table with the given ID.
func (p *Project) TableByID(id string) (*Table, bool) {
	for i := range p.Tables {
		if p.Tables[i].ID == id {
			return &p.Tables[i], true
		}
	}
	return nil, false
}

// TemplateFor returns the template a table renders.
func (p *Project) TemplateFor(t *Table) (*Template, bool) {
	tpl, ok := p.Templates[t.Template]
	return tpl, ok
}

// Scheme returns the named validation scheme, falling back to "default".
func (p *Project) Scheme(name string) *Scheme {
	if name == "" {
		name = DefaultSchemeName
	}
	return p.Schemes[name]
}
