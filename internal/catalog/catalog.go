package catalog

import (
	"os"
	"regexp"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/tradedoc-cli/internal/model"
)

// Catalog is the static registry of every recognized field. It is built once
// at startup and never mutated; a malformed catalog is a fatal configuration
// error, not something to recover from mid-run.
type Catalog struct {
	defs        []model.FieldDefinition
	byName      map[string]*model.FieldDefinition
	byDoc       map[model.DocType][]model.FieldDefinition
	comparative []model.FieldDefinition
}

// New builds and validates a Catalog from field definitions and the ordered
// comparative field list.
func New(defs []model.FieldDefinition, comparative []string) (*Catalog, error) {
	if len(defs) == 0 {
		return nil, eris.New("catalog: no field definitions")
	}

	c := &Catalog{
		defs:   defs,
		byName: make(map[string]*model.FieldDefinition, len(defs)),
		byDoc:  make(map[model.DocType][]model.FieldDefinition),
	}

	for i := range c.defs {
		d := &c.defs[i]
		if d.Name == "" {
			return nil, eris.Errorf("catalog: definition %d has no name", i)
		}
		if _, dup := c.byName[d.Name]; dup {
			return nil, eris.Errorf("catalog: duplicate field %q", d.Name)
		}
		if !d.Kind.Valid() {
			return nil, eris.Errorf("catalog: field %q has unknown kind %q", d.Name, d.Kind)
		}
		if len(d.DocTypes) == 0 {
			return nil, eris.Errorf("catalog: field %q applies to no document type", d.Name)
		}
		for _, t := range d.DocTypes {
			if !t.Valid() {
				return nil, eris.Errorf("catalog: field %q has unknown doc type %q", d.Name, t)
			}
		}
		if len(d.Aliases) == 0 {
			return nil, eris.Errorf("catalog: field %q has no aliases", d.Name)
		}
		if d.Pattern == "" {
			return nil, eris.Errorf("catalog: field %q has no value pattern", d.Name)
		}
		re, err := regexp.Compile("(?i)" + d.Pattern)
		if err != nil {
			return nil, eris.Wrapf(err, "catalog: field %q pattern", d.Name)
		}
		// Extraction reads submatch 1, so a pattern without a capture group
		// would crash mid-scan instead of failing here.
		if re.NumSubexp() < 1 {
			return nil, eris.Errorf("catalog: field %q pattern has no capture group", d.Name)
		}
		d.ValueRegex = re
		c.byName[d.Name] = d
	}

	// Per-doc-type views preserve catalog order.
	for _, t := range model.AllDocTypes {
		for i := range c.defs {
			if c.defs[i].AppliesTo(t) {
				c.byDoc[t] = append(c.byDoc[t], c.defs[i])
			}
		}
	}

	for _, name := range comparative {
		d, ok := c.byName[name]
		if !ok {
			return nil, eris.Errorf("catalog: comparative field %q is not defined", name)
		}
		c.comparative = append(c.comparative, *d)
	}
	if len(c.comparative) == 0 {
		return nil, eris.New("catalog: empty comparative field list")
	}

	return c, nil
}

// Default returns the built-in catalog.
func Default() (*Catalog, error) {
	return New(defaultDefinitions(), defaultComparative())
}

// file is the YAML shape of a catalog override file. Either section may be
// omitted to keep the built-in value.
type file struct {
	Fields      []model.FieldDefinition `yaml:"fields"`
	Comparative []string                `yaml:"comparative"`
}

// Load reads a catalog override from a YAML file. Alias sets, value patterns
// and the comparative list are configuration data; swapping them must never
// require touching extraction logic.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "catalog: read %s", path)
	}

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrapf(err, "catalog: parse %s", path)
	}

	defs := f.Fields
	if len(defs) == 0 {
		defs = defaultDefinitions()
	}
	comparative := f.Comparative
	if len(comparative) == 0 {
		comparative = defaultComparative()
	}

	return New(defs, comparative)
}

// Fields returns every definition in catalog order.
func (c *Catalog) Fields() []model.FieldDefinition {
	return c.defs
}

// FieldsFor returns the ordered definitions applicable to the given doc type.
func (c *Catalog) FieldsFor(t model.DocType) []model.FieldDefinition {
	return c.byDoc[t]
}

// ComparativeFields returns the fixed ordered sequence used for
// cross-document comparison. A field absent from a given document type is
// rendered blank in that column, not omitted from the row.
func (c *Catalog) ComparativeFields() []model.FieldDefinition {
	return c.comparative
}

// ByName returns the definition for the given field name, or nil.
func (c *Catalog) ByName(name string) *model.FieldDefinition {
	return c.byName[name]
}
