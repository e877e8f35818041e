package model

import "regexp"

// ValueKind is the closed set of typed value categories a field can hold.
// It selects the normalizer/validator strategy used by the extraction layers.
type ValueKind string

const (
	KindString     ValueKind = "string"
	KindDate       ValueKind = "date"
	KindMoney      ValueKind = "money"
	KindWeight     ValueKind = "weight"
	KindCount      ValueKind = "count"
	KindCountry    ValueKind = "country"
	KindIdentifier ValueKind = "identifier"
)

// Valid reports whether k is a recognized value kind.
func (k ValueKind) Valid() bool {
	switch k {
	case KindString, KindDate, KindMoney, KindWeight, KindCount, KindCountry, KindIdentifier:
		return true
	}
	return false
}

// Numeric reports whether the kind carries a numeric value that
// reconciliation compares with a relative tolerance.
func (k ValueKind) Numeric() bool {
	return k == KindMoney || k == KindWeight || k == KindCount
}

// FieldDefinition describes one recognized field: where it applies, how its
// value is typed, and the label aliases used to anchor extraction. Loaded
// once from the catalog and never mutated.
type FieldDefinition struct {
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	DocTypes    []DocType      `json:"doc_types" yaml:"doc_types"`
	Kind        ValueKind      `json:"kind" yaml:"kind"`
	Aliases     []string       `json:"aliases" yaml:"aliases"`
	Pattern     string         `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Vocabulary  []string       `json:"vocabulary,omitempty" yaml:"vocabulary,omitempty"`
	ContextScan bool           `json:"context_scan,omitempty" yaml:"context_scan,omitempty"`
	ValueRegex  *regexp.Regexp `json:"-" yaml:"-"` // compiled from Pattern at catalog load
}

// AppliesTo reports whether the field is extracted for the given doc type.
func (d FieldDefinition) AppliesTo(t DocType) bool {
	for _, dt := range d.DocTypes {
		if dt == t {
			return true
		}
	}
	return false
}
