package core

import "strings"

// TableRef identifies a table, optionally qualified by schema.
type TableRef struct {
	Schema string
	Name   string
}

// ParseTableRef splits "schema.table" on the first dot.
// A name without a dot yields a ref with an empty schema.
func ParseTableRef(s string) TableRef {
	if schema, name, ok := strings.Cut(s, "."); ok {
		return TableRef{Schema: schema, Name: name}
	}
	return TableRef{Name: s}
}

// String returns schema.table when the ref is qualified, the bare name otherwise.
func (t TableRef) String() string {
	if t.Schema == "" {
		return t.Name
	}
	return t.Schema + "." + t.Name
}

// Quoted renders the ref with every segment quoted using d's quote rules.
func (t TableRef) Quoted(d *DialectConfig) string {
	if t.Schema == "" {
		return d.QuoteIdent(t.Name)
	}
	return d.QuoteIdent(t.Schema) + "." + d.QuoteIdent(t.Name)
}

// TableNames returns the String form of every ref.
func TableNames(refs []TableRef) []string {
	names := make([]string, len(refs))
	for i, r := range refs {
		names[i] = r.String()
	}
	return names
}
