package core

// Mode selects the statement used to empty a table.
type Mode string

const (
	// ModeTruncate empties tables with TRUNCATE (or the dialect's equivalent)
	// and resets auto-increment counters.
	ModeTruncate Mode = "truncate"
	// ModeDelete empties tables with DELETE FROM.
	ModeDelete Mode = "delete"
)

// DefaultSchemas is the schema list used when CleanOptions.Schemas is empty.
var DefaultSchemas = []string{"public"}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModeTruncate || m == ModeDelete
}

// CleanOptions configures a clean run.
type CleanOptions struct {
	Mode         Mode     `koanf:"mode"`
	IgnoreTables []string `koanf:"ignore_tables"`
	Schemas      []string `koanf:"schemas"`
}

// WithDefaults returns a copy of o with unset fields filled in.
func (o CleanOptions) WithDefaults() CleanOptions {
	if o.Mode == "" {
		o.Mode = ModeTruncate
	}
	if len(o.Schemas) == 0 {
		o.Schemas = append([]string(nil), DefaultSchemas...)
	}
	return o
}

// ListOptions scopes a table listing.
type ListOptions struct {
	Schemas      []string
	IgnoreTables []string
}

// ListOptions returns the listing scope for o.
func (o CleanOptions) ListOptions() ListOptions {
	return ListOptions{Schemas: o.Schemas, IgnoreTables: o.IgnoreTables}
}
