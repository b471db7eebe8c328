package thanosql

// Column describes a single table column. Type is the SQL type string and is
// passed to the engine verbatim; the engine is the sole authority on whether
// it is valid.
type Column struct {
	ID         int    `json:"id,omitempty"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	Default    string `json:"default,omitempty"`
	IsNullable *bool  `json:"is_nullable,omitempty"`
}

// NewColumn returns a column with the given name and SQL type.
func NewColumn(name, sqlType string) Column {
	return Column{Name: name, Type: sqlType}
}

// Unique is a uniqueness constraint over one or more columns.
type Unique struct {
	Name    string   `json:"name,omitempty"`
	Columns []string `json:"columns"`
}

// PrimaryKey is the table's primary key. A Constraints aggregate carries at
// most one.
type PrimaryKey struct {
	Name    string   `json:"name,omitempty"`
	Columns []string `json:"columns"`
}

// ForeignKey references a column in another table. ReferenceSchema defaults
// to "public" on the engine side when left empty.
type ForeignKey struct {
	Name            string `json:"name,omitempty"`
	Column          string `json:"column"`
	ReferenceSchema string `json:"reference_schema,omitempty"`
	ReferenceTable  string `json:"reference_table"`
	ReferenceColumn string `json:"reference_column"`
}

// Constraints groups the constraint variants attached to a table shape.
type Constraints struct {
	Unique      []Unique     `json:"unique,omitempty"`
	PrimaryKey  *PrimaryKey  `json:"primary_key,omitempty"`
	ForeignKeys []ForeignKey `json:"foreign_keys,omitempty"`
}
