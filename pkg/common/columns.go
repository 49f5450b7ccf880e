package common

import "strings"

// ColumnType declares how filter values for a column are converted before
// they reach the database.
type ColumnType int

const (
	ColString ColumnType = iota
	ColInt
	ColFloat
	ColDecimal
	ColBool
	ColTime
)

// String returns the human-readable type name used in error messages.
func (t ColumnType) String() string {
	switch t {
	case ColInt:
		return "integer"
	case ColFloat:
		return "float"
	case ColDecimal:
		return "decimal"
	case ColBool:
		return "boolean"
	case ColTime:
		return "timestamp"
	default:
		return "string"
	}
}

// JoinColumn maps a request-facing column name onto a column reached
// through a join. Join holds the full join clause, Column the qualified
// column reference used in WHERE and ORDER BY.
type JoinColumn struct {
	Join   string
	Column string
	Type   ColumnType
}

// ColumnConfig declares which columns of an entity may be filtered,
// searched and sorted, and how their values convert. Anything not listed
// here is rejected, so request input never reaches SQL identifiers.
type ColumnConfig struct {
	// SimpleColumns are columns on the entity's own table.
	SimpleColumns map[string]ColumnType

	// JoinColumns are columns on related tables, usable in filters and
	// sorts.
	JoinColumns map[string]JoinColumn

	// SearchableColumns take part in free-text search. Must name simple
	// columns of string type.
	SearchableColumns []string

	// SortableColumns restricts ORDER BY. Empty means every configured
	// column, simple or joined, is sortable.
	SortableColumns []string
}

// ResolvedColumn is the outcome of validating a request column name
// against a ColumnConfig.
type ResolvedColumn struct {
	// SQL is the column reference to use in the query, quoted or
	// table-qualified as needed.
	SQL string

	// Type drives value conversion for the column.
	Type ColumnType

	// Join is the join clause required to reach the column, empty for
	// simple columns.
	Join string
}

// ResolveFilterColumn validates a filter column name and returns its SQL
// reference, type and any required join. Simple columns are qualified with
// the entity's table alias so references stay unambiguous once the query
// carries joins.
func (c *ColumnConfig) ResolveFilterColumn(entity, alias, name string) (ResolvedColumn, error) {
	if t, ok := c.SimpleColumns[name]; ok {
		return ResolvedColumn{SQL: QualifyColumn(alias, name), Type: t}, nil
	}
	if jc, ok := c.JoinColumns[name]; ok {
		return ResolvedColumn{SQL: jc.Column, Type: jc.Type, Join: jc.Join}, nil
	}
	return ResolvedColumn{}, &InvalidFilterFieldError{Field: name, Entity: entity}
}

// ResolveSortColumn validates a sort column name. Sorting resolves the same
// way filtering does, simple or join columns alike; a join column carries
// its join clause so the caller can attach it. SortableColumns narrows the
// eligible set when present.
func (c *ColumnConfig) ResolveSortColumn(entity, alias, name string) (ResolvedColumn, error) {
	if len(c.SortableColumns) > 0 {
		found := false
		for _, s := range c.SortableColumns {
			if s == name {
				found = true
				break
			}
		}
		if !found {
			return ResolvedColumn{}, &InvalidSortFieldError{Field: name, Entity: entity}
		}
	}
	if t, ok := c.SimpleColumns[name]; ok {
		return ResolvedColumn{SQL: QualifyColumn(alias, name), Type: t}, nil
	}
	if jc, ok := c.JoinColumns[name]; ok {
		return ResolvedColumn{SQL: jc.Column, Type: jc.Type, Join: jc.Join}, nil
	}
	return ResolvedColumn{}, &InvalidSortFieldError{Field: name, Entity: entity}
}

// ResolveSearchColumns returns the SQL references of the searchable
// columns, or an error when none are configured.
func (c *ColumnConfig) ResolveSearchColumns(entity, alias string) ([]string, error) {
	if len(c.SearchableColumns) == 0 {
		return nil, &NoSearchableFieldsError{Entity: entity}
	}
	cols := make([]string, 0, len(c.SearchableColumns))
	for _, name := range c.SearchableColumns {
		cols = append(cols, QualifyColumn(alias, name))
	}
	return cols, nil
}

// JoinTracker deduplicates join clauses so each relation is joined at
// most once per query, however many filters touch it.
type JoinTracker struct {
	seen map[string]struct{}
}

// NewJoinTracker returns an empty tracker.
func NewJoinTracker() *JoinTracker {
	return &JoinTracker{seen: make(map[string]struct{})}
}

// Add records the join clause and reports whether it was seen for the
// first time. Empty clauses are ignored.
func (j *JoinTracker) Add(join string) bool {
	if join == "" {
		return false
	}
	if _, ok := j.seen[join]; ok {
		return false
	}
	j.seen[join] = struct{}{}
	return true
}

// QuoteIdent quotes an SQL identifier, doubling embedded quotes.
func QuoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// QualifyColumn quotes a column reference and prefixes it with its table
// alias. An empty alias yields the bare quoted column.
func QualifyColumn(alias, name string) string {
	if alias == "" {
		return QuoteIdent(name)
	}
	return QuoteIdent(alias) + "." + QuoteIdent(name)
}
