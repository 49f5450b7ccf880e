package common

import "fmt"

// RequestValidationError reports a malformed request rejected at the
// boundary before any query work happens.
type RequestValidationError struct {
	Field  string
	Reason string
}

func (e *RequestValidationError) Error() string {
	return fmt.Sprintf("invalid request: %s %s", e.Field, e.Reason)
}

// UnknownEntityError reports a request against an entity name that is not
// registered.
type UnknownEntityError struct {
	Entity string
}

func (e *UnknownEntityError) Error() string {
	return fmt.Sprintf("unknown entity %q", e.Entity)
}

// InvalidFilterFieldError reports a filter column that is not configured
// for the entity.
type InvalidFilterFieldError struct {
	Field  string
	Entity string
}

func (e *InvalidFilterFieldError) Error() string {
	return fmt.Sprintf("invalid filter field %q for %s", e.Field, e.Entity)
}

// InvalidSortFieldError reports a sort column that is not configured as
// sortable for the entity.
type InvalidSortFieldError struct {
	Field  string
	Entity string
}

func (e *InvalidSortFieldError) Error() string {
	return fmt.Sprintf("invalid sort field %q for %s", e.Field, e.Entity)
}

// NoSearchableFieldsError reports a free-text search against an entity with
// no searchable columns configured.
type NoSearchableFieldsError struct {
	Entity string
}

func (e *NoSearchableFieldsError) Error() string {
	return fmt.Sprintf("no searchable fields configured for %s", e.Entity)
}

// FilterValueError reports a filter value that could not be converted to
// the column's declared type.
type FilterValueError struct {
	Field        string
	Value        string
	ExpectedType string
}

func (e *FilterValueError) Error() string {
	return fmt.Sprintf("invalid value %q for field %q: expected %s", e.Value, e.Field, e.ExpectedType)
}
