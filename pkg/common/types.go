package common

import "fmt"

// FilterOperator enumerates the comparison operators a search request may use.
type FilterOperator string

const (
	OpContains       FilterOperator = "contains"
	OpDoesNotContain FilterOperator = "does_not_contain"
	OpEquals         FilterOperator = "equals"
	OpNotEquals      FilterOperator = "not_equals"
	OpStartsWith     FilterOperator = "starts_with"
	OpEndsWith       FilterOperator = "ends_with"
	OpIsEmpty        FilterOperator = "is_empty"
	OpIsNotEmpty     FilterOperator = "is_not_empty"
	OpGreaterThan    FilterOperator = "greater_than"
	OpLessThan       FilterOperator = "less_than"
	OpGreaterOrEqual FilterOperator = "greater_or_equal"
	OpLessOrEqual    FilterOperator = "less_or_equal"
	OpIn             FilterOperator = "in"
	OpNotIn          FilterOperator = "not_in"
)

var validOperators = map[FilterOperator]struct{}{
	OpContains: {}, OpDoesNotContain: {}, OpEquals: {}, OpNotEquals: {},
	OpStartsWith: {}, OpEndsWith: {}, OpIsEmpty: {}, OpIsNotEmpty: {},
	OpGreaterThan: {}, OpLessThan: {}, OpGreaterOrEqual: {}, OpLessOrEqual: {},
	OpIn: {}, OpNotIn: {},
}

// Valid reports whether the operator is one of the supported enum values.
func (op FilterOperator) Valid() bool {
	_, ok := validOperators[op]
	return ok
}

// FilterItem is a single filter clause in a search request.
type FilterItem struct {
	Column   string         `json:"column"`
	Operator FilterOperator `json:"operator"`
	Value    string         `json:"value"`
}

// SortItem is a single sort clause in a search request.
type SortItem struct {
	Column    string `json:"column"`
	Direction string `json:"direction"`
}

// Pagination defaults and bounds.
const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// SearchRequest is the wire shape consumed by the search engine.
type SearchRequest struct {
	Search   string       `json:"search,omitempty"`
	Page     int          `json:"page,omitempty"`
	PageSize int          `json:"page_size,omitempty"`
	Filter   []FilterItem `json:"filter,omitempty"`
	Sort     []SortItem   `json:"sort,omitempty"`
}

// Normalize fills in pagination defaults. It does not validate.
func (r *SearchRequest) Normalize() {
	if r.Page < 1 {
		r.Page = DefaultPage
	}
	if r.PageSize < 1 {
		r.PageSize = DefaultPageSize
	}
	if r.PageSize > MaxPageSize {
		r.PageSize = MaxPageSize
	}
}

// Validate checks the request at the boundary: operator enum values,
// sort directions and pagination bounds. Column names are not checked
// here; the engine resolves them against the entity's column config.
func (r *SearchRequest) Validate() error {
	if r.Page < 0 {
		return &RequestValidationError{Field: "page", Reason: "must be >= 1"}
	}
	if r.PageSize < 0 || r.PageSize > MaxPageSize {
		return &RequestValidationError{Field: "page_size", Reason: "must be between 1 and 100"}
	}
	for _, f := range r.Filter {
		if !f.Operator.Valid() {
			return &RequestValidationError{Field: "filter", Reason: "unknown operator " + string(f.Operator)}
		}
	}
	for _, s := range r.Sort {
		if s.Direction != "" && s.Direction != "asc" && s.Direction != "desc" {
			return &RequestValidationError{Field: "sort", Reason: "direction must be asc or desc"}
		}
	}
	return nil
}

// SearchResponse is the paginated result of a search call.
type SearchResponse struct {
	Items      interface{} `json:"items"`
	Total      int         `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	TotalPages int         `json:"total_pages"`
}

// NewSearchResponse builds a response page, deriving total_pages from the
// total row count. A zero total yields zero pages.
func NewSearchResponse(items interface{}, total, page, pageSize int) *SearchResponse {
	totalPages := 0
	if total > 0 && pageSize > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}
	return &SearchResponse{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}

// BulkUpdateRequest is the wire shape consumed by the bulk update engine.
// Every object in Data must carry an "id" key.
type BulkUpdateRequest struct {
	Data         []map[string]interface{} `json:"data"`
	UpdateFields []string                 `json:"update_fields,omitempty"`
	IncludeNone  bool                     `json:"include_none,omitempty"`
}

// BulkUpdateError describes a single rejected row.
type BulkUpdateError struct {
	ID    int64  `json:"id"`
	Error string `json:"error"`
}

// BulkUpdateResult reports per-row outcomes of a bulk update call. Updated
// holds the written column values as returned by the database; Errors holds
// every row that was not written, with a human-readable cause. The call as
// a whole never fails on row-level problems.
type BulkUpdateResult struct {
	Updated []map[string]interface{} `json:"updated"`
	Errors  []BulkUpdateError        `json:"errors"`
}

// Response structures

type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Error   *APIError   `json:"error,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// FormatDetail renders error details for the APIError envelope.
func FormatDetail(details interface{}) string {
	if details == nil {
		return ""
	}
	if err, ok := details.(error); ok {
		return err.Error()
	}
	return fmt.Sprintf("%v", details)
}
