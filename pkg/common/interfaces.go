package common

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
)

// Database abstracts the relational store both engines execute against.
// Implemented by the Bun adapter; the interface keeps the engines free of
// ORM specifics.
type Database interface {
	// Core query operations
	NewSelect() SelectQuery
	NewUpdate() UpdateQuery

	// Raw SQL execution
	Exec(ctx context.Context, query string, args ...interface{}) (Result, error)
	Query(ctx context.Context, dest interface{}, query string, args ...interface{}) error

	// Transaction support
	BeginTx(ctx context.Context) (Database, error)
	CommitTx(ctx context.Context) error
	RollbackTx(ctx context.Context) error
	RunInTransaction(ctx context.Context, fn func(Database) error) error

	// GetUnderlyingDB returns the underlying connection (*bun.DB or bun.Tx).
	GetUnderlyingDB() interface{}

	// DriverName returns the canonical name of the underlying database
	// driver. Possible values: "postgres", "sqlite", "mysql". Adapters
	// normalise vendor-specific strings (e.g. Bun's "pg") before returning.
	DriverName() string
}

// SelectQuery builds SELECT queries.
type SelectQuery interface {
	Model(model interface{}) SelectQuery
	Table(table string) SelectQuery
	Column(columns ...string) SelectQuery
	ColumnExpr(query string, args ...interface{}) SelectQuery
	Where(query string, args ...interface{}) SelectQuery
	WhereOr(query string, args ...interface{}) SelectQuery
	Join(query string, args ...interface{}) SelectQuery
	Preload(relation string, conditions ...interface{}) SelectQuery
	Order(order string) SelectQuery
	OrderExpr(order string, args ...interface{}) SelectQuery
	Limit(n int) SelectQuery
	Offset(n int) SelectQuery

	// Execution methods
	Scan(ctx context.Context, dest interface{}) error
	Count(ctx context.Context) (int, error)
	Exists(ctx context.Context) (bool, error)
}

// UpdateQuery builds UPDATE queries.
type UpdateQuery interface {
	Model(model interface{}) UpdateQuery
	Table(table string) UpdateQuery
	Set(column string, value interface{}) UpdateQuery
	SetMap(values map[string]interface{}) UpdateQuery
	Where(query string, args ...interface{}) UpdateQuery
	Returning(columns ...string) UpdateQuery

	// Execution
	Exec(ctx context.Context) (Result, error)
}

// Result reports the outcome of an executed statement.
type Result interface {
	RowsAffected() int64
	LastInsertId() (int64, error)
}

// Request abstracts an HTTP request so handlers stay router-agnostic.
type Request interface {
	Method() string
	URL() string
	Header(key string) string
	Body() ([]byte, error)
	PathParam(key string) string
	QueryParam(key string) string
	UnderlyingRequest() *http.Request
}

// ResponseWriter abstracts an HTTP response.
type ResponseWriter interface {
	SetHeader(key, value string)
	WriteHeader(statusCode int)
	Write(data []byte) (int, error)
	WriteJSON(data interface{}) error
	UnderlyingResponseWriter() http.ResponseWriter
}

// WrapHTTPRequest wraps standard http.ResponseWriter and *http.Request into common interfaces
func WrapHTTPRequest(w http.ResponseWriter, r *http.Request) (ResponseWriter, Request) {
	return &StandardResponseWriter{w: w}, &StandardRequest{r: r}
}

// StandardResponseWriter adapts http.ResponseWriter to ResponseWriter interface
type StandardResponseWriter struct {
	w      http.ResponseWriter
	status int
}

func (s *StandardResponseWriter) SetHeader(key, value string) {
	s.w.Header().Set(key, value)
}

func (s *StandardResponseWriter) WriteHeader(statusCode int) {
	s.status = statusCode
	s.w.WriteHeader(statusCode)
}

func (s *StandardResponseWriter) Write(data []byte) (int, error) {
	return s.w.Write(data)
}

func (s *StandardResponseWriter) WriteJSON(data interface{}) error {
	s.SetHeader("Content-Type", "application/json")
	return json.NewEncoder(s.w).Encode(data)
}

func (s *StandardResponseWriter) UnderlyingResponseWriter() http.ResponseWriter {
	return s.w
}

// StandardRequest adapts *http.Request to Request interface
type StandardRequest struct {
	r    *http.Request
	body []byte
}

func (s *StandardRequest) Method() string {
	return s.r.Method
}

func (s *StandardRequest) URL() string {
	return s.r.URL.String()
}

func (s *StandardRequest) Header(key string) string {
	return s.r.Header.Get(key)
}

func (s *StandardRequest) Body() ([]byte, error) {
	if s.body != nil {
		return s.body, nil
	}
	if s.r.Body == nil {
		return nil, nil
	}
	defer s.r.Body.Close()
	body, err := io.ReadAll(s.r.Body)
	if err != nil {
		return nil, err
	}
	s.body = body
	return body, nil
}

func (s *StandardRequest) PathParam(key string) string {
	// Path params are injected by the router wrapper, not the raw request.
	return ""
}

func (s *StandardRequest) QueryParam(key string) string {
	return s.r.URL.Query().Get(key)
}

func (s *StandardRequest) UnderlyingRequest() *http.Request {
	return s.r
}

// TableNameProvider interface for models that provide table names
type TableNameProvider interface {
	TableName() string
}

// PrimaryKeyNameProvider interface for models that provide primary key column names
type PrimaryKeyNameProvider interface {
	GetIDName() string
}
