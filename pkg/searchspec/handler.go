package searchspec

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/bitechdev/DataSpec/pkg/common"
	"github.com/bitechdev/DataSpec/pkg/logger"
)

// WorkspaceHeader carries the caller's workspace id. Authentication itself
// happens upstream; the engines only scope queries by this value.
const WorkspaceHeader = "X-Workspace-ID"

// Handler processes search requests through the router-agnostic interfaces.
type Handler struct {
	engine *Engine
}

// NewHandler creates a search handler around an engine.
func NewHandler(engine *Engine) *Handler {
	return &Handler{engine: engine}
}

// Engine returns the underlying search engine.
func (h *Handler) Engine() *Engine {
	return h.engine
}

// Handle processes a search request. params must carry the "entity" path
// parameter.
func (h *Handler) Handle(w common.ResponseWriter, r common.Request, params map[string]string) {
	defer func() {
		if rec := recover(); rec != nil {
			_ = logger.HandlePanic("searchspec.Handle", rec)
			h.sendError(w, http.StatusInternalServerError, "internal_error", "Internal server error", nil)
		}
	}()

	entityName := params["entity"]
	workspaceID := r.Header(WorkspaceHeader)

	logger.Debug("Handling search for entity: %s", entityName)

	body, err := r.Body()
	if err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid_request", "Failed to read request body", err)
		return
	}

	var req common.SearchRequest
	if len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			h.sendError(w, http.StatusBadRequest, "invalid_request", "Invalid request body", err)
			return
		}
	}

	if err := req.Validate(); err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid_request", err.Error(), nil)
		return
	}

	resp, err := h.engine.Search(requestContext(r), entityName, &req, workspaceID)
	if err != nil {
		status, code := mapSearchError(err)
		h.sendError(w, status, code, err.Error(), nil)
		return
	}

	h.sendJSON(w, resp)
}

func requestContext(r common.Request) context.Context {
	if hr := r.UnderlyingRequest(); hr != nil {
		return hr.Context()
	}
	return context.Background()
}

// mapSearchError maps engine errors onto HTTP status and error codes.
// Configuration and value errors are client mistakes; the rest is a
// server-side query failure.
func mapSearchError(err error) (int, string) {
	var (
		unknownEntity *common.UnknownEntityError
		filterField   *common.InvalidFilterFieldError
		sortField     *common.InvalidSortFieldError
		noSearchable  *common.NoSearchableFieldsError
		filterValue   *common.FilterValueError
		validation    *common.RequestValidationError
	)

	switch {
	case errors.As(err, &unknownEntity):
		return http.StatusNotFound, "unknown_entity"
	case errors.As(err, &filterField):
		return http.StatusBadRequest, "invalid_filter_field"
	case errors.As(err, &sortField):
		return http.StatusBadRequest, "invalid_sort_field"
	case errors.As(err, &noSearchable):
		return http.StatusBadRequest, "no_searchable_fields"
	case errors.As(err, &filterValue):
		return http.StatusBadRequest, "invalid_filter_value"
	case errors.As(err, &validation):
		return http.StatusBadRequest, "invalid_request"
	default:
		return http.StatusInternalServerError, "query_error"
	}
}

func (h *Handler) sendJSON(w common.ResponseWriter, data interface{}) {
	w.SetHeader("Content-Type", "application/json")
	if err := w.WriteJSON(data); err != nil {
		logger.Error("Error sending response: %v", err)
	}
}

func (h *Handler) sendError(w common.ResponseWriter, status int, code, message string, details interface{}) {
	w.SetHeader("Content-Type", "application/json")
	w.WriteHeader(status)
	detail := ""
	if details != nil {
		detail = common.FormatDetail(details)
	}
	err := w.WriteJSON(common.Response{
		Success: false,
		Error: &common.APIError{
			Code:    code,
			Message: message,
			Detail:  detail,
		},
	})
	if err != nil {
		logger.Error("Error sending response: %v", err)
	}
}
