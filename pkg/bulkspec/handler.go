package bulkspec

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/bitechdev/DataSpec/pkg/common"
	"github.com/bitechdev/DataSpec/pkg/logger"
	"github.com/bitechdev/DataSpec/pkg/searchspec"
)

// Handler processes bulk update requests through the router-agnostic
// interfaces.
type Handler struct {
	engine *Engine
}

// NewHandler creates a bulk update handler around an engine.
func NewHandler(engine *Engine) *Handler {
	return &Handler{engine: engine}
}

// Engine returns the underlying bulk update engine.
func (h *Handler) Engine() *Engine {
	return h.engine
}

// Handle processes a bulk update request. params must carry the "entity"
// path parameter. Row-level failures still answer 200; the per-row errors
// ride in the result body.
func (h *Handler) Handle(w common.ResponseWriter, r common.Request, params map[string]string) {
	defer func() {
		if rec := recover(); rec != nil {
			_ = logger.HandlePanic("bulkspec.Handle", rec)
			h.sendError(w, http.StatusInternalServerError, "internal_error", "Internal server error", nil)
		}
	}()

	entityName := params["entity"]
	workspaceID := r.Header(searchspec.WorkspaceHeader)

	logger.Debug("Handling bulk update for entity: %s", entityName)

	body, err := r.Body()
	if err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid_request", "Failed to read request body", err)
		return
	}

	var req common.BulkUpdateRequest
	if len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			h.sendError(w, http.StatusBadRequest, "invalid_request", "Invalid request body", err)
			return
		}
	}

	result, err := h.engine.BulkUpdate(requestContext(r), entityName, &req, workspaceID)
	if err != nil {
		status, code := mapBulkUpdateError(err)
		h.sendError(w, status, code, err.Error(), nil)
		return
	}

	h.sendJSON(w, result)
}

func requestContext(r common.Request) context.Context {
	if hr := r.UnderlyingRequest(); hr != nil {
		return hr.Context()
	}
	return context.Background()
}

// mapBulkUpdateError maps engine errors onto HTTP status and error codes.
func mapBulkUpdateError(err error) (int, string) {
	var (
		unknownEntity *common.UnknownEntityError
		validation    *common.RequestValidationError
	)

	switch {
	case errors.As(err, &unknownEntity):
		return http.StatusNotFound, "unknown_entity"
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
