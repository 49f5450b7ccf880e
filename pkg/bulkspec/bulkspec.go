// Package bulkspec implements set-based bulk updates over registered
// entities: rows grouped by field set, chunked under a parameter ceiling,
// with a row-by-row fallback when a chunk trips a constraint.
package bulkspec

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/uptrace/bun"

	"github.com/bitechdev/DataSpec/pkg/common"
	"github.com/bitechdev/DataSpec/pkg/common/adapters/database"
	"github.com/bitechdev/DataSpec/pkg/modelregistry"
)

// NewHandlerWithBun creates a Handler with a Bun adapter and the default
// entity registry.
func NewHandlerWithBun(db *bun.DB) *Handler {
	adapter := database.NewBunAdapter(db)
	return NewHandler(NewEngine(adapter, modelregistry.GetDefaultRegistry()))
}

// NewHandlerWithDatabase creates a Handler over an existing Database and
// registry.
func NewHandlerWithDatabase(db common.Database, registry *modelregistry.EntityRegistry) *Handler {
	return NewHandler(NewEngine(db, registry))
}

// MiddlewareFunc wraps an http.Handler with additional functionality
type MiddlewareFunc func(http.Handler) http.Handler

// SetupMuxRoutes registers POST /{entity}/bulk_update for every registered
// entity. authMiddleware is optional.
func SetupMuxRoutes(muxRouter *mux.Router, handler *Handler, authMiddleware MiddlewareFunc) {
	handler.Engine().Registry().Iterate(func(name string, _ *modelregistry.Entity) {
		updateHandler := createMuxHandler(handler, name)

		var h http.Handler = updateHandler
		if authMiddleware != nil {
			h = authMiddleware(updateHandler)
		}

		muxRouter.Handle("/"+name+"/bulk_update", h).Methods("POST")
	})
}

// createMuxHandler builds the handler closure for one entity.
func createMuxHandler(handler *Handler, entity string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respAdapter, reqAdapter := common.WrapHTTPRequest(w, r)

		params := map[string]string{"entity": entity}
		handler.Handle(respAdapter, reqAdapter, params)
	}
}
