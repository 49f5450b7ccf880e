// Package searchspec implements a declarative search API over registered
// entities: free-text search, typed filters, dynamic joins, sorting and
// offset pagination, all validated against per-entity column configs.
package searchspec

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

// SetupMuxRoutes registers POST /{entity}/search for every registered
// entity. authMiddleware is optional.
func SetupMuxRoutes(muxRouter *mux.Router, handler *Handler, authMiddleware MiddlewareFunc) {
	handler.Engine().Registry().Iterate(func(name string, _ *modelregistry.Entity) {
		searchHandler := createMuxHandler(handler, name)

		var h http.Handler = searchHandler
		if authMiddleware != nil {
			h = authMiddleware(searchHandler)
		}

		muxRouter.Handle("/"+name+"/search", h).Methods("POST")
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
