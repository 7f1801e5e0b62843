// internal/app/features/documents/routes.go
package documents

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Authenticator injects the signed-in user or rejects the request.
type Authenticator interface {
	RequireSignedIn(next http.Handler) http.Handler
}

// Routes mounts the document API. Every route requires a bearer token;
// workspace membership is checked per request. writeMW wraps only the
// routes that change the hierarchy (e.g. a rate limiter).
func Routes(h *Handler, tokens Authenticator, writeMW ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(tokens.RequireSignedIn)

	// WORKSPACE - listings and sibling ordering
	r.Get("/workspace/{workspaceID}", h.ServeList)
	r.Get("/workspace/{workspaceID}/favorites", h.ServeFavorites)
	r.Get("/workspace/{workspaceID}/search", h.ServeSearch)

	// DOCUMENT
	r.Get("/{id}", h.ServeDocument)
	r.Get("/{id}/path", h.ServePath)
	r.Post("/{id}/favorite", h.HandleToggleFavorite)

	r.Group(func(r chi.Router) {
		r.Use(writeMW...)
		r.Put("/workspace/{workspaceID}/reorder", h.HandleReorder)
		r.Post("/", h.HandleCreate)
		r.Put("/{id}", h.HandleUpdate)
		r.Delete("/{id}", h.HandleDelete)
		r.Put("/{id}/move", h.HandleMove)
	})

	return r
}
