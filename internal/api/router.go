package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/rolodex/internal/contactservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *contactservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Get("/contacts", h.ListContacts)
	r.Post("/contacts", h.CreateContact)
	r.Get("/contacts/search", h.Search)
	r.Get("/contacts/stats", h.Stats)
	r.Get("/contacts/{phone}", h.GetContact)
	r.Patch("/contacts/{phone}", h.UpdateContact)
	r.Delete("/contacts/{phone}", h.DeleteContact)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
