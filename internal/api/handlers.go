package api

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/starford/rolodex/internal/contactservice"
)

// maxBody caps request bodies; a contact is a handful of short strings.
const maxBody = 1 << 20

// Handler holds API route handlers.
type Handler struct {
	svc *contactservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *contactservice.Service) *Handler {
	return &Handler{svc: svc}
}

// phoneParam extracts the phone key from the URL, undoing percent-encoding
// for numbers like "+1%20555".
func phoneParam(r *http.Request) string {
	raw := chi.URLParam(r, "phone")
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// ListContacts handles GET /contacts.
func (h *Handler) ListContacts(w http.ResponseWriter, r *http.Request) {
	items := h.svc.List(r.Context())
	writeJSON(w, http.StatusOK, ContactListResponse{Contacts: items, Total: len(items)})
}

// Search handles GET /contacts/search?q=. An empty q returns all contacts.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	results := h.svc.Search(r.Context(), r.URL.Query().Get("q"))
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// Stats handles GET /contacts/stats.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Stats(r.Context()))
}

// GetContact handles GET /contacts/{phone}.
func (h *Handler) GetContact(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.Get(r.Context(), phoneParam(r))
	if err != nil {
		writeError(w, "get contact", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// CreateContact handles POST /contacts.
func (h *Handler) CreateContact(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	var req CreateContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	c, err := h.svc.Add(r.Context(), req)
	if err != nil {
		writeError(w, "create contact", err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// UpdateContact handles PATCH /contacts/{phone}. Only keys present in the
// body are changed.
func (h *Handler) UpdateContact(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	ch, err := changesFromBody(body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	c, err := h.svc.Update(r.Context(), phoneParam(r), ch)
	if err != nil {
		writeError(w, "update contact", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// DeleteContact handles DELETE /contacts/{phone}.
func (h *Handler) DeleteContact(w http.ResponseWriter, r *http.Request) {
	ok, err := h.svc.Delete(r.Context(), phoneParam(r))
	if err != nil {
		writeError(w, "delete contact", err)
		return
	}
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
