package handler

import (
	"fmt"
	"net/http"
	"strings"

	"jobmate/review-service/internal/catalog"
)

// handleHistory handles GET|DELETE /search/history
func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		jsonOK(w, map[string][]string{"queries": h.history.Recent()})
	case http.MethodDelete:
		h.history.ClearRecent()
		w.WriteHeader(http.StatusNoContent)
	default:
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleSaved handles GET|POST /search/saved
func (h *Handler) handleSaved(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		jsonOK(w, h.history.Saved())
	case http.MethodPost:
		h.saveSearch(w, r)
	default:
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleSavedAction handles /search/saved/{id} and /search/saved/{id}/load
func (h *Handler) handleSavedAction(w http.ResponseWriter, r *http.Request) {
	parts := pathParts(strings.TrimPrefix(r.URL.Path, "/search/saved"))
	if len(parts) == 0 {
		h.handleSaved(w, r)
		return
	}
	id := parts[0]
	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		s, ok := h.history.Find(id)
		if !ok {
			h.writeError(w, savedNotFound(id))
			return
		}
		jsonOK(w, s)
	case len(parts) == 1 && r.Method == http.MethodDelete:
		if !h.history.Remove(id) {
			h.writeError(w, savedNotFound(id))
			return
		}
		jsonOK(w, map[string]string{"deleted": id})
	case len(parts) == 2 && parts[1] == "load":
		if !allow(w, r, http.MethodPost) {
			return
		}
		h.loadSearch(w, id)
	case len(parts) == 1:
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
	default:
		jsonError(w, "invalid path", http.StatusNotFound)
	}
}

// saveSearch stores the current internship view under a name.
func (h *Handler) saveSearch(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if err := decodeBody(r, &body); err != nil {
		h.writeError(w, err)
		return
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		h.writeError(w, &catalog.ValidationError{Field: "name", Msg: "is required"})
		return
	}
	store := h.internships.Store()
	saved := h.history.Save(name, store.Criteria(), store.SortSpec())
	jsonStatus(w, http.StatusCreated, saved)
}

// loadSearch applies a saved search to the internship view.
func (h *Handler) loadSearch(w http.ResponseWriter, id string) {
	s, ok := h.history.Find(id)
	if !ok {
		h.writeError(w, savedNotFound(id))
		return
	}
	store := h.internships.Store()
	if err := store.SetView(s.Criteria, s.Sort); err != nil {
		h.writeError(w, err)
		return
	}
	jsonOK(w, store.View())
}

func savedNotFound(id string) error {
	return fmt.Errorf("saved search %s: %w", id, catalog.ErrNotFound)
}
