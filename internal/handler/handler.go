// Package handler implements the HTTP API of the review service.
//
// Routes:
//
//	GET    /health                          → liveness
//	GET    /reviews                         → stateless review search
//	POST   /reviews                         → submit a review
//	GET    /reviews/summary                 → totals, average, top companies and tags
//	GET    /reviews/{id}                    → one review
//	DELETE /reviews/{id}                    → delete a review
//	POST   /reviews/{id}/status             → move along DRAFT → PUBLISHED → ARCHIVED
//	POST   /reviews/{id}/duplicate          → copy as draft
//	POST   /reviews/bulk/delete             → delete many
//	POST   /reviews/bulk/status             → set status on many
//	GET    /internships                     → stateless internship search
//	GET    /internships/{id}                → one internship
//	GET    /{kind}/view                     → shared view state (kind = reviews | internships)
//	POST   /{kind}/view/{action}            → change the shared view
//	GET    /{kind}/view/stream              → WebSocket snapshot stream
//	GET    /search/history                  → recent queries
//	DELETE /search/history                  → clear recent queries
//	GET    /search/saved                    → saved searches
//	POST   /search/saved                    → save the internship view
//	POST   /search/saved/{id}/load          → apply a saved search to the internship view
//	DELETE /search/saved/{id}               → delete a saved search
package handler

import (
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"jobmate/review-service/internal/catalog"
	"jobmate/review-service/internal/internship"
	"jobmate/review-service/internal/model"
	"jobmate/review-service/internal/review"
)

const (
	maxBodyBytes = 1 << 20
	maxPageSize  = 100
)

// ─── Handler ─────────────────────────────────────────────────────────────────

// Handler holds shared dependencies.
type Handler struct {
	reviews     *review.Service
	internships *internship.Service
	history     *catalog.History
	reviewView  *view[model.Review]
	offerView   *view[model.Internship]
	version     string
	log         *zap.Logger
}

// Streams are the WebSocket endpoints of the two views.
type Streams struct {
	Reviews     http.Handler
	Internships http.Handler
}

// New returns a configured Handler.
func New(reviews *review.Service, internships *internship.Service, history *catalog.History, streams Streams, version string, log *zap.Logger) *Handler {
	h := &Handler{
		reviews:     reviews,
		internships: internships,
		history:     history,
		version:     version,
		log:         log,
	}
	h.reviewView = &view[model.Review]{store: reviews.Store(), stream: streams.Reviews}
	h.offerView = &view[model.Internship]{store: internships.Store(), stream: streams.Internships, record: history.Record}
	return h
}

// RegisterRoutes mounts all review-service routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", h.handleHealth)
	mux.HandleFunc("/reviews", h.handleReviews)
	mux.HandleFunc("/reviews/", h.handleReviewAction)
	mux.HandleFunc("/internships", h.handleInternships)
	mux.HandleFunc("/internships/", h.handleInternshipAction)
	mux.HandleFunc("/search/history", h.handleHistory)
	mux.HandleFunc("/search/saved", h.handleSaved)
	mux.HandleFunc("/search/saved/", h.handleSavedAction)
}

// ─── Route dispatch ──────────────────────────────────────────────────────────

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	jsonOK(w, map[string]any{
		"status":      "ok",
		"service":     "review-service",
		"version":     h.version,
		"reviews":     h.reviews.Store().Len(),
		"internships": h.internships.Store().Len(),
	})
}

// handleReviews handles GET|POST /reviews
func (h *Handler) handleReviews(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listReviews(w, r)
	case http.MethodPost:
		h.submitReview(w, r)
	default:
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleReviewAction handles everything below /reviews/
func (h *Handler) handleReviewAction(w http.ResponseWriter, r *http.Request) {
	parts := pathParts(r.URL.Path)[1:]
	switch {
	case len(parts) == 0:
		h.handleReviews(w, r)
	case parts[0] == "view":
		h.reviewView.serve(h, w, r, parts[1:])
	case parts[0] == "summary" && len(parts) == 1:
		if !allow(w, r, http.MethodGet) {
			return
		}
		jsonOK(w, h.reviews.Summary())
	case parts[0] == "bulk" && len(parts) == 2:
		if !allow(w, r, http.MethodPost) {
			return
		}
		switch parts[1] {
		case "delete":
			h.bulkDelete(w, r)
		case "status":
			h.bulkStatus(w, r)
		default:
			jsonError(w, fmt.Sprintf("unknown bulk action %q", parts[1]), http.StatusNotFound)
		}
	case len(parts) == 1:
		switch r.Method {
		case http.MethodGet:
			h.getReview(w, parts[0])
		case http.MethodDelete:
			h.deleteReview(w, r, parts[0])
		default:
			jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	case len(parts) == 2:
		if !allow(w, r, http.MethodPost) {
			return
		}
		switch parts[1] {
		case "status":
			h.setStatus(w, r, parts[0])
		case "duplicate":
			h.duplicateReview(w, r, parts[0])
		default:
			jsonError(w, fmt.Sprintf("unknown action %q", parts[1]), http.StatusNotFound)
		}
	default:
		jsonError(w, "invalid path", http.StatusNotFound)
	}
}

// handleInternships handles GET /internships
func (h *Handler) handleInternships(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	h.listInternships(w, r)
}

// handleInternshipAction handles everything below /internships/
func (h *Handler) handleInternshipAction(w http.ResponseWriter, r *http.Request) {
	parts := pathParts(r.URL.Path)[1:]
	switch {
	case len(parts) == 0:
		h.handleInternships(w, r)
	case parts[0] == "view":
		h.offerView.serve(h, w, r, parts[1:])
	case len(parts) == 1:
		if !allow(w, r, http.MethodGet) {
			return
		}
		it, err := h.internships.Get(parts[0])
		if err != nil {
			h.writeError(w, err)
			return
		}
		jsonOK(w, it)
	default:
		jsonError(w, "invalid path", http.StatusNotFound)
	}
}

// ─── Reviews ─────────────────────────────────────────────────────────────────

func (h *Handler) listReviews(w http.ResponseWriter, r *http.Request) {
	defaults, defSort := h.reviews.Store().Defaults()
	lq, err := parseListQuery(r.URL.Query(), defaults, defSort)
	if err != nil {
		h.writeError(w, err)
		return
	}
	items, err := h.reviews.List(lq.Criteria, lq.Sort)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.history.Record(lq.Criteria.Query)
	jsonOK(w, catalog.Paginate(items, lq.Page, lq.PageSize))
}

func (h *Handler) submitReview(w http.ResponseWriter, r *http.Request) {
	var form review.Form
	if err := decodeBody(r, &form); err != nil {
		h.writeError(w, err)
		return
	}
	rv, err := h.reviews.Submit(r.Context(), form, r.Header.Get("x-user-id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	jsonStatus(w, http.StatusCreated, rv)
}

func (h *Handler) getReview(w http.ResponseWriter, id string) {
	rv, err := h.reviews.Get(id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	jsonOK(w, rv)
}

func (h *Handler) deleteReview(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.reviews.Delete(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	jsonOK(w, map[string]string{"deleted": id})
}

func (h *Handler) setStatus(w http.ResponseWriter, r *http.Request, id string) {
	var body struct {
		Status string `json:"status"`
	}
	if err := decodeBody(r, &body); err != nil {
		h.writeError(w, err)
		return
	}
	rv, err := h.reviews.SetStatus(r.Context(), id, body.Status)
	if err != nil {
		h.writeError(w, err)
		return
	}
	jsonOK(w, rv)
}

func (h *Handler) duplicateReview(w http.ResponseWriter, r *http.Request, id string) {
	rv, err := h.reviews.Duplicate(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	jsonStatus(w, http.StatusCreated, rv)
}

type bulkBody struct {
	IDs    []string `json:"ids"`
	Status string   `json:"status"`
}

func (h *Handler) bulkDelete(w http.ResponseWriter, r *http.Request) {
	var body bulkBody
	if err := decodeBody(r, &body); err != nil {
		h.writeError(w, err)
		return
	}
	n, err := h.reviews.BulkDelete(r.Context(), body.IDs)
	if err != nil {
		h.writeError(w, err)
		return
	}
	jsonOK(w, map[string]int{"deleted": n})
}

func (h *Handler) bulkStatus(w http.ResponseWriter, r *http.Request) {
	var body bulkBody
	if err := decodeBody(r, &body); err != nil {
		h.writeError(w, err)
		return
	}
	res, err := h.reviews.BulkSetStatus(r.Context(), body.IDs, body.Status)
	if err != nil {
		h.writeError(w, err)
		return
	}
	jsonOK(w, res)
}

// ─── Internships ─────────────────────────────────────────────────────────────

func (h *Handler) listInternships(w http.ResponseWriter, r *http.Request) {
	defaults, defSort := h.internships.Store().Defaults()
	lq, err := parseListQuery(r.URL.Query(), defaults, defSort)
	if err != nil {
		h.writeError(w, err)
		return
	}
	items, err := h.internships.Search(lq.Criteria, lq.Sort)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.history.Record(lq.Criteria.Query)
	jsonOK(w, catalog.Paginate(items, lq.Page, lq.PageSize))
}

// ─── Path helpers ────────────────────────────────────────────────────────────

// pathParts splits p into its non-empty segments.
func pathParts(p string) []string {
	return strings.FieldsFunc(p, func(r rune) bool { return r == '/' })
}

// allow writes 405 and returns false unless r uses method.
func allow(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}
