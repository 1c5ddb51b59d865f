package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"jobmate/review-service/internal/catalog"
	"jobmate/review-service/internal/review"
)

// ─── Helpers ─────────────────────────────────────────────────────────────────

func jsonOK(w http.ResponseWriter, v any) {
	jsonStatus(w, http.StatusOK, v)
}

func jsonStatus(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	jsonStatus(w, code, map[string]string{"error": msg})
}

type validationBody struct {
	Error  string              `json:"error"`
	Fields []review.FieldError `json:"fields,omitempty"`
}

// writeError maps service errors onto HTTP status codes.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var (
		formErr *review.ValidationError
		critErr *catalog.ValidationError
	)
	switch {
	case errors.As(err, &formErr):
		jsonStatus(w, http.StatusBadRequest, validationBody{Error: formErr.Msg, Fields: formErr.Fields})
	case errors.As(err, &critErr):
		body := validationBody{Error: critErr.Error()}
		if critErr.Field != "" {
			body.Fields = []review.FieldError{{Field: critErr.Field, Msg: critErr.Msg}}
		}
		jsonStatus(w, http.StatusBadRequest, body)
	case errors.Is(err, catalog.ErrNotFound):
		jsonError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, catalog.ErrDuplicateID):
		jsonError(w, err.Error(), http.StatusConflict)
	default:
		h.log.Error("request failed", zap.Error(err))
		jsonError(w, "internal error", http.StatusInternalServerError)
	}
}

// decodeBody reads a JSON body into v. An empty body leaves v untouched.
func decodeBody(r *http.Request, v any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return &catalog.ValidationError{Msg: "invalid JSON body"}
	}
	return nil
}
