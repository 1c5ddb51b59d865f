package review

import (
	"fmt"
	"strings"

	"jobmate/review-service/internal/catalog"
)

// ─── Sentinel errors ─────────────────────────────────────────────────────────

// ErrNotFound is returned when a review id is unknown. It wraps
// catalog.ErrNotFound so transports can match either.
var ErrNotFound = fmt.Errorf("review %w", catalog.ErrNotFound)

// FieldError is one rejected form field.
type FieldError struct {
	Field string `json:"field"`
	Msg   string `json:"message"`
}

// ValidationError wraps user-facing validation messages.
type ValidationError struct {
	Msg    string
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Msg
	}
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Msg
	}
	return e.Msg + ": " + strings.Join(parts, "; ")
}
