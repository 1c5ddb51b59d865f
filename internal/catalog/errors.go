package catalog

import "errors"

// ─── Sentinel errors ─────────────────────────────────────────────────────────

// ErrNotFound is returned when no record carries the requested id.
var ErrNotFound = errors.New("record not found")

// ErrDuplicateID is returned when a record id is already present in a Store.
var ErrDuplicateID = errors.New("duplicate record id")

// ValidationError reports a rejected criterion or sort value.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return e.Field + ": " + e.Msg
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Msg: msg}
}
