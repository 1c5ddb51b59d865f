// Package review holds the review lifecycle: submission, validation, the
// publication state machine and the service that keeps the review catalog,
// the repository and the event bus in step.
//
// Valid status graph:
//
//	DRAFT ──► PUBLISHED ──► ARCHIVED
//	  │                        ▲
//	  └────────────────────────┘
//
// ARCHIVED is terminal.
package review

import (
	"fmt"
	"slices"
)

// Status is the publication state of a review.
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusPublished Status = "PUBLISHED"
	StatusArchived  Status = "ARCHIVED"
)

// validTransitions lists every allowed (from → to) pair.
var validTransitions = map[Status][]Status{
	StatusDraft:     {StatusPublished, StatusArchived},
	StatusPublished: {StatusArchived},
	// ARCHIVED is terminal
}

// ParseStatus converts a raw string to a Status, returning an error for
// unknown values. Matching is exact.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	switch st {
	case StatusDraft, StatusPublished, StatusArchived:
		return st, nil
	}
	return "", fmt.Errorf("unknown review status %q", s)
}

// IsTransitionAllowed reports whether moving from → to is permitted.
func IsTransitionAllowed(from, to Status) bool {
	allowed, ok := validTransitions[from]
	if !ok {
		return false
	}
	return slices.Contains(allowed, to)
}

// IsVisible reports whether reviews in status s are shown to readers.
func IsVisible(s Status) bool { return s == StatusPublished }
