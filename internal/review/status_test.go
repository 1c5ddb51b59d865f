package review_test

import (
	"testing"

	"jobmate/review-service/internal/review"
)

// ── ParseStatus ────────────────────────────────────────────────────────────

func TestParseStatus_ValidValues(t *testing.T) {
	for _, s := range []string{"DRAFT", "PUBLISHED", "ARCHIVED"} {
		got, err := review.ParseStatus(s)
		if err != nil {
			t.Errorf("ParseStatus(%q) returned unexpected error: %v", s, err)
		}
		if string(got) != s {
			t.Errorf("ParseStatus(%q) = %q, want %q", s, got, s)
		}
	}
}

func TestParseStatus_Rejects(t *testing.T) {
	for _, s := range []string{"", "UNKNOWN", "draft", " PUBLISHED", "ARCHIVED "} {
		if _, err := review.ParseStatus(s); err == nil {
			t.Errorf("ParseStatus(%q) expected error, got nil", s)
		}
	}
}

// ── IsTransitionAllowed ────────────────────────────────────────────────────

func TestIsTransitionAllowed_Valid(t *testing.T) {
	cases := []struct {
		from review.Status
		to   review.Status
	}{
		{review.StatusDraft, review.StatusPublished},
		{review.StatusDraft, review.StatusArchived},
		{review.StatusPublished, review.StatusArchived},
	}
	for _, c := range cases {
		if !review.IsTransitionAllowed(c.from, c.to) {
			t.Errorf("IsTransitionAllowed(%s → %s) should be true", c.from, c.to)
		}
	}
}

func TestIsTransitionAllowed_Backwards(t *testing.T) {
	if review.IsTransitionAllowed(review.StatusPublished, review.StatusDraft) {
		t.Error("IsTransitionAllowed(PUBLISHED → DRAFT) should be false")
	}
}

// ARCHIVED must not be the source of any allowed transition.
func TestIsTransitionAllowed_FromTerminal(t *testing.T) {
	for _, to := range []review.Status{review.StatusDraft, review.StatusPublished, review.StatusArchived} {
		if review.IsTransitionAllowed(review.StatusArchived, to) {
			t.Errorf("IsTransitionAllowed(ARCHIVED → %s) should be false (terminal state)", to)
		}
	}
}

func TestIsTransitionAllowed_Self(t *testing.T) {
	for _, s := range []review.Status{review.StatusDraft, review.StatusPublished, review.StatusArchived} {
		if review.IsTransitionAllowed(s, s) {
			t.Errorf("IsTransitionAllowed(%s → %s) should be false (self)", s, s)
		}
	}
}

// An unknown source status has no outgoing transitions.
func TestIsTransitionAllowed_UnknownSource(t *testing.T) {
	if review.IsTransitionAllowed(review.Status("PENDING"), review.StatusPublished) {
		t.Error("IsTransitionAllowed(PENDING → PUBLISHED) should be false")
	}
}

func TestIsVisible(t *testing.T) {
	if !review.IsVisible(review.StatusPublished) {
		t.Error("IsVisible(PUBLISHED) should return true")
	}
	for _, s := range []review.Status{review.StatusDraft, review.StatusArchived} {
		if review.IsVisible(s) {
			t.Errorf("IsVisible(%s) should return false", s)
		}
	}
}
