package catalog

import (
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	maxRecentQueries = 10
	maxSavedSearches = 20
)

// SavedSearch is a named criteria/sort pair a user can re-apply later.
type SavedSearch struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Criteria  Criteria  `json:"criteria"`
	Sort      SortSpec  `json:"sort"`
	CreatedAt time.Time `json:"createdAt"`
}

// History keeps recent queries and saved searches, newest first.
type History struct {
	mu     sync.Mutex
	recent []string
	saved  []SavedSearch
	now    func() time.Time
}

// NewHistory returns an empty History.
func NewHistory() *History {
	return &History{now: time.Now}
}

// Record pushes q to the front of the recent list. Blank queries are ignored
// and a repeated query moves to the front instead of appearing twice.
func (h *History) Record(q string) {
	q = strings.TrimSpace(q)
	if q == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	next := make([]string, 0, maxRecentQueries)
	next = append(next, q)
	for _, r := range h.recent {
		if r != q && len(next) < maxRecentQueries {
			next = append(next, r)
		}
	}
	h.recent = next
}

// Recent returns the recent queries, most recent first.
func (h *History) Recent() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := slices.Clone(h.recent)
	if out == nil {
		out = []string{}
	}
	return out
}

// ClearRecent forgets every recent query.
func (h *History) ClearRecent() {
	h.mu.Lock()
	h.recent = nil
	h.mu.Unlock()
}

// Save stores c and spec under name and returns the new entry. Only the
// newest maxSavedSearches entries are kept.
func (h *History) Save(name string, c Criteria, spec SortSpec) SavedSearch {
	h.mu.Lock()
	defer h.mu.Unlock()
	s := SavedSearch{
		ID:        "search-" + uuid.NewString(),
		Name:      strings.TrimSpace(name),
		Criteria:  c.Clone(),
		Sort:      spec,
		CreatedAt: h.now().UTC(),
	}
	h.saved = append([]SavedSearch{s}, h.saved...)
	if len(h.saved) > maxSavedSearches {
		h.saved = h.saved[:maxSavedSearches]
	}
	return s
}

// Saved lists saved searches, newest first.
func (h *History) Saved() []SavedSearch {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]SavedSearch, len(h.saved))
	for i, s := range h.saved {
		s.Criteria = s.Criteria.Clone()
		out[i] = s
	}
	return out
}

// Find looks up a saved search by id.
func (h *History) Find(id string) (SavedSearch, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, s := range h.saved {
		if s.ID == id {
			s.Criteria = s.Criteria.Clone()
			return s, true
		}
	}
	return SavedSearch{}, false
}

// Remove deletes a saved search and reports whether it existed.
func (h *History) Remove(id string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := len(h.saved)
	h.saved = slices.DeleteFunc(h.saved, func(s SavedSearch) bool { return s.ID == id })
	return len(h.saved) != n
}
