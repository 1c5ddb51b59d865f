package catalog

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"
)

// DefaultPageSize is the page length used when none is configured.
const DefaultPageSize = 12

// Snapshot is the derived state published after every mutation. Visible must
// be treated as read-only; it is shared between subscribers.
type Snapshot[T any] struct {
	Version  uint64   `json:"version"`
	Criteria Criteria `json:"criteria"`
	Sort     SortSpec `json:"sort"`
	Visible  []T      `json:"visible"`
	Total    int      `json:"total"`
	Active   int      `json:"activeFilters"`
}

// Page is one slice of the visible list.
type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// Paginate cuts items into pages of size and returns the requested one.
// Pages are 1-based; a page past the end is empty.
func Paginate[T any](items []T, page, size int) Page[T] {
	if size <= 0 {
		size = DefaultPageSize
	}
	if page < 1 {
		page = 1
	}
	total := len(items)
	p := Page[T]{
		Items:      []T{},
		Page:       page,
		PageSize:   size,
		Total:      total,
		TotalPages: total / size,
	}
	if total%size != 0 {
		p.TotalPages++
	}
	if page > p.TotalPages {
		return p
	}
	start := (page - 1) * size
	end := min(start+size, total)
	p.Items = slices.Clone(items[start:end])
	return p
}

// ─── Options ─────────────────────────────────────────────────────────────────

type storeConfig struct {
	comparer *Comparer
	criteria Criteria
	sort     SortSpec
	pageSize int
}

// Option configures a Store.
type Option func(*storeConfig)

// WithComparer sets the collation used for name sorting.
func WithComparer(c *Comparer) Option { return func(o *storeConfig) { o.comparer = c } }

// WithDefaults sets the criteria restored by Reset.
func WithDefaults(c Criteria) Option { return func(o *storeConfig) { o.criteria = c.Clone() } }

// WithDefaultSort sets the sort restored by Reset.
func WithDefaultSort(s SortSpec) Option { return func(o *storeConfig) { o.sort = s } }

// WithPageSize sets the initial page length.
func WithPageSize(n int) Option { return func(o *storeConfig) { o.pageSize = n } }

// ─── Store ───────────────────────────────────────────────────────────────────

// Store owns a record collection plus the current criteria and sort, and keeps
// the derived visible list in step with both. Every mutator recomputes the
// visible list before it returns, then hands the new Snapshot to subscribers
// in mutation order.
//
// Subscribers run on the mutating goroutine and must not call mutators on the
// same Store.
type Store[T any] struct {
	mu       sync.RWMutex
	notifyMu sync.Mutex

	view     View[T]
	comparer *Comparer
	defaults Criteria
	defSort  SortSpec

	items    []T
	ids      map[string]struct{}
	criteria Criteria
	sort     SortSpec
	visible  []T
	page     int
	pageSize int
	version  uint64

	subs    map[int]func(Snapshot[T])
	nextSub int
}

// NewStore builds a Store over items. Ids must be unique.
func NewStore[T any](items []T, view View[T], opts ...Option) (*Store[T], error) {
	cfg := storeConfig{
		criteria: DefaultCriteria(),
		sort:     DefaultSort(),
		pageSize: DefaultPageSize,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.criteria.Validate(); err != nil {
		return nil, fmt.Errorf("default criteria: %w", err)
	}
	if err := cfg.sort.Validate(); err != nil {
		return nil, fmt.Errorf("default sort: %w", err)
	}

	s := &Store[T]{
		view:     view,
		comparer: cfg.comparer,
		defaults: cfg.criteria,
		defSort:  cfg.sort,
		criteria: cfg.criteria.Clone(),
		sort:     cfg.sort,
		page:     1,
		pageSize: cfg.pageSize,
		subs:     make(map[int]func(Snapshot[T])),
	}
	if s.pageSize <= 0 {
		s.pageSize = DefaultPageSize
	}
	if err := s.load(items); err != nil {
		return nil, err
	}
	s.recompute()
	return s, nil
}

// load replaces the collection, rejecting duplicate ids. Caller holds mu or
// owns s exclusively.
func (s *Store[T]) load(items []T) error {
	ids := make(map[string]struct{}, len(items))
	for _, it := range items {
		id := s.view(it).ID
		if _, dup := ids[id]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateID, id)
		}
		ids[id] = struct{}{}
	}
	s.items = slices.Clone(items)
	s.ids = ids
	return nil
}

func (s *Store[T]) recompute() {
	s.visible = Apply(s.items, s.criteria, s.sort, s.view, s.comparer)
}

func (s *Store[T]) snapshotLocked() Snapshot[T] {
	return Snapshot[T]{
		Version:  s.version,
		Criteria: s.criteria.Clone(),
		Sort:     s.sort,
		Visible:  s.visible,
		Total:    len(s.items),
		Active:   s.criteria.ActiveCount(),
	}
}

// mutate runs fn under the write lock, recomputes the derived list and
// notifies subscribers. If fn fails nothing changes and nobody is notified.
// notifyMu is taken before mu is released so snapshots reach subscribers in
// version order.
func (s *Store[T]) mutate(fn func() error) error {
	s.mu.Lock()
	if err := fn(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.recompute()
	s.version++
	snap := s.snapshotLocked()

	keys := make([]int, 0, len(s.subs))
	for k := range s.subs {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	subs := make([]func(Snapshot[T]), 0, len(keys))
	for _, k := range keys {
		subs = append(subs, s.subs[k])
	}

	s.notifyMu.Lock()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()
	for _, sub := range subs {
		sub(snap)
	}
	return nil
}

// Subscribe registers fn for every future snapshot and returns a function
// that removes it.
func (s *Store[T]) Subscribe(fn func(Snapshot[T])) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

// ─── Criteria mutators ───────────────────────────────────────────────────────

// SetQuery sets the free-text query.
func (s *Store[T]) SetQuery(q string) {
	_ = s.mutate(func() error {
		s.criteria.Query = q
		s.page = 1
		return nil
	})
}

// SetCompany sets the company filter.
func (s *Store[T]) SetCompany(company string) {
	_ = s.mutate(func() error {
		s.criteria.Company = company
		s.page = 1
		return nil
	})
}

// SetLocation sets the location filter.
func (s *Store[T]) SetLocation(location string) {
	_ = s.mutate(func() error {
		s.criteria.Location = location
		s.page = 1
		return nil
	})
}

// SetRatingRange sets the inclusive rating bounds.
func (s *Store[T]) SetRatingRange(lo, hi float64) error {
	return s.mutate(func() error {
		next := s.criteria
		next.Rating = Range{Min: lo, Max: hi}
		if err := next.Validate(); err != nil {
			return err
		}
		s.criteria.Rating = next.Rating
		s.page = 1
		return nil
	})
}

// SetSalaryRange activates the salary filter with inclusive bounds.
func (s *Store[T]) SetSalaryRange(lo, hi float64) error {
	return s.mutate(func() error {
		r := Range{Min: lo, Max: hi}
		next := s.criteria
		next.Salary = &r
		if err := next.Validate(); err != nil {
			return err
		}
		s.criteria.Salary = &r
		s.page = 1
		return nil
	})
}

// ClearSalaryRange deactivates the salary filter.
func (s *Store[T]) ClearSalaryRange() {
	_ = s.mutate(func() error {
		s.criteria.Salary = nil
		s.page = 1
		return nil
	})
}

// SetSalaryMissing changes how records without salary are treated.
func (s *Store[T]) SetSalaryMissing(p MissingPolicy) error {
	return s.mutate(func() error {
		parsed, err := ParseMissingPolicy(string(p))
		if err != nil {
			return err
		}
		s.criteria.SalaryMissing = parsed
		s.page = 1
		return nil
	})
}

// ToggleTag adds tag to the required set, or removes it when already present
// (case-insensitive). Blank tags are ignored.
func (s *Store[T]) ToggleTag(tag string) {
	_ = s.mutate(func() error {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			return nil
		}
		tags := make([]string, 0, len(s.criteria.Tags)+1)
		removed := false
		for _, t := range s.criteria.Tags {
			if strings.EqualFold(strings.TrimSpace(t), tag) {
				removed = true
				continue
			}
			tags = append(tags, t)
		}
		if !removed {
			tags = append(tags, tag)
		}
		s.criteria.Tags = tags
		s.page = 1
		return nil
	})
}

// SetTags replaces the required tag set.
func (s *Store[T]) SetTags(tags []string) {
	_ = s.mutate(func() error {
		s.criteria.Tags = slices.Clone(tags)
		if s.criteria.Tags == nil {
			s.criteria.Tags = []string{}
		}
		s.page = 1
		return nil
	})
}

// SetTagMode switches between all-tags and any-tag matching.
func (s *Store[T]) SetTagMode(m TagMode) error {
	return s.mutate(func() error {
		parsed, err := ParseTagMode(string(m))
		if err != nil {
			return err
		}
		s.criteria.TagMode = parsed
		s.page = 1
		return nil
	})
}

// SetStatuses restricts the result to the given statuses. Empty clears it.
func (s *Store[T]) SetStatuses(statuses []string) {
	_ = s.mutate(func() error {
		s.criteria.Statuses = slices.Clone(statuses)
		s.page = 1
		return nil
	})
}

// SetDateRange sets the inclusive date bounds. Either end may be nil.
func (s *Store[T]) SetDateRange(from, to *time.Time) error {
	return s.mutate(func() error {
		next := s.criteria
		next.From, next.To = from, to
		if err := next.Validate(); err != nil {
			return err
		}
		s.criteria.From, s.criteria.To = from, to
		s.page = 1
		return nil
	})
}

// SetCriteria replaces every criterion at once.
func (s *Store[T]) SetCriteria(c Criteria) error {
	return s.mutate(func() error {
		if err := c.Validate(); err != nil {
			return err
		}
		s.criteria = c.Clone()
		s.page = 1
		return nil
	})
}

// SetView replaces the criteria and the sort in a single step, so
// subscribers see one snapshot. Nothing changes unless both are valid.
func (s *Store[T]) SetView(c Criteria, spec SortSpec) error {
	return s.mutate(func() error {
		if err := c.Validate(); err != nil {
			return err
		}
		if err := spec.Validate(); err != nil {
			return err
		}
		s.criteria = c.Clone()
		s.sort = spec
		s.page = 1
		return nil
	})
}

// ─── Sort mutators ───────────────────────────────────────────────────────────

// SetSort replaces the sort spec.
func (s *Store[T]) SetSort(spec SortSpec) error {
	return s.mutate(func() error {
		if err := spec.Validate(); err != nil {
			return err
		}
		s.sort = spec
		s.page = 1
		return nil
	})
}

// SetSortField sorts by f. Selecting the current field again flips the
// direction; a new field starts ascending.
func (s *Store[T]) SetSortField(f SortField) error {
	return s.mutate(func() error {
		next := SortSpec{Field: f, Direction: Asc}
		if s.sort.Field == f && s.sort.Direction == Asc {
			next.Direction = Desc
		}
		if err := next.Validate(); err != nil {
			return err
		}
		s.sort = next
		s.page = 1
		return nil
	})
}

// ToggleSortDirection flips the current direction.
func (s *Store[T]) ToggleSortDirection() {
	_ = s.mutate(func() error {
		s.sort = s.sort.Reverse()
		s.page = 1
		return nil
	})
}

// Reset restores the default criteria, sort and first page.
func (s *Store[T]) Reset() {
	_ = s.mutate(func() error {
		s.criteria = s.defaults.Clone()
		s.sort = s.defSort
		s.page = 1
		return nil
	})
}

// ─── Paging ──────────────────────────────────────────────────────────────────

// SetPage selects the 1-based page returned by Page.
func (s *Store[T]) SetPage(n int) {
	_ = s.mutate(func() error {
		s.page = max(1, n)
		return nil
	})
}

// SetPageSize changes the page length and returns to the first page.
func (s *Store[T]) SetPageSize(n int) error {
	return s.mutate(func() error {
		if n < 1 {
			return invalid("pageSize", "must be at least 1")
		}
		s.pageSize = n
		s.page = 1
		return nil
	})
}

// ─── Collection mutators ─────────────────────────────────────────────────────

// Add appends item. Its id must not already be present.
func (s *Store[T]) Add(item T) error {
	return s.mutate(func() error {
		id := s.view(item).ID
		if _, dup := s.ids[id]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateID, id)
		}
		s.items = append(s.items, item)
		s.ids[id] = struct{}{}
		return nil
	})
}

// Update replaces the record with the same id.
func (s *Store[T]) Update(item T) error {
	return s.mutate(func() error {
		id := s.view(item).ID
		i := s.indexLocked(id)
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		s.items[i] = item
		return nil
	})
}

// UpdateFunc replaces the record with id by fn applied to its current value.
// fn runs under the write lock, so the value it sees cannot change before the
// result is stored. If fn fails the store is left untouched. fn must keep the
// id.
func (s *Store[T]) UpdateFunc(id string, fn func(T) (T, error)) (T, error) {
	var out T
	err := s.mutate(func() error {
		i := s.indexLocked(id)
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		next, err := fn(s.items[i])
		if err != nil {
			return err
		}
		if got := s.view(next).ID; got != id {
			return invalid("id", fmt.Sprintf("cannot change from %q to %q", id, got))
		}
		s.items[i] = next
		out = next
		return nil
	})
	return out, err
}

// Upsert adds item or replaces the record with the same id. It reports
// whether the item was newly inserted.
func (s *Store[T]) Upsert(item T) (inserted bool) {
	_ = s.mutate(func() error {
		id := s.view(item).ID
		if i := s.indexLocked(id); i >= 0 {
			s.items[i] = item
			return nil
		}
		s.items = append(s.items, item)
		s.ids[id] = struct{}{}
		inserted = true
		return nil
	})
	return inserted
}

// Delete removes the record with id.
func (s *Store[T]) Delete(id string) error {
	return s.mutate(func() error {
		i := s.indexLocked(id)
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		s.items = slices.Delete(s.items, i, i+1)
		delete(s.ids, id)
		return nil
	})
}

// DeleteMany removes every listed id that exists and returns how many were
// removed.
func (s *Store[T]) DeleteMany(ids []string) int {
	removed := 0
	_ = s.mutate(func() error {
		drop := make(map[string]struct{}, len(ids))
		for _, id := range ids {
			drop[id] = struct{}{}
		}
		s.items = slices.DeleteFunc(s.items, func(it T) bool {
			id := s.view(it).ID
			if _, ok := drop[id]; ok {
				delete(s.ids, id)
				removed++
				return true
			}
			return false
		})
		return nil
	})
	return removed
}

// Replace swaps the whole collection, keeping criteria and sort.
func (s *Store[T]) Replace(items []T) error {
	return s.mutate(func() error {
		return s.load(items)
	})
}

func (s *Store[T]) indexLocked(id string) int {
	if _, ok := s.ids[id]; !ok {
		return -1
	}
	return slices.IndexFunc(s.items, func(it T) bool { return s.view(it).ID == id })
}

// ─── Queries ─────────────────────────────────────────────────────────────────

// Visible returns a copy of the derived visible list.
func (s *Store[T]) Visible() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.visible)
}

// Page returns the current page of the visible list.
func (s *Store[T]) Page() Page[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Paginate(s.visible, s.page, s.pageSize)
}

// Get returns the record with id.
func (s *Store[T]) Get(id string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.items[i], true
	}
	var zero T
	return zero, false
}

// All returns a copy of the full collection in insertion order.
func (s *Store[T]) All() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items)
}

// Len returns the collection size.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Criteria returns a copy of the active criteria.
func (s *Store[T]) Criteria() Criteria {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.criteria.Clone()
}

// SortSpec returns the active sort.
func (s *Store[T]) SortSpec() SortSpec {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sort
}

// Snapshot returns the current derived state.
func (s *Store[T]) Snapshot() Snapshot[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// ViewState is a consistent read of the criteria, sort and current page.
type ViewState[T any] struct {
	Version  uint64   `json:"version"`
	Criteria Criteria `json:"criteria"`
	Sort     SortSpec `json:"sort"`
	Active   int      `json:"activeFilters"`
	Page     Page[T]  `json:"page"`
}

// View returns the current page together with the state that produced it.
func (s *Store[T]) View() ViewState[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ViewState[T]{
		Version:  s.version,
		Criteria: s.criteria.Clone(),
		Sort:     s.sort,
		Active:   s.criteria.ActiveCount(),
		Page:     Paginate(s.visible, s.page, s.pageSize),
	}
}

// Defaults returns the criteria and sort that Reset restores.
func (s *Store[T]) Defaults() (Criteria, SortSpec) {
	return s.defaults.Clone(), s.defSort
}

// Search runs a one-off filter and sort over the collection without touching
// the stored criteria.
func (s *Store[T]) Search(c Criteria, spec SortSpec) ([]T, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	items := slices.Clone(s.items)
	s.mu.RUnlock()
	return Apply(items, c, spec, s.view, s.comparer), nil
}
