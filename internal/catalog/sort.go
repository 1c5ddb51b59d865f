package catalog

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortField selects the key a collection is ordered by.
type SortField string

const (
	SortRating   SortField = "rating"
	SortDate     SortField = "date" // deadline for internships, creation time for reviews
	SortSalary   SortField = "salary"
	SortName     SortField = "name"
	SortComments SortField = "comments"
)

// comparator orders two projections ascending.
type comparator func(a, b Fields, c *Comparer) int

// comparators is the closed set of sortable fields.
var comparators = map[SortField]comparator{
	SortRating: func(a, b Fields, _ *Comparer) int { return cmp.Compare(a.Rating, b.Rating) },
	SortDate:   func(a, b Fields, _ *Comparer) int { return a.Date.Compare(b.Date) },
	SortSalary: func(a, b Fields, _ *Comparer) int { return cmp.Compare(deref(a.Salary), deref(b.Salary)) },
	SortName:   func(a, b Fields, c *Comparer) int { return c.CompareStrings(a.Name, b.Name) },
	SortComments: func(a, b Fields, _ *Comparer) int {
		return cmp.Compare(derefInt(a.Comments), derefInt(b.Comments))
	},
}

// sortAliases maps the field names used by older clients onto SortField.
var sortAliases = map[string]SortField{
	"deadline":  SortDate,
	"createdat": SortDate,
	"newest":    SortDate,
	"title":     SortName,
	"helpful":   SortComments,
}

// ParseSortField converts a raw string to a SortField.
func ParseSortField(s string) (SortField, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if f := SortField(key); comparators[f] != nil {
		return f, nil
	}
	if f, ok := sortAliases[key]; ok {
		return f, nil
	}
	return "", invalid("sort", fmt.Sprintf("unknown sort field %q", s))
}

// Direction is the sort order.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection converts a raw string to a Direction.
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(strings.ToLower(strings.TrimSpace(s))); d {
	case Asc, Desc:
		return d, nil
	}
	return "", invalid("order", fmt.Sprintf("unknown sort direction %q", s))
}

// Opposite returns the other direction.
func (d Direction) Opposite() Direction {
	if d == Asc {
		return Desc
	}
	return Asc
}

// SortSpec is a (field, direction) pair.
type SortSpec struct {
	Field     SortField `json:"field"`
	Direction Direction `json:"direction"`
}

// DefaultSort orders by rating, best first.
func DefaultSort() SortSpec { return SortSpec{Field: SortRating, Direction: Desc} }

// Validate checks that both halves of the spec are known values.
func (s SortSpec) Validate() error {
	if comparators[s.Field] == nil {
		return invalid("sort", fmt.Sprintf("unknown sort field %q", s.Field))
	}
	if _, err := ParseDirection(string(s.Direction)); err != nil {
		return err
	}
	return nil
}

// Reverse returns the spec with the opposite direction.
func (s SortSpec) Reverse() SortSpec {
	return SortSpec{Field: s.Field, Direction: s.Direction.Opposite()}
}

// ─── Comparer ────────────────────────────────────────────────────────────────

// Comparer performs locale-aware string comparison. A collate.Collator keeps
// internal buffers, so calls are serialised.
type Comparer struct {
	mu  sync.Mutex
	col *collate.Collator
}

// NewComparer returns a Comparer for the given language tag.
func NewComparer(tag language.Tag) *Comparer {
	return &Comparer{col: collate.New(tag)}
}

// NewComparerFor parses a BCP 47 locale such as "en" or "ja-JP".
func NewComparerFor(locale string) (*Comparer, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("parse locale %q: %w", locale, err)
	}
	return NewComparer(tag), nil
}

var (
	defaultComparerOnce sync.Once
	defaultComparer     *Comparer
)

func fallbackComparer() *Comparer {
	defaultComparerOnce.Do(func() { defaultComparer = NewComparer(language.English) })
	return defaultComparer
}

// CompareStrings returns -1, 0 or +1 in collation order.
func (c *Comparer) CompareStrings(a, b string) int {
	if c == nil {
		c = fallbackComparer()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.col.CompareString(a, b)
}

// ─── Sorting ─────────────────────────────────────────────────────────────────

// Sort returns a new slice ordered by spec. Equal keys keep their input order.
// An invalid spec leaves the order unchanged.
func Sort[T any](items []T, spec SortSpec, view View[T], c *Comparer) []T {
	out := slices.Clone(items)
	compare, ok := comparators[spec.Field]
	if !ok {
		return out
	}
	if c == nil {
		c = fallbackComparer()
	}
	sign := 1
	if spec.Direction == Desc {
		sign = -1
	}

	tmp := make([]keyed[T], len(out))
	for i, it := range out {
		tmp[i] = keyed[T]{f: view(it), item: it}
	}
	slices.SortStableFunc(tmp, func(a, b keyed[T]) int {
		return sign * compare(a.f, b.f, c)
	})
	for i := range tmp {
		out[i] = tmp[i].item
	}
	return out
}

// keyed pairs an item with its projection so view runs once per item.
type keyed[T any] struct {
	f    Fields
	item T
}

// Apply filters then sorts.
func Apply[T any](items []T, c Criteria, spec SortSpec, view View[T], col *Comparer) []T {
	return Sort(Filter(items, c, view), spec, view, col)
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func derefInt(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
