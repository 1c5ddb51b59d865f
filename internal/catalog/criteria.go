package catalog

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Rating bounds accepted by the filter. Reviews are further restricted to 1–5
// at submission time.
const (
	RatingFloor   = 0.0
	RatingCeiling = 5.0
)

// Range is an inclusive numeric interval.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether v lies in [Min, Max].
func (r Range) Contains(v float64) bool { return v >= r.Min && v <= r.Max }

// Validate enforces Min <= Max.
func (r Range) Validate(field string) error {
	if r.Min > r.Max {
		return invalid(field, fmt.Sprintf("min %g is greater than max %g", r.Min, r.Max))
	}
	return nil
}

// TagMode selects how the required tag set is matched against a record.
type TagMode string

const (
	TagsAll TagMode = "all" // every required tag must be present
	TagsAny TagMode = "any" // at least one required tag must be present
)

// ParseTagMode converts a raw string to a TagMode. Empty means TagsAll.
func ParseTagMode(s string) (TagMode, error) {
	switch m := TagMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return TagsAll, nil
	case TagsAll, TagsAny:
		return m, nil
	}
	return "", invalid("tagMode", fmt.Sprintf("unknown tag mode %q", s))
}

// MissingPolicy decides whether a record without a salary passes an active
// salary range.
type MissingPolicy string

const (
	// MissingPassIfZeroMin lets a record without salary through only when the
	// range starts at zero.
	MissingPassIfZeroMin MissingPolicy = "zero-min"
	MissingAlwaysPass    MissingPolicy = "always"
	MissingNeverPass     MissingPolicy = "never"
)

// ParseMissingPolicy converts a raw string to a MissingPolicy. Empty means
// MissingPassIfZeroMin.
func ParseMissingPolicy(s string) (MissingPolicy, error) {
	switch p := MissingPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return MissingPassIfZeroMin, nil
	case MissingPassIfZeroMin, MissingAlwaysPass, MissingNeverPass:
		return p, nil
	}
	return "", invalid("salaryMissing", fmt.Sprintf("unknown missing-salary policy %q", s))
}

// Criteria holds the active search and filter inputs. The zero value of each
// field means "not applied", except Rating which always applies and defaults to
// the full 0–5 range.
type Criteria struct {
	Query         string        `json:"query"`
	Company       string        `json:"company"`
	Location      string        `json:"location"`
	Rating        Range         `json:"rating"`
	Salary        *Range        `json:"salary,omitempty"`
	Tags          []string      `json:"tags"`
	TagMode       TagMode       `json:"tagMode"`
	Statuses      []string      `json:"statuses,omitempty"`
	Categories    []string      `json:"categories,omitempty"`
	From          *time.Time    `json:"from,omitempty"`
	To            *time.Time    `json:"to,omitempty"`
	SalaryMissing MissingPolicy `json:"salaryMissing"`
}

// DefaultCriteria returns criteria that match every valid record.
func DefaultCriteria() Criteria {
	return Criteria{
		Rating:        Range{Min: RatingFloor, Max: RatingCeiling},
		Tags:          []string{},
		TagMode:       TagsAll,
		SalaryMissing: MissingPassIfZeroMin,
	}
}

// Validate checks every declared range and enumeration.
func (c Criteria) Validate() error {
	if err := c.Rating.Validate("rating"); err != nil {
		return err
	}
	if c.Rating.Min < RatingFloor || c.Rating.Max > RatingCeiling {
		return invalid("rating", fmt.Sprintf("range must lie within %g–%g", RatingFloor, RatingCeiling))
	}
	if c.Salary != nil {
		if err := c.Salary.Validate("salary"); err != nil {
			return err
		}
		if c.Salary.Min < 0 {
			return invalid("salary", "min must not be negative")
		}
	}
	if c.From != nil && c.To != nil && c.From.After(*c.To) {
		return invalid("dateRange", "from is after to")
	}
	if _, err := ParseTagMode(string(c.TagMode)); err != nil {
		return err
	}
	if _, err := ParseMissingPolicy(string(c.SalaryMissing)); err != nil {
		return err
	}
	return nil
}

// ActiveCount returns how many filters are currently narrowing the result.
func (c Criteria) ActiveCount() int {
	n := 0
	for _, s := range []string{c.Query, c.Company, c.Location} {
		if strings.TrimSpace(s) != "" {
			n++
		}
	}
	if c.Rating.Min > RatingFloor || c.Rating.Max < RatingCeiling {
		n++
	}
	if c.Salary != nil {
		n++
	}
	if len(normalizeSet(c.Tags)) > 0 {
		n++
	}
	if len(c.Statuses) > 0 {
		n++
	}
	if len(c.Categories) > 0 {
		n++
	}
	if c.From != nil || c.To != nil {
		n++
	}
	return n
}

// IsDefault reports whether no filter is active.
func (c Criteria) IsDefault() bool { return c.ActiveCount() == 0 }

// Clone returns a deep copy so snapshots do not alias the live criteria.
func (c Criteria) Clone() Criteria {
	out := c
	out.Tags = slices.Clone(c.Tags)
	if out.Tags == nil {
		out.Tags = []string{}
	}
	out.Statuses = slices.Clone(c.Statuses)
	out.Categories = slices.Clone(c.Categories)
	if c.Salary != nil {
		r := *c.Salary
		out.Salary = &r
	}
	if c.From != nil {
		t := *c.From
		out.From = &t
	}
	if c.To != nil {
		t := *c.To
		out.To = &t
	}
	return out
}

// normalizeSet lower-cases and trims values, dropping blanks and duplicates
// while keeping first-seen order.
func normalizeSet(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" || slices.Contains(out, v) {
			continue
		}
		out = append(out, v)
	}
	return out
}
