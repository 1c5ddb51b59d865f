package catalog

import (
	"strings"
)

// Filter returns, in input order, every item that satisfies all active
// criteria. The input slice is never modified.
func Filter[T any](items []T, c Criteria, view View[T]) []T {
	m := newMatcher(c)
	out := make([]T, 0, len(items))
	for _, it := range items {
		if m.match(view(it)) {
			out = append(out, it)
		}
	}
	return out
}

// Matches reports whether a single record satisfies c.
func Matches(f Fields, c Criteria) bool {
	return newMatcher(c).match(f)
}

// matcher holds criteria normalised once per Filter call.
type matcher struct {
	query      string
	company    string
	location   string
	rating     Range
	salary     *Range
	missing    MissingPolicy
	tags       []string
	anyTag     bool
	statuses   []string
	categories []string
	c          Criteria
}

func newMatcher(c Criteria) matcher {
	missing := c.SalaryMissing
	if missing == "" {
		missing = MissingPassIfZeroMin
	}
	return matcher{
		query:      strings.ToLower(strings.TrimSpace(c.Query)),
		company:    strings.ToLower(strings.TrimSpace(c.Company)),
		location:   strings.ToLower(strings.TrimSpace(c.Location)),
		rating:     c.Rating,
		salary:     c.Salary,
		missing:    missing,
		tags:       normalizeSet(c.Tags),
		anyTag:     c.TagMode == TagsAny,
		statuses:   normalizeSet(c.Statuses),
		categories: normalizeSet(c.Categories),
		c:          c,
	}
}

func (m matcher) match(f Fields) bool {
	if m.query != "" && !m.matchQuery(f) {
		return false
	}
	if m.company != "" && !containsFold(f.Company, m.company) {
		return false
	}
	if m.location != "" && !containsFold(f.Location, m.location) {
		return false
	}
	if !m.rating.Contains(f.Rating) {
		return false
	}
	if m.salary != nil && !m.matchSalary(f.Salary) {
		return false
	}
	if len(m.tags) > 0 && !m.matchTags(f.Tags) {
		return false
	}
	if len(m.statuses) > 0 && !inSet(m.statuses, f.Status) {
		return false
	}
	if len(m.categories) > 0 && !inSet(m.categories, f.Category) {
		return false
	}
	if m.c.From != nil || m.c.To != nil {
		if f.Date.IsZero() {
			return false
		}
		if m.c.From != nil && f.Date.Before(*m.c.From) {
			return false
		}
		if m.c.To != nil && f.Date.After(*m.c.To) {
			return false
		}
	}
	return true
}

// matchQuery is a case-insensitive substring search over the name, company,
// author, description and tags of a record.
func (m matcher) matchQuery(f Fields) bool {
	for _, s := range [...]string{f.Name, f.Company, f.Author, f.Description} {
		if containsFold(s, m.query) {
			return true
		}
	}
	for _, t := range f.Tags {
		if containsFold(t, m.query) {
			return true
		}
	}
	return false
}

func (m matcher) matchSalary(v *float64) bool {
	if v == nil {
		switch m.missing {
		case MissingAlwaysPass:
			return true
		case MissingNeverPass:
			return false
		default:
			return m.salary.Min == 0
		}
	}
	return m.salary.Contains(*v)
}

func (m matcher) matchTags(recordTags []string) bool {
	have := normalizeSet(recordTags)
	for _, want := range m.tags {
		found := inSet(have, want)
		if m.anyTag && found {
			return true
		}
		if !m.anyTag && !found {
			return false
		}
	}
	return !m.anyTag
}

// containsFold reports whether needle (already lower-cased) occurs in s,
// ignoring case.
func containsFold(s, needle string) bool {
	return strings.Contains(strings.ToLower(s), needle)
}

// inSet reports whether v matches a member of a normalised set.
func inSet(set []string, v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
