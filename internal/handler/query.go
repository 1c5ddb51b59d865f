package handler

import (
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"jobmate/review-service/internal/catalog"
)

// listQuery is a parsed stateless search request.
type listQuery struct {
	Criteria catalog.Criteria
	Sort     catalog.SortSpec
	Page     int
	PageSize int
}

// parseListQuery reads search parameters on top of the given defaults.
//
//	q, company, location            text filters
//	minRating, maxRating            inclusive rating range
//	minSalary, maxSalary            inclusive salary range (either bound)
//	salaryMissing                   zero-min | always | never
//	tags, tagMode                   comma list, all | any
//	status, category                comma lists
//	from, to                        RFC 3339 or YYYY-MM-DD
//	sort, order                     field and asc | desc
//	page, pageSize                  1-based paging
func parseListQuery(q url.Values, defaults catalog.Criteria, defSort catalog.SortSpec) (listQuery, error) {
	lq := listQuery{Criteria: defaults.Clone(), Sort: defSort, Page: 1, PageSize: catalog.DefaultPageSize}
	c := &lq.Criteria

	c.Query = strings.TrimSpace(q.Get("q"))
	c.Company = strings.TrimSpace(q.Get("company"))
	c.Location = strings.TrimSpace(q.Get("location"))

	var err error
	if c.Rating.Min, err = floatParam(q, "minRating", c.Rating.Min); err != nil {
		return lq, err
	}
	if c.Rating.Max, err = floatParam(q, "maxRating", c.Rating.Max); err != nil {
		return lq, err
	}

	if q.Has("minSalary") || q.Has("maxSalary") {
		r := catalog.Range{Min: 0, Max: math.MaxFloat64}
		if r.Min, err = floatParam(q, "minSalary", r.Min); err != nil {
			return lq, err
		}
		if r.Max, err = floatParam(q, "maxSalary", r.Max); err != nil {
			return lq, err
		}
		c.Salary = &r
	}
	if v := q.Get("salaryMissing"); v != "" {
		if c.SalaryMissing, err = catalog.ParseMissingPolicy(v); err != nil {
			return lq, err
		}
	}

	if v := q.Get("tags"); v != "" {
		c.Tags = splitComma(v)
	}
	if v := q.Get("tagMode"); v != "" {
		if c.TagMode, err = catalog.ParseTagMode(v); err != nil {
			return lq, err
		}
	}
	if v := q.Get("status"); v != "" {
		c.Statuses = splitComma(v)
	}
	if v := q.Get("category"); v != "" {
		c.Categories = splitComma(v)
	}
	if c.From, err = timeParam(q, "from", false); err != nil {
		return lq, err
	}
	if c.To, err = timeParam(q, "to", true); err != nil {
		return lq, err
	}

	if v := q.Get("sort"); v != "" {
		f, err := catalog.ParseSortField(v)
		if err != nil {
			return lq, err
		}
		lq.Sort = catalog.SortSpec{Field: f, Direction: catalog.Asc}
	}
	if v := q.Get("order"); v != "" {
		if lq.Sort.Direction, err = catalog.ParseDirection(v); err != nil {
			return lq, err
		}
	}

	if lq.Page, err = intParam(q, "page", 1); err != nil {
		return lq, err
	}
	if lq.PageSize, err = intParam(q, "pageSize", catalog.DefaultPageSize); err != nil {
		return lq, err
	}
	if lq.PageSize > maxPageSize {
		return lq, &catalog.ValidationError{Field: "pageSize", Msg: "must be at most " + strconv.Itoa(maxPageSize)}
	}

	if err := c.Validate(); err != nil {
		return lq, err
	}
	return lq, lq.Sort.Validate()
}

func floatParam(q url.Values, key string, def float64) (float64, error) {
	v := strings.TrimSpace(q.Get(key))
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) {
		return 0, &catalog.ValidationError{Field: key, Msg: "must be a number"}
	}
	return f, nil
}

func intParam(q url.Values, key string, def int) (int, error) {
	v := strings.TrimSpace(q.Get(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, &catalog.ValidationError{Field: key, Msg: "must be a positive integer"}
	}
	return n, nil
}

// timeParam accepts RFC 3339 or a bare date. A bare "to" date covers the
// whole day.
func timeParam(q url.Values, key string, endOfDay bool) (*time.Time, error) {
	return timeValue(key, q.Get(key), endOfDay)
}

func timeValue(key, v string, endOfDay bool) (*time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	t, err := parseTime(v, endOfDay)
	if err != nil {
		return nil, &catalog.ValidationError{Field: key, Msg: "must be RFC 3339 or YYYY-MM-DD"}
	}
	return &t, nil
}

func parseTime(v string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}

func splitComma(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
