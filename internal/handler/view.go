package handler

import (
	"fmt"
	"math"
	"net/http"

	"jobmate/review-service/internal/catalog"
)

// view exposes a Store's interactive state. Every mutating action answers
// with the resulting ViewState so clients do not need a second round trip.
type view[T any] struct {
	store  *catalog.Store[T]
	stream http.Handler
	record func(q string)
}

// viewAction is the union of all action bodies; each action reads the
// fields it needs.
type viewAction struct {
	Value     string   `json:"value"`
	Values    []string `json:"values"`
	Min       *float64 `json:"min"`
	Max       *float64 `json:"max"`
	Clear     bool     `json:"clear"`
	Missing   string   `json:"missing"`
	Field     string   `json:"field"`
	Direction string   `json:"direction"`
	Page      int      `json:"page"`
	PageSize  int      `json:"pageSize"`
	From      string   `json:"from"`
	To        string   `json:"to"`
}

func (v *view[T]) serve(h *Handler, w http.ResponseWriter, r *http.Request, parts []string) {
	switch {
	case len(parts) == 0:
		if !allow(w, r, http.MethodGet) {
			return
		}
		jsonOK(w, v.store.View())
	case len(parts) == 1 && parts[0] == "stream":
		if v.stream == nil {
			jsonError(w, "streaming disabled", http.StatusNotFound)
			return
		}
		v.stream.ServeHTTP(w, r)
	case len(parts) == 1:
		if !allow(w, r, http.MethodPost) {
			return
		}
		var body viewAction
		if err := decodeBody(r, &body); err != nil {
			h.writeError(w, err)
			return
		}
		if err := v.apply(parts[0], body); err != nil {
			h.writeError(w, err)
			return
		}
		jsonOK(w, v.store.View())
	default:
		jsonError(w, "invalid path", http.StatusNotFound)
	}
}

func (v *view[T]) apply(action string, a viewAction) error {
	s := v.store
	switch action {
	case "query":
		s.SetQuery(a.Value)
		if v.record != nil {
			v.record(a.Value)
		}
	case "company":
		s.SetCompany(a.Value)
	case "location":
		s.SetLocation(a.Value)
	case "rating":
		cur := s.Criteria().Rating
		return s.SetRatingRange(orDefault(a.Min, cur.Min), orDefault(a.Max, cur.Max))
	case "salary":
		return v.applySalary(a)
	case "tag":
		s.ToggleTag(a.Value)
	case "tags":
		s.SetTags(a.Values)
	case "tagMode":
		m, err := catalog.ParseTagMode(a.Value)
		if err != nil {
			return err
		}
		return s.SetTagMode(m)
	case "status":
		s.SetStatuses(a.Values)
	case "category":
		c := s.Criteria()
		c.Categories = a.Values
		return s.SetCriteria(c)
	case "dates":
		from, err := timeValue("from", a.From, false)
		if err != nil {
			return err
		}
		to, err := timeValue("to", a.To, true)
		if err != nil {
			return err
		}
		return s.SetDateRange(from, to)
	case "sort":
		f, err := catalog.ParseSortField(a.Field)
		if err != nil {
			return err
		}
		if a.Direction == "" {
			return s.SetSortField(f)
		}
		d, err := catalog.ParseDirection(a.Direction)
		if err != nil {
			return err
		}
		return s.SetSort(catalog.SortSpec{Field: f, Direction: d})
	case "direction":
		s.ToggleSortDirection()
	case "page":
		if a.PageSize > 0 {
			if a.PageSize > maxPageSize {
				return &catalog.ValidationError{Field: "pageSize", Msg: fmt.Sprintf("must not exceed %d", maxPageSize)}
			}
			if err := s.SetPageSize(a.PageSize); err != nil {
				return err
			}
		}
		if a.Page > 0 {
			s.SetPage(a.Page)
		}
	case "reset":
		s.Reset()
	default:
		return fmt.Errorf("view action %q: %w", action, catalog.ErrNotFound)
	}
	return nil
}

func (v *view[T]) applySalary(a viewAction) error {
	s := v.store
	if a.Missing != "" {
		p, err := catalog.ParseMissingPolicy(a.Missing)
		if err != nil {
			return err
		}
		if err := s.SetSalaryMissing(p); err != nil {
			return err
		}
	}
	if a.Clear {
		s.ClearSalaryRange()
		return nil
	}
	if a.Min == nil && a.Max == nil {
		return nil
	}
	lo, hi := 0.0, math.MaxFloat64
	if cur := s.Criteria().Salary; cur != nil {
		lo, hi = cur.Min, cur.Max
	}
	return s.SetSalaryRange(orDefault(a.Min, lo), orDefault(a.Max, hi))
}

func orDefault(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}
