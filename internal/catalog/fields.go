// Package catalog implements the search core shared by every record collection
// in the service: a pure filter predicate evaluator, a stable comparator-based
// sorter, and a Store that re-derives the visible list on every mutation.
//
// The package is generic over the record type. Callers supply a View that
// projects their record into Fields; nothing in here knows about reviews or
// internships.
package catalog

import "time"

// Fields is the searchable projection of a record.
type Fields struct {
	ID          string
	Name        string // title or internship name
	Company     string
	Author      string
	Location    string
	Description string
	Status      string
	Category    string
	Tags        []string
	Rating      float64
	Salary      *float64 // nil when the record carries no salary
	Date        time.Time
	Comments    *int
}

// View projects a record of type T into Fields.
type View[T any] func(T) Fields
