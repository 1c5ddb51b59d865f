// Package model defines the records served by the review service and their
// searchable projections.
package model

import (
	"time"

	"jobmate/review-service/internal/catalog"
)

// Review is a student's account of an internship.
type Review struct {
	ID             string    `json:"id" yaml:"id"`
	CompanyName    string    `json:"companyName" yaml:"companyName"`
	InternshipName string    `json:"internshipName" yaml:"internshipName"`
	Period         string    `json:"period" yaml:"period"`
	Rating         int       `json:"rating" yaml:"rating"`
	GoodPoints     string    `json:"goodPoints" yaml:"goodPoints"`
	Concerns       string    `json:"concerns" yaml:"concerns"`
	Tags           []string  `json:"tags" yaml:"tags"`
	Recommended    bool      `json:"recommended" yaml:"recommended"`
	Status         string    `json:"status" yaml:"status"`
	Author         string    `json:"author,omitempty" yaml:"author,omitempty"`
	Comments       int       `json:"comments" yaml:"comments"`
	CreatedAt      time.Time `json:"createdAt" yaml:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt" yaml:"updatedAt"`
}

// Internship is an offer, either seeded or imported from a job board.
// Salary is nil when the offer does not state one.
type Internship struct {
	ID                  string     `json:"id" yaml:"id"`
	Name                string     `json:"name" yaml:"name"`
	Company             string     `json:"company" yaml:"company"`
	Description         string     `json:"description" yaml:"description"`
	Location            string     `json:"location" yaml:"location"`
	Duration            string     `json:"duration,omitempty" yaml:"duration,omitempty"`
	StartDate           *time.Time `json:"startDate,omitempty" yaml:"startDate,omitempty"`
	EndDate             *time.Time `json:"endDate,omitempty" yaml:"endDate,omitempty"`
	Salary              *float64   `json:"salary,omitempty" yaml:"salary,omitempty"`
	Rating              float64    `json:"rating" yaml:"rating"`
	Tags                []string   `json:"tags" yaml:"tags"`
	ContractType        string     `json:"contractType,omitempty" yaml:"contractType,omitempty"`
	ApplicationDeadline time.Time  `json:"applicationDeadline" yaml:"applicationDeadline"`
	Requirements        []string   `json:"requirements,omitempty" yaml:"requirements,omitempty"`
	Benefits            []string   `json:"benefits,omitempty" yaml:"benefits,omitempty"`
	SourceURL           string     `json:"sourceUrl,omitempty" yaml:"sourceUrl,omitempty"`
}

// ReviewFields projects a Review for filtering and sorting. Reviews sort by
// creation time and carry no salary.
func ReviewFields(r Review) catalog.Fields {
	comments := r.Comments
	return catalog.Fields{
		ID:          r.ID,
		Name:        r.InternshipName,
		Company:     r.CompanyName,
		Author:      r.Author,
		Description: r.GoodPoints + "\n" + r.Concerns,
		Status:      r.Status,
		Tags:        r.Tags,
		Rating:      float64(r.Rating),
		Date:        r.CreatedAt,
		Comments:    &comments,
	}
}

// InternshipFields projects an Internship for filtering and sorting. The
// application deadline is its date key.
func InternshipFields(i Internship) catalog.Fields {
	return catalog.Fields{
		ID:          i.ID,
		Name:        i.Name,
		Company:     i.Company,
		Location:    i.Location,
		Description: i.Description,
		Category:    i.ContractType,
		Tags:        i.Tags,
		Rating:      i.Rating,
		Salary:      i.Salary,
		Date:        i.ApplicationDeadline,
	}
}
