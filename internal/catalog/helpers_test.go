package catalog_test

import (
	"time"

	"jobmate/review-service/internal/catalog"
)

// rec is a minimal record used across the catalog tests.
type rec struct {
	ID       string
	Name     string
	Company  string
	Location string
	Desc     string
	Rating   float64
	Tags     []string
	Salary   *float64
	Status   string
	Date     time.Time
}

func recView(r rec) catalog.Fields {
	return catalog.Fields{
		ID:          r.ID,
		Name:        r.Name,
		Company:     r.Company,
		Location:    r.Location,
		Description: r.Desc,
		Rating:      r.Rating,
		Tags:        r.Tags,
		Salary:      r.Salary,
		Status:      r.Status,
		Date:        r.Date,
	}
}

func salary(v float64) *float64 { return &v }

func ids(items []rec) []string {
	out := make([]string, len(items))
	for i, r := range items {
		out[i] = r.ID
	}
	return out
}

func day(d int) time.Time {
	return time.Date(2025, time.March, d, 0, 0, 0, 0, time.UTC)
}

func fixture() []rec {
	return []rec{
		{ID: "1", Name: "Backend Intern", Company: "Acme", Location: "Tokyo", Desc: "Go services", Rating: 4, Tags: []string{"remote", "mentorship"}, Salary: salary(30), Status: "published", Date: day(10)},
		{ID: "2", Name: "Frontend Intern", Company: "Globex", Location: "Osaka", Desc: "React work", Rating: 3, Tags: []string{"onsite"}, Status: "draft", Date: day(5)},
		{ID: "3", Name: "Data Intern", Company: "Initech", Location: "Remote", Desc: "pipelines", Rating: 5, Tags: []string{"Remote", "paid"}, Salary: salary(45), Status: "published", Date: day(20)},
		{ID: "4", Name: "QA Intern", Company: "acme labs", Location: "Tokyo", Desc: "testing", Rating: 2, Tags: []string{"mentorship"}, Salary: salary(12), Status: "archived"},
	}
}
