package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobmate/review-service/internal/catalog"
	"jobmate/review-service/internal/model"
)

func TestReviewFields(t *testing.T) {
	created := time.Date(2025, 4, 2, 9, 0, 0, 0, time.UTC)
	f := model.ReviewFields(model.Review{
		ID:             "r1",
		CompanyName:    "Acme",
		InternshipName: "Backend Intern",
		Rating:         4,
		GoodPoints:     "great mentorship",
		Concerns:       "long commute",
		Tags:           []string{"remote"},
		Status:         "PUBLISHED",
		Comments:       3,
		CreatedAt:      created,
	})
	assert.Equal(t, "Backend Intern", f.Name)
	assert.Equal(t, "Acme", f.Company)
	assert.Equal(t, 4.0, f.Rating)
	assert.Nil(t, f.Salary)
	require.NotNil(t, f.Comments)
	assert.Equal(t, 3, *f.Comments)
	assert.Equal(t, created, f.Date)

	c := catalog.DefaultCriteria()
	c.Query = "commute"
	assert.True(t, catalog.Matches(f, c), "concerns are searchable")
}

func TestInternshipFields(t *testing.T) {
	pay := 1200.0
	deadline := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	f := model.InternshipFields(model.Internship{
		ID:                  "i1",
		Name:                "Data Intern",
		Company:             "Globex",
		Location:            "Lyon",
		ContractType:        "full_time",
		Salary:              &pay,
		Rating:              3.5,
		ApplicationDeadline: deadline,
	})
	assert.Equal(t, "Lyon", f.Location)
	assert.Equal(t, "full_time", f.Category)
	require.NotNil(t, f.Salary)
	assert.Equal(t, 1200.0, *f.Salary)
	assert.Equal(t, deadline, f.Date)
	assert.Nil(t, f.Comments)
}
