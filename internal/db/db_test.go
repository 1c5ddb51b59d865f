package db_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobmate/review-service/internal/db"
	"jobmate/review-service/internal/internship"
	"jobmate/review-service/internal/model"
	"jobmate/review-service/internal/review"
)

// Both repositories satisfy the service interfaces.
var (
	_ review.Repository     = (*db.Repository)(nil)
	_ internship.Repository = (*db.Repository)(nil)
	_ review.Repository     = db.Nop{}
	_ internship.Repository = db.Nop{}
)

func TestNop(t *testing.T) {
	ctx := context.Background()
	var n db.Nop
	reviews, err := n.LoadReviews(ctx)
	assert.NoError(t, err)
	assert.Empty(t, reviews)
	assert.NoError(t, n.SaveReview(ctx, model.Review{ID: "x"}))
	assert.NoError(t, n.DeleteReviews(ctx, []string{"x"}))
	assert.NoError(t, n.SaveInternships(ctx, []model.Internship{{ID: "y"}}))
}

func TestNewRedisClient_BadURL(t *testing.T) {
	_, err := db.NewRedisClient(context.Background(), "not-a-url")
	assert.Error(t, err)
}

func TestNewPostgresPool_BadURL(t *testing.T) {
	_, err := db.NewPostgresPool(context.Background(), "postgres://%zz")
	assert.Error(t, err)
}

// TestRepository_RoundTrip runs against a real database when
// TEST_DATABASE_URL is set.
func TestRepository_RoundTrip(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := db.NewPostgresPool(ctx, url)
	require.NoError(t, err)
	defer pool.Close()

	repo := db.NewRepository(pool)
	require.NoError(t, repo.Migrate(ctx))

	now := time.Now().UTC().Truncate(time.Microsecond)
	rv := model.Review{
		ID: "test-review", CompanyName: "Acme", InternshipName: "Intern", Period: "2025",
		Rating: 4, GoodPoints: "good", Concerns: "bad", Tags: []string{"remote"},
		Status: "PUBLISHED", CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, repo.SaveReview(ctx, rv))
	t.Cleanup(func() { _ = repo.DeleteReviews(context.Background(), []string{rv.ID}) })

	reviews, err := repo.LoadReviews(ctx)
	require.NoError(t, err)
	var found bool
	for _, got := range reviews {
		if got.ID == rv.ID {
			found = true
			assert.Equal(t, rv.Tags, got.Tags)
			assert.True(t, rv.CreatedAt.Equal(got.CreatedAt))
		}
	}
	assert.True(t, found)

	pay := 1000.0
	require.NoError(t, repo.SaveInternships(ctx, []model.Internship{
		{ID: "test-internship", Name: "Intern", Salary: &pay, SourceURL: "https://test.example/1"},
	}))
	items, err := repo.LoadInternships(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, items)
}
