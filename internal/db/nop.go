package db

import (
	"context"

	"jobmate/review-service/internal/model"
)

// Nop satisfies both catalog repositories without persisting anything. It is
// used when DATABASE_URL is unset.
type Nop struct{}

func (Nop) LoadReviews(context.Context) ([]model.Review, error) { return nil, nil }

func (Nop) SaveReview(context.Context, model.Review) error { return nil }

func (Nop) DeleteReviews(context.Context, []string) error { return nil }

func (Nop) LoadInternships(context.Context) ([]model.Internship, error) { return nil, nil }

func (Nop) SaveInternships(context.Context, []model.Internship) error { return nil }
