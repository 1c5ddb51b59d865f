// Package internship owns the internship catalog: lookups and searches over
// the in-memory store, and the import pipeline that keeps it fed from the
// Adzuna job board.
package internship

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"jobmate/review-service/internal/catalog"
	"jobmate/review-service/internal/model"
)

// ErrNotFound is returned when an internship id is unknown.
var ErrNotFound = fmt.Errorf("internship %w", catalog.ErrNotFound)

// Repository persists internships.
type Repository interface {
	LoadInternships(ctx context.Context) ([]model.Internship, error)
	SaveInternships(ctx context.Context, items []model.Internship) error
}

// Service wraps the internship store.
type Service struct {
	store *catalog.Store[model.Internship]
	repo  Repository
	log   *zap.Logger
}

// NewService returns a Service over store.
func NewService(store *catalog.Store[model.Internship], repo Repository, log *zap.Logger) *Service {
	return &Service{store: store, repo: repo, log: log}
}

// Store exposes the underlying catalog for stateful views.
func (s *Service) Store() *catalog.Store[model.Internship] { return s.store }

// Load merges the persisted internships into the catalog.
func (s *Service) Load(ctx context.Context) (int, error) {
	items, err := s.repo.LoadInternships(ctx)
	if err != nil {
		return 0, fmt.Errorf("load internships: %w", err)
	}
	for _, it := range items {
		s.store.Upsert(it)
	}
	return len(items), nil
}

// Get returns an internship by id.
func (s *Service) Get(id string) (model.Internship, error) {
	it, ok := s.store.Get(id)
	if !ok {
		return model.Internship{}, ErrNotFound
	}
	return it, nil
}

// Search runs a one-off search without touching the shared view state.
func (s *Service) Search(c catalog.Criteria, spec catalog.SortSpec) ([]model.Internship, error) {
	return s.store.Search(c, spec)
}

// Upsert adds new offers and refreshes known ones. An offer is known when its
// id or its source URL is already in the catalog; a refreshed offer keeps the
// existing id. New and refreshed offers are persisted together.
func (s *Service) Upsert(ctx context.Context, items []model.Internship) (inserted, duplicates int, err error) {
	byURL := map[string]string{}
	for _, it := range s.store.All() {
		if it.SourceURL != "" {
			byURL[it.SourceURL] = it.ID
		}
	}

	changed := make([]model.Internship, 0, len(items))
	for _, it := range items {
		if id, ok := byURL[it.SourceURL]; ok && it.SourceURL != "" {
			it.ID = id
		}
		if s.store.Upsert(it) {
			inserted++
		} else {
			duplicates++
		}
		if it.SourceURL != "" {
			byURL[it.SourceURL] = it.ID
		}
		changed = append(changed, it)
	}

	if len(changed) > 0 {
		if err := s.repo.SaveInternships(ctx, changed); err != nil {
			return inserted, duplicates, fmt.Errorf("save internships: %w", err)
		}
	}
	return inserted, duplicates, nil
}
