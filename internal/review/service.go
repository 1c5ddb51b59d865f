package review

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"jobmate/review-service/internal/catalog"
	"jobmate/review-service/internal/events"
	"jobmate/review-service/internal/model"
)

// Repository persists reviews. The service keeps the in-memory catalog
// authoritative for reads; the repository only sees writes.
type Repository interface {
	LoadReviews(ctx context.Context) ([]model.Review, error)
	SaveReview(ctx context.Context, r model.Review) error
	DeleteReviews(ctx context.Context, ids []string) error
}

// ─── Service ─────────────────────────────────────────────────────────────────

// Service encapsulates the review business logic. It has no dependency on a
// transport and is shared by the HTTP and gRPC layers.
//
// Commands hold writeMu across the repository write and the catalog update,
// so the repository and the catalog apply them in the same order.
type Service struct {
	writeMu sync.Mutex

	store *catalog.Store[model.Review]
	repo  Repository
	pub   events.Publisher
	log   *zap.Logger
	now   func() time.Time
}

// NewService returns a Service over store. repo and pub are required; use the
// no-op implementations when persistence or events are disabled.
func NewService(store *catalog.Store[model.Review], repo Repository, pub events.Publisher, log *zap.Logger) *Service {
	return &Service{store: store, repo: repo, pub: pub, log: log, now: time.Now}
}

// Store exposes the underlying catalog for stateful views.
func (s *Service) Store() *catalog.Store[model.Review] { return s.store }

// Load replaces the catalog with the persisted reviews. An empty repository
// leaves the current (seeded) catalog in place.
func (s *Service) Load(ctx context.Context) (int, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	reviews, err := s.repo.LoadReviews(ctx)
	if err != nil {
		return 0, fmt.Errorf("load reviews: %w", err)
	}
	if len(reviews) == 0 {
		return 0, nil
	}
	if err := s.store.Replace(reviews); err != nil {
		return 0, fmt.Errorf("load reviews: %w", err)
	}
	return len(reviews), nil
}

// ─── Queries ─────────────────────────────────────────────────────────────────

// Get returns a review by id.
func (s *Service) Get(id string) (model.Review, error) {
	r, ok := s.store.Get(id)
	if !ok {
		return model.Review{}, ErrNotFound
	}
	return r, nil
}

// List runs a one-off search without touching the shared view state.
func (s *Service) List(c catalog.Criteria, spec catalog.SortSpec) ([]model.Review, error) {
	return s.store.Search(c, spec)
}

// Summary aggregates the reviews readers can see. Drafts and archived
// reviews are left out.
func (s *Service) Summary() catalog.Summary {
	visible := slices.DeleteFunc(s.store.All(), func(r model.Review) bool {
		return !IsVisible(Status(r.Status))
	})
	return catalog.Summarize(visible, model.ReviewFields)
}

// ─── Commands ────────────────────────────────────────────────────────────────

// Submit validates f and stores a new published review.
func (s *Service) Submit(ctx context.Context, f Form, author string) (model.Review, error) {
	if err := f.Validate(); err != nil {
		return model.Review{}, err
	}
	f = f.Normalize()
	now := s.now().UTC()
	r := model.Review{
		ID:             uuid.NewString(),
		CompanyName:    f.CompanyName,
		InternshipName: f.InternshipName,
		Period:         f.Period,
		Rating:         f.Rating,
		GoodPoints:     f.GoodPoints,
		Concerns:       f.Concerns,
		Tags:           f.SplitTags(),
		Recommended:    f.Recommended,
		Status:         string(StatusPublished),
		Author:         author,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.insert(ctx, r); err != nil {
		return model.Review{}, err
	}
	s.publish(ctx, events.Event{Type: events.ReviewSubmitted, ReviewID: r.ID, Company: r.CompanyName, To: r.Status})
	return r, nil
}

// Duplicate copies an existing review into a new draft.
func (s *Service) Duplicate(ctx context.Context, id string) (model.Review, error) {
	src, err := s.Get(id)
	if err != nil {
		return model.Review{}, err
	}
	now := s.now().UTC()
	cp := src
	cp.ID = uuid.NewString()
	cp.InternshipName = src.InternshipName + " (copy)"
	cp.Tags = append([]string{}, src.Tags...)
	cp.Status = string(StatusDraft)
	cp.Comments = 0
	cp.CreatedAt = now
	cp.UpdatedAt = now
	if err := s.insert(ctx, cp); err != nil {
		return model.Review{}, err
	}
	s.publish(ctx, events.Event{Type: events.ReviewSubmitted, ReviewID: cp.ID, Company: cp.CompanyName, To: cp.Status})
	return cp, nil
}

// SetStatus moves a review along the status graph.
// Returns ErrNotFound if the review does not exist and a *ValidationError if
// the status is unknown or the transition is forbidden.
func (s *Service) SetStatus(ctx context.Context, id, status string) (model.Review, error) {
	next, err := ParseStatus(status)
	if err != nil {
		return model.Review{}, &ValidationError{Msg: err.Error()}
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	r, err := s.Get(id)
	if err != nil {
		return model.Review{}, err
	}
	current := Status(r.Status)
	if err := checkTransition(current, next); err != nil {
		return model.Review{}, err
	}

	r.Status = string(next)
	r.UpdatedAt = s.now().UTC()
	if err := s.repo.SaveReview(ctx, r); err != nil {
		return model.Review{}, fmt.Errorf("setStatus save: %w", err)
	}
	// Seed reloads replace records without writeMu.
	r, err = s.store.UpdateFunc(id, func(stored model.Review) (model.Review, error) {
		if err := checkTransition(Status(stored.Status), next); err != nil {
			return stored, err
		}
		return r, nil
	})
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return model.Review{}, ErrNotFound
		}
		return model.Review{}, err
	}
	s.publish(ctx, events.Event{Type: events.ReviewUpdated, ReviewID: id, From: string(current), To: string(next)})
	return r, nil
}

func checkTransition(from, to Status) error {
	if !IsTransitionAllowed(from, to) {
		return &ValidationError{Msg: fmt.Sprintf("transition %s → %s is not allowed", from, to)}
	}
	return nil
}

// BulkResult reports the outcome of a bulk command per id.
type BulkResult struct {
	Succeeded []string          `json:"succeeded"`
	Failed    map[string]string `json:"failed"`
}

// BulkSetStatus applies SetStatus to every id. Individual failures are
// reported in the result rather than aborting the batch.
func (s *Service) BulkSetStatus(ctx context.Context, ids []string, status string) (BulkResult, error) {
	if _, err := ParseStatus(status); err != nil {
		return BulkResult{}, &ValidationError{Msg: err.Error()}
	}
	res := BulkResult{Succeeded: []string{}, Failed: map[string]string{}}
	for _, id := range ids {
		if _, err := s.SetStatus(ctx, id, status); err != nil {
			var verr *ValidationError
			if !errors.Is(err, ErrNotFound) && !errors.As(err, &verr) {
				return res, err
			}
			res.Failed[id] = err.Error()
			continue
		}
		res.Succeeded = append(res.Succeeded, id)
	}
	return res, nil
}

// Delete removes one review.
func (s *Service) Delete(ctx context.Context, id string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if _, err := s.Get(id); err != nil {
		return err
	}
	if err := s.repo.DeleteReviews(ctx, []string{id}); err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	if err := s.store.Delete(id); err != nil {
		return ErrNotFound
	}
	s.publish(ctx, events.Event{Type: events.ReviewDeleted, ReviewID: id})
	return nil
}

// BulkDelete removes every known id and returns how many were deleted.
// Unknown ids are ignored.
func (s *Service) BulkDelete(ctx context.Context, ids []string) (int, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	known := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := s.store.Get(id); ok {
			known = append(known, id)
		}
	}
	if len(known) == 0 {
		return 0, nil
	}
	if err := s.repo.DeleteReviews(ctx, known); err != nil {
		return 0, fmt.Errorf("bulk delete reviews: %w", err)
	}
	n := s.store.DeleteMany(known)
	s.publish(ctx, events.Event{Type: events.ReviewDeleted, ReviewIDs: known})
	return n, nil
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func (s *Service) insert(ctx context.Context, r model.Review) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.repo.SaveReview(ctx, r); err != nil {
		return fmt.Errorf("save review: %w", err)
	}
	if err := s.store.Add(r); err != nil {
		return fmt.Errorf("add review: %w", err)
	}
	return nil
}

// publish sends ev and only logs failures.
func (s *Service) publish(ctx context.Context, ev events.Event) {
	if err := s.pub.Publish(ctx, ev); err != nil {
		s.log.Warn("publish event failed", zap.String("type", ev.Type), zap.Error(err))
	}
}
