package seed

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"jobmate/review-service/internal/catalog"
	"jobmate/review-service/internal/model"
)

// LoadFile reads a YAML seed file and validates its records.
func LoadFile(path string) (Data, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Data{}, fmt.Errorf("read seed file: %w", err)
	}
	var d Data
	if err := yaml.Unmarshal(raw, &d); err != nil {
		return Data{}, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	for i := range d.Reviews {
		if d.Reviews[i].Tags == nil {
			d.Reviews[i].Tags = []string{}
		}
	}
	for i := range d.Internships {
		if d.Internships[i].Tags == nil {
			d.Internships[i].Tags = []string{}
		}
	}
	if err := d.Validate(); err != nil {
		return Data{}, fmt.Errorf("seed file %s: %w", path, err)
	}
	return d, nil
}

// WriteFile writes d as YAML, replacing path.
func WriteFile(path string, d Data) error {
	raw, err := yaml.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode seed data: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write seed file: %w", err)
	}
	return nil
}

// Apply replaces the content of both stores with d. Each store keeps its
// criteria and sort. Nothing is replaced unless both collections are valid.
func Apply(d Data, reviews *catalog.Store[model.Review], internships *catalog.Store[model.Internship]) error {
	if err := d.Validate(); err != nil {
		return err
	}
	if err := reviews.Replace(d.Reviews); err != nil {
		return fmt.Errorf("apply reviews: %w", err)
	}
	if err := internships.Replace(d.Internships); err != nil {
		return fmt.Errorf("apply internships: %w", err)
	}
	return nil
}

// Review ratings are whole stars; internship ratings share the catalog's
// rating scale.
const (
	minReviewRating = 1
	maxReviewRating = 5
)

// Validate checks every record: ids must be present and unique within their
// collection and ratings must lie on their scale. It returns a
// *catalog.ValidationError naming the first bad record, or an error wrapping
// catalog.ErrDuplicateID.
func (d Data) Validate() error {
	seen := map[string]bool{}
	for i, r := range d.Reviews {
		if r.ID == "" {
			return &catalog.ValidationError{Field: fmt.Sprintf("reviews[%d].id", i), Msg: "must not be empty"}
		}
		if seen[r.ID] {
			return fmt.Errorf("review %q: %w", r.ID, catalog.ErrDuplicateID)
		}
		seen[r.ID] = true
		if r.Rating < minReviewRating || r.Rating > maxReviewRating {
			return &catalog.ValidationError{
				Field: fmt.Sprintf("reviews[%d].rating", i),
				Msg:   fmt.Sprintf("%d is outside %d–%d", r.Rating, minReviewRating, maxReviewRating),
			}
		}
	}
	clear(seen)
	for i, it := range d.Internships {
		if it.ID == "" {
			return &catalog.ValidationError{Field: fmt.Sprintf("internships[%d].id", i), Msg: "must not be empty"}
		}
		if seen[it.ID] {
			return fmt.Errorf("internship %q: %w", it.ID, catalog.ErrDuplicateID)
		}
		seen[it.ID] = true
		if it.Rating < catalog.RatingFloor || it.Rating > catalog.RatingCeiling {
			return &catalog.ValidationError{
				Field: fmt.Sprintf("internships[%d].rating", i),
				Msg:   fmt.Sprintf("%g is outside %g–%g", it.Rating, catalog.RatingFloor, catalog.RatingCeiling),
			}
		}
	}
	return nil
}
