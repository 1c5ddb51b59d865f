package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"jobmate/review-service/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS reviews (
	id              TEXT PRIMARY KEY,
	company_name    TEXT        NOT NULL,
	internship_name TEXT        NOT NULL,
	period          TEXT        NOT NULL,
	rating          SMALLINT    NOT NULL CHECK (rating BETWEEN 1 AND 5),
	good_points     TEXT        NOT NULL,
	concerns        TEXT        NOT NULL,
	tags            JSONB       NOT NULL DEFAULT '[]',
	recommended     BOOLEAN     NOT NULL DEFAULT false,
	status          TEXT        NOT NULL,
	author          TEXT        NOT NULL DEFAULT '',
	comments        INTEGER     NOT NULL DEFAULT 0,
	created_at      TIMESTAMPTZ NOT NULL,
	updated_at      TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS internships (
	id         TEXT PRIMARY KEY,
	source_url TEXT,
	raw_data   JSONB       NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS internships_source_url_idx
	ON internships (source_url) WHERE source_url IS NOT NULL;
`

// Repository stores reviews in typed columns and internships as JSONB
// documents keyed by id.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository returns a Repository on pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Migrate creates the tables when they do not exist.
func (r *Repository) Migrate(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// ─── Reviews ─────────────────────────────────────────────────────────────────

// LoadReviews returns every stored review, oldest first.
func (r *Repository) LoadReviews(ctx context.Context) ([]model.Review, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, company_name, internship_name, period, rating, good_points,
		        concerns, tags, recommended, status, author, comments,
		        created_at, updated_at
		 FROM reviews
		 ORDER BY created_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("loadReviews query: %w", err)
	}
	defer rows.Close()

	reviews := make([]model.Review, 0)
	for rows.Next() {
		var (
			rv   model.Review
			tags []byte
		)
		if err := rows.Scan(
			&rv.ID, &rv.CompanyName, &rv.InternshipName, &rv.Period, &rv.Rating,
			&rv.GoodPoints, &rv.Concerns, &tags, &rv.Recommended, &rv.Status,
			&rv.Author, &rv.Comments, &rv.CreatedAt, &rv.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("loadReviews scan: %w", err)
		}
		if err := json.Unmarshal(tags, &rv.Tags); err != nil {
			return nil, fmt.Errorf("loadReviews tags %s: %w", rv.ID, err)
		}
		reviews = append(reviews, rv)
	}
	return reviews, rows.Err()
}

// SaveReview inserts or replaces a review.
func (r *Repository) SaveReview(ctx context.Context, rv model.Review) error {
	tags, err := json.Marshal(nonNil(rv.Tags))
	if err != nil {
		return fmt.Errorf("saveReview tags: %w", err)
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO reviews (id, company_name, internship_name, period, rating,
		                      good_points, concerns, tags, recommended, status,
		                      author, comments, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb, $9, $10, $11, $12, $13, $14)
		 ON CONFLICT (id) DO UPDATE SET
		   company_name    = EXCLUDED.company_name,
		   internship_name = EXCLUDED.internship_name,
		   period          = EXCLUDED.period,
		   rating          = EXCLUDED.rating,
		   good_points     = EXCLUDED.good_points,
		   concerns        = EXCLUDED.concerns,
		   tags            = EXCLUDED.tags,
		   recommended     = EXCLUDED.recommended,
		   status          = EXCLUDED.status,
		   author          = EXCLUDED.author,
		   comments        = EXCLUDED.comments,
		   updated_at      = EXCLUDED.updated_at`,
		rv.ID, rv.CompanyName, rv.InternshipName, rv.Period, rv.Rating,
		rv.GoodPoints, rv.Concerns, string(tags), rv.Recommended, rv.Status,
		rv.Author, rv.Comments, rv.CreatedAt, rv.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("saveReview: %w", err)
	}
	return nil
}

// DeleteReviews removes every listed id. Unknown ids are ignored.
func (r *Repository) DeleteReviews(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := r.pool.Exec(ctx, `DELETE FROM reviews WHERE id = ANY($1)`, ids); err != nil {
		return fmt.Errorf("deleteReviews: %w", err)
	}
	return nil
}

// ─── Internships ─────────────────────────────────────────────────────────────

// LoadInternships returns every stored internship.
func (r *Repository) LoadInternships(ctx context.Context) ([]model.Internship, error) {
	rows, err := r.pool.Query(ctx, `SELECT raw_data FROM internships ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("loadInternships query: %w", err)
	}
	defer rows.Close()

	items := make([]model.Internship, 0)
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("loadInternships scan: %w", err)
		}
		var it model.Internship
		if err := json.Unmarshal(raw, &it); err != nil {
			return nil, fmt.Errorf("loadInternships decode: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// SaveInternships upserts items in a single batch.
func (r *Repository) SaveInternships(ctx context.Context, items []model.Internship) error {
	if len(items) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, it := range items {
		raw, err := json.Marshal(it)
		if err != nil {
			return fmt.Errorf("saveInternships encode %s: %w", it.ID, err)
		}
		var sourceURL *string
		if it.SourceURL != "" {
			sourceURL = &it.SourceURL
		}
		batch.Queue(
			`INSERT INTO internships (id, source_url, raw_data, updated_at)
			 VALUES ($1, $2, $3::jsonb, NOW())
			 ON CONFLICT (id) DO UPDATE SET
			   source_url = EXCLUDED.source_url,
			   raw_data   = EXCLUDED.raw_data,
			   updated_at = NOW()`,
			it.ID, sourceURL, string(raw),
		)
	}
	if err := r.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("saveInternships: %w", err)
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
