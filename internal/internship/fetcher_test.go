package internship_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"jobmate/review-service/internal/internship"
)

func adzunaResults(n, offset int) map[string]any {
	results := make([]map[string]any, n)
	for i := range results {
		id := offset + i
		results[i] = map[string]any{
			"id":            fmt.Sprint(id),
			"title":         fmt.Sprintf("Intern %d", id),
			"description":   "Join our team",
			"company":       map[string]string{"display_name": "Acme"},
			"location":      map[string]string{"display_name": "Paris"},
			"category":      map[string]string{"label": "IT Jobs"},
			"salary_min":    1000.0,
			"salary_max":    1400.0,
			"redirect_url":  fmt.Sprintf("https://adzuna.example/%d", id),
			"created":       "2025-03-01T10:00:00Z",
			"contract_time": "full_time",
			"contract_type": "contract",
		}
	}
	return map[string]any{"results": results, "count": n}
}

func TestAdzunaFetcher_PagesUntilShortPage(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "id", r.URL.Query().Get("app_id"))
		assert.Equal(t, "data intern", r.URL.Query().Get("what"))
		assert.Equal(t, "Lyon", r.URL.Query().Get("where"))
		switch r.URL.Path {
		case "/fr/search/1":
			_ = json.NewEncoder(w).Encode(adzunaResults(50, 0))
		case "/fr/search/2":
			_ = json.NewEncoder(w).Encode(adzunaResults(3, 50))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	f := internship.NewAdzunaFetcher("id", "key", "fr", zap.NewNop())
	f.BaseURL = srv.URL

	got, err := f.Fetch(context.Background(), "data intern", "Lyon")
	require.NoError(t, err)
	assert.Len(t, got, 53)
	assert.Equal(t, int32(2), calls.Load())

	first := got[0]
	assert.Equal(t, "adzuna-0", first.ID)
	assert.Equal(t, "Intern 0", first.Name)
	assert.Equal(t, "Acme", first.Company)
	assert.Equal(t, "Paris", first.Location)
	require.NotNil(t, first.Salary)
	assert.Equal(t, 1200.0, *first.Salary)
	assert.Equal(t, []string{"full_time", "IT Jobs"}, first.Tags)
	assert.Equal(t, time.Date(2025, 3, 31, 10, 0, 0, 0, time.UTC), first.ApplicationDeadline)
	assert.Equal(t, "https://adzuna.example/0", first.SourceURL)
}

func TestAdzunaFetcher_StopsAtMaxPages(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		_ = json.NewEncoder(w).Encode(adzunaResults(50, int(n)*100))
	}))
	defer srv.Close()

	f := internship.NewAdzunaFetcher("id", "key", "fr", zap.NewNop())
	f.BaseURL = srv.URL
	got, err := f.Fetch(context.Background(), "x", "y")
	require.NoError(t, err)
	assert.Len(t, got, 150)
	assert.Equal(t, int32(3), calls.Load())
}

func TestAdzunaFetcher_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	f := internship.NewAdzunaFetcher("id", "key", "fr", zap.NewNop())
	f.BaseURL = srv.URL
	_, err := f.Fetch(context.Background(), "x", "y")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "adzuna returned 429")
}

func TestAdzunaFetcher_NoCredentials(t *testing.T) {
	f := internship.NewAdzunaFetcher("", "", "fr", zap.NewNop())
	got, err := f.Fetch(context.Background(), "x", "y")
	assert.NoError(t, err)
	assert.Nil(t, got)
}
