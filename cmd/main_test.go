package main

import (
	"bytes"
	"encoding/json"
	"net"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"jobmate/review-service/internal/catalog"
	"jobmate/review-service/internal/db"
	"jobmate/review-service/internal/events"
	"jobmate/review-service/internal/grpcserver"
	"jobmate/review-service/internal/internship"
	"jobmate/review-service/internal/model"
	"jobmate/review-service/internal/review"
	"jobmate/review-service/internal/seed"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestSeedCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	out, err := execute(t, "seed", "--out", path, "--count", "5", "--random", "7")
	require.NoError(t, err)
	assert.Contains(t, out, "wrote 5 reviews and 5 internships")

	d, err := seed.LoadFile(path)
	require.NoError(t, err)
	if diff := cmp.Diff(seed.Generate(5, 7), d); diff != "" {
		t.Errorf("seed file mismatch (-want +got):\n%s", diff)
	}

	_, err = execute(t, "seed", "--out", path, "--count", "-1")
	assert.Error(t, err)
}

func TestSearchCommand_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, seed.WriteFile(path, seed.Generate(30, 1)))

	out, err := execute(t, "search", "--file", path, "--min-rating", "4", "--sort", "rating", "--order", "desc", "--page-size", "50")
	require.NoError(t, err)

	var page catalog.Page[model.Internship]
	require.NoError(t, json.Unmarshal([]byte(out), &page))
	require.NotEmpty(t, page.Items)
	for i, it := range page.Items {
		assert.GreaterOrEqual(t, it.Rating, 4.0)
		if i > 0 {
			assert.LessOrEqual(t, it.Rating, page.Items[i-1].Rating)
		}
	}
}

func TestSearchCommand_Reviews(t *testing.T) {
	out, err := execute(t, "search", "--kind", "reviews", "--status", "DRAFT", "--count", "21")
	require.NoError(t, err)

	var page catalog.Page[model.Review]
	require.NoError(t, json.Unmarshal([]byte(out), &page))
	require.NotEmpty(t, page.Items)
	for _, r := range page.Items {
		assert.Equal(t, "DRAFT", r.Status)
	}
}

func TestSearchCommand_BadFlags(t *testing.T) {
	for _, args := range [][]string{
		{"search", "--kind", "companies"},
		{"search", "--min-rating", "5", "--max-rating", "1"},
		{"search", "--sort", "colour"},
		{"search", "--tag-mode", "some"},
		{"search", "--file", filepath.Join(t.TempDir(), "missing.yaml")},
	} {
		_, err := execute(t, args...)
		assert.Error(t, err, args)
	}
}

func TestSearchCommand_Remote(t *testing.T) {
	log := zap.NewNop()
	d := seed.Generate(10, 3)
	rs, err := catalog.NewStore(d.Reviews, model.ReviewFields)
	require.NoError(t, err)
	is, err := catalog.NewStore(d.Internships, model.InternshipFields)
	require.NoError(t, err)

	gs := grpcserver.New(grpcserver.NewServer(
		review.NewService(rs, db.Nop{}, events.Nop{}, log),
		internship.NewService(is, db.Nop{}, log),
	), log)
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = gs.Serve(lis) }()
	defer gs.Stop()

	out, err := execute(t, "search", "--addr", lis.Addr().String(), "--page-size", "3")
	require.NoError(t, err)

	var page catalog.Page[model.Internship]
	require.NoError(t, json.Unmarshal([]byte(out), &page))
	assert.Len(t, page.Items, 3)
	assert.Equal(t, 10, page.Total)
}
