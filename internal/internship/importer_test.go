package internship_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"jobmate/review-service/internal/events"
	"jobmate/review-service/internal/internship"
	"jobmate/review-service/internal/model"
)

type fakeFetcher struct {
	byPair map[string][]model.Internship
	fail   map[string]bool
}

func (f fakeFetcher) Fetch(_ context.Context, title, location string) ([]model.Internship, error) {
	key := title + "|" + location
	if f.fail[key] {
		return nil, errors.New("upstream timeout")
	}
	return f.byPair[key], nil
}

type recordingPublisher struct{ events []events.Event }

func (p *recordingPublisher) Publish(_ context.Context, ev events.Event) error {
	p.events = append(p.events, ev)
	return nil
}

func offer(n int, desc string) model.Internship {
	return model.Internship{
		ID:          fmt.Sprintf("adzuna-%d", n),
		Name:        fmt.Sprintf("Intern %d", n),
		Company:     "Acme",
		Description: desc,
		SourceURL:   fmt.Sprintf("https://adzuna.example/%d", n),
	}
}

func TestImporter_Run(t *testing.T) {
	svc, _ := newService(t)
	fetcher := fakeFetcher{
		byPair: map[string][]model.Internship{
			"go|Paris": {offer(1, "great team"), offer(2, "unpaid position")},
			"go|Lyon":  {offer(3, "remote friendly"), offer(1, "great team")},
		},
		fail: map[string]bool{"rust|Paris": true},
	}
	pub := &recordingPublisher{}
	im := internship.NewImporter(svc, fetcher, pub, internship.ImportConfig{
		Titles:    []string{"go", "rust"},
		Locations: []string{"Paris", "Lyon"},
		RedFlags:  []string{"Unpaid"},
	}, zap.NewNop())

	st, err := im.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, internship.ImportStats{Inserted: 2, Filtered: 1, Duplicates: 1, Failed: 1}, st)
	assert.Equal(t, 5, svc.Store().Len())

	require.Len(t, pub.events, 1)
	assert.Equal(t, events.InternshipsImported, pub.events[0].Type)
	assert.Equal(t, 2, pub.events[0].Inserted)

	// A second run finds nothing new and publishes nothing.
	st, err = im.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, st.Inserted)
	assert.Len(t, pub.events, 1)
}

func TestImporter_RunCancelled(t *testing.T) {
	svc, _ := newService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	im := internship.NewImporter(svc, fakeFetcher{}, events.Nop{}, internship.ImportConfig{
		Titles:    []string{"go"},
		Locations: []string{"Paris"},
	}, zap.NewNop())
	_, err := im.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
