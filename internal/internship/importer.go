package internship

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"jobmate/review-service/internal/events"
	"jobmate/review-service/internal/model"
)

// Fetcher retrieves offers for one (title × location) pair.
type Fetcher interface {
	Fetch(ctx context.Context, title, location string) ([]model.Internship, error)
}

// ImportConfig selects what the importer asks the job board for.
type ImportConfig struct {
	Titles    []string
	Locations []string
	RedFlags  []string // exclusion terms; any match discards the offer
}

// ImportStats totals one import cycle.
type ImportStats struct {
	Inserted   int `json:"inserted"`
	Filtered   int `json:"filtered"`
	Duplicates int `json:"duplicates"`
	Failed     int `json:"failedPairs"`
}

// Importer runs the full import cycle: fetch, red-flag filtering, dedup by
// source URL and upsert into the catalog.
type Importer struct {
	svc     *Service
	fetcher Fetcher
	pub     events.Publisher
	cfg     ImportConfig
	log     *zap.Logger
}

// NewImporter constructs an Importer.
func NewImporter(svc *Service, fetcher Fetcher, pub events.Publisher, cfg ImportConfig, log *zap.Logger) *Importer {
	return &Importer{svc: svc, fetcher: fetcher, pub: pub, cfg: cfg, log: log}
}

// Run executes one import cycle. A failing pair is logged and skipped; Run
// only returns an error when the context is cancelled.
func (im *Importer) Run(ctx context.Context) (ImportStats, error) {
	im.log.Info("starting import",
		zap.Strings("titles", im.cfg.Titles),
		zap.Strings("locations", im.cfg.Locations))

	var total ImportStats
	for _, title := range im.cfg.Titles {
		for _, location := range im.cfg.Locations {
			if err := ctx.Err(); err != nil {
				return total, err
			}
			st, err := im.importPair(ctx, title, location)
			if err != nil {
				im.log.Warn("import pair failed, continuing",
					zap.String("title", title), zap.String("location", location), zap.Error(err))
				total.Failed++
				continue
			}
			total.Inserted += st.Inserted
			total.Filtered += st.Filtered
			total.Duplicates += st.Duplicates
		}
	}

	im.log.Info("import done",
		zap.Int("inserted", total.Inserted),
		zap.Int("filtered", total.Filtered),
		zap.Int("duplicates", total.Duplicates),
		zap.Int("failedPairs", total.Failed))

	if total.Inserted > 0 {
		ev := events.Event{Type: events.InternshipsImported, Inserted: total.Inserted, Filtered: total.Filtered}
		if err := im.pub.Publish(ctx, ev); err != nil {
			im.log.Warn("publish event failed", zap.String("type", ev.Type), zap.Error(err))
		}
	}
	return total, nil
}

func (im *Importer) importPair(ctx context.Context, title, location string) (ImportStats, error) {
	var st ImportStats
	results, err := im.fetcher.Fetch(ctx, title, location)
	if err != nil {
		return st, fmt.Errorf("fetch: %w", err)
	}

	keep := make([]model.Internship, 0, len(results))
	for _, it := range results {
		if ContainsRedFlag(it, im.cfg.RedFlags) {
			st.Filtered++
			continue
		}
		keep = append(keep, it)
	}
	if len(keep) == 0 {
		return st, nil
	}

	st.Inserted, st.Duplicates, err = im.svc.Upsert(ctx, keep)
	if err != nil {
		return st, err
	}
	return st, nil
}
