package main

import (
	"fmt"

	"jobmate/review-service/internal/catalog"
	"jobmate/review-service/internal/config"
	"jobmate/review-service/internal/model"
	"jobmate/review-service/internal/seed"
)

// storeOptions turns the catalog settings of cfg into store options.
func storeOptions(cfg *config.Config) ([]catalog.Option, error) {
	comparer, err := catalog.NewComparerFor(cfg.CollationLocale)
	if err != nil {
		return nil, err
	}
	defaults := catalog.DefaultCriteria()
	defaults.TagMode = cfg.TagMode
	defaults.SalaryMissing = cfg.SalaryMissing
	return []catalog.Option{catalog.WithComparer(comparer), catalog.WithDefaults(defaults)}, nil
}

// initialData reads the seed file when one is configured, otherwise it
// generates SeedCount records of each kind.
func initialData(cfg *config.Config) (seed.Data, error) {
	if cfg.SeedFile != "" {
		return seed.LoadFile(cfg.SeedFile)
	}
	return seed.Generate(cfg.SeedCount, cfg.SeedRandom), nil
}

func newStores(cfg *config.Config, d seed.Data) (*catalog.Store[model.Review], *catalog.Store[model.Internship], error) {
	opts, err := storeOptions(cfg)
	if err != nil {
		return nil, nil, err
	}
	reviews, err := catalog.NewStore(d.Reviews, model.ReviewFields, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("review store: %w", err)
	}
	internships, err := catalog.NewStore(d.Internships, model.InternshipFields, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("internship store: %w", err)
	}
	return reviews, internships, nil
}
