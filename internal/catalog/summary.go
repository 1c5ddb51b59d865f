package catalog

import (
	"cmp"
	"math"
	"slices"
)

// Summary aggregates a collection for the overview page.
type Summary struct {
	Total         int      `json:"totalReviews"`
	AverageRating float64  `json:"averageRating"`
	TopCompanies  []string `json:"topCompanies"`
	PopularTags   []string `json:"popularTags"`
}

const (
	summaryCompanies = 5
	summaryTags      = 8
)

// Summarize computes the total, the average rating rounded to one decimal,
// and the most frequent companies and tags.
func Summarize[T any](items []T, view View[T]) Summary {
	companies := map[string]int{}
	tags := map[string]int{}
	sum := 0.0
	for _, it := range items {
		f := view(it)
		sum += f.Rating
		if f.Company != "" {
			companies[f.Company]++
		}
		for _, t := range f.Tags {
			if t != "" {
				tags[t]++
			}
		}
	}
	s := Summary{
		Total:        len(items),
		TopCompanies: topKeys(companies, summaryCompanies),
		PopularTags:  topKeys(tags, summaryTags),
	}
	if len(items) > 0 {
		s.AverageRating = math.Round(sum/float64(len(items))*10) / 10
	}
	return s
}

// topKeys returns up to limit keys by descending count, ties by key.
func topKeys(counts map[string]int, limit int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b string) int {
		if c := cmp.Compare(counts[b], counts[a]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	if len(keys) > limit {
		keys = keys[:limit]
	}
	return keys
}
