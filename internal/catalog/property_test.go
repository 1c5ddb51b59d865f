package catalog_test

import (
	"fmt"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"jobmate/review-service/internal/catalog"
)

var propertyTags = []string{"remote", "mentorship", "paid", "onsite", "free-food"}

// buildRecords turns generated ratings and companies into records with unique
// ids. Tags are derived from the position so every run covers overlapping sets.
func buildRecords(ratings []int, companies []string) []rec {
	n := min(len(ratings), len(companies))
	out := make([]rec, n)
	for i := 0; i < n; i++ {
		r := rec{
			ID:      fmt.Sprintf("r%03d", i),
			Name:    fmt.Sprintf("%s intern %d", companies[i], i%7),
			Company: companies[i],
			Rating:  float64(ratings[i]),
			Tags: []string{
				propertyTags[i%len(propertyTags)],
				propertyTags[(i+ratings[i])%len(propertyTags)],
			},
			Date: day(1 + i%28),
		}
		if i%3 != 0 {
			r.Salary = salary(float64(10 * (i % 6)))
		}
		out[i] = r
	}
	return out
}

func companyGen() gopter.Gen {
	return gen.OneConstOf("Acme", "Globex", "Initech", "acme labs", "Umbrella")
}

func TestFilterSortProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("default criteria return the input unchanged", prop.ForAll(
		func(ratings []int, companies []string) bool {
			items := buildRecords(ratings, companies)
			got := catalog.Filter(items, catalog.DefaultCriteria(), recView)
			return cmp.Equal(ids(items), ids(got))
		},
		gen.SliceOf(gen.IntRange(0, 5)),
		gen.SliceOf(companyGen()),
	))

	properties.Property("every match appears exactly once and nothing else does", prop.ForAll(
		func(ratings []int, companies []string, minRating int, tag string, anyMode bool) bool {
			items := buildRecords(ratings, companies)
			c := catalog.DefaultCriteria()
			c.Rating.Min = float64(minRating)
			c.Tags = []string{tag}
			if anyMode {
				c.TagMode = catalog.TagsAny
			}
			got := catalog.Filter(items, c, recView)

			seen := map[string]int{}
			for _, r := range got {
				seen[r.ID]++
			}
			for _, r := range items {
				want := 0
				if catalog.Matches(recView(r), c) {
					want = 1
				}
				if seen[r.ID] != want {
					return false
				}
			}
			return len(got) == len(seen)
		},
		gen.SliceOf(gen.IntRange(0, 5)),
		gen.SliceOf(companyGen()),
		gen.IntRange(0, 5),
		gen.OneConstOf("remote", "mentorship", "paid", "onsite", "free-food"),
		gen.Bool(),
	))

	properties.Property("sorting twice gives the same order", prop.ForAll(
		func(ratings []int, companies []string, field string, desc bool) bool {
			items := buildRecords(ratings, companies)
			spec := catalog.SortSpec{Field: catalog.SortField(field), Direction: catalog.Asc}
			if desc {
				spec.Direction = catalog.Desc
			}
			once := catalog.Sort(items, spec, recView, nil)
			twice := catalog.Sort(once, spec, recView, nil)
			return cmp.Equal(ids(once), ids(twice))
		},
		gen.SliceOf(gen.IntRange(0, 5)),
		gen.SliceOf(companyGen()),
		gen.OneConstOf("rating", "date", "salary", "name"),
		gen.Bool(),
	))

	properties.Property("reversing direction reverses distinct keys", prop.ForAll(
		func(companies []string) bool {
			items := make([]rec, len(companies))
			for i, c := range companies {
				// Distinct ratings in a shuffled order.
				items[i] = rec{ID: fmt.Sprintf("r%03d", i), Company: c, Rating: float64((i * 7919) % 1000003)}
			}
			spec := catalog.SortSpec{Field: catalog.SortRating, Direction: catalog.Asc}
			asc := ids(catalog.Sort(items, spec, recView, nil))
			desc := ids(catalog.Sort(items, spec.Reverse(), recView, nil))
			slices.Reverse(desc)
			return cmp.Equal(asc, desc)
		},
		gen.SliceOf(companyGen()),
	))

	properties.Property("reset twice equals reset once", prop.ForAll(
		func(ratings []int, companies []string, query string, minRating int) bool {
			s, err := catalog.NewStore(buildRecords(ratings, companies), recView)
			if err != nil {
				return false
			}
			s.SetQuery(query)
			_ = s.SetRatingRange(float64(minRating), 5)
			s.ToggleTag("remote")
			s.Reset()
			once := s.Snapshot()
			s.Reset()
			twice := s.Snapshot()
			return cmp.Equal(once.Criteria, twice.Criteria) &&
				once.Sort == twice.Sort &&
				cmp.Equal(ids(once.Visible), ids(twice.Visible))
		},
		gen.SliceOf(gen.IntRange(0, 5)),
		gen.SliceOf(companyGen()),
		gen.AlphaString(),
		gen.IntRange(0, 5),
	))

	properties.TestingRun(t)
}
