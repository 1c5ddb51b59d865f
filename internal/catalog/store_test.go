package catalog_test

import (
	"errors"
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobmate/review-service/internal/catalog"
)

func newStore(t *testing.T, opts ...catalog.Option) *catalog.Store[rec] {
	t.Helper()
	s, err := catalog.NewStore(fixture(), recView, opts...)
	require.NoError(t, err)
	return s
}

func TestNewStore_RejectsDuplicateIDs(t *testing.T) {
	items := append(fixture(), rec{ID: "1"})
	_, err := catalog.NewStore(items, recView)
	assert.ErrorIs(t, err, catalog.ErrDuplicateID)
}

func TestStore_InitialVisibleUsesDefaultSort(t *testing.T) {
	s := newStore(t)
	assert.Equal(t, []string{"3", "1", "2", "4"}, ids(s.Visible()))
	assert.Equal(t, catalog.DefaultSort(), s.SortSpec())
}

func TestStore_MutatorsRecomputeImmediately(t *testing.T) {
	s := newStore(t)

	s.SetQuery("intern")
	assert.Len(t, s.Visible(), 4)

	require.NoError(t, s.SetRatingRange(3, 5))
	assert.Equal(t, []string{"3", "1", "2"}, ids(s.Visible()))

	s.ToggleTag("mentorship")
	assert.Equal(t, []string{"1"}, ids(s.Visible()))

	s.ToggleTag("MENTORSHIP")
	assert.Empty(t, s.Criteria().Tags)
	assert.Equal(t, []string{"3", "1", "2"}, ids(s.Visible()))

	s.SetCompany("acme")
	assert.Equal(t, []string{"1"}, ids(s.Visible()))

	s.SetCompany("")
	s.SetLocation("osaka")
	assert.Equal(t, []string{"2"}, ids(s.Visible()))

	s.SetLocation("")
	require.NoError(t, s.SetSalaryRange(20, 50))
	assert.Equal(t, []string{"3", "1"}, ids(s.Visible()))

	s.ClearSalaryRange()
	require.NoError(t, s.SetSort(catalog.SortSpec{Field: catalog.SortName, Direction: catalog.Asc}))
	assert.Equal(t, []string{"1", "3", "2"}, ids(s.Visible()))
}

func TestStore_InvalidRangeLeavesStateUntouched(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.SetRatingRange(2, 4))
	before := s.Snapshot()

	err := s.SetRatingRange(5, 1)
	var ve *catalog.ValidationError
	require.ErrorAs(t, err, &ve)

	after := s.Snapshot()
	assert.Equal(t, before.Version, after.Version)
	assert.Equal(t, catalog.Range{Min: 2, Max: 4}, after.Criteria.Rating)

	assert.Error(t, s.SetSalaryRange(-1, 10))
	assert.Nil(t, s.Criteria().Salary)
}

func TestStore_ResetIsIdempotent(t *testing.T) {
	s := newStore(t)
	s.SetQuery("data")
	s.ToggleTag("paid")
	require.NoError(t, s.SetSortField(catalog.SortName))

	s.Reset()
	once := s.Snapshot()
	s.Reset()
	twice := s.Snapshot()

	assert.Equal(t, once.Criteria, twice.Criteria)
	assert.Equal(t, once.Sort, twice.Sort)
	assert.Equal(t, ids(once.Visible), ids(twice.Visible))
	assert.True(t, twice.Criteria.IsDefault())
	assert.Equal(t, catalog.DefaultSort(), twice.Sort)
}

func TestStore_ResetRestoresConfiguredDefaults(t *testing.T) {
	defaults := catalog.DefaultCriteria()
	defaults.TagMode = catalog.TagsAny
	s := newStore(t,
		catalog.WithDefaults(defaults),
		catalog.WithDefaultSort(catalog.SortSpec{Field: catalog.SortDate, Direction: catalog.Asc}),
	)
	require.NoError(t, s.SetTagMode(catalog.TagsAll))
	s.Reset()
	assert.Equal(t, catalog.TagsAny, s.Criteria().TagMode)
	assert.Equal(t, catalog.SortDate, s.SortSpec().Field)
}

func TestStore_SetSortFieldToggles(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.SetSortField(catalog.SortName))
	assert.Equal(t, catalog.Asc, s.SortSpec().Direction)
	require.NoError(t, s.SetSortField(catalog.SortName))
	assert.Equal(t, catalog.Desc, s.SortSpec().Direction)
	require.NoError(t, s.SetSortField(catalog.SortRating))
	assert.Equal(t, catalog.SortSpec{Field: catalog.SortRating, Direction: catalog.Asc}, s.SortSpec())

	s.ToggleSortDirection()
	assert.Equal(t, catalog.Desc, s.SortSpec().Direction)

	assert.Error(t, s.SetSortField("colour"))
}

func TestStore_AddUpdateDelete(t *testing.T) {
	s := newStore(t)

	require.NoError(t, s.Add(rec{ID: "5", Name: "Design Intern", Rating: 5}))
	assert.Equal(t, 5, s.Len())
	assert.Contains(t, ids(s.Visible()), "5")

	err := s.Add(rec{ID: "5"})
	assert.True(t, errors.Is(err, catalog.ErrDuplicateID))

	require.NoError(t, s.Update(rec{ID: "5", Name: "Design Intern", Rating: 1}))
	got, ok := s.Get("5")
	require.True(t, ok)
	assert.Equal(t, 1.0, got.Rating)
	assert.Equal(t, "5", ids(s.Visible())[4])

	assert.ErrorIs(t, s.Update(rec{ID: "missing"}), catalog.ErrNotFound)

	require.NoError(t, s.Delete("5"))
	_, ok = s.Get("5")
	assert.False(t, ok)
	assert.ErrorIs(t, s.Delete("5"), catalog.ErrNotFound)

	assert.Equal(t, 2, s.DeleteMany([]string{"1", "2", "nope"}))
	assert.Equal(t, []string{"3", "4"}, ids(s.Visible()))

	// An id freed by deletion can be used again.
	require.NoError(t, s.Add(rec{ID: "1", Rating: 3}))
}

func TestStore_Upsert(t *testing.T) {
	s := newStore(t)
	assert.False(t, s.Upsert(rec{ID: "1", Name: "Renamed", Rating: 1}))
	assert.True(t, s.Upsert(rec{ID: "9", Rating: 2}))
	r, _ := s.Get("1")
	assert.Equal(t, "Renamed", r.Name)
	assert.Equal(t, 5, s.Len())
}

func TestStore_ReplaceKeepsCriteria(t *testing.T) {
	s := newStore(t)
	s.SetQuery("intern")
	require.NoError(t, s.Replace([]rec{{ID: "x", Name: "Intern X", Rating: 1}, {ID: "y", Name: "Other"}}))
	assert.Equal(t, []string{"x"}, ids(s.Visible()))
	assert.Equal(t, "intern", s.Criteria().Query)

	assert.ErrorIs(t, s.Replace([]rec{{ID: "z"}, {ID: "z"}}), catalog.ErrDuplicateID)
	assert.Equal(t, 2, s.Len())
}

func TestStore_PagingResetsOnCriteriaChange(t *testing.T) {
	s := newStore(t, catalog.WithPageSize(3))
	s.SetPage(2)
	p := s.Page()
	assert.Equal(t, 2, p.Page)
	assert.Equal(t, []string{"4"}, ids(p.Items))
	assert.Equal(t, 2, p.TotalPages)

	s.SetQuery("intern")
	assert.Equal(t, 1, s.Page().Page)

	assert.Error(t, s.SetPageSize(0))
	require.NoError(t, s.SetPageSize(10))
	assert.Len(t, s.Page().Items, 4)
}

func TestPaginate(t *testing.T) {
	p := catalog.Paginate(fixture(), 3, 2)
	assert.Empty(t, p.Items)
	assert.Equal(t, 4, p.Total)
	assert.Equal(t, 2, p.TotalPages)

	p = catalog.Paginate(fixture(), 0, 0)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, catalog.DefaultPageSize, p.PageSize)
	assert.Len(t, p.Items, 4)
}

func TestPaginate_HugePageIsEmpty(t *testing.T) {
	const huge = 140000000000000001
	var p catalog.Page[rec]
	require.NotPanics(t, func() { p = catalog.Paginate(fixture(), huge, 100) })
	assert.Empty(t, p.Items)
	assert.Equal(t, huge, p.Page)
	assert.Equal(t, 4, p.Total)
	assert.Equal(t, 1, p.TotalPages)

	maxInt := int(^uint(0) >> 1)
	require.NotPanics(t, func() { p = catalog.Paginate(fixture(), 2, maxInt) })
	assert.Empty(t, p.Items)
	assert.Equal(t, 1, p.TotalPages)
}

func TestStore_HugePageKeepsViewReadable(t *testing.T) {
	s := newStore(t)
	s.SetPage(140000000000000001)

	require.NotPanics(t, func() { _ = s.View() })
	assert.Empty(t, s.Page().Items)

	s.SetPage(1)
	assert.Equal(t, []string{"3", "1", "2", "4"}, ids(s.Page().Items))
}

func TestStore_SubscribersSeeEverySnapshotInOrder(t *testing.T) {
	s := newStore(t)

	var (
		mu       sync.Mutex
		versions []uint64
	)
	unsubscribe := s.Subscribe(func(snap catalog.Snapshot[rec]) {
		mu.Lock()
		versions = append(versions, snap.Version)
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				s.ToggleTag("remote")
			} else {
				s.SetQuery("intern")
			}
		}(i)
	}
	wg.Wait()

	mu.Lock()
	require.Len(t, versions, 50)
	for i := 1; i < len(versions); i++ {
		assert.Equal(t, versions[i-1]+1, versions[i])
	}
	mu.Unlock()

	unsubscribe()
	unsubscribe()
	s.SetQuery("x")
	mu.Lock()
	assert.Len(t, versions, 50)
	mu.Unlock()
}

func TestStore_UpdateFunc(t *testing.T) {
	s := newStore(t)

	got, err := s.UpdateFunc("2", func(r rec) (rec, error) {
		r.Rating = 1
		return r, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1.0, got.Rating)
	assert.Equal(t, []string{"3", "1", "4", "2"}, ids(s.Visible()))

	errStale := errors.New("stale")
	_, err = s.UpdateFunc("1", func(r rec) (rec, error) { return rec{}, errStale })
	assert.ErrorIs(t, err, errStale)
	r, _ := s.Get("1")
	assert.Equal(t, 4.0, r.Rating)

	_, err = s.UpdateFunc("1", func(r rec) (rec, error) {
		r.ID = "9"
		return r, nil
	})
	var verr *catalog.ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = s.UpdateFunc("missing", func(r rec) (rec, error) { return r, nil })
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestStore_UpdateFuncSerializesReadModifyWrite(t *testing.T) {
	s := newStore(t)
	var wg sync.WaitGroup
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.UpdateFunc("1", func(r rec) (rec, error) {
				r.Tags = append(slices.Clone(r.Tags), "x")
				return r, nil
			})
		}()
	}
	wg.Wait()
	r, _ := s.Get("1")
	assert.Len(t, r.Tags, 102)
}

func TestStore_SetViewPublishesOneSnapshot(t *testing.T) {
	s := newStore(t)
	var snaps []catalog.Snapshot[rec]
	s.Subscribe(func(snap catalog.Snapshot[rec]) { snaps = append(snaps, snap) })

	c := catalog.DefaultCriteria()
	c.Location = "tokyo"
	spec := catalog.SortSpec{Field: catalog.SortRating, Direction: catalog.Asc}
	require.NoError(t, s.SetView(c, spec))

	require.Len(t, snaps, 1)
	assert.Equal(t, "tokyo", snaps[0].Criteria.Location)
	assert.Equal(t, spec, snaps[0].Sort)
	assert.Equal(t, []string{"4", "1"}, ids(snaps[0].Visible))

	bad := catalog.SortSpec{Field: "colour", Direction: catalog.Asc}
	assert.Error(t, s.SetView(catalog.DefaultCriteria(), bad))
	assert.Len(t, snaps, 1)
	assert.Equal(t, "tokyo", s.Criteria().Location, "criteria are kept when the sort is invalid")
}

func TestStore_SnapshotMatchesCriteria(t *testing.T) {
	s := newStore(t)
	var last catalog.Snapshot[rec]
	s.Subscribe(func(snap catalog.Snapshot[rec]) { last = snap })

	s.ToggleTag("remote")
	assert.Equal(t, []string{"remote"}, last.Criteria.Tags)
	assert.Equal(t, []string{"3", "1"}, ids(last.Visible))
	assert.Equal(t, 1, last.Active)
	assert.Equal(t, 4, last.Total)
}

func TestStore_SearchLeavesViewAlone(t *testing.T) {
	s := newStore(t)
	c := catalog.DefaultCriteria()
	c.Query = "acme"
	got, err := s.Search(c, catalog.SortSpec{Field: catalog.SortRating, Direction: catalog.Asc})
	require.NoError(t, err)
	assert.Equal(t, []string{"4", "1"}, ids(got))
	assert.True(t, s.Criteria().IsDefault())

	_, err = s.Search(c, catalog.SortSpec{Field: "colour", Direction: catalog.Asc})
	assert.Error(t, err)
}

func TestStore_ViewAndDefaults(t *testing.T) {
	defaults := catalog.DefaultCriteria()
	defaults.TagMode = catalog.TagsAny
	s := newStore(t, catalog.WithDefaults(defaults), catalog.WithPageSize(2))

	s.SetQuery("intern")
	v := s.View()
	assert.Equal(t, "intern", v.Criteria.Query)
	assert.Equal(t, 1, v.Active)
	assert.Equal(t, 2, v.Page.TotalPages)
	assert.Len(t, v.Page.Items, 2)
	assert.Equal(t, s.Snapshot().Version, v.Version)

	c, spec := s.Defaults()
	assert.Equal(t, catalog.TagsAny, c.TagMode)
	assert.Empty(t, c.Query)
	assert.Equal(t, catalog.DefaultSort(), spec)
}
