package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"jobmate/review-service/internal/catalog"
	"jobmate/review-service/internal/grpcserver"
	"jobmate/review-service/internal/model"
	"jobmate/review-service/internal/seed"
)

type searchFlags struct {
	kind      string
	file      string
	addr      string
	count     int
	random    int64
	locale    string
	query     string
	company   string
	location  string
	tags      []string
	tagMode   string
	statuses  []string
	minRating float64
	maxRating float64
	minSalary float64
	maxSalary float64
	missing   string
	sort      string
	order     string
	page      int
	pageSize  int
}

func newSearchCmd() *cobra.Command {
	f := &searchFlags{}
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Run one filter and sort and print the page as JSON",
		Long: "Searches a seed file, generated data, or a running service (--addr) " +
			"with the same criteria the HTTP API accepts, and prints the resulting page.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := f.request(cmd)
			if err != nil {
				return err
			}
			var page any
			if f.addr != "" {
				page, err = f.remote(cmd.Context(), req)
			} else {
				page, err = f.local(req)
			}
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(page)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&f.kind, "kind", "internships", "Collection to search: internships or reviews")
	fl.StringVarP(&f.file, "file", "f", "", "YAML seed file to search")
	fl.StringVar(&f.addr, "addr", "", "gRPC address of a running service, e.g. localhost:9093")
	fl.IntVarP(&f.count, "count", "n", 24, "Records to generate when neither --file nor --addr is set")
	fl.Int64Var(&f.random, "random", 42, "Random seed for generated records")
	fl.StringVar(&f.locale, "locale", "en", "Collation locale for name sorting")
	fl.StringVarP(&f.query, "query", "q", "", "Free-text query")
	fl.StringVar(&f.company, "company", "", "Company substring")
	fl.StringVar(&f.location, "location", "", "Location substring")
	fl.StringSliceVar(&f.tags, "tags", nil, "Required tags")
	fl.StringVar(&f.tagMode, "tag-mode", "", "Tag matching: all or any")
	fl.StringSliceVar(&f.statuses, "status", nil, "Review statuses")
	fl.Float64Var(&f.minRating, "min-rating", catalog.RatingFloor, "Minimum rating")
	fl.Float64Var(&f.maxRating, "max-rating", catalog.RatingCeiling, "Maximum rating")
	fl.Float64Var(&f.minSalary, "min-salary", 0, "Minimum salary")
	fl.Float64Var(&f.maxSalary, "max-salary", math.MaxFloat64, "Maximum salary")
	fl.StringVar(&f.missing, "salary-missing", "", "Missing salary policy: zero-min, always or never")
	fl.StringVar(&f.sort, "sort", "", "Sort field: rating, date, salary, name or comments")
	fl.StringVar(&f.order, "order", "", "Sort direction: asc or desc")
	fl.IntVar(&f.page, "page", 1, "Page number")
	fl.IntVar(&f.pageSize, "page-size", catalog.DefaultPageSize, "Page size")
	return cmd
}

func (f *searchFlags) request(cmd *cobra.Command) (grpcserver.SearchRequest, error) {
	if f.kind != "internships" && f.kind != "reviews" {
		return grpcserver.SearchRequest{}, fmt.Errorf("--kind must be internships or reviews, got %q", f.kind)
	}
	c := catalog.DefaultCriteria()
	c.Query = f.query
	c.Company = f.company
	c.Location = f.location
	if f.tags != nil {
		c.Tags = f.tags
	}
	c.Statuses = f.statuses
	c.Rating = catalog.Range{Min: f.minRating, Max: f.maxRating}

	var err error
	if f.tagMode != "" {
		if c.TagMode, err = catalog.ParseTagMode(f.tagMode); err != nil {
			return grpcserver.SearchRequest{}, err
		}
	}
	if f.missing != "" {
		if c.SalaryMissing, err = catalog.ParseMissingPolicy(f.missing); err != nil {
			return grpcserver.SearchRequest{}, err
		}
	}
	if cmd.Flags().Changed("min-salary") || cmd.Flags().Changed("max-salary") {
		c.Salary = &catalog.Range{Min: f.minSalary, Max: f.maxSalary}
	}
	if err := c.Validate(); err != nil {
		return grpcserver.SearchRequest{}, err
	}

	req := grpcserver.SearchRequest{Criteria: &c, Page: f.page, PageSize: f.pageSize}
	if f.sort != "" || f.order != "" {
		spec := catalog.DefaultSort()
		if f.sort != "" {
			if spec.Field, err = catalog.ParseSortField(f.sort); err != nil {
				return req, err
			}
			spec.Direction = catalog.Asc
		}
		if f.order != "" {
			if spec.Direction, err = catalog.ParseDirection(f.order); err != nil {
				return req, err
			}
		}
		req.Sort = &spec
	}
	return req, nil
}

func (f *searchFlags) local(req grpcserver.SearchRequest) (any, error) {
	d := seed.Generate(f.count, f.random)
	if f.file != "" {
		var err error
		if d, err = seed.LoadFile(f.file); err != nil {
			return nil, err
		}
	}
	comparer, err := catalog.NewComparerFor(f.locale)
	if err != nil {
		return nil, err
	}
	spec := catalog.DefaultSort()
	if req.Sort != nil {
		spec = *req.Sort
	}
	if f.kind == "reviews" {
		return searchStore(d.Reviews, model.ReviewFields, comparer, *req.Criteria, spec, req)
	}
	return searchStore(d.Internships, model.InternshipFields, comparer, *req.Criteria, spec, req)
}

func searchStore[T any](items []T, view catalog.View[T], comparer *catalog.Comparer, c catalog.Criteria, spec catalog.SortSpec, req grpcserver.SearchRequest) (catalog.Page[T], error) {
	store, err := catalog.NewStore(items, view, catalog.WithComparer(comparer))
	if err != nil {
		return catalog.Page[T]{}, err
	}
	found, err := store.Search(c, spec)
	if err != nil {
		return catalog.Page[T]{}, err
	}
	return catalog.Paginate(found, req.Page, req.PageSize), nil
}

func (f *searchFlags) remote(ctx context.Context, req grpcserver.SearchRequest) (any, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	conn, err := grpc.NewClient(f.addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", f.addr, err)
	}
	defer conn.Close()

	client := grpcserver.NewClient(conn)
	if f.kind == "reviews" {
		return client.ListReviews(ctx, req)
	}
	return client.SearchInternships(ctx, req)
}
