package internship

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"jobmate/review-service/internal/model"
)

const (
	adzunaBaseURL  = "https://api.adzuna.com/v1/api/jobs"
	adzunaPageSize = 50
	adzunaMaxPages = 3 // max 150 results per (title × location) pair
	httpTimeout    = 15 * time.Second
	maxErrorBody   = 512

	// Adzuna listings carry no closing date; offers are assumed open for
	// this long after publication.
	assumedOpenFor = 30 * 24 * time.Hour
)

// AdzunaFetcher fetches internship offers from the Adzuna public API.
// If AppID or AppKey is empty, Fetch returns (nil, nil) and the importer
// skips that round.
type AdzunaFetcher struct {
	AppID   string
	AppKey  string
	Country string // ISO 3166 code as used in Adzuna URLs
	BaseURL string
	client  *http.Client
	log     *zap.Logger
}

// NewAdzunaFetcher returns a fetcher for the given credentials and country.
func NewAdzunaFetcher(appID, appKey, country string, log *zap.Logger) *AdzunaFetcher {
	return &AdzunaFetcher{
		AppID:   appID,
		AppKey:  appKey,
		Country: country,
		BaseURL: adzunaBaseURL,
		client:  &http.Client{Timeout: httpTimeout},
		log:     log,
	}
}

type adzunaResponse struct {
	Results []adzunaResult `json:"results"`
}

// adzunaResult is one listing as returned by /jobs/{country}/search.
type adzunaResult struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	Company      adzunaName     `json:"company"`
	Location     adzunaName     `json:"location"`
	Category     adzunaCategory `json:"category"`
	SalaryMin    float64        `json:"salary_min"`
	SalaryMax    float64        `json:"salary_max"`
	RedirectURL  string         `json:"redirect_url"`
	Created      string         `json:"created"`
	ContractTime string         `json:"contract_time"`
	ContractType string         `json:"contract_type"`
}

type adzunaName struct {
	DisplayName string `json:"display_name"`
}

type adzunaCategory struct {
	Label string `json:"label"`
}

// Fetch pages through the offers matching title in location. It stops at
// the first short page or after adzunaMaxPages; offers gathered before a
// failing page are returned along with the error.
func (f *AdzunaFetcher) Fetch(ctx context.Context, title, location string) ([]model.Internship, error) {
	if f.AppID == "" || f.AppKey == "" {
		f.log.Warn("ADZUNA_APP_ID / ADZUNA_APP_KEY not set, skipping fetch")
		return nil, nil
	}

	var offers []model.Internship
	for page := 1; page <= adzunaMaxPages; page++ {
		listings, err := f.fetchPage(ctx, f.searchURL(title, location, page))
		if err != nil {
			return offers, fmt.Errorf("adzuna %q in %q, page %d: %w", title, location, page, err)
		}
		for _, l := range listings {
			offers = append(offers, l.toInternship())
		}
		if len(listings) < adzunaPageSize {
			break
		}
	}
	f.log.Debug("adzuna fetch done",
		zap.String("title", title),
		zap.String("location", location),
		zap.Int("offers", len(offers)))
	return offers, nil
}

func (f *AdzunaFetcher) searchURL(title, location string, page int) string {
	q := url.Values{
		"app_id":           {f.AppID},
		"app_key":          {f.AppKey},
		"results_per_page": {strconv.Itoa(adzunaPageSize)},
		"what":             {title},
		"where":            {location},
		"sort_by":          {"date"},
	}
	return fmt.Sprintf("%s/%s/search/%d?%s", strings.TrimRight(f.BaseURL, "/"), f.Country, page, q.Encode())
}

func (f *AdzunaFetcher) fetchPage(ctx context.Context, endpoint string) ([]adzunaResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("adzuna returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var body adzunaResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode adzuna response: %w", err)
	}
	return body.Results, nil
}

func (r adzunaResult) toInternship() model.Internship {
	i := model.Internship{
		ID:           "adzuna-" + r.ID,
		Name:         r.Title,
		Company:      r.Company.DisplayName,
		Location:     r.Location.DisplayName,
		Description:  r.Description,
		ContractType: r.ContractType,
		SourceURL:    r.RedirectURL,
		Tags:         []string{},
	}
	if i.SourceURL == "" {
		i.SourceURL = "adzuna:" + r.ID
	}
	switch {
	case r.SalaryMin > 0 && r.SalaryMax > 0:
		avg := (r.SalaryMin + r.SalaryMax) / 2
		i.Salary = &avg
	case r.SalaryMin > 0:
		v := r.SalaryMin
		i.Salary = &v
	case r.SalaryMax > 0:
		v := r.SalaryMax
		i.Salary = &v
	}
	for _, t := range []string{r.ContractTime, r.Category.Label} {
		if t != "" {
			i.Tags = append(i.Tags, t)
		}
	}
	if created, err := time.Parse(time.RFC3339, r.Created); err == nil {
		i.ApplicationDeadline = created.UTC().Add(assumedOpenFor)
	}
	return i
}
