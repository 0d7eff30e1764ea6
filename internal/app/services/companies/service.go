// Package companies implements company directory operations: admin CRUD,
// browse listings and the geo-proximity search.
package companies

import (
	"context"
	"errors"
	"net/url"
	"regexp"
	"strings"

	"github.com/hydrovacfinder/directory/internal/app/domain/company"
	"github.com/hydrovacfinder/directory/internal/app/domain/geo"
	"github.com/hydrovacfinder/directory/internal/app/errs"
	"github.com/hydrovacfinder/directory/internal/app/metrics"
	"github.com/hydrovacfinder/directory/internal/app/search"
	"github.com/hydrovacfinder/directory/internal/app/storage"
	"github.com/hydrovacfinder/directory/internal/app/storage/seed"
	"github.com/hydrovacfinder/directory/internal/app/transform"
	"github.com/hydrovacfinder/directory/pkg/logger"
)

// Geocoder resolves a free-text place query to coordinates. The boolean is
// false when the query matched no location, which is not an error.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (geo.Point, bool, error)
}

// Service coordinates company reads and writes. A nil store means no
// datastore is configured: reads serve the embedded seed dataset and writes
// fail with errs.ErrNotConfigured.
type Service struct {
	store    storage.CompanyStore
	geocoder Geocoder
	log      *logger.Logger
}

// New creates a configured company service. store and geocoder may be nil.
func New(store storage.CompanyStore, geocoder Geocoder, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("companies")
	}
	return &Service{store: store, geocoder: geocoder, log: log}
}

// records returns the raw company rows, falling back to the seed dataset
// when no store is configured or the store read fails.
func (s *Service) records(ctx context.Context) ([]company.Company, error) {
	if s.store != nil {
		recs, err := s.store.ListCompanies(ctx)
		if err == nil {
			return recs, nil
		}
		s.log.WithError(err).Warn("company store read failed, serving fallback dataset")
	}
	metrics.RecordFallbackRead()
	data, err := seed.Load()
	if err != nil {
		return nil, err
	}
	return data.Companies, nil
}

// List returns every company with resolved coordinates, premium tiers first.
func (s *Service) List(ctx context.Context) ([]company.Listing, error) {
	recs, err := s.records(ctx)
	if err != nil {
		return nil, err
	}
	return search.RankByTier(transform.Companies(recs)), nil
}

// ListRecords returns the raw persisted records, including companies without
// resolved coordinates. Admin dashboards need those to edit them; public
// views never see them.
func (s *Service) ListRecords(ctx context.Context) ([]company.Company, error) {
	return s.records(ctx)
}

// SearchResult is the outcome of a proximity search. LocationFound is false
// when the query matched no known place; Listings is empty in that case.
type SearchResult struct {
	Listings      []company.Listing   `json:"companies"`
	Location      *geo.SearchLocation `json:"location,omitempty"`
	LocationFound bool                `json:"locationFound"`
}

// Search geocodes query and returns companies within radiusMiles of the
// resolved point, sorted ascending by distance. An empty query is browse
// mode: no distance filter, tier ordering instead.
func (s *Service) Search(ctx context.Context, query string, radiusMiles float64) (SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		listings, err := s.List(ctx)
		if err != nil {
			return SearchResult{}, err
		}
		return SearchResult{Listings: listings, LocationFound: true}, nil
	}

	if !geo.ValidRadius(radiusMiles) {
		return SearchResult{}, errs.NewValidation("radius", "radius must be one of 25, 50, 75 or 100 miles")
	}
	if s.geocoder == nil {
		return SearchResult{}, errs.ErrNotConfigured
	}

	point, found, err := s.geocoder.Geocode(ctx, query)
	if err != nil {
		return SearchResult{}, err
	}
	if !found {
		s.log.WithField("query", query).Info("search query matched no location")
		return SearchResult{Listings: []company.Listing{}, LocationFound: false}, nil
	}

	recs, err := s.records(ctx)
	if err != nil {
		return SearchResult{}, err
	}

	loc := &geo.SearchLocation{Point: point, RadiusMiles: radiusMiles}
	within, err := search.FilterLocation(transform.Companies(recs), loc)
	if err != nil {
		return SearchResult{}, err
	}

	return SearchResult{
		Listings:      within,
		Location:      loc,
		LocationFound: true,
	}, nil
}

// SearchNear returns companies within radiusMiles of a caller-supplied
// point, sorted ascending by distance. Used by the browser geolocation flow
// where no geocoding is needed.
func (s *Service) SearchNear(ctx context.Context, point geo.Point, radiusMiles float64) (SearchResult, error) {
	if !geo.ValidRadius(radiusMiles) {
		return SearchResult{}, errs.NewValidation("radius", "radius must be one of 25, 50, 75 or 100 miles")
	}

	recs, err := s.records(ctx)
	if err != nil {
		return SearchResult{}, err
	}

	loc := &geo.SearchLocation{Point: point, RadiusMiles: radiusMiles}
	within, err := search.FilterLocation(transform.Companies(recs), loc)
	if err != nil {
		return SearchResult{}, err
	}
	return SearchResult{Listings: within, Location: loc, LocationFound: true}, nil
}

// Get returns a single company record by id. A missing record stays a
// not-found; any other store failure falls back to a seed dataset lookup.
func (s *Service) Get(ctx context.Context, id string) (company.Company, error) {
	if s.store != nil {
		c, err := s.store.GetCompany(ctx, id)
		if err == nil || errors.Is(err, errs.ErrNotFound) {
			return c, err
		}
		s.log.WithError(err).Warn("company store read failed, serving fallback dataset")
	}
	metrics.RecordFallbackRead()
	data, err := seed.Load()
	if err != nil {
		return company.Company{}, err
	}
	for _, c := range data.Companies {
		if c.ID == id {
			return c, nil
		}
	}
	return company.Company{}, errs.ErrNotFound
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Validate checks a company record for admin create/update.
func Validate(c company.Company) error {
	verr := &errs.ValidationError{}
	if strings.TrimSpace(c.Name) == "" {
		verr.Add("name", "name is required")
	}
	if strings.TrimSpace(c.City) == "" {
		verr.Add("city", "city is required")
	}
	if strings.TrimSpace(c.State) == "" {
		verr.Add("state", "state is required")
	}
	if c.Email != "" && !emailPattern.MatchString(c.Email) {
		verr.Add("email", "email is malformed")
	}
	if c.Website != "" {
		if u, err := url.Parse(c.Website); err != nil || u.Scheme == "" || u.Host == "" {
			verr.Add("website", "website must be a valid absolute URL")
		}
	}
	if c.CoverageRadius != nil && *c.CoverageRadius <= 0 {
		verr.Add("coverageRadius", "coverage radius must be positive")
	}
	if (c.Latitude == nil) != (c.Longitude == nil) {
		verr.Add("coordinates", "latitude and longitude must be set together")
	}
	if !verr.Empty() {
		return verr
	}
	return nil
}

// Create persists a new company. Fails with errs.ErrNotConfigured when no
// datastore is available: writes are never served from the seed dataset.
func (s *Service) Create(ctx context.Context, c company.Company) (company.Company, error) {
	if s.store == nil {
		return company.Company{}, errs.ErrNotConfigured
	}
	if err := Validate(c); err != nil {
		return company.Company{}, err
	}
	c.Tier = string(company.NormalizeTier(c.Tier))

	created, err := s.store.CreateCompany(ctx, c)
	if err != nil {
		return company.Company{}, err
	}
	s.log.WithField("company_id", created.ID).WithField("tier", created.Tier).Info("company created")
	return created, nil
}

// Update replaces an existing company record. Last write wins.
func (s *Service) Update(ctx context.Context, c company.Company) (company.Company, error) {
	if s.store == nil {
		return company.Company{}, errs.ErrNotConfigured
	}
	if strings.TrimSpace(c.ID) == "" {
		return company.Company{}, errs.NewValidation("id", "id is required")
	}
	if err := Validate(c); err != nil {
		return company.Company{}, err
	}
	c.Tier = string(company.NormalizeTier(c.Tier))

	updated, err := s.store.UpdateCompany(ctx, c)
	if err != nil {
		return company.Company{}, err
	}
	s.log.WithField("company_id", updated.ID).Info("company updated")
	return updated, nil
}

// Delete removes a company record.
func (s *Service) Delete(ctx context.Context, id string) error {
	if s.store == nil {
		return errs.ErrNotConfigured
	}
	if err := s.store.DeleteCompany(ctx, id); err != nil {
		return err
	}
	s.log.WithField("company_id", id).Info("company deleted")
	return nil
}

// ImportResult reports a seed dataset import: records created, records
// skipped as already present, and the dataset total.
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
	Total    int `json:"total"`
}

// ImportSeed loads the embedded dataset into the configured store. Records
// are deduplicated by name and state so repeat runs are safe.
func (s *Service) ImportSeed(ctx context.Context) (ImportResult, error) {
	if s.store == nil {
		return ImportResult{}, errs.ErrNotConfigured
	}

	data, err := seed.Load()
	if err != nil {
		return ImportResult{}, err
	}
	existing, err := s.store.ListCompanies(ctx)
	if err != nil {
		return ImportResult{}, err
	}

	seen := make(map[string]bool, len(existing))
	for _, c := range existing {
		seen[importKey(c.Name, c.State)] = true
	}

	result := ImportResult{Total: len(data.Companies)}
	for _, c := range data.Companies {
		key := importKey(c.Name, c.State)
		if seen[key] {
			result.Skipped++
			continue
		}
		c.ID = ""
		c.Tier = string(company.NormalizeTier(c.Tier))
		if _, err := s.store.CreateCompany(ctx, c); err != nil {
			return result, err
		}
		seen[key] = true
		result.Imported++
	}

	s.log.WithField("imported", result.Imported).
		WithField("skipped", result.Skipped).
		Info("seed companies imported")
	return result, nil
}

func importKey(name, state string) string {
	return strings.ToLower(strings.TrimSpace(name)) + "_" + strings.ToLower(strings.TrimSpace(state))
}
