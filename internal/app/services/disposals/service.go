// Package disposals implements disposal facility operations: admin CRUD and
// the public facility listings.
package disposals

import (
	"context"
	"errors"
	"strings"

	"github.com/hydrovacfinder/directory/internal/app/domain/disposal"
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
// false when the query matched no location.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (geo.Point, bool, error)
}

// Service coordinates disposal facility reads and writes. A nil store means
// no datastore is configured: reads serve the embedded seed dataset and
// writes fail with errs.ErrNotConfigured.
type Service struct {
	store    storage.DisposalStore
	geocoder Geocoder
	log      *logger.Logger
}

// New creates a configured disposal service. store and geocoder may be nil.
func New(store storage.DisposalStore, geocoder Geocoder, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("disposals")
	}
	return &Service{store: store, geocoder: geocoder, log: log}
}

func (s *Service) records(ctx context.Context) ([]disposal.Facility, error) {
	if s.store != nil {
		recs, err := s.store.ListFacilities(ctx)
		if err == nil {
			return recs, nil
		}
		s.log.WithError(err).Warn("disposal store read failed, serving fallback dataset")
	}
	metrics.RecordFallbackRead()
	data, err := seed.Load()
	if err != nil {
		return nil, err
	}
	return data.Facilities, nil
}

// List returns every facility with resolved coordinates in persisted order.
// Facilities carry a single fixed tier, so no tier ranking applies.
func (s *Service) List(ctx context.Context) ([]disposal.Listing, error) {
	recs, err := s.records(ctx)
	if err != nil {
		return nil, err
	}
	return transform.Facilities(recs), nil
}

// ListRecords returns the raw persisted records, including facilities
// without resolved coordinates, for the admin dashboard.
func (s *Service) ListRecords(ctx context.Context) ([]disposal.Facility, error) {
	return s.records(ctx)
}

// SearchResult is the outcome of a facility proximity search.
type SearchResult struct {
	Listings      []disposal.Listing  `json:"facilities"`
	Location      *geo.SearchLocation `json:"location,omitempty"`
	LocationFound bool                `json:"locationFound"`
}

// Search geocodes query and returns facilities within radiusMiles of the
// resolved point, sorted ascending by distance. An empty query is browse
// mode: persisted order, no filter.
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
		return SearchResult{Listings: []disposal.Listing{}, LocationFound: false}, nil
	}

	recs, err := s.records(ctx)
	if err != nil {
		return SearchResult{}, err
	}

	loc := &geo.SearchLocation{Point: point, RadiusMiles: radiusMiles}
	within, err := search.FilterLocation(transform.Facilities(recs), loc)
	if err != nil {
		return SearchResult{}, err
	}
	return SearchResult{Listings: within, Location: loc, LocationFound: true}, nil
}

// Get returns a single facility record by id. A missing record stays a
// not-found; any other store failure falls back to a seed dataset lookup.
func (s *Service) Get(ctx context.Context, id string) (disposal.Facility, error) {
	if s.store != nil {
		f, err := s.store.GetFacility(ctx, id)
		if err == nil || errors.Is(err, errs.ErrNotFound) {
			return f, err
		}
		s.log.WithError(err).Warn("disposal store read failed, serving fallback dataset")
	}
	metrics.RecordFallbackRead()
	data, err := seed.Load()
	if err != nil {
		return disposal.Facility{}, err
	}
	for _, f := range data.Facilities {
		if f.ID == id {
			return f, nil
		}
	}
	return disposal.Facility{}, errs.ErrNotFound
}

// Validate checks a facility record for admin create/update.
func Validate(f disposal.Facility) error {
	verr := &errs.ValidationError{}
	if strings.TrimSpace(f.Name) == "" {
		verr.Add("name", "name is required")
	}
	if strings.TrimSpace(f.City) == "" {
		verr.Add("city", "city is required")
	}
	if strings.TrimSpace(f.State) == "" {
		verr.Add("state", "state is required")
	}
	if (f.Latitude == nil) != (f.Longitude == nil) {
		verr.Add("coordinates", "latitude and longitude must be set together")
	}
	if !verr.Empty() {
		return verr
	}
	return nil
}

// Create persists a new facility.
func (s *Service) Create(ctx context.Context, f disposal.Facility) (disposal.Facility, error) {
	if s.store == nil {
		return disposal.Facility{}, errs.ErrNotConfigured
	}
	if err := Validate(f); err != nil {
		return disposal.Facility{}, err
	}

	created, err := s.store.CreateFacility(ctx, f)
	if err != nil {
		return disposal.Facility{}, err
	}
	s.log.WithField("facility_id", created.ID).Info("disposal facility created")
	return created, nil
}

// Update replaces an existing facility record. Last write wins.
func (s *Service) Update(ctx context.Context, f disposal.Facility) (disposal.Facility, error) {
	if s.store == nil {
		return disposal.Facility{}, errs.ErrNotConfigured
	}
	if strings.TrimSpace(f.ID) == "" {
		return disposal.Facility{}, errs.NewValidation("id", "id is required")
	}
	if err := Validate(f); err != nil {
		return disposal.Facility{}, err
	}

	updated, err := s.store.UpdateFacility(ctx, f)
	if err != nil {
		return disposal.Facility{}, err
	}
	s.log.WithField("facility_id", updated.ID).Info("disposal facility updated")
	return updated, nil
}

// Delete removes a facility record.
func (s *Service) Delete(ctx context.Context, id string) error {
	if s.store == nil {
		return errs.ErrNotConfigured
	}
	if err := s.store.DeleteFacility(ctx, id); err != nil {
		return err
	}
	s.log.WithField("facility_id", id).Info("disposal facility deleted")
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
	existing, err := s.store.ListFacilities(ctx)
	if err != nil {
		return ImportResult{}, err
	}

	seen := make(map[string]bool, len(existing))
	for _, f := range existing {
		seen[importKey(f.Name, f.State)] = true
	}

	result := ImportResult{Total: len(data.Facilities)}
	for _, f := range data.Facilities {
		key := importKey(f.Name, f.State)
		if seen[key] {
			result.Skipped++
			continue
		}
		f.ID = ""
		if _, err := s.store.CreateFacility(ctx, f); err != nil {
			return result, err
		}
		seen[key] = true
		result.Imported++
	}

	s.log.WithField("imported", result.Imported).
		WithField("skipped", result.Skipped).
		Info("seed facilities imported")
	return result, nil
}

func importKey(name, state string) string {
	return strings.ToLower(strings.TrimSpace(name)) + "_" + strings.ToLower(strings.TrimSpace(state))
}
