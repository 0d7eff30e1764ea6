// Package transform maps persisted records into the public shapes consumed
// by listing, search and map views. The nullable-coordinate rule lives here
// and nowhere else: records without both latitude and longitude are dropped
// before any consumer sees them.
package transform

import (
	"strings"

	"github.com/hydrovacfinder/directory/internal/app/domain/company"
	"github.com/hydrovacfinder/directory/internal/app/domain/disposal"
)

// Company maps a persisted company to its public listing. The second return
// is false when the record lacks coordinates and must be omitted.
func Company(c company.Company) (company.Listing, bool) {
	if c.Latitude == nil || c.Longitude == nil {
		return company.Listing{}, false
	}

	radius := company.DefaultCoverageRadius
	if c.CoverageRadius != nil && *c.CoverageRadius > 0 {
		radius = *c.CoverageRadius
	}

	return company.Listing{
		ID:              c.ID,
		Name:            c.Name,
		City:            c.City,
		State:           c.State,
		Phone:           c.Phone,
		Website:         c.Website,
		Specialties:     SplitDelimited(c.Specialties),
		CoverageRadius:  radius,
		UnionAffiliated: c.UnionAffiliated,
		Tier:            company.NormalizeTier(c.Tier),
		Latitude:        *c.Latitude,
		Longitude:       *c.Longitude,
	}, true
}

// Companies maps a batch of records, silently dropping those without
// coordinates.
func Companies(records []company.Company) []company.Listing {
	listings := make([]company.Listing, 0, len(records))
	for _, c := range records {
		if listing, ok := Company(c); ok {
			listings = append(listings, listing)
		}
	}
	return listings
}

// Facility maps a persisted disposal facility to its public listing.
func Facility(f disposal.Facility) (disposal.Listing, bool) {
	if f.Latitude == nil || f.Longitude == nil {
		return disposal.Listing{}, false
	}

	return disposal.Listing{
		ID:                f.ID,
		Name:              f.Name,
		Address:           f.Address,
		City:              f.City,
		State:             f.State,
		Phone:             f.Phone,
		Hours:             f.Hours,
		MaterialsAccepted: SplitDelimited(f.MaterialsAccepted),
		Tier:              disposal.Tier,
		Latitude:          *f.Latitude,
		Longitude:         *f.Longitude,
	}, true
}

// Facilities maps a batch of facility records, dropping those without
// coordinates.
func Facilities(records []disposal.Facility) []disposal.Listing {
	listings := make([]disposal.Listing, 0, len(records))
	for _, f := range records {
		if listing, ok := Facility(f); ok {
			listings = append(listings, listing)
		}
	}
	return listings
}

// SplitDelimited splits a comma-delimited free-text field into trimmed,
// non-empty, deduplicated tokens. A field holding only whitespace or empty
// segments yields an empty slice.
func SplitDelimited(raw string) []string {
	tokens := make([]string, 0)
	seen := make(map[string]struct{})
	for _, part := range strings.Split(raw, ",") {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		if _, dup := seen[trimmed]; dup {
			continue
		}
		seen[trimmed] = struct{}{}
		tokens = append(tokens, trimmed)
	}
	return tokens
}

// JoinDelimited is the inverse of SplitDelimited, used when accepting
// slice-shaped input on write endpoints.
func JoinDelimited(tokens []string) string {
	cleaned := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if trimmed := strings.TrimSpace(t); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return strings.Join(cleaned, ", ")
}
