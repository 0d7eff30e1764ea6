// Package search implements the geo-proximity filter and the paid-tier
// ordering applied to directory listings.
package search

import (
	"sort"

	"github.com/hydrovacfinder/directory/internal/app/domain/company"
	"github.com/hydrovacfinder/directory/internal/app/domain/geo"
	"github.com/hydrovacfinder/directory/internal/app/errs"
)

// Locatable is any listing carrying resolved coordinates.
type Locatable interface {
	Coordinates() geo.Point
}

// Filter returns the subset of items within radius miles of center, sorted
// ascending by distance. The radius boundary is inclusive. Items whose
// distance computes to NaN never satisfy the boundary check and are
// excluded.
func Filter[T Locatable](items []T, center geo.Point, radiusMiles float64) []T {
	type scored struct {
		item T
		dist float64
	}

	within := make([]scored, 0, len(items))
	for _, item := range items {
		d := geo.Distance(item.Coordinates(), center)
		if d <= radiusMiles {
			within = append(within, scored{item: item, dist: d})
		}
	}

	sort.SliceStable(within, func(i, j int) bool {
		return within[i].dist < within[j].dist
	})

	result := make([]T, len(within))
	for i, s := range within {
		result[i] = s.item
	}
	return result
}

// FilterLocation applies Filter for an optional search location. A nil
// location means browse mode: the input is returned unchanged and callers
// fall back to tier ordering.
func FilterLocation[T Locatable](items []T, loc *geo.SearchLocation) ([]T, error) {
	if loc == nil {
		return items, nil
	}
	if !geo.ValidRadius(loc.RadiusMiles) {
		return nil, errs.NewValidation("radius", "radius must be one of 25, 50, 75 or 100 miles")
	}
	return Filter(items, loc.Point, loc.RadiusMiles), nil
}

// RankByTier stable-sorts company listings by tier rank (premium first,
// basic last). Listings of equal tier keep their relative input order.
// Disposal facilities carry a single tier and are never passed through
// here; they retain persisted order.
func RankByTier(listings []company.Listing) []company.Listing {
	ranked := make([]company.Listing, len(listings))
	copy(ranked, listings)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Tier.Rank() < ranked[j].Tier.Rank()
	})
	return ranked
}
