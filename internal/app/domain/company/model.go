// Package company defines the hydro-vac company record and its public
// listing shape.
package company

import (
	"strings"
	"time"

	"github.com/hydrovacfinder/directory/internal/app/domain/geo"
)

// Tier is a company's paid listing tier. Tiers control result ordering:
// premium ranks first, basic last.
type Tier string

const (
	TierPremium  Tier = "premium"
	TierFeatured Tier = "featured"
	TierVerified Tier = "verified"
	TierBasic    Tier = "basic"
)

var tierRanks = map[Tier]int{
	TierPremium:  0,
	TierFeatured: 1,
	TierVerified: 2,
	TierBasic:    3,
}

// NormalizeTier maps a raw stored tier value onto the canonical set. Unknown
// values, legacy "free", and empty strings all collapse to basic.
func NormalizeTier(raw string) Tier {
	t := Tier(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := tierRanks[t]; ok {
		return t
	}
	return TierBasic
}

// Rank returns the sort rank for a tier; lower ranks sort first. Unknown
// tiers rank as basic.
func (t Tier) Rank() int {
	if rank, ok := tierRanks[t]; ok {
		return rank
	}
	return tierRanks[TierBasic]
}

// DefaultCoverageRadius is the service radius in miles assumed for companies
// that never set one.
const DefaultCoverageRadius = 100

// Company is the persisted company record. Latitude, longitude and coverage
// radius are nullable; records without both coordinates are excluded from
// map and search views.
type Company struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	City            string    `json:"city"`
	State           string    `json:"state"`
	Address         string    `json:"address,omitempty"`
	Phone           string    `json:"phone"`
	Website         string    `json:"website,omitempty"`
	Email           string    `json:"email,omitempty"`
	Tier            string    `json:"tier"`
	CoverageRadius  *int      `json:"coverageRadius,omitempty"`
	Latitude        *float64  `json:"latitude,omitempty"`
	Longitude       *float64  `json:"longitude,omitempty"`
	UnionAffiliated bool      `json:"unionAffiliated"`
	Specialties     string    `json:"specialties,omitempty"`
	Images          []string  `json:"images,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Listing is the public shape served on listing, search and map views. It
// only exists for records with resolved coordinates, so they are plain
// floats here.
type Listing struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	City            string   `json:"city"`
	State           string   `json:"state"`
	Phone           string   `json:"phone"`
	Website         string   `json:"website,omitempty"`
	Specialties     []string `json:"serviceSpecialties"`
	CoverageRadius  int      `json:"coverageRadius"`
	UnionAffiliated bool     `json:"unionAffiliation"`
	Tier            Tier     `json:"tier"`
	Latitude        float64  `json:"latitude"`
	Longitude       float64  `json:"longitude"`
}

// Coordinates returns the listing's position for proximity filtering.
func (l Listing) Coordinates() geo.Point {
	return geo.Point{Latitude: l.Latitude, Longitude: l.Longitude}
}
