// Package disposal defines the disposal facility record and listing shape.
package disposal

import (
	"time"

	"github.com/hydrovacfinder/directory/internal/app/domain/geo"
)

// Tier is the single fixed tier every disposal facility is listed under.
const Tier = "verified"

// Facility is the persisted disposal facility record. Coordinates are
// nullable; facilities without both are excluded from map and search views.
type Facility struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Address           string    `json:"address"`
	City              string    `json:"city"`
	State             string    `json:"state"`
	Phone             string    `json:"phone"`
	Hours             string    `json:"hours,omitempty"`
	MaterialsAccepted string    `json:"materialsAccepted,omitempty"`
	Latitude          *float64  `json:"latitude,omitempty"`
	Longitude         *float64  `json:"longitude,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
}

// Listing is the public facility shape served to listing and map views.
type Listing struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Address           string   `json:"address"`
	City              string   `json:"city"`
	State             string   `json:"state"`
	Phone             string   `json:"phone"`
	Hours             string   `json:"hours,omitempty"`
	MaterialsAccepted []string `json:"materialsAccepted"`
	Tier              string   `json:"tier"`
	Latitude          float64  `json:"latitude"`
	Longitude         float64  `json:"longitude"`
}

// Coordinates returns the listing's position for proximity filtering.
func (l Listing) Coordinates() geo.Point {
	return geo.Point{Latitude: l.Latitude, Longitude: l.Longitude}
}
