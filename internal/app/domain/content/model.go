// Package content defines the admin-managed site content records: state
// landing pages, pricing tiers, homepage copy and slideshow images.
package content

import "time"

// StateLandingPage is the per-state landing page content. State names are
// stored as full names ("Texas"), one page per state.
type StateLandingPage struct {
	ID          string    `json:"id"`
	State       string    `json:"state"`
	Header      string    `json:"header"`
	Description string    `json:"description"`
	LogoURL     string    `json:"logoUrl,omitempty"`
	Images      []string  `json:"images,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// PricingTier is a purchasable listing tier shown on the pricing page.
// Monthly and Annual are prices in US cents.
type PricingTier struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Monthly   int64     `json:"monthly"`
	Annual    int64     `json:"annual"`
	SortOrder int       `json:"sortOrder"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HomepageContent is the singleton homepage copy record.
type HomepageContent struct {
	ID               string    `json:"id"`
	HeroTitle        string    `json:"heroTitle"`
	HeroSubtitle     string    `json:"heroSubtitle"`
	MainImage        string    `json:"mainImage,omitempty"`
	SlideshowEnabled bool      `json:"slideshowEnabled"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// DefaultHomepage is the copy served when no homepage record has been saved.
func DefaultHomepage() HomepageContent {
	return HomepageContent{
		HeroTitle:        "Find Hydro-Vac Services Near You",
		HeroSubtitle:     "Connect with trusted hydro excavation companies across the nation",
		SlideshowEnabled: true,
	}
}

// SlideshowImage is one image in the homepage slideshow.
type SlideshowImage struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Caption   string    `json:"caption,omitempty"`
	SortOrder int       `json:"sortOrder"`
	CreatedAt time.Time `json:"createdAt"`
}

// DisposalSlideImage is one image in the per-state disposal page slideshow.
// State holds the full state name so listings can filter to one state.
type DisposalSlideImage struct {
	ID        string    `json:"id"`
	State     string    `json:"state"`
	URL       string    `json:"imageUrl"`
	Caption   string    `json:"caption,omitempty"`
	SortOrder int       `json:"sortOrder"`
	CreatedAt time.Time `json:"createdAt"`
}
