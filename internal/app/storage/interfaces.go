package storage

import (
	"context"

	"github.com/hydrovacfinder/directory/internal/app/domain/company"
	"github.com/hydrovacfinder/directory/internal/app/domain/content"
	"github.com/hydrovacfinder/directory/internal/app/domain/disposal"
)

// CompanyStore persists hydro-vac company records. ListCompanies returns
// records in insertion order so tier ranking can break ties on it.
type CompanyStore interface {
	CreateCompany(ctx context.Context, c company.Company) (company.Company, error)
	UpdateCompany(ctx context.Context, c company.Company) (company.Company, error)
	GetCompany(ctx context.Context, id string) (company.Company, error)
	ListCompanies(ctx context.Context) ([]company.Company, error)
	DeleteCompany(ctx context.Context, id string) error
}

// DisposalStore persists disposal facility records. ListFacilities returns
// newest first.
type DisposalStore interface {
	CreateFacility(ctx context.Context, f disposal.Facility) (disposal.Facility, error)
	UpdateFacility(ctx context.Context, f disposal.Facility) (disposal.Facility, error)
	GetFacility(ctx context.Context, id string) (disposal.Facility, error)
	ListFacilities(ctx context.Context) ([]disposal.Facility, error)
	DeleteFacility(ctx context.Context, id string) error
}

// ContentStore persists the admin-managed site content records.
type ContentStore interface {
	CreateStatePage(ctx context.Context, p content.StateLandingPage) (content.StateLandingPage, error)
	UpdateStatePage(ctx context.Context, p content.StateLandingPage) (content.StateLandingPage, error)
	GetStatePage(ctx context.Context, id string) (content.StateLandingPage, error)
	ListStatePages(ctx context.Context) ([]content.StateLandingPage, error)
	DeleteStatePage(ctx context.Context, id string) error

	CreatePricingTier(ctx context.Context, t content.PricingTier) (content.PricingTier, error)
	UpdatePricingTier(ctx context.Context, t content.PricingTier) (content.PricingTier, error)
	GetPricingTier(ctx context.Context, id string) (content.PricingTier, error)
	ListPricingTiers(ctx context.Context) ([]content.PricingTier, error)
	DeletePricingTier(ctx context.Context, id string) error

	GetHomepage(ctx context.Context) (content.HomepageContent, error)
	SaveHomepage(ctx context.Context, h content.HomepageContent) (content.HomepageContent, error)

	ListSlideshowImages(ctx context.Context) ([]content.SlideshowImage, error)
	AddSlideshowImage(ctx context.Context, img content.SlideshowImage) (content.SlideshowImage, error)
	DeleteSlideshowImage(ctx context.Context, id string) error

	// ListDisposalSlides returns every slide when state is empty, otherwise
	// only slides for that state (matched case-insensitively).
	ListDisposalSlides(ctx context.Context, state string) ([]content.DisposalSlideImage, error)
	AddDisposalSlide(ctx context.Context, img content.DisposalSlideImage) (content.DisposalSlideImage, error)
	DeleteDisposalSlide(ctx context.Context, id string) error
}

// Store aggregates every store interface a full deployment provides.
type Store interface {
	CompanyStore
	DisposalStore
	ContentStore
}
