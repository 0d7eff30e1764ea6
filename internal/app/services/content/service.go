// Package content implements the admin-managed site content operations:
// state landing pages, pricing tiers, homepage copy and slideshow images.
package content

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/hydrovacfinder/directory/internal/app/domain/content"
	"github.com/hydrovacfinder/directory/internal/app/errs"
	"github.com/hydrovacfinder/directory/internal/app/metrics"
	"github.com/hydrovacfinder/directory/internal/app/storage"
	"github.com/hydrovacfinder/directory/internal/app/storage/seed"
	"github.com/hydrovacfinder/directory/pkg/logger"
)

// Service coordinates content reads and writes. A nil store means no
// datastore is configured: reads serve the embedded seed dataset and writes
// fail with errs.ErrNotConfigured.
type Service struct {
	store storage.ContentStore
	log   *logger.Logger
}

// New creates a configured content service. store may be nil.
func New(store storage.ContentStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("content")
	}
	return &Service{store: store, log: log}
}

// --- State landing pages ----------------------------------------------------

// ListStatePages returns every state landing page.
func (s *Service) ListStatePages(ctx context.Context) ([]content.StateLandingPage, error) {
	if s.store != nil {
		pages, err := s.store.ListStatePages(ctx)
		if err == nil {
			return pages, nil
		}
		s.log.WithError(err).Warn("state page read failed, serving fallback dataset")
	}
	metrics.RecordFallbackRead()
	data, err := seed.Load()
	if err != nil {
		return nil, err
	}
	return data.StatePages, nil
}

// GetStatePageByState returns the landing page for a full state name,
// matched case-insensitively.
func (s *Service) GetStatePageByState(ctx context.Context, state string) (content.StateLandingPage, error) {
	state = strings.TrimSpace(state)
	if state == "" {
		return content.StateLandingPage{}, errs.NewValidation("state", "state is required")
	}

	pages, err := s.ListStatePages(ctx)
	if err != nil {
		return content.StateLandingPage{}, err
	}
	for _, p := range pages {
		if strings.EqualFold(p.State, state) {
			return p, nil
		}
	}
	return content.StateLandingPage{}, errs.ErrNotFound
}

func validateStatePage(p content.StateLandingPage) error {
	verr := &errs.ValidationError{}
	if strings.TrimSpace(p.State) == "" {
		verr.Add("state", "state is required")
	}
	if p.LogoURL != "" && !validURL(p.LogoURL) {
		verr.Add("logoUrl", "logo URL must be a valid absolute URL")
	}
	if !verr.Empty() {
		return verr
	}
	return nil
}

func validURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && u.Scheme != "" && u.Host != ""
}

// filterValidURLs drops malformed image URLs instead of rejecting the whole
// write; admins paste image lists in bulk.
func filterValidURLs(urls []string) []string {
	valid := make([]string, 0, len(urls))
	for _, raw := range urls {
		if validURL(strings.TrimSpace(raw)) {
			valid = append(valid, strings.TrimSpace(raw))
		}
	}
	return valid
}

// CreateStatePage persists a new state landing page.
func (s *Service) CreateStatePage(ctx context.Context, p content.StateLandingPage) (content.StateLandingPage, error) {
	if s.store == nil {
		return content.StateLandingPage{}, errs.ErrNotConfigured
	}
	if err := validateStatePage(p); err != nil {
		return content.StateLandingPage{}, err
	}
	p.Images = filterValidURLs(p.Images)

	created, err := s.store.CreateStatePage(ctx, p)
	if err != nil {
		return content.StateLandingPage{}, err
	}
	s.log.WithField("state", created.State).Info("state landing page created")
	return created, nil
}

// UpdateStatePage replaces an existing state landing page.
func (s *Service) UpdateStatePage(ctx context.Context, p content.StateLandingPage) (content.StateLandingPage, error) {
	if s.store == nil {
		return content.StateLandingPage{}, errs.ErrNotConfigured
	}
	if strings.TrimSpace(p.ID) == "" {
		return content.StateLandingPage{}, errs.NewValidation("id", "id is required")
	}
	if err := validateStatePage(p); err != nil {
		return content.StateLandingPage{}, err
	}
	p.Images = filterValidURLs(p.Images)
	return s.store.UpdateStatePage(ctx, p)
}

// DeleteStatePage removes a state landing page.
func (s *Service) DeleteStatePage(ctx context.Context, id string) error {
	if s.store == nil {
		return errs.ErrNotConfigured
	}
	return s.store.DeleteStatePage(ctx, id)
}

// --- Pricing tiers ----------------------------------------------------------

// ListPricingTiers returns the purchasable tiers in sort order.
func (s *Service) ListPricingTiers(ctx context.Context) ([]content.PricingTier, error) {
	if s.store != nil {
		tiers, err := s.store.ListPricingTiers(ctx)
		if err == nil {
			return tiers, nil
		}
		s.log.WithError(err).Warn("pricing tier read failed, serving fallback dataset")
	}
	metrics.RecordFallbackRead()
	data, err := seed.Load()
	if err != nil {
		return nil, err
	}
	return data.PricingTiers, nil
}

func validatePricingTier(t content.PricingTier) error {
	verr := &errs.ValidationError{}
	if strings.TrimSpace(t.Name) == "" {
		verr.Add("name", "name is required")
	}
	if t.Monthly < 0 {
		verr.Add("monthly", "monthly price cannot be negative")
	}
	if t.Annual < 0 {
		verr.Add("annual", "annual price cannot be negative")
	}
	if !verr.Empty() {
		return verr
	}
	return nil
}

// CreatePricingTier persists a new pricing tier.
func (s *Service) CreatePricingTier(ctx context.Context, t content.PricingTier) (content.PricingTier, error) {
	if s.store == nil {
		return content.PricingTier{}, errs.ErrNotConfigured
	}
	if err := validatePricingTier(t); err != nil {
		return content.PricingTier{}, err
	}
	return s.store.CreatePricingTier(ctx, t)
}

// UpdatePricingTier replaces an existing pricing tier.
func (s *Service) UpdatePricingTier(ctx context.Context, t content.PricingTier) (content.PricingTier, error) {
	if s.store == nil {
		return content.PricingTier{}, errs.ErrNotConfigured
	}
	if strings.TrimSpace(t.ID) == "" {
		return content.PricingTier{}, errs.NewValidation("id", "id is required")
	}
	if err := validatePricingTier(t); err != nil {
		return content.PricingTier{}, err
	}
	return s.store.UpdatePricingTier(ctx, t)
}

// DeletePricingTier removes a pricing tier.
func (s *Service) DeletePricingTier(ctx context.Context, id string) error {
	if s.store == nil {
		return errs.ErrNotConfigured
	}
	return s.store.DeletePricingTier(ctx, id)
}

// --- Homepage and slideshow -------------------------------------------------

// GetHomepage returns the homepage copy, falling back to the seed record and
// finally the built-in default so the homepage never renders blank. A first
// read against an empty store persists the fallback copy so later admin
// edits start from a real record.
func (s *Service) GetHomepage(ctx context.Context) (content.HomepageContent, error) {
	fallback := fallbackHomepage()
	if s.store == nil {
		return fallback, nil
	}

	h, err := s.store.GetHomepage(ctx)
	if err == nil {
		return h, nil
	}
	if !isNotFound(err) {
		s.log.WithError(err).Warn("homepage read failed, serving fallback dataset")
		return fallback, nil
	}

	saved, saveErr := s.store.SaveHomepage(ctx, fallback)
	if saveErr != nil {
		s.log.WithError(saveErr).Warn("default homepage create failed")
		return fallback, nil
	}
	s.log.Info("default homepage record created")
	return saved, nil
}

func fallbackHomepage() content.HomepageContent {
	data, err := seed.Load()
	if err == nil && data.Homepage.HeroTitle != "" {
		return data.Homepage
	}
	return content.DefaultHomepage()
}

// SaveHomepage upserts the singleton homepage record.
func (s *Service) SaveHomepage(ctx context.Context, h content.HomepageContent) (content.HomepageContent, error) {
	if s.store == nil {
		return content.HomepageContent{}, errs.ErrNotConfigured
	}
	verr := &errs.ValidationError{}
	if strings.TrimSpace(h.HeroTitle) == "" {
		verr.Add("heroTitle", "hero title is required")
	}
	if !verr.Empty() {
		return content.HomepageContent{}, verr
	}

	saved, err := s.store.SaveHomepage(ctx, h)
	if err != nil {
		return content.HomepageContent{}, err
	}
	s.log.Info("homepage content saved")
	return saved, nil
}

// ListSlideshowImages returns the homepage slideshow in sort order.
func (s *Service) ListSlideshowImages(ctx context.Context) ([]content.SlideshowImage, error) {
	if s.store == nil {
		return []content.SlideshowImage{}, nil
	}
	return s.store.ListSlideshowImages(ctx)
}

// AddSlideshowImage appends an image to the homepage slideshow.
func (s *Service) AddSlideshowImage(ctx context.Context, img content.SlideshowImage) (content.SlideshowImage, error) {
	if s.store == nil {
		return content.SlideshowImage{}, errs.ErrNotConfigured
	}
	if !validURL(img.URL) {
		return content.SlideshowImage{}, errs.NewValidation("url", "image URL must be a valid absolute URL")
	}
	return s.store.AddSlideshowImage(ctx, img)
}

// DeleteSlideshowImage removes an image from the slideshow.
func (s *Service) DeleteSlideshowImage(ctx context.Context, id string) error {
	if s.store == nil {
		return errs.ErrNotConfigured
	}
	return s.store.DeleteSlideshowImage(ctx, id)
}

// --- Disposal slideshow -------------------------------------------------------

// ListDisposalSlides returns the disposal page slideshow, limited to one
// state when state is non-empty. The seed dataset carries no slides, so
// without a store the slideshow is simply empty.
func (s *Service) ListDisposalSlides(ctx context.Context, state string) ([]content.DisposalSlideImage, error) {
	if s.store == nil {
		return []content.DisposalSlideImage{}, nil
	}
	return s.store.ListDisposalSlides(ctx, strings.TrimSpace(state))
}

// AddDisposalSlide appends an image to a state's disposal slideshow.
func (s *Service) AddDisposalSlide(ctx context.Context, img content.DisposalSlideImage) (content.DisposalSlideImage, error) {
	if s.store == nil {
		return content.DisposalSlideImage{}, errs.ErrNotConfigured
	}
	verr := &errs.ValidationError{}
	if strings.TrimSpace(img.State) == "" {
		verr.Add("state", "state is required")
	}
	if !validURL(img.URL) {
		verr.Add("imageUrl", "image URL must be a valid absolute URL")
	}
	if !verr.Empty() {
		return content.DisposalSlideImage{}, verr
	}
	return s.store.AddDisposalSlide(ctx, img)
}

// DeleteDisposalSlide removes an image from the disposal slideshow.
func (s *Service) DeleteDisposalSlide(ctx context.Context, id string) error {
	if s.store == nil {
		return errs.ErrNotConfigured
	}
	return s.store.DeleteDisposalSlide(ctx, id)
}

func isNotFound(err error) bool {
	return errors.Is(err, errs.ErrNotFound)
}
