package storage

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hydrovacfinder/directory/internal/app/domain/company"
	"github.com/hydrovacfinder/directory/internal/app/domain/content"
	"github.com/hydrovacfinder/directory/internal/app/domain/disposal"
	"github.com/hydrovacfinder/directory/internal/app/errs"
)

// Memory is a thread-safe in-memory store implementing every storage
// interface in this package. It preserves insertion order for listings and
// is intended for tests and prototyping.
type Memory struct {
	mu     sync.RWMutex
	nextID int64

	companies    map[string]company.Company
	companyOrder []string

	facilities    map[string]disposal.Facility
	facilityOrder []string

	statePages     map[string]content.StateLandingPage
	statePageOrder []string

	pricingTiers     map[string]content.PricingTier
	pricingTierOrder []string

	homepage *content.HomepageContent

	slideshow      map[string]content.SlideshowImage
	slideshowOrder []string

	disposalSlides     map[string]content.DisposalSlideImage
	disposalSlideOrder []string
}

var _ Store = (*Memory)(nil)

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		nextID:         1,
		companies:      make(map[string]company.Company),
		facilities:     make(map[string]disposal.Facility),
		statePages:     make(map[string]content.StateLandingPage),
		pricingTiers:   make(map[string]content.PricingTier),
		slideshow:      make(map[string]content.SlideshowImage),
		disposalSlides: make(map[string]content.DisposalSlideImage),
	}
}

func (m *Memory) nextIDLocked() string {
	id := m.nextID
	m.nextID++
	return fmt.Sprintf("%d", id)
}

// CompanyStore implementation -------------------------------------------------

func (m *Memory) CreateCompany(_ context.Context, c company.Company) (company.Company, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c.ID == "" {
		c.ID = m.nextIDLocked()
	} else if _, exists := m.companies[c.ID]; exists {
		return company.Company{}, fmt.Errorf("company %s already exists", c.ID)
	}

	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	c.Images = append([]string(nil), c.Images...)

	m.companies[c.ID] = c
	m.companyOrder = append(m.companyOrder, c.ID)
	return cloneCompany(c), nil
}

func (m *Memory) UpdateCompany(_ context.Context, c company.Company) (company.Company, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	original, ok := m.companies[c.ID]
	if !ok {
		return company.Company{}, errs.ErrNotFound
	}

	c.CreatedAt = original.CreatedAt
	c.UpdatedAt = time.Now().UTC()
	c.Images = append([]string(nil), c.Images...)

	m.companies[c.ID] = c
	return cloneCompany(c), nil
}

func (m *Memory) GetCompany(_ context.Context, id string) (company.Company, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.companies[id]
	if !ok {
		return company.Company{}, errs.ErrNotFound
	}
	return cloneCompany(c), nil
}

func (m *Memory) ListCompanies(_ context.Context) ([]company.Company, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]company.Company, 0, len(m.companyOrder))
	for _, id := range m.companyOrder {
		if c, ok := m.companies[id]; ok {
			result = append(result, cloneCompany(c))
		}
	}
	return result, nil
}

func (m *Memory) DeleteCompany(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.companies[id]; !ok {
		return errs.ErrNotFound
	}
	delete(m.companies, id)
	m.companyOrder = removeID(m.companyOrder, id)
	return nil
}

// DisposalStore implementation ------------------------------------------------

func (m *Memory) CreateFacility(_ context.Context, f disposal.Facility) (disposal.Facility, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if f.ID == "" {
		f.ID = m.nextIDLocked()
	} else if _, exists := m.facilities[f.ID]; exists {
		return disposal.Facility{}, fmt.Errorf("facility %s already exists", f.ID)
	}

	f.CreatedAt = time.Now().UTC()
	m.facilities[f.ID] = f
	m.facilityOrder = append(m.facilityOrder, f.ID)
	return f, nil
}

func (m *Memory) UpdateFacility(_ context.Context, f disposal.Facility) (disposal.Facility, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	original, ok := m.facilities[f.ID]
	if !ok {
		return disposal.Facility{}, errs.ErrNotFound
	}

	f.CreatedAt = original.CreatedAt
	m.facilities[f.ID] = f
	return f, nil
}

func (m *Memory) GetFacility(_ context.Context, id string) (disposal.Facility, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	f, ok := m.facilities[id]
	if !ok {
		return disposal.Facility{}, errs.ErrNotFound
	}
	return f, nil
}

// ListFacilities returns facilities newest first.
func (m *Memory) ListFacilities(_ context.Context) ([]disposal.Facility, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]disposal.Facility, 0, len(m.facilityOrder))
	for i := len(m.facilityOrder) - 1; i >= 0; i-- {
		if f, ok := m.facilities[m.facilityOrder[i]]; ok {
			result = append(result, f)
		}
	}
	return result, nil
}

func (m *Memory) DeleteFacility(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.facilities[id]; !ok {
		return errs.ErrNotFound
	}
	delete(m.facilities, id)
	m.facilityOrder = removeID(m.facilityOrder, id)
	return nil
}

// ContentStore implementation -------------------------------------------------

func (m *Memory) CreateStatePage(_ context.Context, p content.StateLandingPage) (content.StateLandingPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.statePages {
		if existing.State == p.State {
			return content.StateLandingPage{}, fmt.Errorf("state page for %s already exists", p.State)
		}
	}

	if p.ID == "" {
		p.ID = m.nextIDLocked()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	p.Images = append([]string(nil), p.Images...)

	m.statePages[p.ID] = p
	m.statePageOrder = append(m.statePageOrder, p.ID)
	return cloneStatePage(p), nil
}

func (m *Memory) UpdateStatePage(_ context.Context, p content.StateLandingPage) (content.StateLandingPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	original, ok := m.statePages[p.ID]
	if !ok {
		return content.StateLandingPage{}, errs.ErrNotFound
	}

	p.CreatedAt = original.CreatedAt
	p.UpdatedAt = time.Now().UTC()
	p.Images = append([]string(nil), p.Images...)

	m.statePages[p.ID] = p
	return cloneStatePage(p), nil
}

func (m *Memory) GetStatePage(_ context.Context, id string) (content.StateLandingPage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.statePages[id]
	if !ok {
		return content.StateLandingPage{}, errs.ErrNotFound
	}
	return cloneStatePage(p), nil
}

func (m *Memory) ListStatePages(_ context.Context) ([]content.StateLandingPage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]content.StateLandingPage, 0, len(m.statePageOrder))
	for _, id := range m.statePageOrder {
		if p, ok := m.statePages[id]; ok {
			result = append(result, cloneStatePage(p))
		}
	}
	return result, nil
}

func (m *Memory) DeleteStatePage(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.statePages[id]; !ok {
		return errs.ErrNotFound
	}
	delete(m.statePages, id)
	m.statePageOrder = removeID(m.statePageOrder, id)
	return nil
}

func (m *Memory) CreatePricingTier(_ context.Context, t content.PricingTier) (content.PricingTier, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if t.ID == "" {
		t.ID = m.nextIDLocked()
	}
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now

	m.pricingTiers[t.ID] = t
	m.pricingTierOrder = append(m.pricingTierOrder, t.ID)
	return t, nil
}

func (m *Memory) UpdatePricingTier(_ context.Context, t content.PricingTier) (content.PricingTier, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	original, ok := m.pricingTiers[t.ID]
	if !ok {
		return content.PricingTier{}, errs.ErrNotFound
	}

	t.CreatedAt = original.CreatedAt
	t.UpdatedAt = time.Now().UTC()
	m.pricingTiers[t.ID] = t
	return t, nil
}

func (m *Memory) GetPricingTier(_ context.Context, id string) (content.PricingTier, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.pricingTiers[id]
	if !ok {
		return content.PricingTier{}, errs.ErrNotFound
	}
	return t, nil
}

func (m *Memory) ListPricingTiers(_ context.Context) ([]content.PricingTier, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]content.PricingTier, 0, len(m.pricingTierOrder))
	for _, id := range m.pricingTierOrder {
		if t, ok := m.pricingTiers[id]; ok {
			result = append(result, t)
		}
	}
	return result, nil
}

func (m *Memory) DeletePricingTier(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.pricingTiers[id]; !ok {
		return errs.ErrNotFound
	}
	delete(m.pricingTiers, id)
	m.pricingTierOrder = removeID(m.pricingTierOrder, id)
	return nil
}

func (m *Memory) GetHomepage(_ context.Context) (content.HomepageContent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.homepage == nil {
		return content.HomepageContent{}, errs.ErrNotFound
	}
	return *m.homepage, nil
}

func (m *Memory) SaveHomepage(_ context.Context, h content.HomepageContent) (content.HomepageContent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	if m.homepage == nil {
		if h.ID == "" {
			h.ID = m.nextIDLocked()
		}
		h.CreatedAt = now
	} else {
		h.ID = m.homepage.ID
		h.CreatedAt = m.homepage.CreatedAt
	}
	h.UpdatedAt = now

	stored := h
	m.homepage = &stored
	return h, nil
}

func (m *Memory) ListSlideshowImages(_ context.Context) ([]content.SlideshowImage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]content.SlideshowImage, 0, len(m.slideshowOrder))
	for _, id := range m.slideshowOrder {
		if img, ok := m.slideshow[id]; ok {
			result = append(result, img)
		}
	}
	return result, nil
}

func (m *Memory) AddSlideshowImage(_ context.Context, img content.SlideshowImage) (content.SlideshowImage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if img.ID == "" {
		img.ID = m.nextIDLocked()
	}
	img.CreatedAt = time.Now().UTC()

	m.slideshow[img.ID] = img
	m.slideshowOrder = append(m.slideshowOrder, img.ID)
	return img, nil
}

func (m *Memory) DeleteSlideshowImage(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.slideshow[id]; !ok {
		return errs.ErrNotFound
	}
	delete(m.slideshow, id)
	m.slideshowOrder = removeID(m.slideshowOrder, id)
	return nil
}

func (m *Memory) ListDisposalSlides(_ context.Context, state string) ([]content.DisposalSlideImage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]content.DisposalSlideImage, 0, len(m.disposalSlideOrder))
	for _, id := range m.disposalSlideOrder {
		img, ok := m.disposalSlides[id]
		if !ok {
			continue
		}
		if state != "" && !strings.EqualFold(img.State, state) {
			continue
		}
		result = append(result, img)
	}
	return result, nil
}

func (m *Memory) AddDisposalSlide(_ context.Context, img content.DisposalSlideImage) (content.DisposalSlideImage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if img.ID == "" {
		img.ID = m.nextIDLocked()
	}
	img.CreatedAt = time.Now().UTC()

	m.disposalSlides[img.ID] = img
	m.disposalSlideOrder = append(m.disposalSlideOrder, img.ID)
	return img, nil
}

func (m *Memory) DeleteDisposalSlide(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.disposalSlides[id]; !ok {
		return errs.ErrNotFound
	}
	delete(m.disposalSlides, id)
	m.disposalSlideOrder = removeID(m.disposalSlideOrder, id)
	return nil
}

// Helpers ---------------------------------------------------------------------

func removeID(order []string, id string) []string {
	for i, existing := range order {
		if existing == id {
			return append(order[:i], order[i+1:]...)
		}
	}
	return order
}

func cloneCompany(c company.Company) company.Company {
	c.Images = append([]string(nil), c.Images...)
	if c.CoverageRadius != nil {
		v := *c.CoverageRadius
		c.CoverageRadius = &v
	}
	if c.Latitude != nil {
		v := *c.Latitude
		c.Latitude = &v
	}
	if c.Longitude != nil {
		v := *c.Longitude
		c.Longitude = &v
	}
	return c
}

func cloneStatePage(p content.StateLandingPage) content.StateLandingPage {
	p.Images = append([]string(nil), p.Images...)
	return p
}
