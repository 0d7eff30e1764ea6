package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/hydrovacfinder/directory/internal/app/domain/company"
	"github.com/hydrovacfinder/directory/internal/app/domain/content"
	"github.com/hydrovacfinder/directory/internal/app/domain/disposal"
	"github.com/hydrovacfinder/directory/internal/app/errs"
	"github.com/hydrovacfinder/directory/internal/app/storage"
)

// Store implements the storage interfaces backed by PostgreSQL.
type Store struct {
	db *sql.DB
}

var _ storage.CompanyStore = (*Store)(nil)
var _ storage.DisposalStore = (*Store)(nil)
var _ storage.ContentStore = (*Store)(nil)

// New creates a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// --- CompanyStore -----------------------------------------------------------

func (s *Store) CreateCompany(ctx context.Context, c company.Company) (company.Company, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	imagesJSON, err := json.Marshal(c.Images)
	if err != nil {
		return company.Company{}, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO directory_companies (id, name, city, state, address, phone, website, email, tier, coverage_radius, latitude, longitude, union_affiliated, specialties, images, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`, c.ID, c.Name, c.City, c.State, c.Address, c.Phone, c.Website, c.Email, c.Tier, toNullInt(c.CoverageRadius), toNullFloat(c.Latitude), toNullFloat(c.Longitude), c.UnionAffiliated, c.Specialties, imagesJSON, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return company.Company{}, err
	}
	return c, nil
}

func (s *Store) UpdateCompany(ctx context.Context, c company.Company) (company.Company, error) {
	existing, err := s.GetCompany(ctx, c.ID)
	if err != nil {
		return company.Company{}, err
	}

	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = time.Now().UTC()

	imagesJSON, err := json.Marshal(c.Images)
	if err != nil {
		return company.Company{}, err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE directory_companies
		SET name = $2, city = $3, state = $4, address = $5, phone = $6, website = $7, email = $8, tier = $9, coverage_radius = $10, latitude = $11, longitude = $12, union_affiliated = $13, specialties = $14, images = $15, updated_at = $16
		WHERE id = $1
	`, c.ID, c.Name, c.City, c.State, c.Address, c.Phone, c.Website, c.Email, c.Tier, toNullInt(c.CoverageRadius), toNullFloat(c.Latitude), toNullFloat(c.Longitude), c.UnionAffiliated, c.Specialties, imagesJSON, c.UpdatedAt)
	if err != nil {
		return company.Company{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return company.Company{}, errs.ErrNotFound
	}
	return c, nil
}

func (s *Store) GetCompany(ctx context.Context, id string) (company.Company, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, city, state, address, phone, website, email, tier, coverage_radius, latitude, longitude, union_affiliated, specialties, images, created_at, updated_at
		FROM directory_companies
		WHERE id = $1
	`, id)

	c, err := scanCompany(row)
	if errors.Is(err, sql.ErrNoRows) {
		return company.Company{}, errs.ErrNotFound
	}
	return c, err
}

func (s *Store) ListCompanies(ctx context.Context) ([]company.Company, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, city, state, address, phone, website, email, tier, coverage_radius, latitude, longitude, union_affiliated, specialties, images, created_at, updated_at
		FROM directory_companies
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []company.Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func (s *Store) DeleteCompany(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM directory_companies WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return errs.ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCompany(row scanner) (company.Company, error) {
	var (
		c         company.Company
		radius    sql.NullInt64
		lat, lng  sql.NullFloat64
		imagesRaw []byte
	)
	if err := row.Scan(&c.ID, &c.Name, &c.City, &c.State, &c.Address, &c.Phone, &c.Website, &c.Email, &c.Tier, &radius, &lat, &lng, &c.UnionAffiliated, &c.Specialties, &imagesRaw, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return company.Company{}, err
	}
	if radius.Valid {
		v := int(radius.Int64)
		c.CoverageRadius = &v
	}
	if lat.Valid {
		v := lat.Float64
		c.Latitude = &v
	}
	if lng.Valid {
		v := lng.Float64
		c.Longitude = &v
	}
	if len(imagesRaw) > 0 {
		_ = json.Unmarshal(imagesRaw, &c.Images)
	}
	return c, nil
}

// --- DisposalStore ----------------------------------------------------------

func (s *Store) CreateFacility(ctx context.Context, f disposal.Facility) (disposal.Facility, error) {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	f.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO directory_disposal_facilities (id, name, address, city, state, phone, hours, materials_accepted, latitude, longitude, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, f.ID, f.Name, f.Address, f.City, f.State, f.Phone, f.Hours, f.MaterialsAccepted, toNullFloat(f.Latitude), toNullFloat(f.Longitude), f.CreatedAt)
	if err != nil {
		return disposal.Facility{}, err
	}
	return f, nil
}

func (s *Store) UpdateFacility(ctx context.Context, f disposal.Facility) (disposal.Facility, error) {
	existing, err := s.GetFacility(ctx, f.ID)
	if err != nil {
		return disposal.Facility{}, err
	}

	f.CreatedAt = existing.CreatedAt

	result, err := s.db.ExecContext(ctx, `
		UPDATE directory_disposal_facilities
		SET name = $2, address = $3, city = $4, state = $5, phone = $6, hours = $7, materials_accepted = $8, latitude = $9, longitude = $10
		WHERE id = $1
	`, f.ID, f.Name, f.Address, f.City, f.State, f.Phone, f.Hours, f.MaterialsAccepted, toNullFloat(f.Latitude), toNullFloat(f.Longitude))
	if err != nil {
		return disposal.Facility{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return disposal.Facility{}, errs.ErrNotFound
	}
	return f, nil
}

func (s *Store) GetFacility(ctx context.Context, id string) (disposal.Facility, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, address, city, state, phone, hours, materials_accepted, latitude, longitude, created_at
		FROM directory_disposal_facilities
		WHERE id = $1
	`, id)

	f, err := scanFacility(row)
	if errors.Is(err, sql.ErrNoRows) {
		return disposal.Facility{}, errs.ErrNotFound
	}
	return f, err
}

func (s *Store) ListFacilities(ctx context.Context) ([]disposal.Facility, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, address, city, state, phone, hours, materials_accepted, latitude, longitude, created_at
		FROM directory_disposal_facilities
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []disposal.Facility
	for rows.Next() {
		f, err := scanFacility(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, f)
	}
	return result, rows.Err()
}

func (s *Store) DeleteFacility(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM directory_disposal_facilities WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func scanFacility(row scanner) (disposal.Facility, error) {
	var (
		f        disposal.Facility
		lat, lng sql.NullFloat64
	)
	if err := row.Scan(&f.ID, &f.Name, &f.Address, &f.City, &f.State, &f.Phone, &f.Hours, &f.MaterialsAccepted, &lat, &lng, &f.CreatedAt); err != nil {
		return disposal.Facility{}, err
	}
	if lat.Valid {
		v := lat.Float64
		f.Latitude = &v
	}
	if lng.Valid {
		v := lng.Float64
		f.Longitude = &v
	}
	return f, nil
}

// --- ContentStore: state pages ----------------------------------------------

func (s *Store) CreateStatePage(ctx context.Context, p content.StateLandingPage) (content.StateLandingPage, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	imagesJSON, err := json.Marshal(p.Images)
	if err != nil {
		return content.StateLandingPage{}, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO directory_state_pages (id, state, header, description, logo_url, images, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, p.ID, p.State, p.Header, p.Description, p.LogoURL, imagesJSON, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return content.StateLandingPage{}, err
	}
	return p, nil
}

func (s *Store) UpdateStatePage(ctx context.Context, p content.StateLandingPage) (content.StateLandingPage, error) {
	existing, err := s.GetStatePage(ctx, p.ID)
	if err != nil {
		return content.StateLandingPage{}, err
	}

	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = time.Now().UTC()

	imagesJSON, err := json.Marshal(p.Images)
	if err != nil {
		return content.StateLandingPage{}, err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE directory_state_pages
		SET state = $2, header = $3, description = $4, logo_url = $5, images = $6, updated_at = $7
		WHERE id = $1
	`, p.ID, p.State, p.Header, p.Description, p.LogoURL, imagesJSON, p.UpdatedAt)
	if err != nil {
		return content.StateLandingPage{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return content.StateLandingPage{}, errs.ErrNotFound
	}
	return p, nil
}

func (s *Store) GetStatePage(ctx context.Context, id string) (content.StateLandingPage, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, state, header, description, logo_url, images, created_at, updated_at
		FROM directory_state_pages
		WHERE id = $1
	`, id)

	var (
		p         content.StateLandingPage
		imagesRaw []byte
	)
	if err := row.Scan(&p.ID, &p.State, &p.Header, &p.Description, &p.LogoURL, &imagesRaw, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return content.StateLandingPage{}, errs.ErrNotFound
		}
		return content.StateLandingPage{}, err
	}
	if len(imagesRaw) > 0 {
		_ = json.Unmarshal(imagesRaw, &p.Images)
	}
	return p, nil
}

func (s *Store) ListStatePages(ctx context.Context) ([]content.StateLandingPage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, state, header, description, logo_url, images, created_at, updated_at
		FROM directory_state_pages
		ORDER BY state
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []content.StateLandingPage
	for rows.Next() {
		var (
			p         content.StateLandingPage
			imagesRaw []byte
		)
		if err := rows.Scan(&p.ID, &p.State, &p.Header, &p.Description, &p.LogoURL, &imagesRaw, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		if len(imagesRaw) > 0 {
			_ = json.Unmarshal(imagesRaw, &p.Images)
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (s *Store) DeleteStatePage(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM directory_state_pages WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// --- ContentStore: pricing tiers --------------------------------------------

func (s *Store) CreatePricingTier(ctx context.Context, t content.PricingTier) (content.PricingTier, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO directory_pricing_tiers (id, name, monthly, annual, sort_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, t.ID, t.Name, t.Monthly, t.Annual, t.SortOrder, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return content.PricingTier{}, err
	}
	return t, nil
}

func (s *Store) UpdatePricingTier(ctx context.Context, t content.PricingTier) (content.PricingTier, error) {
	existing, err := s.GetPricingTier(ctx, t.ID)
	if err != nil {
		return content.PricingTier{}, err
	}

	t.CreatedAt = existing.CreatedAt
	t.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE directory_pricing_tiers
		SET name = $2, monthly = $3, annual = $4, sort_order = $5, updated_at = $6
		WHERE id = $1
	`, t.ID, t.Name, t.Monthly, t.Annual, t.SortOrder, t.UpdatedAt)
	if err != nil {
		return content.PricingTier{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return content.PricingTier{}, errs.ErrNotFound
	}
	return t, nil
}

func (s *Store) GetPricingTier(ctx context.Context, id string) (content.PricingTier, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, monthly, annual, sort_order, created_at, updated_at
		FROM directory_pricing_tiers
		WHERE id = $1
	`, id)

	var t content.PricingTier
	if err := row.Scan(&t.ID, &t.Name, &t.Monthly, &t.Annual, &t.SortOrder, &t.CreatedAt, &t.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return content.PricingTier{}, errs.ErrNotFound
		}
		return content.PricingTier{}, err
	}
	return t, nil
}

func (s *Store) ListPricingTiers(ctx context.Context) ([]content.PricingTier, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, monthly, annual, sort_order, created_at, updated_at
		FROM directory_pricing_tiers
		ORDER BY sort_order
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []content.PricingTier
	for rows.Next() {
		var t content.PricingTier
		if err := rows.Scan(&t.ID, &t.Name, &t.Monthly, &t.Annual, &t.SortOrder, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

func (s *Store) DeletePricingTier(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM directory_pricing_tiers WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// --- ContentStore: homepage and slideshow -----------------------------------

func (s *Store) GetHomepage(ctx context.Context) (content.HomepageContent, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, hero_title, hero_subtitle, main_image, slideshow_enabled, created_at, updated_at
		FROM directory_homepage
		ORDER BY created_at
		LIMIT 1
	`)

	var h content.HomepageContent
	if err := row.Scan(&h.ID, &h.HeroTitle, &h.HeroSubtitle, &h.MainImage, &h.SlideshowEnabled, &h.CreatedAt, &h.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return content.HomepageContent{}, errs.ErrNotFound
		}
		return content.HomepageContent{}, err
	}
	return h, nil
}

func (s *Store) SaveHomepage(ctx context.Context, h content.HomepageContent) (content.HomepageContent, error) {
	existing, err := s.GetHomepage(ctx)
	now := time.Now().UTC()

	switch {
	case err == nil:
		h.ID = existing.ID
		h.CreatedAt = existing.CreatedAt
		h.UpdatedAt = now

		_, err = s.db.ExecContext(ctx, `
			UPDATE directory_homepage
			SET hero_title = $2, hero_subtitle = $3, main_image = $4, slideshow_enabled = $5, updated_at = $6
			WHERE id = $1
		`, h.ID, h.HeroTitle, h.HeroSubtitle, h.MainImage, h.SlideshowEnabled, h.UpdatedAt)
		if err != nil {
			return content.HomepageContent{}, err
		}
		return h, nil

	case errors.Is(err, errs.ErrNotFound):
		if h.ID == "" {
			h.ID = uuid.NewString()
		}
		h.CreatedAt = now
		h.UpdatedAt = now

		_, err = s.db.ExecContext(ctx, `
			INSERT INTO directory_homepage (id, hero_title, hero_subtitle, main_image, slideshow_enabled, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, h.ID, h.HeroTitle, h.HeroSubtitle, h.MainImage, h.SlideshowEnabled, h.CreatedAt, h.UpdatedAt)
		if err != nil {
			return content.HomepageContent{}, err
		}
		return h, nil

	default:
		return content.HomepageContent{}, err
	}
}

func (s *Store) ListSlideshowImages(ctx context.Context) ([]content.SlideshowImage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, url, caption, sort_order, created_at
		FROM directory_slideshow_images
		ORDER BY sort_order, created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []content.SlideshowImage
	for rows.Next() {
		var img content.SlideshowImage
		if err := rows.Scan(&img.ID, &img.URL, &img.Caption, &img.SortOrder, &img.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, img)
	}
	return result, rows.Err()
}

func (s *Store) AddSlideshowImage(ctx context.Context, img content.SlideshowImage) (content.SlideshowImage, error) {
	if img.ID == "" {
		img.ID = uuid.NewString()
	}
	img.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO directory_slideshow_images (id, url, caption, sort_order, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, img.ID, img.URL, img.Caption, img.SortOrder, img.CreatedAt)
	if err != nil {
		return content.SlideshowImage{}, err
	}
	return img, nil
}

func (s *Store) DeleteSlideshowImage(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM directory_slideshow_images WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (s *Store) ListDisposalSlides(ctx context.Context, state string) ([]content.DisposalSlideImage, error) {
	query := `
		SELECT id, state, image_url, caption, sort_order, created_at
		FROM directory_disposal_slides
	`
	var args []any
	if state != "" {
		query += ` WHERE LOWER(state) = LOWER($1)`
		args = append(args, state)
	}
	query += ` ORDER BY sort_order, created_at`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []content.DisposalSlideImage
	for rows.Next() {
		var img content.DisposalSlideImage
		if err := rows.Scan(&img.ID, &img.State, &img.URL, &img.Caption, &img.SortOrder, &img.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, img)
	}
	return result, rows.Err()
}

func (s *Store) AddDisposalSlide(ctx context.Context, img content.DisposalSlideImage) (content.DisposalSlideImage, error) {
	if img.ID == "" {
		img.ID = uuid.NewString()
	}
	img.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO directory_disposal_slides (id, state, image_url, caption, sort_order, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, img.ID, img.State, img.URL, img.Caption, img.SortOrder, img.CreatedAt)
	if err != nil {
		return content.DisposalSlideImage{}, err
	}
	return img, nil
}

func (s *Store) DeleteDisposalSlide(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM directory_disposal_slides WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func toNullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func toNullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
