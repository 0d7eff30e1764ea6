package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hydrovacfinder/directory/internal/app/domain/company"
	"github.com/hydrovacfinder/directory/internal/app/domain/content"
	"github.com/hydrovacfinder/directory/internal/app/domain/geo"
	companiessvc "github.com/hydrovacfinder/directory/internal/app/services/companies"
	contentsvc "github.com/hydrovacfinder/directory/internal/app/services/content"
	disposalssvc "github.com/hydrovacfinder/directory/internal/app/services/disposals"
	onboardingsvc "github.com/hydrovacfinder/directory/internal/app/services/onboarding"
	referralsvc "github.com/hydrovacfinder/directory/internal/app/services/referral"
	"github.com/hydrovacfinder/directory/internal/app/storage"
	"github.com/hydrovacfinder/directory/internal/config"
	"github.com/hydrovacfinder/directory/internal/email"
	"github.com/hydrovacfinder/directory/internal/middleware"
)

type stubGeocoder struct {
	point geo.Point
	found bool
}

func (s stubGeocoder) Geocode(_ context.Context, _ string) (geo.Point, bool, error) {
	return s.point, s.found, nil
}

type captureSender struct {
	messages []email.Message
}

func (c *captureSender) Send(_ context.Context, msg email.Message) error {
	c.messages = append(c.messages, msg)
	return nil
}

func floatPtr(f float64) *float64 { return &f }

const testPassword = "letmein"

type fixture struct {
	handler http.Handler
	store   *storage.Memory
	sender  *captureSender
}

func newFixture(t *testing.T, geocoder companiessvc.Geocoder) fixture {
	t.Helper()

	store := storage.NewMemory()
	ctx := context.Background()
	seeds := []company.Company{
		{Name: "Basic Houston", City: "Houston", State: "Texas", Tier: "basic", Latitude: floatPtr(29.78), Longitude: floatPtr(-95.38)},
		{Name: "Premium Houston", City: "Houston", State: "Texas", Tier: "premium", Latitude: floatPtr(29.80), Longitude: floatPtr(-95.40)},
		{Name: "California", City: "Fresno", State: "California", Tier: "premium", Latitude: floatPtr(36.74), Longitude: floatPtr(-119.78)},
		{Name: "No Coords", City: "Austin", State: "Texas", Tier: "featured"},
	}
	for _, c := range seeds {
		if _, err := store.CreateCompany(ctx, c); err != nil {
			t.Fatalf("seed store: %v", err)
		}
	}

	sender := &captureSender{}
	auth := middleware.NewAdminAuth(config.AdminConfig{Password: testPassword, JWTSecret: "test-secret"}, nil)

	companies := companiessvc.New(store, geocoder, nil)
	handler := NewHandler(Services{
		Companies:  companies,
		Disposals:  disposalssvc.New(store, nil, nil),
		Content:    contentsvc.New(store, nil),
		Referral:   referralsvc.New(sender, "ap@hydrovacfinder.com", nil),
		Onboarding: onboardingsvc.New(nil, companies, nil),
		AdminAuth:  auth,
	})
	return fixture{handler: handler, store: store, sender: sender}
}

func doJSON(t *testing.T, h http.Handler, method, path, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, h http.Handler) string {
	t.Helper()

	rec := doJSON(t, h, http.MethodPost, "/api/admin/login", "", map[string]string{"password": testPassword})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: status %d body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("login response: %v", err)
	}
	return resp.Token
}

func TestHealthz(t *testing.T) {
	fx := newFixture(t, nil)

	rec := doJSON(t, fx.handler, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
}

func TestListCompaniesRanksByTier(t *testing.T) {
	fx := newFixture(t, nil)

	rec := doJSON(t, fx.handler, http.MethodGet, "/api/companies", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d body %s", rec.Code, rec.Body.String())
	}

	var listings []company.Listing
	if err := json.Unmarshal(rec.Body.Bytes(), &listings); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(listings) != 3 {
		t.Fatalf("expected 3 listings, got %d", len(listings))
	}
	if listings[0].Tier != company.TierPremium {
		t.Fatalf("premium must rank first, got %s", listings[0].Tier)
	}
}

func TestSearchCompaniesByQuery(t *testing.T) {
	fx := newFixture(t, stubGeocoder{point: geo.Point{Latitude: 29.76, Longitude: -95.37}, found: true})

	rec := doJSON(t, fx.handler, http.MethodGet, "/api/companies/search?q=Houston&radius=50", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d body %s", rec.Code, rec.Body.String())
	}

	var result companiessvc.SearchResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !result.LocationFound {
		t.Fatal("expected resolved location")
	}
	if len(result.Listings) != 2 {
		t.Fatalf("expected 2 Houston results, got %d", len(result.Listings))
	}
	if result.Listings[0].Name != "Basic Houston" {
		t.Fatalf("expected distance order, got %q first", result.Listings[0].Name)
	}
}

func TestSearchCompaniesByCoordinates(t *testing.T) {
	fx := newFixture(t, nil)

	rec := doJSON(t, fx.handler, http.MethodGet, "/api/companies/search?lat=29.76&lng=-95.37&radius=50", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d body %s", rec.Code, rec.Body.String())
	}

	var result companiessvc.SearchResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(result.Listings) != 2 {
		t.Fatalf("expected 2 results, got %d", len(result.Listings))
	}
}

func TestSearchCompaniesRejectsBadRadius(t *testing.T) {
	fx := newFixture(t, stubGeocoder{found: true})

	rec := doJSON(t, fx.handler, http.MethodGet, "/api/companies/search?q=Houston&radius=33", "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "radius") {
		t.Fatalf("expected radius message, got %s", rec.Body.String())
	}
}

func TestSearchCompaniesUnknownLocation(t *testing.T) {
	fx := newFixture(t, stubGeocoder{found: false})

	rec := doJSON(t, fx.handler, http.MethodGet, "/api/companies/search?q=xyzzyplugh&radius=50", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unknown location must not error: status %d", rec.Code)
	}

	var result companiessvc.SearchResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.LocationFound {
		t.Fatal("expected locationFound=false")
	}
}

func TestCreateCompanyRequiresAuth(t *testing.T) {
	fx := newFixture(t, nil)

	payload := companyPayload{Name: "New Co", City: "Austin", State: "Texas"}

	rec := doJSON(t, fx.handler, http.MethodPost, "/api/companies", "", payload)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	token := login(t, fx.handler)
	rec = doJSON(t, fx.handler, http.MethodPost, "/api/companies", token, payload)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body %s", rec.Code, rec.Body.String())
	}

	var created company.Company
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected assigned id")
	}
}

func TestCreateCompanyRejectsUnknownFields(t *testing.T) {
	fx := newFixture(t, nil)
	token := login(t, fx.handler)

	rec := doJSON(t, fx.handler, http.MethodPost, "/api/companies", token, map[string]any{
		"name": "X", "city": "Y", "state": "Z", "bogus": true,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown field, got %d", rec.Code)
	}
}

func TestCreateCompanyValidationErrors(t *testing.T) {
	fx := newFixture(t, nil)
	token := login(t, fx.handler)

	rec := doJSON(t, fx.handler, http.MethodPost, "/api/companies", token, companyPayload{Email: "not-an-email"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	var resp struct {
		Errors map[string]string `json:"errors"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, field := range []string{"name", "city", "state", "email"} {
		if _, ok := resp.Errors[field]; !ok {
			t.Fatalf("expected message for %q, got %#v", field, resp.Errors)
		}
	}
}

func TestDeleteCompanyRoundTrip(t *testing.T) {
	fx := newFixture(t, nil)
	token := login(t, fx.handler)

	rec := doJSON(t, fx.handler, http.MethodPost, "/api/companies", token, companyPayload{Name: "Doomed", City: "Austin", State: "Texas"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status %d", rec.Code)
	}
	var created company.Company
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	rec = doJSON(t, fx.handler, http.MethodDelete, "/api/companies/"+created.ID, token, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: status %d", rec.Code)
	}

	rec = doJSON(t, fx.handler, http.MethodGet, "/api/companies/"+created.ID, "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestAdminListIncludesUnlocatedCompanies(t *testing.T) {
	fx := newFixture(t, nil)
	token := login(t, fx.handler)

	rec := doJSON(t, fx.handler, http.MethodGet, "/api/admin/companies", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d body %s", rec.Code, rec.Body.String())
	}

	var records []company.Company
	if err := json.Unmarshal(rec.Body.Bytes(), &records); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("admin list must include unlocated records, got %d", len(records))
	}

	unlocated := false
	for _, r := range records {
		if r.Latitude == nil && r.Longitude == nil {
			unlocated = true
		}
	}
	if !unlocated {
		t.Fatal("expected an unlocated record in the admin list")
	}
}

func TestImportSeedRequiresAuth(t *testing.T) {
	fx := newFixture(t, nil)

	rec := doJSON(t, fx.handler, http.MethodPost, "/api/admin/import", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	token := login(t, fx.handler)
	rec = doJSON(t, fx.handler, http.MethodPost, "/api/admin/import", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("import: status %d body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Companies  companiessvc.ImportResult `json:"companies"`
		Facilities disposalssvc.ImportResult `json:"facilities"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Companies.Imported == 0 || resp.Facilities.Imported == 0 {
		t.Fatalf("expected records imported, got %+v", resp)
	}

	// Second run finds every record already present.
	rec = doJSON(t, fx.handler, http.MethodPost, "/api/admin/import", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("re-import: status %d", rec.Code)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Companies.Imported != 0 || resp.Facilities.Imported != 0 {
		t.Fatalf("re-import must not duplicate records, got %+v", resp)
	}
}

func TestDisposalSlideshowRoundTrip(t *testing.T) {
	fx := newFixture(t, nil)
	token := login(t, fx.handler)

	payload := content.DisposalSlideImage{State: "Texas", URL: "https://cdn.example.com/tx.jpg"}
	rec := doJSON(t, fx.handler, http.MethodPost, "/api/disposals/slideshow", "", payload)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	rec = doJSON(t, fx.handler, http.MethodPost, "/api/disposals/slideshow", token, payload)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add slide: status %d body %s", rec.Code, rec.Body.String())
	}
	var created content.DisposalSlideImage
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	rec = doJSON(t, fx.handler, http.MethodGet, "/api/disposals/slideshow?state=Texas", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: status %d", rec.Code)
	}
	var slides []content.DisposalSlideImage
	if err := json.Unmarshal(rec.Body.Bytes(), &slides); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(slides) != 1 || slides[0].ID != created.ID {
		t.Fatalf("expected the created slide, got %#v", slides)
	}

	rec = doJSON(t, fx.handler, http.MethodGet, "/api/disposals/slideshow?state=Ohio", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list ohio: status %d", rec.Code)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &slides); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(slides) != 0 {
		t.Fatalf("expected no Ohio slides, got %#v", slides)
	}

	rec = doJSON(t, fx.handler, http.MethodDelete, "/api/disposals/slideshow/"+created.ID, token, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: status %d", rec.Code)
	}
}

func TestGetHomepageNeverBlank(t *testing.T) {
	fx := newFixture(t, nil)

	rec := doJSON(t, fx.handler, http.MethodGet, "/api/homepage", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "heroTitle") {
		t.Fatalf("expected homepage copy, got %s", rec.Body.String())
	}
}

func TestReferralDispatchesEmail(t *testing.T) {
	fx := newFixture(t, nil)

	rec := doJSON(t, fx.handler, http.MethodPost, "/api/referral", "", referralsvc.Referral{
		Name:        "Jordan",
		Email:       "jordan@example.com",
		CompanyName: "Acme HydroVac",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d body %s", rec.Code, rec.Body.String())
	}
	if len(fx.sender.messages) != 1 {
		t.Fatalf("expected 1 email, got %d", len(fx.sender.messages))
	}
	if fx.sender.messages[0].To != "ap@hydrovacfinder.com" {
		t.Fatalf("unexpected recipient %q", fx.sender.messages[0].To)
	}
}

func TestCheckoutUnavailableWithoutPayments(t *testing.T) {
	fx := newFixture(t, nil)

	rec := doJSON(t, fx.handler, http.MethodPost, "/api/checkout", "", map[string]string{"product": "state-company"})
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestOnboardingValidateUnavailableWithoutPayments(t *testing.T) {
	fx := newFixture(t, nil)

	rec := doJSON(t, fx.handler, http.MethodGet, "/api/onboarding/validate?session_id=cs_123", "", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestAdminLoginWrongPassword(t *testing.T) {
	fx := newFixture(t, nil)

	rec := doJSON(t, fx.handler, http.MethodPost, "/api/admin/login", "", map[string]string{"password": "wrong"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAdminRoutesDisabledWithoutCredential(t *testing.T) {
	handler := NewHandler(Services{
		Companies:  companiessvc.New(nil, nil, nil),
		Disposals:  disposalssvc.New(nil, nil, nil),
		Content:    contentsvc.New(nil, nil),
		Referral:   referralsvc.New(nil, "", nil),
		Onboarding: onboardingsvc.New(nil, companiessvc.New(nil, nil, nil), nil),
	})

	rec := doJSON(t, handler, http.MethodPost, "/api/companies", "", companyPayload{Name: "X", City: "Y", State: "Z"})
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}
