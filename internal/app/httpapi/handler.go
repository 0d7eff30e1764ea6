// Package httpapi exposes the public and admin REST API.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/hydrovacfinder/directory/internal/app/domain/company"
	"github.com/hydrovacfinder/directory/internal/app/domain/content"
	"github.com/hydrovacfinder/directory/internal/app/domain/disposal"
	"github.com/hydrovacfinder/directory/internal/app/domain/geo"
	"github.com/hydrovacfinder/directory/internal/app/errs"
	"github.com/hydrovacfinder/directory/internal/app/metrics"
	companiessvc "github.com/hydrovacfinder/directory/internal/app/services/companies"
	contentsvc "github.com/hydrovacfinder/directory/internal/app/services/content"
	disposalssvc "github.com/hydrovacfinder/directory/internal/app/services/disposals"
	onboardingsvc "github.com/hydrovacfinder/directory/internal/app/services/onboarding"
	referralsvc "github.com/hydrovacfinder/directory/internal/app/services/referral"
	"github.com/hydrovacfinder/directory/internal/app/transform"
	"github.com/hydrovacfinder/directory/internal/middleware"
	"github.com/hydrovacfinder/directory/internal/payments"
	"github.com/hydrovacfinder/directory/pkg/logger"
)

const maxRequestBody = 1 << 20

// Services bundles everything the handler serves.
type Services struct {
	Companies  *companiessvc.Service
	Disposals  *disposalssvc.Service
	Content    *contentsvc.Service
	Referral   *referralsvc.Service
	Onboarding *onboardingsvc.Service
	Payments   *payments.Client // nil when unconfigured
	AdminAuth  *middleware.AdminAuth
	Log        *logger.Logger
}

type handler struct {
	svc Services
	log *logger.Logger
}

// NewHandler returns the API router.
func NewHandler(svc Services) http.Handler {
	log := svc.Log
	if log == nil {
		log = logger.NewDefault("httpapi")
	}
	h := &handler{svc: svc, log: log}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", h.health).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/companies", h.listCompanies).Methods(http.MethodGet)
	api.HandleFunc("/companies", h.admin(h.createCompany)).Methods(http.MethodPost)
	api.HandleFunc("/companies/search", h.searchCompanies).Methods(http.MethodGet)
	api.HandleFunc("/companies/{id}", h.getCompany).Methods(http.MethodGet)
	api.HandleFunc("/companies/{id}", h.admin(h.updateCompany)).Methods(http.MethodPut)
	api.HandleFunc("/companies/{id}", h.admin(h.deleteCompany)).Methods(http.MethodDelete)

	api.HandleFunc("/disposals", h.listDisposals).Methods(http.MethodGet)
	api.HandleFunc("/disposals", h.admin(h.createDisposal)).Methods(http.MethodPost)
	api.HandleFunc("/disposals/search", h.searchDisposals).Methods(http.MethodGet)
	api.HandleFunc("/disposals/slideshow", h.listDisposalSlides).Methods(http.MethodGet)
	api.HandleFunc("/disposals/slideshow", h.admin(h.addDisposalSlide)).Methods(http.MethodPost)
	api.HandleFunc("/disposals/slideshow/{id}", h.admin(h.deleteDisposalSlide)).Methods(http.MethodDelete)
	api.HandleFunc("/disposals/{id}", h.getDisposal).Methods(http.MethodGet)
	api.HandleFunc("/disposals/{id}", h.admin(h.updateDisposal)).Methods(http.MethodPut)
	api.HandleFunc("/disposals/{id}", h.admin(h.deleteDisposal)).Methods(http.MethodDelete)

	api.HandleFunc("/state", h.listStatePages).Methods(http.MethodGet)
	api.HandleFunc("/state", h.admin(h.createStatePage)).Methods(http.MethodPost)
	api.HandleFunc("/state/{state}", h.getStatePage).Methods(http.MethodGet)
	api.HandleFunc("/state/{id}", h.admin(h.updateStatePage)).Methods(http.MethodPut)
	api.HandleFunc("/state/{id}", h.admin(h.deleteStatePage)).Methods(http.MethodDelete)

	api.HandleFunc("/pricing", h.listPricing).Methods(http.MethodGet)
	api.HandleFunc("/pricing", h.admin(h.createPricingTier)).Methods(http.MethodPost)
	api.HandleFunc("/pricing/{id}", h.admin(h.updatePricingTier)).Methods(http.MethodPut)
	api.HandleFunc("/pricing/{id}", h.admin(h.deletePricingTier)).Methods(http.MethodDelete)

	api.HandleFunc("/homepage", h.getHomepage).Methods(http.MethodGet)
	api.HandleFunc("/homepage", h.admin(h.saveHomepage)).Methods(http.MethodPut)
	api.HandleFunc("/homepage/slideshow", h.listSlideshow).Methods(http.MethodGet)
	api.HandleFunc("/homepage/slideshow", h.admin(h.addSlideshowImage)).Methods(http.MethodPost)
	api.HandleFunc("/homepage/slideshow/{id}", h.admin(h.deleteSlideshowImage)).Methods(http.MethodDelete)

	api.HandleFunc("/checkout", h.createCheckout).Methods(http.MethodPost)
	api.HandleFunc("/webhooks/payment", h.paymentWebhook).Methods(http.MethodPost)
	api.HandleFunc("/onboarding/validate", h.validateOnboarding).Methods(http.MethodGet)
	api.HandleFunc("/onboarding", h.submitOnboarding).Methods(http.MethodPost)
	api.HandleFunc("/referral", h.submitReferral).Methods(http.MethodPost)

	api.HandleFunc("/admin/login", h.adminLogin).Methods(http.MethodPost)
	api.HandleFunc("/admin/companies", h.admin(h.adminListCompanies)).Methods(http.MethodGet)
	api.HandleFunc("/admin/disposals", h.admin(h.adminListDisposals)).Methods(http.MethodGet)
	api.HandleFunc("/admin/import", h.admin(h.importSeed)).Methods(http.MethodPost)

	return r
}

// admin guards a mutating route with the bearer session token. With no admin
// credential configured the route reports 503 rather than 401.
func (h *handler) admin(next http.HandlerFunc) http.HandlerFunc {
	if h.svc.AdminAuth == nil {
		return func(w http.ResponseWriter, _ *http.Request) {
			writeError(w, http.StatusServiceUnavailable, fmt.Errorf("admin access not configured"))
		}
	}
	guarded := h.svc.AdminAuth.Handler(next)
	return guarded.ServeHTTP
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- Companies ---------------------------------------------------------------

func (h *handler) listCompanies(w http.ResponseWriter, r *http.Request) {
	listings, err := h.svc.Companies.List(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listings)
}

func (h *handler) searchCompanies(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	radius := 50.0
	if raw := q.Get("radius"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			h.writeServiceError(w, errs.NewValidation("radius", "radius must be a number"))
			return
		}
		radius = parsed
	}

	// The browser geolocation flow supplies coordinates directly and skips
	// geocoding.
	if q.Get("lat") != "" || q.Get("lng") != "" {
		lat, latErr := strconv.ParseFloat(q.Get("lat"), 64)
		lng, lngErr := strconv.ParseFloat(q.Get("lng"), 64)
		if latErr != nil || lngErr != nil {
			h.writeServiceError(w, errs.NewValidation("lat", "lat and lng must both be numbers"))
			return
		}
		result, err := h.svc.Companies.SearchNear(r.Context(), geo.Point{Latitude: lat, Longitude: lng}, radius)
		if err != nil {
			metrics.RecordSearch("error")
			h.writeServiceError(w, err)
			return
		}
		metrics.RecordSearch("hit")
		writeJSON(w, http.StatusOK, result)
		return
	}

	result, err := h.svc.Companies.Search(r.Context(), q.Get("q"), radius)
	if err != nil {
		metrics.RecordSearch("error")
		h.writeServiceError(w, err)
		return
	}
	metrics.RecordSearch(searchOutcome(result.LocationFound))
	writeJSON(w, http.StatusOK, result)
}

func searchOutcome(locationFound bool) string {
	if locationFound {
		return "hit"
	}
	return "no_location"
}

// adminListCompanies returns raw records, unlocated companies included, so
// the dashboard can edit records the public views drop.
func (h *handler) adminListCompanies(w http.ResponseWriter, r *http.Request) {
	records, err := h.svc.Companies.ListRecords(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *handler) getCompany(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.Companies.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// companyPayload is the canonical write shape for company records.
// Specialties is accepted as a list and stored delimited.
type companyPayload struct {
	Name            string   `json:"name"`
	City            string   `json:"city"`
	State           string   `json:"state"`
	Address         string   `json:"address"`
	Phone           string   `json:"phone"`
	Website         string   `json:"website"`
	Email           string   `json:"email"`
	Tier            string   `json:"tier"`
	CoverageRadius  *int     `json:"coverageRadius"`
	Latitude        *float64 `json:"latitude"`
	Longitude       *float64 `json:"longitude"`
	UnionAffiliated bool     `json:"unionAffiliated"`
	Specialties     []string `json:"specialties"`
	Images          []string `json:"images"`
}

func (p companyPayload) toRecord(id string) company.Company {
	return company.Company{
		ID:              id,
		Name:            p.Name,
		City:            p.City,
		State:           p.State,
		Address:         p.Address,
		Phone:           p.Phone,
		Website:         p.Website,
		Email:           p.Email,
		Tier:            p.Tier,
		CoverageRadius:  p.CoverageRadius,
		Latitude:        p.Latitude,
		Longitude:       p.Longitude,
		UnionAffiliated: p.UnionAffiliated,
		Specialties:     transform.JoinDelimited(p.Specialties),
		Images:          p.Images,
	}
}

func (h *handler) createCompany(w http.ResponseWriter, r *http.Request) {
	var payload companyPayload
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	created, err := h.svc.Companies.Create(r.Context(), payload.toRecord(""))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *handler) updateCompany(w http.ResponseWriter, r *http.Request) {
	var payload companyPayload
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	updated, err := h.svc.Companies.Update(r.Context(), payload.toRecord(mux.Vars(r)["id"]))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *handler) deleteCompany(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Companies.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Disposals ---------------------------------------------------------------

func (h *handler) listDisposals(w http.ResponseWriter, r *http.Request) {
	listings, err := h.svc.Disposals.List(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listings)
}

func (h *handler) searchDisposals(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	radius := 50.0
	if raw := q.Get("radius"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			h.writeServiceError(w, errs.NewValidation("radius", "radius must be a number"))
			return
		}
		radius = parsed
	}

	result, err := h.svc.Disposals.Search(r.Context(), q.Get("q"), radius)
	if err != nil {
		metrics.RecordSearch("error")
		h.writeServiceError(w, err)
		return
	}
	metrics.RecordSearch(searchOutcome(result.LocationFound))
	writeJSON(w, http.StatusOK, result)
}

func (h *handler) adminListDisposals(w http.ResponseWriter, r *http.Request) {
	records, err := h.svc.Disposals.ListRecords(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// importSeed loads the embedded dataset into the configured datastore. It is
// the bridge from a fresh database to a populated directory and is safe to
// re-run: existing records are skipped, not duplicated.
func (h *handler) importSeed(w http.ResponseWriter, r *http.Request) {
	companies, err := h.svc.Companies.ImportSeed(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	facilities, err := h.svc.Disposals.ImportSeed(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.log.WithField("companies", companies.Imported).
		WithField("facilities", facilities.Imported).
		Info("seed dataset imported")
	writeJSON(w, http.StatusOK, map[string]any{
		"companies":  companies,
		"facilities": facilities,
	})
}

func (h *handler) getDisposal(w http.ResponseWriter, r *http.Request) {
	f, err := h.svc.Disposals.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

type facilityPayload struct {
	Name              string   `json:"name"`
	Address           string   `json:"address"`
	City              string   `json:"city"`
	State             string   `json:"state"`
	Phone             string   `json:"phone"`
	Hours             string   `json:"hours"`
	MaterialsAccepted []string `json:"materialsAccepted"`
	Latitude          *float64 `json:"latitude"`
	Longitude         *float64 `json:"longitude"`
}

func (p facilityPayload) toRecord(id string) disposal.Facility {
	return disposal.Facility{
		ID:                id,
		Name:              p.Name,
		Address:           p.Address,
		City:              p.City,
		State:             p.State,
		Phone:             p.Phone,
		Hours:             p.Hours,
		MaterialsAccepted: transform.JoinDelimited(p.MaterialsAccepted),
		Latitude:          p.Latitude,
		Longitude:         p.Longitude,
	}
}

func (h *handler) createDisposal(w http.ResponseWriter, r *http.Request) {
	var payload facilityPayload
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	created, err := h.svc.Disposals.Create(r.Context(), payload.toRecord(""))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *handler) updateDisposal(w http.ResponseWriter, r *http.Request) {
	var payload facilityPayload
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	updated, err := h.svc.Disposals.Update(r.Context(), payload.toRecord(mux.Vars(r)["id"]))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *handler) deleteDisposal(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Disposals.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Content -----------------------------------------------------------------

func (h *handler) listStatePages(w http.ResponseWriter, r *http.Request) {
	pages, err := h.svc.Content.ListStatePages(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pages)
}

func (h *handler) getStatePage(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.Content.GetStatePageByState(r.Context(), mux.Vars(r)["state"])
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *handler) createStatePage(w http.ResponseWriter, r *http.Request) {
	var page content.StateLandingPage
	if err := decodeJSON(r.Body, &page); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	created, err := h.svc.Content.CreateStatePage(r.Context(), page)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *handler) updateStatePage(w http.ResponseWriter, r *http.Request) {
	var page content.StateLandingPage
	if err := decodeJSON(r.Body, &page); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	page.ID = mux.Vars(r)["id"]

	updated, err := h.svc.Content.UpdateStatePage(r.Context(), page)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *handler) deleteStatePage(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Content.DeleteStatePage(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) listPricing(w http.ResponseWriter, r *http.Request) {
	tiers, err := h.svc.Content.ListPricingTiers(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tiers)
}

func (h *handler) createPricingTier(w http.ResponseWriter, r *http.Request) {
	var tier content.PricingTier
	if err := decodeJSON(r.Body, &tier); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	created, err := h.svc.Content.CreatePricingTier(r.Context(), tier)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *handler) updatePricingTier(w http.ResponseWriter, r *http.Request) {
	var tier content.PricingTier
	if err := decodeJSON(r.Body, &tier); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	tier.ID = mux.Vars(r)["id"]

	updated, err := h.svc.Content.UpdatePricingTier(r.Context(), tier)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *handler) deletePricingTier(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Content.DeletePricingTier(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) getHomepage(w http.ResponseWriter, r *http.Request) {
	homepage, err := h.svc.Content.GetHomepage(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, homepage)
}

func (h *handler) saveHomepage(w http.ResponseWriter, r *http.Request) {
	var homepage content.HomepageContent
	if err := decodeJSON(r.Body, &homepage); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	saved, err := h.svc.Content.SaveHomepage(r.Context(), homepage)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (h *handler) listSlideshow(w http.ResponseWriter, r *http.Request) {
	images, err := h.svc.Content.ListSlideshowImages(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, images)
}

func (h *handler) addSlideshowImage(w http.ResponseWriter, r *http.Request) {
	var img content.SlideshowImage
	if err := decodeJSON(r.Body, &img); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	added, err := h.svc.Content.AddSlideshowImage(r.Context(), img)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, added)
}

func (h *handler) deleteSlideshowImage(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Content.DeleteSlideshowImage(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) listDisposalSlides(w http.ResponseWriter, r *http.Request) {
	images, err := h.svc.Content.ListDisposalSlides(r.Context(), r.URL.Query().Get("state"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, images)
}

func (h *handler) addDisposalSlide(w http.ResponseWriter, r *http.Request) {
	var img content.DisposalSlideImage
	if err := decodeJSON(r.Body, &img); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	added, err := h.svc.Content.AddDisposalSlide(r.Context(), img)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, added)
}

func (h *handler) deleteDisposalSlide(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Content.DeleteDisposalSlide(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Payments and onboarding -------------------------------------------------

func (h *handler) createCheckout(w http.ResponseWriter, r *http.Request) {
	if h.svc.Payments == nil {
		h.writeServiceError(w, errs.ErrNotConfigured)
		return
	}

	var payload struct {
		Product    string `json:"product"`
		SuccessURL string `json:"successUrl"`
		CancelURL  string `json:"cancelUrl"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	session, err := h.svc.Payments.CreateCheckoutSession(r.Context(), payload.Product, payload.SuccessURL, payload.CancelURL)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"sessionId": session.ID, "url": session.URL})
}

func (h *handler) paymentWebhook(w http.ResponseWriter, r *http.Request) {
	if h.svc.Payments == nil {
		h.writeServiceError(w, errs.ErrNotConfigured)
		return
	}

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := h.svc.Payments.VerifySignature(payload, r.Header.Get("Stripe-Signature"), time.Now()); err != nil {
		h.log.WithError(err).Warn("webhook signature rejected")
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid signature"))
		return
	}

	event := payments.ParseEvent(payload)
	h.log.WithField("event_id", event.ID).
		WithField("type", event.Type).
		WithField("session_id", event.Session.ID).
		Info("payment event received")

	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}

func (h *handler) validateOnboarding(w http.ResponseWriter, r *http.Request) {
	info, err := h.svc.Onboarding.ValidateSession(r.Context(), r.URL.Query().Get("session_id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (h *handler) submitOnboarding(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SessionID string         `json:"sessionId"`
		Company   companyPayload `json:"company"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	created, err := h.svc.Onboarding.Submit(r.Context(), payload.SessionID, payload.Company.toRecord(""))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// --- Referral and admin login ------------------------------------------------

func (h *handler) submitReferral(w http.ResponseWriter, r *http.Request) {
	var payload referralsvc.Referral
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := h.svc.Referral.Submit(r.Context(), payload); err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"sent": true})
}

func (h *handler) adminLogin(w http.ResponseWriter, r *http.Request) {
	if h.svc.AdminAuth == nil {
		h.writeServiceError(w, errs.ErrNotConfigured)
		return
	}

	var payload struct {
		Password string `json:"password"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	token, err := h.svc.AdminAuth.Login(payload.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, fmt.Errorf("invalid credentials"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// --- Helpers -----------------------------------------------------------------

// writeServiceError maps the error taxonomy onto HTTP statuses: validation
// 400, not found 404, not configured 503, upstream 400/500, anything else
// 500 with a generic message.
func (h *handler) writeServiceError(w http.ResponseWriter, err error) {
	var verr *errs.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":  "validation failed",
			"errors": verr.Fields,
		})
		return
	}

	if errors.Is(err, errs.ErrNotFound) {
		writeError(w, http.StatusNotFound, errs.ErrNotFound)
		return
	}
	if errors.Is(err, errs.ErrNotConfigured) {
		writeError(w, http.StatusServiceUnavailable, errs.ErrNotConfigured)
		return
	}

	var uerr *errs.UpstreamError
	if errors.As(err, &uerr) {
		status := http.StatusInternalServerError
		if uerr.CallerError {
			status = http.StatusBadRequest
		}
		h.log.WithError(uerr.Err).WithField("service", uerr.Service).Error("upstream call failed")
		writeError(w, status, fmt.Errorf("%s unavailable", uerr.Service))
		return
	}

	h.log.WithError(err).Error("unexpected error")
	writeError(w, http.StatusInternalServerError, fmt.Errorf("internal error"))
}

func decodeJSON(body io.ReadCloser, dst interface{}) error {
	defer body.Close()
	dec := json.NewDecoder(io.LimitReader(body, maxRequestBody))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
