// Package app wires configuration, storage and the domain services into a
// runnable application.
package app

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/hydrovacfinder/directory/internal/app/httpapi"
	"github.com/hydrovacfinder/directory/internal/app/metrics"
	companiessvc "github.com/hydrovacfinder/directory/internal/app/services/companies"
	contentsvc "github.com/hydrovacfinder/directory/internal/app/services/content"
	disposalssvc "github.com/hydrovacfinder/directory/internal/app/services/disposals"
	onboardingsvc "github.com/hydrovacfinder/directory/internal/app/services/onboarding"
	referralsvc "github.com/hydrovacfinder/directory/internal/app/services/referral"
	"github.com/hydrovacfinder/directory/internal/app/storage"
	"github.com/hydrovacfinder/directory/internal/app/storage/postgres"
	"github.com/hydrovacfinder/directory/internal/config"
	"github.com/hydrovacfinder/directory/internal/email"
	"github.com/hydrovacfinder/directory/internal/geocode"
	"github.com/hydrovacfinder/directory/internal/middleware"
	"github.com/hydrovacfinder/directory/internal/payments"
	"github.com/hydrovacfinder/directory/internal/platform/database"
	"github.com/hydrovacfinder/directory/internal/platform/migrations"
	"github.com/hydrovacfinder/directory/pkg/logger"
)

// Application ties the domain services together behind the HTTP handler.
type Application struct {
	Companies  *companiessvc.Service
	Disposals  *disposalssvc.Service
	Content    *contentsvc.Service
	Referral   *referralsvc.Service
	Onboarding *onboardingsvc.Service

	Handler http.Handler

	db  *sql.DB // nil when running without a datastore
	log *logger.Logger
}

// New builds a fully initialised application from configuration. With no
// database configured the service runs read-only against the embedded seed
// dataset; with no payment, geocoding or email credentials the corresponding
// endpoints report "not configured".
func New(ctx context.Context, cfg config.Config, log *logger.Logger) (*Application, error) {
	if log == nil {
		log = logger.NewDefault("app")
	}

	var db *sql.DB
	var store storage.Store
	if cfg.Database.Configured() {
		opened, err := database.Open(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		if err := migrations.Apply(ctx, opened); err != nil {
			opened.Close()
			return nil, err
		}
		db = opened
		store = postgres.New(opened)
		log.Info("datastore connected")
	} else {
		log.Warn("no datastore configured; serving embedded seed dataset, writes disabled")
	}

	// Collaborator constructors return nil when unconfigured. Keep the
	// interfaces nil in that case rather than holding a typed nil.
	var geocoder companiessvc.Geocoder
	if gc := geocode.New(cfg.Geocode, log); gc != nil {
		geocoder = gc
	} else {
		log.Warn("geocoding not configured; proximity search disabled")
	}

	paymentsClient := payments.New(cfg.Payments, log)
	if paymentsClient == nil {
		log.Warn("payments not configured; checkout and onboarding disabled")
	}

	var sender referralsvc.Sender
	if ec := email.New(cfg.Email, log); ec != nil {
		sender = ec
	} else {
		log.Warn("email not configured; referral dispatch disabled")
	}

	companies := companiessvc.New(companyStore(store), geocoder, log)
	disposals := disposalssvc.New(disposalStore(store), geocoder, log)
	contentService := contentsvc.New(contentStore(store), log)
	referral := referralsvc.New(sender, cfg.Email.ReferralTo, log)

	var sessions onboardingsvc.SessionReader
	if paymentsClient != nil {
		sessions = paymentsClient
	}
	onboarding := onboardingsvc.New(sessions, companies, log)

	adminAuth := middleware.NewAdminAuth(cfg.Admin, log)
	if adminAuth == nil {
		log.Warn("no admin credential configured; admin routes disabled")
	}

	handler := httpapi.NewHandler(httpapi.Services{
		Companies:  companies,
		Disposals:  disposals,
		Content:    contentService,
		Referral:   referral,
		Onboarding: onboarding,
		Payments:   paymentsClient,
		AdminAuth:  adminAuth,
		Log:        log,
	})

	cors := middleware.NewCORSMiddleware(cfg.CORS.AllowedOrigins)
	limiter := middleware.NewRateLimiter(50, 100, log)
	chained := metrics.InstrumentHandler(cors.Handler(limiter.Handler(handler)))

	return &Application{
		Companies:  companies,
		Disposals:  disposals,
		Content:    contentService,
		Referral:   referral,
		Onboarding: onboarding,
		Handler:    chained,
		db:         db,
		log:        log,
	}, nil
}

// Close releases the database connection, if any.
func (a *Application) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

// The store split keeps a nil aggregate store from turning into a non-nil
// per-resource interface.

func companyStore(s storage.Store) storage.CompanyStore {
	if s == nil {
		return nil
	}
	return s
}

func disposalStore(s storage.Store) storage.DisposalStore {
	if s == nil {
		return nil
	}
	return s
}

func contentStore(s storage.Store) storage.ContentStore {
	if s == nil {
		return nil
	}
	return s
}
