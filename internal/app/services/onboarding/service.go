// Package onboarding gates the post-payment listing form: a checkout
// session id is exchanged for the purchased product and buyer email, and a
// validated session unlocks company creation.
package onboarding

import (
	"context"
	"strings"

	"github.com/hydrovacfinder/directory/internal/app/domain/company"
	"github.com/hydrovacfinder/directory/internal/app/errs"
	"github.com/hydrovacfinder/directory/internal/app/services/companies"
	"github.com/hydrovacfinder/directory/internal/payments"
	"github.com/hydrovacfinder/directory/pkg/logger"
)

// SessionReader retrieves a checkout session from the payment processor.
type SessionReader interface {
	GetSession(ctx context.Context, sessionID string) (payments.Session, error)
}

// Service validates paid checkout sessions and creates listings from the
// onboarding form.
type Service struct {
	sessions  SessionReader
	companies *companies.Service
	log       *logger.Logger
}

// New creates an onboarding service. sessions may be nil when payments are
// not configured.
func New(sessions SessionReader, companySvc *companies.Service, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("onboarding")
	}
	return &Service{sessions: sessions, companies: companySvc, log: log}
}

// SessionInfo is the validated session summary returned to the onboarding
// form.
type SessionInfo struct {
	SessionID string `json:"sessionId"`
	ProductID string `json:"productId"`
	Email     string `json:"email"`
	Paid      bool   `json:"paid"`
}

// ValidateSession exchanges sessionID for the purchased product and buyer
// email. Unpaid sessions come back with Paid=false rather than an error so
// the form can show payment-pending state.
func (s *Service) ValidateSession(ctx context.Context, sessionID string) (SessionInfo, error) {
	if s.sessions == nil {
		return SessionInfo{}, errs.ErrNotConfigured
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return SessionInfo{}, errs.NewValidation("session_id", "session id is required")
	}

	session, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return SessionInfo{}, err
	}

	return SessionInfo{
		SessionID: session.ID,
		ProductID: session.ProductID,
		Email:     session.CustomerEmail,
		Paid:      session.PaymentStatus == "paid",
	}, nil
}

// Submit creates a company listing for a paid session. The session is
// re-validated server-side; a client cannot skip payment by posting the form
// directly.
func (s *Service) Submit(ctx context.Context, sessionID string, c company.Company) (company.Company, error) {
	info, err := s.ValidateSession(ctx, sessionID)
	if err != nil {
		return company.Company{}, err
	}
	if !info.Paid {
		return company.Company{}, errs.NewValidation("session_id", "checkout session is not paid")
	}

	if c.Email == "" {
		c.Email = info.Email
	}

	created, err := s.companies.Create(ctx, c)
	if err != nil {
		return company.Company{}, err
	}

	s.log.WithField("company_id", created.ID).
		WithField("session_id", info.SessionID).
		WithField("product", info.ProductID).
		Info("onboarding listing created")
	return created, nil
}
