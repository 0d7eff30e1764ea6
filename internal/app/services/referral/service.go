// Package referral handles the public referral/contact form: validate,
// format and dispatch. Referrals are never persisted.
package referral

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/hydrovacfinder/directory/internal/app/errs"
	"github.com/hydrovacfinder/directory/internal/email"
	"github.com/hydrovacfinder/directory/pkg/logger"
)

// Sender dispatches a transactional email.
type Sender interface {
	Send(ctx context.Context, msg email.Message) error
}

// Referral is the submitted form payload.
type Referral struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	CompanyName string `json:"companyName"`
	Message     string `json:"message"`
}

// Service validates referrals and forwards them by email.
type Service struct {
	sender Sender
	to     string
	log    *logger.Logger
}

// New creates a referral service. sender may be nil when email is not
// configured.
func New(sender Sender, to string, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("referral")
	}
	return &Service{sender: sender, to: to, log: log}
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Validate checks the referral form fields.
func Validate(r Referral) error {
	verr := &errs.ValidationError{}
	if strings.TrimSpace(r.Name) == "" {
		verr.Add("name", "name is required")
	}
	if strings.TrimSpace(r.Email) == "" {
		verr.Add("email", "email is required")
	} else if !emailPattern.MatchString(strings.TrimSpace(r.Email)) {
		verr.Add("email", "email is malformed")
	}
	if strings.TrimSpace(r.CompanyName) == "" {
		verr.Add("companyName", "company name is required")
	}
	if !verr.Empty() {
		return verr
	}
	return nil
}

// Submit validates r and dispatches the referral email. The referral itself
// is never stored.
func (s *Service) Submit(ctx context.Context, r Referral) error {
	if err := Validate(r); err != nil {
		return err
	}
	if s.sender == nil {
		return errs.ErrNotConfigured
	}

	body := fmt.Sprintf(
		"New company referral\n\nName: %s\nEmail: %s\nPhone: %s\nCompany: %s\n\n%s\n",
		strings.TrimSpace(r.Name),
		strings.TrimSpace(r.Email),
		strings.TrimSpace(r.Phone),
		strings.TrimSpace(r.CompanyName),
		strings.TrimSpace(r.Message),
	)

	err := s.sender.Send(ctx, email.Message{
		To:      s.to,
		Subject: fmt.Sprintf("Referral: %s", strings.TrimSpace(r.CompanyName)),
		Body:    body,
	})
	if err != nil {
		return err
	}

	s.log.WithField("company", r.CompanyName).Info("referral forwarded")
	return nil
}
