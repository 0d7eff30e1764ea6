package referral

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/hydrovacfinder/directory/internal/app/errs"
	"github.com/hydrovacfinder/directory/internal/email"
)

type captureSender struct {
	sent []email.Message
	err  error
}

func (c *captureSender) Send(_ context.Context, msg email.Message) error {
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, msg)
	return nil
}

func validReferral() Referral {
	return Referral{
		Name:        "Jordan Smith",
		Email:       "jordan@example.com",
		Phone:       "(713) 555-0100",
		CompanyName: "Gulf Coast Hydrovac",
		Message:     "They did great work on our site.",
	}
}

func TestSubmitDispatchesEmail(t *testing.T) {
	sender := &captureSender{}
	svc := New(sender, "ap@hydrovacfinder.com", nil)

	if err := svc.Submit(context.Background(), validReferral()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected 1 email, got %d", len(sender.sent))
	}

	msg := sender.sent[0]
	if msg.To != "ap@hydrovacfinder.com" {
		t.Fatalf("unexpected recipient %q", msg.To)
	}
	if !strings.Contains(msg.Body, "Gulf Coast Hydrovac") {
		t.Fatalf("body missing company name: %q", msg.Body)
	}
	if !strings.Contains(msg.Body, "jordan@example.com") {
		t.Fatalf("body missing referrer email: %q", msg.Body)
	}
}

func TestSubmitValidatesFields(t *testing.T) {
	sender := &captureSender{}
	svc := New(sender, "ap@hydrovacfinder.com", nil)

	err := svc.Submit(context.Background(), Referral{Email: "bad-email"})
	var verr *errs.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	for _, field := range []string{"name", "email", "companyName"} {
		if _, ok := verr.Fields[field]; !ok {
			t.Fatalf("expected message for %q, got %#v", field, verr.Fields)
		}
	}
	if len(sender.sent) != 0 {
		t.Fatal("invalid referral must not be dispatched")
	}
}

func TestSubmitWithoutSender(t *testing.T) {
	svc := New(nil, "ap@hydrovacfinder.com", nil)

	err := svc.Submit(context.Background(), validReferral())
	if !errors.Is(err, errs.ErrNotConfigured) {
		t.Fatalf("expected not configured, got %v", err)
	}
}

func TestSubmitSurfacesSendFailure(t *testing.T) {
	sender := &captureSender{err: errors.New("smtp down")}
	svc := New(sender, "ap@hydrovacfinder.com", nil)

	if err := svc.Submit(context.Background(), validReferral()); err == nil {
		t.Fatal("send failure must surface, never be swallowed")
	}
}
