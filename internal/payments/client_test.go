package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hydrovacfinder/directory/internal/app/errs"
	"github.com/hydrovacfinder/directory/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := New(config.PaymentsConfig{
		SecretKey:     "sk_test_123",
		WebhookSecret: "whsec_test",
		Endpoint:      srv.URL,
	}, nil)
	if client == nil {
		t.Fatal("expected configured client")
	}
	return client
}

func TestCreateCheckoutSession(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/checkout/sessions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sk_test_123" {
			t.Error("missing bearer auth")
		}
		if r.Header.Get("Content-Type") != "application/x-www-form-urlencoded" {
			t.Error("expected form-encoded body")
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if got := r.PostForm.Get("line_items[0][price_data][unit_amount]"); got != "250000" {
			t.Errorf("unexpected amount %q", got)
		}
		if got := r.PostForm.Get("metadata[product_id]"); got != "state-company" {
			t.Errorf("unexpected product metadata %q", got)
		}
		fmt.Fprint(w, `{"id":"cs_123","url":"https://checkout.example.com/cs_123"}`)
	})

	session, err := client.CreateCheckoutSession(context.Background(), "state-company", "https://app/success", "https://app/cancel")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if session.ID != "cs_123" || session.URL == "" {
		t.Fatalf("unexpected session %+v", session)
	}
}

func TestCreateCheckoutSessionUnknownProduct(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for unknown product")
	})

	_, err := client.CreateCheckoutSession(context.Background(), "gold-plan", "s", "c")
	var verr *errs.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateCheckoutSessionUpstream4xxIsCallerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"message":"invalid success_url"}}`)
	})

	_, err := client.CreateCheckoutSession(context.Background(), "state-disposal", "bad", "bad")
	var uerr *errs.UpstreamError
	if !errors.As(err, &uerr) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if !uerr.CallerError {
		t.Fatal("4xx from processor should be marked caller-correctable")
	}
}

func TestGetSession(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/checkout/sessions/cs_123" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		fmt.Fprint(w, `{"id":"cs_123","payment_status":"paid","customer_details":{"email":"buyer@example.com"},"metadata":{"product_id":"state-company"}}`)
	})

	session, err := client.GetSession(context.Background(), "cs_123")
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if session.PaymentStatus != "paid" {
		t.Fatalf("unexpected status %q", session.PaymentStatus)
	}
	if session.CustomerEmail != "buyer@example.com" {
		t.Fatalf("unexpected email %q", session.CustomerEmail)
	}
	if session.ProductID != "state-company" {
		t.Fatalf("unexpected product %q", session.ProductID)
	}
}

func TestGetSessionNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.GetSession(context.Background(), "cs_missing")
	if !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func signPayload(secret string, ts int64, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", ts)
	mac.Write(payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func TestVerifySignature(t *testing.T) {
	client := newTestClient(t, nil)
	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed"}`)
	now := time.Now()

	header := signPayload("whsec_test", now.Unix(), payload)
	if err := client.VerifySignature(payload, header, now); err != nil {
		t.Fatalf("valid signature rejected: %v", err)
	}
}

func TestVerifySignatureRejectsTampering(t *testing.T) {
	client := newTestClient(t, nil)
	now := time.Now()
	header := signPayload("whsec_test", now.Unix(), []byte(`{"a":1}`))

	if err := client.VerifySignature([]byte(`{"a":2}`), header, now); err == nil {
		t.Fatal("tampered payload must be rejected")
	}
}

func TestVerifySignatureRejectsWrongSecret(t *testing.T) {
	client := newTestClient(t, nil)
	payload := []byte(`{}`)
	now := time.Now()
	header := signPayload("whsec_other", now.Unix(), payload)

	if err := client.VerifySignature(payload, header, now); err == nil {
		t.Fatal("signature from wrong secret must be rejected")
	}
}

func TestVerifySignatureRejectsStaleTimestamp(t *testing.T) {
	client := newTestClient(t, nil)
	payload := []byte(`{}`)
	now := time.Now()
	header := signPayload("whsec_test", now.Add(-time.Hour).Unix(), payload)

	if err := client.VerifySignature(payload, header, now); err == nil {
		t.Fatal("stale timestamp must be rejected")
	}
}

func TestParseEvent(t *testing.T) {
	payload := []byte(`{
		"id": "evt_1",
		"type": "checkout.session.completed",
		"data": {"object": {
			"id": "cs_123",
			"payment_status": "paid",
			"customer_details": {"email": "buyer@example.com"},
			"metadata": {"product_id": "state-disposal"}
		}}
	}`)

	event := ParseEvent(payload)
	if event.Type != "checkout.session.completed" {
		t.Fatalf("unexpected type %q", event.Type)
	}
	if event.Session.ID != "cs_123" || event.Session.ProductID != "state-disposal" {
		t.Fatalf("unexpected session %+v", event.Session)
	}
}
