// Package payments integrates the Stripe-style payment processor: checkout
// session creation, session retrieval and webhook signature verification.
package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/hydrovacfinder/directory/internal/app/errs"
	"github.com/hydrovacfinder/directory/internal/config"
	"github.com/hydrovacfinder/directory/pkg/logger"
)

const (
	requestTimeout = 15 * time.Second
	maxBodyBytes   = 1 << 20

	// signatureTolerance bounds how stale a webhook timestamp may be.
	signatureTolerance = 5 * time.Minute
)

// Product is a purchasable listing product.
type Product struct {
	ID          string
	Name        string
	AmountCents int64
	Mode        string // "payment" or "subscription"
}

// Products is the catalog of purchasable listing placements.
var Products = map[string]Product{
	"state-company": {
		ID:          "state-company",
		Name:        "State Page Company Listing",
		AmountCents: 250000,
		Mode:        "payment",
	},
	"state-disposal": {
		ID:          "state-disposal",
		Name:        "State Page Disposal Listing",
		AmountCents: 175000,
		Mode:        "payment",
	},
}

// Session is a checkout session as returned by the processor.
type Session struct {
	ID            string `json:"id"`
	URL           string `json:"url"`
	PaymentStatus string `json:"paymentStatus"`
	CustomerEmail string `json:"customerEmail"`
	ProductID     string `json:"productId"`
}

// Client calls the payment processor REST API.
type Client struct {
	endpoint      string
	secretKey     string
	webhookSecret string
	httpClient    *http.Client
	log           *logger.Logger
}

// New creates a payments client. Returns nil when no secret key is
// configured; callers treat a nil client as "payments unavailable".
func New(cfg config.PaymentsConfig, log *logger.Logger) *Client {
	if !cfg.Configured() {
		return nil
	}
	if log == nil {
		log = logger.NewDefault("payments")
	}
	return &Client{
		endpoint:      strings.TrimRight(cfg.Endpoint, "/"),
		secretKey:     cfg.SecretKey,
		webhookSecret: cfg.WebhookSecret,
		httpClient:    &http.Client{Timeout: requestTimeout},
		log:           log,
	}
}

// CreateCheckoutSession opens a checkout session for productID and returns
// the session including its redirect URL.
func (c *Client) CreateCheckoutSession(ctx context.Context, productID, successURL, cancelURL string) (Session, error) {
	product, ok := Products[productID]
	if !ok {
		return Session{}, errs.NewValidation("product", fmt.Sprintf("unknown product %q", productID))
	}

	form := url.Values{}
	form.Set("mode", product.Mode)
	form.Set("success_url", successURL)
	form.Set("cancel_url", cancelURL)
	form.Set("line_items[0][quantity]", "1")
	form.Set("line_items[0][price_data][currency]", "usd")
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(product.AmountCents, 10))
	form.Set("line_items[0][price_data][product_data][name]", product.Name)
	form.Set("metadata[product_id]", product.ID)

	body, err := c.post(ctx, "/v1/checkout/sessions", form)
	if err != nil {
		return Session{}, err
	}

	session := parseSession(body)
	if session.ID == "" || session.URL == "" {
		return Session{}, &errs.UpstreamError{
			Service: "payments",
			Err:     fmt.Errorf("checkout session response missing id or url"),
		}
	}

	c.log.WithField("session_id", session.ID).WithField("product", product.ID).Info("checkout session created")
	return session, nil
}

// GetSession retrieves a checkout session by id, used to validate the
// post-payment onboarding form.
func (c *Client) GetSession(ctx context.Context, sessionID string) (Session, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return Session{}, errs.NewValidation("session_id", "session id is required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/v1/checkout/sessions/"+url.PathEscape(sessionID), nil)
	if err != nil {
		return Session{}, err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Session{}, &errs.UpstreamError{Service: "payments", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Session{}, &errs.UpstreamError{Service: "payments", Err: err}
	}
	if resp.StatusCode == http.StatusNotFound {
		return Session{}, errs.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return Session{}, upstreamStatusError(resp.StatusCode, body)
	}

	return parseSession(body), nil
}

func (c *Client) post(ctx context.Context, path string, form url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &errs.UpstreamError{Service: "payments", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &errs.UpstreamError{Service: "payments", Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, upstreamStatusError(resp.StatusCode, body)
	}
	return body, nil
}

func parseSession(body []byte) Session {
	parsed := gjson.ParseBytes(body)
	return Session{
		ID:            parsed.Get("id").String(),
		URL:           parsed.Get("url").String(),
		PaymentStatus: parsed.Get("payment_status").String(),
		CustomerEmail: parsed.Get("customer_details.email").String(),
		ProductID:     parsed.Get("metadata.product_id").String(),
	}
}

func upstreamStatusError(status int, body []byte) error {
	message := gjson.GetBytes(body, "error.message").String()
	if message == "" {
		message = fmt.Sprintf("status %d", status)
	}
	return &errs.UpstreamError{
		Service:     "payments",
		Err:         fmt.Errorf("%s", message),
		CallerError: status >= 400 && status < 500,
	}
}

// Event is a parsed webhook event.
type Event struct {
	ID      string
	Type    string
	Session Session
}

// VerifySignature checks a webhook payload against its signature header in
// the "t=...,v1=..." format: HMAC-SHA256 of "<timestamp>.<payload>" keyed by
// the webhook secret, with a bounded timestamp tolerance.
func (c *Client) VerifySignature(payload []byte, header string, now time.Time) error {
	if c.webhookSecret == "" {
		return fmt.Errorf("webhook secret not configured")
	}

	var timestamp string
	var signatures []string
	for _, part := range strings.Split(header, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch key {
		case "t":
			timestamp = value
		case "v1":
			signatures = append(signatures, value)
		}
	}
	if timestamp == "" || len(signatures) == 0 {
		return fmt.Errorf("malformed signature header")
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return fmt.Errorf("malformed signature timestamp")
	}
	age := now.Sub(time.Unix(ts, 0))
	if age > signatureTolerance || age < -signatureTolerance {
		return fmt.Errorf("signature timestamp outside tolerance")
	}

	mac := hmac.New(sha256.New, []byte(c.webhookSecret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, sig := range signatures {
		if hmac.Equal([]byte(expected), []byte(sig)) {
			return nil
		}
	}
	return fmt.Errorf("signature mismatch")
}

// ParseEvent extracts the event envelope and embedded session from a
// verified webhook payload.
func ParseEvent(payload []byte) Event {
	parsed := gjson.ParseBytes(payload)
	object := parsed.Get("data.object")
	return Event{
		ID:   parsed.Get("id").String(),
		Type: parsed.Get("type").String(),
		Session: Session{
			ID:            object.Get("id").String(),
			PaymentStatus: object.Get("payment_status").String(),
			CustomerEmail: object.Get("customer_details.email").String(),
			ProductID:     object.Get("metadata.product_id").String(),
		},
	}
}
