// Package email dispatches transactional mail through a SendGrid-style
// mail-send API.
package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hydrovacfinder/directory/internal/app/errs"
	"github.com/hydrovacfinder/directory/internal/config"
	"github.com/hydrovacfinder/directory/pkg/logger"
)

const requestTimeout = 10 * time.Second

// Message is a single transactional email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Client calls the mail-send API.
type Client struct {
	endpoint   string
	apiKey     string
	from       string
	httpClient *http.Client
	log        *logger.Logger
}

// New creates an email client. Returns nil when no API key is configured;
// callers treat a nil client as "email unavailable".
func New(cfg config.EmailConfig, log *logger.Logger) *Client {
	if cfg.APIKey == "" {
		return nil
	}
	if log == nil {
		log = logger.NewDefault("email")
	}
	return &Client{
		endpoint:   cfg.Endpoint,
		apiKey:     cfg.APIKey,
		from:       cfg.From,
		httpClient: &http.Client{Timeout: requestTimeout},
		log:        log,
	}
}

type sendRequest struct {
	Personalizations []personalization `json:"personalizations"`
	From             emailAddress      `json:"from"`
	Subject          string            `json:"subject"`
	Content          []emailContent    `json:"content"`
}

type personalization struct {
	To []emailAddress `json:"to"`
}

type emailAddress struct {
	Email string `json:"email"`
}

type emailContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Send dispatches msg. Mail dispatch is not idempotent, so there is no
// retry: a failure surfaces to the caller.
func (c *Client) Send(ctx context.Context, msg Message) error {
	payload := sendRequest{
		Personalizations: []personalization{{To: []emailAddress{{Email: msg.To}}}},
		From:             emailAddress{Email: c.from},
		Subject:          msg.Subject,
		Content:          []emailContent{{Type: "text/plain", Value: msg.Body}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &errs.UpstreamError{Service: "email", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return &errs.UpstreamError{
			Service: "email",
			Err:     fmt.Errorf("mail API returned status %d: %s", resp.StatusCode, detail),
		}
	}

	c.log.WithField("to", msg.To).Info("email dispatched")
	return nil
}
