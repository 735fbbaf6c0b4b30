package twilio

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"sms-relay/pkg/tracing"
)

// Client sends messages through the Twilio Messages REST API
// (POST /2010-04-01/Accounts/{AccountSid}/Messages.json, form-encoded,
// basic auth). BaseURL is overridable so tests and local emulators can stand
// in for api.twilio.com.
type Client struct {
	accountSID string
	authToken  string
	from       string
	baseURL    string
	http       *http.Client
}

type Config struct {
	AccountSID string
	AuthToken  string
	FromNumber string
	BaseURL    string
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

func New(cfg Config) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = "https://api.twilio.com"
	}
	return &Client{
		accountSID: cfg.AccountSID,
		authToken:  cfg.AuthToken,
		from:       cfg.FromNumber,
		baseURL:    strings.TrimRight(base, "/"),
		http:       &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) Send(ctx context.Context, to, body string) error {
	ctx, span := tracing.Start(ctx, "twilio.send",
		tracing.Attr("to", to),
		tracing.Attr("broadcast_id", tracing.BroadcastIDFromContext(ctx)),
	)
	defer span.End()

	form := url.Values{}
	form.Set("To", to)
	form.Set("From", c.from)
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", c.baseURL, c.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.accountSID, c.authToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("twilio request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	var apiErr apiError
	if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Message != "" {
		return fmt.Errorf("twilio: %s (code %d, http %d)", apiErr.Message, apiErr.Code, resp.StatusCode)
	}
	return fmt.Errorf("twilio: unexpected status %d", resp.StatusCode)
}
