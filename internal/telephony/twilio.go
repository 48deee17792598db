package telephony

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const twilioAPIBaseURL = "https://api.twilio.com/2010-04-01"

// TwilioClient implements CallController against the Twilio REST API.
// Requests are form-encoded with HTTP basic auth, matching the API's
// 2010-04-01 surface; no SDK dependency.
type TwilioClient struct {
	accountSID string
	authToken  string

	// BaseURL is overridable for tests.
	BaseURL string

	HTTPClient *http.Client
}

func NewTwilioClient(accountSID, authToken string) (*TwilioClient, error) {
	if accountSID == "" || authToken == "" {
		return nil, errors.New("telephony: twilio credentials are required")
	}
	return &TwilioClient{
		accountSID: accountSID,
		authToken:  authToken,
		BaseURL:    twilioAPIBaseURL,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}, nil
}

func (c *TwilioClient) Name() string { return "twilio" }

func (c *TwilioClient) UpdateCall(ctx context.Context, callID string, upd CallUpdate) error {
	if callID == "" {
		return errors.New("telephony: call id is required")
	}
	if upd.InstructionURL == "" {
		return errors.New("telephony: instruction url is required")
	}

	form := url.Values{}
	form.Set("Url", upd.InstructionURL)
	form.Set("Method", http.MethodPost)

	endpoint := fmt.Sprintf("%s/Accounts/%s/Calls/%s.json", c.BaseURL, c.accountSID, callID)
	_, err := c.post(ctx, endpoint, form)
	return err
}

func (c *TwilioClient) CreateCall(ctx context.Context, req CallCreate) (string, error) {
	if req.To == "" || req.From == "" {
		return "", errors.New("telephony: to and from are required")
	}
	if req.InstructionURL == "" {
		return "", errors.New("telephony: instruction url is required")
	}

	form := url.Values{}
	form.Set("To", req.To)
	form.Set("From", req.From)
	form.Set("Url", req.InstructionURL)
	form.Set("Method", http.MethodPost)
	if req.StatusCallbackURL != "" {
		form.Set("StatusCallback", req.StatusCallbackURL)
		form.Set("StatusCallbackMethod", http.MethodPost)
	}

	endpoint := fmt.Sprintf("%s/Accounts/%s/Calls.json", c.BaseURL, c.accountSID)
	body, err := c.post(ctx, endpoint, form)
	if err != nil {
		return "", err
	}

	var out struct {
		Sid string `json:"sid"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("telephony: decode create call response: %w", err)
	}
	if out.Sid == "" {
		return "", errors.New("telephony: create call response missing sid")
	}
	return out.Sid, nil
}

func (c *TwilioClient) post(ctx context.Context, endpoint string, form url.Values) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	httpReq.SetBasicAuth(c.accountSID, c.authToken)
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("telephony: twilio request failed: %w", err)
	}
	defer resp.Body.Close()

	// Cap the read; Twilio error bodies are small JSON documents.
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("telephony: read twilio response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("telephony: twilio returned %d: %s", resp.StatusCode, twilioErrorMessage(body))
	}
	return body, nil
}

func twilioErrorMessage(body []byte) string {
	var e struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	}
	if err := json.Unmarshal(body, &e); err != nil || e.Message == "" {
		return "unexpected response"
	}
	if e.Code != 0 {
		return fmt.Sprintf("%s (code %d)", e.Message, e.Code)
	}
	return e.Message
}
