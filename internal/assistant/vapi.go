package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrConnectorFailed wraps any failure to obtain a call-control document
// from the assistant platform. Callers degrade to a static spoken error
// rather than crashing the inbound webhook.
var ErrConnectorFailed = errors.New("assistant: connector failed")

// Connector attaches an inbound caller to the AI voice assistant. It
// returns the provider call-control document (TwiML) to hand back
// verbatim as the inbound webhook response.
type Connector interface {
	ConnectCall(ctx context.Context, callerNumber string) (string, error)
}

const vapiBaseURL = "https://api.vapi.ai"

// VapiClient implements Connector against the Vapi call API. Vapi is
// asked to bypass its own telephony provider and return the TwiML that
// bridges the caller into the assistant session.
type VapiClient struct {
	apiKey        string
	assistantID   string
	phoneNumberID string

	// BaseURL is overridable for tests.
	BaseURL string

	HTTPClient *http.Client
}

func NewVapiClient(apiKey, assistantID, phoneNumberID string) (*VapiClient, error) {
	if apiKey == "" || assistantID == "" || phoneNumberID == "" {
		return nil, errors.New("assistant: vapi credentials are required")
	}
	return &VapiClient{
		apiKey:        apiKey,
		assistantID:   assistantID,
		phoneNumberID: phoneNumberID,
		BaseURL:       vapiBaseURL,
		HTTPClient:    &http.Client{Timeout: 15 * time.Second},
	}, nil
}

type vapiCallRequest struct {
	PhoneCallProviderBypassEnabled bool         `json:"phoneCallProviderBypassEnabled"`
	PhoneNumberID                  string       `json:"phoneNumberId"`
	AssistantID                    string       `json:"assistantId"`
	Customer                       vapiCustomer `json:"customer"`
}

type vapiCustomer struct {
	Number string `json:"number"`
}

type vapiCallResponse struct {
	PhoneCallProviderDetails struct {
		TwiML string `json:"twiml"`
	} `json:"phoneCallProviderDetails"`
}

func (c *VapiClient) ConnectCall(ctx context.Context, callerNumber string) (string, error) {
	if callerNumber == "" {
		return "", fmt.Errorf("%w: caller number is required", ErrConnectorFailed)
	}

	payload, err := json.Marshal(vapiCallRequest{
		PhoneCallProviderBypassEnabled: true,
		PhoneNumberID:                  c.phoneNumberID,
		AssistantID:                    c.assistantID,
		Customer:                       vapiCustomer{Number: callerNumber},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrConnectorFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/call", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrConnectorFailed, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrConnectorFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrConnectorFailed, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: vapi returned %d", ErrConnectorFailed, resp.StatusCode)
	}

	var out vapiCallResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("%w: %v", ErrConnectorFailed, err)
	}
	if out.PhoneCallProviderDetails.TwiML == "" {
		return "", fmt.Errorf("%w: response missing provider twiml", ErrConnectorFailed)
	}
	return out.PhoneCallProviderDetails.TwiML, nil
}
