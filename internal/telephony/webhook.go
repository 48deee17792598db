package telephony

import (
	"net/http"
	"strings"

	"callbridge/internal/calls"
)

// Twilio voice webhooks arrive as application/x-www-form-urlencoded.
// Only the fields this service consumes are captured; business logic
// (registration, orchestration) is not made here.

// VoiceWebhookForm captures the inbound-call notification.
type VoiceWebhookForm struct {
	CallSid    string
	AccountSid string
	Caller     string
	From       string
	To         string
	Direction  string
	CallStatus string
}

func ParseVoiceWebhook(r *http.Request) (VoiceWebhookForm, error) {
	if err := r.ParseForm(); err != nil {
		return VoiceWebhookForm{}, err
	}
	f := VoiceWebhookForm{
		CallSid:    r.PostFormValue("CallSid"),
		AccountSid: r.PostFormValue("AccountSid"),
		Caller:     normalizePhone(r.PostFormValue("Caller")),
		From:       normalizePhone(r.PostFormValue("From")),
		To:         normalizePhone(r.PostFormValue("To")),
		Direction:  r.PostFormValue("Direction"),
		CallStatus: r.PostFormValue("CallStatus"),
	}
	return f, nil
}

// CallerNumber prefers the Caller field and falls back to From; Twilio
// populates both for PSTN calls but only From for some SIP origins.
func (f VoiceWebhookForm) CallerNumber() string {
	if f.Caller != "" {
		return f.Caller
	}
	return f.From
}

// StatusWebhookForm captures a status-callback delivery for a leg this
// service created.
type StatusWebhookForm struct {
	CallSid    string
	CallStatus calls.CallStatus
}

func ParseStatusWebhook(r *http.Request) (StatusWebhookForm, error) {
	if err := r.ParseForm(); err != nil {
		return StatusWebhookForm{}, err
	}
	return StatusWebhookForm{
		CallSid:    r.PostFormValue("CallSid"),
		CallStatus: calls.CallStatus(strings.TrimSpace(r.PostFormValue("CallStatus"))),
	}, nil
}

func normalizePhone(s string) string {
	s = strings.TrimSpace(s)
	// Twilio sometimes sends "anonymous" or empty; keep as-is.
	return s
}
