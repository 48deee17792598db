package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"callbridge/internal/audit"
	"callbridge/internal/directory"
	"callbridge/internal/registry"
	"callbridge/internal/reporting"
	"callbridge/internal/telephony"
	"callbridge/internal/transfer"

	"github.com/gin-gonic/gin"
)

type fakeAssistant struct {
	doc string
	err error
}

func (f *fakeAssistant) ConnectCall(context.Context, string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.doc, nil
}

type providerOp struct {
	kind   string // "update" or "create"
	callID string
	url    string
	to     string
}

type fakeController struct {
	ops       []providerOp
	updateErr error
	createErr error
}

func (f *fakeController) UpdateCall(_ context.Context, callID string, upd telephony.CallUpdate) error {
	f.ops = append(f.ops, providerOp{kind: "update", callID: callID, url: upd.InstructionURL})
	return f.updateErr
}

func (f *fakeController) CreateCall(_ context.Context, req telephony.CallCreate) (string, error) {
	f.ops = append(f.ops, providerOp{kind: "create", to: req.To, url: req.InstructionURL})
	if f.createErr != nil {
		return "", f.createErr
	}
	return "CA_dept", nil
}

type env struct {
	router    *gin.Engine
	registry  *registry.MemoryStore
	provider  *fakeController
	assistant *fakeAssistant
	trail     *audit.MemoryRepo
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir, err := directory.New(
		map[string]string{"consultant": "+15550100", "hr": "+15550101", "it": "+15550102"},
		map[string]string{"sales": "consultant"},
		"consultant",
	)
	if err != nil {
		t.Fatalf("directory: %v", err)
	}

	store := registry.NewMemoryStore()
	provider := &fakeController{}
	orch, err := transfer.NewOrchestrator(dir, store, provider, transfer.Endpoints{
		ConferenceURL:     "https://bridge.example.com/twiml/conference",
		AnnounceURL:       "https://bridge.example.com/twiml/announce",
		StatusCallbackURL: "https://bridge.example.com/webhooks/voice/status",
	}, "+15550000", nil)
	if err != nil {
		t.Fatalf("orchestrator: %v", err)
	}

	asst := &fakeAssistant{doc: "<Response><Connect/></Response>"}
	trail := audit.NewMemoryRepo()
	h := Handlers{
		Assistant:      asst,
		Registry:       store,
		Transfers:      orch,
		Reports:        reporting.NewService(reporting.NewMemoryRepo()),
		Trail:          audit.NewService(trail),
		ConferenceRoom: "interactive_cue_room",
	}

	r := gin.New()
	r.POST("/webhooks/voice/inbound", h.InboundCall)
	r.POST("/webhooks/voice/status", h.ParticipantStatus)
	r.POST("/webhooks/assistant/transfer", RequireAssistantOrigin("api.vapi.ai"), h.TransferTool)
	r.POST("/twiml/conference", h.Conference)
	r.POST("/twiml/announce", h.Announce)

	return &env{router: r, registry: store, provider: provider, assistant: asst, trail: trail}
}

func (e *env) postForm(path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *env) postTool(body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/assistant/transfer", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "https://api.vapi.ai")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeToolResponse(t *testing.T, w *httptest.ResponseRecorder) toolCallResult {
	t.Helper()
	var res toolResponse
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(res.Results) != 1 {
		t.Fatalf("expected one result, got %+v", res)
	}
	return res.Results[0]
}

func TestInboundCall_RegistersAndReturnsAssistantDoc(t *testing.T) {
	e := newEnv(t)

	w := e.postForm("/webhooks/voice/inbound", "CallSid=CA1&Caller=%2B15550001")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "<Connect/>") {
		t.Fatalf("expected assistant doc, got %s", w.Body.String())
	}
	id, _ := e.registry.ActiveCustomerCall(context.Background())
	if id != "CA1" {
		t.Fatalf("expected CA1 registered, got %q", id)
	}
}

func TestInboundCall_ConnectorFailureDegradesToSay(t *testing.T) {
	e := newEnv(t)
	e.assistant.err = errors.New("vapi down")

	w := e.postForm("/webhooks/voice/inbound", "CallSid=CA1&Caller=%2B15550001")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "<Say>Connection error.</Say>") {
		t.Fatalf("expected degraded Say doc, got %s", w.Body.String())
	}
	// The call is still registered; a later transfer attempt may succeed.
	id, _ := e.registry.ActiveCustomerCall(context.Background())
	if id != "CA1" {
		t.Fatalf("expected CA1 registered, got %q", id)
	}
}

func TestTransferTool_EndToEndSuccess(t *testing.T) {
	e := newEnv(t)

	// Inbound call CA1 arrives first.
	e.postForm("/webhooks/voice/inbound", "CallSid=CA1&Caller=%2B15550001")

	w := e.postTool(`{"department":"hr","toolCallList":[{"id":"t1"}]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	res := decodeToolResponse(t, w)
	if res.ToolCallID != "t1" {
		t.Fatalf("expected token t1, got %q", res.ToolCallID)
	}
	if res.Result != "Transfer initiated to hr." {
		t.Fatalf("unexpected result %q", res.Result)
	}

	if len(e.provider.ops) != 2 {
		t.Fatalf("expected hold+dial, got %+v", e.provider.ops)
	}
	if e.provider.ops[0].kind != "update" || e.provider.ops[0].callID != "CA1" {
		t.Fatalf("expected customer hold first, got %+v", e.provider.ops[0])
	}
	if e.provider.ops[1].kind != "create" || e.provider.ops[1].to != "+15550101" {
		t.Fatalf("expected hr dial, got %+v", e.provider.ops[1])
	}

	evs := e.trail.Events()
	if len(evs) != 2 {
		t.Fatalf("expected registration and transfer events, got %+v", evs)
	}
	if evs[1].Type != audit.EventTypeTransferInitiated || evs[1].Department != "hr" {
		t.Fatalf("unexpected trail event %+v", evs[1])
	}
}

func TestTransferTool_NoActiveCall(t *testing.T) {
	e := newEnv(t)

	// Unknown department resolves to the default, but no call was ever
	// registered so the transfer must fail before any provider call.
	w := e.postTool(`{"department":"unknown-word","toolCallList":[{"id":"t9"}]}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	res := decodeToolResponse(t, w)
	if res.ToolCallID != "t9" {
		t.Fatalf("expected token echoed on error, got %q", res.ToolCallID)
	}
	if res.Error == "" {
		t.Fatalf("expected error payload, got %+v", res)
	}
	if len(e.provider.ops) != 0 {
		t.Fatalf("expected no provider calls, got %+v", e.provider.ops)
	}
}

func TestTransferTool_RejectsUnknownOrigin(t *testing.T) {
	e := newEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/assistant/transfer",
		strings.NewReader(`{"department":"hr"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "https://evil.example.com")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}

func TestTransferTool_DefaultsToken(t *testing.T) {
	e := newEnv(t)
	e.postForm("/webhooks/voice/inbound", "CallSid=CA1&Caller=%2B15550001")

	w := e.postTool(`{"department":"it"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	res := decodeToolResponse(t, w)
	if res.ToolCallID != "transfer_1" {
		t.Fatalf("expected default token, got %q", res.ToolCallID)
	}
}

func TestParticipantStatus_NoAnswerRedirectsCustomer(t *testing.T) {
	e := newEnv(t)
	e.postForm("/webhooks/voice/inbound", "CallSid=CA1&Caller=%2B15550001")
	e.postTool(`{"department":"hr","toolCallList":[{"id":"t1"}]}`)
	e.provider.ops = nil

	w := e.postForm("/webhooks/voice/status", "CallSid=CA_dept&CallStatus=no-answer")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if len(e.provider.ops) != 1 {
		t.Fatalf("expected one redirect, got %+v", e.provider.ops)
	}
	op := e.provider.ops[0]
	if op.kind != "update" || op.callID != "CA1" || !strings.HasSuffix(op.url, "/twiml/announce") {
		t.Fatalf("unexpected redirect %+v", op)
	}
}

func TestParticipantStatus_AlwaysAcknowledges(t *testing.T) {
	e := newEnv(t)
	e.postForm("/webhooks/voice/inbound", "CallSid=CA1&Caller=%2B15550001")
	e.provider.updateErr = errors.New("call gone")

	w := e.postForm("/webhooks/voice/status", "CallSid=CA_dept&CallStatus=busy")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 despite redirect failure, got %d", w.Code)
	}
}

func TestParticipantStatus_InProgressNoRedirect(t *testing.T) {
	e := newEnv(t)
	e.postForm("/webhooks/voice/inbound", "CallSid=CA1&Caller=%2B15550001")
	e.provider.ops = nil

	w := e.postForm("/webhooks/voice/status", "CallSid=CA_dept&CallStatus=in-progress")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if len(e.provider.ops) != 0 {
		t.Fatalf("expected no redirect, got %+v", e.provider.ops)
	}
}

func TestConferenceEndpoint(t *testing.T) {
	e := newEnv(t)

	w := e.postForm("/twiml/conference", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "interactive_cue_room") {
		t.Fatalf("expected room in doc: %s", body)
	}
	if !strings.Contains(w.Header().Get("Content-Type"), "text/xml") {
		t.Fatalf("expected xml content type, got %q", w.Header().Get("Content-Type"))
	}
}

func TestAnnounceEndpoint(t *testing.T) {
	e := newEnv(t)

	w := e.postForm("/twiml/announce", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "<Hangup") {
		t.Fatalf("expected hangup in doc: %s", w.Body.String())
	}
}

func TestNewInboundCallOverwritesPrevious(t *testing.T) {
	e := newEnv(t)
	e.postForm("/webhooks/voice/inbound", "CallSid=CA1&Caller=%2B15550001")
	e.postForm("/webhooks/voice/inbound", "CallSid=CA2&Caller=%2B15550002")

	id, _ := e.registry.ActiveCustomerCall(context.Background())
	if id != "CA2" {
		t.Fatalf("expected CA2 after overwrite, got %q", id)
	}
}
