package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"callbridge/internal/assistant"
	"callbridge/internal/audit"
	"callbridge/internal/auth"
	"callbridge/internal/calls"
	"callbridge/internal/registry"
	"callbridge/internal/reporting"
	"callbridge/internal/telephony"
	"callbridge/internal/transfer"
	"callbridge/pkg/logger"

	"github.com/gin-gonic/gin"
)

const contentTypeXML = "text/xml"

// connectorDownMessage is spoken when the assistant platform cannot be
// reached on an inbound call.
const connectorDownMessage = "Connection error."

// fallbackMessage is spoken when the department leg cannot be reached.
const fallbackMessage = "I apologize, but our consultants are currently busy. Please call back in a few minutes. Thank you for your understanding, goodbye."

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, write the
// response. Orchestration lives in internal/transfer.
type Handlers struct {
	Auth      *auth.Manager
	Assistant assistant.Connector
	Registry  registry.ActiveCallStore
	Transfers *transfer.Orchestrator
	Reports   *reporting.Service

	// Trail records call-control decisions. Optional; recording is
	// best-effort and never blocks a call flow.
	Trail *audit.Service

	// ConferenceRoom is the shared bridge room rendered by the conference
	// TwiML endpoint.
	ConferenceRoom string
}

// --- Telephony webhooks ---

// InboundCall handles the provider's new-call notification: remember the
// customer leg, then hand the caller to the AI assistant. The assistant's
// call-control document is returned verbatim; if the connector fails the
// caller hears a static error message instead of a dropped connection.
func (h Handlers) InboundCall(c *gin.Context) {
	log := logger.FromGin(c)

	form, err := telephony.ParseVoiceWebhook(c.Request)
	if err != nil {
		log.Warn("inbound webhook parse failed", "err", err)
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid form"})
		return
	}
	if form.CallSid == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "CallSid required"})
		return
	}

	if err := h.Registry.SetActiveCustomerCall(c.Request.Context(), form.CallSid); err != nil {
		log.Error("active call registration failed", "call_id", form.CallSid, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		return
	}
	log.Info("customer call registered", "call_id", form.CallSid, "caller", form.CallerNumber())

	if h.Trail != nil {
		if err := h.Trail.LogCallRegistered(c.Request.Context(), form.CallSid); err != nil {
			log.Warn("trail append failed", "err", err)
		}
	}

	doc, err := h.Assistant.ConnectCall(c.Request.Context(), form.CallerNumber())
	if err != nil {
		log.Error("assistant connection failed", "call_id", form.CallSid, "err", err)
		degraded, renderErr := telephony.RenderSay(connectorDownMessage)
		if renderErr != nil {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		c.Header("Content-Type", contentTypeXML)
		c.String(http.StatusInternalServerError, degraded)
		return
	}

	c.Header("Content-Type", contentTypeXML)
	c.String(http.StatusOK, doc)
}

// Conference serves the merge document that parks any leg in the shared
// bridge room.
func (h Handlers) Conference(c *gin.Context) {
	doc, err := telephony.RenderConference(h.ConferenceRoom)
	if err != nil {
		logger.FromGin(c).Error("conference render failed", "err", err)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.Header("Content-Type", contentTypeXML)
	c.String(http.StatusOK, doc)
}

// Announce serves the apology-and-hangup document played when a transfer
// leg cannot be reached.
func (h Handlers) Announce(c *gin.Context) {
	doc, err := telephony.RenderAnnouncement(fallbackMessage)
	if err != nil {
		logger.FromGin(c).Error("announcement render failed", "err", err)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.Header("Content-Type", contentTypeXML)
	c.String(http.StatusOK, doc)
}

// ParticipantStatus receives department-leg lifecycle notifications. The
// provider expects a bare acknowledgment and never retries based on our
// response, so this endpoint returns 200 no matter what happened inside.
func (h Handlers) ParticipantStatus(c *gin.Context) {
	log := logger.FromGin(c)

	form, err := telephony.ParseStatusWebhook(c.Request)
	if err != nil {
		log.Warn("status webhook parse failed", "err", err)
		c.Status(http.StatusOK)
		return
	}

	if h.Trail != nil {
		if err := h.Trail.LogLegStatus(c.Request.Context(), form.CallSid, string(form.CallStatus)); err != nil {
			log.Warn("trail append failed", "err", err)
		}
	}

	h.Transfers.HandleDepartmentStatus(c.Request.Context(), form.CallSid, form.CallStatus)
	c.Status(http.StatusOK)
}

// --- Assistant tool webhook ---

type transferToolRequest struct {
	Department   string `json:"department"`
	ToolCallList []struct {
		ID string `json:"id"`
	} `json:"toolCallList"`
}

type toolCallResult struct {
	ToolCallID string `json:"toolCallId"`
	Result     string `json:"result,omitempty"`
	Error      string `json:"error,omitempty"`
}

type toolResponse struct {
	Results []toolCallResult `json:"results"`
}

// TransferTool is invoked by the AI assistant's transfer tool. The
// response is keyed by the tool call id so the assistant can match it
// back to its request.
func (h Handlers) TransferTool(c *gin.Context) {
	log := logger.FromGin(c)

	var req transferToolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("transfer tool parse failed", "err", err)
		c.JSON(http.StatusBadRequest, toolResponse{Results: []toolCallResult{
			{ToolCallID: "transfer_error", Error: "Invalid tool request."},
		}})
		return
	}

	token := ""
	if len(req.ToolCallList) > 0 {
		token = req.ToolCallList[0].ID
	}

	res, err := h.Transfers.InitiateTransfer(c.Request.Context(), transfer.Request{
		Department: req.Department,
		Token:      token,
	})
	if err != nil {
		if token == "" {
			token = "transfer_error"
		}
		log.Error("transfer failed", "department", req.Department, "token", token, "err", err)
		if h.Trail != nil {
			if aErr := h.Trail.LogTransferFailed(c.Request.Context(), req.Department, token, err.Error()); aErr != nil {
				log.Warn("trail append failed", "err", aErr)
			}
		}
		c.JSON(http.StatusInternalServerError, toolResponse{Results: []toolCallResult{
			{ToolCallID: token, Error: transferErrorMessage(err)},
		}})
		return
	}

	if res.Token == "" {
		res.Token = "transfer_1"
	}
	if h.Trail != nil {
		if err := h.Trail.LogTransferInitiated(c.Request.Context(), res.DepartmentCallID, res.Department, res.Token); err != nil {
			log.Warn("trail append failed", "err", err)
		}
	}
	c.JSON(http.StatusOK, toolResponse{Results: []toolCallResult{
		{ToolCallID: res.Token, Result: res.Message},
	}})
}

func transferErrorMessage(err error) string {
	switch {
	case errors.Is(err, transfer.ErrNoActiveCall):
		return "No active customer call to transfer."
	case errors.Is(err, transfer.ErrTransferInFlight):
		return "A transfer is already in progress."
	case errors.Is(err, transfer.ErrCustomerUpdateFailed),
		errors.Is(err, transfer.ErrDepartmentDialFailed):
		return "Transfer failure."
	default:
		return "Transfer failure."
	}
}

// --- Operator API ---

type loginRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// Login issues a JWT token pair.
//
// NOTE: This is a skeleton-only endpoint. Real systems must validate credentials.
func (h Handlers) Login(c *gin.Context) {
	if h.Auth == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "auth not configured"})
		return
	}
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.UserID == "" || req.Role == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "user_id, role required"})
		return
	}
	pair, err := h.Auth.IssuePair(time.Now(), req.UserID, req.Role)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token issuance failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": pair.AccessToken, "refresh_token": pair.RefreshToken})
}

// ListCalls serves the read-only call-log pass-through.
// Query params: from, to (RFC 3339, required), status, role, limit.
func (h Handlers) ListCalls(c *gin.Context) {
	if h.Reports == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "reporting not configured"})
		return
	}

	from, err1 := time.Parse(time.RFC3339, c.Query("from"))
	to, err2 := time.Parse(time.RFC3339, c.Query("to"))
	if err1 != nil || err2 != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "from and to must be RFC 3339 timestamps"})
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = n
	}

	res, err := h.Reports.ListCalls(c.Request.Context(), reporting.ListCallsRequest{
		Range:  reporting.TimeRange{From: from, To: to},
		Status: calls.CallStatus(c.Query("status")),
		Role:   calls.CallRole(c.Query("role")),
		Limit:  limit,
	})
	if err != nil {
		if errors.Is(err, reporting.ErrInvalidRequest) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid query"})
			return
		}
		logger.FromGin(c).Error("call listing failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "listing failed"})
		return
	}
	c.JSON(http.StatusOK, res)
}
