package main

import (
	"callbridge/internal/config"
	"callbridge/internal/httpapi"
	"callbridge/internal/rbac"

	"github.com/gin-gonic/gin"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, h httpapi.Handlers, cfg config.Config, authMW gin.HandlerFunc) {
	// public
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Provider webhooks (public).
	// NOTE: These endpoints should be protected by Twilio signature validation in production.
	r.POST("/webhooks/voice/inbound", h.InboundCall)
	r.POST("/webhooks/voice/status", h.ParticipantStatus)

	// Call-control documents fetched by the provider mid-call.
	r.POST("/twiml/conference", h.Conference)
	r.POST("/twiml/announce", h.Announce)

	// Assistant tool webhook. Origin filtering only; the assistant platform
	// does not sign tool requests.
	r.POST("/webhooks/assistant/transfer",
		httpapi.RequireAssistantOrigin(cfg.Assistant.AllowedOrigin), h.TransferTool)

	// Operator API
	v1 := r.Group("/v1")
	{
		// AUTH routes (token issuance).
		// NOTE: This is a placeholder login route; real credential validation is not implemented.
		v1.POST("/auth/login", h.Login)

		protected := v1.Group("")
		protected.Use(authMW)
		{
			protected.GET("/calls",
				rbac.RequireAnyRole(rbac.RoleOperator, rbac.RoleSupervisor), h.ListCalls)
		}
	}
}
