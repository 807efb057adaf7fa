package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/trainhub/session-booking/internal/httperr"
	"github.com/trainhub/session-booking/internal/webhooks"
)

// ======================================================
// HANDLER
// ======================================================

// WebhookHandler receives payment-provider notifications. The provider
// retries until it sees 200, so every accepted-but-irrelevant event still
// answers 200; only transport and signature problems are rejected.
type WebhookHandler struct {
	validator  *webhooks.SignatureValidator
	reconciler *webhooks.Reconciler
}

func NewWebhookHandler(
	validator *webhooks.SignatureValidator,
	reconciler *webhooks.Reconciler,
) *WebhookHandler {
	return &WebhookHandler{
		validator:  validator,
		reconciler: reconciler,
	}
}

func (h *WebhookHandler) HandlePaymentEvent(c *gin.Context) {
	var ev webhooks.Event
	if err := c.ShouldBindJSON(&ev); err != nil {
		httperr.BadRequest(c, "invalid_payload", "Invalid webhook payload.")
		return
	}

	if ev.ID == "" {
		httperr.BadRequest(c, "missing_event_id", "Webhook event id is required.")
		return
	}

	xSignature := c.GetHeader("x-signature")
	xRequestID := c.GetHeader("x-request-id")

	if !h.validator.Validate(xSignature, xRequestID, ev.ID) {
		httperr.Unauthorized(c, "invalid_signature", "Webhook signature validation failed.")
		return
	}

	if err := h.reconciler.Handle(c.Request.Context(), ev); err != nil {
		httperr.Internal(c, "event_processing_failed", "Failed to process webhook event.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
