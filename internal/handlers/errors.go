package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/trainhub/session-booking/internal/httperr"
)

// writeBusinessError maps a business error code to an HTTP response.
// Unknown errors fall through to 500.
func writeBusinessError(c *gin.Context, err error) {
	switch code := httperr.BusinessCode(err); code {
	case "slot_conflict", "stale_booking_state":
		httperr.Conflict(c, code, "The booking changed underneath this request. Reload and retry.")
	case "invalid_transition", "invalid_slot", "invalid_amount",
		"session_not_elapsed", "release_not_eligible", "refund_exceeds_captured",
		"payment_authorization_failed", "payment_capture_failed":
		httperr.BadRequest(c, code, "The request cannot be applied to the booking in its current state.")
	case "booking_not_found", "payment_not_found", "trainer_not_found":
		httperr.NotFound(c, code, "Not found.")
	case "forbidden":
		httperr.Forbidden(c, code, "Not allowed for this account.")
	case "provisioning_failed":
		httperr.Internal(c, code, "Failed to provision session resources.")
	default:
		httperr.Internal(c, "internal_error", "Unexpected error.")
	}
}
