// Package payments sequences authorize, capture, refund and release against
// the payment-provider contract, and owns the PaymentRecord.
package payments

import (
	"context"
	"fmt"
)

// AuthorizeInput carries everything the provider needs to place a hold.
type AuthorizeInput struct {
	Amount         float64
	Currency       string
	PayerEmail     string
	Reference      string
	Description    string
	IdempotencyKey string
}

// Provider is the payment-network contract the coordinator sequences around.
// Every call takes a caller-supplied idempotency key so a retried request
// after a timeout does not double-charge or double-refund.
type Provider interface {
	// Authorize places a hold and returns the provider authorization id.
	Authorize(ctx context.Context, in AuthorizeInput) (string, error)

	// Capture takes previously held funds, returning the capture id.
	Capture(ctx context.Context, authorizationID, idempotencyKey string) (string, error)

	// Refund returns amount against a capture or authorization reference.
	Refund(ctx context.Context, providerRef string, amount float64, reason, idempotencyKey string) (string, error)
}

// Key derives the idempotency key for one operation on one booking, so the
// same logical call always reaches the provider under the same key.
func Key(bookingID uint, op string) string {
	return fmt.Sprintf("booking-%d:%s", bookingID, op)
}
