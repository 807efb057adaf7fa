// Package mercadopago implements the payments.Provider interface using the
// official SDK. Authorizations are created as uncaptured payments and settled
// later with a capture call.
package mercadopago

import (
	"context"
	"fmt"
	"strconv"

	"github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/payment"
	"github.com/mercadopago/sdk-go/pkg/refund"

	"github.com/trainhub/session-booking/internal/payments"
)

type Adapter struct {
	cfg *config.Config
}

func NewAdapter(accessToken string) (*Adapter, error) {
	cfg, err := config.New(accessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create MP config: %w", err)
	}
	return &Adapter{cfg: cfg}, nil
}

func (a *Adapter) Authorize(ctx context.Context, in payments.AuthorizeInput) (string, error) {
	client := payment.NewClient(a.cfg)

	request := payment.Request{
		TransactionAmount: in.Amount,
		Description:       in.Description,
		ExternalReference: in.Reference,
		Capture:           false,
		Payer: &payment.PayerRequest{
			Email: in.PayerEmail,
		},
		Metadata: map[string]any{
			"idempotency_key": in.IdempotencyKey,
		},
	}

	result, err := client.Create(ctx, request)
	if err != nil {
		return "", fmt.Errorf("failed to authorize payment: %w", err)
	}

	return strconv.Itoa(result.ID), nil
}

// The SDK manages the X-Idempotency-Key header internally and exposes no
// per-call override, so the caller-supplied key cannot reach the wire on
// capture and refund. Retry dedup against the provider relies on the
// settlement layer short-circuiting on the stored provider ids.
func (a *Adapter) Capture(ctx context.Context, authorizationID, idempotencyKey string) (string, error) {
	client := payment.NewClient(a.cfg)

	id, err := strconv.Atoi(authorizationID)
	if err != nil {
		return "", fmt.Errorf("invalid authorization ID format: %w", err)
	}

	result, err := client.Capture(ctx, id)
	if err != nil {
		return "", fmt.Errorf("failed to capture payment: %w", err)
	}

	return strconv.Itoa(result.ID), nil
}

func (a *Adapter) Refund(ctx context.Context, providerRef string, amount float64, reason, idempotencyKey string) (string, error) {
	client := refund.NewClient(a.cfg)

	id, err := strconv.Atoi(providerRef)
	if err != nil {
		return "", fmt.Errorf("invalid payment ID format: %w", err)
	}

	result, err := client.CreatePartialRefund(ctx, id, amount)
	if err != nil {
		return "", fmt.Errorf("failed to refund payment: %w", err)
	}

	return strconv.Itoa(result.ID), nil
}

// Compile-time check
var _ payments.Provider = (*Adapter)(nil)
