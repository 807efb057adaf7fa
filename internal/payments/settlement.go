package payments

import (
	"context"
	"log"
	"time"

	"github.com/trainhub/session-booking/internal/httperr"
	"github.com/trainhub/session-booking/internal/models"
)

// Settlement coordinates the escrow sequence for one booking:
// authorize -> capture -> release-to-trainer, or refund on the way back.
// It is the only writer of PaymentRecord.
type Settlement struct {
	provider Provider
	repo     Repo
}

func NewSettlement(provider Provider, repo Repo) *Settlement {
	return &Settlement{
		provider: provider,
		repo:     repo,
	}
}

func (s *Settlement) record(ctx context.Context, bookingID uint) (*models.PaymentRecord, error) {
	rec, err := s.repo.GetByBookingID(ctx, bookingID)
	if err != nil {
		return nil, httperr.ErrBusiness("payment_not_found")
	}
	return rec, nil
}

// Get returns the booking's PaymentRecord, or payment_not_found.
func (s *Settlement) Get(ctx context.Context, bookingID uint) (*models.PaymentRecord, error) {
	return s.record(ctx, bookingID)
}

// ======================================================
// AUTHORIZE
// ======================================================

// Authorize places a hold for amount on behalf of the booking's client.
// A record that already carries an authorization id short-circuits, so a
// retried call after a timeout cannot double-charge.
func (s *Settlement) Authorize(
	ctx context.Context,
	bookingID uint,
	amount float64,
	currency string,
	payerEmail string,
	reference string,
) (*models.PaymentRecord, error) {

	rec, err := s.repo.GetByBookingID(ctx, bookingID)
	if err != nil {
		rec = &models.PaymentRecord{
			BookingID: bookingID,
			Amount:    amount,
			Currency:  currency,
			Status:    RecordPending,
		}
		if err := s.repo.Create(ctx, rec); err != nil {
			return nil, err
		}
	}

	if rec.AuthorizationID != "" {
		return rec, nil
	}

	authID, err := s.provider.Authorize(ctx, AuthorizeInput{
		Amount:         amount,
		Currency:       currency,
		PayerEmail:     payerEmail,
		Reference:      reference,
		Description:    "training session",
		IdempotencyKey: Key(bookingID, "authorize"),
	})
	if err != nil {
		log.Printf("authorization failed for booking %d: %v", bookingID, err)
		rec.Status = RecordFailed
		if uerr := s.repo.Update(ctx, rec); uerr != nil {
			return rec, uerr
		}
		return rec, httperr.ErrBusiness("payment_authorization_failed")
	}

	rec.AuthorizationID = authID
	rec.Status = RecordAuthorized
	if err := s.repo.Update(ctx, rec); err != nil {
		return rec, err
	}

	return rec, nil
}

// ======================================================
// CAPTURE
// ======================================================

// Capture finalizes the hold. Idempotent: an existing capture id or a
// record already completed by a webhook is returned as-is.
func (s *Settlement) Capture(ctx context.Context, bookingID uint) (*models.PaymentRecord, error) {
	rec, err := s.record(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if rec.CaptureID != "" || rec.Status == RecordCompleted {
		return rec, nil
	}

	if rec.AuthorizationID == "" || rec.Status != RecordAuthorized {
		return rec, httperr.ErrBusiness("payment_capture_failed")
	}

	capID, err := s.provider.Capture(ctx, rec.AuthorizationID, Key(bookingID, "capture"))
	if err != nil {
		log.Printf("capture failed for booking %d: %v", bookingID, err)
		return rec, httperr.ErrBusiness("payment_capture_failed")
	}

	rec.CaptureID = capID
	rec.Status = RecordCompleted
	if err := s.repo.Update(ctx, rec); err != nil {
		return rec, err
	}

	return rec, nil
}

// ======================================================
// REFUND
// ======================================================

// Refund returns amount to the payer. Requesting more than the remaining
// held amount fails with refund_exceeds_captured and changes nothing.
func (s *Settlement) Refund(
	ctx context.Context,
	bookingID uint,
	amount float64,
	reason string,
) (*models.PaymentRecord, error) {

	rec, err := s.record(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if rec.Status == RecordRefunded || rec.Status == RecordFailed {
		return rec, nil
	}

	remaining := rec.Amount - rec.RefundedAmount
	if amount > remaining {
		return rec, httperr.ErrBusiness("refund_exceeds_captured")
	}

	if rec.AuthorizationID == "" && rec.CaptureID == "" {
		// nothing was ever held
		return rec, httperr.ErrBusiness("refund_exceeds_captured")
	}

	providerRef := rec.CaptureID
	if providerRef == "" {
		providerRef = rec.AuthorizationID
	}

	refID, err := s.provider.Refund(ctx, providerRef, amount, reason, Key(bookingID, "refund"))
	if err != nil {
		log.Printf("refund failed for booking %d: %v", bookingID, err)
		return rec, err
	}

	rec.RefundID = refID
	rec.RefundedAmount += amount
	rec.Status = RecordRefunded
	if err := s.repo.Update(ctx, rec); err != nil {
		return rec, err
	}

	return rec, nil
}

// ======================================================
// RELEASE
// ======================================================

// ScheduleRelease marks when the captured amount becomes payout-eligible.
func (s *Settlement) ScheduleRelease(ctx context.Context, bookingID uint, at time.Time) error {
	rec, err := s.record(ctx, bookingID)
	if err != nil {
		return err
	}

	if rec.ReleaseEligibleAt == nil {
		rec.ReleaseEligibleAt = &at
		return s.repo.Update(ctx, rec)
	}
	return nil
}

// Release marks the capture eligible for payout to the trainer. Valid only
// once per capture, only for a completed record past its hold period. The
// coordinator does not move money; the external payout process consumes
// the IsReleased/ReleasedAt signal.
func (s *Settlement) Release(ctx context.Context, bookingID uint, now time.Time) (*models.PaymentRecord, error) {
	rec, err := s.record(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if rec.IsReleased {
		return rec, httperr.ErrBusiness("release_not_eligible")
	}
	if rec.Status != RecordCompleted || rec.CaptureID == "" {
		return rec, httperr.ErrBusiness("release_not_eligible")
	}
	if rec.ReleaseEligibleAt == nil || now.Before(*rec.ReleaseEligibleAt) {
		return rec, httperr.ErrBusiness("release_not_eligible")
	}

	rec.IsReleased = true
	rec.ReleasedAt = &now
	if err := s.repo.Update(ctx, rec); err != nil {
		return rec, err
	}

	return rec, nil
}

// ======================================================
// PROVIDER EVENT RECONCILIATION
// ======================================================

// ConfirmCapture applies an asynchronous capture-succeeded event. Terminal
// records are left alone; the returned bool reports whether state changed.
func (s *Settlement) ConfirmCapture(ctx context.Context, bookingID uint, captureID string) (*models.PaymentRecord, bool, error) {
	rec, err := s.record(ctx, bookingID)
	if err != nil {
		return nil, false, err
	}

	switch rec.Status {
	case RecordCompleted, RecordRefunded, RecordFailed:
		return rec, false, nil
	}

	if rec.CaptureID == "" {
		rec.CaptureID = captureID
	}
	rec.Status = RecordCompleted
	if err := s.repo.Update(ctx, rec); err != nil {
		return rec, false, err
	}
	return rec, true, nil
}

// FailCapture applies a capture-failed event.
func (s *Settlement) FailCapture(ctx context.Context, bookingID uint) (*models.PaymentRecord, bool, error) {
	rec, err := s.record(ctx, bookingID)
	if err != nil {
		return nil, false, err
	}

	switch rec.Status {
	case RecordCompleted, RecordRefunded, RecordFailed:
		return rec, false, nil
	}

	rec.Status = RecordFailed
	if err := s.repo.Update(ctx, rec); err != nil {
		return rec, false, err
	}
	return rec, true, nil
}

// ConfirmRefund applies a refund-succeeded event.
func (s *Settlement) ConfirmRefund(ctx context.Context, bookingID uint, refundID string) (*models.PaymentRecord, bool, error) {
	rec, err := s.record(ctx, bookingID)
	if err != nil {
		return nil, false, err
	}

	if rec.Status == RecordRefunded || rec.Status == RecordFailed {
		return rec, false, nil
	}

	if rec.RefundID == "" {
		rec.RefundID = refundID
	}
	rec.Status = RecordRefunded
	if err := s.repo.Update(ctx, rec); err != nil {
		return rec, false, err
	}
	return rec, true, nil
}

// OpenDispute flags the record; resolution happens out of band.
func (s *Settlement) OpenDispute(ctx context.Context, bookingID uint) (*models.PaymentRecord, bool, error) {
	rec, err := s.record(ctx, bookingID)
	if err != nil {
		return nil, false, err
	}

	if rec.Disputed {
		return rec, false, nil
	}

	rec.Disputed = true
	if err := s.repo.Update(ctx, rec); err != nil {
		return rec, false, err
	}
	return rec, true, nil
}
