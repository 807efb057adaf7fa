package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	domain "github.com/trainhub/session-booking/internal/domain/booking"
	"github.com/trainhub/session-booking/internal/dto"
	"github.com/trainhub/session-booking/internal/httperr"
	"github.com/trainhub/session-booking/internal/httpresp"
	"github.com/trainhub/session-booking/internal/middleware"
	"github.com/trainhub/session-booking/internal/models"
	"github.com/trainhub/session-booking/internal/payments"
	ucbooking "github.com/trainhub/session-booking/internal/usecase/booking"
)

// ======================================================
// HANDLER
// ======================================================

type BookingHandler struct {
	createUC   *ucbooking.CreateBooking
	confirmUC  *ucbooking.ConfirmBooking
	declineUC  *ucbooking.DeclineBooking
	cancelUC   *ucbooking.CancelBooking
	completeUC *ucbooking.CompleteBooking
	noShowUC   *ucbooking.MarkNoShow
	releaseUC  *ucbooking.ReleasePayout

	repo       domain.Repository
	settlement *payments.Settlement
}

func NewBookingHandler(
	createUC *ucbooking.CreateBooking,
	confirmUC *ucbooking.ConfirmBooking,
	declineUC *ucbooking.DeclineBooking,
	cancelUC *ucbooking.CancelBooking,
	completeUC *ucbooking.CompleteBooking,
	noShowUC *ucbooking.MarkNoShow,
	releaseUC *ucbooking.ReleasePayout,
	repo domain.Repository,
	settlement *payments.Settlement,
) *BookingHandler {
	return &BookingHandler{
		createUC:   createUC,
		confirmUC:  confirmUC,
		declineUC:  declineUC,
		cancelUC:   cancelUC,
		completeUC: completeUC,
		noShowUC:   noShowUC,
		releaseUC:  releaseUC,
		repo:       repo,
		settlement: settlement,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateBookingRequest struct {
	TrainerID   uint    `json:"trainer_id" binding:"required"`
	SessionType string  `json:"session_type" binding:"required"`
	StartTime   string  `json:"start_time" binding:"required"`
	EndTime     string  `json:"end_time" binding:"required"`
	Amount      float64 `json:"amount" binding:"required"`
	Currency    string  `json:"currency"`
	Notes       string  `json:"notes"`
}

// ======================================================
// HELPERS
// ======================================================

func actorFrom(c *gin.Context) ucbooking.Actor {
	return ucbooking.Actor{
		UserID: c.MustGet(middleware.ContextUserID).(uint),
		Role:   c.MustGet(middleware.ContextUserRole).(string),
	}
}

func bookingIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_booking_id", "Booking id must be numeric.")
		return 0, false
	}
	return uint(id), true
}

// ======================================================
// CREATE
// ======================================================

func (h *BookingHandler) Create(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid booking payload.")
		return
	}

	start, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		httperr.BadRequest(c, "invalid_start_time", "start_time must be RFC3339.")
		return
	}

	end, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		httperr.BadRequest(c, "invalid_end_time", "end_time must be RFC3339.")
		return
	}

	currency := req.Currency
	if currency == "" {
		currency = "BRL"
	}

	b, err := h.createUC.Execute(c.Request.Context(), actorFrom(c), ucbooking.CreateBookingInput{
		TrainerID:   req.TrainerID,
		SessionType: req.SessionType,
		StartTime:   start.UTC(),
		EndTime:     end.UTC(),
		Amount:      req.Amount,
		Currency:    currency,
		Notes:       req.Notes,
	})
	if err != nil {
		writeBusinessError(c, err)
		return
	}

	c.JSON(201, b)
}

// ======================================================
// GET
// ======================================================

func (h *BookingHandler) Get(c *gin.Context) {
	id, ok := bookingIDParam(c)
	if !ok {
		return
	}

	actor := actorFrom(c)

	b, err := h.repo.GetBooking(c.Request.Context(), id)
	if err != nil {
		httperr.NotFound(c, "booking_not_found", "Booking not found.")
		return
	}

	if actor.Role != models.RoleAdmin && actor.UserID != b.ClientID && actor.UserID != b.TrainerID {
		httperr.NotFound(c, "booking_not_found", "Booking not found.")
		return
	}

	resp := gin.H{"booking": b}
	if rec, err := h.settlement.Get(c.Request.Context(), id); err == nil {
		resp["payment"] = rec
	}

	c.JSON(200, resp)
}

// ======================================================
// LIFECYCLE TRANSITIONS
// ======================================================

func (h *BookingHandler) Confirm(c *gin.Context) {
	h.transition(c, func(actor ucbooking.Actor, id uint) (*models.Booking, error) {
		return h.confirmUC.Execute(c.Request.Context(), actor, id)
	})
}

func (h *BookingHandler) Decline(c *gin.Context) {
	h.transition(c, func(actor ucbooking.Actor, id uint) (*models.Booking, error) {
		return h.declineUC.Execute(c.Request.Context(), actor, id)
	})
}

func (h *BookingHandler) Cancel(c *gin.Context) {
	h.transition(c, func(actor ucbooking.Actor, id uint) (*models.Booking, error) {
		return h.cancelUC.Execute(c.Request.Context(), actor, id)
	})
}

func (h *BookingHandler) Complete(c *gin.Context) {
	h.transition(c, func(actor ucbooking.Actor, id uint) (*models.Booking, error) {
		return h.completeUC.Execute(c.Request.Context(), actor, id)
	})
}

func (h *BookingHandler) NoShow(c *gin.Context) {
	h.transition(c, func(actor ucbooking.Actor, id uint) (*models.Booking, error) {
		return h.noShowUC.Execute(c.Request.Context(), actor, id)
	})
}

func (h *BookingHandler) transition(
	c *gin.Context,
	exec func(actor ucbooking.Actor, id uint) (*models.Booking, error),
) {
	id, ok := bookingIDParam(c)
	if !ok {
		return
	}

	b, err := exec(actorFrom(c), id)
	if err != nil {
		writeBusinessError(c, err)
		return
	}

	c.JSON(200, b)
}

// ======================================================
// RELEASE
// ======================================================

func (h *BookingHandler) Release(c *gin.Context) {
	id, ok := bookingIDParam(c)
	if !ok {
		return
	}

	rec, err := h.releaseUC.Execute(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		writeBusinessError(c, err)
		return
	}

	c.JSON(200, rec)
}

// ======================================================
// LIST (trainer agenda)
// ======================================================

func (h *BookingHandler) ListMine(c *gin.Context) {
	actor := actorFrom(c)
	if actor.Role != models.RoleTrainer {
		httperr.Forbidden(c, "forbidden", "Only trainers list their agenda.")
		return
	}

	fromStr := c.DefaultQuery("from", time.Now().UTC().Format("2006-01-02"))
	from, err := time.Parse("2006-01-02", fromStr)
	if err != nil {
		httperr.BadRequest(c, "invalid_from", "from must be YYYY-MM-DD.")
		return
	}

	days, _ := strconv.Atoi(c.DefaultQuery("days", "7"))
	if days <= 0 || days > 31 {
		days = 7
	}

	bookings, err := h.repo.ListForTrainer(
		c.Request.Context(),
		actor.UserID,
		from,
		from.AddDate(0, 0, days),
	)
	if err != nil {
		httperr.Internal(c, "booking_list_failed", "Failed to list bookings.")
		return
	}

	out := make([]dto.BookingListDTO, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, dto.BookingListDTO{
			ID:            b.ID,
			Reference:     b.Reference,
			StartTime:     b.StartTime,
			EndTime:       b.EndTime,
			Status:        b.Status,
			PaymentStatus: b.PaymentStatus,
			SessionType:   b.SessionType,
			ClientName:    b.Client.Name,
		})
	}

	httpresp.List(c, out)
}
