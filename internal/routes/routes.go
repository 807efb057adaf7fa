package routes

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"github.com/trainhub/session-booking/internal/audit"
	"github.com/trainhub/session-booking/internal/config"
	domain "github.com/trainhub/session-booking/internal/domain/booking"
	"github.com/trainhub/session-booking/internal/handlers"
	"github.com/trainhub/session-booking/internal/infra/calendar"
	"github.com/trainhub/session-booking/internal/infra/meetings"
	"github.com/trainhub/session-booking/internal/infra/mercadopago"
	"github.com/trainhub/session-booking/internal/infra/redisdedup"
	infraRepo "github.com/trainhub/session-booking/internal/infra/repository"
	"github.com/trainhub/session-booking/internal/middleware"
	"github.com/trainhub/session-booking/internal/models"
	"github.com/trainhub/session-booking/internal/notify"
	"github.com/trainhub/session-booking/internal/payments"
	"github.com/trainhub/session-booking/internal/provisioning"
	ucBooking "github.com/trainhub/session-booking/internal/usecase/booking"
	"github.com/trainhub/session-booking/internal/webhooks"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB, rdb *redis.Client, cfg *config.Config) {

	// ======================================================
	// GLOBAL MIDDLEWARE
	// ======================================================
	r.Use(middleware.CORSMiddleware())

	// ======================================================
	// INFRA (SINGLETONS)
	// ======================================================
	bookingRepo := infraRepo.NewBookingGormRepository(db)
	paymentRepo := infraRepo.NewPaymentGormRepository(db)
	provisionedRepo := infraRepo.NewProvisionedGormRepository(db)
	userRepo := infraRepo.NewUserGormRepository(db)

	provider, err := mercadopago.NewAdapter(cfg.MPAccessToken)
	if err != nil {
		log.Fatalf("failed to init payment provider: %v", err)
	}
	settlement := payments.NewSettlement(provider, paymentRepo)

	meetingClient := meetings.NewClient(cfg.MeetingBaseURL, cfg.MeetingAPIKey)
	calendarClient := calendar.NewClient(cfg.CalendarBaseURL, cfg.CalendarAPIKey)
	orchestrator := provisioning.NewOrchestrator(meetingClient, calendarClient, provisionedRepo)
	retrier := provisioning.NewRetrier(orchestrator, bookingRepo, userRepo, cfg.ProvisionMaxRetries)

	auditLogger := audit.New(db)
	auditDispatcher := audit.NewDispatcher(auditLogger)

	notifier := notify.NewLogNotifier()

	policy := domain.Policy{
		CancellationWindow:      time.Duration(cfg.CancelWindowHours) * time.Hour,
		LateCancelRefundPercent: cfg.LateCancelRefundPercent,
		PayoutHold:              time.Duration(cfg.PayoutHoldHours) * time.Hour,
	}

	// ======================================================
	// USE CASES (BOOKINGS)
	// ======================================================
	createBookingUC := ucBooking.NewCreateBooking(
		bookingRepo,
		userRepo,
		settlement,
		auditDispatcher,
	)

	confirmBookingUC := ucBooking.NewConfirmBooking(
		bookingRepo,
		userRepo,
		orchestrator,
		retrier,
		notifier,
		auditDispatcher,
	)

	declineBookingUC := ucBooking.NewDeclineBooking(
		bookingRepo,
		settlement,
		orchestrator,
		retrier,
		notifier,
		auditDispatcher,
	)

	cancelBookingUC := ucBooking.NewCancelBooking(
		bookingRepo,
		settlement,
		orchestrator,
		retrier,
		notifier,
		auditDispatcher,
		policy,
	)

	completeBookingUC := ucBooking.NewCompleteBooking(
		bookingRepo,
		settlement,
		auditDispatcher,
		policy,
	)

	markNoShowUC := ucBooking.NewMarkNoShow(
		bookingRepo,
		settlement,
		orchestrator,
		retrier,
		auditDispatcher,
		policy,
	)

	releasePayoutUC := ucBooking.NewReleasePayout(
		bookingRepo,
		settlement,
		auditDispatcher,
	)

	applyPaymentEventUC := ucBooking.NewApplyPaymentEvent(
		bookingRepo,
		settlement,
		auditDispatcher,
	)

	// ======================================================
	// WEBHOOKS
	// ======================================================
	eventStore := redisdedup.NewStore(rdb, 72*time.Hour)
	reconciler := webhooks.NewReconciler(eventStore, applyPaymentEventUC)
	validator := webhooks.NewSignatureValidator(cfg.WebhookSecret)

	// ======================================================
	// HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(db, cfg)
	meHandler := handlers.NewMeHandler(db)

	bookingHandler := handlers.NewBookingHandler(
		createBookingUC,
		confirmBookingUC,
		declineBookingUC,
		cancelBookingUC,
		completeBookingUC,
		markNoShowUC,
		releasePayoutUC,
		bookingRepo,
		settlement,
	)

	webhookHandler := handlers.NewWebhookHandler(validator, reconciler)
	auditLogsHandler := handlers.NewAuditLogsHandler(db)

	// ======================================================
	// WEBHOOKS (unauthenticated, signature-validated)
	// ======================================================
	r.POST("/webhooks/payments", webhookHandler.HandlePaymentEvent)

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// AUTH
		// ------------------------------
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)

		// ------------------------------
		// PRIVATE API
		// ------------------------------
		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(cfg))
		{
			secured.GET("/me", meHandler.GetMe)
			secured.GET("/me/bookings", bookingHandler.ListMine)

			// ------------------------------
			// BOOKINGS
			// ------------------------------
			secured.POST("/bookings", bookingHandler.Create)
			secured.GET("/bookings/:id", bookingHandler.Get)
			secured.PATCH("/bookings/:id/confirm", bookingHandler.Confirm)
			secured.PATCH("/bookings/:id/decline", bookingHandler.Decline)
			secured.PATCH("/bookings/:id/cancel", bookingHandler.Cancel)
			secured.PATCH("/bookings/:id/complete", bookingHandler.Complete)
			secured.PATCH("/bookings/:id/no-show", bookingHandler.NoShow)
			secured.PATCH("/bookings/:id/release", bookingHandler.Release)

			secured.GET("/audit-logs",
				middleware.RequireRole(models.RoleAdmin),
				auditLogsHandler.List,
			)
		}
	}
}
