package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tmoreno/bulkbridge-backend/api/controllers"
	"github.com/tmoreno/bulkbridge-backend/api/middleware"
	"github.com/tmoreno/bulkbridge-backend/internal/negotiation"
	"github.com/tmoreno/bulkbridge-backend/internal/notifications"
	"github.com/tmoreno/bulkbridge-backend/pkg/config"
	"github.com/tmoreno/bulkbridge-backend/pkg/logger"
	"github.com/tmoreno/bulkbridge-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	redisClient *redis.Client,
	negotiationService *negotiation.Service,
	notificationsService notifications.Service,
	readiness ...controllers.Pinger,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readiness...))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Route("/requests", func(r chi.Router) {
			r.Post("/", controllers.CreateRequest(negotiationService.Requests, logg))
			r.Get("/", controllers.ListBuyerRequests(negotiationService.Requests, logg))
			r.Get("/processing", controllers.ListProcessingRequests(negotiationService.Requests, logg))
			r.Post("/{requestId}/status", controllers.AdvanceRequestStatus(negotiationService.Requests, logg))
			r.Delete("/{requestId}", controllers.DeleteRequest(negotiationService.Requests, logg))
			r.Get("/{requestId}/offers", controllers.ListRequestOffers(negotiationService.Offers, logg))
		})

		r.Route("/offers", func(r chi.Router) {
			r.Get("/", controllers.ListSellerOffers(negotiationService.Offers, logg))
			r.Get("/accepted", controllers.ListAcceptedOffers(negotiationService.Offers, logg))
			r.Get("/{offerId}", controllers.GetOfferDetail(negotiationService.Offers, logg))
			r.Post("/{offerId}/quote", controllers.SubmitOffer(negotiationService.Offers, logg))
			r.Patch("/{offerId}", controllers.UpdateOffer(negotiationService.Offers, logg))
			r.Delete("/{offerId}", controllers.DeleteOffer(negotiationService.Offers, logg))
			r.Post("/{offerId}/accept", controllers.AcceptOffer(negotiationService.Acceptance, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(notificationsService, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(notificationsService, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(notificationsService, logg))
		})
	})

	return r
}
