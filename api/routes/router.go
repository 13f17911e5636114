package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/easyukapp/easyuk-backend/api/controllers"
	webhookcontrollers "github.com/easyukapp/easyuk-backend/api/controllers/webhooks"
	"github.com/easyukapp/easyuk-backend/api/middleware"
	"github.com/easyukapp/easyuk-backend/internal/marketplace"
	stripewebhook "github.com/easyukapp/easyuk-backend/internal/webhooks/stripe"
	"github.com/easyukapp/easyuk-backend/pkg/config"
	"github.com/easyukapp/easyuk-backend/pkg/db"
	"github.com/easyukapp/easyuk-backend/pkg/logger"
	"github.com/easyukapp/easyuk-backend/pkg/redis"
	"github.com/easyukapp/easyuk-backend/pkg/stripe"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisP redis.Pinger,
	marketplaceService marketplace.Service,
	stripeClient *stripe.Client,
	stripeWebhookService *stripewebhook.Service,
	stripeWebhookGuard *stripewebhook.IdempotencyGuard,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/stripe", webhookcontrollers.StripeWebhook(stripeWebhookService, stripeClient, stripeWebhookGuard, logg))
	})

	r.Route("/api/v1/listings", func(r chi.Router) {
		r.Get("/", controllers.BrowseListings(marketplaceService, logg))
		r.Get("/{listingId}", controllers.GetListing(marketplaceService, logg))
		r.Post("/{listingId}/views", controllers.RecordListingView(marketplaceService, logg))
		r.Post("/{listingId}/clicks", controllers.RecordListingClick(marketplaceService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Post("/", controllers.CreateListing(marketplaceService, logg))
			r.Get("/mine", controllers.MyListings(marketplaceService, logg))
			r.Patch("/{listingId}", controllers.UpdateListing(marketplaceService, logg))
		})
	})

	return r
}
