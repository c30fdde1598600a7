package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carplusapp/carplus-backend/api/controllers"
	"github.com/carplusapp/carplus-backend/api/middleware"
	"github.com/carplusapp/carplus-backend/internal/payouts"
	"github.com/carplusapp/carplus-backend/pkg/config"
	"github.com/carplusapp/carplus-backend/pkg/logger"
	"github.com/carplusapp/carplus-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbPinger controllers.Pinger,
	redisClient *redis.Client,
	payoutsService payouts.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	readiness := []controllers.ReadinessDep{{Name: "postgres", Pinger: dbPinger}}
	var idempotencyStore redis.IdempotencyStore
	var limiterStore middleware.RateLimiterStore
	if redisClient != nil {
		readiness = append(readiness, controllers.ReadinessDep{Name: "redis", Pinger: redisClient})
		idempotencyStore = redisClient
		limiterStore = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readiness...))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Idempotency(idempotencyStore, logg))
		r.Use(middleware.RateLimit(limiterStore, cfg.RateLimit.Requests, cfg.RateLimit.Window, logg))

		r.Route("/resellers/{resellerId}", func(r chi.Router) {
			r.Get("/eligible-orders", controllers.ResellerEligibleOrders(payoutsService, logg))
			r.Post("/payouts", controllers.ExecutePayout(payoutsService, logg))
		})

		r.Route("/payouts", func(r chi.Router) {
			r.Get("/", controllers.ListPayouts(payoutsService, logg))
			r.Get("/summary", controllers.PayoutSummary(payoutsService, logg))
			r.Get("/{payoutId}", controllers.PayoutDetail(payoutsService, logg))
			r.Post("/{payoutId}/reconcile", controllers.ReconcilePayout(payoutsService, logg))
		})
	})

	return r
}
