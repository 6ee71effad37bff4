package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/eyira/storefront/api/controllers"
	webhookcontrollers "github.com/eyira/storefront/api/controllers/webhooks"
	"github.com/eyira/storefront/api/middleware"
	checkoutsvc "github.com/eyira/storefront/internal/checkout"
	"github.com/eyira/storefront/internal/sessions"
	"github.com/eyira/storefront/pkg/config"
	"github.com/eyira/storefront/pkg/logger"
)

type Deps struct {
	Config          *config.Config
	Logger          *logger.Logger
	Checkout        checkoutsvc.Service
	Sessions        sessions.Service
	WebhookService  webhookcontrollers.StripeWebhookService
	WebhookVerifier webhookcontrollers.EventVerifier
	ReadinessChecks map[string]controllers.Pinger
	MetricsGatherer prometheus.Gatherer
}

func NewRouter(deps Deps) http.Handler {
	cfg, logg := deps.Config, deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.ReadinessChecks))
	})

	if deps.MetricsGatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.MetricsGatherer, promhttp.HandlerOpts{}))
	}

	postOnly := middleware.AllowMethods(http.MethodPost)

	r.Route("/api", func(r chi.Router) {
		r.With(postOnly).HandleFunc("/checkout", controllers.Checkout(deps.Checkout, logg))
		r.With(postOnly).HandleFunc("/webhook", webhookcontrollers.StripeWebhook(deps.WebhookService, deps.WebhookVerifier, logg))
		r.Get("/get-session", controllers.GetSession(deps.Sessions, logg))
	})

	return r
}
