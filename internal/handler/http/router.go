package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mwarzecha/authgate/internal/service"
	"github.com/mwarzecha/authgate/pkg/health"
	"github.com/mwarzecha/authgate/pkg/middleware"
)

// NewRouter creates a chi router with all auth routes registered.
func NewRouter(
	provider IdentityClient,
	authService *service.AuthService,
	healthHandler *health.Handler,
	logger *slog.Logger,
	corsConfig CORSConfig,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(CORS(corsConfig))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Tracing("authgate"))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("authgate"))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	authHandler := NewAuthHandler(provider, authService, logger)
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(ContentTypeJSON).Post("/sign-up", authHandler.SignUp)
		r.With(ContentTypeJSON).Post("/sign-in", authHandler.SignIn)
		r.Post("/sign-out", authHandler.SignOut)
		r.Get("/me", authHandler.Me)
		r.Get("/status", authHandler.Status)
	})

	return r
}
