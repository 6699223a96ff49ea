package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"github.com/markdave123-py/reviewdesk/internal/api/handlers"
	appMiddleware "github.com/markdave123-py/reviewdesk/internal/api/middlewares"
	"github.com/markdave123-py/reviewdesk/internal/config"
	"github.com/markdave123-py/reviewdesk/internal/logging"
	"github.com/markdave123-py/reviewdesk/internal/monitoring"
	"github.com/markdave123-py/reviewdesk/internal/services"
)

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Routes groups what the router dispatches to.
type Routes struct {
	Reviews handlers.ReviewService
	Auth    *services.AuthService
	Health  Pinger // optional
}

// NewRouter wires every endpoint. Admin routes sit behind JWT auth when a
// secret is configured.
func NewRouter(cfg *config.Config, rt Routes) http.Handler {
	if rt.Auth == nil {
		rt.Auth = services.NewAuthService("", "")
	}
	reviewHandler := handlers.NewReviewHandler(rt.Reviews)
	adminHandler := handlers.NewAdminHandler(rt.Reviews)
	authHandler := handlers.NewAuthHandler(rt.Auth)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(appMiddleware.Recoverer)
	r.Use(monitoring.PrometheusMiddleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CorsOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Handle("/metrics", monitoring.MetricsHandler())
	r.Get("/healthz", healthHandler(rt.Health))

	r.Route("/api", func(api chi.Router) {
		// public endpoint; each LLM call is bounded by the gateway timeout and
		// always ends on a reply, so the route itself carries no deadline
		api.Post("/reviews", reviewHandler.Submit)

		api.Route("/admin", func(admin chi.Router) {
			admin.Use(middleware.NoCache)
			admin.Post("/login", authHandler.Login)

			// protected endpoints
			admin.Group(func(protected chi.Router) {
				if rt.Auth.Enabled() {
					protected.Use(appMiddleware.JWTMiddleware(cfg.JWTSecret))
				} else {
					logging.Warn("JWT_SECRET not set, admin routes are unauthenticated", nil)
				}
				protected.Get("/reviews", adminHandler.List)
				protected.Delete("/reviews/{id}", adminHandler.Delete)
				protected.Get("/stats", adminHandler.Stats)
				protected.Post("/export", adminHandler.Export)
				// no request timeout: a full regeneration outlives it
				protected.Post("/regenerate", adminHandler.Regenerate)
			})
		})
	})

	return r
}

func healthHandler(p Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if p != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := p.Ping(ctx); err != nil {
				logging.Warn("health check failed", logrus.Fields{"error": err.Error()})
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"status":"unavailable"}`))
				return
			}
		}
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
}

func NewServer(port string, handler http.Handler) *Server {
	httpSrv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return &Server{httpServer: httpSrv}
}

// Start runs the HTTP server until it is shut down.
func (s *Server) Start() error {
	logging.Info("HTTP server listening", logrus.Fields{"addr": s.httpServer.Addr})
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("shutting down HTTP server", nil)
	return s.httpServer.Shutdown(ctx)
}
