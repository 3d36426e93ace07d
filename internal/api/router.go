package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/sonna/artists-backend/internal/api/handlers"
	"github.com/sonna/artists-backend/internal/api/middleware"
	"github.com/sonna/artists-backend/internal/auth"
	"github.com/sonna/artists-backend/internal/catalog"
	"github.com/sonna/artists-backend/internal/review"
	"gorm.io/gorm"
)

type Router struct {
	chi.Router
}

type RouterConfig struct {
	DB             *gorm.DB
	Redis          *redis.Client
	Inspector      *asynq.Inspector
	Logger         *slog.Logger
	AuthService    *auth.Service
	CatalogService *catalog.Service
	ReviewService  *review.Service
	AnalystAPIKey  string   // empty disables the analyst surface
	AllowedOrigins []string // CORS allowed origins
	RateLimitReqs  int      // Rate limit requests per window
	RateLimitSecs  int      // Rate limit window in seconds
	SessionTTLSecs int      // Session cookie lifetime
}

func NewRouter(cfg RouterConfig) *Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))

	if cfg.RateLimitReqs > 0 {
		r.Use(middleware.RateLimit(cfg.RateLimitReqs, cfg.RateLimitSecs))
	}

	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		// Default to localhost for development - configure in production
		allowedOrigins = []string{"http://localhost:3000", "http://localhost:8080"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Auth-Token", "X-API-Key"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	csrfStore := middleware.NewCSRFStore()

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(cfg.DB, cfg.Redis, cfg.Inspector)
	authHandler := handlers.NewAuthHandler(cfg.AuthService, cfg.SessionTTLSecs)
	artistHandler := handlers.NewArtistHandler(cfg.CatalogService)
	trackHandler := handlers.NewTrackHandler(cfg.CatalogService)
	analystHandler := handlers.NewAnalystHandler(cfg.ReviewService)

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public auth endpoints
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/verification/send", authHandler.SendVerification)
		r.Post("/auth/verification/confirm", authHandler.ConfirmVerification)

		// Session-protected routes. CSRF covers the cookie-auth path;
		// header-token clients pass through.
		r.Group(func(r chi.Router) {
			r.Use(middleware.CSRF(csrfStore))
			r.Use(middleware.Auth(cfg.AuthService))

			r.Post("/auth/logout", authHandler.Logout)
			r.Get("/auth/me", authHandler.Me)

			// Artist roster
			r.Route("/artists", func(r chi.Router) {
				r.Get("/", artistHandler.List)
				r.Post("/", artistHandler.Create)
				r.Get("/{id}", artistHandler.Get)
				r.Put("/{id}", artistHandler.Update)
				r.Delete("/{id}", artistHandler.Delete)
				r.Get("/{id}/tracks", trackHandler.ListByArtist)
				r.Post("/{id}/tracks", trackHandler.Submit)
			})

			// Track catalog
			r.Route("/tracks", func(r chi.Router) {
				r.Get("/{id}", trackHandler.Get)
				r.Delete("/{id}", trackHandler.Delete)
				r.Get("/{id}/duplicates", trackHandler.Duplicates)
				r.Get("/{id}/submissions", trackHandler.Submissions)
			})
		})

		// Analyst surface, gated by a shared API key
		if cfg.AnalystAPIKey != "" {
			r.Group(func(r chi.Router) {
				r.Use(middleware.AnalystKey(cfg.AnalystAPIKey))

				r.Get("/analyst/tracks/pending", analystHandler.PendingTracks)
				r.Post("/analyst/tracks/{id}/decision", analystHandler.Decide)
				r.Put("/analyst/submissions/{id}", analystHandler.UpdateSubmission)
			})
		}
	})

	return &Router{r}
}
