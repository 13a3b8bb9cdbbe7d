package handler

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/nexarq/taskmanager/internal/auth"
	"github.com/nexarq/taskmanager/internal/middleware"
)

// RouterConfig collects everything the router mounts.
type RouterConfig struct {
	Logger *slog.Logger

	Health   *HealthHandler
	Metrics  *MetricsHandler
	Accounts *AccountHandler
	Tasks    *TaskHandler
	Chat     *ChatHandler

	Authorizer auth.Authorizer
	// MinAuthDuration pads authorization attempts; zero disables padding.
	MinAuthDuration time.Duration

	// OwnershipEnforced puts GET /tasks behind authorization.
	OwnershipEnforced bool

	IsDevelopment      bool
	CORSAllowedOrigins []string
	MaxRequestBodySize int64
}

// NewRouter configures the chi router with all routes and middleware.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recoverer(cfg.Logger))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment}))

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.CORSAllowedOrigins
	r.Use(middleware.CORS(corsCfg))

	if cfg.MaxRequestBodySize > 0 {
		r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))
	}

	r.Get("/healthz", cfg.Health.Healthz)
	r.Get("/readyz", cfg.Health.Readyz)
	r.Get("/metrics", cfg.Metrics.Metrics)

	r.Post("/auth/register", cfg.Accounts.Register)
	r.Post("/auth/login", cfg.Accounts.Login)

	authorize := middleware.Authorize(middleware.AuthorizeConfig{
		Logger:      cfg.Logger,
		Authorizer:  cfg.Authorizer,
		MinDuration: cfg.MinAuthDuration,
	})

	if !cfg.OwnershipEnforced {
		r.Get("/tasks", cfg.Tasks.List)
	}

	r.Group(func(r chi.Router) {
		r.Use(authorize)

		r.Post("/user/preference", cfg.Accounts.SetPreference)

		if cfg.OwnershipEnforced {
			r.Get("/tasks", cfg.Tasks.List)
		}
		r.Post("/tasks", cfg.Tasks.Create)
		r.Patch("/tasks/{id}/status", cfg.Tasks.UpdateStatus)
		r.Delete("/tasks/{id}", cfg.Tasks.Delete)

		r.Post("/ai/chat", cfg.Chat.Ask)
	})

	h := New()
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}
