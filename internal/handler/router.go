package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Maheshwaran1303/todo-backend-redrf/internal/middleware"
	"github.com/Maheshwaran1303/todo-backend-redrf/internal/service"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
)

// RouterConfig carries the services and limits the HTTP surface needs.
// A nil Auth or Todos leaves only /health mounted.
type RouterConfig struct {
	Auth  *service.AuthService
	Todos *service.TodoService

	// AuthRPS and AuthBurst throttle the unauthenticated auth endpoints.
	AuthRPS   float64
	AuthBurst int
	// RequestsPerMinute caps every route per client IP. Zero disables it.
	RequestsPerMinute int

	Production bool
}

// NewRouter builds the chi router. ctx bounds the rate limiter's background
// cleanup.
func NewRouter(ctx context.Context, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.RequestID)
	r.Use(middleware.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.SecureHeaders(cfg.Production))
	r.Use(chimw.StripSlashes)
	if cfg.RequestsPerMinute > 0 {
		r.Use(httprate.LimitByIP(cfg.RequestsPerMinute, time.Minute))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, detailResponse(msgNotFound))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, detailResponse(fmt.Sprintf("Method %q not allowed.", r.Method)))
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	if cfg.Auth == nil || cfg.Todos == nil {
		return r
	}

	authHandler := NewAuthHandler(cfg.Auth)
	todoHandler := NewTodoHandler(cfg.Todos)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(ctx, cfg.AuthRPS, cfg.AuthBurst))
		r.Post("/api/users/register", authHandler.HandleRegister)
		r.Post("/api/users/login", authHandler.HandleLogin)
		r.Post("/api/users/token/refresh", authHandler.HandleRefresh)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.JWTAuth(cfg.Auth))
		r.Post("/api/users/logout", authHandler.HandleLogout)
		r.Get("/api/users/me", authHandler.HandleMe)

		r.Route("/api/todos", func(r chi.Router) {
			r.Get("/", todoHandler.HandleList)
			r.Post("/", todoHandler.HandleCreate)
			r.Get("/{id}", todoHandler.HandleGet)
			r.Put("/{id}", todoHandler.HandleReplace)
			r.Patch("/{id}", todoHandler.HandlePatch)
			r.Delete("/{id}", todoHandler.HandleDelete)
		})
	})

	return r
}
