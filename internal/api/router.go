package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/nedu/taskhub/internal/api/handlers"
	"github.com/nedu/taskhub/internal/api/middleware"
	"github.com/nedu/taskhub/internal/service"
	"github.com/nedu/taskhub/internal/websocket"
)

func NewRouter(services *service.Services, hub *websocket.Hub) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.CORS)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(services.Auth)
	accountHandler := handlers.NewAccountHandler(services.Password)
	taskHandler := handlers.NewTaskHandler(services.Task)
	adminTaskHandler := handlers.NewAdminTaskHandler(services.Task)
	adminUserHandler := handlers.NewAdminUserHandler(services.User, services.Privilege)
	wsHandler := handlers.NewWebSocketHandler(hub)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public auth routes
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", authHandler.Signup)
			r.Post("/login", authHandler.Login)

			// Protected auth routes
			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(services.Auth))
				r.Get("/me", authHandler.Me)
				r.Post("/logout", authHandler.Logout)
			})
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(services.Auth))

			r.Patch("/account/password", accountHandler.UpdatePassword)

			// Assignee task routes
			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", taskHandler.List)
				r.Get("/{id}", taskHandler.Get)
				r.Patch("/{id}", taskHandler.Update)
			})

			// Administrative routes
			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireAdmin(services.Privilege))

				r.Route("/tasks", func(r chi.Router) {
					r.Post("/", adminTaskHandler.Create)
					r.Get("/", adminTaskHandler.List)
					r.Get("/{id}", adminTaskHandler.Get)
					r.Patch("/{id}", adminTaskHandler.Update)
					r.Delete("/{id}", adminTaskHandler.Delete)
				})

				r.Route("/users", func(r chi.Router) {
					r.Get("/", adminUserHandler.List)
					r.Get("/{id}", adminUserHandler.Get)
					r.Patch("/{id}/status/{status}", adminUserHandler.UpdateStatus)
				})

				r.Route("/privileges", func(r chi.Router) {
					r.Post("/", adminUserHandler.AssignPrivilege)
					r.Get("/", adminUserHandler.ListPrivileges)
					r.Delete("/{id}", adminUserHandler.RevokePrivilege)
				})
			})
		})

		// WebSocket endpoint. The upgrade is open; endpoints authenticate
		// with their first frame.
		r.Get("/ws", wsHandler.Serve)
	})

	return r
}
