package api

import (
	"net/http"

	"github.com/dom/hades-build-planner/internal/api/handlers"
	"github.com/dom/hades-build-planner/internal/api/middleware"
	"github.com/dom/hades-build-planner/internal/config"
	"github.com/dom/hades-build-planner/internal/metrics"
	"github.com/dom/hades-build-planner/internal/service"
	"github.com/dom/hades-build-planner/internal/websocket"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(services *service.Services, hub *websocket.Hub, cfg *config.Config) http.Handler {
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

	if cfg.MetricsEnabled {
		r.Handle("/metrics", metrics.Handler())
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(services.Auth)
	catalogHandler := handlers.NewCatalogHandler(services.Catalog)
	builderHandler := handlers.NewBuilderHandler(services.Catalog)
	buildHandler := handlers.NewBuildHandler(services.Build)
	wsHandler := handlers.NewWebSocketHandler(hub, services.Auth, services.Catalog, cfg.IsDevelopment())

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public auth routes
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)

			// Protected auth routes
			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(services.Auth))
				r.Get("/me", authHandler.Me)
				r.Post("/logout", authHandler.Logout)
			})
		})

		// Catalog routes (read only, public)
		r.Route("/gods", func(r chi.Router) {
			r.Get("/", catalogHandler.ListGods)
			r.Get("/{id}", catalogHandler.GetGod)
			r.Get("/{id}/boons", catalogHandler.GetGodBoons)
		})
		r.Route("/weapons", func(r chi.Router) {
			r.Get("/", catalogHandler.ListWeapons)
			r.Get("/{id}", catalogHandler.GetWeapon)
		})
		r.Get("/familiars", catalogHandler.ListFamiliars)
		r.Route("/boons", func(r chi.Router) {
			r.Get("/", catalogHandler.ListBoons)
			r.Get("/{id}", catalogHandler.GetBoon)
			r.Get("/{id}/prerequisites", catalogHandler.GetPrerequisites)
		})

		// Engine routes for builds in progress
		r.Route("/builder", func(r chi.Router) {
			r.Post("/available", builderHandler.Available)
			r.Post("/can-select", builderHandler.CanSelect)
			r.Post("/validate", builderHandler.Validate)
		})

		// Build routes
		r.Route("/builds", func(r chi.Router) {
			r.Get("/", buildHandler.List)
			r.With(middleware.OptionalAuth(services.Auth)).Get("/{id}", buildHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(services.Auth))
				r.Post("/", buildHandler.Create)
				r.Put("/{id}", buildHandler.Update)
				r.Delete("/{id}", buildHandler.Delete)
				r.Post("/{id}/favorite", buildHandler.Favorite)
				r.Delete("/{id}/favorite", buildHandler.Unfavorite)
				r.Post("/{id}/like", buildHandler.Like)
				r.Delete("/{id}/like", buildHandler.Unlike)
			})
		})

		// User routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(services.Auth))
			r.Route("/users", func(r chi.Router) {
				r.Get("/me/builds", buildHandler.GetUserBuilds)
				r.Get("/me/favorites", buildHandler.GetFavorites)
			})
		})

		// WebSocket endpoint
		r.Get("/ws", wsHandler.Handle)
	})

	return r
}
