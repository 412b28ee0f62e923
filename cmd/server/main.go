package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dom/hades-build-planner/internal/api"
	"github.com/dom/hades-build-planner/internal/config"
	"github.com/dom/hades-build-planner/internal/metrics"
	"github.com/dom/hades-build-planner/internal/repository/postgres"
	"github.com/dom/hades-build-planner/internal/seed"
	"github.com/dom/hades-build-planner/internal/service"
	"github.com/dom/hades-build-planner/internal/websocket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Initialize database
	db, err := postgres.NewConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	// Initialize repositories
	repos := postgres.NewRepositories(db)

	// Load the boon catalog, seeding an empty database
	loadCtx, cancelLoad := context.WithTimeout(context.Background(), time.Minute)
	cat, err := seed.LoadOrSeed(loadCtx, repos.Catalog, cfg.CatalogFile)
	cancelLoad()
	if err != nil {
		log.Fatalf("failed to load catalog: %v", err)
	}
	metrics.SetCatalogSize(cat.BoonCount())
	log.Printf("Catalog loaded: %d gods, %d weapons, %d boons", len(cat.Gods()), len(cat.Weapons()), cat.BoonCount())

	// Initialize WebSocket hub
	hub := websocket.NewHub()
	go hub.Run()

	// Initialize services
	services := service.NewServices(repos, cfg, cat, hub)

	// Initialize router
	router := api.NewRouter(services, hub, cfg)

	// Create server
	srv := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	hub.Stop()

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
