// Package server boots the HTTP process: config, database, cache, storage,
// websocket hubs, middleware stack, routes, and graceful shutdown.
package server

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/shashiranjanraj/stockroom/app/controllers"
	"github.com/shashiranjanraj/stockroom/app/events"
	"github.com/shashiranjanraj/stockroom/app/repositories"
	"github.com/shashiranjanraj/stockroom/app/routes"
	"github.com/shashiranjanraj/stockroom/app/services"
	"github.com/shashiranjanraj/stockroom/config"
	_ "github.com/shashiranjanraj/stockroom/database/migrations"
	"github.com/shashiranjanraj/stockroom/pkg/cache"
	"github.com/shashiranjanraj/stockroom/pkg/database"
	"github.com/shashiranjanraj/stockroom/pkg/event"
	"github.com/shashiranjanraj/stockroom/pkg/logger"
	"github.com/shashiranjanraj/stockroom/pkg/media"
	"github.com/shashiranjanraj/stockroom/pkg/metrics"
	"github.com/shashiranjanraj/stockroom/pkg/middleware"
	"github.com/shashiranjanraj/stockroom/pkg/migration"
	"github.com/shashiranjanraj/stockroom/pkg/reqid"
	"github.com/shashiranjanraj/stockroom/pkg/router"
	"github.com/shashiranjanraj/stockroom/pkg/storage"
	"github.com/shashiranjanraj/stockroom/pkg/ws"
)

// Start boots every subsystem and serves until SIGINT/SIGTERM.
func Start() error {
	if err := config.Load(); err != nil {
		return err
	}

	// Mongo audit sink is optional; the app logs to stdout regardless.
	if uri := config.MongoLogURI(); uri != "" {
		mh, err := logger.UseMongo(uri, config.MongoLogDatabase(), config.MongoLogCollection())
		if err != nil {
			logger.Warn("server: mongo audit log disabled", "error", err)
		} else {
			defer mh.Close()
		}
	}

	if err := database.Connect(); err != nil {
		return err
	}
	if err := migration.New(database.DB).Run(); err != nil {
		return err
	}

	// Cache is a soft dependency; reads fall through to the database.
	if err := cache.Connect(); err != nil {
		logger.Warn("server: redis unavailable, cache disabled", "error", err)
	}

	storage.Connect()

	// Websocket hubs, one per topic.
	inventoryHub := ws.NewHub("inventory")
	notificationsHub := ws.NewHub("notifications")
	go inventoryHub.Run()
	go notificationsHub.Run()
	defer inventoryHub.Stop()
	defer notificationsHub.Stop()

	dispatcher := event.NewDispatcher()
	events.Bridge(dispatcher, inventoryHub, notificationsHub)

	store := media.NewDiskStore(storage.Default(), config.MediaPrefix())
	repo := repositories.NewProductRepository(database.DB)
	service := services.NewInventoryService(repo, store, dispatcher)
	controller := controllers.NewInventoryController(service)

	r := router.New()

	// Global middleware stack (outermost → innermost):
	//  1. Prometheus metrics — outermost for accurate total latency
	//  2. Recovery          — catches panics before they kill the goroutine
	//  3. Request ID        — inject unique ID before anything logs
	//  4. Logger            — logs request_id from context
	//  5. CORS              — set CORS headers
	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(middleware.CORS(middleware.APICORSOptions(config.CORSOrigins()...)))

	r.HandleFunc("/metrics", metrics.Handler())
	r.Get("/healthz", "healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`)) //nolint:errcheck
	})

	routes.RegisterAPI(r, controller, inventoryHub, notificationsHub)

	addr := ":" + config.AppPort()
	srv := &http.Server{
		Addr:              addr,
		Handler:           r.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server: listening", "addr", addr, "env", config.AppEnv())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("server: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
