/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the Sicamar hours engine server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Read HOURS_* environment config, apply flag overrides
  2. Initialize SQLite store
  3. Load the employer calendar for the configured timezone
  4. Wire the recomputation pipeline, metrics, handlers and router
  5. Start the nightly scheduler and the HTTP server

COMMAND-LINE FLAGS:
  -addr    HTTP listen address (default from HOURS_ADDR or :8080)
  -db      SQLite database path (default from HOURS_DB or hours.db)
           Use ":memory:" for an in-memory database

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the scheduler
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close database connection
  5. Exit

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/angeant/sicamar-hours/api"
	"github.com/angeant/sicamar-hours/config"
	"github.com/angeant/sicamar-hours/jornada"
	"github.com/angeant/sicamar-hours/metrics"
	"github.com/angeant/sicamar-hours/store/sqlite"
)

func main() {
	cfg := config.FromEnv()

	// Flags override the environment.
	addr := flag.String("addr", cfg.Addr, "HTTP listen address")
	dbPath := flag.String("db", cfg.DBPath, "SQLite database path")
	flag.Parse()

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// The calendar carries the employer's fixed civil zone. Every local-time
	// decision in the engine goes through it.
	cal, err := jornada.NewCalendar(cfg.Timezone)
	if err != nil {
		log.Fatalf("Failed to load timezone: %v", err)
	}

	pipeline := &jornada.Pipeline{
		Punches:    store,
		Identities: store,
		Plans:      store,
		Holidays:   store,
		Results:    store,
		Cal:        cal,
		Jornada:    jornada.HoursOf(cfg.Jornada),
		PageSize:   cfg.PageSize,
		Metrics:    metrics.New(),
	}

	handler := api.NewHandler(pipeline, store, store)
	router := api.NewRouter(handler)

	scheduler := api.NewRecomputeScheduler(pipeline, store, cal)
	scheduler.Enabled = cfg.NightlyRecompute
	scheduler.Start()
	defer scheduler.Stop()

	server := &http.Server{
		Addr:         *addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("[Server] Listening on %s (timezone %s, jornada %.1fh)", *addr, cfg.Timezone, cfg.Jornada)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
