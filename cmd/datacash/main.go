package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"datacash/internal/common/config"
	"datacash/internal/common/logging"
	"datacash/internal/common/metrics"
	vo "datacash/internal/common/value_objects"
	gatewayapi "datacash/internal/gateway/api"
	"datacash/internal/gateway/application"
	"datacash/internal/gateway/domain"
	"datacash/internal/gateway/infrastructure/datacash"
	"datacash/internal/gateway/infrastructure/memory"
	"datacash/internal/gateway/infrastructure/postgres"
	"datacash/internal/gateway/infrastructure/transport"
)

// poolStatsInterval is how often connection pool gauges are refreshed.
const poolStatsInterval = 15 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Setup structured logging
	logging.Setup(logging.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	// Generate correlation ID for startup
	startupCtx := logging.WithCorrelationID(context.Background(), vo.NewCorrelationID())

	gatewayCfg := datacash.Config{
		Client:          cfg.DataCashClient,
		Password:        cfg.DataCashPassword,
		Test:            cfg.DataCashTest,
		FraudServices:   cfg.DataCashFraudServices,
		DefaultCurrency: cfg.DefaultCurrency(),
	}

	logging.InfoContext(startupCtx, "Starting DataCash gateway adapter",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"log_level", cfg.LogLevel,
		"endpoint", gatewayCfg.Endpoint(),
		"journal", cfg.JournalBackend,
	)

	var journal domain.Journal
	var pool *pgxpool.Pool
	if cfg.UsesPostgres() {
		pool, err = cfg.NewPostgresPool(startupCtx)
		if err != nil {
			logging.ErrorContext(startupCtx, "Failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		journal = postgres.NewJournal(pool)
		go reportPoolStats(pool)
	} else {
		journal = memory.NewJournal()
	}

	service := application.NewGateway(gatewayCfg, transport.NewClient(cfg.DataCashTimeout), journal)

	// Setup HTTP server
	mux := http.NewServeMux()

	// Health check endpoint
	mux.HandleFunc("GET /health", healthHandler)

	// Ready check endpoint (checks dependencies)
	mux.HandleFunc("GET /ready", readyHandler(cfg, pool))

	// Prometheus metrics endpoint
	mux.Handle("GET /metrics", metrics.Handler())

	gatewayapi.NewHandler(service).RegisterRoutes(mux)

	// A request may wait on the gateway for the full transport timeout.
	requestTimeout := cfg.DataCashTimeout + 5*time.Second

	// Middleware chain: metrics -> correlation -> handler
	handler := metrics.Middleware(correlationMiddleware(mux, requestTimeout))

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: requestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logging.Info("HTTP server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logging.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logging.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logging.Info("Server stopped")
}

// correlationMiddleware adds correlation ID and request timeout to each request.
func correlationMiddleware(next http.Handler, timeout time.Duration) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		corrID, err := vo.ParseCorrelationID(r.Header.Get("X-Correlation-ID"))
		if err != nil {
			corrID = vo.NewCorrelationID()
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		ctx = logging.WithCorrelationID(ctx, corrID)

		w.Header().Set("X-Correlation-ID", corrID.String())

		logging.InfoContext(ctx, "HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
		)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// reportPoolStats publishes pool gauges until the process exits.
func reportPoolStats(pool *pgxpool.Pool) {
	ticker := time.NewTicker(poolStatsInterval)
	defer ticker.Stop()

	for range ticker.C {
		stat := pool.Stat()
		metrics.RecordPoolStats(stat.AcquiredConns(), stat.IdleConns())
	}
}

// healthHandler returns basic health status.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status": "healthy",
	})
}

// readyHandler reports ready once the journal database, if any, answers a ping.
func readyHandler(cfg *config.Config, pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if pool != nil {
			if err := pool.Ping(r.Context()); err != nil {
				logging.WarnContext(r.Context(), "Readiness check failed", "error", err)
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]any{
					"status": "unavailable",
					"reason": "database unreachable",
				})
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"status":      "ready",
			"environment": cfg.Environment,
			"test_mode":   cfg.DataCashTest,
			"journal":     cfg.JournalBackend,
		})
	}
}
