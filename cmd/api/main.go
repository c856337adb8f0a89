package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	chatadapters "github.com/titipin/api/internal/chat/adapters/http"
	chatmemory "github.com/titipin/api/internal/chat/adapters/memory"
	chatpostgres "github.com/titipin/api/internal/chat/adapters/postgres"
	chatapp "github.com/titipin/api/internal/chat/app"
	chatmetrics "github.com/titipin/api/internal/chat/metrics"
	"github.com/titipin/api/internal/chat/ports"
	"github.com/titipin/api/internal/config"
	"github.com/titipin/api/internal/database"
	"github.com/titipin/api/internal/notify"
	ordersadapters "github.com/titipin/api/internal/orders/adapters"
	ordershttp "github.com/titipin/api/internal/orders/adapters/http"
	ordersmemory "github.com/titipin/api/internal/orders/adapters/memory"
	orderspostgres "github.com/titipin/api/internal/orders/adapters/postgres"
	ordersapp "github.com/titipin/api/internal/orders/app"
	ordersmetrics "github.com/titipin/api/internal/orders/metrics"
	ordersports "github.com/titipin/api/internal/orders/ports"
	"github.com/titipin/api/internal/telemetry"
	"github.com/titipin/api/internal/tokenstore"
	tokenmemory "github.com/titipin/api/internal/tokenstore/memory"
	tokenredis "github.com/titipin/api/internal/tokenstore/redis"
	"go.opentelemetry.io/otel"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := telemetry.NewLogger(os.Stdout, telemetry.ParseLevel(cfg.Telemetry.LogLevel))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tel, err := telemetry.Initialize(ctx, telemetry.Config{
		ServiceName:    cfg.Service.Name,
		ServiceVersion: cfg.Service.Version,
		Environment:    cfg.Service.Environment,
		OTLPEndpoint:   cfg.Telemetry.OTelEndpoint,
		EnableTracing:  cfg.Telemetry.EnableTracing && cfg.Telemetry.OTelEndpoint != "",
		EnableMetrics:  cfg.Telemetry.EnableMetrics && cfg.Telemetry.OTelEndpoint != "",
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		logger.Error("failed to initialize telemetry", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown failed", "error", err)
		}
	}()

	meter := otel.Meter(cfg.Service.Name)

	orderMetrics, err := ordersmetrics.NewMetrics(meter)
	if err != nil {
		logger.Error("failed to create order metrics", "error", err)
		os.Exit(1)
	}
	chatMetrics, err := chatmetrics.NewMetrics(meter)
	if err != nil {
		logger.Error("failed to create chat metrics", "error", err)
		os.Exit(1)
	}
	dbMetrics, err := database.NewMetrics(meter)
	if err != nil {
		logger.Error("failed to create database metrics", "error", err)
		os.Exit(1)
	}
	notifyMetrics, err := notify.NewMetrics(meter)
	if err != nil {
		logger.Error("failed to create notification metrics", "error", err)
		os.Exit(1)
	}
	httpMetrics, err := ordershttp.NewMetrics(meter)
	if err != nil {
		logger.Error("failed to create http metrics", "error", err)
		os.Exit(1)
	}

	var orderRepo ordersports.OrderRepository
	var messageRepo ports.MessageRepository
	var readiness func(context.Context) error

	pool, err := database.NewPool(ctx, cfg.Database.URL)
	if err != nil {
		logger.Warn("database unavailable, falling back to in-memory repositories", "error", err)
		orderRepo = ordersmemory.NewRepository()
		messageRepo = chatmemory.NewRepository()
		readiness = func(context.Context) error { return nil }
	} else {
		defer pool.Close()

		if cfg.Database.AutoMigrate {
			logger.Info("running database migrations", "path", cfg.Database.MigrationsPath)
			if err := database.RunMigrations(cfg.Database.URL, cfg.Database.MigrationsPath); err != nil {
				logger.Error("failed to run migrations", "error", err)
				os.Exit(1)
			}
			logger.Info("migrations completed successfully")
		}

		orderRepo = orderspostgres.NewRepository(pool)
		messageRepo = chatpostgres.NewRepository(pool)
		readiness = func(ctx context.Context) error { return database.CheckHealth(ctx, pool) }
	}

	observableRepo := ordersadapters.NewObservableRepository(orderRepo, dbMetrics)

	dispatcher := notify.NewObservableDispatcher(notify.NewLogDispatcher(), notifyMetrics)

	var tokens tokenstore.Store
	if cfg.Redis.URL != "" {
		redisStore, err := tokenredis.NewStore(ctx, cfg.Redis.URL)
		if err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer redisStore.Close()
		tokens = redisStore
	} else {
		tokens = tokenmemory.NewStore(nil)
	}

	orderService := ordersapp.NewService(observableRepo, dispatcher, logger, orderMetrics, nil)
	chatService := chatapp.NewService(messageRepo, dispatcher, logger, chatMetrics, nil)

	ordersHandler := ordershttp.NewHandler(orderService, tokens)
	chatHandler := chatadapters.NewHandler(chatService)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := readiness(r.Context()); err != nil {
			respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready", "error": err.Error()})
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})

	ordersHandler.Register(mux)
	chatHandler.Register(mux)

	handler := withRecovery(withLogging(ordershttp.WithMetrics(mux, httpMetrics)))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "port", cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownGrace)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	} else {
		logger.Info("http server stopped")
	}
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)
		slog.Info("http request", "method", r.Method, "path", r.URL.Path, "status", rw.status, "duration", time.Since(start))
	})
}

func withRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("panic recovered", "error", rec)
				respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (w *responseWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
