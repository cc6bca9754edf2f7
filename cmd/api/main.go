// Package main is the entry point for the RentAway API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/pkordes/rentaway/internal/config"
	"github.com/pkordes/rentaway/internal/handler"
	"github.com/pkordes/rentaway/internal/middleware"
	"github.com/pkordes/rentaway/internal/notify"
	"github.com/pkordes/rentaway/internal/obs"
	"github.com/pkordes/rentaway/internal/repo"
	"github.com/pkordes/rentaway/internal/service"
	"github.com/pkordes/rentaway/migrations"
)

const (
	serviceName = "rentaway-api"
	version     = "0.1.0"
)

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		// Use plain stderr before the logger is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	// JSON handler writes machine-readable output suitable for log aggregators.
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Tracing ----------------------------------------------------------
	shutdownTracer, err := obs.InitTracer(context.Background(), serviceName, version, cfg.OTLPEndpoint)
	if err != nil {
		slog.Error("failed to initialise tracing", "error", err)
		os.Exit(1)
	}

	// --- Storage ----------------------------------------------------------
	listings, bookings, closeStore, err := openStorage(context.Background(), cfg)
	if err != nil {
		slog.Error("failed to open storage", "driver", cfg.StorageDriver, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	// --- Email ------------------------------------------------------------
	var mailer notify.Gateway = notify.NewLogGateway(logger)
	if cfg.SMTPEnabled() {
		smtp, err := notify.NewSMTPGateway(notify.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
			FromName: cfg.MailFromName,
			Timeout:  cfg.SMTPTimeout,
		})
		if err != nil {
			slog.Error("failed to configure smtp", "error", err)
			os.Exit(1)
		}
		mailer = smtp
		slog.Info("smtp email enabled", "host", cfg.SMTPHost, "port", cfg.SMTPPort)
	} else {
		slog.Warn("SMTP_HOST not set; booking emails will be logged, not sent")
	}

	// --- Services -----------------------------------------------------------
	listingSvc := service.NewListingService(listings, bookings)
	bookingSvc := service.NewBookingService(listings, bookings, mailer, logger)

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer → CORS → body limit.
	// RequestID generates a unique trace ID per request.
	// RealIP sets r.RemoteAddr from X-Forwarded-For / X-Real-IP (safe behind a proxy).
	// SlogLogger writes one structured JSON log line per request.
	// Recoverer catches panics and returns HTTP 500 instead of crashing.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))

	srvHandlers := handler.NewServer(listingSvc, bookingSvc, logger)
	bookingLimit := middleware.NewRateLimiter(cfg.BookingRatePerMinute, cfg.BookingRateBurst)
	r.Mount("/", srvHandlers.Routes(bookingLimit))

	// --- HTTP Server ------------------------------------------------------
	// Explicit timeouts prevent slowloris and resource exhaustion attacks.
	// WriteTimeout leaves room for the SMTP round trip on booking writes.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10*time.Second + cfg.SMTPTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", srv.Addr, "storage", cfg.StorageDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	if err := shutdownTracer(ctx); err != nil {
		slog.Error("tracer shutdown error", "error", err)
	}
	slog.Info("server stopped")
}

// openStorage returns the repos for the configured driver and a func that
// releases the underlying connections.
func openStorage(ctx context.Context, cfg config.Config) (repo.ListingRepo, repo.BookingRepo, func(), error) {
	if cfg.StorageDriver == config.DriverBolt {
		db, err := repo.OpenBolt(cfg.BoltPath)
		if err != nil {
			return nil, nil, nil, err
		}
		slog.Info("bolt store opened", "path", cfg.BoltPath)
		return repo.NewBoltListingRepo(db), repo.NewBoltBookingRepo(db), func() { db.Close() }, nil
	}

	// pgxpool manages a pool of Postgres connections.
	// New() does not open connections immediately; the first query does.
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, nil, err
	}

	// Verify the DB is reachable before accepting traffic.
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, nil, err
	}
	slog.Info("database connection established")

	// goose drives database/sql, so borrow a *sql.DB view of the pool.
	sqlDB := stdlib.OpenDBFromPool(pool)
	applied, err := migrations.Up(ctx, sqlDB)
	sqlDB.Close()
	if err != nil {
		pool.Close()
		return nil, nil, nil, err
	}
	slog.Info("migrations applied", "count", applied)

	return repo.NewListingRepo(pool), repo.NewBookingRepo(pool), pool.Close, nil
}
