package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/lls2023049/campus-events/internal/app"
	"github.com/lls2023049/campus-events/internal/cache"
	"github.com/lls2023049/campus-events/internal/challenge"
	"github.com/lls2023049/campus-events/internal/clock"
	"github.com/lls2023049/campus-events/internal/config"
	"github.com/lls2023049/campus-events/internal/obs"
	"github.com/lls2023049/campus-events/internal/ratelimit"
	"github.com/lls2023049/campus-events/internal/storage/postgres"
	transporthttp "github.com/lls2023049/campus-events/internal/transport/http"
	"github.com/lls2023049/campus-events/migrations"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger := log.Default()

	cfg, err := config.Load(logger)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	startupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(startupCtx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("connect to db: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(startupCtx); err != nil {
		log.Fatalf("db ping: %v", err)
	}
	if err := migrations.Apply(startupCtx, pool); err != nil {
		log.Fatalf("apply migrations: %v", err)
	}
	if cfg.SeedDemo {
		if err := migrations.SeedDemo(startupCtx, pool); err != nil {
			log.Fatalf("seed demo data: %v", err)
		}
		logger.Printf("demo data seeded")
	}

	clk := clock.NewSystem()

	store, err := buildCacheStore(startupCtx, cfg, clk)
	if err != nil {
		log.Fatalf("cache backend: %v", err)
	}
	logger.Printf("cache backend: %s", cfg.CacheBackend)

	metrics := obs.NewMetrics()
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics.MustRegister(registry)

	limiter := ratelimit.New(clk, cfg.RateLimitCapacity, cfg.RateLimitRefillPerSec)
	challenges := challenge.NewService(clk)

	regRepo := postgres.NewRegistrationRepository(pool)
	regSvc := app.NewRegistrationService(regRepo, store, limiter, challenges, clk, app.WithMetrics(metrics))
	eventRepo := postgres.NewEventRepository(pool)
	eventSvc := app.NewEventService(eventRepo, store, clk)
	userRepo := postgres.NewUserRepository(pool)
	userSvc := app.NewUserService(userRepo, store, clk)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", transporthttp.HealthHandler)
	mux.Handle("/api/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.Handle("/api/captcha/generate", transporthttp.HandleIssueCaptcha(challenges, app.NewSessionID, metrics))
	mux.Handle("/api/registration/submit", transporthttp.HandleSubmitRegistration(regSvc, logger))
	mux.Handle("/api/registration/cancel", transporthttp.HandleCancelRegistration(regSvc, logger))
	mux.Handle("/api/registration/list", transporthttp.HandleListRegistrations(regSvc))
	mux.Handle("/api/event/list", transporthttp.HandleListEvents(eventSvc))
	mux.Handle("/api/event/create", transporthttp.HandleCreateEvent(eventSvc))
	mux.Handle("/api/event/", transporthttp.HandleGetEvent(eventSvc))
	mux.Handle("/api/user/register", transporthttp.HandleRegisterUser(userSvc))
	mux.Handle("/api/user/login", transporthttp.HandleLogin(userSvc))
	mux.Handle("/api/user/info", transporthttp.HandleCurrentUser(userSvc))
	mux.Handle("/", transporthttp.NotFoundHandler())

	handler := transporthttp.RequestLogger(
		transporthttp.CORS(cfg.CORSOrigins, transporthttp.RequestMetrics(mux, metrics)),
		logger,
	)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	log.Printf("api listening on :%s", cfg.Port)

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("server error: %v", err)
		}
	case <-stopCtx.Done():
		log.Printf("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("server shutdown error: %v", err)
	}
	log.Printf("server stopped")
}

func buildCacheStore(ctx context.Context, cfg config.Config, clk clock.Clock) (cache.Store, error) {
	if cfg.CacheBackend != "redis" {
		return cache.NewMemory(clk), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return cache.NewRedis(client), nil
}
