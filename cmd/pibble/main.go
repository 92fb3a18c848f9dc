package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pibble/pibble/internal/api"
	"github.com/pibble/pibble/internal/api/ratelimit"
	"github.com/pibble/pibble/internal/auth"
	"github.com/pibble/pibble/internal/catalog"
	"github.com/pibble/pibble/internal/catalog/movies"
	"github.com/pibble/pibble/internal/catalog/shows"
	"github.com/pibble/pibble/internal/config"
	"github.com/pibble/pibble/internal/enrich"
	"github.com/pibble/pibble/internal/health"
	"github.com/pibble/pibble/internal/lists"
	"github.com/pibble/pibble/internal/logger"
	"github.com/pibble/pibble/internal/media"
	"github.com/pibble/pibble/internal/scheduler"
	"github.com/pibble/pibble/internal/scheduler/tasks"
	"github.com/pibble/pibble/internal/startup"
	"github.com/pibble/pibble/internal/userdata"
	"github.com/pibble/pibble/internal/websocket"
)

func main() {
	configPath := flag.String("config", "", "Path to config file")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(config.Version)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Path:       cfg.Logging.Path,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
	})
	defer log.Close()

	log.Info().
		Str("version", config.Version).
		Str("logLevel", cfg.Logging.Level).
		Msg("starting PIBBLE")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cacheCfg := catalog.CacheConfig{
		TTL:      time.Duration(cfg.Cache.DetailTTLMinutes) * time.Minute,
		MaxItems: cfg.Cache.MaxItems,
	}
	movieClient := movies.NewClient(cfg.Services.Movies, log.Logger)
	showClient := shows.NewClient(cfg.Services.Shows, log.Logger)
	listClient := userdata.NewClient(cfg.Services.UserData, log.Logger)

	for _, svc := range []interface {
		Name() string
		IsConfigured() bool
	}{movieClient, showClient, listClient} {
		if !svc.IsConfigured() {
			log.Warn().Str("service", svc.Name()).Msg("service base URL not configured, its lookups will fail")
		}
	}

	enricher := enrich.NewEnricher(
		catalog.WithCache(movieClient, cacheCfg, log.Logger),
		catalog.WithCache(showClient, cacheCfg, log.Logger),
		media.NewNormalizer(cfg.Images.BaseURL),
		log.Logger,
	)
	orchestrator := enrich.NewOrchestrator(enricher, cfg.Enrichment.MaxConcurrency, log.Logger)

	hub := websocket.NewHub(log.Logger)
	go hub.Run(ctx)

	listService := lists.NewService(listClient, orchestrator, log.Logger)
	listService.SetNotifier(hub)
	listService.SetIdleTimeout(time.Duration(cfg.Lists.ViewIdleMinutes) * time.Minute)

	healthService := health.NewService(log.Logger, movieClient, showClient, listClient)

	err = startup.WithRetry(ctx, "upstream probe", startup.DefaultRetryConfig(), func() error {
		return healthService.CheckAll(ctx)
	}, log.Logger)
	if err != nil {
		log.Warn().Err(err).Msg("upstream services unavailable at startup, list loads may fail until they recover")
	}

	limiter := ratelimit.NewTokenLimiter()

	sched, err := scheduler.New(log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create scheduler")
	}
	if err := tasks.RegisterUpstreamHealthTask(sched, healthService, cfg.Health, log.Logger); err != nil {
		log.Fatal().Err(err).Msg("failed to register upstream health task")
	}
	if err := tasks.RegisterTokenLimiterCleanupTask(sched, limiter, log.Logger); err != nil {
		log.Fatal().Err(err).Msg("failed to register token limiter cleanup task")
	}
	if err := tasks.RegisterListViewCleanupTask(sched, listService, log.Logger); err != nil {
		log.Fatal().Err(err).Msg("failed to register list view cleanup task")
	}

	authService := auth.NewService(cfg.Auth.JWTSecret)
	if !authService.Enabled() {
		log.Warn().Msg("auth.jwt_secret not set, bearer tokens are forwarded without verification")
	}

	server := api.NewServer(cfg, api.Services{
		Lists:     listService,
		Batches:   orchestrator,
		Items:     enricher,
		Health:    healthService,
		Scheduler: sched,
		Hub:       hub,
		Auth:      authService,
		Limiter:   limiter,
	}, log.Logger)

	sched.Start()

	go func() {
		if err := server.Start(cfg.Server.Address()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("HTTP server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}
	if err := sched.Stop(); err != nil {
		log.Error().Err(err).Msg("scheduler shutdown error")
	}

	log.Info().Msg("server stopped")
}
