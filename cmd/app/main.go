// File: cmd/app/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"subscription-retention-service/internal/config"
	"subscription-retention-service/internal/domain"
	"subscription-retention-service/internal/domain/model"
	"subscription-retention-service/internal/infra/backends"
	pg "subscription-retention-service/internal/infra/db/postgres"
	"subscription-retention-service/internal/infra/i18n"
	"subscription-retention-service/internal/infra/logging"
	"subscription-retention-service/internal/infra/mail"
	"subscription-retention-service/internal/infra/metrics"
	red "subscription-retention-service/internal/infra/redis"
	"subscription-retention-service/internal/infra/sched"
	"subscription-retention-service/internal/infra/web"
	"subscription-retention-service/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags / env ----
	_ = godotenv.Load()
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, redacted values shown)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	applyEnvOverrides(cfg)

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("dev mode enabled")
	}
	metrics.MustRegister()

	// ---- Store database ----
	pool, err := pg.Connect(ctx, cfg.Store.URL)
	if err != nil {
		logger.Fatal().Err(err).Msg("store database connection failed")
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connection failed")
	}
	defer redisClient.Close()
	rateLimiter := red.NewRateLimiter(redisClient)

	// ---- Repositories ----
	eventRepo := pg.NewEventRepo(pool)
	couponRepo := pg.NewCouponRepo(pool)
	jobRepo := pg.NewJobRepo(pool)

	// ---- Backend detection ----
	store := backends.NewProber(pool)
	kind, err := backends.Detect(ctx, store, cfg.Store.Backend)
	if err != nil {
		if errors.Is(err, domain.ErrNoBackend) {
			logger.Fatal().Msg("no supported subscription system found in the store database; set store.backend to force one")
		}
		logger.Fatal().Err(err).Msg("backend detection failed")
	}
	backend, err := backends.New(kind, backends.Deps{
		Pool:      pool,
		Coupons:   couponRepo,
		Scheduler: jobRepo,
		Logger:    logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("backend init failed")
	}
	logger.Info().Str("backend", string(kind)).Msg("subscription backend active")

	markers := red.NewMarkerStore(redisClient, kind)

	// ---- Translator / settings ----
	translator, err := i18n.NewTranslator(i18n.LocalesFS, "en")
	if err != nil {
		logger.Fatal().Err(err).Msg("translator init failed")
	}
	settings := config.NewProvider(cfg.Retention)

	// ---- Use cases ----
	trackerUC := usecase.NewTrackerUseCase(eventRepo, kind, logger)
	offersUC := usecase.NewOffersUseCase(markers, settings, translator, logger)
	mailer := mail.NewSMTPMailer(&cfg.SMTP, logger)
	winbackUC := usecase.NewWinbackUseCase(settings, couponRepo, mailer, trackerUC, cfg.SMTP.ShopName, cfg.SMTP.ShopURL, logger)
	retentionUC := usecase.NewRetentionUseCase(backend, offersUC, trackerUC, settings, jobRepo, logger)

	// ---- Cancellation watcher ----
	watcher := backends.NewCancelWatcher(pool, backend, retentionUC.OnCancelled, logger)
	go func() { _ = watcher.Run(ctx) }()

	// ---- Deferred job worker ----
	worker := sched.NewJobWorker(jobRepo, cfg.Worker.PollInterval, cfg.Worker.Batch, logger)
	worker.Register(model.JobResumeSubscription, sched.ResumeHandler(backend))
	worker.Register(model.JobSendWinback, sched.WinbackHandler(winbackUC))
	go func() { _ = worker.Run(ctx) }()

	// ---- HTTP server ----
	server := web.NewServer(cfg.HTTP, retentionUC, trackerUC, settings, rateLimiter, translator, logger)
	go func() {
		if err := server.Run(ctx); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
			cancel()
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigc:
		logger.Info().Msg("shutdown requested")
	case <-ctx.Done():
	}
	cancel()
}

// applyEnvOverrides lets secrets come from the environment (or a .env
// file) instead of the config file.
func applyEnvOverrides(cfg *config.Config) {
	if v := os.Getenv("STORE_DATABASE_URL"); v != "" {
		cfg.Store.URL = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Redis.URL = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("HTTP_TOKEN_SECRET"); v != "" {
		cfg.HTTP.TokenSecret = v
	}
	if v := os.Getenv("HTTP_ADMIN_KEY"); v != "" {
		cfg.HTTP.AdminKey = v
	}
	if v := os.Getenv("SMTP_PASSWORD"); v != "" {
		cfg.SMTP.Password = v
	}
}
