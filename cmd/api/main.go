package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"shareit/internal/api"
	"shareit/internal/config"
	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/export"
	"shareit/internal/google"
	"shareit/internal/logging"
	"shareit/internal/metrics"
	"shareit/internal/notify"
	"shareit/internal/repository"
	"shareit/internal/service"
	"shareit/internal/worker"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, baseLogger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer func() { _ = closer.Close() }()
	}
	logger := logging.Component(baseLogger, "main")

	db, err := database.NewDB(cfg.Database.Path, baseLogger)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cache := initCache(cfg, baseLogger)
	eventBus := events.NewEventBus()

	reportWorker := initReportWorker(ctx, cfg, db, baseLogger)
	initNotifier(cfg, eventBus, baseLogger)

	clock := service.SystemClock{}
	userService := service.NewUserService(db, baseLogger)
	itemService := service.NewItemService(db, clock, cache, eventBus, baseLogger)
	var exportWorker domain.ExportWorker
	if reportWorker != nil {
		exportWorker = reportWorker
	}
	bookingService := service.NewBookingService(db, clock, eventBus, exportWorker, baseLogger)
	requestService := service.NewRequestService(db, clock, baseLogger)

	handlers := api.NewHandlers(userService, itemService, bookingService, requestService,
		cfg.HTTP.Page.Size, logging.Component(baseLogger, "api"))
	router := api.NewRouter(cfg.HTTP, handlers, logging.Component(baseLogger, "http"))
	server := api.NewServer(cfg.HTTP, router, logging.Component(baseLogger, "http"))

	startMetrics(ctx, cfg, &logger)

	go func() {
		if err := server.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
			stop()
		}
	}()
	logger.Info().Int("port", cfg.HTTP.Port).Msg("server started")

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http server shutdown error")
	}

	logger.Info().Msg("server stopped")
	return nil
}

func loadConfigAndLogger() (*config.Config, *zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	logger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, logger, closer, nil
}

// initCache picks the listing cache: redis backed by an in-memory
// fallback when configured and reachable, plain in-memory otherwise.
func initCache(cfg *config.Config, logger *zerolog.Logger) domain.CacheRepository {
	memory := repository.NewMemoryCacheRepository()
	if !cfg.Redis.Enabled || cfg.Redis.Address == "" {
		return memory
	}

	client := repository.NewRedisClient(cfg.Redis)
	if _, err := client.Ping(context.Background()).Result(); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, using in-memory cache")
		return memory
	}
	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")

	return repository.NewFailoverCacheRepository(repository.NewRedisCacheRepository(client), memory, logger)
}

// initReportWorker assembles the export sinks and starts the queue
// consumer. Returns nil when no sink is configured.
func initReportWorker(ctx context.Context, cfg *config.Config, db *database.DB, logger *zerolog.Logger) *worker.ReportWorker {
	workerLogger := logging.Component(logger, "worker")

	var sinks []worker.ReportSink
	if cfg.Exports.Enabled && cfg.Exports.Path != "" {
		sinks = append(sinks, export.NewExcelReporter(db, cfg.Exports.Path, logging.Component(logger, "export")))
	}
	if cfg.Google.Enabled && cfg.Google.GoogleCredentialsFile != "" && cfg.Google.BookingSpreadSheetID != "" {
		mirror, err := google.NewSheetsMirror(cfg.Google.GoogleCredentialsFile, cfg.Google.BookingSpreadSheetID)
		if err != nil {
			workerLogger.Warn().Err(err).Msg("google sheets init failed, continuing without sheets")
		} else {
			workerLogger.Info().Msg("google sheets connected")
			sinks = append(sinks, mirror)
		}
	}
	if len(sinks) == 0 {
		return nil
	}

	w := worker.NewReportWorker(db, sinks, worker.DefaultRetryPolicy, workerLogger)
	go w.Run(ctx)
	return w
}

func initNotifier(cfg *config.Config, bus *events.EventBus, logger *zerolog.Logger) {
	if !cfg.Telegram.Enabled || cfg.Telegram.BotToken == "" || cfg.Telegram.ChatID == 0 {
		return
	}

	notifier, err := notify.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID,
		logging.Component(logger, "notify"))
	if err != nil {
		logger.Warn().Err(err).Msg("telegram init failed, continuing without notifications")
		return
	}
	notifier.Subscribe(bus)
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
