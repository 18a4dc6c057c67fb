package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"

	"github.com/lumenbank/servicing/internal/application/usecase"
	"github.com/lumenbank/servicing/internal/domain/service"
	"github.com/lumenbank/servicing/internal/infrastructure/cache"
	"github.com/lumenbank/servicing/internal/infrastructure/config"
	"github.com/lumenbank/servicing/internal/infrastructure/messaging"
	pgRepo "github.com/lumenbank/servicing/internal/infrastructure/persistence/postgres"
	"github.com/lumenbank/servicing/internal/presentation/rest"
	pkgkafka "github.com/lumenbank/servicing/pkg/kafka"
	"github.com/lumenbank/servicing/pkg/observability"
	pkgpostgres "github.com/lumenbank/servicing/pkg/postgres"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := config.Load()

	logger := observability.InitLogger(observability.LogConfig{
		Level:  cfg.LogLevel,
		Format: "json",
	})
	slog.SetDefault(logger)

	logger.Info("starting servicing", "http_port", cfg.HTTPPort)

	// Metrics.
	meterProvider, metricsHandler, err := observability.InitMetrics()
	if err != nil {
		logger.Error("failed to initialize metrics", "error", err)
		os.Exit(1)
	}
	defer func() { _ = meterProvider.Shutdown(context.Background()) }() //nolint:errcheck
	metrics, err := observability.NewServicingMetrics(meterProvider.Meter("servicing"))
	if err != nil {
		logger.Error("failed to register metrics", "error", err)
		os.Exit(1)
	}

	// Database connection.
	dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
	defer dbCancel()

	pgCfg := pkgpostgres.Config{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		Database: cfg.DB.Name,
		SSLMode:  cfg.DB.SSLMode,
	}
	pool, err := pkgpostgres.NewPool(dbCtx, pgCfg)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("connected to database")

	if migErr := pkgpostgres.RunMigrations(pgCfg.DSN(), "file://internal/infrastructure/persistence/postgres/migrations"); migErr != nil {
		logger.Warn("migration warning", "error", migErr)
	}

	// Kafka producer and event publisher.
	kafkaProducer := pkgkafka.NewProducer(pkgkafka.Config{Brokers: cfg.Kafka.Brokers})
	defer kafkaProducer.Close()
	publisher := messaging.NewMetricsPublisher(
		messaging.NewKafkaEventPublisher(kafkaProducer, cfg.Kafka.Topic, logger),
		metrics,
	)

	// Redis balance cache.
	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	defer redisClient.Close()
	balanceCache := cache.NewRedisBalanceCache(redisClient, time.Duration(cfg.Redis.BalanceTTLSecs)*time.Second)

	// Repositories and transaction runner.
	caseRepo := pgRepo.NewCaseRepo(pool)
	balanceRepo := pgRepo.NewBalanceRepo(pool)
	scheduleRepo := pgRepo.NewScheduleRepo(pool)
	paymentRepo := pgRepo.NewPaymentRepo(pool)
	disbRepo := pgRepo.NewDisbursementRepo(pool)
	restructuringRepo := pgRepo.NewRestructuringRepo(pool)
	escrowRepo := pgRepo.NewEscrowRepo(pool)
	txRunner := pgRepo.NewTxRunner(pool)

	// Domain policy and per-case serialization.
	evaluator := service.NewStatusEvaluator(service.Policy{
		GracePeriodDays:        cfg.Policy.GracePeriodDays,
		DelinquencyDefaultDays: cfg.Policy.DelinquencyDefaultDays,
	})
	locks := usecase.NewCaseLocks()

	// Use cases.
	createCaseUC := usecase.NewCreateCaseUseCase(caseRepo, balanceRepo, scheduleRepo, disbRepo, txRunner, publisher, logger)
	disburseUC := usecase.NewRecordDisbursementUseCase(caseRepo, balanceRepo, scheduleRepo, disbRepo, txRunner, publisher, balanceCache, evaluator, locks, logger)
	paymentUC := usecase.NewApplyPaymentUseCase(caseRepo, balanceRepo, scheduleRepo, paymentRepo, txRunner, publisher, balanceCache, evaluator, locks, logger)
	accrualUC := usecase.NewPostAccrualUseCase(caseRepo, balanceRepo, txRunner, publisher, balanceCache, locks, logger)
	restructureUC := usecase.NewApplyRestructuringUseCase(caseRepo, balanceRepo, scheduleRepo, restructuringRepo, txRunner, publisher, balanceCache, locks, logger)
	getBalanceUC := usecase.NewGetBalanceUseCase(caseRepo, balanceRepo, balanceCache, logger)
	listScheduleUC := usecase.NewListScheduleUseCase(caseRepo, scheduleRepo)
	transitionUC := usecase.NewTransitionCaseUseCase(caseRepo, txRunner, publisher, locks, logger)
	escrowUC := usecase.NewEscrowUseCase(caseRepo, escrowRepo, txRunner, publisher, locks, logger)

	// HTTP server.
	router := mux.NewRouter()
	caseHandler := rest.NewCaseHandler(
		createCaseUC, disburseUC, paymentUC, accrualUC, restructureUC,
		getBalanceUC, listScheduleUC, transitionUC, escrowUC, logger,
	)
	caseHandler.RegisterRoutes(router)
	healthHandler := rest.NewHealthHandler(logger, map[string]rest.ReadinessCheck{
		"postgres": func(ctx context.Context) error { return pkgpostgres.HealthCheck(ctx, pool) },
		"redis":    func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
	})
	healthHandler.RegisterRoutes(router)
	router.Handle("/metrics", metricsHandler).Methods(http.MethodGet)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server starting", "port", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		logger.Error("HTTP server error", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	logger.Info("servicing stopped")
}
