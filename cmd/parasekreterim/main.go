package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/phisoli/parasekreterim/internal/amqp"
	"github.com/phisoli/parasekreterim/internal/auth"
	"github.com/phisoli/parasekreterim/internal/cache"
	"github.com/phisoli/parasekreterim/internal/config"
	apphttp "github.com/phisoli/parasekreterim/internal/http"
	"github.com/phisoli/parasekreterim/internal/log"
	"github.com/phisoli/parasekreterim/internal/quotes"
	"github.com/phisoli/parasekreterim/internal/services"
	"github.com/phisoli/parasekreterim/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	// Notifications are optional; without a broker the services log and
	// carry on.
	var publisher services.NotificationPublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		publisher = amqpClient
		logger.Info("AMQP publisher initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("Notifications disabled - no AMQP_URL provided")
	}

	dashboardCache := cache.NewLRUCache[services.Dashboard](256, 5*time.Minute)
	quoteCache := cache.NewLRUCache[[]quotes.Quote](4, cfg.QuoteCacheTTL)

	cacheManager := cache.NewManager()
	cacheManager.Register(dashboardCache)
	cacheManager.Register(quoteCache)
	cacheManager.StartCleanup(time.Minute)
	defer cacheManager.Stop()

	quoteService := quotes.NewService([]quotes.Provider{
		quotes.NewExchangeRateProvider(cfg.QuoteTimeout),
		quotes.NewBinanceProvider(cfg.QuoteTimeout),
	}, quoteCache, logger)

	// Warm the quote snapshot and keep it fresh on a schedule.
	go quoteService.Refresh(context.Background())
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.QuoteRefreshSpec, func() {
		quoteService.Refresh(context.Background())
	}); err != nil {
		logger.Error("Invalid quote refresh schedule", "spec", cfg.QuoteRefreshSpec, "error", err)
		os.Exit(1)
	}
	scheduler.Start()
	defer scheduler.Stop()

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Ledger:  services.NewLedgerService(repo, publisher, logger),
		Reports: services.NewReportService(repo, dashboardCache, logger),
		Goals:   services.NewGoalService(repo, publisher, logger),
		Quotes:  quoteService,
		Auth:    auth.NewService(cfg.JWTSecret, cfg.TokenExpiry),
		Users:   repo,
		Logger:  logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting parasekreterim server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
