package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"subscription-tracker/internal/client"
	"subscription-tracker/internal/config"
	"subscription-tracker/internal/job"
	"subscription-tracker/internal/lock"
	"subscription-tracker/internal/repository"
	"subscription-tracker/internal/server"
	"subscription-tracker/internal/service"
	"syscall"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	logger := config.NewLogger(os.Stdout, cfg.Log)
	if cfg.Auth.JWTSecret == "" {
		logger.Error("AUTH_JWT_SECRET is required")
		os.Exit(1)
	}

	db, err := client.InitDBClient(cfg.Database)
	if err != nil {
		logger.Error("database init failed", "driver", cfg.Database.Driver, "error", err)
		os.Exit(1)
	}

	var locker lock.Locker
	if cfg.Redis.URL != "" {
		rdb, err := client.InitRedisClient(context.Background(), cfg.Redis.URL)
		if err != nil {
			logger.Error("redis init failed", "error", err)
			os.Exit(1)
		}
		defer rdb.Close()
		locker = lock.NewRedisLocker(rdb, "subscription-tracker:")
		logger.Info("using redis purchase lock")
	} else {
		locker = lock.NewLocalLocker()
	}

	var collector service.PaymentCollector
	if cfg.BrainTree.Enabled() {
		collector = service.NewBraintreeCollector(client.NewBraintreeClient(&cfg.BrainTree))
		logger.Info("braintree payment collection enabled", "environment", cfg.BrainTree.Environment)
	} else {
		logger.Info("payment collection delegated, braintree not configured")
	}

	packageRepo := repository.NewPackageRepository(db)
	cartRepo := repository.NewCartRepository(db)
	userSubscriptionRepo := repository.NewUserSubscriptionRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)
	roleRepo := repository.NewRoleRepository(db)

	identityService := service.NewIdentityService(roleRepo, logger)
	if err := identityService.BootstrapAdmins(context.Background(), cfg.Auth.BootstrapAdmins); err != nil {
		logger.Error("bootstrap admins failed", "error", err)
		os.Exit(1)
	}

	subscriptionService := service.NewSubscriptionService(db, subscriptionRepo, logger)
	services := server.Services{
		Identity:     identityService,
		Catalog:      service.NewCatalogService(packageRepo, logger),
		Cart:         service.NewCartService(packageRepo, cartRepo, userSubscriptionRepo, logger),
		Purchase:     service.NewPurchaseService(db, cartRepo, userSubscriptionRepo, locker, collector, logger),
		Subscription: subscriptionService,
		Dashboard:    service.NewDashboardService(packageRepo, userSubscriptionRepo, cartRepo, subscriptionService),
	}

	scheduler := job.NewScheduler(cfg.Jobs, userSubscriptionRepo, logger)
	if err := scheduler.Start(); err != nil {
		logger.Error("scheduler start failed", "schedule", cfg.Jobs.ExpirySpec, "error", err)
		os.Exit(1)
	}

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	// Init HTTP server
	srv := server.NewServer(services, cfg.Auth.JWTSecret, logger)

	logger.Info("starting HTTP server", "address", serverAddr, "environment", cfg.Environment.Name)
	go func() {
		if err := srv.Start(serverAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	logger.Info("signal received, starting graceful shutdown")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	select {
	case <-scheduler.Stop().Done():
	case <-shutdownCtx.Done():
		logger.Warn("scheduler did not stop in time")
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	logger.Info("shutdown complete")
}
