package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/shoplite/orders-service/internal/clients"
	"github.com/shoplite/orders-service/internal/config"
	"github.com/shoplite/orders-service/internal/events"
	"github.com/shoplite/orders-service/internal/handlers"
	"github.com/shoplite/orders-service/internal/metrics"
	"github.com/shoplite/orders-service/internal/repository"
	"github.com/shoplite/orders-service/internal/resilience"
	"github.com/shoplite/orders-service/internal/server"
	"github.com/shoplite/orders-service/internal/service"

	_ "github.com/lib/pq"
)

func main() {
	cfg := config.Load()

	logrus.SetFormatter(&logrus.JSONFormatter{})
	logger := logrus.WithField("service", "orders-service")

	logger.WithField("port", cfg.Server.Port).Info("Starting orders-service")

	db, err := initDatabase(cfg, logger)
	if err != nil {
		logger.WithField("error", err.Error()).Fatal("Failed to connect to database")
	}
	defer db.Close()

	enrichmentMetrics := metrics.NewEnrichmentMetrics()

	orderRepo := repository.NewPostgresOrderRepository(db, logger)
	orderCache := repository.NewRedisOrderCache(cfg.Redis, logger)

	gatewayClient := clients.NewHTTPGatewayClient(cfg.Gateway, logger)

	retryPolicy := resilience.NewPolicy(resilience.Options{
		MaxAttempts: cfg.Retry.MaxAttempts,
		BaseDelay:   cfg.Retry.BaseDelay,
		ShouldRetry: clients.IsTransient,
		OnRetry: func(attempt int, err error) {
			enrichmentMetrics.RecordLookupRetry()
			logger.WithFields(logrus.Fields{
				"attempt": attempt,
				"error":   err.Error(),
			}).Warn("Retrying downstream lookup")
		},
	})

	eventPublisher := events.NewKafkaPublisher(cfg.Kafka, logger)
	defer eventPublisher.Close()

	orderService := service.NewOrderService(
		orderRepo,
		orderCache,
		gatewayClient,
		retryPolicy,
		eventPublisher,
		enrichmentMetrics,
		cfg,
		logger,
	)

	h := handlers.NewHandlers(orderService, cfg, logger)

	srv := server.New(h, cfg)

	go func() {
		logger.WithFields(logrus.Fields{
			"port":           cfg.Server.Port,
			"gateway_url":    cfg.Gateway.BaseURL,
			"caching":        cfg.Features.EnableOrderCaching,
			"events":         cfg.Features.EnableOrderEvents,
			"retry_attempts": cfg.Retry.MaxAttempts,
		}).Info("Server starting")
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.WithField("error", err.Error()).Fatal("Server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.WithField("error", err.Error()).Error("Server forced to shutdown")
	}

	logger.Info("Server exited")
}

func initDatabase(cfg *config.Config, logger *logrus.Entry) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.Database.ConnectionString())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	if err := db.Ping(); err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"host": cfg.Database.Host,
		"name": cfg.Database.Name,
	}).Info("Database connected")

	return db, nil
}
