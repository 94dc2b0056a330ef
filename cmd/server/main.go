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

	"dairy-billing-backend/internal/config"
	"dairy-billing-backend/internal/database"
	"dairy-billing-backend/internal/events"
	"dairy-billing-backend/internal/logging"
	"dairy-billing-backend/internal/models"
	"dairy-billing-backend/internal/routes"
	"dairy-billing-backend/internal/services/billing"
	"dairy-billing-backend/internal/services/deliveries"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

func main() {
	// Load .env
	envErr := godotenv.Load()

	cfg := config.Load()
	logger := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	slog.SetDefault(logger)
	log := logging.WithComponent(logger, logging.ComponentApp)

	if envErr != nil {
		log.Info("no .env file found, relying on system env")
	}
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", logging.FieldError, err)
		os.Exit(1)
	}

	if err := run(cfg, logger); err != nil {
		log.Error("server stopped", logging.FieldError, err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	log := logging.WithComponent(logger, logging.ComponentApp)

	// Amounts go over the wire as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	store, err := database.OpenStore(cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	var publisher events.Publisher = events.Nop{}
	if cfg.AMQPURL != "" {
		p, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange, logger)
		if err != nil {
			return err
		}
		publisher = p
	}
	defer publisher.Close()

	billingService := billing.NewBillingService(store, publisher, billing.Options{
		UniquePeriod: cfg.UniqueBillPeriod,
		Logger:       logger,
	})
	deliveryService := deliveries.NewDeliveryService(store, models.NewCatalog(cfg.ExtraProducts...), billingService, deliveries.Options{
		Logger: logger,
	})

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), logging.RequestLogger(logger))
	// CORS config
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, routes.Services{
		Deliveries: deliveryService,
		Billing:    billingService,
		Currency:   cfg.CurrencySymbol,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "port", cfg.Port, "backend", cfg.DataBackend, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
