package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"ridelink/internal/app"
	"ridelink/internal/config"
	"ridelink/internal/handler"
	internalRedis "ridelink/internal/redis"
	"ridelink/internal/repository/postgres"
	"ridelink/internal/service"
)

func main() {
	// Load configuration.
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	var err error
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.Printf("failed to initialize New Relic: %v", err)
		} else {
			log.Printf("New Relic enabled: app=%s (with DB instrumentation)", cfg.NewRelic.AppName)
		}
	}

	// Initialize database with New Relic instrumentation.
	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to PostgreSQL")

	// Initialize Redis with New Relic instrumentation.
	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Connected to Redis")

	// Wire dependencies.
	server, sweeper := wireServer(db, redisClient, nrApp, cfg)

	// Run the offer sweeper until shutdown.
	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	defer stopSweeper()
	go sweeper.Run(sweepCtx)

	// Start server in goroutine.
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	stopSweeper()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// wireServer wires all dependencies and returns the HTTP server and the
// background offer sweeper.
func wireServer(db *sql.DB, redisClient *redis.Client, nrApp *newrelic.Application, cfg *config.Config) (*http.Server, *service.OfferSweeper) {
	// Initialize Redis stores.
	locationStore := internalRedis.NewLocationStore(redisClient)
	lockStore := internalRedis.NewLockStore(redisClient)
	cacheStore := internalRedis.NewCacheStore(redisClient)

	// Initialize repositories.
	passengerRepo := postgres.NewPassengerRepository(db)
	riderRepo := postgres.NewRiderRepository(db)
	requestRepo := postgres.NewRequestRepository(db)
	responseRepo := postgres.NewResponseRepository(db)
	paymentRepo := postgres.NewPaymentRepository(db)

	// Initialize services.
	notificationService := service.NewNotificationService()
	receiptService := service.NewReceiptService(notificationService)
	fareService := service.NewFareService(locationStore, requestRepo)
	dispatchService := service.NewDispatchService(locationStore, cacheStore, riderRepo, requestRepo, responseRepo, cfg.Dispatch)
	riderService := service.NewRiderService(locationStore, cacheStore, riderRepo)
	psp := service.NewMockPSP()
	paymentService := service.NewPaymentService(paymentRepo, psp)
	requestService := service.NewRequestService(
		requestRepo,
		riderRepo,
		responseRepo,
		lockStore,
		cacheStore,
		fareService,
		dispatchService,
		notificationService,
		paymentService,
		receiptService,
	)
	sweeper := service.NewOfferSweeper(responseRepo, cfg.Dispatch.OfferTimeout, cfg.Dispatch.SweepInterval)

	// Initialize handlers.
	passengerHandler := handler.NewPassengerHandler(passengerRepo)
	riderHandler := handler.NewRiderHandler(riderService, dispatchService, requestService, riderRepo)
	requestHandler := handler.NewRequestHandler(requestService, requestRepo)
	paymentHandler := handler.NewPaymentHandler(paymentService)

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		PassengerHandler: passengerHandler,
		RiderHandler:     riderHandler,
		RequestHandler:   requestHandler,
		PaymentHandler:   paymentHandler,
		RedisClient:      redisClient,
		NewRelicApp:      nrApp,
	})

	// Create HTTP server.
	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, sweeper
}
