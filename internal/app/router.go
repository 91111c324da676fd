package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"ridelink/internal/handler"
	"ridelink/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	PassengerHandler *handler.PassengerHandler
	RiderHandler     *handler.RiderHandler
	RequestHandler   *handler.RequestHandler
	PaymentHandler   *handler.PaymentHandler
	RedisClient      *redis.Client
	NewRelicApp      *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.IdempotencyMiddleware(deps.RedisClient))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// Passenger routes.
		passengers := v1.Group("/passengers")
		{
			passengers.POST("/register", deps.PassengerHandler.Register)
			passengers.GET("", deps.PassengerHandler.GetAll)
		}

		// Rider routes.
		riders := v1.Group("/riders")
		{
			riders.POST("/register", deps.RiderHandler.Register)
			riders.GET("", deps.RiderHandler.GetAll)
			riders.POST("/:id/status", deps.RiderHandler.SetStatus)
			riders.POST("/:id/location", deps.RiderHandler.UpdateLocation)
			riders.GET("/:id/requests", deps.RiderHandler.NearbyRequests)
			riders.POST("/:id/accept", deps.RiderHandler.Accept)
			riders.POST("/:id/decline", deps.RiderHandler.Decline)
		}

		// Ride request routes.
		requests := v1.Group("/requests")
		{
			requests.POST("", deps.RequestHandler.Create)
			requests.GET("", deps.RequestHandler.GetAll)
			requests.GET("/:id", deps.RequestHandler.Get)
			requests.POST("/:id/cancel", deps.RequestHandler.Cancel)
			requests.POST("/:id/arrived", deps.RequestHandler.MarkArrived)
			requests.POST("/:id/start", deps.RequestHandler.StartTrip)
			requests.POST("/:id/complete", deps.RequestHandler.Complete)
		}

		// Payment routes.
		payments := v1.Group("/payments")
		{
			payments.GET("/:id", deps.PaymentHandler.GetPayment)
		}
	}

	return router
}
