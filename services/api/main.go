package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/rentfolio/go-rental-management/shared/config"
	"github.com/rentfolio/go-rental-management/shared/middleware"
	"github.com/rentfolio/go-rental-management/shared/utils"
	"github.com/rentfolio/go-rental-management/tenancy"
)

// newRouter builds the API router. The auth middleware is injected so tests
// can substitute a stub identity.
func newRouter(db *gorm.DB, producer *LeaseEventProducer, requireAuth gin.HandlerFunc) *gin.Engine {
	router := gin.Default()
	router.Use(corsMiddleware())

	mgr := tenancy.NewManager(db)

	router.GET("/health", func(c *gin.Context) {
		utils.OKResponse(c, "Rental management API is healthy", nil)
	})

	auth := router.Group("/api/auth")
	{
		auth.POST("/register", handleRegister(db))
		auth.POST("/login", handleLogin(db))
		auth.PUT("/profile", requireAuth, handleUpdateProfile(db))
		auth.PUT("/password", requireAuth, handleUpdatePassword(db))
	}

	api := router.Group("/api")
	api.Use(requireAuth)
	{
		properties := api.Group("/properties")
		{
			properties.GET("", handleListProperties(db))
			properties.GET("/:id", handleGetProperty(db))
			properties.POST("", handleCreateProperty(db))
			properties.PUT("/:id", handleUpdateProperty(db))
			properties.DELETE("/:id", handleDeleteProperty(db))

			properties.GET("/:id/tenants", handleListPropertyTenants(mgr))
			properties.POST("/:id/tenants", handleAttachTenants(mgr, producer))
			properties.DELETE("/:id/tenants/:tenantId", handleDetachTenant(mgr, producer))
		}

		tenants := api.Group("/tenants")
		{
			tenants.GET("", handleListTenants(db))
			tenants.GET("/:id", handleGetTenant(db))
			tenants.POST("", handleCreateTenant(db))
			tenants.PUT("/:id", handleUpdateTenant(db))
			tenants.DELETE("/:id", handleDeleteTenant(db))
		}

		leases := api.Group("/leases")
		{
			leases.GET("", handleListLeases(db))
			leases.GET("/:id", handleGetLease(db))
			leases.POST("", handleCreateLease(mgr, producer))
			leases.PUT("/:id", handleUpdateLease(db, mgr, producer))
			leases.DELETE("/:id", handleDeleteLease(db))
		}

		fees := api.Group("/fees")
		{
			fees.GET("", handleListFees(db))
			fees.GET("/:id", handleGetFee(db))
			fees.POST("", handleCreateFee(db))
			fees.PUT("/:id", handleUpdateFee(db))
			fees.DELETE("/:id", handleDeleteFee(db))
		}

		organizations := api.Group("/organizations")
		{
			organizations.GET("", handleListOrganizations(db))
			organizations.GET("/:id", handleGetOrganization(db))
			organizations.POST("", handleCreateOrganization(db))
			organizations.PUT("/:id", handleUpdateOrganization(db))
			organizations.DELETE("/:id", handleDeleteOrganization(db))
		}

		notes := api.Group("/notes")
		{
			notes.GET("", handleListNotes(db))
			notes.POST("", handleCreateNote(db))
			notes.PUT("/:id", handleUpdateNote(db))
			notes.DELETE("/:id", handleDeleteNote(db))
		}

		events := api.Group("/events")
		{
			events.GET("", handleListEvents(db))
			events.POST("", handleCreateEvent(db))
			events.PUT("/:id", handleUpdateEvent(db))
			events.DELETE("/:id", handleDeleteEvent(db))
		}
	}

	return router
}

// corsMiddleware allows the SPA frontend to call the API from another origin.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		logrus.Warn("No .env file found, using environment variables")
	}

	// Redis is an optional cache; the API works without it.
	if err := utils.InitRedis(); err != nil {
		logrus.Warnf("Failed to connect to Redis, caching disabled: %v", err)
	}
	defer utils.CloseRedis()

	db, err := config.ConnectDatabase()
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Kafka is optional as well; without a broker the event stream is off.
	var producer *LeaseEventProducer
	if broker := os.Getenv("KAFKA_BROKER"); broker != "" {
		producer, err = NewLeaseEventProducer(broker)
		if err != nil {
			log.Fatal("Failed to initialize Kafka producer:", err)
		}
		defer producer.Close()
	} else {
		logrus.Warn("KAFKA_BROKER not set, lease event stream disabled")
	}

	authMiddleware := middleware.NewAuthMiddleware()
	router := newRouter(db, producer, authMiddleware.RequireAuth())

	port := os.Getenv("PORT")
	if port == "" {
		port = "3001"
	}

	logrus.Infof("Rental management API starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Failed to start API:", err)
	}
}
