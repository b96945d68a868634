package main

import (
	"log"
	"os"

	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/labstack/echo/v4"

	"campuseats/internal/analytics"
	"campuseats/internal/caching"
	"campuseats/internal/cart"
	"campuseats/internal/config"
	"campuseats/internal/handlers"
	"campuseats/internal/jobs/background"
	"campuseats/internal/middleware"
	"campuseats/internal/models"
	"campuseats/internal/realtime"
	"campuseats/internal/repositories"
	"campuseats/internal/services"
	"campuseats/pkg/database"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	pool, err := database.NewPool(cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	redisClient := caching.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	cacheSvc := caching.NewRedisCacheService(redisClient)

	imageSvc, err := services.NewImageService(cfg.Storage.Endpoint, cfg.Storage.AccessKey, cfg.Storage.SecretKey, cfg.Storage.UseSSL)
	if err != nil {
		log.Fatalf("Failed to initialize image storage: %v", err)
	}

	// Repositories
	profileRepo := repositories.NewProfileRepo(pool)
	userRoleRepo := repositories.NewUserRoleRepo(pool)
	canteenRepo := repositories.NewCanteenRepo(pool)
	categoryRepo := repositories.NewCategoryRepo(pool)
	menuItemRepo := repositories.NewMenuItemRepo(pool)
	orderRepo := repositories.NewOrderRepo(pool)
	orderItemRepo := repositories.NewOrderItemRepo(pool)

	// Realtime fan-out
	bus := realtime.NewRedisBus(redisClient)
	alerter := realtime.NewLogAlerter()

	// Services
	roleSvc := services.NewRoleService(userRoleRepo)
	authSvc := services.NewAuthService(profileRepo, roleSvc, cacheSvc, cfg.Auth.JWTSecret, cfg.Auth.TokenTTLSeconds)
	catalogSvc := services.NewCatalogService(canteenRepo, categoryRepo, menuItemRepo, cacheSvc)
	cartStore := cart.NewRedisStore(redisClient)
	cartSvc := cart.NewService(cartStore, menuItemRepo, categoryRepo)
	orderSvc := services.NewOrderService(orderRepo, orderItemRepo, cartSvc, bus)
	statsSvc := analytics.NewService(orderRepo, cacheSvc)

	var federatedSvc services.FederatedAuthService
	if cfg.Auth.JWKSURL != "" {
		federatedSvc, err = services.NewFederatedAuthService(profileRepo, roleSvc, authSvc, cfg.Auth.JWKSURL)
		if err != nil {
			log.Fatalf("Failed to initialize federated sign-in: %v", err)
		}
		defer federatedSvc.Close()
	}

	// Background jobs
	scheduler := background.NewJobScheduler(orderSvc, cacheSvc)
	if err := scheduler.Start(); err != nil {
		log.Fatalf("Failed to start job scheduler: %v", err)
	}
	defer scheduler.Stop()

	// Handlers
	authHandlers := handlers.NewAuthHandlers(authSvc, federatedSvc, roleSvc, profileRepo)
	canteenHandlers := handlers.NewCanteenHandlers(catalogSvc, imageSvc)
	categoryHandlers := handlers.NewCategoryHandlers(catalogSvc, imageSvc)
	menuItemHandlers := handlers.NewMenuItemHandlers(catalogSvc, imageSvc)
	cartHandlers := handlers.NewCartHandlers(cartSvc)
	orderHandlers := handlers.NewOrderHandlers(orderSvc, catalogSvc)
	eventsHandlers := handlers.NewEventsHandlers(bus, catalogSvc, canteenRepo, profileRepo, alerter)
	statsHandlers := handlers.NewStatsHandlers(statsSvc, catalogSvc)
	healthHandlers := handlers.NewHealthHandlers(pool, redisClient)

	e := echo.New()

	// Global middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())

	versionMiddleware := middleware.NewVersionMiddleware()
	e.Use(versionMiddleware.APIVersionResolver())

	// Health endpoints (no auth required)
	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/ready", healthHandlers.ReadinessCheck)
	e.GET("/health/live", healthHandlers.LivenessCheck)

	v1 := e.Group("/v1")
	v1.Use(versionMiddleware.VersionHeader("v1"))

	// Authentication routes (no JWT required)
	auth := v1.Group("/auth")
	auth.POST("/signup", authHandlers.Signup)
	auth.POST("/login", authHandlers.Login)
	auth.POST("/callback", authHandlers.FederatedCallback)

	// Protected routes
	protected := v1.Group("")
	protected.Use(middleware.JWTMiddleware(authSvc))
	protected.GET("/auth/me", authHandlers.Me)
	protected.PUT("/auth/me/notifications", authHandlers.SetNotifications)
	protected.POST("/auth/logout", authHandlers.Logout)

	// Student routes
	student := protected.Group("")
	student.Use(middleware.RequireRole(models.RoleStudent))
	student.GET("/canteens", canteenHandlers.ListCanteens)
	student.GET("/canteens/:id", canteenHandlers.GetCanteen)
	student.GET("/canteens/:id/categories", categoryHandlers.ListCategories)
	student.GET("/canteens/:id/categories/:categoryID/items", menuItemHandlers.ListItems)
	student.GET("/canteens/:canteenID/cart", cartHandlers.GetCart)
	student.POST("/canteens/:canteenID/cart/items", cartHandlers.AddItem)
	student.POST("/canteens/:canteenID/cart/items/remove", cartHandlers.RemoveItem)
	student.POST("/canteens/:canteenID/cart/items/clear", cartHandlers.ClearLine)
	student.DELETE("/canteens/:canteenID/cart", cartHandlers.ClearCart)
	student.POST("/canteens/:canteenID/checkout", orderHandlers.Checkout)
	student.GET("/orders", orderHandlers.ListMyOrders)
	student.GET("/orders/:id", orderHandlers.GetOrder)
	student.GET("/events", eventsHandlers.StudentEvents)

	// Vendor routes
	vendor := protected.Group("/vendor")
	vendor.Use(middleware.RequireRole(models.RoleVendor))
	vendor.GET("/canteen", canteenHandlers.GetMyCanteen)
	vendor.POST("/canteen", canteenHandlers.CreateCanteen)
	vendor.PUT("/canteen", canteenHandlers.UpdateCanteen)
	vendor.POST("/canteen/image", canteenHandlers.UploadCanteenImage)
	vendor.POST("/categories", categoryHandlers.CreateCategory)
	vendor.PUT("/categories/:id", categoryHandlers.UpdateCategory)
	vendor.DELETE("/categories/:id", categoryHandlers.DeleteCategory)
	vendor.POST("/categories/:id/image", categoryHandlers.UploadCategoryImage)
	vendor.GET("/items", menuItemHandlers.ListMyItems)
	vendor.POST("/items", menuItemHandlers.CreateItem)
	vendor.PUT("/items/:id", menuItemHandlers.UpdateItem)
	vendor.PATCH("/items/:id/availability", menuItemHandlers.SetAvailability)
	vendor.DELETE("/items/:id", menuItemHandlers.DeleteItem)
	vendor.POST("/items/:id/image", menuItemHandlers.UploadItemImage)
	vendor.GET("/orders", orderHandlers.ListCanteenOrders)
	vendor.GET("/orders/:id", orderHandlers.GetCanteenOrder)
	vendor.POST("/orders/:id/ready", orderHandlers.MarkReady)
	vendor.POST("/orders/:id/complete", orderHandlers.MarkCompleted)
	vendor.GET("/stats", statsHandlers.GetStats)
	vendor.GET("/events", eventsHandlers.VendorEvents)

	log.Printf("Campuseats server starting on port %s", cfg.Server.Port)
	e.Logger.Fatal(e.Start(":" + cfg.Server.Port))
}
