package main

import (
	"context"
	"fmt"
	"hortifood/app/echo-server/router"
	"hortifood/business/address"
	"hortifood/business/auth"
	"hortifood/business/cart"
	"hortifood/business/category"
	"hortifood/business/hortifruit"
	"hortifood/business/product"
	userService "hortifood/business/user"
	"hortifood/internal/middleware"
	kafkaRepo "hortifood/internal/repository/kafka"
	"hortifood/internal/repository/notification"
	psqlRepo "hortifood/internal/repository/postgres"
	"hortifood/internal/repository/postgres/migrations"
	redisRepo "hortifood/internal/repository/redis"
	"hortifood/internal/rest"
	"hortifood/pkg/config"
	"hortifood/pkg/database"
	"hortifood/pkg/logger"
	"hortifood/pkg/metrics"
	"hortifood/pkg/utils"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	defer logger.Sync()
	logger.Info("Starting HortiFood", "version", cfg.App.Version)

	metrics.Init()

	db, err := database.InitPostgres(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	logger.Info("Database connected successfully")

	if cfg.Database.AutoMigrate {
		sqlDB, err := db.DB()
		if err != nil {
			logger.Fatal("Failed to get sql.DB", "error", err)
		}
		applied, err := migrations.Up(context.Background(), sqlDB)
		if err != nil {
			logger.Fatal("Failed to apply migrations", "error", err)
		}
		logger.Info("Migrations applied", "versions", applied)
	}

	// Init notification from mailjet
	mailjetEmail := notification.NewMailjetRepository(
		notification.MailjetConfig{
			MailjetBaseURL:           cfg.Mailjet.MailjetBaseUrl,
			MailjetBasicAuthUsername: cfg.Mailjet.MailjetBasicAuthUsername,
			MailjetBasicAuthPassword: cfg.Mailjet.MailjetBasicAuthPassword,
			MailjetSenderEmail:       cfg.Mailjet.MailjetSenderEmail,
			MailjetSenderName:        cfg.Mailjet.MailjetSenderName,
		},
	)

	jwtManager := utils.NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.AccessTTL)
	authRequired := middleware.AuthMiddleware(jwtManager)

	// Optional redis session allow-list
	var sessions auth.SessionStore
	if cfg.Redis.Enabled() {
		redisClient, err := database.InitRedis(cfg)
		if err != nil {
			logger.Fatal("Failed to connect to redis", "error", err)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Error("Failed to close redis", "error", err)
			}
		}()

		sessionRepo := redisRepo.NewSessionRepository(redisClient)
		sessions = sessionRepo
		authRequired = middleware.AuthMiddlewareWithRedis(jwtManager, sessionRepo)
		logger.Info("Redis session store enabled")
	}

	// Optional kafka checkout events
	var publisher cart.CheckoutPublisher
	if cfg.Kafka.Enabled() {
		checkoutPublisher := kafkaRepo.NewCheckoutPublisher(cfg.Kafka.Brokers, cfg.Kafka.CheckoutTopic)
		defer func() {
			if err := checkoutPublisher.Close(); err != nil {
				logger.Error("Failed to close kafka writer", "error", err)
			}
		}()
		publisher = checkoutPublisher
		logger.Info("Kafka checkout publisher enabled", "topic", cfg.Kafka.CheckoutTopic)
	}

	// Init repo
	userRepo := psqlRepo.NewUserRepository(db)
	hortifruitRepo := psqlRepo.NewHortifruitRepository(db)
	categoryRepo := psqlRepo.NewCategoryRepository(db)
	productRepo := psqlRepo.NewProductRepository(db)
	addressRepo := psqlRepo.NewAddressRepository(db)
	cartRepo := psqlRepo.NewCartRepository(db)
	refreshTokenRepo := psqlRepo.NewRefreshTokenRepository(db)

	// Init service
	authSvc := auth.NewAuthService(userRepo, hortifruitRepo, refreshTokenRepo, sessions, jwtManager, mailjetEmail, auth.Config{
		RefreshTTL:       cfg.JWT.RefreshTTL,
		ResetPasswordKey: cfg.App.AppResetPasswordKey,
		AppDeploymentUrl: cfg.App.AppDeploymentUrl,
	})
	userSvc := userService.NewUserService(userRepo, productRepo)
	hortifruitSvc := hortifruit.NewHortifruitService(hortifruitRepo)
	categorySvc := category.NewCategoryService(categoryRepo)
	productSvc := product.NewProductService(productRepo, categoryRepo, hortifruitRepo)
	addressSvc := address.NewAddressService(addressRepo)
	cartSvc := cart.NewCartService(cartRepo, productRepo, addressRepo, hortifruitRepo, publisher)

	// Init handler
	authHandler := rest.NewAuthHandler(authSvc)
	userHandler := rest.NewUserHandler(userSvc)
	hortifruitHandler := rest.NewHortifruitHandler(hortifruitSvc)
	categoryHandler := rest.NewCategoryHandler(categorySvc)
	productHandler := rest.NewProductHandler(productSvc)
	addressHandler := rest.NewAddressHandler(addressSvc)
	cartHandler := rest.NewCartHandler(cartSvc)

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// HTTP error handler
	e.HTTPErrorHandler = middleware.ErrorHandler

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.Metrics())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.Server.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Setup routes
	api := e.Group("/api/v1")
	rateLimit := middleware.AuthRateLimiter(cfg.RateLimit.AuthRPS, cfg.RateLimit.AuthBurst)
	router.SetupAuthRoutes(api, authHandler, authRequired, rateLimit)
	router.SetupUserRoutes(api, userHandler, authRequired)
	router.SetupHortifruitRoutes(api, hortifruitHandler, authRequired)
	router.SetupCategoryRoutes(api, categoryHandler, authRequired)
	router.SetupProductRoutes(api, productHandler, authRequired)
	router.SetupAddressRoutes(api, addressHandler, authRequired)
	router.SetupCartRoutes(api, cartHandler, authRequired)

	// Goroutine server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Server stopped")
}
