package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"reviewmarket/internal/config"
	"reviewmarket/internal/handlers"
	"reviewmarket/internal/middleware"
	"reviewmarket/internal/models"
	"reviewmarket/internal/repositories"
	"reviewmarket/internal/scraper"
	"reviewmarket/internal/services"
	"reviewmarket/pkg/logger"
	"reviewmarket/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	_ = godotenv.Load() // Optional .env for local development
	cfg := config.Load()

	log := logger.New(cfg.LogLevel, logger.FileConfig{
		Path:       cfg.LogFilePath,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
	})
	defer log.Sync()

	// --- Database ---
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := db.AutoMigrate(&models.User{}, &models.Product{}, &models.Review{}, &models.Suspect{}); err != nil {
		log.Fatal("failed to migrate database", zap.Error(err))
	}

	// --- RabbitMQ (optional; moderation events are skipped without it) ---
	var mqClient *rabbitmq.Client
	mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
	if err != nil {
		log.Warn("RabbitMQ unavailable, moderation events disabled", zap.Error(err))
		mqClient = nil
	} else {
		defer mqClient.Close()
	}

	// --- Repositories ---
	userRepo := repositories.NewGORMUserRepository(db)
	productRepo := repositories.NewGORMProductRepository(db)
	reviewRepo := repositories.NewGORMReviewRepository(db)
	suspectRepo := repositories.NewGORMSuspectRepository(db)
	ledgerRepo := repositories.NewGORMLedgerRepository(db)

	// --- Verification pipeline ---
	verifier := scraper.NewVerifier(
		scraper.NewFetcher(cfg.FetchTimeout),
		scraper.NewExtractor(),
		scraper.NewMatcher(cfg.FuzzyTolerance),
		log,
	)

	// --- Services ---
	authService := services.NewAuthService(userRepo, cfg.JWTSecret, log)
	billingService := services.NewBillingService(userRepo, cfg.ProSubscriptionDays, log)
	productService := services.NewProductService(productRepo, log)
	userService := services.NewUserService(userRepo, productRepo, ledgerRepo, log)
	reviewService := services.NewReviewService(
		reviewRepo, suspectRepo, productRepo, userRepo, ledgerRepo,
		verifier, billingService, mqClient, log,
	)

	// --- Handlers ---
	authHandler := handlers.NewAuthHandler(authService)
	productHandler := handlers.NewProductHandler(productService)
	reviewHandler := handlers.NewReviewHandler(reviewService)
	userHandler := handlers.NewUserHandler(userService)
	billingHandler := handlers.NewBillingHandler(billingService)

	// --- Fiber App ---
	app := fiber.New()
	app.Use(fiberlogger.New()) // Request logger

	apiV1 := app.Group("/api/v1")

	// Public routes
	authHandler.RegisterRoutes(apiV1)
	billingHandler.RegisterWebhookRoutes(apiV1)

	// Protected routes: identity first, then ban/pro enrichment
	protected := apiV1.Group("",
		middleware.AuthRequired(authService),
		middleware.AccountEnrichment(userRepo, billingService),
	)
	productHandler.RegisterRoutes(protected)
	reviewHandler.RegisterRoutes(protected)
	userHandler.RegisterRoutes(protected)
	billingHandler.RegisterRoutes(protected)

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// --- Moderation event consumer ---
	// The moderation tooling that triages suspects and bans users runs
	// elsewhere; this consumer only surfaces the event stream in the logs.
	if mqClient != nil {
		go func() {
			log.Info("starting moderation event consumer")
			handler := func(msg amqp.Delivery) error {
				log.Info("moderation event",
					zap.String("routing_key", msg.RoutingKey),
					zap.ByteString("body", msg.Body))
				return nil
			}
			if consumeErr := mqClient.ConsumeModerationEvents(handler); consumeErr != nil {
				log.Error("moderation consumer stopped", zap.Error(consumeErr))
			}
		}()
	}

	// --- Start HTTP Server ---
	log.Info("starting server", zap.String("port", cfg.AppPort))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Fatal("server failed to start", zap.Error(err))
		}
	}()

	<-quit
	log.Info("shutting down server")

	if err := app.Shutdown(); err != nil {
		log.Error("error during shutdown", zap.Error(err))
	}

	log.Info("server gracefully stopped")
}
