package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/maramba-takunda-tapiwa/veggie-bot/database"
	"github.com/maramba-takunda-tapiwa/veggie-bot/internal/config"
	"github.com/maramba-takunda-tapiwa/veggie-bot/internal/handlers"
	"github.com/maramba-takunda-tapiwa/veggie-bot/internal/models"
	"github.com/maramba-takunda-tapiwa/veggie-bot/internal/pricing"
	"github.com/maramba-takunda-tapiwa/veggie-bot/internal/ratelimit"
	"github.com/maramba-takunda-tapiwa/veggie-bot/internal/routes"
	"github.com/maramba-takunda-tapiwa/veggie-bot/internal/services"
	"github.com/maramba-takunda-tapiwa/veggie-bot/internal/storage"
)

func main() {
	// Load .env for local development
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found - using environment variables")
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Printf("⚠️  Configuration error: %v", err)
		log.Println("⚠️  Some features may not work correctly")
	}
	cfg.LogSummary()

	// Session storage: Redis when enabled and reachable, memory otherwise
	store := storage.New(cfg)
	storageKind := "memory"
	if _, ok := store.(*storage.RedisStore); ok {
		storageKind = "redis"
	}

	// Order sink (Google Sheets)
	var sink services.OrderSink
	if sheetsSink, err := services.NewSheetsSink(context.Background(), cfg); err != nil {
		log.Printf("❌ Failed to connect to Google Sheets: %v", err)
		log.Println("⚠️  Orders cannot be saved until Sheets is configured")
	} else {
		sink = sheetsSink
	}

	notifier := services.NewAdminNotifier(cfg)

	// Customer history archive (optional)
	var archive *services.OrderArchive
	if cfg.EnableCustomerHistory {
		db, err := database.Connect()
		if err != nil {
			log.Printf("❌ Customer history disabled: %v", err)
		} else if err := db.AutoMigrate(&models.OrderRecord{}); err != nil {
			log.Printf("❌ Customer history disabled: migration failed: %v", err)
		} else {
			archive = services.NewOrderArchive(db)
			log.Println("✅ Customer history archive enabled")
		}
	}

	conversation := services.NewConversationService(cfg, store, pricing.New(cfg), sink, notifier, archive)
	limiter := ratelimit.New(cfg.RateLimitMessages, cfg.RateLimitWindow)

	whatsappHandler := handlers.NewWhatsAppHandler(conversation, limiter)
	healthHandler := handlers.NewHealthHandler(cfg, storageKind)

	app := fiber.New(fiber.Config{
		AppName: config.BotName + " Bot v2.0",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, POST, OPTIONS",
	}))

	routes.Setup(app, cfg, whatsappHandler, healthHandler)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("\n🛑 Gracefully shutting down...")
		_ = app.Shutdown()
	}()

	log.Println("========================================")
	log.Printf("🚀 %s Bot starting on port %s", config.BotName, cfg.Port)
	log.Printf("📊 Storage: %s", storageKind)
	log.Printf("🌍 Environment: %s", cfg.Environment)
	log.Println("========================================")

	log.Fatal(app.Listen(":" + cfg.Port))
}
