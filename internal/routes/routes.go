package routes

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/maramba-takunda-tapiwa/veggie-bot/internal/config"
	"github.com/maramba-takunda-tapiwa/veggie-bot/internal/handlers"
	"github.com/maramba-takunda-tapiwa/veggie-bot/internal/middleware"
)

// Setup registers all routes.
func Setup(app *fiber.App, cfg *config.Config, whatsapp *handlers.WhatsAppHandler, health *handlers.HealthHandler) {
	app.Get("/", health.Home)
	app.Get("/health", health.Health)

	webhooks := app.Group("/webhook")

	if cfg.Development() || cfg.DisableWebhookValidation {
		log.Println("⚠️  WhatsApp webhook validation DISABLED")
		webhooks.Post("/whatsapp", whatsapp.HandleWebhook)
	} else {
		webhooks.Post("/whatsapp", middleware.ValidateTwilioSignature(cfg.TwilioAuthToken), whatsapp.HandleWebhook)
	}

	if cfg.Development() {
		app.Post("/test/whatsapp", whatsapp.HandleTestWebhook)
	}
}
