package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/maramba-takunda-tapiwa/veggie-bot/internal/config"
)

// HealthHandler serves the ops-visibility endpoints.
type HealthHandler struct {
	cfg         *config.Config
	storageKind string
}

// NewHealthHandler creates the health handler. storageKind names the store
// implementation actually selected at startup.
func NewHealthHandler(cfg *config.Config, storageKind string) *HealthHandler {
	return &HealthHandler{cfg: cfg, storageKind: storageKind}
}

// Home returns the service document with feature flags.
func (h *HealthHandler) Home(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "online",
		"service": config.BotName + " Bot",
		"version": "2.0",
		"storage": h.storageKind,
		"features": fiber.Map{
			"redis_enabled":       h.cfg.RedisEnabled,
			"admin_notifications": h.cfg.AdminNotificationsEnabled,
			"order_modification":  h.cfg.EnableOrderModification,
			"order_tracking":      h.cfg.EnableOrderTracking,
			"customer_history":    h.cfg.EnableCustomerHistory,
		},
		"endpoints": fiber.Map{
			"whatsapp": "/webhook/whatsapp (POST)",
		},
	})
}

// Health is the monitoring probe.
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"version": "2.0",
	})
}
