// Package config centralizes every externally supplied setting. All values
// are read from the environment exactly once at startup; nothing in the rest
// of the codebase touches os.Getenv.
package config

import (
	"fmt"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Branding is fixed, not configurable.
const (
	BotName  = "FoodStream Veggies"
	BotEmoji = "🥬"
)

// DiscountTier pairs a bundle-count threshold with a discount percentage.
// An order qualifies for the highest threshold it meets.
type DiscountTier struct {
	Threshold int
	Percent   float64
}

// Config holds all runtime settings for the bot.
type Config struct {
	Environment string
	Port        string

	// Twilio
	TwilioAccountSID   string
	TwilioAuthToken    string
	TwilioWhatsAppFrom string

	// Admin notifications
	AdminPhone                string
	AdminNotificationsEnabled bool

	// Google Sheets
	GoogleCredsJSON string
	GoogleSheetID   string

	// Session storage
	RedisEnabled bool
	RedisURL     string
	SessionTTL   time.Duration
	OrderTTL     time.Duration

	// Pricing
	PricePerBundle  float64
	CurrencySymbol  string
	DeliveryFee     float64
	VolumeDiscounts []DiscountTier

	DeliverySlots []string

	// Rate limiting
	RateLimitMessages int
	RateLimitWindow   time.Duration

	// Feature flags
	EnableOrderModification bool
	EnableOrderTracking     bool
	EnableCustomerHistory   bool

	DisableWebhookValidation bool
}

// Load reads the full configuration from the environment.
func Load() *Config {
	return &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Port:        getEnv("PORT", "8080"),

		TwilioAccountSID:   os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:    os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioWhatsAppFrom: os.Getenv("TWILIO_WHATSAPP_FROM"),

		AdminPhone:                os.Getenv("ADMIN_PHONE"),
		AdminNotificationsEnabled: getEnvBool("ADMIN_NOTIFICATIONS_ENABLED", false),

		GoogleCredsJSON: os.Getenv("GOOGLE_CREDS_JSON"),
		GoogleSheetID:   os.Getenv("GOOGLE_SHEET_ID"),

		RedisEnabled: getEnvBool("REDIS_ENABLED", false),
		RedisURL:     getEnv("REDIS_URL", "redis://localhost:6379/0"),
		SessionTTL:   time.Duration(getEnvInt("STATE_EXPIRATION_HOURS", 24)) * time.Hour,
		OrderTTL:     time.Duration(getEnvInt("ORDER_EXPIRATION_DAYS", 7)) * 24 * time.Hour,

		PricePerBundle:  getEnvFloat("PRICE_PER_BUNDLE", 5.00),
		CurrencySymbol:  getEnv("CURRENCY_SYMBOL", "£"),
		DeliveryFee:     getEnvFloat("DELIVERY_FEE", 0.00),
		VolumeDiscounts: parseVolumeDiscounts(getEnv("VOLUME_DISCOUNTS", "10:10,20:15")),

		DeliverySlots: parseDeliverySlots(getEnv("DELIVERY_SLOTS",
			"Saturday 2-4 PM,Saturday 4-6 PM,Sunday 10-12 PM,Sunday 2-4 PM")),

		RateLimitMessages: getEnvInt("RATE_LIMIT_MESSAGES", 10),
		RateLimitWindow:   time.Duration(getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60)) * time.Second,

		EnableOrderModification: getEnvBool("ENABLE_ORDER_MODIFICATION", true),
		EnableOrderTracking:     getEnvBool("ENABLE_ORDER_TRACKING", true),
		EnableCustomerHistory:   getEnvBool("ENABLE_CUSTOMER_HISTORY", false),

		DisableWebhookValidation: getEnvBool("DISABLE_WEBHOOK_VALIDATION", false),
	}
}

// Development reports whether the bot runs in development mode. Development
// mode skips webhook signature validation and enables the DEBUG command.
func (c *Config) Development() bool {
	return c.Environment == "development"
}

// Validate checks settings that would otherwise fail at first use.
func (c *Config) Validate() error {
	var errs []string

	if c.AdminNotificationsEnabled {
		if c.TwilioAccountSID == "" {
			errs = append(errs, "TWILIO_ACCOUNT_SID is required for admin notifications")
		}
		if c.TwilioAuthToken == "" {
			errs = append(errs, "TWILIO_AUTH_TOKEN is required for admin notifications")
		}
		if c.AdminPhone == "" {
			errs = append(errs, "ADMIN_PHONE is required for admin notifications")
		}
	}

	if c.GoogleCredsJSON == "" {
		errs = append(errs, "GOOGLE_CREDS_JSON is required to save orders")
	}
	if c.GoogleSheetID == "" {
		errs = append(errs, "GOOGLE_SHEET_ID is required to save orders")
	}

	if c.PricePerBundle <= 0 {
		errs = append(errs, "PRICE_PER_BUNDLE must be greater than 0")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// LogSummary logs the non-sensitive parts of the configuration.
func (c *Config) LogSummary() {
	log.Println("========================================")
	log.Printf("%s Bot Configuration", BotName)
	log.Println("========================================")
	log.Printf("Environment: %s", c.Environment)
	log.Printf("Redis Enabled: %v", c.RedisEnabled)
	log.Printf("Price per Bundle: %s%.2f", c.CurrencySymbol, c.PricePerBundle)
	log.Printf("Delivery Fee: %s%.2f", c.CurrencySymbol, c.DeliveryFee)
	log.Printf("Volume Discounts: %d tiers", len(c.VolumeDiscounts))
	log.Printf("Delivery Slots: %d available", len(c.DeliverySlots))
	log.Printf("Admin Notifications: %v", c.AdminNotificationsEnabled)
	log.Printf("Order Modification: %v", c.EnableOrderModification)
	log.Printf("Order Tracking: %v", c.EnableOrderTracking)
	log.Printf("Customer History: %v", c.EnableCustomerHistory)
	log.Println("========================================")
}

// parseVolumeDiscounts parses "10:10,20:15" into sorted tiers
// (10+ bundles = 10% off, 20+ = 15% off). A malformed value disables
// discounts rather than failing startup.
func parseVolumeDiscounts(raw string) []DiscountTier {
	if raw == "" {
		return nil
	}

	var tiers []DiscountTier
	for _, pair := range strings.Split(raw, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), ":", 2)
		if len(parts) != 2 {
			log.Printf("⚠️  Ignoring VOLUME_DISCOUNTS: malformed pair %q", pair)
			return nil
		}
		threshold, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			log.Printf("⚠️  Ignoring VOLUME_DISCOUNTS: bad threshold %q", parts[0])
			return nil
		}
		percent, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			log.Printf("⚠️  Ignoring VOLUME_DISCOUNTS: bad percent %q", parts[1])
			return nil
		}
		tiers = append(tiers, DiscountTier{Threshold: threshold, Percent: percent})
	}

	sort.Slice(tiers, func(i, j int) bool { return tiers[i].Threshold < tiers[j].Threshold })
	return tiers
}

func parseDeliverySlots(raw string) []string {
	if raw == "" {
		return []string{"This weekend"}
	}
	var slots []string
	for _, slot := range strings.Split(raw, ",") {
		if s := strings.TrimSpace(slot); s != "" {
			slots = append(slots, s)
		}
	}
	if len(slots) == 0 {
		return []string{"This weekend"}
	}
	return slots
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return strings.EqualFold(v, "true")
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("⚠️  Invalid %s=%q, using default %d", key, v, fallback)
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("⚠️  Invalid %s=%q, using default %.2f", key, v, fallback)
		return fallback
	}
	return f
}
