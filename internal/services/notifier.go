package services

import (
	"fmt"
	"log"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/maramba-takunda-tapiwa/veggie-bot/internal/config"
	"github.com/maramba-takunda-tapiwa/veggie-bot/internal/models"
	"github.com/maramba-takunda-tapiwa/veggie-bot/internal/utils"
)

// AdminNotifier sends order notifications to the admin phone via Twilio.
// Sends are fire-and-log: failures never reach the end user and never block
// the conversation. All methods are safe on a nil receiver.
type AdminNotifier struct {
	client     *twilio.RestClient
	from       string
	adminPhone string
	enabled    bool
}

// NewAdminNotifier builds the notifier from configuration. Missing
// credentials disable it with a logged warning rather than failing startup.
func NewAdminNotifier(cfg *config.Config) *AdminNotifier {
	if !cfg.AdminNotificationsEnabled {
		return &AdminNotifier{}
	}

	if cfg.TwilioAccountSID == "" || cfg.TwilioAuthToken == "" || cfg.AdminPhone == "" {
		log.Println("⚠️  Twilio credentials not configured. Admin notifications disabled.")
		return &AdminNotifier{}
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.TwilioAccountSID,
		Password: cfg.TwilioAuthToken,
	})
	log.Println("✅ Twilio client initialized for admin notifications")

	return &AdminNotifier{
		client:     client,
		from:       cfg.TwilioWhatsAppFrom,
		adminPhone: cfg.AdminPhone,
		enabled:    true,
	}
}

// NewOrder notifies the admin about a confirmed order.
func (n *AdminNotifier) NewOrder(order *models.Order, customerPhone string) {
	if n == nil || !n.enabled {
		return
	}

	body := fmt.Sprintf(
		"🔔 NEW VEGGIE ORDER!\n\n"+
			"Order ID: %s\n"+
			"Customer: %s\n"+
			"Phone: %s\n"+
			"Bundles: %d\n"+
			"Total: %.2f\n"+
			"Address: %s, %s\n"+
			"Delivery: %s\n\n"+
			"Check Google Sheets for full details.",
		order.OrderID, order.Name, utils.FormatPhone(customerPhone), order.Bundles,
		order.TotalPrice, order.Address, order.Postcode, order.DeliverySlot)

	n.send(body)
}

// OrderCancelled notifies the admin about a cancellation.
func (n *AdminNotifier) OrderCancelled(orderID, customerName string) {
	if n == nil || !n.enabled {
		return
	}

	body := fmt.Sprintf(
		"❌ ORDER CANCELLED\n\n"+
			"Order ID: %s\n"+
			"Customer: %s\n\n"+
			"Please update Google Sheets.",
		orderID, customerName)

	n.send(body)
}

func (n *AdminNotifier) send(body string) {
	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(n.from)
	params.SetTo(n.adminPhone)
	params.SetBody(body)

	resp, err := n.client.Api.CreateMessage(params)
	if err != nil {
		log.Printf("❌ Failed to send admin notification: %v", err)
		return
	}
	if resp.Sid != nil {
		log.Printf("✅ Admin notification sent: %s", *resp.Sid)
	}
}
