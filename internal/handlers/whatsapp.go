package handlers

import (
	"encoding/xml"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/maramba-takunda-tapiwa/veggie-bot/internal/ratelimit"
	"github.com/maramba-takunda-tapiwa/veggie-bot/internal/services"
	"github.com/maramba-takunda-tapiwa/veggie-bot/internal/utils"
)

const genericApology = "⚠️ Sorry, something went wrong. Please try again or type *HI* to start fresh."

// WhatsAppHandler handles the Twilio WhatsApp webhook.
type WhatsAppHandler struct {
	conversation *services.ConversationService
	limiter      *ratelimit.Limiter
}

// NewWhatsAppHandler creates the webhook handler.
func NewWhatsAppHandler(conversation *services.ConversationService, limiter *ratelimit.Limiter) *WhatsAppHandler {
	return &WhatsAppHandler{conversation: conversation, limiter: limiter}
}

// TwilioWebhookPayload is the form-encoded message Twilio posts.
type TwilioWebhookPayload struct {
	MessageSid string `form:"MessageSid"`
	AccountSid string `form:"AccountSid"`
	From       string `form:"From"` // whatsapp:+447700900000
	To         string `form:"To"`
	Body       string `form:"Body"`
	NumMedia   string `form:"NumMedia"`
}

// HandleWebhook processes one inbound WhatsApp message and replies with
// TwiML. The rate limiter runs before anything else; a rejection
// short-circuits all further handling.
func (h *WhatsAppHandler) HandleWebhook(c *fiber.Ctx) error {
	var payload TwilioWebhookPayload
	if err := c.BodyParser(&payload); err != nil {
		log.Printf("Error parsing webhook: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid webhook payload",
		})
	}

	from := utils.FormatPhone(payload.From)

	// Status callbacks carry no body; acknowledge and move on.
	if payload.Body == "" || from == "" {
		return c.SendStatus(fiber.StatusOK)
	}

	if ok, retryAfter := h.limiter.Allow(from); !ok {
		seconds := int(retryAfter.Seconds())
		if seconds < 1 {
			seconds = 1
		}
		return twiml(c, fmt.Sprintf("⚠️ Too many messages! Please wait %d seconds before trying again.", seconds))
	}

	reply, err := h.conversation.ProcessMessage(c.UserContext(), from, payload.Body)
	if err != nil {
		log.Printf("❌ Error processing message from %s: %v", from, err)
		reply = genericApology
	}

	return twiml(c, reply)
}

// TestWebhookPayload exercises the engine without Twilio (development only).
type TestWebhookPayload struct {
	From    string `json:"from"`
	Message string `json:"message"`
}

// HandleTestWebhook processes a JSON test message and returns the reply as
// JSON instead of TwiML.
func (h *WhatsAppHandler) HandleTestWebhook(c *fiber.Ctx) error {
	var payload TestWebhookPayload
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid test payload",
		})
	}

	log.Printf("🧪 Test webhook from %s: %s", payload.From, payload.Message)

	reply, err := h.conversation.ProcessMessage(c.UserContext(), payload.From, payload.Message)
	if err != nil {
		log.Printf("Error processing test message: %v", err)
		reply = genericApology
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"response": reply,
	})
}

type twimlResponse struct {
	XMLName xml.Name `xml:"Response"`
	Message string   `xml:"Message"`
}

// twiml wraps the reply text in the markup Twilio expects back.
func twiml(c *fiber.Ctx, body string) error {
	data, err := xml.Marshal(twimlResponse{Message: body})
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to render response")
	}

	c.Set(fiber.HeaderContentType, "text/xml")
	return c.SendString(xml.Header + string(data))
}
