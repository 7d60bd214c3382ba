package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/maramba-takunda-tapiwa/veggie-bot/internal/config"
	"github.com/maramba-takunda-tapiwa/veggie-bot/internal/models"
	"github.com/maramba-takunda-tapiwa/veggie-bot/internal/pricing"
	"github.com/maramba-takunda-tapiwa/veggie-bot/internal/storage"
	"github.com/maramba-takunda-tapiwa/veggie-bot/internal/utils"
	"github.com/maramba-takunda-tapiwa/veggie-bot/internal/validators"
)

// OrderSink receives confirmed orders. Implementations must convert any
// insert failure into an error return, never a panic.
type OrderSink interface {
	AppendOrder(ctx context.Context, phone string, order *models.Order, breakdown pricing.Breakdown) error
}

var restartWords = map[string]bool{
	"hi": true, "hello": true, "start": true, "restart": true, "reset": true, "new": true,
}

var viewWords = map[string]bool{
	"view": true, "my order": true, "order status": true, "status": true,
}

// ConversationService drives the per-user ordering conversation. Each
// inbound message reads the session, runs exactly one transition, and writes
// the whole session back (or deletes it on a terminal transition).
type ConversationService struct {
	cfg      *config.Config
	store    storage.Store
	pricing  *pricing.Engine
	sink     OrderSink
	notifier *AdminNotifier
	archive  *OrderArchive
}

// NewConversationService wires the conversation engine. notifier and archive
// may be nil; sink may be nil, in which case confirmations fail gracefully.
func NewConversationService(cfg *config.Config, store storage.Store, engine *pricing.Engine, sink OrderSink, notifier *AdminNotifier, archive *OrderArchive) *ConversationService {
	return &ConversationService{
		cfg:      cfg,
		store:    store,
		pricing:  engine,
		sink:     sink,
		notifier: notifier,
		archive:  archive,
	}
}

// ProcessMessage handles one inbound message and returns the reply text. A
// non-nil error means the caller should apologize to the user; the session
// is left as it was.
func (s *ConversationService) ProcessMessage(ctx context.Context, from, body string) (string, error) {
	phone := utils.FormatPhone(from)
	msg := utils.Sanitize(body)
	lower := strings.ToLower(msg)

	log.Printf("📱 Message from %s: %.50s", phone, msg)

	// Global commands run before stage dispatch, regardless of stage.
	switch {
	case restartWords[lower]:
		return s.handleStart(ctx, phone)

	case viewWords[lower]:
		return s.handleViewOrder(ctx, phone)

	case lower == "cancel":
		return s.handleCancel(ctx, phone)

	case lower == "help":
		return s.helpMessage(), nil

	case lower == "debug" && s.cfg.Development():
		return s.handleDebug(ctx, phone)
	}

	session, err := s.store.GetSession(ctx, phone)
	if errors.Is(err, storage.ErrNotFound) {
		return s.handleStart(ctx, phone)
	}
	if err != nil {
		return "", fmt.Errorf("read session: %w", err)
	}

	reply, terminal, err := s.dispatch(ctx, phone, session, msg, lower)
	if err != nil {
		return "", err
	}

	if !terminal {
		if err := s.store.SetSession(ctx, phone, session); err != nil {
			return "", fmt.Errorf("write session: %w", err)
		}
	}
	return reply, nil
}

// dispatch routes to the current stage's handler. terminal means the session
// was deleted by the handler and must not be written back.
func (s *ConversationService) dispatch(ctx context.Context, phone string, session *models.Session, msg, lower string) (reply string, terminal bool, err error) {
	switch session.Stage {
	case models.StageAskName:
		return s.askName(session, msg), false, nil

	case models.StageAskBundles:
		return s.askBundles(session, msg), false, nil

	case models.StageAskAddress:
		return s.askAddress(session, msg), false, nil

	case models.StageAskPostcode:
		return s.askPostcode(session, msg), false, nil

	case models.StageAskDeliverySlot:
		return s.askDeliverySlot(session, msg), false, nil

	case models.StageConfirmOrder:
		return s.confirmOrder(ctx, phone, session, msg, lower)

	case models.StageModifyOrder:
		return s.modifyOrder(session, lower), false, nil

	default:
		// Unknown stage means corrupted state. Discard it and restart
		// rather than guessing.
		log.Printf("⚠️  Unknown stage %q for %s, resetting session", session.Stage, phone)
		if err := s.store.DeleteSession(ctx, phone); err != nil {
			return "", false, fmt.Errorf("reset corrupted session: %w", err)
		}
		return fmt.Sprintf("Something went wrong. Type *HI* to start fresh! %s", config.BotEmoji), true, nil
	}
}

// handleStart discards any existing session and begins a new conversation.
func (s *ConversationService) handleStart(ctx context.Context, phone string) (string, error) {
	if err := s.store.DeleteSession(ctx, phone); err != nil {
		return "", fmt.Errorf("reset session: %w", err)
	}
	if err := s.store.SetSession(ctx, phone, models.NewSession()); err != nil {
		return "", fmt.Errorf("start session: %w", err)
	}

	return fmt.Sprintf("%s! 👋 Welcome to %s %s!\n\nPlease tell me your *name* to start your order.",
		utils.Greeting(time.Now()), config.BotName, config.BotEmoji), nil
}

func (s *ConversationService) handleViewOrder(ctx context.Context, phone string) (string, error) {
	if !s.cfg.EnableOrderTracking {
		return fmt.Sprintf("Order tracking is currently unavailable. Type *HI* to place a new order! %s", config.BotEmoji), nil
	}

	order, err := s.store.GetLastOrder(ctx, phone)
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Sprintf("You don't have any recent orders. Type *HI* to place a new order! %s", config.BotEmoji), nil
	}
	if err != nil {
		return "", fmt.Errorf("read last order: %w", err)
	}

	return fmt.Sprintf(
		"📦 *Your Last Order*\n\n"+
			"🆔 Order ID: %s\n"+
			"👤 Name: %s\n"+
			"🥬 Bundles: %d\n"+
			"💰 Total: %s\n"+
			"📍 Address: %s, %s\n"+
			"🚚 Delivery: %s\n"+
			"📊 Status: %s\n\n"+
			"Reply *CANCEL* to cancel this order\n"+
			"or *HI* to place a new order %s",
		order.OrderID, order.Name, order.Bundles, s.pricing.FormatPrice(order.TotalPrice),
		order.Address, order.Postcode, order.DeliverySlot, order.Status, config.BotEmoji), nil
}

// handleCancel abandons an active conversation if there is one; otherwise it
// cancels the last completed order. During modification, CANCEL only backs
// out of the modify menu, as its prompt promises.
func (s *ConversationService) handleCancel(ctx context.Context, phone string) (string, error) {
	session, err := s.store.GetSession(ctx, phone)
	if err == nil {
		if session.Stage == models.StageModifyOrder {
			session.Stage = models.StageConfirmOrder
			if err := s.store.SetSession(ctx, phone, session); err != nil {
				return "", fmt.Errorf("write session: %w", err)
			}
			return s.confirmationMessage(session), nil
		}

		if err := s.store.DeleteSession(ctx, phone); err != nil {
			return "", fmt.Errorf("cancel session: %w", err)
		}
		return "Conversation cancelled. Type *HI* to start fresh! 🥦", nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return "", fmt.Errorf("read session: %w", err)
	}

	return s.cancelLastOrder(ctx, phone)
}

func (s *ConversationService) cancelLastOrder(ctx context.Context, phone string) (string, error) {
	order, err := s.store.GetLastOrder(ctx, phone)
	if errors.Is(err, storage.ErrNotFound) {
		return "No recent order found to cancel.", nil
	}
	if err != nil {
		return "", fmt.Errorf("read last order: %w", err)
	}

	order.Status = models.OrderStatusCancelled
	if err := s.store.SetLastOrder(ctx, phone, order); err != nil {
		return "", fmt.Errorf("cancel order: %w", err)
	}

	s.notifier.OrderCancelled(order.OrderID, order.Name)
	s.archive.MarkCancelled(order.OrderID)

	return fmt.Sprintf(
		"❌ Order %s has been cancelled.\n\n"+
			"Note: If you need to cancel within 24 hours of delivery, please contact us directly.\n\n"+
			"Type *HI* to place a new order! 🥦", order.OrderID), nil
}

func (s *ConversationService) helpMessage() string {
	msg := fmt.Sprintf(
		"ℹ️ *%s - Help*\n\n"+
			"*Available Commands:*\n"+
			"• *HI* - Start a new order\n"+
			"• *VIEW* - See your last order\n"+
			"• *CANCEL* - Cancel your order\n"+
			"• *HELP* - Show this help message\n\n"+
			"*Pricing:*\n"+
			"%s per bundle",
		config.BotName, s.pricing.FormatPrice(s.pricing.UnitPrice))

	if info := s.pricing.DiscountInfo(); info != "" {
		msg += "\n" + info
	}

	return msg + fmt.Sprintf("\n\nType *HI* to start ordering! %s", config.BotEmoji)
}

func (s *ConversationService) handleDebug(ctx context.Context, phone string) (string, error) {
	session, err := s.store.GetSession(ctx, phone)
	if errors.Is(err, storage.ErrNotFound) {
		return "🔧 Debug Info:\nNo active conversation.\n\nType *HI* to start ordering!", nil
	}
	if err != nil {
		return "", fmt.Errorf("read session: %w", err)
	}

	data, _ := json.MarshalIndent(session, "", "  ")
	return fmt.Sprintf("🔧 *Debug Info*\n\nCurrent stage: %s\nState data: %s\n\nType *RESET* to start fresh.",
		session.Stage, data), nil
}

// ---- Stage handlers ----
// Each mutates the session in place and returns the reply; the caller
// persists the session afterwards.

func (s *ConversationService) askName(session *models.Session, msg string) string {
	name, err := validators.Name(msg)
	if err != nil {
		return fmt.Sprintf("❌ %s\nPlease tell me your name:", err)
	}

	session.Name = name
	session.Stage = models.StageAskBundles

	return fmt.Sprintf("Nice to meet you, %s! 🧺\n\nHow many *bundles* would you like to order?", name)
}

func (s *ConversationService) askBundles(session *models.Session, msg string) string {
	bundles, err := validators.BundleCount(msg)
	if err != nil {
		return fmt.Sprintf("❌ %s\nPlease enter how many bundles you'd like:", err)
	}

	session.Bundles = bundles
	session.Stage = models.StageAskAddress

	return fmt.Sprintf("Got it ✅\n\n%s\n\nPlease provide your *delivery address*:", s.pricing.Summary(bundles))
}

func (s *ConversationService) askAddress(session *models.Session, msg string) string {
	address, err := validators.Address(msg)
	if err != nil {
		return fmt.Sprintf("❌ %s\nPlease provide your delivery address:", err)
	}

	session.Address = address
	session.Stage = models.StageAskPostcode

	return "Thank you! 📍\n\nNow please provide your *postcode*:"
}

func (s *ConversationService) askPostcode(session *models.Session, msg string) string {
	postcode, err := validators.Postcode(msg)
	if err != nil {
		return fmt.Sprintf("❌ %s\nPlease provide your postcode:", err)
	}

	session.Postcode = postcode

	slots := s.cfg.DeliverySlots
	if len(slots) > 1 {
		session.Stage = models.StageAskDeliverySlot
		return fmt.Sprintf("Perfect! 🎯\n\n*Choose your delivery slot:*\n%s\n\nReply with the number of your preferred slot.",
			utils.NumberedList(slots, "🕒"))
	}

	// Single configured slot: skip the question.
	session.DeliverySlot = "This weekend"
	if len(slots) == 1 {
		session.DeliverySlot = slots[0]
	}
	session.Stage = models.StageConfirmOrder
	return s.confirmationMessage(session)
}

func (s *ConversationService) askDeliverySlot(session *models.Session, msg string) string {
	slots := s.cfg.DeliverySlots
	slot, err := validators.DeliverySlotChoice(msg, slots)
	if err != nil {
		return fmt.Sprintf("❌ %s\n\n%s\n\nPlease choose a number:", err, utils.NumberedList(slots, "🕒"))
	}

	session.DeliverySlot = slot
	session.Stage = models.StageConfirmOrder

	return s.confirmationMessage(session)
}

func (s *ConversationService) confirmationMessage(session *models.Session) string {
	msg := fmt.Sprintf(
		"✅ *Please Confirm Your Order*\n\n"+
			"👤 Name: %s\n"+
			"🥬 Bundles: %d\n"+
			"📍 Address: %s, %s\n"+
			"🚚 Delivery: %s\n\n"+
			"%s\n\n",
		session.Name, session.Bundles, session.Address, session.Postcode,
		session.DeliverySlot, s.pricing.Summary(session.Bundles))

	if s.cfg.EnableOrderModification {
		return msg + "Reply *YES* to confirm or *MODIFY* to make changes."
	}
	return msg + "Reply *YES* to confirm or *CANCEL* to cancel."
}

func (s *ConversationService) confirmOrder(ctx context.Context, phone string, session *models.Session, msg, lower string) (string, bool, error) {
	if s.cfg.EnableOrderModification && (lower == "modify" || lower == "change" || lower == "edit") {
		session.Stage = models.StageModifyOrder
		return "📝 What would you like to modify?\n\n" +
			"Reply:\n" +
			"• *1* - Change quantity\n" +
			"• *2* - Change address\n" +
			"• *3* - Change postcode\n" +
			"• *4* - Change delivery slot\n" +
			"• *CANCEL* - Cancel modification", false, nil
	}

	yes, ok := utils.ParseYesNo(msg)
	if !ok {
		return "Please reply *YES* to confirm or *NO* to cancel.", false, nil
	}

	if !yes {
		if err := s.store.DeleteSession(ctx, phone); err != nil {
			return "", false, fmt.Errorf("abandon session: %w", err)
		}
		return "Order cancelled. Type *HI* to start a new order! 🥦", true, nil
	}

	return s.commitOrder(ctx, phone, session)
}

// commitOrder runs the terminal confirm transition: append the order to the
// sink, then and only then record the last-order snapshot, notify, archive,
// and drop the session. On sink failure the session is kept so a later YES
// resubmits without re-entering everything.
func (s *ConversationService) commitOrder(ctx context.Context, phone string, session *models.Session) (string, bool, error) {
	session.OrderID = utils.GenerateOrderID()
	breakdown := s.pricing.Calculate(session.Bundles)

	order := &models.Order{
		OrderID:      session.OrderID,
		Name:         session.Name,
		Bundles:      session.Bundles,
		Address:      session.Address,
		Postcode:     session.Postcode,
		DeliverySlot: session.DeliverySlot,
		TotalPrice:   breakdown.Total,
		Status:       models.OrderStatusConfirmed,
		Timestamp:    utils.FormatTimestamp(time.Now()),
	}

	var sinkErr error
	if s.sink == nil {
		sinkErr = errors.New("order sink not configured")
	} else {
		sinkErr = s.sink.AppendOrder(ctx, phone, order, breakdown)
	}
	if sinkErr != nil {
		log.Printf("❌ Error saving order for %s: %v", phone, sinkErr)
		return fmt.Sprintf(
			"⚠️ Sorry, there was an issue saving your order.\n"+
				"Please try again later or contact support.\n\n"+
				"Your order details:\n"+
				"👤 %s\n"+
				"🥬 %d bundles\n"+
				"📍 %s, %s",
			session.Name, session.Bundles, session.Address, session.Postcode), false, nil
	}

	// State and last-order live under independent keys; a failure here
	// leaves them briefly inconsistent, which a retry of VIEW tolerates.
	if err := s.store.SetLastOrder(ctx, phone, order); err != nil {
		log.Printf("❌ Error storing last order for %s: %v", phone, err)
	}

	s.notifier.NewOrder(order, phone)
	s.archive.Record(order, phone)

	if err := s.store.DeleteSession(ctx, phone); err != nil {
		log.Printf("❌ Error clearing session for %s: %v", phone, err)
	}

	log.Printf("✅ Order %s saved successfully", order.OrderID)

	return fmt.Sprintf(
		"🎉 *Order Confirmed!*\n\n"+
			"🆔 Order ID: *%s*\n"+
			"👤 Name: %s\n"+
			"🥬 Bundles: %d\n"+
			"📍 Address: %s, %s\n"+
			"🚚 Delivery: %s\n\n"+
			"💡 *Commands:*\n"+
			"• Type *VIEW* to see your order\n"+
			"• Type *CANCEL* to cancel\n"+
			"• Type *HI* for a new order\n\n"+
			"Thank you for supporting %s! 💚",
		order.OrderID, order.Name, order.Bundles, order.Address, order.Postcode,
		order.DeliverySlot, config.BotName), true, nil
}

// modifyOrder maps a field selection back to its ask stage. CANCEL never
// reaches here; the global command handler returns it to confirmation.
func (s *ConversationService) modifyOrder(session *models.Session, lower string) string {
	switch lower {
	case "1":
		session.Stage = models.StageAskBundles
		return "How many bundles would you like? 🧺"
	case "2":
		session.Stage = models.StageAskAddress
		return "What's your delivery address? 📍"
	case "3":
		session.Stage = models.StageAskPostcode
		return "What's your postcode? 📮"
	case "4":
		session.Stage = models.StageAskDeliverySlot
		return fmt.Sprintf("Choose your delivery slot:\n%s", utils.NumberedList(s.cfg.DeliverySlots, "🕒"))
	default:
		return "Please choose:\n" +
			"• *1* - Change quantity\n" +
			"• *2* - Change address\n" +
			"• *3* - Change postcode\n" +
			"• *4* - Change delivery slot\n" +
			"• *CANCEL* - Keep current order"
	}
}
