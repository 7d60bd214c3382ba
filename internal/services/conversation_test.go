package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maramba-takunda-tapiwa/veggie-bot/internal/config"
	"github.com/maramba-takunda-tapiwa/veggie-bot/internal/models"
	"github.com/maramba-takunda-tapiwa/veggie-bot/internal/pricing"
	"github.com/maramba-takunda-tapiwa/veggie-bot/internal/storage"
)

const testPhone = "whatsapp:+447700900000"

type fakeSink struct {
	fail   bool
	orders []*models.Order
}

func (f *fakeSink) AppendOrder(_ context.Context, _ string, order *models.Order, _ pricing.Breakdown) error {
	if f.fail {
		return errors.New("spreadsheet unavailable")
	}
	snapshot := *order
	f.orders = append(f.orders, &snapshot)
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		Environment:    "development",
		PricePerBundle: 5.00,
		CurrencySymbol: "£",
		VolumeDiscounts: []config.DiscountTier{
			{Threshold: 10, Percent: 10},
			{Threshold: 20, Percent: 15},
		},
		DeliverySlots:           []string{"Saturday 2-4 PM", "Sunday 10-12 PM"},
		SessionTTL:              24 * time.Hour,
		OrderTTL:                7 * 24 * time.Hour,
		EnableOrderModification: true,
		EnableOrderTracking:     true,
	}
}

func newTestService(cfg *config.Config) (*ConversationService, *fakeSink, *storage.MemoryStore) {
	store := storage.NewMemoryStore(cfg.SessionTTL, cfg.OrderTTL)
	sink := &fakeSink{}
	svc := NewConversationService(cfg, store, pricing.New(cfg), sink, nil, nil)
	return svc, sink, store
}

func send(t *testing.T, svc *ConversationService, msg string) string {
	t.Helper()
	reply, err := svc.ProcessMessage(context.Background(), testPhone, msg)
	require.NoError(t, err)
	return reply
}

// walkToConfirm drives a fresh user to the confirmation stage.
func walkToConfirm(t *testing.T, svc *ConversationService) {
	t.Helper()
	send(t, svc, "hi")
	send(t, svc, "John Smith")
	send(t, svc, "5")
	send(t, svc, "123 Main Street")
	send(t, svc, "M11AE")
	reply := send(t, svc, "1")
	require.Contains(t, reply, "Please Confirm Your Order")
}

func stage(t *testing.T, store storage.Store) models.Stage {
	t.Helper()
	session, err := store.GetSession(context.Background(), "+447700900000")
	require.NoError(t, err)
	return session.Stage
}

func TestFreshUserGetsNamePrompt(t *testing.T) {
	svc, _, store := newTestService(testConfig())

	reply := send(t, svc, "hi")
	assert.Contains(t, reply, "Welcome")
	assert.Contains(t, reply, "*name*")
	assert.Equal(t, models.StageAskName, stage(t, store))
}

func TestAnyFirstMessageStartsConversation(t *testing.T) {
	svc, _, store := newTestService(testConfig())

	reply := send(t, svc, "what do you sell?")
	assert.Contains(t, reply, "Welcome")
	assert.Equal(t, models.StageAskName, stage(t, store))
}

func TestSequentialScenario(t *testing.T) {
	svc, _, store := newTestService(testConfig())
	ctx := context.Background()

	send(t, svc, "hi")

	reply := send(t, svc, "John Smith")
	assert.Contains(t, reply, "bundles")

	session, err := store.GetSession(ctx, "+447700900000")
	require.NoError(t, err)
	assert.Equal(t, "John Smith", session.Name)
	assert.Zero(t, session.Bundles)

	// Invalid quantity re-prompts without advancing.
	reply = send(t, svc, "0")
	assert.Contains(t, reply, "positive number")
	assert.Equal(t, models.StageAskBundles, stage(t, store))

	reply = send(t, svc, "5")
	assert.Contains(t, reply, "delivery address")

	session, err = store.GetSession(ctx, "+447700900000")
	require.NoError(t, err)
	assert.Equal(t, 5, session.Bundles)
	assert.Equal(t, models.StageAskAddress, session.Stage)
}

func TestInvalidNameReprompts(t *testing.T) {
	svc, _, store := newTestService(testConfig())

	send(t, svc, "hi")
	reply := send(t, svc, "A")
	assert.Contains(t, reply, "full name")
	assert.Equal(t, models.StageAskName, stage(t, store))
}

func TestPostcodeNormalizedIntoSession(t *testing.T) {
	svc, _, store := newTestService(testConfig())

	send(t, svc, "hi")
	send(t, svc, "John Smith")
	send(t, svc, "5")
	send(t, svc, "123 Main Street")
	reply := send(t, svc, "m11ae")
	assert.Contains(t, reply, "delivery slot")

	session, err := store.GetSession(context.Background(), "+447700900000")
	require.NoError(t, err)
	assert.Equal(t, "M1 1AE", session.Postcode)
}

func TestSingleSlotSkipsSlotQuestion(t *testing.T) {
	cfg := testConfig()
	cfg.DeliverySlots = []string{"This weekend"}
	svc, _, store := newTestService(cfg)

	send(t, svc, "hi")
	send(t, svc, "John Smith")
	send(t, svc, "5")
	send(t, svc, "123 Main Street")
	reply := send(t, svc, "M11AE")

	assert.Contains(t, reply, "Please Confirm Your Order")
	session, err := store.GetSession(context.Background(), "+447700900000")
	require.NoError(t, err)
	assert.Equal(t, "This weekend", session.DeliverySlot)
	assert.Equal(t, models.StageConfirmOrder, session.Stage)
}

func TestConfirmCommitsOrder(t *testing.T) {
	svc, sink, store := newTestService(testConfig())
	ctx := context.Background()

	walkToConfirm(t, svc)
	reply := send(t, svc, "yes")

	assert.Contains(t, reply, "Order Confirmed")
	require.Len(t, sink.orders, 1)
	assert.Equal(t, "John Smith", sink.orders[0].Name)
	assert.Equal(t, models.OrderStatusConfirmed, sink.orders[0].Status)

	// Session deleted, last-order record written.
	_, err := store.GetSession(ctx, "+447700900000")
	assert.True(t, errors.Is(err, storage.ErrNotFound))

	order, err := store.GetLastOrder(ctx, "+447700900000")
	require.NoError(t, err)
	assert.Equal(t, sink.orders[0].OrderID, order.OrderID)
	assert.Equal(t, 25.00, order.TotalPrice)
}

func TestConfirmUnclearInputReprompts(t *testing.T) {
	svc, sink, store := newTestService(testConfig())

	walkToConfirm(t, svc)
	reply := send(t, svc, "maybe")

	assert.Contains(t, reply, "*YES* to confirm")
	assert.Empty(t, sink.orders)
	assert.Equal(t, models.StageConfirmOrder, stage(t, store))
}

func TestConfirmNoAbandons(t *testing.T) {
	svc, sink, store := newTestService(testConfig())

	walkToConfirm(t, svc)
	reply := send(t, svc, "no")

	assert.Contains(t, reply, "Order cancelled")
	assert.Empty(t, sink.orders)
	_, err := store.GetSession(context.Background(), "+447700900000")
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestSinkFailurePreservesSessionForResubmit(t *testing.T) {
	svc, sink, store := newTestService(testConfig())

	walkToConfirm(t, svc)

	sink.fail = true
	reply := send(t, svc, "yes")
	assert.Contains(t, reply, "issue saving your order")
	assert.Contains(t, reply, "John Smith")

	// Collected fields survive; a later YES resubmits.
	assert.Equal(t, models.StageConfirmOrder, stage(t, store))

	sink.fail = false
	reply = send(t, svc, "yes")
	assert.Contains(t, reply, "Order Confirmed")
	assert.Len(t, sink.orders, 1)
}

func TestModifyFlow(t *testing.T) {
	svc, _, store := newTestService(testConfig())

	walkToConfirm(t, svc)

	reply := send(t, svc, "modify")
	assert.Contains(t, reply, "What would you like to modify")
	assert.Equal(t, models.StageModifyOrder, stage(t, store))

	// Out-of-range selection re-shows the options.
	reply = send(t, svc, "9")
	assert.Contains(t, reply, "*1* - Change quantity")
	assert.Equal(t, models.StageModifyOrder, stage(t, store))

	reply = send(t, svc, "1")
	assert.Contains(t, reply, "How many bundles")
	assert.Equal(t, models.StageAskBundles, stage(t, store))

	reply = send(t, svc, "20")
	assert.Contains(t, reply, "15% off")
}

func TestModifyCancelReturnsToConfirm(t *testing.T) {
	svc, _, store := newTestService(testConfig())

	walkToConfirm(t, svc)
	send(t, svc, "modify")
	reply := send(t, svc, "cancel")

	assert.Contains(t, reply, "Please Confirm Your Order")
	assert.Equal(t, models.StageConfirmOrder, stage(t, store))
}

func TestModifyDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.EnableOrderModification = false
	svc, _, store := newTestService(cfg)

	walkToConfirm(t, svc)
	reply := send(t, svc, "modify")

	// "modify" is not an affirmative; the user is re-prompted.
	assert.Contains(t, reply, "*YES* to confirm")
	assert.Equal(t, models.StageConfirmOrder, stage(t, store))
}

func TestCancelWithActiveSession(t *testing.T) {
	svc, _, store := newTestService(testConfig())

	send(t, svc, "hi")
	reply := send(t, svc, "cancel")

	assert.Contains(t, reply, "Conversation cancelled")
	_, err := store.GetSession(context.Background(), "+447700900000")
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestCancelWithNothingToCancel(t *testing.T) {
	svc, _, store := newTestService(testConfig())

	reply := send(t, svc, "cancel")
	assert.Contains(t, reply, "No recent order found to cancel")

	// No state was created by the command.
	_, err := store.GetSession(context.Background(), "+447700900000")
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestCancelLastOrderAfterCompletion(t *testing.T) {
	svc, _, store := newTestService(testConfig())
	ctx := context.Background()

	walkToConfirm(t, svc)
	send(t, svc, "yes")

	reply := send(t, svc, "cancel")
	assert.Contains(t, reply, "has been cancelled")

	order, err := store.GetLastOrder(ctx, "+447700900000")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, order.Status)
}

func TestViewOrder(t *testing.T) {
	svc, sink, _ := newTestService(testConfig())

	reply := send(t, svc, "view")
	assert.Contains(t, reply, "don't have any recent orders")

	walkToConfirm(t, svc)
	send(t, svc, "yes")

	reply = send(t, svc, "view")
	assert.Contains(t, reply, "Your Last Order")
	assert.Contains(t, reply, sink.orders[0].OrderID)
	assert.Contains(t, reply, "John Smith")
	assert.Contains(t, reply, models.OrderStatusConfirmed)
}

func TestViewWithTrackingDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.EnableOrderTracking = false
	svc, _, _ := newTestService(cfg)

	reply := send(t, svc, "view")
	assert.Contains(t, reply, "unavailable")
}

func TestRestartDiscardsProgress(t *testing.T) {
	svc, _, store := newTestService(testConfig())
	ctx := context.Background()

	send(t, svc, "hi")
	send(t, svc, "John Smith")
	send(t, svc, "5")

	reply := send(t, svc, "restart")
	assert.Contains(t, reply, "Welcome")

	session, err := store.GetSession(ctx, "+447700900000")
	require.NoError(t, err)
	assert.Equal(t, models.StageAskName, session.Stage)
	assert.Empty(t, session.Name)
}

func TestCorruptedStageResetsSession(t *testing.T) {
	svc, _, store := newTestService(testConfig())
	ctx := context.Background()

	require.NoError(t, store.SetSession(ctx, "+447700900000", &models.Session{Stage: "ask_unicorns"}))

	reply := send(t, svc, "anything")
	assert.Contains(t, reply, "Something went wrong")
	assert.Contains(t, reply, "*HI*")

	_, err := store.GetSession(ctx, "+447700900000")
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestHelpMessage(t *testing.T) {
	svc, _, _ := newTestService(testConfig())

	reply := send(t, svc, "help")
	assert.Contains(t, reply, "*HI*")
	assert.Contains(t, reply, "*VIEW*")
	assert.Contains(t, reply, "*CANCEL*")
	assert.Contains(t, reply, "£5.00 per bundle")
	assert.Contains(t, reply, "Volume Discounts")
}

func TestDebugCommand(t *testing.T) {
	svc, _, _ := newTestService(testConfig())

	reply := send(t, svc, "debug")
	assert.Contains(t, reply, "No active conversation")

	send(t, svc, "hi")
	reply = send(t, svc, "debug")
	assert.Contains(t, reply, "ask_name")
}

func TestDebugDisabledOutsideDevelopment(t *testing.T) {
	cfg := testConfig()
	cfg.Environment = "production"
	svc, _, store := newTestService(cfg)

	// "debug" falls through to normal handling and starts a conversation.
	reply := send(t, svc, "debug")
	assert.Contains(t, reply, "Welcome")
	assert.Equal(t, models.StageAskName, stage(t, store))
}
