package services

import (
	"log"

	"gorm.io/gorm"

	"github.com/maramba-takunda-tapiwa/veggie-bot/internal/models"
	"github.com/maramba-takunda-tapiwa/veggie-bot/internal/utils"
)

// OrderArchive keeps a customer order history in Postgres when
// ENABLE_CUSTOMER_HISTORY is on. Writes are fire-and-log like the admin
// notifier: the Google Sheet is the system of record, the archive is for
// ops. All methods are safe on a nil receiver.
type OrderArchive struct {
	db *gorm.DB
}

// NewOrderArchive wraps an open database handle.
func NewOrderArchive(db *gorm.DB) *OrderArchive {
	return &OrderArchive{db: db}
}

// Record archives a confirmed order.
func (a *OrderArchive) Record(order *models.Order, phone string) {
	if a == nil || a.db == nil {
		return
	}

	record := models.OrderRecord{
		OrderID:      order.OrderID,
		Phone:        utils.FormatPhone(phone),
		CustomerName: order.Name,
		Bundles:      order.Bundles,
		Address:      order.Address,
		Postcode:     order.Postcode,
		DeliverySlot: order.DeliverySlot,
		Total:        order.TotalPrice,
		Status:       order.Status,
	}

	if err := a.db.Create(&record).Error; err != nil {
		log.Printf("❌ Failed to archive order %s: %v", order.OrderID, err)
	}
}

// MarkCancelled flips the archived order's status after a cancellation.
func (a *OrderArchive) MarkCancelled(orderID string) {
	if a == nil || a.db == nil {
		return
	}

	err := a.db.Model(&models.OrderRecord{}).
		Where("order_id = ?", orderID).
		Update("status", models.OrderStatusCancelled).Error
	if err != nil {
		log.Printf("❌ Failed to mark order %s cancelled in archive: %v", orderID, err)
	}
}
