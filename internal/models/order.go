package models

import "gorm.io/gorm"

// Order statuses.
const (
	OrderStatusConfirmed = "Confirmed"
	OrderStatusCancelled = "Cancelled"
)

// Order is the durable snapshot of a completed order, stored per phone
// number with its own (longer) expiry so VIEW and CANCEL keep working after
// the conversation ends.
type Order struct {
	OrderID      string  `json:"order_id"`
	Name         string  `json:"name"`
	Bundles      int     `json:"bundles"`
	Address      string  `json:"address"`
	Postcode     string  `json:"postcode"`
	DeliverySlot string  `json:"delivery_slot"`
	TotalPrice   float64 `json:"total_price"`
	Status       string  `json:"status"`
	Timestamp    string  `json:"timestamp"`
}

// OrderRecord is the customer-history archive row, written once per
// confirmed order when ENABLE_CUSTOMER_HISTORY is on.
type OrderRecord struct {
	gorm.Model
	OrderID      string `gorm:"uniqueIndex"`
	Phone        string `gorm:"index"`
	CustomerName string
	Bundles      int
	Address      string
	Postcode     string
	DeliverySlot string
	Total        float64
	Status       string
}
