package models

import "time"

const (
	OrderStatusPending   = "pending"
	OrderStatusSubmitted = "submitted"
	OrderStatusFailed    = "failed"
)

// Order tracks one paid checkout and its handoff to the fulfillment
// provider. PaymentEventID is the processor-assigned event id and acts as
// the idempotency key: the unique index is what guarantees at most one row
// (and at most one fulfillment submission) per payment event, no matter how
// often the webhook is redelivered.
type Order struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	PaymentEventID     string    `gorm:"type:varchar(191);not null;uniqueIndex:ux_orders_payment_event_id" json:"payment_event_id"`
	PublicID           string    `gorm:"type:varchar(36);not null;index" json:"public_id"`
	ProductSlug        string    `gorm:"type:varchar(191);not null;index" json:"product_slug"`
	CustomerEmail      string    `gorm:"type:varchar(255)" json:"customer_email"`
	CustomerName       string    `gorm:"type:varchar(255)" json:"customer_name"`
	ShippingJSON       string    `gorm:"type:text" json:"shipping_json"`
	FulfillmentOrderID string    `gorm:"type:varchar(191)" json:"fulfillment_order_id"`
	Status             string    `gorm:"type:varchar(16);not null;default:'pending';index" json:"status"`
	LastError          string    `gorm:"type:text" json:"last_error"`
	CreatedAt          time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsTerminal reports whether the order reached its final state. Submitted
// orders are immutable; failed orders may be retried on webhook redelivery.
func (o *Order) IsTerminal() bool {
	return o.Status == OrderStatusSubmitted
}
