package repository

import (
	"github.com/linkmint/linkmint/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// orderRepository implements the OrderRepository interface
type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a new order repository instance
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

// CreateIfNotExists inserts the order unless a row with the same payment
// event id exists. The unique index on payment_event_id makes the insert
// race-safe: under concurrent duplicate deliveries exactly one caller
// observes created=true, every other caller gets created=false plus the
// stored row. Losing the race is not an error.
func (r *orderRepository) CreateIfNotExists(order *models.Order) (bool, *models.Order, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "payment_event_id"}},
		DoNothing: true,
	}).Create(order)
	if tx.Error != nil {
		return false, nil, tx.Error
	}

	created := tx.RowsAffected > 0
	var stored models.Order
	if err := r.db.Where("payment_event_id = ?", order.PaymentEventID).First(&stored).Error; err != nil {
		return false, nil, err
	}
	return created, &stored, nil
}

// GetByPaymentEventID retrieves an order by the processor event id
func (r *orderRepository) GetByPaymentEventID(paymentEventID string) (*models.Order, error) {
	var order models.Order
	err := r.db.Where("payment_event_id = ?", paymentEventID).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// MarkSubmitted records a successful fulfillment submission. Submitted is
// terminal, so an already-submitted row is never downgraded.
func (r *orderRepository) MarkSubmitted(id uint, fulfillmentOrderID string) error {
	return r.db.Model(&models.Order{}).
		Where("id = ? AND status != ?", id, models.OrderStatusSubmitted).
		Updates(map[string]interface{}{
			"status":               models.OrderStatusSubmitted,
			"fulfillment_order_id": fulfillmentOrderID,
			"last_error":           "",
		}).Error
}

// MarkFailed records a failed fulfillment submission with the reason
func (r *orderRepository) MarkFailed(id uint, reason string) error {
	return r.db.Model(&models.Order{}).
		Where("id = ? AND status != ?", id, models.OrderStatusSubmitted).
		Updates(map[string]interface{}{
			"status":     models.OrderStatusFailed,
			"last_error": reason,
		}).Error
}

// MarkPending claims a failed order for a retry attempt. The status guard
// makes the claim atomic: under concurrent redeliveries exactly one caller
// flips failed to pending and sees claimed=true, everyone else sees false
// and must not submit.
func (r *orderRepository) MarkPending(id uint) (bool, error) {
	tx := r.db.Model(&models.Order{}).
		Where("id = ? AND status = ?", id, models.OrderStatusFailed).
		Update("status", models.OrderStatusPending)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

// List retrieves orders with pagination
func (r *orderRepository) List(offset, limit int) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&orders).Error
	return orders, err
}

// Count returns the total number of orders
func (r *orderRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Order{}).Count(&count).Error
	return count, err
}
