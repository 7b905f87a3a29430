package repository

import (
	"errors"
	"time"

	"github.com/sharkfunded/platform/app/models"
	"gorm.io/gorm"
)

// ErrAlreadyProcessed is returned by MarkPaid when the conditional update
// affects zero rows: the order is already paid or does not exist. Callers
// treat this as a no-op success, never as a failure.
var ErrAlreadyProcessed = errors.New("order already processed or not found")

// orderRepository implements the OrderRepository interface
type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a new payment order repository instance
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

// Create creates a new payment order in the database
func (r *orderRepository) Create(order *models.PaymentOrder) error {
	return r.db.Create(order).Error
}

// GetByOrderID retrieves an order by its public order identifier
func (r *orderRepository) GetByOrderID(orderID string) (*models.PaymentOrder, error) {
	var order models.PaymentOrder
	err := r.db.Where("order_id = ?", orderID).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// MarkPaid flips the order from pending to paid in one conditional UPDATE.
// The WHERE clause on status makes the transition execute at most once even
// when the same success event is delivered concurrently from several
// processes; whoever gets RowsAffected==1 holds the provisioning ticket.
func (r *orderRepository) MarkPaid(orderID, paymentID, paymentMethod string) (*models.PaymentOrder, error) {
	now := time.Now()
	res := r.db.Model(&models.PaymentOrder{}).
		Where("order_id = ? AND status = ?", orderID, models.OrderStatusPending).
		Updates(map[string]interface{}{
			"status":         models.OrderStatusPaid,
			"payment_id":     paymentID,
			"payment_method": paymentMethod,
			"paid_at":        now,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrAlreadyProcessed
	}
	return r.GetByOrderID(orderID)
}

// LinkChallenge attaches the provisioned challenge to the order and sets the
// account-created flag. This runs after MarkPaid has been won, so it needs no
// condition of its own.
func (r *orderRepository) LinkChallenge(orderID string, challengeID uint) error {
	return r.db.Model(&models.PaymentOrder{}).
		Where("order_id = ?", orderID).
		Updates(map[string]interface{}{
			"challenge_id":       challengeID,
			"is_account_created": true,
		}).Error
}

// ListByUserID retrieves a user's orders, newest first
func (r *orderRepository) ListByUserID(userID uint, offset, limit int) ([]models.PaymentOrder, error) {
	var orders []models.PaymentOrder
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&orders).Error
	return orders, err
}

// ListUnprovisioned retrieves paid orders that never got an account, for
// manual re-provisioning.
func (r *orderRepository) ListUnprovisioned(limit int) ([]models.PaymentOrder, error) {
	var orders []models.PaymentOrder
	err := r.db.Where("status = ? AND is_account_created = ?", models.OrderStatusPaid, false).
		Order("paid_at ASC").
		Limit(limit).
		Find(&orders).Error
	return orders, err
}

// CountByStatus counts orders in the given status
func (r *orderRepository) CountByStatus(status string) (int64, error) {
	var count int64
	err := r.db.Model(&models.PaymentOrder{}).Where("status = ?", status).Count(&count).Error
	return count, err
}
