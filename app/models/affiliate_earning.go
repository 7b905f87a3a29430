package models

import "time"

const (
	CommissionTypePurchase = "purchase"

	EarningStatusPending = "pending"
	EarningStatusPaid    = "paid"
)

// AffiliateEarning is a commission record created at most once per paid order,
// and only when the buyer has a recorded referrer.
type AffiliateEarning struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ReferrerID     uint      `gorm:"not null;index" json:"referrer_id"`
	ReferredUserID uint      `gorm:"not null;index" json:"referred_user_id"`
	OrderID        string    `gorm:"type:varchar(64);not null;uniqueIndex" json:"order_id"`
	OrderAmount    float64   `gorm:"type:decimal(12,2);not null" json:"order_amount"`
	Rate           float64   `gorm:"type:decimal(6,4);not null" json:"rate"`
	Amount         float64   `gorm:"type:decimal(12,2);not null" json:"amount"`
	CommissionType string    `gorm:"type:varchar(30);not null;default:'purchase'" json:"commission_type"`
	Status         string    `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	Description    string    `gorm:"type:varchar(255);default:''" json:"description"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
