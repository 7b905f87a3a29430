package models

import (
	"time"
)

// Payment order status values. A paid order never goes back to pending.
const (
	OrderStatusPending = "pending"
	OrderStatusPaid    = "paid"
	OrderStatusFailed  = "failed"
)

// Purchase models recognized on orders.
const (
	OrderModelLite        = "lite"
	OrderModelPro         = "pro"
	OrderModelCompetition = "competition"
)

// OrderMetadata is the free-form bag attached to an order at checkout. Only
// the fields fulfillment cares about are typed; gateways never see this.
type OrderMetadata struct {
	Type             string   `json:"type,omitempty"`
	Leverage         int      `json:"leverage,omitempty"`
	TradingGroup     string   `json:"mt5_group,omitempty"`
	CompetitionID    *uint    `json:"competition_id,omitempty"`
	CompetitionTitle string   `json:"competition_title,omitempty"`
	AffiliateID      *uint    `json:"affiliate_id,omitempty"`
	CommissionRate   *float64 `json:"commission_rate,omitempty"`
}

// PaymentOrder is a buyer's purchase attempt and the unit of idempotency for
// webhook processing. OrderID is generated at checkout and never reused;
// PaymentID and PaidAt are set by the one atomic pending->paid transition.
type PaymentOrder struct {
	ID               uint          `gorm:"primaryKey" json:"id"`
	OrderID          string        `gorm:"type:varchar(64);not null;uniqueIndex" json:"order_id"`
	UserID           uint          `gorm:"not null;index" json:"user_id"`
	Amount           float64       `gorm:"type:decimal(12,2);not null" json:"amount"`
	Currency         string        `gorm:"type:varchar(10);not null;default:'USD'" json:"currency"`
	Status           string        `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	PaymentGateway   string        `gorm:"type:varchar(30);not null" json:"payment_gateway"`
	PaymentID        string        `gorm:"type:varchar(191);default:''" json:"payment_id"`
	PaymentMethod    string        `gorm:"type:varchar(50);default:''" json:"payment_method"`
	PaidAt           *time.Time    `gorm:"type:timestamp;default:null" json:"paid_at,omitempty"`
	AccountTypeName  string        `gorm:"type:varchar(100);default:''" json:"account_type_name"`
	AccountTypeID    *uint         `gorm:"index" json:"account_type_id,omitempty"`
	AccountSize      float64       `gorm:"type:decimal(12,2);not null" json:"account_size"`
	Platform         string        `gorm:"type:varchar(20);default:'MT5'" json:"platform"`
	Model            string        `gorm:"type:varchar(30);default:''" json:"model"`
	CouponCode       *string       `gorm:"type:varchar(50);default:null" json:"coupon_code,omitempty"`
	DiscountAmount   float64       `gorm:"type:decimal(12,2);default:0" json:"discount_amount"`
	ChallengeID      *uint         `gorm:"index" json:"challenge_id,omitempty"`
	IsAccountCreated bool          `gorm:"default:false" json:"is_account_created"`
	Metadata         OrderMetadata `gorm:"type:json;serializer:json" json:"metadata"`
	CreatedAt        time.Time     `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt        time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsCompetition reports whether this order buys a competition entry.
func (o *PaymentOrder) IsCompetition() bool {
	return o.Model == OrderModelCompetition || o.Metadata.Type == "competition"
}
