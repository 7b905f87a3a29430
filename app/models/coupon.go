package models

import "time"

// Coupon grants a percent discount at checkout. A coupon owned by an
// affiliate can override the default commission rate for orders it was
// applied to.
type Coupon struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	Code           string     `gorm:"type:varchar(50);not null;uniqueIndex" json:"code"`
	DiscountPct    float64    `gorm:"type:decimal(5,2);not null" json:"discount_pct"`
	AffiliateID    *uint      `gorm:"index" json:"affiliate_id,omitempty"`
	CommissionRate *float64   `gorm:"type:decimal(5,2);default:null" json:"commission_rate,omitempty"`
	MaxUses        int        `gorm:"default:0" json:"max_uses"`
	UsedCount      int        `gorm:"default:0" json:"used_count"`
	IsActive       bool       `gorm:"default:true;index" json:"is_active"`
	ExpiresAt      *time.Time `gorm:"type:timestamp;default:null" json:"expires_at,omitempty"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// Usable reports whether the coupon can still be applied at the given time.
func (c *Coupon) Usable(now time.Time) bool {
	if !c.IsActive {
		return false
	}
	if c.MaxUses > 0 && c.UsedCount >= c.MaxUses {
		return false
	}
	if c.ExpiresAt != nil && now.After(*c.ExpiresAt) {
		return false
	}
	return true
}
