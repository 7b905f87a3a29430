package models

import "time"

// MerchantConfig stores per-gateway API credentials. Adapters read it through
// the redis-backed config cache and fall back to environment variables when
// no active row exists.
type MerchantConfig struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	GatewayName   string    `gorm:"type:varchar(30);not null;uniqueIndex" json:"gateway_name"`
	APIKey        string    `gorm:"type:varchar(191);default:''" json:"-"`
	APISecret     string    `gorm:"type:varchar(191);default:''" json:"-"`
	WebhookSecret string    `gorm:"type:varchar(191);default:''" json:"-"`
	MerchantID    string    `gorm:"type:varchar(191);default:''" json:"-"`
	Environment   string    `gorm:"type:varchar(20);not null;default:'sandbox'" json:"environment"`
	IsActive      bool      `gorm:"default:false;index" json:"is_active"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
