package models

import "time"

// AccountType is a purchasable product configuration: its display name feeds
// challenge classification, its trading group and leverage feed provisioning.
type AccountType struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"type:varchar(100);not null;uniqueIndex" json:"name"`
	TradingGroup string    `gorm:"column:trading_group;type:varchar(100);not null" json:"trading_group"`
	Leverage     int       `gorm:"not null;default:100" json:"leverage"`
	Status       string    `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
