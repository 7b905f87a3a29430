package models

import "time"

// GatewayStat accumulates per-gateway webhook delivery counters. Increments
// are buffered in redis and flushed in batches; see metrics/counter.
type GatewayStat struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Gateway        string    `gorm:"type:varchar(30);not null;uniqueIndex" json:"gateway"`
	ReceivedCount  int64     `gorm:"default:0" json:"received_count"`
	ProcessedCount int64     `gorm:"default:0" json:"processed_count"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
