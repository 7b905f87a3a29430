package models

import "time"

// WebhookLog stores every payment webhook delivery with deduplication
// metadata for replay diagnosis. Entries are written before any order
// mutation and are never updated except for the processed markers.
type WebhookLog struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	EventType       string     `gorm:"type:varchar(100);not null;default:'unknown';index" json:"event_type"`
	Gateway         string     `gorm:"type:varchar(30);not null;default:'unknown';index" json:"gateway"`
	OrderID         string     `gorm:"type:varchar(64);not null;index" json:"order_id"`
	GatewayOrderID  string     `gorm:"type:varchar(191);default:''" json:"gateway_order_id"`
	Amount          float64    `gorm:"type:decimal(12,2);default:0" json:"amount"`
	Status          string     `gorm:"type:varchar(30);not null;default:'unknown'" json:"status"`
	SignatureValid  bool       `gorm:"default:false;index" json:"signature_valid"`
	RequestBody     string     `gorm:"type:longtext;not null" json:"request_body"`
	Processed       bool       `gorm:"default:false;index" json:"processed"`
	ProcessedAt     *time.Time `gorm:"type:timestamp;default:null" json:"processed_at,omitempty"`
	ProcessingError string     `gorm:"type:text" json:"processing_error"`
	CreatedAt       time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
