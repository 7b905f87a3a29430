package models

import (
	"time"
)

const (
	ChallengeStatusActive   = "active"
	ChallengeStatusPassed   = "passed"
	ChallengeStatusBreached = "breached"
)

// Challenge is the provisioned trading account and its rule state. Exactly one
// Challenge is created per successfully provisioned order; risk and trading
// subsystems own it afterwards.
type Challenge struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	UserID           uint       `gorm:"not null;index" json:"user_id"`
	OrderID          string     `gorm:"type:varchar(64);index" json:"order_id"`
	ChallengeType    string     `gorm:"type:varchar(50);not null" json:"challenge_type"`
	TradingGroup     string     `gorm:"column:trading_group;type:varchar(100);default:''" json:"trading_group"`
	InitialBalance   float64    `gorm:"type:decimal(14,2);not null" json:"initial_balance"`
	CurrentBalance   float64    `gorm:"type:decimal(14,2);not null" json:"current_balance"`
	CurrentEquity    float64    `gorm:"type:decimal(14,2);not null" json:"current_equity"`
	StartOfDayEquity float64    `gorm:"type:decimal(14,2);not null" json:"start_of_day_equity"`
	Status           string     `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
	Login            int64      `gorm:"not null;index" json:"login"`
	MasterPassword   string     `gorm:"type:varchar(100)" json:"-"`
	InvestorPassword string     `gorm:"type:varchar(100)" json:"-"`
	Server           string     `gorm:"type:varchar(100);default:''" json:"server"`
	Platform         string     `gorm:"type:varchar(20);default:'MT5'" json:"platform"`
	Leverage         int        `gorm:"default:100" json:"leverage"`
	CompetitionID    *uint      `gorm:"index" json:"competition_id,omitempty"`
	CreatedAt        time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	PassedAt         *time.Time `gorm:"type:timestamp;default:null" json:"passed_at,omitempty"`
}
