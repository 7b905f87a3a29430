package models

import "time"

const (
	CompetitionStatusUpcoming = "upcoming"
	CompetitionStatusActive   = "active"
	CompetitionStatusFinished = "finished"
)

// Competition is a time-boxed trading contest buyers can enter for a flat fee.
type Competition struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Title     string     `gorm:"type:varchar(150);not null" json:"title"`
	EntryFee  float64    `gorm:"type:decimal(10,2);not null;default:9" json:"entry_fee"`
	Status    string     `gorm:"type:varchar(20);not null;default:'upcoming';index" json:"status"`
	StartsAt  *time.Time `gorm:"type:timestamp;default:null" json:"starts_at,omitempty"`
	EndsAt    *time.Time `gorm:"type:timestamp;default:null" json:"ends_at,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// CompetitionParticipant links an enrolled user and their competition
// challenge account. One row per (competition, user).
type CompetitionParticipant struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	CompetitionID uint      `gorm:"not null;index:ux_competition_participants,unique,priority:1" json:"competition_id"`
	UserID        uint      `gorm:"not null;index:ux_competition_participants,unique,priority:2" json:"user_id"`
	ChallengeID   *uint     `gorm:"index" json:"challenge_id,omitempty"`
	Status        string    `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
