package repository

import (
	"github.com/sharkfunded/platform/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// affiliateRepository implements the AffiliateRepository interface
type affiliateRepository struct {
	db *gorm.DB
}

// NewAffiliateRepository creates a new affiliate earning repository instance
func NewAffiliateRepository(db *gorm.DB) AffiliateRepository {
	return &affiliateRepository{db: db}
}

// CreateEarning inserts the earning unless one already exists for the order.
// The unique index on order_id plus ON CONFLICT DO NOTHING makes redelivered
// webhooks unable to double-pay a referrer.
func (r *affiliateRepository) CreateEarning(earning *models.AffiliateEarning) (bool, error) {
	res := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(earning)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ListByReferrer retrieves a referrer's earnings, newest first
func (r *affiliateRepository) ListByReferrer(referrerID uint, offset, limit int) ([]models.AffiliateEarning, error) {
	var earnings []models.AffiliateEarning
	err := r.db.Where("referrer_id = ?", referrerID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&earnings).Error
	return earnings, err
}
