package repository

import (
	"time"

	"github.com/sharkfunded/platform/app/models"
	"gorm.io/gorm"
)

// webhookLogRepository implements the WebhookLogRepository interface
type webhookLogRepository struct {
	db *gorm.DB
}

// NewWebhookLogRepository creates a new webhook audit log repository instance
func NewWebhookLogRepository(db *gorm.DB) WebhookLogRepository {
	return &webhookLogRepository{db: db}
}

// Create appends an audit entry. Called before any order mutation so every
// delivery is recorded even when processing fails downstream.
func (r *webhookLogRepository) Create(entry *models.WebhookLog) error {
	return r.db.Create(entry).Error
}

// MarkProcessed stamps the entry once fulfillment ran; processingError keeps
// the failure text when it ran but did not complete cleanly.
func (r *webhookLogRepository) MarkProcessed(id uint, processingError string) error {
	now := time.Now()
	return r.db.Model(&models.WebhookLog{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"processed":        true,
			"processed_at":     now,
			"processing_error": processingError,
		}).Error
}

// GetByID retrieves an audit entry by its ID
func (r *webhookLogRepository) GetByID(id uint) (*models.WebhookLog, error) {
	var entry models.WebhookLog
	err := r.db.First(&entry, id).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// ListRecent retrieves the newest audit entries
func (r *webhookLogRepository) ListRecent(limit int) ([]models.WebhookLog, error) {
	var entries []models.WebhookLog
	err := r.db.Order("created_at DESC").Limit(limit).Find(&entries).Error
	return entries, err
}
