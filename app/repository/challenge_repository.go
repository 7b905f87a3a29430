package repository

import (
	"github.com/sharkfunded/platform/app/models"
	"gorm.io/gorm"
)

// challengeRepository implements the ChallengeRepository interface
type challengeRepository struct {
	db *gorm.DB
}

// NewChallengeRepository creates a new challenge repository instance
func NewChallengeRepository(db *gorm.DB) ChallengeRepository {
	return &challengeRepository{db: db}
}

// Create creates a new challenge record in the database
func (r *challengeRepository) Create(challenge *models.Challenge) error {
	return r.db.Create(challenge).Error
}

// GetByID retrieves a challenge by its ID
func (r *challengeRepository) GetByID(id uint) (*models.Challenge, error) {
	var challenge models.Challenge
	err := r.db.First(&challenge, id).Error
	if err != nil {
		return nil, err
	}
	return &challenge, nil
}

// GetByOrderID retrieves the challenge provisioned for a payment order
func (r *challengeRepository) GetByOrderID(orderID string) (*models.Challenge, error) {
	var challenge models.Challenge
	err := r.db.Where("order_id = ?", orderID).First(&challenge).Error
	if err != nil {
		return nil, err
	}
	return &challenge, nil
}

// GetByLogin retrieves a challenge by its trading terminal login
func (r *challengeRepository) GetByLogin(login int64) (*models.Challenge, error) {
	var challenge models.Challenge
	err := r.db.Where("login = ?", login).First(&challenge).Error
	if err != nil {
		return nil, err
	}
	return &challenge, nil
}

// ListByUserID retrieves all challenges owned by a user, newest first
func (r *challengeRepository) ListByUserID(userID uint) ([]models.Challenge, error) {
	var challenges []models.Challenge
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&challenges).Error
	return challenges, err
}
