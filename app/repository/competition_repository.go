package repository

import (
	"github.com/sharkfunded/platform/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// competitionRepository implements the CompetitionRepository interface
type competitionRepository struct {
	db *gorm.DB
}

// NewCompetitionRepository creates a new competition repository instance
func NewCompetitionRepository(db *gorm.DB) CompetitionRepository {
	return &competitionRepository{db: db}
}

// GetByID retrieves a competition by its ID
func (r *competitionRepository) GetByID(id uint) (*models.Competition, error) {
	var competition models.Competition
	err := r.db.First(&competition, id).Error
	if err != nil {
		return nil, err
	}
	return &competition, nil
}

// AddParticipant enrolls a user into a competition. The composite unique
// index on (competition_id, user_id) makes duplicate enrollment a no-op.
func (r *competitionRepository) AddParticipant(participant *models.CompetitionParticipant) (bool, error) {
	res := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(participant)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// CountParticipants counts enrolled users per competition
func (r *competitionRepository) CountParticipants(competitionID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.CompetitionParticipant{}).
		Where("competition_id = ?", competitionID).
		Count(&count).Error
	return count, err
}
