package repositories

import (
	"fmt"

	"reviewmarket/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMSuspectRepository is a GORM implementation of SuspectRepository.
type GORMSuspectRepository struct {
	db *gorm.DB
}

// NewGORMSuspectRepository creates a new instance of GORMSuspectRepository.
func NewGORMSuspectRepository(db *gorm.DB) *GORMSuspectRepository {
	return &GORMSuspectRepository{
		db: db,
	}
}

// Create creates a new suspect entry in the database.
func (r *GORMSuspectRepository) Create(suspect *models.Suspect) error {
	if suspect.ID == "" {
		suspect.ID = uuid.New().String()
	}
	if suspect.Status == "" {
		suspect.Status = models.SuspectStatusPending
	}
	if err := r.db.Create(suspect).Error; err != nil {
		return fmt.Errorf("failed to create suspect: %w", err)
	}
	return nil
}

// ListPending retrieves all suspect entries awaiting moderation.
func (r *GORMSuspectRepository) ListPending() ([]models.Suspect, error) {
	var suspects []models.Suspect
	if err := r.db.Order("created_at ASC").Find(&suspects, "status = ?", models.SuspectStatusPending).Error; err != nil {
		return nil, fmt.Errorf("failed to list pending suspects: %w", err)
	}
	return suspects, nil
}

// CountByUser returns how many suspect entries exist for the given user.
func (r *GORMSuspectRepository) CountByUser(userID string) (int64, error) {
	var count int64
	if err := r.db.Model(&models.Suspect{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count suspects for user %s: %w", userID, err)
	}
	return count, nil
}
