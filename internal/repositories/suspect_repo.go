package repositories

import (
	"reviewmarket/internal/models"
)

// SuspectRepository defines the interface for suspect data access.
// Suspects are created here with status "pending" and advanced only by
// the moderation process, which is outside this service.
type SuspectRepository interface {
	Create(suspect *models.Suspect) error
	ListPending() ([]models.Suspect, error)
	CountByUser(userID string) (int64, error)
}
