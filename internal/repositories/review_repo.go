package repositories

import (
	"reviewmarket/internal/models"
)

// ReviewRepository defines the interface for review data access. Review
// rows are only ever inserted through the LedgerRepository transaction;
// this interface covers the read side.
type ReviewRepository interface {
	// Exists reports whether a review already exists for the given
	// (product, user) pair. Checked before any verification attempt so a
	// duplicate submission never triggers an external fetch.
	Exists(productID, userID string) (bool, error)
	ListByUser(userID string) ([]models.Review, error)
	CountVerified() (int64, error)
}
