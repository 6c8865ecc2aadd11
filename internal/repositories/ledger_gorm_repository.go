package repositories

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"reviewmarket/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMLedgerRepository is a GORM implementation of LedgerRepository.
type GORMLedgerRepository struct {
	db *gorm.DB
}

// NewGORMLedgerRepository creates a new instance of GORMLedgerRepository.
func NewGORMLedgerRepository(db *gorm.DB) *GORMLedgerRepository {
	return &GORMLedgerRepository{
		db: db,
	}
}

// CommitVerifiedReview runs the three ledger writes in one database
// transaction. The duplicate re-check happens inside the transaction,
// immediately before the insert, and the composite unique index on
// (product_id, user_id) closes the remaining race between two concurrent
// submissions for the same pair.
func (r *GORMLedgerRepository) CommitVerifiedReview(review *models.Review, reviewerID, ownerID string, credit int) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&models.Review{}).
			Where("product_id = ? AND user_id = ?", review.ProductID, review.UserID).
			Count(&count).Error
		if err != nil {
			return fmt.Errorf("failed to re-check review existence: %w", err)
		}
		if count > 0 {
			return ErrDuplicateReview
		}

		if review.ID == "" {
			review.ID = uuid.New().String()
		}
		if err := tx.Create(review).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicateReview
			}
			return fmt.Errorf("failed to create review: %w", err)
		}

		res := tx.Model(&models.User{}).
			Where("id = ?", reviewerID).
			UpdateColumn("respect", gorm.Expr("respect + ?", credit))
		if res.Error != nil {
			return fmt.Errorf("failed to credit reviewer %s: %w", reviewerID, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("reviewer %s not found for credit", reviewerID)
		}

		res = tx.Model(&models.User{}).
			Where("id = ?", ownerID).
			UpdateColumn("respect", gorm.Expr("respect - ?", 1))
		if res.Error != nil {
			return fmt.Errorf("failed to debit owner %s: %w", ownerID, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("owner %s not found for debit", ownerID)
		}

		return nil
	})
}

// GrantShareReward credits one respect and stamps the claim time in a
// single guarded update, so the reward cannot be granted twice.
func (r *GORMLedgerRepository) GrantShareReward(userID string) error {
	res := r.db.Model(&models.User{}).
		Where("id = ? AND shared_reward_claimed_at IS NULL", userID).
		Updates(map[string]interface{}{
			"respect":                  gorm.Expr("respect + ?", 1),
			"shared_reward_claimed_at": time.Now(),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to grant share reward to user %s: %w", userID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrShareRewardClaimed
	}
	return nil
}

// isUniqueViolation detects a unique-constraint failure across the
// drivers in use (postgres in production, sqlite in tests).
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint")
}
