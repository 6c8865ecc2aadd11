package repositories

import (
	"fmt"

	"reviewmarket/internal/models"

	"gorm.io/gorm"
)

// GORMReviewRepository is a GORM implementation of ReviewRepository.
type GORMReviewRepository struct {
	db *gorm.DB
}

// NewGORMReviewRepository creates a new instance of GORMReviewRepository.
func NewGORMReviewRepository(db *gorm.DB) *GORMReviewRepository {
	return &GORMReviewRepository{
		db: db,
	}
}

// Exists reports whether a review exists for the (product, user) pair.
func (r *GORMReviewRepository) Exists(productID, userID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Review{}).
		Where("product_id = ? AND user_id = ?", productID, userID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check review existence: %w", err)
	}
	return count > 0, nil
}

// ListByUser retrieves all reviews written by the given user.
func (r *GORMReviewRepository) ListByUser(userID string) ([]models.Review, error) {
	var reviews []models.Review
	if err := r.db.Order("created_at DESC").Find(&reviews, "user_id = ?", userID).Error; err != nil {
		return nil, fmt.Errorf("failed to list reviews for user %s: %w", userID, err)
	}
	return reviews, nil
}

// CountVerified returns the total number of verified reviews.
func (r *GORMReviewRepository) CountVerified() (int64, error) {
	var count int64
	if err := r.db.Model(&models.Review{}).Where("verified = ?", true).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count verified reviews: %w", err)
	}
	return count, nil
}
