package models

import "gorm.io/gorm"

// Review joins a reviewing user to a product. The composite unique index
// on (product_id, user_id) is the storage-level guard that closes the race
// between two concurrent submissions for the same pair.
type Review struct {
	ID         string `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	ProductID  string `json:"product_id" gorm:"uniqueIndex:idx_reviews_product_user;type:varchar(36)"`
	UserID     string `json:"user_id" gorm:"uniqueIndex:idx_reviews_product_user;type:varchar(36)"`
	Verified   bool   `json:"verified"`
	gorm.Model        // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}
