package models

import "gorm.io/gorm"

// Suspect statuses. Only "pending" is set by this service; the rest are
// advanced by the moderation process consuming the moderation queue.
const (
	SuspectStatusPending  = "pending"
	SuspectStatusReviewed = "reviewed"
	SuspectStatusBanned   = "banned"
)

// Suspect records an unverifiable review claim for moderation. One row is
// created per failed verification attempt; repeated attempts for the same
// (product, user) pair are intentionally not deduplicated.
type Suspect struct {
	ID          string `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	UserID      string `json:"user_id" gorm:"index;type:varchar(36)"`
	ProductID   string `json:"product_id" gorm:"index;type:varchar(36)"`
	ProductURL  string `json:"product_url"`
	ClaimedName string `json:"claimed_name"`
	Email       string `json:"email"`
	Status      string `json:"status" gorm:"type:varchar(20);default:pending"`
	gorm.Model         // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}
