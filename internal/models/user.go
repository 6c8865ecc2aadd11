package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a marketplace account.
// Respect is the reputation currency: it is mutated only through the
// review ledger transaction or the one-time share reward, and a user's
// products are only listed in the market while it stays above zero.
type User struct {
	ID                    string     `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Username              string     `json:"username" gorm:"uniqueIndex;type:varchar(100)" validate:"required,min=3,max=100"`
	Email                 string     `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Password              string     `gorm:"type:varchar(255)" validate:"required,min=6"` // No json tag for security
	Respect               int        `json:"respect"`
	IsBanned              bool       `json:"is_banned"`
	IsPro                 bool       `json:"is_pro"`
	SubscriptionExpiresAt *time.Time `json:"subscription_expires_at"`
	SharedRewardClaimedAt *time.Time `json:"shared_reward_claimed_at"`
	gorm.Model            // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}
