package models

import "gorm.io/gorm"

// Product represents a browser extension listed for review exchange.
// ExtensionID is the stable token parsed from the storefront URL and is
// unique platform-wide so the same listing cannot be registered twice.
type Product struct {
	ID          string `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	UserID      string `json:"user_id" gorm:"index;type:varchar(36)"`
	Name        string `json:"name" validate:"required,min=3,max=100"`
	Description string `json:"description" validate:"required,max=500"`
	StoreURL    string `json:"store_url" validate:"required,url"`
	ExtensionID string `json:"extension_id" gorm:"uniqueIndex;type:varchar(64)"`
	IconURL     string `json:"icon_url" validate:"required,url"`
	gorm.Model         // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}
