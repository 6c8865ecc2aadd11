package repositories

import (
	"reviewmarket/internal/models"
)

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	GetByID(id string) (*models.Product, error)
	GetByExtensionID(extensionID string) (*models.Product, error)
	// ListMarket returns products eligible for the market view: owner
	// respect above zero, excluding the viewer's own listings, active pro
	// owners first.
	ListMarket(viewerID string) ([]models.Product, error)
	ListByOwner(ownerID string) ([]models.Product, error)
	Create(product *models.Product) error
	Delete(id string) error
}
