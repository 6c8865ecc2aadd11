package repositories

import (
	"fmt"

	"reviewmarket/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// GetByID retrieves a single product by its ID from the database.
func (r *GORMProductRepository) GetByID(id string) (*models.Product, error) {
	var product models.Product
	if err := r.db.First(&product, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("product with ID %s not found", id)
		}
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, err)
	}
	return &product, nil
}

// GetByExtensionID retrieves a product by its storefront extension identifier.
func (r *GORMProductRepository) GetByExtensionID(extensionID string) (*models.Product, error) {
	var product models.Product
	if err := r.db.First(&product, "extension_id = ?", extensionID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("product with extension ID %s not found", extensionID)
		}
		return nil, fmt.Errorf("failed to get product by extension ID %s: %w", extensionID, err)
	}
	return &product, nil
}

// ListMarket retrieves products visible in the market to the given viewer.
// Visibility requires the owner's respect to be above zero; active pro
// owners are listed first.
func (r *GORMProductRepository) ListMarket(viewerID string) ([]models.Product, error) {
	var products []models.Product
	err := r.db.
		Joins("JOIN users ON users.id = products.user_id AND users.deleted_at IS NULL").
		Where("users.respect > 0 AND users.id <> ?", viewerID).
		Order("users.is_pro DESC, products.created_at DESC").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list market products: %w", err)
	}
	return products, nil
}

// ListByOwner retrieves all products owned by the given user.
func (r *GORMProductRepository) ListByOwner(ownerID string) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.Order("created_at DESC").Find(&products, "user_id = ?", ownerID).Error; err != nil {
		return nil, fmt.Errorf("failed to list products for owner %s: %w", ownerID, err)
	}
	return products, nil
}

// Create creates a new product in the database.
func (r *GORMProductRepository) Create(product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if err := r.db.Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Delete deletes a product by its ID from the database.
func (r *GORMProductRepository) Delete(id string) error {
	res := r.db.Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product with ID %s not found for deletion", id)
	}
	return nil
}
