package services

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"reviewmarket/internal/models"
	"reviewmarket/internal/repositories"

	"go.uber.org/zap"
)

// extensionIDPattern matches the stable storefront item token: the last
// path segment of a detail URL.
var extensionIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{4,64}$`)

// ParseExtensionID extracts the storefront extension identifier from a
// product URL, e.g. the trailing token of
// https://chromewebstore.google.com/detail/my-ext/abcdefghijklmnop.
// A trailing /reviews segment is ignored so already-normalized review URLs
// parse the same way.
func ParseExtensionID(storeURL string) (string, error) {
	u, err := url.Parse(storeURL)
	if err != nil {
		return "", fmt.Errorf("invalid store URL %q: %w", storeURL, err)
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	last := ""
	for i := len(segments) - 1; i >= 0; i-- {
		if segments[i] != "" && segments[i] != "reviews" {
			last = segments[i]
			break
		}
	}
	if last == "" || !extensionIDPattern.MatchString(last) {
		return "", fmt.Errorf("store URL %q has no extension identifier", storeURL)
	}

	return last, nil
}

// ProductService handles business logic related to product listings.
type ProductService struct {
	productRepo repositories.ProductRepository
	logger      *zap.Logger
}

// NewProductService creates a new ProductService.
func NewProductService(productRepo repositories.ProductRepository, logger *zap.Logger) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		logger:      logger,
	}
}

// CreateProduct registers a product for the given owner. The extension
// identifier parsed from the URL must be unique platform-wide, preventing
// the same storefront listing from being registered by multiple accounts.
func (s *ProductService) CreateProduct(ownerID string, product *models.Product) error {
	extensionID, err := ParseExtensionID(product.StoreURL)
	if err != nil {
		return err
	}

	if existing, err := s.productRepo.GetByExtensionID(extensionID); err == nil && existing != nil {
		return fmt.Errorf("extension %s is already registered", extensionID)
	}

	product.UserID = ownerID
	product.ExtensionID = extensionID

	if err := s.productRepo.Create(product); err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Info("product created",
		zap.String("product_id", product.ID),
		zap.String("owner_id", ownerID),
		zap.String("extension_id", extensionID))
	return nil
}

// DeleteProduct removes a product, owners only.
func (s *ProductService) DeleteProduct(ownerID, productID string) error {
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return err
	}
	if product.UserID != ownerID {
		return fmt.Errorf("product %s does not belong to user %s", productID, ownerID)
	}
	return s.productRepo.Delete(productID)
}

// ListMarket retrieves the products the given viewer can review.
func (s *ProductService) ListMarket(viewerID string) ([]models.Product, error) {
	return s.productRepo.ListMarket(viewerID)
}

// ListOwned retrieves the viewer's own products.
func (s *ProductService) ListOwned(ownerID string) ([]models.Product, error) {
	return s.productRepo.ListByOwner(ownerID)
}
