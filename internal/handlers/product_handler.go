package handlers

import (
	"reviewmarket/internal/models"
	"reviewmarket/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ProductHandler handles HTTP requests for product listings.
type ProductHandler struct {
	service  *services.ProductService
	validate *validator.Validate
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the product routes with the Fiber app.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/market", h.HandleListMarket)
	productRoutes := router.Group("/products")
	productRoutes.Get("/mine", h.HandleListOwned)
	productRoutes.Post("/", h.HandleCreateProduct)
	productRoutes.Delete("/:id", h.HandleDeleteProduct)
}

// HandleListMarket retrieves the products the caller can review.
func (h *ProductHandler) HandleListMarket(c *fiber.Ctx) error {
	account := c.Locals("account").(*models.User)

	products, err := h.service.ListMarket(account.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve market listings",
			"error":   err.Error(),
		})
	}
	return c.JSON(products)
}

// HandleListOwned retrieves the caller's own products.
func (h *ProductHandler) HandleListOwned(c *fiber.Ctx) error {
	account := c.Locals("account").(*models.User)

	products, err := h.service.ListOwned(account.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve products",
			"error":   err.Error(),
		})
	}
	return c.JSON(products)
}

// HandleCreateProduct registers a new product for the caller.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	account := c.Locals("account").(*models.User)

	var product models.Product
	if err := c.BodyParser(&product); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(&product); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"error":   err.Error(),
		})
	}

	if err := h.service.CreateProduct(account.ID, &product); err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "Could not create product",
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleDeleteProduct deletes one of the caller's products.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	account := c.Locals("account").(*models.User)
	productID := c.Params("id")

	if err := h.service.DeleteProduct(account.ID, productID); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Could not delete product",
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "Product deleted",
	})
}
