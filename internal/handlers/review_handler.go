package handlers

import (
	"reviewmarket/internal/models"
	"reviewmarket/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ReviewHandler handles review submissions.
type ReviewHandler struct {
	service *services.ReviewService
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(service *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{
		service: service,
	}
}

// RegisterRoutes registers the review routes with the Fiber app.
func (h *ReviewHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/products/:id/reviews", h.HandleSubmitReview)
}

// HandleSubmitReview runs one verification attempt for the caller against
// the product's storefront page. Verification outcomes are business
// results, not errors: a failed match returns 200 with success=false.
func (h *ReviewHandler) HandleSubmitReview(c *fiber.Ctx) error {
	account := c.Locals("account").(*models.User)
	productID := c.Params("id")

	result, err := h.service.SubmitReview(c.UserContext(), account.ID, productID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not process review submission",
		})
	}

	return c.JSON(result)
}
