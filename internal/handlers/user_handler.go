package handlers

import (
	"errors"

	"reviewmarket/internal/models"
	"reviewmarket/internal/repositories"
	"reviewmarket/internal/services"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles profile and share-reward requests.
type UserHandler struct {
	service *services.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{
		service: service,
	}
}

// RegisterRoutes registers the user routes with the Fiber app.
func (h *UserHandler) RegisterRoutes(router fiber.Router) {
	userRoutes := router.Group("/users/me")
	userRoutes.Get("/", h.HandleGetProfile)
	userRoutes.Post("/share-reward", h.HandleClaimShareReward)
}

// HandleGetProfile returns the caller's account and product listings.
func (h *UserHandler) HandleGetProfile(c *fiber.Ctx) error {
	account := c.Locals("account").(*models.User)

	user, products, err := h.service.GetProfile(account.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not load profile",
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"user":     user,
		"products": products,
		"is_pro":   c.Locals("is_pro"),
	})
}

// HandleClaimShareReward grants the one-time social-share respect reward.
func (h *UserHandler) HandleClaimShareReward(c *fiber.Ctx) error {
	account := c.Locals("account").(*models.User)

	user, err := h.service.ClaimShareReward(account.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrShareRewardClaimed) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"message": "Share reward already claimed",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not claim share reward",
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "Share reward claimed",
		"respect": user.Respect,
	})
}
