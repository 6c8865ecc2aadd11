package middleware

import (
	"reviewmarket/internal/repositories"
	"reviewmarket/internal/services"

	"github.com/gofiber/fiber/v2"
)

// AccountEnrichment runs after AuthRequired. It loads the authenticated
// account, rejects banned users and lazily re-validates pro status, so
// handlers see current flags without each re-reading them. A ban takes
// effect on the next request regardless of the token's remaining
// lifetime.
func AccountEnrichment(userRepo repositories.UserRepository, billing *services.BillingService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals("user_id").(string)
		if !ok || userID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authentication required",
			})
		}

		user, err := userRepo.GetByID(userID)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Account not found",
			})
		}

		if user.IsBanned {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "Your account has been banned.",
			})
		}

		c.Locals("account", user)
		c.Locals("is_pro", billing.IsProActive(user))

		return c.Next()
	}
}
