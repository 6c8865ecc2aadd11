package handlers

import (
	"reviewmarket/internal/models"
	"reviewmarket/internal/services"

	"github.com/gofiber/fiber/v2"
)

// BillingHandler handles the payment-provider webhook and billing status.
type BillingHandler struct {
	service *services.BillingService
}

// NewBillingHandler creates a new BillingHandler.
func NewBillingHandler(service *services.BillingService) *BillingHandler {
	return &BillingHandler{
		service: service,
	}
}

// RegisterWebhookRoutes registers the public webhook endpoint; the
// payment provider authenticates via its own signature scheme, not a user
// session.
func (h *BillingHandler) RegisterWebhookRoutes(router fiber.Router) {
	router.Post("/billing/webhook", h.HandleWebhook)
}

// RegisterRoutes registers the authenticated billing routes.
func (h *BillingHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/users/me/billing", h.HandleBillingStatus)
}

// HandleWebhook processes a payment-provider event.
func (h *BillingHandler) HandleWebhook(c *fiber.Ctx) error {
	var event services.WebhookEvent
	if err := c.BodyParser(&event); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid webhook payload",
		})
	}

	if err := h.service.HandleWebhookEvent(event); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Webhook processing failed",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Webhook received",
	})
}

// HandleBillingStatus returns the caller's subscription state. Pro status
// was already lazily re-validated by the enrichment middleware.
func (h *BillingHandler) HandleBillingStatus(c *fiber.Ctx) error {
	account := c.Locals("account").(*models.User)

	return c.JSON(fiber.Map{
		"is_pro":                  c.Locals("is_pro"),
		"subscription_expires_at": account.SubscriptionExpiresAt,
	})
}
