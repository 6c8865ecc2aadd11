package services

import (
	"fmt"
	"time"

	"reviewmarket/internal/models"
	"reviewmarket/internal/repositories"

	"go.uber.org/zap"
)

// WebhookEvent is the payment-provider callback payload. Only the event
// type and the user reference in the metadata are relevant here; the rest
// of the provider protocol stays with the provider.
type WebhookEvent struct {
	Type string `json:"type"`
	Data struct {
		Metadata struct {
			UserID string `json:"user_id"`
		} `json:"metadata"`
	} `json:"data"`
}

// BillingService owns pro-subscription state: activation via the payment
// webhook and lazy expiry on read.
type BillingService struct {
	userRepo         repositories.UserRepository
	subscriptionDays int
	logger           *zap.Logger
}

// NewBillingService creates a new BillingService.
func NewBillingService(userRepo repositories.UserRepository, subscriptionDays int, logger *zap.Logger) *BillingService {
	return &BillingService{
		userRepo:         userRepo,
		subscriptionDays: subscriptionDays,
		logger:           logger,
	}
}

// IsProActive reports whether the user's pro benefits are currently
// active. An expired subscription is lazily downgraded in storage as a
// side effect; if that write fails the user is still treated as non-pro
// for the current request.
func (s *BillingService) IsProActive(user *models.User) bool {
	if !user.IsPro {
		return false
	}

	if user.SubscriptionExpiresAt != nil && time.Now().After(*user.SubscriptionExpiresAt) {
		user.IsPro = false
		if err := s.userRepo.Update(user); err != nil {
			s.logger.Error("failed to downgrade expired subscription",
				zap.String("user_id", user.ID),
				zap.Error(err))
		} else {
			s.logger.Info("subscription expired, pro status downgraded",
				zap.String("user_id", user.ID))
		}
		return false
	}

	return true
}

// ActivateSubscription marks the user as pro for the configured number of
// days from now.
func (s *BillingService) ActivateSubscription(userID string) error {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return fmt.Errorf("failed to load user for subscription activation: %w", err)
	}

	expiresAt := time.Now().AddDate(0, 0, s.subscriptionDays)
	user.IsPro = true
	user.SubscriptionExpiresAt = &expiresAt

	if err := s.userRepo.Update(user); err != nil {
		return fmt.Errorf("failed to activate subscription for user %s: %w", userID, err)
	}

	s.logger.Info("subscription activated",
		zap.String("user_id", userID),
		zap.Time("expires_at", expiresAt))
	return nil
}

// HandleWebhookEvent processes a payment-provider callback. Unknown event
// types are acknowledged without effect.
func (s *BillingService) HandleWebhookEvent(event WebhookEvent) error {
	switch event.Type {
	case "payment.succeeded", "subscription.active":
		if event.Data.Metadata.UserID == "" {
			s.logger.Warn("billing webhook without user metadata", zap.String("type", event.Type))
			return nil
		}
		return s.ActivateSubscription(event.Data.Metadata.UserID)
	default:
		return nil
	}
}
