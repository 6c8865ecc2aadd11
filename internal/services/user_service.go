package services

import (
	"fmt"

	"reviewmarket/internal/models"
	"reviewmarket/internal/repositories"

	"go.uber.org/zap"
)

// UserService handles profile reads and the one-time share reward.
type UserService struct {
	userRepo    repositories.UserRepository
	productRepo repositories.ProductRepository
	ledger      repositories.LedgerRepository
	logger      *zap.Logger
}

// NewUserService creates a new UserService.
func NewUserService(
	userRepo repositories.UserRepository,
	productRepo repositories.ProductRepository,
	ledger repositories.LedgerRepository,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		userRepo:    userRepo,
		productRepo: productRepo,
		ledger:      ledger,
		logger:      logger,
	}
}

// GetProfile returns the user together with their product listings.
func (s *UserService) GetProfile(userID string) (*models.User, []models.Product, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, nil, err
	}
	products, err := s.productRepo.ListByOwner(userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load products for profile: %w", err)
	}
	return user, products, nil
}

// ClaimShareReward grants the one-time social-share respect reward and
// returns the refreshed user. Repeat claims fail with
// repositories.ErrShareRewardClaimed.
func (s *UserService) ClaimShareReward(userID string) (*models.User, error) {
	if err := s.ledger.GrantShareReward(userID); err != nil {
		return nil, err
	}
	s.logger.Info("share reward granted", zap.String("user_id", userID))
	return s.userRepo.GetByID(userID)
}
