package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"reviewmarket/internal/models"
	"reviewmarket/internal/repositories"
	"reviewmarket/internal/scraper"
	"reviewmarket/pkg/rabbitmq"

	"go.uber.org/zap"
)

// ReviewVerifier decides whether a claimed reviewer name appears on a
// product's storefront review page.
type ReviewVerifier interface {
	Verify(ctx context.Context, productURL, claimedName string) scraper.Verdict
}

// SubmitResult is the caller-facing outcome of a review submission.
// Rejection and internal verification errors look identical here.
type SubmitResult struct {
	Success         bool   `json:"success"`
	Verified        bool   `json:"verified"`
	AlreadyReviewed bool   `json:"already_reviewed"`
	RespectEarned   int    `json:"respect_earned"`
	Message         string `json:"message"`
}

// ReviewService gates the respect ledger behind the verification
// pipeline.
type ReviewService struct {
	reviewRepo  repositories.ReviewRepository
	suspectRepo repositories.SuspectRepository
	productRepo repositories.ProductRepository
	userRepo    repositories.UserRepository
	ledger      repositories.LedgerRepository
	verifier    ReviewVerifier
	billing     *BillingService
	mqClient    *rabbitmq.Client
	logger      *zap.Logger
}

// NewReviewService creates a new ReviewService. mqClient may be nil, in
// which case moderation events are skipped.
func NewReviewService(
	reviewRepo repositories.ReviewRepository,
	suspectRepo repositories.SuspectRepository,
	productRepo repositories.ProductRepository,
	userRepo repositories.UserRepository,
	ledger repositories.LedgerRepository,
	verifier ReviewVerifier,
	billing *BillingService,
	mqClient *rabbitmq.Client,
	logger *zap.Logger,
) *ReviewService {
	return &ReviewService{
		reviewRepo:  reviewRepo,
		suspectRepo: suspectRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		ledger:      ledger,
		verifier:    verifier,
		billing:     billing,
		mqClient:    mqClient,
		logger:      logger,
	}
}

// SubmitReview runs one verification attempt for the reviewer against the
// product's storefront page and settles the respect ledger on success.
//
// A pair that already has a review short-circuits before any network
// fetch. On a verified outcome the reviewer earns 1 respect (2 with an
// active pro subscription) and the owner loses exactly 1, in one atomic
// transaction. Any other outcome records a Suspect entry and returns a
// rejection; the Suspect write is fire-and-forget and never masks the
// rejection itself.
func (s *ReviewService) SubmitReview(ctx context.Context, reviewerID, productID string) (*SubmitResult, error) {
	reviewer, err := s.userRepo.GetByID(reviewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load reviewer: %w", err)
	}
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return nil, fmt.Errorf("failed to load product: %w", err)
	}

	// Duplicate guard before verification, not just at persistence time:
	// a repeat submission must not cost an external fetch.
	exists, err := s.reviewRepo.Exists(productID, reviewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to check for existing review: %w", err)
	}
	if exists {
		return s.alreadyReviewedResult(), nil
	}

	verdict := s.verifier.Verify(ctx, product.StoreURL, reviewer.Username)
	if !verdict.Verified() {
		s.flagSuspect(reviewer, product)
		return &SubmitResult{
			Success:  false,
			Verified: false,
			Message:  "Verification failed. We could not find your review. This attempt has been flagged.",
		}, nil
	}

	credit := 1
	if s.billing.IsProActive(reviewer) {
		credit = 2
	}

	review := &models.Review{
		ProductID: productID,
		UserID:    reviewerID,
		Verified:  true,
	}
	err = s.ledger.CommitVerifiedReview(review, reviewerID, product.UserID, credit)
	if errors.Is(err, repositories.ErrDuplicateReview) {
		// Lost the race against a concurrent submission for the same pair.
		return s.alreadyReviewedResult(), nil
	}
	if err != nil {
		// Nothing persisted; resubmission is safe.
		return nil, fmt.Errorf("failed to commit verified review: %w", err)
	}

	s.logger.Info("review verified and respect settled",
		zap.String("review_id", review.ID),
		zap.String("reviewer_id", reviewerID),
		zap.String("owner_id", product.UserID),
		zap.Int("credit", credit))
	s.publishEvent(rabbitmq.KeyReviewVerified, map[string]interface{}{
		"review_id":   review.ID,
		"product_id":  productID,
		"reviewer_id": reviewerID,
		"credit":      credit,
	})

	return &SubmitResult{
		Success:       true,
		Verified:      true,
		RespectEarned: credit,
		Message:       "Review verified. Respect earned.",
	}, nil
}

func (s *ReviewService) alreadyReviewedResult() *SubmitResult {
	return &SubmitResult{
		Success:         true,
		AlreadyReviewed: true,
		Message:         "You have already reviewed this product.",
	}
}

// flagSuspect records the failed attempt for moderation. Its own failure
// is logged and swallowed so the caller still receives the rejection.
func (s *ReviewService) flagSuspect(reviewer *models.User, product *models.Product) {
	suspect := &models.Suspect{
		UserID:      reviewer.ID,
		ProductID:   product.ID,
		ProductURL:  product.StoreURL,
		ClaimedName: reviewer.Username,
		Email:       reviewer.Email,
		Status:      models.SuspectStatusPending,
	}
	if err := s.suspectRepo.Create(suspect); err != nil {
		s.logger.Error("failed to create suspect entry",
			zap.String("reviewer_id", reviewer.ID),
			zap.String("product_id", product.ID),
			zap.Error(err))
		return
	}

	s.logger.Info("suspect entry created",
		zap.String("suspect_id", suspect.ID),
		zap.String("reviewer_id", reviewer.ID),
		zap.String("product_id", product.ID))
	s.publishEvent(rabbitmq.KeySuspectCreated, map[string]interface{}{
		"suspect_id":   suspect.ID,
		"user_id":      reviewer.ID,
		"product_id":   product.ID,
		"claimed_name": reviewer.Username,
	})
}

func (s *ReviewService) publishEvent(routingKey string, payload map[string]interface{}) {
	if s.mqClient == nil {
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("failed to marshal moderation event", zap.String("key", routingKey), zap.Error(err))
		return
	}
	if err := s.mqClient.Publish(routingKey, body); err != nil {
		s.logger.Warn("failed to publish moderation event", zap.String("key", routingKey), zap.Error(err))
	}
}
