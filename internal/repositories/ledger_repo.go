package repositories

import (
	"errors"

	"reviewmarket/internal/models"
)

// ErrDuplicateReview indicates a review already exists for the
// (product, user) pair, detected either by the pre-commit re-check or by
// the storage-level unique constraint.
var ErrDuplicateReview = errors.New("review already exists for this product and user")

// ErrShareRewardClaimed indicates the one-time share reward was already
// granted to the user.
var ErrShareRewardClaimed = errors.New("share reward already claimed")

// LedgerRepository concentrates every respect mutation. Balances move
// only through the verified-review transaction or the one-time share
// reward.
type LedgerRepository interface {
	// CommitVerifiedReview atomically inserts the review, credits the
	// reviewer by credit and debits the owner by one. All three writes
	// succeed or none do.
	CommitVerifiedReview(review *models.Review, reviewerID, ownerID string, credit int) error
	// GrantShareReward credits one respect, at most once per user.
	GrantShareReward(userID string) error
}
