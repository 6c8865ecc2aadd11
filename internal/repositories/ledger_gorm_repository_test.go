package repositories_test

import (
	"fmt"
	"testing"

	"reviewmarket/internal/models"
	"reviewmarket/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupLedgerDB opens a private in-memory database and seeds a reviewer
// and a product owner. Each test gets its own database name so state
// never leaks between tests.
func setupLedgerDB(t *testing.T, name string) (*gorm.DB, *models.User, *models.User, *models.Product) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Product{}, &models.Review{}))

	reviewer := &models.User{
		ID:       uuid.New().String(),
		Username: "reviewer",
		Email:    "reviewer@example.com",
		Password: "hashed",
		Respect:  5,
	}
	owner := &models.User{
		ID:       uuid.New().String(),
		Username: "owner",
		Email:    "owner@example.com",
		Password: "hashed",
		Respect:  3,
	}
	require.NoError(t, db.Create(reviewer).Error)
	require.NoError(t, db.Create(owner).Error)

	product := &models.Product{
		ID:          uuid.New().String(),
		UserID:      owner.ID,
		Name:        "My Extension",
		StoreURL:    "https://chromewebstore.google.com/detail/my-ext/abcdefghijklmnop",
		ExtensionID: "abcdefghijklmnop",
	}
	require.NoError(t, db.Create(product).Error)

	return db, reviewer, owner, product
}

func respectOf(t *testing.T, db *gorm.DB, id string) int {
	t.Helper()
	var user models.User
	require.NoError(t, db.First(&user, "id = ?", id).Error)
	return user.Respect
}

func TestGORMLedgerRepository_CommitVerifiedReview(t *testing.T) {
	db, reviewer, owner, product := setupLedgerDB(t, "ledger_commit")
	repo := repositories.NewGORMLedgerRepository(db)

	review := &models.Review{
		ProductID: product.ID,
		UserID:    reviewer.ID,
		Verified:  true,
	}
	err := repo.CommitVerifiedReview(review, reviewer.ID, owner.ID, 2)
	assert.NoError(t, err)
	assert.NotEmpty(t, review.ID)

	// Both balances moved in the same transaction.
	assert.Equal(t, 7, respectOf(t, db, reviewer.ID))
	assert.Equal(t, 2, respectOf(t, db, owner.ID))

	var stored models.Review
	require.NoError(t, db.First(&stored, "product_id = ? AND user_id = ?", product.ID, reviewer.ID).Error)
	assert.True(t, stored.Verified)
}

func TestGORMLedgerRepository_CommitVerifiedReview_Duplicate(t *testing.T) {
	db, reviewer, owner, product := setupLedgerDB(t, "ledger_duplicate")
	repo := repositories.NewGORMLedgerRepository(db)

	first := &models.Review{ProductID: product.ID, UserID: reviewer.ID, Verified: true}
	require.NoError(t, repo.CommitVerifiedReview(first, reviewer.ID, owner.ID, 1))

	second := &models.Review{ProductID: product.ID, UserID: reviewer.ID, Verified: true}
	err := repo.CommitVerifiedReview(second, reviewer.ID, owner.ID, 1)
	assert.ErrorIs(t, err, repositories.ErrDuplicateReview)

	// The rejected attempt must not touch either balance.
	assert.Equal(t, 6, respectOf(t, db, reviewer.ID))
	assert.Equal(t, 2, respectOf(t, db, owner.ID))

	var count int64
	require.NoError(t, db.Model(&models.Review{}).
		Where("product_id = ? AND user_id = ?", product.ID, reviewer.ID).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestGORMLedgerRepository_CommitVerifiedReview_RollsBackOnMissingOwner(t *testing.T) {
	db, reviewer, _, product := setupLedgerDB(t, "ledger_rollback")
	repo := repositories.NewGORMLedgerRepository(db)

	review := &models.Review{ProductID: product.ID, UserID: reviewer.ID, Verified: true}
	err := repo.CommitVerifiedReview(review, reviewer.ID, uuid.New().String(), 1)
	assert.Error(t, err)

	// The reviewer credit and the review insert were rolled back with the
	// failed owner debit; no partial ledger state survives.
	assert.Equal(t, 5, respectOf(t, db, reviewer.ID))

	var count int64
	require.NoError(t, db.Model(&models.Review{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestGORMLedgerRepository_GrantShareReward(t *testing.T) {
	db, reviewer, _, _ := setupLedgerDB(t, "ledger_share")
	repo := repositories.NewGORMLedgerRepository(db)

	assert.NoError(t, repo.GrantShareReward(reviewer.ID))
	assert.Equal(t, 6, respectOf(t, db, reviewer.ID))

	var user models.User
	require.NoError(t, db.First(&user, "id = ?", reviewer.ID).Error)
	assert.NotNil(t, user.SharedRewardClaimedAt)

	// One-time only.
	err := repo.GrantShareReward(reviewer.ID)
	assert.ErrorIs(t, err, repositories.ErrShareRewardClaimed)
	assert.Equal(t, 6, respectOf(t, db, reviewer.ID))
}

func TestGORMLedgerRepository_GrantShareReward_UnknownUser(t *testing.T) {
	db, _, _, _ := setupLedgerDB(t, "ledger_share_unknown")
	repo := repositories.NewGORMLedgerRepository(db)

	err := repo.GrantShareReward(uuid.New().String())
	assert.ErrorIs(t, err, repositories.ErrShareRewardClaimed)
}
