package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"reviewmarket/internal/handlers"
	"reviewmarket/internal/middleware"
	"reviewmarket/internal/models"
	"reviewmarket/internal/repositories"
	"reviewmarket/internal/scraper"
	"reviewmarket/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// testEnv wires the full application against an in-memory database and a
// fake storefront, so submissions exercise the real fetch, extract, match
// and ledger path end to end.
type testEnv struct {
	app        *fiber.App
	db         *gorm.DB
	storefront *httptest.Server

	mu      sync.Mutex
	pages   map[string]string
	fetches int
}

func newTestEnv(t *testing.T, dbName string) *testEnv {
	t.Helper()

	env := &testEnv{pages: make(map[string]string)}
	env.storefront = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		env.mu.Lock()
		env.fetches++
		page, ok := env.pages[r.URL.Path]
		env.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(page))
	}))
	t.Cleanup(env.storefront.Close)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", dbName)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Product{}, &models.Review{}, &models.Suspect{}))
	env.db = db

	log := zap.NewNop()

	userRepo := repositories.NewGORMUserRepository(db)
	productRepo := repositories.NewGORMProductRepository(db)
	reviewRepo := repositories.NewGORMReviewRepository(db)
	suspectRepo := repositories.NewGORMSuspectRepository(db)
	ledgerRepo := repositories.NewGORMLedgerRepository(db)

	verifier := scraper.NewVerifier(
		scraper.NewFetcherWithClient(&http.Client{Timeout: 5 * time.Second}),
		scraper.NewExtractor(),
		scraper.NewMatcher(scraper.DefaultTolerance),
		log,
	)

	authService := services.NewAuthService(userRepo, "integration_test_secret", log)
	billingService := services.NewBillingService(userRepo, 7, log)
	productService := services.NewProductService(productRepo, log)
	userService := services.NewUserService(userRepo, productRepo, ledgerRepo, log)
	reviewService := services.NewReviewService(
		reviewRepo, suspectRepo, productRepo, userRepo, ledgerRepo,
		verifier, billingService, nil, log,
	)

	app := fiber.New()
	apiV1 := app.Group("/api/v1")

	authHandler := handlers.NewAuthHandler(authService)
	billingHandler := handlers.NewBillingHandler(billingService)
	authHandler.RegisterRoutes(apiV1)
	billingHandler.RegisterWebhookRoutes(apiV1)

	protected := apiV1.Group("",
		middleware.AuthRequired(authService),
		middleware.AccountEnrichment(userRepo, billingService),
	)
	handlers.NewProductHandler(productService).RegisterRoutes(protected)
	handlers.NewReviewHandler(reviewService).RegisterRoutes(protected)
	handlers.NewUserHandler(userService).RegisterRoutes(protected)
	billingHandler.RegisterRoutes(protected)

	env.app = app
	return env
}

// setReviewPage publishes review-listing markup for an extension on the
// fake storefront.
func (e *testEnv) setReviewPage(extensionID, markup string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pages["/detail/test-ext/"+extensionID+"/reviews"] = markup
}

func (e *testEnv) fetchCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.fetches
}

func (e *testEnv) storeURL(extensionID string) string {
	return e.storefront.URL + "/detail/test-ext/" + extensionID
}

func (e *testEnv) request(t *testing.T, method, path, token string, payload interface{}) (int, map[string]interface{}) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var parsed map[string]interface{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &parsed))
	}
	return resp.StatusCode, parsed
}

// registerAndLogin creates an account and returns its ID and a session
// token.
func (e *testEnv) registerAndLogin(t *testing.T, username string) (string, string) {
	t.Helper()

	status, body := e.request(t, http.MethodPost, "/api/v1/auth/register", "", fiber.Map{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, status)
	userID := body["user_id"].(string)

	status, body = e.request(t, http.MethodPost, "/api/v1/auth/login", "", fiber.Map{
		"username": username,
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, status)
	return userID, body["token"].(string)
}

// createProduct registers a listing through the API and returns its ID.
func (e *testEnv) createProduct(t *testing.T, token, extensionID string) string {
	t.Helper()

	status, body := e.request(t, http.MethodPost, "/api/v1/products/", token, fiber.Map{
		"name":        "Test Extension",
		"description": "An extension listed for review exchange.",
		"store_url":   e.storeURL(extensionID),
		"icon_url":    "https://example.com/icon.png",
	})
	require.Equal(t, http.StatusCreated, status)
	return body["id"].(string)
}

func (e *testEnv) respectOf(t *testing.T, userID string) int {
	t.Helper()
	var user models.User
	require.NoError(t, e.db.First(&user, "id = ?", userID).Error)
	return user.Respect
}

func TestIntegration_VerifiedReviewSettlesRespect(t *testing.T) {
	env := newTestEnv(t, "it_verified")

	ownerID, ownerToken := env.registerAndLogin(t, "storeowner")
	reviewerID, reviewerToken := env.registerAndLogin(t, "alexchen")

	productID := env.createProduct(t, ownerToken, "abcdefghijklmnop")
	env.setReviewPage("abcdefghijklmnop", `<html><body>
<span class="comment-thread-displayname">alexchen</span>
<p>Great extension!</p>
</body></html>`)

	status, body := env.request(t, http.MethodPost, "/api/v1/products/"+productID+"/reviews", reviewerToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, true, body["verified"])
	assert.Equal(t, float64(1), body["respect_earned"])

	// Respect moved atomically: reviewer earned one, owner paid one.
	assert.Equal(t, 1, env.respectOf(t, reviewerID))
	assert.Equal(t, -1, env.respectOf(t, ownerID))

	// A duplicate submission short-circuits without another storefront
	// fetch and without moving any balance.
	fetchesBefore := env.fetchCount()
	status, body = env.request(t, http.MethodPost, "/api/v1/products/"+productID+"/reviews", reviewerToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["already_reviewed"])
	assert.Equal(t, fetchesBefore, env.fetchCount())
	assert.Equal(t, 1, env.respectOf(t, reviewerID))
	assert.Equal(t, -1, env.respectOf(t, ownerID))
}

func TestIntegration_FailedVerificationFlagsSuspect(t *testing.T) {
	env := newTestEnv(t, "it_suspect")

	ownerID, ownerToken := env.registerAndLogin(t, "storeowner")
	reviewerID, reviewerToken := env.registerAndLogin(t, "impostor")

	productID := env.createProduct(t, ownerToken, "abcdefghijklmnop")
	env.setReviewPage("abcdefghijklmnop", `<html><body>
<span class="comment-thread-displayname">Somebody Else</span>
</body></html>`)

	status, body := env.request(t, http.MethodPost, "/api/v1/products/"+productID+"/reviews", reviewerToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, false, body["verified"])
	assert.Contains(t, body["message"], "flagged")

	// No review, no respect movement, exactly one suspect entry.
	var reviewCount, suspectCount int64
	require.NoError(t, env.db.Model(&models.Review{}).Count(&reviewCount).Error)
	require.NoError(t, env.db.Model(&models.Suspect{}).Count(&suspectCount).Error)
	assert.Equal(t, int64(0), reviewCount)
	assert.Equal(t, int64(1), suspectCount)
	assert.Equal(t, 0, env.respectOf(t, reviewerID))
	assert.Equal(t, 0, env.respectOf(t, ownerID))

	var suspect models.Suspect
	require.NoError(t, env.db.First(&suspect).Error)
	assert.Equal(t, reviewerID, suspect.UserID)
	assert.Equal(t, productID, suspect.ProductID)
	assert.Equal(t, "impostor", suspect.ClaimedName)
	assert.Equal(t, models.SuspectStatusPending, suspect.Status)
}

func TestIntegration_ShareRewardAndMarketVisibility(t *testing.T) {
	env := newTestEnv(t, "it_market")

	_, ownerToken := env.registerAndLogin(t, "storeowner")
	_, reviewerToken := env.registerAndLogin(t, "browser")

	env.createProduct(t, ownerToken, "abcdefghijklmnop")

	// With zero respect the owner's listing is invisible.
	assert.Equal(t, 0, marketSize(t, env, reviewerToken))

	// The one-time share reward lifts the owner to positive respect.
	status, body := env.request(t, http.MethodPost, "/api/v1/users/me/share-reward", ownerToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), body["respect"])

	assert.Equal(t, 1, marketSize(t, env, reviewerToken))
	// Owners never see their own listings in the market.
	assert.Equal(t, 0, marketSize(t, env, ownerToken))

	// The reward is one-time.
	status, _ = env.request(t, http.MethodPost, "/api/v1/users/me/share-reward", ownerToken, nil)
	assert.Equal(t, http.StatusConflict, status)
}

func marketSize(t *testing.T, env *testEnv, token string) int {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/market", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var products []models.Product
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&products))
	return len(products)
}

func TestIntegration_BannedAccountRejected(t *testing.T) {
	env := newTestEnv(t, "it_banned")

	userID, token := env.registerAndLogin(t, "badactor")

	require.NoError(t, env.db.Model(&models.User{}).
		Where("id = ?", userID).
		Update("is_banned", true).Error)

	// The ban bites on the next request even though the token is valid.
	status, body := env.request(t, http.MethodGet, "/api/v1/users/me/", token, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Your account has been banned.", body["message"])
}

func TestIntegration_ProSubscriberEarnsDouble(t *testing.T) {
	env := newTestEnv(t, "it_pro")

	ownerID, ownerToken := env.registerAndLogin(t, "storeowner")
	reviewerID, reviewerToken := env.registerAndLogin(t, "proreviewer")

	// Payment provider callback upgrades the reviewer.
	status, _ := env.request(t, http.MethodPost, "/api/v1/billing/webhook", "", fiber.Map{
		"type": "payment.succeeded",
		"data": fiber.Map{"metadata": fiber.Map{"user_id": reviewerID}},
	})
	require.Equal(t, http.StatusOK, status)

	status, body := env.request(t, http.MethodGet, "/api/v1/users/me/billing", reviewerToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["is_pro"])

	productID := env.createProduct(t, ownerToken, "abcdefghijklmnop")
	env.setReviewPage("abcdefghijklmnop", `<html><body>
<span class="comment-thread-displayname">proreviewer</span>
</body></html>`)

	status, body = env.request(t, http.MethodPost, "/api/v1/products/"+productID+"/reviews", reviewerToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["verified"])
	assert.Equal(t, float64(2), body["respect_earned"])

	// Pro doubles the credit but the owner still pays exactly one.
	assert.Equal(t, 2, env.respectOf(t, reviewerID))
	assert.Equal(t, -1, env.respectOf(t, ownerID))
}
