package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/guide-store/internal/api/http/handlers"
	"github.com/spec-kit/guide-store/internal/auth"
	"github.com/spec-kit/guide-store/internal/config"
	"github.com/spec-kit/guide-store/internal/domain"
	"github.com/spec-kit/guide-store/internal/events"
	"github.com/spec-kit/guide-store/internal/payments"
	"github.com/spec-kit/guide-store/internal/repository"
	"github.com/spec-kit/guide-store/internal/observability"
	"github.com/spec-kit/guide-store/internal/service"
)

const validTestSignature = "t=1,v1=valid"

// In-memory stand-ins for the Postgres repositories, enough to drive the
// full request flows through the real handlers, middleware and services.

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[string]*domain.User{}}
}

func (r *memUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now()
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user, ok := r.users[id]; ok {
		clone := *user
		return &clone, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type memGuideRepo struct {
	mu     sync.Mutex
	guides map[string]*domain.Guide
}

func newMemGuideRepo() *memGuideRepo {
	return &memGuideRepo{guides: map[string]*domain.Guide{}}
}

func (r *memGuideRepo) Create(_ context.Context, guide *domain.Guide) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if guide.ID == "" {
		guide.ID = uuid.NewString()
	}
	if guide.CreatedAt.IsZero() {
		guide.CreatedAt = time.Now()
	}
	clone := *guide
	r.guides[guide.ID] = &clone
	return nil
}

func (r *memGuideRepo) GetByID(_ context.Context, id string) (*domain.Guide, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if guide, ok := r.guides[id]; ok {
		clone := *guide
		return &clone, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *memGuideRepo) GetBySlug(_ context.Context, slug string) (*domain.Guide, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, guide := range r.guides {
		if guide.Slug == slug {
			clone := *guide
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

// ListActive mirrors the SQL contract: active guides only, newest first.
func (r *memGuideRepo) ListActive(_ context.Context) ([]domain.Guide, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Guide
	for _, guide := range r.guides {
		if guide.IsActive {
			out = append(out, *guide)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

type memPurchaseRepo struct {
	mu        sync.Mutex
	guides    *memGuideRepo
	purchases map[string]*domain.Purchase
}

func newMemPurchaseRepo(guides *memGuideRepo) *memPurchaseRepo {
	return &memPurchaseRepo{guides: guides, purchases: map[string]*domain.Purchase{}}
}

func (r *memPurchaseRepo) key(userID, guideID string) string {
	return userID + "/" + guideID
}

func (r *memPurchaseRepo) Create(_ context.Context, purchase *domain.Purchase) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := r.key(purchase.UserID, purchase.GuideID)
	if _, exists := r.purchases[key]; exists {
		return repository.ErrDuplicatePurchase
	}
	purchase.ID = uuid.NewString()
	purchase.CreatedAt = time.Now()
	clone := *purchase
	r.purchases[key] = &clone
	return nil
}

func (r *memPurchaseRepo) GetByUserAndGuide(_ context.Context, userID, guideID string) (*domain.Purchase, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if purchase, ok := r.purchases[r.key(userID, guideID)]; ok {
		clone := *purchase
		return &clone, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *memPurchaseRepo) ListCompletedByUser(ctx context.Context, userID string) ([]domain.PurchaseWithGuide, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.PurchaseWithGuide
	for _, purchase := range r.purchases {
		if purchase.UserID != userID || purchase.Status != domain.PurchaseStatusCompleted {
			continue
		}
		guide, ok := r.guides.guides[purchase.GuideID]
		if !ok {
			continue
		}
		out = append(out, domain.PurchaseWithGuide{Purchase: *purchase, Guide: *guide})
	}
	return out, nil
}

type memRevoker struct {
	mu      sync.Mutex
	revoked map[string]bool
}

func newMemRevoker() *memRevoker {
	return &memRevoker{revoked: map[string]bool{}}
}

func (r *memRevoker) Revoke(_ context.Context, tokenID string, _ time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.revoked[tokenID] = true
	return nil
}

func (r *memRevoker) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.revoked[tokenID], nil
}

// fakeGateway accepts one hard-coded signature and echoes back whatever
// notification the test scripted.
type fakeGateway struct {
	notification *payments.Notification
}

func (g *fakeGateway) CreateCheckoutSession(_ context.Context, _ payments.CheckoutParams) (*payments.CheckoutSession, error) {
	return &payments.CheckoutSession{ID: "cs_test_1", URL: "https://checkout.example/cs_test_1"}, nil
}

func (g *fakeGateway) VerifyNotification(_ []byte, signature string) (*payments.Notification, error) {
	if signature != validTestSignature {
		return nil, errors.New("signature mismatch")
	}
	return g.notification, nil
}

type testEnv struct {
	app     *fiber.App
	guide   *domain.Guide
	guides  *memGuideRepo
	gateway *fakeGateway
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := config.Config{
		App: config.AppConfig{PublicBaseURL: "https://guides.example.com"},
		Auth: config.AuthConfig{
			JWTSecret:             "test-secret",
			AccessTokenTTLMinutes: 5,
			BcryptCost:            4,
		},
	}
	logger := zap.NewNop()

	users := newMemUserRepo()
	guides := newMemGuideRepo()
	purchases := newMemPurchaseRepo(guides)
	revoker := newMemRevoker()
	gateway := &fakeGateway{}
	dispatcher := events.NewInMemoryDispatcher(logger)

	guide := &domain.Guide{
		Slug:        "krakow-old-town-weekend",
		Title:       "Krakow Old Town Weekend",
		Description: "Two days in the old town",
		Price:       1999,
		Currency:    "usd",
		Content:     "Day one starts at the Barbican.",
		IsActive:    true,
	}
	require.NoError(t, guides.Create(context.Background(), guide))

	authService := service.NewAuthService(cfg, service.AuthDependencies{
		UserRepo:   users,
		Revoker:    revoker,
		Dispatcher: dispatcher,
	})
	purchaseService := service.NewPurchaseService(service.PurchaseDependencies{
		UserRepo:     users,
		GuideRepo:    guides,
		PurchaseRepo: purchases,
		Gateway:      gateway,
		Dispatcher:   dispatcher,
		Logger:       logger,
	})
	guideService := service.NewGuideService(guides, purchaseService)
	checkoutService := service.NewCheckoutService(guides, purchases, gateway, cfg.App.PublicBaseURL)

	authMiddleware := auth.NewMiddleware(authService.TokenManager(), users, revoker)

	app := fiber.New()
	RegisterMiddlewares(app, logger, observability.NewMetrics(), 0)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("guide-store", "test", nil, nil),
		Auth:           handlers.NewAuthHandler(authService, cfg.OAuth),
		Guides:         handlers.NewGuidesHandler(guideService),
		Checkout:       handlers.NewCheckoutHandler(checkoutService),
		Webhooks:       handlers.NewWebhookHandler(purchaseService),
		Dashboard:      handlers.NewDashboardHandler(purchaseService),
		AuthMiddleware: authMiddleware,
	})

	return &testEnv{app: app, guide: guide, guides: guides, gateway: gateway}
}

func (e *testEnv) request(t *testing.T, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)

	decoded := map[string]any{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded), "body: %s", raw)
	}
	return resp, decoded
}

func (e *testEnv) registerUser(t *testing.T, email string) (userID, token string) {
	t.Helper()
	resp, body := e.request(t, fiber.MethodPost, "/api/auth/register", "", map[string]string{
		"name":     "Anna",
		"email":    email,
		"password": "hunter22",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	data := body["data"].(map[string]any)
	userID = data["user"].(map[string]any)["id"].(string)
	token = data["auth"].(map[string]any)["token"].(string)
	return userID, token
}

func errorCode(body map[string]any) string {
	errObj, ok := body["error"].(map[string]any)
	if !ok {
		return ""
	}
	code, _ := errObj["code"].(string)
	return code
}

func TestCheckoutRequiresSession(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.request(t, fiber.MethodPost, "/api/checkout", "", map[string]string{
		"guideId": env.guide.ID,
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "UNAUTHENTICATED", errorCode(body))
}

func TestWebhookRejectsMissingSignatureHeader(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(fiber.MethodPost, "/api/webhooks/stripe", bytes.NewReader([]byte(`{}`)))
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(fiber.MethodPost, "/api/webhooks/stripe", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Stripe-Signature", "t=1,v1=forged")
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGuideDetailHidesContentFromAnonymous(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.request(t, fiber.MethodGet, "/api/guides/"+env.guide.Slug, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data := body["data"].(map[string]any)
	assert.Equal(t, false, data["has_access"])
	_, hasContent := data["content"]
	assert.False(t, hasContent, "content must be withheld without a purchase")
}

func TestGuideListExcludesInactiveAndOrdersNewestFirst(t *testing.T) {
	env := newTestEnv(t)

	base := time.Now()
	extras := []*domain.Guide{
		{
			Slug:      "nowa-huta-by-tram",
			Title:     "Nowa Huta by Tram",
			Price:     999,
			Currency:  "usd",
			IsActive:  true,
			CreatedAt: base.Add(-2 * time.Hour),
		},
		{
			Slug:      "wawel-after-dark",
			Title:     "Wawel After Dark",
			Price:     1299,
			Currency:  "usd",
			IsActive:  true,
			CreatedAt: base.Add(time.Hour),
		},
		{
			Slug:      "unpublished-draft",
			Title:     "Unpublished Draft",
			Price:     599,
			Currency:  "usd",
			IsActive:  false,
			CreatedAt: base.Add(2 * time.Hour),
		},
	}
	for _, g := range extras {
		require.NoError(t, env.guides.Create(context.Background(), g))
	}

	resp, body := env.request(t, fiber.MethodGet, "/api/guides", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	items := body["data"].([]any)
	slugs := make([]string, 0, len(items))
	for _, item := range items {
		slugs = append(slugs, item.(map[string]any)["slug"].(string))
	}
	assert.Equal(t, []string{"wawel-after-dark", env.guide.Slug, "nowa-huta-by-tram"}, slugs)
}

func TestUnknownGuideReturnsNotFound(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.request(t, fiber.MethodGet, "/api/guides/no-such-guide", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", errorCode(body))
}

// The storefront journey end to end: register, browse, buy, receive the
// webhook, read the unlocked guide, sign out.
func TestPurchaseJourney(t *testing.T) {
	env := newTestEnv(t)
	userID, token := env.registerUser(t, "anna@example.com")

	resp, body := env.request(t, fiber.MethodGet, "/api/guides", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, body["data"].([]any), 1)

	resp, body = env.request(t, fiber.MethodPost, "/api/checkout", token, map[string]string{
		"guideId": env.guide.ID,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "cs_test_1", body["sessionId"])

	env.gateway.notification = &payments.Notification{
		Type:      payments.EventCheckoutCompleted,
		PaymentID: "pi_123",
		Amount:    env.guide.Price,
		Currency:  env.guide.Currency,
		Metadata:  map[string]string{"userId": userID, "guideId": env.guide.ID},
	}
	req := httptest.NewRequest(fiber.MethodPost, "/api/webhooks/stripe", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Stripe-Signature", validTestSignature)
	webhookResp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, webhookResp.StatusCode)

	resp, body = env.request(t, fiber.MethodGet, "/api/guides/"+env.guide.Slug, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := body["data"].(map[string]any)
	assert.Equal(t, true, data["has_access"])
	assert.Equal(t, env.guide.Content, data["content"])

	resp, body = env.request(t, fiber.MethodGet, "/api/dashboard", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	purchasesList := body["data"].(map[string]any)["purchases"].([]any)
	require.Len(t, purchasesList, 1)
	purchase := purchasesList[0].(map[string]any)
	assert.Equal(t, "$19.99", purchase["price_display"])

	resp, _ = env.request(t, fiber.MethodPost, "/api/auth/signout", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = env.request(t, fiber.MethodGet, "/api/dashboard", token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "UNAUTHENTICATED", errorCode(body))
}

func TestCheckoutConflictAfterPurchase(t *testing.T) {
	env := newTestEnv(t)
	userID, token := env.registerUser(t, "anna@example.com")

	env.gateway.notification = &payments.Notification{
		Type:      payments.EventCheckoutCompleted,
		PaymentID: "pi_123",
		Amount:    env.guide.Price,
		Currency:  env.guide.Currency,
		Metadata:  map[string]string{"userId": userID, "guideId": env.guide.ID},
	}
	req := httptest.NewRequest(fiber.MethodPost, "/api/webhooks/stripe", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Stripe-Signature", validTestSignature)
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	conflictResp, body := env.request(t, fiber.MethodPost, "/api/checkout", token, map[string]string{
		"guideId": env.guide.ID,
	})
	assert.Equal(t, http.StatusConflict, conflictResp.StatusCode)
	assert.Equal(t, "ALREADY_PURCHASED", errorCode(body))
}
