package service

import (
	"context"
	"sync"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/guide-store/internal/domain"
	"github.com/spec-kit/guide-store/internal/events"
	"github.com/spec-kit/guide-store/internal/payments"
)

type mockUserRepo struct {
	CreateFunc     func(ctx context.Context, user *domain.User) error
	GetByIDFunc    func(ctx context.Context, id string) (*domain.User, error)
	GetByEmailFunc func(ctx context.Context, email string) (*domain.User, error)
}

func (m *mockUserRepo) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, pgx.ErrNoRows
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, pgx.ErrNoRows
}

type mockGuideRepo struct {
	CreateFunc     func(ctx context.Context, guide *domain.Guide) error
	GetByIDFunc    func(ctx context.Context, id string) (*domain.Guide, error)
	GetBySlugFunc  func(ctx context.Context, slug string) (*domain.Guide, error)
	ListActiveFunc func(ctx context.Context) ([]domain.Guide, error)
}

func (m *mockGuideRepo) Create(ctx context.Context, guide *domain.Guide) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, guide)
	}
	return nil
}

func (m *mockGuideRepo) GetByID(ctx context.Context, id string) (*domain.Guide, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, pgx.ErrNoRows
}

func (m *mockGuideRepo) GetBySlug(ctx context.Context, slug string) (*domain.Guide, error) {
	if m.GetBySlugFunc != nil {
		return m.GetBySlugFunc(ctx, slug)
	}
	return nil, pgx.ErrNoRows
}

func (m *mockGuideRepo) ListActive(ctx context.Context) ([]domain.Guide, error) {
	if m.ListActiveFunc != nil {
		return m.ListActiveFunc(ctx)
	}
	return nil, nil
}

type mockPurchaseRepo struct {
	CreateFunc              func(ctx context.Context, purchase *domain.Purchase) error
	GetByUserAndGuideFunc   func(ctx context.Context, userID, guideID string) (*domain.Purchase, error)
	ListCompletedByUserFunc func(ctx context.Context, userID string) ([]domain.PurchaseWithGuide, error)
}

func (m *mockPurchaseRepo) Create(ctx context.Context, purchase *domain.Purchase) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, purchase)
	}
	return nil
}

func (m *mockPurchaseRepo) GetByUserAndGuide(ctx context.Context, userID, guideID string) (*domain.Purchase, error) {
	if m.GetByUserAndGuideFunc != nil {
		return m.GetByUserAndGuideFunc(ctx, userID, guideID)
	}
	return nil, pgx.ErrNoRows
}

func (m *mockPurchaseRepo) ListCompletedByUser(ctx context.Context, userID string) ([]domain.PurchaseWithGuide, error) {
	if m.ListCompletedByUserFunc != nil {
		return m.ListCompletedByUserFunc(ctx, userID)
	}
	return nil, nil
}

type mockGateway struct {
	CreateCheckoutSessionFunc func(ctx context.Context, params payments.CheckoutParams) (*payments.CheckoutSession, error)
	VerifyNotificationFunc    func(payload []byte, signature string) (*payments.Notification, error)

	checkoutCalls int
}

func (m *mockGateway) CreateCheckoutSession(ctx context.Context, params payments.CheckoutParams) (*payments.CheckoutSession, error) {
	m.checkoutCalls++
	if m.CreateCheckoutSessionFunc != nil {
		return m.CreateCheckoutSessionFunc(ctx, params)
	}
	return &payments.CheckoutSession{ID: "cs_test", URL: "https://checkout.example/cs_test"}, nil
}

func (m *mockGateway) VerifyNotification(payload []byte, signature string) (*payments.Notification, error) {
	if m.VerifyNotificationFunc != nil {
		return m.VerifyNotificationFunc(payload, signature)
	}
	return nil, nil
}

// recordingDispatcher captures published events for assertions.
type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) published() []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]events.Event{}, d.events...)
}
