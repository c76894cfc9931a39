package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/guide-store/internal/domain"
	"github.com/spec-kit/guide-store/internal/events"
	"github.com/spec-kit/guide-store/internal/payments"
	"github.com/spec-kit/guide-store/internal/repository"
	apperrors "github.com/spec-kit/guide-store/pkg/util/errorutil"
)

// PurchaseService records verified payment notifications and answers access
// questions for guide content.
type PurchaseService struct {
	users      repository.UserRepository
	guides     repository.GuideRepository
	purchases  repository.PurchaseRepository
	gateway    payments.Gateway
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// PurchaseDependencies bundles requirements for the purchase service.
type PurchaseDependencies struct {
	UserRepo     repository.UserRepository
	GuideRepo    repository.GuideRepository
	PurchaseRepo repository.PurchaseRepository
	Gateway      payments.Gateway
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
}

// NewPurchaseService constructs the service.
func NewPurchaseService(deps PurchaseDependencies) *PurchaseService {
	return &PurchaseService{
		users:      deps.UserRepo,
		guides:     deps.GuideRepo,
		purchases:  deps.PurchaseRepo,
		gateway:    deps.Gateway,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// HandlePaymentNotification verifies a webhook delivery and records the
// purchase. Order matters: signature verification first, then metadata
// validation, then the idempotent insert. A duplicate delivery is a no-op
// success so the gateway stops retrying; a real persistence failure is
// surfaced as a retryable error.
func (s *PurchaseService) HandlePaymentNotification(ctx context.Context, payload []byte, signature string) error {
	notification, err := s.gateway.VerifyNotification(payload, signature)
	if err != nil {
		return apperrors.NewInvalidSignature("webhook signature verification failed")
	}

	if notification.Type != payments.EventCheckoutCompleted {
		// acknowledged, no side effect
		return nil
	}

	userID := notification.Metadata["userId"]
	guideID := notification.Metadata["guideId"]
	if userID == "" || guideID == "" {
		return apperrors.NewInvalidSignature("event metadata missing user or guide reference")
	}

	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewInvalidSignature("event metadata references unknown user")
		}
		return apperrors.NewPersistenceError(err)
	}
	guide, err := s.guides.GetByID(ctx, guideID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewInvalidSignature("event metadata references unknown guide")
		}
		return apperrors.NewPersistenceError(err)
	}

	// The recorded amount is the verified transaction amount, i.e. the price
	// at checkout time. A mismatch against the current guide price is legal
	// (price edits) but worth an audit trail.
	if notification.Amount != guide.Price || notification.Currency != guide.Currency {
		s.logger.Warn("purchase amount differs from current guide price",
			zap.String("guide_id", guideID),
			zap.Int64("paid_amount", notification.Amount),
			zap.String("paid_currency", notification.Currency),
			zap.Int64("guide_price", guide.Price),
			zap.String("guide_currency", guide.Currency))
	}

	purchase := &domain.Purchase{
		UserID:          userID,
		GuideID:         guideID,
		StripePaymentID: notification.PaymentID,
		Status:          domain.PurchaseStatusCompleted,
		Amount:          notification.Amount,
		Currency:        notification.Currency,
	}
	if err := s.purchases.Create(ctx, purchase); err != nil {
		if err == repository.ErrDuplicatePurchase {
			s.logger.Info("duplicate payment notification ignored",
				zap.String("user_id", userID),
				zap.String("guide_id", guideID))
			return nil
		}
		return apperrors.NewPersistenceError(err)
	}

	s.logger.Info("purchase recorded",
		zap.String("purchase_id", purchase.ID),
		zap.String("user_id", userID),
		zap.String("guide_id", guideID))

	s.publishCompleted(ctx, purchase, guide)
	return nil
}

// CanView reports whether the user holds a completed purchase for the guide.
// Anonymous callers (empty userID) never have access.
func (s *PurchaseService) CanView(ctx context.Context, userID, guideID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	purchase, err := s.purchases.GetByUserAndGuide(ctx, userID, guideID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return false, nil
		}
		return false, err
	}
	return purchase.Status == domain.PurchaseStatusCompleted, nil
}

// ListUserPurchases returns the user's completed purchases with their
// guides, newest first.
func (s *PurchaseService) ListUserPurchases(ctx context.Context, userID string) ([]domain.PurchaseWithGuide, error) {
	return s.purchases.ListCompletedByUser(ctx, userID)
}

func (s *PurchaseService) publishCompleted(ctx context.Context, purchase *domain.Purchase, guide *domain.Guide) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventPurchaseCompleted,
		UserID:    purchase.UserID,
		Timestamp: time.Now(),
		Payload: events.PurchaseCompletedPayload{
			PurchaseID: purchase.ID,
			GuideID:    purchase.GuideID,
			GuideTitle: guide.Title,
			Amount:     purchase.Amount,
			Currency:   purchase.Currency,
		},
	})
}
