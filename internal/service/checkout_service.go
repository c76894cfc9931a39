package service

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/guide-store/internal/domain"
	"github.com/spec-kit/guide-store/internal/payments"
	"github.com/spec-kit/guide-store/internal/repository"
	apperrors "github.com/spec-kit/guide-store/pkg/util/errorutil"
)

// CheckoutService validates purchase eligibility and opens gateway
// transactions. It never writes local state; purchases exist only after the
// gateway confirms payment through the webhook.
type CheckoutService struct {
	guides    repository.GuideRepository
	purchases repository.PurchaseRepository
	gateway   payments.Gateway
	baseURL   string
}

// NewCheckoutService constructs the service.
func NewCheckoutService(guides repository.GuideRepository, purchases repository.PurchaseRepository, gateway payments.Gateway, publicBaseURL string) *CheckoutService {
	return &CheckoutService{
		guides:    guides,
		purchases: purchases,
		gateway:   gateway,
		baseURL:   publicBaseURL,
	}
}

// InitiateCheckout opens a hosted checkout for the guide on behalf of the
// user. Eligibility checks run before any gateway call.
func (s *CheckoutService) InitiateCheckout(ctx context.Context, userID, guideID string) (*payments.CheckoutSession, error) {
	guide, err := s.guides.GetByID(ctx, guideID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("guide")
		}
		return nil, err
	}
	if !guide.IsActive {
		return nil, apperrors.NewNotFound("guide")
	}

	existing, err := s.purchases.GetByUserAndGuide(ctx, userID, guideID)
	if err != nil && err != pgx.ErrNoRows {
		return nil, err
	}
	if existing != nil && existing.Status == domain.PurchaseStatusCompleted {
		return nil, apperrors.NewAlreadyPurchased(guideID)
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, payments.CheckoutParams{
		Title:       guide.Title,
		Description: guide.Description,
		CoverImage:  guide.CoverImage,
		Amount:      guide.Price,
		Currency:    guide.Currency,
		SuccessURL:  s.baseURL + "/dashboard?success=true",
		CancelURL:   s.baseURL + "/?canceled=true",
		UserID:      userID,
		GuideID:     guideID,
	})
	if err != nil {
		return nil, apperrors.NewUpstreamError(err)
	}
	return session, nil
}
