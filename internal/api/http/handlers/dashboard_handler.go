package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/guide-store/internal/api/dto"
	"github.com/spec-kit/guide-store/internal/auth"
	"github.com/spec-kit/guide-store/internal/service"
	apperrors "github.com/spec-kit/guide-store/pkg/util/errorutil"
)

// DashboardHandler serves the signed-in user's profile and owned guides.
type DashboardHandler struct {
	purchases *service.PurchaseService
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(purchaseService *service.PurchaseService) *DashboardHandler {
	return &DashboardHandler{purchases: purchaseService}
}

// Overview GET /api/dashboard.
func (h *DashboardHandler) Overview(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("session required")
	}

	owned, err := h.purchases.ListUserPurchases(c.Context(), principal.User.ID)
	if err != nil {
		return err
	}

	items := make([]dto.PurchaseResponse, 0, len(owned))
	for i := range owned {
		item := &owned[i]
		items = append(items, dto.PurchaseResponse{
			ID:           item.Purchase.ID,
			Guide:        guideSummary(&item.Guide),
			Amount:       item.Purchase.Amount,
			Currency:     item.Purchase.Currency,
			PriceDisplay: dto.FormatPrice(item.Purchase.Amount, item.Purchase.Currency),
			PurchasedAt:  item.Purchase.CreatedAt,
		})
	}

	return c.JSON(fiber.Map{"data": dto.DashboardResponse{
		User:      userResponse(principal.User),
		Purchases: items,
	}})
}
