package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/guide-store/internal/api/dto"
	"github.com/spec-kit/guide-store/internal/auth"
	"github.com/spec-kit/guide-store/internal/service"
	apperrors "github.com/spec-kit/guide-store/pkg/util/errorutil"
)

// CheckoutHandler opens payment gateway transactions.
type CheckoutHandler struct {
	service *service.CheckoutService
}

// NewCheckoutHandler constructs handler.
func NewCheckoutHandler(checkoutService *service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{service: checkoutService}
}

// Create POST /api/checkout.
func (h *CheckoutHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("session required")
	}

	var req dto.CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.GuideID == "" {
		return apperrors.NewValidationError("guideId required", nil)
	}

	session, err := h.service.InitiateCheckout(c.Context(), principal.User.ID, req.GuideID)
	if err != nil {
		return err
	}
	return c.JSON(dto.CheckoutResponse{SessionID: session.ID, URL: session.URL})
}
