package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/guide-store/internal/service"
	apperrors "github.com/spec-kit/guide-store/pkg/util/errorutil"
)

// WebhookHandler receives asynchronous payment notifications.
type WebhookHandler struct {
	purchases *service.PurchaseService
}

// NewWebhookHandler constructs handler.
func NewWebhookHandler(purchaseService *service.PurchaseService) *WebhookHandler {
	return &WebhookHandler{purchases: purchaseService}
}

// HandleStripe POST /api/webhooks/stripe. The signature is computed over the
// exact request bytes, so the body is passed through unparsed.
func (h *WebhookHandler) HandleStripe(c *fiber.Ctx) error {
	signature := c.Get("Stripe-Signature")
	if signature == "" {
		return apperrors.NewInvalidSignature("missing signature header")
	}

	if err := h.purchases.HandlePaymentNotification(c.Context(), c.Body(), signature); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"received": true})
}
