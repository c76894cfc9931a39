package payments

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
	"github.com/stripe/stripe-go/v81/webhook"

	"github.com/spec-kit/guide-store/internal/config"
)

type stripeGateway struct {
	api           *client.API
	webhookSecret string
}

// NewStripeGateway builds a Gateway backed by the Stripe API.
func NewStripeGateway(cfg config.StripeConfig) Gateway {
	api := &client.API{}
	api.Init(cfg.SecretKey, nil)
	return &stripeGateway{api: api, webhookSecret: cfg.WebhookSecret}
}

// CreateCheckoutSession opens a hosted Checkout Session for a single guide.
// The user and guide identifiers ride along as metadata so the completion
// webhook can correlate the payment back to a purchase.
func (g *stripeGateway) CreateCheckoutSession(ctx context.Context, p CheckoutParams) (*CheckoutSession, error) {
	productData := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
		Name: stripe.String(p.Title),
	}
	if p.Description != "" {
		productData.Description = stripe.String(p.Description)
	}
	if p.CoverImage != "" {
		productData.Images = stripe.StringSlice([]string{p.CoverImage})
	}

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:    stripe.String(p.Currency),
					UnitAmount:  stripe.Int64(p.Amount),
					ProductData: productData,
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(p.SuccessURL),
		CancelURL:  stripe.String(p.CancelURL),
	}
	params.Context = ctx
	params.AddMetadata("userId", p.UserID)
	params.AddMetadata("guideId", p.GuideID)

	sess, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	return &CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

// VerifyNotification checks the webhook signature over the exact payload
// bytes and extracts the fields the recorder needs. Verification must happen
// before the payload is trusted in any way.
func (g *stripeGateway) VerifyNotification(payload []byte, signature string) (*Notification, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("verify webhook: %w", err)
	}

	notification := &Notification{Type: string(event.Type)}
	if notification.Type != EventCheckoutCompleted {
		return notification, nil
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return nil, fmt.Errorf("decode checkout session: %w", err)
	}
	if sess.PaymentIntent != nil {
		notification.PaymentID = sess.PaymentIntent.ID
	}
	notification.Amount = sess.AmountTotal
	notification.Currency = string(sess.Currency)
	notification.Metadata = sess.Metadata
	return notification, nil
}
