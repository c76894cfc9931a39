// Package payments wraps the external payment processor. Services depend on
// the Gateway interface; the Stripe implementation lives alongside it.
package payments

import "context"

// EventCheckoutCompleted is the notification type that finalizes a sale.
const EventCheckoutCompleted = "checkout.session.completed"

// CheckoutParams describes a hosted checkout transaction for one guide.
type CheckoutParams struct {
	Title       string
	Description string
	CoverImage  string
	Amount      int64 // minor currency units
	Currency    string
	SuccessURL  string
	CancelURL   string
	UserID      string
	GuideID     string
}

// CheckoutSession identifies the transaction the browser is redirected to.
type CheckoutSession struct {
	ID  string
	URL string
}

// Notification is a verified payment event. Metadata echoes the opaque
// values attached at checkout time (userId, guideId).
type Notification struct {
	Type      string
	PaymentID string
	Amount    int64
	Currency  string
	Metadata  map[string]string
}

// Gateway abstracts checkout creation and webhook verification.
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error)
	VerifyNotification(payload []byte, signature string) (*Notification, error)
}
