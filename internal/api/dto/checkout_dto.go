package dto

import "time"

// CheckoutRequest payload.
type CheckoutRequest struct {
	GuideID string `json:"guideId"`
}

// CheckoutResponse returns the gateway transaction to redirect to.
type CheckoutResponse struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url,omitempty"`
}

// PurchaseResponse is a dashboard line item.
type PurchaseResponse struct {
	ID           string       `json:"id"`
	Guide        GuideSummary `json:"guide"`
	Amount       int64        `json:"amount"`
	Currency     string       `json:"currency"`
	PriceDisplay string       `json:"price_display"`
	PurchasedAt  time.Time    `json:"purchased_at"`
}

// DashboardResponse bundles the profile with owned guides.
type DashboardResponse struct {
	User      UserResponse       `json:"user"`
	Purchases []PurchaseResponse `json:"purchases"`
}
