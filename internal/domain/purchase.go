package domain

import "time"

// PurchaseStatus enumerates payment outcomes.
type PurchaseStatus string

const (
	PurchaseStatusPending   PurchaseStatus = "pending"
	PurchaseStatusCompleted PurchaseStatus = "completed"
	PurchaseStatusFailed    PurchaseStatus = "failed"
)

// Purchase grants a user access to a guide. Rows are created only by the
// webhook recorder after the gateway confirms payment, never speculatively.
// At most one purchase exists per (user, guide) pair.
type Purchase struct {
	ID              string
	UserID          string
	GuideID         string
	StripePaymentID string
	Status          PurchaseStatus
	Amount          int64 // minor currency units, captured at time of sale
	Currency        string
	CreatedAt       time.Time
}

// PurchaseWithGuide joins a purchase with its guide for dashboard listings.
type PurchaseWithGuide struct {
	Purchase Purchase
	Guide    Guide
}
