package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered    EventType = "user_registered"
	EventPurchaseCompleted EventType = "purchase_completed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	UserID    string      `json:"user_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	Email string `json:"email"`
}

// PurchaseCompletedPayload payload.
type PurchaseCompletedPayload struct {
	PurchaseID string `json:"purchase_id"`
	GuideID    string `json:"guide_id"`
	GuideTitle string `json:"guide_title"`
	Amount     int64  `json:"amount"`
	Currency   string `json:"currency"`
}
