package dto

import (
	"fmt"
	"strings"
	"time"
)

// GuideSummary is the listing view: no content body.
type GuideSummary struct {
	ID           string    `json:"id"`
	Slug         string    `json:"slug"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	CoverImage   string    `json:"cover_image"`
	Price        int64     `json:"price"`
	Currency     string    `json:"currency"`
	PriceDisplay string    `json:"price_display"`
	CreatedAt    time.Time `json:"created_at"`
}

// GuideDetailResponse includes the content body only for buyers.
type GuideDetailResponse struct {
	GuideSummary
	HasAccess bool   `json:"has_access"`
	Content   string `json:"content,omitempty"`
}

// FormatPrice renders a minor-unit amount for display, e.g. 1999 -> "$19.99".
func FormatPrice(amount int64, currency string) string {
	value := float64(amount) / 100
	switch strings.ToLower(currency) {
	case "usd":
		return fmt.Sprintf("$%.2f", value)
	case "eur":
		return fmt.Sprintf("€%.2f", value)
	default:
		return fmt.Sprintf("%.2f %s", value, strings.ToUpper(currency))
	}
}
