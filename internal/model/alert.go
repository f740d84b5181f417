package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ContactTelegram is the only contact method the dashboard configures.
const ContactTelegram = "telegram"

// AlertRequest asks the tracker to notify when a product drops to TargetPrice.
type AlertRequest struct {
	ProductID     int64           `json:"product_id"`
	TargetPrice   decimal.Decimal `json:"target_price"`
	ContactMethod string          `json:"contact_method"`
	ContactValue  string          `json:"contact_value"`
}

// Alert is an alert record as stored by the tracker.
type Alert struct {
	ID            int64           `json:"id"`
	ProductID     int64           `json:"product_id"`
	TargetPrice   decimal.Decimal `json:"target_price"`
	ContactMethod string          `json:"contact_method"`
	ContactValue  string          `json:"contact_value"`
	IsActive      bool            `json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
	TriggeredAt   *time.Time      `json:"triggered_at,omitempty"`
}
