package domain

import (
	"encoding/json"
	"time"
)

// WebhookEvent is a verified webhook delivery
type WebhookEvent struct {
	ID         string          `json:"id"` // X-Shopify-Webhook-Id
	Topic      string          `json:"topic"`
	Shop       string          `json:"shop"`
	Payload    json.RawMessage `json:"payload"`
	ReceivedAt time.Time       `json:"received_at"`
}

