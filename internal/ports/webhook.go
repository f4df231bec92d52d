package ports

import (
	"context"

	"archie-shopify-sync/internal/domain"
)

// WebhookHandler processes webhook events for the topics it accepts
type WebhookHandler interface {
	CanHandle(topic string) bool
	Handle(ctx context.Context, event *domain.WebhookEvent) error
}
