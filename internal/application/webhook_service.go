package application

import (
	"context"
	"fmt"
	"time"

	"archie-shopify-sync/internal/domain"
	"archie-shopify-sync/internal/ports"

	"github.com/rs/zerolog"
)

// WebhookService dispatches verified webhook deliveries to their handlers
type WebhookService struct {
	handlers []ports.WebhookHandler
	logger   zerolog.Logger
}

// NewWebhookService creates a new webhook service
func NewWebhookService(logger zerolog.Logger, handlers ...ports.WebhookHandler) *WebhookService {
	return &WebhookService{
		handlers: handlers,
		logger:   logger,
	}
}

// ProcessWebhook runs every handler accepting the topic. Topics nobody
// handles are acknowledged and ignored.
func (s *WebhookService) ProcessWebhook(ctx context.Context, id, topic, shop string, payload []byte) error {
	event := &domain.WebhookEvent{
		ID:         id,
		Topic:      topic,
		Shop:       shop,
		Payload:    payload,
		ReceivedAt: time.Now().UTC(),
	}

	handled := 0
	for _, h := range s.handlers {
		if !h.CanHandle(topic) {
			continue
		}
		handled++
		if err := h.Handle(ctx, event); err != nil {
			s.logger.Error().Err(err).Str("topic", topic).Str("shop", shop).Msg("Webhook handler failed")
			return fmt.Errorf("failed to handle %s webhook: %w", topic, err)
		}
	}

	s.logger.Info().Str("topic", topic).Str("shop", shop).Int("handlers", handled).Msg("Webhook processed")
	return nil
}
