package webhook_handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"archie-shopify-sync/internal/domain"
	"archie-shopify-sync/internal/ports"

	"github.com/rs/zerolog"
)

// SyncCanceller stops an active sync run
type SyncCanceller interface {
	Cancel(shop string, entity domain.EntityType) bool
}

// AppUninstalledHandler handles app uninstalled webhook events
type AppUninstalledHandler struct {
	logger zerolog.Logger
	tokens ports.TokenStore
	syncs  SyncCanceller
}

// NewAppUninstalledHandler creates a new app uninstalled webhook handler.
// syncs may be nil.
func NewAppUninstalledHandler(
	logger zerolog.Logger,
	tokens ports.TokenStore,
	syncs SyncCanceller,
) *AppUninstalledHandler {
	return &AppUninstalledHandler{
		logger: logger,
		tokens: tokens,
		syncs:  syncs,
	}
}

// CanHandle returns true if this handler can process the given topic
func (h *AppUninstalledHandler) CanHandle(topic string) bool {
	return topic == "app/uninstalled"
}

// Handle revokes the shop's access token and stops its running syncs.
// Synced rows are kept.
func (h *AppUninstalledHandler) Handle(ctx context.Context, event *domain.WebhookEvent) error {
	var shopData struct {
		Domain          string `json:"domain"`
		MyshopifyDomain string `json:"myshopify_domain"`
	}
	if len(event.Payload) > 0 {
		if err := json.Unmarshal(event.Payload, &shopData); err != nil {
			return fmt.Errorf("failed to parse app uninstalled webhook payload: %w", err)
		}
	}

	shopDomain := event.Shop
	if shopDomain == "" {
		shopDomain = shopData.MyshopifyDomain
	}
	if shopDomain == "" {
		shopDomain = shopData.Domain
	}
	if shopDomain == "" {
		return fmt.Errorf("app uninstalled webhook carries no shop domain")
	}

	h.logger.Info().
		Str("topic", event.Topic).
		Str("shop", shopDomain).
		Msg("Processing app uninstalled webhook event")

	if err := h.tokens.RevokeToken(ctx, shopDomain); err != nil {
		return fmt.Errorf("failed to revoke access token: %w", err)
	}

	if h.syncs != nil {
		for _, entity := range domain.SyncOrder {
			if h.syncs.Cancel(shopDomain, entity) {
				h.logger.Info().Str("shop", shopDomain).Str("entityType", string(entity)).Msg("Cancelled sync run of uninstalled shop")
			}
		}
	}

	h.logger.Info().Str("shop", shopDomain).Msg("App uninstalled - access token revoked")
	return nil
}
