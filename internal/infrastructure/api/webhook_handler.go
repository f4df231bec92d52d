package api

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/rs/zerolog"
)

const maxWebhookBody = 1 << 20

// WebhookVerifier checks a delivery's HMAC signature. goshopify.App
// satisfies it.
type WebhookVerifier interface {
	VerifyWebhookRequest(r *http.Request) bool
}

// WebhookProcessor dispatches a verified delivery
type WebhookProcessor interface {
	ProcessWebhook(ctx context.Context, id, topic, shop string, payload []byte) error
}

// WebhookHandler receives Shopify webhook deliveries
type WebhookHandler struct {
	verifier  WebhookVerifier
	processor WebhookProcessor
	logger    zerolog.Logger
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(verifier WebhookVerifier, processor WebhookProcessor, logger zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{
		verifier:  verifier,
		processor: processor,
		logger:    logger,
	}
}

// AppUninstalled handles POST /webhooks/app-uninstalled
func (h *WebhookHandler) AppUninstalled(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}
	r.Body = io.NopCloser(bytes.NewReader(payload))

	if !h.verifier.VerifyWebhookRequest(r) {
		h.logger.Warn().
			Str("shop", r.Header.Get("X-Shopify-Shop-Domain")).
			Msg("Webhook signature verification failed")
		writeError(w, http.StatusUnauthorized, "invalid signature")
		return
	}

	topic := r.Header.Get("X-Shopify-Topic")
	if topic == "" {
		topic = "app/uninstalled"
	}
	shop := r.Header.Get("X-Shopify-Shop-Domain")
	id := r.Header.Get("X-Shopify-Webhook-Id")

	if err := h.processor.ProcessWebhook(r.Context(), id, topic, shop, payload); err != nil {
		h.logger.Error().Err(err).Str("topic", topic).Str("shop", shop).Msg("Failed to process webhook")
		// a 5xx makes Shopify redeliver
		writeError(w, http.StatusInternalServerError, "failed to process webhook")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"received": "true"})
}
