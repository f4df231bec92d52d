package api

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedWebhook struct {
	id, topic, shop string
	payload         string
}

type recordingProcessor struct {
	calls []recordedWebhook
	err   error
}

func (p *recordingProcessor) ProcessWebhook(_ context.Context, id, topic, shop string, payload []byte) error {
	p.calls = append(p.calls, recordedWebhook{id, topic, shop, string(payload)})
	return p.err
}

func sign(secret, body string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(body))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func webhookRequest(body, signature string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/app-uninstalled", strings.NewReader(body))
	req.Header.Set("X-Shopify-Hmac-Sha256", signature)
	req.Header.Set("X-Shopify-Topic", "app/uninstalled")
	req.Header.Set("X-Shopify-Shop-Domain", "acme.myshopify.com")
	req.Header.Set("X-Shopify-Webhook-Id", "wh-1")
	return req
}

func TestAppUninstalled(t *testing.T) {
	const secret = "hush"
	const body = `{"domain":"acme.com","myshopify_domain":"acme.myshopify.com"}`

	app := goshopify.App{ApiSecret: secret}

	t.Run("verified delivery is processed", func(t *testing.T) {
		proc := &recordingProcessor{}
		h := NewRouter(RouterConfig{Webhooks: NewWebhookHandler(app, proc, zerolog.Nop()), Metrics: http.NotFoundHandler()})

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, webhookRequest(body, sign(secret, body)))

		require.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, proc.calls, 1)
		assert.Equal(t, recordedWebhook{"wh-1", "app/uninstalled", "acme.myshopify.com", body}, proc.calls[0])
	})

	t.Run("bad signature is rejected", func(t *testing.T) {
		proc := &recordingProcessor{}
		h := NewRouter(RouterConfig{Webhooks: NewWebhookHandler(app, proc, zerolog.Nop()), Metrics: http.NotFoundHandler()})

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, webhookRequest(body, sign("wrong", body)))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Empty(t, proc.calls)
	})

	t.Run("handler failure asks for redelivery", func(t *testing.T) {
		proc := &recordingProcessor{err: errors.New("secrets manager down")}
		h := NewRouter(RouterConfig{Webhooks: NewWebhookHandler(app, proc, zerolog.Nop()), Metrics: http.NotFoundHandler()})

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, webhookRequest(body, sign(secret, body)))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
