package shopify

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"archie-shopify-sync/internal/domain"
	"archie-shopify-sync/internal/ports"
)

// TokenManager encrypts tokens for storage and checks them against the shop
type TokenManager struct {
	encryptionSvc ports.EncryptionService
	client        ports.APIClient
	logger        zerolog.Logger
}

// NewTokenManager creates a new token manager. client may be nil when only
// encryption is needed.
func NewTokenManager(encryptionSvc ports.EncryptionService, client ports.APIClient, logger zerolog.Logger) *TokenManager {
	return &TokenManager{
		encryptionSvc: encryptionSvc,
		client:        client,
		logger:        logger,
	}
}

// EncryptToken encrypts an access token before storage
func (tm *TokenManager) EncryptToken(token string) (string, error) {
	if token == "" {
		return "", fmt.Errorf("token cannot be empty")
	}
	return tm.encryptionSvc.Encrypt(token)
}

// DecryptToken decrypts an access token after retrieval
func (tm *TokenManager) DecryptToken(encryptedToken string) (string, error) {
	if encryptedToken == "" {
		return "", fmt.Errorf("encrypted token cannot be empty")
	}
	return tm.encryptionSvc.Decrypt(encryptedToken)
}

// ValidateToken checks a token with a shop profile read. Shopify access
// tokens don't expire, so only a 401 or 403 marks one invalid; other failures
// are logged and the token is assumed valid.
func (tm *TokenManager) ValidateToken(ctx context.Context, token string, shopDomain string) (bool, error) {
	if token == "" {
		return false, fmt.Errorf("token is empty")
	}
	if shopDomain == "" {
		return false, fmt.Errorf("shop domain is required for token validation")
	}
	if tm.client == nil {
		return false, fmt.Errorf("token validation requires an API client")
	}

	_, err := tm.client.FetchShop(ctx, shopDomain, token)
	if err == nil {
		tm.logger.Debug().
			Str("shop", shopDomain).
			Msg("Token validation successful")
		return true, nil
	}

	var te *domain.TransportError
	if errors.As(err, &te) && (te.Status == http.StatusUnauthorized || te.Status == http.StatusForbidden) {
		tm.logger.Warn().
			Int("status", te.Status).
			Str("shop", shopDomain).
			Msg("Token validation failed: token is invalid or revoked")
		return false, nil
	}

	tm.logger.Warn().
		Err(err).
		Str("shop", shopDomain).
		Msg("Token validation encountered an error (assuming token is valid)")
	return true, nil
}
