package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"archie-shopify-sync/internal/domain"
	"archie-shopify-sync/internal/ports"

	"github.com/rs/zerolog"
)

// ErrInvalidToken is returned when Shopify rejects a token being installed
var ErrInvalidToken = errors.New("access token rejected by shopify")

// TokenValidator checks a token against the shop it claims to belong to
type TokenValidator interface {
	ValidateToken(ctx context.Context, token, shopDomain string) (bool, error)
}

// TokenService installs and revokes shop access tokens
type TokenService struct {
	store     ports.TokenStore
	validator TokenValidator
	logger    zerolog.Logger
}

// NewTokenService creates a new token service. validator may be nil to skip
// validation.
func NewTokenService(store ports.TokenStore, validator TokenValidator, logger zerolog.Logger) *TokenService {
	return &TokenService{
		store:     store,
		validator: validator,
		logger:    logger,
	}
}

// InstallToken validates and stores the shop's offline token
func (s *TokenService) InstallToken(ctx context.Context, shop, token string, scopes []string) error {
	shop = strings.TrimSpace(shop)
	if shop == "" || token == "" {
		return fmt.Errorf("shop and token are required")
	}

	if s.validator != nil {
		ok, err := s.validator.ValidateToken(ctx, token, shop)
		if err != nil {
			return fmt.Errorf("failed to validate token: %w", err)
		}
		if !ok {
			return fmt.Errorf("shop %s: %w", shop, ErrInvalidToken)
		}
	}

	if err := s.store.SaveToken(ctx, &domain.ShopToken{
		ShopDomain:  shop,
		AccessToken: token,
		Scopes:      scopes,
		InstalledAt: time.Now().UTC(),
	}); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	s.logger.Info().Str("shop", shop).Strs("scopes", scopes).Msg("Access token installed")
	return nil
}

// RevokeToken invalidates the shop's token
func (s *TokenService) RevokeToken(ctx context.Context, shop string) error {
	if err := s.store.RevokeToken(ctx, shop); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	s.logger.Info().Str("shop", shop).Msg("Access token revoked")
	return nil
}
