package ports

import (
	"context"

	"archie-shopify-sync/internal/domain"
)

// TokenProvider resolves a shop's offline access token.
// It returns domain.ErrTokenNotFound when the shop has no active token.
type TokenProvider interface {
	GetAccessToken(ctx context.Context, shop string) (string, error)
}

// TokenStore is a TokenProvider that also owns the token lifecycle
type TokenStore interface {
	TokenProvider

	// SaveToken stores or replaces the shop's token and clears any revocation
	SaveToken(ctx context.Context, token *domain.ShopToken) error

	// RevokeToken invalidates the shop's token; revoking an unknown shop is a no-op
	RevokeToken(ctx context.Context, shop string) error
}

// EncryptionService encrypts tokens at rest
type EncryptionService interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}
