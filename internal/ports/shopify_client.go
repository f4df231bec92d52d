package ports

import (
	"context"
	"encoding/json"

	"archie-shopify-sync/internal/domain"
)

// APIClient defines the Shopify Admin API reads the sync engine depends on.
// Every failure is returned as a *domain.TransportError.
type APIClient interface {
	// FetchPage returns one page of a collection after req.After
	FetchPage(ctx context.Context, shop, accessToken string, req domain.PageRequest) (*domain.Page, error)

	// FetchShop returns the raw shop profile node
	FetchShop(ctx context.Context, shop, accessToken string) (json.RawMessage, error)
}
