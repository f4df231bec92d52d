package ports

import (
	"context"

	"archie-shopify-sync/internal/domain"
)

// IntegrationRepository defines the interface for integration persistence
type IntegrationRepository interface {
	// Create creates a new integration
	Create(ctx context.Context, integration *domain.Integration) error

	// GetByKey retrieves an integration by its key
	GetByKey(ctx context.Context, key string) (*domain.Integration, error)

	// ListByShop retrieves every integration of a shop
	ListByShop(ctx context.Context, shopDomain string) ([]*domain.Integration, error)

	// Delete deletes an integration by key
	Delete(ctx context.Context, key string) error
}
