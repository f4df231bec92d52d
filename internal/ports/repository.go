package ports

import (
	"context"

	"archie-shopify-sync/internal/domain"
)

// Find methods return (nil, nil) when no row matches the natural key.

// ShopRepository persists shop profile snapshots
type ShopRepository interface {
	FindByDomain(ctx context.Context, shopDomain string) (*domain.Shop, error)
	Insert(ctx context.Context, shop *domain.Shop) (int64, error)
	Update(ctx context.Context, shop *domain.Shop) error
}

// ProductRepository persists products and their variants
type ProductRepository interface {
	FindByExternalID(ctx context.Context, shopDomain, externalID string) (*domain.Product, error)
	Insert(ctx context.Context, product *domain.Product) (int64, error)
	Update(ctx context.Context, product *domain.Product) error

	FindVariantByExternalID(ctx context.Context, shopDomain, externalID string) (*domain.ProductVariant, error)
	InsertVariant(ctx context.Context, variant *domain.ProductVariant) (int64, error)
	UpdateVariant(ctx context.Context, variant *domain.ProductVariant) error
	ListVariants(ctx context.Context, productID int64) ([]*domain.ProductVariant, error)
}

// CustomerRepository persists customers
type CustomerRepository interface {
	FindByExternalID(ctx context.Context, shopDomain, externalID string) (*domain.Customer, error)
	Insert(ctx context.Context, customer *domain.Customer) (int64, error)
	Update(ctx context.Context, customer *domain.Customer) error
}

// OrderRepository persists orders and their line items
type OrderRepository interface {
	FindByExternalID(ctx context.Context, shopDomain, externalID string) (*domain.Order, error)
	Insert(ctx context.Context, order *domain.Order) (int64, error)
	Update(ctx context.Context, order *domain.Order) error

	// ReplaceLineItems deletes every line item of the order and inserts items, atomically
	ReplaceLineItems(ctx context.Context, orderID int64, items []domain.OrderLineItem) error
	ListLineItems(ctx context.Context, orderID int64) ([]*domain.OrderLineItem, error)
}

// NaturalKeyLookup maps a natural key to a local row id
type NaturalKeyLookup interface {
	LookupID(ctx context.Context, shopDomain string, entity domain.ResourceType, externalID string) (int64, bool, error)
}

// SyncRunRepository persists sync runs
type SyncRunRepository interface {
	Create(ctx context.Context, run *domain.SyncRun) (int64, error)
	Update(ctx context.Context, run *domain.SyncRun) error
	Get(ctx context.Context, id int64) (*domain.SyncRun, error)

	// Latest returns the most recent run for the pair, or nil
	Latest(ctx context.Context, shopDomain string, entity domain.EntityType) (*domain.SyncRun, error)
	List(ctx context.Context, filter domain.SyncRunFilter) ([]*domain.SyncRun, error)
}
