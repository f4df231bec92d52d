package application

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"archie-shopify-sync/internal/domain"
	"archie-shopify-sync/internal/ports"

	"github.com/rs/zerolog"
)

// EntityUpserter turns one raw remote record into a local create or update.
// Failures are returned inside the result, never as a panic or a separate error.
type EntityUpserter interface {
	Upsert(ctx context.Context, shop string, raw json.RawMessage) domain.UpsertResult
}

// now is the clock used for last_synced, created_at and updated_at
var now = func() time.Time { return time.Now().UTC() }

// ShopUpserter upserts the shop profile
type ShopUpserter struct {
	shops  ports.ShopRepository
	logger zerolog.Logger
}

// NewShopUpserter creates a new shop upserter
func NewShopUpserter(shops ports.ShopRepository, logger zerolog.Logger) *ShopUpserter {
	return &ShopUpserter{shops: shops, logger: logger}
}

// Upsert stores the shop node as the profile of shop
func (u *ShopUpserter) Upsert(ctx context.Context, shop string, raw json.RawMessage) domain.UpsertResult {
	var node shopNode
	if err := decodeNode(raw, &node); err != nil {
		return domain.UpsertFailed("", err)
	}
	externalID, err := domain.DecodeGID(node.ID, domain.ResourceShop)
	if err != nil {
		return domain.UpsertFailed(node.ID, err)
	}

	ts := now()
	record := &domain.Shop{
		ShopDomain: shop,
		ExternalID: externalID,
		Name:       node.Name,
		Email:      node.Email,
		Currency:   node.CurrencyCode,
		Timezone:   node.IanaTimezone,
		Country:    node.Country,
		Phone:      node.Phone,
		Address: domain.ShopAddress{
			Address1: node.Address1,
			Address2: node.Address2,
			City:     node.City,
			Province: node.Province,
			Zip:      node.Zip,
			Country:  node.Country,
		},
		RawData:    append(json.RawMessage(nil), raw...),
		LastSynced: ts,
		UpdatedAt:  ts,
	}
	if node.PrimaryDomain != nil {
		record.Domain = node.PrimaryDomain.Host
	}
	if node.Plan != nil {
		record.PlanName = node.Plan.DisplayName
	}

	existing, err := u.shops.FindByDomain(ctx, shop)
	if err != nil {
		return domain.UpsertFailed(externalID, fmt.Errorf("failed to find shop: %w", err))
	}

	if existing != nil {
		record.ID = existing.ID
		record.CreatedAt = existing.CreatedAt
		if err := u.shops.Update(ctx, record); err != nil {
			return domain.UpsertFailed(externalID, fmt.Errorf("failed to update shop: %w", err))
		}
		return domain.Upserted(externalID, record.ID, false)
	}

	record.CreatedAt = ts
	id, err := u.shops.Insert(ctx, record)
	if err != nil {
		return domain.UpsertFailed(externalID, fmt.Errorf("failed to insert shop: %w", err))
	}

	u.logger.Info().Str("shop", shop).Int64("shopId", id).Msg("Stored new shop profile")
	return domain.Upserted(externalID, id, true)
}
