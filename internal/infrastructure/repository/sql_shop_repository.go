package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/huandu/go-sqlbuilder"
	"github.com/jmoiron/sqlx"

	"archie-shopify-sync/internal/domain"
	"archie-shopify-sync/internal/infrastructure/repository/entity"
)

const shopsTable = "shops"

// SQLShopRepository stores one shop profile row per shop domain
type SQLShopRepository struct {
	db     *sqlx.DB
	flavor sqlbuilder.Flavor
}

func (r *SQLShopRepository) FindByDomain(ctx context.Context, shopDomain string) (*domain.Shop, error) {
	sb := r.flavor.NewSelectBuilder()
	sb.Select(withID(entity.ShopColumns)...)
	sb.From(shopsTable)
	sb.Where(sb.Equal("shop_domain", shopDomain))
	sb.Limit(1)

	query, args := sb.Build()
	var row entity.ShopRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get shop %s: %w", shopDomain, err)
	}
	return row.ToDomain()
}

func (r *SQLShopRepository) Insert(ctx context.Context, shop *domain.Shop) (int64, error) {
	row, err := entity.ShopRowFromDomain(shop)
	if err != nil {
		return 0, err
	}
	id, err := insertReturningID(ctx, r.db, r.flavor, shopsTable, entity.ShopColumns, row.Values())
	if err != nil {
		return 0, fmt.Errorf("failed to insert shop %s: %w", shop.ShopDomain, err)
	}
	return id, nil
}

func (r *SQLShopRepository) Update(ctx context.Context, shop *domain.Shop) error {
	row, err := entity.ShopRowFromDomain(shop)
	if err != nil {
		return err
	}
	if err := updateByID(ctx, r.db, r.flavor, shopsTable, shop.ID, entity.ShopColumns, row.Values()); err != nil {
		return fmt.Errorf("failed to update shop %s: %w", shop.ShopDomain, err)
	}
	return nil
}
