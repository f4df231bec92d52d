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

const (
	productsTable = "products"
	variantsTable = "product_variants"
)

// SQLProductRepository stores products and their variants
type SQLProductRepository struct {
	db     *sqlx.DB
	flavor sqlbuilder.Flavor
}

func (r *SQLProductRepository) FindByExternalID(ctx context.Context, shopDomain, externalID string) (*domain.Product, error) {
	sb := r.flavor.NewSelectBuilder()
	sb.Select(withID(entity.ProductColumns)...)
	sb.From(productsTable)
	sb.Where(sb.Equal("shop_domain", shopDomain), sb.Equal("external_id", externalID))
	sb.Limit(1)

	query, args := sb.Build()
	var row entity.ProductRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get product %s: %w", externalID, err)
	}
	return row.ToDomain()
}

func (r *SQLProductRepository) Insert(ctx context.Context, p *domain.Product) (int64, error) {
	row, err := entity.ProductRowFromDomain(p)
	if err != nil {
		return 0, err
	}
	id, err := insertReturningID(ctx, r.db, r.flavor, productsTable, entity.ProductColumns, row.Values())
	if err != nil {
		return 0, fmt.Errorf("failed to insert product %s: %w", p.ExternalID, err)
	}
	return id, nil
}

func (r *SQLProductRepository) Update(ctx context.Context, p *domain.Product) error {
	row, err := entity.ProductRowFromDomain(p)
	if err != nil {
		return err
	}
	if err := updateByID(ctx, r.db, r.flavor, productsTable, p.ID, entity.ProductColumns, row.Values()); err != nil {
		return fmt.Errorf("failed to update product %s: %w", p.ExternalID, err)
	}
	return nil
}

func (r *SQLProductRepository) FindVariantByExternalID(ctx context.Context, shopDomain, externalID string) (*domain.ProductVariant, error) {
	sb := r.flavor.NewSelectBuilder()
	sb.Select(withID(entity.VariantColumns)...)
	sb.From(variantsTable)
	sb.Where(sb.Equal("shop_domain", shopDomain), sb.Equal("external_id", externalID))
	sb.Limit(1)

	query, args := sb.Build()
	var row entity.VariantRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get variant %s: %w", externalID, err)
	}
	return row.ToDomain(), nil
}

func (r *SQLProductRepository) InsertVariant(ctx context.Context, v *domain.ProductVariant) (int64, error) {
	row := entity.VariantRowFromDomain(v)
	id, err := insertReturningID(ctx, r.db, r.flavor, variantsTable, entity.VariantColumns, row.Values())
	if err != nil {
		return 0, fmt.Errorf("failed to insert variant %s: %w", v.ExternalID, err)
	}
	return id, nil
}

func (r *SQLProductRepository) UpdateVariant(ctx context.Context, v *domain.ProductVariant) error {
	row := entity.VariantRowFromDomain(v)
	if err := updateByID(ctx, r.db, r.flavor, variantsTable, v.ID, entity.VariantColumns, row.Values()); err != nil {
		return fmt.Errorf("failed to update variant %s: %w", v.ExternalID, err)
	}
	return nil
}

func (r *SQLProductRepository) ListVariants(ctx context.Context, productID int64) ([]*domain.ProductVariant, error) {
	sb := r.flavor.NewSelectBuilder()
	sb.Select(withID(entity.VariantColumns)...)
	sb.From(variantsTable)
	sb.Where(sb.Equal("product_id", productID))
	sb.OrderBy("id")

	query, args := sb.Build()
	var rows []entity.VariantRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list variants of product %d: %w", productID, err)
	}

	variants := make([]*domain.ProductVariant, 0, len(rows))
	for i := range rows {
		variants = append(variants, rows[i].ToDomain())
	}
	return variants, nil
}
