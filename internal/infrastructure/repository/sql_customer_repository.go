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

const customersTable = "customers"

// SQLCustomerRepository stores customers
type SQLCustomerRepository struct {
	db     *sqlx.DB
	flavor sqlbuilder.Flavor
}

func (r *SQLCustomerRepository) FindByExternalID(ctx context.Context, shopDomain, externalID string) (*domain.Customer, error) {
	sb := r.flavor.NewSelectBuilder()
	sb.Select(withID(entity.CustomerColumns)...)
	sb.From(customersTable)
	sb.Where(sb.Equal("shop_domain", shopDomain), sb.Equal("external_id", externalID))
	sb.Limit(1)

	query, args := sb.Build()
	var row entity.CustomerRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get customer %s: %w", externalID, err)
	}
	return row.ToDomain()
}

func (r *SQLCustomerRepository) Insert(ctx context.Context, c *domain.Customer) (int64, error) {
	row, err := entity.CustomerRowFromDomain(c)
	if err != nil {
		return 0, err
	}
	id, err := insertReturningID(ctx, r.db, r.flavor, customersTable, entity.CustomerColumns, row.Values())
	if err != nil {
		return 0, fmt.Errorf("failed to insert customer %s: %w", c.ExternalID, err)
	}
	return id, nil
}

func (r *SQLCustomerRepository) Update(ctx context.Context, c *domain.Customer) error {
	row, err := entity.CustomerRowFromDomain(c)
	if err != nil {
		return err
	}
	if err := updateByID(ctx, r.db, r.flavor, customersTable, c.ID, entity.CustomerColumns, row.Values()); err != nil {
		return fmt.Errorf("failed to update customer %s: %w", c.ExternalID, err)
	}
	return nil
}
