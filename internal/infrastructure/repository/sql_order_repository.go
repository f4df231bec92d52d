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
	ordersTable    = "orders"
	lineItemsTable = "order_line_items"
)

// SQLOrderRepository stores orders and their line items
type SQLOrderRepository struct {
	db     *sqlx.DB
	flavor sqlbuilder.Flavor
}

func (r *SQLOrderRepository) FindByExternalID(ctx context.Context, shopDomain, externalID string) (*domain.Order, error) {
	sb := r.flavor.NewSelectBuilder()
	sb.Select(withID(entity.OrderColumns)...)
	sb.From(ordersTable)
	sb.Where(sb.Equal("shop_domain", shopDomain), sb.Equal("external_id", externalID))
	sb.Limit(1)

	query, args := sb.Build()
	var row entity.OrderRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get order %s: %w", externalID, err)
	}
	return row.ToDomain()
}

func (r *SQLOrderRepository) Insert(ctx context.Context, o *domain.Order) (int64, error) {
	row, err := entity.OrderRowFromDomain(o)
	if err != nil {
		return 0, err
	}
	id, err := insertReturningID(ctx, r.db, r.flavor, ordersTable, entity.OrderColumns, row.Values())
	if err != nil {
		return 0, fmt.Errorf("failed to insert order %s: %w", o.ExternalID, err)
	}
	return id, nil
}

func (r *SQLOrderRepository) Update(ctx context.Context, o *domain.Order) error {
	row, err := entity.OrderRowFromDomain(o)
	if err != nil {
		return err
	}
	if err := updateByID(ctx, r.db, r.flavor, ordersTable, o.ID, entity.OrderColumns, row.Values()); err != nil {
		return fmt.Errorf("failed to update order %s: %w", o.ExternalID, err)
	}
	return nil
}

// ReplaceLineItems swaps the order's line items inside one transaction so a
// reader never sees a partial set.
func (r *SQLOrderRepository) ReplaceLineItems(ctx context.Context, orderID int64, items []domain.OrderLineItem) error {
	rows := make([]*entity.LineItemRow, 0, len(items))
	for i := range items {
		row, err := entity.LineItemRowFromDomain(&items[i])
		if err != nil {
			return err
		}
		row.OrderID = orderID
		rows = append(rows, row)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	del := r.flavor.NewDeleteBuilder()
	del.DeleteFrom(lineItemsTable)
	del.Where(del.Equal("order_id", orderID))
	query, args := del.Build()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete line items of order %d: %w", orderID, err)
	}

	for _, row := range rows {
		if _, err := insertReturningID(ctx, tx, r.flavor, lineItemsTable, entity.LineItemColumns, row.Values()); err != nil {
			return fmt.Errorf("failed to insert line item %s: %w", row.ExternalID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit line items of order %d: %w", orderID, err)
	}
	return nil
}

func (r *SQLOrderRepository) ListLineItems(ctx context.Context, orderID int64) ([]*domain.OrderLineItem, error) {
	sb := r.flavor.NewSelectBuilder()
	sb.Select(withID(entity.LineItemColumns)...)
	sb.From(lineItemsTable)
	sb.Where(sb.Equal("order_id", orderID))
	sb.OrderBy("id")

	query, args := sb.Build()
	var rows []entity.LineItemRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list line items of order %d: %w", orderID, err)
	}

	items := make([]*domain.OrderLineItem, 0, len(rows))
	for i := range rows {
		item, err := rows[i].ToDomain()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}
