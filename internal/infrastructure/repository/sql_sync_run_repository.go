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

const syncRunsTable = "sync_runs"

// SQLSyncRunRepository stores the run history. Ids are monotonically
// increasing, so "latest" is the highest id for a pair.
type SQLSyncRunRepository struct {
	db     *sqlx.DB
	flavor sqlbuilder.Flavor
}

func (r *SQLSyncRunRepository) Create(ctx context.Context, run *domain.SyncRun) (int64, error) {
	row, err := entity.SyncRunRowFromDomain(run)
	if err != nil {
		return 0, err
	}
	id, err := insertReturningID(ctx, r.db, r.flavor, syncRunsTable, entity.SyncRunColumns, row.Values())
	if err != nil {
		return 0, fmt.Errorf("failed to insert sync run: %w", err)
	}
	return id, nil
}

func (r *SQLSyncRunRepository) Update(ctx context.Context, run *domain.SyncRun) error {
	row, err := entity.SyncRunRowFromDomain(run)
	if err != nil {
		return err
	}
	if err := updateByID(ctx, r.db, r.flavor, syncRunsTable, run.ID, entity.SyncRunColumns, row.Values()); err != nil {
		return fmt.Errorf("failed to update sync run %d: %w", run.ID, err)
	}
	return nil
}

func (r *SQLSyncRunRepository) Get(ctx context.Context, id int64) (*domain.SyncRun, error) {
	sb := r.flavor.NewSelectBuilder()
	sb.Select(withID(entity.SyncRunColumns)...)
	sb.From(syncRunsTable)
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()
	var row entity.SyncRunRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get sync run %d: %w", id, err)
	}
	return row.ToDomain()
}

func (r *SQLSyncRunRepository) Latest(ctx context.Context, shopDomain string, entityType domain.EntityType) (*domain.SyncRun, error) {
	runs, err := r.List(ctx, domain.SyncRunFilter{ShopDomain: shopDomain, EntityType: entityType, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}
	return runs[0], nil
}

// List returns runs newest first. A zero limit returns every matching run.
func (r *SQLSyncRunRepository) List(ctx context.Context, filter domain.SyncRunFilter) ([]*domain.SyncRun, error) {
	sb := r.flavor.NewSelectBuilder()
	sb.Select(withID(entity.SyncRunColumns)...)
	sb.From(syncRunsTable)
	if filter.ShopDomain != "" {
		sb.Where(sb.Equal("shop_domain", filter.ShopDomain))
	}
	if filter.EntityType != "" {
		sb.Where(sb.Equal("entity_type", string(filter.EntityType)))
	}
	sb.OrderBy("id").Desc()
	if filter.Limit > 0 {
		sb.Limit(filter.Limit)
	}

	query, args := sb.Build()
	var rows []entity.SyncRunRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list sync runs: %w", err)
	}

	runs := make([]*domain.SyncRun, 0, len(rows))
	for i := range rows {
		run, err := rows[i].ToDomain()
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, nil
}
