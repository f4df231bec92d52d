package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/huandu/go-sqlbuilder"
	"github.com/jmoiron/sqlx"

	"archie-shopify-sync/internal/domain"
)

var lookupTables = map[domain.ResourceType]string{
	domain.ResourceShop:           shopsTable,
	domain.ResourceProduct:        productsTable,
	domain.ResourceProductVariant: variantsTable,
	domain.ResourceCustomer:       customersTable,
	domain.ResourceOrder:          ordersTable,
}

// SQLNaturalKeyLookup maps (shop, resource, external id) to a local row id
type SQLNaturalKeyLookup struct {
	db     *sqlx.DB
	flavor sqlbuilder.Flavor
}

func (l *SQLNaturalKeyLookup) LookupID(ctx context.Context, shopDomain string, resource domain.ResourceType, externalID string) (int64, bool, error) {
	table, ok := lookupTables[resource]
	if !ok {
		return 0, false, fmt.Errorf("no local table for resource %s", resource)
	}

	sb := l.flavor.NewSelectBuilder()
	sb.Select("id")
	sb.From(table)
	sb.Where(sb.Equal("shop_domain", shopDomain), sb.Equal("external_id", externalID))
	sb.Limit(1)

	query, args := sb.Build()
	var id int64
	if err := l.db.GetContext(ctx, &id, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to look up %s %s: %w", resource, externalID, err)
	}
	return id, true, nil
}
