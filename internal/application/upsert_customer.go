package application

import (
	"context"
	"encoding/json"
	"fmt"

	"archie-shopify-sync/internal/domain"
	"archie-shopify-sync/internal/ports"

	"github.com/rs/zerolog"
)

// CustomerUpserter upserts customers
type CustomerUpserter struct {
	customers ports.CustomerRepository
	logger    zerolog.Logger
}

// NewCustomerUpserter creates a new customer upserter
func NewCustomerUpserter(customers ports.CustomerRepository, logger zerolog.Logger) *CustomerUpserter {
	return &CustomerUpserter{customers: customers, logger: logger}
}

func (u *CustomerUpserter) Upsert(ctx context.Context, shop string, raw json.RawMessage) domain.UpsertResult {
	var node customerNode
	if err := decodeNode(raw, &node); err != nil {
		return domain.UpsertFailed("", err)
	}
	externalID, err := domain.DecodeGID(node.ID, domain.ResourceCustomer)
	if err != nil {
		return domain.UpsertFailed(node.ID, err)
	}

	ts := now()
	customer := &domain.Customer{
		ShopDomain:       shop,
		ExternalID:       externalID,
		Email:            node.Email,
		FirstName:        node.FirstName,
		LastName:         node.LastName,
		Phone:            node.Phone,
		AcceptsMarketing: node.AcceptsMarketing,
		OrdersCount:      int(node.OrdersCount),
		State:            lower(node.State),
		VerifiedEmail:    node.VerifiedEmail,
		TaxExempt:        node.TaxExempt,
		Tags:             nonNilStrings(node.Tags),
		Addresses:        []domain.Address{},
		DefaultAddress:   node.DefaultAddress.toDomain(),
		RemoteCreatedAt:  domain.ParseTimestamp(node.CreatedAt),
		RemoteUpdatedAt:  domain.ParseTimestamp(node.UpdatedAt),
		LastSynced:       ts,
		UpdatedAt:        ts,
	}
	if node.TotalSpentV2 != nil {
		customer.TotalSpent = node.TotalSpentV2.Amount
	}
	for i := range node.Addresses {
		customer.Addresses = append(customer.Addresses, *node.Addresses[i].toDomain())
	}

	existing, err := u.customers.FindByExternalID(ctx, shop, externalID)
	if err != nil {
		return domain.UpsertFailed(externalID, fmt.Errorf("failed to find customer: %w", err))
	}

	if existing != nil {
		customer.ID = existing.ID
		customer.CreatedAt = existing.CreatedAt
		if err := u.customers.Update(ctx, customer); err != nil {
			return domain.UpsertFailed(externalID, fmt.Errorf("failed to update customer: %w", err))
		}
		return domain.Upserted(externalID, customer.ID, false)
	}

	customer.CreatedAt = ts
	id, err := u.customers.Insert(ctx, customer)
	if err != nil {
		return domain.UpsertFailed(externalID, fmt.Errorf("failed to insert customer: %w", err))
	}
	return domain.Upserted(externalID, id, true)
}
