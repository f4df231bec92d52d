package entity

import (
	"time"

	"archie-shopify-sync/internal/domain"
)

// CustomerColumns are the customers columns other than id, in Values order
var CustomerColumns = []string{
	"shop_domain", "external_id", "email", "first_name", "last_name", "phone", "accepts_marketing",
	"orders_count", "total_spent", "state", "verified_email", "tax_exempt", "tags", "addresses",
	"default_address", "created_at_shopify", "updated_at_shopify", "last_synced", "created_at", "updated_at",
}

// CustomerRow is a row of the customers table
type CustomerRow struct {
	ID               int64         `db:"id"`
	ShopDomain       string        `db:"shop_domain"`
	ExternalID       string        `db:"external_id"`
	Email            string        `db:"email"`
	FirstName        string        `db:"first_name"`
	LastName         string        `db:"last_name"`
	Phone            string        `db:"phone"`
	AcceptsMarketing bool          `db:"accepts_marketing"`
	OrdersCount      int           `db:"orders_count"`
	TotalSpent       domain.Amount `db:"total_spent"`
	State            string        `db:"state"`
	VerifiedEmail    bool          `db:"verified_email"`
	TaxExempt        bool          `db:"tax_exempt"`
	Tags             string        `db:"tags"`
	Addresses        string        `db:"addresses"`
	DefaultAddress   string        `db:"default_address"`
	CreatedAtShopify *time.Time    `db:"created_at_shopify"`
	UpdatedAtShopify *time.Time    `db:"updated_at_shopify"`
	LastSynced       time.Time     `db:"last_synced"`
	CreatedAt        time.Time     `db:"created_at"`
	UpdatedAt        time.Time     `db:"updated_at"`
}

// Values returns the row's values in CustomerColumns order
func (r *CustomerRow) Values() []interface{} {
	return []interface{}{
		r.ShopDomain, r.ExternalID, r.Email, r.FirstName, r.LastName, r.Phone, r.AcceptsMarketing,
		r.OrdersCount, r.TotalSpent, r.State, r.VerifiedEmail, r.TaxExempt, r.Tags, r.Addresses,
		r.DefaultAddress, r.CreatedAtShopify, r.UpdatedAtShopify, r.LastSynced, r.CreatedAt, r.UpdatedAt,
	}
}

// ToDomain converts the row to a domain entity
func (r *CustomerRow) ToDomain() (*domain.Customer, error) {
	c := &domain.Customer{
		ID:               r.ID,
		ShopDomain:       r.ShopDomain,
		ExternalID:       r.ExternalID,
		Email:            r.Email,
		FirstName:        r.FirstName,
		LastName:         r.LastName,
		Phone:            r.Phone,
		AcceptsMarketing: r.AcceptsMarketing,
		OrdersCount:      r.OrdersCount,
		TotalSpent:       r.TotalSpent,
		State:            r.State,
		VerifiedEmail:    r.VerifiedEmail,
		TaxExempt:        r.TaxExempt,
		RemoteCreatedAt:  utcPtr(r.CreatedAtShopify),
		RemoteUpdatedAt:  utcPtr(r.UpdatedAtShopify),
		LastSynced:       r.LastSynced.UTC(),
		CreatedAt:        r.CreatedAt.UTC(),
		UpdatedAt:        r.UpdatedAt.UTC(),
	}

	var dec jsonDecoder
	dec.decode("tags", r.Tags, &c.Tags)
	dec.decode("addresses", r.Addresses, &c.Addresses)
	dec.decode("default_address", r.DefaultAddress, &c.DefaultAddress)
	if dec.err != nil {
		return nil, dec.err
	}
	return c, nil
}

// CustomerRowFromDomain converts a domain entity to a row
func CustomerRowFromDomain(c *domain.Customer) (*CustomerRow, error) {
	var enc jsonEncoder
	row := &CustomerRow{
		ID:               c.ID,
		ShopDomain:       c.ShopDomain,
		ExternalID:       c.ExternalID,
		Email:            c.Email,
		FirstName:        c.FirstName,
		LastName:         c.LastName,
		Phone:            c.Phone,
		AcceptsMarketing: c.AcceptsMarketing,
		OrdersCount:      c.OrdersCount,
		TotalSpent:       c.TotalSpent,
		State:            c.State,
		VerifiedEmail:    c.VerifiedEmail,
		TaxExempt:        c.TaxExempt,
		Tags:             enc.encode("tags", nonNil(c.Tags)),
		Addresses:        enc.encode("addresses", nonNil(c.Addresses)),
		DefaultAddress:   enc.encode("default_address", c.DefaultAddress),
		CreatedAtShopify: c.RemoteCreatedAt,
		UpdatedAtShopify: c.RemoteUpdatedAt,
		LastSynced:       c.LastSynced,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
	return row, enc.err
}
