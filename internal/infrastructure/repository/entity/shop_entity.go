package entity

import (
	"encoding/json"
	"time"

	"archie-shopify-sync/internal/domain"
)

// ShopColumns are the shops columns other than id, in Values order
var ShopColumns = []string{
	"shop_domain", "external_id", "name", "email", "domain", "currency", "timezone",
	"country", "phone", "address", "plan_name", "shop_data", "last_synced", "created_at", "updated_at",
}

// ShopRow is a row of the shops table
type ShopRow struct {
	ID         int64     `db:"id"`
	ShopDomain string    `db:"shop_domain"`
	ExternalID string    `db:"external_id"`
	Name       string    `db:"name"`
	Email      string    `db:"email"`
	Domain     string    `db:"domain"`
	Currency   string    `db:"currency"`
	Timezone   string    `db:"timezone"`
	Country    string    `db:"country"`
	Phone      string    `db:"phone"`
	Address    string    `db:"address"`
	PlanName   string    `db:"plan_name"`
	ShopData   string    `db:"shop_data"`
	LastSynced time.Time `db:"last_synced"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// Values returns the row's values in ShopColumns order
func (r *ShopRow) Values() []interface{} {
	return []interface{}{
		r.ShopDomain, r.ExternalID, r.Name, r.Email, r.Domain, r.Currency, r.Timezone,
		r.Country, r.Phone, r.Address, r.PlanName, r.ShopData, r.LastSynced, r.CreatedAt, r.UpdatedAt,
	}
}

// ToDomain converts the row to a domain entity
func (r *ShopRow) ToDomain() (*domain.Shop, error) {
	shop := &domain.Shop{
		ID:         r.ID,
		ShopDomain: r.ShopDomain,
		ExternalID: r.ExternalID,
		Name:       r.Name,
		Email:      r.Email,
		Domain:     r.Domain,
		Currency:   r.Currency,
		Timezone:   r.Timezone,
		Country:    r.Country,
		Phone:      r.Phone,
		PlanName:   r.PlanName,
		LastSynced: r.LastSynced.UTC(),
		CreatedAt:  r.CreatedAt.UTC(),
		UpdatedAt:  r.UpdatedAt.UTC(),
	}
	if r.ShopData != "" {
		shop.RawData = json.RawMessage(r.ShopData)
	}
	if err := decodeJSON("address", r.Address, &shop.Address); err != nil {
		return nil, err
	}
	return shop, nil
}

// ShopRowFromDomain converts a domain entity to a row
func ShopRowFromDomain(shop *domain.Shop) (*ShopRow, error) {
	var enc jsonEncoder
	row := &ShopRow{
		ID:         shop.ID,
		ShopDomain: shop.ShopDomain,
		ExternalID: shop.ExternalID,
		Name:       shop.Name,
		Email:      shop.Email,
		Domain:     shop.Domain,
		Currency:   shop.Currency,
		Timezone:   shop.Timezone,
		Country:    shop.Country,
		Phone:      shop.Phone,
		Address:    enc.encode("address", shop.Address),
		PlanName:   shop.PlanName,
		ShopData:   "{}",
		LastSynced: shop.LastSynced,
		CreatedAt:  shop.CreatedAt,
		UpdatedAt:  shop.UpdatedAt,
	}
	if len(shop.RawData) > 0 {
		row.ShopData = string(shop.RawData)
	}
	return row, enc.err
}
