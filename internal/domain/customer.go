package domain

import "time"

// Customer is a synced customer. Orders point at it; it does not list them.
type Customer struct {
	ID               int64      `json:"id"`
	ShopDomain       string     `json:"shop_domain"`
	ExternalID       string     `json:"external_id"`
	Email            string     `json:"email"`
	FirstName        string     `json:"first_name"`
	LastName         string     `json:"last_name"`
	Phone            string     `json:"phone"`
	AcceptsMarketing bool       `json:"accepts_marketing"`
	OrdersCount      int        `json:"orders_count"`
	TotalSpent       Amount     `json:"total_spent"`
	State            string     `json:"state"` // disabled, invited, enabled, declined
	VerifiedEmail    bool       `json:"verified_email"`
	TaxExempt        bool       `json:"tax_exempt"`
	Tags             []string   `json:"tags"`
	Addresses        []Address  `json:"addresses"`
	DefaultAddress   *Address   `json:"default_address"`
	RemoteCreatedAt  *time.Time `json:"created_at_shopify"`
	RemoteUpdatedAt  *time.Time `json:"updated_at_shopify"`
	LastSynced       time.Time  `json:"last_synced"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}
