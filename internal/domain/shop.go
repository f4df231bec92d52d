package domain

import (
	"encoding/json"
	"time"
)

// Shop is the local snapshot of a shop's profile, one row per shop domain
type Shop struct {
	ID         int64           `json:"id"`
	ShopDomain string          `json:"shop_domain"`
	ExternalID string          `json:"external_id"`
	Name       string          `json:"name"`
	Email      string          `json:"email"`
	Domain     string          `json:"domain"` // primary domain host
	Currency   string          `json:"currency"`
	Timezone   string          `json:"timezone"` // IANA name
	Country    string          `json:"country"`
	Phone      string          `json:"phone"`
	Address    ShopAddress     `json:"address"`
	PlanName   string          `json:"plan_name"`
	RawData    json.RawMessage `json:"shop_data,omitempty"`
	LastSynced time.Time       `json:"last_synced"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// ShopAddress is the shop's business address
type ShopAddress struct {
	Address1 string `json:"address1"`
	Address2 string `json:"address2"`
	City     string `json:"city"`
	Province string `json:"province"`
	Zip      string `json:"zip"`
	Country  string `json:"country"`
}

// Address is a customer, billing or shipping address
type Address struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Company   string `json:"company,omitempty"`
	Address1  string `json:"address1,omitempty"`
	Address2  string `json:"address2,omitempty"`
	City      string `json:"city,omitempty"`
	Province  string `json:"province,omitempty"`
	Country   string `json:"country,omitempty"`
	Zip       string `json:"zip,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// Attribute is a free-form key/value pair attached to orders and line items
type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}
