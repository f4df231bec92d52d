package domain

import "time"

// Integration represents an integration key bound to a single shop.
// Callers of the sync API authenticate with the key instead of a Shopify token.
type Integration struct {
	ID         string    `json:"id" bson:"_id"`
	Key        string    `json:"key" bson:"key"`                 // Unique integration key (used for authentication)
	ShopDomain string    `json:"shop_domain" bson:"shop_domain"` // Shop the key may trigger syncs for
	Label      string    `json:"label" bson:"label"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" bson:"updated_at"`
}
