package domain

import "time"

// Product is a synced product, unique per (shop_domain, external_id)
type Product struct {
	ID              int64           `json:"id"`
	ShopDomain      string          `json:"shop_domain"`
	ExternalID      string          `json:"external_id"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Handle          string          `json:"handle"`
	Vendor          string          `json:"vendor"`
	ProductType     string          `json:"product_type"`
	Status          string          `json:"status"` // active, archived, draft
	Tags            []string        `json:"tags"`
	Images          []ProductImage  `json:"images"`
	Options         []ProductOption `json:"options"`
	SEOTitle        string          `json:"seo_title"`
	SEODescription  string          `json:"seo_description"`
	PublishedAt     *time.Time      `json:"published_at"`
	RemoteCreatedAt *time.Time      `json:"created_at_shopify"`
	RemoteUpdatedAt *time.Time      `json:"updated_at_shopify"`
	LastSynced      time.Time       `json:"last_synced"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`

	Variants []ProductVariant `json:"variants,omitempty"` // not stored on the product row
}

// ProductImage is one of the product's first images
type ProductImage struct {
	ID      string `json:"id"`
	URL     string `json:"url"`
	AltText string `json:"alt_text,omitempty"`
	Width   int    `json:"width,omitempty"`
	Height  int    `json:"height,omitempty"`
}

// ProductOption is a product option such as size or color
type ProductOption struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Values   []string `json:"values"`
	Position int      `json:"position"`
}

// ProductVariant is owned by exactly one product
type ProductVariant struct {
	ID                  int64     `json:"id"`
	ProductID           int64     `json:"product_id"`
	ShopDomain          string    `json:"shop_domain"`
	ExternalID          string    `json:"external_id"`
	ProductExternalID   string    `json:"product_external_id"`
	Title               string    `json:"title"`
	Price               Amount    `json:"price"`
	CompareAtPrice      Amount    `json:"compare_at_price"`
	SKU                 string    `json:"sku"`
	Barcode             string    `json:"barcode"`
	InventoryQuantity   int       `json:"inventory_quantity"`
	InventoryPolicy     string    `json:"inventory_policy"`     // deny, continue
	InventoryManagement string    `json:"inventory_management"` // shopify, not_managed
	Weight              Amount    `json:"weight"`
	WeightUnit          string    `json:"weight_unit"`
	RequiresShipping    bool      `json:"requires_shipping"`
	Taxable             bool      `json:"taxable"`
	Option1             string    `json:"option1"`
	Option2             string    `json:"option2"`
	Option3             string    `json:"option3"`
	ImageID             string    `json:"image_id"`
	Available           bool      `json:"available"`
	LastSynced          time.Time `json:"last_synced"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}
