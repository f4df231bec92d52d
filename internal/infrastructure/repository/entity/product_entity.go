package entity

import (
	"time"

	"archie-shopify-sync/internal/domain"
)

// ProductColumns are the products columns other than id, in Values order
var ProductColumns = []string{
	"shop_domain", "external_id", "title", "description", "handle", "vendor", "product_type",
	"status", "tags", "images", "options", "seo_title", "seo_description", "published_at",
	"created_at_shopify", "updated_at_shopify", "last_synced", "created_at", "updated_at",
}

// ProductRow is a row of the products table
type ProductRow struct {
	ID               int64      `db:"id"`
	ShopDomain       string     `db:"shop_domain"`
	ExternalID       string     `db:"external_id"`
	Title            string     `db:"title"`
	Description      string     `db:"description"`
	Handle           string     `db:"handle"`
	Vendor           string     `db:"vendor"`
	ProductType      string     `db:"product_type"`
	Status           string     `db:"status"`
	Tags             string     `db:"tags"`
	Images           string     `db:"images"`
	Options          string     `db:"options"`
	SEOTitle         string     `db:"seo_title"`
	SEODescription   string     `db:"seo_description"`
	PublishedAt      *time.Time `db:"published_at"`
	CreatedAtShopify *time.Time `db:"created_at_shopify"`
	UpdatedAtShopify *time.Time `db:"updated_at_shopify"`
	LastSynced       time.Time  `db:"last_synced"`
	CreatedAt        time.Time  `db:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at"`
}

// Values returns the row's values in ProductColumns order
func (r *ProductRow) Values() []interface{} {
	return []interface{}{
		r.ShopDomain, r.ExternalID, r.Title, r.Description, r.Handle, r.Vendor, r.ProductType,
		r.Status, r.Tags, r.Images, r.Options, r.SEOTitle, r.SEODescription, r.PublishedAt,
		r.CreatedAtShopify, r.UpdatedAtShopify, r.LastSynced, r.CreatedAt, r.UpdatedAt,
	}
}

// ToDomain converts the row to a domain entity, without variants
func (r *ProductRow) ToDomain() (*domain.Product, error) {
	p := &domain.Product{
		ID:              r.ID,
		ShopDomain:      r.ShopDomain,
		ExternalID:      r.ExternalID,
		Title:           r.Title,
		Description:     r.Description,
		Handle:          r.Handle,
		Vendor:          r.Vendor,
		ProductType:     r.ProductType,
		Status:          r.Status,
		SEOTitle:        r.SEOTitle,
		SEODescription:  r.SEODescription,
		PublishedAt:     utcPtr(r.PublishedAt),
		RemoteCreatedAt: utcPtr(r.CreatedAtShopify),
		RemoteUpdatedAt: utcPtr(r.UpdatedAtShopify),
		LastSynced:      r.LastSynced.UTC(),
		CreatedAt:       r.CreatedAt.UTC(),
		UpdatedAt:       r.UpdatedAt.UTC(),
	}

	var dec jsonDecoder
	dec.decode("tags", r.Tags, &p.Tags)
	dec.decode("images", r.Images, &p.Images)
	dec.decode("options", r.Options, &p.Options)
	if dec.err != nil {
		return nil, dec.err
	}
	return p, nil
}

// ProductRowFromDomain converts a domain entity to a row
func ProductRowFromDomain(p *domain.Product) (*ProductRow, error) {
	var enc jsonEncoder
	row := &ProductRow{
		ID:               p.ID,
		ShopDomain:       p.ShopDomain,
		ExternalID:       p.ExternalID,
		Title:            p.Title,
		Description:      p.Description,
		Handle:           p.Handle,
		Vendor:           p.Vendor,
		ProductType:      p.ProductType,
		Status:           p.Status,
		Tags:             enc.encode("tags", nonNil(p.Tags)),
		Images:           enc.encode("images", nonNil(p.Images)),
		Options:          enc.encode("options", nonNil(p.Options)),
		SEOTitle:         p.SEOTitle,
		SEODescription:   p.SEODescription,
		PublishedAt:      p.PublishedAt,
		CreatedAtShopify: p.RemoteCreatedAt,
		UpdatedAtShopify: p.RemoteUpdatedAt,
		LastSynced:       p.LastSynced,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
	return row, enc.err
}

// VariantColumns are the product_variants columns other than id, in Values order
var VariantColumns = []string{
	"product_id", "shop_domain", "external_id", "product_external_id", "title", "price",
	"compare_at_price", "sku", "barcode", "inventory_quantity", "inventory_policy",
	"inventory_management", "weight", "weight_unit", "requires_shipping", "taxable",
	"option1", "option2", "option3", "image_id", "available", "last_synced", "created_at", "updated_at",
}

// VariantRow is a row of the product_variants table
type VariantRow struct {
	ID                  int64         `db:"id"`
	ProductID           int64         `db:"product_id"`
	ShopDomain          string        `db:"shop_domain"`
	ExternalID          string        `db:"external_id"`
	ProductExternalID   string        `db:"product_external_id"`
	Title               string        `db:"title"`
	Price               domain.Amount `db:"price"`
	CompareAtPrice      domain.Amount `db:"compare_at_price"`
	SKU                 string        `db:"sku"`
	Barcode             string        `db:"barcode"`
	InventoryQuantity   int           `db:"inventory_quantity"`
	InventoryPolicy     string        `db:"inventory_policy"`
	InventoryManagement string        `db:"inventory_management"`
	Weight              domain.Amount `db:"weight"`
	WeightUnit          string        `db:"weight_unit"`
	RequiresShipping    bool          `db:"requires_shipping"`
	Taxable             bool          `db:"taxable"`
	Option1             string        `db:"option1"`
	Option2             string        `db:"option2"`
	Option3             string        `db:"option3"`
	ImageID             string        `db:"image_id"`
	Available           bool          `db:"available"`
	LastSynced          time.Time     `db:"last_synced"`
	CreatedAt           time.Time     `db:"created_at"`
	UpdatedAt           time.Time     `db:"updated_at"`
}

// Values returns the row's values in VariantColumns order
func (r *VariantRow) Values() []interface{} {
	return []interface{}{
		r.ProductID, r.ShopDomain, r.ExternalID, r.ProductExternalID, r.Title, r.Price,
		r.CompareAtPrice, r.SKU, r.Barcode, r.InventoryQuantity, r.InventoryPolicy,
		r.InventoryManagement, r.Weight, r.WeightUnit, r.RequiresShipping, r.Taxable,
		r.Option1, r.Option2, r.Option3, r.ImageID, r.Available, r.LastSynced, r.CreatedAt, r.UpdatedAt,
	}
}

// ToDomain converts the row to a domain entity
func (r *VariantRow) ToDomain() *domain.ProductVariant {
	return &domain.ProductVariant{
		ID:                  r.ID,
		ProductID:           r.ProductID,
		ShopDomain:          r.ShopDomain,
		ExternalID:          r.ExternalID,
		ProductExternalID:   r.ProductExternalID,
		Title:               r.Title,
		Price:               r.Price,
		CompareAtPrice:      r.CompareAtPrice,
		SKU:                 r.SKU,
		Barcode:             r.Barcode,
		InventoryQuantity:   r.InventoryQuantity,
		InventoryPolicy:     r.InventoryPolicy,
		InventoryManagement: r.InventoryManagement,
		Weight:              r.Weight,
		WeightUnit:          r.WeightUnit,
		RequiresShipping:    r.RequiresShipping,
		Taxable:             r.Taxable,
		Option1:             r.Option1,
		Option2:             r.Option2,
		Option3:             r.Option3,
		ImageID:             r.ImageID,
		Available:           r.Available,
		LastSynced:          r.LastSynced.UTC(),
		CreatedAt:           r.CreatedAt.UTC(),
		UpdatedAt:           r.UpdatedAt.UTC(),
	}
}

// VariantRowFromDomain converts a domain entity to a row
func VariantRowFromDomain(v *domain.ProductVariant) *VariantRow {
	return &VariantRow{
		ID:                  v.ID,
		ProductID:           v.ProductID,
		ShopDomain:          v.ShopDomain,
		ExternalID:          v.ExternalID,
		ProductExternalID:   v.ProductExternalID,
		Title:               v.Title,
		Price:               v.Price,
		CompareAtPrice:      v.CompareAtPrice,
		SKU:                 v.SKU,
		Barcode:             v.Barcode,
		InventoryQuantity:   v.InventoryQuantity,
		InventoryPolicy:     v.InventoryPolicy,
		InventoryManagement: v.InventoryManagement,
		Weight:              v.Weight,
		WeightUnit:          v.WeightUnit,
		RequiresShipping:    v.RequiresShipping,
		Taxable:             v.Taxable,
		Option1:             v.Option1,
		Option2:             v.Option2,
		Option3:             v.Option3,
		ImageID:             v.ImageID,
		Available:           v.Available,
		LastSynced:          v.LastSynced,
		CreatedAt:           v.CreatedAt,
		UpdatedAt:           v.UpdatedAt,
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
