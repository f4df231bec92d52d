package application

import (
	"context"
	"encoding/json"
	"fmt"

	"archie-shopify-sync/internal/domain"
	"archie-shopify-sync/internal/ports"

	"github.com/rs/zerolog"
)

// ProductUpserter upserts a product, then each of its variants
type ProductUpserter struct {
	products ports.ProductRepository
	logger   zerolog.Logger
}

// NewProductUpserter creates a new product upserter
func NewProductUpserter(products ports.ProductRepository, logger zerolog.Logger) *ProductUpserter {
	return &ProductUpserter{products: products, logger: logger}
}

// Upsert transforms the whole record before writing anything, so a malformed
// variant id fails the product without a partial write.
func (u *ProductUpserter) Upsert(ctx context.Context, shop string, raw json.RawMessage) domain.UpsertResult {
	var node productNode
	if err := decodeNode(raw, &node); err != nil {
		return domain.UpsertFailed("", err)
	}

	product, err := productFromNode(shop, &node)
	if err != nil {
		return domain.UpsertFailed(node.ID, err)
	}

	existing, err := u.products.FindByExternalID(ctx, shop, product.ExternalID)
	if err != nil {
		return domain.UpsertFailed(product.ExternalID, fmt.Errorf("failed to find product: %w", err))
	}

	created := existing == nil
	if existing != nil {
		product.ID = existing.ID
		product.CreatedAt = existing.CreatedAt
		if err := u.products.Update(ctx, product); err != nil {
			return domain.UpsertFailed(product.ExternalID, fmt.Errorf("failed to update product: %w", err))
		}
	} else {
		product.CreatedAt = product.UpdatedAt
		id, err := u.products.Insert(ctx, product)
		if err != nil {
			return domain.UpsertFailed(product.ExternalID, fmt.Errorf("failed to insert product: %w", err))
		}
		product.ID = id
	}

	for i := range product.Variants {
		if err := u.upsertVariant(ctx, product, &product.Variants[i]); err != nil {
			return domain.UpsertFailed(product.ExternalID, err)
		}
	}

	return domain.Upserted(product.ExternalID, product.ID, created)
}

func (u *ProductUpserter) upsertVariant(ctx context.Context, product *domain.Product, variant *domain.ProductVariant) error {
	variant.ProductID = product.ID

	existing, err := u.products.FindVariantByExternalID(ctx, product.ShopDomain, variant.ExternalID)
	if err != nil {
		return fmt.Errorf("failed to find variant %s: %w", variant.ExternalID, err)
	}

	if existing != nil {
		variant.ID = existing.ID
		variant.CreatedAt = existing.CreatedAt
		if err := u.products.UpdateVariant(ctx, variant); err != nil {
			return fmt.Errorf("failed to update variant %s: %w", variant.ExternalID, err)
		}
		return nil
	}

	variant.CreatedAt = variant.UpdatedAt
	id, err := u.products.InsertVariant(ctx, variant)
	if err != nil {
		return fmt.Errorf("failed to insert variant %s: %w", variant.ExternalID, err)
	}
	variant.ID = id
	return nil
}

func productFromNode(shop string, node *productNode) (*domain.Product, error) {
	externalID, err := domain.DecodeGID(node.ID, domain.ResourceProduct)
	if err != nil {
		return nil, err
	}

	ts := now()
	product := &domain.Product{
		ShopDomain:      shop,
		ExternalID:      externalID,
		Title:           node.Title,
		Description:     node.Description,
		Handle:          node.Handle,
		Vendor:          node.Vendor,
		ProductType:     node.ProductType,
		Status:          lower(node.Status),
		Tags:            nonNilStrings(node.Tags),
		Images:          []domain.ProductImage{},
		Options:         []domain.ProductOption{},
		PublishedAt:     domain.ParseTimestamp(node.PublishedAt),
		RemoteCreatedAt: domain.ParseTimestamp(node.CreatedAt),
		RemoteUpdatedAt: domain.ParseTimestamp(node.UpdatedAt),
		LastSynced:      ts,
		UpdatedAt:       ts,
	}
	if node.SEO != nil {
		product.SEOTitle = node.SEO.Title
		product.SEODescription = node.SEO.Description
	}
	for _, img := range node.Images.nodes() {
		product.Images = append(product.Images, domain.ProductImage{
			ID:      img.ID,
			URL:     img.URL,
			AltText: img.AltText,
			Width:   img.Width,
			Height:  img.Height,
		})
	}
	for _, opt := range node.Options {
		product.Options = append(product.Options, domain.ProductOption{
			ID:       opt.ID,
			Name:     opt.Name,
			Values:   nonNilStrings(opt.Values),
			Position: opt.Position,
		})
	}

	for _, vn := range node.Variants.nodes() {
		variant, err := variantFromNode(product, &vn)
		if err != nil {
			return nil, err
		}
		product.Variants = append(product.Variants, *variant)
	}

	return product, nil
}

func variantFromNode(product *domain.Product, node *variantNode) (*domain.ProductVariant, error) {
	externalID, err := domain.DecodeGID(node.ID, domain.ResourceProductVariant)
	if err != nil {
		return nil, err
	}

	variant := &domain.ProductVariant{
		ShopDomain:          product.ShopDomain,
		ExternalID:          externalID,
		ProductExternalID:   product.ExternalID,
		Title:               node.Title,
		Price:               node.Price,
		CompareAtPrice:      node.CompareAtPrice,
		SKU:                 node.SKU,
		Barcode:             node.Barcode,
		InventoryQuantity:   int(node.InventoryQuantity),
		InventoryPolicy:     lower(node.InventoryPolicy),
		InventoryManagement: lower(node.InventoryManagement),
		Weight:              node.Weight,
		WeightUnit:          node.WeightUnit,
		RequiresShipping:    boolOr(node.RequiresShipping, true),
		Taxable:             boolOr(node.Taxable, true),
		ImageID:             node.Image.id(),
		Available:           boolOr(node.AvailableForSale, true),
		LastSynced:          product.LastSynced,
		UpdatedAt:           product.UpdatedAt,
	}

	// Options map to option1..3 in the order Shopify lists them
	for i, opt := range node.SelectedOptions {
		switch i {
		case 0:
			variant.Option1 = opt.Value
		case 1:
			variant.Option2 = opt.Value
		case 2:
			variant.Option3 = opt.Value
		}
	}

	return variant, nil
}
