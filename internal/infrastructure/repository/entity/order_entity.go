package entity

import (
	"time"

	"archie-shopify-sync/internal/domain"
)

// OrderColumns are the orders columns other than id, in Values order
var OrderColumns = []string{
	"shop_domain", "external_id", "customer_id", "customer_external_id", "order_number", "name",
	"email", "phone", "total_price", "subtotal_price", "total_tax", "total_discounts",
	"total_shipping", "currency", "financial_status", "fulfillment_status", "cancel_reason",
	"cancelled_at", "billing_address", "shipping_address", "shipping_lines", "fulfillments",
	"tracking_numbers", "tracking_urls", "tags", "note", "note_attributes", "discount_codes",
	"created_at_shopify", "updated_at_shopify", "processed_at", "closed_at", "last_synced",
	"created_at", "updated_at",
}

// OrderRow is a row of the orders table
type OrderRow struct {
	ID                 int64         `db:"id"`
	ShopDomain         string        `db:"shop_domain"`
	ExternalID         string        `db:"external_id"`
	CustomerID         *int64        `db:"customer_id"`
	CustomerExternalID string        `db:"customer_external_id"`
	OrderNumber        string        `db:"order_number"`
	Name               string        `db:"name"`
	Email              string        `db:"email"`
	Phone              string        `db:"phone"`
	TotalPrice         domain.Amount `db:"total_price"`
	SubtotalPrice      domain.Amount `db:"subtotal_price"`
	TotalTax           domain.Amount `db:"total_tax"`
	TotalDiscounts     domain.Amount `db:"total_discounts"`
	TotalShipping      domain.Amount `db:"total_shipping"`
	Currency           string        `db:"currency"`
	FinancialStatus    string        `db:"financial_status"`
	FulfillmentStatus  string        `db:"fulfillment_status"`
	CancelReason       string        `db:"cancel_reason"`
	CancelledAt        *time.Time    `db:"cancelled_at"`
	BillingAddress     string        `db:"billing_address"`
	ShippingAddress    string        `db:"shipping_address"`
	ShippingLines      string        `db:"shipping_lines"`
	Fulfillments       string        `db:"fulfillments"`
	TrackingNumbers    string        `db:"tracking_numbers"`
	TrackingURLs       string        `db:"tracking_urls"`
	Tags               string        `db:"tags"`
	Note               string        `db:"note"`
	NoteAttributes     string        `db:"note_attributes"`
	DiscountCodes      string        `db:"discount_codes"`
	CreatedAtShopify   *time.Time    `db:"created_at_shopify"`
	UpdatedAtShopify   *time.Time    `db:"updated_at_shopify"`
	ProcessedAt        *time.Time    `db:"processed_at"`
	ClosedAt           *time.Time    `db:"closed_at"`
	LastSynced         time.Time     `db:"last_synced"`
	CreatedAt          time.Time     `db:"created_at"`
	UpdatedAt          time.Time     `db:"updated_at"`
}

// Values returns the row's values in OrderColumns order
func (r *OrderRow) Values() []interface{} {
	return []interface{}{
		r.ShopDomain, r.ExternalID, r.CustomerID, r.CustomerExternalID, r.OrderNumber, r.Name,
		r.Email, r.Phone, r.TotalPrice, r.SubtotalPrice, r.TotalTax, r.TotalDiscounts,
		r.TotalShipping, r.Currency, r.FinancialStatus, r.FulfillmentStatus, r.CancelReason,
		r.CancelledAt, r.BillingAddress, r.ShippingAddress, r.ShippingLines, r.Fulfillments,
		r.TrackingNumbers, r.TrackingURLs, r.Tags, r.Note, r.NoteAttributes, r.DiscountCodes,
		r.CreatedAtShopify, r.UpdatedAtShopify, r.ProcessedAt, r.ClosedAt, r.LastSynced,
		r.CreatedAt, r.UpdatedAt,
	}
}

// ToDomain converts the row to a domain entity, without line items
func (r *OrderRow) ToDomain() (*domain.Order, error) {
	o := &domain.Order{
		ID:                 r.ID,
		ShopDomain:         r.ShopDomain,
		ExternalID:         r.ExternalID,
		CustomerID:         r.CustomerID,
		CustomerExternalID: r.CustomerExternalID,
		OrderNumber:        r.OrderNumber,
		Name:               r.Name,
		Email:              r.Email,
		Phone:              r.Phone,
		TotalPrice:         r.TotalPrice,
		SubtotalPrice:      r.SubtotalPrice,
		TotalTax:           r.TotalTax,
		TotalDiscounts:     r.TotalDiscounts,
		TotalShipping:      r.TotalShipping,
		Currency:           r.Currency,
		FinancialStatus:    r.FinancialStatus,
		FulfillmentStatus:  r.FulfillmentStatus,
		CancelReason:       r.CancelReason,
		CancelledAt:        utcPtr(r.CancelledAt),
		Note:               r.Note,
		RemoteCreatedAt:    utcPtr(r.CreatedAtShopify),
		RemoteUpdatedAt:    utcPtr(r.UpdatedAtShopify),
		ProcessedAt:        utcPtr(r.ProcessedAt),
		ClosedAt:           utcPtr(r.ClosedAt),
		LastSynced:         r.LastSynced.UTC(),
		CreatedAt:          r.CreatedAt.UTC(),
		UpdatedAt:          r.UpdatedAt.UTC(),
	}

	var dec jsonDecoder
	dec.decode("billing_address", r.BillingAddress, &o.BillingAddress)
	dec.decode("shipping_address", r.ShippingAddress, &o.ShippingAddress)
	dec.decode("shipping_lines", r.ShippingLines, &o.ShippingLines)
	dec.decode("fulfillments", r.Fulfillments, &o.Fulfillments)
	dec.decode("tracking_numbers", r.TrackingNumbers, &o.TrackingNumbers)
	dec.decode("tracking_urls", r.TrackingURLs, &o.TrackingURLs)
	dec.decode("tags", r.Tags, &o.Tags)
	dec.decode("note_attributes", r.NoteAttributes, &o.NoteAttributes)
	dec.decode("discount_codes", r.DiscountCodes, &o.DiscountCodes)
	if dec.err != nil {
		return nil, dec.err
	}
	return o, nil
}

// OrderRowFromDomain converts a domain entity to a row
func OrderRowFromDomain(o *domain.Order) (*OrderRow, error) {
	var enc jsonEncoder
	row := &OrderRow{
		ID:                 o.ID,
		ShopDomain:         o.ShopDomain,
		ExternalID:         o.ExternalID,
		CustomerID:         o.CustomerID,
		CustomerExternalID: o.CustomerExternalID,
		OrderNumber:        o.OrderNumber,
		Name:               o.Name,
		Email:              o.Email,
		Phone:              o.Phone,
		TotalPrice:         o.TotalPrice,
		SubtotalPrice:      o.SubtotalPrice,
		TotalTax:           o.TotalTax,
		TotalDiscounts:     o.TotalDiscounts,
		TotalShipping:      o.TotalShipping,
		Currency:           o.Currency,
		FinancialStatus:    o.FinancialStatus,
		FulfillmentStatus:  o.FulfillmentStatus,
		CancelReason:       o.CancelReason,
		CancelledAt:        o.CancelledAt,
		BillingAddress:     enc.encode("billing_address", o.BillingAddress),
		ShippingAddress:    enc.encode("shipping_address", o.ShippingAddress),
		ShippingLines:      enc.encode("shipping_lines", nonNil(o.ShippingLines)),
		Fulfillments:       enc.encode("fulfillments", nonNil(o.Fulfillments)),
		TrackingNumbers:    enc.encode("tracking_numbers", nonNil(o.TrackingNumbers)),
		TrackingURLs:       enc.encode("tracking_urls", nonNil(o.TrackingURLs)),
		Tags:               enc.encode("tags", nonNil(o.Tags)),
		Note:               o.Note,
		NoteAttributes:     enc.encode("note_attributes", nonNil(o.NoteAttributes)),
		DiscountCodes:      enc.encode("discount_codes", nonNil(o.DiscountCodes)),
		CreatedAtShopify:   o.RemoteCreatedAt,
		UpdatedAtShopify:   o.RemoteUpdatedAt,
		ProcessedAt:        o.ProcessedAt,
		ClosedAt:           o.ClosedAt,
		LastSynced:         o.LastSynced,
		CreatedAt:          o.CreatedAt,
		UpdatedAt:          o.UpdatedAt,
	}
	return row, enc.err
}

// LineItemColumns are the order_line_items columns other than id, in Values order
var LineItemColumns = []string{
	"order_id", "product_id", "shop_domain", "external_id", "order_external_id",
	"product_external_id", "variant_external_id", "title", "name", "variant_title", "sku",
	"vendor", "product_type", "quantity", "price", "total_discount", "fulfillment_service",
	"fulfillment_status", "properties", "tax_lines", "created_at", "updated_at",
}

// LineItemRow is a row of the order_line_items table
type LineItemRow struct {
	ID                 int64         `db:"id"`
	OrderID            int64         `db:"order_id"`
	ProductID          *int64        `db:"product_id"`
	ShopDomain         string        `db:"shop_domain"`
	ExternalID         string        `db:"external_id"`
	OrderExternalID    string        `db:"order_external_id"`
	ProductExternalID  string        `db:"product_external_id"`
	VariantExternalID  string        `db:"variant_external_id"`
	Title              string        `db:"title"`
	Name               string        `db:"name"`
	VariantTitle       string        `db:"variant_title"`
	SKU                string        `db:"sku"`
	Vendor             string        `db:"vendor"`
	ProductType        string        `db:"product_type"`
	Quantity           int           `db:"quantity"`
	Price              domain.Amount `db:"price"`
	TotalDiscount      domain.Amount `db:"total_discount"`
	FulfillmentService string        `db:"fulfillment_service"`
	FulfillmentStatus  string        `db:"fulfillment_status"`
	Properties         string        `db:"properties"`
	TaxLines           string        `db:"tax_lines"`
	CreatedAt          time.Time     `db:"created_at"`
	UpdatedAt          time.Time     `db:"updated_at"`
}

// Values returns the row's values in LineItemColumns order
func (r *LineItemRow) Values() []interface{} {
	return []interface{}{
		r.OrderID, r.ProductID, r.ShopDomain, r.ExternalID, r.OrderExternalID,
		r.ProductExternalID, r.VariantExternalID, r.Title, r.Name, r.VariantTitle, r.SKU,
		r.Vendor, r.ProductType, r.Quantity, r.Price, r.TotalDiscount, r.FulfillmentService,
		r.FulfillmentStatus, r.Properties, r.TaxLines, r.CreatedAt, r.UpdatedAt,
	}
}

// ToDomain converts the row to a domain entity
func (r *LineItemRow) ToDomain() (*domain.OrderLineItem, error) {
	li := &domain.OrderLineItem{
		ID:                 r.ID,
		OrderID:            r.OrderID,
		ProductID:          r.ProductID,
		ShopDomain:         r.ShopDomain,
		ExternalID:         r.ExternalID,
		OrderExternalID:    r.OrderExternalID,
		ProductExternalID:  r.ProductExternalID,
		VariantExternalID:  r.VariantExternalID,
		Title:              r.Title,
		Name:               r.Name,
		VariantTitle:       r.VariantTitle,
		SKU:                r.SKU,
		Vendor:             r.Vendor,
		ProductType:        r.ProductType,
		Quantity:           r.Quantity,
		Price:              r.Price,
		TotalDiscount:      r.TotalDiscount,
		FulfillmentService: r.FulfillmentService,
		FulfillmentStatus:  r.FulfillmentStatus,
		CreatedAt:          r.CreatedAt.UTC(),
		UpdatedAt:          r.UpdatedAt.UTC(),
	}

	var dec jsonDecoder
	dec.decode("properties", r.Properties, &li.Properties)
	dec.decode("tax_lines", r.TaxLines, &li.TaxLines)
	if dec.err != nil {
		return nil, dec.err
	}
	return li, nil
}

// LineItemRowFromDomain converts a domain entity to a row
func LineItemRowFromDomain(li *domain.OrderLineItem) (*LineItemRow, error) {
	var enc jsonEncoder
	row := &LineItemRow{
		ID:                 li.ID,
		OrderID:            li.OrderID,
		ProductID:          li.ProductID,
		ShopDomain:         li.ShopDomain,
		ExternalID:         li.ExternalID,
		OrderExternalID:    li.OrderExternalID,
		ProductExternalID:  li.ProductExternalID,
		VariantExternalID:  li.VariantExternalID,
		Title:              li.Title,
		Name:               li.Name,
		VariantTitle:       li.VariantTitle,
		SKU:                li.SKU,
		Vendor:             li.Vendor,
		ProductType:        li.ProductType,
		Quantity:           li.Quantity,
		Price:              li.Price,
		TotalDiscount:      li.TotalDiscount,
		FulfillmentService: li.FulfillmentService,
		FulfillmentStatus:  li.FulfillmentStatus,
		Properties:         enc.encode("properties", nonNil(li.Properties)),
		TaxLines:           enc.encode("tax_lines", nonNil(li.TaxLines)),
		CreatedAt:          li.CreatedAt,
		UpdatedAt:          li.UpdatedAt,
	}
	return row, enc.err
}
