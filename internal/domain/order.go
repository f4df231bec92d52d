package domain

import "time"

// DefaultCurrency is used when an order carries no shop money currency
const DefaultCurrency = "USD"

// Order is a synced order. Its line items are replaced as a set on every sync.
type Order struct {
	ID                 int64          `json:"id"`
	ShopDomain         string         `json:"shop_domain"`
	ExternalID         string         `json:"external_id"`
	CustomerID         *int64         `json:"customer_id"` // nil when the customer is not synced locally
	CustomerExternalID string         `json:"customer_external_id"`
	OrderNumber        string         `json:"order_number"`
	Name               string         `json:"name"` // #1001
	Email              string         `json:"email"`
	Phone              string         `json:"phone"`
	TotalPrice         Amount         `json:"total_price"`
	SubtotalPrice      Amount         `json:"subtotal_price"`
	TotalTax           Amount         `json:"total_tax"`
	TotalDiscounts     Amount         `json:"total_discounts"`
	TotalShipping      Amount         `json:"total_shipping"`
	Currency           string         `json:"currency"`
	FinancialStatus    string         `json:"financial_status"`
	FulfillmentStatus  string         `json:"fulfillment_status"`
	CancelReason       string         `json:"cancel_reason"`
	CancelledAt        *time.Time     `json:"cancelled_at"`
	BillingAddress     *Address       `json:"billing_address"`
	ShippingAddress    *Address       `json:"shipping_address"`
	ShippingLines      []ShippingLine `json:"shipping_lines"`
	Fulfillments       []Fulfillment  `json:"fulfillments"`
	TrackingNumbers    []string       `json:"tracking_numbers"`
	TrackingURLs       []string       `json:"tracking_urls"`
	Tags               []string       `json:"tags"`
	Note               string         `json:"note"`
	NoteAttributes     []Attribute    `json:"note_attributes"`
	DiscountCodes      []string       `json:"discount_codes"`
	RemoteCreatedAt    *time.Time     `json:"created_at_shopify"`
	RemoteUpdatedAt    *time.Time     `json:"updated_at_shopify"`
	ProcessedAt        *time.Time     `json:"processed_at"`
	ClosedAt           *time.Time     `json:"closed_at"`
	LastSynced         time.Time      `json:"last_synced"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`

	LineItems []OrderLineItem `json:"line_items,omitempty"` // stored in their own table
}

// OrderLineItem is owned by exactly one order
type OrderLineItem struct {
	ID                 int64       `json:"id"`
	OrderID            int64       `json:"order_id"`
	ProductID          *int64      `json:"product_id"` // nil when the product is not synced locally
	ShopDomain         string      `json:"shop_domain"`
	ExternalID         string      `json:"external_id"`
	OrderExternalID    string      `json:"order_external_id"`
	ProductExternalID  string      `json:"product_external_id"`
	VariantExternalID  string      `json:"variant_external_id"`
	Title              string      `json:"title"`
	Name               string      `json:"name"`
	VariantTitle       string      `json:"variant_title"`
	SKU                string      `json:"sku"`
	Vendor             string      `json:"vendor"`
	ProductType        string      `json:"product_type"`
	Quantity           int         `json:"quantity"`
	Price              Amount      `json:"price"`
	TotalDiscount      Amount      `json:"total_discount"`
	FulfillmentService string      `json:"fulfillment_service"`
	FulfillmentStatus  string      `json:"fulfillment_status"`
	Properties         []Attribute `json:"properties"`
	TaxLines           []TaxLine   `json:"tax_lines"`
	CreatedAt          time.Time   `json:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at"`
}

// ShippingLine is one shipping charge on an order
type ShippingLine struct {
	Title             string `json:"title"`
	Code              string `json:"code,omitempty"`
	CarrierIdentifier string `json:"carrier_identifier,omitempty"`
	Price             Money  `json:"price"`
}

// Fulfillment is a shipment of some or all of an order
type Fulfillment struct {
	Status    string     `json:"status"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// TaxLine is one tax applied to a line item
type TaxLine struct {
	Title          string `json:"title"`
	Price          Money  `json:"price"`
	Rate           Amount `json:"rate"`
	RatePercentage Amount `json:"rate_percentage"`
}
