package application

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"archie-shopify-sync/internal/domain"
)

// Admin GraphQL node shapes, as selected by the queries in
// infrastructure/shopify. Only the fields the upserters read are declared.

type connection[T any] struct {
	Edges []struct {
		Node T `json:"node"`
	} `json:"edges"`
}

func (c connection[T]) nodes() []T {
	out := make([]T, 0, len(c.Edges))
	for _, e := range c.Edges {
		out = append(out, e.Node)
	}
	return out
}

// flexInt accepts both JSON numbers and the quoted UnsignedInt64 scalar
type flexInt int64

func (n *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(bytes.TrimSpace(data), `"`)
	if len(data) == 0 || string(data) == "null" {
		*n = 0
		return nil
	}
	v, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("failed to parse integer %q: %w", data, err)
	}
	*n = flexInt(v)
	return nil
}

type moneyV2 struct {
	Amount       domain.Amount `json:"amount"`
	CurrencyCode string        `json:"currencyCode"`
}

func (m *moneyV2) toDomain() domain.Money {
	if m == nil {
		return domain.Money{}
	}
	return domain.Money{Amount: m.Amount, CurrencyCode: m.CurrencyCode}
}

type moneyBag struct {
	ShopMoney *moneyV2 `json:"shopMoney"`
}

func (b *moneyBag) amount() domain.Amount {
	if b == nil || b.ShopMoney == nil {
		return domain.Amount{}
	}
	return b.ShopMoney.Amount
}

func (b *moneyBag) currency() string {
	if b == nil || b.ShopMoney == nil {
		return ""
	}
	return b.ShopMoney.CurrencyCode
}

func (b *moneyBag) money() domain.Money {
	if b == nil {
		return domain.Money{}
	}
	return b.ShopMoney.toDomain()
}

type addressNode struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Company   string `json:"company"`
	Address1  string `json:"address1"`
	Address2  string `json:"address2"`
	City      string `json:"city"`
	Province  string `json:"province"`
	Country   string `json:"country"`
	Zip       string `json:"zip"`
	Phone     string `json:"phone"`
}

func (a *addressNode) toDomain() *domain.Address {
	if a == nil {
		return nil
	}
	return &domain.Address{
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Company:   a.Company,
		Address1:  a.Address1,
		Address2:  a.Address2,
		City:      a.City,
		Province:  a.Province,
		Country:   a.Country,
		Zip:       a.Zip,
		Phone:     a.Phone,
	}
}

type idRef struct {
	ID string `json:"id"`
}

func (r *idRef) id() string {
	if r == nil {
		return ""
	}
	return r.ID
}

type shopNode struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	MyshopifyDomain string `json:"myshopifyDomain"`
	PrimaryDomain   *struct {
		Host string `json:"host"`
	} `json:"primaryDomain"`
	CurrencyCode string `json:"currencyCode"`
	IanaTimezone string `json:"ianaTimezone"`
	Phone        string `json:"phone"`
	Address1     string `json:"address1"`
	Address2     string `json:"address2"`
	City         string `json:"city"`
	Province     string `json:"province"`
	Country      string `json:"country"`
	Zip          string `json:"zip"`
	Plan         *struct {
		DisplayName string `json:"displayName"`
	} `json:"plan"`
}

type productNode struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Handle      string   `json:"handle"`
	Vendor      string   `json:"vendor"`
	ProductType string   `json:"productType"`
	Status      string   `json:"status"`
	Tags        []string `json:"tags"`
	Images      connection[struct {
		ID      string `json:"id"`
		URL     string `json:"url"`
		AltText string `json:"altText"`
		Width   int    `json:"width"`
		Height  int    `json:"height"`
	}] `json:"images"`
	Variants connection[variantNode] `json:"variants"`
	SEO      *struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	} `json:"seo"`
	Options []struct {
		ID       string   `json:"id"`
		Name     string   `json:"name"`
		Values   []string `json:"values"`
		Position int      `json:"position"`
	} `json:"options"`
	PublishedAt string `json:"publishedAt"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

type variantNode struct {
	ID                  string        `json:"id"`
	Title               string        `json:"title"`
	Price               domain.Amount `json:"price"`
	CompareAtPrice      domain.Amount `json:"compareAtPrice"`
	SKU                 string        `json:"sku"`
	Barcode             string        `json:"barcode"`
	InventoryQuantity   flexInt       `json:"inventoryQuantity"`
	InventoryPolicy     string        `json:"inventoryPolicy"`
	InventoryManagement string        `json:"inventoryManagement"`
	Weight              domain.Amount `json:"weight"`
	WeightUnit          string        `json:"weightUnit"`
	RequiresShipping    *bool         `json:"requiresShipping"`
	Taxable             *bool         `json:"taxable"`
	SelectedOptions     []struct {
		Name  string `json:"name"`
		Value string `json:"value"`
	} `json:"selectedOptions"`
	Image            *idRef `json:"image"`
	AvailableForSale *bool  `json:"availableForSale"`
}

type customerNode struct {
	ID               string        `json:"id"`
	Email            string        `json:"email"`
	FirstName        string        `json:"firstName"`
	LastName         string        `json:"lastName"`
	Phone            string        `json:"phone"`
	AcceptsMarketing bool          `json:"acceptsMarketing"`
	OrdersCount      flexInt       `json:"ordersCount"`
	TotalSpentV2     *moneyV2      `json:"totalSpentV2"`
	State            string        `json:"state"`
	VerifiedEmail    bool          `json:"verifiedEmail"`
	TaxExempt        bool          `json:"taxExempt"`
	Tags             []string      `json:"tags"`
	Addresses        []addressNode `json:"addresses"`
	DefaultAddress   *addressNode  `json:"defaultAddress"`
	CreatedAt        string        `json:"createdAt"`
	UpdatedAt        string        `json:"updatedAt"`
}

type orderNode struct {
	ID                    string       `json:"id"`
	Name                  string       `json:"name"`
	OrderNumber           flexInt      `json:"orderNumber"`
	Email                 string       `json:"email"`
	Phone                 string       `json:"phone"`
	TotalPriceSet         *moneyBag    `json:"totalPriceSet"`
	SubtotalPriceSet      *moneyBag    `json:"subtotalPriceSet"`
	TotalTaxSet           *moneyBag    `json:"totalTaxSet"`
	TotalDiscountsSet     *moneyBag    `json:"totalDiscountsSet"`
	TotalShippingPriceSet *moneyBag    `json:"totalShippingPriceSet"`
	FinancialStatus       string       `json:"financialStatus"`
	FulfillmentStatus     string       `json:"fulfillmentStatus"`
	Customer              *idRef       `json:"customer"`
	BillingAddress        *addressNode `json:"billingAddress"`
	ShippingAddress       *addressNode `json:"shippingAddress"`

	LineItems     connection[lineItemNode] `json:"lineItems"`
	ShippingLines connection[struct {
		Title             string    `json:"title"`
		OriginalPriceSet  *moneyBag `json:"originalPriceSet"`
		CarrierIdentifier string    `json:"carrierIdentifier"`
		Code              string    `json:"code"`
	}] `json:"shippingLines"`
	Fulfillments []struct {
		TrackingInfo []struct {
			Number  string `json:"number"`
			URL     string `json:"url"`
			Company string `json:"company"`
		} `json:"trackingInfo"`
		Status    string `json:"status"`
		UpdatedAt string `json:"updatedAt"`
	} `json:"fulfillments"`
	Tags             []string           `json:"tags"`
	Note             string             `json:"note"`
	CustomAttributes []domain.Attribute `json:"customAttributes"`
	DiscountCodes    []string           `json:"discountCodes"`
	CreatedAt        string             `json:"createdAt"`
	UpdatedAt        string             `json:"updatedAt"`
	ProcessedAt      string             `json:"processedAt"`
	ClosedAt         string             `json:"closedAt"`
	CancelledAt      string             `json:"cancelledAt"`
	CancelReason     string             `json:"cancelReason"`
}

type lineItemNode struct {
	ID                   string    `json:"id"`
	Title                string    `json:"title"`
	Name                 string    `json:"name"`
	VariantTitle         string    `json:"variantTitle"`
	SKU                  string    `json:"sku"`
	Vendor               string    `json:"vendor"`
	ProductType          string    `json:"productType"`
	Quantity             int       `json:"quantity"`
	OriginalUnitPriceSet *moneyBag `json:"originalUnitPriceSet"`
	TotalDiscountSet     *moneyBag `json:"totalDiscountSet"`
	FulfillmentService   *struct {
		ServiceName string `json:"serviceName"`
	} `json:"fulfillmentService"`
	FulfillmentStatus string             `json:"fulfillmentStatus"`
	Product           *idRef             `json:"product"`
	Variant           *idRef             `json:"variant"`
	CustomAttributes  []domain.Attribute `json:"customAttributes"`
	TaxLines          []struct {
		Title          string        `json:"title"`
		PriceSet       *moneyBag     `json:"priceSet"`
		Rate           domain.Amount `json:"rate"`
		RatePercentage domain.Amount `json:"ratePercentage"`
	} `json:"taxLines"`
}

// decodeNode unmarshals a raw record. A malformed record is a record-level
// failure, not a transport one.
func decodeNode(raw json.RawMessage, into any) error {
	if err := json.Unmarshal(raw, into); err != nil {
		return domain.InvalidRecordf("failed to decode node: %v", err)
	}
	return nil
}

func boolOr(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}

func lower(s string) string {
	return strings.ToLower(s)
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
