package application

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"archie-shopify-sync/internal/domain"
	"archie-shopify-sync/internal/ports"

	"github.com/rs/zerolog"
)

// OrderUpserter upserts an order and replaces its line items. The customer
// and line item products are linked through the resolver and stay NULL when
// they are not synced locally.
type OrderUpserter struct {
	orders   ports.OrderRepository
	resolver *RelationshipResolver
	logger   zerolog.Logger
}

// NewOrderUpserter creates a new order upserter
func NewOrderUpserter(orders ports.OrderRepository, resolver *RelationshipResolver, logger zerolog.Logger) *OrderUpserter {
	return &OrderUpserter{orders: orders, resolver: resolver, logger: logger}
}

func (u *OrderUpserter) Upsert(ctx context.Context, shop string, raw json.RawMessage) domain.UpsertResult {
	var node orderNode
	if err := decodeNode(raw, &node); err != nil {
		return domain.UpsertFailed("", err)
	}

	order, err := orderFromNode(shop, &node)
	if err != nil {
		return domain.UpsertFailed(node.ID, err)
	}

	customer, err := u.resolver.Resolve(ctx, shop, domain.ResourceCustomer, order.CustomerExternalID)
	if err != nil {
		return domain.UpsertFailed(order.ExternalID, err)
	}
	order.CustomerID = customer.Ptr()

	for i := range order.LineItems {
		item := &order.LineItems[i]
		product, err := u.resolver.Resolve(ctx, shop, domain.ResourceProduct, item.ProductExternalID)
		if err != nil {
			return domain.UpsertFailed(order.ExternalID, err)
		}
		item.ProductID = product.Ptr()
	}

	existing, err := u.orders.FindByExternalID(ctx, shop, order.ExternalID)
	if err != nil {
		return domain.UpsertFailed(order.ExternalID, fmt.Errorf("failed to find order: %w", err))
	}

	created := existing == nil
	if existing != nil {
		order.ID = existing.ID
		order.CreatedAt = existing.CreatedAt
		if err := u.orders.Update(ctx, order); err != nil {
			return domain.UpsertFailed(order.ExternalID, fmt.Errorf("failed to update order: %w", err))
		}
	} else {
		order.CreatedAt = order.UpdatedAt
		id, err := u.orders.Insert(ctx, order)
		if err != nil {
			return domain.UpsertFailed(order.ExternalID, fmt.Errorf("failed to insert order: %w", err))
		}
		order.ID = id
	}

	for i := range order.LineItems {
		order.LineItems[i].OrderID = order.ID
	}
	if err := u.orders.ReplaceLineItems(ctx, order.ID, order.LineItems); err != nil {
		return domain.UpsertFailed(order.ExternalID, fmt.Errorf("failed to replace line items: %w", err))
	}

	return domain.Upserted(order.ExternalID, order.ID, created)
}

func orderFromNode(shop string, node *orderNode) (*domain.Order, error) {
	externalID, err := domain.DecodeGID(node.ID, domain.ResourceOrder)
	if err != nil {
		return nil, err
	}
	customerExternalID, err := domain.DecodeOptionalGID(node.Customer.id(), domain.ResourceCustomer)
	if err != nil {
		return nil, err
	}

	ts := now()
	order := &domain.Order{
		ShopDomain:         shop,
		ExternalID:         externalID,
		CustomerExternalID: customerExternalID,
		Name:               node.Name,
		Email:              node.Email,
		Phone:              node.Phone,
		TotalPrice:         node.TotalPriceSet.amount(),
		SubtotalPrice:      node.SubtotalPriceSet.amount(),
		TotalTax:           node.TotalTaxSet.amount(),
		TotalDiscounts:     node.TotalDiscountsSet.amount(),
		TotalShipping:      node.TotalShippingPriceSet.amount(),
		Currency:           node.TotalPriceSet.currency(),
		FinancialStatus:    lower(node.FinancialStatus),
		FulfillmentStatus:  lower(node.FulfillmentStatus),
		CancelReason:       lower(node.CancelReason),
		CancelledAt:        domain.ParseTimestamp(node.CancelledAt),
		BillingAddress:     node.BillingAddress.toDomain(),
		ShippingAddress:    node.ShippingAddress.toDomain(),
		ShippingLines:      []domain.ShippingLine{},
		Fulfillments:       []domain.Fulfillment{},
		TrackingNumbers:    []string{},
		TrackingURLs:       []string{},
		Tags:               nonNilStrings(node.Tags),
		Note:               node.Note,
		NoteAttributes:     node.CustomAttributes,
		DiscountCodes:      nonNilStrings(node.DiscountCodes),
		RemoteCreatedAt:    domain.ParseTimestamp(node.CreatedAt),
		RemoteUpdatedAt:    domain.ParseTimestamp(node.UpdatedAt),
		ProcessedAt:        domain.ParseTimestamp(node.ProcessedAt),
		ClosedAt:           domain.ParseTimestamp(node.ClosedAt),
		LastSynced:         ts,
		UpdatedAt:          ts,
	}
	if node.OrderNumber != 0 {
		order.OrderNumber = strconv.FormatInt(int64(node.OrderNumber), 10)
	}
	if order.Currency == "" {
		order.Currency = domain.DefaultCurrency
	}
	if order.NoteAttributes == nil {
		order.NoteAttributes = []domain.Attribute{}
	}

	for _, sl := range node.ShippingLines.nodes() {
		order.ShippingLines = append(order.ShippingLines, domain.ShippingLine{
			Title:             sl.Title,
			Code:              sl.Code,
			CarrierIdentifier: sl.CarrierIdentifier,
			Price:             sl.OriginalPriceSet.money(),
		})
	}
	for _, f := range node.Fulfillments {
		order.Fulfillments = append(order.Fulfillments, domain.Fulfillment{
			Status:    lower(f.Status),
			UpdatedAt: domain.ParseTimestamp(f.UpdatedAt),
		})
		for _, info := range f.TrackingInfo {
			if info.Number != "" {
				order.TrackingNumbers = append(order.TrackingNumbers, info.Number)
			}
			if info.URL != "" {
				order.TrackingURLs = append(order.TrackingURLs, info.URL)
			}
		}
	}

	for _, ln := range node.LineItems.nodes() {
		item, err := lineItemFromNode(order, &ln)
		if err != nil {
			return nil, err
		}
		order.LineItems = append(order.LineItems, *item)
	}

	return order, nil
}

func lineItemFromNode(order *domain.Order, node *lineItemNode) (*domain.OrderLineItem, error) {
	externalID, err := domain.DecodeGID(node.ID, domain.ResourceLineItem)
	if err != nil {
		return nil, err
	}
	productExternalID, err := domain.DecodeOptionalGID(node.Product.id(), domain.ResourceProduct)
	if err != nil {
		return nil, err
	}
	variantExternalID, err := domain.DecodeOptionalGID(node.Variant.id(), domain.ResourceProductVariant)
	if err != nil {
		return nil, err
	}

	item := &domain.OrderLineItem{
		ShopDomain:        order.ShopDomain,
		ExternalID:        externalID,
		OrderExternalID:   order.ExternalID,
		ProductExternalID: productExternalID,
		VariantExternalID: variantExternalID,
		Title:             node.Title,
		Name:              node.Name,
		VariantTitle:      node.VariantTitle,
		SKU:               node.SKU,
		Vendor:            node.Vendor,
		ProductType:       node.ProductType,
		Quantity:          node.Quantity,
		Price:             node.OriginalUnitPriceSet.amount(),
		TotalDiscount:     node.TotalDiscountSet.amount(),
		FulfillmentStatus: lower(node.FulfillmentStatus),
		Properties:        node.CustomAttributes,
		TaxLines:          []domain.TaxLine{},
		CreatedAt:         order.UpdatedAt,
		UpdatedAt:         order.UpdatedAt,
	}
	if node.FulfillmentService != nil {
		item.FulfillmentService = node.FulfillmentService.ServiceName
	}
	if item.Properties == nil {
		item.Properties = []domain.Attribute{}
	}
	for _, tl := range node.TaxLines {
		item.TaxLines = append(item.TaxLines, domain.TaxLine{
			Title:          tl.Title,
			Price:          tl.PriceSet.money(),
			Rate:           tl.Rate,
			RatePercentage: tl.RatePercentage,
		})
	}

	return item, nil
}
