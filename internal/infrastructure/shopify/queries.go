package shopify

import (
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"

	"archie-shopify-sync/internal/domain"
)

// Query is a parsed Admin API document. RootField is the top-level field the
// response data is keyed by.
type Query struct {
	Name      string
	Document  string
	RootField string
}

func mustQuery(document string) *Query {
	q, err := parseQuery(document)
	if err != nil {
		panic(err)
	}
	return q
}

func parseQuery(document string) (*Query, error) {
	doc, err := parser.ParseQuery(&ast.Source{Name: "admin", Input: document})
	if err != nil {
		return nil, fmt.Errorf("failed to parse query: %w", err)
	}
	if len(doc.Operations) != 1 {
		return nil, fmt.Errorf("expected one operation, got %d", len(doc.Operations))
	}
	op := doc.Operations[0]
	if len(op.SelectionSet) != 1 {
		return nil, fmt.Errorf("operation %s must select exactly one root field", op.Name)
	}
	field, ok := op.SelectionSet[0].(*ast.Field)
	if !ok {
		return nil, fmt.Errorf("operation %s root selection is not a field", op.Name)
	}
	return &Query{Name: op.Name, Document: document, RootField: field.Name}, nil
}

func queryFor(entity domain.EntityType) (*Query, error) {
	switch entity {
	case domain.EntityProducts:
		return productsQuery, nil
	case domain.EntityCustomers:
		return customersQuery, nil
	case domain.EntityOrders:
		return ordersQuery, nil
	}
	return nil, fmt.Errorf("no paginated query for entity type %q", entity)
}

var shopQuery = mustQuery(`
query getShop {
  shop {
    id
    name
    email
    myshopifyDomain
    primaryDomain { host }
    currencyCode
    timezoneAbbreviation
    ianaTimezone
    contactEmail
    customerEmail
    phone
    address1
    address2
    city
    province
    country
    countryCode
    zip
    plan { displayName partnerDevelopment shopifyPlus }
    features { storefront multiLocation mobileStorefront }
  }
}`)

var productsQuery = mustQuery(`
query getProducts($first: Int!, $after: String, $query: String) {
  products(first: $first, after: $after, query: $query) {
    pageInfo { hasNextPage endCursor }
    edges {
      node {
        id
        title
        description
        handle
        vendor
        productType
        status
        tags
        images(first: 10) {
          edges { node { id url altText width height } }
        }
        variants(first: 100) {
          edges {
            node {
              id
              title
              price
              compareAtPrice
              sku
              barcode
              inventoryQuantity
              inventoryPolicy
              inventoryManagement
              weight
              weightUnit
              requiresShipping
              taxable
              selectedOptions { name value }
              image { id url }
              availableForSale
            }
          }
        }
        seo { title description }
        options { id name values position }
        publishedAt
        createdAt
        updatedAt
      }
    }
  }
}`)

var customersQuery = mustQuery(`
query getCustomers($first: Int!, $after: String, $query: String) {
  customers(first: $first, after: $after, query: $query) {
    pageInfo { hasNextPage endCursor }
    edges {
      node {
        id
        email
        firstName
        lastName
        phone
        acceptsMarketing
        ordersCount
        totalSpentV2 { amount currencyCode }
        state
        verifiedEmail
        taxExempt
        tags
        addresses(first: 10) {
          firstName lastName company address1 address2 city province country zip phone
        }
        defaultAddress {
          firstName lastName company address1 address2 city province country zip phone
        }
        createdAt
        updatedAt
      }
    }
  }
}`)

var ordersQuery = mustQuery(`
query getOrders($first: Int!, $after: String, $query: String) {
  orders(first: $first, after: $after, query: $query) {
    pageInfo { hasNextPage endCursor }
    edges {
      node {
        id
        name
        orderNumber
        email
        phone
        totalPriceSet { shopMoney { amount currencyCode } }
        subtotalPriceSet { shopMoney { amount currencyCode } }
        totalTaxSet { shopMoney { amount currencyCode } }
        totalDiscountsSet { shopMoney { amount currencyCode } }
        totalShippingPriceSet { shopMoney { amount currencyCode } }
        financialStatus
        fulfillmentStatus
        customer { id email firstName lastName phone }
        billingAddress {
          firstName lastName company address1 address2 city province country zip phone
        }
        shippingAddress {
          firstName lastName company address1 address2 city province country zip phone
        }
        lineItems(first: 100) {
          edges {
            node {
              id
              title
              name
              variantTitle
              sku
              vendor
              productType
              quantity
              originalUnitPriceSet { shopMoney { amount currencyCode } }
              totalDiscountSet { shopMoney { amount currencyCode } }
              fulfillmentService { serviceName }
              fulfillmentStatus
              product { id handle }
              variant { id sku title }
              customAttributes { key value }
              taxLines {
                title
                priceSet { shopMoney { amount currencyCode } }
                rate
                ratePercentage
              }
            }
          }
        }
        shippingLines(first: 10) {
          edges {
            node {
              title
              originalPriceSet { shopMoney { amount currencyCode } }
              carrierIdentifier
              code
            }
          }
        }
        fulfillments(first: 10) {
          trackingInfo { number url company }
          status
          updatedAt
        }
        tags
        note
        customAttributes { key value }
        discountCodes
        createdAt
        updatedAt
        processedAt
        closedAt
        cancelledAt
        cancelReason
      }
    }
  }
}`)
