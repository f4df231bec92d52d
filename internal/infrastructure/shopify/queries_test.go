package shopify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"archie-shopify-sync/internal/domain"
)

func TestQueries_RootFields(t *testing.T) {
	assert.Equal(t, "shop", shopQuery.RootField)
	assert.Equal(t, "getShop", shopQuery.Name)

	for entity, root := range map[domain.EntityType]string{
		domain.EntityProducts:  "products",
		domain.EntityCustomers: "customers",
		domain.EntityOrders:    "orders",
	} {
		q, err := queryFor(entity)
		require.NoError(t, err)
		assert.Equal(t, root, q.RootField)
	}
}

func TestParseQuery_Rejects(t *testing.T) {
	tests := map[string]string{
		"syntax":         `query broken { products(first: 1) {`,
		"two operations": `query a { shop { id } } query b { shop { id } }`,
		"two roots":      `query a { shop { id } products(first: 1) { edges { node { id } } } }`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := parseQuery(doc)
			assert.Error(t, err)
		})
	}
}
