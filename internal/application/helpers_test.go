package application

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"archie-shopify-sync/internal/domain"
	"archie-shopify-sync/internal/infrastructure/lease"
	"archie-shopify-sync/internal/infrastructure/repository"
)

const testShop = "acme.myshopify.com"

// fakeClient serves pages per entity type in call order
type fakeClient struct {
	mu       sync.Mutex
	pages    map[domain.EntityType][]*domain.Page
	fail     map[domain.EntityType]int // call index that fails with err
	err      error
	shop     json.RawMessage
	calls    map[domain.EntityType]int
	requests []domain.PageRequest

	// beforeReturn runs inside FetchPage after the page is chosen
	beforeReturn func(entity domain.EntityType, call int)
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		pages: make(map[domain.EntityType][]*domain.Page),
		fail:  make(map[domain.EntityType]int),
		calls: make(map[domain.EntityType]int),
	}
}

func (c *fakeClient) FetchPage(_ context.Context, _, _ string, req domain.PageRequest) (*domain.Page, error) {
	c.mu.Lock()
	call := c.calls[req.EntityType]
	c.calls[req.EntityType]++
	c.requests = append(c.requests, req)
	pages := c.pages[req.EntityType]
	failAt, failing := c.fail[req.EntityType]
	hook := c.beforeReturn
	c.mu.Unlock()

	if hook != nil {
		hook(req.EntityType, call)
	}
	if failing && call == failAt {
		return nil, c.err
	}
	if call >= len(pages) {
		return &domain.Page{}, nil
	}
	p := *pages[call]
	return &p, nil
}

func (c *fakeClient) FetchShop(context.Context, string, string) (json.RawMessage, error) {
	if c.shop == nil {
		return nil, &domain.TransportError{Op: "shop", Status: 404, Err: fmt.Errorf("not found")}
	}
	return c.shop, nil
}

func (c *fakeClient) callCount(entity domain.EntityType) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[entity]
}

type staticTokens map[string]string

func (s staticTokens) GetAccessToken(_ context.Context, shop string) (string, error) {
	token, ok := s[shop]
	if !ok {
		return "", domain.ErrTokenNotFound
	}
	return token, nil
}

type capturingPublisher struct {
	mu     sync.Mutex
	events []domain.RunEvent
}

func (p *capturingPublisher) PublishRunEvent(_ context.Context, ev domain.RunEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *capturingPublisher) types() []domain.RunEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.RunEventType, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

type testEnv struct {
	store     *repository.SQLStore
	client    *fakeClient
	leases    *lease.MemoryManager
	publisher *capturingPublisher
	orch      *SyncOrchestrator
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithConfig(t, SyncConfig{PageSize: 2})
}

func newTestEnvWithConfig(t *testing.T, cfg SyncConfig) *testEnv {
	t.Helper()

	store, err := repository.OpenSQLStore(context.Background(), repository.DriverSQLite, filepath.Join(t.TempDir(), "sync.db"), zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, store.Migrate())
	t.Cleanup(func() { assert.NoError(t, store.Close()) })

	env := &testEnv{
		store:     store,
		client:    newFakeClient(),
		leases:    lease.NewMemoryManager(),
		publisher: &capturingPublisher{},
	}
	env.orch = NewSyncOrchestrator(OrchestratorDeps{
		Tokens:    staticTokens{testShop: "shpat_test"},
		Client:    env.client,
		Shops:     store.Shops(),
		Products:  store.Products(),
		Customers: store.Customers(),
		Orders:    store.Orders(),
		Lookup:    store.Lookup(),
		Runs:      store.SyncRuns(),
		Leases:    env.leases,
		Publisher: env.publisher,
	}, cfg, zerolog.Nop())
	return env
}

func page(cursor string, hasNext bool, records ...json.RawMessage) *domain.Page {
	return &domain.Page{
		Records:  records,
		PageInfo: domain.PageInfo{HasNextPage: hasNext, EndCursor: cursor},
	}
}

func productRecord(id int, title, price string) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{
		"id": "gid://shopify/Product/%d",
		"title": %q,
		"handle": "p-%d",
		"status": "ACTIVE",
		"tags": ["summer"],
		"variants": {"edges": [{"node": {
			"id": "gid://shopify/ProductVariant/%d01",
			"title": "Default",
			"price": %q,
			"sku": "SKU-%d",
			"inventoryQuantity": 5,
			"selectedOptions": [{"name": "Size", "value": "M"}]
		}}]},
		"createdAt": "2024-01-01T00:00:00Z",
		"updatedAt": "2024-01-02T10:00:00+02:00"
	}`, id, title, id, id, price, id))
}

func customerRecord(id int, email string) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{
		"id": "gid://shopify/Customer/%d",
		"email": %q,
		"firstName": "Ada",
		"state": "ENABLED",
		"ordersCount": "2",
		"totalSpentV2": {"amount": "30.00", "currencyCode": "EUR"},
		"createdAt": "2024-02-01T08:00:00+01:00"
	}`, id, email))
}

func orderRecord(id int, customerID string, productID int) json.RawMessage {
	customer := "null"
	if customerID != "" {
		customer = fmt.Sprintf(`{"id": "gid://shopify/Customer/%s"}`, customerID)
	}
	return json.RawMessage(fmt.Sprintf(`{
		"id": "gid://shopify/Order/%d",
		"name": "#%d",
		"orderNumber": %d,
		"totalPriceSet": {"shopMoney": {"amount": "12.50", "currencyCode": "EUR"}},
		"financialStatus": "PAID",
		"customer": %s,
		"lineItems": {"edges": [{"node": {
			"id": "gid://shopify/LineItem/%d01",
			"title": "Widget",
			"quantity": 2,
			"originalUnitPriceSet": {"shopMoney": {"amount": "6.25", "currencyCode": "EUR"}},
			"product": {"id": "gid://shopify/Product/%d"}
		}}]},
		"createdAt": "2024-03-01T09:30:00-05:00"
	}`, id, 1000+id, 1000+id, customer, id, productID))
}
