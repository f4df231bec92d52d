package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"archie-shopify-sync/internal/domain"
)

func TestSyncProducts_TwoPageScenario(t *testing.T) {
	env := newTestEnv(t)
	env.client.pages[domain.EntityProducts] = []*domain.Page{
		page("C1", true, productRecord(1, "Shirt", "12.50"), productRecord(2, "Hat", "8.00")),
		page("C2", false, productRecord(3, "Scarf", "0.10")),
	}
	ctx := context.Background()

	run, err := env.orch.SyncProducts(ctx, testShop)
	require.NoError(t, err)

	assert.Equal(t, domain.SyncStatusSuccess, run.Status)
	assert.Equal(t, domain.SyncCounters{Processed: 3, Created: 3}, run.Counters)
	require.NotNil(t, run.LastCursor)
	assert.Equal(t, "C2", *run.LastCursor)
	assert.NotNil(t, run.EndTime)
	assert.NotNil(t, run.DurationSeconds)
	assert.Equal(t, 2, run.Metadata.Pages)

	stored, err := env.store.SyncRuns().Get(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.Counters, stored.Counters)
	assert.Equal(t, "C2", *stored.LastCursor)
	assert.Equal(t, domain.SyncStatusSuccess, stored.Status)

	assert.Equal(t, 2, env.client.callCount(domain.EntityProducts))
	require.Len(t, env.client.requests, 2)
	assert.Equal(t, "", env.client.requests[0].After)
	assert.Equal(t, "C1", env.client.requests[1].After)
	assert.Equal(t, 2, env.client.requests[0].PageSize)

	assert.Equal(t, []domain.RunEventType{
		domain.RunEventStarted, domain.RunEventCheckpoint, domain.RunEventCheckpoint, domain.RunEventSucceeded,
	}, env.publisher.types())
	assert.False(t, env.leases.Held("sync:"+testShop+":products"))
}

func TestSyncProducts_IdempotentResync(t *testing.T) {
	env := newTestEnv(t)
	env.client.pages[domain.EntityProducts] = []*domain.Page{
		page("C1", false, productRecord(1, "Shirt", "12.50"), productRecord(2, "Hat", "8.00")),
	}
	ctx := context.Background()

	first, err := env.orch.SyncProducts(ctx, testShop)
	require.NoError(t, err)
	before, err := env.store.Products().FindByExternalID(ctx, testShop, "1")
	require.NoError(t, err)
	require.NotNil(t, before)

	env.client.calls = map[domain.EntityType]int{}
	second, err := env.orch.SyncProducts(ctx, testShop)
	require.NoError(t, err)

	assert.Equal(t, domain.SyncCounters{Processed: 2, Created: 2}, first.Counters)
	assert.Equal(t, domain.SyncCounters{Processed: 2, Updated: 2}, second.Counters)
	assert.NotEqual(t, first.ID, second.ID)

	after, err := env.store.Products().FindByExternalID(ctx, testShop, "1")
	require.NoError(t, err)
	assert.Equal(t, before.ID, after.ID)
	assert.Equal(t, before.Title, after.Title)
	assert.Equal(t, before.Status, after.Status)
	assert.Equal(t, before.Tags, after.Tags)
	assert.True(t, before.CreatedAt.Equal(after.CreatedAt))

	variants, err := env.store.Products().ListVariants(ctx, after.ID)
	require.NoError(t, err)
	require.Len(t, variants, 1)
	assert.Equal(t, "12.50", variants[0].Price.String())
	assert.Equal(t, "M", variants[0].Option1)
	assert.Equal(t, 5, variants[0].InventoryQuantity)
}

func TestSyncCustomersAndOrders_IdempotentResync(t *testing.T) {
	env := newTestEnv(t)
	env.client.pages[domain.EntityProducts] = []*domain.Page{page("P1", false, productRecord(5, "Widget", "6.25"))}
	env.client.pages[domain.EntityCustomers] = []*domain.Page{page("U1", false, customerRecord(42, "ada@example.com"))}
	env.client.pages[domain.EntityOrders] = []*domain.Page{page("O1", false, orderRecord(8, "42", 5))}
	ctx := context.Background()

	_, err := env.orch.SyncProducts(ctx, testShop)
	require.NoError(t, err)
	firstCustomers, err := env.orch.SyncCustomers(ctx, testShop)
	require.NoError(t, err)
	firstOrders, err := env.orch.SyncOrders(ctx, testShop, 7)
	require.NoError(t, err)
	assert.Equal(t, domain.SyncCounters{Processed: 1, Created: 1}, firstCustomers.Counters)
	assert.Equal(t, domain.SyncCounters{Processed: 1, Created: 1}, firstOrders.Counters)

	customerBefore, err := env.store.Customers().FindByExternalID(ctx, testShop, "42")
	require.NoError(t, err)
	orderBefore, err := env.store.Orders().FindByExternalID(ctx, testShop, "8")
	require.NoError(t, err)
	itemsBefore, err := env.store.Orders().ListLineItems(ctx, orderBefore.ID)
	require.NoError(t, err)

	env.client.calls = map[domain.EntityType]int{}
	secondCustomers, err := env.orch.SyncCustomers(ctx, testShop)
	require.NoError(t, err)
	secondOrders, err := env.orch.SyncOrders(ctx, testShop, 7)
	require.NoError(t, err)
	assert.Equal(t, domain.SyncCounters{Processed: 1, Updated: 1}, secondCustomers.Counters)
	assert.Equal(t, domain.SyncCounters{Processed: 1, Updated: 1}, secondOrders.Counters)

	customerAfter, err := env.store.Customers().FindByExternalID(ctx, testShop, "42")
	require.NoError(t, err)
	assert.Equal(t, customerBefore.ID, customerAfter.ID)
	assert.Equal(t, customerBefore.Email, customerAfter.Email)
	assert.Equal(t, "30.00", customerAfter.TotalSpent.String())
	assert.Equal(t, customerBefore.OrdersCount, customerAfter.OrdersCount)
	require.NotNil(t, customerAfter.RemoteCreatedAt)
	assert.True(t, customerBefore.RemoteCreatedAt.Equal(*customerAfter.RemoteCreatedAt))
	assert.True(t, customerBefore.CreatedAt.Equal(customerAfter.CreatedAt))

	orderAfter, err := env.store.Orders().FindByExternalID(ctx, testShop, "8")
	require.NoError(t, err)
	assert.Equal(t, orderBefore.ID, orderAfter.ID)
	assert.Equal(t, "12.50", orderAfter.TotalPrice.String())
	assert.Equal(t, orderBefore.Currency, orderAfter.Currency)
	assert.Equal(t, orderBefore.FinancialStatus, orderAfter.FinancialStatus)
	assert.Equal(t, orderBefore.CustomerID, orderAfter.CustomerID)
	require.NotNil(t, orderAfter.RemoteCreatedAt)
	assert.True(t, orderBefore.RemoteCreatedAt.Equal(*orderAfter.RemoteCreatedAt))
	assert.Equal(t, time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC), orderAfter.RemoteCreatedAt.UTC())

	itemsAfter, err := env.store.Orders().ListLineItems(ctx, orderAfter.ID)
	require.NoError(t, err)
	require.Len(t, itemsAfter, len(itemsBefore))
	assert.Equal(t, itemsBefore[0].ExternalID, itemsAfter[0].ExternalID)
	assert.Equal(t, "6.25", itemsAfter[0].Price.String())
	assert.Equal(t, itemsBefore[0].Quantity, itemsAfter[0].Quantity)
	assert.Equal(t, itemsBefore[0].ProductID, itemsAfter[0].ProductID)
}

func TestSyncOrders_UnknownCustomerAndProduct(t *testing.T) {
	env := newTestEnv(t)
	env.client.pages[domain.EntityOrders] = []*domain.Page{
		page("O1", false, orderRecord(7, "C-404", 99)),
	}
	ctx := context.Background()

	run, err := env.orch.SyncOrders(ctx, testShop, 0)
	require.NoError(t, err)
	assert.Equal(t, domain.SyncCounters{Processed: 1, Created: 1}, run.Counters)
	assert.Equal(t, 30, run.Metadata.DaysBack)
	assert.True(t, strings.HasPrefix(env.client.requests[0].Filter, "created_at:>="))

	order, err := env.store.Orders().FindByExternalID(ctx, testShop, "7")
	require.NoError(t, err)
	require.NotNil(t, order)
	assert.Nil(t, order.CustomerID)
	assert.Equal(t, "C-404", order.CustomerExternalID)
	assert.Equal(t, "12.50", order.TotalPrice.String())
	assert.Equal(t, "EUR", order.Currency)
	assert.Equal(t, "paid", order.FinancialStatus)
	require.NotNil(t, order.RemoteCreatedAt)
	assert.Equal(t, time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC), order.RemoteCreatedAt.UTC())

	items, err := env.store.Orders().ListLineItems(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Nil(t, items[0].ProductID)
	assert.Equal(t, "99", items[0].ProductExternalID)
	assert.Equal(t, "6.25", items[0].Price.String())
}

func TestSyncOrders_ResolvesSyncedRelationships(t *testing.T) {
	env := newTestEnv(t)
	env.client.pages[domain.EntityProducts] = []*domain.Page{page("P1", false, productRecord(5, "Widget", "6.25"))}
	env.client.pages[domain.EntityCustomers] = []*domain.Page{page("U1", false, customerRecord(42, "ada@example.com"))}
	env.client.pages[domain.EntityOrders] = []*domain.Page{page("O1", false, orderRecord(8, "42", 5))}
	ctx := context.Background()

	_, err := env.orch.SyncProducts(ctx, testShop)
	require.NoError(t, err)
	_, err = env.orch.SyncCustomers(ctx, testShop)
	require.NoError(t, err)
	_, err = env.orch.SyncOrders(ctx, testShop, 7)
	require.NoError(t, err)

	product, err := env.store.Products().FindByExternalID(ctx, testShop, "5")
	require.NoError(t, err)
	customer, err := env.store.Customers().FindByExternalID(ctx, testShop, "42")
	require.NoError(t, err)
	require.NotNil(t, customer)
	assert.Equal(t, "30.00", customer.TotalSpent.String())
	assert.Equal(t, "enabled", customer.State)

	order, err := env.store.Orders().FindByExternalID(ctx, testShop, "8")
	require.NoError(t, err)
	require.NotNil(t, order.CustomerID)
	assert.Equal(t, customer.ID, *order.CustomerID)

	// a resync replaces the line items instead of duplicating them
	env.client.calls = map[domain.EntityType]int{}
	_, err = env.orch.SyncOrders(ctx, testShop, 7)
	require.NoError(t, err)

	items, err := env.store.Orders().ListLineItems(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.NotNil(t, items[0].ProductID)
	assert.Equal(t, product.ID, *items[0].ProductID)
}

func TestSyncProducts_RecordFailureIsCounted(t *testing.T) {
	env := newTestEnv(t)
	env.client.pages[domain.EntityProducts] = []*domain.Page{
		page("C1", false,
			productRecord(1, "Shirt", "12.50"),
			[]byte(`{"id": "gid://shopify/Order/9", "title": "not a product"}`),
			[]byte(`{"id": 17}`),
		),
	}

	run, err := env.orch.SyncProducts(context.Background(), testShop)
	require.NoError(t, err)
	assert.Equal(t, domain.SyncStatusSuccess, run.Status)
	assert.Equal(t, domain.SyncCounters{Processed: 3, Created: 1, Failed: 2}, run.Counters)
}

func TestSyncProducts_TransportErrorFreezesCounters(t *testing.T) {
	env := newTestEnv(t)
	env.client.pages[domain.EntityProducts] = []*domain.Page{
		page("C1", true, productRecord(1, "Shirt", "12.50"), productRecord(2, "Hat", "8.00")),
		page("C2", false, productRecord(3, "Scarf", "1.00")),
	}
	env.client.fail[domain.EntityProducts] = 1
	env.client.err = &domain.TransportError{Op: "products", Status: 503, Err: errors.New("unavailable")}

	run, err := env.orch.SyncProducts(context.Background(), testShop)
	require.Error(t, err)
	assert.True(t, domain.IsTransportError(err))

	assert.Equal(t, domain.SyncStatusError, run.Status)
	assert.Equal(t, domain.SyncCounters{Processed: 2, Created: 2}, run.Counters)
	assert.Equal(t, "C1", *run.LastCursor)
	assert.Contains(t, run.ErrorMessage, "503")

	stored, err := env.store.SyncRuns().Get(context.Background(), run.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SyncStatusError, stored.Status)
	assert.Equal(t, 2, stored.Counters.Processed)
	assert.False(t, env.leases.Held("sync:"+testShop+":products"))
}

func TestSyncProducts_CancelBetweenPages(t *testing.T) {
	env := newTestEnv(t)
	env.client.pages[domain.EntityProducts] = []*domain.Page{
		page("C1", true, productRecord(1, "Shirt", "12.50"), productRecord(2, "Hat", "8.00")),
		page("C2", false, productRecord(3, "Scarf", "1.00")),
	}
	env.client.beforeReturn = func(entity domain.EntityType, call int) {
		if call == 0 {
			assert.True(t, env.orch.Cancel(testShop, entity))
		}
	}

	run, err := env.orch.SyncProducts(context.Background(), testShop)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSyncCancelled)

	assert.Equal(t, domain.SyncStatusError, run.Status)
	assert.True(t, strings.HasPrefix(run.ErrorMessage, "sync cancelled"), run.ErrorMessage)
	assert.Equal(t, 2, run.Counters.Processed)
	assert.Equal(t, 1, env.client.callCount(domain.EntityProducts))
	assert.False(t, env.orch.Cancel(testShop, domain.EntityProducts))
}

func TestSync_TokenNotFoundCreatesNoRun(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.orch.SyncProducts(ctx, "unknown.myshopify.com")
	assert.ErrorIs(t, err, domain.ErrTokenNotFound)

	_, err = env.orch.SyncAll(ctx, "unknown.myshopify.com")
	assert.ErrorIs(t, err, domain.ErrTokenNotFound)

	_, err = env.orch.Trigger(ctx, "unknown.myshopify.com", domain.EntityOrders, 0)
	assert.ErrorIs(t, err, domain.ErrTokenNotFound)

	runs, err := env.store.SyncRuns().List(ctx, domain.SyncRunFilter{ShopDomain: "unknown.myshopify.com"})
	require.NoError(t, err)
	assert.Empty(t, runs)
	assert.Zero(t, env.client.callCount(domain.EntityProducts))
}

func TestSync_LeaseConflict(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	held, err := env.leases.Acquire(ctx, "sync:"+testShop+":customers", time.Minute)
	require.NoError(t, err)

	_, err = env.orch.SyncCustomers(ctx, testShop)
	assert.ErrorIs(t, err, domain.ErrLeaseHeld)

	_, err = env.orch.Trigger(ctx, testShop, domain.EntityCustomers, 0)
	assert.ErrorIs(t, err, domain.ErrLeaseHeld)

	// a full sync takes every lease up front and keeps none on conflict
	_, err = env.orch.TriggerFull(ctx, testShop)
	assert.ErrorIs(t, err, domain.ErrLeaseHeld)
	assert.False(t, env.leases.Held("sync:"+testShop+":shop"))
	assert.False(t, env.leases.Held("sync:"+testShop+":products"))

	runs, err := env.store.SyncRuns().List(ctx, domain.SyncRunFilter{ShopDomain: testShop})
	require.NoError(t, err)
	assert.Empty(t, runs)

	require.NoError(t, held.Release(ctx))
	run, err := env.orch.SyncCustomers(ctx, testShop)
	require.NoError(t, err)
	assert.Equal(t, domain.SyncStatusSuccess, run.Status)
}

func shopRecord() []byte {
	return []byte(`{
		"id": "gid://shopify/Shop/1",
		"name": "Acme",
		"email": "owner@acme.test",
		"myshopifyDomain": "acme.myshopify.com",
		"primaryDomain": {"host": "acme.test"},
		"currencyCode": "EUR",
		"ianaTimezone": "Europe/Madrid",
		"plan": {"displayName": "Basic"}
	}`)
}

func TestSyncAll_RunsEveryEntityInOrder(t *testing.T) {
	env := newTestEnv(t)
	env.client.shop = shopRecord()
	env.client.pages[domain.EntityProducts] = []*domain.Page{page("P1", false, productRecord(5, "Widget", "6.25"))}
	env.client.pages[domain.EntityCustomers] = []*domain.Page{page("U1", false, customerRecord(42, "ada@example.com"))}
	env.client.pages[domain.EntityOrders] = []*domain.Page{page("O1", false, orderRecord(8, "42", 5))}
	ctx := context.Background()

	runs, err := env.orch.SyncAll(ctx, testShop)
	require.NoError(t, err)
	require.Len(t, runs, 4)
	for i, entity := range domain.SyncOrder {
		assert.Equal(t, entity, runs[i].EntityType)
		assert.Equal(t, domain.SyncStatusSuccess, runs[i].Status)
		assert.Equal(t, 1, runs[i].Counters.Processed)
	}
	assert.Equal(t, 90, runs[3].Metadata.DaysBack)

	shop, err := env.store.Shops().FindByDomain(ctx, testShop)
	require.NoError(t, err)
	require.NotNil(t, shop)
	assert.Equal(t, "Acme", shop.Name)

	summary, err := env.orch.GetStatus(ctx, testShop)
	require.NoError(t, err)
	require.Len(t, summary.Entities, 4)
	for _, s := range summary.Entities {
		assert.Equal(t, domain.SyncStatusSuccess, s.Status)
		assert.NotNil(t, s.LastSync)
	}
}

func TestSyncAll_ContinuesAfterFailedRun(t *testing.T) {
	env := newTestEnv(t)
	env.client.shop = shopRecord()
	env.client.fail[domain.EntityProducts] = 0
	env.client.err = &domain.TransportError{Op: "products", Status: 500, Err: fmt.Errorf("boom")}
	env.client.pages[domain.EntityCustomers] = []*domain.Page{page("U1", false, customerRecord(42, "ada@example.com"))}

	runs, err := env.orch.SyncAll(context.Background(), testShop)
	require.Error(t, err)
	require.Len(t, runs, 4)
	assert.Equal(t, domain.SyncStatusSuccess, runs[0].Status)
	assert.Equal(t, domain.SyncStatusError, runs[1].Status)
	assert.Equal(t, domain.SyncStatusSuccess, runs[2].Status)
	assert.Equal(t, domain.SyncStatusSuccess, runs[3].Status)
}

func TestGetStatus_NeverSynced(t *testing.T) {
	env := newTestEnv(t)

	summary, err := env.orch.GetStatus(context.Background(), testShop)
	require.NoError(t, err)
	require.Len(t, summary.Entities, 4)
	for _, s := range summary.Entities {
		assert.Equal(t, domain.SyncStatusNeverSynced, s.Status)
		assert.Nil(t, s.LastSync)
	}
}

func TestTrigger_RunsInBackground(t *testing.T) {
	env := newTestEnv(t)
	env.client.pages[domain.EntityCustomers] = []*domain.Page{page("U1", false, customerRecord(42, "ada@example.com"))}
	ctx := context.Background()

	ack, err := env.orch.Trigger(ctx, testShop, domain.EntityCustomers, 0)
	require.NoError(t, err)
	assert.Equal(t, domain.SyncStatusInProgress, ack.Status)

	env.orch.Wait()

	runs, err := env.orch.ListRuns(ctx, domain.SyncRunFilter{ShopDomain: testShop, EntityType: domain.EntityCustomers})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, domain.SyncStatusSuccess, runs[0].Status)
	assert.Equal(t, "U1", *runs[0].LastCursor)
	assert.False(t, env.leases.Held("sync:"+testShop+":customers"))

	_, err = env.orch.Trigger(ctx, testShop, domain.EntityType("widgets"), 0)
	assert.Error(t, err)
}

func TestShutdown_CancelsBackgroundRuns(t *testing.T) {
	env := newTestEnv(t)
	env.client.pages[domain.EntityProducts] = []*domain.Page{
		page("C1", true, productRecord(1, "Shirt", "12.50")),
		page("C2", false, productRecord(2, "Hat", "8.00")),
	}
	started := make(chan struct{})
	proceed := make(chan struct{})
	env.client.beforeReturn = func(_ domain.EntityType, call int) {
		if call == 0 {
			close(started)
			<-proceed
		}
	}
	ctx := context.Background()

	_, err := env.orch.Trigger(ctx, testShop, domain.EntityProducts, 0)
	require.NoError(t, err)
	<-started

	done := make(chan error, 1)
	go func() { done <- env.orch.Shutdown(ctx) }()

	// let the first page finish only after shutdown has been requested
	require.Eventually(t, func() bool { return env.orch.baseCtx.Err() != nil }, time.Second, 10*time.Millisecond)
	close(proceed)
	require.NoError(t, <-done)

	run, err := env.store.SyncRuns().Latest(ctx, testShop, domain.EntityProducts)
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, domain.SyncStatusError, run.Status)
	assert.Equal(t, "sync cancelled: service shutting down", run.ErrorMessage)
	assert.Equal(t, 1, run.Counters.Processed)
}

func TestTriggerFull_KeepsPendingLeasesAlive(t *testing.T) {
	env := newTestEnvWithConfig(t, SyncConfig{PageSize: 2, LeaseTTL: 100 * time.Millisecond})
	env.client.shop = shopRecord()
	env.client.pages[domain.EntityProducts] = []*domain.Page{
		page("C1", true, productRecord(1, "Shirt", "12.50")),
		page("C2", true, productRecord(2, "Hat", "8.00")),
		page("C3", false, productRecord(3, "Scarf", "0.10")),
	}
	env.client.pages[domain.EntityCustomers] = []*domain.Page{page("U1", false, customerRecord(42, "ada@example.com"))}

	productsStarted := make(chan struct{})
	var once sync.Once
	env.client.beforeReturn = func(entity domain.EntityType, _ int) {
		if entity == domain.EntityProducts {
			once.Do(func() { close(productsStarted) })
			time.Sleep(60 * time.Millisecond)
		}
	}
	ctx := context.Background()

	ack, err := env.orch.TriggerFull(ctx, testShop)
	require.NoError(t, err)
	assert.Equal(t, domain.SyncOrder, ack.EntityTypes)
	<-productsStarted

	// past the lease TTL while products are still syncing
	time.Sleep(150 * time.Millisecond)
	assert.True(t, env.leases.Held("sync:"+testShop+":customers"))
	_, err = env.orch.Trigger(ctx, testShop, domain.EntityCustomers, 0)
	require.ErrorIs(t, err, domain.ErrLeaseHeld)

	env.orch.Wait()

	for _, entity := range domain.SyncOrder {
		runs, err := env.orch.ListRuns(ctx, domain.SyncRunFilter{ShopDomain: testShop, EntityType: entity})
		require.NoError(t, err)
		require.Len(t, runs, 1, entity)
		assert.Equal(t, domain.SyncStatusSuccess, runs[0].Status, "%s: %s", entity, runs[0].ErrorMessage)
		assert.False(t, env.leases.Held("sync:"+testShop+":"+string(entity)))
	}
}

func TestTrigger_RunExistsBeforeAck(t *testing.T) {
	env := newTestEnv(t)
	env.client.pages[domain.EntityCustomers] = []*domain.Page{page("U1", false, customerRecord(42, "ada@example.com"))}
	proceed := make(chan struct{})
	env.client.beforeReturn = func(domain.EntityType, int) { <-proceed }
	ctx := context.Background()

	ack, err := env.orch.Trigger(ctx, testShop, domain.EntityCustomers, 0)
	require.NoError(t, err)
	require.Len(t, ack.RunIDs, 1)

	summary, err := env.orch.GetStatus(ctx, testShop)
	require.NoError(t, err)
	for _, s := range summary.Entities {
		if s.EntityType == domain.EntityCustomers {
			assert.Equal(t, domain.SyncStatusInProgress, s.Status)
			assert.Equal(t, ack.RunIDs[0], s.RunID)
		}
	}

	close(proceed)
	env.orch.Wait()

	run, err := env.store.SyncRuns().Get(ctx, ack.RunIDs[0])
	require.NoError(t, err)
	assert.Equal(t, domain.SyncStatusSuccess, run.Status)
}

func TestTriggerFull_FirstRunExistsBeforeAck(t *testing.T) {
	env := newTestEnv(t)
	env.client.shop = shopRecord()
	ctx := context.Background()

	ack, err := env.orch.TriggerFull(ctx, testShop)
	require.NoError(t, err)
	require.Len(t, ack.RunIDs, 1)
	assert.Positive(t, ack.RunIDs[0])

	env.orch.Wait()

	run, err := env.store.SyncRuns().Get(ctx, ack.RunIDs[0])
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, domain.EntityShop, run.EntityType)
	assert.Equal(t, domain.SyncStatusSuccess, run.Status)
}
