package application

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"archie-shopify-sync/internal/domain"
)

func collect(t *testing.T, w *PageWalker, ctx context.Context, req WalkRequest) ([]*domain.Page, error) {
	t.Helper()
	var pages []*domain.Page
	for p, err := range w.Pages(ctx, req) {
		if err != nil {
			return pages, err
		}
		pages = append(pages, p)
	}
	return pages, nil
}

func TestPageWalker_StopsAfterLastPage(t *testing.T) {
	client := newFakeClient()
	client.pages[domain.EntityCustomers] = []*domain.Page{
		page("A", true, customerRecord(1, "a@x.test")),
		page("B", true, customerRecord(2, "b@x.test")),
		page("C", false, customerRecord(3, "c@x.test")),
		page("D", false, customerRecord(4, "never@x.test")),
	}
	w := NewPageWalker(client, nil, zerolog.Nop())

	pages, err := collect(t, w, context.Background(), WalkRequest{Shop: testShop, EntityType: domain.EntityCustomers, PageSize: 1})
	require.NoError(t, err)
	require.Len(t, pages, 3)
	assert.Equal(t, 3, client.callCount(domain.EntityCustomers))
	assert.Equal(t, []int{1, 2, 3}, []int{pages[0].Number, pages[1].Number, pages[2].Number})
	assert.Equal(t, "C", pages[2].PageInfo.EndCursor)
	assert.Equal(t, []string{"", "A", "B"}, []string{client.requests[0].After, client.requests[1].After, client.requests[2].After})
}

func TestPageWalker_ResumesFromCursor(t *testing.T) {
	client := newFakeClient()
	client.pages[domain.EntityProducts] = []*domain.Page{page("Z", false, productRecord(1, "Shirt", "1.00"))}
	w := NewPageWalker(client, nil, zerolog.Nop())

	_, err := collect(t, w, context.Background(), WalkRequest{EntityType: domain.EntityProducts, ResumeCursor: "Y", Filter: "status:active"})
	require.NoError(t, err)
	assert.Equal(t, "Y", client.requests[0].After)
	assert.Equal(t, "status:active", client.requests[0].Filter)
}

func TestPageWalker_EmptyPageEndsWalk(t *testing.T) {
	client := newFakeClient()
	client.pages[domain.EntityOrders] = []*domain.Page{page("A", true)}
	w := NewPageWalker(client, nil, zerolog.Nop())

	pages, err := collect(t, w, context.Background(), WalkRequest{EntityType: domain.EntityOrders})
	require.NoError(t, err)
	assert.Empty(t, pages)
	assert.Equal(t, 1, client.callCount(domain.EntityOrders))
}

func TestPageWalker_CursorMustAdvance(t *testing.T) {
	client := newFakeClient()
	client.pages[domain.EntityOrders] = []*domain.Page{
		page("A", true, orderRecord(1, "", 1)),
		page("A", true, orderRecord(2, "", 1)),
	}
	w := NewPageWalker(client, nil, zerolog.Nop())

	pages, err := collect(t, w, context.Background(), WalkRequest{EntityType: domain.EntityOrders})
	require.Error(t, err)
	assert.True(t, domain.IsTransportError(err))
	assert.Len(t, pages, 1)
}

func TestPageWalker_WrapsPlainErrors(t *testing.T) {
	client := newFakeClient()
	client.fail[domain.EntityProducts] = 0
	client.err = errors.New("socket closed")
	w := NewPageWalker(client, nil, zerolog.Nop())

	_, err := collect(t, w, context.Background(), WalkRequest{EntityType: domain.EntityProducts})
	var te *domain.TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "fetch products", te.Op)
}

func TestPageWalker_CancelledContext(t *testing.T) {
	client := newFakeClient()
	w := NewPageWalker(client, nil, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := collect(t, w, ctx, WalkRequest{EntityType: domain.EntityProducts})
	assert.ErrorIs(t, err, domain.ErrSyncCancelled)
	assert.Zero(t, client.callCount(domain.EntityProducts))
}

type countingMetrics struct {
	pages int
}

func (m *countingMetrics) RunFinished(domain.EntityType, domain.SyncStatus, float64) {}
func (m *countingMetrics) RecordsUpserted(domain.EntityType, domain.SyncCounters)    {}
func (m *countingMetrics) PageFetched(domain.EntityType)                            { m.pages++ }

func TestPageWalker_CountsPages(t *testing.T) {
	client := newFakeClient()
	client.pages[domain.EntityProducts] = []*domain.Page{
		page("A", true, productRecord(1, "A", "1.00")),
		page("B", false, productRecord(2, "B", "1.00")),
	}
	metrics := &countingMetrics{}
	w := NewPageWalker(client, metrics, zerolog.Nop())

	_, err := collect(t, w, context.Background(), WalkRequest{EntityType: domain.EntityProducts})
	require.NoError(t, err)
	assert.Equal(t, 2, metrics.pages)
}
