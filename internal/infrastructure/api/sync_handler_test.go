package api

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"archie-shopify-sync/internal/domain"
	"archie-shopify-sync/internal/infrastructure/pubsub"
)

type triggerCall struct {
	shop     string
	entity   domain.EntityType
	daysBack int
}

type fakeSyncService struct {
	mu        sync.Mutex
	triggers  []triggerCall
	err       error
	active    map[domain.EntityType]bool
	runs      []*domain.SyncRun
	runFilter domain.SyncRunFilter
}

func (f *fakeSyncService) Trigger(_ context.Context, shop string, entity domain.EntityType, daysBack int) (*domain.TriggerAck, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.triggers = append(f.triggers, triggerCall{shop, entity, daysBack})
	return &domain.TriggerAck{ShopDomain: shop, EntityTypes: []domain.EntityType{entity}, Status: domain.SyncStatusInProgress}, nil
}

func (f *fakeSyncService) TriggerFull(_ context.Context, shop string) (*domain.TriggerAck, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.TriggerAck{ShopDomain: shop, EntityTypes: domain.SyncOrder, Status: domain.SyncStatusInProgress}, nil
}

func (f *fakeSyncService) Cancel(_ string, entity domain.EntityType) bool {
	return f.active[entity]
}

func (f *fakeSyncService) GetStatus(_ context.Context, shop string) (*domain.SyncStatusSummary, error) {
	return &domain.SyncStatusSummary{
		ShopDomain: shop,
		Entities: []domain.EntitySyncStatus{
			{EntityType: domain.EntityShop, Status: domain.SyncStatusNeverSynced},
			{EntityType: domain.EntityProducts, Status: domain.SyncStatusSuccess, RecordsProcessed: 3},
		},
	}, nil
}

func (f *fakeSyncService) ListRuns(_ context.Context, filter domain.SyncRunFilter) ([]*domain.SyncRun, error) {
	f.runFilter = filter
	return f.runs, nil
}

func newTestServer(t *testing.T, svc *fakeSyncService, events RunEventSource) http.Handler {
	t.Helper()
	return NewRouter(RouterConfig{
		Sync:    NewSyncHandler(svc, events, zerolog.Nop()),
		Metrics: http.NotFoundHandler(),
	})
}

func do(h http.Handler, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestTriggerEntity_Accepted(t *testing.T) {
	svc := &fakeSyncService{}
	h := newTestServer(t, svc, nil)

	rec := do(h, http.MethodPost, "/sync/acme.myshopify.com/products")
	require.Equal(t, http.StatusAccepted, rec.Code)

	var ack domain.TriggerAck
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ack))
	assert.Equal(t, domain.SyncStatusInProgress, ack.Status)
	assert.Equal(t, []triggerCall{{"acme.myshopify.com", domain.EntityProducts, 0}}, svc.triggers)
}

func TestTriggerEntity_DaysBack(t *testing.T) {
	tests := []struct {
		query    string
		status   int
		daysBack int
	}{
		{"", http.StatusAccepted, 0},
		{"?days_back=7", http.StatusAccepted, 7},
		{"?days_back=3650", http.StatusAccepted, 3650},
		{"?days_back=0", http.StatusBadRequest, 0},
		{"?days_back=3651", http.StatusBadRequest, 0},
		{"?days_back=week", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			svc := &fakeSyncService{}
			h := newTestServer(t, svc, nil)

			rec := do(h, http.MethodPost, "/sync/acme.myshopify.com/orders"+tt.query)
			require.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusAccepted {
				require.Len(t, svc.triggers, 1)
				assert.Equal(t, tt.daysBack, svc.triggers[0].daysBack)
			} else {
				assert.Empty(t, svc.triggers)
			}
		})
	}
}

func TestTriggerEntity_Errors(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		err    error
		status int
	}{
		{"unknown entity", "/sync/acme.myshopify.com/widgets", nil, http.StatusBadRequest},
		{"token missing", "/sync/acme.myshopify.com/customers", domain.ErrTokenNotFound, http.StatusNotFound},
		{"lease held", "/sync/acme.myshopify.com/customers", fmt.Errorf("acquire: %w", domain.ErrLeaseHeld), http.StatusConflict},
		{"full lease held", "/sync/acme.myshopify.com/full", domain.ErrLeaseHeld, http.StatusConflict},
		{"store failure", "/sync/acme.myshopify.com/shop", fmt.Errorf("db down"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestServer(t, &fakeSyncService{err: tt.err}, nil)
			rec := do(h, http.MethodPost, tt.path)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestTriggerFull_Accepted(t *testing.T) {
	h := newTestServer(t, &fakeSyncService{}, nil)

	rec := do(h, http.MethodPost, "/sync/acme.myshopify.com/full")
	require.Equal(t, http.StatusAccepted, rec.Code)

	var ack domain.TriggerAck
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ack))
	assert.Equal(t, domain.SyncOrder, ack.EntityTypes)
}

func TestCancel(t *testing.T) {
	h := newTestServer(t, &fakeSyncService{active: map[domain.EntityType]bool{domain.EntityOrders: true}}, nil)

	assert.Equal(t, http.StatusAccepted, do(h, http.MethodPost, "/sync/acme.myshopify.com/orders/cancel").Code)
	assert.Equal(t, http.StatusNotFound, do(h, http.MethodPost, "/sync/acme.myshopify.com/products/cancel").Code)
}

func TestStatus(t *testing.T) {
	h := newTestServer(t, &fakeSyncService{}, nil)

	rec := do(h, http.MethodGet, "/sync/acme.myshopify.com/status")
	require.Equal(t, http.StatusOK, rec.Code)

	var summary domain.SyncStatusSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, "acme.myshopify.com", summary.ShopDomain)
	require.Len(t, summary.Entities, 2)
	assert.Equal(t, domain.SyncStatusNeverSynced, summary.Entities[0].Status)
	assert.Equal(t, 3, summary.Entities[1].RecordsProcessed)
}

func TestRuns(t *testing.T) {
	svc := &fakeSyncService{}
	h := newTestServer(t, svc, nil)

	rec := do(h, http.MethodGet, "/sync/acme.myshopify.com/runs?entity=orders&limit=5")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
	assert.Equal(t, domain.SyncRunFilter{ShopDomain: "acme.myshopify.com", EntityType: domain.EntityOrders, Limit: 5}, svc.runFilter)

	assert.Equal(t, http.StatusBadRequest, do(h, http.MethodGet, "/sync/acme.myshopify.com/runs?limit=0").Code)
	assert.Equal(t, http.StatusBadRequest, do(h, http.MethodGet, "/sync/acme.myshopify.com/runs?entity=widgets").Code)
}

func TestHealth(t *testing.T) {
	h := newTestServer(t, &fakeSyncService{}, nil)

	rec := do(h, http.MethodGet, "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestEvents_StreamsMatchingRunEvents(t *testing.T) {
	ps := pubsub.NewRunEventPubSub(zerolog.Nop())
	srv := httptest.NewServer(newTestServer(t, &fakeSyncService{}, ps))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/sync/acme.myshopify.com/events?entity=products", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, ": connected\n", line)
	_, err = reader.ReadString('\n')
	require.NoError(t, err)

	// the subscription exists once the connected comment arrives
	require.NoError(t, ps.PublishRunEvent(ctx, domain.RunEvent{Type: domain.RunEventStarted, ShopDomain: "acme.myshopify.com", EntityType: domain.EntityOrders, RunID: 1}))
	require.NoError(t, ps.PublishRunEvent(ctx, domain.RunEvent{Type: domain.RunEventCheckpoint, ShopDomain: "acme.myshopify.com", EntityType: domain.EntityProducts, RunID: 2, Cursor: "C1"}))

	line, err = reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: sync.checkpoint\n", line)

	line, err = reader.ReadString('\n')
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(line, "data: "))

	var ev domain.RunEvent
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(strings.TrimSpace(line), "data: ")), &ev))
	assert.Equal(t, int64(2), ev.RunID)
	assert.Equal(t, "C1", ev.Cursor)
}

func TestEvents_DisabledWithoutSource(t *testing.T) {
	h := newTestServer(t, &fakeSyncService{}, nil)
	assert.Equal(t, http.StatusNotFound, do(h, http.MethodGet, "/sync/acme.myshopify.com/events").Code)
}
