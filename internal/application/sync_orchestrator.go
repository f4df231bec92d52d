package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"archie-shopify-sync/internal/domain"
	"archie-shopify-sync/internal/ports"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	errCancelRequested = errors.New("cancelled by request")
	errShuttingDown    = errors.New("service shutting down")
)

// SyncConfig holds the orchestrator's tunables
type SyncConfig struct {
	PageSize               int
	OrdersDaysBack         int
	FullSyncOrdersDaysBack int
	LeaseTTL               time.Duration
}

func (c SyncConfig) withDefaults() SyncConfig {
	if c.PageSize <= 0 {
		c.PageSize = 50
	}
	if c.OrdersDaysBack <= 0 {
		c.OrdersDaysBack = 30
	}
	if c.FullSyncOrdersDaysBack <= 0 {
		c.FullSyncOrdersDaysBack = 90
	}
	if c.LeaseTTL <= 0 {
		c.LeaseTTL = 5 * time.Minute
	}
	return c
}

// OrchestratorDeps are the collaborators of a SyncOrchestrator
type OrchestratorDeps struct {
	Tokens    ports.TokenProvider
	Client    ports.APIClient
	Shops     ports.ShopRepository
	Products  ports.ProductRepository
	Customers ports.CustomerRepository
	Orders    ports.OrderRepository
	Lookup    ports.NaturalKeyLookup
	Runs      ports.SyncRunRepository
	Leases    ports.LeaseManager
	Publisher ports.RunEventPublisher // optional
	Metrics   ports.SyncMetrics       // optional
}

type runKey struct {
	shop   string
	entity domain.EntityType
}

// SyncOrchestrator sequences sync runs. Each run holds an exclusive
// (shop, entity type) lease and produces exactly one SyncRun.
type SyncOrchestrator struct {
	tokens    ports.TokenProvider
	client    ports.APIClient
	runs      ports.SyncRunRepository
	leases    ports.LeaseManager
	metrics   ports.SyncMetrics
	walker    *PageWalker
	recorder  *SyncRunRecorder
	shopSync  EntityUpserter
	upserters map[domain.EntityType]EntityUpserter
	cfg       SyncConfig
	logger    zerolog.Logger

	baseCtx context.Context
	stop    context.CancelCauseFunc
	wg      sync.WaitGroup

	mu     sync.Mutex
	active map[runKey]context.CancelCauseFunc
}

// NewSyncOrchestrator creates a new sync orchestrator
func NewSyncOrchestrator(deps OrchestratorDeps, cfg SyncConfig, logger zerolog.Logger) *SyncOrchestrator {
	resolver := NewRelationshipResolver(deps.Lookup, logger)
	baseCtx, stop := context.WithCancelCause(context.Background())

	return &SyncOrchestrator{
		tokens:   deps.Tokens,
		client:   deps.Client,
		runs:     deps.Runs,
		leases:   deps.Leases,
		metrics:  deps.Metrics,
		walker:   NewPageWalker(deps.Client, deps.Metrics, logger),
		recorder: NewSyncRunRecorder(deps.Runs, deps.Publisher, logger),
		shopSync: NewShopUpserter(deps.Shops, logger),
		upserters: map[domain.EntityType]EntityUpserter{
			domain.EntityProducts:  NewProductUpserter(deps.Products, logger),
			domain.EntityCustomers: NewCustomerUpserter(deps.Customers, logger),
			domain.EntityOrders:    NewOrderUpserter(deps.Orders, resolver, logger),
		},
		cfg:     cfg.withDefaults(),
		logger:  logger,
		baseCtx: baseCtx,
		stop:    stop,
		active:  make(map[runKey]context.CancelCauseFunc),
	}
}

// SyncShopProfile syncs the shop profile
func (o *SyncOrchestrator) SyncShopProfile(ctx context.Context, shop string) (*domain.SyncRun, error) {
	return o.syncOne(ctx, shop, domain.EntityShop, 0)
}

// SyncProducts syncs every product and its variants
func (o *SyncOrchestrator) SyncProducts(ctx context.Context, shop string) (*domain.SyncRun, error) {
	return o.syncOne(ctx, shop, domain.EntityProducts, 0)
}

// SyncCustomers syncs every customer
func (o *SyncOrchestrator) SyncCustomers(ctx context.Context, shop string) (*domain.SyncRun, error) {
	return o.syncOne(ctx, shop, domain.EntityCustomers, 0)
}

// SyncOrders syncs orders created in the last daysBack days.
// A non-positive daysBack uses the configured default.
func (o *SyncOrchestrator) SyncOrders(ctx context.Context, shop string, daysBack int) (*domain.SyncRun, error) {
	return o.syncOne(ctx, shop, domain.EntityOrders, daysBack)
}

// SyncAll runs shop, products, customers and orders in that order.
// A failed run does not stop the sequence; cancellation and a missing
// token do. The returned error joins every run failure.
func (o *SyncOrchestrator) SyncAll(ctx context.Context, shop string) ([]*domain.SyncRun, error) {
	token, err := o.accessToken(ctx, shop)
	if err != nil {
		return nil, err
	}

	var (
		runs []*domain.SyncRun
		errs []error
	)
	for _, entity := range domain.SyncOrder {
		lease, err := o.acquire(ctx, shop, entity)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		run, err := o.execute(ctx, shop, entity, o.daysBack(entity, 0, true), token, lease)
		if run != nil {
			runs = append(runs, run)
		}
		if err != nil {
			errs = append(errs, err)
			if errors.Is(err, domain.ErrSyncCancelled) {
				break
			}
		}
	}

	return runs, errors.Join(errs...)
}

// Trigger starts a single entity sync in the background and acknowledges
// immediately. The token and lease are checked and the run row is created
// before returning, so a status poll right after the ack sees in_progress.
func (o *SyncOrchestrator) Trigger(ctx context.Context, shop string, entity domain.EntityType, daysBack int) (*domain.TriggerAck, error) {
	if _, ok := o.upserters[entity]; !ok && entity != domain.EntityShop {
		return nil, fmt.Errorf("unknown entity type %q", entity)
	}
	token, err := o.accessToken(ctx, shop)
	if err != nil {
		return nil, err
	}
	lease, err := o.acquire(ctx, shop, entity)
	if err != nil {
		return nil, err
	}
	p, err := o.start(o.baseCtx, shop, entity, o.daysBack(entity, daysBack, false), token, lease)
	if err != nil {
		return nil, err
	}

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		_, _ = o.finish(p)
	}()

	return &domain.TriggerAck{
		ShopDomain:  shop,
		EntityTypes: []domain.EntityType{entity},
		RunIDs:      []int64{p.run.ID},
		Status:      domain.SyncStatusInProgress,
		Message:     fmt.Sprintf("%s sync started", entity),
	}, nil
}

// TriggerFull starts a full sync in the background. All four leases are
// taken up front; if any is held, none is kept. Only the first run exists
// when the ack is returned; later runs are created as their turn comes.
func (o *SyncOrchestrator) TriggerFull(ctx context.Context, shop string) (*domain.TriggerAck, error) {
	token, err := o.accessToken(ctx, shop)
	if err != nil {
		return nil, err
	}

	leases := make([]ports.Lease, 0, len(domain.SyncOrder))
	for _, entity := range domain.SyncOrder {
		lease, err := o.acquire(ctx, shop, entity)
		if err != nil {
			o.releaseAll(leases)
			return nil, err
		}
		leases = append(leases, lease)
	}

	first := domain.SyncOrder[0]
	p, err := o.start(o.baseCtx, shop, first, o.daysBack(first, 0, true), token, leases[0])
	if err != nil {
		o.releaseAll(leases[1:])
		return nil, err
	}

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		for i, entity := range domain.SyncOrder {
			var err error
			if i == 0 {
				_, err = o.finish(p)
			} else {
				_, err = o.execute(o.baseCtx, shop, entity, o.daysBack(entity, 0, true), token, leases[i])
			}
			if errors.Is(err, domain.ErrSyncCancelled) {
				o.releaseAll(leases[i+1:])
				return
			}
		}
	}()

	return &domain.TriggerAck{
		ShopDomain:  shop,
		EntityTypes: domain.SyncOrder,
		RunIDs:      []int64{p.run.ID},
		Status:      domain.SyncStatusInProgress,
		Message:     "full sync started",
	}, nil
}

// Cancel stops the active run for (shop, entity). It reports whether a run
// was found; the run itself ends in error at its next page boundary.
func (o *SyncOrchestrator) Cancel(shop string, entity domain.EntityType) bool {
	o.mu.Lock()
	cancel, ok := o.active[runKey{shop: shop, entity: entity}]
	o.mu.Unlock()

	if ok {
		cancel(errCancelRequested)
		o.logger.Info().Str("shop", shop).Str("entityType", string(entity)).Msg("Sync run cancellation requested")
	}
	return ok
}

// Wait blocks until every background run has finished
func (o *SyncOrchestrator) Wait() {
	o.wg.Wait()
}

// Shutdown cancels background runs and waits for them to record their
// final state, or for ctx to end
func (o *SyncOrchestrator) Shutdown(ctx context.Context) error {
	o.stop(errShuttingDown)

	done := make(chan struct{})
	go func() {
		o.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("failed to drain sync runs: %w", ctx.Err())
	}
}

// GetStatus reports the latest run of every entity type
func (o *SyncOrchestrator) GetStatus(ctx context.Context, shop string) (*domain.SyncStatusSummary, error) {
	summary := &domain.SyncStatusSummary{ShopDomain: shop}
	for _, entity := range domain.SyncOrder {
		run, err := o.runs.Latest(ctx, shop, entity)
		if err != nil {
			return nil, fmt.Errorf("failed to get latest %s run: %w", entity, err)
		}

		status := domain.EntitySyncStatus{EntityType: entity, Status: domain.SyncStatusNeverSynced}
		if run != nil {
			status.Status = run.Status
			status.RunID = run.ID
			status.RecordsProcessed = run.Counters.Processed
			status.ErrorMessage = run.ErrorMessage
			last := run.StartTime
			if run.EndTime != nil {
				last = *run.EndTime
			}
			status.LastSync = &last
		}
		summary.Entities = append(summary.Entities, status)
	}
	return summary, nil
}

// ListRuns returns run history, newest first
func (o *SyncOrchestrator) ListRuns(ctx context.Context, filter domain.SyncRunFilter) ([]*domain.SyncRun, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	runs, err := o.runs.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list sync runs: %w", err)
	}
	return runs, nil
}

func (o *SyncOrchestrator) syncOne(ctx context.Context, shop string, entity domain.EntityType, daysBack int) (*domain.SyncRun, error) {
	token, err := o.accessToken(ctx, shop)
	if err != nil {
		return nil, err
	}
	lease, err := o.acquire(ctx, shop, entity)
	if err != nil {
		return nil, err
	}
	return o.execute(ctx, shop, entity, o.daysBack(entity, daysBack, false), token, lease)
}

// accessToken is the pre-flight check; no run exists yet when it fails
func (o *SyncOrchestrator) accessToken(ctx context.Context, shop string) (string, error) {
	token, err := o.tokens.GetAccessToken(ctx, shop)
	if err != nil {
		if errors.Is(err, domain.ErrTokenNotFound) {
			return "", fmt.Errorf("shop %s: %w", shop, err)
		}
		return "", fmt.Errorf("failed to get access token: %w", err)
	}
	if token == "" {
		return "", fmt.Errorf("shop %s: %w", shop, domain.ErrTokenNotFound)
	}
	return token, nil
}

func (o *SyncOrchestrator) acquire(ctx context.Context, shop string, entity domain.EntityType) (ports.Lease, error) {
	lease, err := o.leases.Acquire(ctx, leaseKey(shop, entity), o.cfg.LeaseTTL)
	if err != nil {
		if errors.Is(err, domain.ErrLeaseHeld) {
			return nil, fmt.Errorf("%s sync for %s: %w", entity, shop, err)
		}
		return nil, fmt.Errorf("failed to acquire sync lease: %w", err)
	}
	return o.keepAlive(lease), nil
}

// heldLease extends its lease in the background until it is released.
// A full sync takes all four leases before the first run starts, and later
// entities would otherwise lapse while earlier ones are still syncing.
type heldLease struct {
	ports.Lease
	stop context.CancelFunc
	done chan struct{}
}

func (h *heldLease) Release(ctx context.Context) error {
	h.stop()
	<-h.done
	return h.Lease.Release(ctx)
}

func (o *SyncOrchestrator) keepAlive(lease ports.Lease) *heldLease {
	ctx, stop := context.WithCancel(context.Background())
	h := &heldLease{Lease: lease, stop: stop, done: make(chan struct{})}

	interval := o.cfg.LeaseTTL / 3
	if interval <= 0 {
		interval = o.cfg.LeaseTTL
	}

	go func() {
		defer close(h.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			if err := lease.Extend(ctx, o.cfg.LeaseTTL); err != nil {
				if ctx.Err() != nil {
					return
				}
				o.logger.Warn().Err(err).Str("lease", lease.Key()).Msg("Failed to renew sync lease")
				if errors.Is(err, domain.ErrLeaseLost) {
					return
				}
			}
		}
	}()
	return h
}

func (o *SyncOrchestrator) releaseAll(leases []ports.Lease) {
	for _, l := range leases {
		o.release(l)
	}
}

func (o *SyncOrchestrator) release(lease ports.Lease) {
	if err := lease.Release(context.Background()); err != nil && !errors.Is(err, domain.ErrLeaseLost) {
		o.logger.Warn().Err(err).Str("lease", lease.Key()).Msg("Failed to release sync lease")
	}
}

func (o *SyncOrchestrator) daysBack(entity domain.EntityType, requested int, full bool) int {
	if entity != domain.EntityOrders {
		return 0
	}
	if requested > 0 {
		return requested
	}
	if full {
		return o.cfg.FullSyncOrdersDaysBack
	}
	return o.cfg.OrdersDaysBack
}

// pendingRun is a run whose row exists and whose pages are not yet walked
type pendingRun struct {
	run    *domain.SyncRun
	ctx    context.Context
	cancel context.CancelCauseFunc
	span   trace.Span
	key    runKey
	token  string
	lease  ports.Lease
}

// execute runs one entity sync under an already acquired lease and releases it
func (o *SyncOrchestrator) execute(ctx context.Context, shop string, entity domain.EntityType, daysBack int, token string, lease ports.Lease) (*domain.SyncRun, error) {
	p, err := o.start(ctx, shop, entity, daysBack, token, lease)
	if err != nil {
		return nil, err
	}
	return o.finish(p)
}

// start registers the run and creates its row. The lease is released when
// start fails; otherwise finish owns it.
func (o *SyncOrchestrator) start(ctx context.Context, shop string, entity domain.EntityType, daysBack int, token string, lease ports.Lease) (*pendingRun, error) {
	runCtx, cancel := context.WithCancelCause(ctx)
	key := runKey{shop: shop, entity: entity}
	o.track(key, cancel)

	runCtx, span := tracer.Start(runCtx, "SyncOrchestrator.Run", trace.WithAttributes(
		attribute.String("shop", shop),
		attribute.String("entity_type", string(entity)),
	))

	meta := domain.SyncMetadata{PageSize: o.cfg.PageSize}
	if entity == domain.EntityShop {
		meta.PageSize = 0
	}
	if entity == domain.EntityOrders {
		meta.DaysBack = daysBack
		meta.Filter = "created_at:>=" + now().AddDate(0, 0, -daysBack).Format(time.RFC3339)
	}

	run, err := o.recorder.Start(runCtx, shop, entity, meta)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to start run")
		span.End()
		o.untrack(key)
		cancel(nil)
		o.release(lease)
		return nil, err
	}
	span.SetAttributes(attribute.Int64("run_id", run.ID))

	return &pendingRun{run: run, ctx: runCtx, cancel: cancel, span: span, key: key, token: token, lease: lease}, nil
}

// finish walks the run to a terminal state and releases its lease
func (o *SyncOrchestrator) finish(p *pendingRun) (*domain.SyncRun, error) {
	defer o.release(p.lease)
	defer p.cancel(nil)
	defer o.untrack(p.key)
	defer p.span.End()

	run, runCtx, span := p.run, p.ctx, p.span

	var (
		counters domain.SyncCounters
		err      error
	)
	if run.EntityType == domain.EntityShop {
		err = o.syncShop(runCtx, run, p.token, p.lease, &counters)
	} else {
		err = o.walk(runCtx, run, p.token, p.lease, &counters)
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "sync run failed")
		if ferr := o.recorder.Fail(runCtx, run, err); ferr != nil {
			err = errors.Join(err, ferr)
		}
	} else if serr := o.recorder.Succeed(context.WithoutCancel(runCtx), run); serr != nil {
		err = serr
		if ferr := o.recorder.Fail(runCtx, run, serr); ferr != nil {
			err = errors.Join(err, ferr)
		}
	} else {
		span.SetStatus(codes.Ok, "sync run succeeded")
	}

	o.observe(run, counters)
	return run, err
}

// walk applies every page in cursor order. Records of a fetched page are
// always applied and checkpointed in full; cancellation is honoured by the
// walker before the next fetch.
func (o *SyncOrchestrator) walk(ctx context.Context, run *domain.SyncRun, token string, lease ports.Lease, counters *domain.SyncCounters) error {
	upserter := o.upserters[run.EntityType]
	req := WalkRequest{
		Shop:        run.ShopDomain,
		AccessToken: token,
		EntityType:  run.EntityType,
		PageSize:    run.Metadata.PageSize,
		Filter:      run.Metadata.Filter,
	}

	for page, err := range o.walker.Pages(ctx, req) {
		if err != nil {
			return err
		}

		pageCtx := context.WithoutCancel(ctx)
		for _, raw := range page.Records {
			res := upserter.Upsert(pageCtx, run.ShopDomain, raw)
			counters.Record(res)
			if res.Err != nil {
				o.logger.Warn().
					Err(res.Err).
					Str("shop", run.ShopDomain).
					Str("entityType", string(run.EntityType)).
					Str("externalId", res.ExternalID).
					Int64("runId", run.ID).
					Msg("Failed to upsert record")
			}
		}

		if err := o.checkpoint(pageCtx, run, *counters, page.PageInfo.EndCursor, lease); err != nil {
			return err
		}
	}
	return nil
}

func (o *SyncOrchestrator) syncShop(ctx context.Context, run *domain.SyncRun, token string, lease ports.Lease, counters *domain.SyncCounters) error {
	if ctx.Err() != nil {
		return cancelled(ctx)
	}

	raw, err := o.client.FetchShop(ctx, run.ShopDomain, token)
	if err != nil {
		if ctx.Err() != nil {
			return cancelled(ctx)
		}
		var te *domain.TransportError
		if !errors.As(err, &te) {
			err = &domain.TransportError{Op: "fetch shop", Err: err}
		}
		return err
	}
	if o.metrics != nil {
		o.metrics.PageFetched(domain.EntityShop)
	}

	pageCtx := context.WithoutCancel(ctx)
	res := o.shopSync.Upsert(pageCtx, run.ShopDomain, raw)
	counters.Record(res)
	if res.Err != nil {
		o.logger.Warn().Err(res.Err).Str("shop", run.ShopDomain).Int64("runId", run.ID).Msg("Failed to upsert shop profile")
	}

	return o.checkpoint(pageCtx, run, *counters, "", lease)
}

func (o *SyncOrchestrator) checkpoint(ctx context.Context, run *domain.SyncRun, counters domain.SyncCounters, cursor string, lease ports.Lease) error {
	if err := o.recorder.Checkpoint(ctx, run, counters, cursor); err != nil {
		return err
	}
	if err := lease.Extend(ctx, o.cfg.LeaseTTL); err != nil {
		return fmt.Errorf("failed to extend sync lease: %w", err)
	}
	return nil
}

func (o *SyncOrchestrator) observe(run *domain.SyncRun, counters domain.SyncCounters) {
	if o.metrics == nil {
		return
	}
	var seconds float64
	if run.DurationSeconds != nil {
		seconds = *run.DurationSeconds
	}
	o.metrics.RunFinished(run.EntityType, run.Status, seconds)
	o.metrics.RecordsUpserted(run.EntityType, counters)
}

func (o *SyncOrchestrator) track(key runKey, cancel context.CancelCauseFunc) {
	o.mu.Lock()
	o.active[key] = cancel
	o.mu.Unlock()
}

func (o *SyncOrchestrator) untrack(key runKey) {
	o.mu.Lock()
	delete(o.active, key)
	o.mu.Unlock()
}

func leaseKey(shop string, entity domain.EntityType) string {
	return "sync:" + shop + ":" + string(entity)
}
