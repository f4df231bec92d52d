package application

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"archie-shopify-sync/internal/domain"
	"archie-shopify-sync/internal/ports"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// WalkRequest describes one forward traversal of a remote collection
type WalkRequest struct {
	Shop         string
	AccessToken  string
	EntityType   domain.EntityType
	PageSize     int
	Filter       string
	ResumeCursor string // empty walks from the start
}

// PageWalker drives forward-only cursor pagination. It holds no business
// logic and never retries a page.
type PageWalker struct {
	client  ports.APIClient
	metrics ports.SyncMetrics
	logger  zerolog.Logger
}

// NewPageWalker creates a new page walker. metrics may be nil.
func NewPageWalker(client ports.APIClient, metrics ports.SyncMetrics, logger zerolog.Logger) *PageWalker {
	return &PageWalker{
		client:  client,
		metrics: metrics,
		logger:  logger,
	}
}

// Pages yields the collection's pages in cursor order. The sequence ends after
// the page reporting no next page, or after an empty page. A failure is yielded
// once as (nil, err) and ends the sequence: a *domain.TransportError for fetch
// problems, or an error wrapping domain.ErrSyncCancelled when ctx is done.
func (w *PageWalker) Pages(ctx context.Context, req WalkRequest) iter.Seq2[*domain.Page, error] {
	return func(yield func(*domain.Page, error) bool) {
		after := req.ResumeCursor
		for number := 1; ; number++ {
			if ctx.Err() != nil {
				yield(nil, cancelled(ctx))
				return
			}

			page, err := w.fetch(ctx, req, after, number)
			if err != nil {
				if ctx.Err() != nil {
					err = cancelled(ctx)
				}
				yield(nil, err)
				return
			}

			if len(page.Records) == 0 {
				w.logger.Debug().
					Str("shop", req.Shop).
					Str("entityType", string(req.EntityType)).
					Int("page", number).
					Msg("Empty page, ending walk")
				return
			}

			if page.PageInfo.HasNextPage && (page.PageInfo.EndCursor == "" || page.PageInfo.EndCursor == after) {
				yield(nil, &domain.TransportError{
					Op:  "fetch " + string(req.EntityType),
					Err: fmt.Errorf("pagination cursor did not advance past %q", after),
				})
				return
			}

			if !yield(page, nil) {
				return
			}
			if !page.PageInfo.HasNextPage {
				return
			}
			after = page.PageInfo.EndCursor
		}
	}
}

func (w *PageWalker) fetch(ctx context.Context, req WalkRequest, after string, number int) (*domain.Page, error) {
	ctx, span := tracer.Start(ctx, "PageWalker.FetchPage", trace.WithAttributes(
		attribute.String("shop", req.Shop),
		attribute.String("entity_type", string(req.EntityType)),
		attribute.Int("page", number),
	))
	defer span.End()

	page, err := w.client.FetchPage(ctx, req.Shop, req.AccessToken, domain.PageRequest{
		EntityType: req.EntityType,
		PageSize:   req.PageSize,
		After:      after,
		Filter:     req.Filter,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch page")
		var te *domain.TransportError
		if !errors.As(err, &te) {
			err = &domain.TransportError{Op: "fetch " + string(req.EntityType), Err: err}
		}
		return nil, err
	}
	if page == nil {
		return nil, &domain.TransportError{Op: "fetch " + string(req.EntityType), Err: errors.New("empty response")}
	}

	if w.metrics != nil {
		w.metrics.PageFetched(req.EntityType)
	}
	page.Number = number
	span.SetAttributes(attribute.Int("records", len(page.Records)))
	span.SetStatus(codes.Ok, "page fetched")
	return page, nil
}

// cancelled wraps the context's cause so the run's error message starts with
// "sync cancelled"
func cancelled(ctx context.Context) error {
	return fmt.Errorf("%w: %v", domain.ErrSyncCancelled, context.Cause(ctx))
}
