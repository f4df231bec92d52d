package ports

import (
	"context"

	"archie-shopify-sync/internal/domain"
)

// RunEventPublisher receives sync run lifecycle events. Publishing is best
// effort; a failure is logged by the caller and never fails the run.
type RunEventPublisher interface {
	PublishRunEvent(ctx context.Context, event domain.RunEvent) error
}

// SyncMetrics records sync observations
type SyncMetrics interface {
	RunFinished(entity domain.EntityType, status domain.SyncStatus, seconds float64)
	RecordsUpserted(entity domain.EntityType, counters domain.SyncCounters)
	PageFetched(entity domain.EntityType)
}
