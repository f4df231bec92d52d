package application

import (
	"context"
	"fmt"

	"archie-shopify-sync/internal/domain"
	"archie-shopify-sync/internal/ports"

	"github.com/rs/zerolog"
)

// SyncRunRecorder persists the lifecycle of a sync run:
// in_progress, then exactly one of success or error.
type SyncRunRecorder struct {
	runs      ports.SyncRunRepository
	publisher ports.RunEventPublisher
	logger    zerolog.Logger
}

// NewSyncRunRecorder creates a new recorder. publisher may be nil.
func NewSyncRunRecorder(runs ports.SyncRunRepository, publisher ports.RunEventPublisher, logger zerolog.Logger) *SyncRunRecorder {
	return &SyncRunRecorder{
		runs:      runs,
		publisher: publisher,
		logger:    logger,
	}
}

// Start creates a run in progress
func (r *SyncRunRecorder) Start(ctx context.Context, shop string, entity domain.EntityType, meta domain.SyncMetadata) (*domain.SyncRun, error) {
	ts := now()
	run := &domain.SyncRun{
		ShopDomain: shop,
		EntityType: entity,
		Status:     domain.SyncStatusInProgress,
		Metadata:   meta,
		StartTime:  ts,
		CreatedAt:  ts,
		UpdatedAt:  ts,
	}

	id, err := r.runs.Create(ctx, run)
	if err != nil {
		return nil, fmt.Errorf("failed to create sync run: %w", err)
	}
	run.ID = id

	r.logger.Info().
		Str("shop", shop).
		Str("entityType", string(entity)).
		Int64("runId", id).
		Msg("Sync run started")
	r.publish(ctx, domain.RunEventStarted, run)
	return run, nil
}

// Checkpoint persists the counters and cursor after a fully processed page.
// An empty cursor keeps the previous one.
func (r *SyncRunRecorder) Checkpoint(ctx context.Context, run *domain.SyncRun, counters domain.SyncCounters, cursor string) error {
	if run.Status.Terminal() {
		return domain.ErrRunTerminal
	}

	next := *run
	next.Counters = counters
	if cursor != "" {
		c := cursor
		next.LastCursor = &c
	}
	next.Metadata.Pages++
	next.UpdatedAt = now()

	if err := r.runs.Update(ctx, &next); err != nil {
		return fmt.Errorf("failed to checkpoint sync run %d: %w", run.ID, err)
	}
	*run = next
	r.publish(ctx, domain.RunEventCheckpoint, run)
	return nil
}

// Succeed finalizes the run as success
func (r *SyncRunRecorder) Succeed(ctx context.Context, run *domain.SyncRun) error {
	if run.Status.Terminal() {
		return domain.ErrRunTerminal
	}

	next := finished(run, domain.SyncStatusSuccess, "")
	if err := r.runs.Update(ctx, next); err != nil {
		return fmt.Errorf("failed to finalize sync run %d: %w", run.ID, err)
	}
	*run = *next

	r.logger.Info().
		Str("shop", run.ShopDomain).
		Str("entityType", string(run.EntityType)).
		Int64("runId", run.ID).
		Int("processed", run.Counters.Processed).
		Int("created", run.Counters.Created).
		Int("updated", run.Counters.Updated).
		Int("failed", run.Counters.Failed).
		Msg("Sync run succeeded")
	r.publish(ctx, domain.RunEventSucceeded, run)
	return nil
}

// Fail finalizes the run as error with the counters of the last checkpoint.
// It is written even when ctx is already cancelled.
func (r *SyncRunRecorder) Fail(ctx context.Context, run *domain.SyncRun, cause error) error {
	if run.Status.Terminal() {
		return domain.ErrRunTerminal
	}
	ctx = context.WithoutCancel(ctx)

	msg := "unknown error"
	if cause != nil {
		msg = cause.Error()
	}
	next := finished(run, domain.SyncStatusError, msg)
	if err := r.runs.Update(ctx, next); err != nil {
		return fmt.Errorf("failed to finalize sync run %d: %w", run.ID, err)
	}
	*run = *next

	r.logger.Error().
		Err(cause).
		Str("shop", run.ShopDomain).
		Str("entityType", string(run.EntityType)).
		Int64("runId", run.ID).
		Msg("Sync run failed")
	r.publish(ctx, domain.RunEventFailed, run)
	return nil
}

// finished returns a terminal copy of run; run itself is only replaced once
// the copy is stored
func finished(run *domain.SyncRun, status domain.SyncStatus, msg string) *domain.SyncRun {
	next := *run
	end := now()
	duration := end.Sub(run.StartTime).Seconds()
	next.Status = status
	next.ErrorMessage = msg
	next.EndTime = &end
	next.DurationSeconds = &duration
	next.UpdatedAt = end
	return &next
}

func (r *SyncRunRecorder) publish(ctx context.Context, t domain.RunEventType, run *domain.SyncRun) {
	if r.publisher == nil {
		return
	}
	if err := r.publisher.PublishRunEvent(ctx, domain.NewRunEvent(t, run, now())); err != nil {
		r.logger.Warn().Err(err).Int64("runId", run.ID).Str("event", string(t)).Msg("Failed to publish run event")
	}
}
