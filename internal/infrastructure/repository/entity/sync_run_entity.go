package entity

import (
	"time"

	"archie-shopify-sync/internal/domain"
)

// SyncRunColumns are the sync_runs columns other than id, in Values order
var SyncRunColumns = []string{
	"shop_domain", "entity_type", "status", "records_processed", "records_created",
	"records_updated", "records_failed", "error_message", "last_cursor", "metadata",
	"start_time", "end_time", "duration_seconds", "created_at", "updated_at",
}

// SyncRunRow is a row of the sync_runs table
type SyncRunRow struct {
	ID               int64      `db:"id"`
	ShopDomain       string     `db:"shop_domain"`
	EntityType       string     `db:"entity_type"`
	Status           string     `db:"status"`
	RecordsProcessed int        `db:"records_processed"`
	RecordsCreated   int        `db:"records_created"`
	RecordsUpdated   int        `db:"records_updated"`
	RecordsFailed    int        `db:"records_failed"`
	ErrorMessage     string     `db:"error_message"`
	LastCursor       *string    `db:"last_cursor"`
	Metadata         string     `db:"metadata"`
	StartTime        time.Time  `db:"start_time"`
	EndTime          *time.Time `db:"end_time"`
	DurationSeconds  *float64   `db:"duration_seconds"`
	CreatedAt        time.Time  `db:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at"`
}

// Values returns the row's values in SyncRunColumns order
func (r *SyncRunRow) Values() []interface{} {
	return []interface{}{
		r.ShopDomain, r.EntityType, r.Status, r.RecordsProcessed, r.RecordsCreated,
		r.RecordsUpdated, r.RecordsFailed, r.ErrorMessage, r.LastCursor, r.Metadata,
		r.StartTime, r.EndTime, r.DurationSeconds, r.CreatedAt, r.UpdatedAt,
	}
}

// ToDomain converts the row to a domain entity
func (r *SyncRunRow) ToDomain() (*domain.SyncRun, error) {
	run := &domain.SyncRun{
		ID:         r.ID,
		ShopDomain: r.ShopDomain,
		EntityType: domain.EntityType(r.EntityType),
		Status:     domain.SyncStatus(r.Status),
		Counters: domain.SyncCounters{
			Processed: r.RecordsProcessed,
			Created:   r.RecordsCreated,
			Updated:   r.RecordsUpdated,
			Failed:    r.RecordsFailed,
		},
		ErrorMessage:    r.ErrorMessage,
		LastCursor:      r.LastCursor,
		StartTime:       r.StartTime.UTC(),
		EndTime:         utcPtr(r.EndTime),
		DurationSeconds: r.DurationSeconds,
		CreatedAt:       r.CreatedAt.UTC(),
		UpdatedAt:       r.UpdatedAt.UTC(),
	}
	if err := decodeJSON("metadata", r.Metadata, &run.Metadata); err != nil {
		return nil, err
	}
	return run, nil
}

// SyncRunRowFromDomain converts a domain entity to a row
func SyncRunRowFromDomain(run *domain.SyncRun) (*SyncRunRow, error) {
	meta, err := encodeJSON("metadata", run.Metadata)
	if err != nil {
		return nil, err
	}
	return &SyncRunRow{
		ID:               run.ID,
		ShopDomain:       run.ShopDomain,
		EntityType:       string(run.EntityType),
		Status:           string(run.Status),
		RecordsProcessed: run.Counters.Processed,
		RecordsCreated:   run.Counters.Created,
		RecordsUpdated:   run.Counters.Updated,
		RecordsFailed:    run.Counters.Failed,
		ErrorMessage:     run.ErrorMessage,
		LastCursor:       run.LastCursor,
		Metadata:         meta,
		StartTime:        run.StartTime,
		EndTime:          run.EndTime,
		DurationSeconds:  run.DurationSeconds,
		CreatedAt:        run.CreatedAt,
		UpdatedAt:        run.UpdatedAt,
	}, nil
}
