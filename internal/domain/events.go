package domain

import "time"

// RunEventType is the kind of lifecycle change a RunEvent reports
type RunEventType string

const (
	RunEventStarted    RunEventType = "sync.started"
	RunEventCheckpoint RunEventType = "sync.checkpoint"
	RunEventSucceeded  RunEventType = "sync.succeeded"
	RunEventFailed     RunEventType = "sync.failed"
)

// RunEvent is published on every sync run transition and checkpoint
type RunEvent struct {
	Type       RunEventType `json:"type"`
	RunID      int64        `json:"run_id"`
	ShopDomain string       `json:"shop_domain"`
	EntityType EntityType   `json:"entity_type"`
	Status     SyncStatus   `json:"status"`
	Counters   SyncCounters `json:"counters"`
	Cursor     string       `json:"cursor,omitempty"`
	Error      string       `json:"error,omitempty"`
	OccurredAt time.Time    `json:"occurred_at"`
}

// NewRunEvent snapshots a run into an event
func NewRunEvent(t RunEventType, run *SyncRun, at time.Time) RunEvent {
	ev := RunEvent{
		Type:       t,
		RunID:      run.ID,
		ShopDomain: run.ShopDomain,
		EntityType: run.EntityType,
		Status:     run.Status,
		Counters:   run.Counters,
		Error:      run.ErrorMessage,
		OccurredAt: at,
	}
	if run.LastCursor != nil {
		ev.Cursor = *run.LastCursor
	}
	return ev
}
