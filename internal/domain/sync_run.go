package domain

import (
	"fmt"
	"time"
)

// EntityType names one synchronized collection
type EntityType string

const (
	EntityShop      EntityType = "shop"
	EntityProducts  EntityType = "products"
	EntityCustomers EntityType = "customers"
	EntityOrders    EntityType = "orders"
)

// SyncOrder is the fixed order of a full sync. Orders come last because they
// reference customers and their line items reference products.
var SyncOrder = []EntityType{EntityShop, EntityProducts, EntityCustomers, EntityOrders}

// ParseEntityType accepts the names used by the trigger surface
func ParseEntityType(s string) (EntityType, error) {
	switch EntityType(s) {
	case EntityShop, EntityProducts, EntityCustomers, EntityOrders:
		return EntityType(s), nil
	}
	return "", fmt.Errorf("unknown entity type %q", s)
}

// SyncStatus is the lifecycle state of a run
type SyncStatus string

const (
	SyncStatusNeverSynced SyncStatus = "never_synced" // reported only, never stored
	SyncStatusInProgress  SyncStatus = "in_progress"
	SyncStatusSuccess     SyncStatus = "success"
	SyncStatusError       SyncStatus = "error"
)

// Terminal reports whether no further transition is allowed
func (s SyncStatus) Terminal() bool {
	return s == SyncStatusSuccess || s == SyncStatusError
}

// SyncCounters are the per-run record counts. Only top-level records are
// counted; variants and line items ride with their parent.
type SyncCounters struct {
	Processed int `json:"records_processed"`
	Created   int `json:"records_created"`
	Updated   int `json:"records_updated"`
	Failed    int `json:"records_failed"`
}

// Record adds one upsert outcome
func (c *SyncCounters) Record(res UpsertResult) {
	c.Processed++
	switch {
	case res.Err != nil:
		c.Failed++
	case res.Created:
		c.Created++
	default:
		c.Updated++
	}
}

// SyncMetadata is stored as JSON alongside the run
type SyncMetadata struct {
	Filter   string `json:"filter,omitempty"`
	DaysBack int    `json:"days_back,omitempty"`
	PageSize int    `json:"page_size,omitempty"`
	Pages    int    `json:"pages"`
}

// SyncRun is one execution of a single entity type synchronization
type SyncRun struct {
	ID              int64        `json:"id"`
	ShopDomain      string       `json:"shop_domain"`
	EntityType      EntityType   `json:"entity_type"`
	Status          SyncStatus   `json:"status"`
	Counters        SyncCounters `json:"counters"`
	ErrorMessage    string       `json:"error_message,omitempty"`
	LastCursor      *string      `json:"last_cursor"`
	Metadata        SyncMetadata `json:"metadata"`
	StartTime       time.Time    `json:"start_time"`
	EndTime         *time.Time   `json:"end_time"`
	DurationSeconds *float64     `json:"duration_seconds"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// SyncRunFilter narrows a run history query
type SyncRunFilter struct {
	ShopDomain string
	EntityType EntityType // empty means all
	Limit      int
}

// EntitySyncStatus is the status query answer for one entity type
type EntitySyncStatus struct {
	EntityType       EntityType `json:"entity_type"`
	Status           SyncStatus `json:"status"`
	RecordsProcessed int        `json:"records_processed"`
	LastSync         *time.Time `json:"last_sync"`
	RunID            int64      `json:"run_id,omitempty"`
	ErrorMessage     string     `json:"error_message,omitempty"`
}

// SyncStatusSummary groups the latest run of every entity type for a shop
type SyncStatusSummary struct {
	ShopDomain string             `json:"shop_domain"`
	Entities   []EntitySyncStatus `json:"entities"`
}

// TriggerAck is returned as soon as a sync has been accepted
type TriggerAck struct {
	ShopDomain  string       `json:"shop_domain"`
	EntityTypes []EntityType `json:"entity_types"`
	RunIDs      []int64      `json:"run_ids,omitempty"` // runs created before the ack
	Status      SyncStatus   `json:"status"`
	Message     string       `json:"message"`
}
