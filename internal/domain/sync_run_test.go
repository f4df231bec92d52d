package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncCountersRecord(t *testing.T) {
	var c SyncCounters
	c.Record(Upserted("1", 10, true))
	c.Record(Upserted("2", 11, false))
	c.Record(UpsertFailed("3", errors.New("boom")))
	c.Record(Upserted("4", 12, true))

	assert.Equal(t, SyncCounters{Processed: 4, Created: 2, Updated: 1, Failed: 1}, c)
	assert.Equal(t, c.Processed, c.Created+c.Updated+c.Failed)
}

func TestParseEntityType(t *testing.T) {
	for _, et := range SyncOrder {
		got, err := ParseEntityType(string(et))
		require.NoError(t, err)
		assert.Equal(t, et, got)
	}
	_, err := ParseEntityType("inventory")
	assert.Error(t, err)
}

func TestSyncStatusTerminal(t *testing.T) {
	assert.False(t, SyncStatusInProgress.Terminal())
	assert.False(t, SyncStatusNeverSynced.Terminal())
	assert.True(t, SyncStatusSuccess.Terminal())
	assert.True(t, SyncStatusError.Terminal())
}

func TestReferencePtr(t *testing.T) {
	assert.Nil(t, AbsentReference.Ptr())
	p := ResolvedReference(7).Ptr()
	require.NotNil(t, p)
	assert.Equal(t, int64(7), *p)
}

func TestNewRunEventCopiesCursor(t *testing.T) {
	cursor := "C2"
	run := &SyncRun{ID: 3, ShopDomain: "a.myshopify.com", EntityType: EntityProducts, Status: SyncStatusSuccess, LastCursor: &cursor}
	ev := NewRunEvent(RunEventSucceeded, run, time.Unix(0, 0))
	assert.Equal(t, "C2", ev.Cursor)
	assert.Equal(t, int64(3), ev.RunID)
	assert.Equal(t, EntityProducts, ev.EntityType)
}
