package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"archie-shopify-sync/internal/domain"
)

type recordingWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func header(msg kafka.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func TestKafkaPublisher_PublishRunEvent(t *testing.T) {
	w := &recordingWriter{}
	p := NewKafkaPublisherWithWriter(w, "sync-runs", zerolog.Nop())

	err := p.PublishRunEvent(context.Background(), domain.RunEvent{
		Type:       domain.RunEventSucceeded,
		RunID:      42,
		ShopDomain: "acme.myshopify.com",
		EntityType: domain.EntityProducts,
		Status:     domain.SyncStatusSuccess,
		Cursor:     "C2",
	})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "sync-runs", msg.Topic)
	assert.Equal(t, "acme.myshopify.com", string(msg.Key))
	assert.Equal(t, "sync.succeeded", header(msg, "event_type"))
	assert.Equal(t, "products", header(msg, "entity_type"))
	assert.Equal(t, "42", header(msg, "run_id"))
	assert.Equal(t, SchemaVersion, header(msg, "schema_version"))

	var decoded domain.RunEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "C2", decoded.Cursor)
	assert.WithinDuration(t, time.Now(), decoded.OccurredAt, time.Minute)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	w := &recordingWriter{err: errors.New("no brokers")}
	p := NewKafkaPublisherWithWriter(w, "sync-runs", zerolog.Nop())

	err := p.PublishRunEvent(context.Background(), domain.RunEvent{RunID: 1})
	assert.ErrorContains(t, err, "failed to publish run event")
}
