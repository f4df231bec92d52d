package pubsub

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"archie-shopify-sync/internal/domain"
	"archie-shopify-sync/internal/ports"
)

// RunEventChannel represents a subscription channel
type RunEventChannel struct {
	ID     string
	Filter *RunEventFilter
	Events chan domain.RunEvent
	Done   chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
}

// RunEventFilter filters run events
type RunEventFilter struct {
	Shop        string              // Filter by shop domain
	EntityTypes []domain.EntityType // Filter by entity type
}

// RunEventPubSub fans sync run events out to live subscribers
type RunEventPubSub struct {
	mu       sync.RWMutex
	channels map[string]*RunEventChannel
	logger   zerolog.Logger
	nextID   int64
	idMu     sync.Mutex
	buffer   int
}

var _ ports.RunEventPublisher = (*RunEventPubSub)(nil)

// NewRunEventPubSub creates a new run event pub/sub system
func NewRunEventPubSub(logger zerolog.Logger) *RunEventPubSub {
	return &RunEventPubSub{
		channels: make(map[string]*RunEventChannel),
		logger:   logger,
		buffer:   32,
	}
}

// Subscribe creates a new subscription channel. It is removed when ctx is done.
func (ps *RunEventPubSub) Subscribe(ctx context.Context, filter *RunEventFilter) *RunEventChannel {
	ps.idMu.Lock()
	id := ps.generateID()
	ps.idMu.Unlock()

	subCtx, cancel := context.WithCancel(ctx)

	channel := &RunEventChannel{
		ID:     id,
		Filter: filter,
		Events: make(chan domain.RunEvent, ps.buffer),
		Done:   make(chan struct{}),
		ctx:    subCtx,
		cancel: cancel,
	}

	ps.mu.Lock()
	ps.channels[id] = channel
	ps.mu.Unlock()

	ps.logger.Debug().
		Str("channelId", id).
		Interface("filter", filter).
		Msg("Run event subscription created")

	go func() {
		<-subCtx.Done()
		ps.Unsubscribe(id)
	}()

	return channel
}

// Unsubscribe removes a subscription channel and closes its Events
func (ps *RunEventPubSub) Unsubscribe(channelID string) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	channel, exists := ps.channels[channelID]
	if !exists {
		return
	}

	close(channel.Events)
	close(channel.Done)
	channel.cancel()
	delete(ps.channels, channelID)

	ps.logger.Debug().
		Str("channelId", channelID).
		Msg("Run event subscription removed")
}

// PublishRunEvent broadcasts to all matching subscribers without blocking.
// A subscriber with a full buffer misses the event.
func (ps *RunEventPubSub) PublishRunEvent(_ context.Context, event domain.RunEvent) error {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	published := 0
	for _, channel := range ps.channels {
		if !matchesFilter(event, channel.Filter) {
			continue
		}
		select {
		case channel.Events <- event:
			published++
		default:
			ps.logger.Warn().
				Str("channelId", channel.ID).
				Int64("runId", event.RunID).
				Msg("Channel buffer full, dropping run event")
		}
	}

	if published > 0 {
		ps.logger.Debug().
			Str("type", string(event.Type)).
			Str("shop", event.ShopDomain).
			Int("subscribers", published).
			Msg("Published run event to subscribers")
	}
	return nil
}

func matchesFilter(event domain.RunEvent, filter *RunEventFilter) bool {
	if filter == nil {
		return true
	}
	if filter.Shop != "" && event.ShopDomain != filter.Shop {
		return false
	}
	if len(filter.EntityTypes) == 0 {
		return true
	}
	for _, et := range filter.EntityTypes {
		if event.EntityType == et {
			return true
		}
	}
	return false
}

func (ps *RunEventPubSub) generateID() string {
	ps.nextID++
	return fmt.Sprintf("channel-%d", ps.nextID)
}

// Subscribers returns the number of active subscriptions
func (ps *RunEventPubSub) Subscribers() int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return len(ps.channels)
}
