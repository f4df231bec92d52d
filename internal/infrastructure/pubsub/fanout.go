package pubsub

import (
	"context"
	"errors"

	"archie-shopify-sync/internal/domain"
	"archie-shopify-sync/internal/ports"
)

// Fanout publishes each event to every publisher and joins their errors
type Fanout []ports.RunEventPublisher

func (f Fanout) PublishRunEvent(ctx context.Context, event domain.RunEvent) error {
	var errs []error
	for _, p := range f {
		if err := p.PublishRunEvent(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
