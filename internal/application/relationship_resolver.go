package application

import (
	"context"
	"fmt"

	"archie-shopify-sync/internal/domain"
	"archie-shopify-sync/internal/ports"

	"github.com/rs/zerolog"
)

// RelationshipResolver maps embedded remote references to local row ids.
// It only looks rows up; a missing target is never fetched.
type RelationshipResolver struct {
	lookup ports.NaturalKeyLookup
	logger zerolog.Logger
}

// NewRelationshipResolver creates a new relationship resolver
func NewRelationshipResolver(lookup ports.NaturalKeyLookup, logger zerolog.Logger) *RelationshipResolver {
	return &RelationshipResolver{
		lookup: lookup,
		logger: logger,
	}
}

// Resolve returns the local id of (shop, resource, externalID), or
// domain.AbsentReference when it is not stored. An empty externalID is absent.
func (r *RelationshipResolver) Resolve(ctx context.Context, shop string, resource domain.ResourceType, externalID string) (domain.Reference, error) {
	if externalID == "" {
		return domain.AbsentReference, nil
	}

	id, found, err := r.lookup.LookupID(ctx, shop, resource, externalID)
	if err != nil {
		return domain.AbsentReference, fmt.Errorf("failed to resolve %s %s: %w", resource, externalID, err)
	}
	if !found {
		r.logger.Debug().
			Str("shop", shop).
			Str("resource", string(resource)).
			Str("externalId", externalID).
			Msg("Referenced record not synced locally, leaving reference empty")
		return domain.AbsentReference, nil
	}

	return domain.ResolvedReference(id), nil
}
