package application

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"archie-shopify-sync/internal/domain"
	"archie-shopify-sync/internal/ports"

	"github.com/rs/zerolog"
)

// ErrIntegrationNotFound is returned when no integration matches a key
var ErrIntegrationNotFound = errors.New("integration not found")

// IntegrationService handles integration key management
type IntegrationService struct {
	integrationRepo ports.IntegrationRepository
	logger          zerolog.Logger
}

// NewIntegrationService creates a new integration service
func NewIntegrationService(
	integrationRepo ports.IntegrationRepository,
	logger zerolog.Logger,
) *IntegrationService {
	return &IntegrationService{
		integrationRepo: integrationRepo,
		logger:          logger,
	}
}

// CreateIntegrationInput represents input for creating an integration
type CreateIntegrationInput struct {
	ShopDomain string
	Label      string
}

// CreateIntegration creates a new integration key for a shop. A shop may hold
// several keys, one per calling system.
func (s *IntegrationService) CreateIntegration(ctx context.Context, input CreateIntegrationInput) (*domain.Integration, error) {
	if input.ShopDomain == "" {
		return nil, fmt.Errorf("shop domain is required")
	}

	// 32 bytes = 64 hex characters
	keyBytes := make([]byte, 32)
	if _, err := rand.Read(keyBytes); err != nil {
		return nil, fmt.Errorf("failed to generate integration key: %w", err)
	}
	key := hex.EncodeToString(keyBytes)

	ts := time.Now().UTC()
	integration := &domain.Integration{
		Key:        key,
		ShopDomain: input.ShopDomain,
		Label:      input.Label,
		CreatedAt:  ts,
		UpdatedAt:  ts,
	}

	if err := s.integrationRepo.Create(ctx, integration); err != nil {
		s.logger.Error().Err(err).Msg("Failed to create integration")
		return nil, fmt.Errorf("failed to create integration: %w", err)
	}

	s.logger.Info().
		Str("shopDomain", input.ShopDomain).
		Str("integrationId", integration.ID).
		Msg("Created new integration")

	return integration, nil
}

// GetIntegrationByKey retrieves an integration by its key
func (s *IntegrationService) GetIntegrationByKey(ctx context.Context, key string) (*domain.Integration, error) {
	integration, err := s.integrationRepo.GetByKey(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to get integration: %w", err)
	}

	if integration == nil {
		return nil, ErrIntegrationNotFound
	}

	return integration, nil
}

// Authorize reports whether key is a valid integration key for shop
func (s *IntegrationService) Authorize(ctx context.Context, key, shop string) (bool, error) {
	integration, err := s.GetIntegrationByKey(ctx, key)
	if err != nil {
		if errors.Is(err, ErrIntegrationNotFound) {
			return false, nil
		}
		return false, err
	}
	return integration.ShopDomain == shop, nil
}

// ListIntegrations returns every integration of a shop
func (s *IntegrationService) ListIntegrations(ctx context.Context, shop string) ([]*domain.Integration, error) {
	integrations, err := s.integrationRepo.ListByShop(ctx, shop)
	if err != nil {
		return nil, fmt.Errorf("failed to list integrations: %w", err)
	}
	return integrations, nil
}

// DeleteIntegration deletes an integration by key
func (s *IntegrationService) DeleteIntegration(ctx context.Context, key string) error {
	err := s.integrationRepo.Delete(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to delete integration: %w", err)
	}

	s.logger.Info().Msg("Deleted integration")
	return nil
}
