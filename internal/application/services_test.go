package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"archie-shopify-sync/internal/application/webhook_handlers"
	"archie-shopify-sync/internal/domain"
)

type memTokens struct {
	tokens map[string]*domain.ShopToken
}

func newMemTokens() *memTokens {
	return &memTokens{tokens: make(map[string]*domain.ShopToken)}
}

func (m *memTokens) GetAccessToken(_ context.Context, shop string) (string, error) {
	t, ok := m.tokens[shop]
	if !ok || !t.Active() {
		return "", domain.ErrTokenNotFound
	}
	return t.AccessToken, nil
}

func (m *memTokens) SaveToken(_ context.Context, token *domain.ShopToken) error {
	cp := *token
	m.tokens[token.ShopDomain] = &cp
	return nil
}

func (m *memTokens) RevokeToken(_ context.Context, shop string) error {
	if t, ok := m.tokens[shop]; ok {
		ts := time.Now()
		t.RevokedAt = &ts
	}
	return nil
}

type validatorFunc func(token, shop string) (bool, error)

func (f validatorFunc) ValidateToken(_ context.Context, token, shop string) (bool, error) {
	return f(token, shop)
}

func TestTokenService_InstallAndRevoke(t *testing.T) {
	store := newMemTokens()
	svc := NewTokenService(store, validatorFunc(func(token, _ string) (bool, error) {
		return token == "shpat_good", nil
	}), zerolog.Nop())
	ctx := context.Background()

	err := svc.InstallToken(ctx, testShop, "shpat_bad", nil)
	assert.ErrorIs(t, err, ErrInvalidToken)

	require.NoError(t, svc.InstallToken(ctx, " "+testShop+" ", "shpat_good", []string{"read_products"}))
	token, err := store.GetAccessToken(ctx, testShop)
	require.NoError(t, err)
	assert.Equal(t, "shpat_good", token)

	require.NoError(t, svc.RevokeToken(ctx, testShop))
	_, err = store.GetAccessToken(ctx, testShop)
	assert.ErrorIs(t, err, domain.ErrTokenNotFound)

	assert.Error(t, svc.InstallToken(ctx, "", "shpat_good", nil))
}

func TestTokenService_ValidatorError(t *testing.T) {
	svc := NewTokenService(newMemTokens(), validatorFunc(func(string, string) (bool, error) {
		return false, errors.New("timeout")
	}), zerolog.Nop())

	err := svc.InstallToken(context.Background(), testShop, "shpat_x", nil)
	assert.ErrorContains(t, err, "failed to validate token")
}

type memIntegrations struct {
	byKey map[string]*domain.Integration
}

func (m *memIntegrations) Create(_ context.Context, in *domain.Integration) error {
	in.ID = "id-" + in.Key[:8]
	m.byKey[in.Key] = in
	return nil
}

func (m *memIntegrations) GetByKey(_ context.Context, key string) (*domain.Integration, error) {
	return m.byKey[key], nil
}

func (m *memIntegrations) ListByShop(_ context.Context, shop string) ([]*domain.Integration, error) {
	var out []*domain.Integration
	for _, in := range m.byKey {
		if in.ShopDomain == shop {
			out = append(out, in)
		}
	}
	return out, nil
}

func (m *memIntegrations) Delete(_ context.Context, key string) error {
	delete(m.byKey, key)
	return nil
}

func TestIntegrationService_Authorize(t *testing.T) {
	svc := NewIntegrationService(&memIntegrations{byKey: map[string]*domain.Integration{}}, zerolog.Nop())
	ctx := context.Background()

	in, err := svc.CreateIntegration(ctx, CreateIntegrationInput{ShopDomain: testShop, Label: "warehouse"})
	require.NoError(t, err)
	assert.Len(t, in.Key, 64)

	ok, err := svc.Authorize(ctx, in.Key, testShop)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Authorize(ctx, in.Key, "other.myshopify.com")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.Authorize(ctx, "missing", testShop)
	require.NoError(t, err)
	assert.False(t, ok)

	list, err := svc.ListIntegrations(ctx, testShop)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.DeleteIntegration(ctx, in.Key))
	_, err = svc.GetIntegrationByKey(ctx, in.Key)
	assert.ErrorIs(t, err, ErrIntegrationNotFound)

	_, err = svc.CreateIntegration(ctx, CreateIntegrationInput{})
	assert.Error(t, err)
}

type recordingCanceller struct {
	cancelled []domain.EntityType
}

func (r *recordingCanceller) Cancel(_ string, entity domain.EntityType) bool {
	r.cancelled = append(r.cancelled, entity)
	return entity == domain.EntityOrders
}

func TestWebhookService_AppUninstalledRevokesToken(t *testing.T) {
	tokens := newMemTokens()
	require.NoError(t, tokens.SaveToken(context.Background(), &domain.ShopToken{ShopDomain: testShop, AccessToken: "shpat_x"}))
	canceller := &recordingCanceller{}

	svc := NewWebhookService(zerolog.Nop(), webhook_handlers.NewAppUninstalledHandler(zerolog.Nop(), tokens, canceller))
	ctx := context.Background()

	payload := []byte(`{"domain":"acme.test","myshopify_domain":"acme.myshopify.com"}`)
	require.NoError(t, svc.ProcessWebhook(ctx, "wh-1", "app/uninstalled", "", payload))

	_, err := tokens.GetAccessToken(ctx, testShop)
	assert.ErrorIs(t, err, domain.ErrTokenNotFound)
	assert.Equal(t, domain.SyncOrder, canceller.cancelled)

	// topics without handlers are acknowledged
	assert.NoError(t, svc.ProcessWebhook(ctx, "wh-2", "orders/create", testShop, []byte(`{}`)))

	err = svc.ProcessWebhook(ctx, "wh-3", "app/uninstalled", "", []byte(`{}`))
	assert.ErrorContains(t, err, "no shop domain")
}

type mapLookup map[string]int64

func (m mapLookup) LookupID(_ context.Context, _ string, resource domain.ResourceType, externalID string) (int64, bool, error) {
	if resource == domain.ResourceLineItem {
		return 0, false, errors.New("unsupported")
	}
	id, ok := m[string(resource)+"/"+externalID]
	return id, ok, nil
}

func TestRelationshipResolver(t *testing.T) {
	r := NewRelationshipResolver(mapLookup{"Customer/42": 7}, zerolog.Nop())
	ctx := context.Background()

	ref, err := r.Resolve(ctx, testShop, domain.ResourceCustomer, "42")
	require.NoError(t, err)
	assert.Equal(t, domain.ResolvedReference(7), ref)
	assert.Equal(t, int64(7), *ref.Ptr())

	ref, err = r.Resolve(ctx, testShop, domain.ResourceCustomer, "C-404")
	require.NoError(t, err)
	assert.Equal(t, domain.AbsentReference, ref)
	assert.Nil(t, ref.Ptr())

	ref, err = r.Resolve(ctx, testShop, domain.ResourceLineItem, "")
	require.NoError(t, err)
	assert.False(t, ref.Present)

	_, err = r.Resolve(ctx, testShop, domain.ResourceLineItem, "1")
	assert.Error(t, err)
}
