package repository

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"archie-shopify-sync/internal/domain"
)

type prefixCipher struct{}

func (prefixCipher) EncryptToken(token string) (string, error) { return "enc:" + token, nil }

func (prefixCipher) DecryptToken(encrypted string) (string, error) {
	return strings.TrimPrefix(encrypted, "enc:"), nil
}

func TestMongoTokenRepository_GetAccessToken(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("decrypts active token", func(mt *mtest.T) {
		repo := NewMongoTokenRepository(mt.DB, prefixCipher{})
		mt.AddMockResponses(mtest.CreateCursorResponse(1, "test.shops", mtest.FirstBatch, bson.D{
			{Key: "domain", Value: "acme.myshopify.com"},
			{Key: "accessToken", Value: "enc:shpat_123"},
			{Key: "installedAt", Value: time.Now().UTC()},
		}))

		token, err := repo.GetAccessToken(context.Background(), "acme.myshopify.com")
		require.NoError(t, err)
		assert.Equal(t, "shpat_123", token)
	})

	mt.Run("missing shop", func(mt *mtest.T) {
		repo := NewMongoTokenRepository(mt.DB, prefixCipher{})
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.shops", mtest.FirstBatch))

		_, err := repo.GetAccessToken(context.Background(), "acme.myshopify.com")
		assert.ErrorIs(t, err, domain.ErrTokenNotFound)
	})

	mt.Run("revoked shop", func(mt *mtest.T) {
		repo := NewMongoTokenRepository(mt.DB, prefixCipher{})
		mt.AddMockResponses(mtest.CreateCursorResponse(1, "test.shops", mtest.FirstBatch, bson.D{
			{Key: "domain", Value: "acme.myshopify.com"},
			{Key: "accessToken", Value: ""},
			{Key: "revokedAt", Value: time.Now().UTC()},
		}))

		_, err := repo.GetAccessToken(context.Background(), "acme.myshopify.com")
		assert.ErrorIs(t, err, domain.ErrTokenNotFound)
	})
}

func TestMongoTokenRepository_SaveAndRevoke(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("save", func(mt *mtest.T) {
		repo := NewMongoTokenRepository(mt.DB, prefixCipher{})
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))

		err := repo.SaveToken(context.Background(), &domain.ShopToken{
			ShopDomain:  "acme.myshopify.com",
			AccessToken: "shpat_123",
			Scopes:      []string{"read_products"},
		})
		assert.NoError(t, err)
	})

	mt.Run("revoke", func(mt *mtest.T) {
		repo := NewMongoTokenRepository(mt.DB, prefixCipher{})
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))

		assert.NoError(t, repo.RevokeToken(context.Background(), "acme.myshopify.com"))
	})
}

func TestMongoIntegrationRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("create assigns id", func(mt *mtest.T) {
		repo := NewMongoIntegrationRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		integration := &domain.Integration{Key: "k1", ShopDomain: "acme.myshopify.com"}
		require.NoError(t, repo.Create(context.Background(), integration))
		assert.NotEmpty(t, integration.ID)
	})

	mt.Run("get missing key", func(mt *mtest.T) {
		repo := NewMongoIntegrationRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.integrations", mtest.FirstBatch))

		got, err := repo.GetByKey(context.Background(), "nope")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	mt.Run("delete missing key", func(mt *mtest.T) {
		repo := NewMongoIntegrationRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		err := repo.Delete(context.Background(), "nope")
		assert.ErrorIs(t, err, ErrIntegrationNotFound)
	})
}
