package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"archie-shopify-sync/internal/domain"
	"archie-shopify-sync/internal/infrastructure/repository/entity"
	"archie-shopify-sync/internal/ports"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TokenCipher encrypts access tokens before they reach the database
type TokenCipher interface {
	EncryptToken(token string) (string, error)
	DecryptToken(encryptedToken string) (string, error)
}

// MongoTokenRepository implements TokenStore using MongoDB.
// One document per shop domain in the shops collection.
type MongoTokenRepository struct {
	shopsCollection *mongo.Collection
	cipher          TokenCipher
}

// NewMongoTokenRepository creates a new MongoDB token repository
func NewMongoTokenRepository(db *mongo.Database, cipher TokenCipher) *MongoTokenRepository {
	return &MongoTokenRepository{
		shopsCollection: db.Collection("shops"),
		cipher:          cipher,
	}
}

var _ ports.TokenStore = (*MongoTokenRepository)(nil)

// EnsureIndexes creates the unique domain index
func (r *MongoTokenRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.shopsCollection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "domain", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create shop token index: %w", err)
	}
	return nil
}

// GetAccessToken returns the decrypted token of an installed, non-revoked shop
func (r *MongoTokenRepository) GetAccessToken(ctx context.Context, shop string) (string, error) {
	var doc entity.MongoShopTokenDoc
	err := r.shopsCollection.FindOne(ctx, bson.M{"domain": shop}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", domain.ErrTokenNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get shop: %w", err)
	}

	if !doc.ToDomain().Active() {
		return "", domain.ErrTokenNotFound
	}

	token, err := r.cipher.DecryptToken(doc.AccessToken)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt access token: %w", err)
	}
	return token, nil
}

// SaveToken saves or replaces the shop's token and clears any revocation
func (r *MongoTokenRepository) SaveToken(ctx context.Context, token *domain.ShopToken) error {
	encrypted, err := r.cipher.EncryptToken(token.AccessToken)
	if err != nil {
		return fmt.Errorf("failed to encrypt access token: %w", err)
	}

	stored := *token
	stored.AccessToken = encrypted
	stored.RevokedAt = nil
	doc := entity.MongoShopTokenDocFromDomain(&stored)
	doc.UpdatedAt = time.Now().UTC()
	if doc.InstalledAt.IsZero() {
		doc.InstalledAt = doc.UpdatedAt
	}

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"domain": token.ShopDomain}
	update := bson.M{
		"$set": bson.M{
			"domain":      doc.Domain,
			"accessToken": doc.AccessToken,
			"scopes":      doc.Scopes,
			"installedAt": doc.InstalledAt,
			"updatedAt":   doc.UpdatedAt,
		},
		"$unset": bson.M{"revokedAt": ""},
	}

	if _, err := r.shopsCollection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to save shop token: %w", err)
	}
	return nil
}

// RevokeToken marks the shop's token revoked and drops the ciphertext
func (r *MongoTokenRepository) RevokeToken(ctx context.Context, shop string) error {
	ts := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"revokedAt":   ts,
			"accessToken": "",
			"updatedAt":   ts,
		},
	}

	if _, err := r.shopsCollection.UpdateOne(ctx, bson.M{"domain": shop}, update); err != nil {
		return fmt.Errorf("failed to revoke shop token: %w", err)
	}
	return nil
}
