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
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrIntegrationNotFound is returned when deleting an unknown key
var ErrIntegrationNotFound = errors.New("integration not found")

// MongoIntegrationRepository implements IntegrationRepository using MongoDB
type MongoIntegrationRepository struct {
	collection *mongo.Collection
}

// NewMongoIntegrationRepository creates a new MongoDB integration repository
func NewMongoIntegrationRepository(db *mongo.Database) *MongoIntegrationRepository {
	return &MongoIntegrationRepository{
		collection: db.Collection("integrations"),
	}
}

var _ ports.IntegrationRepository = (*MongoIntegrationRepository)(nil)

// EnsureIndexes creates the unique key index
func (r *MongoIntegrationRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "key", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "shopDomain", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create integration indexes: %w", err)
	}
	return nil
}

// Create creates a new integration and sets its ID
func (r *MongoIntegrationRepository) Create(ctx context.Context, integration *domain.Integration) error {
	doc := entity.MongoIntegrationDocFromDomain(integration)
	doc.UpdatedAt = time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = doc.UpdatedAt
	}
	if doc.ID.IsZero() {
		doc.ID = primitive.NewObjectID()
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to create integration: %w", err)
	}

	integration.ID = doc.ID.Hex()
	return nil
}

// GetByKey retrieves an integration by its key
func (r *MongoIntegrationRepository) GetByKey(ctx context.Context, key string) (*domain.Integration, error) {
	var doc entity.MongoIntegrationDoc
	err := r.collection.FindOne(ctx, bson.M{"key": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get integration: %w", err)
	}

	return doc.ToDomain(), nil
}

// ListByShop retrieves every integration of a shop, oldest first
func (r *MongoIntegrationRepository) ListByShop(ctx context.Context, shopDomain string) ([]*domain.Integration, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"shopDomain": shopDomain}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list integrations: %w", err)
	}
	defer cursor.Close(ctx)

	var integrations []*domain.Integration
	for cursor.Next(ctx) {
		var doc entity.MongoIntegrationDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode integration: %w", err)
		}
		integrations = append(integrations, doc.ToDomain())
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	return integrations, nil
}

// Delete deletes an integration by key
func (r *MongoIntegrationRepository) Delete(ctx context.Context, key string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"key": key})
	if err != nil {
		return fmt.Errorf("failed to delete integration: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrIntegrationNotFound
	}
	return nil
}
