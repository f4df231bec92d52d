package entity

import (
	"time"

	"archie-shopify-sync/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MongoIntegrationDoc represents an integration in MongoDB
type MongoIntegrationDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	Key        string             `bson:"key"`
	ShopDomain string             `bson:"shopDomain"`
	Label      string             `bson:"label,omitempty"`
	CreatedAt  time.Time          `bson:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt"`
}

// ToDomain converts the MongoDB document to a domain entity
func (d *MongoIntegrationDoc) ToDomain() *domain.Integration {
	return &domain.Integration{
		ID:         d.ID.Hex(),
		Key:        d.Key,
		ShopDomain: d.ShopDomain,
		Label:      d.Label,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

// MongoIntegrationDocFromDomain converts a domain entity to a MongoDB document
func MongoIntegrationDocFromDomain(integration *domain.Integration) *MongoIntegrationDoc {
	doc := &MongoIntegrationDoc{
		Key:        integration.Key,
		ShopDomain: integration.ShopDomain,
		Label:      integration.Label,
		CreatedAt:  integration.CreatedAt,
		UpdatedAt:  integration.UpdatedAt,
	}

	if integration.ID != "" {
		if objID, err := primitive.ObjectIDFromHex(integration.ID); err == nil {
			doc.ID = objID
		}
	}

	return doc
}
