package entity

import (
	"time"

	"archie-shopify-sync/internal/domain"
)

// MongoShopTokenDoc is a shop's installation record. The access token is
// stored encrypted.
type MongoShopTokenDoc struct {
	Domain      string     `bson:"domain"`
	AccessToken string     `bson:"accessToken"`
	Scopes      []string   `bson:"scopes"`
	InstalledAt time.Time  `bson:"installedAt"`
	RevokedAt   *time.Time `bson:"revokedAt,omitempty"`
	UpdatedAt   time.Time  `bson:"updatedAt"`
}

// ToDomain converts the document; the token stays encrypted
func (d *MongoShopTokenDoc) ToDomain() *domain.ShopToken {
	return &domain.ShopToken{
		ShopDomain:  d.Domain,
		AccessToken: d.AccessToken,
		Scopes:      d.Scopes,
		InstalledAt: d.InstalledAt,
		RevokedAt:   d.RevokedAt,
	}
}

// MongoShopTokenDocFromDomain converts a token whose AccessToken is already encrypted
func MongoShopTokenDocFromDomain(token *domain.ShopToken) *MongoShopTokenDoc {
	return &MongoShopTokenDoc{
		Domain:      token.ShopDomain,
		AccessToken: token.AccessToken,
		Scopes:      token.Scopes,
		InstalledAt: token.InstalledAt,
		RevokedAt:   token.RevokedAt,
	}
}
