package domain

import "time"

// ShopToken is an installed shop's offline access token
type ShopToken struct {
	ShopDomain  string     `json:"shop_domain"`
	AccessToken string     `json:"-"`
	Scopes      []string   `json:"scopes"`
	InstalledAt time.Time  `json:"installed_at"`
	RevokedAt   *time.Time `json:"revoked_at,omitempty"`
}

// Active reports whether the token has not been revoked
func (t *ShopToken) Active() bool {
	return t != nil && t.RevokedAt == nil && t.AccessToken != ""
}
