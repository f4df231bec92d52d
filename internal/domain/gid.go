package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ResourceType is the type segment of a Shopify global ID
// (gid://shopify/{ResourceType}/{id}).
type ResourceType string

const (
	ResourceShop           ResourceType = "Shop"
	ResourceProduct        ResourceType = "Product"
	ResourceProductVariant ResourceType = "ProductVariant"
	ResourceCustomer       ResourceType = "Customer"
	ResourceOrder          ResourceType = "Order"
	ResourceLineItem       ResourceType = "LineItem"
)

const gidScheme = "gid://shopify/"

// ErrInvalidGID is returned when a string is not a Shopify global ID
var ErrInvalidGID = errors.New("invalid global id")

// GIDTypeError is returned when a global ID decodes to an unexpected resource type
type GIDTypeError struct {
	Want ResourceType
	Got  ResourceType
	Raw  string
}

func (e *GIDTypeError) Error() string {
	return fmt.Sprintf("global id %q has type %s, expected %s", e.Raw, e.Got, e.Want)
}

// GID is a decoded Shopify global ID
type GID struct {
	Type ResourceType
	ID   string
}

func (g GID) String() string {
	return gidScheme + string(g.Type) + "/" + g.ID
}

// ParseGID decodes a global ID into its resource type and external id.
// Query parameters some resources carry (e.g. ?inventory_item_id=) are dropped.
func ParseGID(raw string) (GID, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(raw), gidScheme)
	if !ok {
		return GID{}, fmt.Errorf("%w: %q", ErrInvalidGID, raw)
	}
	if i := strings.IndexByte(rest, '?'); i >= 0 {
		rest = rest[:i]
	}

	resource, id, ok := strings.Cut(rest, "/")
	if !ok || resource == "" || id == "" || strings.Contains(id, "/") {
		return GID{}, fmt.Errorf("%w: %q", ErrInvalidGID, raw)
	}

	return GID{Type: ResourceType(resource), ID: id}, nil
}

// DecodeGID returns the external id of raw, which must be of type want
func DecodeGID(raw string, want ResourceType) (string, error) {
	gid, err := ParseGID(raw)
	if err != nil {
		return "", err
	}
	if gid.Type != want {
		return "", &GIDTypeError{Want: want, Got: gid.Type, Raw: raw}
	}
	return gid.ID, nil
}

// DecodeOptionalGID is DecodeGID for references that may be missing.
// A blank raw value yields an empty id and no error.
func DecodeOptionalGID(raw string, want ResourceType) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}
	return DecodeGID(raw, want)
}
