package domain

import "encoding/json"

// PageRequest asks for one page of a remote collection
type PageRequest struct {
	EntityType EntityType
	PageSize   int
	After      string // empty starts from the beginning
	Filter     string // search query, e.g. created_at:>=2024-01-01T00:00:00Z
}

// PageInfo is the remote pagination state after a page
type PageInfo struct {
	HasNextPage bool   `json:"hasNextPage"`
	EndCursor   string `json:"endCursor"`
}

// Page is one batch of raw remote records, in cursor order
type Page struct {
	Number   int               `json:"number"` // 1-based within a walk
	Records  []json.RawMessage `json:"records"`
	PageInfo PageInfo          `json:"pageInfo"`
}
