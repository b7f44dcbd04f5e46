package api

import (
	"time"

	"github.com/earthshout/shout-indexer/internal/store"
)

// ShoutsResponse is the paginated shout listing.
type ShoutsResponse struct {
	Shouts     []*store.ShoutEvent `json:"shouts"`
	Pagination PaginationResult    `json:"pagination"`
}

// PaginationResult contains pagination metadata.
type PaginationResult struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	Count   int  `json:"count"`
	HasMore bool `json:"has_more"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code"`
}

// HealthResponse represents a health check response.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// StatusResponse reports indexing progress.
type StatusResponse struct {
	State            string                     `json:"state"`
	ChainID          uint64                     `json:"chain_id"`
	LastIndexedBlock uint64                     `json:"last_indexed_block"`
	HasCheckpoint    bool                       `json:"has_checkpoint"`
	TotalEvents      uint64                     `json:"total_events"`
	EventsByKind     map[store.EventKind]uint64 `json:"events_by_kind"`
	LastUpdateUnix   int64                      `json:"last_update_unix,omitempty"`
}

// TokenPrice is a single entry of the token price listing.
type TokenPrice struct {
	Token    string  `json:"token"`
	Symbol   string  `json:"symbol"`
	PriceUSD float64 `json:"price_usd"`
}
