package store

import "github.com/ethereum/go-ethereum/common"

// EventKind identifies which contract event produced a stored row.
type EventKind string

const (
	// KindShout is a plain burn-to-broadcast message.
	KindShout EventKind = "shout"
	// KindGift is a burn credited to another address.
	KindGift EventKind = "gift"
	// KindBoost adds burned value to an existing shout.
	KindBoost EventKind = "boost"
)

// ShoutEvent is one indexed contract event. Rows are keyed by transaction
// hash, which makes writes idempotent under at-least-once delivery.
type ShoutEvent struct {
	ID   int64     `meddler:"id,pk" json:"id"`
	Kind EventKind `meddler:"kind" json:"kind"`

	// Sender is the address that burned tokens. For boosts it comes from the
	// transaction receipt since the event does not carry it.
	Sender common.Address `meddler:"sender_address,address" json:"sender_address"`

	// Content is the broadcast message decoded from transaction calldata.
	// Nil when the calldata could not be decoded.
	Content *string `meddler:"content" json:"content,omitempty"`

	// SequenceID is the contract-assigned id tying gifts and boosts to the
	// shout they reference.
	SequenceID uint64 `meddler:"sequence_id" json:"sequence_id"`

	Token common.Address `meddler:"token_address,address" json:"token_address"`

	// AmountBurned is the burned amount in whole tokens as a decimal string.
	// Stored as text to keep full precision.
	AmountBurned string `meddler:"amount_burned" json:"amount_burned"`

	TxHash      common.Hash `meddler:"transaction_hash,hash" json:"transaction_hash"`
	BlockNumber uint64      `meddler:"block_number" json:"block_number"`
	Timestamp   int64       `meddler:"timestamp" json:"timestamp"`

	// Recipient is set for gifts only.
	Recipient *common.Address `meddler:"recipient_address,address" json:"recipient_address,omitempty"`

	// GiftAmount is set for gifts only, same encoding as AmountBurned.
	GiftAmount *string `meddler:"gift_amount" json:"gift_amount,omitempty"`

	// BoostForSequenceID is set for boosts only and points at the boosted shout.
	BoostForSequenceID *uint64 `meddler:"boost_for_sequence_id" json:"boost_for_sequence_id,omitempty"`

	Verified bool   `meddler:"verified" json:"verified"`
	Views    uint64 `meddler:"views" json:"views"`
}

// SortOrder selects how ListEvents orders results.
type SortOrder string

const (
	// SortRecent orders newest first.
	SortRecent SortOrder = "recent"
	// SortAmount orders by burned amount, largest first.
	SortAmount SortOrder = "amount"
)

// ListFilter narrows and orders a ListEvents query.
type ListFilter struct {
	// MinAmount filters out events that burned less than this many whole tokens.
	MinAmount float64

	// Token restricts results to a single burned token.
	Token *common.Address

	// Sort is SortRecent (default) or SortAmount.
	Sort SortOrder

	Limit  int
	Offset int
}

// Stats summarizes indexer progress for the status endpoint.
type Stats struct {
	ChainID        uint64               `json:"chain_id"`
	LastBlock      uint64               `json:"last_indexed_block"`
	HasCheckpoint  bool                 `json:"has_checkpoint"`
	TotalEvents    uint64               `json:"total_events"`
	EventsByKind   map[EventKind]uint64 `json:"events_by_kind"`
	LastUpdateUnix int64                `json:"last_update_unix,omitempty"`
}
