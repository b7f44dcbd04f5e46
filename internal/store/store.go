package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/earthshout/shout-indexer/internal/logger"
	"github.com/earthshout/shout-indexer/internal/metrics"
	"github.com/russross/meddler"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// ErrNotFound is returned when a requested event does not exist.
var ErrNotFound = errors.New("event not found")

// Store persists indexed events and the per-chain checkpoint in SQLite.
type Store struct {
	db      *sql.DB
	chainID uint64
	log     *logger.Logger
}

// New creates a new Store bound to the given chain.
func New(db *sql.DB, chainID uint64, log *logger.Logger) *Store {
	return &Store{
		db:      db,
		chainID: chainID,
		log:     log,
	}
}

// GetCheckpoint returns the last durably indexed block for the store's chain.
// The second return value is false when no checkpoint has been recorded yet.
func (s *Store) GetCheckpoint(ctx context.Context) (uint64, bool, error) {
	metrics.DBQueryInc("indexer_state", "select")

	var lastBlock uint64
	err := s.db.QueryRowContext(ctx,
		`SELECT last_block_number FROM indexer_state WHERE chain_id = ?`, s.chainID,
	).Scan(&lastBlock)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		metrics.DBErrorInc("indexer_state", "select")
		return 0, false, fmt.Errorf("failed to read checkpoint: %w", err)
	}

	return lastBlock, true, nil
}

// SetCheckpoint advances the checkpoint to blockNum. The update is monotonic:
// a value at or below the stored checkpoint is a no-op, so a delayed or
// replayed pass can never move the checkpoint backwards.
func (s *Store) SetCheckpoint(ctx context.Context, blockNum uint64) error {
	metrics.DBQueryInc("indexer_state", "upsert")

	const query = `
		INSERT INTO indexer_state (chain_id, last_block_number, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(chain_id) DO UPDATE SET
			last_block_number = excluded.last_block_number,
			updated_at = excluded.updated_at
		WHERE excluded.last_block_number > indexer_state.last_block_number
	`

	if _, err := s.db.ExecContext(ctx, query, s.chainID, blockNum, time.Now().Unix()); err != nil {
		metrics.DBErrorInc("indexer_state", "upsert")
		return fmt.Errorf("failed to set checkpoint: %w", err)
	}

	metrics.LastIndexedBlock.WithLabelValues(fmt.Sprintf("%d", s.chainID)).Set(float64(blockNum))
	return nil
}

// UpsertEvent writes an event keyed by transaction hash. A duplicate hash is
// silently ignored, which makes redelivery of the same event harmless.
// Returns true when a new row was inserted.
func (s *Store) UpsertEvent(ctx context.Context, ev *ShoutEvent) (bool, error) {
	metrics.DBQueryInc("shout_events", "insert")

	const query = `
		INSERT INTO shout_events (
			kind, sender_address, content, sequence_id, token_address,
			amount_burned, transaction_hash, block_number, timestamp,
			recipient_address, gift_amount, boost_for_sequence_id, verified, views
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(transaction_hash) DO NOTHING
	`

	var recipient any
	if ev.Recipient != nil {
		recipient = ev.Recipient.Hex()
	}

	result, err := s.db.ExecContext(ctx, query,
		string(ev.Kind),
		ev.Sender.Hex(),
		ev.Content,
		ev.SequenceID,
		ev.Token.Hex(),
		ev.AmountBurned,
		ev.TxHash.Hex(),
		ev.BlockNumber,
		ev.Timestamp,
		recipient,
		ev.GiftAmount,
		ev.BoostForSequenceID,
		ev.Verified,
		ev.Views,
	)
	if err != nil {
		metrics.DBErrorInc("shout_events", "insert")
		return false, fmt.Errorf("failed to insert event %s: %w", ev.TxHash.Hex(), err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}

	if rows == 0 {
		s.log.Debugf("event %s already indexed, skipping", ev.TxHash.Hex())
		return false, nil
	}

	metrics.EventsIndexed.WithLabelValues(string(ev.Kind)).Inc()
	return true, nil
}

// ListEvents returns events matching the filter.
func (s *Store) ListEvents(ctx context.Context, filter ListFilter) ([]*ShoutEvent, error) {
	metrics.DBQueryInc("shout_events", "select")

	var (
		conditions []string
		args       []any
	)

	if filter.MinAmount > 0 {
		// amount_burned is stored as text to keep precision; the filter only
		// needs approximate ordering so a REAL cast is fine here.
		conditions = append(conditions, "CAST(amount_burned AS REAL) >= ?")
		args = append(args, filter.MinAmount)
	}

	if filter.Token != nil {
		conditions = append(conditions, "token_address = ?")
		args = append(args, filter.Token.Hex())
	}

	query := "SELECT * FROM shout_events"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	switch filter.Sort {
	case SortAmount:
		query += " ORDER BY CAST(amount_burned AS REAL) DESC, id DESC"
	default:
		query += " ORDER BY timestamp DESC, id DESC"
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	query += " LIMIT ? OFFSET ?"
	args = append(args, limit, max(filter.Offset, 0))

	var events []*ShoutEvent
	if err := meddler.QueryAll(s.db, &events, query, args...); err != nil {
		metrics.DBErrorInc("shout_events", "select")
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	return events, nil
}

// GetEvent returns a single event by its database id.
func (s *Store) GetEvent(ctx context.Context, id int64) (*ShoutEvent, error) {
	metrics.DBQueryInc("shout_events", "select")

	event := new(ShoutEvent)
	err := meddler.QueryRow(s.db, event, `SELECT * FROM shout_events WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		metrics.DBErrorInc("shout_events", "select")
		return nil, fmt.Errorf("failed to get event %d: %w", id, err)
	}

	return event, nil
}

// IncrementViews bumps the view counter for an event.
func (s *Store) IncrementViews(ctx context.Context, id int64) error {
	metrics.DBQueryInc("shout_events", "update")

	result, err := s.db.ExecContext(ctx,
		`UPDATE shout_events SET views = views + 1 WHERE id = ?`, id)
	if err != nil {
		metrics.DBErrorInc("shout_events", "update")
		return fmt.Errorf("failed to increment views for event %d: %w", id, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// Stats returns indexing progress and per-kind event counts.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{
		ChainID:      s.chainID,
		EventsByKind: make(map[EventKind]uint64),
	}

	var updatedAt int64
	err := s.db.QueryRowContext(ctx,
		`SELECT last_block_number, updated_at FROM indexer_state WHERE chain_id = ?`, s.chainID,
	).Scan(&stats.LastBlock, &updatedAt)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		metrics.DBErrorInc("indexer_state", "select")
		return nil, fmt.Errorf("failed to read checkpoint: %w", err)
	}
	if err == nil {
		stats.HasCheckpoint = true
		stats.LastUpdateUnix = updatedAt
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT kind, COUNT(*) FROM shout_events GROUP BY kind`)
	if err != nil {
		metrics.DBErrorInc("shout_events", "select")
		return nil, fmt.Errorf("failed to count events: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			kind  string
			count uint64
		)
		if err := rows.Scan(&kind, &count); err != nil {
			return nil, fmt.Errorf("failed to scan event count: %w", err)
		}
		stats.EventsByKind[EventKind(kind)] = count
		stats.TotalEvents += count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate event counts: %w", err)
	}

	return stats, nil
}
