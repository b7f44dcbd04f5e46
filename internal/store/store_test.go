package store

import (
	"context"
	"path/filepath"
	"testing"

	dbpkg "github.com/earthshout/shout-indexer/internal/db"
	"github.com/earthshout/shout-indexer/internal/logger"
	"github.com/earthshout/shout-indexer/internal/migrations"
	"github.com/earthshout/shout-indexer/pkg/config"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, chainID uint64) *Store {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	require.NoError(t, migrations.RunMigrations(config.DatabaseConfig{Path: path}))

	db, err := dbpkg.NewSQLiteDB(path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return New(db, chainID, logger.NewNopLogger())
}

func testEvent(txHash string) *ShoutEvent {
	content := "hello world"
	return &ShoutEvent{
		Kind:         KindShout,
		Sender:       common.HexToAddress("0x1111111111111111111111111111111111111111"),
		Content:      &content,
		SequenceID:   1,
		Token:        common.HexToAddress("0x2222222222222222222222222222222222222222"),
		AmountBurned: "100",
		TxHash:       common.HexToHash(txHash),
		BlockNumber:  10,
		Timestamp:    1700000000,
		Verified:     true,
	}
}

func TestCheckpoint(t *testing.T) {
	s := newTestStore(t, 1)
	ctx := context.Background()

	// No checkpoint yet
	block, ok, err := s.GetCheckpoint(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, uint64(0), block)

	// First write
	require.NoError(t, s.SetCheckpoint(ctx, 100))
	block, ok, err = s.GetCheckpoint(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint64(100), block)

	// Lower value must not move the checkpoint backwards
	require.NoError(t, s.SetCheckpoint(ctx, 90))
	block, _, err = s.GetCheckpoint(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), block)

	// Equal value is a no-op
	require.NoError(t, s.SetCheckpoint(ctx, 100))
	block, _, err = s.GetCheckpoint(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), block)

	// Higher value advances
	require.NoError(t, s.SetCheckpoint(ctx, 150))
	block, _, err = s.GetCheckpoint(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(150), block)
}

func TestCheckpointPerChain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	require.NoError(t, migrations.RunMigrations(config.DatabaseConfig{Path: path}))

	db, err := dbpkg.NewSQLiteDB(path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mainnet := New(db, 1, logger.NewNopLogger())
	testnet := New(db, 11155111, logger.NewNopLogger())
	ctx := context.Background()

	require.NoError(t, mainnet.SetCheckpoint(ctx, 100))
	require.NoError(t, testnet.SetCheckpoint(ctx, 42))

	block, _, err := mainnet.GetCheckpoint(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), block)

	block, _, err = testnet.GetCheckpoint(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), block)
}

func TestUpsertEventIdempotent(t *testing.T) {
	s := newTestStore(t, 1)
	ctx := context.Background()

	ev := testEvent("0xaaaa")

	inserted, err := s.UpsertEvent(ctx, ev)
	require.NoError(t, err)
	assert.True(t, inserted)

	// Redelivery of the same transaction is a no-op
	inserted, err = s.UpsertEvent(ctx, ev)
	require.NoError(t, err)
	assert.False(t, inserted)

	events, err := s.ListEvents(ctx, ListFilter{})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, ev.TxHash, events[0].TxHash)
	assert.Equal(t, KindShout, events[0].Kind)
	require.NotNil(t, events[0].Content)
	assert.Equal(t, "hello world", *events[0].Content)
	assert.Nil(t, events[0].Recipient)
	assert.Nil(t, events[0].GiftAmount)
	assert.Nil(t, events[0].BoostForSequenceID)
}

func TestUpsertGiftFields(t *testing.T) {
	s := newTestStore(t, 1)
	ctx := context.Background()

	recipient := common.HexToAddress("0x3333333333333333333333333333333333333333")
	giftAmount := "50"
	ev := testEvent("0xbbbb")
	ev.Kind = KindGift
	ev.Recipient = &recipient
	ev.GiftAmount = &giftAmount

	inserted, err := s.UpsertEvent(ctx, ev)
	require.NoError(t, err)
	require.True(t, inserted)

	got, err := s.GetEvent(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, KindGift, got.Kind)
	require.NotNil(t, got.Recipient)
	assert.Equal(t, recipient, *got.Recipient)
	require.NotNil(t, got.GiftAmount)
	assert.Equal(t, "50", *got.GiftAmount)
}

func TestListEventsFilters(t *testing.T) {
	s := newTestStore(t, 1)
	ctx := context.Background()

	tokenA := common.HexToAddress("0x000000000000000000000000000000000000000a")
	tokenB := common.HexToAddress("0x000000000000000000000000000000000000000b")

	insert := func(txHash, amount string, token common.Address, block uint64) {
		ev := testEvent(txHash)
		ev.AmountBurned = amount
		ev.Token = token
		ev.BlockNumber = block
		inserted, err := s.UpsertEvent(ctx, ev)
		require.NoError(t, err)
		require.True(t, inserted)
	}

	insert("0x01", "5", tokenA, 10)
	insert("0x02", "150.5", tokenA, 20)
	insert("0x03", "1000", tokenB, 30)

	t.Run("no filter, recent first", func(t *testing.T) {
		events, err := s.ListEvents(ctx, ListFilter{})
		require.NoError(t, err)
		require.Len(t, events, 3)
		assert.Equal(t, uint64(30), events[0].BlockNumber)
		assert.Equal(t, uint64(10), events[2].BlockNumber)
	})

	t.Run("min amount", func(t *testing.T) {
		events, err := s.ListEvents(ctx, ListFilter{MinAmount: 100})
		require.NoError(t, err)
		require.Len(t, events, 2)
		for _, ev := range events {
			assert.NotEqual(t, "5", ev.AmountBurned)
		}
	})

	t.Run("token filter", func(t *testing.T) {
		events, err := s.ListEvents(ctx, ListFilter{Token: &tokenA})
		require.NoError(t, err)
		require.Len(t, events, 2)
		for _, ev := range events {
			assert.Equal(t, tokenA, ev.Token)
		}
	})

	t.Run("sort by amount", func(t *testing.T) {
		events, err := s.ListEvents(ctx, ListFilter{Sort: SortAmount})
		require.NoError(t, err)
		require.Len(t, events, 3)
		assert.Equal(t, "1000", events[0].AmountBurned)
		assert.Equal(t, "150.5", events[1].AmountBurned)
		assert.Equal(t, "5", events[2].AmountBurned)
	})

	t.Run("limit and offset", func(t *testing.T) {
		events, err := s.ListEvents(ctx, ListFilter{Limit: 1, Offset: 1})
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, uint64(20), events[0].BlockNumber)
	})
}

func TestGetEventAndViews(t *testing.T) {
	s := newTestStore(t, 1)
	ctx := context.Background()

	_, err := s.UpsertEvent(ctx, testEvent("0xcccc"))
	require.NoError(t, err)

	got, err := s.GetEvent(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), got.Views)

	require.NoError(t, s.IncrementViews(ctx, 1))
	require.NoError(t, s.IncrementViews(ctx, 1))

	got, err = s.GetEvent(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), got.Views)

	_, err = s.GetEvent(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)

	err = s.IncrementViews(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStats(t *testing.T) {
	s := newTestStore(t, 1)
	ctx := context.Background()

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.False(t, stats.HasCheckpoint)
	assert.Equal(t, uint64(0), stats.TotalEvents)

	_, err = s.UpsertEvent(ctx, testEvent("0x01"))
	require.NoError(t, err)

	boost := testEvent("0x02")
	boost.Kind = KindBoost
	_, err = s.UpsertEvent(ctx, boost)
	require.NoError(t, err)

	require.NoError(t, s.SetCheckpoint(ctx, 42))

	stats, err = s.Stats(ctx)
	require.NoError(t, err)
	assert.True(t, stats.HasCheckpoint)
	assert.Equal(t, uint64(42), stats.LastBlock)
	assert.Equal(t, uint64(2), stats.TotalEvents)
	assert.Equal(t, uint64(1), stats.EventsByKind[KindShout])
	assert.Equal(t, uint64(1), stats.EventsByKind[KindBoost])
}
