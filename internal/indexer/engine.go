package indexer

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"sync/atomic"
	"time"

	"github.com/earthshout/shout-indexer/internal/decoder"
	"github.com/earthshout/shout-indexer/internal/logger"
	"github.com/earthshout/shout-indexer/internal/metrics"
	"github.com/earthshout/shout-indexer/internal/rpc"
	"github.com/earthshout/shout-indexer/internal/store"
	"github.com/earthshout/shout-indexer/pkg/config"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"golang.org/x/sync/errgroup"
)

// headerCacheSize bounds the block timestamp cache. Catch-up passes touch
// each block at most a handful of times, so a small cache is enough.
const headerCacheSize = 1024

// liveLogBuffer is the capacity of the channel between the subscription
// watcher and the live consumer.
const liveLogBuffer = 256

// Engine drives the indexing pipeline: it scans the chain for contract
// events, decodes them and writes them to durable storage.
//
// Two paths feed the store. The catch-up pass scans from the checkpoint to
// the confirmed head on every polling tick and is the only path that advances
// the checkpoint, after the whole range is durably written. The live
// subscription delivers logs with lower latency but never touches the
// checkpoint, so anything it delivers is re-covered by a later pass.
// Upserts keyed by transaction hash make the overlap harmless.
type Engine struct {
	cfg      *config.IndexerConfig
	client   rpc.ChainClient
	dec      *decoder.Decoder
	store    *store.Store
	log      *logger.Logger
	contract common.Address

	state atomic.Int32

	// lifecycleMu guards cancel and done so a Stop racing a concurrent
	// Start never sees them half-initialized.
	lifecycleMu sync.Mutex
	cancel      context.CancelFunc
	done        chan struct{}

	// passMu serializes catch-up passes so a slow pass and the next tick
	// cannot interleave.
	passMu sync.Mutex

	headerMu    sync.Mutex
	headerCache map[uint64]uint64
}

// New creates an indexing engine.
func New(cfg *config.IndexerConfig, client rpc.ChainClient, dec *decoder.Decoder,
	st *store.Store, log *logger.Logger) *Engine {
	return &Engine{
		cfg:         cfg,
		client:      client,
		dec:         dec,
		store:       st,
		log:         log,
		contract:    common.HexToAddress(cfg.ContractAddress),
		headerCache: make(map[uint64]uint64),
	}
}

// State returns the current engine state.
func (e *Engine) State() State {
	return State(e.state.Load())
}

// Start launches the poll loop and the live subscription. Calling Start on a
// running engine is a no-op.
func (e *Engine) Start(ctx context.Context) error {
	e.lifecycleMu.Lock()
	defer e.lifecycleMu.Unlock()

	if !e.state.CompareAndSwap(int32(StateStopped), int32(StateStarting)) {
		e.log.Warnf("start ignored, engine is %s", e.State())
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.done = make(chan struct{})

	liveLogs := make(chan types.Log, liveLogBuffer)
	watcher := newWatcher(e.client, e.filterQuery(0, 0), liveLogs, e.log.WithComponent("watcher"))

	group, groupCtx := errgroup.WithContext(runCtx)
	group.Go(func() error {
		return e.pollLoop(groupCtx)
	})
	group.Go(func() error {
		return watcher.run(groupCtx)
	})
	group.Go(func() error {
		return e.consumeLive(groupCtx, liveLogs)
	})

	go func() {
		defer close(e.done)
		if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
			e.log.Errorf("engine stopped with error: %v", err)
		}
		e.state.Store(int32(StateStopped))
	}()

	e.state.Store(int32(StateCatchingUp))
	e.log.Infof("engine started, contract %s on chain %d", e.contract.Hex(), e.cfg.ChainID)
	return nil
}

// Stop shuts the engine down and waits for in-flight work to finish. Calling
// Stop on a stopped engine is a no-op.
func (e *Engine) Stop() {
	e.lifecycleMu.Lock()
	state := State(e.state.Load())
	if state == StateStopped || state == StateStopping {
		e.lifecycleMu.Unlock()
		return
	}
	e.state.Store(int32(StateStopping))
	cancel, done := e.cancel, e.done
	e.lifecycleMu.Unlock()

	e.log.Info("stopping engine")
	cancel()
	<-done
	e.log.Info("engine stopped")
}

// pollLoop runs a catch-up pass immediately and then on every polling tick.
// A failed pass only logs: the next tick retries from the unchanged
// checkpoint. Passes run on a context detached from shutdown so an in-flight
// pass completes instead of committing a partial range; the per-call RPC
// timeouts keep that wait bounded.
func (e *Engine) pollLoop(ctx context.Context) error {
	passCtx := context.WithoutCancel(ctx)

	if err := e.runPass(passCtx); err != nil {
		e.log.Errorf("catch-up pass failed: %v", err)
	}

	ticker := time.NewTicker(e.cfg.PollingInterval.Duration)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := e.runPass(passCtx); err != nil {
				e.log.Errorf("catch-up pass failed: %v", err)
			}
		}
	}
}

// runPass executes one catch-up pass: scan (checkpoint, head-confirmations],
// write every decoded event, then advance the checkpoint. The checkpoint only
// moves after the whole range is durably stored, so a crash mid-pass replays
// the range instead of skipping it.
func (e *Engine) runPass(ctx context.Context) error {
	e.passMu.Lock()
	defer e.passMu.Unlock()

	start := time.Now()
	defer func() {
		metrics.PassDuration.Observe(time.Since(start).Seconds())
	}()

	head, err := e.client.BlockNumber(ctx)
	if err != nil {
		return fmt.Errorf("failed to get chain head: %w", err)
	}

	if head < e.cfg.ConfirmationBlocks {
		return nil
	}
	upper := head - e.cfg.ConfirmationBlocks

	checkpoint, hasCheckpoint, err := e.store.GetCheckpoint(ctx)
	if err != nil {
		return err
	}

	var from uint64
	if hasCheckpoint {
		from = checkpoint + 1
	} else {
		// First run: bound the scan to the configured backlog
		var lower uint64
		if head > e.cfg.InitialBacklogBlocks {
			lower = head - e.cfg.InitialBacklogBlocks
		}
		from = lower + 1
	}

	if from > upper {
		e.markLive()
		return nil
	}

	logs, err := e.fetchLogs(ctx, from, upper)
	if err != nil {
		return fmt.Errorf("failed to fetch logs for blocks %d-%d: %w", from, upper, err)
	}

	indexed := 0
	for i := range logs {
		inserted, err := e.processLog(ctx, logs[i])
		if err != nil {
			return fmt.Errorf("failed to process log %s: %w", logs[i].TxHash.Hex(), err)
		}
		if inserted {
			indexed++
		}
	}

	if err := e.store.SetCheckpoint(ctx, upper); err != nil {
		return err
	}

	if indexed > 0 || len(logs) > 0 {
		e.log.Infof("indexed blocks %d-%d: %d logs, %d new events", from, upper, len(logs), indexed)
	} else {
		e.log.Debugf("indexed blocks %d-%d: no events", from, upper)
	}

	e.markLive()
	return nil
}

func (e *Engine) markLive() {
	if e.state.CompareAndSwap(int32(StateCatchingUp), int32(StateLive)) {
		e.log.Info("caught up with chain head")
	}
}

// fetchLogs retrieves contract logs for a block range, splitting the range
// when the provider caps the result set.
func (e *Engine) fetchLogs(ctx context.Context, from, to uint64) ([]types.Log, error) {
	logs, err := e.client.FilterLogs(ctx, e.filterQuery(from, to))
	if err == nil {
		return logs, nil
	}

	tooMany, msg := rpc.IsTooManyResultsError(err)
	if !tooMany || from >= to {
		return nil, err
	}

	// Prefer the provider's suggested range, fall back to halving
	mid := from + (to-from)/2
	if suggestedFrom, suggestedTo, ok := rpc.ParseSuggestedBlockRange(msg); ok &&
		suggestedFrom == from && suggestedTo >= from && suggestedTo < to {
		mid = suggestedTo
	}

	e.log.Debugf("provider capped blocks %d-%d, splitting at %d", from, to, mid)

	first, err := e.fetchLogs(ctx, from, mid)
	if err != nil {
		return nil, err
	}
	rest, err := e.fetchLogs(ctx, mid+1, to)
	if err != nil {
		return nil, err
	}
	return append(first, rest...), nil
}

// filterQuery builds the eth_getLogs query for the contract. A zero from/to
// produces an unbounded query, used by the live subscription.
func (e *Engine) filterQuery(from, to uint64) ethereum.FilterQuery {
	query := ethereum.FilterQuery{
		Addresses: []common.Address{e.contract},
		Topics:    [][]common.Hash{e.dec.Topics()},
	}
	if to > 0 {
		query.FromBlock = new(big.Int).SetUint64(from)
		query.ToBlock = new(big.Int).SetUint64(to)
	}
	return query
}

// processLog enriches a raw log with its transaction context, decodes it and
// writes the result. Decode failures skip the log; provider and storage
// failures propagate so the pass can abort without moving the checkpoint.
func (e *Engine) processLog(ctx context.Context, lg types.Log) (bool, error) {
	if lg.Removed {
		// The subscription flags logs dropped by a reorg. The canonical
		// replacement arrives through a later catch-up pass.
		e.log.Warnf("log %s removed by reorg, ignoring", lg.TxHash.Hex())
		metrics.EventsSkipped.WithLabelValues("reorged").Inc()
		return false, nil
	}

	blockTime, err := e.headerTimestamp(ctx, lg.BlockNumber)
	if err != nil {
		return false, err
	}

	tx, err := e.client.TransactionByHash(ctx, lg.TxHash)
	if err != nil {
		return false, fmt.Errorf("failed to fetch transaction: %w", err)
	}

	raw := decoder.RawEvent{
		Log:       lg,
		Tx:        tx,
		BlockTime: blockTime,
	}

	// Boost topics do not carry the sender, take it from the receipt
	if len(lg.Topics) > 0 && lg.Topics[0] == decoder.BoostEventSig {
		sender, err := e.client.TransactionSender(ctx, lg.TxHash)
		if err != nil {
			return false, fmt.Errorf("failed to fetch transaction sender: %w", err)
		}
		raw.Sender = sender
	}

	event, err := e.dec.Decode(raw)
	if err != nil {
		// A malformed or foreign log must not wedge the pipeline
		if errors.Is(err, decoder.ErrUnknownEvent) {
			metrics.EventsSkipped.WithLabelValues("unknown_event").Inc()
			e.log.Debugf("skipping log %s: %v", lg.TxHash.Hex(), err)
		} else {
			metrics.EventsSkipped.WithLabelValues("decode_error").Inc()
			e.log.Warnf("skipping undecodable log %s: %v", lg.TxHash.Hex(), err)
		}
		return false, nil
	}

	return e.store.UpsertEvent(ctx, event)
}

// headerTimestamp returns the timestamp of a block, cached per block number.
func (e *Engine) headerTimestamp(ctx context.Context, blockNum uint64) (uint64, error) {
	e.headerMu.Lock()
	if ts, ok := e.headerCache[blockNum]; ok {
		e.headerMu.Unlock()
		return ts, nil
	}
	e.headerMu.Unlock()

	header, err := e.client.HeaderByNumber(ctx, blockNum)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch header %d: %w", blockNum, err)
	}

	e.headerMu.Lock()
	if len(e.headerCache) >= headerCacheSize {
		e.headerCache = make(map[uint64]uint64)
	}
	e.headerCache[blockNum] = header.Time
	e.headerMu.Unlock()

	return header.Time, nil
}

// consumeLive processes logs delivered by the subscription. Failures here are
// logged and dropped: the catch-up pass re-covers the same blocks, so a live
// miss only costs latency, never data.
func (e *Engine) consumeLive(ctx context.Context, logs <-chan types.Log) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case lg := <-logs:
			inserted, err := e.processLog(ctx, lg)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				e.log.Warnf("live log %s not indexed, will be picked up by catch-up: %v", lg.TxHash.Hex(), err)
				continue
			}
			if inserted {
				e.log.Infof("live event %s indexed from block %d", lg.TxHash.Hex(), lg.BlockNumber)
			}
		}
	}
}
