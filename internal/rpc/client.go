package rpc

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/earthshout/shout-indexer/pkg/config"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

// ChainClient is the chain access surface the indexer depends on. It is
// satisfied by Client and faked in tests.
type ChainClient interface {
	// BlockNumber returns the current chain head block number.
	BlockNumber(ctx context.Context) (uint64, error)

	// FilterLogs retrieves logs matching the given filter query.
	FilterLogs(ctx context.Context, query ethereum.FilterQuery) ([]types.Log, error)

	// HeaderByNumber retrieves the header for a specific block number.
	HeaderByNumber(ctx context.Context, blockNum uint64) (*types.Header, error)

	// TransactionByHash retrieves the transaction with the given hash.
	TransactionByHash(ctx context.Context, hash common.Hash) (*types.Transaction, error)

	// TransactionSender returns the address that sent the transaction with the
	// given hash, taken from its receipt.
	TransactionSender(ctx context.Context, hash common.Hash) (common.Address, error)

	// SubscribeFilterLogs subscribes to streaming log notifications. Endpoints
	// without subscription support return rpc.ErrNotificationsUnsupported.
	SubscribeFilterLogs(ctx context.Context, query ethereum.FilterQuery, ch chan<- types.Log) (ethereum.Subscription, error)
}

// Compile-time check to ensure Client implements the ChainClient interface.
var _ ChainClient = (*Client)(nil)

// Client wraps the Ethereum RPC client with per-call timeouts and retry with
// exponential backoff, so a stalled or flaky endpoint cannot wedge callers.
type Client struct {
	eth     *ethclient.Client
	rpc     *rpc.Client
	timeout time.Duration
	retry   *config.RetryConfig
}

// NewClient creates a new RPC client connected to the configured endpoint.
func NewClient(ctx context.Context, cfg *config.IndexerConfig) (*Client, error) {
	rpcClient, err := rpc.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", cfg.RPCURL, err)
	}

	return &Client{
		eth:     ethclient.NewClient(rpcClient),
		rpc:     rpcClient,
		timeout: cfg.RPCTimeout.Duration,
		retry:   cfg.Retry,
	}, nil
}

// Close closes the RPC client connection.
func (c *Client) Close() {
	c.eth.Close()
}

// callContext derives a per-call context bounded by the configured RPC timeout.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}

// do runs fn under the retry policy, recording per-method metrics.
func (c *Client) do(ctx context.Context, method string, fn func(ctx context.Context) error) error {
	start := time.Now()
	RPCMethodInc(method)

	err := retryWithBackoff(ctx, c.retry, method, func() error {
		callCtx, cancel := c.callContext(ctx)
		defer cancel()
		return fn(callCtx)
	})

	RPCMethodDuration(method, time.Since(start))
	if err != nil {
		RPCMethodError(method)
	}
	return err
}

// BlockNumber returns the current chain head block number.
func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	var blockNum uint64
	err := c.do(ctx, "eth_blockNumber", func(ctx context.Context) error {
		var err error
		blockNum, err = c.eth.BlockNumber(ctx)
		return err
	})
	return blockNum, err
}

// FilterLogs retrieves logs matching the given filter query.
func (c *Client) FilterLogs(ctx context.Context, query ethereum.FilterQuery) ([]types.Log, error) {
	var logs []types.Log
	err := c.do(ctx, "eth_getLogs", func(ctx context.Context) error {
		var err error
		logs, err = c.eth.FilterLogs(ctx, query)
		return err
	})
	return logs, err
}

// HeaderByNumber retrieves the header for a specific block number.
func (c *Client) HeaderByNumber(ctx context.Context, blockNum uint64) (*types.Header, error) {
	var header *types.Header
	err := c.do(ctx, "eth_getBlockByNumber", func(ctx context.Context) error {
		var err error
		header, err = c.eth.HeaderByNumber(ctx, new(big.Int).SetUint64(blockNum))
		return err
	})
	return header, err
}

// TransactionByHash retrieves the transaction with the given hash.
func (c *Client) TransactionByHash(ctx context.Context, hash common.Hash) (*types.Transaction, error) {
	var tx *types.Transaction
	err := c.do(ctx, "eth_getTransactionByHash", func(ctx context.Context) error {
		var err error
		tx, _, err = c.eth.TransactionByHash(ctx, hash)
		return err
	})
	return tx, err
}

// receiptFrom carries only the receipt field we need; go-ethereum's
// types.Receipt does not expose the sender.
type receiptFrom struct {
	From common.Address `json:"from"`
}

// TransactionSender returns the address that sent the transaction with the
// given hash, taken from its receipt.
func (c *Client) TransactionSender(ctx context.Context, hash common.Hash) (common.Address, error) {
	var receipt *receiptFrom
	err := c.do(ctx, "eth_getTransactionReceipt", func(ctx context.Context) error {
		return c.rpc.CallContext(ctx, &receipt, "eth_getTransactionReceipt", hash)
	})
	if err != nil {
		return common.Address{}, err
	}
	if receipt == nil {
		return common.Address{}, fmt.Errorf("no receipt for transaction %s", hash.Hex())
	}
	return receipt.From, nil
}

// SubscribeFilterLogs subscribes to streaming log notifications. No retry is
// applied: subscription lifecycle is managed by the caller, which falls back
// to polling when the endpoint does not support notifications.
func (c *Client) SubscribeFilterLogs(ctx context.Context, query ethereum.FilterQuery, ch chan<- types.Log) (ethereum.Subscription, error) {
	return c.eth.SubscribeFilterLogs(ctx, query, ch)
}
