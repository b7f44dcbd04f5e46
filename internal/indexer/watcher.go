package indexer

import (
	"context"
	"errors"
	"time"

	"github.com/earthshout/shout-indexer/internal/logger"
	irpc "github.com/earthshout/shout-indexer/internal/rpc"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rpc"
)

// resubscribeBaseDelay and resubscribeMaxDelay bound the backoff between
// subscription attempts after a dropped connection.
const (
	resubscribeBaseDelay = time.Second
	resubscribeMaxDelay  = time.Minute
)

// watcher maintains the live log subscription. A dropped subscription is
// re-established with backoff; an endpoint without subscription support
// degrades to polling only. Either way the catch-up pass guarantees
// completeness, the watcher only buys latency.
type watcher struct {
	client irpc.ChainClient
	query  ethereum.FilterQuery
	out    chan<- types.Log
	log    *logger.Logger
}

func newWatcher(client irpc.ChainClient, query ethereum.FilterQuery, out chan<- types.Log,
	log *logger.Logger) *watcher {
	return &watcher{
		client: client,
		query:  query,
		out:    out,
		log:    log,
	}
}

func (w *watcher) run(ctx context.Context) error {
	delay := resubscribeBaseDelay

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		sub, err := w.client.SubscribeFilterLogs(ctx, w.query, w.out)
		if err != nil {
			if errors.Is(err, rpc.ErrNotificationsUnsupported) {
				w.log.Info("endpoint does not support subscriptions, relying on polling only")
				return nil
			}

			w.log.Warnf("subscription failed, retrying in %v: %v", delay, err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay = min(delay*2, resubscribeMaxDelay)
			continue
		}

		w.log.Info("live log subscription established")
		delay = resubscribeBaseDelay

		select {
		case <-ctx.Done():
			sub.Unsubscribe()
			return ctx.Err()
		case err := <-sub.Err():
			sub.Unsubscribe()
			if err != nil {
				w.log.Warnf("subscription dropped: %v", err)
			}
		}
	}
}
