package settlement

import (
	"context"
	"time"

	"github.com/Rican7/retry"
	"github.com/Rican7/retry/strategy"
	"github.com/ethereum/go-ethereum/event"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/axiomesh/axiom-da-node/pkg/types"
)

var _ Client = (*RPCClient)(nil)

const eventBufferSize = 128

// RPCClient reaches the settlement layer over JSON-RPC.
type RPCClient struct {
	client               *rpc.Client
	resubscribeRetry     uint
	resubscribeRetryWait time.Duration
	subscribe            func(ctx context.Context, ch chan *CommitmentEvent) (event.Subscription, error)
	logger               logrus.FieldLogger
}

func DialRPC(ctx context.Context, url string, retryCount uint, retryWait time.Duration, logger logrus.FieldLogger) (*RPCClient, error) {
	cli, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, errors.Wrapf(err, "dial settlement %s", url)
	}
	return NewRPCClient(cli, retryCount, retryWait, logger), nil
}

func NewRPCClient(cli *rpc.Client, retryCount uint, retryWait time.Duration, logger logrus.FieldLogger) *RPCClient {
	if retryCount == 0 {
		retryCount = 1
	}
	c := &RPCClient{
		client:               cli,
		resubscribeRetry:     retryCount,
		resubscribeRetryWait: retryWait,
		logger:               logger,
	}
	c.subscribe = func(ctx context.Context, ch chan *CommitmentEvent) (event.Subscription, error) {
		sub, err := cli.Subscribe(ctx, Namespace, ch, EventSubscription)
		if err != nil {
			return nil, err
		}
		return sub, nil
	}
	return c
}

func (c *RPCClient) PostCommitment(ctx context.Context, commitment *types.BlockCommitment) error {
	if err := c.client.CallContext(ctx, nil, PostMethod, commitment); err != nil {
		postCounter.WithLabelValues("failed").Inc()
		return errors.Wrapf(err, "post commitment %d", commitment.Height)
	}
	postCounter.WithLabelValues("success").Inc()
	return nil
}

// SubscribeEvents keeps a commitment event subscription alive until ctx ends.
// The retry budget covers a single resubscription: a session that was
// established and later dropped starts over with a fresh budget.
func (c *RPCClient) SubscribeEvents(ctx context.Context) (<-chan *CommitmentEvent, error) {
	out := make(chan *CommitmentEvent, eventBufferSize)
	go func() {
		defer close(out)
		for {
			ch := make(chan *CommitmentEvent)
			sub, err := c.resubscribe(ctx, ch)
			if err != nil {
				if ctx.Err() == nil {
					c.logger.WithError(err).Error("Settlement event subscription lost")
				}
				return
			}
			if err := c.consume(ctx, sub, ch, out); err == nil {
				return
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(c.resubscribeRetryWait):
			}
			resubscribeCounter.Inc()
		}
	}()
	return out, nil
}

func (c *RPCClient) resubscribe(ctx context.Context, ch chan *CommitmentEvent) (event.Subscription, error) {
	var sub event.Subscription
	err := retry.Retry(func(attempt uint) error {
		if ctx.Err() != nil {
			return nil
		}
		if attempt > 1 {
			resubscribeCounter.Inc()
		}
		s, err := c.subscribe(ctx, ch)
		if err != nil {
			return errors.Wrapf(err, "subscribe %s", EventSubscription)
		}
		sub = s
		return nil
	}, strategy.Limit(c.resubscribeRetry), strategy.Wait(c.resubscribeRetryWait))
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, ctx.Err()
	}
	return sub, nil
}

// consume forwards events until the session ends. A nil return means the
// subscription was closed on purpose or ctx ended.
func (c *RPCClient) consume(ctx context.Context, sub event.Subscription, ch <-chan *CommitmentEvent, out chan<- *CommitmentEvent) error {
	defer sub.Unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-ch:
			eventCounter.WithLabelValues(ev.Kind.String()).Inc()
			select {
			case out <- ev:
			case <-ctx.Done():
				return nil
			}
		case err := <-sub.Err():
			if err == nil || ctx.Err() != nil {
				return nil
			}
			c.logger.WithError(err).Warn("Settlement event subscription dropped")
			return errors.Wrapf(err, "subscription %s", EventSubscription)
		}
	}
}

func (c *RPCClient) Close() {
	c.client.Close()
}
