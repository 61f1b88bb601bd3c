package daclient

import (
	"context"
	"time"

	"github.com/Rican7/retry"
	"github.com/Rican7/retry/strategy"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/axiomesh/axiom-da-node/api/sequencerpb"
	"github.com/axiomesh/axiom-da-node/pkg/crypto"
	"github.com/axiomesh/axiom-da-node/pkg/repo"
	"github.com/axiomesh/axiom-da-node/pkg/types"
)

var ErrConnectFailed = errors.New("connect to da sequencer failed")

// Client talks to a DA sequencer over gRPC.
type Client struct {
	url               string
	heartbeatInterval time.Duration
	retryCount        uint
	retryWait         time.Duration
	dialTimeout       time.Duration
	dialOpts          []grpc.DialOption

	conn   *grpc.ClientConn
	cli    sequencerpb.DaSequencerNodeServiceClient
	logger logrus.FieldLogger
}

type Option func(*Client)

func WithRetry(count uint, wait time.Duration) Option {
	return func(c *Client) {
		c.retryCount = count
		c.retryWait = wait
	}
}

func WithDialTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.dialTimeout = timeout
	}
}

func WithDialOptions(opts ...grpc.DialOption) Option {
	return func(c *Client) {
		c.dialOpts = append(c.dialOpts, opts...)
	}
}

// WithConfig applies the retry and dial settings of the da config section.
func WithConfig(cfg repo.DA) Option {
	return func(c *Client) {
		c.retryCount = cfg.ConnectRetryCount
		c.retryWait = cfg.ConnectRetryWait.ToDuration()
		c.dialTimeout = cfg.ConnectTimeout.ToDuration()
	}
}

// TryConnect dials the sequencer, retrying a fixed number of times with a fixed wait.
// It returns ErrConnectFailed once every attempt failed.
func TryConnect(ctx context.Context, url string, heartbeatInterval time.Duration, logger logrus.FieldLogger, opts ...Option) (*Client, error) {
	c := &Client{
		url:               url,
		heartbeatInterval: heartbeatInterval,
		retryCount:        repo.DefaultConnectRetryCount,
		retryWait:         repo.DefaultConnectRetryWait * time.Second,
		dialTimeout:       5 * time.Second,
		logger:            logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.retryCount == 0 {
		c.retryCount = 1
	}

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithBlock(),
	}, sequencerpb.DialOptions()...)
	dialOpts = append(dialOpts, c.dialOpts...)

	var lastErr error
	if err := retry.Retry(func(attempt uint) error {
		if ctx.Err() != nil {
			return nil
		}
		dialCtx, cancel := context.WithTimeout(ctx, c.dialTimeout)
		defer cancel()
		conn, err := grpc.DialContext(dialCtx, c.url, dialOpts...)
		if err != nil {
			lastErr = err
			connectAttemptCounter.WithLabelValues("failed").Inc()
			c.logger.WithFields(logrus.Fields{
				"url":     c.url,
				"attempt": attempt,
				"err":     err,
			}).Warn("Connect to da sequencer failed")
			return err
		}
		connectAttemptCounter.WithLabelValues("success").Inc()
		c.conn = conn
		return nil
	}, strategy.Limit(c.retryCount), strategy.Wait(c.retryWait)); err != nil {
		return nil, errors.Wrapf(ErrConnectFailed, "%s after %d attempts: %v", c.url, c.retryCount, lastErr)
	}
	if c.conn == nil {
		return nil, errors.Wrap(ctx.Err(), "connect to da sequencer")
	}
	c.cli = sequencerpb.NewDaSequencerNodeServiceClient(c.conn)
	c.logger.WithFields(logrus.Fields{
		"url":       c.url,
		"heartbeat": c.heartbeatInterval,
	}).Info("Connected to da sequencer")
	return c, nil
}

func (c *Client) URL() string {
	return c.url
}

func (c *Client) HeartbeatInterval() time.Duration {
	return c.heartbeatInterval
}

// BatchWrite submits a framed batch. A refusal is reported as accepted=false, not as an error.
func (c *Client) BatchWrite(ctx context.Context, frame []byte) (bool, error) {
	resp, err := c.cli.BatchWrite(ctx, &sequencerpb.BatchWriteRequest{Data: frame})
	if err != nil {
		return false, errors.Wrap(err, "batch write")
	}
	batchWriteCounter.WithLabelValues(answerLabel(resp.Answer)).Inc()
	return resp.Answer, nil
}

// SendState signs the 24 byte encoding of state and reports it upstream.
func (c *Client) SendState(ctx context.Context, signer *crypto.Ed25519PrivateKey, state *types.ExecutionState) (bool, error) {
	sig, err := signer.Sign(state.Encode())
	if err != nil {
		return false, errors.Wrap(err, "sign state")
	}
	resp, err := c.cli.SendState(ctx, &sequencerpb.SendStateRequest{
		State:        sequencerpb.NodeStateFrom(state),
		VerifyingKey: signer.PublicKey().PublicKey,
		Signature:    sig,
	})
	if err != nil {
		return false, errors.Wrap(err, "send state")
	}
	sendStateCounter.WithLabelValues(answerLabel(resp.Answer)).Inc()
	return resp.Answer, nil
}

// RelayState passes an already signed state report through unchanged.
func (c *Client) RelayState(ctx context.Context, req *sequencerpb.SendStateRequest) (bool, error) {
	resp, err := c.cli.SendState(ctx, req)
	if err != nil {
		return false, errors.Wrap(err, "relay state")
	}
	sendStateCounter.WithLabelValues(answerLabel(resp.Answer)).Inc()
	return resp.Answer, nil
}

func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

func answerLabel(ok bool) string {
	if ok {
		return "accepted"
	}
	return "refused"
}
