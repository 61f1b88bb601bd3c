package daclient

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"

	"github.com/axiomesh/axiom-da-node/api/sequencerpb"
)

var (
	ErrNonConsecutive = errors.New("block height out of order")
	ErrStreamClosed   = errors.New("da stream closed by sequencer")
	ErrEmptyResponse  = errors.New("da stream response carries neither heartbeat nor block")
)

// BlockStream yields strictly consecutive blocks. C is closed when the stream
// ends; Err then reports why.
type BlockStream struct {
	ch     chan *sequencerpb.BlockV1
	cancel context.CancelFunc

	errOnce sync.Once
	err     error
	done    chan struct{}
}

func (s *BlockStream) C() <-chan *sequencerpb.BlockV1 {
	return s.ch
}

// Err is valid once C has been closed.
func (s *BlockStream) Err() error {
	select {
	case <-s.done:
		return s.err
	default:
		return nil
	}
}

// Close stops the stream and its watchdog.
func (s *BlockStream) Close() {
	s.cancel()
}

func (s *BlockStream) finish(err error) {
	s.errOnce.Do(func() {
		s.err = err
		close(s.done)
		close(s.ch)
	})
}

// StreamReadFromHeight opens a block stream starting at height, 0 meaning 1.
// The returned alert channel fires once when nothing, not even a heartbeat,
// arrived for twice the heartbeat interval.
func (c *Client) StreamReadFromHeight(ctx context.Context, height uint64) (*BlockStream, <-chan struct{}, error) {
	if height == 0 {
		height = 1
	}
	streamCtx, cancel := context.WithCancel(ctx)
	raw, err := c.cli.StreamReadFromHeight(streamCtx, &sequencerpb.StreamReadFromHeightRequest{Height: height})
	if err != nil {
		cancel()
		return nil, nil, errors.Wrapf(err, "open da stream from %d", height)
	}

	s := &BlockStream{
		ch:     make(chan *sequencerpb.BlockV1),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	lastSeen := atomic.NewInt64(time.Now().UnixNano())
	alert := make(chan struct{}, 1)

	go c.watchdog(streamCtx, lastSeen, alert)
	go c.receive(streamCtx, raw, s, height, lastSeen)

	c.logger.WithField("height", height).Info("Start reading da stream")
	return s, alert, nil
}

func (c *Client) receive(ctx context.Context, raw sequencerpb.DaSequencerNodeService_StreamReadFromHeightClient, s *BlockStream, expected uint64, lastSeen *atomic.Int64) {
	defer s.cancel()
	for {
		resp, err := raw.Recv()
		if err != nil {
			if err == io.EOF {
				err = ErrStreamClosed
			} else if ctx.Err() != nil {
				err = ctx.Err()
			}
			streamEndCounter.WithLabelValues("recv").Inc()
			c.logger.WithFields(logrus.Fields{
				"expected": expected,
				"err":      err,
			}).Warn("Da stream ended")
			s.finish(err)
			return
		}
		lastSeen.Store(time.Now().UnixNano())

		if resp.Response == nil {
			streamEndCounter.WithLabelValues("empty").Inc()
			s.finish(ErrEmptyResponse)
			return
		}
		if resp.Response.Heartbeat {
			heartbeatCounter.Inc()
			continue
		}
		block := resp.Response.BlockV1
		if block == nil {
			streamEndCounter.WithLabelValues("empty").Inc()
			s.finish(ErrEmptyResponse)
			return
		}
		if block.Height != expected {
			streamEndCounter.WithLabelValues("order").Inc()
			c.logger.WithFields(logrus.Fields{
				"expected": expected,
				"got":      block.Height,
			}).Error("Da stream height out of order, tear down")
			s.finish(errors.Wrapf(ErrNonConsecutive, "expected %d, got %d", expected, block.Height))
			return
		}

		select {
		case s.ch <- block:
			blockReceivedCounter.Inc()
			expected++
		case <-ctx.Done():
			streamEndCounter.WithLabelValues("cancel").Inc()
			s.finish(ctx.Err())
			return
		}
	}
}

func (c *Client) watchdog(ctx context.Context, lastSeen *atomic.Int64, alert chan<- struct{}) {
	limit := 2 * c.heartbeatInterval
	tick := c.heartbeatInterval / 2
	if tick <= 0 {
		tick = time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			silent := now.Sub(time.Unix(0, lastSeen.Load()))
			if silent <= limit {
				continue
			}
			watchdogAlertCounter.Inc()
			c.logger.WithFields(logrus.Fields{
				"silent":   silent,
				"interval": c.heartbeatInterval,
			}).Error("No message from da sequencer, heartbeat lost")
			alert <- struct{}{}
			return
		}
	}
}
