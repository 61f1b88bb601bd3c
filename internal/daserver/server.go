package daserver

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/juju/ratelimit"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/axiomesh/axiom-da-node/api/sequencerpb"
	"github.com/axiomesh/axiom-da-node/pkg/repo"
)

var _ sequencerpb.DaSequencerNodeServiceServer = (*Server)(nil)

// BlockSource serves stored blocks by height. Get returns nil for an unknown height.
type BlockSource interface {
	Get(height uint64) (*sequencerpb.BlockV1, error)
	Latest() (uint64, bool)
}

// Handler decides on submitted batches and reported states.
type Handler interface {
	HandleBatch(ctx context.Context, frame []byte) (bool, error)
	HandleState(ctx context.Context, req *sequencerpb.SendStateRequest) (bool, error)
}

// Server exposes a block source, a broadcaster and a handler as the DA sequencer service.
type Server struct {
	grpcServer  *grpc.Server
	blocks      BlockSource
	broadcaster *Broadcaster
	handler     Handler
	limiter     *ratelimit.Bucket
	quit        chan struct{}
	stopOnce    sync.Once
	logger      logrus.FieldLogger
}

func New(cfg repo.Server, blocks BlockSource, broadcaster *Broadcaster, handler Handler, logger logrus.FieldLogger, opts ...grpc.ServerOption) *Server {
	s := &Server{
		grpcServer:  grpc.NewServer(append(sequencerpb.ServerOptions(), opts...)...),
		blocks:      blocks,
		broadcaster: broadcaster,
		handler:     handler,
		quit:        make(chan struct{}),
		logger:      logger,
	}
	if cfg.BatchWriteLimiter.Enable {
		s.limiter = ratelimit.NewBucketWithQuantum(cfg.BatchWriteLimiter.Interval.ToDuration(), cfg.BatchWriteLimiter.Capacity, cfg.BatchWriteLimiter.Quantum)
	}
	sequencerpb.RegisterDaSequencerNodeServiceServer(s.grpcServer, s)
	return s
}

func Listen(port int64) (net.Listener, error) {
	lis, err := net.Listen("tcp", fmt.Sprintf("0.0.0.0:%d", port))
	if err != nil {
		return nil, errors.Wrapf(err, "listen on %d", port)
	}
	return lis, nil
}

// Start serves on lis in the background. A serve failure is delivered on the
// returned channel.
func (s *Server) Start(lis net.Listener) <-chan error {
	errC := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", lis.Addr().String()).Info("DA server started")
		if err := s.grpcServer.Serve(lis); err != nil {
			errC <- errors.Wrap(err, "da server")
		}
		close(errC)
	}()
	return errC
}

// Stop ends open block streams and drains in-flight calls, giving up after timeout.
func (s *Server) Stop(timeout time.Duration) {
	s.stopOnce.Do(func() {
		close(s.quit)
	})
	done := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
		s.grpcServer.Stop()
	}
	s.logger.Info("DA server stopped")
}

// StreamReadFromHeight replays stored blocks from the requested height and then
// follows live broadcasts. The subscription is taken before the replay so no
// block falls between the two.
func (s *Server) StreamReadFromHeight(req *sequencerpb.StreamReadFromHeightRequest, stream sequencerpb.DaSequencerNodeService_StreamReadFromHeightServer) error {
	next := req.Height
	if next == 0 {
		next = 1
	}
	sub := s.broadcaster.Subscribe()
	defer s.broadcaster.Unsubscribe(sub)
	streamGauge.Inc()
	defer streamGauge.Dec()

	logger := s.logger.WithFields(logrus.Fields{
		"subscriber": sub.ID(),
		"from":       next,
	})
	logger.Info("Serve block stream")

	var err error
	if next, err = s.replay(stream, next, 0); err != nil {
		return err
	}
	for {
		select {
		case <-stream.Context().Done():
			return nil
		case <-s.quit:
			return status.Error(codes.Unavailable, "server stopping")
		case <-sub.Done():
			logger.Warn("Block stream subscriber dropped")
			return status.Error(codes.ResourceExhausted, "subscriber too slow, dropped")
		case resp := <-sub.C():
			if resp.Response == nil {
				continue
			}
			if blk := resp.Response.BlockV1; blk != nil {
				if blk.Height < next {
					continue
				}
				if blk.Height > next {
					if next, err = s.replay(stream, next, blk.Height-1); err != nil {
						return err
					}
					if blk.Height != next {
						return status.Errorf(codes.Internal, "missing block %d", next)
					}
				}
				next = blk.Height + 1
			}
			if err := stream.Send(resp); err != nil {
				return err
			}
		}
	}
}

// replay sends stored blocks from next up to until (0 meaning the latest
// stored one) and returns the next height to send.
func (s *Server) replay(stream sequencerpb.DaSequencerNodeService_StreamReadFromHeightServer, next, until uint64) (uint64, error) {
	for {
		latest, ok := s.blocks.Latest()
		if !ok || next > latest || (until != 0 && next > until) {
			return next, nil
		}
		blk, err := s.blocks.Get(next)
		if err != nil {
			return next, status.Errorf(codes.Internal, "load block %d: %v", next, err)
		}
		if blk == nil {
			return next, nil
		}
		if err := stream.Send(sequencerpb.NewBlockResponse(blk)); err != nil {
			return next, err
		}
		replayedBlockCounter.Inc()
		next++
	}
}

func (s *Server) BatchWrite(ctx context.Context, req *sequencerpb.BatchWriteRequest) (*sequencerpb.BatchWriteResponse, error) {
	if s.limiter != nil && s.limiter.TakeAvailable(1) == 0 {
		batchWriteCounter.WithLabelValues("limited").Inc()
		return &sequencerpb.BatchWriteResponse{Answer: false}, nil
	}
	accepted, err := s.handler.HandleBatch(ctx, req.Data)
	if err != nil {
		batchWriteCounter.WithLabelValues("refused").Inc()
		s.logger.WithError(err).Debug("Refuse batch")
		return &sequencerpb.BatchWriteResponse{Answer: false}, nil
	}
	batchWriteCounter.WithLabelValues(answerLabel(accepted)).Inc()
	return &sequencerpb.BatchWriteResponse{Answer: accepted}, nil
}

func (s *Server) SendState(ctx context.Context, req *sequencerpb.SendStateRequest) (*sequencerpb.SendStateResponse, error) {
	if req.State == nil {
		return &sequencerpb.SendStateResponse{Answer: false}, nil
	}
	accepted, err := s.handler.HandleState(ctx, req)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"height": req.State.BlockHeight,
			"err":    err,
		}).Debug("Refuse state")
		return &sequencerpb.SendStateResponse{Answer: false}, nil
	}
	return &sequencerpb.SendStateResponse{Answer: accepted}, nil
}

func answerLabel(ok bool) string {
	if ok {
		return "accepted"
	}
	return "refused"
}
