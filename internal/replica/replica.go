package replica

import (
	"context"
	"time"

	"github.com/gammazero/workerpool"
	"github.com/panjf2000/ants/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/axiomesh/axiom-da-node/api/sequencerpb"
	"github.com/axiomesh/axiom-da-node/internal/batchauth"
	"github.com/axiomesh/axiom-da-node/internal/blockstore"
	"github.com/axiomesh/axiom-da-node/internal/daclient"
	"github.com/axiomesh/axiom-da-node/internal/daserver"
	"github.com/axiomesh/axiom-da-node/pkg/crypto"
	"github.com/axiomesh/axiom-da-node/pkg/types"
)

const forwardTimeout = 10 * time.Second

var (
	ErrUpstreamClosed   = errors.New("upstream block stream closed")
	ErrHeartbeatTimeout = errors.New("upstream heartbeat lost")
	ErrServerFailed     = errors.New("replica server failed")
	ErrEmptyBatch       = errors.New("batch carries no transaction")
)

var (
	_ daserver.Handler = (*Replica)(nil)
	_ Upstream         = (*daclient.Client)(nil)
)

// Upstream is the primary DA sequencer the replica mirrors.
type Upstream interface {
	StreamReadFromHeight(ctx context.Context, height uint64) (*daclient.BlockStream, <-chan struct{}, error)
	BatchWrite(ctx context.Context, frame []byte) (bool, error)
	RelayState(ctx context.Context, req *sequencerpb.SendStateRequest) (bool, error)
}

type Config struct {
	HeartbeatInterval time.Duration
	ForwardPoolSize   int
}

// Replica mirrors the upstream block stream into its own store and serves it
// to downstream nodes. Client batches are checked locally and forwarded
// upstream under the replica's own signature.
type Replica struct {
	cfg         Config
	upstream    Upstream
	store       *blockstore.Store
	broadcaster *daserver.Broadcaster
	verifier    *batchauth.Verifier
	signer      *crypto.Ed25519PrivateKey

	persistPool *workerpool.WorkerPool
	forwardPool *ants.Pool
	ctx         context.Context
	cancel      context.CancelFunc

	logger logrus.FieldLogger
}

func New(cfg Config, upstream Upstream, store *blockstore.Store, broadcaster *daserver.Broadcaster, verifier *batchauth.Verifier, signer *crypto.Ed25519PrivateKey, logger logrus.FieldLogger) (*Replica, error) {
	if cfg.ForwardPoolSize <= 0 {
		cfg.ForwardPoolSize = 16
	}
	pool, err := ants.NewPool(cfg.ForwardPoolSize, ants.WithNonblocking(true), ants.WithLogger(logger), ants.WithPanicHandler(func(p any) {
		logger.WithField("panic", p).Error("Forward task panicked")
	}))
	if err != nil {
		return nil, errors.Wrap(err, "create forward pool")
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Replica{
		cfg:         cfg,
		upstream:    upstream,
		store:       store,
		broadcaster: broadcaster,
		verifier:    verifier,
		signer:      signer,
		persistPool: workerpool.New(1),
		forwardPool: pool,
		ctx:         ctx,
		cancel:      cancel,
		logger:      logger,
	}, nil
}

// Run mirrors upstream blocks until ctx is done, returning nil, or until the
// upstream stream ends, its heartbeat is lost or serverErr yields, returning
// the cause. Mirroring resumes right above the last persisted block.
func (r *Replica) Run(ctx context.Context, serverErr <-chan error) error {
	defer r.forwardPool.Release()
	defer r.persistPool.StopWait()
	defer r.cancel()

	start := uint64(1)
	if latest, ok := r.store.Latest(); ok {
		start = latest + 1
	}
	stream, alert, err := r.upstream.StreamReadFromHeight(ctx, start)
	if err != nil {
		return errors.Wrapf(err, "open upstream stream from %d", start)
	}
	defer stream.Close()

	r.broadcaster.StartHeartbeat(ctx, r.cfg.HeartbeatInterval)
	r.logger.WithFields(logrus.Fields{
		"from":      start,
		"heartbeat": r.cfg.HeartbeatInterval,
	}).Info("Replica started")

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Replica stopped")
			return nil

		case blk, ok := <-stream.C():
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return errors.Wrapf(ErrUpstreamClosed, "%v", stream.Err())
			}
			if err := r.persist(blk); err != nil {
				return err
			}
			delivered := r.broadcaster.BroadcastBlock(blk)
			mirroredBlockCounter.Inc()
			mirroredHeightGauge.Set(float64(blk.Height))
			r.logger.WithFields(logrus.Fields{
				"height":      blk.Height,
				"subscribers": delivered,
			}).Debug("Mirror block")

		case <-alert:
			return ErrHeartbeatTimeout

		case err, ok := <-serverErr:
			if !ok {
				serverErr = nil
				continue
			}
			return errors.Wrap(ErrServerFailed, err.Error())
		}
	}
}

// persist stores blk on the single persistence worker and waits for it.
func (r *Replica) persist(blk *sequencerpb.BlockV1) error {
	var err error
	r.persistPool.SubmitWait(func() {
		err = r.store.Put(blk)
	})
	if err != nil {
		return errors.Wrapf(err, "persist block %d", blk.Height)
	}
	return nil
}

// HandleBatch accepts a whitelisted client batch and forwards it upstream in
// the background. The upstream answer is only logged.
func (r *Replica) HandleBatch(_ context.Context, frame []byte) (bool, error) {
	payload, signer, err := r.verifier.Verify(frame)
	if err != nil {
		return false, err
	}
	batch, err := types.DecodeBatchPayload(payload)
	if err != nil {
		return false, err
	}
	if batch.IsForwarded() {
		return false, batchauth.ErrNestedForwarded
	}
	if len(batch.Transactions) == 0 {
		return false, ErrEmptyBatch
	}

	raw := append([]byte(nil), frame...)
	logger := r.logger.WithFields(logrus.Fields{
		"origin": signer.String(),
		"txs":    len(batch.Transactions),
	})
	if err := r.forwardPool.Submit(func() {
		r.forward(raw, logger)
	}); err != nil {
		forwardCounter.WithLabelValues("dropped").Inc()
		return false, errors.Wrap(err, "schedule forward")
	}
	return true, nil
}

func (r *Replica) forward(frame []byte, logger logrus.FieldLogger) {
	cosigned, err := batchauth.CoSign(r.signer, frame)
	if err != nil {
		forwardCounter.WithLabelValues("failed").Inc()
		logger.WithError(err).Error("Co-sign batch failed")
		return
	}
	ctx, cancel := context.WithTimeout(r.ctx, forwardTimeout)
	defer cancel()
	accepted, err := r.upstream.BatchWrite(ctx, cosigned)
	if err != nil {
		forwardCounter.WithLabelValues("failed").Inc()
		logger.WithError(err).Warn("Forward batch upstream failed")
		return
	}
	if !accepted {
		forwardCounter.WithLabelValues("refused").Inc()
		logger.Warn("Upstream refused forwarded batch")
		return
	}
	forwardCounter.WithLabelValues("accepted").Inc()
	logger.Debug("Forward batch upstream")
}

// HandleState relays a state report upstream unchanged.
func (r *Replica) HandleState(ctx context.Context, req *sequencerpb.SendStateRequest) (bool, error) {
	return r.upstream.RelayState(ctx, req)
}
