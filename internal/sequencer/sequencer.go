package sequencer

import (
	"context"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/axiomesh/axiom-da-node/api/sequencerpb"
	"github.com/axiomesh/axiom-da-node/internal/batchauth"
	"github.com/axiomesh/axiom-da-node/internal/blockstore"
	"github.com/axiomesh/axiom-da-node/internal/daserver"
	"github.com/axiomesh/axiom-da-node/pkg/crypto"
	"github.com/axiomesh/axiom-da-node/pkg/repo"
	"github.com/axiomesh/axiom-da-node/pkg/types"
)

// pending queue holds at most this many blocks worth of transactions
const pendingBlocks = 64

var (
	ErrPendingFull      = errors.New("pending transaction queue is full")
	ErrEmptyBatch       = errors.New("batch carries no transaction")
	ErrBadStateSigner   = errors.New("state signer not whitelisted")
	ErrBadStateSig      = errors.New("state signature invalid")
	ErrStateAboveLatest = errors.New("state reported above the latest block")
)

var (
	_ daserver.Handler     = (*Sequencer)(nil)
	_ daserver.BlockSource = (*Sequencer)(nil)
)

// Sequencer is an in-process primary: it orders authenticated batches into
// blocks, persists them and broadcasts them to stream subscribers.
type Sequencer struct {
	cfg         repo.Sequencer
	heartbeat   time.Duration
	store       *blockstore.Store
	broadcaster *daserver.Broadcaster
	verifier    *batchauth.Verifier
	states      *lru.Cache[uint64, *sequencerpb.NodeState]
	logger      logrus.FieldLogger

	mu      sync.Mutex
	pending []*types.Transaction
	// serializes sealing with the block store
	sealMu sync.Mutex
}

func New(cfg repo.Sequencer, heartbeat time.Duration, store *blockstore.Store, broadcaster *daserver.Broadcaster, verifier *batchauth.Verifier, logger logrus.FieldLogger) (*Sequencer, error) {
	size := cfg.StateCacheSize
	if size <= 0 {
		size = 1
	}
	states, err := lru.New[uint64, *sequencerpb.NodeState](size)
	if err != nil {
		return nil, errors.Wrap(err, "create state cache")
	}
	if cfg.MaxBlockTxs <= 0 {
		cfg.MaxBlockTxs = 1
	}
	return &Sequencer{
		cfg:         cfg,
		heartbeat:   heartbeat,
		store:       store,
		broadcaster: broadcaster,
		verifier:    verifier,
		states:      states,
		logger:      logger,
	}, nil
}

// Run seals a block every block interval and broadcasts heartbeats until ctx is done.
func (s *Sequencer) Run(ctx context.Context) error {
	s.broadcaster.StartHeartbeat(ctx, s.heartbeat)

	latest, _ := s.store.Latest()
	s.logger.WithFields(logrus.Fields{
		"latest":         latest,
		"block_interval": s.cfg.BlockInterval.String(),
		"heartbeat":      s.heartbeat,
	}).Info("Sequencer started")

	ticker := time.NewTicker(s.cfg.BlockInterval.ToDuration())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Sequencer stopped")
			return nil
		case <-ticker.C:
			if _, err := s.Seal(); err != nil {
				return err
			}
		}
	}
}

// Seal builds a block from the pending queue. It returns nil when nothing is pending.
func (s *Sequencer) Seal() (*sequencerpb.BlockV1, error) {
	s.sealMu.Lock()
	defer s.sealMu.Unlock()

	txs := s.takePending()
	if len(txs) == 0 {
		return nil, nil
	}

	height := uint64(1)
	parent := common.Hash{}
	if latest, ok := s.store.Latest(); ok {
		prev, err := s.store.Get(latest)
		if err != nil {
			return nil, err
		}
		if prev == nil {
			return nil, errors.Errorf("latest block %d missing", latest)
		}
		height = latest + 1
		parent = prev.ID()
	}

	blk, err := sequencerpb.NewBlockV1(types.NewBlock(height, parent, uint64(time.Now().UnixMicro()), txs))
	if err != nil {
		return nil, errors.Wrapf(err, "encode block %d", height)
	}
	if err := s.store.Put(blk); err != nil {
		return nil, errors.Wrapf(err, "persist block %d", height)
	}
	delivered := s.broadcaster.BroadcastBlock(blk)

	sealedBlockCounter.Inc()
	sealedTxCounter.Add(float64(len(txs)))
	latestHeightGauge.Set(float64(height))
	s.logger.WithFields(logrus.Fields{
		"height":      height,
		"txs":         len(txs),
		"id":          blk.ID().String(),
		"subscribers": delivered,
	}).Info("Seal block")
	return blk, nil
}

func (s *Sequencer) takePending() []*types.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.pending)
	if n > s.cfg.MaxBlockTxs {
		n = s.cfg.MaxBlockTxs
	}
	txs := s.pending[:n:n]
	s.pending = s.pending[n:]
	pendingTxGauge.Set(float64(len(s.pending)))
	return txs
}

func (s *Sequencer) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// HandleBatch verifies a frame, forwarded or not, and queues its transactions.
func (s *Sequencer) HandleBatch(_ context.Context, frame []byte) (bool, error) {
	batch, err := s.verifier.VerifyBatch(frame)
	if err != nil {
		return false, err
	}
	if len(batch.Transactions) == 0 {
		return false, ErrEmptyBatch
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pending)+len(batch.Transactions) > s.cfg.MaxBlockTxs*pendingBlocks {
		return false, ErrPendingFull
	}
	s.pending = append(s.pending, batch.Transactions...)
	pendingTxGauge.Set(float64(len(s.pending)))
	return true, nil
}

// HandleState records a signed node state. The first report for a height wins.
func (s *Sequencer) HandleState(_ context.Context, req *sequencerpb.SendStateRequest) (bool, error) {
	if req.State == nil {
		return false, errors.New("missing state")
	}
	if !s.verifier.Whitelist().Contains(req.VerifyingKey) {
		stateCounter.WithLabelValues("not_whitelisted").Inc()
		return false, ErrBadStateSigner
	}
	pub, err := crypto.UnmarshalEd25519PublicKey(req.VerifyingKey)
	if err != nil {
		stateCounter.WithLabelValues("bad_signature").Inc()
		return false, errors.Wrap(ErrBadStateSig, err.Error())
	}
	state := req.State.ExecutionState()
	if !pub.Verify(state.Encode(), req.Signature) {
		stateCounter.WithLabelValues("bad_signature").Inc()
		return false, ErrBadStateSig
	}
	if latest, ok := s.store.Latest(); !ok || state.BlockHeight > latest || state.BlockHeight == 0 {
		stateCounter.WithLabelValues("out_of_range").Inc()
		return false, errors.Wrapf(ErrStateAboveLatest, "height %d", state.BlockHeight)
	}

	if ok, _ := s.states.ContainsOrAdd(state.BlockHeight, req.State); ok {
		stateCounter.WithLabelValues("duplicate").Inc()
		return true, nil
	}
	stateCounter.WithLabelValues("recorded").Inc()
	s.logger.WithFields(logrus.Fields{
		"height": state.BlockHeight,
		"signer": pub.String(),
	}).Debug("Record node state")
	return true, nil
}

// Get serves a stored block with the recorded node state attached.
func (s *Sequencer) Get(height uint64) (*sequencerpb.BlockV1, error) {
	blk, err := s.store.Get(height)
	if err != nil || blk == nil {
		return blk, err
	}
	if st, ok := s.states.Get(height); ok {
		return blk.WithNodeState(st), nil
	}
	return blk, nil
}

func (s *Sequencer) Latest() (uint64, bool) {
	return s.store.Latest()
}
