package node

import (
	"context"
	"time"

	"github.com/Rican7/retry"
	"github.com/Rican7/retry/strategy"
	"github.com/ethereum/go-ethereum/event"
	"github.com/gammazero/workerpool"
	"github.com/panjf2000/ants/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/axiomesh/axiom-da-node/api/sequencerpb"
	"github.com/axiomesh/axiom-da-node/internal/chainstate"
	"github.com/axiomesh/axiom-da-node/internal/components/status"
	"github.com/axiomesh/axiom-da-node/internal/executor"
	"github.com/axiomesh/axiom-da-node/internal/settlement"
	"github.com/axiomesh/axiom-da-node/internal/verifier"
	"github.com/axiomesh/axiom-da-node/pkg/crypto"
	"github.com/axiomesh/axiom-da-node/pkg/events"
	"github.com/axiomesh/axiom-da-node/pkg/repo"
	"github.com/axiomesh/axiom-da-node/pkg/types"
)

var (
	ErrStreamClosed           = errors.New("da block stream closed")
	ErrHeartbeatTimeout       = errors.New("da heartbeat lost")
	ErrExecutionFailed        = errors.New("block execution failed after all retries")
	ErrStateMismatch          = errors.New("local execution state differs from the reported one")
	ErrInvalidHeight          = errors.New("block height 0 is invalid")
	ErrSyncFromZeroNotAllowed = errors.New("no synced height recorded and syncing from zero is not allowed")
	ErrBadBlock               = errors.New("malformed da block")
)

type Config struct {
	BlockRetryCount      uint64
	BlockRetryIncrement  uint64
	WorkerPoolSize       int
	TaskPoolSize         int
	SettlementEnabled    bool
	SuperBlockSize       uint64
	AdminMode            bool
	PushState            bool
	AllowSyncFromZero    bool
	ExecutedSetRetention uint64
}

func ConfigFromRepo(cfg *repo.Config) Config {
	return Config{
		BlockRetryCount:      cfg.Execution.BlockRetryCount,
		BlockRetryIncrement:  cfg.Execution.BlockRetryIncrementMicros,
		WorkerPoolSize:       cfg.Execution.WorkerPoolSize,
		TaskPoolSize:         cfg.Settlement.TaskPoolSize,
		SettlementEnabled:    cfg.Settlement.Enable,
		SuperBlockSize:       cfg.Settlement.SuperBlockSize,
		AdminMode:            cfg.Settlement.AdminMode,
		PushState:            cfg.Execution.PushState,
		AllowSyncFromZero:    cfg.DA.AllowSyncFromZero,
		ExecutedSetRetention: cfg.Execution.ExecutedSetRetention,
	}
}

// Task consumes the DA block stream, executes every block once, verifies the
// result, settles on a cadence and reacts to settlement verdicts.
type Task struct {
	cfg        Config
	upstream   Upstream
	handle     *executor.Handle
	inFlight   *executor.InFlightCounter
	chainState *chainstate.ChainState
	verifier   *verifier.StateVerifier
	settlement settlement.Client
	signer     *crypto.Ed25519PrivateKey

	execPool     *workerpool.WorkerPool
	taskPool     *ants.Pool
	executedFeed event.Feed
	statusMgr    *status.StatusMgr

	logger logrus.FieldLogger
}

type Option func(*Task)

// WithSettlement enables commitment posting and event handling.
func WithSettlement(c settlement.Client) Option {
	return func(t *Task) {
		t.settlement = c
	}
}

// WithSigner sets the key used to sign states pushed upstream.
func WithSigner(key *crypto.Ed25519PrivateKey) Option {
	return func(t *Task) {
		t.signer = key
	}
}

func WithInFlightCounter(c *executor.InFlightCounter) Option {
	return func(t *Task) {
		t.inFlight = c
	}
}

func New(cfg Config, upstream Upstream, exec executor.Executor, cs *chainstate.ChainState, v *verifier.StateVerifier, logger logrus.FieldLogger, opts ...Option) (*Task, error) {
	if cfg.BlockRetryCount == 0 {
		cfg.BlockRetryCount = 1
	}
	if cfg.SuperBlockSize == 0 {
		cfg.SuperBlockSize = 1
	}
	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = 1
	}
	if cfg.TaskPoolSize <= 0 {
		cfg.TaskPoolSize = 16
	}
	pool, err := ants.NewPool(cfg.TaskPoolSize, ants.WithLogger(logger), ants.WithPanicHandler(func(p any) {
		logger.WithField("panic", p).Error("Detached task panicked")
	}))
	if err != nil {
		return nil, errors.Wrap(err, "create task pool")
	}

	t := &Task{
		cfg:        cfg,
		upstream:   upstream,
		handle:     executor.NewHandle(exec),
		inFlight:   executor.NewInFlightCounter(),
		chainState: cs,
		verifier:   v,
		execPool:   workerpool.New(cfg.WorkerPoolSize),
		taskPool:   pool,
		statusMgr:  status.NewStatusMgr(),
		logger:     logger,
	}
	for _, opt := range opts {
		opt(t)
	}
	if !cfg.SettlementEnabled {
		t.settlement = nil
	}
	return t, nil
}

func (t *Task) Status() *status.StatusMgr {
	return t.statusMgr
}

func (t *Task) InFlight() *executor.InFlightCounter {
	return t.inFlight
}

func (t *Task) SubscribeExecutedEvent(ch chan<- events.ExecutedEvent) event.Subscription {
	return t.executedFeed.Subscribe(ch)
}

// SubmitBatch sends a framed batch upstream, counting its transactions as in
// flight until the block carrying them has been executed.
func (t *Task) SubmitBatch(ctx context.Context, frame []byte, txCount int) (bool, error) {
	inFlightGauge.Set(float64(t.inFlight.Add(uint64(txCount))))
	accepted, err := t.upstream.BatchWrite(ctx, frame)
	if err != nil || !accepted {
		inFlightGauge.Set(float64(t.inFlight.Release(uint64(txCount))))
	}
	return accepted, err
}

// Run blocks until ctx is done or a fatal condition occurs. A nil return means
// a clean shutdown; any error should terminate the process.
func (t *Task) Run(ctx context.Context) error {
	defer t.statusMgr.On(status.Stopped)
	defer t.taskPool.Release()
	defer t.execPool.StopWait()

	if err := t.reconcileExecutor(); err != nil {
		return err
	}
	start, err := t.startHeight()
	if err != nil {
		return err
	}

	var evC <-chan *settlement.CommitmentEvent
	if t.settlement != nil {
		if evC, err = t.settlement.SubscribeEvents(ctx); err != nil {
			return errors.Wrap(err, "subscribe settlement events")
		}
	}

	stream, alert, err := t.openStream(ctx, start)
	if err != nil {
		return err
	}
	defer func() {
		stream.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			t.logger.Info("Execution task stopped")
			return nil

		case blk, ok := <-stream.C():
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				t.statusMgr.Off(status.Connected, status.Syncing)
				return errors.Wrapf(ErrStreamClosed, "%v", stream.Err())
			}
			if err := t.processBlock(ctx, blk); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				t.logger.WithError(err).Error("Execution task aborted")
				return err
			}

		case <-alert:
			t.statusMgr.Off(status.Connected, status.Syncing)
			return ErrHeartbeatTimeout

		case ev, ok := <-evC:
			if !ok {
				t.logger.Error("Settlement event stream ended, commitment verdicts are no longer handled")
				evC = nil
				continue
			}
			reverted, err := t.handleEvent(ev)
			if err != nil {
				return err
			}
			if !reverted {
				continue
			}
			// restart the session right above the new head
			stream.Close()
			head, _, err := t.chainState.SyncedHeight()
			if err != nil {
				return err
			}
			next, nextAlert, err := t.openStream(ctx, head+1)
			if err != nil {
				return err
			}
			stream, alert = next, nextAlert
		}
	}
}

func (t *Task) openStream(ctx context.Context, height uint64) (Stream, <-chan struct{}, error) {
	stream, alert, err := t.upstream.OpenStream(ctx, height)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "open da stream from %d", height)
	}
	t.statusMgr.On(status.Connected, status.Syncing)
	t.logger.WithField("height", height).Info("Reading da blocks")
	return stream, alert, nil
}

// startHeight is the first height to request: one above the synced height, or
// the genesis start when nothing has been synced.
func (t *Task) startHeight() (uint64, error) {
	synced, ok, err := t.chainState.SyncedHeight()
	if err != nil {
		return 0, errors.Wrap(err, "load synced height")
	}
	if !ok {
		if !t.cfg.AllowSyncFromZero {
			return 0, ErrSyncFromZeroNotAllowed
		}
		return 0, nil
	}
	syncedHeightGauge.Set(float64(synced))
	if finalized, err := t.chainState.FinalizedHeight(); err == nil {
		finalizedHeightGauge.Set(float64(finalized))
	}
	return synced + 1, nil
}

// reconcileExecutor lines the executor head up with the synced height after a
// crash between execution and progress persistence.
func (t *Task) reconcileExecutor() error {
	exec, err := t.handle.Take()
	if err != nil {
		return err
	}
	defer t.handle.Put(exec)

	synced, _, err := t.chainState.SyncedHeight()
	if err != nil {
		return errors.Wrap(err, "load synced height")
	}
	head := exec.CurrentHeight()
	switch {
	case head > synced:
		t.logger.WithFields(logrus.Fields{
			"executor": head,
			"synced":   synced,
		}).Warn("Executor ahead of synced height, revert it")
		return exec.RevertToHeight(synced)
	case head < synced:
		t.logger.WithFields(logrus.Fields{
			"executor": head,
			"synced":   synced,
		}).Warn("Executor behind synced height, rewind progress")
		return t.chainState.Rewind(head)
	}
	return nil
}

func (t *Task) processBlock(ctx context.Context, blk *sequencerpb.BlockV1) error {
	block, err := blk.Decode()
	if err != nil {
		return errors.Wrapf(ErrBadBlock, "decode block %d: %v", blk.Height, err)
	}
	if block.Height != blk.Height {
		return errors.Wrapf(ErrBadBlock, "envelope height %d, block height %d", blk.Height, block.Height)
	}
	if blk.ID() != block.ID {
		return errors.Wrapf(ErrBadBlock, "envelope id %s, block id %s", blk.ID(), block.ID)
	}

	executed, err := t.chainState.IsExecuted(block.ID)
	if err != nil {
		return err
	}
	if executed {
		skippedBlockCounter.Inc()
		t.logger.WithFields(logrus.Fields{
			"height": block.Height,
			"id":     block.ID,
		}).Debug("Skip executed block")
		return nil
	}
	if block.Height == 0 {
		return errors.Wrapf(ErrInvalidHeight, "block %s", block.ID)
	}
	if blk.NodeState != nil {
		t.verifier.AddState(blk.NodeState.ExecutionState())
	}

	commitment, state, err := t.execute(ctx, block)
	if err != nil {
		return err
	}

	inFlightGauge.Set(float64(t.inFlight.Release(uint64(len(block.Transactions)))))
	if err := t.chainState.SetSyncedHeight(block.Height); err != nil {
		return errors.Wrapf(err, "persist synced height %d", block.Height)
	}
	if err := t.chainState.MarkExecuted(block.Height, block.ID); err != nil {
		return errors.Wrapf(err, "mark block %d executed", block.Height)
	}
	syncedHeightGauge.Set(float64(block.Height))
	executedBlockCounter.Inc()
	t.prune(block.Height)

	if t.verifier.Has(block.Height) && !t.verifier.Validate(state) {
		return errors.Wrapf(ErrStateMismatch, "height %d, local %s", block.Height, state)
	}

	t.executedFeed.Send(events.ExecutedEvent{
		Block:      block,
		Commitment: commitment,
		State:      state,
	})

	if t.settlement != nil && block.Height%t.cfg.SuperBlockSize == 0 {
		t.detach(ctx, "settle", func(ctx context.Context) {
			t.settle(ctx, commitment)
		})
	}
	if t.cfg.PushState && t.signer != nil {
		t.detach(ctx, "push state", func(ctx context.Context) {
			t.pushState(ctx, state)
		})
	}

	t.logger.WithFields(logrus.Fields{
		"height":     block.Height,
		"txs":        len(block.Transactions),
		"commitment": commitment.Commitment,
	}).Info("Executed block")
	return nil
}

// execute runs block with bounded retries. Every failed attempt moves the block
// timestamp forward by the configured increment before trying again.
func (t *Task) execute(ctx context.Context, block *types.Block) (*types.BlockCommitment, *types.ExecutionState, error) {
	exec, err := t.handle.Take()
	if err != nil {
		return nil, nil, err
	}
	defer t.handle.Put(exec)

	t.statusMgr.On(status.Executing)
	defer t.statusMgr.Off(status.Executing)
	current := time.Now()
	defer func() {
		executeDuration.Observe(time.Since(current).Seconds())
	}()

	var (
		commitment *types.BlockCommitment
		state      *types.ExecutionState
		lastErr    error
	)
	attemptBlock := block.Clone()
	if err := retry.Retry(func(attempt uint) error {
		if ctx.Err() != nil {
			return nil
		}
		if attempt > 1 {
			executeRetryCounter.Inc()
			attemptBlock.Metadata.Timestamp += t.cfg.BlockRetryIncrement
		}
		t.execPool.SubmitWait(func() {
			commitment, state, lastErr = exec.ExecuteBlock(ctx, attemptBlock)
		})
		if lastErr != nil {
			t.logger.WithFields(logrus.Fields{
				"height":    block.Height,
				"attempt":   attempt,
				"timestamp": attemptBlock.Metadata.Timestamp,
				"err":       lastErr,
			}).Warn("Execute block failed")
		}
		return lastErr
	}, strategy.Limit(uint(t.cfg.BlockRetryCount))); err != nil {
		return nil, nil, errors.Wrapf(ErrExecutionFailed, "height %d after %d attempts: %v", block.Height, t.cfg.BlockRetryCount, err)
	}
	if ctx.Err() != nil {
		return nil, nil, ctx.Err()
	}
	return commitment, state, nil
}

func (t *Task) prune(height uint64) {
	if t.cfg.ExecutedSetRetention == 0 || height <= t.cfg.ExecutedSetRetention {
		return
	}
	below := height - t.cfg.ExecutedSetRetention
	if _, err := t.chainState.PruneExecuted(below); err != nil {
		t.logger.WithError(err).Warn("Prune executed block ids failed")
	}
	t.verifier.Prune(below)
}

// detach runs fn in the task pool. Detached work is best effort.
func (t *Task) detach(ctx context.Context, name string, fn func(ctx context.Context)) {
	if err := t.taskPool.Submit(func() {
		fn(ctx)
	}); err != nil {
		t.logger.WithFields(logrus.Fields{
			"task": name,
			"err":  err,
		}).Warn("Submit detached task failed")
	}
}

func (t *Task) settle(ctx context.Context, commitment *types.BlockCommitment) {
	if err := t.settlement.PostCommitment(ctx, commitment); err != nil {
		settlementPostCounter.WithLabelValues("failed").Inc()
		t.logger.WithFields(logrus.Fields{
			"height": commitment.Height,
			"err":    err,
		}).Error("Post commitment failed")
		return
	}
	settlementPostCounter.WithLabelValues("success").Inc()
	t.logger.WithField("height", commitment.Height).Info("Posted commitment")
}

func (t *Task) pushState(ctx context.Context, state *types.ExecutionState) {
	accepted, err := t.upstream.SendState(ctx, t.signer, state)
	if err != nil || !accepted {
		statePushCounter.WithLabelValues("failed").Inc()
		t.logger.WithFields(logrus.Fields{
			"height":   state.BlockHeight,
			"accepted": accepted,
			"err":      err,
		}).Warn("Push state upstream failed")
		return
	}
	statePushCounter.WithLabelValues("success").Inc()
}
