package app

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"

	"github.com/axiomesh/axiom-da-node/internal/batchauth"
	"github.com/axiomesh/axiom-da-node/internal/chainstate"
	"github.com/axiomesh/axiom-da-node/internal/daclient"
	devexecutor "github.com/axiomesh/axiom-da-node/internal/executor/dev"
	"github.com/axiomesh/axiom-da-node/internal/node"
	"github.com/axiomesh/axiom-da-node/internal/settlement"
	"github.com/axiomesh/axiom-da-node/internal/storagemgr"
	"github.com/axiomesh/axiom-da-node/internal/storagemgr/kv"
	"github.com/axiomesh/axiom-da-node/internal/verifier"
	"github.com/axiomesh/axiom-da-node/pkg/crypto"
	"github.com/axiomesh/axiom-da-node/pkg/loggers"
	"github.com/axiomesh/axiom-da-node/pkg/repo"
	"github.com/axiomesh/axiom-da-node/pkg/types"
)

// FullNode follows the DA sequencer, executes every block and settles the results.
type FullNode struct {
	Ctx    context.Context
	Cancel context.CancelFunc
	Repo   *repo.Repo

	client       *daclient.Client
	task         *node.Task
	settlement   settlement.Client
	chainState   *chainstate.ChainState
	signer       *crypto.Ed25519PrivateKey
	stores       []kv.Storage
	lastExecuted *atomic.Uint64
	running      *atomic.Bool
	done         chan struct{}

	logger logrus.FieldLogger
}

func NewFullNode(rep *repo.Repo, ctx context.Context, cancel context.CancelFunc) (*FullNode, error) {
	logger := loggers.Logger(loggers.App)
	n := &FullNode{
		Ctx:          ctx,
		Cancel:       cancel,
		Repo:         rep,
		lastExecuted: atomic.NewUint64(0),
		running:      atomic.NewBool(false),
		done:         make(chan struct{}),
		logger:       logger,
	}
	if err := n.init(); err != nil {
		n.closeStores()
		return nil, err
	}
	return n, nil
}

func (n *FullNode) init() error {
	cfg := n.Repo.Config
	var err error
	if n.signer, err = loadSigner(n.Repo, n.logger); err != nil {
		return err
	}

	progressStore, err := n.open(storagemgr.Progress)
	if err != nil {
		return err
	}
	if n.chainState, err = chainstate.New(progressStore, cfg.Execution.ExecutedSetCacheSize, loggers.Logger(loggers.Storage)); err != nil {
		return errors.Wrap(err, "create chain state")
	}

	if cfg.Execution.Type != repo.ExecTypeDev {
		return errors.Errorf("unsupported executor type %q", cfg.Execution.Type)
	}
	execStore, err := n.open(storagemgr.Executor)
	if err != nil {
		return err
	}
	exec, err := devexecutor.New(execStore, loggers.Logger(loggers.Executor))
	if err != nil {
		return errors.Wrap(err, "create executor")
	}

	var opts []node.Option
	opts = append(opts, node.WithSigner(n.signer))
	if cfg.Settlement.Enable {
		if n.settlement, err = n.newSettlement(); err != nil {
			return err
		}
		opts = append(opts, node.WithSettlement(n.settlement))
	}

	n.client, err = daclient.TryConnect(n.Ctx, cfg.DA.URL, cfg.DA.HeartbeatInterval.ToDuration(), loggers.Logger(loggers.DAClient), daclient.WithConfig(cfg.DA))
	if err != nil {
		return err
	}

	n.task, err = node.New(node.ConfigFromRepo(cfg), node.FromDAClient(n.client), exec, n.chainState, verifier.New(loggers.Logger(loggers.Executor)), loggers.Logger(loggers.Executor), opts...)
	if err != nil {
		return errors.Wrap(err, "create execution task")
	}
	return nil
}

func (n *FullNode) newSettlement() (settlement.Client, error) {
	cfg := n.Repo.Config.Settlement
	logger := loggers.Logger(loggers.Settlement)
	switch cfg.Type {
	case repo.SettlementTypeRPC:
		return settlement.DialRPC(n.Ctx, cfg.URL, cfg.ResubscribeRetryCount, cfg.ResubscribeRetryWait.ToDuration(), logger)
	case repo.SettlementTypeMock:
		return settlement.NewMockClient(true, logger), nil
	default:
		return nil, errors.Errorf("unknown settlement type %q", cfg.Type)
	}
}

func (n *FullNode) open(component string) (kv.Storage, error) {
	raw, err := storagemgr.Open(storagemgr.GetComponentPath(n.Repo, component))
	if err != nil {
		return nil, errors.Wrapf(err, "open %s storage", component)
	}
	s := storagemgr.NewCachedStorage(raw, n.Repo.Config.Storage.KvCacheSize)
	n.stores = append(n.stores, s)
	return s, nil
}

func (n *FullNode) closeStores() {
	for _, s := range n.stores {
		if err := s.Close(); err != nil {
			n.logger.WithError(err).Warn("Close storage")
		}
	}
	n.stores = nil
}

func (n *FullNode) Run() error {
	n.running.Store(true)
	defer close(n.done)
	defer n.release()

	go n.listenExecutedBlock()
	n.logger.WithFields(logrus.Fields{
		"da":         n.Repo.Config.DA.URL,
		"settlement": n.Repo.Config.Settlement.Enable,
	}).Infof("%s full node started", repo.AppName)
	err := n.task.Run(n.Ctx)
	n.Cancel()
	return err
}

// SubmitTransactions signs txs as one batch and sends it to the DA sequencer.
func (n *FullNode) SubmitTransactions(ctx context.Context, txs []*types.Transaction) (bool, error) {
	frame, err := batchauth.SignTransactions(n.signer, txs)
	if err != nil {
		return false, err
	}
	return n.task.SubmitBatch(ctx, frame, len(txs))
}

// Stop cancels the node and waits for a running node to release its resources.
func (n *FullNode) Stop() {
	n.Cancel()
	if n.running.Load() {
		<-n.done
		return
	}
	n.release()
}

func (n *FullNode) release() {
	if n.settlement != nil {
		n.settlement.Close()
		n.settlement = nil
	}
	if n.client != nil {
		_ = n.client.Close()
		n.client = nil
	}
	n.closeStores()
}

func (n *FullNode) Health() *Health {
	h := &Health{
		Mode:         ModeFull,
		Status:       n.task.Status().Names(),
		SyncedHeight: n.lastExecuted.Load(),
		InFlightTxs:  n.task.InFlight().Load(),
	}
	if synced, ok, err := n.chainState.SyncedHeight(); err == nil && ok {
		h.SyncedHeight = synced
	}
	if finalized, err := n.chainState.FinalizedHeight(); err == nil {
		h.FinalizedHeight = finalized
	}
	return h
}
