package app

import (
	"context"
	"syscall"

	"github.com/ethereum/go-ethereum/common/fdlimit"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/axiomesh/axiom-da-node/internal/batchauth"
	"github.com/axiomesh/axiom-da-node/internal/storagemgr"
	"github.com/axiomesh/axiom-da-node/pkg/crypto"
	"github.com/axiomesh/axiom-da-node/pkg/repo"
)

type Mode string

const (
	ModeFull      Mode = "full"
	ModeReplica   Mode = "replica"
	ModeSequencer Mode = "sequencer"
)

// Node is one runnable process role.
type Node interface {
	// Run blocks until the node stops. A non nil error is fatal.
	Run() error
	Stop()
	Health() *Health
}

// New builds the node for mode from the repo config.
func New(mode Mode, rep *repo.Repo, ctx context.Context, cancel context.CancelFunc) (Node, error) {
	if err := Prepare(rep); err != nil {
		return nil, err
	}
	switch mode {
	case ModeFull:
		return NewFullNode(rep, ctx, cancel)
	case ModeReplica:
		return NewReplicaNode(rep, ctx, cancel)
	case ModeSequencer:
		return NewSequencerNode(rep, ctx, cancel)
	default:
		return nil, errors.Errorf("unknown node mode %q", mode)
	}
}

func Prepare(rep *repo.Repo) error {
	if err := storagemgr.Initialize(rep.Config.Storage.KvType, rep.Config.Storage.KvCacheSize, rep.Config.Storage.Sync); err != nil {
		return errors.Wrap(err, "storagemgr initialize")
	}
	if rep.Config.Ulimit != 0 {
		if err := raiseUlimit(rep.Config.Ulimit); err != nil {
			return errors.Wrap(err, "raise ulimit")
		}
	}
	return nil
}

func loadSigner(rep *repo.Repo, logger logrus.FieldLogger) (*crypto.Ed25519PrivateKey, error) {
	key, err := crypto.LoadOrGenerateKeyFile(rep.SignerKeyPath())
	if err != nil {
		return nil, errors.Wrap(err, "load signer key")
	}
	logger.WithField("verifying_key", key.PublicKey().String()).Info("Signer key loaded")
	return key, nil
}

// loadVerifier reads the whitelist and keeps it in sync with the file until ctx is done.
func loadVerifier(ctx context.Context, rep *repo.Repo, logger logrus.FieldLogger) (*batchauth.Verifier, error) {
	w, err := batchauth.LoadWhitelist(rep.WhitelistPath(), logger)
	if err != nil {
		return nil, err
	}
	if err := w.Watch(ctx); err != nil {
		logger.WithError(err).Warn("Whitelist hot reload disabled")
	}
	return batchauth.NewVerifier(w, logger), nil
}

func raiseUlimit(limitNew uint64) error {
	_, err := fdlimit.Raise(limitNew)
	if err != nil {
		return errors.Wrap(err, "set limit failed")
	}

	var limit syscall.Rlimit
	if err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &limit); err != nil {
		return errors.Wrap(err, "getrlimit error")
	}

	if limit.Cur != limitNew && limit.Cur != limit.Max {
		return errors.New("failed to raise ulimit")
	}

	return nil
}
