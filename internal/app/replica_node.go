package app

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/axiomesh/axiom-da-node/internal/daclient"
	"github.com/axiomesh/axiom-da-node/internal/replica"
	"github.com/axiomesh/axiom-da-node/pkg/loggers"
	"github.com/axiomesh/axiom-da-node/pkg/repo"
)

// ReplicaNode mirrors the primary DA sequencer and serves the mirror downstream.
type ReplicaNode struct {
	*serving
	Ctx    context.Context
	Cancel context.CancelFunc

	client  *daclient.Client
	replica *replica.Replica
}

func NewReplicaNode(rep *repo.Repo, ctx context.Context, cancel context.CancelFunc) (*ReplicaNode, error) {
	logger := loggers.Logger(loggers.Replica)
	signer, err := loadSigner(rep, logger)
	if err != nil {
		return nil, err
	}
	verifier, err := loadVerifier(ctx, rep, loggers.Logger(loggers.BatchAuth))
	if err != nil {
		return nil, err
	}
	s, err := newServing(rep, logger)
	if err != nil {
		return nil, err
	}
	n := &ReplicaNode{serving: s, Ctx: ctx, Cancel: cancel}

	cfg := rep.Config
	n.client, err = daclient.TryConnect(ctx, cfg.DA.URL, cfg.DA.HeartbeatInterval.ToDuration(), loggers.Logger(loggers.DAClient), daclient.WithConfig(cfg.DA))
	if err != nil {
		s.release()
		return nil, err
	}
	n.replica, err = replica.New(replica.Config{
		HeartbeatInterval: cfg.Server.HeartbeatInterval.ToDuration(),
		ForwardPoolSize:   cfg.Server.ForwardPoolSize,
	}, n.client, s.store, s.broadcaster, verifier, signer, logger)
	if err != nil {
		_ = n.client.Close()
		s.release()
		return nil, errors.Wrap(err, "create replica")
	}
	return n, nil
}

func (n *ReplicaNode) Run() error {
	n.running.Store(true)
	defer close(n.done)
	defer n.release()

	serverErr := n.serve(n.store, n.replica)
	n.logger.WithFields(logrus.Fields{
		"upstream": n.Repo().Config.DA.URL,
		"addr":     n.Addr(),
	}).Infof("%s replica started", repo.AppName)
	err := n.replica.Run(n.Ctx, serverErr)
	n.Cancel()
	return err
}

func (n *ReplicaNode) Repo() *repo.Repo {
	return n.repo
}

func (n *ReplicaNode) Stop() {
	n.Cancel()
	if n.running.Load() {
		<-n.done
		return
	}
	n.release()
}

func (n *ReplicaNode) release() {
	if n.client != nil {
		_ = n.client.Close()
		n.client = nil
	}
	n.serving.release()
}

func (n *ReplicaNode) Health() *Health {
	return &Health{
		Mode:         ModeReplica,
		Status:       []string{},
		LatestHeight: n.latest(),
		Subscribers:  n.broadcaster.Count(),
	}
}
