package app

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/axiomesh/axiom-da-node/internal/sequencer"
	"github.com/axiomesh/axiom-da-node/pkg/loggers"
	"github.com/axiomesh/axiom-da-node/pkg/repo"
)

// SequencerNode runs the light primary DA sequencer.
type SequencerNode struct {
	*serving
	Ctx    context.Context
	Cancel context.CancelFunc

	sequencer *sequencer.Sequencer
}

func NewSequencerNode(rep *repo.Repo, ctx context.Context, cancel context.CancelFunc) (*SequencerNode, error) {
	logger := loggers.Logger(loggers.Sequencer)
	verifier, err := loadVerifier(ctx, rep, loggers.Logger(loggers.BatchAuth))
	if err != nil {
		return nil, err
	}
	s, err := newServing(rep, logger)
	if err != nil {
		return nil, err
	}
	seq, err := sequencer.New(rep.Config.Sequencer, rep.Config.Server.HeartbeatInterval.ToDuration(), s.store, s.broadcaster, verifier, logger)
	if err != nil {
		s.release()
		return nil, errors.Wrap(err, "create sequencer")
	}
	return &SequencerNode{serving: s, Ctx: ctx, Cancel: cancel, sequencer: seq}, nil
}

func (n *SequencerNode) Run() error {
	n.running.Store(true)
	defer close(n.done)
	defer n.release()

	serverErr := n.serve(n.sequencer, n.sequencer)
	n.logger.WithFields(logrus.Fields{
		"addr":           n.Addr(),
		"block_interval": n.repo.Config.Sequencer.BlockInterval.String(),
	}).Infof("%s sequencer started", repo.AppName)

	runErr := make(chan error, 1)
	go func() {
		runErr <- n.sequencer.Run(n.Ctx)
	}()
	select {
	case err := <-runErr:
		n.Cancel()
		return err
	case err, ok := <-serverErr:
		n.Cancel()
		<-runErr
		if !ok {
			return nil
		}
		return err
	}
}

func (n *SequencerNode) Stop() {
	n.Cancel()
	if n.running.Load() {
		<-n.done
		return
	}
	n.release()
}

func (n *SequencerNode) Health() *Health {
	return &Health{
		Mode:         ModeSequencer,
		Status:       []string{},
		LatestHeight: n.latest(),
		Subscribers:  n.broadcaster.Count(),
	}
}
