package app

import (
	"net"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"

	"github.com/axiomesh/axiom-da-node/internal/blockstore"
	"github.com/axiomesh/axiom-da-node/internal/daserver"
	"github.com/axiomesh/axiom-da-node/internal/storagemgr"
	"github.com/axiomesh/axiom-da-node/internal/storagemgr/kv"
	"github.com/axiomesh/axiom-da-node/pkg/loggers"
	"github.com/axiomesh/axiom-da-node/pkg/repo"
)

const serverStopTimeout = 5 * time.Second

// serving holds what the replica and the sequencer share: a block store, a
// broadcaster and the DA gRPC listener.
type serving struct {
	repo        *repo.Repo
	kvStore     kv.Storage
	store       *blockstore.Store
	broadcaster *daserver.Broadcaster
	lis         net.Listener
	server      *daserver.Server
	running     *atomic.Bool
	done        chan struct{}
	logger      logrus.FieldLogger
}

func newServing(rep *repo.Repo, logger logrus.FieldLogger) (*serving, error) {
	s := &serving{
		repo:        rep,
		broadcaster: daserver.NewBroadcaster(rep.Config.Server.SubscriberBufferSize, loggers.Logger(loggers.API)),
		running:     atomic.NewBool(false),
		done:        make(chan struct{}),
		logger:      logger,
	}
	var err error
	s.kvStore, err = storagemgr.Open(storagemgr.GetComponentPath(rep, storagemgr.Blocks))
	if err != nil {
		return nil, errors.Wrap(err, "open block storage")
	}
	if s.store, err = blockstore.New(s.kvStore, rep.Config.Storage.KvCacheSize, loggers.Logger(loggers.Storage)); err != nil {
		s.release()
		return nil, err
	}
	if s.lis, err = daserver.Listen(rep.Config.Port.GRPC); err != nil {
		s.release()
		return nil, err
	}
	return s, nil
}

// Addr is the address the DA gRPC server listens on.
func (s *serving) Addr() string {
	return s.lis.Addr().String()
}

func (s *serving) serve(blocks daserver.BlockSource, handler daserver.Handler) <-chan error {
	s.server = daserver.New(s.repo.Config.Server, blocks, s.broadcaster, handler, loggers.Logger(loggers.API))
	return s.server.Start(s.lis)
}

func (s *serving) release() {
	if s.server != nil {
		s.server.Stop(serverStopTimeout)
		s.server = nil
	} else if s.lis != nil {
		_ = s.lis.Close()
	}
	s.lis = nil
	if s.kvStore != nil {
		if err := s.kvStore.Close(); err != nil {
			s.logger.WithError(err).Warn("Close block storage")
		}
		s.kvStore = nil
	}
}

func (s *serving) latest() uint64 {
	latest, _ := s.store.Latest()
	return latest
}
