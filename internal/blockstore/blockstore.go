package blockstore

import (
	"encoding/binary"
	"sync"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/axiomesh/axiom-da-node/api/sequencerpb"
	"github.com/axiomesh/axiom-da-node/internal/storagemgr"
	"github.com/axiomesh/axiom-da-node/internal/storagemgr/kv"
)

var (
	ErrNonConsecutive = errors.New("block height is not consecutive")

	latestHeightKey = []byte("latest_height")
	blockPrefix     = []byte("block/")
)

// Store keeps DA blocks by height, the way the sequencer emitted them.
type Store struct {
	store  kv.Storage
	cache  *storagemgr.CacheWrapper
	logger logrus.FieldLogger

	lock   sync.RWMutex
	latest uint64
	has    bool
}

func New(store kv.Storage, cacheMegabytes int, logger logrus.FieldLogger) (*Store, error) {
	s := &Store{
		store:  store,
		cache:  storagemgr.NewCacheWrapper("blockstore", cacheMegabytes),
		logger: logger,
	}
	raw, err := store.Get(latestHeightKey)
	if err != nil {
		return nil, errors.Wrap(err, "load latest height")
	}
	if raw != nil {
		s.latest = binary.BigEndian.Uint64(raw)
		s.has = true
	}
	return s, nil
}

// Latest returns the highest stored height; ok is false for an empty store.
func (s *Store) Latest() (height uint64, ok bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.latest, s.has
}

// Put appends a block. Heights must follow the latest stored one without gaps.
func (s *Store) Put(b *sequencerpb.BlockV1) error {
	if b.Height == 0 {
		return errors.New("block height 0 is reserved")
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	if s.has && b.Height != s.latest+1 {
		return errors.Wrapf(ErrNonConsecutive, "latest %d, got %d", s.latest, b.Height)
	}

	raw, err := rlp.EncodeToBytes(b)
	if err != nil {
		return errors.Wrapf(err, "encode block %d", b.Height)
	}
	key := blockKey(b.Height)
	batch := s.store.NewBatch()
	batch.Put(key, raw)
	batch.Put(latestHeightKey, key[len(blockPrefix):])
	if err := batch.Commit(); err != nil {
		return errors.Wrapf(err, "persist block %d", b.Height)
	}
	s.cache.Set(key, raw)
	s.latest = b.Height
	s.has = true

	s.logger.WithFields(logrus.Fields{
		"height": b.Height,
		"size":   len(b.Data),
	}).Debug("Persisted block")
	return nil
}

// Get returns nil when the height is not stored.
func (s *Store) Get(height uint64) (*sequencerpb.BlockV1, error) {
	key := blockKey(height)
	raw, ok := s.cache.Get(key)
	if !ok {
		var err error
		raw, err = s.store.Get(key)
		if err != nil {
			return nil, err
		}
		if raw == nil {
			return nil, nil
		}
		s.cache.Set(key, raw)
	}
	b := &sequencerpb.BlockV1{}
	if err := rlp.DecodeBytes(raw, b); err != nil {
		return nil, errors.Wrapf(err, "decode block %d", height)
	}
	return b, nil
}

func (s *Store) Close() error {
	s.cache.Reset()
	return s.store.Close()
}

func blockKey(height uint64) []byte {
	key := make([]byte, len(blockPrefix)+8)
	copy(key, blockPrefix)
	binary.BigEndian.PutUint64(key[len(blockPrefix):], height)
	return key
}
