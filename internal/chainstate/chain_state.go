package chainstate

import (
	"encoding/binary"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/axiomesh/axiom-da-node/internal/storagemgr/kv"
)

var (
	ErrHeightRegression = errors.New("synced height can not decrease")
	ErrRewindFinalized  = errors.New("can not rewind below the finalized height")

	syncedHeightKey      = []byte("synced_height")
	finalizedHeightKey   = []byte("finalized_height")
	prunedHeightKey      = []byte("executed_pruned_height")
	executedIDPrefix     = []byte("executed/")
	executedHeightPrefix = []byte("executed_h/")
)

// ChainState is the durable progress of the execution pipeline: the synced
// height, the finalized watermark and the set of executed block ids.
type ChainState struct {
	store  kv.Storage
	cache  *lru.Cache[common.Hash, uint64]
	logger logrus.FieldLogger

	// serializes writers, reads go straight to storage
	lock sync.Mutex
}

func New(store kv.Storage, cacheSize int, logger logrus.FieldLogger) (*ChainState, error) {
	if cacheSize <= 0 {
		cacheSize = 1024
	}
	cache, err := lru.New[common.Hash, uint64](cacheSize)
	if err != nil {
		return nil, err
	}
	return &ChainState{
		store:  store,
		cache:  cache,
		logger: logger,
	}, nil
}

// SyncedHeight returns the last fully executed height; ok is false when nothing has been recorded yet.
func (c *ChainState) SyncedHeight() (height uint64, ok bool, err error) {
	return c.getUint64(syncedHeightKey)
}

func (c *ChainState) SetSyncedHeight(height uint64) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	current, ok, err := c.getUint64(syncedHeightKey)
	if err != nil {
		return err
	}
	if ok && height < current {
		return errors.Wrapf(ErrHeightRegression, "current %d, new %d", current, height)
	}
	return c.store.Put(syncedHeightKey, encodeUint64(height))
}

func (c *ChainState) FinalizedHeight() (uint64, error) {
	h, _, err := c.getUint64(finalizedHeightKey)
	return h, err
}

// SetFinalizedHeight only moves the watermark forward, lower values are ignored.
func (c *ChainState) SetFinalizedHeight(height uint64) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	current, _, err := c.getUint64(finalizedHeightKey)
	if err != nil {
		return err
	}
	if height <= current {
		return nil
	}
	return c.store.Put(finalizedHeightKey, encodeUint64(height))
}

func (c *ChainState) IsExecuted(id common.Hash) (bool, error) {
	if c.cache.Contains(id) {
		return true, nil
	}
	raw, err := c.store.Get(executedIDKey(id))
	if err != nil {
		return false, err
	}
	if raw == nil {
		return false, nil
	}
	c.cache.Add(id, binary.BigEndian.Uint64(raw))
	return true, nil
}

func (c *ChainState) MarkExecuted(height uint64, id common.Hash) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	ids, err := c.idsAt(height)
	if err != nil {
		return err
	}
	for _, existing := range ids {
		if existing == id {
			c.cache.Add(id, height)
			return nil
		}
	}
	ids = append(ids, id)

	batch := c.store.NewBatch()
	batch.Put(executedIDKey(id), encodeUint64(height))
	batch.Put(executedHeightKey(height), encodeIDs(ids))
	if err := batch.Commit(); err != nil {
		return errors.Wrapf(err, "mark block %s executed", id)
	}
	c.cache.Add(id, height)
	return nil
}

// PruneExecuted forgets executed ids recorded below the given height.
func (c *ChainState) PruneExecuted(below uint64) (int, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	from, _, err := c.getUint64(prunedHeightKey)
	if err != nil {
		return 0, err
	}
	if below <= from {
		return 0, nil
	}

	pruned := 0
	batch := c.store.NewBatch()
	for h := from; h < below; h++ {
		ids, err := c.idsAt(h)
		if err != nil {
			return 0, err
		}
		for _, id := range ids {
			batch.Delete(executedIDKey(id))
			c.cache.Remove(id)
			pruned++
		}
		if len(ids) != 0 {
			batch.Delete(executedHeightKey(h))
		}
	}
	batch.Put(prunedHeightKey, encodeUint64(below))
	if err := batch.Commit(); err != nil {
		return 0, errors.Wrap(err, "prune executed ids")
	}

	c.logger.WithFields(logrus.Fields{
		"from":   from,
		"below":  below,
		"pruned": pruned,
	}).Debug("Pruned executed block ids")
	return pruned, nil
}

// Rewind moves the synced height back to height and forgets the blocks executed
// above it, so they run again. It is the only way the synced height decreases
// and is reserved for a settlement driven revert.
func (c *ChainState) Rewind(height uint64) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	synced, ok, err := c.getUint64(syncedHeightKey)
	if err != nil {
		return err
	}
	if !ok || height >= synced {
		return nil
	}
	finalized, _, err := c.getUint64(finalizedHeightKey)
	if err != nil {
		return err
	}
	if height < finalized {
		return errors.Wrapf(ErrRewindFinalized, "target %d, finalized %d", height, finalized)
	}

	batch := c.store.NewBatch()
	dropped := 0
	for h := height + 1; h <= synced; h++ {
		ids, err := c.idsAt(h)
		if err != nil {
			return err
		}
		for _, id := range ids {
			batch.Delete(executedIDKey(id))
			c.cache.Remove(id)
			dropped++
		}
		if len(ids) != 0 {
			batch.Delete(executedHeightKey(h))
		}
	}
	batch.Put(syncedHeightKey, encodeUint64(height))
	if err := batch.Commit(); err != nil {
		return errors.Wrapf(err, "rewind to %d", height)
	}

	c.logger.WithFields(logrus.Fields{
		"from":    synced,
		"to":      height,
		"dropped": dropped,
	}).Warn("Rewound synced height")
	return nil
}

func (c *ChainState) idsAt(height uint64) ([]common.Hash, error) {
	raw, err := c.store.Get(executedHeightKey(height))
	if err != nil {
		return nil, err
	}
	return decodeIDs(raw), nil
}

func (c *ChainState) getUint64(key []byte) (uint64, bool, error) {
	raw, err := c.store.Get(key)
	if err != nil {
		return 0, false, err
	}
	if raw == nil {
		return 0, false, nil
	}
	if len(raw) != 8 {
		return 0, false, errors.Errorf("corrupted value for %s", key)
	}
	return binary.BigEndian.Uint64(raw), true, nil
}

func executedIDKey(id common.Hash) []byte {
	return append(append([]byte{}, executedIDPrefix...), id.Bytes()...)
}

func executedHeightKey(height uint64) []byte {
	return append(append([]byte{}, executedHeightPrefix...), encodeUint64(height)...)
}

func encodeUint64(v uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, v)
	return buf
}

func encodeIDs(ids []common.Hash) []byte {
	buf := make([]byte, 0, len(ids)*common.HashLength)
	for _, id := range ids {
		buf = append(buf, id.Bytes()...)
	}
	return buf
}

func decodeIDs(raw []byte) []common.Hash {
	ids := make([]common.Hash, 0, len(raw)/common.HashLength)
	for i := 0; i+common.HashLength <= len(raw); i += common.HashLength {
		ids = append(ids, common.BytesToHash(raw[i:i+common.HashLength]))
	}
	return ids
}
