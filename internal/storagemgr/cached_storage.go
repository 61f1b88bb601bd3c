package storagemgr

import (
	"github.com/VictoriaMetrics/fastcache"

	"github.com/axiomesh/axiom-da-node/internal/storagemgr/kv"
)

// CachedStorage fronts a kv.Storage with a fastcache read cache.
type CachedStorage struct {
	kv.Storage
	cache *fastcache.Cache
}

func NewCachedStorage(s kv.Storage, megabytesLimit int) kv.Storage {
	if megabytesLimit <= 0 {
		megabytesLimit = 128
	}
	return &CachedStorage{
		Storage: s,
		cache:   fastcache.New(megabytesLimit * 1024 * 1024),
	}
}

func (c *CachedStorage) Get(key []byte) ([]byte, error) {
	value, ok := c.cache.HasGet(nil, key)
	if ok {
		kvCacheHitCounter.Inc()
		return value, nil
	}
	kvCacheMissCounter.Inc()
	v, err := c.Storage.Get(key)
	if err != nil {
		return nil, err
	}
	if v != nil {
		c.cache.Set(key, v)
	}
	return v, nil
}

func (c *CachedStorage) Has(key []byte) (bool, error) {
	if c.cache.Has(key) {
		kvCacheHitCounter.Inc()
		return true, nil
	}
	kvCacheMissCounter.Inc()
	return c.Storage.Has(key)
}

func (c *CachedStorage) Put(key, value []byte) error {
	if err := c.Storage.Put(key, value); err != nil {
		return err
	}
	c.cache.Set(key, value)
	return nil
}

func (c *CachedStorage) Delete(key []byte) error {
	c.cache.Del(key)
	return c.Storage.Delete(key)
}

func (c *CachedStorage) Close() error {
	c.cache.Reset()
	return c.Storage.Close()
}

func (c *CachedStorage) NewBatch() kv.Batch {
	return &BatchWrapper{
		Batch:      c.Storage.NewBatch(),
		cache:      c.cache,
		finalState: make(map[string][]byte),
	}
}

type BatchWrapper struct {
	kv.Batch
	cache      *fastcache.Cache
	finalState map[string][]byte
}

func (w *BatchWrapper) Put(key, value []byte) {
	w.finalState[string(key)] = value
	w.Batch.Put(key, value)
}

func (w *BatchWrapper) Delete(key []byte) {
	w.finalState[string(key)] = nil
	w.Batch.Delete(key)
}

func (w *BatchWrapper) Commit() error {
	if err := w.Batch.Commit(); err != nil {
		return err
	}
	for k, v := range w.finalState {
		if v == nil {
			w.cache.Del([]byte(k))
		} else {
			w.cache.Set([]byte(k), v)
		}
	}
	w.finalState = make(map[string][]byte)
	return nil
}

func (w *BatchWrapper) Reset() {
	w.Batch.Reset()
	w.finalState = make(map[string][]byte)
}
