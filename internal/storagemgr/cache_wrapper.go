package storagemgr

import (
	"github.com/coocood/freecache"
)

// CacheWrapper is a named byte cache over freecache, reporting hits and misses per name.
type CacheWrapper struct {
	name  string
	cache *freecache.Cache
}

func NewCacheWrapper(name string, megabytesLimit int) *CacheWrapper {
	if megabytesLimit <= 0 {
		megabytesLimit = 16
	}

	return &CacheWrapper{
		name:  name,
		cache: freecache.NewCache(megabytesLimit * 1024 * 1024),
	}
}

func (c *CacheWrapper) Get(k []byte) ([]byte, bool) {
	res, err := c.cache.Get(k)
	if err != nil {
		lruCacheMissCounter.WithLabelValues(c.name).Inc()
		return nil, false
	}
	lruCacheHitCounter.WithLabelValues(c.name).Inc()
	return res, true
}

func (c *CacheWrapper) Set(k []byte, v []byte) {
	// entries larger than 1/1024 of the cache are rejected by freecache
	_ = c.cache.Set(k, v, 0)
}

func (c *CacheWrapper) Del(k []byte) {
	c.cache.Del(k)
}

func (c *CacheWrapper) Reset() {
	c.cache.Clear()
}
