package storagemgr

import (
	"fmt"
	"runtime"
	"sync"

	pebbledb "github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/bloom"

	"github.com/axiomesh/axiom-da-node/internal/storagemgr/kv"
	"github.com/axiomesh/axiom-da-node/pkg/loggers"
	"github.com/axiomesh/axiom-da-node/pkg/repo"
)

const (
	Blocks   = "blocks"
	Progress = "progress"
	Executor = "executor"
)

var globalStorageMgr = &storageMgr{
	storageBuilderMap: make(map[string]func(p string) (kv.Storage, error)),
	storages:          make(map[string]kv.Storage),
	lock:              new(sync.Mutex),
}

func init() {
	memoryBuilder := func(p string) (kv.Storage, error) {
		return kv.NewMemory(), nil
	}

	// only for test
	globalStorageMgr.storageBuilderMap[repo.KVStorageTypeLeveldb] = memoryBuilder
	globalStorageMgr.storageBuilderMap[repo.KVStorageTypePebble] = memoryBuilder
	globalStorageMgr.storageBuilderMap[repo.KVStorageTypeMemory] = memoryBuilder
	globalStorageMgr.storageBuilderMap[""] = memoryBuilder
}

type storageMgr struct {
	storageBuilderMap map[string]func(p string) (kv.Storage, error)
	storages          map[string]kv.Storage
	defaultKVType     string
	lock              *sync.Mutex
}

func defaultPebbleOptions(cacheMegabytes int) *pebbledb.Options {
	return &pebbledb.Options{
		Cache: pebbledb.NewCache(int64(cacheMegabytes * 1024 * 1024)),

		// MemTableStopWritesThreshold is max number of the existent MemTables(including the frozen one).
		MemTableStopWritesThreshold: 2,

		MaxConcurrentCompactions: func() int { return runtime.NumCPU() },

		// Options for the last level are used for all subsequent levels.
		Levels: []pebbledb.LevelOptions{
			{TargetFileSize: 2 * 1024 * 1024, BlockSize: 32 * 1024, FilterPolicy: bloom.FilterPolicy(10)},
			{TargetFileSize: 2 * 1024 * 1024, BlockSize: 32 * 1024, FilterPolicy: bloom.FilterPolicy(10)},
			{TargetFileSize: 4 * 1024 * 1024, BlockSize: 32 * 1024, FilterPolicy: bloom.FilterPolicy(10)},
			{TargetFileSize: 4 * 1024 * 1024, BlockSize: 32 * 1024, FilterPolicy: bloom.FilterPolicy(10)},
			{TargetFileSize: 8 * 1024 * 1024, BlockSize: 32 * 1024, FilterPolicy: bloom.FilterPolicy(10)},
		},
	}
}

func (m *storageMgr) open(typ string, p string) (kv.Storage, error) {
	builder, ok := m.storageBuilderMap[typ]
	if !ok {
		return nil, fmt.Errorf("unknow kv type %s, expect leveldb, pebble or memory", typ)
	}
	return builder(p)
}

func Initialize(defaultKVType string, defaultKvCacheSize int, sync bool) error {
	globalStorageMgr.lock.Lock()
	defer globalStorageMgr.lock.Unlock()

	globalStorageMgr.storageBuilderMap[repo.KVStorageTypeLeveldb] = func(p string) (kv.Storage, error) {
		return kv.NewLeveldb(p, nil, sync)
	}
	globalStorageMgr.storageBuilderMap[repo.KVStorageTypePebble] = func(p string) (kv.Storage, error) {
		return kv.NewPebble(p, defaultPebbleOptions(defaultKvCacheSize), &pebbledb.WriteOptions{Sync: sync}, loggers.Logger(loggers.Storage))
	}
	_, ok := globalStorageMgr.storageBuilderMap[defaultKVType]
	if !ok {
		return fmt.Errorf("unknow kv type %s, expect leveldb, pebble or memory", defaultKVType)
	}
	globalStorageMgr.defaultKVType = defaultKVType
	return nil
}

func Open(p string) (kv.Storage, error) {
	return OpenSpecifyType(globalStorageMgr.defaultKVType, p)
}

func OpenSpecifyType(typ string, p string) (kv.Storage, error) {
	globalStorageMgr.lock.Lock()
	defer globalStorageMgr.lock.Unlock()
	s, ok := globalStorageMgr.storages[p]
	if !ok {
		var err error
		s, err = globalStorageMgr.open(typ, p)
		if err != nil {
			return nil, err
		}
		globalStorageMgr.storages[p] = &managedStorage{Storage: s, path: p}
		s = globalStorageMgr.storages[p]
	}
	return s, nil
}

// GetComponentPath returns the storage dir of a node component under the repo.
func GetComponentPath(rep *repo.Repo, component string) string {
	return repo.GetStoragePath(rep.RepoRoot, component)
}

// managedStorage drops itself from the open set on Close so the path can be reopened.
type managedStorage struct {
	kv.Storage
	path string
}

func (s *managedStorage) Close() error {
	globalStorageMgr.lock.Lock()
	delete(globalStorageMgr.storages, s.path)
	globalStorageMgr.lock.Unlock()
	return s.Storage.Close()
}
