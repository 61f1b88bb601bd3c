package repo

import (
	"testing"
	"time"
)

// MockRepo returns a repo rooted in a temp dir with in-memory storage and short timers.
func MockRepo(t testing.TB) *Repo {
	cfg := DefaultConfig()
	cfg.Storage.KvType = KVStorageTypeMemory
	cfg.Monitor.Enable = false
	cfg.DA.HeartbeatInterval = Duration(200 * time.Millisecond)
	cfg.DA.ConnectRetryCount = 2
	cfg.DA.ConnectRetryWait = Duration(50 * time.Millisecond)
	cfg.DA.ConnectTimeout = Duration(500 * time.Millisecond)
	cfg.Server.HeartbeatInterval = Duration(50 * time.Millisecond)
	cfg.Sequencer.BlockInterval = Duration(20 * time.Millisecond)
	cfg.Settlement.ResubscribeRetryCount = 1
	cfg.Settlement.ResubscribeRetryWait = Duration(10 * time.Millisecond)
	return &Repo{
		RepoRoot: t.TempDir(),
		Config:   cfg,
	}
}
