package repo

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	repoRoot := t.TempDir()

	cfg, err := LoadConfig(repoRoot)
	require.Nil(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.True(t, FileExist(filepath.Join(repoRoot, CfgFileName)))

	cfg.Settlement.SuperBlockSize = 10
	cfg.DA.HeartbeatInterval = Duration(3 * time.Second)
	r := &Repo{RepoRoot: repoRoot, Config: cfg}
	require.Nil(t, r.Flush())

	loaded, err := LoadConfig(repoRoot)
	require.Nil(t, err)
	assert.EqualValues(t, 10, loaded.Settlement.SuperBlockSize)
	assert.Equal(t, 3*time.Second, loaded.DA.HeartbeatInterval.ToDuration())
}

func TestLoadConfigWithEnv(t *testing.T) {
	repoRoot := t.TempDir()
	_, err := LoadConfig(repoRoot)
	require.Nil(t, err)

	t.Setenv("AXIOM_DA_SETTLEMENT_ADMIN_MODE", "true")
	t.Setenv("AXIOM_DA_DA_URL", "10.0.0.1:30730")

	cfg, err := LoadConfig(repoRoot)
	require.Nil(t, err)
	assert.True(t, cfg.Settlement.AdminMode)
	assert.Equal(t, "10.0.0.1:30730", cfg.DA.URL)
}

func TestLoadConfigBadFormat(t *testing.T) {
	repoRoot := t.TempDir()
	err := os.WriteFile(filepath.Join(repoRoot, CfgFileName), []byte("[da]\nurl = 12\n"), 0644)
	require.Nil(t, err)

	_, err = LoadConfig(repoRoot)
	require.NotNil(t, err)
}

func TestRepoPaths(t *testing.T) {
	r := Default("/tmp/da")
	assert.Equal(t, "/tmp/da/signer.key", r.SignerKeyPath())
	assert.Equal(t, "/tmp/da/whitelist", r.WhitelistPath())

	r.Config.Auth.WhitelistPath = "/etc/whitelist"
	assert.Equal(t, "/etc/whitelist", r.WhitelistPath())

	assert.Equal(t, "/tmp/da/storage/blocks", GetStoragePath("/tmp/da", "blocks"))
}

func TestLoadRepoRootFromEnv(t *testing.T) {
	p, err := LoadRepoRootFromEnv("/a")
	require.Nil(t, err)
	assert.Equal(t, "/a", p)

	t.Setenv(rootPathEnvVar, "/b")
	p, err = LoadRepoRootFromEnv("")
	require.Nil(t, err)
	assert.Equal(t, "/b", p)
}

func TestLoadConfigRejectsZeroIntervals(t *testing.T) {
	for name, mutate := range map[string]func(cfg *Config){
		"da heartbeat":     func(cfg *Config) { cfg.DA.HeartbeatInterval = 0 },
		"server heartbeat": func(cfg *Config) { cfg.Server.HeartbeatInterval = Duration(-time.Second) },
		"block interval":   func(cfg *Config) { cfg.Sequencer.BlockInterval = 0 },
		"limiter": func(cfg *Config) {
			cfg.Server.BatchWriteLimiter.Enable = true
			cfg.Server.BatchWriteLimiter.Interval = 0
		},
	} {
		t.Run(name, func(t *testing.T) {
			repoRoot := t.TempDir()
			cfg := DefaultConfig()
			mutate(cfg)
			r := &Repo{RepoRoot: repoRoot, Config: cfg}
			require.Nil(t, r.Flush())

			_, err := LoadConfig(repoRoot)
			assert.NotNil(t, err)
		})
	}

	assert.Nil(t, DefaultConfig().Validate())
}
