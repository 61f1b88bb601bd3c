package repo

const (
	AppName = "AxiomDANode"

	// CfgFileName is the default config name
	CfgFileName = "config.toml"

	// defaultRepoRoot is the path to the default config dir location.
	defaultRepoRoot = "~/.axiom-da"

	// rootPathEnvVar is the environment variable used to change the path root.
	rootPathEnvVar = "AXIOM_DA_PATH"

	envPrefix = "AXIOM_DA"

	SignerKeyFileName = "signer.key"

	WhitelistFileName = "whitelist"

	pidFileName = "running.pid"

	LogsDirName = "logs"
)

const (
	KVStorageTypeLeveldb = "leveldb"
	KVStorageTypePebble  = "pebble"
	KVStorageTypeMemory  = "memory"
	KVStorageCacheSize   = 16
	KVStorageSync        = true

	ExecTypeDev = "dev"

	SettlementTypeRPC  = "rpc"
	SettlementTypeMock = "mock"
)

const (
	// DefaultConnectRetryCount is the number of DA connect attempts before giving up.
	DefaultConnectRetryCount = 5

	// DefaultConnectRetryWait is the fixed wait between DA connect attempts.
	DefaultConnectRetryWait = 10

	// DefaultBlockRetryCount is the number of attempts for a single block execution.
	DefaultBlockRetryCount = 10

	// DefaultBlockRetryIncrementMicros is added to the block timestamp after each failed execution attempt.
	DefaultBlockRetryIncrementMicros = 5000

	DefaultSuperBlockSize = 1
)
