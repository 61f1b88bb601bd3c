package repo

import (
	"encoding/json"
	"os"
	"path"
	"reflect"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
)

type Duration time.Duration

func (d *Duration) MarshalText() (text []byte, err error) {
	return []byte(time.Duration(*d).String()), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	x, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(x)
	return nil
}

func StringToTimeDurationHookFunc() mapstructure.DecodeHookFunc {
	return func(
		f reflect.Type,
		t reflect.Type,
		data any) (any, error) {
		if f.Kind() != reflect.String {
			return data, nil
		}
		if t != reflect.TypeOf(Duration(5)) {
			return data, nil
		}

		d, err := time.ParseDuration(data.(string))
		if err != nil {
			return nil, err
		}
		return Duration(d), nil
	}
}

func (d *Duration) ToDuration() time.Duration {
	return time.Duration(*d)
}

func (d *Duration) String() string {
	return time.Duration(*d).String()
}

type Config struct {
	Ulimit     uint64     `mapstructure:"ulimit" toml:"ulimit"`
	Port       Port       `mapstructure:"port" toml:"port"`
	DA         DA         `mapstructure:"da" toml:"da"`
	Execution  Execution  `mapstructure:"execution" toml:"execution"`
	Settlement Settlement `mapstructure:"settlement" toml:"settlement"`
	Server     Server     `mapstructure:"server" toml:"server"`
	Sequencer  Sequencer  `mapstructure:"sequencer" toml:"sequencer"`
	Auth       Auth       `mapstructure:"auth" toml:"auth"`
	Storage    Storage    `mapstructure:"storage" toml:"storage"`
	Monitor    Monitor    `mapstructure:"monitor" toml:"monitor"`
	Log        Log        `mapstructure:"log" toml:"log"`
}

type Port struct {
	GRPC    int64 `mapstructure:"grpc" toml:"grpc"`
	Monitor int64 `mapstructure:"monitor" toml:"monitor"`
}

// DA is the upstream DA sequencer connection.
type DA struct {
	URL               string   `mapstructure:"url" toml:"url"`
	HeartbeatInterval Duration `mapstructure:"heartbeat_interval" toml:"heartbeat_interval"`
	AllowSyncFromZero bool     `mapstructure:"allow_sync_from_zero" toml:"allow_sync_from_zero"`
	ConnectRetryCount uint     `mapstructure:"connect_retry_count" toml:"connect_retry_count"`
	ConnectRetryWait  Duration `mapstructure:"connect_retry_wait" toml:"connect_retry_wait"`
	ConnectTimeout    Duration `mapstructure:"connect_timeout" toml:"connect_timeout"`
}

type Execution struct {
	Type                      string `mapstructure:"type" toml:"type"`
	BlockRetryCount           uint64 `mapstructure:"block_retry_count" toml:"block_retry_count"`
	BlockRetryIncrementMicros uint64 `mapstructure:"block_retry_increment_micros" toml:"block_retry_increment_micros"`
	WorkerPoolSize            int    `mapstructure:"worker_pool_size" toml:"worker_pool_size"`
	ExecutedSetCacheSize      int    `mapstructure:"executed_set_cache_size" toml:"executed_set_cache_size"`

	// 0 keeps every executed id
	ExecutedSetRetention uint64 `mapstructure:"executed_set_retention" toml:"executed_set_retention"`
	PushState            bool   `mapstructure:"push_state" toml:"push_state"`
}

type Settlement struct {
	Enable                bool     `mapstructure:"enable" toml:"enable"`
	Type                  string   `mapstructure:"type" toml:"type"`
	URL                   string   `mapstructure:"url" toml:"url"`
	SuperBlockSize        uint64   `mapstructure:"super_block_size" toml:"super_block_size"`
	AdminMode             bool     `mapstructure:"admin_mode" toml:"admin_mode"`
	ResubscribeRetryCount uint     `mapstructure:"resubscribe_retry_count" toml:"resubscribe_retry_count"`
	ResubscribeRetryWait  Duration `mapstructure:"resubscribe_retry_wait" toml:"resubscribe_retry_wait"`
	TaskPoolSize          int      `mapstructure:"task_pool_size" toml:"task_pool_size"`
}

// Server is the DA gRPC server run by the replica and the sequencer.
type Server struct {
	HeartbeatInterval    Duration `mapstructure:"heartbeat_interval" toml:"heartbeat_interval"`
	SubscriberBufferSize int      `mapstructure:"subscriber_buffer_size" toml:"subscriber_buffer_size"`
	ForwardPoolSize      int      `mapstructure:"forward_pool_size" toml:"forward_pool_size"`
	BatchWriteLimiter    JLimiter `mapstructure:"batch_write_limiter" toml:"batch_write_limiter"`
}

type Sequencer struct {
	BlockInterval  Duration `mapstructure:"block_interval" toml:"block_interval"`
	MaxBlockTxs    int      `mapstructure:"max_block_txs" toml:"max_block_txs"`
	StateCacheSize int      `mapstructure:"state_cache_size" toml:"state_cache_size"`
}

type Auth struct {
	SignerKeyPath string `mapstructure:"signer_key_path" toml:"signer_key_path"`
	WhitelistPath string `mapstructure:"whitelist_path" toml:"whitelist_path"`
}

type JLimiter struct {
	Interval Duration `mapstructure:"interval" toml:"interval"`
	Quantum  int64    `mapstructure:"quantum" toml:"quantum"`
	Capacity int64    `mapstructure:"capacity" toml:"capacity"`
	Enable   bool     `mapstructure:"enable" toml:"enable"`
}

type Storage struct {
	KvType      string `mapstructure:"kv_type" toml:"kv_type"`
	KvCacheSize int    `mapstructure:"kv_cache_size" toml:"kv_cache_size"`
	Sync        bool   `mapstructure:"sync" toml:"sync"`
}

type Monitor struct {
	Enable bool `mapstructure:"enable" toml:"enable"`
}

type Log struct {
	Level            string `mapstructure:"level" toml:"level"`
	Filename         string `mapstructure:"filename" toml:"filename"`
	ReportCaller     bool   `mapstructure:"report_caller" toml:"report_caller"`
	EnableCompress   bool   `mapstructure:"enable_compress" toml:"enable_compress"`
	EnableColor      bool   `mapstructure:"enable_color" toml:"enable_color"`
	DisableTimestamp bool   `mapstructure:"disable_timestamp" toml:"disable_timestamp"`

	// unit: day
	MaxAge uint `mapstructure:"max_age" toml:"max_age"`

	// unit: MB
	MaxSize uint `mapstructure:"max_size" toml:"max_size"`

	Module LogModule `mapstructure:"module" toml:"module"`
}

type LogModule struct {
	DAClient   string `mapstructure:"daclient" toml:"daclient"`
	Executor   string `mapstructure:"executor" toml:"executor"`
	Settlement string `mapstructure:"settlement" toml:"settlement"`
	Replica    string `mapstructure:"replica" toml:"replica"`
	Sequencer  string `mapstructure:"sequencer" toml:"sequencer"`
	API        string `mapstructure:"api" toml:"api"`
	Storage    string `mapstructure:"storage" toml:"storage"`
	BatchAuth  string `mapstructure:"batchauth" toml:"batchauth"`
}

func (c *Config) Bytes() ([]byte, error) {
	ret, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}

	return ret, nil
}

func DefaultConfig() *Config {
	return &Config{
		Ulimit: 65535,
		Port: Port{
			GRPC:    30730,
			Monitor: 40011,
		},
		DA: DA{
			URL:               "127.0.0.1:30730",
			HeartbeatInterval: Duration(10 * time.Second),
			AllowSyncFromZero: true,
			ConnectRetryCount: DefaultConnectRetryCount,
			ConnectRetryWait:  Duration(DefaultConnectRetryWait * time.Second),
			ConnectTimeout:    Duration(5 * time.Second),
		},
		Execution: Execution{
			Type:                      ExecTypeDev,
			BlockRetryCount:           DefaultBlockRetryCount,
			BlockRetryIncrementMicros: DefaultBlockRetryIncrementMicros,
			WorkerPoolSize:            1,
			ExecutedSetCacheSize:      4096,
			ExecutedSetRetention:      100000,
			PushState:                 false,
		},
		Settlement: Settlement{
			Enable:                false,
			Type:                  SettlementTypeMock,
			URL:                   "ws://127.0.0.1:8546",
			SuperBlockSize:        DefaultSuperBlockSize,
			AdminMode:             false,
			ResubscribeRetryCount: 5,
			ResubscribeRetryWait:  Duration(10 * time.Second),
			TaskPoolSize:          16,
		},
		Server: Server{
			HeartbeatInterval:    Duration(10 * time.Second),
			SubscriberBufferSize: 1024,
			ForwardPoolSize:      64,
			BatchWriteLimiter: JLimiter{
				Interval: Duration(50 * time.Millisecond),
				Quantum:  500,
				Capacity: 10000,
				Enable:   false,
			},
		},
		Sequencer: Sequencer{
			BlockInterval:  Duration(1 * time.Second),
			MaxBlockTxs:    1024,
			StateCacheSize: 1024,
		},
		Auth: Auth{
			SignerKeyPath: SignerKeyFileName,
			WhitelistPath: WhitelistFileName,
		},
		Storage: Storage{
			KvType:      KVStorageTypePebble,
			KvCacheSize: 128,
			Sync:        true,
		},
		Monitor: Monitor{
			Enable: true,
		},
		Log: Log{
			Level:            "info",
			Filename:         "axiom-da",
			ReportCaller:     false,
			EnableCompress:   false,
			EnableColor:      true,
			DisableTimestamp: false,
			MaxAge:           30,
			MaxSize:          128,
			Module: LogModule{
				DAClient:   "info",
				Executor:   "info",
				Settlement: "info",
				Replica:    "info",
				Sequencer:  "info",
				API:        "info",
				Storage:    "info",
				BatchAuth:  "info",
			},
		},
	}
}

func LoadConfig(repoRoot string) (*Config, error) {
	cfg, err := func() (*Config, error) {
		cfg := DefaultConfig()
		cfgPath := path.Join(repoRoot, CfgFileName)
		if !FileExist(cfgPath) {
			err := os.MkdirAll(repoRoot, 0755)
			if err != nil {
				return nil, errors.Wrap(err, "failed to build default config")
			}

			if err := writeConfigWithEnv(cfgPath, cfg); err != nil {
				return nil, errors.Wrap(err, "failed to build default config")
			}
		} else {
			if err := CheckWritable(repoRoot); err != nil {
				return nil, err
			}
			if err := readConfigFromFile(cfgPath, cfg); err != nil {
				return nil, err
			}
		}

		return cfg, cfg.Validate()
	}()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load config")
	}
	return cfg, nil
}

// Validate rejects values the node cannot run with, such as a zero ticker interval.
func (c *Config) Validate() error {
	intervals := map[string]Duration{
		"da.heartbeat_interval":     c.DA.HeartbeatInterval,
		"server.heartbeat_interval": c.Server.HeartbeatInterval,
		"sequencer.block_interval":  c.Sequencer.BlockInterval,
	}
	if limiter := c.Server.BatchWriteLimiter; limiter.Enable {
		intervals["server.batch_write_limiter.interval"] = limiter.Interval
		if limiter.Capacity <= 0 || limiter.Quantum <= 0 {
			return errors.New("server.batch_write_limiter capacity and quantum must be positive")
		}
	}
	for name, d := range intervals {
		if d <= 0 {
			return errors.Errorf("%s must be positive, got %s", name, time.Duration(d))
		}
	}
	return nil
}
