package xconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/docker/go-units"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	hex "github.com/tmthrgd/go-hex"

	"github.com/xuperchain/xengine/lib/utils"
)

// XEnvVarRootPath 设置后覆盖配置文件中的rootPath
const XEnvVarRootPath = "XENGINE_ROOT_PATH"

// ByteSize is a size in bytes, config files may write it as "64MB"
type ByteSize int64

// MB return size in megabytes
func (s ByteSize) MB() int {
	return int(s / units.MiB)
}

// HexBytes is decoded from a hex string in config files
type HexBytes []byte

func (h HexBytes) String() string {
	return hex.EncodeToString(h)
}

type EngineConf struct {
	// Program running root directory
	RootPath string `yaml:"rootPath,omitempty"`
	// data file directory
	DataDir string `yaml:"dataDir,omitempty"`
	// log file directory
	LogDir string `yaml:"logDir,omitempty"`
	// log config file path, relative to RootPath
	LogConf string `yaml:"logConf,omitempty"`
	// kv engine: leveldb|badger
	KVEngine string `yaml:"kvEngine,omitempty"`
	// keep global state in memory only
	Memory                bool     `yaml:"memory,omitempty"`
	MemCacheSize          ByteSize `yaml:"memCacheSize,omitempty"`
	FileHandlersCacheSize int      `yaml:"fileHandlersCacheSize,omitempty"`
	// global state read cache entries
	StateCacheSize int `yaml:"stateCacheSize,omitempty"`
	// wasm memory limit in 64KiB pages
	MaxMemoryPages uint32 `yaml:"maxMemoryPages,omitempty"`
	// exported function every module must provide
	EntryPoint string `yaml:"entryPoint,omitempty"`
	GasLimit   uint64 `yaml:"gasLimit,omitempty"`
	// max deploys executed in parallel
	Concurrency     int           `yaml:"concurrency,omitempty"`
	ModuleCacheTTL  time.Duration `yaml:"moduleCacheTTL,omitempty"`
	CommitQueueSize int           `yaml:"commitQueueSize,omitempty"`
	MetricSwitch    bool          `yaml:"metricSwitch,omitempty"`
}

func LoadEngineConf(cfgFile string) (*EngineConf, error) {
	cfg := GetDefEngineConf()
	err := loadConf(cfgFile, cfg)
	if err != nil {
		return nil, fmt.Errorf("load engine config failed.err:%s", err)
	}

	// 修改根目录。优先级：1:XENGINE_ROOT_PATH 2:配置文件设置 3:当前bin文件上级目录
	rt := os.Getenv(XEnvVarRootPath)
	if rt != "" && utils.FileIsExist(rt) {
		cfg.RootPath = rt
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func GetDefEngineConf() *EngineConf {
	return &EngineConf{
		RootPath:              filepath.Dir(utils.GetCurExecDir()),
		DataDir:               "data",
		LogDir:                "logs",
		LogConf:               "conf/log.yaml",
		KVEngine:              "leveldb",
		Memory:                false,
		MemCacheSize:          128 * units.MiB,
		FileHandlersCacheSize: 1024,
		StateCacheSize:        100000,
		MaxMemoryPages:        64,
		EntryPoint:            "call",
		GasLimit:              10000000,
		Concurrency:           8,
		ModuleCacheTTL:        10 * time.Minute,
		CommitQueueSize:       1024,
		MetricSwitch:          false,
	}
}

func (t *EngineConf) Validate() error {
	switch t.KVEngine {
	case "leveldb", "badger":
	default:
		return fmt.Errorf("unsupported kv engine:%s", t.KVEngine)
	}
	if t.EntryPoint == "" {
		return fmt.Errorf("entry point can not be empty")
	}
	if t.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive, got %d", t.Concurrency)
	}
	if t.CommitQueueSize <= 0 {
		return fmt.Errorf("commit queue size must be positive, got %d", t.CommitQueueSize)
	}
	return nil
}

func (t *EngineConf) GenDirAbsPath(dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(t.RootPath, dir)
}

func (t *EngineConf) GenDataAbsPath(dir string) string {
	return filepath.Join(t.GenDirAbsPath(t.DataDir), dir)
}

// decodeHook converts sizes, durations and hex strings
func decodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		stringToByteSizeHook,
		stringToHexBytesHook,
	)
}

func stringToByteSizeHook(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
	if f.Kind() != reflect.String || t != reflect.TypeOf(ByteSize(0)) {
		return data, nil
	}
	size, err := units.RAMInBytes(data.(string))
	if err != nil {
		return nil, fmt.Errorf("invalid size %q: %v", data, err)
	}
	return ByteSize(size), nil
}

func stringToHexBytesHook(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
	if f.Kind() != reflect.String || t != reflect.TypeOf(HexBytes{}) {
		return data, nil
	}
	raw, err := hex.DecodeString(strings.TrimPrefix(data.(string), "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid hex %q: %v", data, err)
	}
	return HexBytes(raw), nil
}

func loadConf(cfgFile string, out interface{}) error {
	if cfgFile == "" || !utils.FileIsExist(cfgFile) {
		return fmt.Errorf("config file set error.path:%s", cfgFile)
	}

	viperObj := viper.New()
	viperObj.SetConfigFile(cfgFile)
	err := viperObj.ReadInConfig()
	if err != nil {
		return fmt.Errorf("read config failed.path:%s,err:%v", cfgFile, err)
	}

	if err = viperObj.Unmarshal(out, viper.DecodeHook(decodeHook())); err != nil {
		return fmt.Errorf("unmatshal config failed.path:%s,err:%v", cfgFile, err)
	}

	return nil
}
