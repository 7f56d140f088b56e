package logs

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/xuperchain/xengine/lib/utils"
)

// LogConf log output of the engine process
type LogConf struct {
	Module   string `yaml:"module,omitempty"`
	Filename string `yaml:"filename,omitempty"`
	// logfmt|json
	Fmt string `yaml:"fmt,omitempty"`
	// debug|trace|info|warn|error
	Level string `yaml:"level,omitempty"`
	// minutes between file rotations, 0 disables rotation
	RotateInterval int `yaml:"rotateInterval,omitempty"`
	// rotated files to keep
	RotateBackups int  `yaml:"rotateBackups,omitempty"`
	Console       bool `yaml:"console,omitempty"`
	File          bool `yaml:"file,omitempty"`
	// 异步写文件及其缓冲区大小
	Async   bool `yaml:"async,omitempty"`
	BufSize int  `yaml:"bufSize,omitempty"`
}

func GetDefLogConf() *LogConf {
	return &LogConf{
		Module:         "xengine",
		Filename:       "xengine",
		Fmt:            "logfmt",
		Level:          "debug",
		RotateInterval: 60,
		RotateBackups:  168,
		Console:        true,
		File:           true,
		BufSize:        102400,
	}
}

// LoadLogConf overlay the file on the default config
func LoadLogConf(cfgFile string) (*LogConf, error) {
	if cfgFile == "" || !utils.FileIsExist(cfgFile) {
		return nil, fmt.Errorf("log config not found.path:%s", cfgFile)
	}

	v := viper.New()
	v.SetConfigFile(cfgFile)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read log config failed.path:%s,err:%v", cfgFile, err)
	}
	cfg := GetDefLogConf()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal log config failed.path:%s,err:%v", cfgFile, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (t *LogConf) Validate() error {
	switch t.Fmt {
	case "logfmt", "json":
	default:
		return fmt.Errorf("unsupported log fmt:%s", t.Fmt)
	}
	if t.File && t.Filename == "" {
		return fmt.Errorf("log filename can not be empty")
	}
	if t.Async && t.BufSize <= 0 {
		return fmt.Errorf("async log needs a positive bufSize")
	}
	return nil
}
