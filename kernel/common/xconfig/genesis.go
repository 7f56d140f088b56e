package xconfig

import (
	"fmt"
	"os"
	"path/filepath"
)

// GenesisAccount 创世账户
type GenesisAccount struct {
	// ed25519 public key
	PublicKey HexBytes `yaml:"publicKey"`
	// decimal balance of the main purse
	Balance string `yaml:"balance"`
}

// GenesisContract installer contract stored at genesis
type GenesisContract struct {
	Name string `yaml:"name"`
	// either inline code or a file relative to the genesis config
	Code     HexBytes `yaml:"code,omitempty"`
	CodeFile string   `yaml:"codeFile,omitempty"`
}

type GenesisConf struct {
	ProtocolVersion uint32            `yaml:"protocolVersion"`
	Accounts        []GenesisAccount  `yaml:"accounts"`
	Contracts       []GenesisContract `yaml:"contracts"`
}

// LoadGenesisConf load genesis config, code files are read relative to the config dir
func LoadGenesisConf(cfgFile string) (*GenesisConf, error) {
	cfg := &GenesisConf{ProtocolVersion: 1}
	if err := loadConf(cfgFile, cfg); err != nil {
		return nil, fmt.Errorf("load genesis config failed.err:%s", err)
	}

	dir := filepath.Dir(cfgFile)
	for i := range cfg.Contracts {
		c := &cfg.Contracts[i]
		if c.Name == "" {
			return nil, fmt.Errorf("genesis contract %d has no name", i)
		}
		if len(c.Code) > 0 || c.CodeFile == "" {
			continue
		}
		path := c.CodeFile
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		code, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read genesis contract %s failed.err:%v", c.Name, err)
		}
		c.Code = code
	}
	return cfg, nil
}
