package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xuperchain/xengine/kernel/common/xconfig"
	"github.com/xuperchain/xengine/kernel/contract/native"
)

type GenesisCmd struct {
	BaseCmd
	EngineConf  string
	GenesisConf string
}

func GetGenesisCmd() *GenesisCmd {
	genesisCmdIns := new(GenesisCmd)

	genesisCmdIns.cmd = &cobra.Command{
		Use:           "genesis",
		Short:         "Commit the genesis state to an empty global state.",
		Example:       "xengine genesis --conf conf/engine.yaml --genesis conf/genesis.yaml",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return genesisCmdIns.commitGenesis()
		},
	}

	// 设置命令行参数并绑定变量
	genesisCmdIns.cmd.Flags().StringVarP(&genesisCmdIns.EngineConf, "conf", "c", defEngineConf, "engine config file path")
	genesisCmdIns.cmd.Flags().StringVarP(&genesisCmdIns.GenesisConf, "genesis", "g", "conf/genesis.yaml", "genesis config file path")

	return genesisCmdIns
}

func (t *GenesisCmd) commitGenesis() error {
	cfg, err := xconfig.LoadGenesisConf(t.GenesisConf)
	if err != nil {
		return err
	}
	// 未配置代码的合约使用内置的 <name>-install
	for i := range cfg.Contracts {
		c := &cfg.Contracts[i]
		if len(c.Code) > 0 {
			continue
		}
		code, ok := native.ContractCode(c.Name + "-install")
		if !ok {
			return fmt.Errorf("genesis contract %s has no code", c.Name)
		}
		c.Code = code
	}

	engine, err := openEngine(t.EngineConf)
	if err != nil {
		return err
	}
	defer engine.Close()

	version, err := engine.Genesis(cfg)
	if err != nil {
		return err
	}
	return printJSON(map[string]interface{}{
		"height": version.Height,
		"root":   version.Root.String(),
	})
}
