package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xuperchain/xengine/kernel/common/xconfig"
	"github.com/xuperchain/xengine/kernel/engines/xengine"
	"github.com/xuperchain/xengine/lib/logs"
)

const defEngineConf = "conf/engine.yaml"

type BaseCmd struct {
	// cobra command
	cmd *cobra.Command
}

func (t *BaseCmd) SetCmd(cmd *cobra.Command) {
	t.cmd = cmd
}

func (t *BaseCmd) GetCmd() *cobra.Command {
	return t.cmd
}

// openEngine 加载配置、初始化日志并打开引擎
func openEngine(confPath string) (*xengine.EngineState, error) {
	conf, err := xconfig.LoadEngineConf(confPath)
	if err != nil {
		return nil, fmt.Errorf("load engine config failed.err:%v", err)
	}

	err = logs.InitLog(conf.GenDirAbsPath(conf.LogConf), conf.GenDirAbsPath(conf.LogDir))
	if err != nil {
		return nil, fmt.Errorf("init log failed.err:%v", err)
	}

	return xengine.Open(conf, nil)
}

func printJSON(v interface{}) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal failed.err:%v", err)
	}
	fmt.Println(string(output))
	return nil
}
