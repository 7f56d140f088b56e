package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/xuperchain/xengine/kernel/ledger"
)

type QueryCmd struct {
	BaseCmd
	EngineConf string
	Key        string
	Path       string
	Root       string
}

func GetQueryCmd() *QueryCmd {
	queryCmdIns := new(QueryCmd)

	queryCmdIns.cmd = &cobra.Command{
		Use:           "query",
		Short:         "Print the value under a key, following a named key path.",
		Example:       "xengine query --key account-[address] --path answer",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return queryCmdIns.printValue()
		},
	}

	// 设置命令行参数并绑定变量
	flags := queryCmdIns.cmd.Flags()
	flags.StringVarP(&queryCmdIns.EngineConf, "conf", "c", defEngineConf, "engine config file path")
	flags.StringVarP(&queryCmdIns.Key, "key", "k", "", "base key, e.g. account-[address]")
	flags.StringVarP(&queryCmdIns.Path, "path", "p", "", "named key path separated by /")
	flags.StringVarP(&queryCmdIns.Root, "root", "r", "", "state root to query, head by default")

	return queryCmdIns
}

func (t *QueryCmd) printValue() error {
	key, err := ledger.ParseKey(t.Key)
	if err != nil {
		return err
	}
	var root *ledger.Hash
	if t.Root != "" {
		h, err := ledger.ParseHash(t.Root)
		if err != nil {
			return err
		}
		root = &h
	}
	var path []string
	if t.Path != "" {
		path = strings.Split(strings.Trim(t.Path, "/"), "/")
	}

	engine, err := openEngine(t.EngineConf)
	if err != nil {
		return err
	}
	defer engine.Close()

	value, err := engine.Query(root, key, path...)
	if err != nil {
		return err
	}
	return printJSON(map[string]string{
		"kind":  value.Kind().String(),
		"value": value.String(),
	})
}
