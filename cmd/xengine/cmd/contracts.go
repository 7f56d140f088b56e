package cmd

import (
	"github.com/spf13/cobra"

	"github.com/xuperchain/xengine/kernel/contract/native"
	"github.com/xuperchain/xengine/kernel/ledger"
	// 注册内置合约
	_ "github.com/xuperchain/xengine/kernel/contract/native/contracts"
)

type ContractsCmd struct {
	BaseCmd
}

func GetContractsCmd() *ContractsCmd {
	contractsCmdIns := new(ContractsCmd)

	contractsCmdIns.cmd = &cobra.Command{
		Use:           "contracts",
		Short:         "List built-in contracts and their code hashes.",
		Example:       "xengine contracts",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := make(map[string]string)
			for _, name := range native.Contracts() {
				code, _ := native.ContractCode(name)
				out[name] = ledger.Blake2b256(code).String()
			}
			return printJSON(out)
		},
	}

	return contractsCmdIns
}
