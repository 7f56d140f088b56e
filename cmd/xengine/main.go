package main

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/xuperchain/xengine/cmd/xengine/cmd"
)

func main() {
	rootCmd, err := NewEngineCommand()
	if err != nil {
		log.Fatalf("create command failed.err:%v", err)
	}

	if err = rootCmd.Execute(); err != nil {
		log.Fatalf("xengine failed.err:%v", err)
	}
}

func NewEngineCommand() (*cobra.Command, error) {
	rootCmd := &cobra.Command{
		Use:           "xengine <command> [arguments]",
		Short:         "Xengine is a tool for running deploys against the global state.",
		Long:          "Xengine is a tool for running deploys against the global state.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Example:       "xengine run --conf conf/engine.yaml --contract store-named --arg str:answer --arg i32:42 --commit",
	}

	rootCmd.AddCommand(cmd.GetVersionCmd().GetCmd())
	rootCmd.AddCommand(cmd.GetGenesisCmd().GetCmd())
	rootCmd.AddCommand(cmd.GetRunCmd().GetCmd())
	rootCmd.AddCommand(cmd.GetQueryCmd().GetCmd())
	rootCmd.AddCommand(cmd.GetContractsCmd().GetCmd())
	return rootCmd, nil
}
