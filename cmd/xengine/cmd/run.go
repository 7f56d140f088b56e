package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	hex "github.com/tmthrgd/go-hex"
	"golang.org/x/crypto/ed25519"

	"github.com/xuperchain/xengine/kernel/contract/native"
	"github.com/xuperchain/xengine/kernel/engines/xengine"
)

type RunCmd struct {
	BaseCmd
	EngineConf string
	Contract   string
	CodeFile   string
	Seed       string
	Args       []string
	Commit     bool
}

func GetRunCmd() *RunCmd {
	runCmdIns := new(RunCmd)

	runCmdIns.cmd = &cobra.Command{
		Use:           "run",
		Short:         "Execute one signed deploy and optionally commit its effects.",
		Example:       "xengine run --contract write-named --seed [hex] --arg str:answer --arg i32:42 --commit",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCmdIns.runDeploy()
		},
	}

	// 设置命令行参数并绑定变量
	flags := runCmdIns.cmd.Flags()
	flags.StringVarP(&runCmdIns.EngineConf, "conf", "c", defEngineConf, "engine config file path")
	flags.StringVar(&runCmdIns.Contract, "contract", "", "name of a built-in contract")
	flags.StringVar(&runCmdIns.CodeFile, "code", "", "session code file, used when --contract is empty")
	flags.StringVarP(&runCmdIns.Seed, "seed", "s", "", "hex ed25519 seed of the deploying account")
	flags.StringArrayVarP(&runCmdIns.Args, "arg", "a", nil, "contract argument as type:value")
	flags.BoolVar(&runCmdIns.Commit, "commit", false, "commit effects after a successful run")

	return runCmdIns
}

func (t *RunCmd) loadCode() ([]byte, error) {
	if t.Contract != "" {
		code, ok := native.ContractCode(t.Contract)
		if !ok {
			return nil, fmt.Errorf("unknown contract %s", t.Contract)
		}
		return code, nil
	}
	if t.CodeFile == "" {
		return nil, fmt.Errorf("one of --contract and --code is required")
	}
	return os.ReadFile(t.CodeFile)
}

func (t *RunCmd) loadKey() (ed25519.PrivateKey, error) {
	seed, err := hex.DecodeString(t.Seed)
	if err != nil || len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("seed must be %d hex bytes", ed25519.SeedSize)
	}
	return ed25519.NewKeyFromSeed(seed), nil
}

func (t *RunCmd) runDeploy() error {
	code, err := t.loadCode()
	if err != nil {
		return err
	}
	key, err := t.loadKey()
	if err != nil {
		return err
	}
	args, err := parseArgs(t.Args)
	if err != nil {
		return err
	}
	deploy, err := xengine.NewDeploy(code, args, key)
	if err != nil {
		return err
	}

	engine, err := openEngine(t.EngineConf)
	if err != nil {
		return err
	}
	defer engine.Close()

	res, execErr := engine.Execute(context.Background(), deploy)
	out := map[string]interface{}{
		"deploy":    res.DeployHash.String(),
		"account":   deploy.Address.String(),
		"phase":     res.Phase.String(),
		"pre_state": res.PreState.String(),
		"cost":      res.Cost,
	}
	if execErr != nil {
		out["error"] = execErr.Error()
		return printJSON(out)
	}

	effects := make(map[string]string, res.Effects.Len())
	for _, k := range res.Effects.Keys() {
		tr, _ := res.Effects.Transform(k)
		effects[k.String()] = tr.String()
	}
	out["effects"] = effects

	if t.Commit {
		version, err := engine.Commit(res.Effects)
		if err != nil {
			out["error"] = err.Error()
		} else {
			out["version"] = version.String()
		}
	}
	return printJSON(out)
}
