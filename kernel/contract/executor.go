package contract

import (
	"context"
	"fmt"
	"sync"

	"github.com/xuperchain/xengine/kernel/contract/sandbox"
	"github.com/xuperchain/xengine/kernel/ledger"
	"github.com/xuperchain/xengine/lib/logs"
)

var (
	executorMutex sync.Mutex
	executors     = make(map[string]NewExecutorFunc)
)

type NewExecutorFunc func(cfg *ExecutorConfig) (Executor, error)

type ExecutorConfig struct {
	Log logs.Logger
}

// ExecConfig one execution of a module
type ExecConfig struct {
	Module     *Module
	Address    ledger.Address
	Args       Args
	DeployHash ledger.Hash
	GasLimit   uint64
	// overlay over the pre-state snapshot, owned by this execution
	TrackingCopy *sandbox.TrackingCopy
}

type ExecResult struct {
	Effects *ledger.EffectSet
	GasUsed uint64
}

// Executor runs a prepared module against a tracking copy
type Executor interface {
	Exec(ctx context.Context, cfg *ExecConfig) (*ExecResult, error)
}

func Register(name string, f NewExecutorFunc) {
	executorMutex.Lock()
	defer executorMutex.Unlock()

	if _, exists := executors[name]; exists {
		panic(fmt.Sprintf("contract executor of type %s exists", name))
	}
	executors[name] = f
}

func CreateExecutor(name string, cfg *ExecutorConfig) (Executor, error) {
	executorMutex.Lock()
	f, ok := executors[name]
	executorMutex.Unlock()
	if !ok {
		return nil, fmt.Errorf("contract executor of type %s not exists", name)
	}
	return f(cfg)
}
