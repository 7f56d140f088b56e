package native

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"

	"github.com/xuperchain/xengine/kernel/contract"
	"github.com/xuperchain/xengine/kernel/ledger"
	"github.com/xuperchain/xengine/lib/logs"
)

// ExecutorName registry name of the native executor
const ExecutorName = "native"

// Entry body of a Go-native contract
type Entry func(rt contract.Runtime) error

var (
	entriesMu sync.RWMutex
	entries   = make(map[ledger.Hash]Entry)
	names     = make(map[string]ledger.Hash)
)

func init() {
	contract.Register(ExecutorName, New)
}

// RegisterContract binds name to entry and returns the bytecode that selects it
func RegisterContract(name string, entry Entry) []byte {
	code := Code(name)
	hash := ledger.Blake2b256(code)

	entriesMu.Lock()
	defer entriesMu.Unlock()
	if _, dup := names[name]; dup {
		panic("native: RegisterContract called twice for " + name)
	}
	entries[hash] = entry
	names[name] = hash
	return code
}

// ContractCode bytecode of a registered contract
func ContractCode(name string) ([]byte, bool) {
	entriesMu.RLock()
	_, ok := names[name]
	entriesMu.RUnlock()
	if !ok {
		return nil, false
	}
	return Code(name), true
}

// Contracts registered names
func Contracts() []string {
	entriesMu.RLock()
	defer entriesMu.RUnlock()
	out := make([]string, 0, len(names))
	for name := range names {
		out = append(out, name)
	}
	return out
}

func lookup(hash ledger.Hash) (Entry, bool) {
	entriesMu.RLock()
	defer entriesMu.RUnlock()
	e, ok := entries[hash]
	return e, ok
}

type nativeExecutor struct {
	log logs.Logger
}

func New(cfg *contract.ExecutorConfig) (contract.Executor, error) {
	log := cfg.Log
	if log == nil {
		log = logs.NewDiscardLogger()
	}
	return &nativeExecutor{log: log}, nil
}

func (e *nativeExecutor) Exec(ctx context.Context, cfg *contract.ExecConfig) (res *contract.ExecResult, err error) {
	if cfg.Module == nil || cfg.TrackingCopy == nil {
		return nil, errors.New("native: incomplete exec config")
	}
	entry, ok := lookup(cfg.Module.Hash)
	if !ok {
		return nil, errors.Wrapf(contract.ErrUnknownModule, "no native entry for %s", cfg.Module.Hash)
	}

	gas := NewGasMeter(cfg.GasLimit)
	if err := gas.Charge(GasBase); err != nil {
		return nil, err
	}
	rt, err := newRuntime(cfg, gas)
	if err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			if re, isRevert := r.(*contract.RevertError); isRevert {
				err = re
			} else {
				err = errors.Wrap(contract.ErrTrap, fmt.Sprint(r))
			}
			e.log.Warn("native contract aborted", "module", cfg.Module.Hash, "err", err)
			res = nil
		}
	}()

	if err := entry(rt); err != nil {
		e.log.Debug("native contract failed", "module", cfg.Module.Hash, "gas", gas.Used(), "err", err)
		return nil, err
	}
	return &contract.ExecResult{
		Effects: cfg.TrackingCopy.Effects(),
		GasUsed: gas.Used(),
	}, nil
}
