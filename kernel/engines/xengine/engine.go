package xengine

import (
	"context"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/xuperchain/xengine/bcs/state/xmodel"
	"github.com/xuperchain/xengine/kernel/common/xconfig"
	"github.com/xuperchain/xengine/kernel/contract"
	"github.com/xuperchain/xengine/kernel/contract/native"
	"github.com/xuperchain/xengine/kernel/contract/sandbox"
	"github.com/xuperchain/xengine/kernel/contract/wasmprep"
	"github.com/xuperchain/xengine/kernel/ledger"
	"github.com/xuperchain/xengine/lib/logs"
	"github.com/xuperchain/xengine/lib/metrics"
	"github.com/xuperchain/xengine/lib/storage/kvdb"
	_ "github.com/xuperchain/xengine/lib/storage/kvdb/badgerdb"
	_ "github.com/xuperchain/xengine/lib/storage/kvdb/leveldb"
	"github.com/xuperchain/xengine/lib/timer"
)

// EngineConfig collaborators of an EngineState
type EngineConfig struct {
	State        ledger.GlobalState
	Preprocessor contract.Preprocessor
	Executor     contract.Executor
	// ExecutorName label used in metrics
	ExecutorName string
	Conf         *xconfig.EngineConf
	Log          logs.Logger
}

// ExecutionResult outcome of one deploy, effects are not committed
type ExecutionResult struct {
	DeployHash ledger.Hash
	Effects    *ledger.EffectSet
	// gas used
	Cost uint64
	// version the deploy executed against
	PreState ledger.Version
	Phase    Phase
}

// DeployResult one entry of RunDeploys
type DeployResult struct {
	Result *ExecutionResult
	Err    error
}

// EngineState 编排预处理和执行, 计算与提交解耦:
// executions never mutate global state, Commit and ApplyEffect do.
type EngineState struct {
	state        ledger.GlobalState
	preprocessor contract.Preprocessor
	executor     contract.Executor
	executorName string
	conf         *xconfig.EngineConf
	log          logs.Logger

	modules *cache.Cache
	commits *commitQueue

	closeOnce sync.Once
}

func NewEngineState(cfg *EngineConfig) (*EngineState, error) {
	if cfg == nil || cfg.State == nil || cfg.Preprocessor == nil || cfg.Executor == nil {
		return nil, ErrParameter.More("incomplete engine config")
	}
	conf := cfg.Conf
	if conf == nil {
		conf = xconfig.GetDefEngineConf()
	}
	if err := conf.Validate(); err != nil {
		return nil, ErrParameter.Wrap(err)
	}
	log := cfg.Log
	if log == nil {
		log = logs.NewDiscardLogger()
	}
	name := cfg.ExecutorName
	if name == "" {
		name = native.ExecutorName
	}

	e := &EngineState{
		state:        cfg.State,
		preprocessor: cfg.Preprocessor,
		executor:     cfg.Executor,
		executorName: name,
		conf:         conf,
		log:          log,
		modules:      cache.New(conf.ModuleCacheTTL, 2*conf.ModuleCacheTTL),
	}
	e.commits = newCommitQueue(conf.CommitQueueSize, e.commitOne)
	return e, nil
}

// Open build an engine from config: kv storage, global state,
// wasm preprocessor and the native executor
func Open(conf *xconfig.EngineConf, log logs.Logger) (*EngineState, error) {
	if log == nil {
		log = logs.NewDiscardLogger()
	}
	if conf == nil {
		return nil, ErrParameter.More("nil engine conf")
	}
	if err := conf.Validate(); err != nil {
		return nil, ErrParameter.Wrap(err)
	}
	if conf.MetricSwitch {
		metrics.RegisterMetrics()
	}

	db, err := kvdb.CreateKVInstance(&kvdb.KVParameter{
		DBPath:                conf.GenDataAbsPath("state"),
		KVEngineType:          conf.KVEngine,
		MemoryMode:            conf.Memory,
		MemCacheSize:          conf.MemCacheSize.MB(),
		FileHandlersCacheSize: conf.FileHandlersCacheSize,
	})
	if err != nil {
		return nil, ErrStorage.Wrap(err)
	}
	state, err := xmodel.NewXModel(db, conf.StateCacheSize, log)
	if err != nil {
		db.Close()
		return nil, ErrStorage.Wrap(err)
	}
	executor, err := contract.CreateExecutor(native.ExecutorName, &contract.ExecutorConfig{Log: log})
	if err != nil {
		state.Close()
		return nil, ErrInternal.Wrap(err)
	}

	return NewEngineState(&EngineConfig{
		State: state,
		Preprocessor: wasmprep.New(wasmprep.Config{
			EntryPoint:     conf.EntryPoint,
			MaxMemoryPages: conf.MaxMemoryPages,
		}),
		Executor:     executor,
		ExecutorName: native.ExecutorName,
		Conf:         conf,
		Log:          log,
	})
}

// State the underlying global state
func (e *EngineState) State() ledger.GlobalState {
	return e.state
}

// RunDeploy preprocess and execute code as address against the current head.
// The returned result always carries the phase reached; effects are only set on success.
func (e *EngineState) RunDeploy(ctx context.Context, code []byte, address ledger.Address) (*ExecutionResult, error) {
	return e.run(ctx, e.state.Snapshot(), &Deploy{Session: code, Address: address})
}

// Execute validate the signature then run the deploy against the current head
func (e *EngineState) Execute(ctx context.Context, d *Deploy) (*ExecutionResult, error) {
	snapshot := e.state.Snapshot()
	if err := e.ValidateSignatures(d); err != nil {
		metrics.DeployCounter.WithLabelValues("signature").Inc()
		return &ExecutionResult{Phase: PhaseReceived, PreState: snapshot.Version()}, err
	}
	return e.run(ctx, snapshot, d)
}

// RunDeploys execute signed deploys in parallel against one snapshot,
// results keep the input order and one failure never aborts the others
func (e *EngineState) RunDeploys(ctx context.Context, deploys []*Deploy) []DeployResult {
	snapshot := e.state.Snapshot()
	results := make([]DeployResult, len(deploys))
	sem := semaphore.NewWeighted(int64(e.conf.Concurrency))

	var group errgroup.Group
	for i, d := range deploys {
		i, d := i, d
		if err := sem.Acquire(ctx, 1); err != nil {
			results[i] = DeployResult{
				Result: &ExecutionResult{Phase: PhaseReceived, PreState: snapshot.Version()},
				Err:    ErrExecution.Wrap(err),
			}
			continue
		}
		group.Go(func() error {
			defer sem.Release(1)
			if err := e.ValidateSignatures(d); err != nil {
				results[i] = DeployResult{Result: &ExecutionResult{Phase: PhaseReceived, PreState: snapshot.Version()}, Err: err}
				return nil
			}
			res, err := e.run(ctx, snapshot, d)
			results[i] = DeployResult{Result: res, Err: err}
			return nil
		})
	}
	group.Wait()
	return results
}

func (e *EngineState) run(ctx context.Context, snapshot ledger.Snapshot, d *Deploy) (*ExecutionResult, error) {
	xt := timer.NewXTimer()
	result := &ExecutionResult{Phase: PhaseReceived, PreState: snapshot.Version()}
	hash, err := d.Hash()
	if err != nil {
		return result, err
	}
	result.DeployHash = hash
	log := e.log.With("deploy", hash)

	result.Phase = PhasePreprocessing
	module, err := e.prepare(d.Session)
	xt.Mark("preprocess")
	if err != nil {
		result.Phase = PhasePreprocessingFailed
		e.finish(log, result, xt, err)
		return result, err
	}
	result.Phase = PhasePrepared
	log.Trace("deploy prepared", "module", module.Hash, "entry", module.Entry)

	result.Phase = PhaseExecuting
	res, err := e.executor.Exec(ctx, &contract.ExecConfig{
		Module:       module,
		Address:      d.Address,
		Args:         d.Args,
		DeployHash:   hash,
		GasLimit:     e.conf.GasLimit,
		TrackingCopy: sandbox.NewTrackingCopy(snapshot),
	})
	xt.Mark("execute")
	if err != nil {
		result.Phase = PhaseExecutionFailed
		execErr := castExecError(err)
		e.finish(log, result, xt, execErr)
		return result, execErr
	}
	result.Phase = PhaseExecuted
	result.Effects = res.Effects
	result.Cost = res.GasUsed
	metrics.ContractGasHistogram.WithLabelValues(e.executorName).Observe(float64(res.GasUsed))
	e.finish(log, result, xt, nil)
	return result, nil
}

// prepare returns the cached module for code or preprocesses it
func (e *EngineState) prepare(code []byte) (*contract.Module, error) {
	hash := ledger.Blake2b256(code)
	if m, ok := e.modules.Get(hash.String()); ok {
		metrics.CacheLookup("module", true)
		return m.(*contract.Module), nil
	}
	metrics.CacheLookup("module", false)

	module, err := e.preprocessor.Process(code)
	if err != nil {
		return nil, ErrPreprocessing.Wrap(err)
	}
	e.modules.SetDefault(hash.String(), module)
	return module, nil
}

func (e *EngineState) finish(log logs.Logger, result *ExecutionResult, xt *timer.XTimer, err error) {
	metrics.DeployHistogram.WithLabelValues(result.Phase.String()).Observe(xt.Total().Seconds())
	if err != nil {
		metrics.DeployCounter.WithLabelValues(result.Phase.String()).Inc()
		log.Warn("deploy failed", "phase", result.Phase,
			"pre_state", result.PreState, "timer", xt.Print(), "err", err)
		return
	}
	metrics.DeployCounter.WithLabelValues("ok").Inc()
	log.Info("deploy executed", "pre_state", result.PreState,
		"keys", result.Effects.Len(), "cost", result.Cost, "timer", xt.Print())
}

// ApplyEffect commit one transform. Callers are not serialized here,
// global state orders concurrent commits.
func (e *EngineState) ApplyEffect(key ledger.Key, transform ledger.Transform) (ledger.Version, error) {
	effects := ledger.NewEffectSet()
	effects.Transforms[key] = transform
	return e.commitOne(effects)
}

// Commit merge effect sets in order and commit them atomically
func (e *EngineState) Commit(effects ...*ledger.EffectSet) (ledger.Version, error) {
	merged, err := ledger.MergeEffects(effects...)
	if err != nil {
		return e.state.Head(), castExecError(err)
	}
	return e.commitOne(merged)
}

// CommitAsync queue the merged effects, the channel yields exactly one result
func (e *EngineState) CommitAsync(effects ...*ledger.EffectSet) (<-chan CommitResult, error) {
	merged, err := ledger.MergeEffects(effects...)
	if err != nil {
		return nil, castExecError(err)
	}
	return e.commits.push(merged)
}

// PendingCommits number of queued asynchronous commits
func (e *EngineState) PendingCommits() int {
	return e.commits.len()
}

func (e *EngineState) commitOne(effects *ledger.EffectSet) (ledger.Version, error) {
	begin := time.Now()
	version, err := e.state.Commit(effects)
	if err != nil {
		return version, castExecError(err)
	}
	e.log.Debug("commit effects", "version", version, "keys", effects.Len(), "cost", time.Since(begin))
	return version, nil
}

// Query resolve a named key path at the version with root, nil root means head
func (e *EngineState) Query(root *ledger.Hash, key ledger.Key, path ...string) (ledger.Value, error) {
	snapshot := e.state.Snapshot()
	if root != nil {
		var err error
		if snapshot, err = e.state.SnapshotAt(*root); err != nil {
			return nil, ErrQuery.Wrap(err)
		}
	}
	value, err := sandbox.NewTrackingCopy(snapshot).Query(key, path...)
	if err != nil {
		if castErr := castExecError(err); castErr.Equal(ErrStorage) {
			return nil, castErr
		}
		return nil, ErrQuery.Wrap(err)
	}
	return value, nil
}

// Close drain pending commits and close global state
func (e *EngineState) Close() error {
	var err error
	e.closeOnce.Do(func() {
		e.commits.close()
		e.modules.Flush()
		err = e.state.Close()
	})
	return err
}
