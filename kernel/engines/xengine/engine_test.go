package xengine

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	hex "github.com/tmthrgd/go-hex"
	"golang.org/x/crypto/ed25519"

	"github.com/xuperchain/xengine/kernel/common/xconfig"
	"github.com/xuperchain/xengine/kernel/contract"
	"github.com/xuperchain/xengine/kernel/contract/native/contracts"
	"github.com/xuperchain/xengine/kernel/ledger"
)

type testEnv struct {
	engine  *EngineState
	key     ed25519.PrivateKey
	address ledger.Address
	genesis ledger.Version
}

func newTestEnv(t *testing.T) *testEnv {
	conf := xconfig.GetDefEngineConf()
	conf.RootPath = t.TempDir()
	conf.Memory = true
	conf.GasLimit = 100000

	engine, err := Open(conf, nil)
	require.NoError(t, err)
	t.Cleanup(func() { engine.Close() })

	key := ed25519.NewKeyFromSeed(bytes.Repeat([]byte{7}, ed25519.SeedSize))
	pub := key.Public().(ed25519.PublicKey)
	version, err := engine.Genesis(&xconfig.GenesisConf{
		ProtocolVersion: 1,
		Accounts:        []xconfig.GenesisAccount{{PublicKey: xconfig.HexBytes(pub), Balance: "1000000"}},
		Contracts: []xconfig.GenesisContract{
			{Name: "mint", Code: contracts.MintInstall},
			{Name: "pos", Code: contracts.PosInstall},
			{Name: "standard_payment", Code: contracts.StandardPaymentInstall},
		},
	})
	require.NoError(t, err)

	return &testEnv{engine: engine, key: key, address: ledger.AccountAddress(pub), genesis: version}
}

func (env *testEnv) deploy(t *testing.T, code []byte, args ...ledger.Value) *Deploy {
	d, err := NewDeploy(code, args, env.key)
	require.NoError(t, err)
	return d
}

func (env *testEnv) exec(t *testing.T, code []byte, args ...ledger.Value) (*ExecutionResult, error) {
	return env.engine.Execute(context.Background(), env.deploy(t, code, args...))
}

func TestRejectsInvalidConf(t *testing.T) {
	env := newTestEnv(t)
	for name, mutate := range map[string]func(*xconfig.EngineConf){
		"concurrency":  func(c *xconfig.EngineConf) { c.Concurrency = 0 },
		"commit-queue": func(c *xconfig.EngineConf) { c.CommitQueueSize = 0 },
		"entry-point":  func(c *xconfig.EngineConf) { c.EntryPoint = "" },
		"kv-engine":    func(c *xconfig.EngineConf) { c.KVEngine = "rocksdb" },
	} {
		conf := xconfig.GetDefEngineConf()
		conf.RootPath = t.TempDir()
		conf.Memory = true
		mutate(conf)

		_, err := NewEngineState(&EngineConfig{
			State:        env.engine.state,
			Preprocessor: env.engine.preprocessor,
			Executor:     env.engine.executor,
			Conf:         conf,
		})
		assert.ErrorIs(t, err, ErrParameter, name)

		_, err = Open(conf, nil)
		assert.ErrorIs(t, err, ErrParameter, name)
	}
}

func TestGenesisAccountsAndInstallers(t *testing.T) {
	env := newTestEnv(t)
	assert.Equal(t, uint64(1), env.genesis.Height)

	res, err := env.exec(t, contracts.CheckSystemContractURefsAccessRights)
	require.NoError(t, err)
	assert.Equal(t, PhaseExecuted, res.Phase)
	assert.Equal(t, env.genesis, res.PreState)

	mint, err := env.engine.Query(nil, ledger.AccountKey(env.address), "mint")
	require.NoError(t, err)
	assert.Equal(t, ledger.KeyValue{Key: ledger.HashKey(ledger.Blake2b256(contracts.MintInstall))}, mint)

	purse := GenesisPurse(env.key.Public().(ed25519.PublicKey))
	balance, err := env.engine.Query(nil, ledger.BalanceKey(purse.Key().Addr))
	require.NoError(t, err)
	assert.True(t, ledger.ValueEqual(ledger.NewUInt256(1000000), balance))

	_, err = env.engine.Genesis(&xconfig.GenesisConf{})
	assert.ErrorIs(t, err, ErrGenesis)
}

func TestMainPurse(t *testing.T) {
	env := newTestEnv(t)
	purse := GenesisPurse(env.key.Public().(ed25519.PublicKey))

	_, err := env.exec(t, contracts.MainPurse, ledger.URefValue{Handle: purse})
	require.NoError(t, err)

	_, err = env.exec(t, contracts.MainPurse)
	assert.ErrorIs(t, err, ErrExecution)
	code, ok := contract.RevertCode(err)
	assert.True(t, ok)
	assert.Equal(t, contracts.RevertMissingArgument, code)

	_, err = env.exec(t, contracts.MainPurse, ledger.UInt64(1))
	code, _ = contract.RevertCode(err)
	assert.Equal(t, contracts.RevertInvalidArgument, code)

	// a purse the account does not hold
	other := ledger.NewURef(ledger.Address{1}, ledger.AccessReadAddWrite)
	_, err = env.exec(t, contracts.MainPurse, ledger.URefValue{Handle: other})
	assert.ErrorIs(t, err, ErrPermissionDenied)
	assert.ErrorIs(t, err, contract.ErrForgedReference)
}

func TestReadOnlyHandleWrite(t *testing.T) {
	env := newTestEnv(t)
	res, err := env.exec(t, contracts.WriteNamed, ledger.String("mint"), ledger.UInt64(1))
	assert.ErrorIs(t, err, ErrPermissionDenied)
	assert.ErrorIs(t, err, ledger.ErrPermissionDenied)
	assert.Equal(t, PhaseExecutionFailed, res.Phase)
	assert.Nil(t, res.Effects)
	assert.Equal(t, env.genesis, env.engine.State().Head())
}

func TestEscalatedURefArgument(t *testing.T) {
	env := newTestEnv(t)
	mint := GenesisInstallerURef("mint")
	escalated := ledger.NewURef(mint.Key().Addr, ledger.AccessReadAddWrite)
	res, err := env.exec(t, contracts.WriteURef, ledger.URefValue{Handle: escalated}, ledger.UInt64(1))
	assert.ErrorIs(t, err, ErrPermissionDenied)
	assert.ErrorIs(t, err, contract.ErrForgedReference)
	assert.Equal(t, PhaseExecutionFailed, res.Phase)
	assert.Nil(t, res.Effects)
	assert.Equal(t, env.genesis, env.engine.State().Head())

	value, err := env.engine.Query(nil, mint.Key())
	require.NoError(t, err)
	assert.Equal(t, ledger.KeyValue{Key: ledger.HashKey(ledger.Blake2b256(contracts.MintInstall))}, value)
}

func TestWriteThenRead(t *testing.T) {
	env := newTestEnv(t)
	res, err := env.exec(t, contracts.StoreNamed, ledger.String("answer"), ledger.Int32(0))
	require.NoError(t, err)
	// executing does not commit
	assert.Equal(t, env.genesis, env.engine.State().Head())
	_, err = env.engine.Commit(res.Effects)
	require.NoError(t, err)

	res, err = env.exec(t, contracts.WriteNamed, ledger.String("answer"), ledger.Int32(42))
	require.NoError(t, err)
	assert.Greater(t, res.Cost, uint64(0))
	version, err := env.engine.Commit(res.Effects)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), version.Height)

	_, err = env.exec(t, contracts.ReadNamed, ledger.String("answer"), ledger.Int32(42))
	require.NoError(t, err)
	_, err = env.exec(t, contracts.ReadNamed, ledger.String("answer"), ledger.Int32(41))
	code, _ := contract.RevertCode(err)
	assert.Equal(t, contracts.RevertValueMismatch, code)

	v, err := env.engine.Query(nil, ledger.AccountKey(env.address), "answer")
	require.NoError(t, err)
	assert.Equal(t, ledger.Int32(42), v)

	// historical query
	old := env.genesis.Root
	_, err = env.engine.Query(&old, ledger.AccountKey(env.address), "answer")
	assert.ErrorIs(t, err, ErrQuery)
}

func TestInvalidBytecode(t *testing.T) {
	env := newTestEnv(t)
	// the last module declares a function without a code section
	noBody, err := hex.DecodeString("0061736d01000000010401600000030201000708010463616c6c0000")
	require.NoError(t, err)
	for _, code := range [][]byte{nil, []byte("garbage"), {0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}, noBody} {
		res, err := env.engine.RunDeploy(context.Background(), code, env.address)
		assert.ErrorIs(t, err, ErrPreprocessing)
		assert.Equal(t, PhasePreprocessingFailed, res.Phase)
		assert.True(t, res.Phase.IsPrecondition())
		assert.Nil(t, res.Effects)
	}
	assert.Equal(t, env.genesis, env.engine.State().Head())
}

func TestAddOnNeverWrittenKey(t *testing.T) {
	env := newTestEnv(t)
	key := ledger.URefKey(ledger.Address{0x42})
	_, err := env.engine.ApplyEffect(key, ledger.Add(ledger.UInt64(5)))
	require.NoError(t, err)

	v, err := env.engine.Query(nil, key)
	require.NoError(t, err)
	assert.Equal(t, ledger.UInt64(5), v)

	head := env.engine.State().Head()
	_, err = env.engine.ApplyEffect(key, ledger.Add(ledger.String("x")))
	assert.ErrorIs(t, err, ErrTypeMismatch)
	assert.Equal(t, head, env.engine.State().Head())
}

func TestAddThroughContract(t *testing.T) {
	env := newTestEnv(t)
	res, err := env.exec(t, contracts.StoreNamed, ledger.String("counter"), ledger.UInt64(10))
	require.NoError(t, err)
	_, err = env.engine.Commit(res.Effects)
	require.NoError(t, err)

	// two deploys against the same pre-state, their adds commute
	r1, err := env.exec(t, contracts.AddNamed, ledger.String("counter"), ledger.UInt64(1))
	require.NoError(t, err)
	r2, err := env.exec(t, contracts.AddNamed, ledger.String("counter"), ledger.UInt64(2))
	require.NoError(t, err)
	_, err = env.engine.Commit(r2.Effects, r1.Effects)
	require.NoError(t, err)

	v, err := env.engine.Query(nil, ledger.AccountKey(env.address), "counter")
	require.NoError(t, err)
	assert.Equal(t, ledger.UInt64(13), v)
}

func TestSignatureValidation(t *testing.T) {
	env := newTestEnv(t)

	d := env.deploy(t, contracts.CheckSystemContractURefsAccessRights)
	d.Args = contract.Args{ledger.UInt64(1)}
	res, err := env.engine.Execute(context.Background(), d)
	assert.ErrorIs(t, err, ErrSignature)
	assert.Equal(t, PhaseReceived, res.Phase)

	d = env.deploy(t, contracts.CheckSystemContractURefsAccessRights)
	d.Alg = "secp256k1"
	assert.ErrorIs(t, env.engine.ValidateSignatures(d), ErrSignature)

	// valid signature by a key that does not own the address
	other := ed25519.NewKeyFromSeed(bytes.Repeat([]byte{8}, ed25519.SeedSize))
	d, err = NewDeploy(contracts.CheckSystemContractURefsAccessRights, nil, other)
	require.NoError(t, err)
	d.Address = env.address
	hash, err := d.Hash()
	require.NoError(t, err)
	d.Signature = ed25519.Sign(other, hash[:])
	assert.ErrorIs(t, env.engine.ValidateSignatures(d), ErrSignature)

	// the other key has no account
	d, _ = NewDeploy(contracts.CheckSystemContractURefsAccessRights, nil, other)
	_, err = env.engine.Execute(context.Background(), d)
	assert.ErrorIs(t, err, ErrExecution)
	assert.ErrorIs(t, err, contract.ErrAccountNotFound)
}

func TestRunDeploysParallel(t *testing.T) {
	env := newTestEnv(t)
	var deploys []*Deploy
	for i := 0; i < 16; i++ {
		if i%4 == 3 {
			deploys = append(deploys, env.deploy(t, []byte("bad code")))
			continue
		}
		deploys = append(deploys, env.deploy(t, contracts.StoreNamed, ledger.String("k"), ledger.UInt64(uint64(i))))
	}

	results := env.engine.RunDeploys(context.Background(), deploys)
	require.Len(t, results, len(deploys))
	for i, r := range results {
		assert.Equal(t, env.genesis, r.Result.PreState)
		if i%4 == 3 {
			assert.ErrorIs(t, r.Err, ErrPreprocessing)
			continue
		}
		require.NoError(t, r.Err)
		hash, _ := deploys[i].Hash()
		assert.Equal(t, hash, r.Result.DeployHash)
		assert.Equal(t, 2, r.Result.Effects.Len())
	}
	assert.Equal(t, env.genesis, env.engine.State().Head())
}

func TestCommitAsync(t *testing.T) {
	env := newTestEnv(t)
	var chans []<-chan CommitResult
	for i := 1; i <= 5; i++ {
		effects := ledger.NewEffectSet()
		effects.Transforms[ledger.URefKey(ledger.Address{9})] = ledger.Add(ledger.UInt64(uint64(i)))
		ch, err := env.engine.CommitAsync(effects)
		require.NoError(t, err)
		chans = append(chans, ch)
	}
	var last ledger.Version
	for _, ch := range chans {
		r := <-ch
		require.NoError(t, r.Err)
		assert.Greater(t, r.Version.Height, last.Height)
		last = r.Version
	}
	v, err := env.engine.Query(nil, ledger.URefKey(ledger.Address{9}))
	require.NoError(t, err)
	assert.Equal(t, ledger.UInt64(15), v)

	require.NoError(t, env.engine.Close())
	_, err = env.engine.CommitAsync(ledger.NewEffectSet())
	assert.ErrorIs(t, err, ErrEngineClosed)
}

func TestModuleCache(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.exec(t, contracts.CheckSystemContractURefsAccessRights)
	require.NoError(t, err)
	_, ok := env.engine.modules.Get(ledger.Blake2b256(contracts.CheckSystemContractURefsAccessRights).String())
	assert.True(t, ok)
}
