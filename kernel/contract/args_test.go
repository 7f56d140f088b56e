package contract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xuperchain/xengine/kernel/ledger"
)

func TestArgs(t *testing.T) {
	purse := ledger.NewURef(ledger.Address{1}, ledger.AccessReadAddWrite)
	args := Args{
		ledger.URefValue{Handle: purse},
		ledger.UInt64(7),
		ledger.String("hi"),
		ledger.KeyValue{Key: ledger.HashKey(ledger.Hash{2})},
	}

	h, err := args.URef(0)
	require.NoError(t, err)
	assert.Equal(t, purse, h)
	n, err := args.UInt64(1)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), n)
	s, err := args.String(2)
	require.NoError(t, err)
	assert.Equal(t, "hi", s)
	k, err := args.Key(3)
	require.NoError(t, err)
	assert.Equal(t, ledger.HashKey(ledger.Hash{2}), k)

	_, err = args.URef(1)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = args.UInt64(2)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = args.URef(4)
	assert.ErrorIs(t, err, ErrMissingArgument)
	_, err = args.Get(-1)
	assert.ErrorIs(t, err, ErrMissingArgument)

	assert.Equal(t, []ledger.Handle{purse}, args.Handles())
}

func TestRevertCode(t *testing.T) {
	code, ok := RevertCode(&RevertError{Code: 100})
	assert.True(t, ok)
	assert.Equal(t, uint32(100), code)
	_, ok = RevertCode(ErrTrap)
	assert.False(t, ok)
}

type nopExecutor struct{}

func (nopExecutor) Exec(_ context.Context, cfg *ExecConfig) (*ExecResult, error) {
	return &ExecResult{Effects: ledger.NewEffectSet()}, nil
}

func TestExecutorRegistry(t *testing.T) {
	Register("nop-test", func(*ExecutorConfig) (Executor, error) { return nopExecutor{}, nil })
	assert.Panics(t, func() {
		Register("nop-test", func(*ExecutorConfig) (Executor, error) { return nopExecutor{}, nil })
	})

	exec, err := CreateExecutor("nop-test", &ExecutorConfig{})
	require.NoError(t, err)
	res, err := exec.Exec(context.TODO(), &ExecConfig{})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Effects.Len())

	_, err = CreateExecutor("missing", &ExecutorConfig{})
	assert.Error(t, err)
}
