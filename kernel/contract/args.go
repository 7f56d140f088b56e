package contract

import (
	"github.com/pkg/errors"

	"github.com/xuperchain/xengine/kernel/ledger"
)

// Args positional deploy arguments
type Args []ledger.Value

// Get return the argument at index i, ErrMissingArgument when absent
func (a Args) Get(i int) (ledger.Value, error) {
	if i < 0 || i >= len(a) || a[i] == nil {
		return nil, errors.Wrapf(ErrMissingArgument, "index %d", i)
	}
	return a[i], nil
}

func (a Args) URef(i int) (ledger.Handle, error) {
	v, err := a.Get(i)
	if err != nil {
		return ledger.Handle{}, err
	}
	u, ok := v.(ledger.URefValue)
	if !ok {
		return ledger.Handle{}, invalidArg(i, ledger.KindURef, v)
	}
	return u.Handle, nil
}

func (a Args) UInt64(i int) (uint64, error) {
	v, err := a.Get(i)
	if err != nil {
		return 0, err
	}
	u, ok := v.(ledger.UInt64)
	if !ok {
		return 0, invalidArg(i, ledger.KindUInt64, v)
	}
	return uint64(u), nil
}

func (a Args) String(i int) (string, error) {
	v, err := a.Get(i)
	if err != nil {
		return "", err
	}
	s, ok := v.(ledger.String)
	if !ok {
		return "", invalidArg(i, ledger.KindString, v)
	}
	return string(s), nil
}

func (a Args) Key(i int) (ledger.Key, error) {
	v, err := a.Get(i)
	if err != nil {
		return ledger.Key{}, err
	}
	k, ok := v.(ledger.KeyValue)
	if !ok {
		return ledger.Key{}, invalidArg(i, ledger.KindKey, v)
	}
	return k.Key, nil
}

// Handles handles passed in as URef arguments
func (a Args) Handles() []ledger.Handle {
	var out []ledger.Handle
	for _, v := range a {
		if u, ok := v.(ledger.URefValue); ok {
			out = append(out, u.Handle)
		}
	}
	return out
}

func invalidArg(i int, want ledger.ValueKind, got ledger.Value) error {
	return errors.Wrapf(ErrInvalidArgument, "index %d: want %s, got %s", i, want, got.Kind())
}
