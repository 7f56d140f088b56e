package xmodel

import (
	"github.com/pkg/errors"

	"github.com/xuperchain/xengine/kernel/ledger"
)

// VersionedValue one committed value of a key
type VersionedValue struct {
	Height uint64
	Value  ledger.Value
}

// History committed values of key, newest first
func (x *XModel) History(key ledger.Key) ([]VersionedValue, error) {
	it := x.valueTable.NewIteratorWithPrefix(key.Bytes())
	defer it.Release()

	var out []VersionedValue
	for it.Next() {
		k, height, err := parseVersionedKey(it.Key())
		if err != nil {
			return nil, errors.Wrapf(ErrStorage, "%v", err)
		}
		if k != key {
			continue
		}
		value, err := ledger.DecodeValue(it.Value())
		if err != nil {
			return nil, errors.Wrapf(ErrStorage, "decode %s@%d: %v", key, height, err)
		}
		out = append(out, VersionedValue{Height: height, Value: value})
	}
	if err := it.Error(); err != nil {
		return nil, errors.Wrapf(ErrStorage, "%v", err)
	}
	return out, nil
}
