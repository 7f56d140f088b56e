package xmodel

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/xuperchain/xengine/kernel/ledger"
)

// versionedKey key bytes followed by the inverted height, so the newest
// version of a key sorts first
func versionedKey(key ledger.Key, height uint64) []byte {
	buf := make([]byte, ledger.KeyLen+8)
	copy(buf, key.Bytes())
	binary.BigEndian.PutUint64(buf[ledger.KeyLen:], ^height)
	return buf
}

func parseVersionedKey(raw []byte) (ledger.Key, uint64, error) {
	if len(raw) != ledger.KeyLen+8 {
		return ledger.Key{}, 0, errors.Errorf("bad versioned key %x", raw)
	}
	key, err := ledger.KeyFromBytes(raw[:ledger.KeyLen])
	if err != nil {
		return ledger.Key{}, 0, err
	}
	return key, ^binary.BigEndian.Uint64(raw[ledger.KeyLen:]), nil
}

func encodeVersion(v ledger.Version) []byte {
	buf := make([]byte, 8+len(v.Root))
	binary.BigEndian.PutUint64(buf, v.Height)
	copy(buf[8:], v.Root[:])
	return buf
}

func decodeVersion(raw []byte) (ledger.Version, error) {
	var v ledger.Version
	if len(raw) != 8+len(v.Root) {
		return v, errors.Wrapf(ErrStorage, "bad version record %x", raw)
	}
	v.Height = binary.BigEndian.Uint64(raw)
	copy(v.Root[:], raw[8:])
	return v, nil
}
