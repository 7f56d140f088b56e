package kvdb

import (
	"errors"
)

// ErrKeyNotFound is returned by drivers when a key does not exist
var ErrKeyNotFound = errors.New("kvdb: key not found")

// ErrNotFound check if the error means key not found
func ErrNotFound(err error) bool {
	return errors.Is(err, ErrKeyNotFound)
}

// Database KV storage interface implemented by every driver
type Database interface {
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)
	Put(key []byte, value []byte) error
	Delete(key []byte) error
	Close() error
	NewBatch() Batch
	// NewIteratorWithRange iterates over [start, limit), nil limit means no upper bound
	NewIteratorWithRange(start []byte, limit []byte) Iterator
	NewIteratorWithPrefix(prefix []byte) Iterator
}

// Batch collects writes and applies them atomically on Write
type Batch interface {
	ValueSize() int
	Write() error
	Reset()
	Put(key []byte, value []byte) error
	Delete(key []byte) error
}

// Iterator iterates over key/value pairs in key order.
// Key and Value are only valid until the next call of Next.
type Iterator interface {
	Next() bool
	Key() []byte
	Value() []byte
	Error() error
	// Iterator 必须在使用完毕后释放
	Release()
}

// BytesPrefixLimit return the smallest key greater than every key with the prefix,
// nil if no such key exists
func BytesPrefixLimit(prefix []byte) []byte {
	limit := make([]byte, len(prefix))
	copy(limit, prefix)
	for i := len(limit) - 1; i >= 0; i-- {
		if limit[i] < 0xff {
			limit[i]++
			return limit[:i+1]
		}
	}
	return nil
}
