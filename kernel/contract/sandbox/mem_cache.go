package sandbox

import (
	"github.com/emirpasic/gods/trees/redblacktree"

	"github.com/xuperchain/xengine/kernel/ledger"
)

// cacheEntry value of a key, a nil value records a known-absent key
type cacheEntry struct {
	value ledger.Value
}

// MemCache ordered in-memory key value cache
type MemCache struct {
	tree *redblacktree.Tree
}

func NewMemCache() *MemCache {
	return &MemCache{
		tree: redblacktree.NewWith(keyCompare),
	}
}

// Get return the cached value, found reports whether the key is cached at all
func (m *MemCache) Get(key ledger.Key) (value ledger.Value, found bool) {
	v, ok := m.tree.Get(key)
	if !ok {
		return nil, false
	}
	return v.(*cacheEntry).value, true
}

func (m *MemCache) Put(key ledger.Key, value ledger.Value) {
	m.tree.Put(key, &cacheEntry{value: value})
}

// PutAbsent remember that key has no value
func (m *MemCache) PutAbsent(key ledger.Key) {
	m.tree.Put(key, &cacheEntry{})
}

func (m *MemCache) Len() int {
	return m.tree.Size()
}

// Keys cached keys in order
func (m *MemCache) Keys() []ledger.Key {
	keys := make([]ledger.Key, 0, m.tree.Size())
	for _, k := range m.tree.Keys() {
		keys = append(keys, k.(ledger.Key))
	}
	return keys
}

func keyCompare(a, b interface{}) int {
	return a.(ledger.Key).Compare(b.(ledger.Key))
}
