// 全局状态约束接口定义
package ledger

import (
	"fmt"
)

// StateReader reads committed values
type StateReader interface {
	// Get return the value of key, false if absent
	Get(key Key) (Value, bool, error)
}

// Version identifies an immutable committed state
type Version struct {
	Height uint64
	Root   Hash
}

func (v Version) String() string {
	return fmt.Sprintf("%d:%s", v.Height, v.Root)
}

// Snapshot an immutable view of global state at one version
type Snapshot interface {
	StateReader
	Version() Version
}

// GlobalState durable versioned key value mapping, mutated only by Commit
type GlobalState interface {
	// Snapshot of the current head
	Snapshot() Snapshot
	// SnapshotAt reopens a historical version by its root
	SnapshotAt(root Hash) (Snapshot, error)
	Read(snapshot Snapshot, key Key) (Value, bool, error)
	// Commit applies effects atomically on top of the current head
	Commit(effects *EffectSet) (Version, error)
	Head() Version
	Close() error
}
