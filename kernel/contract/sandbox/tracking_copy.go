package sandbox

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/xuperchain/xengine/kernel/ledger"
)

var (
	// ErrQueryFailed is returned when a named key path can not be resolved
	ErrQueryFailed = errors.New("query failed")
)

// TrackingCopy buffers reads and writes of one execution over an immutable snapshot.
// It is never shared across executions or goroutines.
type TrackingCopy struct {
	reader ledger.StateReader
	// values fetched from the snapshot
	readCache *MemCache
	// values after this execution's writes and adds
	writeCache *MemCache

	ops        map[ledger.Key]ledger.Op
	transforms map[ledger.Key]ledger.Transform
}

func NewTrackingCopy(reader ledger.StateReader) *TrackingCopy {
	return &TrackingCopy{
		reader:     reader,
		readCache:  NewMemCache(),
		writeCache: NewMemCache(),
		ops:        make(map[ledger.Key]ledger.Op),
		transforms: make(map[ledger.Key]ledger.Transform),
	}
}

// Read needs a readable handle, returns false when the slot is empty
func (tc *TrackingCopy) Read(h ledger.Handle) (ledger.Value, bool, error) {
	if err := h.Check(ledger.AccessRead); err != nil {
		return nil, false, err
	}
	value, ok, err := tc.Get(h.Key())
	if err != nil {
		return nil, false, err
	}
	tc.recordOp(h.Key(), ledger.OpRead)
	return value, ok, nil
}

// Write needs a writeable handle, replaces any earlier transform of the key
func (tc *TrackingCopy) Write(h ledger.Handle, value ledger.Value) error {
	if err := h.Check(ledger.AccessWrite); err != nil {
		return err
	}
	if value == nil {
		return errors.Wrap(ledger.ErrInvalidValue, "nil value")
	}
	key := h.Key()
	value = ledger.CloneValue(value)
	tc.writeCache.Put(key, value)
	tc.transforms[key] = ledger.Write(value)
	tc.recordOp(key, ledger.OpWrite)
	return nil
}

// Add needs an addable handle, the current value must accept delta
func (tc *TrackingCopy) Add(h ledger.Handle, delta ledger.Value) error {
	if err := h.Check(ledger.AccessAdd); err != nil {
		return err
	}
	if delta == nil {
		return errors.Wrap(ledger.ErrInvalidValue, "nil delta")
	}
	key := h.Key()
	current, ok, err := tc.Get(key)
	if err != nil {
		return err
	}
	if !ok {
		if current, err = ledger.Zero(delta.Kind()); err != nil {
			return err
		}
	}
	updated, err := ledger.Accumulate(current, delta)
	if err != nil {
		return err
	}

	next := ledger.Add(delta)
	if prev, exist := tc.transforms[key]; exist {
		if next, err = ledger.Merge(prev, next); err != nil {
			return err
		}
	}
	tc.writeCache.Put(key, updated)
	tc.transforms[key] = next
	tc.recordOp(key, ledger.OpAdd)
	return nil
}

// Get unchecked read used by the runtime's own bookkeeping, records no op
func (tc *TrackingCopy) Get(key ledger.Key) (ledger.Value, bool, error) {
	// Level1: get from writeCache
	if value, found := tc.writeCache.Get(key); found {
		return value, value != nil, nil
	}
	// Level2: get and set from readCache
	if value, found := tc.readCache.Get(key); found {
		return value, value != nil, nil
	}
	value, ok, err := tc.reader.Get(key)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		tc.readCache.PutAbsent(key)
		return nil, false, nil
	}
	tc.readCache.Put(key, value)
	return value, true, nil
}

// Query resolve a named key path starting at key, each step goes through
// the named keys of an account or contract
func (tc *TrackingCopy) Query(key ledger.Key, path ...string) (ledger.Value, error) {
	value, ok, err := tc.Get(key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Wrapf(ErrQueryFailed, "%s not found", key)
	}
	for i, name := range path {
		var named ledger.NamedKeys
		switch v := value.(type) {
		case *ledger.Account:
			named = v.NamedKeys
		case *ledger.Contract:
			named = v.NamedKeys
		default:
			return nil, errors.Wrapf(ErrQueryFailed, "%s at %s is not an account or contract", v.Kind(), strings.Join(path[:i], "/"))
		}
		h, exist := named[name]
		if !exist {
			return nil, errors.Wrapf(ErrQueryFailed, "name %s not found at /%s", name, strings.Join(path[:i], "/"))
		}
		value, ok, err = tc.Get(h.Key())
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errors.Wrapf(ErrQueryFailed, "%s not found", h.Key())
		}
	}
	return value, nil
}

// Effects snapshot of the accumulated ops and transforms
func (tc *TrackingCopy) Effects() *ledger.EffectSet {
	effects := ledger.NewEffectSet()
	for k, op := range tc.ops {
		effects.Ops[k] = op
	}
	for k, t := range tc.transforms {
		effects.Transforms[k] = t
	}
	return effects
}

// ReadKeys keys fetched from the snapshot, in order
func (tc *TrackingCopy) ReadKeys() []ledger.Key {
	return tc.readCache.Keys()
}

func (tc *TrackingCopy) recordOp(key ledger.Key, op ledger.Op) {
	tc.ops[key] = tc.ops[key].Then(op)
}
