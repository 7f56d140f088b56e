package ledger

import (
	"strings"
)

// Op kind of access a key received during an execution
type Op uint8

const (
	OpNone Op = iota
	OpRead
	OpWrite
	OpAdd
	OpReadWrite
)

func (o Op) String() string {
	switch o {
	case OpRead:
		return "Read"
	case OpWrite:
		return "Write"
	case OpAdd:
		return "Add"
	case OpReadWrite:
		return "ReadWrite"
	}
	return "NoOp"
}

// Then combine o followed by next
func (o Op) Then(next Op) Op {
	switch {
	case o == OpNone:
		return next
	case next == OpNone || o == next:
		return o
	case o == OpReadWrite || next == OpReadWrite:
		return OpReadWrite
	case o == OpRead || next == OpRead:
		return OpReadWrite
	}
	// Write与Add组合
	return OpWrite
}

// EffectSet ops and merged transforms of one execution, one entry per key
type EffectSet struct {
	Ops        map[Key]Op
	Transforms map[Key]Transform
}

func NewEffectSet() *EffectSet {
	return &EffectSet{
		Ops:        make(map[Key]Op),
		Transforms: make(map[Key]Transform),
	}
}

// Keys sorted keys having a transform
func (e *EffectSet) Keys() []Key {
	keys := make([]Key, 0, len(e.Transforms))
	for k := range e.Transforms {
		keys = append(keys, k)
	}
	SortKeys(keys)
	return keys
}

// Len number of transforms
func (e *EffectSet) Len() int {
	return len(e.Transforms)
}

func (e *EffectSet) Transform(key Key) (Transform, bool) {
	t, ok := e.Transforms[key]
	return t, ok
}

func (e *EffectSet) Clone() *EffectSet {
	out := NewEffectSet()
	for k, op := range e.Ops {
		out.Ops[k] = op
	}
	for k, t := range e.Transforms {
		out.Transforms[k] = t
	}
	return out
}

// MergeEffects combine sets in order into a new set, earlier sets first
func MergeEffects(sets ...*EffectSet) (*EffectSet, error) {
	out := NewEffectSet()
	for _, set := range sets {
		if set == nil {
			continue
		}
		for k, op := range set.Ops {
			out.Ops[k] = out.Ops[k].Then(op)
		}
		for _, k := range set.Keys() {
			t := set.Transforms[k]
			prev, ok := out.Transforms[k]
			if !ok {
				out.Transforms[k] = t
				continue
			}
			merged, err := Merge(prev, t)
			if err != nil {
				return nil, err
			}
			out.Transforms[k] = merged
		}
	}
	return out, nil
}

func (e *EffectSet) String() string {
	var sb strings.Builder
	for _, k := range e.Keys() {
		sb.WriteString(k.String())
		sb.WriteString(" => ")
		sb.WriteString(e.Transforms[k].String())
		sb.WriteString("\n")
	}
	return sb.String()
}
