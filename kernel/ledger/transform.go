package ledger

import (
	"fmt"

	"github.com/pkg/errors"
)

type TransformKind uint8

const (
	TransformWrite TransformKind = iota + 1
	TransformAdd
)

// Transform pending change of one key: Write replaces, Add accumulates
type Transform struct {
	Kind  TransformKind
	Value Value
}

func Write(v Value) Transform {
	return Transform{Kind: TransformWrite, Value: v}
}

func Add(delta Value) Transform {
	return Transform{Kind: TransformAdd, Value: delta}
}

func (t Transform) IsWrite() bool {
	return t.Kind == TransformWrite
}

func (t Transform) IsAdd() bool {
	return t.Kind == TransformAdd
}

func (t Transform) String() string {
	switch t.Kind {
	case TransformWrite:
		return "Write(" + t.Value.String() + ")"
	case TransformAdd:
		return "Add(" + t.Value.String() + ")"
	}
	return fmt.Sprintf("Transform(%d)", t.Kind)
}

// Merge combine t1 followed by t2:
//
//	Write(v1), Add(d2) => Write(v1 ⊕ d2)
//	Add(d1),   Add(d2) => Add(d1 ⊕ d2)
//	*,         Write(v2) => Write(v2)
func Merge(t1, t2 Transform) (Transform, error) {
	if t2.IsWrite() {
		return t2, nil
	}
	if !t2.IsAdd() {
		return Transform{}, errors.Errorf("unknown transform kind %d", t2.Kind)
	}

	sum, err := Accumulate(t1.Value, t2.Value)
	if err != nil {
		return Transform{}, err
	}
	switch t1.Kind {
	case TransformWrite:
		return Write(sum), nil
	case TransformAdd:
		return Add(sum), nil
	}
	return Transform{}, errors.Errorf("unknown transform kind %d", t1.Kind)
}

// Apply the transform to the committed value, Add on an absent key starts from zero
func (t Transform) Apply(current Value, exists bool) (Value, error) {
	switch t.Kind {
	case TransformWrite:
		return t.Value, nil
	case TransformAdd:
		if !exists {
			zero, err := Zero(t.Value.Kind())
			if err != nil {
				return nil, err
			}
			current = zero
		}
		return Accumulate(current, t.Value)
	}
	return nil, errors.Errorf("unknown transform kind %d", t.Kind)
}
