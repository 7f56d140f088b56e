package ledger

import (
	"bytes"
	"fmt"
	"math"
	"sort"

	gmath "github.com/ethereum/go-ethereum/common/math"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/tmthrgd/go-hex"
)

type ValueKind uint8

const (
	KindInt32 ValueKind = iota + 1
	KindUInt64
	KindUInt256
	KindString
	KindBytes
	KindKey
	KindURef
	KindAccount
	KindContract
)

var kindNames = map[ValueKind]string{
	KindInt32:    "Int32",
	KindUInt64:   "UInt64",
	KindUInt256:  "UInt256",
	KindString:   "String",
	KindBytes:    "Bytes",
	KindKey:      "Key",
	KindURef:     "URef",
	KindAccount:  "Account",
	KindContract: "Contract",
}

func (k ValueKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// IsAccumulator whether values of the kind support Add
func (k ValueKind) IsAccumulator() bool {
	return k == KindInt32 || k == KindUInt64 || k == KindUInt256
}

// Value stored payload, values are never mutated after creation
type Value interface {
	Kind() ValueKind
	String() string
}

type Int32 int32

func (Int32) Kind() ValueKind  { return KindInt32 }
func (v Int32) String() string { return fmt.Sprintf("Int32(%d)", int32(v)) }

type UInt64 uint64

func (UInt64) Kind() ValueKind  { return KindUInt64 }
func (v UInt64) String() string { return fmt.Sprintf("UInt64(%d)", uint64(v)) }

// UInt256 256-bit unsigned accumulator, used for balances
type UInt256 struct {
	v uint256.Int
}

func NewUInt256(n uint64) UInt256 {
	var u UInt256
	u.v.SetUint64(n)
	return u
}

// ParseUInt256 parse a decimal string
func ParseUInt256(s string) (UInt256, error) {
	var u UInt256
	n, err := uint256.FromDecimal(s)
	if err != nil {
		return u, errors.Wrapf(err, "parse uint256 %q", s)
	}
	u.v = *n
	return u, nil
}

// Int return a copy of the underlying integer
func (v UInt256) Int() *uint256.Int {
	return new(uint256.Int).Set(&v.v)
}

func (UInt256) Kind() ValueKind  { return KindUInt256 }
func (v UInt256) String() string { return "UInt256(" + v.v.Dec() + ")" }

type String string

func (String) Kind() ValueKind  { return KindString }
func (v String) String() string { return fmt.Sprintf("String(%q)", string(v)) }

type Bytes []byte

func (Bytes) Kind() ValueKind  { return KindBytes }
func (v Bytes) String() string { return "Bytes(" + hex.EncodeToString(v) + ")" }

// KeyValue a bare key stored as data, grants no rights
type KeyValue struct {
	Key Key
}

func (KeyValue) Kind() ValueKind  { return KindKey }
func (v KeyValue) String() string { return "Key(" + v.Key.String() + ")" }

// URefValue a handle stored as data
type URefValue struct {
	Handle Handle
}

func (URefValue) Kind() ValueKind  { return KindURef }
func (v URefValue) String() string { return "URef(" + v.Handle.String() + ")" }

// NamedKeys name -> handle bindings of an account or contract
type NamedKeys map[string]Handle

// Names sorted names
func (n NamedKeys) Names() []string {
	names := make([]string, 0, len(n))
	for name := range n {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (n NamedKeys) Clone() NamedKeys {
	out := make(NamedKeys, len(n))
	for k, v := range n {
		out[k] = v
	}
	return out
}

type Account struct {
	PublicKey []byte
	MainPurse Handle
	NamedKeys NamedKeys
}

func (*Account) Kind() ValueKind { return KindAccount }
func (v *Account) String() string {
	return fmt.Sprintf("Account{purse:%s,keys:%v}", v.MainPurse, v.NamedKeys.Names())
}

// WithNamedKey copy of the account with one more binding
func (v *Account) WithNamedKey(name string, h Handle) *Account {
	nk := v.NamedKeys.Clone()
	nk[name] = h
	return &Account{PublicKey: v.PublicKey, MainPurse: v.MainPurse, NamedKeys: nk}
}

type Contract struct {
	Code            []byte
	NamedKeys       NamedKeys
	ProtocolVersion uint32
}

func (*Contract) Kind() ValueKind { return KindContract }
func (v *Contract) String() string {
	return fmt.Sprintf("Contract{code:%d bytes,keys:%v,version:%d}", len(v.Code), v.NamedKeys.Names(), v.ProtocolVersion)
}

// CloneValue detach v from any byte slice or map the caller still holds
func CloneValue(v Value) Value {
	switch v := v.(type) {
	case Bytes:
		return append(Bytes(nil), v...)
	case *Account:
		return &Account{
			PublicKey: append([]byte(nil), v.PublicKey...),
			MainPurse: v.MainPurse,
			NamedKeys: v.NamedKeys.Clone(),
		}
	case *Contract:
		return &Contract{
			Code:            append([]byte(nil), v.Code...),
			NamedKeys:       v.NamedKeys.Clone(),
			ProtocolVersion: v.ProtocolVersion,
		}
	}
	return v
}

// Zero accumulator identity of the kind
func Zero(kind ValueKind) (Value, error) {
	switch kind {
	case KindInt32:
		return Int32(0), nil
	case KindUInt64:
		return UInt64(0), nil
	case KindUInt256:
		return UInt256{}, nil
	}
	return nil, errors.Wrapf(ErrTypeMismatch, "%s is not an accumulator", kind)
}

// Accumulate compute value ⊕ delta, both must be the same accumulator kind
func Accumulate(value, delta Value) (Value, error) {
	if value == nil || delta == nil {
		return nil, errors.Wrap(ErrTypeMismatch, "nil operand")
	}
	if !delta.Kind().IsAccumulator() || value.Kind() != delta.Kind() {
		return nil, errors.Wrapf(ErrTypeMismatch, "can not add %s to %s", delta.Kind(), value.Kind())
	}

	switch v := value.(type) {
	case Int32:
		sum := int64(v) + int64(delta.(Int32))
		if sum > math.MaxInt32 || sum < math.MinInt32 {
			return nil, errors.Wrapf(ErrOverflow, "%d + %d", v, delta)
		}
		return Int32(sum), nil
	case UInt64:
		sum, overflow := gmath.SafeAdd(uint64(v), uint64(delta.(UInt64)))
		if overflow {
			return nil, errors.Wrapf(ErrOverflow, "%d + %d", v, delta)
		}
		return UInt64(sum), nil
	case UInt256:
		d := delta.(UInt256)
		var out UInt256
		if _, overflow := out.v.AddOverflow(&v.v, &d.v); overflow {
			return nil, errors.Wrapf(ErrOverflow, "%s + %s", v, d)
		}
		return out, nil
	}
	return nil, errors.Wrapf(ErrTypeMismatch, "unsupported %s", value.Kind())
}

// ValueEqual structural equality through the canonical encoding
func ValueEqual(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ea, err := EncodeValue(a)
	if err != nil {
		return false
	}
	eb, err := EncodeValue(b)
	if err != nil {
		return false
	}
	return bytes.Equal(ea, eb)
}
