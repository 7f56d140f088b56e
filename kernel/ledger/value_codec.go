package ledger

import (
	"github.com/gogo/protobuf/proto"
	"github.com/golang/snappy"
	"github.com/pkg/errors"
)

// 值的持久化编码, 手写的protobuf消息

type pbHandle struct {
	Tag    uint32 `protobuf:"varint,1,opt,name=tag,proto3" json:"tag,omitempty"`
	Addr   []byte `protobuf:"bytes,2,opt,name=addr,proto3" json:"addr,omitempty"`
	Rights uint32 `protobuf:"varint,3,opt,name=rights,proto3" json:"rights,omitempty"`
}

func (m *pbHandle) Reset()         { *m = pbHandle{} }
func (m *pbHandle) String() string { return proto.CompactTextString(m) }
func (*pbHandle) ProtoMessage()    {}

type pbNamedKey struct {
	Name   string    `protobuf:"bytes,1,opt,name=name,proto3" json:"name,omitempty"`
	Handle *pbHandle `protobuf:"bytes,2,opt,name=handle,proto3" json:"handle,omitempty"`
}

func (m *pbNamedKey) Reset()         { *m = pbNamedKey{} }
func (m *pbNamedKey) String() string { return proto.CompactTextString(m) }
func (*pbNamedKey) ProtoMessage()    {}

type pbValue struct {
	Kind      uint32        `protobuf:"varint,1,opt,name=kind,proto3" json:"kind,omitempty"`
	Int       int64         `protobuf:"varint,2,opt,name=int,proto3" json:"int,omitempty"`
	Uint      uint64        `protobuf:"varint,3,opt,name=uint,proto3" json:"uint,omitempty"`
	Data      []byte        `protobuf:"bytes,4,opt,name=data,proto3" json:"data,omitempty"`
	Handle    *pbHandle     `protobuf:"bytes,5,opt,name=handle,proto3" json:"handle,omitempty"`
	NamedKeys []*pbNamedKey `protobuf:"bytes,6,rep,name=named_keys,json=namedKeys,proto3" json:"named_keys,omitempty"`
	PublicKey []byte        `protobuf:"bytes,7,opt,name=public_key,json=publicKey,proto3" json:"public_key,omitempty"`
	Version   uint32        `protobuf:"varint,8,opt,name=version,proto3" json:"version,omitempty"`
}

func (m *pbValue) Reset()         { *m = pbValue{} }
func (m *pbValue) String() string { return proto.CompactTextString(m) }
func (*pbValue) ProtoMessage()    {}

func handleToPb(h Handle) *pbHandle {
	return &pbHandle{Tag: uint32(h.key.Tag), Addr: h.key.Addr[:], Rights: uint32(h.rights)}
}

func handleFromPb(m *pbHandle) (Handle, error) {
	if m == nil || len(m.Addr) != AddrLen || !KeyTag(m.Tag).valid() || !AccessRights(m.Rights).Valid() {
		return Handle{}, errors.Wrap(ErrInvalidValue, "bad handle")
	}
	var addr Address
	copy(addr[:], m.Addr)
	return NewHandle(Key{Tag: KeyTag(m.Tag), Addr: addr}, AccessRights(m.Rights)), nil
}

func namedKeysToPb(nk NamedKeys) []*pbNamedKey {
	out := make([]*pbNamedKey, 0, len(nk))
	for _, name := range nk.Names() {
		out = append(out, &pbNamedKey{Name: name, Handle: handleToPb(nk[name])})
	}
	return out
}

func namedKeysFromPb(list []*pbNamedKey) (NamedKeys, error) {
	nk := make(NamedKeys, len(list))
	for _, item := range list {
		h, err := handleFromPb(item.Handle)
		if err != nil {
			return nil, errors.WithMessagef(err, "named key %s", item.Name)
		}
		nk[item.Name] = h
	}
	return nk, nil
}

// EncodeValue canonical binary encoding, identical values encode identically
func EncodeValue(v Value) ([]byte, error) {
	if v == nil {
		return nil, errors.Wrap(ErrInvalidValue, "nil value")
	}
	m := &pbValue{Kind: uint32(v.Kind())}
	switch val := v.(type) {
	case Int32:
		m.Int = int64(val)
	case UInt64:
		m.Uint = uint64(val)
	case UInt256:
		b := val.v.Bytes32()
		m.Data = b[:]
	case String:
		m.Data = []byte(val)
	case Bytes:
		m.Data = val
	case KeyValue:
		m.Handle = handleToPb(NewHandle(val.Key, AccessNone))
	case URefValue:
		m.Handle = handleToPb(val.Handle)
	case *Account:
		m.PublicKey = val.PublicKey
		m.Handle = handleToPb(val.MainPurse)
		m.NamedKeys = namedKeysToPb(val.NamedKeys)
	case *Contract:
		m.Data = snappy.Encode(nil, val.Code)
		m.NamedKeys = namedKeysToPb(val.NamedKeys)
		m.Version = val.ProtocolVersion
	default:
		return nil, errors.Wrapf(ErrInvalidValue, "unknown value %T", v)
	}
	return proto.Marshal(m)
}

func DecodeValue(data []byte) (Value, error) {
	m := &pbValue{}
	if err := proto.Unmarshal(data, m); err != nil {
		return nil, errors.Wrap(ErrInvalidValue, err.Error())
	}

	switch ValueKind(m.Kind) {
	case KindInt32:
		return Int32(m.Int), nil
	case KindUInt64:
		return UInt64(m.Uint), nil
	case KindUInt256:
		if len(m.Data) > 32 {
			return nil, errors.Wrap(ErrInvalidValue, "uint256 too long")
		}
		var u UInt256
		u.v.SetBytes(m.Data)
		return u, nil
	case KindString:
		return String(m.Data), nil
	case KindBytes:
		return Bytes(append([]byte{}, m.Data...)), nil
	case KindKey:
		h, err := handleFromPb(m.Handle)
		if err != nil {
			return nil, err
		}
		return KeyValue{Key: h.Key()}, nil
	case KindURef:
		h, err := handleFromPb(m.Handle)
		if err != nil {
			return nil, err
		}
		return URefValue{Handle: h}, nil
	case KindAccount:
		purse, err := handleFromPb(m.Handle)
		if err != nil {
			return nil, err
		}
		nk, err := namedKeysFromPb(m.NamedKeys)
		if err != nil {
			return nil, err
		}
		return &Account{PublicKey: m.PublicKey, MainPurse: purse, NamedKeys: nk}, nil
	case KindContract:
		code, err := snappy.Decode(nil, m.Data)
		if err != nil {
			return nil, errors.Wrap(ErrInvalidValue, "contract code: "+err.Error())
		}
		nk, err := namedKeysFromPb(m.NamedKeys)
		if err != nil {
			return nil, err
		}
		return &Contract{Code: code, NamedKeys: nk, ProtocolVersion: m.Version}, nil
	}
	return nil, errors.Wrapf(ErrInvalidValue, "unknown kind %d", m.Kind)
}
