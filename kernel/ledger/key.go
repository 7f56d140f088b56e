package ledger

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/btcsuite/btcutil/base58"
	"github.com/pkg/errors"
	"github.com/tmthrgd/go-hex"
	"golang.org/x/crypto/blake2b"
)

// AddrLen length of every key address
const AddrLen = 32

// KeyLen length of the canonical key encoding: tag || addr
const KeyLen = AddrLen + 1

type KeyTag uint8

const (
	KeyAccount KeyTag = iota
	KeyHash
	KeyURef
	KeyBalance
)

var keyTagNames = map[KeyTag]string{
	KeyAccount: "account",
	KeyHash:    "hash",
	KeyURef:    "uref",
	KeyBalance: "balance",
}

func (t KeyTag) String() string {
	if name, ok := keyTagNames[t]; ok {
		return name
	}
	return fmt.Sprintf("tag(%d)", uint8(t))
}

func (t KeyTag) valid() bool {
	return t <= KeyBalance
}

type Address [AddrLen]byte

func (a Address) String() string {
	return base58.Encode(a[:])
}

// AccountAddress derive an account address from its public key
func AccountAddress(publicKey []byte) Address {
	return Address(blake2b.Sum256(publicKey))
}

// ParseAddress parse a base58 encoded account address
func ParseAddress(s string) (Address, error) {
	var addr Address
	raw := base58.Decode(s)
	if len(raw) != AddrLen {
		return addr, errors.Wrapf(ErrInvalidKey, "bad address %q", s)
	}
	copy(addr[:], raw)
	return addr, nil
}

// Hash is a blake2b-256 digest
type Hash [32]byte

func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// ParseHash parse a hex encoded hash
func ParseHash(s string) (Hash, error) {
	var h Hash
	raw, err := hex.DecodeString(s)
	if err != nil || len(raw) != len(h) {
		return h, errors.Errorf("bad hash %q", s)
	}
	copy(h[:], raw)
	return h, nil
}

// Blake2b256 hash the concatenation of data
func Blake2b256(data ...[]byte) Hash {
	h, _ := blake2b.New256(nil)
	for _, d := range data {
		h.Write(d)
	}
	var out Hash
	copy(out[:], h.Sum(nil))
	return out
}

// Key addressable slot of global state, comparable and totally ordered
type Key struct {
	Tag  KeyTag
	Addr Address
}

func AccountKey(addr Address) Key {
	return Key{Tag: KeyAccount, Addr: addr}
}

func HashKey(h Hash) Key {
	return Key{Tag: KeyHash, Addr: Address(h)}
}

func URefKey(addr Address) Key {
	return Key{Tag: KeyURef, Addr: addr}
}

func BalanceKey(addr Address) Key {
	return Key{Tag: KeyBalance, Addr: addr}
}

// Bytes canonical encoding
func (k Key) Bytes() []byte {
	buf := make([]byte, KeyLen)
	buf[0] = byte(k.Tag)
	copy(buf[1:], k.Addr[:])
	return buf
}

func KeyFromBytes(b []byte) (Key, error) {
	var k Key
	if len(b) != KeyLen || !KeyTag(b[0]).valid() {
		return k, errors.Wrapf(ErrInvalidKey, "bad key bytes %x", b)
	}
	k.Tag = KeyTag(b[0])
	copy(k.Addr[:], b[1:])
	return k, nil
}

// Compare order by (tag, addr)
func (k Key) Compare(o Key) int {
	if k.Tag != o.Tag {
		if k.Tag < o.Tag {
			return -1
		}
		return 1
	}
	return bytes.Compare(k.Addr[:], o.Addr[:])
}

func (k Key) Less(o Key) bool {
	return k.Compare(o) < 0
}

func (k Key) String() string {
	if k.Tag == KeyAccount {
		return k.Tag.String() + "-" + k.Addr.String()
	}
	return k.Tag.String() + "-" + hex.EncodeToString(k.Addr[:])
}

// ParseKey parse the String form of a key
func ParseKey(s string) (Key, error) {
	var k Key
	idx := strings.IndexByte(s, '-')
	if idx < 0 {
		return k, errors.Wrapf(ErrInvalidKey, "no tag in %q", s)
	}
	prefix, body := s[:idx], s[idx+1:]
	found := false
	for tag, name := range keyTagNames {
		if name == prefix {
			k.Tag, found = tag, true
			break
		}
	}
	if !found {
		return k, errors.Wrapf(ErrInvalidKey, "unknown tag %q", prefix)
	}

	if k.Tag == KeyAccount {
		addr, err := ParseAddress(body)
		if err != nil {
			return k, err
		}
		k.Addr = addr
		return k, nil
	}
	raw, err := hex.DecodeString(body)
	if err != nil || len(raw) != AddrLen {
		return k, errors.Wrapf(ErrInvalidKey, "bad address in %q", s)
	}
	copy(k.Addr[:], raw)
	return k, nil
}

// SortKeys sort keys in place
func SortKeys(keys []Key) {
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
}
