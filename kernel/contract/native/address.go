package native

import (
	"encoding/binary"

	"github.com/xuperchain/xengine/kernel/ledger"
)

// AddressGenerator deterministic slot addresses seeded by the deploy hash,
// the same deploy always allocates the same addresses in the same order
type AddressGenerator struct {
	seed  ledger.Hash
	count uint64
}

func NewAddressGenerator(seed ledger.Hash) *AddressGenerator {
	return &AddressGenerator{seed: seed}
}

func (g *AddressGenerator) Next() ledger.Address {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], g.count)
	g.count++
	return ledger.Address(ledger.Blake2b256(g.seed[:], buf[:]))
}
