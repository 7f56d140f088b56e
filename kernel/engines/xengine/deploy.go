package xengine

import (
	"encoding/binary"

	"golang.org/x/crypto/ed25519"

	"github.com/xuperchain/xengine/kernel/contract"
	"github.com/xuperchain/xengine/kernel/ledger"
)

// SignAlgEd25519 the supported signature algorithm
const SignAlgEd25519 = "ed25519"

// Deploy a signed request to run session code as an account
type Deploy struct {
	Session   []byte
	Args      contract.Args
	Address   ledger.Address
	PublicKey []byte
	Signature []byte
	Alg       string
}

// NewDeploy build a deploy for the account owning key and sign it
func NewDeploy(session []byte, args contract.Args, key ed25519.PrivateKey) (*Deploy, error) {
	pub := key.Public().(ed25519.PublicKey)
	d := &Deploy{
		Session:   session,
		Args:      args,
		Address:   ledger.AccountAddress(pub),
		PublicKey: pub,
		Alg:       SignAlgEd25519,
	}
	hash, err := d.Hash()
	if err != nil {
		return nil, err
	}
	d.Signature = ed25519.Sign(key, hash[:])
	return d, nil
}

// Hash blake2b-256 over every field except the signature, variable
// length fields carry a big endian length prefix
func (d *Deploy) Hash() (ledger.Hash, error) {
	parts := make([][]byte, 0, 2*len(d.Args)+8)

	codeHash := ledger.Blake2b256(d.Session)
	parts = append(parts, codeHash[:], be32(len(d.Args)))
	for _, arg := range d.Args {
		encoded, err := ledger.EncodeValue(arg)
		if err != nil {
			return ledger.Hash{}, ErrParameter.Wrap(err)
		}
		parts = append(parts, be32(len(encoded)), encoded)
	}
	parts = append(parts,
		be32(len(d.Address)), d.Address[:],
		be32(len(d.PublicKey)), d.PublicKey,
		be32(len(d.Alg)), []byte(d.Alg))
	return ledger.Blake2b256(parts...), nil
}

func be32(n int) []byte {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(n))
	return buf[:]
}
