package xengine

import (
	"golang.org/x/crypto/ed25519"

	"github.com/xuperchain/xengine/kernel/ledger"
)

// ValidateSignatures check the deploy signature and that the key owns the address
func (e *EngineState) ValidateSignatures(d *Deploy) error {
	hash, err := d.Hash()
	if err != nil {
		return ErrSignature.Wrap(err)
	}
	if err := verifySignature(hash[:], d.Signature, d.Alg, d.PublicKey); err != nil {
		return err
	}
	if d.Address != ledger.AccountAddress(d.PublicKey) {
		return ErrSignature.More("public key does not own address %s", d.Address)
	}
	return nil
}

func verifySignature(message, signature []byte, alg string, publicKey []byte) error {
	switch alg {
	case SignAlgEd25519:
		if len(publicKey) != ed25519.PublicKeySize {
			return ErrSignature.More("bad public key length %d", len(publicKey))
		}
		if !ed25519.Verify(ed25519.PublicKey(publicKey), message, signature) {
			return ErrSignature.More("verify failed")
		}
		return nil
	}
	return ErrSignature.More("unsupported alg %q", alg)
}
