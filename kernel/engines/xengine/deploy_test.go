package xengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xuperchain/xengine/kernel/ledger"
)

func TestDeployHashFieldBoundaries(t *testing.T) {
	hash := func(d *Deploy) ledger.Hash {
		h, err := d.Hash()
		require.NoError(t, err)
		return h
	}
	session := []byte("session")

	a := &Deploy{Session: session, PublicKey: []byte("ab"), Alg: "c"}
	b := &Deploy{Session: session, PublicKey: []byte("a"), Alg: "bc"}
	assert.NotEqual(t, hash(a), hash(b))

	a = &Deploy{Session: session, PublicKey: []byte("ab"), Alg: "c"}
	b = &Deploy{Session: session, PublicKey: []byte("ab"), Alg: "c"}
	assert.Equal(t, hash(a), hash(b))

	// the signature is not covered
	b.Signature = []byte("sig")
	assert.Equal(t, hash(a), hash(b))

	b.Args = append(b.Args, ledger.UInt64(1))
	assert.NotEqual(t, hash(a), hash(b))
}
