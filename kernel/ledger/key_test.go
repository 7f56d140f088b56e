package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAddr(b byte) Address {
	var a Address
	for i := range a {
		a[i] = b
	}
	return a
}

func TestKeyStringRoundTrip(t *testing.T) {
	keys := []Key{
		AccountKey(AccountAddress([]byte("alice"))),
		HashKey(Blake2b256([]byte("code"))),
		URefKey(testAddr(7)),
		BalanceKey(testAddr(0xff)),
	}
	for _, k := range keys {
		parsed, err := ParseKey(k.String())
		require.NoError(t, err, k.String())
		assert.Equal(t, k, parsed)

		fromBytes, err := KeyFromBytes(k.Bytes())
		require.NoError(t, err)
		assert.Equal(t, k, fromBytes)
	}

	for _, bad := range []string{"", "uref", "foo-00", "uref-zz", "hash-0102", "account-0OIl"} {
		_, err := ParseKey(bad)
		assert.ErrorIs(t, err, ErrInvalidKey, bad)
	}
	_, err := KeyFromBytes([]byte{9})
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestKeyOrder(t *testing.T) {
	keys := []Key{URefKey(testAddr(1)), AccountKey(testAddr(9)), URefKey(testAddr(0)), HashKey(Hash(testAddr(5)))}
	SortKeys(keys)
	assert.Equal(t, []Key{AccountKey(testAddr(9)), HashKey(Hash(testAddr(5))), URefKey(testAddr(0)), URefKey(testAddr(1))}, keys)
	assert.True(t, keys[0].Less(keys[1]))
	assert.Equal(t, 0, keys[2].Compare(URefKey(testAddr(0))))
}

func TestAccessRights(t *testing.T) {
	cases := []struct {
		rights   AccessRights
		required AccessRights
		ok       bool
	}{
		{AccessRead, AccessRead, true},
		{AccessRead, AccessWrite, false},
		{AccessReadWrite, AccessWrite, true},
		{AccessReadAdd, AccessAdd, true},
		{AccessReadAdd, AccessWrite, false},
		{AccessNone, AccessRead, false},
		{AccessReadAddWrite, AccessReadAddWrite, true},
		{AccessAddWrite, AccessReadWrite, false},
	}
	for _, c := range cases {
		err := c.rights.Check(c.required)
		if c.ok {
			assert.NoError(t, err, "%s needs %s", c.rights, c.required)
		} else {
			assert.ErrorIs(t, err, ErrPermissionDenied, "%s needs %s", c.rights, c.required)
		}
	}
	assert.Equal(t, "READ_ADD_WRITE", AccessReadAddWrite.String())
	assert.Equal(t, "NONE", AccessNone.String())
	assert.True(t, AccessNone.IsNone())
}

func TestHandleDerive(t *testing.T) {
	h := NewURef(testAddr(3), AccessReadWrite)
	assert.True(t, h.IsURef())

	ro, err := h.Derive(AccessRead)
	require.NoError(t, err)
	assert.Equal(t, h.Key(), ro.Key())
	assert.Equal(t, AccessRead, ro.Rights())

	_, err = ro.Derive(AccessReadWrite)
	assert.ErrorIs(t, err, ErrRightsEscalation)
	_, err = h.Derive(AccessAdd)
	assert.ErrorIs(t, err, ErrRightsEscalation)

	assert.ErrorIs(t, ro.Check(AccessWrite), ErrPermissionDenied)
	assert.NoError(t, ro.Check(AccessRead))
}
