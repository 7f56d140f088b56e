package ledger

import (
	"fmt"

	"github.com/pkg/errors"
)

// Handle capability handle: a key plus the rights granted through it.
// Rights belong to the handle, never to the slot.
type Handle struct {
	key    Key
	rights AccessRights
}

func NewHandle(key Key, rights AccessRights) Handle {
	return Handle{key: key, rights: rights}
}

// NewURef handle on an internal reference slot
func NewURef(addr Address, rights AccessRights) Handle {
	return Handle{key: URefKey(addr), rights: rights}
}

// Key the rights-stripped key of the slot
func (h Handle) Key() Key {
	return h.key
}

func (h Handle) Rights() AccessRights {
	return h.rights
}

func (h Handle) IsURef() bool {
	return h.key.Tag == KeyURef
}

// Derive a handle with equal or lesser rights
func (h Handle) Derive(rights AccessRights) (Handle, error) {
	if !h.rights.Contains(rights) {
		return Handle{}, errors.Wrapf(ErrRightsEscalation, "%s from %s", rights, h.rights)
	}
	return Handle{key: h.key, rights: rights}, nil
}

// Check required rights against the handle
func (h Handle) Check(required AccessRights) error {
	if err := h.rights.Check(required); err != nil {
		return errors.WithMessagef(err, "key %s", h.key)
	}
	return nil
}

func (h Handle) String() string {
	return fmt.Sprintf("%s-%03b", h.key, uint8(h.rights))
}
