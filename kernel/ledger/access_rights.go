package ledger

import (
	"strings"

	"github.com/pkg/errors"
)

// AccessRights 三个独立权限位
type AccessRights uint8

const (
	AccessNone  AccessRights = 0
	AccessRead  AccessRights = 1
	AccessWrite AccessRights = 2
	AccessAdd   AccessRights = 4

	AccessReadWrite    = AccessRead | AccessWrite
	AccessReadAdd      = AccessRead | AccessAdd
	AccessAddWrite     = AccessAdd | AccessWrite
	AccessReadAddWrite = AccessRead | AccessAdd | AccessWrite
)

func (r AccessRights) IsReadable() bool {
	return r&AccessRead != 0
}

func (r AccessRights) IsWriteable() bool {
	return r&AccessWrite != 0
}

func (r AccessRights) IsAddable() bool {
	return r&AccessAdd != 0
}

// IsNone an inert handle grants nothing
func (r AccessRights) IsNone() bool {
	return r == AccessNone
}

// Contains whether every flag of other is set in r
func (r AccessRights) Contains(other AccessRights) bool {
	return r&other == other
}

func (r AccessRights) Valid() bool {
	return r <= AccessReadAddWrite
}

// Check fails with ErrPermissionDenied naming the missing rights
func (r AccessRights) Check(required AccessRights) error {
	if r.Contains(required) {
		return nil
	}
	return errors.Wrapf(ErrPermissionDenied, "need %s, have %s", required&^r, r)
}

func (r AccessRights) String() string {
	if r == AccessNone {
		return "NONE"
	}
	var parts []string
	if r.IsReadable() {
		parts = append(parts, "READ")
	}
	if r.IsAddable() {
		parts = append(parts, "ADD")
	}
	if r.IsWriteable() {
		parts = append(parts, "WRITE")
	}
	return strings.Join(parts, "_")
}
