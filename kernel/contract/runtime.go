package contract

import (
	"github.com/xuperchain/xengine/kernel/ledger"
)

// Runtime capability API exposed to a running contract.
// Every handle passed in must have been granted to the execution.
type Runtime interface {
	// Address of the account the deploy runs as
	Address() ledger.Address
	NamedKeys() ledger.NamedKeys
	GetKey(name string) (ledger.Handle, bool)
	// PutKey binds name in the account's named keys
	PutKey(name string, h ledger.Handle) error

	Read(h ledger.Handle) (ledger.Value, bool, error)
	Write(h ledger.Handle, value ledger.Value) error
	Add(h ledger.Handle, delta ledger.Value) error
	// NewURef stores value in a fresh slot and returns a READ_ADD_WRITE handle
	NewURef(value ledger.Value) (ledger.Handle, error)

	GetArg(i int) (ledger.Value, error)
	Args() Args

	MainPurse() ledger.Handle
	Balance(purse ledger.Handle) (ledger.UInt256, error)

	// Revert returns the error a contract returns to stop with code
	Revert(code uint32) error
	GasUsed() uint64
}
