// Package contracts Go-native contracts shipped with the engine: genesis
// installers and the contracts used by engine tests and the CLI.
package contracts

import (
	"github.com/pkg/errors"

	"github.com/xuperchain/xengine/kernel/contract"
	"github.com/xuperchain/xengine/kernel/contract/native"
	"github.com/xuperchain/xengine/kernel/ledger"
)

// revert codes
const (
	RevertMissingArgument uint32 = 100
	RevertInvalidArgument uint32 = 101
	RevertMissingKey      uint32 = 102
	RevertValueMismatch   uint32 = 103
)

var (
	MintInstall            = native.RegisterContract("mint-install", noop)
	PosInstall             = native.RegisterContract("pos-install", noop)
	StandardPaymentInstall = native.RegisterContract("standard-payment-install", noop)

	CheckSystemContractURefsAccessRights = native.RegisterContract("check-system-contract-urefs-access-rights", checkSystemContractURefsAccessRights)
	MainPurse                            = native.RegisterContract("main-purse", mainPurse)

	// StoreNamed (name String, value) stores value in a new slot bound to name
	StoreNamed = native.RegisterContract("store-named", storeNamed)
	// WriteNamed (name String, value) overwrites the slot bound to name
	WriteNamed = native.RegisterContract("write-named", writeNamed)
	// AddNamed (name String, delta) adds delta to the slot bound to name
	AddNamed = native.RegisterContract("add-named", addNamed)
	// ReadNamed (name String, expected) reverts unless the slot holds expected
	ReadNamed = native.RegisterContract("read-named", readNamed)
	// WriteURef (handle URef, value) writes through a handle passed as argument
	WriteURef = native.RegisterContract("write-uref", writeURef)
	// AddURef (handle URef, delta) adds through a handle passed as argument
	AddURef = native.RegisterContract("add-uref", addURef)
)

func noop(contract.Runtime) error {
	return nil
}

// every URef bound to the account must be readable only
func checkSystemContractURefsAccessRights(rt contract.Runtime) error {
	for _, name := range rt.NamedKeys().Names() {
		h, _ := rt.GetKey(name)
		if !h.IsURef() {
			continue
		}
		if r := h.Rights(); !r.IsReadable() || r.IsAddable() || r.IsWriteable() {
			return errors.Errorf("named key %s has rights %s", name, r)
		}
	}
	return nil
}

func mainPurse(rt contract.Runtime) error {
	known, err := rt.Args().URef(0)
	if err != nil {
		return revertOnArg(rt, err)
	}
	if known != rt.MainPurse() {
		return errors.New("main purse was not known purse")
	}
	return nil
}

func storeNamed(rt contract.Runtime) error {
	name, value, err := nameAndValue(rt)
	if err != nil {
		return err
	}
	h, err := rt.NewURef(value)
	if err != nil {
		return err
	}
	return rt.PutKey(name, h)
}

func writeNamed(rt contract.Runtime) error {
	h, value, err := namedHandleAndValue(rt)
	if err != nil {
		return err
	}
	return rt.Write(h, value)
}

func addNamed(rt contract.Runtime) error {
	h, delta, err := namedHandleAndValue(rt)
	if err != nil {
		return err
	}
	return rt.Add(h, delta)
}

func readNamed(rt contract.Runtime) error {
	h, expected, err := namedHandleAndValue(rt)
	if err != nil {
		return err
	}
	value, ok, err := rt.Read(h)
	if err != nil {
		return err
	}
	if !ok || !ledger.ValueEqual(value, expected) {
		return rt.Revert(RevertValueMismatch)
	}
	return nil
}

func writeURef(rt contract.Runtime) error {
	h, value, err := handleAndValue(rt)
	if err != nil {
		return err
	}
	return rt.Write(h, value)
}

func addURef(rt contract.Runtime) error {
	h, delta, err := handleAndValue(rt)
	if err != nil {
		return err
	}
	return rt.Add(h, delta)
}

func nameAndValue(rt contract.Runtime) (string, ledger.Value, error) {
	name, err := rt.Args().String(0)
	if err != nil {
		return "", nil, revertOnArg(rt, err)
	}
	value, err := rt.GetArg(1)
	if err != nil {
		return "", nil, revertOnArg(rt, err)
	}
	return name, value, nil
}

func namedHandleAndValue(rt contract.Runtime) (ledger.Handle, ledger.Value, error) {
	name, value, err := nameAndValue(rt)
	if err != nil {
		return ledger.Handle{}, nil, err
	}
	h, ok := rt.GetKey(name)
	if !ok {
		return ledger.Handle{}, nil, rt.Revert(RevertMissingKey)
	}
	return h, value, nil
}

func handleAndValue(rt contract.Runtime) (ledger.Handle, ledger.Value, error) {
	h, err := rt.Args().URef(0)
	if err != nil {
		return ledger.Handle{}, nil, revertOnArg(rt, err)
	}
	value, err := rt.GetArg(1)
	if err != nil {
		return ledger.Handle{}, nil, revertOnArg(rt, err)
	}
	return h, value, nil
}

func revertOnArg(rt contract.Runtime, err error) error {
	if errors.Is(err, contract.ErrMissingArgument) {
		return rt.Revert(RevertMissingArgument)
	}
	if errors.Is(err, contract.ErrInvalidArgument) {
		return rt.Revert(RevertInvalidArgument)
	}
	return err
}
