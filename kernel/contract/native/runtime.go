package native

import (
	"github.com/pkg/errors"

	"github.com/xuperchain/xengine/kernel/contract"
	"github.com/xuperchain/xengine/kernel/contract/sandbox"
	"github.com/xuperchain/xengine/kernel/ledger"
)

var _ contract.Runtime = (*runtime)(nil)

type runtime struct {
	tc      *sandbox.TrackingCopy
	address ledger.Address
	account *ledger.Account
	args    contract.Args
	gas     *GasMeter
	addrGen *AddressGenerator
	// rights granted to this execution per key
	known map[ledger.Key]ledger.AccessRights
}

func newRuntime(cfg *contract.ExecConfig, gas *GasMeter) (*runtime, error) {
	value, ok, err := cfg.TrackingCopy.Get(ledger.AccountKey(cfg.Address))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Wrapf(contract.ErrAccountNotFound, "%s", cfg.Address)
	}
	account, ok := value.(*ledger.Account)
	if !ok {
		return nil, errors.Wrapf(ledger.ErrTypeMismatch, "account slot holds %s", value.Kind())
	}

	rt := &runtime{
		tc:      cfg.TrackingCopy,
		address: cfg.Address,
		account: account,
		args:    cfg.Args,
		gas:     gas,
		addrGen: NewAddressGenerator(cfg.DeployHash),
		known:   make(map[ledger.Key]ledger.AccessRights),
	}
	rt.grant(account.MainPurse)
	for _, h := range account.NamedKeys {
		rt.grant(h)
	}
	// arguments may only narrow rights the account already holds
	for _, h := range cfg.Args.Handles() {
		if err := rt.validate(h); err != nil {
			return nil, err
		}
	}
	return rt, nil
}

func (rt *runtime) grant(h ledger.Handle) {
	rt.known[h.Key()] |= h.Rights()
}

// validate rejects handles the execution was never given
func (rt *runtime) validate(h ledger.Handle) error {
	rights, ok := rt.known[h.Key()]
	if !ok || !rights.Contains(h.Rights()) {
		return errors.Wrapf(contract.ErrForgedReference, "%s", h)
	}
	return nil
}

func (rt *runtime) Address() ledger.Address {
	return rt.address
}

func (rt *runtime) NamedKeys() ledger.NamedKeys {
	return rt.account.NamedKeys.Clone()
}

func (rt *runtime) GetKey(name string) (ledger.Handle, bool) {
	h, ok := rt.account.NamedKeys[name]
	return h, ok
}

func (rt *runtime) PutKey(name string, h ledger.Handle) error {
	if err := rt.gas.Charge(GasPutKey + uint64(len(name))*GasPerByte); err != nil {
		return err
	}
	if err := rt.validate(h); err != nil {
		return err
	}
	updated := rt.account.WithNamedKey(name, h)
	self := ledger.NewHandle(ledger.AccountKey(rt.address), ledger.AccessReadWrite)
	if err := rt.tc.Write(self, updated); err != nil {
		return err
	}
	rt.account = updated
	return nil
}

func (rt *runtime) Read(h ledger.Handle) (ledger.Value, bool, error) {
	if err := rt.gas.Charge(GasRead); err != nil {
		return nil, false, err
	}
	if err := rt.validate(h); err != nil {
		return nil, false, err
	}
	return rt.tc.Read(h)
}

func (rt *runtime) Write(h ledger.Handle, value ledger.Value) error {
	if err := rt.gas.Charge(GasWrite); err != nil {
		return err
	}
	if err := rt.validate(h); err != nil {
		return err
	}
	return rt.tc.Write(h, value)
}

func (rt *runtime) Add(h ledger.Handle, delta ledger.Value) error {
	if err := rt.gas.Charge(GasAdd); err != nil {
		return err
	}
	if err := rt.validate(h); err != nil {
		return err
	}
	return rt.tc.Add(h, delta)
}

func (rt *runtime) NewURef(value ledger.Value) (ledger.Handle, error) {
	if err := rt.gas.Charge(GasNewURef); err != nil {
		return ledger.Handle{}, err
	}
	h := ledger.NewURef(rt.addrGen.Next(), ledger.AccessReadAddWrite)
	if err := rt.tc.Write(h, value); err != nil {
		return ledger.Handle{}, err
	}
	rt.grant(h)
	return h, nil
}

func (rt *runtime) GetArg(i int) (ledger.Value, error) {
	if err := rt.gas.Charge(GasGetArg); err != nil {
		return nil, err
	}
	return rt.args.Get(i)
}

func (rt *runtime) Args() contract.Args {
	return rt.args
}

func (rt *runtime) MainPurse() ledger.Handle {
	return rt.account.MainPurse
}

// Balance needs a readable purse handle, an unfunded purse has zero balance
func (rt *runtime) Balance(purse ledger.Handle) (ledger.UInt256, error) {
	if err := rt.gas.Charge(GasRead); err != nil {
		return ledger.UInt256{}, err
	}
	if err := rt.validate(purse); err != nil {
		return ledger.UInt256{}, err
	}
	if err := purse.Check(ledger.AccessRead); err != nil {
		return ledger.UInt256{}, err
	}
	value, ok, err := rt.tc.Get(ledger.BalanceKey(purse.Key().Addr))
	if err != nil || !ok {
		return ledger.UInt256{}, err
	}
	balance, ok := value.(ledger.UInt256)
	if !ok {
		return ledger.UInt256{}, errors.Wrapf(ledger.ErrTypeMismatch, "balance holds %s", value.Kind())
	}
	return balance, nil
}

func (rt *runtime) Revert(code uint32) error {
	return &contract.RevertError{Code: code}
}

func (rt *runtime) GasUsed() uint64 {
	return rt.gas.Used()
}
