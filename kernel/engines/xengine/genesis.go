package xengine

import (
	"github.com/xuperchain/xengine/kernel/common/xconfig"
	"github.com/xuperchain/xengine/kernel/ledger"
)

const (
	genesisInstallerSeed = "xengine/genesis/installer/"
	genesisPurseSeed     = "xengine/genesis/purse/"
)

// GenesisInstallerURef slot naming the installer contract, same for every account
func GenesisInstallerURef(name string) ledger.Handle {
	addr := ledger.Address(ledger.Blake2b256([]byte(genesisInstallerSeed + name)))
	return ledger.NewURef(addr, ledger.AccessRead)
}

// GenesisPurse main purse of a genesis account
func GenesisPurse(publicKey []byte) ledger.Handle {
	addr := ledger.Address(ledger.Blake2b256([]byte(genesisPurseSeed), publicKey))
	return ledger.NewURef(addr, ledger.AccessReadAddWrite)
}

// GenesisEffects the effect set building the initial state:
// every installer contract is stored under its code hash and referenced
// by a read-only URef bound in every account's named keys
func GenesisEffects(cfg *xconfig.GenesisConf) (*ledger.EffectSet, error) {
	effects := ledger.NewEffectSet()
	installers := make(ledger.NamedKeys, len(cfg.Contracts))
	for _, c := range cfg.Contracts {
		if len(c.Code) == 0 {
			return nil, ErrGenesis.More("contract %s has no code", c.Name)
		}
		if _, dup := installers[c.Name]; dup {
			return nil, ErrGenesis.More("duplicate contract %s", c.Name)
		}
		codeHash := ledger.Blake2b256(c.Code)
		effects.Transforms[ledger.HashKey(codeHash)] = ledger.Write(&ledger.Contract{
			Code:            c.Code,
			NamedKeys:       ledger.NamedKeys{},
			ProtocolVersion: cfg.ProtocolVersion,
		})
		slot := GenesisInstallerURef(c.Name)
		effects.Transforms[slot.Key()] = ledger.Write(ledger.KeyValue{Key: ledger.HashKey(codeHash)})
		installers[c.Name] = slot
	}

	for _, acct := range cfg.Accounts {
		if len(acct.PublicKey) == 0 {
			return nil, ErrGenesis.More("account without public key")
		}
		address := ledger.AccountAddress(acct.PublicKey)
		if _, dup := effects.Transforms[ledger.AccountKey(address)]; dup {
			return nil, ErrGenesis.More("duplicate account %s", address)
		}
		balance := ledger.NewUInt256(0)
		if acct.Balance != "" {
			var err error
			if balance, err = ledger.ParseUInt256(acct.Balance); err != nil {
				return nil, ErrGenesis.Wrap(err)
			}
		}
		purse := GenesisPurse(acct.PublicKey)
		effects.Transforms[ledger.AccountKey(address)] = ledger.Write(&ledger.Account{
			PublicKey: acct.PublicKey,
			MainPurse: purse,
			NamedKeys: installers.Clone(),
		})
		effects.Transforms[ledger.BalanceKey(purse.Key().Addr)] = ledger.Write(balance)
	}
	return effects, nil
}

// Genesis commit the initial state, only allowed on an empty global state
func (e *EngineState) Genesis(cfg *xconfig.GenesisConf) (ledger.Version, error) {
	if head := e.state.Head(); head.Height != 0 {
		return head, ErrGenesis.More("state already at height %d", head.Height)
	}
	effects, err := GenesisEffects(cfg)
	if err != nil {
		return e.state.Head(), err
	}
	version, err := e.commitOne(effects)
	if err != nil {
		return version, err
	}
	e.log.Info("genesis committed", "version", version, "accounts", len(cfg.Accounts), "contracts", len(cfg.Contracts))
	return version, nil
}
