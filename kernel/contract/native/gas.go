package native

import (
	"github.com/pkg/errors"

	"github.com/xuperchain/xengine/kernel/contract"
)

// host call costs
const (
	GasBase    = 100
	GasRead    = 20
	GasWrite   = 40
	GasAdd     = 40
	GasNewURef = 60
	GasPutKey  = 40
	GasGetArg  = 5
	GasPerByte = 1
)

// GasMeter counts gas of one execution, once exhausted every charge fails
type GasMeter struct {
	limit uint64
	used  uint64
}

func NewGasMeter(limit uint64) *GasMeter {
	return &GasMeter{limit: limit}
}

func (g *GasMeter) Charge(cost uint64) error {
	if cost > g.limit-g.used {
		g.used = g.limit
		return errors.Wrapf(contract.ErrOutOfGas, "limit %d", g.limit)
	}
	g.used += cost
	return nil
}

func (g *GasMeter) Used() uint64 {
	return g.used
}

func (g *GasMeter) Limit() uint64 {
	return g.limit
}
