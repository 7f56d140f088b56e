package wasmprep

import (
	"github.com/xuperchain/xengine/kernel/contract"
)

// Instrument is where gas metering and stack limit injection would rewrite
// the module. Gas is charged per host call by the executor, so the module
// is left unchanged.
func Instrument(m *contract.Module) error {
	return nil
}
