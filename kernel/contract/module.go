package contract

import (
	"github.com/xuperchain/xengine/kernel/ledger"
)

// Module bytecode that passed preprocessing and is ready to execute
type Module struct {
	Code []byte
	// blake2b-256 of Code
	Hash ledger.Hash
	// exported entry function
	Entry string
	// names of imported host functions, module.field
	Imports     []string
	MemoryPages uint32
}

// Preprocessor validates raw bytecode into a Module.
// Error strings are reported verbatim to the deploy sender.
type Preprocessor interface {
	Process(code []byte) (*Module, error)
}
