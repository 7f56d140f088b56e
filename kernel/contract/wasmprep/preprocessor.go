package wasmprep

import (
	"bytes"
	"fmt"

	"github.com/pkg/errors"
	"github.com/xuperchain/wagon/validate"
	"github.com/xuperchain/wagon/wasm"

	"github.com/xuperchain/xengine/kernel/contract"
	"github.com/xuperchain/xengine/kernel/ledger"
)

// WasmPageSize 64KiB per page
const WasmPageSize = 64 * 1024

var (
	ErrEmptyCode      = errors.New("empty bytecode")
	ErrMissingEntry   = errors.New("missing exported entry function")
	ErrMemoryTooLarge = errors.New("memory exceeds limit")
	ErrStartSection   = errors.New("start section is not allowed")
	ErrBodyMismatch   = errors.New("function and code section sizes differ")
	ErrMalformed      = errors.New("malformed module")
)

type Config struct {
	// exported function called on execution
	EntryPoint string
	// max declared or imported memory, in pages
	MaxMemoryPages uint32
}

// Preprocessor validates wasm bytecode before execution
type Preprocessor struct {
	cfg Config
}

var _ contract.Preprocessor = (*Preprocessor)(nil)

func New(cfg Config) *Preprocessor {
	if cfg.EntryPoint == "" {
		cfg.EntryPoint = "call"
	}
	return &Preprocessor{cfg: cfg}
}

// Process decode and check the module, then run Instrument
func (p *Preprocessor) Process(code []byte) (module *contract.Module, err error) {
	// wagon panics on some inputs DecodeModule accepts
	defer func() {
		if r := recover(); r != nil {
			module, err = nil, errors.Wrapf(ErrMalformed, "%v", r)
		}
	}()

	if len(code) == 0 {
		return nil, ErrEmptyCode
	}
	m, err := wasm.DecodeModule(bytes.NewReader(code))
	if err != nil {
		return nil, errors.Wrap(err, "decode module")
	}

	if m.Start != nil {
		return nil, ErrStartSection
	}
	if err := p.checkEntry(m); err != nil {
		return nil, err
	}
	pages, err := p.checkMemory(m)
	if err != nil {
		return nil, err
	}
	if err := checkBodies(m); err != nil {
		return nil, err
	}

	var imports []string
	if m.Import != nil {
		for _, entry := range m.Import.Entries {
			imports = append(imports, entry.ModuleName+"."+entry.FieldName)
		}
	}
	// 无导入的模块可以完整校验, 有导入的模块需要执行器的resolver
	if len(imports) == 0 {
		full, err := wasm.ReadModule(bytes.NewReader(code), nil)
		if err != nil {
			return nil, errors.Wrap(err, "read module")
		}
		if err := validate.VerifyModule(full); err != nil {
			return nil, errors.Wrap(err, "verify module")
		}
	}

	module = &contract.Module{
		Code:        code,
		Hash:        ledger.Blake2b256(code),
		Entry:       p.cfg.EntryPoint,
		Imports:     imports,
		MemoryPages: pages,
	}
	if err := Instrument(module); err != nil {
		return nil, err
	}
	return module, nil
}

func checkBodies(m *wasm.Module) error {
	var funcs, bodies int
	if m.Function != nil {
		funcs = len(m.Function.Types)
	}
	if m.Code != nil {
		bodies = len(m.Code.Bodies)
	}
	if funcs != bodies {
		return errors.Wrapf(ErrBodyMismatch, "%d functions, %d bodies", funcs, bodies)
	}
	return nil
}

func (p *Preprocessor) checkEntry(m *wasm.Module) error {
	if m.Export == nil {
		return errors.Wrapf(ErrMissingEntry, "%s", p.cfg.EntryPoint)
	}
	entry, ok := m.Export.Entries[p.cfg.EntryPoint]
	if !ok || entry.Kind != wasm.ExternalFunction {
		return errors.Wrapf(ErrMissingEntry, "%s", p.cfg.EntryPoint)
	}
	return nil
}

// checkMemory return the largest initial memory in pages
func (p *Preprocessor) checkMemory(m *wasm.Module) (uint32, error) {
	var limits []wasm.ResizableLimits
	if m.Memory != nil {
		for _, mem := range m.Memory.Entries {
			limits = append(limits, mem.Limits)
		}
	}
	if m.Import != nil {
		for _, entry := range m.Import.Entries {
			if mi, ok := entry.Type.(wasm.MemoryImport); ok {
				limits = append(limits, mi.Type.Limits)
			}
		}
	}

	var pages uint32
	for _, l := range limits {
		if p.cfg.MaxMemoryPages > 0 {
			if l.Initial > p.cfg.MaxMemoryPages {
				return 0, errors.Wrap(ErrMemoryTooLarge, fmt.Sprintf("initial %d pages, limit %d", l.Initial, p.cfg.MaxMemoryPages))
			}
			if l.Flags&0x1 != 0 && l.Maximum > p.cfg.MaxMemoryPages {
				return 0, errors.Wrap(ErrMemoryTooLarge, fmt.Sprintf("maximum %d pages, limit %d", l.Maximum, p.cfg.MaxMemoryPages))
			}
		}
		if l.Initial > pages {
			pages = l.Initial
		}
	}
	return pages, nil
}
