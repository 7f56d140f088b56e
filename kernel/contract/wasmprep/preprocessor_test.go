package wasmprep

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xuperchain/xengine/kernel/contract/native"
	"github.com/xuperchain/xengine/kernel/ledger"
)

var (
	magic       = []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}
	typeSec     = []byte{0x01, 0x04, 0x01, 0x60, 0x00, 0x00}
	funcSec     = []byte{0x03, 0x02, 0x01, 0x00}
	exportCall  = []byte{0x07, 0x08, 0x01, 0x04, 'c', 'a', 'l', 'l', 0x00, 0x00}
	exportMain  = []byte{0x07, 0x08, 0x01, 0x04, 'm', 'a', 'i', 'n', 0x00, 0x00}
	startSec    = []byte{0x08, 0x01, 0x00}
	codeSec     = []byte{0x0a, 0x04, 0x01, 0x02, 0x00, 0x0b}
	bigMemSec   = []byte{0x05, 0x04, 0x01, 0x00, 0x80, 0x01}
	smallMemSec = []byte{0x05, 0x03, 0x01, 0x00, 0x02}
	// memory with maximum 200 pages
	maxMemSec = []byte{0x05, 0x05, 0x01, 0x01, 0x01, 0xc8, 0x01}
)

func memImport(initial byte) []byte {
	return []byte{0x02, 0x0f, 0x01, 0x03, 'e', 'n', 'v', 0x06, 'm', 'e', 'm', 'o', 'r', 'y', 0x02, 0x00, initial}
}

func module(sections ...[]byte) []byte {
	out := append([]byte{}, magic...)
	for _, s := range sections {
		out = append(out, s...)
	}
	return out
}

func TestProcessValid(t *testing.T) {
	p := New(Config{MaxMemoryPages: 64})
	code := module(typeSec, funcSec, smallMemSec, exportCall, codeSec)
	m, err := p.Process(code)
	require.NoError(t, err)
	assert.Equal(t, "call", m.Entry)
	assert.Equal(t, ledger.Blake2b256(code), m.Hash)
	assert.Equal(t, uint32(2), m.MemoryPages)
	assert.Empty(t, m.Imports)

	m, err = p.Process(native.Code("anything"))
	require.NoError(t, err)
	assert.Equal(t, ledger.Blake2b256(native.Code("anything")), m.Hash)
}

func TestProcessWithImports(t *testing.T) {
	p := New(Config{MaxMemoryPages: 64})
	m, err := p.Process(module(typeSec, memImport(1), funcSec, exportCall, codeSec))
	require.NoError(t, err)
	assert.Equal(t, []string{"env.memory"}, m.Imports)
	assert.Equal(t, uint32(1), m.MemoryPages)

	_, err = p.Process(module(typeSec, memImport(0x7f), funcSec, exportCall, codeSec))
	assert.ErrorIs(t, err, ErrMemoryTooLarge)
}

func TestProcessRejects(t *testing.T) {
	p := New(Config{MaxMemoryPages: 64})
	cases := []struct {
		name string
		code []byte
		err  error
	}{
		{"empty", nil, ErrEmptyCode},
		{"no-export", module(typeSec, funcSec, codeSec), ErrMissingEntry},
		{"wrong-export", module(typeSec, funcSec, exportMain, codeSec), ErrMissingEntry},
		{"big-memory", module(typeSec, funcSec, bigMemSec, exportCall, codeSec), ErrMemoryTooLarge},
		{"big-maximum", module(typeSec, funcSec, maxMemSec, exportCall, codeSec), ErrMemoryTooLarge},
		{"start", module(typeSec, funcSec, exportCall, startSec, codeSec), ErrStartSection},
		{"no-code", module(typeSec, funcSec, exportCall), ErrBodyMismatch},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := p.Process(c.code)
			assert.ErrorIs(t, err, c.err)
		})
	}

	_, err := p.Process([]byte("definitely not wasm"))
	assert.Error(t, err)
	_, err = p.Process(magic[:4])
	assert.Error(t, err)
}

func TestCustomEntryPoint(t *testing.T) {
	p := New(Config{EntryPoint: "main"})
	_, err := p.Process(module(typeSec, funcSec, exportMain, codeSec))
	require.NoError(t, err)
	_, err = p.Process(module(typeSec, funcSec, exportCall, codeSec))
	assert.ErrorIs(t, err, ErrMissingEntry)
}
