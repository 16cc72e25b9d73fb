package dynload

import (
	"errors"
	"maps"
	"sync"

	"github.com/ZenLiuCN/fn"
	"github.com/pkujhd/goloader"
)

// Symbols is a host symbol table modules are linked against.
//
// Dynamics sharing one Symbols may depend on each other.
type Symbols map[string]uintptr

var (
	host     Symbols
	hostErr  error
	hostOnce sync.Once
)

// NewSymbols create a Symbols with the symbols of the host executable
func NewSymbols() (Symbols, error) {
	hostOnce.Do(func() {
		host = make(Symbols)
		hostErr = goloader.RegSymbol(host)
	})
	if hostErr != nil {
		return nil, hostErr
	}
	return maps.Clone(host), nil
}

// Names dump symbol names inside Symbols
func (s Symbols) Names() []string {
	return fn.MapKeys(s)
}

// RegisterSo adds the symbols of a shared object
func (s Symbols) RegisterSo(path string) error {
	return goloader.RegSymbolWithSo(s, path)
}

// RegisterTypes makes the types usable by modules linked against s
func (s Symbols) RegisterTypes(t ...any) {
	goloader.RegTypes(s, t...)
}

var (
	// ErrMissingSymbol occurs when can't found a symbol.
	ErrMissingSymbol = errors.New("missing symbol")
	// ErrAlreadyInitialized occurs when a Dynamic reinitializing.
	ErrAlreadyInitialized = errors.New("already initialized dynamic")
	// ErrLinked occurs when a Dynamic relinking.
	ErrLinked = errors.New("already linked")
	// ErrUninitialized occurs use or link a Dynamic before initialized.
	ErrUninitialized = errors.New("module not initialized")
)
