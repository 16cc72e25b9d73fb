package dynload

import (
	"io"
	"log"
	"os"
	"strings"
	"unsafe"

	"github.com/ZenLiuCN/fn"
	"github.com/pkujhd/goloader"
)

type (
	//Sym is the code address of an exported function.
	Sym uintptr
	//Dynamic is one module linked from an object file or a serialized linker.
	//
	//Use Steps:
	//
	//	1. Initialize or InitializeSerialized.
	//	2. [Dynamic.Link] to link the code against the host Symbols.
	//	3. Fetch exports and convert them with [As].
	//	4. [Dynamic.Free] to release the code, never done for a module the host still depends on.
	Dynamic struct {
		pkg    string
		sym    Symbols
		linker *goloader.Linker
		module *goloader.CodeModule
		debug  bool
	}
)

// NewDynamic create new dynamic with provided Symbols, an optional debug parameter will enable debug logging inside Dynamic
func NewDynamic(sym Symbols, debug ...bool) *Dynamic {
	return &Dynamic{sym: sym, debug: len(debug) > 0 && debug[0]}
}

// Package returns the package path the module was read with.
func (s *Dynamic) Package() string {
	return s.pkg
}

// Initialize from one object file or go archive
func (s *Dynamic) Initialize(file, pkg string, types ...any) (err error) {
	if s.linker != nil {
		return ErrAlreadyInitialized
	}
	if len(types) > 0 {
		if s.debug {
			log.Println("register types", types)
		}
		goloader.RegTypes(s.sym, types...)
	}
	if s.linker, err = goloader.ReadObj(file, pkg); err != nil {
		return
	}
	s.pkg = pkg
	if s.debug {
		log.Printf("create linker of %s: %s", pkg, file)
	}
	return
}

// InitializeSerialized from a linker written by [Dynamic.Serialize]
func (s *Dynamic) InitializeSerialized(in io.Reader, types ...any) (err error) {
	if s.linker != nil {
		return ErrAlreadyInitialized
	}
	if len(types) > 0 {
		goloader.RegTypes(s.sym, types...)
	}
	if s.linker, err = goloader.UnSerialize(in); err != nil {
		return
	}
	for _, p := range s.linker.Packages {
		s.pkg = p.PkgPath
		break
	}
	if s.debug {
		log.Printf("loaded linker of %s", s.pkg)
	}
	return
}

// Link creates the code module
func (s *Dynamic) Link() (err error) {
	if s.linker == nil {
		return ErrUninitialized
	}
	if s.module != nil {
		return ErrLinked
	}
	if s.module, err = goloader.Load(s.linker, s.sym); err != nil {
		return
	}
	if s.debug {
		log.Printf("linked module %s with %d symbols", s.pkg, len(s.module.Syms))
	}
	return
}

// Fetch a symbol, an unqualified name is looked up in the module package.
func (s *Dynamic) Fetch(sym string) (u Sym, ok bool) {
	if s.module == nil {
		return
	}
	sym = s.qualify(sym)
	var p uintptr
	p, ok = s.module.Syms[sym]
	if !ok {
		if s.debug {
			log.Printf("missing symbol: %s", sym)
		}
		return
	}
	if s.debug {
		log.Printf("found symbol %s: %x", sym, p)
	}
	return Sym(p), ok
}

// MustFetch panics with ErrUninitialized or ErrMissingSymbol
func (s *Dynamic) MustFetch(sym string) Sym {
	if s.module == nil {
		panic(ErrUninitialized)
	}
	u, ok := s.Fetch(sym)
	if !ok {
		panic(ErrMissingSymbol)
	}
	return u
}

func (s *Dynamic) qualify(sym string) string {
	if strings.IndexByte(sym, '.') >= 0 {
		return sym
	}
	if s.pkg == "" {
		return "main." + sym
	}
	return s.pkg + "." + sym
}

// Exports dump symbols of the linked module
func (s *Dynamic) Exports() []string {
	if s.module == nil {
		return nil
	}
	return fn.MapKeys(s.module.Syms)
}

// MissingSymbols the host does not provide
func (s *Dynamic) MissingSymbols() []string {
	if s.linker == nil {
		panic(ErrUninitialized)
	}
	return goloader.UnresolvedSymbols(s.linker, s.sym)
}

// Serialize the linker, which may be loaded by InitializeSerialized
func (s *Dynamic) Serialize(out io.Writer) error {
	if s.linker == nil {
		return ErrUninitialized
	}
	return goloader.Serialize(s.linker, out)
}

// Free unload the code module, sync parameter to sync the stdout or not
func (s *Dynamic) Free(sync bool) {
	if s.linker == nil {
		return
	}
	if s.debug {
		log.Printf("free %s", s.pkg)
	}
	if s.module != nil {
		if sync {
			_ = os.Stdout.Sync()
		}
		s.module.Unload()
		s.module = nil
	}
	s.linker = nil
}

// As convert fetched Sym to contract type, T must be a func type matching the export.
func As[T any](ptr Sym) (x T) {
	fv := new(uintptr)
	*fv = uintptr(ptr)
	x = *(*T)(unsafe.Pointer(&fv))
	return
}
