package dynload

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/ZenLiuCN/fn"
	"github.com/ZenLiuCN/sdutils"
)

// Registry keeps the loaded modules by name and hands them out as [sdutils.Provider].
type Registry struct {
	Symbols
	modules map[string]*Dynamic
	debug   bool
	sync.RWMutex
}

var (
	ErrAlreadyLoad = errors.New("module already loaded")
	ErrNotLoad     = errors.New("module not loaded")
)

// NewRegistry create a registry linking modules against the host symbols
func NewRegistry(debug ...bool) (r *Registry, err error) {
	r = &Registry{
		modules: make(map[string]*Dynamic),
		debug:   len(debug) > 0 && debug[0],
	}
	if r.Symbols, err = NewSymbols(); err != nil {
		return nil, fmt.Errorf("read host symbols: %w", err)
	}
	return
}

// LoadFile load a module from go archive or go object file under name
func (r *Registry) LoadFile(name, file, pkgPath string) (err error) {
	if pkgPath == "" {
		pkgPath = "main"
	}
	r.Lock()
	defer r.Unlock()
	if _, ok := r.modules[name]; ok {
		return ErrAlreadyLoad
	}
	d := NewDynamic(r.Symbols, r.debug)
	if err = d.Initialize(file, pkgPath, r.types()...); err != nil {
		return fmt.Errorf("read %s: %w", file, err)
	}
	return r.add(name, d)
}

// LoadLinkable load a module from serialized linker under name
func (r *Registry) LoadLinkable(name string, bin io.Reader) (err error) {
	r.Lock()
	defer r.Unlock()
	if _, ok := r.modules[name]; ok {
		return ErrAlreadyLoad
	}
	d := NewDynamic(r.Symbols, r.debug)
	if err = d.InitializeSerialized(bin, r.types()...); err != nil {
		return fmt.Errorf("read linker: %w", err)
	}
	return r.add(name, d)
}

// types the module exports exchange with the host
func (r *Registry) types() []any {
	var (
		v  sdutils.Version
		st sdutils.Status
		as sdutils.AttachStatus
		ah sdutils.AttachHandler
		ch sdutils.CleanUpHandler
	)
	return []any{&v, &st, &as, &ah, &ch}
}

// add links d and publishes its symbols, callers hold the write lock.
func (r *Registry) add(name string, d *Dynamic) (err error) {
	if err = d.Link(); err != nil {
		d.Free(false)
		return fmt.Errorf("link %s: %w", name, err)
	}
	r.modules[name] = d
	r.register(d)
	return
}

func (r *Registry) register(d *Dynamic) {
	for s, u := range d.module.Syms {
		if _, ok := r.Symbols[s]; !ok {
			r.Symbols[s] = u
		}
	}
}

func (r *Registry) unregister(d *Dynamic) {
	for s, u := range d.module.Syms {
		if x, ok := r.Symbols[s]; ok && x == u {
			delete(r.Symbols, s)
		}
	}
}

// Unload free the module, Providers acquired before must no longer be used
func (r *Registry) Unload(name string) error {
	r.Lock()
	defer r.Unlock()
	d, ok := r.modules[name]
	if !ok {
		return ErrNotLoad
	}
	delete(r.modules, name)
	r.unregister(d)
	d.Free(true)
	return nil
}

// Acquire implements [sdutils.Loader]
func (r *Registry) Acquire(name string) (sdutils.Provider, error) {
	r.RLock()
	defer r.RUnlock()
	d, ok := r.modules[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotLoad, name)
	}
	return &Module{d: d}, nil
}

// Names of the loaded modules, sorted
func (r *Registry) Names() []string {
	r.RLock()
	defer r.RUnlock()
	v := fn.MapKeys(r.modules)
	sort.Strings(v)
	return v
}
