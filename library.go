package sdutils

import (
	"log"
	"sync"

	"github.com/spf13/afero"
)

type (
	// Library binds to the hot swap module and gates handler registration on the
	// module version and on the exports it publishes.
	//
	// Use Steps:
	//
	//	1. [Library.Initialize] once before any other goroutine uses the Library.
	//	2. Register handlers, query the version or the mount state.
	//	3. [Library.Deinitialize] on exit, which keeps the module bound.
	//
	// [Library.IsSdCardMounted] works in any state.
	Library struct {
		loader Loader
		name   string
		mount  string
		fs     afero.Fs
		debug  bool

		mu      sync.RWMutex
		module  Provider
		version Version
		exports exportTable
	}
	exportTable struct {
		getVersion    GetVersionFunc
		addAttach     AddAttachHandlerFunc
		removeAttach  RemoveAttachHandlerFunc
		addCleanUp    AddCleanUpHandlesHandlerFunc
		removeCleanUp RemoveCleanUpHandlesHandlerFunc
	}
	// Option configures a Library.
	Option func(*Library)
)

// WithModuleName overrides [ModuleName].
func WithModuleName(name string) Option {
	return func(l *Library) { l.name = name }
}

// WithMountPath overrides [MountPath].
func WithMountPath(path string) Option {
	return func(l *Library) { l.mount = path }
}

// WithFs sets the filesystem the mount path is probed on, the os filesystem by default.
func WithFs(fs afero.Fs) Option {
	return func(l *Library) { l.fs = fs }
}

// WithDebug enables debug logging.
func WithDebug(debug bool) Option {
	return func(l *Library) { l.debug = debug }
}

// New creates an uninitialized Library acquiring its module from loader.
func New(loader Loader, opts ...Option) *Library {
	l := &Library{
		loader:  loader,
		name:    ModuleName,
		mount:   MountPath,
		fs:      afero.NewOsFs(),
		version: VersionError,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Library) logf(format string, v ...any) {
	if l.debug {
		log.Printf(format, v...)
	}
}

func (l *Library) acquire() (Provider, Status) {
	if l.loader == nil {
		l.logf("acquire %s failed: no loader", l.name)
		return nil, ModuleNotFound
	}
	m, err := l.loader.Acquire(l.name)
	if err != nil || m == nil {
		l.logf("acquire %s failed: %v", l.name, err)
		return nil, ModuleNotFound
	}
	return m, Success
}

// Initialize acquires the module and resolves its exports. Only the version query
// is mandatory, missing handler exports disable the matching operations.
//
// On failure the Library stays uninitialized, nothing resolved so far is kept.
func (l *Library) Initialize() Status {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reset()
	m, st := l.acquire()
	if st != Success {
		return st
	}
	var t exportTable
	var ok bool
	if t.getVersion, ok = m.GetVersion(); !ok || t.getVersion == nil {
		l.logf("find export %s failed", ExportGetVersion)
		return ModuleMissingExport
	}
	version := VersionError
	if st = t.getVersion(&version); st != Success {
		l.logf("%s failed: %s", ExportGetVersion, st)
		return UnsupportedVersion
	}
	if t.addAttach, ok = m.AddAttachHandler(); !ok {
		l.logf("find export %s failed", ExportAddAttachHandler)
		t.addAttach = nil
	}
	if t.removeAttach, ok = m.RemoveAttachHandler(); !ok {
		l.logf("find export %s failed", ExportRemoveAttachHandler)
		t.removeAttach = nil
	}
	if t.addCleanUp, ok = m.AddCleanUpHandlesHandler(); !ok {
		l.logf("find export %s failed", ExportAddCleanUpHandlesHandler)
		t.addCleanUp = nil
	}
	if t.removeCleanUp, ok = m.RemoveCleanUpHandlesHandler(); !ok {
		l.logf("find export %s failed", ExportRemoveCleanUpHandlesHandler)
		t.removeCleanUp = nil
	}
	l.module = m
	l.exports = t
	l.version = version
	l.logf("bound %s version %d", l.name, version)
	return Success
}

func (l *Library) reset() {
	l.module = nil
	l.exports = exportTable{}
	l.version = VersionError
}

// Deinitialize does nothing, the module handle is owned by the host.
func (l *Library) Deinitialize() Status {
	return Success
}

// GetVersion forwards to the module version query, binding it first when
// Initialize has not done so.
func (l *Library) GetVersion(out *Version) Status {
	l.mu.Lock()
	getVersion := l.exports.getVersion
	if getVersion == nil {
		m, st := l.acquire()
		if st != Success {
			l.mu.Unlock()
			return st
		}
		var ok bool
		if getVersion, ok = m.GetVersion(); !ok || getVersion == nil {
			l.logf("find export %s failed", ExportGetVersion)
			l.mu.Unlock()
			return ModuleMissingExport
		}
		l.module = m
		l.exports.getVersion = getVersion
	}
	l.mu.Unlock()
	if out == nil {
		return InvalidArgument
	}
	return getVersion(out)
}

// Version returns the version cached by Initialize, false while uninitialized.
func (l *Library) Version() (Version, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.version, l.version != VersionError
}

// IsSdCardMounted reports whether the mount path can be opened as a directory.
func (l *Library) IsSdCardMounted(out *bool) Status {
	if out == nil {
		return InvalidArgument
	}
	*out = probeDir(l.fs, l.mount)
	return Success
}

// gate decides whether a handler operation may be forwarded, callers hold mu.
func (l *Library) gate(present bool) Status {
	if l.version == VersionError {
		return LibUninitialized
	}
	if !present || l.version < VersionCallbacks {
		return UnsupportedCommand
	}
	return Success
}

// Supports reports whether the handler operation behind export is usable.
func (l *Library) Supports(export string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var present bool
	switch export {
	case ExportGetVersion:
		return l.exports.getVersion != nil
	case ExportAddAttachHandler:
		present = l.exports.addAttach != nil
	case ExportRemoveAttachHandler:
		present = l.exports.removeAttach != nil
	case ExportAddCleanUpHandlesHandler:
		present = l.exports.addCleanUp != nil
	case ExportRemoveCleanUpHandlesHandler:
		present = l.exports.removeCleanUp != nil
	default:
		return false
	}
	return l.gate(present) == Success
}

func result(ok bool, failure Status) Status {
	if ok {
		return Success
	}
	return failure
}

// AddAttachHandler registers fn to be called on every future insertion or ejection.
// Handlers are dropped by the module when the running application closes.
func (l *Library) AddAttachHandler(fn AttachHandler) Status {
	l.mu.RLock()
	f := l.exports.addAttach
	st := l.gate(f != nil)
	l.mu.RUnlock()
	if st != Success {
		return st
	}
	if fn == nil {
		return InvalidArgument
	}
	return result(f(fn), MaxCallbacks)
}

// RemoveAttachHandler removes a handler registered by AddAttachHandler, fn must be the value that was added.
func (l *Library) RemoveAttachHandler(fn AttachHandler) Status {
	l.mu.RLock()
	f := l.exports.removeAttach
	st := l.gate(f != nil)
	l.mu.RUnlock()
	if st != Success {
		return st
	}
	if fn == nil {
		return InvalidArgument
	}
	return result(f(fn), NotFound)
}

// AddCleanUpHandlesHandler registers fn to be called on ejection before any attach handler,
// so open file handles can be closed before the card is unmounted.
func (l *Library) AddCleanUpHandlesHandler(fn CleanUpHandler) Status {
	l.mu.RLock()
	f := l.exports.addCleanUp
	st := l.gate(f != nil)
	l.mu.RUnlock()
	if st != Success {
		return st
	}
	if fn == nil {
		return InvalidArgument
	}
	return result(f(fn), MaxCallbacks)
}

// RemoveCleanUpHandlesHandler removes a handler registered by AddCleanUpHandlesHandler, fn must be the value that was added.
func (l *Library) RemoveCleanUpHandlesHandler(fn CleanUpHandler) Status {
	l.mu.RLock()
	f := l.exports.removeCleanUp
	st := l.gate(f != nil)
	l.mu.RUnlock()
	if st != Success {
		return st
	}
	if fn == nil {
		return InvalidArgument
	}
	return result(f(fn), NotFound)
}
