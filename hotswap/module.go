// Package hotswap implements the sd card hot swap module in process.
//
// A Module keeps the registered attach and clean up handlers and dispatches sd card
// events to them. It publishes the same exports as the native module through
// [sdutils.Provider], hiding some of them emulates older module versions.
package hotswap

import (
	"slices"
	"sync"
	"unsafe"

	"github.com/ZenLiuCN/sdutils"
)

// DefaultMaxCallbacks is the capacity of each handler list.
const DefaultMaxCallbacks = 16

type (
	// Module is an in process hot swap module, its zero value is not usable, see [New].
	Module struct {
		version       sdutils.Version
		versionStatus sdutils.Status
		max           int
		hidden        map[string]bool

		mu      sync.Mutex
		attach  []sdutils.AttachHandler
		cleanUp []sdutils.CleanUpHandler
	}
	// Option configures a Module.
	Option func(*Module)
)

// WithVersion sets the reported API version, sdutils.VersionCallbacks by default.
func WithVersion(v sdutils.Version) Option {
	return func(m *Module) { m.version = v }
}

// WithVersionStatus makes the version query fail with st.
func WithVersionStatus(st sdutils.Status) Option {
	return func(m *Module) { m.versionStatus = st }
}

// WithMaxCallbacks sets the capacity of each handler list.
func WithMaxCallbacks(n int) Option {
	return func(m *Module) { m.max = n }
}

// WithoutExports hides exports from the Provider accessors.
func WithoutExports(names ...string) Option {
	return func(m *Module) {
		for _, n := range names {
			m.hidden[n] = true
		}
	}
}

// New creates a Module reporting sdutils.VersionCallbacks with every export published.
func New(opts ...Option) *Module {
	m := &Module{
		version: sdutils.VersionCallbacks,
		max:     DefaultMaxCallbacks,
		hidden:  make(map[string]bool),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

type handler interface {
	sdutils.AttachHandler | sdutils.CleanUpHandler
}

// identity of a handler is its func value pointer: closures and method values
// on distinct receivers differ, removal needs the value that was added.
func identity[T handler](f T) unsafe.Pointer {
	return *(*unsafe.Pointer)(unsafe.Pointer(&f))
}

func add[T handler](m *Module, list *[]T, f T) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := identity(f)
	if slices.ContainsFunc(*list, func(x T) bool { return identity(x) == id }) {
		return true
	}
	if len(*list) >= m.max {
		return false
	}
	*list = append(*list, f)
	return true
}

func remove[T handler](m *Module, list *[]T, f T) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := identity(f)
	i := slices.IndexFunc(*list, func(x T) bool { return identity(x) == id })
	if i < 0 {
		return false
	}
	*list = slices.Delete(*list, i, i+1)
	return true
}

func (m *Module) getVersion(out *sdutils.Version) sdutils.Status {
	if out == nil {
		return sdutils.InvalidArgument
	}
	if m.versionStatus != sdutils.Success {
		return m.versionStatus
	}
	*out = m.version
	return sdutils.Success
}

func (m *Module) addAttach(f sdutils.AttachHandler) bool { return add(m, &m.attach, f) }

func (m *Module) removeAttach(f sdutils.AttachHandler) bool { return remove(m, &m.attach, f) }

func (m *Module) addCleanUp(f sdutils.CleanUpHandler) bool { return add(m, &m.cleanUp, f) }

func (m *Module) removeCleanUp(f sdutils.CleanUpHandler) bool { return remove(m, &m.cleanUp, f) }

func (m *Module) handlers() ([]sdutils.AttachHandler, []sdutils.CleanUpHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.attach), slices.Clone(m.cleanUp)
}

// Attach notifies the attach handlers about an inserted card.
func (m *Module) Attach() {
	attach, _ := m.handlers()
	for _, f := range attach {
		f(sdutils.Mounted)
	}
}

// Eject runs the clean up handlers, then notifies the attach handlers about the removed card.
func (m *Module) Eject() {
	attach, cleanUp := m.handlers()
	for _, f := range cleanUp {
		f()
	}
	for _, f := range attach {
		f(sdutils.Unmounted)
	}
}

// Reset drops every handler, as done when the running application closes.
func (m *Module) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attach = nil
	m.cleanUp = nil
}

// Registered returns the number of attach and clean up handlers.
func (m *Module) Registered() (attach, cleanUp int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.attach), len(m.cleanUp)
}

func export[T any](m *Module, name string, f T) (T, bool) {
	if m.hidden[name] {
		var zero T
		return zero, false
	}
	return f, true
}

// GetVersion and the handler accessors below implement [sdutils.Provider].
func (m *Module) GetVersion() (sdutils.GetVersionFunc, bool) {
	return export[sdutils.GetVersionFunc](m, sdutils.ExportGetVersion, m.getVersion)
}

func (m *Module) AddAttachHandler() (sdutils.AddAttachHandlerFunc, bool) {
	return export[sdutils.AddAttachHandlerFunc](m, sdutils.ExportAddAttachHandler, m.addAttach)
}

func (m *Module) RemoveAttachHandler() (sdutils.RemoveAttachHandlerFunc, bool) {
	return export[sdutils.RemoveAttachHandlerFunc](m, sdutils.ExportRemoveAttachHandler, m.removeAttach)
}

func (m *Module) AddCleanUpHandlesHandler() (sdutils.AddCleanUpHandlesHandlerFunc, bool) {
	return export[sdutils.AddCleanUpHandlesHandlerFunc](m, sdutils.ExportAddCleanUpHandlesHandler, m.addCleanUp)
}

func (m *Module) RemoveCleanUpHandlesHandler() (sdutils.RemoveCleanUpHandlesHandlerFunc, bool) {
	return export[sdutils.RemoveCleanUpHandlesHandlerFunc](m, sdutils.ExportRemoveCleanUpHandlesHandler, m.removeCleanUp)
}
