package sdutils

import "sync/atomic"

var std atomic.Pointer[Library]

func init() {
	std.Store(New(nil))
}

// SetDefault replaces the process-wide Library used by the package level functions.
// It must happen before InitLibrary.
func SetDefault(l *Library) {
	std.Store(l)
}

// Default returns the process-wide Library.
func Default() *Library {
	return std.Load()
}

// SetDefaultLoader installs a fresh process-wide Library acquiring its module from loader.
func SetDefaultLoader(loader Loader, opts ...Option) {
	std.Store(New(loader, opts...))
}

// InitLibrary initializes the process-wide Library, see [Library.Initialize].
func InitLibrary() Status { return Default().Initialize() }

// DeInitLibrary see [Library.Deinitialize].
func DeInitLibrary() Status { return Default().Deinitialize() }

// GetVersion see [Library.GetVersion].
func GetVersion(out *Version) Status { return Default().GetVersion(out) }

// IsSdCardMounted see [Library.IsSdCardMounted].
func IsSdCardMounted(out *bool) Status { return Default().IsSdCardMounted(out) }

// AddAttachHandler see [Library.AddAttachHandler].
func AddAttachHandler(fn AttachHandler) Status { return Default().AddAttachHandler(fn) }

// RemoveAttachHandler see [Library.RemoveAttachHandler].
func RemoveAttachHandler(fn AttachHandler) Status { return Default().RemoveAttachHandler(fn) }

// AddCleanUpHandlesHandler see [Library.AddCleanUpHandlesHandler].
func AddCleanUpHandlesHandler(fn CleanUpHandler) Status {
	return Default().AddCleanUpHandlesHandler(fn)
}

// RemoveCleanUpHandlesHandler see [Library.RemoveCleanUpHandlesHandler].
func RemoveCleanUpHandlesHandler(fn CleanUpHandler) Status {
	return Default().RemoveCleanUpHandlesHandler(fn)
}
