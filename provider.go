package sdutils

// ModuleName is the name the hot swap module is registered under.
const ModuleName = "homebrew_sdhotswap"

// Export names published by the hot swap module.
const (
	ExportGetVersion                  = "SDUtilsGetVersion"
	ExportAddAttachHandler            = "SDUtilsAddAttachHandler"
	ExportRemoveAttachHandler         = "SDUtilsRemoveAttachHandler"
	ExportAddCleanUpHandlesHandler    = "SDUtilsAddCleanUpHandlesHandler"
	ExportRemoveCleanUpHandlesHandler = "SDUtilsRemoveCleanUpHandlesHandler"
)

// Exports lists every export name, the mandatory version query first.
var Exports = []string{
	ExportGetVersion,
	ExportAddAttachHandler,
	ExportRemoveAttachHandler,
	ExportAddCleanUpHandlesHandler,
	ExportRemoveCleanUpHandlesHandler,
}

type (
	// Provider resolves the exports of an acquired hot swap module.
	//
	// Every accessor reports false when the module does not publish that export,
	// older module versions lack the handler registration exports.
	Provider interface {
		GetVersion() (GetVersionFunc, bool)
		AddAttachHandler() (AddAttachHandlerFunc, bool)
		RemoveAttachHandler() (RemoveAttachHandlerFunc, bool)
		AddCleanUpHandlesHandler() (AddCleanUpHandlesHandlerFunc, bool)
		RemoveCleanUpHandlesHandler() (RemoveCleanUpHandlesHandlerFunc, bool)
	}
	// Loader looks up an already loaded module by name. The host owns the module lifetime,
	// so an acquired Provider is never released.
	Loader interface {
		Acquire(name string) (Provider, error)
	}
)
